package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/beautyboost/beautyboost/internal/daemon"
	"github.com/beautyboost/beautyboost/internal/domain"
)

func init() {
	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(registerCmd)
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(whoamiCmd)
	rootCmd.AddCommand(resetCmd)

	registerCmd.Flags().String("name", "", "Full name (required)")
	registerCmd.Flags().String("phone", "", "Phone number")
	registerCmd.Flags().StringP("password", "p", "", "Password (required)")
	loginCmd.Flags().StringP("password", "p", "", "Password (required)")
	resetCmd.Flags().Bool("yes", false, "Confirm deleting the ledger")
}

// ─── init ───────────────────────────────────────────────────────────────────

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a default config.toml and seed the store",
	Long: `Write config.toml to the home directory if it does not exist yet.
Opening the store seeds the admin and demo accounts on first run.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		h := home()
		path := daemon.ConfigPath(h)
		if fileExists(path) {
			fmt.Fprintf(out(cmd), "Config already exists at %s\n", path)
		} else {
			if err := daemon.Save(h, app.Config); err != nil {
				return fmt.Errorf("write config: %w", err)
			}
			fmt.Fprintf(out(cmd), "Wrote %s\n", path)
		}
		accts, err := app.Directory.ListAccounts(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(out(cmd), "Store ready (%s, %d accounts)\n", app.Config.Storage.Backend, len(accts))
		return nil
	},
}

// ─── register / login / logout ──────────────────────────────────────────────

var registerCmd = &cobra.Command{
	Use:   "register EMAIL",
	Short: "Create a customer account and log in",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name, _ := cmd.Flags().GetString("name")
		phone, _ := cmd.Flags().GetString("phone")
		password, _ := cmd.Flags().GetString("password")

		a, err := app.Directory.Register(cmd.Context(), domain.RegisterInput{
			Email:    args[0],
			Name:     name,
			Phone:    phone,
			Password: password,
		})
		if err != nil {
			return err
		}
		if ok, err := printJSON(cmd, a); ok {
			return err
		}
		fmt.Fprintf(out(cmd), "Welcome, %s! Account %s created and logged in.\n", a.Name, a.ID)
		return nil
	},
}

var loginCmd = &cobra.Command{
	Use:   "login EMAIL",
	Short: "Log in as an existing account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		a, err := app.Directory.Login(cmd.Context(), args[0], password)
		if err != nil {
			return err
		}
		if ok, err := printJSON(cmd, a); ok {
			return err
		}
		fmt.Fprintf(out(cmd), "Logged in as %s (%s)\n", a.Name, a.Role)
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Clear the current session",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := app.Directory.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(out(cmd), "Logged out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the logged-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := app.Directory.CurrentSession(cmd.Context())
		if err != nil {
			return err
		}
		if a == nil {
			fmt.Fprintln(out(cmd), "Not logged in.")
			return nil
		}
		if ok, err := printJSON(cmd, a); ok {
			return err
		}
		fmt.Fprintf(out(cmd), "%s <%s> %s [%s]\n", a.Name, a.Email, a.ID, a.Role)
		return nil
	},
}

// ─── reset ──────────────────────────────────────────────────────────────────

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete every ledger record of the logged-in account",
	Long: `Delete the profile, balance, history, bookings and rewards of the
logged-in account. The account itself is kept; the next start re-provisions
an empty ledger.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		yes, _ := cmd.Flags().GetBool("yes")
		if !yes {
			return fmt.Errorf("refusing to reset without --yes")
		}
		a, err := requireSession(cmd)
		if err != nil {
			return err
		}
		if err := app.Ledger.ClearAll(cmd.Context(), a.ID); err != nil {
			return err
		}
		fmt.Fprintf(out(cmd), "Ledger for %s cleared.\n", a.ID)
		return nil
	},
}
