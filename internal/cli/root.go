// Package cli implements the beautyboost command line. Commands act on the
// current session stored in the account directory.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/beautyboost/beautyboost/internal/daemon"
	"github.com/beautyboost/beautyboost/internal/domain"
)

var (
	flagHome    string
	flagStorage string
	flagJSON    bool

	// app is opened by the root pre-run and closed by Execute.
	app *daemon.App
)

var rootCmd = &cobra.Command{
	Use:   "beautyboost",
	Short: "BeautyBoost salon loyalty core",
	Long: `BeautyBoost tracks salon customers, their loyalty points, bookings and
redeemed rewards. Data lives in a local SQLite file by default; Redis and an
in-memory store are available for the API server.`,
	SilenceUsage:      true,
	PersistentPreRunE: openApp,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagHome, "home", "", "Data and config directory (default $BEAUTYBOOST_HOME or ~/.beautyboost)")
	rootCmd.PersistentFlags().StringVar(&flagStorage, "storage", "", "Storage backend override: sqlite, memory or redis")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Print machine-readable JSON")
}

// Execute runs the root command. Post-run hooks are skipped when a command
// fails, so the store is closed here.
func Execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if app != nil {
		if cerr := app.Close(); cerr != nil && err == nil {
			err = cerr
		}
		app = nil
	}
	return err
}

func home() string {
	if flagHome != "" {
		return flagHome
	}
	return daemon.Home()
}

func loadConfig() (daemon.Config, error) {
	h := home()
	if err := daemon.LoadEnvFiles(".env", filepath.Join(h, ".env")); err != nil {
		return daemon.Config{}, err
	}
	cfg, err := daemon.Load(h)
	if err != nil {
		return cfg, err
	}
	if flagStorage != "" {
		cfg.Storage.Backend = flagStorage
		if err := cfg.Validate(); err != nil {
			return cfg, err
		}
	}
	return cfg, nil
}

func openApp(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	log := daemon.NewLogger(cfg.Log, cmd.ErrOrStderr())
	a, err := daemon.Open(cmd.Context(), home(), cfg, log)
	if err != nil {
		return err
	}
	app = a
	return nil
}

// ─── Session Helpers ────────────────────────────────────────────────────────

// requireSession returns the logged-in account.
func requireSession(cmd *cobra.Command) (domain.Account, error) {
	a, err := app.Directory.CurrentSession(cmd.Context())
	if err != nil {
		return domain.Account{}, err
	}
	if a == nil {
		return domain.Account{}, fmt.Errorf("not logged in: run 'beautyboost login EMAIL'")
	}
	return *a, nil
}

// ─── Output ─────────────────────────────────────────────────────────────────

func out(cmd *cobra.Command) io.Writer { return cmd.OutOrStdout() }

// printJSON writes v as indented JSON when --json is set and reports
// whether it did.
func printJSON(cmd *cobra.Command, v any) (bool, error) {
	if !flagJSON {
		return false, nil
	}
	enc := json.NewEncoder(out(cmd))
	enc.SetIndent("", "  ")
	return true, enc.Encode(v)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
