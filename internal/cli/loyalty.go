package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/beautyboost/beautyboost/internal/app/ledger"
	"github.com/beautyboost/beautyboost/internal/domain"
)

func init() {
	rootCmd.AddCommand(profileCmd)
	profileCmd.AddCommand(profileShowCmd)
	profileCmd.AddCommand(profileUpdateCmd)

	rootCmd.AddCommand(pointsCmd)
	pointsCmd.AddCommand(pointsHistoryCmd)

	rootCmd.AddCommand(servicesCmd)
	rootCmd.AddCommand(bookCmd)
	rootCmd.AddCommand(bookingsCmd)
	rootCmd.AddCommand(completeCmd)
	rootCmd.AddCommand(cancelCmd)

	rootCmd.AddCommand(rewardsCmd)
	rootCmd.AddCommand(redeemCmd)
	rootCmd.AddCommand(redeemedCmd)
	rootCmd.AddCommand(useRewardCmd)

	profileUpdateCmd.Flags().String("name", "", "New name")
	profileUpdateCmd.Flags().String("email", "", "New email")
	profileUpdateCmd.Flags().String("phone", "", "New phone")
	profileUpdateCmd.Flags().String("avatar", "", "New avatar URL")

	servicesCmd.Flags().Int("recent", 0, "Show the N most recent completed services instead of the catalog")

	bookCmd.Flags().String("date", "", "Appointment date YYYY-MM-DD (required)")
	bookCmd.Flags().String("time", "", "Appointment time, e.g. \"10:00 AM\" (required)")
}

// ─── profile ────────────────────────────────────────────────────────────────

var profileCmd = &cobra.Command{
	Use:   "profile",
	Short: "Show or update the customer profile",
	RunE:  runProfileShow,
}

var profileShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the customer profile",
	RunE:  runProfileShow,
}

func runProfileShow(cmd *cobra.Command, args []string) error {
	a, err := requireSession(cmd)
	if err != nil {
		return err
	}
	p, err := app.Ledger.GetProfile(cmd.Context(), a.ID)
	if err != nil {
		return err
	}
	if p == nil {
		return fmt.Errorf("no profile for %s: %w", a.ID, domain.ErrNotFound)
	}
	return printProfile(cmd, p)
}

var profileUpdateCmd = &cobra.Command{
	Use:   "update",
	Short: "Update profile fields",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireSession(cmd)
		if err != nil {
			return err
		}
		var u domain.ProfileUpdate
		for name, dst := range map[string]**string{
			"name":   &u.Name,
			"email":  &u.Email,
			"phone":  &u.Phone,
			"avatar": &u.Avatar,
		} {
			if cmd.Flags().Changed(name) {
				v, _ := cmd.Flags().GetString(name)
				*dst = &v
			}
		}
		p, err := app.Ledger.UpdateProfile(cmd.Context(), a.ID, u)
		if err != nil {
			return err
		}
		if p == nil {
			return fmt.Errorf("no profile for %s: %w", a.ID, domain.ErrNotFound)
		}
		return printProfile(cmd, p)
	},
}

func printProfile(cmd *cobra.Command, p *domain.Profile) error {
	if ok, err := printJSON(cmd, p); ok {
		return err
	}
	w := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "Name:\t%s\n", p.Name)
	fmt.Fprintf(w, "Email:\t%s\n", p.Email)
	if p.Phone != "" {
		fmt.Fprintf(w, "Phone:\t%s\n", p.Phone)
	}
	fmt.Fprintf(w, "Member since:\t%s\n", p.JoinDate)
	fmt.Fprintf(w, "Tier:\t%s\n", p.Tier)
	return w.Flush()
}

// ─── points ─────────────────────────────────────────────────────────────────

var pointsCmd = &cobra.Command{
	Use:   "points",
	Short: "Show the points balance and tier progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireSession(cmd)
		if err != nil {
			return err
		}
		sum, err := app.Ledger.Summary(cmd.Context(), a.ID)
		if err != nil {
			return err
		}
		if ok, err := printJSON(cmd, sum); ok {
			return err
		}
		fmt.Fprintf(out(cmd), "%d points (%s)\n", sum.Balance, sum.Tier)
		if sum.NextTier != "" {
			fmt.Fprintf(out(cmd), "%d points to %s\n", sum.ToNext, sum.NextTier)
		}
		return nil
	},
}

var pointsHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List point transactions, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireSession(cmd)
		if err != nil {
			return err
		}
		txs, err := app.Ledger.TransactionHistory(cmd.Context(), a.ID)
		if err != nil {
			return err
		}
		if ok, err := printJSON(cmd, txs); ok {
			return err
		}
		if len(txs) == 0 {
			fmt.Fprintln(out(cmd), "No transactions yet.")
			return nil
		}
		w := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tTYPE\tPOINTS\tDESCRIPTION")
		for _, tx := range txs {
			sign := "+"
			if tx.Type == domain.TxRedeemed {
				sign = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s%d\t%s\n", tx.Date, tx.Type, sign, tx.Amount, tx.Description)
		}
		return w.Flush()
	},
}

// ─── services / bookings ────────────────────────────────────────────────────

var servicesCmd = &cobra.Command{
	Use:   "services",
	Short: "List bookable services, or recent completed services with --recent",
	RunE: func(cmd *cobra.Command, args []string) error {
		recent, _ := cmd.Flags().GetInt("recent")
		if cmd.Flags().Changed("recent") {
			return runRecentServices(cmd, recent)
		}
		svcs := app.Catalog.Services()
		if ok, err := printJSON(cmd, svcs); ok {
			return err
		}
		w := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tSERVICE\tDURATION\tPRICE\tPOINTS\tSTYLIST")
		for _, s := range svcs {
			fmt.Fprintf(w, "%s\t%s\t%s\t$%.0f\t%d\t%s\n", s.ID, s.Name, s.Duration, s.Price, s.Points, s.Stylist)
		}
		return w.Flush()
	},
}

func runRecentServices(cmd *cobra.Command, limit int) error {
	a, err := requireSession(cmd)
	if err != nil {
		return err
	}
	if limit <= 0 {
		limit = ledger.RecentServiceLimit
	}
	entries, err := app.Ledger.ServiceHistory(cmd.Context(), a.ID, limit)
	if err != nil {
		return err
	}
	if ok, err := printJSON(cmd, entries); ok {
		return err
	}
	w := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "DATE\tSERVICE\tPOINTS")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%d\n", e.Date, e.Name, e.Points)
	}
	return w.Flush()
}

var bookCmd = &cobra.Command{
	Use:   "book SERVICE_ID",
	Short: "Book a service from the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireSession(cmd)
		if err != nil {
			return err
		}
		date, _ := cmd.Flags().GetString("date")
		at, _ := cmd.Flags().GetString("time")

		svc, err := app.Catalog.LookupService(args[0])
		if err != nil {
			return err
		}
		b, err := app.Ledger.CreateBooking(cmd.Context(), a.ID, svc.BookingInput(date, at))
		if err != nil {
			return err
		}
		if ok, err := printJSON(cmd, b); ok {
			return err
		}
		fmt.Fprintf(out(cmd), "Booked %s with %s on %s at %s (%s)\n", b.ServiceName, b.Stylist, b.Date, b.Time, b.ID)
		fmt.Fprintf(out(cmd), "Complete it to earn %d points.\n", b.Points)
		return nil
	},
}

var bookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "List bookings of the logged-in account",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireSession(cmd)
		if err != nil {
			return err
		}
		bookings, err := app.Ledger.ListBookings(cmd.Context(), a.ID)
		if err != nil {
			return err
		}
		return printBookings(cmd, bookings, false)
	},
}

func printBookings(cmd *cobra.Command, bookings []domain.Booking, withUser bool) error {
	if ok, err := printJSON(cmd, bookings); ok {
		return err
	}
	if len(bookings) == 0 {
		fmt.Fprintln(out(cmd), "No bookings.")
		return nil
	}
	w := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
	if withUser {
		fmt.Fprint(w, "USER\t")
	}
	fmt.Fprintln(w, "ID\tSERVICE\tDATE\tTIME\tPOINTS\tSTATUS")
	for _, b := range bookings {
		if withUser {
			fmt.Fprintf(w, "%s\t", b.UserID)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\n", b.ID, b.ServiceName, b.Date, b.Time, b.Points, b.Status)
	}
	return w.Flush()
}

var completeCmd = &cobra.Command{
	Use:   "complete BOOKING_ID",
	Short: "Mark a booking completed and award its points",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setBookingStatus(cmd, args[0], domain.BookingCompleted)
	},
}

var cancelCmd = &cobra.Command{
	Use:   "cancel BOOKING_ID",
	Short: "Cancel an upcoming booking",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return setBookingStatus(cmd, args[0], domain.BookingCancelled)
	},
}

func setBookingStatus(cmd *cobra.Command, id string, status domain.BookingStatus) error {
	a, err := requireSession(cmd)
	if err != nil {
		return err
	}
	b, err := app.Ledger.SetBookingStatus(cmd.Context(), a.ID, id, status)
	if err != nil {
		return err
	}
	if ok, err := printJSON(cmd, b); ok {
		return err
	}
	fmt.Fprintf(out(cmd), "Booking %s is %s.\n", b.ID, b.Status)
	return nil
}

// ─── rewards ────────────────────────────────────────────────────────────────

var rewardsCmd = &cobra.Command{
	Use:   "rewards",
	Short: "List the rewards catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		rewards := app.Catalog.Rewards()
		if ok, err := printJSON(cmd, rewards); ok {
			return err
		}
		w := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tREWARD\tPOINTS\tCATEGORY\tTIER")
		for _, r := range rewards {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", r.ID, r.Name, r.Points, r.Category, r.Tier)
		}
		return w.Flush()
	},
}

var redeemCmd = &cobra.Command{
	Use:   "redeem REWARD_ID",
	Short: "Spend points on a catalog reward",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireSession(cmd)
		if err != nil {
			return err
		}
		rw, err := app.Catalog.LookupReward(args[0])
		if err != nil {
			return err
		}
		rec, err := app.Ledger.RedeemReward(cmd.Context(), a.ID, rw.ID, rw.Name, rw.Points)
		if err != nil {
			return err
		}
		if ok, err := printJSON(cmd, rec); ok {
			return err
		}
		fmt.Fprintf(out(cmd), "Redeemed %s for %d points (%s, valid until %s)\n", rec.RewardName, rec.PointsCost, rec.ID, rec.ExpiryDate)
		return nil
	},
}

var redeemedCmd = &cobra.Command{
	Use:   "redeemed",
	Short: "List redeemed rewards",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireSession(cmd)
		if err != nil {
			return err
		}
		rewards, err := app.Ledger.ListRedeemedRewards(cmd.Context(), a.ID)
		if err != nil {
			return err
		}
		if ok, err := printJSON(cmd, rewards); ok {
			return err
		}
		if len(rewards) == 0 {
			fmt.Fprintln(out(cmd), "No redeemed rewards.")
			return nil
		}
		w := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tREWARD\tPOINTS\tSTATUS\tEXPIRES")
		for _, r := range rewards {
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\t%s\n", r.ID, r.RewardName, r.PointsCost, r.Status, r.ExpiryDate)
		}
		return w.Flush()
	},
}

var useRewardCmd = &cobra.Command{
	Use:   "use-reward REDEMPTION_ID",
	Short: "Mark a redeemed reward as used",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireSession(cmd)
		if err != nil {
			return err
		}
		rec, err := app.Ledger.UseReward(cmd.Context(), a.ID, args[0])
		if err != nil {
			return err
		}
		if ok, err := printJSON(cmd, rec); ok {
			return err
		}
		fmt.Fprintf(out(cmd), "%s marked %s.\n", rec.RewardName, rec.Status)
		return nil
	},
}
