package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(adminCmd)
	adminCmd.AddCommand(adminBookingsCmd)
	adminCmd.AddCommand(adminSummaryCmd)
	adminCmd.AddCommand(adminCustomersCmd)
}

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Salon-wide views (admin session required)",
}

var adminBookingsCmd = &cobra.Command{
	Use:   "bookings",
	Short: "List every customer's bookings, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireSession(cmd)
		if err != nil {
			return err
		}
		bookings, err := app.Ledger.ListAllBookings(cmd.Context(), a)
		if err != nil {
			return err
		}
		return printBookings(cmd, bookings, true)
	},
}

var adminSummaryCmd = &cobra.Command{
	Use:   "summary",
	Short: "Show booking and points totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireSession(cmd)
		if err != nil {
			return err
		}
		sum, err := app.Ledger.AdminSummary(cmd.Context(), a)
		if err != nil {
			return err
		}
		if ok, err := printJSON(cmd, sum); ok {
			return err
		}
		w := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "Customers:\t%d\n", sum.TotalCustomers)
		fmt.Fprintf(w, "Bookings:\t%d (%d upcoming, %d completed, %d cancelled)\n",
			sum.TotalBookings, sum.UpcomingBookings, sum.CompletedBookings, sum.CancelledBookings)
		fmt.Fprintf(w, "Outstanding points:\t%d\n", sum.OutstandingPoints)
		fmt.Fprintf(w, "Redeemed rewards:\t%d\n", sum.RedeemedRewards)
		return w.Flush()
	},
}

var adminCustomersCmd = &cobra.Command{
	Use:   "customers",
	Short: "List customers with tier and balance",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := requireSession(cmd)
		if err != nil {
			return err
		}
		customers, err := app.Ledger.ListCustomers(cmd.Context(), a)
		if err != nil {
			return err
		}
		if ok, err := printJSON(cmd, customers); ok {
			return err
		}
		w := tabwriter.NewWriter(out(cmd), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tEMAIL\tTIER\tBALANCE\tBOOKINGS")
		for _, c := range customers {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%d\n", c.Account.ID, c.Account.Name, c.Account.Email, c.Tier, c.Balance, c.Bookings)
		}
		return w.Flush()
	},
}
