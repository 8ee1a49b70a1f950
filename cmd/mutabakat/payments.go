package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func init() {
	paymentsCmd := &cobra.Command{
		Use:   "payments",
		Short: "List a customer's payments",
		Long: `List the payments recorded for a customer, including those created by
statement matching (source "bank") and any entered through other channels.`,
		RunE: runPayments,
	}

	paymentsCmd.Flags().Int64("customer", 0, "customer ID to list payments for")
	_ = paymentsCmd.MarkFlagRequired("customer")

	rootCmd.AddCommand(paymentsCmd)
}

func runPayments(cmd *cobra.Command, _ []string) error {
	customerID, _ := cmd.Flags().GetInt64("customer")

	store, err := initStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// Resolve first so a bad ID errors instead of listing nothing.
	customer, err := store.GetCustomer(cmd.Context(), customerID)
	if err != nil {
		return err
	}

	payments, err := store.ListPaymentsByCustomer(cmd.Context(), customerID)
	if err != nil {
		return err
	}
	if len(payments) == 0 {
		fmt.Printf("No payments recorded for %s\n", customer.Name)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tSOURCE\tNOTE")
	for _, payment := range payments {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			payment.ID,
			payment.Date.Format("2006-01-02"),
			payment.Amount.StringFixed(2),
			payment.Source,
			truncate(payment.Note, 50))
	}
	return w.Flush()
}
