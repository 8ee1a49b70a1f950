package main

import (
	"fmt"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ofisler/mutabakat/internal/model"
)

func init() {
	customersCmd := &cobra.Command{
		Use:   "customers",
		Short: "Manage the customer roster",
	}

	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a customer",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taxID, _ := cmd.Flags().GetString("tax-id")
			phone, _ := cmd.Flags().GetString("phone")

			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			customer := &model.Customer{Name: args[0], TaxID: taxID, Phone: phone}
			if err := store.CreateCustomer(cmd.Context(), customer); err != nil {
				return err
			}
			fmt.Printf("Created customer %d: %s\n", customer.ID, customer.Name)
			return nil
		},
	}
	addCmd.Flags().String("tax-id", "", "tax or national identification number")
	addCmd.Flags().String("phone", "", "contact phone number")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List customers",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			customers, err := store.ListCustomers(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tTAX ID\tPHONE")
			for _, customer := range customers {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
					customer.ID, customer.Name, customer.TaxID, customer.Phone)
			}
			return w.Flush()
		},
	}

	customersCmd.AddCommand(addCmd, listCmd)
	rootCmd.AddCommand(customersCmd)
}

// parseID parses a positional database ID argument.
func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", arg)
	}
	return id, nil
}
