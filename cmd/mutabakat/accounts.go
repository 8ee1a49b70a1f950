package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ofisler/mutabakat/internal/model"
)

func init() {
	accountsCmd := &cobra.Command{
		Use:   "accounts",
		Short: "Manage bank accounts",
	}

	addCmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a bank account",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			bank, _ := cmd.Flags().GetString("bank")
			iban, _ := cmd.Flags().GetString("iban")

			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			account := &model.BankAccount{Name: args[0], Bank: bank, IBAN: iban}
			if err := store.CreateAccount(cmd.Context(), account); err != nil {
				return err
			}
			fmt.Printf("Created account %d: %s (%s)\n", account.ID, account.Name, account.Bank)
			return nil
		},
	}
	addCmd.Flags().String("bank", "", "bank identifier (ziraat, isbank, garanti)")
	addCmd.Flags().String("iban", "", "account IBAN")
	_ = addCmd.MarkFlagRequired("bank")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "List bank accounts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			accounts, err := store.ListAccounts(cmd.Context())
			if err != nil {
				return err
			}

			w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tBANK\tIBAN\tACTIVE")
			for _, account := range accounts {
				fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%t\n",
					account.ID, account.Name, account.Bank, account.IBAN, account.Active)
			}
			return w.Flush()
		},
	}

	deactivateCmd := &cobra.Command{
		Use:   "deactivate <id>",
		Short: "Deactivate a bank account",
		Long: `Deactivate a bank account. Its transactions are kept, but new
statements can no longer be ingested under it.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseID(args[0])
			if err != nil {
				return err
			}

			store, err := initStorage(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeactivateAccount(cmd.Context(), id); err != nil {
				return err
			}
			fmt.Printf("Deactivated account %d\n", id)
			return nil
		},
	}

	accountsCmd.AddCommand(addCmd, listCmd, deactivateCmd)
	rootCmd.AddCommand(accountsCmd)
}
