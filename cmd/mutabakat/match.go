package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	matchCmd := &cobra.Command{
		Use:   "match <transaction-id> <customer-id>",
		Short: "Match a transaction to a customer",
		Long: `Match an unmatched incoming transaction to a customer, creating the
corresponding payment record. The payment and the transaction update commit
together.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			transactionID, err := parseID(args[0])
			if err != nil {
				return err
			}
			customerID, err := parseID(args[1])
			if err != nil {
				return err
			}

			svc, store, err := initService(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			paymentID, err := svc.ApplyMatch(cmd.Context(), transactionID, customerID)
			if err != nil {
				return err
			}
			fmt.Printf("Matched transaction %d to customer %d (payment %d)\n",
				transactionID, customerID, paymentID)
			return nil
		},
	}

	unmatchCmd := &cobra.Command{
		Use:   "unmatch <transaction-id>",
		Short: "Undo a transaction's match",
		Long:  `Undo a match, deleting the payment it created and returning the transaction to unmatched.`,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			transactionID, err := parseID(args[0])
			if err != nil {
				return err
			}

			svc, store, err := initService(cmd.Context())
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := svc.UndoMatch(cmd.Context(), transactionID); err != nil {
				return err
			}
			fmt.Printf("Unmatched transaction %d\n", transactionID)
			return nil
		},
	}

	rootCmd.AddCommand(matchCmd, unmatchCmd)
}
