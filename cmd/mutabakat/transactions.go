package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ofisler/mutabakat/internal/model"
	"github.com/ofisler/mutabakat/internal/storage"
)

func init() {
	transactionsCmd := &cobra.Command{
		Use:   "transactions",
		Short: "List bank transactions",
		RunE:  runTransactions,
	}

	transactionsCmd.Flags().Int64("account", 0, "filter by bank account ID")
	transactionsCmd.Flags().String("status", "", "filter by status (unmatched, matched)")

	rootCmd.AddCommand(transactionsCmd)
}

func runTransactions(cmd *cobra.Command, _ []string) error {
	accountID, _ := cmd.Flags().GetInt64("account")
	statusFlag, _ := cmd.Flags().GetString("status")

	var opts storage.ListTransactionsOptions
	if accountID > 0 {
		opts.AccountID = &accountID
	}
	if statusFlag != "" {
		status := model.Status(statusFlag)
		if status != model.StatusUnmatched && status != model.StatusMatched {
			return fmt.Errorf("invalid status %q", statusFlag)
		}
		opts.Status = &status
	}

	store, err := initStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	transactions, err := store.ListTransactions(cmd.Context(), opts)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tAMOUNT\tDIR\tSTATUS\tCUSTOMER\tDESCRIPTION")
	for _, txn := range transactions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\t%s\t%s\n",
			txn.ID,
			txn.Date.Format("2006-01-02"),
			txn.Amount.StringFixed(2),
			txn.Direction,
			txn.Status,
			txn.CustomerName,
			truncate(txn.Description, 60))
	}
	return w.Flush()
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}
