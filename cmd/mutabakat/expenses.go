package main

import (
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func init() {
	expensesCmd := &cobra.Command{
		Use:   "expenses",
		Short: "Summarize outgoing transactions by month",
		RunE:  runExpenses,
	}

	expensesCmd.Flags().Int64("account", 0, "limit to one bank account")
	expensesCmd.Flags().Int("year", time.Now().Year(), "calendar year to summarize")
	expensesCmd.Flags().Int("month", 0, "limit to one month (1-12)")

	rootCmd.AddCommand(expensesCmd)
}

func runExpenses(cmd *cobra.Command, _ []string) error {
	accountFlag, _ := cmd.Flags().GetInt64("account")
	year, _ := cmd.Flags().GetInt("year")
	month, _ := cmd.Flags().GetInt("month")
	if month < 0 || month > 12 {
		return fmt.Errorf("invalid month %d", month)
	}

	var accountID *int64
	if accountFlag > 0 {
		accountID = &accountFlag
	}

	store, err := initStorage(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	summary, err := store.ExpenseSummary(cmd.Context(), accountID, year)
	if err != nil {
		return err
	}
	if month > 0 {
		filtered := summary[:0]
		for _, row := range summary {
			if int(row.Month) == month {
				filtered = append(filtered, row)
			}
		}
		summary = filtered
	}
	if len(summary) == 0 {
		fmt.Printf("No outgoing transactions in %d\n", year)
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "MONTH\tCOUNT\tTOTAL")
	for _, row := range summary {
		fmt.Fprintf(w, "%d-%02d\t%d\t%s\n", row.Year, int(row.Month), row.Count, row.Total.StringFixed(2))
	}
	return w.Flush()
}
