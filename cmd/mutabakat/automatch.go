package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/ofisler/mutabakat/internal/match"
)

func init() {
	automatchCmd := &cobra.Command{
		Use:   "automatch",
		Short: "Automatically match incoming transactions to customers",
		Long: `Score all unmatched incoming transactions against the customer roster.
Confident candidates are matched immediately; weaker ones are printed as
suggestions for manual review.`,
		RunE: runAutoMatch,
	}

	automatchCmd.Flags().Int64("account", 0, "limit the pass to one bank account")
	automatchCmd.Flags().BoolP("dry-run", "d", false, "score and report without writing anything")

	rootCmd.AddCommand(automatchCmd)
}

func runAutoMatch(cmd *cobra.Command, _ []string) error {
	accountFlag, _ := cmd.Flags().GetInt64("account")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	var accountID *int64
	if accountFlag > 0 {
		accountID = &accountFlag
	}

	svc, store, err := initService(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	result, err := svc.AutoMatch(cmd.Context(), accountID, dryRun)
	if err != nil {
		return err
	}

	fmt.Printf("Examined %d transactions: %d matched, %d suggested, %d failed\n",
		result.Examined, result.Matched, len(result.Suggestions), result.Failed)

	if len(result.Suggestions) > 0 {
		printSuggestions(result.Suggestions)
	}
	return nil
}

func printSuggestions(suggestions []match.Candidate) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "\nTXN\tDATE\tAMOUNT\tSCORE\tCUSTOMER\tDESCRIPTION")
	for _, s := range suggestions {
		fmt.Fprintf(w, "%d\t%s\t%s\t%d\t%s\t%s\n",
			s.Transaction.ID,
			s.Transaction.Date.Format("2006-01-02"),
			s.Transaction.Amount.StringFixed(2),
			s.Score,
			s.Customer.Name,
			truncate(s.Transaction.Description, 50))
	}
	_ = w.Flush()
	fmt.Println("\nApply a suggestion with: mutabakat match <transaction-id> <customer-id>")
}
