package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/ofisler/mutabakat/internal/common"
	"github.com/ofisler/mutabakat/internal/parser"
)

func init() {
	ingestCmd := &cobra.Command{
		Use:   "ingest <files...>",
		Short: "Ingest bank statements into an account",
		Long: `Ingest bank statement files (xlsx, xls, CSV or OFX) into a bank account.
Rows are inserted as-is, without content-based dedup: lookalike rows are often
distinct real transactions. Ingesting the same file twice duplicates its rows.

Examples:
  # Single statement
  mutabakat ingest --account 1 --bank ziraat ~/Downloads/subat.xlsx

  # Everything a bank exported for the quarter
  mutabakat ingest --account 1 --bank isbank ~/Downloads/isbank_*.csv`,
		Args: cobra.MinimumNArgs(1),
		RunE: runIngest,
	}

	ingestCmd.Flags().Int64("account", 0, "bank account ID to ingest into")
	ingestCmd.Flags().String("bank", "", "statement format: "+strings.Join(parser.NewRegistry().Banks(), ", "))
	_ = ingestCmd.MarkFlagRequired("account")
	_ = ingestCmd.MarkFlagRequired("bank")

	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	accountID, _ := cmd.Flags().GetInt64("account")
	bank, _ := cmd.Flags().GetString("bank")

	strategy, err := parser.NewRegistry().ForBank(bank)
	if err != nil {
		return err
	}

	files, err := expandGlobs(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no files found to ingest")
	}

	svc, store, err := initService(cmd.Context())
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	// One batch tag per invocation so a whole run can be traced later.
	batch := uuid.NewString()
	common.LogInfo("Ingesting statements", common.Fields{
		"file_count": len(files),
		"bank":       strategy.BankName(),
		"batch":      batch,
	})

	bar := progressbar.Default(int64(len(files)), "ingesting")
	totalInserted, totalSkipped := 0, 0
	var failed []string

	for _, file := range files {
		drafts, parseErr := strategy.Parse(file)
		if parseErr != nil {
			common.LogError(parseErr, "Failed to parse statement", common.Fields{"file": file})
			failed = append(failed, file)
			_ = bar.Add(1)
			continue
		}

		sourceTag := fmt.Sprintf("%s:%s", batch, filepath.Base(file))
		result, ingestErr := svc.Ingest(cmd.Context(), accountID, drafts, sourceTag)
		if ingestErr != nil {
			return ingestErr
		}
		totalInserted += result.Inserted
		totalSkipped += result.Skipped
		common.LogDebug("Ingested statement file", common.Fields{
			"file":     filepath.Base(file),
			"inserted": result.Inserted,
			"skipped":  result.Skipped,
		})
		_ = bar.Add(1)
	}

	fmt.Printf("\nIngested %d transactions (%d unusable rows skipped) from %d files\n",
		totalInserted, totalSkipped, len(files)-len(failed))
	if len(failed) > 0 {
		fmt.Fprintf(os.Stderr, "Failed to parse %d files: %s\n", len(failed), strings.Join(failed, ", "))
		return fmt.Errorf("%d files could not be parsed", len(failed))
	}
	return nil
}

// expandGlobs resolves glob patterns, falling back to literal paths that
// exist on disk.
func expandGlobs(patterns []string) ([]string, error) {
	var files []string
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, statErr := os.Stat(pattern); statErr == nil {
				files = append(files, pattern)
			} else {
				slog.Warn("No files found matching pattern", "pattern", pattern)
			}
			continue
		}
		files = append(files, matches...)
	}
	return files, nil
}
