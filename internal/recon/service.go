// Package recon orchestrates statement ingestion and customer matching on
// top of the storage layer.
package recon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ofisler/mutabakat/internal/common"
	"github.com/ofisler/mutabakat/internal/match"
	"github.com/ofisler/mutabakat/internal/model"
	"github.com/ofisler/mutabakat/internal/storage"
)

// Storage is the persistence surface the service needs.
type Storage interface {
	GetAccount(ctx context.Context, id int64) (*model.BankAccount, error)
	ListCustomers(ctx context.Context) ([]model.Customer, error)
	GetTransaction(ctx context.Context, id int64) (*model.BankTransaction, error)
	ListTransactions(ctx context.Context, opts storage.ListTransactionsOptions) ([]model.BankTransaction, error)
	InsertTransactions(ctx context.Context, accountID int64, drafts []model.TransactionDraft, sourceFile string) (int, error)
	MatchTransaction(ctx context.Context, transactionID, customerID int64) (int64, error)
	UnmatchTransaction(ctx context.Context, transactionID int64) error
}

// Service is the reconciliation engine's operation layer.
type Service struct {
	storage Storage
}

// New creates a reconciliation service.
func New(store Storage) *Service {
	return &Service{storage: store}
}

// IngestResult reports what a single statement contributed. Skipped counts
// rows dropped during sanitization, never suspected duplicates.
type IngestResult struct {
	Inserted int
	Skipped  int
}

// Ingest persists parsed statement rows under an account. Inactive accounts
// reject ingestion so statements can't land on a closed account by accident.
// Rows are inserted at-least-once with no content-based dedup: lookalike
// rows are often distinct real transactions, so keeping them wins over
// silently dropping one. Re-ingesting a file therefore duplicates its rows.
func (s *Service) Ingest(ctx context.Context, accountID int64, drafts []model.TransactionDraft, sourceFile string) (IngestResult, error) {
	account, err := s.storage.GetAccount(ctx, accountID)
	if err != nil {
		return IngestResult{}, err
	}
	if !account.Active {
		return IngestResult{}, common.NewUserError(
			fmt.Sprintf("account %q is inactive, reactivate it before ingesting", account.Name),
			common.ErrAccountInactive)
	}
	usable, dropped := sanitizeDrafts(drafts)
	if len(usable) == 0 {
		return IngestResult{Skipped: dropped}, nil
	}

	inserted, err := s.storage.InsertTransactions(ctx, accountID, usable, sourceFile)
	if err != nil {
		return IngestResult{}, err
	}

	result := IngestResult{Inserted: inserted, Skipped: dropped}
	slog.Info("Ingested statement",
		"account", account.Name,
		"source", sourceFile,
		"inserted", result.Inserted,
		"skipped", result.Skipped)
	return result, nil
}

// sanitizeDrafts drops rows that can't become transactions (zero date or
// zero amount) and defaults a missing direction to incoming; NewDraft has
// already folded negative amounts into outgoing at parse time.
func sanitizeDrafts(drafts []model.TransactionDraft) ([]model.TransactionDraft, int) {
	usable := make([]model.TransactionDraft, 0, len(drafts))
	dropped := 0
	for _, draft := range drafts {
		if draft.Date.IsZero() || draft.Amount.IsZero() || draft.Amount.IsNegative() {
			dropped++
			continue
		}
		if draft.Direction != model.DirectionIncoming && draft.Direction != model.DirectionOutgoing {
			draft.Direction = model.DirectionIncoming
		}
		usable = append(usable, draft)
	}
	return usable, dropped
}

// ApplyMatch links a transaction to a customer, creating the payment. The
// storage layer enforces state guards atomically; this wraps the common
// failures in operator-friendly messages.
func (s *Service) ApplyMatch(ctx context.Context, transactionID, customerID int64) (int64, error) {
	paymentID, err := s.storage.MatchTransaction(ctx, transactionID, customerID)
	switch {
	case err == nil:
		return paymentID, nil
	case isMatchStateError(err):
		return 0, common.NewUserError("transaction cannot be matched in its current state", err)
	default:
		return 0, err
	}
}

// UndoMatch reverses a match, deleting the payment it created.
func (s *Service) UndoMatch(ctx context.Context, transactionID int64) error {
	err := s.storage.UnmatchTransaction(ctx, transactionID)
	if err != nil && isMatchStateError(err) {
		return common.NewUserError("transaction is not matched", err)
	}
	return err
}

func isMatchStateError(err error) bool {
	for _, target := range []error{
		common.ErrAlreadyMatched,
		common.ErrNotMatched,
		common.ErrNotReceivable,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// AutoMatchResult summarizes one automatic matching pass.
type AutoMatchResult struct {
	// Suggestions are candidates below the auto-accept threshold, plus
	// everything scored when running dry.
	Suggestions []match.Candidate
	Examined    int
	Matched     int
	Failed      int
}

// AutoMatch scores all unmatched incoming transactions against the customer
// roster and applies every candidate above the auto-accept threshold. A nil
// accountID covers all accounts. With dryRun set nothing is written and all
// suggestion-grade candidates are returned for review.
//
// Per-transaction failures don't abort the pass; they are counted and the
// remaining candidates still apply.
func (s *Service) AutoMatch(ctx context.Context, accountID *int64, dryRun bool) (AutoMatchResult, error) {
	status := model.StatusUnmatched
	direction := model.DirectionIncoming
	transactions, err := s.storage.ListTransactions(ctx, storage.ListTransactionsOptions{
		AccountID: accountID,
		Status:    &status,
		Direction: &direction,
	})
	if err != nil {
		return AutoMatchResult{}, err
	}

	customers, err := s.storage.ListCustomers(ctx)
	if err != nil {
		return AutoMatchResult{}, err
	}

	engine := match.NewEngine(customers)
	candidates := engine.Candidates(transactions)

	result := AutoMatchResult{Examined: len(transactions)}
	for _, candidate := range candidates {
		if candidate.Customer == nil {
			continue
		}
		if dryRun || !candidate.AutoAccept() {
			result.Suggestions = append(result.Suggestions, candidate)
			continue
		}

		if _, err := s.storage.MatchTransaction(ctx, candidate.Transaction.ID, candidate.Customer.ID); err != nil {
			result.Failed++
			slog.Warn("Auto-match failed for transaction",
				"transaction_id", candidate.Transaction.ID,
				"customer_id", candidate.Customer.ID,
				"error", err)
			continue
		}
		result.Matched++
	}

	slog.Info("Auto-match pass complete",
		"examined", result.Examined,
		"matched", result.Matched,
		"suggested", len(result.Suggestions),
		"failed", result.Failed,
		"dry_run", dryRun)
	return result, nil
}
