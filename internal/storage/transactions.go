package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/ofisler/mutabakat/internal/common"
	"github.com/ofisler/mutabakat/internal/model"
)

// InsertTransactions bulk-inserts parsed statement rows under an account and
// returns the number inserted. Inserts are at-least-once: no content-based
// dedup happens here, because two real transactions can be identical at this
// granularity (two tenants paying the same rent on the same day). Keeping a
// real transaction always wins over dropping a suspected duplicate.
func (s *SQLiteStorage) InsertTransactions(ctx context.Context, accountID int64, drafts []model.TransactionDraft, sourceFile string) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateID(accountID, "accountID"); err != nil {
		return 0, err
	}
	for i := range drafts {
		if err := validateDraft(&drafts[i]); err != nil {
			return 0, fmt.Errorf("draft at index %d: %w", i, err)
		}
	}

	inserted := 0
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		stmt, err := tx.PrepareContext(ctx, `
			INSERT INTO bank_transactions (
				account_id, date, description, sender, reference,
				amount, direction, status, source_file
			) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		`)
		if err != nil {
			return fmt.Errorf("failed to prepare statement: %w", err)
		}
		defer func() { _ = stmt.Close() }()

		for _, draft := range drafts {
			_, execErr := stmt.ExecContext(ctx,
				accountID,
				draft.Date,
				draft.Description,
				draft.Sender,
				draft.Reference,
				draft.Amount,
				string(draft.Direction),
				string(model.StatusUnmatched),
				sourceFile,
			)
			if execErr != nil {
				return fmt.Errorf("failed to insert transaction: %w", execErr)
			}
			inserted++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Debug("Inserted bank transactions",
		"account_id", accountID,
		"inserted", inserted,
		"source", sourceFile)
	return inserted, nil
}

// GetTransaction returns the transaction with the given ID, with the matched
// customer's name resolved when present.
func (s *SQLiteStorage) GetTransaction(ctx context.Context, id int64) (*model.BankTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return getTransaction(ctx, s.db, id)
}

const transactionColumns = `
	t.id, t.account_id, t.date, t.description, t.sender, t.reference,
	t.amount, t.direction, t.status, t.customer_id, t.payment_id,
	t.source_file, t.imported_at, COALESCE(c.name, '')
`

func getTransaction(ctx context.Context, q queryable, id int64) (*model.BankTransaction, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+transactionColumns+`
		FROM bank_transactions t
		LEFT JOIN customers c ON c.id = t.customer_id
		WHERE t.id = ?
	`, id)

	txn, err := scanTransaction(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: transaction %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get transaction: %w", err)
	}
	return txn, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTransaction(row rowScanner) (*model.BankTransaction, error) {
	var txn model.BankTransaction
	var direction, status string
	var customerID, paymentID sql.NullInt64
	err := row.Scan(
		&txn.ID,
		&txn.AccountID,
		&txn.Date,
		&txn.Description,
		&txn.Sender,
		&txn.Reference,
		&txn.Amount,
		&direction,
		&status,
		&customerID,
		&paymentID,
		&txn.SourceFile,
		&txn.ImportedAt,
		&txn.CustomerName,
	)
	if err != nil {
		return nil, err
	}
	txn.Direction = model.Direction(direction)
	txn.Status = model.Status(status)
	if customerID.Valid {
		txn.CustomerID = &customerID.Int64
	}
	if paymentID.Valid {
		txn.PaymentID = &paymentID.Int64
	}
	return &txn, nil
}

// ListTransactionsOptions filters ListTransactions. Nil fields mean no
// filter on that dimension.
type ListTransactionsOptions struct {
	AccountID *int64
	Status    *model.Status
	Direction *model.Direction
	From      *time.Time
	To        *time.Time
}

// ListTransactions returns transactions matching opts, oldest first. The
// matched customer's name is resolved on read.
func (s *SQLiteStorage) ListTransactions(ctx context.Context, opts ListTransactionsOptions) ([]model.BankTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	query := `
		SELECT ` + transactionColumns + `
		FROM bank_transactions t
		LEFT JOIN customers c ON c.id = t.customer_id
		WHERE 1=1
	`
	args := []any{}
	if opts.AccountID != nil {
		query += " AND t.account_id = ?"
		args = append(args, *opts.AccountID)
	}
	if opts.Status != nil {
		query += " AND t.status = ?"
		args = append(args, string(*opts.Status))
	}
	if opts.Direction != nil {
		query += " AND t.direction = ?"
		args = append(args, string(*opts.Direction))
	}
	if opts.From != nil {
		query += " AND t.date >= ?"
		args = append(args, *opts.From)
	}
	if opts.To != nil {
		query += " AND t.date < ?"
		args = append(args, *opts.To)
	}
	query += " ORDER BY t.date, t.id"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var transactions []model.BankTransaction
	for rows.Next() {
		txn, scanErr := scanTransaction(rows)
		if scanErr != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", scanErr)
		}
		transactions = append(transactions, *txn)
	}
	return transactions, rows.Err()
}

// ExpenseSummaryRow is one month of outgoing totals for an account.
type ExpenseSummaryRow struct {
	Month time.Month
	Year  int
	Total decimal.Decimal
	Count int
}

// ExpenseSummary aggregates outgoing transactions by calendar month. A nil
// accountID covers all accounts. Sums are computed in Go so decimal amounts
// never pass through SQLite float arithmetic.
func (s *SQLiteStorage) ExpenseSummary(ctx context.Context, accountID *int64, year int) ([]ExpenseSummaryRow, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	direction := model.DirectionOutgoing
	opts := ListTransactionsOptions{
		AccountID: accountID,
		Direction: &direction,
	}
	if year > 0 {
		from := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
		to := from.AddDate(1, 0, 0)
		opts.From = &from
		opts.To = &to
	}

	transactions, err := s.ListTransactions(ctx, opts)
	if err != nil {
		return nil, err
	}

	var summary []ExpenseSummaryRow
	for _, txn := range transactions {
		y, m := txn.Date.Year(), txn.Date.Month()
		if len(summary) == 0 || summary[len(summary)-1].Year != y || summary[len(summary)-1].Month != m {
			summary = append(summary, ExpenseSummaryRow{Year: y, Month: m, Total: decimal.Zero})
		}
		last := &summary[len(summary)-1]
		last.Total = last.Total.Add(txn.Amount)
		last.Count++
	}
	return summary, nil
}
