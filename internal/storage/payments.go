package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/ofisler/mutabakat/internal/common"
	"github.com/ofisler/mutabakat/internal/model"
)

// GetPayment returns the payment with the given ID.
func (s *SQLiteStorage) GetPayment(ctx context.Context, id int64) (*model.Payment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}

	var payment model.Payment
	err := s.db.QueryRowContext(ctx, `
		SELECT id, customer_id, date, amount, source, note, created_at
		FROM payments
		WHERE id = ?
	`, id).Scan(&payment.ID, &payment.CustomerID, &payment.Date, &payment.Amount,
		&payment.Source, &payment.Note, &payment.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: payment %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get payment: %w", err)
	}
	return &payment, nil
}

// ListPaymentsByCustomer returns a customer's payments, oldest first.
func (s *SQLiteStorage) ListPaymentsByCustomer(ctx context.Context, customerID int64) ([]model.Payment, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(customerID, "customerID"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, customer_id, date, amount, source, note, created_at
		FROM payments
		WHERE customer_id = ?
		ORDER BY date, id
	`, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var payments []model.Payment
	for rows.Next() {
		var payment model.Payment
		if err := rows.Scan(&payment.ID, &payment.CustomerID, &payment.Date, &payment.Amount,
			&payment.Source, &payment.Note, &payment.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, payment)
	}
	return payments, rows.Err()
}

// MatchTransaction links an unmatched incoming transaction to a customer,
// creating the corresponding payment. The payment insert and the transaction
// update commit together or not at all. Returns the new payment's ID.
//
// The transaction's state is re-checked inside the database transaction, so
// concurrent callers cannot double-match a row.
func (s *SQLiteStorage) MatchTransaction(ctx context.Context, transactionID, customerID int64) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateID(transactionID, "transactionID"); err != nil {
		return 0, err
	}
	if err := validateID(customerID, "customerID"); err != nil {
		return 0, err
	}

	var paymentID int64
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		txn, err := getTransaction(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if txn.IsMatched() {
			return fmt.Errorf("%w: transaction %d", common.ErrAlreadyMatched, transactionID)
		}
		if !txn.Receivable() {
			return fmt.Errorf("%w: transaction %d", common.ErrNotReceivable, transactionID)
		}
		if _, err := getCustomer(ctx, tx, customerID); err != nil {
			return err
		}

		note := txn.Description
		if len(note) > 200 {
			note = note[:200]
		}
		result, err := tx.ExecContext(ctx, `
			INSERT INTO payments (customer_id, date, amount, source, note)
			VALUES (?, ?, ?, ?, ?)
		`, customerID, txn.Date, txn.Amount, model.PaymentSourceBank, note)
		if err != nil {
			return fmt.Errorf("failed to insert payment: %w", err)
		}
		paymentID, err = result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get payment id: %w", err)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE bank_transactions
			SET status = ?, customer_id = ?, payment_id = ?
			WHERE id = ?
		`, string(model.StatusMatched), customerID, paymentID, transactionID)
		if err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	slog.Debug("Matched transaction",
		"transaction_id", transactionID,
		"customer_id", customerID,
		"payment_id", paymentID)
	return paymentID, nil
}

// UnmatchTransaction reverses a match: the bank-sourced payment is deleted
// and the transaction returns to unmatched, atomically.
func (s *SQLiteStorage) UnmatchTransaction(ctx context.Context, transactionID int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(transactionID, "transactionID"); err != nil {
		return err
	}

	err := s.withTx(ctx, func(tx *sql.Tx) error {
		txn, err := getTransaction(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if !txn.IsMatched() {
			return fmt.Errorf("%w: transaction %d", common.ErrNotMatched, transactionID)
		}

		// Only payments this engine created are deletable.
		result, err := tx.ExecContext(ctx, `
			DELETE FROM payments WHERE id = ? AND source = ?
		`, *txn.PaymentID, model.PaymentSourceBank)
		if err != nil {
			return fmt.Errorf("failed to delete payment: %w", err)
		}
		affected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to check delete result: %w", err)
		}
		if affected == 0 {
			return fmt.Errorf("%w: payment %d", common.ErrNotFound, *txn.PaymentID)
		}

		_, err = tx.ExecContext(ctx, `
			UPDATE bank_transactions
			SET status = ?, customer_id = NULL, payment_id = NULL
			WHERE id = ?
		`, string(model.StatusUnmatched), transactionID)
		if err != nil {
			return fmt.Errorf("failed to update transaction: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	slog.Debug("Unmatched transaction", "transaction_id", transactionID)
	return nil
}
