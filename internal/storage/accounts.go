package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ofisler/mutabakat/internal/common"
	"github.com/ofisler/mutabakat/internal/model"
)

// CreateAccount inserts a new bank account and fills in its generated ID.
func (s *SQLiteStorage) CreateAccount(ctx context.Context, account *model.BankAccount) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if account == nil {
		return fmt.Errorf("%w: account", ErrNilParameter)
	}
	if err := validateString(account.Name, "account.Name"); err != nil {
		return err
	}
	if err := validateString(account.Bank, "account.Bank"); err != nil {
		return err
	}

	// Empty IBANs go in as NULL so they don't trip the UNIQUE index.
	result, err := s.db.ExecContext(ctx, `
		INSERT INTO bank_accounts (name, bank, iban, is_active)
		VALUES (?, ?, ?, 1)
	`, account.Name, account.Bank, nullableString(account.IBAN))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("%w: iban %s", common.ErrDuplicateEntry, account.IBAN)
		}
		return fmt.Errorf("failed to insert account: %w", err)
	}

	account.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get account id: %w", err)
	}
	account.Active = true
	return nil
}

// GetAccount returns the account with the given ID.
func (s *SQLiteStorage) GetAccount(ctx context.Context, id int64) (*model.BankAccount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return getAccount(ctx, s.db, id)
}

func getAccount(ctx context.Context, q queryable, id int64) (*model.BankAccount, error) {
	var account model.BankAccount
	var iban sql.NullString
	err := q.QueryRowContext(ctx, `
		SELECT id, name, bank, iban, is_active, created_at
		FROM bank_accounts
		WHERE id = ?
	`, id).Scan(&account.ID, &account.Name, &account.Bank, &iban, &account.Active, &account.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: account %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	account.IBAN = iban.String
	return &account, nil
}

// ListAccounts returns all bank accounts, active first, newest last.
func (s *SQLiteStorage) ListAccounts(ctx context.Context) ([]model.BankAccount, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, bank, iban, is_active, created_at
		FROM bank_accounts
		ORDER BY is_active DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var accounts []model.BankAccount
	for rows.Next() {
		var account model.BankAccount
		var iban sql.NullString
		if err := rows.Scan(&account.ID, &account.Name, &account.Bank, &iban, &account.Active, &account.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		account.IBAN = iban.String
		accounts = append(accounts, account)
	}
	return accounts, rows.Err()
}

// DeactivateAccount marks an account inactive. Its transactions are kept.
func (s *SQLiteStorage) DeactivateAccount(ctx context.Context, id int64) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateID(id, "id"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `UPDATE bank_accounts SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to deactivate account: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deactivate result: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("%w: account %d", common.ErrNotFound, id)
	}
	return nil
}

// isUniqueViolation reports whether err is a SQLite UNIQUE constraint failure.
func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// nullableString converts "" to NULL for columns where empty means absent.
func nullableString(s string) any {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	return s
}
