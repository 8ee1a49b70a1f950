package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ofisler/mutabakat/internal/common"
	"github.com/ofisler/mutabakat/internal/model"
)

// CreateCustomer inserts a customer and fills in its generated ID.
func (s *SQLiteStorage) CreateCustomer(ctx context.Context, customer *model.Customer) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if customer == nil {
		return fmt.Errorf("%w: customer", ErrNilParameter)
	}
	if err := validateString(customer.Name, "customer.Name"); err != nil {
		return err
	}

	result, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (name, tax_id, phone)
		VALUES (?, ?, ?)
	`, customer.Name, customer.TaxID, customer.Phone)
	if err != nil {
		return fmt.Errorf("failed to insert customer: %w", err)
	}

	customer.ID, err = result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get customer id: %w", err)
	}
	return nil
}

// GetCustomer returns the customer with the given ID.
func (s *SQLiteStorage) GetCustomer(ctx context.Context, id int64) (*model.Customer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateID(id, "id"); err != nil {
		return nil, err
	}
	return getCustomer(ctx, s.db, id)
}

func getCustomer(ctx context.Context, q queryable, id int64) (*model.Customer, error) {
	var customer model.Customer
	err := q.QueryRowContext(ctx, `
		SELECT id, name, tax_id, phone, created_at
		FROM customers
		WHERE id = ?
	`, id).Scan(&customer.ID, &customer.Name, &customer.TaxID, &customer.Phone, &customer.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: customer %d", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return &customer, nil
}

// ListCustomers returns the full roster ordered by ID.
func (s *SQLiteStorage) ListCustomers(ctx context.Context) ([]model.Customer, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, tax_id, phone, created_at
		FROM customers
		ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list customers: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var customers []model.Customer
	for rows.Next() {
		var customer model.Customer
		if err := rows.Scan(&customer.ID, &customer.Name, &customer.TaxID, &customer.Phone, &customer.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan customer: %w", err)
		}
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}
