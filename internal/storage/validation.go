// Package storage provides the SQLite persistence layer for the
// reconciliation engine.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ofisler/mutabakat/internal/model"
)

// Validation errors.
var (
	ErrNilContext   = errors.New("context cannot be nil")
	ErrEmptyString  = errors.New("string parameter cannot be empty")
	ErrNilParameter = errors.New("parameter cannot be nil")
	ErrInvalidID    = errors.New("id must be positive")
	ErrInvalidDraft = errors.New("invalid transaction draft")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateID ensures a database identifier is positive.
func validateID(id int64, paramName string) error {
	if id <= 0 {
		return fmt.Errorf("%w: %s", ErrInvalidID, paramName)
	}
	return nil
}

// validateDraft validates a single parsed statement row before insert.
func validateDraft(draft *model.TransactionDraft) error {
	if draft == nil {
		return fmt.Errorf("%w: draft", ErrNilParameter)
	}
	if draft.Date.IsZero() {
		return fmt.Errorf("%w: missing date", ErrInvalidDraft)
	}
	if draft.Direction != model.DirectionIncoming && draft.Direction != model.DirectionOutgoing {
		return fmt.Errorf("%w: direction %q", ErrInvalidDraft, draft.Direction)
	}
	if draft.Amount.IsNegative() {
		return fmt.Errorf("%w: negative amount", ErrInvalidDraft)
	}
	return nil
}
