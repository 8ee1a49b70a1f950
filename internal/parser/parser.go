// Package parser turns heterogeneous bank statement exports into canonical
// transaction drafts. One strategy exists per supported bank; all expose the
// same Parse contract and are looked up through an ordinary registry map.
package parser

import (
	"fmt"
	"sort"
	"time"

	"github.com/ofisler/mutabakat/internal/model"
)

// Strategy parses one bank's statement export into transaction drafts.
type Strategy interface {
	// Parse reads the file at path and returns the usable rows as drafts.
	// A malformed file yields a *ParseError; a malformed individual row is
	// skipped, partial success being preferred over all-or-nothing.
	Parse(path string) ([]model.TransactionDraft, error)
	// BankName returns the registry key for this strategy.
	BankName() string
}

// ParseError indicates a whole file could not be read: unknown layout,
// undecodable encoding, no parseable header. Individual bad rows never
// produce it.
type ParseError struct {
	Err  error
	File string
	Msg  string
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.File, e.Msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.File, e.Msg)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

// cutoffDate is the business boundary below which statement rows are not
// operationally relevant and are dropped during parsing.
var cutoffDate = time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)

// Registry maps bank names to their parsing strategies.
type Registry map[string]Strategy

// NewRegistry returns the registry of all supported banks.
func NewRegistry() Registry {
	strategies := []Strategy{
		NewZiraat(),
		NewIsbank(),
		NewGaranti(),
		NewOFX(),
	}

	r := make(Registry, len(strategies))
	for _, s := range strategies {
		r[s.BankName()] = s
	}
	return r
}

// ForBank looks up the strategy for a bank name.
func (r Registry) ForBank(name string) (Strategy, error) {
	s, ok := r[name]
	if !ok {
		return nil, fmt.Errorf("unsupported bank %q (supported: %v)", name, r.Banks())
	}
	return s, nil
}

// Banks returns the sorted registry keys.
func (r Registry) Banks() []string {
	names := make([]string, 0, len(r))
	for name := range r {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
