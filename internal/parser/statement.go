package parser

import (
	"log/slog"
	"sort"
	"strings"

	"github.com/ofisler/mutabakat/internal/model"
	"github.com/ofisler/mutabakat/internal/normalize"
	"github.com/shopspring/decimal"
)

// field is a canonical statement column.
type field int

const (
	fieldDate field = iota
	fieldDescription
	fieldCredit
	fieldDebit
	fieldBalance
)

// dateTokens mark a header row: an offset qualifies as the header when one
// of its folded column names contains one of these.
var dateTokens = []string{"TARIH", "DATE"}

// baseAliases are the folded column names shared by most exports. Per-bank
// strategies extend this set.
var baseAliases = map[string]field{
	"TARIH":        fieldDate,
	"ISLEM TARIHI": fieldDate,
	"DATE":         fieldDate,
	"ACIKLAMA":     fieldDescription,
	"ISLEM":        fieldDescription,
	"DESCRIPTION":  fieldDescription,
	"ALACAK":       fieldCredit,
	"YATAN":        fieldCredit,
	"CREDIT":       fieldCredit,
	"BORC":         fieldDebit,
	"CEKILEN":      fieldDebit,
	"DEBIT":        fieldDebit,
	"BAKIYE":       fieldBalance,
	"BALANCE":      fieldBalance,
}

// statementStrategy is a table-driven spreadsheet/CSV strategy. Banks differ
// in column naming and in how deep the header row can sit, not in structure.
type statementStrategy struct {
	aliases      map[string]field
	ordered      []aliasEntry
	bank         string
	headerWindow int
}

// aliasEntry is one alias in substring-match precedence order.
type aliasEntry struct {
	name string
	f    field
}

func newStatementStrategy(bank string, extraAliases map[string]string, headerWindow int) *statementStrategy {
	aliases := make(map[string]field, len(baseAliases)+len(extraAliases))
	for name, f := range baseAliases {
		aliases[name] = f
	}
	for name, canonical := range extraAliases {
		if f, ok := baseAliases[canonical]; ok {
			aliases[normalize.Fold(name)] = f
		}
	}

	// Substring fallback precedence: longest alias first, so compound names
	// like "ISLEM TARIHI" always beat their fragments ("ISLEM", "TARIH")
	// regardless of map iteration order. Ties break lexicographically to
	// keep the order stable run to run.
	ordered := make([]aliasEntry, 0, len(aliases))
	for name, f := range aliases {
		ordered = append(ordered, aliasEntry{name: name, f: f})
	}
	sort.Slice(ordered, func(i, j int) bool {
		if len(ordered[i].name) != len(ordered[j].name) {
			return len(ordered[i].name) > len(ordered[j].name)
		}
		return ordered[i].name < ordered[j].name
	})

	return &statementStrategy{
		bank:         bank,
		aliases:      aliases,
		ordered:      ordered,
		headerWindow: headerWindow,
	}
}

func (s *statementStrategy) BankName() string {
	return s.bank
}

// Parse implements Strategy.
func (s *statementStrategy) Parse(path string) ([]model.TransactionDraft, error) {
	rows, err := loadTable(path)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, &ParseError{File: path, Msg: "file is empty"}
	}

	headerOffset := s.findHeaderOffset(rows)
	cols := s.mapColumns(rows[headerOffset])
	if cols[fieldDate] < 0 {
		return nil, &ParseError{File: path, Msg: "no date column found in header"}
	}

	var drafts []model.TransactionDraft
	skipped := 0
	for _, row := range rows[headerOffset+1:] {
		draft, ok := s.extractRow(row, cols)
		if !ok {
			skipped++
			continue
		}
		drafts = append(drafts, draft)
	}

	slog.Debug("parsed statement file",
		"bank", s.bank,
		"file", path,
		"header_offset", headerOffset,
		"drafts", len(drafts),
		"rows_skipped", skipped)

	return drafts, nil
}

// findHeaderOffset probes an ascending window of candidate header offsets and
// accepts the first whose folded column names contain a date-like token. This
// is a heuristic: bank exports put preamble junk above the header at varying
// depths. When no offset qualifies the last attempted one is used as a best
// effort.
func (s *statementStrategy) findHeaderOffset(rows [][]string) int {
	window := s.headerWindow
	if window >= len(rows) {
		window = len(rows) - 1
	}

	for offset := 0; offset <= window; offset++ {
		for _, cell := range rows[offset] {
			folded := normalize.Fold(cell)
			for _, token := range dateTokens {
				if folded == token || containsToken(folded, token) {
					return offset
				}
			}
		}
	}
	return window
}

func containsToken(folded, token string) bool {
	// Substring match so "ISLEM TARIHI" qualifies for "TARIH".
	return strings.Contains(folded, token)
}

// mapColumns resolves folded header names to canonical fields. The first
// alias hit per field wins; missing optional columns stay -1 and default to
// empty/zero during extraction.
func (s *statementStrategy) mapColumns(header []string) map[field]int {
	cols := map[field]int{
		fieldDate:        -1,
		fieldDescription: -1,
		fieldCredit:      -1,
		fieldDebit:       -1,
		fieldBalance:     -1,
	}

	for i, cell := range header {
		folded := normalize.Fold(cell)
		f, ok := s.aliases[folded]
		if !ok {
			// Fall back to substring matching for decorated headers like
			// "İşlem Tarihi ve Saati", in fixed precedence order.
			for _, entry := range s.ordered {
				if containsToken(folded, entry.name) {
					f, ok = entry.f, true
					break
				}
			}
		}
		if ok && cols[f] < 0 {
			cols[f] = i
		}
	}
	return cols
}

// extractRow converts one data row into a draft. Returns false for rows that
// must be skipped: unparseable or pre-cutoff dates, zero amounts.
func (s *statementStrategy) extractRow(row []string, cols map[field]int) (model.TransactionDraft, bool) {
	cell := func(f field) string {
		idx := cols[f]
		if idx < 0 || idx >= len(row) {
			return ""
		}
		return row[idx]
	}

	date, err := normalize.ParseDate(cell(fieldDate))
	if err != nil {
		return model.TransactionDraft{}, false
	}
	if date.Before(cutoffDate) {
		return model.TransactionDraft{}, false
	}

	credit := normalize.ParseAmount(cell(fieldCredit))
	debit := normalize.ParseAmount(cell(fieldDebit))

	var amount decimal.Decimal
	var direction model.Direction
	switch {
	case credit.IsPositive():
		amount, direction = credit, model.DirectionIncoming
	case credit.IsNegative():
		// Single signed-amount exports map the column to credit.
		amount, direction = credit, model.DirectionOutgoing
	case !debit.IsZero():
		amount, direction = debit.Abs(), model.DirectionOutgoing
	default:
		return model.TransactionDraft{}, false
	}

	description := cell(fieldDescription)
	draft := model.NewDraft(date, description, "", amount, direction)
	draft.Balance = normalize.ParseAmount(cell(fieldBalance))

	if draft.Direction == model.DirectionIncoming {
		draft.Sender = ExtractSender(description)
		draft.Reference = ExtractReference(description)
	}

	return draft, true
}
