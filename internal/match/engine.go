// Package match scores unmatched bank transactions against the customer
// roster and proposes the best candidate for each.
package match

import (
	"strings"

	"github.com/ofisler/mutabakat/internal/model"
	"github.com/ofisler/mutabakat/internal/normalize"
)

// Confidence thresholds. Candidates at or above ScoreAuto are applied by the
// automatic reconciliation pass; the ScoreSuggest..ScoreAuto-1 band is only
// surfaced for operator confirmation, never silently applied.
const (
	ScoreSuggest = 40
	ScoreAuto    = 75
)

// Scores contributed by the independent matching signals. Each signal
// contributes at most once per customer.
const (
	scoreExactName  = 90
	scoreAllTokens  = 75
	scoreMostTokens = 40
	scoreTaxID      = 95
	scorePhone      = 70
)

// minTaxIDLen guards against short tax-id fragments matching digit noise.
const minTaxIDLen = 10

// Candidate is the scoring result for one transaction.
type Candidate struct {
	Transaction model.BankTransaction
	// Customer is nil when the transaction is outgoing or nothing in the
	// roster reached the suggestion threshold.
	Customer *model.Customer
	Score    int
}

// AutoAccept reports whether the candidate is confident enough to apply
// without operator confirmation.
func (c Candidate) AutoAccept() bool {
	return c.Customer != nil && c.Score >= ScoreAuto
}

// Engine scores transactions against a customer roster. The roster is folded
// once at construction; build a new Engine when the roster changes.
type Engine struct {
	customers []scoredCustomer
}

type scoredCustomer struct {
	customer   model.Customer
	foldedName string
	nameTokens []string
	taxID      string
	phoneTail  string
}

// NewEngine builds an engine over the given roster.
func NewEngine(customers []model.Customer) *Engine {
	e := &Engine{customers: make([]scoredCustomer, 0, len(customers))}
	for _, c := range customers {
		sc := scoredCustomer{
			customer:   c,
			foldedName: normalize.Fold(c.Name),
			taxID:      strings.TrimSpace(c.TaxID),
		}
		for _, tok := range strings.Fields(sc.foldedName) {
			tok = strings.Trim(tok, ".")
			if len(tok) > 2 {
				sc.nameTokens = append(sc.nameTokens, tok)
			}
		}
		if digits := normalize.Digits(c.Phone); len(digits) >= 10 {
			sc.phoneTail = digits[len(digits)-10:]
		} else if digits != "" {
			sc.phoneTail = digits
		}
		e.customers = append(e.customers, sc)
	}
	return e
}

// Candidates scores each transaction against the whole roster. Outgoing
// transactions are expenses, not receivables, and come back with a nil
// customer and zero score. Equal top scores resolve to the lowest customer
// ID, a deliberate tie-break replacing what used to be iteration-order luck.
func (e *Engine) Candidates(transactions []model.BankTransaction) []Candidate {
	results := make([]Candidate, 0, len(transactions))
	for _, txn := range transactions {
		results = append(results, e.best(txn))
	}
	return results
}

func (e *Engine) best(txn model.BankTransaction) Candidate {
	result := Candidate{Transaction: txn}
	if !txn.Receivable() {
		return result
	}

	search := normalize.Fold(txn.Description + " " + txn.Sender)
	searchDigits := normalize.Digits(search)

	for i := range e.customers {
		sc := &e.customers[i]
		score := e.score(sc, search, searchDigits)
		if score < ScoreSuggest {
			continue
		}
		if result.Customer == nil || score > result.Score ||
			(score == result.Score && sc.customer.ID < result.Customer.ID) {
			customer := sc.customer
			result.Customer = &customer
			result.Score = score
		}
	}
	return result
}

// score sums the independent signals for one customer.
func (e *Engine) score(sc *scoredCustomer, search, searchDigits string) int {
	score := 0

	if sc.foldedName != "" && strings.Contains(search, sc.foldedName) {
		score += scoreExactName
	} else if n := len(sc.nameTokens); n > 0 {
		hits := 0
		for _, tok := range sc.nameTokens {
			if strings.Contains(search, tok) {
				hits++
			}
		}
		switch {
		case hits == n:
			score += scoreAllTokens
		case hits*100 >= n*60:
			score += scoreMostTokens
		}
	}

	if len(sc.taxID) >= minTaxIDLen && strings.Contains(search, sc.taxID) {
		score += scoreTaxID
	}

	if sc.phoneTail != "" && strings.Contains(searchDigits, sc.phoneTail) {
		score += scorePhone
	}

	return score
}
