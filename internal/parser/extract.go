package parser

import (
	"regexp"
	"strings"

	"github.com/ofisler/mutabakat/internal/normalize"
)

// Counterparty and reference extraction for incoming rows. Bank descriptions
// are free text; these are pattern heuristics, not a guarantee.

// senderLabelRegex captures the name group following a transfer label, e.g.
// "EFT GELEN - MEHMET YILMAZ REF ABC123". Operates on folded text.
var senderLabelRegex = regexp.MustCompile(
	`(?:GONDEREN|EFT|HAVALE|FAST|TRANSFER)(?:\s+GELEN)?\s*[-:.]?\s+([A-Z][A-Z.]*(?:\s+[A-Z][A-Z.]*)+)`)

// nameGroupRegex finds any multi-word group of letter tokens, used when no
// label matched. The longest group wins.
var nameGroupRegex = regexp.MustCompile(`[A-Z][A-Z.]{1,}(?:\s+[A-Z][A-Z.]{1,})+`)

// referenceRegex captures an all-caps alphanumeric token of length 6-20
// following a reference label.
var referenceRegex = regexp.MustCompile(`\b(?:REF(?:ERANS)?|ISLEM\s+NO|NO)\s*[-:.]?\s*([A-Z0-9]{6,20})\b`)

// nameStopwords are transfer vocabulary, never part of a counterparty name.
var nameStopwords = map[string]bool{
	"EFT": true, "FAST": true, "HAVALE": true, "GELEN": true, "GIDEN": true,
	"TRANSFER": true, "REF": true, "REFERANS": true, "NO": true, "TL": true,
	"TRY": true, "IBAN": true, "HESAP": true, "ODEME": true, "FATURA": true,
}

// ExtractSender attempts to pull a counterparty name out of an incoming
// transaction description. Returns "" when nothing name-like is found.
func ExtractSender(description string) string {
	folded := normalize.Fold(description)
	if folded == "" {
		return ""
	}

	if m := senderLabelRegex.FindStringSubmatch(folded); m != nil {
		if name := trimNameGroup(m[1]); name != "" {
			return name
		}
	}

	// No label: take the longest name-like capitalized token group.
	var best string
	for _, group := range nameGroupRegex.FindAllString(folded, -1) {
		name := trimNameGroup(group)
		if len(name) > len(best) {
			best = name
		}
	}
	return best
}

// trimNameGroup drops leading transfer vocabulary, cuts the group at the
// first interior stopword (names never contain transfer vocabulary), and
// rejects groups shorter than two words.
func trimNameGroup(group string) string {
	words := strings.Fields(group)

	for len(words) > 0 && nameStopwords[strings.TrimRight(words[0], ".")] {
		words = words[1:]
	}
	for i, w := range words {
		if nameStopwords[strings.TrimRight(w, ".")] {
			words = words[:i]
			break
		}
	}

	if len(words) < 2 {
		return ""
	}
	return strings.Join(words, " ")
}

// ExtractReference attempts to pull a transaction/reference number out of a
// description. Returns "" when nothing qualifies.
func ExtractReference(description string) string {
	folded := normalize.Fold(description)
	m := referenceRegex.FindStringSubmatch(folded)
	if m == nil {
		return ""
	}
	ref := m[1]
	// A bare number group this long is more likely an IBAN fragment than a
	// reference; require at least one letter or a REF-style label prefix.
	if !strings.Contains(m[0], "REF") && !containsLetter(ref) {
		return ""
	}
	return ref
}

func containsLetter(s string) bool {
	for _, r := range s {
		if r >= 'A' && r <= 'Z' {
			return true
		}
	}
	return false
}
