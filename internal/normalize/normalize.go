// Package normalize provides locale-aware parsing of the dates, amounts and
// text found in Turkish bank statement exports.
package normalize

import (
	"errors"
	"regexp"
	"strings"
	"time"
	"unicode"

	"github.com/shopspring/decimal"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// ErrUnparseableDate indicates that no known date layout matched the input.
// Callers treat the owning row as unusable and skip it.
var ErrUnparseableDate = errors.New("unparseable date")

// dateLayouts is tried in order; the first successful parse wins. Day-first
// layouts come before ISO because that is what the banks export.
var dateLayouts = []string{
	"02.01.2006",
	"02/01/2006",
	"02-01-2006",
	"2006-01-02",
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"02/01/2006 15:04:05",
	"02/01/2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
}

var nonDigitRegex = regexp.MustCompile(`\D`)

// ParseDate parses day-first and ISO date forms with ./,-/ separators and
// optional time suffixes. If every layout fails, all non-digits are stripped
// and exactly eight remaining digits are reinterpreted as DDMMYYYY.
func ParseDate(raw string) (time.Time, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return time.Time{}, ErrUnparseableDate
	}

	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}

	digits := nonDigitRegex.ReplaceAllString(s, "")
	if len(digits) == 8 {
		if t, err := time.Parse("02012006", digits); err == nil {
			return t, nil
		}
	}

	return time.Time{}, ErrUnparseableDate
}

// currencyTokens are stripped before numeric parsing. Symbols first so that
// code substrings do not shadow them.
var currencyTokens = []string{"₺", "$", "€", "£", "TRY", "TRL", "USD", "EUR", "TL"}

// ParseAmount parses a signed monetary value out of free-form statement
// text. The sign is preserved: single-column exports encode direction in it,
// and model.NewDraft folds a negative amount into (magnitude, outgoing).
// When both '.' and ',' appear, the earlier-occurring one is treated as the
// thousands separator and the later as the decimal separator; a lone comma is
// always the decimal separator. Unparseable input yields zero, never an
// error: downstream business logic treats a zero amount as "no transaction".
func ParseAmount(raw string) decimal.Decimal {
	s := strings.ToUpper(strings.TrimSpace(raw))
	if s == "" {
		return decimal.Zero
	}

	for _, tok := range currencyTokens {
		s = strings.ReplaceAll(s, tok, "")
	}
	s = strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimSuffix(strings.TrimPrefix(s, "("), ")")
	}
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimPrefix(s, "-")
	}
	s = strings.TrimPrefix(s, "+")

	dot := strings.Index(s, ".")
	comma := strings.Index(s, ",")
	switch {
	case dot >= 0 && comma >= 0 && dot < comma:
		// "1.234,56"
		s = strings.ReplaceAll(s, ".", "")
		s = strings.Replace(s, ",", ".", 1)
	case dot >= 0 && comma >= 0:
		// "1,234.56"
		s = strings.ReplaceAll(s, ",", "")
	case comma >= 0:
		s = strings.Replace(s, ",", ".", 1)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if neg {
		d = d.Neg()
	}
	return d
}

// turkishFold maps the Turkish letters that do not decompose to an ASCII
// base under NFD. The capital dotted İ decomposes, but is folded here too so
// the subsequent upper-casing cannot reintroduce it.
var turkishFold = strings.NewReplacer(
	"ı", "I", "İ", "I",
	"ş", "S", "Ş", "S",
	"ğ", "G", "Ğ", "G",
	"ü", "U", "Ü", "U",
	"ö", "O", "Ö", "O",
	"ç", "C", "Ç", "C",
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// Fold upper-cases text with Turkish characters folded to their ASCII base
// equivalents, for locale-robust substring comparison. Remaining diacritics
// are stripped via NFD decomposition and runs of whitespace collapse to a
// single space.
func Fold(raw string) string {
	s := turkishFold.Replace(raw)

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	if folded, _, err := transform.String(t, s); err == nil {
		s = folded
	}

	s = strings.ToUpper(s)
	s = whitespaceRegex.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// Digits returns only the decimal digits of s, preserving order. Used for
// phone number comparison.
func Digits(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
