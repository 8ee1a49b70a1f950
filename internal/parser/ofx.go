package parser

import (
	"os"
	"regexp"
	"strings"

	"github.com/aclindsa/ofxgo"
	"github.com/ofisler/mutabakat/internal/model"
	"github.com/shopspring/decimal"
)

// OFXStrategy parses OFX/QFX statement downloads. Some banks offer these
// alongside the spreadsheet exports and they carry cleaner counterparty data.
type OFXStrategy struct{}

// NewOFX creates the OFX strategy.
func NewOFX() Strategy {
	return &OFXStrategy{}
}

func (s *OFXStrategy) BankName() string {
	return "ofx"
}

var severityRegex = regexp.MustCompile(`(?i)<SEVERITY>(Info|Warn|Error)</SEVERITY>`)
var openTagRegex = regexp.MustCompile(`(?m)^(\s*<[A-Z][A-Z0-9._]*[A-Z0-9])$`)

// preprocessOFX fixes common formatting issues in bank-produced OFX files:
// leading whitespace before the header, mixed-case SEVERITY values, and
// SGML-style tags missing their closing bracket.
func preprocessOFX(content string) string {
	content = strings.TrimLeft(content, " \t\r\n")
	content = severityRegex.ReplaceAllStringFunc(content, strings.ToUpper)
	content = openTagRegex.ReplaceAllString(content, "$1>")
	return content
}

// Parse implements Strategy.
func (s *OFXStrategy) Parse(path string) ([]model.TransactionDraft, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, &ParseError{File: path, Msg: "cannot read file", Err: err}
	}

	resp, err := ofxgo.ParseResponse(strings.NewReader(preprocessOFX(string(raw))))
	if err != nil {
		return nil, &ParseError{File: path, Msg: "cannot parse OFX", Err: err}
	}

	var drafts []model.TransactionDraft
	for _, msg := range resp.Bank {
		stmt, ok := msg.(*ofxgo.StatementResponse)
		if !ok || stmt.BankTranList == nil {
			continue
		}
		for _, ofxTx := range stmt.BankTranList.Transactions {
			if draft, ok := convertOFXTransaction(ofxTx); ok {
				drafts = append(drafts, draft)
			}
		}
	}

	return drafts, nil
}

// convertOFXTransaction maps one OFX transaction to a draft. OFX amounts are
// signed: negative means money out.
func convertOFXTransaction(ofxTx ofxgo.Transaction) (model.TransactionDraft, bool) {
	date := ofxTx.DtPosted.Time
	if date.IsZero() || date.Before(cutoffDate) {
		return model.TransactionDraft{}, false
	}

	amount := decimal.NewFromBigRat(&ofxTx.TrnAmt.Rat, 2)
	if amount.IsZero() {
		return model.TransactionDraft{}, false
	}

	description := string(ofxTx.Name)
	if memo := string(ofxTx.Memo); memo != "" && description == "" {
		description = memo
	}

	draft := model.NewDraft(date, description, "", amount, model.DirectionIncoming)
	if draft.Direction == model.DirectionIncoming {
		draft.Sender = ofxSender(ofxTx, description)
		draft.Reference = string(ofxTx.FiTID)
	}
	return draft, true
}

// ofxSender prefers the structured payee record over description heuristics.
func ofxSender(ofxTx ofxgo.Transaction, description string) string {
	if ofxTx.Payee != nil && ofxTx.Payee.Name != "" {
		return string(ofxTx.Payee.Name)
	}
	return ExtractSender(description)
}
