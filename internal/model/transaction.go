package model

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Transaction is a single extracted statement row. Positive amounts are
// inflows, negative amounts are outflows.
type Transaction struct {
	Date        *time.Time      `json:"date"`
	Description string          `json:"description,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	Currency    string          `json:"currency,omitempty"`
	Category    string          `json:"category,omitempty"`
	Account     string          `json:"account,omitempty"`
	Source      string          `json:"source"`
}

// MarshalJSON emits the amount as a bare JSON number rather than the
// quoted string shopspring/decimal produces by default.
func (t Transaction) MarshalJSON() ([]byte, error) {
	type alias Transaction
	return json.Marshal(&struct {
		Amount json.Number `json:"amount"`
		alias
	}{
		Amount: json.Number(t.Amount.String()),
		alias:  alias(t),
	})
}

// UnmarshalJSON accepts the amount as either a number or a string.
func (t *Transaction) UnmarshalJSON(data []byte) error {
	type alias Transaction
	aux := &struct {
		Amount json.Number `json:"amount"`
		*alias
	}{alias: (*alias)(t)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	amt, err := decimal.NewFromString(aux.Amount.String())
	if err != nil {
		return err
	}
	t.Amount = amt
	return nil
}

// ClusterKey is the approximate-identity key used for intra-strategy
// deduplication and inter-strategy consensus: (date-or-empty ISO day,
// lowercase-trimmed description, amount fixed to two decimal places).
// Two candidates with equal keys describe the same real-world transaction
// regardless of which strategy produced them.
func (t Transaction) ClusterKey() string {
	day := ""
	if t.Date != nil {
		day = t.Date.Format("2006-01-02")
	}
	desc := strings.ToLower(strings.TrimSpace(t.Description))
	return day + "\x1f" + desc + "\x1f" + t.Amount.Round(2).StringFixed(2)
}

// Candidate is an unvalidated transaction attributed to the strategy that
// produced it. Candidates exist only between extraction and consensus.
type Candidate struct {
	Transaction
	Provenance string `json:"provenance"`
}

// Provenance tags for the built-in extraction strategies. The OCR re-run
// prefixes the originating tag so both passes stay distinguishable in
// provenance counts.
const (
	ProvTemplate = "template"
	ProvTables   = "tables"
	ProvWords    = "words"
	ProvText     = "text"
	ProvCSV      = "csv"
	ProvXLSX     = "xlsx"

	OCRPrefix = "ocr_"
)
