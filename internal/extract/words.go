package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sells-group/statement-cli/internal/document"
	"github.com/sells-group/statement-cli/internal/model"
)

// boilerplateLine marks summary rows, headers, and footers that must not
// become transactions.
var boilerplateLine = regexp.MustCompile(`(?i)\b(total|balance|statement|opening|closing|page \d+)\b`)

// wordDateWindow limits how deep into a line the date is searched; real
// statement rows lead with the date.
const wordDateWindow = 6

// WordStrategy works on token layout: it rebuilds visual lines, finds a
// leading date and a trailing amount, and takes whatever sits between as
// the description. It handles statements whose tables are drawn without
// detectable column structure.
type WordStrategy struct{}

// Name implements Strategy.
func (WordStrategy) Name() string { return model.ProvWords }

// Extract implements Strategy.
func (WordStrategy) Extract(doc *document.Document, source string) []model.Candidate {
	seen := make(map[string]bool)
	var out []model.Candidate
	for pi := range doc.Pages {
		for _, line := range document.GroupLines(doc.Pages[pi].Tokens, lineTolerance) {
			tx, ok := wordLineTransaction(line, source)
			if !ok {
				continue
			}
			key := tx.ClusterKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, candidate(tx, model.ProvWords))
		}
	}
	return out
}

func wordLineTransaction(line document.Line, source string) (model.Transaction, bool) {
	texts := make([]string, 0, len(line.Tokens))
	for _, tok := range line.Tokens {
		if tok.Text != "" {
			texts = append(texts, tok.Text)
		}
	}
	if len(texts) == 0 {
		return model.Transaction{}, false
	}
	raw := strings.Join(texts, " ")
	if boilerplateLine.MatchString(raw) {
		return model.Transaction{}, false
	}

	date, dateIdx := leadingDate(texts)
	amount, amtIdx := trailingAmount(texts, dateIdx)
	if amtIdx < 0 {
		return model.Transaction{}, false
	}

	start := dateIdx + 1
	desc := ""
	if start < amtIdx {
		desc = strings.Join(texts[start:amtIdx], " ")
	}
	desc = strings.Trim(desc, " -:\t")
	if desc == "" {
		desc = raw
	}

	return model.Transaction{
		Date:        date,
		Description: desc,
		Amount:      amount,
		Source:      source,
	}, true
}

// leadingDate scans the first few tokens for a date. Returns -1 when the
// line has none.
func leadingDate(texts []string) (*time.Time, int) {
	limit := len(texts)
	if limit > wordDateWindow {
		limit = wordDateWindow
	}
	for i := 0; i < limit; i++ {
		m := datePattern.FindString(texts[i])
		if m == "" {
			continue
		}
		if d, ok := ParseDate(m); ok {
			return &d, i
		}
	}
	return nil, -1
}

// trailingAmount scans tokens right to left, stopping before the date
// token. A token that fails alone is retried merged with its left
// neighbor, recovering amounts split across tokens such as "123.45" "CR"
// or "45.00" ")".
func trailingAmount(texts []string, dateIdx int) (decimal.Decimal, int) {
	for j := len(texts) - 1; j > dateIdx; j-- {
		if v, ok := ParseAmount(texts[j]); ok {
			return v, j
		}
		if j-1 > dateIdx {
			if v, ok := ParseAmount(texts[j-1] + texts[j]); ok {
				return v, j - 1
			}
		}
	}
	return decimal.Zero, -1
}
