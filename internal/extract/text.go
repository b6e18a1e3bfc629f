package extract

import (
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sells-group/statement-cli/internal/document"
	"github.com/sells-group/statement-cli/internal/model"
)

// headerFooterLine matches lines that open with boilerplate and never
// carry a transaction.
var headerFooterLine = regexp.MustCompile(`(?i)^\s*(page \d+|opening|closing|balance|total|statement|summary)\b`)

// TextStrategy is the line heuristic of last resort: it works on rendered
// page text alone, expecting rows shaped like "date description amount".
// Rows wrapped across lines are stitched back together by carrying a
// pending (date, description) forward until an amount completes it.
type TextStrategy struct{}

// Name implements Strategy.
func (TextStrategy) Name() string { return model.ProvText }

// Extract implements Strategy. Each page is parsed three times: as a
// whole, then as left and right halves so two-column layouts contribute
// their rows too. The triple parse double-reads single-column pages,
// which the final dedupe absorbs.
func (TextStrategy) Extract(doc *document.Document, source string) []model.Candidate {
	var rows []textRow
	for pi := range doc.Pages {
		page := &doc.Pages[pi]

		var whole []string
		for _, ln := range strings.Split(page.Text, "\n") {
			if ln == "" || strings.HasPrefix(strings.TrimSpace(ln), "Page ") {
				continue
			}
			whole = append(whole, ln)
		}
		rows = append(rows, parseTextLines(whole)...)

		left, right := page.Halves()
		rows = append(rows, parseTextLines(nonEmptyLines(left))...)
		rows = append(rows, parseTextLines(nonEmptyLines(right))...)
	}

	seen := make(map[string]bool)
	var out []model.Candidate
	for _, row := range rows {
		tx := model.Transaction{
			Date:        row.date,
			Description: row.desc,
			Amount:      row.amount,
			Source:      source,
		}
		key := tx.ClusterKey()
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, candidate(tx, model.ProvText))
	}
	return out
}

type textRow struct {
	date   *time.Time
	desc   string
	amount decimal.Decimal
}

// parseTextLines runs the stitching state machine over one region's
// lines. A date-only line opens a pending row, bare text extends it, and
// an amount-only line completes it. A line holding both date and amount
// is a complete row on its own.
func parseTextLines(lines []string) []textRow {
	var rows []textRow
	var pending *textRow

	for _, line := range lines {
		if headerFooterLine.MatchString(line) {
			continue
		}

		dateLoc := datePattern.FindStringIndex(line)
		amtStart := LocateAmount(line)

		if dateLoc != nil && amtStart > dateLoc[1] {
			// Complete row on one line.
			var date *time.Time
			if d, ok := ParseDate(line[dateLoc[0]:dateLoc[1]]); ok {
				date = &d
			}
			amount, aok := ParseAmount(line[amtStart:])
			desc := strings.Trim(line[dateLoc[1]:amtStart], " -:\t")
			if aok && desc != "" {
				rows = append(rows, textRow{date: date, desc: desc, amount: amount})
				pending = nil
				continue
			}
		}

		if pending != nil && amtStart < 0 && dateLoc == nil && strings.TrimSpace(line) != "" {
			// Wrapped description continues the pending row.
			pending.desc = strings.TrimSpace(pending.desc + " " + strings.TrimSpace(line))
			continue
		}

		if dateLoc != nil && amtStart < 0 {
			// Date-only line opens (or replaces) the pending row.
			var date *time.Time
			if d, ok := ParseDate(line[dateLoc[0]:dateLoc[1]]); ok {
				date = &d
			}
			pending = &textRow{
				date: date,
				desc: strings.Trim(line[dateLoc[1]:], " -:\t"),
			}
			continue
		}

		if pending != nil && amtStart >= 0 && dateLoc == nil {
			// Amount-only line completes the pending row.
			if amount, ok := ParseAmount(line[amtStart:]); ok {
				pending.amount = amount
				rows = append(rows, *pending)
				pending = nil
			}
		}
	}
	return rows
}

func nonEmptyLines(text string) []string {
	if text == "" {
		return nil
	}
	var out []string
	for _, ln := range strings.Split(text, "\n") {
		if ln != "" {
			out = append(out, ln)
		}
	}
	return out
}
