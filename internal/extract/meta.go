package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sells-group/statement-cli/internal/model"
)

// Label patterns for the summary figures statements print outside the
// transaction table.
var (
	openingLabel     = regexp.MustCompile(`(?i)\b(opening\s+balance|beginning\s+balance)\b`)
	closingLabel     = regexp.MustCompile(`(?i)\b(closing\s+balance|ending\s+balance)\b`)
	depositsLabel    = regexp.MustCompile(`(?i)\btotal\s+(?:deposits|credits)\b`)
	withdrawalsLabel = regexp.MustCompile(`(?i)\btotal\s+(?:withdrawals|debits|charges)\b`)
)

// labelSplit breaks a labeled line into parts when the amount grammar
// finds nothing at the line's end: wide gaps, tabs, " - ", or a colon.
var labelSplit = regexp.MustCompile(`\s{2,}|\t|\s-\s|:\s*`)

// StatementMetadata scans rendered document text for the labeled summary
// figures. Total withdrawals are normalized to a non-positive value;
// statements print the magnitude.
func StatementMetadata(text string) model.StatementMeta {
	var meta model.StatementMeta
	if text == "" {
		return meta
	}

	var lines []string
	for _, ln := range strings.Split(text, "\n") {
		if t := strings.TrimSpace(ln); t != "" {
			lines = append(lines, t)
		}
	}

	meta.OpeningBalance = findLabeledAmount(lines, openingLabel)
	meta.ClosingBalance = findLabeledAmount(lines, closingLabel)
	meta.TotalDeposits = findLabeledAmount(lines, depositsLabel)
	if w := findLabeledAmount(lines, withdrawalsLabel); w != nil {
		n := w.Abs().Neg()
		meta.TotalWithdrawals = &n
	}
	return meta
}

// findLabeledAmount returns the first amount found on a line matching the
// label. The amount grammar is tried against the line's tail first; when
// that fails the line is split on layout separators and the parts are
// tried right to left, so "Opening Balance    1,000.00 USD" still parses.
func findLabeledAmount(lines []string, label *regexp.Regexp) *decimal.Decimal {
	for _, ln := range lines {
		if !label.MatchString(ln) {
			continue
		}
		if idx := LocateAmount(ln); idx >= 0 {
			if v, ok := ParseAmount(ln[idx:]); ok {
				return &v
			}
		}
		parts := labelSplit.Split(ln, -1)
		for i := len(parts) - 1; i >= 0; i-- {
			if v, ok := ParseAmount(parts[i]); ok {
				return &v
			}
		}
	}
	return nil
}
