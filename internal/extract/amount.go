// Package extract turns page content into candidate transactions. Four
// strategies share one contract: each returns whatever candidates it can
// recover and never fails the document. The consensus vote downstream
// decides which candidates are real.
package extract

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// amountPattern recognizes an optional leading minus or opening paren, an
// optional currency symbol, a grouped or plain numeric literal with an
// optional two-digit decimal part, and an optional CR/DR suffix, anchored
// to the end of the input.
var amountPattern = regexp.MustCompile(`(?i)(?P<sign>[-(])?\s*(?P<curr>[$€£₹])?\s*(?P<num>(?:\d{1,3}(?:[.,]\d{3})+|\d+)(?:[.,]\d{2})?)\s*(?P<crdr>CR|DR)?\)?\s*$`)

var (
	amountSignIdx = amountPattern.SubexpIndex("sign")
	amountNumIdx  = amountPattern.SubexpIndex("num")
	amountCRDRIdx = amountPattern.SubexpIndex("crdr")
)

// ParseAmount parses a statement amount. The last separator in the literal
// decides the grouping convention: a separator followed by exactly two
// trailing digits is the decimal point and every other separator is a
// thousands mark, so both 1,234.56 and 1.234,56 parse to the same value.
// A trailing DR forces the sign negative and CR positive, overriding
// paren or minus negation. Returns false when the input is not an amount.
func ParseAmount(raw string) (decimal.Decimal, bool) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return decimal.Zero, false
	}
	m := amountPattern.FindStringSubmatch(s)
	if m == nil {
		return decimal.Zero, false
	}

	neg := m[amountSignIdx] == "-" || m[amountSignIdx] == "("

	num := normalizeSeparators(m[amountNumIdx])
	d, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, false
	}

	switch strings.ToUpper(m[amountCRDRIdx]) {
	case "DR":
		neg = true
	case "CR":
		neg = false
	}

	if neg {
		d = d.Neg()
	}
	return d, true
}

// LocateAmount reports the byte offset at which a trailing amount begins
// within line, or -1 when the line holds none.
func LocateAmount(line string) int {
	loc := amountPattern.FindStringIndex(line)
	if loc == nil {
		return -1
	}
	return loc[0]
}

// normalizeSeparators rewrites a grouped literal into plain decimal form.
func normalizeSeparators(num string) string {
	lastSep := strings.LastIndexAny(num, ".,")
	if lastSep == -1 {
		return num
	}
	// Exactly two digits after the final separator mark a decimal part;
	// three digits mean pure thousands grouping.
	hasDecimal := len(num)-lastSep-1 == 2

	var b strings.Builder
	for i, r := range num {
		switch r {
		case '.', ',':
			if hasDecimal && i == lastSep {
				b.WriteByte('.')
			}
		default:
			b.WriteRune(r)
		}
	}
	return b.String()
}
