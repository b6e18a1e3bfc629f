package extract

import (
	"strings"

	"github.com/shopspring/decimal"
	"github.com/texttheater/golang-levenshtein/levenshtein"

	"github.com/sells-group/statement-cli/internal/model"
)

// canonicalHeaders lists the spellings each transaction field is known by
// across issuers. Matching is exact first, then fuzzy, so minor header
// typos still map.
var canonicalHeaders = map[string][]string{
	"date":        {"date", "transaction date", "posted date", "posting date", "value date"},
	"description": {"description", "details", "memo", "narrative", "transaction details", "payee"},
	"amount":      {"amount", "transaction amount", "value"},
	"debit":       {"debit", "debits", "withdrawal", "withdrawals", "money out", "paid out"},
	"credit":      {"credit", "credits", "deposit", "deposits", "money in", "paid in"},
	"currency":    {"currency", "ccy"},
	"account":     {"account", "account number", "account no"},
}

// headerFields is the claim order. Exact matches for every field are
// claimed before any fuzzy match so that near spellings ("account" is
// edit distance 2 from "amount") cannot steal a column that matches
// another field exactly.
var headerFields = []string{"date", "description", "amount", "debit", "credit", "currency", "account"}

// headerFuzzMax is the largest edit distance accepted as a header match.
const headerFuzzMax = 2

func normalizeHeaderCell(cell string) string {
	return strings.Join(strings.Fields(strings.ToLower(cell)), " ")
}

// matchHeaders maps transaction fields to column indexes. Each column is
// claimed at most once.
func matchHeaders(header []string) map[string]int {
	norm := make([]string, len(header))
	for i, h := range header {
		norm[i] = normalizeHeaderCell(h)
	}

	cols := make(map[string]int, len(headerFields))
	claimed := make(map[int]bool, len(header))

	for _, field := range headerFields {
		for i, h := range norm {
			if claimed[i] || h == "" {
				continue
			}
			for _, want := range canonicalHeaders[field] {
				if h == want {
					cols[field] = i
					claimed[i] = true
					break
				}
			}
			if claimed[i] {
				break
			}
		}
	}

	for _, field := range headerFields {
		if _, ok := cols[field]; ok {
			continue
		}
		for i, h := range norm {
			if claimed[i] || len(h) < 4 {
				continue
			}
			for _, want := range canonicalHeaders[field] {
				d := levenshtein.DistanceForStrings([]rune(h), []rune(want), levenshtein.DefaultOptions)
				if d <= headerFuzzMax {
					cols[field] = i
					claimed[i] = true
					break
				}
			}
			if claimed[i] {
				break
			}
		}
	}

	return cols
}

// cellAt returns the trimmed cell at column i, or "" past the row's end.
// Detected tables and loose CSVs are frequently ragged.
func cellAt(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// NormalizeGrid converts a header-labeled cell grid into transactions.
// The amount comes from a recognized amount column, or from credit minus
// debit when the statement splits directions into two columns. Rows
// without a parseable amount are dropped; missing dates are kept as nil.
// Returns nil when the header names no amount-bearing column at all, so
// callers can fall back to positional inference.
func NormalizeGrid(header []string, rows [][]string, source string) []model.Transaction {
	cols := matchHeaders(header)

	amtCol, hasAmt := cols["amount"]
	debCol, hasDeb := cols["debit"]
	credCol, hasCred := cols["credit"]
	if !hasAmt && !hasDeb && !hasCred {
		return nil
	}

	dateCol, hasDate := cols["date"]
	if !hasDate {
		dateCol = inferDateColumn(rows, len(header), cols)
		hasDate = dateCol >= 0
	}
	descCol, hasDesc := cols["description"]
	currCol, hasCurr := cols["currency"]
	acctCol, hasAcct := cols["account"]

	var out []model.Transaction
	for _, row := range rows {
		amount, ok := rowAmount(row, hasAmt, amtCol, hasDeb, debCol, hasCred, credCol)
		if !ok {
			continue
		}

		tx := model.Transaction{Amount: amount, Source: source}
		if hasDate {
			if d, ok := ParseDate(cellAt(row, dateCol)); ok {
				tx.Date = &d
			}
		}
		if hasDesc {
			tx.Description = cellAt(row, descCol)
		}
		if hasCurr {
			tx.Currency = cellAt(row, currCol)
		}
		if hasAcct {
			tx.Account = cellAt(row, acctCol)
		}
		out = append(out, tx)
	}
	return out
}

func rowAmount(row []string, hasAmt bool, amtCol int, hasDeb bool, debCol int, hasCred bool, credCol int) (amount decimal.Decimal, ok bool) {
	if hasAmt {
		return ParseAmount(cellAt(row, amtCol))
	}

	var parsedAny bool
	if hasCred {
		if v, vok := ParseAmount(cellAt(row, credCol)); vok {
			amount = amount.Add(v.Abs())
			parsedAny = true
		}
	}
	if hasDeb {
		if v, vok := ParseAmount(cellAt(row, debCol)); vok {
			amount = amount.Sub(v.Abs())
			parsedAny = true
		}
	}
	return amount, parsedAny
}

// inferDateColumn finds the first unclaimed column whose non-empty cells
// all parse as dates.
func inferDateColumn(rows [][]string, width int, cols map[string]int) int {
	claimed := make(map[int]bool, len(cols))
	for _, i := range cols {
		claimed[i] = true
	}
	for i := 0; i < width; i++ {
		if claimed[i] {
			continue
		}
		if columnIsDates(rows, i) {
			return i
		}
	}
	return -1
}

func columnIsDates(rows [][]string, col int) bool {
	seen := 0
	for _, row := range rows {
		cell := cellAt(row, col)
		if cell == "" {
			continue
		}
		if _, ok := ParseDate(cell); !ok {
			return false
		}
		seen++
	}
	return seen > 0
}

// InferGrid normalizes a grid whose header row matched nothing: the first
// all-date column becomes the date, the rightmost all-amount column the
// amount, and the first column left over the description. Used for tables
// whose header row is decorative or missing.
func InferGrid(rows [][]string, source string) []model.Transaction {
	width := 0
	for _, row := range rows {
		if len(row) > width {
			width = len(row)
		}
	}
	if width == 0 {
		return nil
	}

	dateCol := -1
	for i := 0; i < width; i++ {
		if columnIsDates(rows, i) {
			dateCol = i
			break
		}
	}

	amtCol := -1
	for i := width - 1; i >= 0; i-- {
		if i == dateCol {
			continue
		}
		if columnIsAmounts(rows, i) {
			amtCol = i
			break
		}
	}
	if amtCol == -1 {
		return nil
	}

	descCol := -1
	for i := 0; i < width; i++ {
		if i == dateCol || i == amtCol {
			continue
		}
		if columnHasText(rows, i) {
			descCol = i
			break
		}
	}

	var out []model.Transaction
	for _, row := range rows {
		amount, ok := ParseAmount(cellAt(row, amtCol))
		if !ok {
			continue
		}
		tx := model.Transaction{Amount: amount, Source: source}
		if dateCol >= 0 {
			if d, ok := ParseDate(cellAt(row, dateCol)); ok {
				tx.Date = &d
			}
		}
		if descCol >= 0 {
			tx.Description = cellAt(row, descCol)
		}
		out = append(out, tx)
	}
	return out
}

// columnIsAmounts reports whether every non-empty cell parses as an
// amount and none is date-shaped. Date tokens end in digits, so a year
// would otherwise pass the amount grammar's suffix match.
func columnIsAmounts(rows [][]string, col int) bool {
	seen := 0
	for _, row := range rows {
		cell := cellAt(row, col)
		if cell == "" {
			continue
		}
		if datePattern.MatchString(cell) {
			return false
		}
		if _, ok := ParseAmount(cell); !ok {
			return false
		}
		seen++
	}
	return seen > 0
}

func columnHasText(rows [][]string, col int) bool {
	for _, row := range rows {
		if cellAt(row, col) != "" {
			return true
		}
	}
	return false
}
