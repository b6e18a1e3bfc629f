// Package analytics summarizes a parsed transaction list into monthly
// cash flow and per-category totals.
package analytics

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/sells-group/statement-cli/internal/model"
)

// UnknownMonth buckets undated transactions. It sorts after every
// numeric YYYY-MM key.
const UnknownMonth = "unknown"

// MonthFlow is one month's cash flow. Expenses is the signed sum of
// outflows, so it is zero or negative.
type MonthFlow struct {
	Month    string          `json:"month"`
	Income   decimal.Decimal `json:"income"`
	Expenses decimal.Decimal `json:"expenses"`
	Net      decimal.Decimal `json:"net"`
	Count    int             `json:"tx_count"`
}

// CategoryTotal is the signed amount sum of one category.
type CategoryTotal struct {
	Category string          `json:"category"`
	Total    decimal.Decimal `json:"total"`
}

// Summary is the full cash-flow picture of a transaction list.
type Summary struct {
	Transactions int             `json:"transactions"`
	TotalInflow  decimal.Decimal `json:"total_inflow"`
	TotalOutflow decimal.Decimal `json:"total_outflow"`
	Net          decimal.Decimal `json:"net"`
	Monthly      []MonthFlow     `json:"monthly"`
	ByCategory   []CategoryTotal `json:"by_category"`
}

// Summarize aggregates transactions by month and category. Uncategorized
// rows are left out of the category breakdown; undated rows land in the
// UnknownMonth bucket.
func Summarize(txs []model.Transaction) Summary {
	s := Summary{
		Transactions: len(txs),
		TotalInflow:  decimal.Zero,
		TotalOutflow: decimal.Zero,
		Net:          decimal.Zero,
	}

	months := make(map[string]*MonthFlow)
	categories := make(map[string]decimal.Decimal)

	for _, t := range txs {
		key := UnknownMonth
		if t.Date != nil {
			key = t.Date.Format("2006-01")
		}
		m, ok := months[key]
		if !ok {
			m = &MonthFlow{Month: key, Income: decimal.Zero, Expenses: decimal.Zero}
			months[key] = m
		}
		m.Count++
		if t.Amount.Sign() > 0 {
			m.Income = m.Income.Add(t.Amount)
			s.TotalInflow = s.TotalInflow.Add(t.Amount)
		} else {
			m.Expenses = m.Expenses.Add(t.Amount)
			s.TotalOutflow = s.TotalOutflow.Add(t.Amount)
		}

		if t.Category != "" {
			categories[t.Category] = categories[t.Category].Add(t.Amount)
		}
	}

	s.Net = s.TotalInflow.Add(s.TotalOutflow)

	for _, m := range months {
		m.Net = m.Income.Add(m.Expenses)
		s.Monthly = append(s.Monthly, *m)
	}
	sort.Slice(s.Monthly, func(i, j int) bool { return s.Monthly[i].Month < s.Monthly[j].Month })

	for cat, total := range categories {
		s.ByCategory = append(s.ByCategory, CategoryTotal{Category: cat, Total: total})
	}
	// Spend-heaviest first, category name breaking ties for determinism.
	sort.Slice(s.ByCategory, func(i, j int) bool {
		if !s.ByCategory[i].Total.Equal(s.ByCategory[j].Total) {
			return s.ByCategory[i].Total.LessThan(s.ByCategory[j].Total)
		}
		return s.ByCategory[i].Category < s.ByCategory[j].Category
	})

	return s
}
