// Package quality grades a parsed statement 0-100 from what can be
// checked without ground truth: row volume, date coverage, duplicate
// rows, reconciliation against the statement's own figures, and how
// much cross-strategy agreement backed the rows.
package quality

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sells-group/statement-cli/internal/model"
)

// Score computes the quality report for a final transaction set.
// provenance carries per-strategy candidate counts; nil or empty means
// consensus support is unknown and that component is left out.
func Score(txs []model.Transaction, meta model.StatementMeta, provenance map[string]int) model.QualityReport {
	n := len(txs)
	if n == 0 {
		return model.QualityReport{
			Score:   0,
			Issues:  []string{"No transactions parsed"},
			Metrics: model.QualityMetrics{},
		}
	}

	issues := make([]string, 0, 4)

	withDates := 0
	for _, t := range txs {
		if t.Date != nil {
			withDates++
		}
	}
	dateFrac := float64(withDates) / float64(n)

	dups := 0
	seen := make(map[string]struct{}, n)
	for _, t := range txs {
		k := dupKey(t)
		if _, ok := seen[k]; ok {
			dups++
		} else {
			seen[k] = struct{}{}
		}
	}
	dupRate := float64(dups) / float64(n)

	var reconScore, reconDiff *float64
	if expected := meta.ExpectedDelta(); expected != nil {
		sum := decimal.Zero
		for _, t := range txs {
			sum = sum.Add(t.Amount)
		}
		diff := sum.Sub(*expected).Abs().InexactFloat64()
		denom := math.Max(1, expected.Abs().InexactFloat64())
		rs := math.Max(0, 1-diff/denom)
		reconScore, reconDiff = &rs, &diff
	}

	var consensusFrac *float64
	if len(provenance) > 0 {
		votes := 0
		for _, cnt := range provenance {
			if cnt > n {
				cnt = n
			}
			votes += cnt
		}
		// Three strategies agreeing on every row is full support.
		frac := math.Min(1, float64(votes)/float64(3*n))
		consensusFrac = &frac
	}

	score := 15.0 // some rows parsed at all
	score += 20 * dateFrac
	score += 10 * math.Max(0, 1-math.Min(1, dupRate*5))
	if reconScore != nil {
		score += 40 * *reconScore
	} else {
		issues = append(issues, "No balances/totals found; reconciliation skipped")
		score += 15 // partial credit when the statement offers nothing to check
	}
	if consensusFrac != nil {
		score += 15 * *consensusFrac
	}
	score = math.Max(0, math.Min(100, score))

	if dateFrac < 0.6 {
		issues = append(issues, "Low date coverage")
	}
	if dupRate > 0.05 {
		issues = append(issues, "Possible duplicate rows detected")
	}
	if reconScore != nil && *reconScore < 0.8 {
		issues = append(issues, "Transactions do not reconcile with balances/totals")
	}

	m := model.QualityMetrics{
		Rows:         n,
		WithDates:    withDates,
		DateFraction: round3(dateFrac),
		DupRate:      round3(dupRate),
	}
	if reconScore != nil {
		v := round3(*reconScore)
		m.ReconScore = &v
	}
	if reconDiff != nil {
		v := round2(*reconDiff)
		m.ReconDiff = &v
	}
	if consensusFrac != nil {
		v := round3(*consensusFrac)
		m.ConsensusFrac = &v
	}

	return model.QualityReport{Score: round1(score), Issues: issues, Metrics: m}
}

// dupKey flags exact repeats: same day, same normalized description,
// same amount to the cent.
func dupKey(t model.Transaction) string {
	day := ""
	if t.Date != nil {
		day = t.Date.Format("2006-01-02")
	}
	desc := strings.ToLower(strings.TrimSpace(t.Description))
	return day + "\x1f" + desc + "\x1f" + t.Amount.StringFixed(2)
}

func round1(v float64) float64 { return math.Round(v*10) / 10 }
func round2(v float64) float64 { return math.Round(v*100) / 100 }
func round3(v float64) float64 { return math.Round(v*1000) / 1000 }
