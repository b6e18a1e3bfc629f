package model

import "github.com/shopspring/decimal"

// StatementMeta holds the labeled summary figures found on a statement.
// Nil fields were not found. TotalWithdrawals is normalized to a
// non-positive value at extraction time; statements report it as an
// unsigned magnitude. Derived once per document and read-only afterward.
type StatementMeta struct {
	OpeningBalance   *decimal.Decimal `json:"opening_balance"`
	ClosingBalance   *decimal.Decimal `json:"closing_balance"`
	TotalDeposits    *decimal.Decimal `json:"total_deposits"`
	TotalWithdrawals *decimal.Decimal `json:"total_withdrawals"`
}

// Empty reports whether no summary figure was found at all.
func (m StatementMeta) Empty() bool {
	return m.OpeningBalance == nil && m.ClosingBalance == nil &&
		m.TotalDeposits == nil && m.TotalWithdrawals == nil
}

// ExpectedDelta derives the expected net change: closing minus opening when
// both balances are known, else the sum of the reported totals when either
// is present, else nil.
func (m StatementMeta) ExpectedDelta() *decimal.Decimal {
	if m.OpeningBalance != nil && m.ClosingBalance != nil {
		d := m.ClosingBalance.Sub(*m.OpeningBalance)
		return &d
	}
	if m.TotalDeposits != nil || m.TotalWithdrawals != nil {
		d := decimal.Zero
		if m.TotalDeposits != nil {
			d = d.Add(*m.TotalDeposits)
		}
		if m.TotalWithdrawals != nil {
			d = d.Add(*m.TotalWithdrawals)
		}
		return &d
	}
	return nil
}

// SolverMode names which reconciliation path produced a result.
type SolverMode string

const (
	SolverExact     SolverMode = "exact"
	SolverHeuristic SolverMode = "heuristic"
	SolverSkipped   SolverMode = "skipped"
)

// ReconcileResult is the outcome of sign reconciliation for one document.
// Corrected replaces the pre-reconciliation transaction list; magnitudes
// are never altered, only signs.
type ReconcileResult struct {
	Corrected    []Transaction    `json:"corrected"`
	Expected     *decimal.Decimal `json:"expected_delta"`
	RealizedSum  decimal.Decimal  `json:"realized_sum"`
	AbsoluteDiff *decimal.Decimal `json:"absolute_diff"`
	SolverUsed   SolverMode       `json:"solver_used"`
}

// QualityMetrics are the raw figures behind a quality score.
type QualityMetrics struct {
	Rows          int      `json:"rows"`
	WithDates     int      `json:"with_dates"`
	DateFraction  float64  `json:"date_fraction"`
	DupRate       float64  `json:"dup_rate"`
	ReconScore    *float64 `json:"recon_score"`
	ReconDiff     *float64 `json:"recon_diff"`
	ConsensusFrac *float64 `json:"consensus_frac"`
}

// QualityReport is the 0-100 confidence score with diagnostics.
type QualityReport struct {
	Score   float64        `json:"score"`
	Issues  []string       `json:"issues"`
	Metrics QualityMetrics `json:"metrics"`
}
