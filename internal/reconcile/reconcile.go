// Package reconcile corrects transaction signs against a statement's own
// summary figures. Extraction often loses signs (parenthesized negatives,
// debit columns, CR/DR notation), but the statement states what the net
// change must be; choosing signs to match it recovers most of them.
package reconcile

import (
	"context"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sells-group/statement-cli/internal/model"
)

// Keyword hints for the likely sign of a transaction. Substring matches
// against the lowercased description.
var (
	negHints = []string{"payment", "debit", "withdrawal", "charge", "purchase", "fee"}
	posHints = []string{"deposit", "credit", "refund", "rebate", "interest"}
)

// hintSign guesses a transaction's sign: keyword first, then the
// extracted sign, then negative; unrecognized rows are more often
// outflows than inflows.
func hintSign(desc string, original decimal.Decimal) int8 {
	d := strings.ToLower(desc)
	for _, w := range negHints {
		if strings.Contains(d, w) {
			return -1
		}
	}
	for _, w := range posHints {
		if strings.Contains(d, w) {
			return 1
		}
	}
	if original.Sign() > 0 {
		return 1
	}
	return -1
}

// Options bound the exact search.
type Options struct {
	// MaxNodes caps the nodes the exact solver may visit; 0 means the
	// default. The heuristic incumbent is returned when exhausted.
	MaxNodes int
	// Timeout bounds solver wall time; 0 means no extra deadline.
	Timeout time.Duration
}

const defaultMaxNodes = 200_000

// Reconcile chooses signs for the transactions so their sum tracks the
// statement's expected net change. Magnitudes are never altered. With no
// usable summary figures the input is returned unchanged and the solver
// is reported as skipped.
func Reconcile(ctx context.Context, txs []model.Transaction, meta model.StatementMeta, opts Options) model.ReconcileResult {
	expected := meta.ExpectedDelta()
	if expected == nil {
		return model.ReconcileResult{
			Corrected:   txs,
			RealizedSum: sumAmounts(txs),
			SolverUsed:  model.SolverSkipped,
		}
	}

	hints := make([]int8, len(txs))
	mags := make([]int64, len(txs))
	for i, t := range txs {
		hints[i] = hintSign(t.Description, t.Amount)
		mags[i] = t.Amount.Abs().Round(2).Shift(2).IntPart()
	}

	signs := hints
	mode := model.SolverHeuristic
	if len(txs) > 0 {
		if opts.Timeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
			defer cancel()
		}
		maxNodes := opts.MaxNodes
		if maxNodes <= 0 {
			maxNodes = defaultMaxNodes
		}

		expCents := expected.Round(2).Shift(2).IntPart()
		var complete bool
		signs, complete = solve(ctx, mags, hints, expCents, maxNodes)
		if complete {
			mode = model.SolverExact
		}
	}

	corrected := applySigns(txs, signs)
	sum := sumAmounts(corrected)
	diff := sum.Sub(*expected).Abs()

	return model.ReconcileResult{
		Corrected:    corrected,
		Expected:     expected,
		RealizedSum:  sum,
		AbsoluteDiff: &diff,
		SolverUsed:   mode,
	}
}

func applySigns(txs []model.Transaction, signs []int8) []model.Transaction {
	out := make([]model.Transaction, len(txs))
	for i, t := range txs {
		mag := t.Amount.Abs()
		if signs[i] < 0 {
			mag = mag.Neg()
		}
		t.Amount = mag
		out[i] = t
	}
	return out
}

func sumAmounts(txs []model.Transaction) decimal.Decimal {
	sum := decimal.Zero
	for _, t := range txs {
		sum = sum.Add(t.Amount)
	}
	return sum
}

// Verification is the post-hoc tolerance check between a transaction set
// and the statement figures, independent of any sign correction.
type Verification struct {
	TransactionsSum decimal.Decimal  `json:"transactions_sum"`
	ExpectedDelta   *decimal.Decimal `json:"expected_delta"`
	TotalsSum       *decimal.Decimal `json:"totals_section_sum"`
	Reconciled      *bool            `json:"reconciled"`
	Mismatch        *decimal.Decimal `json:"mismatch"`
}

// Verify compares the transaction sum against the balance delta when
// both balances are known, else against the totals section. The
// tolerance is one currency unit or 0.5% of the target, whichever is
// larger. With no figures to compare against, Reconciled stays nil.
func Verify(txs []model.Transaction, meta model.StatementMeta) Verification {
	v := Verification{TransactionsSum: sumAmounts(txs).Round(2)}

	if meta.OpeningBalance != nil && meta.ClosingBalance != nil {
		d := meta.ClosingBalance.Sub(*meta.OpeningBalance)
		v.ExpectedDelta = &d
	}
	if meta.TotalDeposits != nil || meta.TotalWithdrawals != nil {
		d := decimal.Zero
		if meta.TotalDeposits != nil {
			d = d.Add(*meta.TotalDeposits)
		}
		if meta.TotalWithdrawals != nil {
			d = d.Add(*meta.TotalWithdrawals)
		}
		v.TotalsSum = &d
	}

	target := v.ExpectedDelta
	if target == nil {
		target = v.TotalsSum
	}
	if target == nil {
		return v
	}

	diff := v.TransactionsSum.Sub(*target).Abs().Round(2)
	tolerance := decimal.NewFromFloat(0.005).Mul(target.Abs())
	if tolerance.LessThan(decimal.NewFromInt(1)) {
		tolerance = decimal.NewFromInt(1)
	}
	ok := diff.LessThanOrEqual(tolerance)
	v.Reconciled = &ok
	v.Mismatch = &diff
	return v
}
