package reconcile

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/statement-cli/internal/model"
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func decPtr(s string) *decimal.Decimal {
	d := dec(s)
	return &d
}

func tx(desc, amount string) model.Transaction {
	return model.Transaction{Description: desc, Amount: dec(amount)}
}

func TestHintSign(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		desc   string
		amount string
		want   int8
	}{
		{"withdrawal keyword", "ATM Withdrawal Main St", "60.00", -1},
		{"deposit keyword", "Payroll DEPOSIT", "-2000.00", 1},
		{"fee keyword", "Monthly Maintenance Fee", "12.00", -1},
		{"interest keyword", "Interest Earned", "-0.41", 1},
		{"negative beats positive keyword", "Credit Card Payment", "150.00", -1},
		{"no keyword keeps positive sign", "Coffee Shop", "4.50", 1},
		{"no keyword keeps negative sign", "Coffee Shop", "-4.50", -1},
		{"no keyword zero defaults negative", "Coffee Shop", "0", -1},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, hintSign(tt.desc, dec(tt.amount)))
		})
	}
}

func TestReconcile_KeywordHintsAlone(t *testing.T) {
	t.Parallel()

	txs := []model.Transaction{
		tx("Payroll Deposit", "2000.00"),
		tx("Card Purchase Grocer", "45.00"),
		tx("ATM Withdrawal", "60.00"),
	}
	meta := model.StatementMeta{
		OpeningBalance: decPtr("1000.00"),
		ClosingBalance: decPtr("2895.00"),
	}

	res := Reconcile(context.Background(), txs, meta, Options{})

	assert.Equal(t, model.SolverExact, res.SolverUsed)
	require.Len(t, res.Corrected, 3)
	assert.Equal(t, "2000", res.Corrected[0].Amount.String())
	assert.Equal(t, "-45", res.Corrected[1].Amount.String())
	assert.Equal(t, "-60", res.Corrected[2].Amount.String())
	assert.Equal(t, "1895", res.RealizedSum.String())
	require.NotNil(t, res.AbsoluteDiff)
	assert.True(t, res.AbsoluteDiff.IsZero())
}

func TestReconcile_FlipsUnhintedRow(t *testing.T) {
	t.Parallel()

	// "Coffee Shop" carries no keyword and was extracted positive; only
	// flipping it reaches the expected delta.
	txs := []model.Transaction{
		tx("Coffee Shop", "4.50"),
		tx("Payroll Deposit", "2000.00"),
	}
	meta := model.StatementMeta{
		OpeningBalance: decPtr("100.00"),
		ClosingBalance: decPtr("2095.50"),
	}

	res := Reconcile(context.Background(), txs, meta, Options{})

	assert.Equal(t, model.SolverExact, res.SolverUsed)
	assert.Equal(t, "-4.5", res.Corrected[0].Amount.String())
	assert.Equal(t, "2000", res.Corrected[1].Amount.String())
	require.NotNil(t, res.AbsoluteDiff)
	assert.True(t, res.AbsoluteDiff.IsZero())
}

func TestReconcile_TotalsOnlyDelta(t *testing.T) {
	t.Parallel()

	txs := []model.Transaction{tx("Refund issued", "-300.00")}
	meta := model.StatementMeta{
		TotalDeposits:    decPtr("500.00"),
		TotalWithdrawals: decPtr("-200.00"),
	}

	res := Reconcile(context.Background(), txs, meta, Options{})

	require.NotNil(t, res.Expected)
	assert.Equal(t, "300", res.Expected.String())
	assert.Equal(t, "300", res.Corrected[0].Amount.String())
	assert.Equal(t, model.SolverExact, res.SolverUsed)
}

func TestReconcile_NoFiguresSkips(t *testing.T) {
	t.Parallel()

	txs := []model.Transaction{
		tx("Coffee Shop", "-4.50"),
		tx("Payroll", "2000.00"),
	}

	res := Reconcile(context.Background(), txs, model.StatementMeta{}, Options{})

	assert.Equal(t, model.SolverSkipped, res.SolverUsed)
	assert.Nil(t, res.Expected)
	assert.Nil(t, res.AbsoluteDiff)
	require.Len(t, res.Corrected, 2)
	assert.Equal(t, "-4.5", res.Corrected[0].Amount.String())
	assert.Equal(t, "1995.5", res.RealizedSum.String())
}

func TestReconcile_EmptyTransactions(t *testing.T) {
	t.Parallel()

	meta := model.StatementMeta{
		OpeningBalance: decPtr("0"),
		ClosingBalance: decPtr("100.00"),
	}

	res := Reconcile(context.Background(), nil, meta, Options{})

	assert.Equal(t, model.SolverHeuristic, res.SolverUsed)
	assert.Empty(t, res.Corrected)
	require.NotNil(t, res.AbsoluteDiff)
	assert.Equal(t, "100", res.AbsoluteDiff.String())
}

func TestReconcile_NodeBudgetFallsBackToHeuristic(t *testing.T) {
	t.Parallel()

	txs := []model.Transaction{
		tx("Mystery A", "10.00"),
		tx("Mystery B", "20.00"),
	}
	meta := model.StatementMeta{
		OpeningBalance: decPtr("0"),
		ClosingBalance: decPtr("10.00"),
	}

	res := Reconcile(context.Background(), txs, meta, Options{MaxNodes: 1})

	assert.Equal(t, model.SolverHeuristic, res.SolverUsed)
	assert.Equal(t, "10", res.Corrected[0].Amount.String())
	assert.Equal(t, "20", res.Corrected[1].Amount.String())
	require.NotNil(t, res.AbsoluteDiff)
	assert.Equal(t, "20", res.AbsoluteDiff.String())
}

func TestReconcile_ExactNeverWorseThanHeuristic(t *testing.T) {
	t.Parallel()

	txs := []model.Transaction{
		tx("Opening widget", "13.37"),
		tx("Gadget payment", "250.00"),
		tx("Refund issued", "19.99"),
		tx("Misc", "-75.00"),
		tx("Service charge", "12.50"),
		tx("Transfer", "500.00"),
	}
	meta := model.StatementMeta{
		OpeningBalance: decPtr("500.00"),
		ClosingBalance: decPtr("500.00"),
	}

	heuristic := Reconcile(context.Background(), txs, meta, Options{MaxNodes: 1})
	exact := Reconcile(context.Background(), txs, meta, Options{})

	require.Equal(t, model.SolverHeuristic, heuristic.SolverUsed)
	require.Equal(t, model.SolverExact, exact.SolverUsed)
	assert.True(t, exact.AbsoluteDiff.LessThanOrEqual(*heuristic.AbsoluteDiff),
		"exact diff %s worse than heuristic %s", exact.AbsoluteDiff, heuristic.AbsoluteDiff)
}

func TestVerify(t *testing.T) {
	t.Parallel()

	t.Run("balance delta within tolerance", func(t *testing.T) {
		t.Parallel()
		txs := []model.Transaction{tx("a", "25.00"), tx("b", "24.50")}
		meta := model.StatementMeta{
			OpeningBalance: decPtr("100.00"),
			ClosingBalance: decPtr("150.00"),
		}
		v := Verify(txs, meta)
		require.NotNil(t, v.Reconciled)
		assert.True(t, *v.Reconciled)
		assert.Equal(t, "0.5", v.Mismatch.String())
		assert.Equal(t, "50", v.ExpectedDelta.String())
	})

	t.Run("totals mismatch", func(t *testing.T) {
		t.Parallel()
		txs := []model.Transaction{tx("a", "300.00")}
		meta := model.StatementMeta{
			TotalDeposits:    decPtr("1000.00"),
			TotalWithdrawals: decPtr("-400.00"),
		}
		v := Verify(txs, meta)
		require.NotNil(t, v.Reconciled)
		assert.False(t, *v.Reconciled)
		assert.Nil(t, v.ExpectedDelta)
		assert.Equal(t, "600", v.TotalsSum.String())
	})

	t.Run("tolerance scales with target", func(t *testing.T) {
		t.Parallel()
		txs := []model.Transaction{tx("a", "9960.00")}
		meta := model.StatementMeta{
			OpeningBalance: decPtr("0"),
			ClosingBalance: decPtr("10000.00"),
		}
		v := Verify(txs, meta)
		require.NotNil(t, v.Reconciled)
		assert.True(t, *v.Reconciled)
	})

	t.Run("no figures", func(t *testing.T) {
		t.Parallel()
		v := Verify([]model.Transaction{tx("a", "1.00")}, model.StatementMeta{})
		assert.Nil(t, v.Reconciled)
		assert.Nil(t, v.Mismatch)
		assert.Equal(t, "1", v.TransactionsSum.String())
	})
}
