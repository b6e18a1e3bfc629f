package model

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func dec(s string) *decimal.Decimal {
	d := decimal.RequireFromString(s)
	return &d
}

func TestExpectedDelta_FromBalances(t *testing.T) {
	t.Parallel()

	m := StatementMeta{OpeningBalance: dec("1000.00"), ClosingBalance: dec("2995.50")}
	got := m.ExpectedDelta()
	require.NotNil(t, got)
	assert.True(t, got.Equal(decimal.RequireFromString("1995.50")))
}

func TestExpectedDelta_BalancesWinOverTotals(t *testing.T) {
	t.Parallel()

	m := StatementMeta{
		OpeningBalance:   dec("100"),
		ClosingBalance:   dec("150"),
		TotalDeposits:    dec("999"),
		TotalWithdrawals: dec("-1"),
	}
	got := m.ExpectedDelta()
	require.NotNil(t, got)
	assert.True(t, got.Equal(decimal.NewFromInt(50)))
}

func TestExpectedDelta_FromTotals(t *testing.T) {
	t.Parallel()

	m := StatementMeta{TotalDeposits: dec("2000.00"), TotalWithdrawals: dec("-4.50")}
	got := m.ExpectedDelta()
	require.NotNil(t, got)
	assert.True(t, got.Equal(decimal.RequireFromString("1995.50")))
}

func TestExpectedDelta_SingleTotal(t *testing.T) {
	t.Parallel()

	m := StatementMeta{TotalWithdrawals: dec("-42.00")}
	got := m.ExpectedDelta()
	require.NotNil(t, got)
	assert.True(t, got.Equal(decimal.RequireFromString("-42")))
}

func TestExpectedDelta_Unknown(t *testing.T) {
	t.Parallel()

	assert.Nil(t, StatementMeta{}.ExpectedDelta())
	assert.True(t, StatementMeta{}.Empty())
}

func TestExpectedDelta_OneBalanceIsNotEnough(t *testing.T) {
	t.Parallel()

	m := StatementMeta{ClosingBalance: dec("100")}
	assert.Nil(t, m.ExpectedDelta())
	assert.False(t, m.Empty())
}

func TestSolverModeValues(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "exact", string(SolverExact))
	assert.Equal(t, "heuristic", string(SolverHeuristic))
	assert.Equal(t, "skipped", string(SolverSkipped))
}
