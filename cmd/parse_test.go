//go:build !integration

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"github.com/sells-group/statement-cli/internal/engine"
	"github.com/sells-group/statement-cli/internal/model"
)

func TestFormatResults(t *testing.T) {
	d := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	res := &engine.Result{
		Source:   "statement.pdf",
		Accepted: 2,
		Clusters: 2,
		Transactions: []model.Transaction{
			{Date: &d, Description: "Payroll Deposit", Amount: decimal.NewFromInt(2000), Category: "Income", Source: "statement.pdf"},
			{Description: "Coffee Shop", Amount: decimal.RequireFromString("-4.50"), Source: "statement.pdf"},
		},
		Reconciliation: model.ReconcileResult{SolverUsed: model.SolverExact},
		Quality: model.QualityReport{
			Score:  82.5,
			Issues: []string{"Low date coverage"},
		},
	}

	var buf bytes.Buffer
	formatResults(&buf, []*engine.Result{res})

	output := buf.String()
	assert.Contains(t, output, "statement.pdf: 2 transactions, score 82.5, solver exact")
	assert.Contains(t, output, "! Low date coverage")
	assert.Contains(t, output, "DATE")
	assert.Contains(t, output, "2024-03-01")
	assert.Contains(t, output, "Payroll Deposit")
	assert.Contains(t, output, "2000.00")
	assert.Contains(t, output, "Coffee Shop")
	assert.Contains(t, output, "-4.50")
	assert.Contains(t, output, "Income")
}

func TestFormatResults_NoTransactions(t *testing.T) {
	res := &engine.Result{
		Source:         "empty.pdf",
		Reconciliation: model.ReconcileResult{SolverUsed: model.SolverSkipped},
		Quality:        model.QualityReport{Score: 15.0},
	}

	var buf bytes.Buffer
	formatResults(&buf, []*engine.Result{res})

	output := buf.String()
	assert.Contains(t, output, "empty.pdf: 0 transactions, score 15.0, solver skipped")
	assert.NotContains(t, output, "DATE")
}

func TestFormatDate(t *testing.T) {
	d := time.Date(2024, 12, 31, 8, 0, 0, 0, time.UTC)
	assert.Equal(t, "2024-12-31", formatDate(&d))
	assert.Equal(t, "-", formatDate(nil))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "exactly ten", truncate("exactly ten", 11))
	assert.Equal(t, "a very ...", truncate("a very long description", 10))
}
