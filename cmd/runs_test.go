//go:build !integration

package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/sells-group/statement-cli/internal/store"
)

func TestFormatRunsList(t *testing.T) {
	now := time.Date(2025, 6, 15, 10, 30, 0, 0, time.UTC)
	runs := []store.RunRecord{
		{
			ID:         uuid.MustParse("abc12345-6789-4000-8000-000000000000"),
			CreatedAt:  now,
			Source:     "march.pdf",
			Score:      92.5,
			SolverUsed: "exact",
			Accepted:   14,
			Issues:     nil,
		},
		{
			ID:         uuid.MustParse("def12345-6789-4000-8000-000000000000"),
			CreatedAt:  now.Add(-1 * time.Hour),
			Source:     "april-statement-with-a-very-long-filename.pdf",
			Score:      41.0,
			SolverUsed: "skipped",
			Accepted:   3,
			Issues:     []string{"Low date coverage", "High duplicate rate"},
		},
	}

	var buf bytes.Buffer
	formatRunsList(&buf, runs)

	output := buf.String()
	assert.Contains(t, output, "ID")
	assert.Contains(t, output, "SOURCE")
	assert.Contains(t, output, "SOLVER")
	assert.Contains(t, output, "abc12345")
	assert.Contains(t, output, "march.pdf")
	assert.Contains(t, output, "92.5")
	assert.Contains(t, output, "exact")
	assert.Contains(t, output, "2025-06-15 10:30")
	assert.Contains(t, output, "def12345")
	// Long sources are truncated to keep the table narrow.
	assert.NotContains(t, output, "april-statement-with-a-very-long-filename.pdf")
	assert.Contains(t, output, "...")
}

func TestTruncateID(t *testing.T) {
	assert.Equal(t, "abc12345", truncateID("abc12345-6789-4000-8000-000000000000"))
	assert.Equal(t, "short", truncateID("short"))
}
