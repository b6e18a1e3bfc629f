package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseAmount(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "123.45", "123.45"},
		{"us thousands", "1,234.56", "1234.56"},
		{"eu thousands", "1.234,56", "1234.56"},
		{"comma decimal", "123,45", "123.45"},
		{"grouping only", "1,234", "1234"},
		{"multi grouping", "1,234,567", "1234567"},
		{"eu grouping only", "12.345.678", "12345678"},
		{"currency symbol", "$2,000.00", "2000"},
		{"rupee", "₹1,500.00", "1500"},
		{"euro spaced", "€ 1.234,56", "1234.56"},
		{"negative sign", "-15.00", "-15"},
		{"parentheses", "(4.50)", "-4.5"},
		{"open paren only", "(75.00", "-75"},
		{"debit marker", "123.45 DR", "-123.45"},
		{"credit marker", "123.45 CR", "123.45"},
		{"credit overrides parens", "(123.45) CR", "123.45"},
		{"debit overrides plain", "500.00 dr", "-500"},
		{"integer", "42", "42"},
		{"whitespace", "  1,234.56  ", "1234.56"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseAmount(tt.in)
			require.True(t, ok)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestParseAmount_Rejects(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"empty", ""},
		{"blank", "   "},
		{"letters", "TOTAL"},
		{"marker only", "CR"},
		{"sign only", "-"},
		{"trailing text", "123.45 posted"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := ParseAmount(tt.in)
			assert.False(t, ok)
		})
	}
}

func TestLocateAmount(t *testing.T) {
	assert.Equal(t, 3, LocateAmount("abc123.45"))
	assert.Equal(t, -1, LocateAmount("no numbers here"))
	assert.Equal(t, -1, LocateAmount(""))

	// The match may begin at the whitespace run preceding the amount;
	// callers re-parse from the offset, which trims.
	line := "Ending Balance: $2,350.00"
	idx := LocateAmount(line)
	require.GreaterOrEqual(t, idx, 0)
	got, ok := ParseAmount(line[idx:])
	require.True(t, ok)
	assert.Equal(t, "2350", got.String())
}
