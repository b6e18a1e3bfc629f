package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/statement-cli/internal/document"
	"github.com/sells-group/statement-cli/internal/model"
)

func TestParseTextLines_CompleteRows(t *testing.T) {
	t.Parallel()

	rows := parseTextLines([]string{
		"03/01/2024 Coffee Shop -4.50",
		"03/02/2024 Payroll 2,000.00",
	})

	require.Len(t, rows, 2)
	assert.Equal(t, "Coffee Shop", rows[0].desc)
	assert.Equal(t, "-4.5", rows[0].amount.String())
	require.NotNil(t, rows[1].date)
	assert.Equal(t, "2024-03-02", rows[1].date.Format("2006-01-02"))
}

func TestParseTextLines_WrappedDescription(t *testing.T) {
	t.Parallel()

	rows := parseTextLines([]string{
		"03/05/2024 ACME PROPERTY MGMT",
		"MONTHLY RENT UNIT 4B",
		"-1,200.00",
	})

	require.Len(t, rows, 1)
	assert.Equal(t, "ACME PROPERTY MGMT MONTHLY RENT UNIT 4B", rows[0].desc)
	assert.Equal(t, "-1200", rows[0].amount.String())
	require.NotNil(t, rows[0].date)
}

func TestParseTextLines_DateOnlyReplacesPending(t *testing.T) {
	t.Parallel()

	rows := parseTextLines([]string{
		"03/05/2024 Abandoned row",
		"03/06/2024 Card payment",
		"-45.00",
	})

	require.Len(t, rows, 1)
	assert.Equal(t, "Card payment", rows[0].desc)
	assert.Equal(t, "2024-03-06", rows[0].date.Format("2006-01-02"))
}

func TestParseTextLines_FailedEmitKeepsPending(t *testing.T) {
	t.Parallel()

	// Second line has date and amount but nothing between them, so it
	// cannot emit; the pending row from the first line must survive it.
	rows := parseTextLines([]string{
		"03/05/2024 Rent",
		"03/06/2024 450.00",
		"900.00",
	})

	require.Len(t, rows, 1)
	assert.Equal(t, "Rent", rows[0].desc)
	assert.Equal(t, "900", rows[0].amount.String())
	assert.Equal(t, "2024-03-05", rows[0].date.Format("2006-01-02"))
}

func TestParseTextLines_SkipsHeadersAndFooters(t *testing.T) {
	t.Parallel()

	rows := parseTextLines([]string{
		"Statement Summary",
		"Opening Balance 1,000.00",
		"Total Deposits 2,500.00",
		"page 3",
		"03/01/2024 Coffee -4.50",
	})

	require.Len(t, rows, 1)
	assert.Equal(t, "Coffee", rows[0].desc)
}

func TestParseTextLines_AmountBeforeDateIgnored(t *testing.T) {
	t.Parallel()

	// The trailing year satisfies the amount grammar but sits inside the
	// date, so the line carries no usable amount position.
	rows := parseTextLines([]string{"Deposit on 03/01/2024"})
	assert.Empty(t, rows)
}

func TestTextStrategy_Extract(t *testing.T) {
	t.Parallel()

	doc := &document.Document{Pages: []document.Page{{
		Number: 1,
		Text:   "03/01/2024 Coffee Shop -4.50\n03/02/2024 Payroll 2,000.00\nPage 1",
	}}}

	cands := TextStrategy{}.Extract(doc, "s.pdf")
	require.Len(t, cands, 2)
	assert.Equal(t, model.ProvText, cands[0].Provenance)
	assert.Equal(t, "Coffee Shop", cands[0].Description)
	assert.Equal(t, "s.pdf", cands[0].Source)
}

func TestTextStrategy_TwoColumnPage(t *testing.T) {
	t.Parallel()

	// Columns far apart; full-page text interleaves them into unusable
	// lines, but the half renders recover each column's rows.
	left := []document.Token{
		tok("03/01/2024", 40, 700), tok("Coffee", 110, 700), tok("-4.50", 170, 700),
	}
	right := []document.Token{
		tok("03/02/2024", 400, 700), tok("Payroll", 470, 700), tok("2,000.00", 530, 700),
	}
	page := document.Page{Number: 1, Tokens: append(left, right...)}
	doc := &document.Document{Pages: []document.Page{page}}

	cands := TextStrategy{}.Extract(doc, "s.pdf")
	require.Len(t, cands, 2)

	byDesc := map[string]bool{}
	for _, c := range cands {
		byDesc[c.Description] = true
	}
	assert.True(t, byDesc["Coffee"])
	assert.True(t, byDesc["Payroll"])
}

func TestTextStrategy_Dedupes(t *testing.T) {
	t.Parallel()

	doc := &document.Document{Pages: []document.Page{{
		Number: 1,
		Text:   "03/01/2024 Coffee -4.50\n03/01/2024 Coffee -4.50",
	}}}

	cands := TextStrategy{}.Extract(doc, "s.pdf")
	assert.Len(t, cands, 1)
}
