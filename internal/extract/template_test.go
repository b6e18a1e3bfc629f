package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/statement-cli/internal/document"
	"github.com/sells-group/statement-cli/internal/model"
	"github.com/sells-group/statement-cli/internal/templates"
)

func acmeTemplates() *templates.Set {
	return templates.NewSet(templates.Template{
		Name:    "acme",
		Anchors: []string{"Acme Bank"},
		Columns: templates.Columns{
			Date:        templates.ColumnRange{0, 120},
			Description: templates.ColumnRange{120, 380},
			Amount:      templates.ColumnRange{380, 9999},
		},
	})
}

func statementPage() document.Page {
	return document.Page{
		Number: 1,
		Text:   "Acme Bank\nStatement of Account",
		Tokens: []document.Token{
			tok("03/01/2024", 50, 700), tok("Coffee", 150, 700), tok("Shop", 200, 700), tok("-4.50", 420, 700),
			tok("03/02/2024", 50, 680), tok("Payroll", 150, 680), tok("2,000.00", 410, 680),
			// No amount in range: skipped.
			tok("03/03/2024", 50, 660), tok("Carried", 150, 660), tok("forward", 210, 660),
			// Amount but empty description: skipped.
			tok("03/04/2024", 50, 640), tok("12.00", 420, 640),
		},
	}
}

func TestTemplateStrategy_Extract(t *testing.T) {
	t.Parallel()

	doc := &document.Document{Pages: []document.Page{statementPage()}}
	cands := TemplateStrategy{Templates: acmeTemplates()}.Extract(doc, "acme.pdf")

	require.Len(t, cands, 2)
	assert.Equal(t, model.ProvTemplate, cands[0].Provenance)

	assert.Equal(t, "Coffee Shop", cands[0].Description)
	assert.Equal(t, "-4.5", cands[0].Amount.String())
	require.NotNil(t, cands[0].Date)
	assert.Equal(t, "2024-03-01", cands[0].Date.Format("2006-01-02"))

	assert.Equal(t, "Payroll", cands[1].Description)
	assert.Equal(t, "2000", cands[1].Amount.String())
}

func TestTemplateStrategy_NoAnchorMatch(t *testing.T) {
	t.Parallel()

	page := statementPage()
	page.Text = "Some Other Bank"
	doc := &document.Document{Pages: []document.Page{page}}

	assert.Empty(t, TemplateStrategy{Templates: acmeTemplates()}.Extract(doc, "other.pdf"))
}

func TestTemplateStrategy_EmptySet(t *testing.T) {
	t.Parallel()

	doc := &document.Document{Pages: []document.Page{statementPage()}}
	assert.Empty(t, TemplateStrategy{Templates: templates.NewSet()}.Extract(doc, "acme.pdf"))
}

func TestTemplateStrategy_DateFormatOverride(t *testing.T) {
	t.Parallel()

	set := templates.NewSet(templates.Template{
		Name:       "euro",
		Anchors:    []string{"Euro Bank"},
		DateFormat: "2/1/2006",
	})
	doc := &document.Document{Pages: []document.Page{{
		Number: 1,
		Text:   "Euro Bank",
		Tokens: []document.Token{
			// 03/01 reads as January 3rd under the template's layout.
			tok("03/01/2024", 50, 700), tok("Miete", 150, 700), tok("-900.00", 420, 700),
		},
	}}}

	cands := TemplateStrategy{Templates: set}.Extract(doc, "de.pdf")
	require.Len(t, cands, 1)
	require.NotNil(t, cands[0].Date)
	assert.Equal(t, "2024-01-03", cands[0].Date.Format("2006-01-02"))
}

func TestTemplateStrategy_Dedupes(t *testing.T) {
	t.Parallel()

	page := document.Page{
		Number: 1,
		Text:   "Acme Bank",
		Tokens: []document.Token{
			tok("03/01/2024", 50, 700), tok("Coffee", 150, 700), tok("-4.50", 420, 700),
			tok("03/01/2024", 50, 680), tok("Coffee", 150, 680), tok("-4.50", 420, 680),
		},
	}
	doc := &document.Document{Pages: []document.Page{page}}

	cands := TemplateStrategy{Templates: acmeTemplates()}.Extract(doc, "acme.pdf")
	assert.Len(t, cands, 1)
}
