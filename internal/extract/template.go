package extract

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/sells-group/statement-cli/internal/document"
	"github.com/sells-group/statement-cli/internal/model"
	"github.com/sells-group/statement-cli/internal/templates"
)

// templateSamplePages is how far into the document anchors are searched.
const templateSamplePages = 2

// TemplateStrategy reads documents whose issuer layout is described by an
// operator template: anchors select the template, then each line's tokens
// are routed to the date, description, and amount columns by x position.
type TemplateStrategy struct {
	Templates *templates.Set
}

// Name implements Strategy.
func (TemplateStrategy) Name() string { return model.ProvTemplate }

// Extract implements Strategy. Without a matching template it contributes
// nothing and leaves the document to the generic strategies.
func (s TemplateStrategy) Extract(doc *document.Document, source string) []model.Candidate {
	sel := s.Templates.Match(doc.SampleText(templateSamplePages))
	if sel == nil {
		return nil
	}

	seen := make(map[string]bool)
	var out []model.Candidate
	for pi := range doc.Pages {
		for _, line := range document.GroupLines(doc.Pages[pi].Tokens, lineTolerance) {
			tx, ok := s.lineTransaction(sel, line, source)
			if !ok {
				continue
			}
			key := tx.ClusterKey()
			if seen[key] {
				continue
			}
			seen[key] = true
			out = append(out, candidate(tx, model.ProvTemplate))
		}
	}
	return out
}

func (s TemplateStrategy) lineTransaction(sel *templates.Template, line document.Line, source string) (model.Transaction, bool) {
	var dateToks, descToks, amtToks []string
	for _, tok := range line.Tokens {
		switch {
		case sel.Columns.Date.Contains(tok.X):
			dateToks = append(dateToks, tok.Text)
		case sel.Columns.Description.Contains(tok.X):
			descToks = append(descToks, tok.Text)
		case sel.Columns.Amount.Contains(tok.X):
			amtToks = append(amtToks, tok.Text)
		}
	}

	amount, ok := rightmostAmount(amtToks)
	if !ok {
		return model.Transaction{}, false
	}
	desc := strings.Trim(strings.Join(descToks, " "), " -:\t")
	if desc == "" {
		return model.Transaction{}, false
	}

	return model.Transaction{
		Date:        templateDate(sel, dateToks),
		Description: desc,
		Amount:      amount,
		Source:      source,
	}, true
}

// templateDate finds the first date-shaped token among the leading
// date-column tokens. A template's explicit layout takes precedence over
// the shared formats.
func templateDate(sel *templates.Template, toks []string) *time.Time {
	limit := len(toks)
	if limit > 4 {
		limit = 4
	}
	for _, tok := range toks[:limit] {
		m := datePattern.FindString(tok)
		if m == "" {
			continue
		}
		if sel.DateFormat != "" {
			if d, err := time.Parse(sel.DateFormat, m); err == nil {
				return &d
			}
		}
		if d, ok := ParseDate(m); ok {
			return &d
		}
	}
	return nil
}

func rightmostAmount(toks []string) (decimal.Decimal, bool) {
	for i := len(toks) - 1; i >= 0; i-- {
		if v, ok := ParseAmount(toks[i]); ok {
			return v, true
		}
	}
	return decimal.Zero, false
}
