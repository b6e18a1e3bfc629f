package extract

import (
	"github.com/sells-group/statement-cli/internal/document"
	"github.com/sells-group/statement-cli/internal/model"
	"github.com/sells-group/statement-cli/internal/templates"
)

// lineTolerance buckets tokens whose baselines differ by less than this
// many points into one visual line.
const lineTolerance = 3.5

// Strategy is one independent way of reading transactions off a document.
// Strategies never fail: one that cannot make sense of a page returns
// nothing and the consensus vote decides among the rest.
type Strategy interface {
	// Name tags the strategy's candidates for provenance accounting.
	Name() string
	// Extract returns every candidate the strategy can recover from doc.
	Extract(doc *document.Document, source string) []model.Candidate
}

// Registry returns all strategies in their run order: template first so a
// known layout contributes its vote, then the three generic readers.
func Registry(tpls *templates.Set) []Strategy {
	return []Strategy{
		TemplateStrategy{Templates: tpls},
		TableStrategy{},
		WordStrategy{},
		TextStrategy{},
	}
}

// OCRRegistry returns the strategies worth re-running on an OCR rendering.
// Template anchors rarely survive OCR so that strategy is left out.
func OCRRegistry() []Strategy {
	return []Strategy{
		TableStrategy{},
		WordStrategy{},
		TextStrategy{},
	}
}

// candidate wraps a transaction with its provenance tag.
func candidate(tx model.Transaction, prov string) model.Candidate {
	return model.Candidate{Transaction: tx, Provenance: prov}
}
