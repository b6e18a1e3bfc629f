package extract

import (
	"github.com/sells-group/statement-cli/internal/document"
	"github.com/sells-group/statement-cli/internal/model"
)

// TableStrategy reads transactions out of detected table regions. The
// first row is taken as a header and matched against the canonical field
// names; when that matches nothing the rows are normalized positionally
// instead of discarding the table.
type TableStrategy struct{}

// Name implements Strategy.
func (TableStrategy) Name() string { return model.ProvTables }

// Extract implements Strategy. Table rows are not deduplicated: a row
// repeated across detected tables is genuine repetition and its extra
// weight belongs in the consensus vote.
func (TableStrategy) Extract(doc *document.Document, source string) []model.Candidate {
	var out []model.Candidate
	for pi := range doc.Pages {
		for _, tbl := range doc.Pages[pi].Tables() {
			if len(tbl.Rows) < 2 {
				continue
			}
			header, rows := tbl.Rows[0], tbl.Rows[1:]

			txs := NormalizeGrid(header, rows, source)
			if len(txs) == 0 {
				txs = InferGrid(rows, source)
			}
			for _, tx := range txs {
				out = append(out, candidate(tx, model.ProvTables))
			}
		}
	}
	return out
}
