package ingest

import (
	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"

	"github.com/sells-group/statement-cli/internal/extract"
	"github.com/sells-group/statement-cli/internal/model"
)

// XLSX parses the first sheet of a workbook export. The first row is the
// header; rows whose amount cannot be parsed are dropped.
func XLSX(data []byte, source string) ([]model.Transaction, error) {
	f, err := xlsx.OpenBinary(data)
	if err != nil {
		return nil, eris.Wrap(err, "ingest: open xlsx")
	}
	if len(f.Sheets) == 0 {
		return nil, eris.New("ingest: xlsx has no sheets")
	}

	var header []string
	var rows [][]string
	for i, row := range f.Sheets[0].Rows {
		cells := rowToStrings(row)
		if i == 0 {
			header = cells
			continue
		}
		rows = append(rows, cells)
	}
	if header == nil || len(rows) == 0 {
		return nil, nil
	}

	txs := extract.NormalizeGrid(header, rows, source)
	if len(txs) == 0 {
		txs = extract.InferGrid(rows, source)
	}
	return txs, nil
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for j, cell := range row.Cells {
		cells[j] = cell.String()
	}
	return cells
}
