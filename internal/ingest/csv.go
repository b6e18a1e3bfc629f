// Package ingest reads already-digital transaction exports (CSV, XLSX)
// into the shared transaction model. Files here are trusted grids: no
// consensus vote runs over them, only header normalization.
package ingest

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/text/encoding/htmlindex"

	"github.com/sells-group/statement-cli/internal/extract"
	"github.com/sells-group/statement-cli/internal/model"
)

// CSVOptions configures CSV decoding.
type CSVOptions struct {
	// Charset names the source encoding (an HTML charset name such as
	// "windows-1252"). Empty means UTF-8.
	Charset string
	// Delimiter defaults to ','.
	Delimiter rune
}

// CSV parses a CSV export. The first row is the header; rows may have
// varying field counts. Rows whose amount cannot be parsed are dropped.
func CSV(data []byte, source string, opts CSVOptions) ([]model.Transaction, error) {
	var r io.Reader = bytes.NewReader(data)
	if opts.Charset != "" {
		enc, err := htmlindex.Get(opts.Charset)
		if err != nil {
			return nil, eris.Wrapf(err, "ingest: unknown charset %q", opts.Charset)
		}
		r = enc.NewDecoder().Reader(r)
	}

	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1 // statements export ragged rows

	var header []string
	var rows [][]string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, eris.Wrap(err, "ingest: read csv row")
		}
		for i := range record {
			record[i] = strings.TrimSpace(record[i])
		}
		if header == nil {
			header = record
			continue
		}
		rows = append(rows, record)
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
