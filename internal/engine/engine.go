// Package engine runs the full statement pipeline: strategy extraction
// and metadata scanning in parallel, an optional OCR re-run for scanned
// documents, consensus voting, sign reconciliation, and quality scoring.
// One call parses one document; runs share no state and may proceed
// concurrently.
package engine

import (
	"context"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sells-group/statement-cli/internal/config"
	"github.com/sells-group/statement-cli/internal/document"
	"github.com/sells-group/statement-cli/internal/extract"
	"github.com/sells-group/statement-cli/internal/ingest"
	"github.com/sells-group/statement-cli/internal/model"
	"github.com/sells-group/statement-cli/internal/ocr"
	"github.com/sells-group/statement-cli/internal/quality"
	"github.com/sells-group/statement-cli/internal/reconcile"
	"github.com/sells-group/statement-cli/internal/templates"
)

// Engine parses statement documents. Construct once with New and reuse;
// all fields are read-only after construction.
type Engine struct {
	cfg        *config.Config
	recognizer ocr.Recognizer
	strategies []extract.Strategy
	ocrPass    []extract.Strategy
}

// New builds an engine over the given template set. recognizer may be nil
// to disable the scanned-document fallback regardless of configuration.
func New(cfg *config.Config, tpls *templates.Set, recognizer ocr.Recognizer) *Engine {
	return &Engine{
		cfg:        cfg,
		recognizer: recognizer,
		strategies: extract.Registry(tpls),
		ocrPass:    extract.OCRRegistry(),
	}
}

// Result is everything one document run produced.
type Result struct {
	Transactions   []model.Transaction    `json:"transactions"`
	Meta           model.StatementMeta    `json:"meta"`
	Reconciliation model.ReconcileResult  `json:"reconciliation"`
	Verification   reconcile.Verification `json:"verification"`
	Quality        model.QualityReport    `json:"quality"`
	Provenance     map[string]int         `json:"provenance"`
	Clusters       int                    `json:"clusters"`
	Accepted       int                    `json:"accepted"`
	Source         string                 `json:"source"`
}

// ParsePDF parses raw PDF bytes. The only error is bytes that are not an
// openable document; everything downstream degrades to fewer candidates,
// a lower score, or a skipped solver instead of failing.
func (e *Engine) ParsePDF(ctx context.Context, data []byte, source string) (*Result, error) {
	doc, err := document.Load(data)
	if err != nil {
		return nil, eris.Wrap(err, "engine: load document")
	}
	return e.parseDocument(ctx, doc, data, source), nil
}

// ParseFile parses a statement from disk, dispatching on extension.
func (e *Engine) ParseFile(ctx context.Context, path string) (*Result, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, eris.Wrapf(err, "engine: read %s", path)
	}
	return e.ParseBytes(ctx, data, filepath.Base(path))
}

// ParseBytes parses statement bytes named by filename: .pdf runs the full
// pipeline, .csv and .xlsx/.xls go through tabular ingestion. Anything
// else is an error.
func (e *Engine) ParseBytes(ctx context.Context, data []byte, filename string) (*Result, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return e.ParsePDF(ctx, data, filename)
	case ".csv":
		txs, err := ingest.CSV(data, filename, ingest.CSVOptions{Charset: e.cfg.Parse.CSVCharset})
		if err != nil {
			return nil, err
		}
		return e.tabularResult(ctx, txs, model.ProvCSV, filename), nil
	case ".xlsx", ".xls":
		txs, err := ingest.XLSX(data, filename)
		if err != nil {
			return nil, err
		}
		return e.tabularResult(ctx, txs, model.ProvXLSX, filename), nil
	default:
		return nil, eris.Errorf("engine: unsupported file type %q", filepath.Ext(filename))
	}
}

// parseDocument is the pipeline behind ParsePDF. raw carries the original
// bytes for the OCR re-run.
func (e *Engine) parseDocument(ctx context.Context, doc *document.Document, raw []byte, source string) *Result {
	slots := make([][]model.Candidate, len(e.strategies))
	var meta model.StatementMeta

	var g errgroup.Group
	for i, s := range e.strategies {
		i, s := i, s
		g.Go(func() error {
			slots[i] = safeExtract(s, doc, source)
			return nil
		})
	}
	g.Go(func() error {
		meta = extract.StatementMetadata(doc.PlainText())
		return nil
	})
	_ = g.Wait() // extraction never errors; Wait is the consensus barrier

	provenance := make(map[string]int, len(e.strategies)+len(e.ocrPass))
	var pool []model.Candidate
	for i, s := range e.strategies {
		n := len(slots[i])
		// A template miss is the normal case for unknown layouts; only a
		// template that actually fired shows up in provenance.
		if s.Name() != model.ProvTemplate || n > 0 {
			provenance[s.Name()] = n
		}
		pool = append(pool, slots[i]...)
	}

	pool = e.recognizeIfScanned(ctx, doc, raw, source, pool, provenance)

	accepted, clusters := aggregate(pool, e.cfg.Consensus.MinSupport, e.cfg.Consensus.SingletonAllowance)

	rec := reconcile.Reconcile(ctx, accepted, meta, reconcile.Options{
		MaxNodes: e.cfg.Solver.MaxNodes,
		Timeout:  e.cfg.Solver.Timeout,
	})

	return &Result{
		Transactions:   rec.Corrected,
		Meta:           meta,
		Reconciliation: rec,
		Verification:   reconcile.Verify(rec.Corrected, meta),
		Quality:        quality.Score(rec.Corrected, meta, provenance),
		Provenance:     provenance,
		Clusters:       clusters,
		Accepted:       len(rec.Corrected),
		Source:         source,
	}
}

// recognizeIfScanned re-runs the generic strategies over an OCR rendering
// when the first pass came up empty or the document looks image-only.
// Failure at any step means no extra candidates, never an error.
func (e *Engine) recognizeIfScanned(ctx context.Context, doc *document.Document, raw []byte, source string, pool []model.Candidate, provenance map[string]int) []model.Candidate {
	if !e.cfg.OCR.Enabled || e.recognizer == nil {
		return pool
	}
	if len(pool) > 0 && !doc.LikelyScanned(e.cfg.Parse.ScannedCharThreshold) {
		return pool
	}

	recognized := e.recognizer.Recognize(ctx, raw)
	if len(recognized) == 0 {
		return pool
	}
	ocrDoc, err := document.Load(recognized)
	if err != nil {
		zap.L().Debug("engine: recognized bytes unreadable", zap.Error(err))
		return pool
	}

	for _, s := range e.ocrPass {
		cands := safeExtract(s, ocrDoc, source)
		tag := model.OCRPrefix + s.Name()
		provenance[tag] = len(cands)
		for i := range cands {
			cands[i].Provenance = tag
		}
		pool = append(pool, cands...)
	}
	return pool
}

// tabularResult wraps an ingested row set in the Result shape. Tabular
// exports carry signs and no summary figures, so reconciliation is
// skipped and the score has no consensus component.
func (e *Engine) tabularResult(ctx context.Context, txs []model.Transaction, prov, source string) *Result {
	rec := reconcile.Reconcile(ctx, txs, model.StatementMeta{}, reconcile.Options{})
	return &Result{
		Transactions:   rec.Corrected,
		Reconciliation: rec,
		Verification:   reconcile.Verify(rec.Corrected, model.StatementMeta{}),
		Quality:        quality.Score(txs, model.StatementMeta{}, nil),
		Provenance:     map[string]int{prov: len(txs)},
		Clusters:       len(txs),
		Accepted:       len(txs),
		Source:         source,
	}
}

// safeExtract shields the pipeline from a panicking strategy: the
// strategy contributes nothing and the run carries on.
func safeExtract(s extract.Strategy, doc *document.Document, source string) (cands []model.Candidate) {
	defer func() {
		if r := recover(); r != nil {
			zap.L().Warn("engine: strategy panicked",
				zap.String("strategy", s.Name()), zap.Any("cause", r))
			cands = nil
		}
	}()
	return s.Extract(doc, source)
}
