package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/statement-cli/internal/engine"
	"github.com/sells-group/statement-cli/internal/ocr"
	"github.com/sells-group/statement-cli/internal/store"
	"github.com/sells-group/statement-cli/internal/templates"
)

// initEngine loads issuer templates and builds the parsing engine.
// forceOCR turns the OCR fallback on regardless of what the config says,
// so `parse --ocr` works without editing the config file.
func initEngine(forceOCR bool) (*engine.Engine, *templates.Set, error) {
	if forceOCR {
		cfg.OCR.Enabled = true
	}

	tpls, err := templates.Load(cfg.Templates.Dir)
	if err != nil {
		return nil, nil, eris.Wrap(err, "load templates")
	}
	if tpls.Len() > 0 {
		zap.L().Debug("templates loaded",
			zap.Int("count", tpls.Len()),
			zap.String("dir", cfg.Templates.Dir),
		)
	}

	var recognizer ocr.Recognizer
	if cfg.OCR.Enabled {
		recognizer = ocr.New(cfg.OCR)
	}

	return engine.New(cfg, tpls, recognizer), tpls, nil
}

// openStore opens the configured run store and fails when none is
// configured. Commands that can work without a store call store.Open
// directly instead.
func openStore(ctx context.Context) (store.Store, error) {
	st, err := store.Open(ctx, cfg.Store)
	if err != nil {
		return nil, err
	}
	if st == nil {
		return nil, eris.New("no run store configured; set store.driver to sqlite or postgres")
	}
	return st, nil
}
