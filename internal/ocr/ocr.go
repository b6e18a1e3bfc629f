// Package ocr re-renders scanned documents with a text layer so the
// extraction strategies get a second chance at them.
package ocr

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"github.com/sells-group/statement-cli/internal/config"
)

// Recognizer produces a text-bearing rendering of document bytes.
// A nil return means recognition was unavailable or failed; OCR is a
// best-effort fallback and never fails a parse.
type Recognizer interface {
	Recognize(ctx context.Context, data []byte) []byte
}

// New returns the configured recognizer.
func New(cfg config.OCRConfig) Recognizer {
	return &OCRmyPDF{
		bin:       cfg.BinPath,
		languages: cfg.Languages,
		timeout:   cfg.Timeout,
	}
}

// OCRmyPDF shells out to the ocrmypdf CLI, which rasterizes each page,
// runs tesseract over it, and rebuilds the PDF with an invisible text
// layer.
type OCRmyPDF struct {
	bin       string
	languages string
	timeout   time.Duration
}

// Recognize implements Recognizer. Work happens in a temp directory that
// is always cleaned up; any failure is logged at debug level and yields
// nil rather than an error.
func (o *OCRmyPDF) Recognize(ctx context.Context, data []byte) []byte {
	bin := o.bin
	if bin == "" {
		bin = "ocrmypdf"
	}

	td, err := os.MkdirTemp("", "stmt-ocr-*")
	if err != nil {
		zap.L().Debug("ocr: temp dir", zap.Error(err))
		return nil
	}
	defer os.RemoveAll(td)

	in := filepath.Join(td, "in.pdf")
	out := filepath.Join(td, "out.pdf")
	if err := os.WriteFile(in, data, 0o600); err != nil {
		zap.L().Debug("ocr: write input", zap.Error(err))
		return nil
	}

	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	if err := runOCR(ctx, bin, o.languages, in, out); err != nil {
		return nil
	}

	rendered, err := os.ReadFile(out)
	if err != nil {
		zap.L().Debug("ocr: read output", zap.Error(err))
		return nil
	}
	return rendered
}
