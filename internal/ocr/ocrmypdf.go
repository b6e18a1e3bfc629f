package ocr

import (
	"bytes"
	"context"
	"os/exec"

	"go.uber.org/zap"
)

// runOCR invokes the ocrmypdf CLI. --force-ocr rasterizes every page so
// rotated or skewed scans come back with a clean text layer even when a
// broken one is already present.
func runOCR(ctx context.Context, bin, languages string, in, out string) error {
	if languages == "" {
		languages = "eng"
	}

	args := []string{
		"--force-ocr",
		"--rotate-pages",
		"--deskew",
		"--optimize", "1",
		"--language", languages,
		"--output-type", "pdf",
		in,
		out,
	}

	cmd := exec.CommandContext(ctx, bin, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		zap.L().Debug("ocr: ocrmypdf failed",
			zap.Error(err), zap.String("stderr", stderr.String()))
		return err
	}
	return nil
}
