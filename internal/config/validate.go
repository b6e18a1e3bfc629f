package config

import (
	"fmt"
	"strings"

	"github.com/rotisserie/eris"
)

// Validate checks that the configuration is usable for the given command
// mode. It collects every problem rather than stopping at the first.
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Consensus.MinSupport < 1 {
		problems = append(problems, "consensus.min_support must be >= 1")
	}
	if c.Consensus.SingletonAllowance < 0 {
		problems = append(problems, "consensus.singleton_allowance must be >= 0")
	}
	if c.Solver.MaxNodes < 0 {
		problems = append(problems, "solver.max_nodes must be >= 0")
	}
	if c.OCR.Enabled && c.OCR.Timeout <= 0 {
		problems = append(problems, "ocr.timeout must be > 0 when ocr is enabled")
	}

	switch mode {
	case "parse", "summary", "templates":
		// Document parsing needs nothing beyond the shared bounds.
	case "serve":
		if c.Server.Addr == "" {
			problems = append(problems, "server.addr is required")
		}
		if c.Server.RateLimit < 0 {
			problems = append(problems, "server.rate_limit must be >= 0 (0 disables limiting)")
		}
		if c.Server.MaxUploadMB < 1 || c.Server.MaxUploadMB > 1024 {
			problems = append(problems, "server.max_upload_mb must be between 1 and 1024")
		}
	case "runs":
		if c.Store.Driver == "" {
			problems = append(problems, "store.driver is required (sqlite or postgres)")
		}
		if c.Store.Driver != "" && c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New(fmt.Sprintf("config: %s", strings.Join(problems, "; ")))
	}
	return nil
}
