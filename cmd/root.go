package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/statement-cli/internal/config"
)

var cfg *config.Config

// version is overridden at build time via
// -ldflags "-X main.version=v1.2.3".
var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "statement-cli",
	Short: "Extract transactions from bank and card statements",
	Long: `statement-cli parses bank and credit-card statements (PDF, CSV, XLSX)
into normalized transactions.

PDF documents are run through several independent extraction strategies
whose outputs are merged by consensus voting, then transaction signs are
reconciled against the statement's printed balances and every result is
given a data-quality score.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
