package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/statement-cli/internal/categorize"
	"github.com/sells-group/statement-cli/internal/engine"
	"github.com/sells-group/statement-cli/internal/store"
)

var (
	parseOCR        bool
	parseCategorize bool
	parseMetaOnly   bool
	parseOutput     string
	parseSave       bool
)

var parseCmd = &cobra.Command{
	Use:   "parse <file...>",
	Short: "Parse statement files and print the extracted transactions",
	Long: `Parse one or more statement files. PDFs go through the full pipeline
(multi-strategy extraction, consensus, sign reconciliation, quality
scoring); CSV and XLSX exports are ingested directly.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("parse"); err != nil {
			return err
		}
		if parseOutput != "json" && parseOutput != "table" {
			return eris.Errorf("unknown output format %q (want json or table)", parseOutput)
		}

		eng, _, err := initEngine(parseOCR)
		if err != nil {
			return err
		}

		var st store.Store
		if parseSave {
			st, err = openStore(ctx)
			if err != nil {
				return err
			}
			defer st.Close() //nolint:errcheck
		}

		results := make([]*engine.Result, 0, len(args))
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return eris.Wrapf(err, "read %s", path)
			}
			res, err := eng.ParseBytes(ctx, data, filepath.Base(path))
			if err != nil {
				return eris.Wrapf(err, "parse %s", path)
			}
			if parseCategorize {
				categorize.Apply(res.Transactions)
			}

			zap.L().Info("parsed document",
				zap.String("source", res.Source),
				zap.Int("transactions", len(res.Transactions)),
				zap.Int("clusters", res.Clusters),
				zap.Float64("score", res.Quality.Score),
				zap.String("solver", string(res.Reconciliation.SolverUsed)),
			)

			if st != nil {
				rec := store.FromResult(res, data)
				if err := st.SaveRun(ctx, rec); err != nil {
					return eris.Wrapf(err, "save run for %s", res.Source)
				}
				fmt.Fprintf(os.Stderr, "Saved run %s\n", rec.ID)
			}

			if parseMetaOnly {
				res.Transactions = nil
				res.Reconciliation.Corrected = nil
			}
			results = append(results, res)
		}

		if parseOutput == "table" {
			formatResults(os.Stdout, results)
			return nil
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if len(results) == 1 {
			return enc.Encode(results[0])
		}
		return enc.Encode(results)
	},
}

func init() {
	parseCmd.Flags().BoolVar(&parseOCR, "ocr", false, "run the OCR fallback on scanned documents")
	parseCmd.Flags().BoolVar(&parseCategorize, "categorize", false, "assign merchant categories to transactions")
	parseCmd.Flags().BoolVar(&parseMetaOnly, "meta-only", false, "print metadata, reconciliation and quality only")
	parseCmd.Flags().StringVarP(&parseOutput, "output", "o", "json", "output format: json or table")
	parseCmd.Flags().BoolVar(&parseSave, "save", false, "record the run in the configured store")
	rootCmd.AddCommand(parseCmd)
}

// formatResults writes a per-file header, quality issues and a
// transaction table for each result.
func formatResults(out io.Writer, results []*engine.Result) {
	for i, res := range results {
		if i > 0 {
			fmt.Fprintln(out)
		}
		fmt.Fprintf(out, "%s: %d transactions, score %.1f, solver %s\n",
			res.Source, len(res.Transactions), res.Quality.Score, res.Reconciliation.SolverUsed)
		for _, issue := range res.Quality.Issues {
			fmt.Fprintf(out, "  ! %s\n", issue)
		}
		if len(res.Transactions) == 0 {
			continue
		}

		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "DATE\tDESCRIPTION\tAMOUNT\tCATEGORY")
		for _, tx := range res.Transactions {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
				formatDate(tx.Date),
				truncate(tx.Description, 48),
				tx.Amount.StringFixed(2),
				tx.Category,
			)
		}
		w.Flush() //nolint:errcheck
	}
}

func formatDate(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Format("2006-01-02")
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-3] + "..."
}
