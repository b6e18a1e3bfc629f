package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/statement-cli/internal/analytics"
	"github.com/sells-group/statement-cli/internal/categorize"
	"github.com/sells-group/statement-cli/internal/model"
)

var (
	summaryCategorize bool
	summaryOutput     string
)

var summaryCmd = &cobra.Command{
	Use:   "summary <file...>",
	Short: "Monthly cash-flow summary across statements",
	Long: `Parse the given statements and aggregate their transactions into
monthly income, expenses and net flow. With --categorize, a per-category
breakdown is included.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		if err := cfg.Validate("summary"); err != nil {
			return err
		}
		if summaryOutput != "json" && summaryOutput != "table" {
			return eris.Errorf("unknown output format %q (want json or table)", summaryOutput)
		}

		eng, _, err := initEngine(false)
		if err != nil {
			return err
		}

		var all []model.Transaction
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return eris.Wrapf(err, "read %s", path)
			}
			res, err := eng.ParseBytes(ctx, data, filepath.Base(path))
			if err != nil {
				return eris.Wrapf(err, "parse %s", path)
			}
			all = append(all, res.Transactions...)
		}
		if summaryCategorize {
			categorize.Apply(all)
		}

		sum := analytics.Summarize(all)
		if summaryOutput == "table" {
			formatSummary(os.Stdout, sum)
			return nil
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sum)
	},
}

func init() {
	summaryCmd.Flags().BoolVar(&summaryCategorize, "categorize", false, "include a per-category breakdown")
	summaryCmd.Flags().StringVarP(&summaryOutput, "output", "o", "table", "output format: json or table")
	rootCmd.AddCommand(summaryCmd)
}

func formatSummary(out io.Writer, sum analytics.Summary) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "MONTH\tINCOME\tEXPENSES\tNET\tTXS")
	for _, m := range sum.Monthly {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n",
			m.Month,
			m.Income.StringFixed(2),
			m.Expenses.StringFixed(2),
			m.Net.StringFixed(2),
			m.Count,
		)
	}
	w.Flush() //nolint:errcheck

	if len(sum.ByCategory) > 0 {
		fmt.Fprintln(out)
		w = tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "CATEGORY\tTOTAL")
		for _, c := range sum.ByCategory {
			fmt.Fprintf(w, "%s\t%s\n", c.Category, c.Total.StringFixed(2))
		}
		w.Flush() //nolint:errcheck
	}

	fmt.Fprintf(out, "\nTransactions: %d\n", sum.Transactions)
	fmt.Fprintf(out, "Inflow:  %s\n", sum.TotalInflow.StringFixed(2))
	fmt.Fprintf(out, "Outflow: %s\n", sum.TotalOutflow.StringFixed(2))
	fmt.Fprintf(out, "Net:     %s\n", sum.Net.StringFixed(2))
}
