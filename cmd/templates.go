package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/statement-cli/internal/templates"
)

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect issuer layout templates",
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List templates loaded from the configured directory",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate("templates"); err != nil {
			return err
		}
		set, err := templates.Load(cfg.Templates.Dir)
		if err != nil {
			return eris.Wrap(err, "load templates")
		}
		if set.Len() == 0 {
			fmt.Fprintln(os.Stderr, "No templates loaded.")
			return nil
		}
		formatTemplatesList(os.Stdout, set.All())
		return nil
	},
}

var templatesValidateCmd = &cobra.Command{
	Use:   "validate <file...>",
	Short: "Validate template YAML files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var failed int
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return eris.Wrapf(err, "read %s", path)
			}
			tpl, err := templates.Parse(data)
			if err != nil {
				failed++
				fmt.Printf("%s: INVALID: %v\n", path, err)
				continue
			}
			fmt.Printf("%s: ok (%s)\n", path, tpl.Name)
		}
		if failed > 0 {
			return eris.Errorf("%d of %d templates invalid", failed, len(args))
		}
		return nil
	},
}

func init() {
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesValidateCmd)
	rootCmd.AddCommand(templatesCmd)
}

func formatTemplatesList(out io.Writer, tpls []templates.Template) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tANCHORS\tDATE FORMAT")
	for _, t := range tpls {
		dateFormat := t.DateFormat
		if dateFormat == "" {
			dateFormat = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", t.Name, strings.Join(t.Anchors, ", "), dateFormat)
	}
	w.Flush() //nolint:errcheck
}
