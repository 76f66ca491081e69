package main

import (
	"fmt"
	"io"
	"os"

	"github.com/alecthomas/repr"
	"github.com/spf13/cobra"

	"github.com/sayiza/orapgsync/internal/analyzer"
	"github.com/sayiza/orapgsync/internal/parser"
	"github.com/sayiza/orapgsync/internal/pkgstate"
	"github.com/sayiza/orapgsync/internal/scope"
)

var explainCmd = &cobra.Command{
	Use:   "explain [file]",
	Short: "Print the parsed AST and analyzer failures for a unit",
	Long:  "Parses and analyzes a unit without emitting PL/pgSQL, and dumps the AST (via repr) plus any analyzer failures. Intended for debugging the parser and type resolution, not for production use.",
	RunE: func(cmd *cobra.Command, args []string) error {
		var src []byte
		var err error
		if len(args) == 1 {
			src, err = os.ReadFile(args[0])
		} else {
			src, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		unit, fail := parser.Parse(string(src))
		if fail != nil {
			return fail
		}

		idx, err := loadCatalog()
		if err != nil {
			return err
		}
		store := pkgstate.NewStore()
		a := analyzer.New(idx, scope.New(store))
		a.AnalyzeUnit(unit)

		fmt.Fprintln(cmd.OutOrStdout(), repr.String(unit, repr.Indent("  ")))
		for _, f := range a.Failures() {
			fmt.Fprintf(cmd.ErrOrStderr(), "analysis failure: %v\n", f)
		}
		return nil
	},
}
