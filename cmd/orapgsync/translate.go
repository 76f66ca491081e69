package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sayiza/orapgsync/internal/parser"
	"github.com/sayiza/orapgsync/translate"
)

var translateCmd = &cobra.Command{
	Use:   "translate [file]",
	Short: "Translate one PL/SQL unit to PL/pgSQL",
	Long:  "Translates a single .sql/.plsql file, or stdin when no file is given, and writes the result to stdout (or --output when a file was given).",
	RunE: func(cmd *cobra.Command, args []string) error {
		var src []byte
		var err error
		var srcPath string
		if len(args) == 1 {
			srcPath = args[0]
			src, err = os.ReadFile(srcPath)
		} else {
			src, err = io.ReadAll(cmd.InOrStdin())
		}
		if err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		idx, err := loadCatalog()
		if err != nil {
			return err
		}

		log := logrus.StandardLogger()
		sess := translate.NewSession(idx, log.WithField("correlation_id", uuid.NewString()))

		unit, fail := parser.Parse(string(src))
		if fail != nil {
			return fail
		}
		identity := identityOf(unit)

		out, fail := sess.Translate(string(src), identity)
		if fail != nil {
			return fail
		}

		if srcPath == "" {
			fmt.Fprintln(cmd.OutOrStdout(), out)
			return nil
		}
		destPath := filepath.Join(outputDir, identity.Name+".pgsql")
		return os.WriteFile(destPath, []byte(out), 0o644)
	},
}
