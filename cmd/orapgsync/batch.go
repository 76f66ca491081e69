package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/sayiza/orapgsync/internal/parser"
	"github.com/sayiza/orapgsync/translate"
)

var batchGlob string

var batchCmd = &cobra.Command{
	Use:   "batch [dir]",
	Short: "Translate every matching file under a directory",
	Long:  "Translates every file matched by --glob under dir (default .), reusing one session so package variables declared in one file stay visible to units translated later in the run.",
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "."
		if len(args) == 1 {
			dir = args[0]
		}

		idx, err := loadCatalog()
		if err != nil {
			return err
		}

		log := logrus.StandardLogger()
		sess := translate.NewSession(idx, log.WithField("correlation_id", uuid.NewString()))

		matches, err := doublestar.Glob(os.DirFS(dir), batchGlob)
		if err != nil {
			return fmt.Errorf("matching %q under %q: %w", batchGlob, dir, err)
		}

		var failed int
		for _, rel := range matches {
			if err := translateOne(sess, filepath.Join(dir, rel)); err != nil {
				failed++
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", rel, err)
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed to translate", failed, len(matches))
		}
		return nil
	},
}

func translateOne(sess *translate.Session, path string) error {
	src, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	unit, fail := parser.Parse(string(src))
	if fail != nil {
		return fail
	}
	identity := identityOf(unit)

	out, fail := sess.Translate(string(src), identity)
	if fail != nil {
		return fail
	}
	destPath := filepath.Join(outputDir, identity.Name+".pgsql")
	return os.WriteFile(destPath, []byte(out), 0o644)
}

func init() {
	batchCmd.Flags().StringVar(&batchGlob, "glob", "**/*.sql", "doublestar glob matched under dir")
}
