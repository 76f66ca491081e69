// Command orapgsync translates Oracle PL/SQL stored procedures, functions
// and packages into PostgreSQL PL/pgSQL.
package main

import (
	"github.com/spf13/cobra"
)

var (
	rootCmd = &cobra.Command{
		Use:          "orapgsync",
		Short:        "orapgsync",
		SilenceUsage: true,
		Long:         `orapgsync translates Oracle PL/SQL into PostgreSQL PL/pgSQL, driven by a read-only metadata catalog. See DESIGN.md.`,
	}

	catalogPath   string
	catalogDSN    string
	catalogSchema string
	outputDir     string
	defaultSchema string
)

// Execute runs the root command; main.go just calls this and exits non-zero
// on error.
func Execute() error {
	rootCmd.PersistentFlags().StringVar(&catalogPath, "catalog", "", "path to a JSON metadata catalog snapshot")
	rootCmd.PersistentFlags().StringVar(&catalogDSN, "catalog-dsn", "", "PostgreSQL DSN to introspect live, instead of --catalog")
	rootCmd.PersistentFlags().StringVar(&catalogSchema, "catalog-schema", "", "schema to introspect when --catalog-dsn is set")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", ".", "directory translated files are written to")
	rootCmd.PersistentFlags().StringVar(&defaultSchema, "schema", "public", "schema assigned to units with no schema qualifier in their name")
	return rootCmd.Execute()
}

func init() {
	rootCmd.AddCommand(translateCmd)
	rootCmd.AddCommand(batchCmd)
	rootCmd.AddCommand(explainCmd)
	rootCmd.AddCommand(watchCmd)
}
