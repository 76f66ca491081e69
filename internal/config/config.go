// Package config loads the engine's CLI/environment configuration: the
// optional live-catalog DSN, an output directory, and a log level.
//
// Grounded on termfx-morfx/db/sqlite_integration_test.go's
// `_ = godotenv.Load()` then `os.Getenv(...)` pattern for `.env` file
// support, generalized here into a reusable loader rather than one
// inlined in a test.
package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Config is the engine's runtime configuration, sourced from the
// process environment (optionally populated from a `.env` file first).
type Config struct {
	// CatalogDSN, if set, is the PostgreSQL connection string
	// internal/catalogload.LoadFromPostgres uses to seed the Metadata
	// Index from an already-migrated schema.
	CatalogDSN string
	// CatalogSchema is the schema LoadFromPostgres introspects.
	CatalogSchema string
	// OutputDir is the configured output directory for translated PL/pgSQL
	// files. cmd/orapgsync does not read Config; it takes its output
	// directory from its --output flag.
	OutputDir string
	// LogLevel is a logrus level name ("debug", "info", "warn", "error").
	LogLevel string
	// BatchConcurrency is the configured number of files to translate at
	// once; 0 means "unset". cmd/orapgsync's batch subcommand does not read
	// it and translates files one at a time.
	BatchConcurrency int
}

const (
	envCatalogDSN        = "ORAPGSYNC_CATALOG_DSN"
	envCatalogSchema     = "ORAPGSYNC_CATALOG_SCHEMA"
	envOutputDir         = "ORAPGSYNC_OUTPUT_DIR"
	envLogLevel          = "ORAPGSYNC_LOG_LEVEL"
	envBatchConcurrency  = "ORAPGSYNC_BATCH_CONCURRENCY"
)

// Load reads configuration from the process environment, first loading
// a `.env` file in the working directory if one is present (its absence
// is not an error; a real environment variable is as valid a source as
// a dotfile).
func Load() Config {
	_ = godotenv.Load()

	cfg := Config{
		CatalogDSN:    os.Getenv(envCatalogDSN),
		CatalogSchema: os.Getenv(envCatalogSchema),
		OutputDir:     os.Getenv(envOutputDir),
		LogLevel:      os.Getenv(envLogLevel),
	}
	if cfg.LogLevel == "" {
		cfg.LogLevel = "info"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "."
	}
	if n, err := strconv.Atoi(os.Getenv(envBatchConcurrency)); err == nil {
		cfg.BatchConcurrency = n
	}
	return cfg
}

// Logger builds a logrus logger at the configured level, defaulting to
// Info on an unrecognized level name rather than failing startup over a
// typo in an env var.
func (c Config) Logger() *logrus.Logger {
	log := logrus.New()
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}
