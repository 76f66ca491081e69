// Package translate is the top-level entry point of the transformation
// engine: parse, analyze, emit, in sequence, for one translation unit at
// a time. Translate is the pure-function form; Session wraps it with a
// shared Package Context Store and structured logging so a caller can
// translate a whole package (spec, then body, then sibling units) while
// every package variable reference resolves consistently across calls.
//
// Grounded on ha1tch-tgpiler/transpiler/transpiler.go's Transpile/
// TranspileWithDML pair: a package-level function taking source text and
// returning (string, error), with all per-run state held in a private
// struct the function constructs and discards. Session generalizes that
// discarded state into something a caller can keep across many calls,
// since package context to outlive a single unit.
package translate

import (
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/sayiza/orapgsync/internal/analyzer"
	"github.com/sayiza/orapgsync/internal/catalog"
	"github.com/sayiza/orapgsync/internal/diag"
	"github.com/sayiza/orapgsync/internal/emitter"
	"github.com/sayiza/orapgsync/internal/parser"
	"github.com/sayiza/orapgsync/internal/pkgstate"
	"github.com/sayiza/orapgsync/internal/scope"
)

// Identity names the unit being translated, for logging and diagnostics
// only; it plays no role in parsing, analysis, or emission.
type Identity struct {
	Schema string
	Name   string
}

// Translate runs one unit through Parser -> Type Analyzer -> Code
// Emitter and returns the target PL/pgSQL text. idx is the read-only
// Metadata Index; store is the mutable Package Context Store, shared
// across every unit of one translation session.
// A parse or emit failure is fatal and returned as the second value. An
// analyzer failure the type system can recover from (degrading the
// culprit expression to Unknown) does not abort the run; Translate still
// proceeds to emission, since a partial translation the caller can
// inspect is more useful than none.
func Translate(src string, identity Identity, idx *catalog.Index, store *pkgstate.Store) (string, *diag.Failure) {
	unit, fail := parser.Parse(src)
	if fail != nil {
		return "", fail
	}

	if store == nil {
		store = pkgstate.NewStore()
	}
	a := analyzer.New(idx, scope.New(store))
	a.AnalyzeUnit(unit)

	e := emitter.New(idx, store, a)
	text, fail := e.EmitUnit(unit)
	if fail != nil {
		return "", fail
	}
	return text, nil
}

// Session wraps one *pkgstate.Store across many Translate calls, logging
// one structured entry per unit (identity, duration, failure category if
// any). A Session is not safe for concurrent use from multiple goroutines;
// concurrency means translating independent files under separate Sessions,
// each over its own pkgstate.Store, never a shared one.
type Session struct {
	idx    *catalog.Index
	store  *pkgstate.Store
	log    logrus.FieldLogger
	corrID string
}

// NewSession starts a translation session over idx, with a fresh
// pkgstate.Store and a correlation ID that tags every log entry the
// session emits. log may be nil, in which case logrus's standard logger
// is used.
func NewSession(idx *catalog.Index, log logrus.FieldLogger) *Session {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Session{
		idx:    idx,
		store:  pkgstate.NewStore(),
		log:    log,
		corrID: uuid.NewString(),
	}
}

// Store exposes the session's Package Context Store so a caller can
// pre-seed package variables (e.g. when translating a body without its
// spec present) or inspect HelpersEmitted state across files.
func (s *Session) Store() *pkgstate.Store { return s.store }

// Translate runs one unit through the same pipeline as the package-level
// Translate function, reusing this session's Store, and logs the result.
func (s *Session) Translate(src string, identity Identity) (string, *diag.Failure) {
	start := time.Now()
	text, fail := Translate(src, identity, s.idx, s.store)
	entry := s.log.WithFields(logrus.Fields{
		"correlation_id": s.corrID,
		"schema":         identity.Schema,
		"unit":           identity.Name,
		"duration_ms":    time.Since(start).Milliseconds(),
	})
	if fail != nil {
		entry.WithField("failure_category", fail.Category).Warn("unit translation failed")
		return "", fail
	}
	entry.Debug("unit translated")
	return text, nil
}
