package emitter

import (
	"sort"
	"strings"

	"github.com/sayiza/orapgsync/internal/ast"
	"github.com/sayiza/orapgsync/internal/diag"
)

// querySplice is one rewritten expression's byte range within a
// SelectStatement's captured source text, keyed by absolute offsets (the
// same offsets internal/analyzer's position-keyed type cache uses).
type querySplice struct {
	start, end int
	text       string
}

// emitQueryText renders sel's SQL text for embedding in emitted output.
// internal/ast.SelectStatement captures only the column list and the WHERE
// expression as trees (FROM/JOIN/GROUP BY/ORDER BY are consumed by the
// parser but not modelled structurally, since they don't affect type
// inference); emitQueryText keeps that untouched text verbatim and splices
// in the column and WHERE expressions' emitted form, so date arithmetic,
// NVL/DECODE, `||`, and collection access inside a query body go through
// the same rewrite rules a standalone expression does.
func (e *Emitter) emitQueryText(sel *ast.SelectStatement) (string, *diag.Failure) {
	if sel == nil {
		return "", nil
	}
	if sel.RawText == "" {
		return "", diag.New(diag.InternalError, "emitter: select statement has no captured source text")
	}

	// Column/WHERE rewriting needs the same alias-to-table bindings
	// internal/analyzer resolved for this query, so a query scope is
	// opened here exactly as analyzeSelectStatement opened one.
	e.an.Scope().PushQueryScope()
	defer e.an.Scope().PopQueryScope()
	for _, tr := range sel.From {
		schema, table := e.splitSchemaTable(tr.Table)
		alias := tr.Alias
		if alias == "" {
			alias = tr.Table.Last()
		}
		e.an.Scope().RegisterTableAlias(alias, schema, table)
	}

	splices, fail := e.querySplices(sel)
	if fail != nil {
		return "", fail
	}
	sort.Slice(splices, func(i, j int) bool { return splices[i].start < splices[j].start })

	base := sel.Span.Start
	lo, hi := base, base+len(sel.RawText)
	var out strings.Builder
	cursor := base
	for _, sp := range splices {
		if sp.start < cursor || sp.end > hi || sp.start < lo || sp.start > sp.end {
			// Span falls outside the captured text or overlaps a prior
			// splice: leave the source untouched here rather than risk
			// corrupting the query.
			continue
		}
		out.WriteString(sel.RawText[cursor-base : sp.start-base])
		out.WriteString(sp.text)
		cursor = sp.end
	}
	out.WriteString(sel.RawText[cursor-base:])
	return strings.TrimSpace(out.String()), nil
}

// splitSchemaTable mirrors internal/analyzer's own splitSchemaTable: a
// dotted name's last two parts are schema.table; a bare one-part name
// belongs to the current schema.
func (e *Emitter) splitSchemaTable(n *ast.Name) (schema, table string) {
	if len(n.Parts) >= 2 {
		return n.Parts[len(n.Parts)-2], n.Parts[len(n.Parts)-1]
	}
	return e.currentSchema, n.Parts[0]
}

// querySplices collects one splice per non-star projected column and one
// for the WHERE clause, in source order.
func (e *Emitter) querySplices(sel *ast.SelectStatement) ([]querySplice, *diag.Failure) {
	var splices []querySplice
	for _, col := range sel.Columns {
		if col.Star || col.Expression == nil {
			continue
		}
		text, fail := e.emitExpr(col.Expression)
		if fail != nil {
			return nil, fail
		}
		sp := col.Expression.Pos()
		splices = append(splices, querySplice{start: sp.Start, end: sp.End, text: text})
	}
	if sel.Where != nil {
		text, fail := e.emitExpr(sel.Where)
		if fail != nil {
			return nil, fail
		}
		sp := sel.Where.Pos()
		splices = append(splices, querySplice{start: sp.Start, end: sp.End, text: text})
	}
	return splices, nil
}
