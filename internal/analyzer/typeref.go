package analyzer

import (
	"strings"

	"github.com/sayiza/orapgsync/internal/ast"
	"github.com/sayiza/orapgsync/internal/diag"
	"github.com/sayiza/orapgsync/internal/types"
)

// resolveTypeRef turns a parsed TypeRef into a Descriptor, dispatching on
// its three shapes: inline (RECORD/TABLE OF/VARRAY), anchored (%TYPE,
// %ROWTYPE), or a simple named type.
func (a *Analyzer) resolveTypeRef(t *ast.TypeRef) *types.Descriptor {
	if t == nil {
		return types.UnknownD
	}
	if t.Inline != nil {
		return a.resolveInlineType(t.Inline)
	}
	if t.PercentRowType {
		return a.resolveRowType(t.AnchorName)
	}
	if t.PercentType {
		return a.resolvePercentType(t.AnchorName)
	}
	d := types.ParseSimpleSourceType(t.SimpleName, t.Precision, t.Scale, t.Length, t.HasPrecision, t.HasScale, t.HasLength)
	if d != types.UnknownD {
		return d
	}
	if named, ok := a.localTypes[strings.ToLower(t.SimpleName)]; ok {
		return named
	}
	schema, name := a.splitSchemaTable(&ast.Name{Parts: strings.Split(t.SimpleName, ".")})
	return types.NewObject(schema, name)
}

// resolveInlineType converts an inline type shape into a Descriptor.
func (a *Analyzer) resolveInlineType(it *ast.InlineType) *types.Descriptor {
	if it == nil {
		return types.UnknownD
	}
	switch it.Kind {
	case ast.InlineRecord:
		fields := make([]types.RecordField, 0, len(it.Fields))
		for _, f := range it.Fields {
			fields = append(fields, types.RecordField{Name: f.Name, Type: a.resolveTypeRef(f.Type)})
		}
		return types.NewRecord(fields)
	case ast.InlineTableOf, ast.InlineVarray:
		return types.NewCollection(a.resolveTypeRef(it.Elem))
	default:
		return types.UnknownD
	}
}

// resolveRowType resolves `name%ROWTYPE` to a Record built from name's
// columns when name is a known table/view, or from a declared cursor's
// projected shape when it names a cursor instead.
func (a *Analyzer) resolveRowType(anchor *ast.Name) *types.Descriptor {
	if anchor == nil {
		return types.UnknownD
	}
	if rec, ok := a.CursorRecordType(anchor.Last()); ok {
		return rec
	}
	schema, table := a.splitSchemaTable(anchor)
	cols, ok, fail := a.idx.TableColumns(schema, table)
	if fail != nil {
		a.record(fail)
		return types.UnknownD
	}
	if !ok {
		a.record(diag.New(diag.UnknownName, "table %s.%s referenced by %%ROWTYPE is not in the metadata index", schema, table))
		return types.UnknownD
	}
	fields := make([]types.RecordField, 0, len(cols))
	for _, c := range cols {
		fields = append(fields, types.RecordField{Name: c.Name, Type: c.Type})
	}
	return types.NewRecord(fields)
}

// resolvePercentType resolves `anchor%TYPE`, where anchor is either
// table.column (a metadata column) or a bare/qualified variable reference
// (a local variable, package variable, or record field).
func (a *Analyzer) resolvePercentType(anchor *ast.Name) *types.Descriptor {
	if anchor == nil {
		return types.UnknownD
	}
	if len(anchor.Parts) >= 2 {
		schema, table := a.splitSchemaTable(&ast.Name{Parts: anchor.Parts[:len(anchor.Parts)-1]})
		col := anchor.Last()
		if t, ok, fail := a.idx.ColumnType(schema, table, col); fail == nil && ok {
			return t
		} else if fail != nil {
			a.record(fail)
		}
		// Not a table column: try it as qualifier.variable (e.g. a record
		// variable's field, or another package's variable).
		if t, ok := a.LookupVar(anchor.Parts[len(anchor.Parts)-2]); ok {
			return fieldTypeOf(t, col)
		}
	}
	if t, ok := a.LookupVar(anchor.Last()); ok {
		return t
	}
	if t, ok := a.scope.PackageVariableType(anchor.Last()); ok {
		return t
	}
	return types.UnknownD
}

// LookupVar exposes the scope engine's variable lookup to the typeref
// helpers without importing internal/scope directly into more files.
func (a *Analyzer) LookupVar(name string) (*types.Descriptor, bool) {
	return a.scope.LookupVar(name)
}

func fieldTypeOf(rec *types.Descriptor, field string) *types.Descriptor {
	if rec == nil || rec.Tag != types.Record {
		return types.UnknownD
	}
	for _, f := range rec.Fields {
		if strings.EqualFold(f.Name, field) {
			return f.Type
		}
	}
	return types.UnknownD
}

