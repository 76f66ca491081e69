package analyzer

import (
	"strings"

	"github.com/sayiza/orapgsync/internal/ast"
	"github.com/sayiza/orapgsync/internal/catalog"
	"github.com/sayiza/orapgsync/internal/diag"
	"github.com/sayiza/orapgsync/internal/scope"
	"github.com/sayiza/orapgsync/internal/types"
)

// Analyzer runs one translation unit through the Type Analyzer. It is not
// safe for concurrent use; one Analyzer per translate.Session invocation,
// matching its single-threaded-per-translation core.
type Analyzer struct {
	idx   *catalog.Index
	scope *scope.Engine
	cache *Cache

	// strict toggles ambiguous-column handling: lenient
	// (default) degrades an ambiguous unqualified column to UNKNOWN
	// silently; strict also records a recoverable failure.
	strict bool

	currentSchema string

	// localTypes holds named TYPE t IS ... declarations visible within the
	// unit currently being analyzed. PL/SQL scopes these to the declaring
	// block, but this engine tracks them as one flat, unit-lifetime map —
	// adequate for the single-declare-section shape its source
	// grammar models; nested re-declaration of the same type name within
	// an inner DECLARE block is not distinguished from the outer one.
	localTypes map[string]*types.Descriptor

	// cursorShapes maps a declared cursor's lower-cased name to the
	// Record descriptor of its SELECT list, used to type a `FOR r IN
	// cursor_name LOOP` loop variable.
	cursorShapes map[string]*types.Descriptor

	// selectShapes maps a SelectStatement's span to the Record descriptor
	// of its projection, used by internal/emitter to type inline FOR
	// cursor-loop queries the same way.
	selectShapes map[ast.Span]*types.Descriptor

	failures []*diag.Failure
}

// New creates an Analyzer backed by idx (read-only Metadata Index) and se
// (the Symbol/Scope Engine for this translation unit).
func New(idx *catalog.Index, se *scope.Engine) *Analyzer {
	return &Analyzer{
		idx:          idx,
		scope:        se,
		cache:        NewCache(),
		localTypes:   make(map[string]*types.Descriptor),
		cursorShapes: make(map[string]*types.Descriptor),
		selectShapes: make(map[ast.Span]*types.Descriptor),
	}
}

// SetStrict switches ambiguous unqualified column resolution to strict
// mode: ambiguity between two tables at the same query-scope frame is an
// error in strict mode, UNKNOWN in the default lenient mode.
func (a *Analyzer) SetStrict(strict bool) { a.strict = strict }

// Cache returns the populated type cache after analysis.
func (a *Analyzer) Cache() *Cache { return a.cache }

// Failures returns every recoverable diagnostic collected during analysis.
// None of these are fatal; the caller (translate.Session) decides whether
// to surface them alongside a successful translation.
func (a *Analyzer) Failures() []*diag.Failure { return a.failures }

// CursorRecordType returns the Record descriptor inferred for a declared
// cursor's SELECT list, used by internal/emitter to type a cursor FOR
// loop's record variable.
func (a *Analyzer) CursorRecordType(name string) (*types.Descriptor, bool) {
	t, ok := a.cursorShapes[strings.ToLower(name)]
	return t, ok
}

// SelectRecordType returns the Record descriptor inferred for sel's
// projection list.
func (a *Analyzer) SelectRecordType(sel *ast.SelectStatement) (*types.Descriptor, bool) {
	t, ok := a.selectShapes[sel.Span]
	return t, ok
}

// Scope exposes the Symbol/Scope Engine this Analyzer ran over, so
// internal/emitter can replay the same declare/push/pop discipline during
// its own walk of the already-analyzed unit and get identical
// LookupVar/IsPackageVariable answers.
func (a *Analyzer) Scope() *scope.Engine { return a.scope }

// CurrentSchema returns the schema this Analyzer resolved unqualified
// names against for the unit most recently analyzed.
func (a *Analyzer) CurrentSchema() string { return a.currentSchema }

// ResolveTypeRef exposes the declared-type resolution internal/emitter
// needs to render parameter/declaration target types exactly as the
// analysis pass already resolved them (same localTypes, same catalog).
func (a *Analyzer) ResolveTypeRef(t *ast.TypeRef) *types.Descriptor { return a.resolveTypeRef(t) }

func (a *Analyzer) record(f *diag.Failure) {
	if f == nil {
		return
	}
	a.failures = append(a.failures, f)
}

// AnalyzeUnit dispatches to the appropriate top-level entry point for u.
func (a *Analyzer) AnalyzeUnit(u *ast.Unit) {
	switch {
	case u.Function != nil:
		a.AnalyzeFunction(u.Function)
	case u.Procedure != nil:
		a.AnalyzeProcedure(u.Procedure)
	case u.Package != nil:
		a.AnalyzePackage(u.Package)
	case u.PackageBody != nil:
		a.AnalyzePackageBody(u.PackageBody)
	}
}

// AnalyzeFunction analyzes one standalone or package-member function body.
func (a *Analyzer) AnalyzeFunction(f *ast.CreateFunction) {
	if len(f.Name.Parts) >= 2 {
		a.currentSchema = f.Name.Parts[0]
	}
	a.scope.PushVarScope()
	defer a.scope.PopVarScope()

	for _, p := range f.Params {
		t := a.resolveTypeRef(p.Type)
		if fail := a.scope.Declare(p.Name, t); fail != nil {
			a.record(fail)
		}
		if p.Default != nil {
			a.analyzeExpr(p.Default)
		}
	}

	a.preScanDecls(f.Decls)
	a.analyzeDeclExprs(f.Decls)
	a.analyzeStmts(f.Body)
	a.analyzeExceptionHandlers(f.Exception)
}

// AnalyzeProcedure analyzes one standalone or package-member procedure body.
func (a *Analyzer) AnalyzeProcedure(p *ast.CreateProcedure) {
	if len(p.Name.Parts) >= 2 {
		a.currentSchema = p.Name.Parts[0]
	}
	a.scope.PushVarScope()
	defer a.scope.PopVarScope()

	for _, prm := range p.Params {
		t := a.resolveTypeRef(prm.Type)
		if fail := a.scope.Declare(prm.Name, t); fail != nil {
			a.record(fail)
		}
		if prm.Default != nil {
			a.analyzeExpr(prm.Default)
		}
	}

	a.preScanDecls(p.Decls)
	a.analyzeDeclExprs(p.Decls)
	a.analyzeStmts(p.Body)
	a.analyzeExceptionHandlers(p.Exception)
}

// AnalyzePackage registers a package spec's public variables and named
// types as package-level state. Member headers carry no body to analyze.
func (a *Analyzer) AnalyzePackage(p *ast.CreatePackage) {
	schema, name := splitPackageName(p.Name)
	a.currentSchema = schema
	a.scope.EnterPackage(schema, name)
	defer a.scope.LeavePackage()

	a.analyzePackageDecls(p.Decls)
}

// AnalyzePackageBody registers private package state, then analyzes every
// member's body with that package context active.
func (a *Analyzer) AnalyzePackageBody(pb *ast.CreatePackageBody) {
	schema, name := splitPackageName(pb.Name)
	a.currentSchema = schema
	a.scope.EnterPackage(schema, name)
	defer a.scope.LeavePackage()

	a.analyzePackageDecls(pb.Decls)

	for _, m := range pb.Members {
		if m.Function != nil {
			a.AnalyzeFunction(m.Function)
		}
		if m.Procedure != nil {
			a.AnalyzeProcedure(m.Procedure)
		}
	}
}

func (a *Analyzer) analyzePackageDecls(decls []ast.Statement) {
	for _, d := range decls {
		switch s := d.(type) {
		case *ast.VarDecl:
			t := a.resolveTypeRef(s.Type)
			if fail := a.scope.RegisterPackageVariable(s.Name, t); fail != nil {
				a.record(fail)
			}
			if s.Default != nil {
				a.analyzeExpr(s.Default)
			}
		case *ast.TypeDecl:
			a.localTypes[strings.ToLower(s.Name)] = a.resolveInlineType(s.Inline)
		case *ast.CursorDecl:
			a.analyzeCursorDecl(s)
		}
	}
}

func splitPackageName(n *ast.Name) (schema, name string) {
	if len(n.Parts) >= 2 {
		return n.Parts[0], n.Parts[1]
	}
	return "", n.Parts[0]
}

// ---- Declare section ----

func (a *Analyzer) preScanDecls(decls []ast.Statement) {
	for _, d := range decls {
		switch s := d.(type) {
		case *ast.VarDecl:
			t := a.resolveTypeRef(s.Type)
			if fail := a.scope.Declare(s.Name, t); fail != nil {
				a.record(fail)
			}
		case *ast.TypeDecl:
			a.localTypes[strings.ToLower(s.Name)] = a.resolveInlineType(s.Inline)
		}
	}
}

func (a *Analyzer) analyzeDeclExprs(decls []ast.Statement) {
	for _, d := range decls {
		switch s := d.(type) {
		case *ast.VarDecl:
			if s.Default != nil {
				a.analyzeExpr(s.Default)
			}
		case *ast.CursorDecl:
			a.analyzeCursorDecl(s)
		}
	}
}

func (a *Analyzer) analyzeCursorDecl(s *ast.CursorDecl) {
	a.scope.PushVarScope()
	for _, p := range s.Params {
		t := a.resolveTypeRef(p.Type)
		if fail := a.scope.Declare(p.Name, t); fail != nil {
			a.record(fail)
		}
	}
	rec, _ := a.analyzeSelectStatement(s.Query)
	a.cursorShapes[strings.ToLower(s.Name)] = rec
	a.scope.PopVarScope()
}

// ---- Statements ----

func (a *Analyzer) analyzeStmts(stmts []ast.Statement) {
	for _, s := range stmts {
		a.analyzeStmt(s)
	}
}

// analyzeStmt wraps one statement's analysis in a recover boundary: the
// analyzer never panics outward, so any internal exception short-circuits
// to UNKNOWN for that node and its ancestors up to the nearest statement.
func (a *Analyzer) analyzeStmt(s ast.Statement) {
	defer func() {
		if r := recover(); r != nil {
			a.record(diag.New(diag.InternalError, "analyzer recovered from %v", r))
		}
	}()
	a.analyzeStmtInner(s)
}

func (a *Analyzer) analyzeStmtInner(s ast.Statement) {
	switch st := s.(type) {
	case *ast.AssignStatement:
		a.analyzeExpr(st.Target)
		a.analyzeExpr(st.Value)

	case *ast.IfStatement:
		a.analyzeExpr(st.Cond)
		a.analyzeStmts(st.Then)
		for _, ei := range st.ElseIfs {
			a.analyzeExpr(ei.Cond)
			a.analyzeStmts(ei.Then)
		}
		a.analyzeStmts(st.Else)

	case *ast.CaseStatement:
		if st.Selector != nil {
			a.analyzeExpr(st.Selector)
		}
		for _, w := range st.Whens {
			a.analyzeExpr(w.Cond)
			a.analyzeStmts(w.Then)
		}
		a.analyzeStmts(st.Else)

	case *ast.LoopStatement:
		a.analyzeLoop(st)

	case *ast.ExitStatement:
		if st.When != nil {
			a.analyzeExpr(st.When)
		}

	case *ast.ContinueStatement:
		if st.When != nil {
			a.analyzeExpr(st.When)
		}

	case *ast.ReturnStatement:
		if st.Value != nil {
			a.analyzeExpr(st.Value)
		}

	case *ast.CallStatement:
		a.analyzeExpr(st.Call)
		for _, into := range st.Into {
			a.analyzeExpr(into)
		}

	case *ast.SelectIntoStatement:
		a.analyzeSelectStatement(st.Select)
		for _, into := range st.Into {
			a.analyzeExpr(into)
		}

	case *ast.DMLStatement:
		for _, ref := range st.Refs {
			a.analyzeExpr(ref)
		}

	case *ast.OpenStatement:
		for _, arg := range st.Args {
			a.analyzeExpr(arg)
		}

	case *ast.FetchStatement:
		for _, into := range st.Into {
			a.analyzeExpr(into)
		}

	case *ast.CloseStatement, *ast.RaiseStatement, *ast.NullStatement,
		*ast.PassthroughStatement, *ast.UnsupportedStatement:
		// nothing to type.

	case *ast.ExecuteImmediateStatement:
		a.analyzeExpr(st.SQL)

	case *ast.BlockStatement:
		a.scope.PushVarScope()
		a.preScanDecls(st.Decls)
		a.analyzeDeclExprs(st.Decls)
		a.analyzeStmts(st.Body)
		a.analyzeExceptionHandlers(st.Exception)
		a.scope.PopVarScope()
	}
}

func (a *Analyzer) analyzeLoop(st *ast.LoopStatement) {
	switch st.Kind {
	case ast.LoopPlain:
		a.analyzeStmts(st.Body)

	case ast.LoopWhile:
		a.analyzeExpr(st.Cond)
		a.analyzeStmts(st.Body)

	case ast.LoopForRange:
		a.analyzeExpr(st.RangeLow)
		a.analyzeExpr(st.RangeHigh)
		a.scope.PushVarScope()
		if fail := a.scope.Declare(st.Var, types.NumericD); fail != nil {
			a.record(fail)
		}
		a.analyzeStmts(st.Body)
		a.scope.PopVarScope()

	case ast.LoopForCursor:
		var rowType *types.Descriptor
		if st.CursorQuery != nil {
			rowType, _ = a.analyzeSelectStatement(st.CursorQuery)
		} else if st.CursorName != nil {
			if t, ok := a.CursorRecordType(st.CursorName.Last()); ok {
				rowType = t
			} else {
				rowType = types.UnknownD
			}
		}
		a.scope.PushVarScope()
		if fail := a.scope.Declare(st.Var, rowType); fail != nil {
			a.record(fail)
		}
		a.analyzeStmts(st.Body)
		a.scope.PopVarScope()
	}
}

func (a *Analyzer) analyzeExceptionHandlers(handlers []ast.ExceptionHandler) {
	for _, h := range handlers {
		a.analyzeStmts(h.Body)
	}
}

// ---- SELECT ----

// analyzeSelectStatement pushes a query scope, registers FROM/JOIN
// aliases, types every projected column and the WHERE clause, then pops
// the scope. It returns the Record descriptor of the projection and, when
// the projection is exactly one non-star column, that column's own type
// for scalar-subquery bubbling.
func (a *Analyzer) analyzeSelectStatement(sel *ast.SelectStatement) (record *types.Descriptor, scalar *types.Descriptor) {
	if sel == nil {
		return types.UnknownD, types.UnknownD
	}
	a.scope.PushQueryScope()
	defer a.scope.PopQueryScope()

	for _, tr := range sel.From {
		schema, table := a.splitSchemaTable(tr.Table)
		alias := tr.Alias
		if alias == "" {
			alias = tr.Table.Last()
		}
		a.scope.RegisterTableAlias(alias, schema, table)
	}

	var fields []types.RecordField
	nonStar := 0
	for _, col := range sel.Columns {
		if col.Star {
			continue
		}
		nonStar++
		t := a.analyzeExpr(col.Expression)
		name := col.Alias
		if name == "" {
			name = columnDisplayName(col.Expression)
		}
		fields = append(fields, types.RecordField{Name: name, Type: t})
	}

	if sel.Where != nil {
		a.analyzeExpr(sel.Where)
	}

	record = types.NewRecord(fields)
	scalar = types.UnknownD
	if nonStar == 1 && len(fields) == 1 {
		scalar = fields[0].Type
	}
	a.selectShapes[sel.Span] = record
	return record, scalar
}

// columnDisplayName derives a field name for an unaliased projected
// column, used only to give the inferred Record shape readable field
// names; the emitter's own column binding goes through position, not name.
func columnDisplayName(e ast.Expression) string {
	switch n := e.(type) {
	case *ast.Identifier:
		return n.Value
	case *ast.QualifiedIdentifier:
		return n.Member
	case *ast.FieldAccessExpr:
		return n.Field
	default:
		return "column"
	}
}

func (a *Analyzer) splitSchemaTable(n *ast.Name) (schema, table string) {
	if len(n.Parts) >= 2 {
		return n.Parts[len(n.Parts)-2], n.Parts[len(n.Parts)-1]
	}
	return a.currentSchema, n.Parts[0]
}
