// Package emitter implements the Code Emitter: it walks the same AST the
// Type Analyzer already typed and produces target PL/pgSQL text,
// consulting the Type Analyzer's cache for every expression's type rather
// than re-deriving it, and the Package Context Store for package-member
// flattening and helper emission.
//
// Grounded on ha1tch-tgpiler/transpiler/transpiler.go's builder+indent
// style: a strings.Builder accumulates output, t.indent tracks nesting,
// and most per-node functions return (string, error) so a failure deep in
// an expression propagates up without partial output being used.
package emitter

import (
	"fmt"
	"strings"

	"github.com/sayiza/orapgsync/internal/analyzer"
	"github.com/sayiza/orapgsync/internal/ast"
	"github.com/sayiza/orapgsync/internal/catalog"
	"github.com/sayiza/orapgsync/internal/diag"
	"github.com/sayiza/orapgsync/internal/pkgstate"
)

// Emitter produces PL/pgSQL target text for one translation unit. It
// shares the *analyzer.Analyzer (and the internal/scope.Engine it wraps)
// that already ran over this unit, so LookupVar/IsPackageVariable answer
// the same way during emission as they did during analysis.
type Emitter struct {
	idx   *catalog.Index
	store *pkgstate.Store
	an    *analyzer.Analyzer

	out    strings.Builder
	indent int

	currentSchema  string
	pkgSchema      string
	pkgName        string // "" outside a package member
	onceMemberName string // currently emitted member's unqualified name, for diagnostics
}

// New creates an Emitter over an already-analyzed unit.
func New(idx *catalog.Index, store *pkgstate.Store, an *analyzer.Analyzer) *Emitter {
	return &Emitter{idx: idx, store: store, an: an}
}

func (e *Emitter) indentStr() string { return strings.Repeat("  ", e.indent) }

func (e *Emitter) write(s string) { e.out.WriteString(s) }

func (e *Emitter) writeLine(s string) {
	e.out.WriteString(e.indentStr())
	e.out.WriteString(s)
	e.out.WriteString("\n")
}

// EmitUnit emits target text for one parsed CREATE statement. Package
// bodies go through emitPackageBody, which flattens members to
// schema.pkg__member and emits the package helpers (package.go) once per
// package, as recorded by pkgstate.Package.HelpersEmitted.
func (e *Emitter) EmitUnit(u *ast.Unit) (string, *diag.Failure) {
	switch {
	case u.Function != nil:
		schema, name := splitUnitName(u.Function.Name)
		e.currentSchema = schema
		return e.emitStandaloneFunction(u.Function, schema, name)

	case u.Procedure != nil:
		schema, name := splitUnitName(u.Procedure.Name)
		e.currentSchema = schema
		return e.emitStandaloneProcedure(u.Procedure, schema, name)

	case u.Package != nil:
		// PL/pgSQL has no package construct; the package declaration
		// (public variables, cursors, member headers) carries no target
		// object of its own. Translating it populates the Package
		// Context Store (via internal/analyzer), which is all a later
		// package body needs.
		return fmt.Sprintf("-- package %s has no direct PL/pgSQL equivalent; its public declarations\n-- are tracked for package-member flattening only.\n", u.Package.Name.String()), nil

	case u.PackageBody != nil:
		return e.emitPackageBody(u.PackageBody)

	default:
		return "", diag.New(diag.InternalError, "unit carries no Function/Procedure/Package/PackageBody")
	}
}

func splitUnitName(n *ast.Name) (schema, name string) {
	if len(n.Parts) >= 2 {
		return n.Parts[0], n.Last()
	}
	return "public", n.Last()
}

func (e *Emitter) emitStandaloneFunction(f *ast.CreateFunction, schema, name string) (string, *diag.Failure) {
	target := strings.ToLower(schema) + "." + strings.ToLower(name)
	return e.emitFunctionLike(target, f.Params, f.ReturnType, f.Decls, f.Body, f.Exception, false)
}

func (e *Emitter) emitStandaloneProcedure(p *ast.CreateProcedure, schema, name string) (string, *diag.Failure) {
	target := strings.ToLower(schema) + "." + strings.ToLower(name)
	return e.emitFunctionLike(target, p.Params, nil, p.Decls, p.Body, p.Exception, false)
}

// emitPackageBody emits, in order: the package's initializer/getter/setter
// helpers if this session has not yet emitted them, then one CREATE
// FUNCTION per member, each flattened to schema.pkgname__membername and
// opening with a call to the initializer.
func (e *Emitter) emitPackageBody(pb *ast.CreatePackageBody) (string, *diag.Failure) {
	schema, name := splitUnitName(pb.Name)
	e.currentSchema = schema
	e.pkgSchema, e.pkgName = schema, name
	e.an.Scope().EnterPackage(schema, name)
	defer e.an.Scope().LeavePackage()

	var out strings.Builder

	pkg := e.store.GetOrCreate(schema, name)
	if !pkg.HelpersEmitted {
		out.WriteString(e.emitPackageHelpers(pkg))
	}

	for _, m := range pb.Members {
		switch {
		case m.Function != nil:
			target := flattenMemberName(schema, name, m.Function.Name.Last())
			text, fail := e.emitFunctionLike(target, m.Function.Params, m.Function.ReturnType, m.Function.Decls, m.Function.Body, m.Function.Exception, true)
			if fail != nil {
				return "", fail
			}
			out.WriteString(text)
			out.WriteString("\n")
		case m.Procedure != nil:
			target := flattenMemberName(schema, name, m.Procedure.Name.Last())
			text, fail := e.emitFunctionLike(target, m.Procedure.Params, nil, m.Procedure.Decls, m.Procedure.Body, m.Procedure.Exception, true)
			if fail != nil {
				return "", fail
			}
			out.WriteString(text)
			out.WriteString("\n")
		}
	}

	e.pkgSchema, e.pkgName = "", ""
	return out.String(), nil
}

// emitFunctionLike emits one CREATE OR REPLACE FUNCTION for either a
// CreateFunction or a CreateProcedure (Postgres has no separate stored
// procedure form below version 11's PROCEDURE, so the procedure case
// targets a single RETURNS-void function form to keep call sites
// uniform). isPkgMember gates the leading initializer PERFORM call.
func (e *Emitter) emitFunctionLike(target string, params []ast.ParamDecl, retType *ast.TypeRef, decls, body []ast.Statement, handlers []ast.ExceptionHandler, isPkgMember bool) (string, *diag.Failure) {
	e.an.Scope().PushVarScope()
	defer e.an.Scope().PopVarScope()

	paramList, fail := e.emitParamList(params)
	if fail != nil {
		return "", fail
	}

	returnText := "void"
	if retType != nil {
		returnText = targetTypeOf(e.an.ResolveTypeRef(retType))
	}

	var out strings.Builder
	out.WriteString(fmt.Sprintf("CREATE OR REPLACE FUNCTION %s(%s)\n", target, paramList))
	out.WriteString(fmt.Sprintf("RETURNS %s AS $$\n", returnText))

	declText, fail := e.emitDeclareSection(decls)
	if fail != nil {
		return "", fail
	}
	if declText != "" {
		out.WriteString("DECLARE\n")
		out.WriteString(declText)
	}

	out.WriteString("BEGIN\n")
	e.indent++
	if isPkgMember {
		e.writeInto(&out, fmt.Sprintf("PERFORM %s();\n", flattenMemberName(e.pkgSchema, e.pkgName, "init")))
	}
	bodyText, fail := e.emitStatements(body)
	if fail != nil {
		return "", fail
	}
	out.WriteString(bodyText)

	if len(handlers) > 0 {
		excText, fail := e.emitExceptionBlock(handlers)
		if fail != nil {
			return "", fail
		}
		out.WriteString(excText)
	}
	e.indent--
	out.WriteString("END;\n$$ LANGUAGE plpgsql;\n")

	return out.String(), nil
}

func (e *Emitter) writeInto(out *strings.Builder, s string) {
	out.WriteString(e.indentStr())
	out.WriteString(s)
}

// emitParamList renders the header parameter list, mapping each
// parameter's declared type via the same mapping table internal/types
// uses for declarations, and declaring each name into the
// function's variable scope so the body's LookupVar calls see it.
func (e *Emitter) emitParamList(params []ast.ParamDecl) (string, *diag.Failure) {
	parts := make([]string, 0, len(params))
	for _, p := range params {
		t := e.an.ResolveTypeRef(p.Type)
		if err := e.an.Scope().Declare(p.Name, t); err != nil && err.Category != diag.DupDecl {
			return "", err
		}
		mode := ""
		switch p.Mode {
		case ast.ModeOut:
			mode = "OUT "
		case ast.ModeInOut:
			mode = "INOUT "
		}
		parts = append(parts, fmt.Sprintf("%s%s %s", mode, strings.ToLower(p.Name), targetTypeOf(t)))
	}
	return strings.Join(parts, ", "), nil
}
