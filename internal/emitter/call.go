package emitter

import (
	"fmt"
	"strings"

	"github.com/sayiza/orapgsync/internal/ast"
	"github.com/sayiza/orapgsync/internal/diag"
	"github.com/sayiza/orapgsync/internal/types"
)

// emitAssignTarget renders the left-hand side of an assignment together
// with valueText, returning the full statement text (no trailing `;` —
// the caller adds it). Three shapes are distinguished: a plain variable
// (`:=`), a package variable (setter call, the sole access path to
// package state), and a record field or collection element (a functional
// jsonb update, since both are represented as a document rather than a
// native composite/array).
func (e *Emitter) emitAssignTarget(target ast.Expression, valueText string) (string, *diag.Failure) {
	switch t := target.(type) {
	case *ast.Identifier:
		if _, ok := e.an.Scope().LookupVar(t.Value); ok {
			return fmt.Sprintf("%s := %s", strings.ToLower(t.Value), valueText), nil
		}
		if e.an.Scope().IsPackageVariable(t.Value) {
			setter := flattenMemberName(e.pkgSchema, e.pkgName, "set_"+t.Value)
			return fmt.Sprintf("PERFORM %s(%s)", setter, valueText), nil
		}
		return fmt.Sprintf("%s := %s", strings.ToLower(t.Value), valueText), nil

	case *ast.QualifiedIdentifier:
		if vt, ok := e.an.Scope().LookupVar(t.Qualifier); ok && vt != nil && vt.Tag == types.Record {
			v := strings.ToLower(t.Qualifier)
			return fmt.Sprintf("%s := jsonb_set(%s, '{%s}', to_jsonb(%s), true)", v, v, strings.ToLower(t.Member), valueText), nil
		}
		if pkg := e.an.Scope().CurrentPackage(); pkg != nil && strings.EqualFold(pkg.Name, t.Qualifier) {
			setter := flattenMemberName(e.pkgSchema, e.pkgName, "set_"+t.Member)
			return fmt.Sprintf("PERFORM %s(%s)", setter, valueText), nil
		}
		setter := flattenMemberName(e.currentSchema, t.Qualifier, "set_"+t.Member)
		return fmt.Sprintf("PERFORM %s(%s)", setter, valueText), nil

	case *ast.FieldAccessExpr:
		base, ok := t.Target.(*ast.Identifier)
		if !ok {
			return "", diag.New(diag.UnsupportedSyntax, "assignment to a nested field of a non-variable expression is not supported")
		}
		v := strings.ToLower(base.Value)
		return fmt.Sprintf("%s := jsonb_set(%s, '{%s}', to_jsonb(%s), true)", v, v, strings.ToLower(t.Field), valueText), nil

	case *ast.CallExpr:
		if len(t.Args) != 1 || len(t.Name.Parts) != 1 {
			return "", diag.New(diag.UnsupportedSyntax, "collection element assignment requires exactly one index argument")
		}
		name := strings.ToLower(t.Name.Last())
		pathExpr, fail := e.collectionIndexPath(t.Args[0])
		if fail != nil {
			return "", fail
		}
		return fmt.Sprintf("%s := jsonb_set(%s, ARRAY[%s], to_jsonb(%s), true)", name, name, pathExpr, valueText), nil

	default:
		return "", diag.New(diag.InternalError, "emitter: unsupported assignment target %T", target)
	}
}

// collectionIndexPath renders idx as a single jsonb_set path element: a
// bare key for a TEXT-cached (map-shaped) index, or the 0-based numeric
// index cast to text for anything else (array-shaped), matching
// resolveCollectionIndex's shape decision.
func (e *Emitter) collectionIndexPath(idx ast.Expression) (string, *diag.Failure) {
	idxType := e.an.Cache().TypeOf(idx)
	if idxType != nil && idxType.Tag == types.Text {
		return e.emitExpr(idx)
	}
	shifted, fail := e.resolveCollectionIndex(idx)
	if fail != nil {
		return "", fail
	}
	return fmt.Sprintf("(%s)::text", shifted), nil
}

// emitCallRead renders a CallExpr used as an expression atom: collection
// element access is checked first (its disambiguation, the
// same rule internal/analyzer's inferCall applies), then the polymorphic
// builtins, then a general callable.
func (e *Emitter) emitCallRead(n *ast.CallExpr) (string, *diag.Failure) {
	if len(n.Args) == 1 && len(n.Name.Parts) == 1 {
		if elem, ok := e.collectionElementType(n.Name.Last()); ok {
			idx, fail := e.resolveCollectionIndex(n.Args[0])
			if fail != nil {
				return "", fail
			}
			name := strings.ToLower(n.Name.Last())
			return fmt.Sprintf("(%s ->> %s)::%s", name, idx, targetTypeOf(elem)), nil
		}
	}

	if len(n.Name.Parts) == 1 {
		lname := strings.ToLower(n.Name.Last())
		if text, handled, fail := e.emitSpecialBuiltin(lname, n.Args); handled || fail != nil {
			return text, fail
		}
	}

	return e.emitCallTarget(n)
}

// collectionElementType reports whether name resolves to a local or
// package collection variable, mirroring internal/analyzer's
// collectionElementType.
func (e *Emitter) collectionElementType(name string) (*types.Descriptor, bool) {
	if t, ok := e.an.Scope().LookupVar(name); ok {
		if t != nil && t.Tag == types.Collection {
			return t.Elem, true
		}
		return nil, false
	}
	if t, ok := e.an.Scope().PackageVariableType(name); ok {
		if t != nil && t.Tag == types.Collection {
			return t.Elem, true
		}
	}
	return nil, false
}

// emitCallTarget renders a general procedure/function invocation,
// flattening a package-member reference to schema.pkg__member first.
// A bare name is qualified with the current schema (after synonym
// resolution); a dotted name is a package
// member when its qualifier matches the package body currently being
// emitted, or names a package already known to the Package Context
// Store under the current schema; otherwise it is a plain schema-
// qualified call.
func (e *Emitter) emitCallTarget(n *ast.CallExpr) (string, *diag.Failure) {
	args := make([]string, len(n.Args))
	for i, a := range n.Args {
		text, fail := e.emitExpr(a)
		if fail != nil {
			return "", fail
		}
		args[i] = text
	}
	argsText := strings.Join(args, ", ")

	if len(n.Name.Parts) == 1 {
		schema, name := e.currentSchema, n.Name.Last()
		if e.idx != nil {
			if rs, rn, fail := e.idx.ResolveSynonym(schema, name); fail == nil {
				schema, name = rs, rn
			}
		}
		return fmt.Sprintf("%s.%s(%s)", strings.ToLower(schema), strings.ToLower(name), argsText), nil
	}

	qualifier, member := n.Name.Parts[len(n.Name.Parts)-2], n.Name.Last()
	target := e.resolveCalleeName(qualifier, member)
	return fmt.Sprintf("%s(%s)", target, argsText), nil
}

func (e *Emitter) resolveCalleeName(qualifier, member string) string {
	if e.pkgName != "" && strings.EqualFold(qualifier, e.pkgName) {
		return flattenMemberName(e.pkgSchema, e.pkgName, member)
	}
	if e.store != nil {
		if _, ok := e.store.Lookup(e.currentSchema, qualifier); ok {
			return flattenMemberName(e.currentSchema, qualifier, member)
		}
	}
	return strings.ToLower(qualifier) + "." + strings.ToLower(member)
}

// emitSpecialBuiltin renders the built-ins whose target form cannot be a
// plain same-named Postgres function call: polymorphic ROUND/TRUNC,
// NVL2/DECODE (rewritten as CASE, since Postgres has neither), and the
// handful of Oracle date/string functions with a differently-shaped
// Postgres equivalent. handled is false for anything this function
// leaves to the generic pass-through call path.
func (e *Emitter) emitSpecialBuiltin(name string, argExprs []ast.Expression) (string, bool, *diag.Failure) {
	args := make([]string, len(argExprs))
	for i, a := range argExprs {
		text, fail := e.emitExpr(a)
		if fail != nil {
			return "", true, fail
		}
		args[i] = text
	}

	switch name {
	case "round", "trunc":
		if len(args) == 0 {
			return "", false, nil
		}
		argType := e.an.Cache().TypeOf(argExprs[0])
		switch {
		case argType != nil && argType.Tag == types.Date:
			return fmt.Sprintf("date_trunc('day', %s)", args[0]), true, nil
		case argType != nil && argType.Tag == types.Numeric:
			return fmt.Sprintf("%s(%s)", name, strings.Join(args, ", ")), true, nil
		default:
			return fmt.Sprintf("%s((%s)::numeric%s)", name, args[0], restArgsSuffix(args[1:])), true, nil
		}

	case "nvl":
		return fmt.Sprintf("coalesce(%s)", strings.Join(args, ", ")), true, nil

	case "nvl2":
		if len(args) < 3 {
			return "", false, nil
		}
		return fmt.Sprintf("(CASE WHEN %s IS NOT NULL THEN %s ELSE %s END)", args[0], args[1], args[2]), true, nil

	case "decode":
		return e.emitDecode(args), true, nil

	case "instr":
		if len(args) == 2 {
			return fmt.Sprintf("position(%s in %s)", args[1], args[0]), true, nil
		}
		return "", false, nil

	case "lengthb":
		return fmt.Sprintf("octet_length(%s)", args[0]), true, nil

	case "to_date":
		if len(args) == 2 {
			return fmt.Sprintf("to_date(%s, %s)", args[0], args[1]), true, nil
		}
		return fmt.Sprintf("(%s)::date", args[0]), true, nil

	case "to_timestamp":
		if len(args) == 2 {
			return fmt.Sprintf("to_timestamp(%s, %s)", args[0], args[1]), true, nil
		}
		return fmt.Sprintf("(%s)::timestamptz", args[0]), true, nil

	case "to_number":
		return fmt.Sprintf("(%s)::numeric", args[0]), true, nil

	case "to_char":
		if len(args) == 2 {
			return fmt.Sprintf("to_char(%s, %s)", args[0], args[1]), true, nil
		}
		return fmt.Sprintf("(%s)::text", args[0]), true, nil

	case "add_months":
		return fmt.Sprintf("(%s + (%s || ' months')::interval)", args[0], args[1]), true, nil

	case "months_between":
		return fmt.Sprintf("(EXTRACT(EPOCH FROM (%s - %s)) / (86400 * 30))", args[0], args[1]), true, nil

	case "last_day":
		return fmt.Sprintf("(date_trunc('month', %s) + interval '1 month - 1 day')", args[0]), true, nil

	case "sys_extract_utc":
		return fmt.Sprintf("(%s AT TIME ZONE 'UTC')", args[0]), true, nil

	default:
		return "", false, nil
	}
}

func restArgsSuffix(rest []string) string {
	if len(rest) == 0 {
		return ""
	}
	return ", " + strings.Join(rest, ", ")
}

// emitDecode rewrites Oracle's positional DECODE into a CASE expression,
// using IS NOT DISTINCT FROM so a NULL search value matches a NULL
// comparand the way Oracle's DECODE always has.
func (e *Emitter) emitDecode(args []string) string {
	if len(args) < 3 {
		if len(args) > 0 {
			return args[0]
		}
		return "NULL"
	}
	subject := args[0]
	var b strings.Builder
	b.WriteString("(CASE")
	i := 1
	for i+1 < len(args) {
		fmt.Fprintf(&b, " WHEN %s IS NOT DISTINCT FROM %s THEN %s", subject, args[i], args[i+1])
		i += 2
	}
	if i < len(args) {
		fmt.Fprintf(&b, " ELSE %s", args[i])
	}
	b.WriteString(" END)")
	return b.String()
}
