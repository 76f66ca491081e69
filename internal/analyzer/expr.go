package analyzer

import (
	"strings"

	"github.com/sayiza/orapgsync/internal/ast"
	"github.com/sayiza/orapgsync/internal/catalog"
	"github.com/sayiza/orapgsync/internal/diag"
	"github.com/sayiza/orapgsync/internal/scope"
	"github.com/sayiza/orapgsync/internal/types"
)

// pseudoColumns maps Oracle pseudo-columns to fixed types;
// these are checked only after scope resolution fails, so a local variable
// or column named the same always wins (no heuristic override).
var pseudoColumns = map[string]*types.Descriptor{
	"sysdate":         types.DateD,
	"systimestamp":    types.TimestampD,
	"rownum":          types.NumericD,
	"level":           types.NumericD,
	"uid":             types.NumericD,
	"user":            types.TextD,
	"rowid":           types.TextD,
	"sessiontimezone": types.TextD,
}

// analyzeExpr infers e's type, caches it by span, and returns it.
func (a *Analyzer) analyzeExpr(e ast.Expression) *types.Descriptor {
	t := a.inferExpr(e)
	if e != nil {
		a.cache.Set(e.Pos(), t)
	}
	return t
}

func (a *Analyzer) inferExpr(e ast.Expression) *types.Descriptor {
	switch n := e.(type) {
	case nil:
		return types.UnknownD

	case *ast.NumberLiteral:
		return types.NumericD

	case *ast.StringLiteral:
		return types.TextD

	case *ast.DateLiteral:
		if n.Timestamp {
			return types.TimestampD
		}
		return types.DateD

	case *ast.NullLiteral:
		return types.NullD

	case *ast.BoolLiteral:
		return types.BooleanD

	case *ast.Identifier:
		return a.resolveIdentifier(n.Value)

	case *ast.QualifiedIdentifier:
		return a.resolveQualified(n)

	case *ast.InfixExpression:
		return a.inferInfix(n)

	case *ast.PrefixExpression:
		return a.analyzeExpr(n.Right)

	case *ast.BetweenExpression:
		a.analyzeExpr(n.Expr)
		a.analyzeExpr(n.Low)
		a.analyzeExpr(n.High)
		return types.BooleanD

	case *ast.InExpression:
		a.analyzeExpr(n.Expr)
		for _, item := range n.List {
			a.analyzeExpr(item)
		}
		if n.Sub != nil {
			a.analyzeSelectStatement(n.Sub)
		}
		return types.BooleanD

	case *ast.LikeExpression:
		a.analyzeExpr(n.Expr)
		a.analyzeExpr(n.Pattern)
		if n.Escape != nil {
			a.analyzeExpr(n.Escape)
		}
		return types.BooleanD

	case *ast.IsNullExpression:
		a.analyzeExpr(n.Expr)
		return types.BooleanD

	case *ast.ParenExpression:
		return a.analyzeExpr(n.Inner)

	case *ast.CallExpr:
		return a.inferCall(n)

	case *ast.IndexExpr:
		// Never produced by internal/parser (collection access always
		// parses as CallExpr), but analyzed defensively in case a future
		// tree builder constructs one directly.
		target := a.analyzeExpr(n.Target)
		a.analyzeExpr(n.Index)
		if target != nil && target.Tag == types.Collection {
			return target.Elem
		}
		return types.UnknownD

	case *ast.FieldAccessExpr:
		return a.inferFieldAccess(n)

	case *ast.SubqueryExpression:
		_, scalar := a.analyzeSelectStatement(n.Select)
		return scalar

	case *ast.ExistsExpression:
		a.analyzeSelectStatement(n.Select)
		return types.BooleanD

	case *ast.UnsupportedExpression:
		return types.UnknownD

	case *ast.CaseExprNode:
		return a.inferCaseExpr(n)

	default:
		return types.UnknownD
	}
}

// inferInfix types `+`/`-`/`*`/`/` arithmetic, `||` concatenation, and
// comparison/logical operators.
func (a *Analyzer) inferInfix(n *ast.InfixExpression) *types.Descriptor {
	l := a.analyzeExpr(n.Left)
	r := a.analyzeExpr(n.Right)
	switch strings.ToUpper(n.Operator) {
	case "+", "-":
		return types.Arithmetic(l, r, n.Operator == "-")
	case "*", "/":
		if types.IsNull(l) || types.IsNull(r) {
			return types.NullD
		}
		if l != nil && r != nil && l.Tag == types.Numeric && r.Tag == types.Numeric {
			return types.NumericD
		}
		return types.UnknownD
	case "||":
		if types.IsNull(l) && types.IsNull(r) {
			return types.NullD
		}
		return types.TextD
	case "=", "!=", "<>", "<", "<=", ">", ">=", "AND", "OR":
		return types.BooleanD
	default:
		return types.UnknownD
	}
}

// inferCaseExpr unifies every branch result to the highest-precedence type
// across them, so a CASE mixing e.g. NUMERIC and DATE branches types as DATE.
func (a *Analyzer) inferCaseExpr(n *ast.CaseExprNode) *types.Descriptor {
	if n.Selector != nil {
		a.analyzeExpr(n.Selector)
	}
	var best *types.Descriptor
	for _, w := range n.Whens {
		a.analyzeExpr(w.Cond)
		best = types.Higher(best, a.analyzeExpr(w.Result))
	}
	if n.Else != nil {
		best = types.Higher(best, a.analyzeExpr(n.Else))
	}
	if best == nil {
		return types.UnknownD
	}
	return best
}

// resolveIdentifier implements its fixed lookup order for a bare
// name: scope resolution (local var, then package var), then pseudo-column,
// then unqualified column resolution across the visible query scope.
func (a *Analyzer) resolveIdentifier(name string) *types.Descriptor {
	if t, kind := a.scope.Resolve(name); kind != scope.ResolveUnresolved {
		return t
	}
	if t, ok := pseudoColumns[strings.ToLower(name)]; ok {
		return t
	}
	if t, ok := a.resolveColumnAcrossScope(name); ok {
		return t
	}
	a.record(diag.New(diag.UnknownName, "%s does not resolve to a variable, package variable, pseudo-column, or query column", name))
	return types.UnknownD
}

// resolveColumnAcrossScope implements "first hit wins across frames,
// ambiguity only within one frame". Frame-local ambiguity
// is a strict-mode TYPE_CONFLICT and a silent UNKNOWN in lenient mode
// (default), matching the Open Question decision recorded in DESIGN.md.
func (a *Analyzer) resolveColumnAcrossScope(column string) (*types.Descriptor, bool) {
	for _, frame := range a.scope.VisibleTablesByFrame() {
		var found *types.Descriptor
		hits := 0
		for _, vt := range frame {
			t, ok, fail := a.idx.ColumnType(vt.Schema, vt.Table, column)
			if fail != nil {
				a.record(fail)
				continue
			}
			if ok {
				hits++
				found = t
			}
		}
		if hits == 1 {
			return found, true
		}
		if hits > 1 {
			if a.strict {
				a.record(diag.New(diag.TypeConflict, "%s is ambiguous among the tables joined in this query", column))
			}
			return types.UnknownD, true
		}
	}
	return nil, false
}

// resolveQualified disambiguates QualifiedIdentifier's three readings in
// a fixed order: alias.col (query scope), then record_var.field (local
// variable scope), then pkg.var (package scope, own package first, then
// a sibling package in the same schema).
func (a *Analyzer) resolveQualified(n *ast.QualifiedIdentifier) *types.Descriptor {
	if schema, table, ok := a.scope.ResolveAlias(n.Qualifier); ok {
		if t, ok, fail := a.idx.ColumnType(schema, table, n.Member); fail == nil && ok {
			return t
		} else if fail != nil {
			a.record(fail)
			return types.UnknownD
		}
	}
	if t, ok := a.scope.LookupVar(n.Qualifier); ok {
		if t != nil && t.Tag == types.Record {
			return fieldTypeOf(t, n.Member)
		}
	}
	if pkg := a.scope.CurrentPackage(); pkg != nil && strings.EqualFold(pkg.Name, n.Qualifier) {
		if t, ok := a.scope.PackageVariableType(n.Member); ok {
			return t
		}
	}
	if t, ok := a.scope.LookupPackageVariable(a.currentSchema, n.Qualifier, n.Member); ok {
		return t
	}
	a.record(diag.New(diag.UnknownName, "%s.%s does not resolve to a table alias, record field, or package variable", n.Qualifier, n.Member))
	return types.UnknownD
}

// inferFieldAccess types target.Field, where target is typically a Record
// (explicit RECORD or %ROWTYPE variable).
func (a *Analyzer) inferFieldAccess(n *ast.FieldAccessExpr) *types.Descriptor {
	t := a.analyzeExpr(n.Target)
	if t != nil && t.Tag == types.Record {
		return fieldTypeOf(t, n.Field)
	}
	return types.UnknownD
}

// inferCall disambiguates collection element access from a function call:
// `v(expr)` is only collection indexing when v resolves to a known
// collection variable, checked before falling back to the built-in
// registry and the catalog's overload resolution.
func (a *Analyzer) inferCall(n *ast.CallExpr) *types.Descriptor {
	if len(n.Args) == 1 && len(n.Name.Parts) == 1 {
		if elem, ok := a.collectionElementType(n.Name.Last()); ok {
			a.analyzeExpr(n.Args[0])
			return elem
		}
	}

	argTypes := make([]*types.Descriptor, len(n.Args))
	for i, arg := range n.Args {
		argTypes[i] = a.analyzeExpr(arg)
	}

	if len(n.Name.Parts) == 1 {
		if rule, ok := builtins[strings.ToLower(n.Name.Last())]; ok {
			return rule(argTypes)
		}
	}

	return a.resolveCallable(n.Name, argTypes)
}

// collectionElementType reports whether name resolves to a known
// collection-typed variable (local or package-level), and if so its
// element type.
func (a *Analyzer) collectionElementType(name string) (*types.Descriptor, bool) {
	if t, ok := a.scope.LookupVar(name); ok {
		if t != nil && t.Tag == types.Collection {
			return t.Elem, true
		}
		return nil, false
	}
	if t, ok := a.scope.PackageVariableType(name); ok {
		if t != nil && t.Tag == types.Collection {
			return t.Elem, true
		}
	}
	return nil, false
}

// resolveCallable looks up n in the metadata index and picks the
// best-matching overload for argTypes, per catalog.ResolveOverload.
func (a *Analyzer) resolveCallable(n *ast.Name, argTypes []*types.Descriptor) *types.Descriptor {
	schema, name := a.splitSchemaTable(n)
	sigs, fail := a.idx.FunctionSignatures(schema, name)
	if fail != nil {
		a.record(fail)
		return types.UnknownD
	}
	sig, ok := catalog.ResolveOverload(sigs, argTypes)
	if !ok {
		a.record(diag.New(diag.UnknownName, "%s is not a known function, procedure, or collection variable", n.String()))
		return types.UnknownD
	}
	if sig.ReturnType == nil {
		return types.UnknownD
	}
	return sig.ReturnType
}
