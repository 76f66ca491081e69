package emitter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sayiza/orapgsync/internal/ast"
	"github.com/sayiza/orapgsync/internal/diag"
	"github.com/sayiza/orapgsync/internal/types"
)

// emitExpr renders e as PL/pgSQL text, consulting the Type Analyzer's
// cache (never re-deriving a type) wherever a decision depends on one:
// polymorphic ROUND/TRUNC, date arithmetic, `||` operand conversion, and
// CASE/DECODE branch-cast insertion.
func (e *Emitter) emitExpr(expr ast.Expression) (string, *diag.Failure) {
	switch n := expr.(type) {
	case nil:
		return "NULL", nil

	case *ast.NumberLiteral:
		return n.Text, nil

	case *ast.StringLiteral:
		return "'" + strings.ReplaceAll(n.Value, "'", "''") + "'", nil

	case *ast.DateLiteral:
		if n.Timestamp {
			return fmt.Sprintf("TIMESTAMP '%s'", n.Text), nil
		}
		return fmt.Sprintf("DATE '%s'", n.Text), nil

	case *ast.NullLiteral:
		return "NULL", nil

	case *ast.BoolLiteral:
		if n.Value {
			return "TRUE", nil
		}
		return "FALSE", nil

	case *ast.Identifier:
		return e.emitIdentifierRead(n.Value)

	case *ast.QualifiedIdentifier:
		return e.emitQualifiedRead(n)

	case *ast.InfixExpression:
		return e.emitInfix(n)

	case *ast.PrefixExpression:
		right, fail := e.emitExpr(n.Right)
		if fail != nil {
			return "", fail
		}
		op := n.Operator
		if strings.EqualFold(op, "NOT") {
			return fmt.Sprintf("NOT %s", right), nil
		}
		return op + right, nil

	case *ast.BetweenExpression:
		v, fail := e.emitExpr(n.Expr)
		if fail != nil {
			return "", fail
		}
		lo, fail := e.emitExpr(n.Low)
		if fail != nil {
			return "", fail
		}
		hi, fail := e.emitExpr(n.High)
		if fail != nil {
			return "", fail
		}
		not := ""
		if n.Not {
			not = "NOT "
		}
		return fmt.Sprintf("%s %sBETWEEN %s AND %s", v, not, lo, hi), nil

	case *ast.InExpression:
		return e.emitIn(n)

	case *ast.LikeExpression:
		v, fail := e.emitExpr(n.Expr)
		if fail != nil {
			return "", fail
		}
		p, fail := e.emitExpr(n.Pattern)
		if fail != nil {
			return "", fail
		}
		not := ""
		if n.Not {
			not = "NOT "
		}
		s := fmt.Sprintf("%s %sLIKE %s", v, not, p)
		if n.Escape != nil {
			esc, fail := e.emitExpr(n.Escape)
			if fail != nil {
				return "", fail
			}
			s += " ESCAPE " + esc
		}
		return s, nil

	case *ast.IsNullExpression:
		v, fail := e.emitExpr(n.Expr)
		if fail != nil {
			return "", fail
		}
		if n.Not {
			return v + " IS NOT NULL", nil
		}
		return v + " IS NULL", nil

	case *ast.ParenExpression:
		inner, fail := e.emitExpr(n.Inner)
		if fail != nil {
			return "", fail
		}
		return "(" + inner + ")", nil

	case *ast.CallExpr:
		return e.emitCallRead(n)

	case *ast.IndexExpr:
		target, fail := e.emitExpr(n.Target)
		if fail != nil {
			return "", fail
		}
		idx, fail := e.resolveCollectionIndex(n.Index)
		if fail != nil {
			return "", fail
		}
		return fmt.Sprintf("(%s->%s)", target, idx), nil

	case *ast.FieldAccessExpr:
		return e.emitFieldAccess(n)

	case *ast.SubqueryExpression:
		text, fail := e.emitQueryText(n.Select)
		if fail != nil {
			return "", fail
		}
		return "(" + text + ")", nil

	case *ast.ExistsExpression:
		text, fail := e.emitQueryText(n.Select)
		if fail != nil {
			return "", fail
		}
		return "EXISTS (" + text + ")", nil

	case *ast.UnsupportedExpression:
		return "", diag.New(diag.UnsupportedSyntax, "unsupported expression: %s", n.Reason)

	case *ast.CaseExprNode:
		return e.emitCaseExpr(n)

	default:
		return "", diag.New(diag.InternalError, "emitter: unhandled expression type %T", expr)
	}
}

func (e *Emitter) emitIn(n *ast.InExpression) (string, *diag.Failure) {
	v, fail := e.emitExpr(n.Expr)
	if fail != nil {
		return "", fail
	}
	not := ""
	if n.Not {
		not = "NOT "
	}
	if n.Sub != nil {
		text, fail := e.emitQueryText(n.Sub)
		if fail != nil {
			return "", fail
		}
		return fmt.Sprintf("%s %sIN (%s)", v, not, text), nil
	}
	items := make([]string, len(n.List))
	for i, it := range n.List {
		t, fail := e.emitExpr(it)
		if fail != nil {
			return "", fail
		}
		items[i] = t
	}
	return fmt.Sprintf("%s %sIN (%s)", v, not, strings.Join(items, ", ")), nil
}

// pseudoColumnTarget renders the Oracle pseudo-columns that have no
// Postgres identifier of the same name; anything absent here passes
// through lower-cased unchanged (ROWNUM/LEVEL/UID/ROWID have no exact
// Postgres equivalent and are left for the caller's own workaround).
var pseudoColumnTarget = map[string]string{
	"sysdate":      "CURRENT_TIMESTAMP",
	"systimestamp": "CURRENT_TIMESTAMP",
	"user":         "CURRENT_USER",
}

// emitIdentifierRead resolves a bare name read exactly the way
// internal/analyzer's resolveIdentifier did: own package variable reads
// go through the generated getter, pseudo-columns with a differently
// named Postgres equivalent are substituted, and everything else (local
// variable, column) passes through as a plain identifier.
func (e *Emitter) emitIdentifierRead(name string) (string, *diag.Failure) {
	if _, ok := e.an.Scope().LookupVar(name); ok {
		return strings.ToLower(name), nil
	}
	if e.an.Scope().IsPackageVariable(name) {
		getter := flattenMemberName(e.pkgSchema, e.pkgName, "get_"+name)
		return getter + "()", nil
	}
	if text, ok := pseudoColumnTarget[strings.ToLower(name)]; ok {
		return text, nil
	}
	return strings.ToLower(name), nil
}

// emitQualifiedRead mirrors internal/analyzer's resolveQualified
// disambiguation order: alias.col passes through unchanged; a local
// record variable's field becomes a document-field extraction cast to
// its own cached type; a package variable (own or sibling) becomes a
// getter call.
func (e *Emitter) emitQualifiedRead(n *ast.QualifiedIdentifier) (string, *diag.Failure) {
	if _, _, ok := e.an.Scope().ResolveAlias(n.Qualifier); ok {
		return strings.ToLower(n.Qualifier) + "." + strings.ToLower(n.Member), nil
	}
	if t, ok := e.an.Scope().LookupVar(n.Qualifier); ok && t != nil && t.Tag == types.Record {
		fieldType := e.an.Cache().TypeOf(n)
		return fmt.Sprintf("(%s->>'%s')::%s", strings.ToLower(n.Qualifier), strings.ToLower(n.Member), targetTypeOf(fieldType)), nil
	}
	if pkg := e.an.Scope().CurrentPackage(); pkg != nil && strings.EqualFold(pkg.Name, n.Qualifier) {
		getter := flattenMemberName(e.pkgSchema, e.pkgName, "get_"+n.Member)
		return getter + "()", nil
	}
	getter := flattenMemberName(e.currentSchema, n.Qualifier, "get_"+n.Member)
	return getter + "()", nil
}

func (e *Emitter) emitFieldAccess(n *ast.FieldAccessExpr) (string, *diag.Failure) {
	target, fail := e.emitExpr(n.Target)
	if fail != nil {
		return "", fail
	}
	fieldType := e.an.Cache().TypeOf(n)
	return fmt.Sprintf("(%s->>'%s')::%s", target, strings.ToLower(n.Field), targetTypeOf(fieldType)), nil
}

// resolveCollectionIndex renders a collection subscript, applying the
// 1-based-to-0-based shift array-shaped collections need. The shape
// decision is made solely from the index expression's own cached type:
// a TEXT-typed index reads as a document key (Oracle INDEX BY VARCHAR2,
// map-shaped — no arithmetic); any other type is treated as an
// array-shaped ordinal index and shifted by one, computed at emit time
// for a literal and at runtime for anything else.
func (e *Emitter) resolveCollectionIndex(idx ast.Expression) (string, *diag.Failure) {
	idxType := e.an.Cache().TypeOf(idx)
	if idxType != nil && idxType.Tag == types.Text {
		text, fail := e.emitExpr(idx)
		if fail != nil {
			return "", fail
		}
		return text, nil
	}
	if lit, ok := idx.(*ast.NumberLiteral); ok {
		if n, err := strconv.Atoi(lit.Text); err == nil {
			return strconv.Itoa(n - 1), nil
		}
	}
	text, fail := e.emitExpr(idx)
	if fail != nil {
		return "", fail
	}
	return fmt.Sprintf("(%s - 1)", text), nil
}

// emitInfix renders `+`/`-`/`*`/`/`/`||`/comparisons, consulting the
// cached operand types for date-interval arithmetic and `||` operand
// conversion.
func (e *Emitter) emitInfix(n *ast.InfixExpression) (string, *diag.Failure) {
	l, fail := e.emitExpr(n.Left)
	if fail != nil {
		return "", fail
	}
	r, fail := e.emitExpr(n.Right)
	if fail != nil {
		return "", fail
	}
	lt, rt := e.an.Cache().TypeOf(n.Left), e.an.Cache().TypeOf(n.Right)

	switch strings.ToUpper(n.Operator) {
	case "+":
		if isDateLike(lt) && rt != nil && rt.Tag == types.Numeric {
			return fmt.Sprintf("(%s + (%s * interval '1 day'))", l, r), nil
		}
		if isDateLike(rt) && lt != nil && lt.Tag == types.Numeric {
			return fmt.Sprintf("(%s + (%s * interval '1 day'))", r, l), nil
		}
		return fmt.Sprintf("(%s + %s)", l, r), nil

	case "-":
		if isDateLike(lt) && isDateLike(rt) {
			return fmt.Sprintf("(EXTRACT(EPOCH FROM (%s - %s)) / 86400)", l, r), nil
		}
		if isDateLike(lt) && rt != nil && rt.Tag == types.Numeric {
			return fmt.Sprintf("(%s - (%s * interval '1 day'))", l, r), nil
		}
		return fmt.Sprintf("(%s - %s)", l, r), nil

	case "*", "/":
		return fmt.Sprintf("(%s %s %s)", l, n.Operator, r), nil

	case "||":
		lText := concatOperand(l, lt)
		rText := concatOperand(r, rt)
		return fmt.Sprintf("(%s || %s)", lText, rText), nil

	case "=", "!=", "<", "<=", ">", ">=":
		return fmt.Sprintf("%s %s %s", l, n.Operator, r), nil
	case "<>":
		return fmt.Sprintf("%s <> %s", l, r), nil

	default:
		return fmt.Sprintf("%s %s %s", l, strings.ToUpper(n.Operator), r), nil
	}
}

func isDateLike(t *types.Descriptor) bool {
	return t != nil && (t.Tag == types.Date || t.Tag == types.Timestamp)
}

func concatOperand(text string, t *types.Descriptor) string {
	if t != nil && (t.Tag == types.Text || t.Tag == types.Null) {
		return text
	}
	return "(" + text + ")::text"
}

// emitCaseExpr unifies branch results to the highest-precedence type the
// Type Analyzer already computed for this node, inserting an explicit
// cast on any branch whose own cached type disagrees with it.
func (e *Emitter) emitCaseExpr(n *ast.CaseExprNode) (string, *diag.Failure) {
	unified := e.an.Cache().TypeOf(n)

	var out strings.Builder
	out.WriteString("CASE")
	if n.Selector != nil {
		sel, fail := e.emitExpr(n.Selector)
		if fail != nil {
			return "", fail
		}
		out.WriteString(" " + sel)
	}
	for _, w := range n.Whens {
		cond, fail := e.emitExpr(w.Cond)
		if fail != nil {
			return "", fail
		}
		result, fail := e.emitExpr(w.Result)
		if fail != nil {
			return "", fail
		}
		result = castIfDisagrees(result, e.an.Cache().TypeOf(w.Result), unified)
		out.WriteString(fmt.Sprintf(" WHEN %s THEN %s", cond, result))
	}
	if n.Else != nil {
		elseText, fail := e.emitExpr(n.Else)
		if fail != nil {
			return "", fail
		}
		elseText = castIfDisagrees(elseText, e.an.Cache().TypeOf(n.Else), unified)
		out.WriteString(" ELSE " + elseText)
	}
	out.WriteString(" END")
	return out.String(), nil
}

func castIfDisagrees(text string, branchType, unified *types.Descriptor) string {
	if unified == nil || branchType == nil || branchType.Tag == unified.Tag {
		return text
	}
	return "(" + text + ")::" + targetTypeOf(unified)
}
