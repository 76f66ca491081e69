package emitter

import (
	"fmt"
	"strings"

	"github.com/sayiza/orapgsync/internal/ast"
	"github.com/sayiza/orapgsync/internal/diag"
	"github.com/sayiza/orapgsync/internal/types"
)

// emitDeclareSection renders the DECLARE block for a function/procedure or
// nested BlockStatement, and registers each declared name into the
// variable scope so the body walk that follows resolves locals correctly.
func (e *Emitter) emitDeclareSection(decls []ast.Statement) (string, *diag.Failure) {
	var out strings.Builder
	for _, d := range decls {
		switch s := d.(type) {
		case *ast.VarDecl:
			t := e.an.ResolveTypeRef(s.Type)
			if fail := e.an.Scope().Declare(s.Name, t); fail != nil && fail.Category != diag.DupDecl {
				return "", fail
			}
			var valText string
			if s.Default != nil {
				text, fail := e.emitExpr(s.Default)
				if fail != nil {
					return "", fail
				}
				valText = text
			} else if t != nil && (t.Tag == types.Record || t.Tag == types.Collection) {
				valText = emptyLiteralFor(t)
			}
			if valText != "" {
				out.WriteString(fmt.Sprintf("  %s %s := %s;\n", strings.ToLower(s.Name), targetTypeOf(t), valText))
			} else {
				out.WriteString(fmt.Sprintf("  %s %s;\n", strings.ToLower(s.Name), targetTypeOf(t)))
			}

		case *ast.TypeDecl:
			// Named TYPE declarations have no standalone PL/pgSQL rendering;
			// every variable declared with this type already resolves to
			// its underlying jsonb/scalar shape via ResolveTypeRef.

		case *ast.CursorDecl:
			header := strings.ToLower(s.Name)
			if len(s.Params) > 0 {
				parts := make([]string, len(s.Params))
				for i, p := range s.Params {
					parts[i] = fmt.Sprintf("%s %s", strings.ToLower(p.Name), targetTypeOf(e.an.ResolveTypeRef(p.Type)))
				}
				header += "(" + strings.Join(parts, ", ") + ")"
			}
			queryText, fail := e.emitQueryText(s.Query)
			if fail != nil {
				return "", fail
			}
			out.WriteString(fmt.Sprintf("  %s CURSOR FOR %s;\n", header, queryText))
		}
	}
	return out.String(), nil
}

// emitStatements renders stmts at the current indent level.
func (e *Emitter) emitStatements(stmts []ast.Statement) (string, *diag.Failure) {
	var out strings.Builder
	for _, s := range stmts {
		text, fail := e.emitStmt(s)
		if fail != nil {
			return "", fail
		}
		out.WriteString(text)
	}
	return out.String(), nil
}

func (e *Emitter) line(s string) string { return e.indentStr() + s + "\n" }

func (e *Emitter) emitStmt(s ast.Statement) (string, *diag.Failure) {
	switch st := s.(type) {
	case *ast.AssignStatement:
		return e.emitAssign(st)

	case *ast.IfStatement:
		return e.emitIf(st)

	case *ast.CaseStatement:
		return e.emitCaseStatement(st)

	case *ast.LoopStatement:
		return e.emitLoop(st)

	case *ast.ExitStatement:
		return e.emitExitLike("EXIT", st.Label, st.When)

	case *ast.ContinueStatement:
		return e.emitExitLike("CONTINUE", st.Label, st.When)

	case *ast.ReturnStatement:
		if st.Value == nil {
			return e.line("RETURN;"), nil
		}
		text, fail := e.emitExpr(st.Value)
		if fail != nil {
			return "", fail
		}
		return e.line(fmt.Sprintf("RETURN %s;", text)), nil

	case *ast.NullStatement:
		return e.line("NULL;"), nil

	case *ast.CallStatement:
		return e.emitCallStatement(st)

	case *ast.SelectIntoStatement:
		return e.emitSelectInto(st)

	case *ast.DMLStatement:
		return e.line(strings.TrimRight(st.Text, "; \t\n") + ";"), nil

	case *ast.OpenStatement:
		return e.emitOpen(st)

	case *ast.FetchStatement:
		return e.emitFetch(st)

	case *ast.CloseStatement:
		return e.line(fmt.Sprintf("CLOSE %s;", strings.ToLower(st.Cursor.Last()))), nil

	case *ast.RaiseStatement:
		if st.Exception == "" {
			return e.line("RAISE;"), nil
		}
		return e.line(fmt.Sprintf("RAISE EXCEPTION '%s';", st.Exception)), nil

	case *ast.ExecuteImmediateStatement:
		text, fail := e.emitExpr(st.SQL)
		if fail != nil {
			return "", fail
		}
		return e.line(fmt.Sprintf("EXECUTE %s;", text)), nil

	case *ast.PassthroughStatement:
		return e.line(strings.TrimRight(st.Text, "; \t\n") + ";"), nil

	case *ast.UnsupportedStatement:
		return "", diag.New(diag.UnsupportedSyntax, "unsupported statement: %s", st.Reason)

	case *ast.BlockStatement:
		return e.emitBlock(st)

	default:
		return "", diag.New(diag.InternalError, "emitter: unhandled statement type %T", s)
	}
}

func (e *Emitter) emitAssign(st *ast.AssignStatement) (string, *diag.Failure) {
	valText, fail := e.emitExpr(st.Value)
	if fail != nil {
		return "", fail
	}
	targetText, fail := e.emitAssignTarget(st.Target, valText)
	if fail != nil {
		return "", fail
	}
	return e.line(targetText + ";"), nil
}

func (e *Emitter) emitIf(st *ast.IfStatement) (string, *diag.Failure) {
	var out strings.Builder
	condText, fail := e.emitExpr(st.Cond)
	if fail != nil {
		return "", fail
	}
	out.WriteString(e.line(fmt.Sprintf("IF %s THEN", condText)))
	e.indent++
	body, fail := e.emitStatements(st.Then)
	if fail != nil {
		return "", fail
	}
	out.WriteString(body)
	e.indent--

	for _, ei := range st.ElseIfs {
		c, fail := e.emitExpr(ei.Cond)
		if fail != nil {
			return "", fail
		}
		out.WriteString(e.line(fmt.Sprintf("ELSIF %s THEN", c)))
		e.indent++
		b, fail := e.emitStatements(ei.Then)
		if fail != nil {
			return "", fail
		}
		out.WriteString(b)
		e.indent--
	}

	if len(st.Else) > 0 {
		out.WriteString(e.line("ELSE"))
		e.indent++
		b, fail := e.emitStatements(st.Else)
		if fail != nil {
			return "", fail
		}
		out.WriteString(b)
		e.indent--
	}
	out.WriteString(e.line("END IF;"))
	return out.String(), nil
}

func (e *Emitter) emitCaseStatement(st *ast.CaseStatement) (string, *diag.Failure) {
	var out strings.Builder
	header := "CASE"
	if st.Selector != nil {
		sel, fail := e.emitExpr(st.Selector)
		if fail != nil {
			return "", fail
		}
		header = "CASE " + sel
	}
	out.WriteString(e.line(header))
	e.indent++
	for _, w := range st.Whens {
		c, fail := e.emitExpr(w.Cond)
		if fail != nil {
			return "", fail
		}
		out.WriteString(e.line(fmt.Sprintf("WHEN %s THEN", c)))
		e.indent++
		b, fail := e.emitStatements(w.Then)
		if fail != nil {
			return "", fail
		}
		out.WriteString(b)
		e.indent--
	}
	if len(st.Else) > 0 {
		out.WriteString(e.line("ELSE"))
		e.indent++
		b, fail := e.emitStatements(st.Else)
		if fail != nil {
			return "", fail
		}
		out.WriteString(b)
		e.indent--
	}
	e.indent--
	out.WriteString(e.line("END CASE;"))
	return out.String(), nil
}

func (e *Emitter) emitExitLike(keyword, label string, when ast.Expression) (string, *diag.Failure) {
	s := keyword
	if label != "" {
		s += " " + strings.ToLower(label)
	}
	if when != nil {
		text, fail := e.emitExpr(when)
		if fail != nil {
			return "", fail
		}
		s += " WHEN " + text
	}
	return e.line(s + ";"), nil
}

func (e *Emitter) emitLoop(st *ast.LoopStatement) (string, *diag.Failure) {
	label := ""
	if st.Label != "" {
		label = "<<" + strings.ToLower(st.Label) + ">>\n" + e.indentStr()
	}

	switch st.Kind {
	case ast.LoopPlain:
		var out strings.Builder
		out.WriteString(e.indentStr() + label + "LOOP\n")
		e.indent++
		b, fail := e.emitStatements(st.Body)
		if fail != nil {
			return "", fail
		}
		out.WriteString(b)
		e.indent--
		out.WriteString(e.line("END LOOP;"))
		return out.String(), nil

	case ast.LoopWhile:
		cond, fail := e.emitExpr(st.Cond)
		if fail != nil {
			return "", fail
		}
		var out strings.Builder
		out.WriteString(e.indentStr() + label + fmt.Sprintf("WHILE %s LOOP\n", cond))
		e.indent++
		b, fail := e.emitStatements(st.Body)
		if fail != nil {
			return "", fail
		}
		out.WriteString(b)
		e.indent--
		out.WriteString(e.line("END LOOP;"))
		return out.String(), nil

	case ast.LoopForRange:
		lo, fail := e.emitExpr(st.RangeLow)
		if fail != nil {
			return "", fail
		}
		hi, fail := e.emitExpr(st.RangeHigh)
		if fail != nil {
			return "", fail
		}
		rev := ""
		if st.Reverse {
			rev = "REVERSE "
		}
		e.an.Scope().PushVarScope()
		if fail := e.an.Scope().Declare(st.Var, types.NumericD); fail != nil && fail.Category != diag.DupDecl {
			e.an.Scope().PopVarScope()
			return "", fail
		}
		var out strings.Builder
		out.WriteString(e.indentStr() + label + fmt.Sprintf("FOR %s IN %s%s..%s LOOP\n", strings.ToLower(st.Var), rev, lo, hi))
		e.indent++
		b, fail := e.emitStatements(st.Body)
		e.indent--
		e.an.Scope().PopVarScope()
		if fail != nil {
			return "", fail
		}
		out.WriteString(b)
		out.WriteString(e.line("END LOOP;"))
		return out.String(), nil

	case ast.LoopForCursor:
		return e.emitForCursorLoop(st, label)

	default:
		return "", diag.New(diag.InternalError, "emitter: unhandled loop kind %v", st.Kind)
	}
}

func (e *Emitter) emitForCursorLoop(st *ast.LoopStatement, label string) (string, *diag.Failure) {
	var rowType *types.Descriptor
	var source string
	if st.CursorQuery != nil {
		if t, ok := e.an.SelectRecordType(st.CursorQuery); ok {
			rowType = t
		}
		text, fail := e.emitQueryText(st.CursorQuery)
		if fail != nil {
			return "", fail
		}
		source = "(" + text + ")"
	} else if st.CursorName != nil {
		if t, ok := e.an.CursorRecordType(st.CursorName.Last()); ok {
			rowType = t
		}
		source = strings.ToLower(st.CursorName.Last())
	}
	if rowType == nil {
		rowType = types.UnknownD
	}

	e.an.Scope().PushVarScope()
	if fail := e.an.Scope().Declare(st.Var, rowType); fail != nil && fail.Category != diag.DupDecl {
		e.an.Scope().PopVarScope()
		return "", fail
	}
	var out strings.Builder
	out.WriteString(e.indentStr() + label + fmt.Sprintf("FOR %s IN %s LOOP\n", strings.ToLower(st.Var), source))
	e.indent++
	b, fail := e.emitStatements(st.Body)
	e.indent--
	e.an.Scope().PopVarScope()
	if fail != nil {
		return "", fail
	}
	out.WriteString(b)
	out.WriteString(e.line("END LOOP;"))
	return out.String(), nil
}

// emitCallStatement renders the three standalone call forms: a bare
// procedure call becomes PERFORM; `f(args) INTO v` becomes a SELECT-INTO;
// a package member is flattened before either form is chosen.
func (e *Emitter) emitCallStatement(st *ast.CallStatement) (string, *diag.Failure) {
	calleeText, fail := e.emitCallTarget(st.Call)
	if fail != nil {
		return "", fail
	}
	if len(st.Into) == 0 {
		return e.line(fmt.Sprintf("PERFORM %s;", calleeText)), nil
	}
	targets := make([]string, len(st.Into))
	for i, into := range st.Into {
		t, fail := e.emitExpr(into)
		if fail != nil {
			return "", fail
		}
		targets[i] = t
	}
	return e.line(fmt.Sprintf("SELECT %s INTO %s;", calleeText, strings.Join(targets, ", "))), nil
}

// emitSelectInto renders a SELECT ... INTO statement from sel's captured
// text, with its column list and WHERE clause rewritten through emitExpr.
// The INTO clause itself is part of that captured text and is left as
// written: Oracle and PL/pgSQL agree on plain-variable INTO-target syntax,
// so no separate reconstruction from st.Into is needed in that case.
func (e *Emitter) emitSelectInto(st *ast.SelectIntoStatement) (string, *diag.Failure) {
	text, fail := e.emitQueryText(st.Select)
	if fail != nil {
		return "", fail
	}
	return e.line(text + ";"), nil
}

func (e *Emitter) emitOpen(st *ast.OpenStatement) (string, *diag.Failure) {
	if len(st.Args) == 0 {
		return e.line(fmt.Sprintf("OPEN %s;", strings.ToLower(st.Cursor.Last()))), nil
	}
	args := make([]string, len(st.Args))
	for i, a := range st.Args {
		t, fail := e.emitExpr(a)
		if fail != nil {
			return "", fail
		}
		args[i] = t
	}
	return e.line(fmt.Sprintf("OPEN %s(%s);", strings.ToLower(st.Cursor.Last()), strings.Join(args, ", "))), nil
}

func (e *Emitter) emitFetch(st *ast.FetchStatement) (string, *diag.Failure) {
	targets := make([]string, len(st.Into))
	for i, into := range st.Into {
		t, fail := e.emitExpr(into)
		if fail != nil {
			return "", fail
		}
		targets[i] = t
	}
	return e.line(fmt.Sprintf("FETCH %s INTO %s;", strings.ToLower(st.Cursor.Last()), strings.Join(targets, ", "))), nil
}

func (e *Emitter) emitBlock(st *ast.BlockStatement) (string, *diag.Failure) {
	e.an.Scope().PushVarScope()
	defer e.an.Scope().PopVarScope()

	var out strings.Builder
	declText, fail := e.emitDeclareSection(st.Decls)
	if fail != nil {
		return "", fail
	}
	if declText != "" {
		out.WriteString(e.line("DECLARE"))
		out.WriteString(declText)
	}
	out.WriteString(e.line("BEGIN"))
	e.indent++
	b, fail := e.emitStatements(st.Body)
	if fail != nil {
		return "", fail
	}
	out.WriteString(b)
	if len(st.Exception) > 0 {
		exc, fail := e.emitExceptionBlock(st.Exception)
		if fail != nil {
			return "", fail
		}
		out.WriteString(exc)
	}
	e.indent--
	out.WriteString(e.line("END;"))
	return out.String(), nil
}

func (e *Emitter) emitExceptionBlock(handlers []ast.ExceptionHandler) (string, *diag.Failure) {
	var out strings.Builder
	out.WriteString(e.line("EXCEPTION"))
	for _, h := range handlers {
		names := make([]string, len(h.Names))
		for i, n := range h.Names {
			names[i] = strings.ToLower(n)
		}
		out.WriteString(e.line(fmt.Sprintf("WHEN %s THEN", strings.Join(names, " OR "))))
		e.indent++
		b, fail := e.emitStatements(h.Body)
		if fail != nil {
			return "", fail
		}
		out.WriteString(b)
		e.indent--
	}
	return out.String(), nil
}
