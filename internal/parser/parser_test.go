package parser

import (
	"testing"

	"github.com/sayiza/orapgsync/internal/ast"
	"github.com/sayiza/orapgsync/internal/diag"
)

func mustParse(t *testing.T, src string) *ast.Unit {
	t.Helper()
	unit, fail := Parse(src)
	if fail != nil {
		t.Fatalf("unexpected parse failure: %v", fail)
	}
	return unit
}

func TestParseSimpleFunction(t *testing.T) {
	src := `CREATE OR REPLACE FUNCTION hr.get_salary(p_id IN NUMBER) RETURN NUMBER IS
  v_salary NUMBER;
BEGIN
  SELECT salary INTO v_salary FROM employees WHERE employee_id = p_id;
  RETURN v_salary;
END;`
	unit := mustParse(t, src)
	if unit.Function == nil {
		t.Fatalf("expected Function, got %+v", unit)
	}
	fn := unit.Function
	if fn.Name.String() != "hr.get_salary" {
		t.Errorf("got name %q", fn.Name.String())
	}
	if len(fn.Params) != 1 || fn.Params[0].Name != "p_id" {
		t.Errorf("got params %+v", fn.Params)
	}
	if fn.ReturnType.SimpleName != "NUMBER" {
		t.Errorf("got return type %+v", fn.ReturnType)
	}
	if len(fn.Decls) != 1 {
		t.Fatalf("expected 1 decl, got %d", len(fn.Decls))
	}
	if len(fn.Body) != 2 {
		t.Fatalf("expected 2 body statements, got %d", len(fn.Body))
	}
	sel, ok := fn.Body[0].(*ast.SelectIntoStatement)
	if !ok {
		t.Fatalf("expected SelectIntoStatement, got %T", fn.Body[0])
	}
	if len(sel.Into) != 1 {
		t.Errorf("expected 1 INTO target, got %d", len(sel.Into))
	}
	if _, ok := fn.Body[1].(*ast.ReturnStatement); !ok {
		t.Errorf("expected ReturnStatement, got %T", fn.Body[1])
	}
}

func TestParseProcedureWithExceptionHandler(t *testing.T) {
	src := `CREATE PROCEDURE hr.do_it(p_x IN OUT NUMBER) IS
BEGIN
  p_x := p_x + 1;
EXCEPTION
  WHEN NO_DATA_FOUND OR TOO_MANY_ROWS THEN
    p_x := 0;
  WHEN OTHERS THEN
    RAISE;
END;`
	unit := mustParse(t, src)
	pr := unit.Procedure
	if pr == nil {
		t.Fatalf("expected Procedure")
	}
	if pr.Params[0].Mode != ast.ModeInOut {
		t.Errorf("expected INOUT mode, got %v", pr.Params[0].Mode)
	}
	if len(pr.Exception) != 2 {
		t.Fatalf("expected 2 handlers, got %d", len(pr.Exception))
	}
	if len(pr.Exception[0].Names) != 2 {
		t.Errorf("expected 2 exception names in first handler, got %+v", pr.Exception[0].Names)
	}
	raise, ok := pr.Exception[1].Body[0].(*ast.RaiseStatement)
	if !ok || raise.Exception != "" {
		t.Errorf("expected bare RAISE, got %+v", pr.Exception[1].Body[0])
	}
}

func TestParseIfElsifElse(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  IF v_x > 0 THEN
    NULL;
  ELSIF v_x < 0 THEN
    NULL;
  ELSE
    NULL;
  END IF;
END;`
	unit := mustParse(t, src)
	ifs, ok := unit.Procedure.Body[0].(*ast.IfStatement)
	if !ok {
		t.Fatalf("expected IfStatement, got %T", unit.Procedure.Body[0])
	}
	if len(ifs.ElseIfs) != 1 {
		t.Fatalf("expected 1 elsif, got %d", len(ifs.ElseIfs))
	}
	if len(ifs.Else) != 1 {
		t.Fatalf("expected else body, got %d", len(ifs.Else))
	}
}

func TestParseCaseStatementSearched(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  CASE
    WHEN v_x = 1 THEN NULL;
    WHEN v_x = 2 THEN NULL;
    ELSE NULL;
  END CASE;
END;`
	unit := mustParse(t, src)
	cs, ok := unit.Procedure.Body[0].(*ast.CaseStatement)
	if !ok {
		t.Fatalf("expected CaseStatement, got %T", unit.Procedure.Body[0])
	}
	if cs.Selector != nil {
		t.Errorf("expected searched CASE (nil selector)")
	}
	if len(cs.Whens) != 2 {
		t.Fatalf("expected 2 whens, got %d", len(cs.Whens))
	}
}

func TestParseForNumericRange(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  FOR i IN REVERSE 1..10 LOOP
    NULL;
  END LOOP;
END;`
	unit := mustParse(t, src)
	loop, ok := unit.Procedure.Body[0].(*ast.LoopStatement)
	if !ok {
		t.Fatalf("expected LoopStatement, got %T", unit.Procedure.Body[0])
	}
	if loop.Kind != ast.LoopForRange {
		t.Fatalf("expected LoopForRange, got %v", loop.Kind)
	}
	if !loop.Reverse {
		t.Errorf("expected Reverse true")
	}
	if loop.Var != "i" {
		t.Errorf("expected loop var i, got %q", loop.Var)
	}
}

func TestParseForCursorLoopWithExplicitCursor(t *testing.T) {
	src := `CREATE PROCEDURE p IS
  CURSOR c_emp IS SELECT employee_id FROM employees;
BEGIN
  FOR r IN c_emp LOOP
    NULL;
  END LOOP;
END;`
	unit := mustParse(t, src)
	loop, ok := unit.Procedure.Body[0].(*ast.LoopStatement)
	if !ok {
		t.Fatalf("expected LoopStatement, got %T", unit.Procedure.Body[0])
	}
	if loop.Kind != ast.LoopForCursor {
		t.Fatalf("expected LoopForCursor, got %v", loop.Kind)
	}
	if loop.CursorName == nil || loop.CursorName.Last() != "c_emp" {
		t.Errorf("expected cursor name c_emp, got %+v", loop.CursorName)
	}
}

func TestParseForCursorLoopWithInlineQuery(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  FOR r IN (SELECT employee_id FROM employees WHERE department_id = 10) LOOP
    NULL;
  END LOOP;
END;`
	unit := mustParse(t, src)
	loop := unit.Procedure.Body[0].(*ast.LoopStatement)
	if loop.Kind != ast.LoopForCursor {
		t.Fatalf("expected LoopForCursor, got %v", loop.Kind)
	}
	if loop.CursorQuery == nil {
		t.Fatalf("expected inline CursorQuery")
	}
	if loop.CursorName != nil {
		t.Errorf("expected nil CursorName for inline query")
	}
}

func TestParseWhileLoop(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  WHILE v_x < 10 LOOP
    v_x := v_x + 1;
  END LOOP;
END;`
	unit := mustParse(t, src)
	loop := unit.Procedure.Body[0].(*ast.LoopStatement)
	if loop.Kind != ast.LoopWhile {
		t.Fatalf("expected LoopWhile, got %v", loop.Kind)
	}
	if loop.Cond == nil {
		t.Errorf("expected while condition")
	}
}

func TestParseExitWhen(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  LOOP
    EXIT WHEN v_x > 10;
  END LOOP;
END;`
	unit := mustParse(t, src)
	loop := unit.Procedure.Body[0].(*ast.LoopStatement)
	exit, ok := loop.Body[0].(*ast.ExitStatement)
	if !ok {
		t.Fatalf("expected ExitStatement, got %T", loop.Body[0])
	}
	if exit.When == nil {
		t.Errorf("expected EXIT WHEN condition")
	}
}

func TestParseCursorOpenFetchClose(t *testing.T) {
	src := `CREATE PROCEDURE p IS
  CURSOR c_emp(p_dept NUMBER) IS SELECT employee_id FROM employees WHERE department_id = p_dept;
  v_id NUMBER;
BEGIN
  OPEN c_emp(10);
  FETCH c_emp INTO v_id;
  CLOSE c_emp;
END;`
	unit := mustParse(t, src)
	if len(unit.Procedure.Decls) != 2 {
		t.Fatalf("expected 2 decls (cursor + var), got %d", len(unit.Procedure.Decls))
	}
	cur, ok := unit.Procedure.Decls[0].(*ast.CursorDecl)
	if !ok {
		t.Fatalf("expected CursorDecl, got %T", unit.Procedure.Decls[0])
	}
	if len(cur.Params) != 1 || cur.Params[0].Name != "p_dept" {
		t.Errorf("expected 1 cursor param p_dept, got %+v", cur.Params)
	}

	open, ok := unit.Procedure.Body[0].(*ast.OpenStatement)
	if !ok {
		t.Fatalf("expected OpenStatement, got %T", unit.Procedure.Body[0])
	}
	if open.Cursor.Last() != "c_emp" || len(open.Args) != 1 {
		t.Errorf("expected open c_emp(1 arg), got %+v", open)
	}

	fetch, ok := unit.Procedure.Body[1].(*ast.FetchStatement)
	if !ok {
		t.Fatalf("expected FetchStatement, got %T", unit.Procedure.Body[1])
	}
	if fetch.Cursor.Last() != "c_emp" || len(fetch.Into) != 1 {
		t.Errorf("expected fetch into 1 target, got %+v", fetch)
	}

	cls, ok := unit.Procedure.Body[2].(*ast.CloseStatement)
	if !ok || cls.Cursor.Last() != "c_emp" {
		t.Fatalf("expected CloseStatement for c_emp, got %+v", unit.Procedure.Body[2])
	}
}

func TestParseCallStatementWithInto(t *testing.T) {
	src := `CREATE PROCEDURE p IS
  v_result NUMBER;
BEGIN
  compute_total(p_id) INTO v_result;
  log_it(p_id);
END;`
	unit := mustParse(t, src)
	call, ok := unit.Procedure.Body[0].(*ast.CallStatement)
	if !ok {
		t.Fatalf("expected CallStatement, got %T", unit.Procedure.Body[0])
	}
	if call.Call.Name.Last() != "compute_total" || len(call.Into) != 1 {
		t.Errorf("got %+v", call)
	}
	call2, ok := unit.Procedure.Body[1].(*ast.CallStatement)
	if !ok || call2.Into != nil {
		t.Fatalf("expected bare CallStatement with no INTO, got %+v", unit.Procedure.Body[1])
	}
}

func TestParseAssignment(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  v_x := v_y + 1;
END;`
	unit := mustParse(t, src)
	assign, ok := unit.Procedure.Body[0].(*ast.AssignStatement)
	if !ok {
		t.Fatalf("expected AssignStatement, got %T", unit.Procedure.Body[0])
	}
	infix, ok := assign.Value.(*ast.InfixExpression)
	if !ok || infix.Operator != "+" {
		t.Fatalf("expected infix +, got %+v", assign.Value)
	}
}

func TestParseExpressionPrecedence(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  v_x := 1 + 2 * 3;
END;`
	unit := mustParse(t, src)
	assign := unit.Procedure.Body[0].(*ast.AssignStatement)
	top, ok := assign.Value.(*ast.InfixExpression)
	if !ok || top.Operator != "+" {
		t.Fatalf("expected top-level +, got %+v", assign.Value)
	}
	right, ok := top.Right.(*ast.InfixExpression)
	if !ok || right.Operator != "*" {
		t.Fatalf("expected * nested on the right of +, got %+v", top.Right)
	}
}

func TestParseLeftAssociativeSubtraction(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  v_x := 10 - 3 - 2;
END;`
	unit := mustParse(t, src)
	assign := unit.Procedure.Body[0].(*ast.AssignStatement)
	top, ok := assign.Value.(*ast.InfixExpression)
	if !ok || top.Operator != "-" {
		t.Fatalf("expected top-level -, got %+v", assign.Value)
	}
	left, ok := top.Left.(*ast.InfixExpression)
	if !ok || left.Operator != "-" {
		t.Fatalf("expected (10-3) grouped on the left, got %+v", top.Left)
	}
}

func TestParseBetweenAndInAndLike(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  IF v_x BETWEEN 1 AND 10 THEN NULL; END IF;
  IF v_y NOT IN (1, 2, 3) THEN NULL; END IF;
  IF v_name LIKE 'A%' ESCAPE '\' THEN NULL; END IF;
  IF v_name IS NOT NULL THEN NULL; END IF;
END;`
	unit := mustParse(t, src)
	body := unit.Procedure.Body

	if1 := body[0].(*ast.IfStatement)
	if _, ok := if1.Cond.(*ast.BetweenExpression); !ok {
		t.Errorf("expected BetweenExpression, got %T", if1.Cond)
	}

	if2 := body[1].(*ast.IfStatement)
	inExpr, ok := if2.Cond.(*ast.InExpression)
	if !ok || !inExpr.Not || len(inExpr.List) != 3 {
		t.Errorf("expected NOT IN with 3-item list, got %+v", if2.Cond)
	}

	if3 := body[2].(*ast.IfStatement)
	like, ok := if3.Cond.(*ast.LikeExpression)
	if !ok || like.Escape == nil {
		t.Errorf("expected LikeExpression with ESCAPE, got %+v", if3.Cond)
	}

	if4 := body[3].(*ast.IfStatement)
	isNull, ok := if4.Cond.(*ast.IsNullExpression)
	if !ok || !isNull.Not {
		t.Errorf("expected IS NOT NULL, got %+v", if4.Cond)
	}
}

func TestParseInSubquery(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  IF v_id IN (SELECT employee_id FROM employees) THEN NULL; END IF;
END;`
	unit := mustParse(t, src)
	ifs := unit.Procedure.Body[0].(*ast.IfStatement)
	inExpr, ok := ifs.Cond.(*ast.InExpression)
	if !ok || inExpr.Sub == nil {
		t.Fatalf("expected IN (subquery), got %+v", ifs.Cond)
	}
}

func TestParseExistsExpression(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  IF EXISTS (SELECT 1 FROM dual) THEN NULL; END IF;
END;`
	unit := mustParse(t, src)
	ifs := unit.Procedure.Body[0].(*ast.IfStatement)
	ex, ok := ifs.Cond.(*ast.ExistsExpression)
	if !ok || ex.Select == nil {
		t.Fatalf("expected ExistsExpression, got %+v", ifs.Cond)
	}
}

func TestParseCaseExpressionAsAtom(t *testing.T) {
	src := `CREATE PROCEDURE p IS
  v_label VARCHAR2(10);
BEGIN
  v_label := CASE WHEN v_x > 0 THEN 'POS' WHEN v_x < 0 THEN 'NEG' ELSE 'ZERO' END;
END;`
	unit := mustParse(t, src)
	assign := unit.Procedure.Body[0].(*ast.AssignStatement)
	caseExpr, ok := assign.Value.(*ast.CaseExprNode)
	if !ok {
		t.Fatalf("expected CaseExprNode, got %T", assign.Value)
	}
	if len(caseExpr.Whens) != 2 || caseExpr.Else == nil {
		t.Errorf("expected 2 whens + else, got %+v", caseExpr)
	}
}

func TestParseInlineRecordTypeDecl(t *testing.T) {
	src := `CREATE PROCEDURE p IS
  TYPE emp_rec IS RECORD (id NUMBER, name VARCHAR2(100));
  v_emp emp_rec;
BEGIN
  NULL;
END;`
	unit := mustParse(t, src)
	td, ok := unit.Procedure.Decls[0].(*ast.TypeDecl)
	if !ok {
		t.Fatalf("expected TypeDecl, got %T", unit.Procedure.Decls[0])
	}
	if td.Inline == nil || td.Inline.Kind != ast.InlineRecord || len(td.Inline.Fields) != 2 {
		t.Fatalf("expected inline record with 2 fields, got %+v", td.Inline)
	}
}

func TestParseTableOfAndVarray(t *testing.T) {
	src := `CREATE PROCEDURE p IS
  TYPE id_list IS TABLE OF NUMBER INDEX BY PLS_INTEGER;
  TYPE name_arr IS VARRAY(10) OF VARCHAR2(50);
BEGIN
  NULL;
END;`
	unit := mustParse(t, src)
	t1 := unit.Procedure.Decls[0].(*ast.TypeDecl)
	if t1.Inline.Kind != ast.InlineTableOf || t1.Inline.IndexBy != "PLS_INTEGER" {
		t.Errorf("expected TABLE OF ... INDEX BY PLS_INTEGER, got %+v", t1.Inline)
	}
	t2 := unit.Procedure.Decls[1].(*ast.TypeDecl)
	if t2.Inline.Kind != ast.InlineVarray || t2.Inline.Bound != 10 {
		t.Errorf("expected VARRAY(10), got %+v", t2.Inline)
	}
}

func TestParsePercentTypeAndRowType(t *testing.T) {
	src := `CREATE PROCEDURE p IS
  v_sal employees.salary%TYPE;
  v_row employees%ROWTYPE;
BEGIN
  NULL;
END;`
	unit := mustParse(t, src)
	v1 := unit.Procedure.Decls[0].(*ast.VarDecl)
	if !v1.Type.PercentType || v1.Type.AnchorName.String() != "employees.salary" {
		t.Errorf("expected %%TYPE anchor, got %+v", v1.Type)
	}
	v2 := unit.Procedure.Decls[1].(*ast.VarDecl)
	if !v2.Type.PercentRowType || v2.Type.AnchorName.String() != "employees" {
		t.Errorf("expected %%ROWTYPE anchor, got %+v", v2.Type)
	}
}

func TestParsePackageSpecAndBody(t *testing.T) {
	specSrc := `CREATE PACKAGE hr.payroll IS
  g_rate NUMBER;
  FUNCTION compute(p_id NUMBER) RETURN NUMBER;
  PROCEDURE apply(p_id NUMBER);
END;`
	unit := mustParse(t, specSrc)
	if unit.Package == nil {
		t.Fatalf("expected Package")
	}
	if len(unit.Package.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(unit.Package.Members))
	}

	bodySrc := `CREATE PACKAGE BODY hr.payroll IS
  FUNCTION compute(p_id NUMBER) RETURN NUMBER IS
  BEGIN
    RETURN p_id;
  END;
  PROCEDURE apply(p_id NUMBER) IS
  BEGIN
    NULL;
  END;
END;`
	bodyUnit := mustParse(t, bodySrc)
	if bodyUnit.PackageBody == nil {
		t.Fatalf("expected PackageBody")
	}
	if len(bodyUnit.PackageBody.Members) != 2 {
		t.Fatalf("expected 2 members, got %d", len(bodyUnit.PackageBody.Members))
	}
}

func TestParseExecuteImmediate(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  EXECUTE IMMEDIATE 'TRUNCATE TABLE staging';
END;`
	unit := mustParse(t, src)
	ei, ok := unit.Procedure.Body[0].(*ast.ExecuteImmediateStatement)
	if !ok {
		t.Fatalf("expected ExecuteImmediateStatement, got %T", unit.Procedure.Body[0])
	}
	lit, ok := ei.SQL.(*ast.StringLiteral)
	if !ok || lit.Value != "TRUNCATE TABLE staging" {
		t.Errorf("got %+v", ei.SQL)
	}
}

func TestParseDMLPassthrough(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  INSERT INTO employees (id, name) VALUES (1, 'Ann');
  UPDATE employees SET salary = salary * 1.1 WHERE id = 1;
  DELETE FROM employees WHERE id = 1;
END;`
	unit := mustParse(t, src)
	ins := unit.Procedure.Body[0].(*ast.DMLStatement)
	if ins.Kind != ast.DMLInsert {
		t.Errorf("expected DMLInsert, got %v", ins.Kind)
	}
	upd := unit.Procedure.Body[1].(*ast.DMLStatement)
	if upd.Kind != ast.DMLUpdate {
		t.Errorf("expected DMLUpdate, got %v", upd.Kind)
	}
	del := unit.Procedure.Body[2].(*ast.DMLStatement)
	if del.Kind != ast.DMLDelete {
		t.Errorf("expected DMLDelete, got %v", del.Kind)
	}
}

func TestParseNestedBlock(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  DECLARE
    v_inner NUMBER;
  BEGIN
    v_inner := 1;
  END;
END;`
	unit := mustParse(t, src)
	blk, ok := unit.Procedure.Body[0].(*ast.BlockStatement)
	if !ok {
		t.Fatalf("expected BlockStatement, got %T", unit.Procedure.Body[0])
	}
	if len(blk.Decls) != 1 || len(blk.Body) != 1 {
		t.Errorf("expected 1 decl + 1 body statement, got %+v", blk)
	}
}

func TestParseNamedParameterCallIsUnsupported(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  compute_total(p_id => 1);
END;`
	_, fail := Parse(src)
	if fail == nil || fail.Category != diag.UnsupportedSyntax {
		t.Fatalf("expected UNSUPPORTED_SYNTAX, got %v", fail)
	}
}

func TestParseChainedMethodCallIsUnsupported(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  v_x := obj.m1().m2();
END;`
	_, fail := Parse(src)
	if fail == nil || fail.Category != diag.UnsupportedSyntax {
		t.Fatalf("expected UNSUPPORTED_SYNTAX, got %v", fail)
	}
}

func TestParseDbLinkIsUnsupported(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  v_x := remote_tab@remote_db;
END;`
	_, fail := Parse(src)
	if fail == nil || fail.Category != diag.UnsupportedSyntax {
		t.Fatalf("expected UNSUPPORTED_SYNTAX, got %v", fail)
	}
}

func TestParseSyntaxErrorReportsParseError(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  v_x :=;
END;`
	_, fail := Parse(src)
	if fail == nil || fail.Category != diag.ParseError {
		t.Fatalf("expected PARSE_ERROR, got %v", fail)
	}
}

func TestParseQualifiedIdentifier(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  v_x := v_emp.salary;
  v_y := pkg.g_rate;
END;`
	unit := mustParse(t, src)
	a1 := unit.Procedure.Body[0].(*ast.AssignStatement)
	qi1, ok := a1.Value.(*ast.QualifiedIdentifier)
	if !ok || qi1.Qualifier != "v_emp" || qi1.Member != "salary" {
		t.Errorf("expected QualifiedIdentifier v_emp.salary, got %+v", a1.Value)
	}
	a2 := unit.Procedure.Body[1].(*ast.AssignStatement)
	qi2, ok := a2.Value.(*ast.QualifiedIdentifier)
	if !ok || qi2.Qualifier != "pkg" || qi2.Member != "g_rate" {
		t.Errorf("expected QualifiedIdentifier pkg.g_rate, got %+v", a2.Value)
	}
}

func TestParseNestedFieldAccess(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  v_x := v_emp.address.city;
END;`
	unit := mustParse(t, src)
	a1 := unit.Procedure.Body[0].(*ast.AssignStatement)
	fa, ok := a1.Value.(*ast.FieldAccessExpr)
	if !ok || fa.Field != "city" {
		t.Fatalf("expected FieldAccessExpr .city, got %+v", a1.Value)
	}
	inner, ok := fa.Target.(*ast.QualifiedIdentifier)
	if !ok || inner.Qualifier != "v_emp" || inner.Member != "address" {
		t.Errorf("expected QualifiedIdentifier v_emp.address as target, got %+v", fa.Target)
	}
}

func TestParseDateAndTimestampLiterals(t *testing.T) {
	src := `CREATE PROCEDURE p IS
BEGIN
  v_d := DATE '2024-01-01';
  v_t := TIMESTAMP '2024-01-01 10:00:00';
END;`
	unit := mustParse(t, src)
	a1 := unit.Procedure.Body[0].(*ast.AssignStatement)
	d, ok := a1.Value.(*ast.DateLiteral)
	if !ok || d.Timestamp {
		t.Errorf("expected DATE literal, got %+v", a1.Value)
	}
	a2 := unit.Procedure.Body[1].(*ast.AssignStatement)
	ts, ok := a2.Value.(*ast.DateLiteral)
	if !ok || !ts.Timestamp {
		t.Errorf("expected TIMESTAMP literal, got %+v", a2.Value)
	}
}
