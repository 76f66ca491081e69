package analyzer

import (
	"testing"

	"github.com/sayiza/orapgsync/internal/ast"
	"github.com/sayiza/orapgsync/internal/catalog"
	"github.com/sayiza/orapgsync/internal/parser"
	"github.com/sayiza/orapgsync/internal/pkgstate"
	"github.com/sayiza/orapgsync/internal/scope"
	"github.com/sayiza/orapgsync/internal/types"
)

func mustParse(t *testing.T, src string) *ast.Unit {
	t.Helper()
	unit, fail := parser.Parse(src)
	if fail != nil {
		t.Fatalf("unexpected parse failure: %v", fail)
	}
	return unit
}

func newAnalyzer(idx *catalog.Index) *Analyzer {
	if idx == nil {
		idx = catalog.NewIndex()
	}
	return New(idx, scope.New(pkgstate.NewStore()))
}

func TestLiteralTyping(t *testing.T) {
	u := mustParse(t, `CREATE OR REPLACE FUNCTION hr.f RETURN NUMBER IS
v_n NUMBER; v_s VARCHAR2(10); v_d DATE; v_ts TIMESTAMP;
BEGIN
  v_n := 1;
  v_s := 'hi';
  v_d := DATE '2024-01-01';
  v_ts := TIMESTAMP '2024-01-01 10:00:00';
  v_n := NULL;
  RETURN v_n;
END;`)
	a := newAnalyzer(nil)
	a.AnalyzeFunction(u.Function)

	assigns := u.Function.Body[:5]
	wants := []types.Tag{types.Numeric, types.Text, types.Date, types.Timestamp, types.Null}
	for i, s := range assigns {
		as := s.(*ast.AssignStatement)
		got := a.Cache().TypeOf(as.Value)
		if got.Tag != wants[i] {
			t.Errorf("assign %d: got %v want %v", i, got.Tag, wants[i])
		}
	}
}

func TestArithmeticDateAndNumeric(t *testing.T) {
	u := mustParse(t, `CREATE OR REPLACE FUNCTION hr.f RETURN NUMBER IS
v_d DATE; v_n NUMBER; v_r DATE;
BEGIN
  v_r := v_d + 1;
  RETURN v_n;
END;`)
	a := newAnalyzer(nil)
	a.AnalyzeFunction(u.Function)

	assign := u.Function.Body[0].(*ast.AssignStatement)
	got := a.Cache().TypeOf(assign.Value)
	if got.Tag != types.Date {
		t.Errorf("DATE + 1 = %v, want DATE", got.Tag)
	}
}

func TestPseudoColumns(t *testing.T) {
	u := mustParse(t, `CREATE OR REPLACE FUNCTION hr.f RETURN DATE IS
v_d DATE;
BEGIN
  v_d := SYSDATE;
  RETURN v_d;
END;`)
	a := newAnalyzer(nil)
	a.AnalyzeFunction(u.Function)

	assign := u.Function.Body[0].(*ast.AssignStatement)
	got := a.Cache().TypeOf(assign.Value)
	if got.Tag != types.Date {
		t.Errorf("SYSDATE = %v, want DATE", got.Tag)
	}
}

func TestBuiltinRoundReturnsFirstArgType(t *testing.T) {
	u := mustParse(t, `CREATE OR REPLACE FUNCTION hr.f RETURN NUMBER IS
v_n NUMBER;
BEGIN
  v_n := ROUND(v_n, 2);
  RETURN v_n;
END;`)
	a := newAnalyzer(nil)
	a.AnalyzeFunction(u.Function)

	assign := u.Function.Body[0].(*ast.AssignStatement)
	got := a.Cache().TypeOf(assign.Value)
	if got.Tag != types.Numeric {
		t.Errorf("ROUND(v_n,2) = %v, want NUMERIC", got.Tag)
	}
}

func TestBuiltinNvlHighestPrecedence(t *testing.T) {
	u := mustParse(t, `CREATE OR REPLACE FUNCTION hr.f RETURN DATE IS
v_d DATE; v_n NUMBER; v_r DATE;
BEGIN
  v_r := NVL(v_n, v_d);
  RETURN v_r;
END;`)
	a := newAnalyzer(nil)
	a.AnalyzeFunction(u.Function)

	assign := u.Function.Body[0].(*ast.AssignStatement)
	got := a.Cache().TypeOf(assign.Value)
	if got.Tag != types.Date {
		t.Errorf("NVL(NUMBER,DATE) = %v, want DATE (higher precedence)", got.Tag)
	}
}

func TestBuiltinDecodeOddEvenPositions(t *testing.T) {
	u := mustParse(t, `CREATE OR REPLACE FUNCTION hr.f RETURN VARCHAR2 IS
v_n NUMBER; v_r VARCHAR2(10);
BEGIN
  v_r := DECODE(v_n, 1, 'one', 2, 'two', 'other');
  RETURN v_r;
END;`)
	a := newAnalyzer(nil)
	a.AnalyzeFunction(u.Function)

	assign := u.Function.Body[0].(*ast.AssignStatement)
	got := a.Cache().TypeOf(assign.Value)
	if got.Tag != types.Text {
		t.Errorf("DECODE(...) = %v, want TEXT", got.Tag)
	}
}

func TestCaseExpressionBranchUnification(t *testing.T) {
	u := mustParse(t, `CREATE OR REPLACE FUNCTION hr.f RETURN NUMBER IS
v_flag NUMBER; v_r DATE;
BEGIN
  v_r := CASE WHEN v_flag = 1 THEN SYSDATE ELSE NULL END;
  RETURN v_flag;
END;`)
	a := newAnalyzer(nil)
	a.AnalyzeFunction(u.Function)

	assign := u.Function.Body[0].(*ast.AssignStatement)
	got := a.Cache().TypeOf(assign.Value)
	if got.Tag != types.Date {
		t.Errorf("CASE(DATE, NULL) = %v, want DATE", got.Tag)
	}
}

func TestColumnResolutionAcrossQueryScope(t *testing.T) {
	idx := catalog.NewIndex()
	idx.AddTable("hr", "employees", []catalog.Column{
		{Name: "EMP_ID", Type: types.NumericD},
		{Name: "HIRE_DATE", Type: types.DateD},
	})

	u := mustParse(t, `CREATE OR REPLACE PROCEDURE hr.p IS
v_d DATE;
BEGIN
  SELECT hire_date INTO v_d FROM employees e WHERE e.emp_id = 1;
END;`)
	a := newAnalyzer(idx)
	a.AnalyzeProcedure(u.Procedure)

	sel := u.Procedure.Body[0].(*ast.SelectIntoStatement).Select
	col := sel.Columns[0].Expression
	got := a.Cache().TypeOf(col)
	if got.Tag != types.Date {
		t.Errorf("hire_date column = %v, want DATE", got.Tag)
	}
}

func TestQualifiedAliasColumn(t *testing.T) {
	idx := catalog.NewIndex()
	idx.AddTable("hr", "employees", []catalog.Column{
		{Name: "EMP_ID", Type: types.NumericD},
	})

	u := mustParse(t, `CREATE OR REPLACE PROCEDURE hr.p IS
v_id NUMBER;
BEGIN
  SELECT e.emp_id INTO v_id FROM employees e;
END;`)
	a := newAnalyzer(idx)
	a.AnalyzeProcedure(u.Procedure)

	sel := u.Procedure.Body[0].(*ast.SelectIntoStatement).Select
	got := a.Cache().TypeOf(sel.Columns[0].Expression)
	if got.Tag != types.Numeric {
		t.Errorf("e.emp_id = %v, want NUMERIC", got.Tag)
	}
}

func TestScalarSubqueryBubblesColumnType(t *testing.T) {
	idx := catalog.NewIndex()
	idx.AddTable("hr", "employees", []catalog.Column{
		{Name: "SALARY", Type: types.NumericD},
	})

	u := mustParse(t, `CREATE OR REPLACE FUNCTION hr.f RETURN NUMBER IS
v_n NUMBER;
BEGIN
  v_n := (SELECT salary FROM employees WHERE emp_id = 1);
  RETURN v_n;
END;`)
	a := newAnalyzer(idx)
	a.AnalyzeFunction(u.Function)

	assign := u.Function.Body[0].(*ast.AssignStatement)
	got := a.Cache().TypeOf(assign.Value)
	if got.Tag != types.Numeric {
		t.Errorf("scalar subquery = %v, want NUMERIC (bubbled from salary column)", got.Tag)
	}
}

func TestCollectionElementAccessVsFunctionCall(t *testing.T) {
	u := mustParse(t, `CREATE OR REPLACE FUNCTION hr.f RETURN NUMBER IS
TYPE t_tab IS TABLE OF NUMBER INDEX BY PLS_INTEGER;
v_tab t_tab;
v_r NUMBER;
BEGIN
  v_r := v_tab(1);
  v_r := ROUND(1.5);
  RETURN v_r;
END;`)
	a := newAnalyzer(nil)
	a.AnalyzeFunction(u.Function)

	collAccess := u.Function.Body[0].(*ast.AssignStatement).Value
	if got := a.Cache().TypeOf(collAccess); got.Tag != types.Numeric {
		t.Errorf("v_tab(1) element type = %v, want NUMERIC", got.Tag)
	}

	funcCall := u.Function.Body[1].(*ast.AssignStatement).Value
	if got := a.Cache().TypeOf(funcCall); got.Tag != types.Numeric {
		t.Errorf("ROUND(1.5) = %v, want NUMERIC", got.Tag)
	}
}

func TestAmbiguousColumnLenientDefaultsToUnknown(t *testing.T) {
	idx := catalog.NewIndex()
	idx.AddTable("hr", "a", []catalog.Column{{Name: "ID", Type: types.NumericD}})
	idx.AddTable("hr", "b", []catalog.Column{{Name: "ID", Type: types.NumericD}})

	u := mustParse(t, `CREATE OR REPLACE PROCEDURE hr.p IS
v_id NUMBER;
BEGIN
  SELECT id INTO v_id FROM a, b;
END;`)
	a := newAnalyzer(idx)
	a.AnalyzeProcedure(u.Procedure)

	sel := u.Procedure.Body[0].(*ast.SelectIntoStatement).Select
	got := a.Cache().TypeOf(sel.Columns[0].Expression)
	if got.Tag != types.Unknown {
		t.Errorf("ambiguous column in lenient mode = %v, want UNKNOWN", got.Tag)
	}
	for _, f := range a.Failures() {
		if f.Category == "TYPE_CONFLICT" {
			t.Errorf("lenient mode should not record a TYPE_CONFLICT failure")
		}
	}
}

func TestAmbiguousColumnStrictModeRecordsFailure(t *testing.T) {
	idx := catalog.NewIndex()
	idx.AddTable("hr", "a", []catalog.Column{{Name: "ID", Type: types.NumericD}})
	idx.AddTable("hr", "b", []catalog.Column{{Name: "ID", Type: types.NumericD}})

	u := mustParse(t, `CREATE OR REPLACE PROCEDURE hr.p IS
v_id NUMBER;
BEGIN
  SELECT id INTO v_id FROM a, b;
END;`)
	a := newAnalyzer(idx)
	a.SetStrict(true)
	a.AnalyzeProcedure(u.Procedure)

	found := false
	for _, f := range a.Failures() {
		if f.Category == "TYPE_CONFLICT" {
			found = true
		}
	}
	if !found {
		t.Errorf("strict mode should record a TYPE_CONFLICT failure for an ambiguous column")
	}
}

func TestRowTypeBuildsRecordFromTableColumns(t *testing.T) {
	idx := catalog.NewIndex()
	idx.AddTable("hr", "employees", []catalog.Column{
		{Name: "EMP_ID", Type: types.NumericD},
		{Name: "NAME", Type: types.TextD},
	})

	u := mustParse(t, `CREATE OR REPLACE PROCEDURE hr.p IS
v_row employees%ROWTYPE;
BEGIN
  NULL;
END;`)
	a := newAnalyzer(idx)
	a.AnalyzeProcedure(u.Procedure)

	typ, ok := a.LookupVar("v_row")
	if !ok {
		t.Fatalf("expected v_row to be declared")
	}
	if typ.Tag != types.Record || len(typ.Fields) != 2 {
		t.Fatalf("v_row%%ROWTYPE = %+v, want a 2-field Record", typ)
	}
}

func TestPackageVariableCrossReference(t *testing.T) {
	store := pkgstate.NewStore()
	idx := catalog.NewIndex()

	specSrc := `CREATE OR REPLACE PACKAGE hr.payroll AS
g_rate NUMBER;
END payroll;`
	specUnit := mustParse(t, specSrc)
	specAnalyzer := New(idx, scope.New(store))
	specAnalyzer.AnalyzePackage(specUnit.Package)

	bodySrc := `CREATE OR REPLACE PACKAGE BODY hr.payroll AS
FUNCTION get_rate RETURN NUMBER IS
v_r NUMBER;
BEGIN
  v_r := payroll.g_rate;
  RETURN v_r;
END;
END payroll;`
	bodyUnit := mustParse(t, bodySrc)
	bodyAnalyzer := New(idx, scope.New(store))
	bodyAnalyzer.AnalyzePackageBody(bodyUnit.PackageBody)

	member := bodyUnit.PackageBody.Members[0].Function
	assign := member.Body[0].(*ast.AssignStatement)
	got := bodyAnalyzer.Cache().TypeOf(assign.Value)
	if got.Tag != types.Numeric {
		t.Errorf("payroll.g_rate = %v, want NUMERIC", got.Tag)
	}
}

func TestCacheDeterminismAcrossRepeatedRuns(t *testing.T) {
	src := `CREATE OR REPLACE FUNCTION hr.f RETURN NUMBER IS
v_n NUMBER;
BEGIN
  v_n := 1 + 2 * 3;
  RETURN v_n;
END;`
	var lens []int
	for i := 0; i < 3; i++ {
		u := mustParse(t, src)
		a := newAnalyzer(nil)
		a.AnalyzeFunction(u.Function)
		lens = append(lens, a.Cache().Len())
	}
	for i := 1; i < len(lens); i++ {
		if lens[i] != lens[0] {
			t.Errorf("cache population is non-deterministic across runs: %v", lens)
		}
	}
}

func TestUnknownNameDegradesRatherThanPanics(t *testing.T) {
	u := mustParse(t, `CREATE OR REPLACE FUNCTION hr.f RETURN NUMBER IS
v_r NUMBER;
BEGIN
  v_r := totally_unknown_name;
  RETURN v_r;
END;`)
	a := newAnalyzer(nil)
	a.AnalyzeFunction(u.Function)

	assign := u.Function.Body[0].(*ast.AssignStatement)
	got := a.Cache().TypeOf(assign.Value)
	if got.Tag != types.Unknown {
		t.Errorf("unresolved identifier = %v, want UNKNOWN", got.Tag)
	}
	if len(a.Failures()) == 0 {
		t.Errorf("expected at least one recorded UNKNOWN_NAME failure")
	}
}
