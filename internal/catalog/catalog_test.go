package catalog

import (
	"testing"

	"github.com/sayiza/orapgsync/internal/diag"
	"github.com/sayiza/orapgsync/internal/types"
)

func TestTableColumnsAndColumnType(t *testing.T) {
	idx := NewIndex()
	idx.AddTable("hr", "employees", []Column{
		{Name: "EMP_ID", Type: types.NumericD},
		{Name: "NAME", Type: types.TextD},
	})

	cols, ok, err := idx.TableColumns("hr", "employees")
	if err != nil || !ok || len(cols) != 2 {
		t.Fatalf("unexpected result: cols=%v ok=%v err=%v", cols, ok, err)
	}

	typ, ok, err := idx.ColumnType("hr", "EMPLOYEES", "name")
	if err != nil || !ok || typ.Tag != types.Text {
		t.Fatalf("case-insensitive column lookup failed: typ=%v ok=%v err=%v", typ, ok, err)
	}

	_, ok, err = idx.ColumnType("hr", "employees", "missing")
	if err != nil || ok {
		t.Fatalf("expected unknown column to report ok=false")
	}
}

func TestResolveSynonymDirect(t *testing.T) {
	idx := NewIndex()
	idx.AddTable("hr", "employees", []Column{{Name: "ID", Type: types.NumericD}})
	idx.AddSynonym("app", "emp", "hr", "employees")

	schema, name, err := idx.ResolveSynonym("app", "emp")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if schema != "hr" || name != "employees" {
		t.Errorf("got %s.%s, want hr.employees", schema, name)
	}
}

func TestResolveSynonymChain(t *testing.T) {
	idx := NewIndex()
	idx.AddTable("hr", "employees", []Column{{Name: "ID", Type: types.NumericD}})
	idx.AddSynonym("b", "x", "hr", "employees")
	idx.AddSynonym("a", "x", "b", "x")

	schema, name, err := idx.ResolveSynonym("a", "x")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if schema != "hr" || name != "employees" {
		t.Errorf("got %s.%s, want hr.employees", schema, name)
	}
}

func TestResolveSynonymCycleDetected(t *testing.T) {
	idx := NewIndex()
	idx.AddSynonym("a", "x", "b", "y")
	idx.AddSynonym("b", "y", "a", "x")

	_, _, err := idx.ResolveSynonym("a", "x")
	if err == nil {
		t.Fatalf("expected cycle error")
	}
	if err.Category != diag.ResolveCycle {
		t.Errorf("got category %v, want ResolveCycle", err.Category)
	}
}

func TestResolveSynonymIdempotentOnRepeatCalls(t *testing.T) {
	idx := NewIndex()
	idx.AddTable("hr", "employees", []Column{{Name: "ID", Type: types.NumericD}})
	idx.AddSynonym("app", "emp", "hr", "employees")

	s1, n1, _ := idx.ResolveSynonym("app", "emp")
	s2, n2, _ := idx.ResolveSynonym("app", "emp")
	if s1 != s2 || n1 != n2 {
		t.Errorf("ResolveSynonym is not idempotent across calls")
	}
}

func TestResolveOverloadByArity(t *testing.T) {
	sigs := []Signature{
		{Schema: "hr", Name: "calc", Params: []Param{{Name: "a", Type: types.NumericD}}, ReturnType: types.NumericD},
		{Schema: "hr", Name: "calc", Params: []Param{{Name: "a", Type: types.TextD}, {Name: "b", Type: types.TextD}}, ReturnType: types.TextD},
	}
	got, ok := ResolveOverload(sigs, []*types.Descriptor{types.TextD, types.TextD})
	if !ok {
		t.Fatalf("expected a match")
	}
	if got.ReturnType.Tag != types.Text {
		t.Errorf("got return type %v, want Text", got.ReturnType.Tag)
	}
}

func TestResolveOverloadNoArityMatch(t *testing.T) {
	sigs := []Signature{
		{Schema: "hr", Name: "calc", Params: []Param{{Name: "a", Type: types.NumericD}}},
	}
	_, ok := ResolveOverload(sigs, []*types.Descriptor{types.TextD, types.TextD})
	if ok {
		t.Errorf("expected no match for mismatched arity")
	}
}

func TestFunctionSignaturesResolvesSynonymFirst(t *testing.T) {
	idx := NewIndex()
	idx.AddSignature(Signature{Schema: "hr", Name: "calc_bonus", Params: []Param{{Name: "salary", Type: types.NumericD}}, ReturnType: types.NumericD})
	idx.AddSynonym("app", "bonus", "hr", "calc_bonus")

	sigs, err := idx.FunctionSignatures("app", "bonus")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(sigs) != 1 {
		t.Fatalf("got %d signatures, want 1", len(sigs))
	}
}
