// Package scope implements the Symbol/Scope Engine: a stack of variable
// scopes, a parallel stack of query scopes for table alias resolution,
// and package-variable registration, with name resolution following a
// fixed order — no heuristic identifier classification is ever performed.
//
// Grounded on ha1tch-tgpiler/transpiler/symbols.go's symbolTable, which
// chains a block's locals to its parent via an explicit Parent pointer;
// this package generalises that single chain into the two independent
// stacks (variable scope, query scope), plus the
// package-variable registry backed by internal/pkgstate.
package scope

import (
	"strings"

	"github.com/sayiza/orapgsync/internal/diag"
	"github.com/sayiza/orapgsync/internal/pkgstate"
	"github.com/sayiza/orapgsync/internal/types"
)

func lowerKey(s string) string { return strings.ToLower(s) }

// varFrame is one variable-scope frame: a flat map of locally declared
// names to their types.
type varFrame struct {
	vars map[string]*types.Descriptor
}

// queryFrame is one query-scope frame: table aliases visible within one
// SELECT/DML statement. order preserves registration order so
// frame-local ambiguity checks are deterministic run to run, rather than
// depending on Go's randomized map iteration.
type queryFrame struct {
	aliases map[string]aliasTarget
	order   []string
}

type aliasTarget struct {
	Schema string
	Table  string
}

// Engine is the Symbol/Scope Engine for one translation unit. It is not
// safe for concurrent use; each unit gets its own Engine instance.
type Engine struct {
	varStack   []*varFrame
	queryStack []*queryFrame
	store      *pkgstate.Store
	pkg        *pkgstate.Package // nil outside a package context
}

// New creates a Scope Engine backed by store. store may be nil for
// translation units that never reference a package (plain
// functions/procedures).
func New(store *pkgstate.Store) *Engine {
	return &Engine{store: store}
}

// PushVarScope opens a new, empty variable scope nested inside the
// current one.
func (e *Engine) PushVarScope() {
	e.varStack = append(e.varStack, &varFrame{vars: make(map[string]*types.Descriptor)})
}

// PopVarScope closes the innermost variable scope. Popping past the
// bottom of the stack is a programming error; the caller is expected to
// never do this, so this panics rather than return an error, treating
// stack-discipline bugs as fatal.
func (e *Engine) PopVarScope() {
	if len(e.varStack) == 0 {
		panic("scope: PopVarScope on empty variable scope stack")
	}
	e.varStack = e.varStack[:len(e.varStack)-1]
}

// Declare registers name in the innermost variable scope. Returns a
// DUP_DECL failure if name is already declared in that same scope
// (shadowing an outer scope is allowed; redeclaring within one scope is
// not).
func (e *Engine) Declare(name string, t *types.Descriptor) *diag.Failure {
	if len(e.varStack) == 0 {
		panic("scope: Declare with no open variable scope")
	}
	top := e.varStack[len(e.varStack)-1]
	k := lowerKey(name)
	if _, exists := top.vars[k]; exists {
		return diag.New(diag.DupDecl, "%s is already declared in this scope", name)
	}
	top.vars[k] = t
	return nil
}

// LookupVar resolves name against the variable scope stack, innermost
// first. ok is false if name is not a local variable at any open scope.
func (e *Engine) LookupVar(name string) (*types.Descriptor, bool) {
	k := lowerKey(name)
	for i := len(e.varStack) - 1; i >= 0; i-- {
		if t, ok := e.varStack[i].vars[k]; ok {
			return t, true
		}
	}
	return nil, false
}

// PushQueryScope opens a new query scope for one SELECT/DML statement.
func (e *Engine) PushQueryScope() {
	e.queryStack = append(e.queryStack, &queryFrame{aliases: make(map[string]aliasTarget)})
}

// VisibleTable is one table visible through a registered alias.
type VisibleTable struct {
	Schema string
	Table  string
}

// VisibleTablesByFrame returns the tables visible at each open query frame,
// innermost frame first and aliases within a frame in registration order.
// internal/analyzer uses this to implement its unqualified
// column resolution: first hit wins across frames, ambiguity is only
// checked among tables registered within the same frame.
func (e *Engine) VisibleTablesByFrame() [][]VisibleTable {
	out := make([][]VisibleTable, 0, len(e.queryStack))
	for i := len(e.queryStack) - 1; i >= 0; i-- {
		f := e.queryStack[i]
		frame := make([]VisibleTable, 0, len(f.order))
		for _, k := range f.order {
			t := f.aliases[k]
			frame = append(frame, VisibleTable{Schema: t.Schema, Table: t.Table})
		}
		out = append(out, frame)
	}
	return out
}

// PopQueryScope closes the innermost query scope.
func (e *Engine) PopQueryScope() {
	if len(e.queryStack) == 0 {
		panic("scope: PopQueryScope on empty query scope stack")
	}
	e.queryStack = e.queryStack[:len(e.queryStack)-1]
}

// RegisterTableAlias records that alias refers to schema.table within the
// innermost query scope.
func (e *Engine) RegisterTableAlias(alias, schema, table string) {
	if len(e.queryStack) == 0 {
		panic("scope: RegisterTableAlias with no open query scope")
	}
	top := e.queryStack[len(e.queryStack)-1]
	k := lowerKey(alias)
	if _, exists := top.aliases[k]; !exists {
		top.order = append(top.order, k)
	}
	top.aliases[k] = aliasTarget{Schema: schema, Table: table}
}

// ResolveAlias resolves a table alias against the query scope stack,
// innermost first, so nested correlated subqueries still see outer aliases.
func (e *Engine) ResolveAlias(alias string) (schema, table string, ok bool) {
	k := lowerKey(alias)
	for i := len(e.queryStack) - 1; i >= 0; i-- {
		if t, found := e.queryStack[i].aliases[k]; found {
			return t.Schema, t.Table, true
		}
	}
	return "", "", false
}

// EnterPackage sets the package context for subsequent
// IsPackageVariable/RegisterPackageVariable calls, used while translating
// a package body whose members may reference package-level state.
func (e *Engine) EnterPackage(schema, name string) {
	if e.store == nil {
		return
	}
	e.pkg = e.store.GetOrCreate(schema, name)
}

// LeavePackage clears the current package context.
func (e *Engine) LeavePackage() {
	e.pkg = nil
}

// RegisterPackageVariable declares a package-level variable on the
// current package context. Returns a DUP_DECL failure on redeclaration.
func (e *Engine) RegisterPackageVariable(name string, t *types.Descriptor) *diag.Failure {
	if e.pkg == nil {
		panic("scope: RegisterPackageVariable with no active package context")
	}
	if !e.pkg.AddVariable(name, t) {
		return diag.New(diag.DupDecl, "%s is already declared as a package variable", name)
	}
	return nil
}

// IsPackageVariable reports whether name is a registered variable of the
// current package context.
func (e *Engine) IsPackageVariable(name string) bool {
	if e.pkg == nil {
		return false
	}
	return e.pkg.HasVariable(name)
}

// PackageVariableType returns the declared type of a package-level
// variable in the current package context.
func (e *Engine) PackageVariableType(name string) (*types.Descriptor, bool) {
	if e.pkg == nil {
		return nil, false
	}
	return e.pkg.VariableType(name)
}

// CurrentPackage returns the active package context record, or nil
// outside a package body.
func (e *Engine) CurrentPackage() *pkgstate.Package {
	return e.pkg
}

// LookupPackageVariable resolves schema.pkg.varName against the Package
// Context Store directly, for qualified references to another package's
// public variable. Returns ok=false if store is nil or the
// package/variable has not been registered.
func (e *Engine) LookupPackageVariable(schema, pkg, varName string) (*types.Descriptor, bool) {
	if e.store == nil {
		return nil, false
	}
	p, ok := e.store.Lookup(schema, pkg)
	if !ok {
		return nil, false
	}
	return p.VariableType(varName)
}

// Resolve implements the fixed name-resolution order:
// (1) innermost-first local variable scopes, (2) current package's
// package-level variables, (3) otherwise unresolved — the caller
// (internal/analyzer) then consults internal/catalog for a column or
// callable interpretation. No part of this order is ever skipped or
// reordered based on the identifier's spelling.
func (e *Engine) Resolve(name string) (t *types.Descriptor, kind ResolveKind) {
	if t, ok := e.LookupVar(name); ok {
		return t, ResolveLocal
	}
	if e.pkg != nil {
		if t, ok := e.pkg.VariableType(name); ok {
			return t, ResolvePackageVar
		}
	}
	return nil, ResolveUnresolved
}

// ResolveKind classifies the outcome of Resolve.
type ResolveKind int

const (
	ResolveUnresolved ResolveKind = iota
	ResolveLocal
	ResolvePackageVar
)

// Depth returns the number of currently open variable scopes, used by
// tests to verify scope-stack balance: variable-scope push/pop is always
// balanced within one translation unit.
func (e *Engine) Depth() int { return len(e.varStack) }

// QueryDepth returns the number of currently open query scopes.
func (e *Engine) QueryDepth() int { return len(e.queryStack) }
