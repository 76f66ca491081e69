// Package pkgstate implements the Package Context Store: per-(schema,
// package) state that persists across the statements of a
// translation session, tracking package-level variables, the package body
// text/tree, and whether initializer/getter/setter helpers have already
// been emitted for that package.
//
// Grounded on ha1tch-tgpiler/adapter/adapter.go's Config/BaseAdapter shape
// (a small struct carrying connection-scoped state threaded through a
// session) and storage/procedure.go's Procedure record, generalised here
// from a single connection's state to one record per PL/SQL package.
package pkgstate

import (
	"sync"

	"github.com/sayiza/orapgsync/internal/types"
)

// Variable is one package-level variable's name and declared type; its
// declared initial value is not stored.
type Variable struct {
	Name string
	Type *types.Descriptor
}

// Package holds the accumulated state for one (schema, package_name) pair
// across a translation session.
type Package struct {
	Schema      string
	Name        string
	Variables   []Variable
	varIndex    map[string]int
	BodyText    string
	// HelpersEmitted is true once package__init/get/set helpers have been
	// written to the emitted output for this package in this session.
	HelpersEmitted bool
}

// AddVariable registers a package-level variable if not already present.
// Returns false if name is already declared (caller treats as DUP_DECL).
func (p *Package) AddVariable(name string, t *types.Descriptor) bool {
	if p.varIndex == nil {
		p.varIndex = make(map[string]int)
	}
	lower := lowerKey(name)
	if _, exists := p.varIndex[lower]; exists {
		return false
	}
	p.varIndex[lower] = len(p.Variables)
	p.Variables = append(p.Variables, Variable{Name: name, Type: t})
	return true
}

// HasVariable reports whether name is a registered package-level variable.
func (p *Package) HasVariable(name string) bool {
	if p.varIndex == nil {
		return false
	}
	_, ok := p.varIndex[lowerKey(name)]
	return ok
}

// VariableType returns the declared type of a package-level variable.
func (p *Package) VariableType(name string) (*types.Descriptor, bool) {
	if p.varIndex == nil {
		return nil, false
	}
	i, ok := p.varIndex[lowerKey(name)]
	if !ok {
		return nil, false
	}
	return p.Variables[i].Type, true
}

func lowerKey(s string) string {
	b := make([]byte, len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c >= 'A' && c <= 'Z' {
			c += 'a' - 'A'
		}
		b[i] = c
	}
	return string(b)
}

// Store is the Package Context Store: a session-scoped, mutable registry
// of Package records, keyed by (schema, name). A Store is safe for
// concurrent use since translation units for distinct packages may run
// concurrently within one session.
type Store struct {
	mu       sync.Mutex
	packages map[string]*Package
}

// NewStore creates an empty Package Context Store.
func NewStore() *Store {
	return &Store{packages: make(map[string]*Package)}
}

func storeKey(schema, name string) string {
	return lowerKey(schema) + "." + lowerKey(name)
}

// GetOrCreate returns the Package record for (schema, name), creating it
// on first reference within this session.
func (s *Store) GetOrCreate(schema, name string) *Package {
	s.mu.Lock()
	defer s.mu.Unlock()
	k := storeKey(schema, name)
	if p, ok := s.packages[k]; ok {
		return p
	}
	p := &Package{Schema: schema, Name: name, varIndex: make(map[string]int)}
	s.packages[k] = p
	return p
}

// Lookup returns the Package record for (schema, name) without creating
// it, reporting ok=false if the package has not been referenced yet.
func (s *Store) Lookup(schema, name string) (*Package, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.packages[storeKey(schema, name)]
	return p, ok
}
