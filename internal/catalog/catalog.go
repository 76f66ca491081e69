// Package catalog implements the read-only Metadata Index: column types,
// table columns, synonym resolution, and function/procedure signatures,
// all looked up case-insensitively.
//
// Grounded on ha1tch-tgpiler/storage/mapper.go's static lookup-table shape
// (ProtoToSQLMapper holds fixed maps consulted during generation); this
// package generalises that into a richer, multi-relation index. Loading
// an Index from JSON or a live Postgres catalog is a concern of
// internal/catalogload, never of this package.
package catalog

import (
	"strings"

	"github.com/sayiza/orapgsync/internal/diag"
	"github.com/sayiza/orapgsync/internal/types"
)

// Column describes one table column's type shape.
type Column struct {
	Name string
	Type *types.Descriptor
}

// Param describes one formal parameter of a cataloged function/procedure.
type Param struct {
	Name string
	Type *types.Descriptor
	Mode string // "IN", "OUT", "IN OUT"
}

// Signature is one overload of a cataloged callable.
type Signature struct {
	Schema     string
	Name       string
	Params     []Param
	ReturnType *types.Descriptor // nil for procedures
}

// Index is the read-only Metadata Index consulted by internal/analyzer and
// internal/emitter. It is never mutated after construction; concurrent
// readers are safe without external locking.
type Index struct {
	// tableColumns maps lower(schema.table) -> ordered columns.
	tableColumns map[string][]Column
	// synonyms maps lower(schema.name) -> lower(schema.name) of the target.
	synonyms map[string]string
	// signatures maps lower(schema.name) -> all known overloads.
	signatures map[string][]Signature
}

// NewIndex builds an empty Index; internal/catalogload populates one via
// the exported Add* methods.
func NewIndex() *Index {
	return &Index{
		tableColumns: make(map[string][]Column),
		synonyms:     make(map[string]string),
		signatures:   make(map[string][]Signature),
	}
}

func key(schema, name string) string {
	return strings.ToLower(schema) + "." + strings.ToLower(name)
}

// AddTable registers a table's ordered columns.
func (idx *Index) AddTable(schema, table string, cols []Column) {
	idx.tableColumns[key(schema, table)] = cols
}

// AddSynonym registers schema.name as a synonym for targetSchema.targetName.
func (idx *Index) AddSynonym(schema, name, targetSchema, targetName string) {
	idx.synonyms[key(schema, name)] = key(targetSchema, targetName)
}

// AddSignature registers one overload of a function or procedure.
func (idx *Index) AddSignature(sig Signature) {
	k := key(sig.Schema, sig.Name)
	idx.signatures[k] = append(idx.signatures[k], sig)
}

// maxSynonymDepth bounds synonym chain resolution: cycles and chains
// longer than this surface as RESOLVE_CYCLE.
const maxSynonymDepth = 10

// ResolveSynonym follows schema.name through the synonym chain to its
// final target, returning the resolved (schema, name). If schema.name is
// not itself a synonym, it is returned unchanged. A cycle or a chain
// longer than maxSynonymDepth is reported as diag.ResolveCycle.
func (idx *Index) ResolveSynonym(schema, name string) (string, string, *diag.Failure) {
	cur := key(schema, name)
	seen := map[string]bool{cur: true}
	curSchema, curName := schema, name
	for i := 0; i < maxSynonymDepth; i++ {
		target, ok := idx.synonyms[cur]
		if !ok {
			return curSchema, curName, nil
		}
		if seen[target] {
			return "", "", diag.New(diag.ResolveCycle, "synonym cycle detected resolving %s.%s", schema, name)
		}
		seen[target] = true
		parts := strings.SplitN(target, ".", 2)
		curSchema, curName = parts[0], parts[1]
		cur = target
	}
	return "", "", diag.New(diag.ResolveCycle, "synonym chain for %s.%s exceeds max depth %d", schema, name, maxSynonymDepth)
}

// TableColumns returns the ordered columns of schema.table, resolving
// synonyms first. ok is false if the (resolved) table is unknown.
func (idx *Index) TableColumns(schema, table string) (cols []Column, ok bool, failure *diag.Failure) {
	rs, rt, err := idx.ResolveSynonym(schema, table)
	if err != nil {
		return nil, false, err
	}
	cols, ok = idx.tableColumns[key(rs, rt)]
	return cols, ok, nil
}

// ColumnType looks up the type of one column of schema.table, resolving
// synonyms first. ok is false if the table or column is unknown.
func (idx *Index) ColumnType(schema, table, column string) (*types.Descriptor, bool, *diag.Failure) {
	cols, ok, err := idx.TableColumns(schema, table)
	if err != nil || !ok {
		return nil, false, err
	}
	for _, c := range cols {
		if strings.EqualFold(c.Name, column) {
			return c.Type, true, nil
		}
	}
	return nil, false, nil
}

// FunctionSignatures returns all known overloads of schema.name, resolving
// synonyms first.
func (idx *Index) FunctionSignatures(schema, name string) ([]Signature, *diag.Failure) {
	rs, rn, err := idx.ResolveSynonym(schema, name)
	if err != nil {
		return nil, err
	}
	return idx.signatures[key(rs, rn)], nil
}

// ResolveOverload picks the best-matching signature for a call with
// argCount positional arguments, per DESIGN.md's Open Question decision:
// match by arity first; among same-arity candidates, prefer the one whose
// parameter types are already an exact match to argTypes (position-wise);
// otherwise fall back to the first registered signature of that arity.
// Returns ok=false if no signature of that arity exists at all.
func ResolveOverload(sigs []Signature, argTypes []*types.Descriptor) (Signature, bool) {
	var sameArity []Signature
	for _, s := range sigs {
		if len(s.Params) == len(argTypes) {
			sameArity = append(sameArity, s)
		}
	}
	if len(sameArity) == 0 {
		return Signature{}, false
	}
	for _, s := range sameArity {
		if matchesExactly(s, argTypes) {
			return s, true
		}
	}
	return sameArity[0], true
}

func matchesExactly(s Signature, argTypes []*types.Descriptor) bool {
	for i, p := range s.Params {
		if argTypes[i] == nil || p.Type == nil {
			continue
		}
		if argTypes[i].Tag != p.Type.Tag {
			return false
		}
	}
	return true
}
