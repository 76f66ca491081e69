// Package analyzer implements the Type Analyzer: a post-order walk of an
// internal/ast tree that populates a position-keyed type cache,
// consulting internal/catalog for metadata and internal/scope for
// variable/alias/package-variable resolution. It never mutates the
// tree and never panics outward — internal failures degrade to UNKNOWN
// and are collected, not raised.
//
// Grounded on ha1tch-tgpiler/transpiler/expressions.go's transpileExpression
// type switch, generalised from "emit a Go string" to "infer a
// types.Descriptor", with the position-keyed cache standing
// in for that function's direct return value.
package analyzer

import (
	"github.com/sayiza/orapgsync/internal/ast"
	"github.com/sayiza/orapgsync/internal/types"
)

// Cache maps an expression node's byte-offset span to its inferred type.
// The analyzer never modifies the tree, and when a type cannot be
// determined the entry is UNKNOWN rather than absent: every expression
// node visited gets an entry, and emission relies on that presence.
type Cache struct {
	entries map[ast.Span]*types.Descriptor
}

// NewCache builds an empty type cache.
func NewCache() *Cache {
	return &Cache{entries: make(map[ast.Span]*types.Descriptor)}
}

// Set records the inferred type of the node occupying span.
func (c *Cache) Set(span ast.Span, t *types.Descriptor) {
	if t == nil {
		t = types.UnknownD
	}
	c.entries[span] = t
}

// Lookup returns the cached type for span, and whether an entry exists.
func (c *Cache) Lookup(span ast.Span) (*types.Descriptor, bool) {
	t, ok := c.entries[span]
	return t, ok
}

// TypeOf returns the cached type of e, or UnknownD if e was never visited
// (e.g. a node added to the tree after analysis — should not happen in
// normal use, since internal/emitter only walks trees that have already
// been through Analyze).
func (c *Cache) TypeOf(e ast.Expression) *types.Descriptor {
	if e == nil {
		return types.UnknownD
	}
	if t, ok := c.entries[e.Pos()]; ok {
		return t
	}
	return types.UnknownD
}

// Len reports how many entries the cache holds, used by tests asserting
// that every expression node in a tree was visited.
func (c *Cache) Len() int { return len(c.entries) }
