// Package catalogload populates an internal/catalog.Index from an
// external source: a static JSON snapshot, or a live PostgreSQL
// database introspected via ariga.io/atlas. It is a boundary package,
// never imported by internal/catalog, internal/analyzer, internal/emitter,
// or translate — the core transformation engine never opens a file or a
// network connection itself.
package catalogload

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sayiza/orapgsync/internal/catalog"
	"github.com/sayiza/orapgsync/internal/types"
)

// jsonColumn is one column entry in a JSON catalog snapshot.
type jsonColumn struct {
	Name         string `json:"name"`
	Type         string `json:"type"`
	Precision    int    `json:"precision,omitempty"`
	Scale        int    `json:"scale,omitempty"`
	HasPrecision bool   `json:"has_precision,omitempty"`
	HasScale     bool   `json:"has_scale,omitempty"`
}

// jsonTable is one table entry, schema-qualified.
type jsonTable struct {
	Schema  string       `json:"schema"`
	Name    string       `json:"name"`
	Columns []jsonColumn `json:"columns"`
}

// jsonSynonym is one synonym entry.
type jsonSynonym struct {
	Schema       string `json:"schema"`
	Name         string `json:"name"`
	TargetSchema string `json:"target_schema"`
	TargetName   string `json:"target_name"`
}

// jsonParam is one formal parameter of a cataloged signature.
type jsonParam struct {
	Name string     `json:"name"`
	Type jsonColumn `json:"type"`
	Mode string     `json:"mode"` // "IN", "OUT", "IN OUT"
}

// jsonSignature is one cataloged function/procedure overload.
type jsonSignature struct {
	Schema     string      `json:"schema"`
	Name       string      `json:"name"`
	Params     []jsonParam `json:"params"`
	ReturnType *jsonColumn `json:"return_type,omitempty"`
}

// jsonSnapshot is the whole-catalog JSON document shape.
type jsonSnapshot struct {
	Tables     []jsonTable     `json:"tables"`
	Synonyms   []jsonSynonym   `json:"synonyms"`
	Signatures []jsonSignature `json:"signatures"`
}

// LoadJSON reads a static MetadataIndex snapshot (tables, columns,
// synonyms, function signatures) and populates idx; callers without live
// database access use this path, since the catalog is read-only input
// that can be sourced however the caller likes.
func LoadJSON(r io.Reader, idx *catalog.Index) error {
	var snap jsonSnapshot
	dec := json.NewDecoder(r)
	if err := dec.Decode(&snap); err != nil {
		return fmt.Errorf("catalogload: decode snapshot: %w", err)
	}

	for _, t := range snap.Tables {
		cols := make([]catalog.Column, len(t.Columns))
		for i, c := range t.Columns {
			cols[i] = catalog.Column{Name: c.Name, Type: descriptorFromJSON(c)}
		}
		idx.AddTable(t.Schema, t.Name, cols)
	}
	for _, s := range snap.Synonyms {
		idx.AddSynonym(s.Schema, s.Name, s.TargetSchema, s.TargetName)
	}
	for _, s := range snap.Signatures {
		params := make([]catalog.Param, len(s.Params))
		for i, p := range s.Params {
			params[i] = catalog.Param{Name: p.Name, Type: descriptorFromJSON(p.Type), Mode: p.Mode}
		}
		var ret *types.Descriptor
		if s.ReturnType != nil {
			ret = descriptorFromJSON(*s.ReturnType)
		}
		idx.AddSignature(catalog.Signature{Schema: s.Schema, Name: s.Name, Params: params, ReturnType: ret})
	}
	return nil
}

// descriptorFromJSON maps a jsonColumn's simple type name to a
// Descriptor, using the same source-type names internal/types parses
// from declared PL/SQL types.
func descriptorFromJSON(c jsonColumn) *types.Descriptor {
	return types.ParseSimpleSourceType(c.Type, c.Precision, c.Scale, 0, c.HasPrecision, c.HasScale, false)
}
