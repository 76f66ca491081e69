package emitter

import "github.com/sayiza/orapgsync/internal/types"

// targetTypeOf renders d's PL/pgSQL type text. It is a thin pass-through
// to internal/types.TargetTypeText; kept as its own name in this package
// so call sites read as "the emitter's type mapping" rather than reaching
// into internal/types at every use.
func targetTypeOf(d *types.Descriptor) string {
	return types.TargetTypeText(d)
}

// emptyLiteralFor synthesizes the initializer literal for a Record or
// Collection variable declared without an explicit default, since
// Postgres requires jsonb columns/variables to start from some value.
func emptyLiteralFor(d *types.Descriptor) string {
	if d == nil {
		return "NULL"
	}
	switch d.Tag {
	case types.Record:
		return "'{}'::jsonb"
	case types.Collection:
		if isMapShaped(d) {
			return "'{}'::jsonb"
		}
		return "'[]'::jsonb"
	default:
		return "NULL"
	}
}

// isMapShaped is a best-effort classification of a Collection descriptor
// as map-shaped (Oracle INDEX BY VARCHAR2) rather than array-shaped
// (INDEX BY PLS_INTEGER / plain TABLE OF / VARRAY). internal/types does
// not carry the source INDEX BY key kind on Descriptor, so this always
// returns false here; array-vs-map element-access decisions in emitted
// code instead consult the *index expression's* cached type at the call
// site (see resolveCollectionIndex in exprtext.go), which is the information
// that is actually available.
func isMapShaped(d *types.Descriptor) bool { return false }
