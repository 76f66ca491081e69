package catalogload

import (
	"context"
	"database/sql"
	"fmt"

	atlasschema "ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/postgres"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/sayiza/orapgsync/internal/catalog"
	"github.com/sayiza/orapgsync/internal/types"
)

// LoadFromPostgres introspects schemaName in the database reachable at
// dsn and populates idx with its tables and columns. This lets a caller
// seed the Metadata Index from an already-migrated PostgreSQL schema
// instead of (or in addition to) a hand-built catalog snapshot, per
// its "however the caller likes" sourcing note; this package
// stays a boundary concern the core engine never calls directly.
func LoadFromPostgres(ctx context.Context, dsn, schemaName string, idx *catalog.Index) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("catalogload: open connection: %w", err)
	}
	defer db.Close()

	drv, err := postgres.Open(db)
	if err != nil {
		return fmt.Errorf("catalogload: open atlas driver: %w", err)
	}

	s, err := drv.InspectSchema(ctx, schemaName, nil)
	if err != nil {
		return fmt.Errorf("catalogload: inspect schema %q: %w", schemaName, err)
	}

	for _, t := range s.Tables {
		cols := make([]catalog.Column, len(t.Columns))
		for i, c := range t.Columns {
			var colType atlasschema.Type
			if c.Type != nil {
				colType = c.Type.Type
			}
			cols[i] = catalog.Column{Name: c.Name, Type: descriptorFromAtlas(colType)}
		}
		idx.AddTable(schemaName, t.Name, cols)
	}
	return nil
}

// descriptorFromAtlas maps an Atlas schema.Type (already-migrated target
// column shapes) back to the fixed Descriptor tag set used by the
// Metadata Index, so a caller can seed the index directly from the
// PostgreSQL side of an already-run migration rather than only from the
// Oracle catalog. Any Postgres type this table does not recognize maps to
// Unknown rather than guessing.
func descriptorFromAtlas(t atlasschema.Type) *types.Descriptor {
	switch ct := t.(type) {
	case *atlasschema.IntegerType, *atlasschema.FloatType:
		return types.NewNumeric(0, 0, false, false)
	case *atlasschema.DecimalType:
		return types.NewNumeric(ct.Precision, ct.Scale, ct.Precision != 0, ct.Scale != 0)
	case *atlasschema.StringType:
		return types.TextD
	case *atlasschema.BoolType:
		return types.BooleanD
	case *atlasschema.TimeType:
		return types.TimestampD
	case *atlasschema.JSONType:
		return types.NewRecord(nil)
	case *atlasschema.BinaryType:
		return types.LOBBinaryD
	default:
		return types.UnknownD
	}
}
