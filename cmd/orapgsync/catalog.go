package main

import (
	"context"
	"fmt"
	"os"

	"github.com/sayiza/orapgsync/internal/ast"
	"github.com/sayiza/orapgsync/internal/catalog"
	"github.com/sayiza/orapgsync/internal/catalogload"
	"github.com/sayiza/orapgsync/translate"
)

// loadCatalog builds the Metadata Index from whichever source the
// persistent flags select: a JSON snapshot, a live Postgres DSN, or
// neither (an empty index, for units with no catalog dependencies).
func loadCatalog() (*catalog.Index, error) {
	idx := catalog.NewIndex()

	if catalogPath != "" {
		f, err := os.Open(catalogPath)
		if err != nil {
			return nil, fmt.Errorf("opening catalog snapshot: %w", err)
		}
		defer f.Close()
		if err := catalogload.LoadJSON(f, idx); err != nil {
			return nil, err
		}
	}

	if catalogDSN != "" {
		if err := catalogload.LoadFromPostgres(context.Background(), catalogDSN, catalogSchema, idx); err != nil {
			return nil, err
		}
	}

	return idx, nil
}

// identityOf derives a translate.Identity from a parsed unit's own name,
// falling back to defaultSchema when the name carries no qualifier (a bare
// "get_rate" rather than "hr.get_rate").
func identityOf(unit *ast.Unit) translate.Identity {
	var name *ast.Name
	switch {
	case unit.Function != nil:
		name = unit.Function.Name
	case unit.Procedure != nil:
		name = unit.Procedure.Name
	case unit.Package != nil:
		name = unit.Package.Name
	case unit.PackageBody != nil:
		name = unit.PackageBody.Name
	}
	if name == nil {
		return translate.Identity{Schema: defaultSchema, Name: "unknown"}
	}
	schema := defaultSchema
	if q := name.Qualifier(); len(q) > 0 {
		schema = q[len(q)-1]
	}
	return translate.Identity{Schema: schema, Name: name.Last()}
}
