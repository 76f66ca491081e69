package emitter

import (
	"fmt"
	"strings"

	"github.com/sayiza/orapgsync/internal/pkgstate"
	"github.com/sayiza/orapgsync/internal/types"
)

// flattenMemberName builds the target name of a package member per the
// GLOSSARY: "schema.packagename__membername". Postgres folds unquoted
// identifiers to lower-case, so the flattened name is lower-cased here
// rather than left to the backend to do inconsistently.
func flattenMemberName(schema, pkg, member string) string {
	return fmt.Sprintf("%s.%s__%s", strings.ToLower(schema), strings.ToLower(pkg), strings.ToLower(member))
}

// settingKey builds the session-config key backing one package variable's
// storage. set_config/current_setting is Postgres's built-in session-local
// key-value store, needing no backing table or migration.
func settingKey(schema, pkg, varName string) string {
	return fmt.Sprintf("orapgsync.%s.%s.%s", strings.ToLower(schema), strings.ToLower(pkg), strings.ToLower(varName))
}

// defaultLiteralText is the text representation set_config stores before
// any assignment, one per target type family. Oracle's actual declared
// initial-value expression is not retained by internal/pkgstate past
// analysis, so the initializer approximates it with the type's zero value;
// DESIGN.md records this as a known simplification.
func defaultLiteralText(d *types.Descriptor) string {
	if d == nil {
		return ""
	}
	switch d.Tag {
	case types.Numeric:
		return "0"
	case types.Boolean:
		return "false"
	case types.Text, types.LOBText:
		return ""
	default:
		return ""
	}
}

// castFromText wraps a current_setting(...) text read with the cast
// needed to restore a package variable's declared type.
func castFromText(expr string, d *types.Descriptor) string {
	if d == nil {
		return expr
	}
	switch d.Tag {
	case types.Numeric:
		return "(" + expr + ")::numeric"
	case types.Date:
		return "(" + expr + ")::timestamp"
	case types.Timestamp:
		return "(" + expr + ")::timestamptz"
	case types.Boolean:
		return "(" + expr + ")::boolean"
	case types.Record, types.Collection, types.Object:
		return "(" + expr + ")::jsonb"
	default:
		return expr
	}
}

// castToText wraps a value expression with the cast needed before storing
// it via set_config, which only accepts text.
func castToText(expr string, d *types.Descriptor) string {
	if d == nil {
		return "(" + expr + ")::text"
	}
	if d.Tag == types.Record || d.Tag == types.Collection || d.Tag == types.Object {
		return "(" + expr + ")::jsonb::text"
	}
	return "(" + expr + ")::text"
}

// emitPackageHelpers emits the initializer/getter/setter trio, once per
// package per session (guarded by pkg.HelpersEmitted, checked by the
// caller before invoking this).
func (e *Emitter) emitPackageHelpers(pkg *pkgstate.Package) string {
	var out strings.Builder

	initName := flattenMemberName(pkg.Schema, pkg.Name, "init")
	out.WriteString(fmt.Sprintf("CREATE OR REPLACE FUNCTION %s() RETURNS void AS $$\n", initName))
	out.WriteString("BEGIN\n")
	for _, v := range pkg.Variables {
		key := settingKey(pkg.Schema, pkg.Name, v.Name)
		out.WriteString(fmt.Sprintf("  IF current_setting('%s', true) IS NULL THEN\n", key))
		out.WriteString(fmt.Sprintf("    PERFORM set_config('%s', '%s', false);\n", key, defaultLiteralText(v.Type)))
		out.WriteString("  END IF;\n")
	}
	out.WriteString("END;\n$$ LANGUAGE plpgsql;\n\n")

	for _, v := range pkg.Variables {
		key := settingKey(pkg.Schema, pkg.Name, v.Name)
		targetType := types.TargetTypeText(v.Type)

		getName := flattenMemberName(pkg.Schema, pkg.Name, "get_"+v.Name)
		out.WriteString(fmt.Sprintf("CREATE OR REPLACE FUNCTION %s() RETURNS %s AS $$\n", getName, targetType))
		out.WriteString("BEGIN\n")
		out.WriteString(fmt.Sprintf("  RETURN %s;\n", castFromText(fmt.Sprintf("current_setting('%s', true)", key), v.Type)))
		out.WriteString("END;\n$$ LANGUAGE plpgsql;\n\n")

		setName := flattenMemberName(pkg.Schema, pkg.Name, "set_"+v.Name)
		out.WriteString(fmt.Sprintf("CREATE OR REPLACE FUNCTION %s(p_value %s) RETURNS void AS $$\n", setName, targetType))
		out.WriteString("BEGIN\n")
		out.WriteString(fmt.Sprintf("  PERFORM set_config('%s', %s, false);\n", key, castToText("p_value", v.Type)))
		out.WriteString("END;\n$$ LANGUAGE plpgsql;\n\n")
	}

	pkg.HelpersEmitted = true
	return out.String()
}
