package analyzer

import "github.com/sayiza/orapgsync/internal/types"

// builtinRule computes a call's result type from its already-inferred
// argument types. Grounded on ha1tch-tgpiler/transpiler/expressions.go's
// per-function-name switch inside transpileCall, generalised from "emit a
// Go expression string" to "infer a types.Descriptor".
type builtinRule func(args []*types.Descriptor) *types.Descriptor

// staticRule always returns the same descriptor regardless of arguments,
// for conversions whose target type is fixed by the function name itself
// (TO_CHAR, TO_NUMBER, ...).
func staticRule(d *types.Descriptor) builtinRule {
	return func(_ []*types.Descriptor) *types.Descriptor { return d }
}

// firstArgRule returns the type of the first argument, unchanged. Used by
// the polymorphic ROUND/TRUNC (they return the first argument's own type)
// and by single-input aggregates (SUM/AVG/MIN/MAX return the input
// column's type; COUNT does not use this rule).
func firstArgRule(args []*types.Descriptor) *types.Descriptor {
	if len(args) == 0 {
		return types.UnknownD
	}
	return args[0]
}

// highestPrecedenceRule returns the highest-precedence type across every
// argument. This is NVL/COALESCE's rule (also used for CASE/DECODE
// branch unification, but those are driven directly rather than through
// this table).
func highestPrecedenceRule(args []*types.Descriptor) *types.Descriptor {
	var best *types.Descriptor
	for _, a := range args {
		best = types.Higher(best, a)
	}
	if best == nil {
		return types.UnknownD
	}
	return best
}

// nvl2Rule is NVL2(expr, value_if_not_null, value_if_null): result type is
// the higher-precedence type of the two value arguments (positions 1, 2),
// the first (nullability-test) argument's type plays no part.
func nvl2Rule(args []*types.Descriptor) *types.Descriptor {
	if len(args) < 3 {
		return types.UnknownD
	}
	return types.Higher(args[1], args[2])
}

// decodeRule is DECODE(expr, search1, result1, [search2, result2, ...],
// [default]): result positions are every even-indexed argument after the
// first (2, 4, 6, ...) plus a trailing default if the argument count is
// even (no matching final search).
func decodeRule(args []*types.Descriptor) *types.Descriptor {
	if len(args) < 3 {
		return types.UnknownD
	}
	var best *types.Descriptor
	// args[0] is the compare expression; pairs start at index 1.
	i := 1
	for i+1 < len(args) {
		best = types.Higher(best, args[i+1])
		i += 2
	}
	if i < len(args) {
		// Trailing unpaired argument is the default result.
		best = types.Higher(best, args[i])
	}
	if best == nil {
		return types.UnknownD
	}
	return best
}

// builtins maps a lower-cased built-in function name to its result-type
// rule. This is the built-in function registry.
var builtins = map[string]builtinRule{
	"round": firstArgRule,
	"trunc": firstArgRule,

	"nvl":      highestPrecedenceRule,
	"coalesce": highestPrecedenceRule,
	"nvl2":     nvl2Rule,
	"decode":   decodeRule,

	"sum": firstArgRule,
	"avg": firstArgRule,
	"min": firstArgRule,
	"max": firstArgRule,
	"count": staticRule(types.NumericD),

	"to_char":      staticRule(types.TextD),
	"to_number":    staticRule(types.NumericD),
	"to_date":      staticRule(types.DateD),
	"to_timestamp": staticRule(types.TimestampD),

	"length":   staticRule(types.NumericD),
	"lengthb":  staticRule(types.NumericD),
	"instr":    staticRule(types.NumericD),
	"substr":   staticRule(types.TextD),
	"upper":    staticRule(types.TextD),
	"lower":    staticRule(types.TextD),
	"initcap":  staticRule(types.TextD),
	"trim":     staticRule(types.TextD),
	"ltrim":    staticRule(types.TextD),
	"rtrim":    staticRule(types.TextD),
	"replace":  staticRule(types.TextD),
	"lpad":     staticRule(types.TextD),
	"rpad":     staticRule(types.TextD),
	"concat":   staticRule(types.TextD),

	"abs":   firstArgRule,
	"mod":   firstArgRule,
	"power": staticRule(types.NumericD),
	"sqrt":  staticRule(types.NumericD),
	"ceil":  firstArgRule,
	"floor": firstArgRule,

	"sysdate":         staticRule(types.DateD),
	"sys_extract_utc": staticRule(types.TimestampD),
	"add_months":      staticRule(types.DateD),
	"months_between":  staticRule(types.NumericD),
	"last_day":        staticRule(types.DateD),
	"extract":         staticRule(types.NumericD),
}
