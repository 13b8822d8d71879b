package schema

import "strings"

// refineRule is one (predicate, outcome) pair. Rules are evaluated in
// priority order; the first match wins.
type refineRule struct {
	name    string
	match   func(column, rawType string) bool
	outcome func(column, rawType string) RefinedType
}

// Refiner classifies physical columns into refined logical types using
// column-name heuristics and exact-name overrides. Refinement is total,
// pure and idempotent.
type Refiner struct {
	rules []refineRule
}

// NewRefiner builds the ordered rule list from the conversion rules.
func NewRefiner(r *Rules) *Refiner {
	return &Refiner{rules: []refineRule{
		{
			name: "override",
			match: func(column, _ string) bool {
				_, ok := r.OverrideType(column)
				return ok
			},
			outcome: func(column, _ string) RefinedType {
				t, _ := r.OverrideType(column)
				return t
			},
		},
		{
			name:    "guid-suffix",
			match:   func(column, _ string) bool { return r.IsGUID(column) },
			outcome: func(_, _ string) RefinedType { return TypeGUID },
		},
		{
			name:    "date-suffix",
			match:   func(column, _ string) bool { return r.IsDate(column) },
			outcome: func(_, _ string) RefinedType { return TypeDate },
		},
		{
			name:    "bool-prefix",
			match:   func(column, _ string) bool { return r.IsBool(column) },
			outcome: func(_, _ string) RefinedType { return TypeBool },
		},
		{
			name:    "widen-physical",
			match:   func(_, _ string) bool { return true },
			outcome: func(_, rawType string) RefinedType { return WidenType(rawType) },
		},
	}}
}

// Refine returns the refined logical type for a column given its declared
// name and raw physical type.
func (rf *Refiner) Refine(column, rawType string) RefinedType {
	for _, rule := range rf.rules {
		if rule.match(column, rawType) {
			return rule.outcome(column, rawType)
		}
	}
	return TypeText // unreachable: the last rule always matches
}

// RefineTable refines every column of a table in place.
func (rf *Refiner) RefineTable(t *Table) {
	for _, c := range t.Columns {
		c.Type = rf.Refine(c.Name, c.RawType)
	}
}

// WidenType collapses a physical storage type to its nearest generic class,
// so implementation-specific subtypes (counter, smallint, varchar sizes...)
// do not leak into the refined schema.
func WidenType(rawType string) RefinedType {
	raw := strings.ToLower(rawType)
	// Strip length/precision qualifiers: "varchar(255)" -> "varchar".
	if i := strings.IndexByte(raw, '('); i >= 0 {
		raw = raw[:i]
	}
	raw = strings.TrimSpace(raw)

	switch {
	case strings.Contains(raw, "uniqueidentifier") || raw == "guid":
		return TypeGUID
	case raw == "bit" || strings.Contains(raw, "bool") || raw == "yesno" || raw == "logical":
		return TypeBool
	case strings.Contains(raw, "int") || raw == "counter" || raw == "byte" || raw == "long" || raw == "short":
		return TypeInteger
	case strings.Contains(raw, "float") || strings.Contains(raw, "double") ||
		strings.Contains(raw, "real") || strings.Contains(raw, "decimal") ||
		strings.Contains(raw, "numeric") || strings.Contains(raw, "currency") ||
		strings.Contains(raw, "money") || raw == "number":
		return TypeFloat
	case strings.Contains(raw, "datetime") || strings.Contains(raw, "timestamp"):
		return TypeDateTime
	case strings.Contains(raw, "date"):
		return TypeDate
	default:
		return TypeText
	}
}
