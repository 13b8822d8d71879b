package schema

import "strings"

// Patterns drives the naming-convention checks used by type refinement,
// value casting and enum accumulation.
type Patterns struct {
	EnumSuffixes []string `mapstructure:"enum_suffixes"`
	GUIDSuffixes []string `mapstructure:"guid_suffixes"`
	BoolPrefixes []string `mapstructure:"bool_prefixes"`
	DateSuffixes []string `mapstructure:"date_suffixes"`
}

// Rules carries the hand-maintained conversion heuristics: column name
// patterns, exact-name type overrides and conventional foreign keys the
// source schema leaves undeclared.
type Rules struct {
	Patterns Patterns `mapstructure:"patterns"`

	// Overrides maps exact column names to a refined type name. Highest
	// priority; covers columns whose physical type is ambiguous.
	Overrides map[string]string `mapstructure:"overrides"`

	// ForeignKeys maps a conventionally-named linking column to its
	// "Table.Column" target.
	ForeignKeys map[string]string `mapstructure:"foreign_keys"`

	// HubTable is the high-fan-in table whose generated relationships must
	// use deferred references, and whose identity column substitutes as a
	// synthetic key for keyless tables.
	HubTable string `mapstructure:"hub_table"`

	// IdentityColumn is the column that acts as a synthetic key when a
	// table declares no primary key.
	IdentityColumn string `mapstructure:"identity_column"`
}

// DefaultRules returns the built-in heuristics for DPM-style databases.
func DefaultRules() *Rules {
	return &Rules{
		Patterns: Patterns{
			EnumSuffixes: []string{
				"type", "status", "sign", "optionality", "direction",
				"number", "endorsement", "source", "severity", "errorcode",
			},
			GUIDSuffixes: []string{"guid"},
			BoolPrefixes: []string{"is", "has"},
			DateSuffixes: []string{"date"},
		},
		Overrides: map[string]string{
			"ParentFirst":            "bool",
			"UseIntervalArithmetics": "bool",
			"StartDate":              "datetime",
			"EndDate":                "datetime",
		},
		ForeignKeys: map[string]string{
			"RowGUID":      "Concept.ConceptGUID",
			"ParentItemID": "Item.ItemID",
		},
		HubTable:       "Concept",
		IdentityColumn: "RowGUID",
	}
}

func hasSuffixFold(name string, suffixes []string) bool {
	lower := strings.ToLower(name)
	for _, s := range suffixes {
		if strings.HasSuffix(lower, s) {
			return true
		}
	}
	return false
}

func hasPrefixFold(name string, prefixes []string) bool {
	lower := strings.ToLower(name)
	for _, p := range prefixes {
		if strings.HasPrefix(lower, p) {
			return true
		}
	}
	return false
}

// IsGUID reports whether the column name marks an identifier column.
func (r *Rules) IsGUID(column string) bool {
	return hasSuffixFold(column, r.Patterns.GUIDSuffixes)
}

// IsDate reports whether the column name marks a date column.
func (r *Rules) IsDate(column string) bool {
	return hasSuffixFold(column, r.Patterns.DateSuffixes)
}

// IsBool reports whether the column name marks a boolean column.
func (r *Rules) IsBool(column string) bool {
	return hasPrefixFold(column, r.Patterns.BoolPrefixes)
}

// IsEnum reports whether the column name marks an enumerated-domain column.
func (r *Rules) IsEnum(column string) bool {
	return hasSuffixFold(column, r.Patterns.EnumSuffixes)
}

// OverrideType returns the registered refined type for an exact column
// name, if any.
func (r *Rules) OverrideType(column string) (RefinedType, bool) {
	name, ok := r.Overrides[column]
	if !ok {
		return TypeText, false
	}
	t, ok := ParseRefinedType(name)
	return t, ok
}
