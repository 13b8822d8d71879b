package schema_test

import (
	"testing"

	"mdbport/internal/schema"
)

func TestRefine_Heuristics(t *testing.T) {
	r := schema.NewRefiner(schema.DefaultRules())

	cases := []struct {
		column  string
		rawType string
		want    schema.RefinedType
	}{
		// Identifier suffix wins regardless of the declared physical type
		{"RowGUID", "integer", schema.TypeGUID},
		{"ConceptGUID", "varchar(38)", schema.TypeGUID},
		{"rowguid", "int", schema.TypeGUID},

		// Date suffix
		{"FromDate", "varchar(10)", schema.TypeDate},
		{"ValidUntilDate", "text", schema.TypeDate},

		// Boolean prefix
		{"IsDefault", "integer", schema.TypeBool},
		{"HasMembers", "smallint", schema.TypeBool},

		// Exact-name overrides beat every other rule
		{"ParentFirst", "integer", schema.TypeBool},
		{"UseIntervalArithmetics", "varchar(5)", schema.TypeBool},
		{"StartDate", "text", schema.TypeDateTime},
		{"EndDate", "text", schema.TypeDateTime},

		// Physical widening
		{"SortOrder", "tinyint", schema.TypeInteger},
		{"Amount", "decimal(18,4)", schema.TypeFloat},
		{"Label", "nvarchar(255)", schema.TypeText},
		{"Modified", "datetime", schema.TypeDateTime},
	}

	for _, c := range cases {
		if got := r.Refine(c.column, c.rawType); got != c.want {
			t.Errorf("Refine(%q, %q) = %s, want %s", c.column, c.rawType, got, c.want)
		}
	}
}

func TestRefine_Idempotent(t *testing.T) {
	r := schema.NewRefiner(schema.DefaultRules())

	tbl := &schema.Table{Name: "Item", Columns: []*schema.Column{
		{Name: "ItemID", RawType: "counter"},
		{Name: "ItemGUID", RawType: "integer"},
		{Name: "FromDate", RawType: "text"},
	}}

	r.RefineTable(tbl)
	first := make([]schema.RefinedType, len(tbl.Columns))
	for i, c := range tbl.Columns {
		first[i] = c.Type
	}

	r.RefineTable(tbl)
	for i, c := range tbl.Columns {
		if c.Type != first[i] {
			t.Errorf("column %s changed type on re-run: %s -> %s", c.Name, first[i], c.Type)
		}
	}
}

func TestRefine_ConfiguredOverride(t *testing.T) {
	rules := schema.DefaultRules()
	rules.Overrides["LegacyFlag"] = "bool"
	r := schema.NewRefiner(rules)

	if got := r.Refine("LegacyFlag", "varchar(1)"); got != schema.TypeBool {
		t.Errorf("Refine(LegacyFlag) = %s, want bool", got)
	}
}
