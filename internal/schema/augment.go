package schema

import (
	"log"
	"sort"
	"strings"
)

// Augment injects foreign keys for conventionally-named linking columns the
// source schema leaves undeclared. Idempotent: a column that already carries
// a foreign key is never touched. Columns are processed in name order so the
// injected keys land in a stable position in Table.ForeignKeys, which both
// the DDL and the generated model depend on.
func Augment(s *Schema, rules *Rules) {
	columns := make([]string, 0, len(rules.ForeignKeys))
	for column := range rules.ForeignKeys {
		columns = append(columns, column)
	}
	sort.Strings(columns)

	for _, t := range s.Tables {
		for _, column := range columns {
			augmentColumn(s, t, column, rules.ForeignKeys[column])
		}
	}
}

func augmentColumn(s *Schema, t *Table, column, target string) {
	c := t.Column(column)
	if c == nil || len(t.ForeignKeysFor(column)) > 0 {
		return
	}

	refTable, refColumn, ok := strings.Cut(target, ".")
	if !ok {
		log.Printf("Warning: malformed foreign key target %q for column %s, expected Table.Column", target, column)
		return
	}
	ref := s.Table(refTable)
	if ref == nil {
		log.Printf("Warning: foreign key target table %s not in schema, skipping %s.%s", refTable, t.Name, column)
		return
	}

	t.ForeignKeys = append(t.ForeignKeys, &ForeignKey{
		Column:    column,
		RefTable:  ref.Name,
		RefColumn: refColumn,
		Augmented: true,
	})
	if ref.Name != t.Name {
		t.Dependencies = append(t.Dependencies, ref.Name)
	}
}
