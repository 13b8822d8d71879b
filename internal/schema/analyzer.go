package schema

import (
	"database/sql"
	"fmt"
	"log"
	"strings"

	"mdbport/internal/dialect"
)

// Reflect builds the in-memory schema for a source database: tables,
// columns with refined logical types, and declared foreign keys. Nullability
// starts from the source metadata and is tightened later by the scanner.
func Reflect(db *sql.DB, d dialect.Dialect, schemaName string, rules *Rules) (*Schema, error) {
	refiner := NewRefiner(rules)

	// Use a map with normalized keys for case-insensitive lookups; some
	// sources report identifiers in inconsistent casing.
	tableMap := make(map[string]*Table)
	var tables []*Table

	names, err := d.Tables(db, schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	for _, name := range names {
		t := &Table{Name: name, Dependencies: []string{}}
		tableMap[strings.ToUpper(name)] = t
		tables = append(tables, t)
	}

	cols, err := d.Columns(db, schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to query columns: %w", err)
	}
	for _, ci := range cols {
		t, ok := tableMap[strings.ToUpper(ci.Table)]
		if !ok {
			continue
		}
		t.Columns = append(t.Columns, &Column{
			Name:     ci.Name,
			RawType:  ci.DataType,
			Type:     refiner.Refine(ci.Name, ci.DataType),
			Nullable: ci.Nullable,
			IsPK:     ci.IsPK,
		})
	}

	fks, err := d.ForeignKeys(db, schemaName)
	if err != nil {
		return nil, fmt.Errorf("failed to query foreign keys: %w", err)
	}
	for _, fi := range fks {
		t, ok := tableMap[strings.ToUpper(fi.Table)]
		if !ok {
			continue
		}
		ref, ok := tableMap[strings.ToUpper(fi.RefTable)]
		if !ok {
			// Reference to a table outside the reflected set; nothing we
			// can create on the target, so drop it with a note.
			log.Printf("Warning: %s.%s references unknown table %s, skipping FK",
				fi.Table, fi.Column, fi.RefTable)
			continue
		}

		refColumn := fi.RefColumn
		if refColumn == "" {
			// SQLite reports a NULL target column when the FK points at
			// the referenced table's primary key.
			if pks := ref.PKColumns(); len(pks) > 0 {
				refColumn = pks[0].Name
			}
		}

		t.ForeignKeys = append(t.ForeignKeys, &ForeignKey{
			Column:    fi.Column,
			RefTable:  ref.Name,
			RefColumn: refColumn,
		})
		if ref.Name != t.Name {
			t.Dependencies = append(t.Dependencies, ref.Name)
		}
	}

	return &Schema{Tables: tables}, nil
}
