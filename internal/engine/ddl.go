package engine

import (
	"fmt"
	"strings"

	"mdbport/internal/schema"
)

func quote(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func sqliteType(t schema.RefinedType) string {
	switch t {
	case schema.TypeGUID:
		return "TEXT"
	case schema.TypeDate:
		return "DATE"
	case schema.TypeDateTime:
		return "DATETIME"
	case schema.TypeBool:
		return "BOOLEAN"
	case schema.TypeInteger:
		return "INTEGER"
	case schema.TypeFloat:
		return "REAL"
	default: // text, guid-less identifiers, enums (restricted via CHECK)
		return "TEXT"
	}
}

// CreateTableSQL renders the refined table as a SQLite CREATE TABLE
// statement: refined column types, empirically-derived NOT NULL, enum-domain
// CHECK constraints and all (declared plus augmented) foreign keys. The
// identity column substitutes as the declared key for tables without a
// primary key; keyed tables are created WITHOUT ROWID to save space.
func CreateTableSQL(t *schema.Table, identityColumn string) string {
	var defs []string

	for _, c := range t.Columns {
		def := quote(c.Name) + " " + sqliteType(c.Type)
		if !c.Nullable {
			def += " NOT NULL"
		}
		if c.Type == schema.TypeEnum && len(c.Enum) > 0 {
			lits := make([]string, len(c.Enum))
			for i, v := range c.Enum {
				lits[i] = quoteLiteral(v)
			}
			def += fmt.Sprintf(" CHECK (%s IN (%s))", quote(c.Name), strings.Join(lits, ", "))
		}
		defs = append(defs, def)
	}

	pks := t.KeyColumns(identityColumn)
	if len(pks) > 0 {
		names := make([]string, len(pks))
		for i, c := range pks {
			names[i] = quote(c.Name)
		}
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(names, ", ")))
	}

	for _, fk := range t.ForeignKeys {
		defs = append(defs, fmt.Sprintf("FOREIGN KEY (%s) REFERENCES %s (%s)",
			quote(fk.Column), quote(fk.RefTable), quote(fk.RefColumn)))
	}

	stmt := fmt.Sprintf("CREATE TABLE %s (\n\t%s\n)", quote(t.Name), strings.Join(defs, ",\n\t"))
	if len(pks) > 0 {
		stmt += " WITHOUT ROWID"
	}
	return stmt
}

// insertSQL renders a multi-row INSERT for one batch.
func insertSQL(t *schema.Table, batchRows int) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quote(c.Name)
	}

	row := "(" + strings.TrimSuffix(strings.Repeat("?, ", len(cols)), ", ") + ")"
	rows := make([]string, batchRows)
	for i := range rows {
		rows[i] = row
	}

	return fmt.Sprintf("INSERT INTO %s (%s) VALUES %s",
		quote(t.Name), strings.Join(cols, ", "), strings.Join(rows, ", "))
}
