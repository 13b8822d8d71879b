package dialect

import (
	"database/sql"
	"fmt"
)

// SQLiteDialect introspects file-based databases through the pure-Go SQLite
// driver. It is the default source dialect for desktop-database files and
// the dialect used by tests.
type SQLiteDialect struct{}

func (d *SQLiteDialect) Name() string { return "sqlite" }

func (d *SQLiteDialect) DefaultSchema() string { return "main" }

func (d *SQLiteDialect) Quote(ident string) string { return quoteAnsi(ident) }

func (d *SQLiteDialect) Tables(db *sql.DB, schema string) ([]string, error) {
	return queryStrings(db, `SELECT name FROM sqlite_master WHERE type = 'table' AND name NOT LIKE 'sqlite_%' ORDER BY name`)
}

func (d *SQLiteDialect) Columns(db *sql.DB, schema string) ([]ColumnInfo, error) {
	tables, err := d.Tables(db, schema)
	if err != nil {
		return nil, err
	}

	var cols []ColumnInfo
	for _, table := range tables {
		rows, err := db.Query(fmt.Sprintf("PRAGMA table_info(%s)", d.Quote(table)))
		if err != nil {
			return nil, fmt.Errorf("failed to read table_info for %s: %w", table, err)
		}

		for rows.Next() {
			var (
				cid, notNull, pk int
				name, dataType   string
				dflt             sql.NullString
			)
			if err := rows.Scan(&cid, &name, &dataType, &notNull, &dflt, &pk); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan table_info row (table: %s): %w", table, err)
			}
			cols = append(cols, ColumnInfo{
				Table:    table,
				Name:     name,
				DataType: dataType,
				Nullable: notNull == 0,
				IsPK:     pk > 0,
			})
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return cols, nil
}

func (d *SQLiteDialect) ForeignKeys(db *sql.DB, schema string) ([]ForeignKeyInfo, error) {
	tables, err := d.Tables(db, schema)
	if err != nil {
		return nil, err
	}

	var fks []ForeignKeyInfo
	for _, table := range tables {
		rows, err := db.Query(fmt.Sprintf("PRAGMA foreign_key_list(%s)", d.Quote(table)))
		if err != nil {
			return nil, fmt.Errorf("failed to read foreign_key_list for %s: %w", table, err)
		}

		for rows.Next() {
			var (
				id, seq                    int
				refTable, from             string
				to                         sql.NullString // NULL when referencing the target's implicit PK
				onUpdate, onDelete, match_ string
			)
			if err := rows.Scan(&id, &seq, &refTable, &from, &to, &onUpdate, &onDelete, &match_); err != nil {
				rows.Close()
				return nil, fmt.Errorf("failed to scan foreign_key_list row (table: %s): %w", table, err)
			}
			fks = append(fks, ForeignKeyInfo{
				Table:     table,
				Column:    from,
				RefTable:  refTable,
				RefColumn: to.String,
			})
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()
	}
	return fks, nil
}
