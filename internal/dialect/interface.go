package dialect

import "database/sql"

// ColumnInfo is one physical column as reported by the source database.
type ColumnInfo struct {
	Table    string
	Name     string
	DataType string
	Nullable bool
	IsPK     bool
}

// ForeignKeyInfo is one declared foreign key column pair.
type ForeignKeyInfo struct {
	Table     string
	Column    string
	RefTable  string
	RefColumn string
}

// Dialect abstracts database-specific introspection and quoting for the
// source side of a migration. The target side is always SQLite and is
// handled by the engine directly.
type Dialect interface {
	Name() string
	DefaultSchema() string

	// Schema Introspection
	Tables(db *sql.DB, schema string) ([]string, error)
	Columns(db *sql.DB, schema string) ([]ColumnInfo, error)
	ForeignKeys(db *sql.DB, schema string) ([]ForeignKeyInfo, error)

	// Quote wraps an identifier in the dialect's quoting style.
	Quote(ident string) string
}
