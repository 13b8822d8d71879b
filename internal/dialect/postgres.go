package dialect

import "database/sql"

type PostgresDialect struct{}

func (d *PostgresDialect) Name() string { return "postgres" }

func (d *PostgresDialect) DefaultSchema() string { return "public" }

func (d *PostgresDialect) Quote(ident string) string { return quoteAnsi(ident) }

func (d *PostgresDialect) Tables(db *sql.DB, schema string) ([]string, error) {
	return queryStrings(db,
		`SELECT table_name FROM information_schema.tables WHERE table_schema = $1 AND table_type = 'BASE TABLE' ORDER BY table_name`,
		schema)
}

func (d *PostgresDialect) Columns(db *sql.DB, schema string) ([]ColumnInfo, error) {
	rows, err := db.Query(`
		SELECT c.table_name, c.column_name, c.data_type, c.is_nullable,
			CASE WHEN pk.column_name IS NOT NULL THEN 'PRI' ELSE '' END
		FROM information_schema.columns c
		LEFT JOIN (
			SELECT kcu.table_name, kcu.column_name
			FROM information_schema.table_constraints tc
			JOIN information_schema.key_column_usage kcu
				ON tc.constraint_name = kcu.constraint_name
			WHERE tc.constraint_type = 'PRIMARY KEY' AND tc.table_schema = $1
		) pk ON c.table_name = pk.table_name AND c.column_name = pk.column_name
		WHERE c.table_schema = $1
		ORDER BY c.table_name, c.ordinal_position`,
		schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var table, name, dataType, isNull, key string
		if err := rows.Scan(&table, &name, &dataType, &isNull, &key); err != nil {
			return nil, err
		}
		cols = append(cols, ColumnInfo{
			Table:    table,
			Name:     name,
			DataType: dataType,
			Nullable: isNull == "YES",
			IsPK:     key == "PRI",
		})
	}
	return cols, rows.Err()
}

func (d *PostgresDialect) ForeignKeys(db *sql.DB, schema string) ([]ForeignKeyInfo, error) {
	rows, err := db.Query(`
		SELECT kcu1.table_name, kcu1.column_name, kcu2.table_name, kcu2.column_name
		FROM information_schema.referential_constraints rc
		JOIN information_schema.key_column_usage kcu1
			ON rc.constraint_name = kcu1.constraint_name
		JOIN information_schema.key_column_usage kcu2
			ON rc.unique_constraint_name = kcu2.constraint_name
			AND kcu1.ordinal_position = kcu2.ordinal_position
		WHERE kcu1.table_schema = $1
		ORDER BY kcu1.table_name, kcu1.ordinal_position`,
		schema)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var fks []ForeignKeyInfo
	for rows.Next() {
		var fk ForeignKeyInfo
		if err := rows.Scan(&fk.Table, &fk.Column, &fk.RefTable, &fk.RefColumn); err != nil {
			return nil, err
		}
		fks = append(fks, fk)
	}
	return fks, rows.Err()
}
