package dialect

import "database/sql"

type MysqlDialect struct{}

func (d *MysqlDialect) Name() string { return "mysql" }

func (d *MysqlDialect) DefaultSchema() string { return "" } // resolved from the DSN by the caller

func (d *MysqlDialect) Quote(ident string) string { return "`" + ident + "`" }

func (d *MysqlDialect) Tables(db *sql.DB, schema string) ([]string, error) {
	return queryStrings(db,
		`SELECT TABLE_NAME FROM information_schema.TABLES WHERE TABLE_SCHEMA = ? AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`,
		schema)
}

func (d *MysqlDialect) Columns(db *sql.DB, schema string) ([]ColumnInfo, error) {
	rows, err := db.Query(
		`SELECT TABLE_NAME, COLUMN_NAME, DATA_TYPE, IS_NULLABLE, COLUMN_KEY FROM information_schema.COLUMNS WHERE TABLE_SCHEMA = ? ORDER BY TABLE_NAME, ORDINAL_POSITION`,
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

func (d *MysqlDialect) ForeignKeys(db *sql.DB, schema string) ([]ForeignKeyInfo, error) {
	rows, err := db.Query(
		`SELECT TABLE_NAME, COLUMN_NAME, REFERENCED_TABLE_NAME, REFERENCED_COLUMN_NAME FROM information_schema.KEY_COLUMN_USAGE WHERE TABLE_SCHEMA = ? AND REFERENCED_TABLE_NAME IS NOT NULL ORDER BY TABLE_NAME, ORDINAL_POSITION`,
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
