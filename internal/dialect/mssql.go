package dialect

import "database/sql"

// MSSQLDialect introspects SQL Server sources, including legacy desktop
// databases upsized into SQL Server.
type MSSQLDialect struct{}

func (d *MSSQLDialect) Name() string { return "mssql" }

func (d *MSSQLDialect) DefaultSchema() string { return "dbo" }

func (d *MSSQLDialect) Quote(ident string) string { return "[" + ident + "]" }

func (d *MSSQLDialect) Tables(db *sql.DB, schema string) ([]string, error) {
	return queryStrings(db,
		`SELECT TABLE_NAME FROM INFORMATION_SCHEMA.TABLES WHERE TABLE_SCHEMA = @p1 AND TABLE_TYPE = 'BASE TABLE' ORDER BY TABLE_NAME`,
		schema)
}

func (d *MSSQLDialect) Columns(db *sql.DB, schema string) ([]ColumnInfo, error) {
	rows, err := db.Query(`
		SELECT
			c.TABLE_NAME,
			c.COLUMN_NAME,
			c.DATA_TYPE,
			c.IS_NULLABLE,
			CASE WHEN pk.COLUMN_NAME IS NOT NULL THEN 'PRI' ELSE '' END
		FROM INFORMATION_SCHEMA.COLUMNS c
		LEFT JOIN (
			SELECT kcu.TABLE_NAME, kcu.COLUMN_NAME
			FROM INFORMATION_SCHEMA.TABLE_CONSTRAINTS tc
			JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE kcu
				ON tc.CONSTRAINT_NAME = kcu.CONSTRAINT_NAME
			WHERE tc.CONSTRAINT_TYPE = 'PRIMARY KEY' AND tc.TABLE_SCHEMA = @p1
		) pk ON c.TABLE_NAME = pk.TABLE_NAME AND c.COLUMN_NAME = pk.COLUMN_NAME
		WHERE c.TABLE_SCHEMA = @p1
		ORDER BY c.TABLE_NAME, c.ORDINAL_POSITION`,
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

func (d *MSSQLDialect) ForeignKeys(db *sql.DB, schema string) ([]ForeignKeyInfo, error) {
	rows, err := db.Query(`
		SELECT KCU1.TABLE_NAME, KCU1.COLUMN_NAME, KCU2.TABLE_NAME, KCU2.COLUMN_NAME
		FROM INFORMATION_SCHEMA.REFERENTIAL_CONSTRAINTS RC
		JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE KCU1
			ON RC.CONSTRAINT_NAME = KCU1.CONSTRAINT_NAME
		JOIN INFORMATION_SCHEMA.KEY_COLUMN_USAGE KCU2
			ON RC.UNIQUE_CONSTRAINT_NAME = KCU2.CONSTRAINT_NAME
			AND KCU1.ORDINAL_POSITION = KCU2.ORDINAL_POSITION
		WHERE KCU1.TABLE_SCHEMA = @p1
		ORDER BY KCU1.TABLE_NAME, KCU1.ORDINAL_POSITION`,
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
