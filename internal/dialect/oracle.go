package dialect

import (
	"database/sql"
	"strings"
)

type OracleDialect struct{}

func (d *OracleDialect) Name() string { return "oracle" }

func (d *OracleDialect) DefaultSchema() string { return "" } // current user schema

func (d *OracleDialect) Quote(ident string) string { return quoteAnsi(ident) }

func (d *OracleDialect) owner(db *sql.DB, schema string) (string, error) {
	if schema != "" {
		return strings.ToUpper(schema), nil
	}
	var user string
	err := db.QueryRow(`SELECT USER FROM DUAL`).Scan(&user)
	return user, err
}

func (d *OracleDialect) Tables(db *sql.DB, schema string) ([]string, error) {
	owner, err := d.owner(db, schema)
	if err != nil {
		return nil, err
	}
	return queryStrings(db,
		`SELECT table_name FROM all_tables WHERE owner = :1 ORDER BY table_name`,
		owner)
}

func (d *OracleDialect) Columns(db *sql.DB, schema string) ([]ColumnInfo, error) {
	owner, err := d.owner(db, schema)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(`
		SELECT c.table_name, c.column_name, c.data_type, c.nullable,
			CASE WHEN pk.column_name IS NOT NULL THEN 'PRI' ELSE '' END
		FROM all_tab_columns c
		LEFT JOIN (
			SELECT acc.table_name, acc.column_name
			FROM all_constraints ac
			JOIN all_cons_columns acc
				ON ac.constraint_name = acc.constraint_name AND ac.owner = acc.owner
			WHERE ac.constraint_type = 'P' AND ac.owner = :1
		) pk ON c.table_name = pk.table_name AND c.column_name = pk.column_name
		WHERE c.owner = :2
		ORDER BY c.table_name, c.column_id`,
		owner, owner)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cols []ColumnInfo
	for rows.Next() {
		var table, name, dataType, nullable, key string
		if err := rows.Scan(&table, &name, &dataType, &nullable, &key); err != nil {
			return nil, err
		}
		cols = append(cols, ColumnInfo{
			Table:    table,
			Name:     name,
			DataType: dataType,
			Nullable: nullable == "Y",
			IsPK:     key == "PRI",
		})
	}
	return cols, rows.Err()
}

func (d *OracleDialect) ForeignKeys(db *sql.DB, schema string) ([]ForeignKeyInfo, error) {
	owner, err := d.owner(db, schema)
	if err != nil {
		return nil, err
	}
	rows, err := db.Query(`
		SELECT src.table_name, src.column_name, ref.table_name, ref.column_name
		FROM all_constraints ac
		JOIN all_cons_columns src
			ON ac.constraint_name = src.constraint_name AND ac.owner = src.owner
		JOIN all_cons_columns ref
			ON ac.r_constraint_name = ref.constraint_name AND ac.r_owner = ref.owner
			AND src.position = ref.position
		WHERE ac.constraint_type = 'R' AND ac.owner = :1
		ORDER BY src.table_name, src.position`,
		owner)
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
