package dialect

import (
	"database/sql"
	"strings"
)

// queryStrings runs a single-column query and collects the results.
func queryStrings(db *sql.DB, query string, args ...any) ([]string, error) {
	rows, err := db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var s string
		if err := rows.Scan(&s); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// quoteAnsi wraps an identifier in double quotes, escaping embedded quotes.
func quoteAnsi(ident string) string {
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}
