package schema

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"mdbport/internal/dialect"
)

// ScanResult holds everything a full-table scan produces: cast rows (values
// aligned with the table's column order), accumulated enum domains, and the
// set of columns that yielded at least one null.
type ScanResult struct {
	Rows      [][]any
	Enums     map[string][]string
	Nullables map[string]bool
}

// ScanTable reads every row of a table once, applies value-level casts, and
// accumulates enum domains and nullability. The whole table is held in
// memory because enum domains and nullability verdicts are only final after
// the last row has been seen.
func ScanTable(db *sql.DB, d dialect.Dialect, t *Table, rules *Rules, onRow func()) (*ScanResult, error) {
	quoted := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		quoted[i] = d.Quote(c.Name)
	}
	query := fmt.Sprintf("SELECT %s FROM %s", strings.Join(quoted, ", "), d.Quote(t.Name))

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to scan table %s: %w", t.Name, err)
	}
	defer rows.Close()

	res := &ScanResult{
		Enums:     make(map[string][]string),
		Nullables: make(map[string]bool),
	}
	enumSets := make(map[string]map[string]struct{})

	for rows.Next() {
		values := make([]any, len(t.Columns))
		ptrs := make([]any, len(t.Columns))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, fmt.Errorf("failed to scan row (table: %s): %w", t.Name, err)
		}

		for i, c := range t.Columns {
			v := CastValue(c, values[i])
			values[i] = v
			if v == nil {
				res.Nullables[c.Name] = true
				continue
			}
			if rules.IsEnum(c.Name) {
				if s, ok := v.(string); ok {
					set := enumSets[c.Name]
					if set == nil {
						set = make(map[string]struct{})
						enumSets[c.Name] = set
					}
					set[s] = struct{}{}
				}
			}
		}

		res.Rows = append(res.Rows, values)
		if onRow != nil {
			onRow()
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating rows (table: %s): %w", t.Name, err)
	}

	// Sorted domains keep downstream output deterministic.
	for col, set := range enumSets {
		vals := make([]string, 0, len(set))
		for v := range set {
			vals = append(vals, v)
		}
		sort.Strings(vals)
		res.Enums[col] = vals
	}

	return res, nil
}

// Apply finalizes the scan verdicts onto the table metadata: columns with an
// observed enum domain narrow to TypeEnum, and a column is nullable iff at
// least one scanned row produced null for it.
func (res *ScanResult) Apply(t *Table) {
	for _, c := range t.Columns {
		if vals, ok := res.Enums[c.Name]; ok && len(vals) > 0 {
			c.Type = TypeEnum
			c.Enum = vals
		}
		c.Nullable = res.Nullables[c.Name] && !c.IsPK
	}
}

// CastValue converts one raw driver value to the column's refined type.
// A value that cannot be cast yields nil rather than aborting the row.
func CastValue(c *Column, value any) any {
	if value == nil {
		return nil
	}
	if b, ok := value.([]byte); ok {
		value = string(b)
	}

	switch c.Type {
	case TypeDate, TypeDateTime:
		switch v := value.(type) {
		case time.Time:
			return v
		case string:
			if ts, ok := parseTime(v); ok {
				return ts
			}
			return nil
		default:
			return nil
		}
	case TypeBool:
		return truthy(value)
	default:
		return value
	}
}

var timeLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	time.RFC3339,
}

func parseTime(s string) (time.Time, bool) {
	for _, layout := range timeLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts, true
		}
	}
	return time.Time{}, false
}

// truthy coerces the representations legacy drivers use for booleans.
// Access-style sources report true as -1.
func truthy(value any) bool {
	switch v := value.(type) {
	case bool:
		return v
	case int64:
		return v != 0
	case int:
		return v != 0
	case float64:
		return v != 0
	case string:
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "", "0", "false", "no", "n", "f":
			return false
		default:
			return true
		}
	default:
		return true
	}
}
