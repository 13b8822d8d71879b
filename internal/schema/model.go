package schema

import "strings"

// RefinedType is the logical column type after naming-heuristic correction,
// distinct from the raw physical type reported by the source driver.
type RefinedType int

const (
	TypeText RefinedType = iota
	TypeGUID
	TypeDate
	TypeDateTime
	TypeBool
	TypeEnum
	TypeInteger
	TypeFloat
)

var refinedTypeNames = [...]string{
	TypeText:     "text",
	TypeGUID:     "guid",
	TypeDate:     "date",
	TypeDateTime: "datetime",
	TypeBool:     "bool",
	TypeEnum:     "enum",
	TypeInteger:  "integer",
	TypeFloat:    "float",
}

func (t RefinedType) String() string {
	if int(t) >= 0 && int(t) < len(refinedTypeNames) {
		return refinedTypeNames[t]
	}
	return "text"
}

// ParseRefinedType maps a config type name to a RefinedType.
func ParseRefinedType(s string) (RefinedType, bool) {
	for i, name := range refinedTypeNames {
		if name == strings.ToLower(s) {
			return RefinedType(i), true
		}
	}
	return TypeText, false
}

type Column struct {
	Name     string
	RawType  string // physical type as reported by the source driver
	Type     RefinedType
	Nullable bool // empirically derived by the scanner
	IsPK     bool
	Enum     []string // sorted distinct values; set once after a full scan
}

type ForeignKey struct {
	Column    string
	RefTable  string
	RefColumn string
	Augmented bool // injected from naming convention, not declared by the source
}

type Table struct {
	Name         string
	Columns      []*Column
	ForeignKeys  []*ForeignKey
	Dependencies []string
}

// Column returns the named column, or nil.
func (t *Table) Column(name string) *Column {
	for _, c := range t.Columns {
		if c.Name == name {
			return c
		}
	}
	return nil
}

// ColumnNames returns column names in declaration order.
func (t *Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// ForeignKeysFor returns all foreign keys declared on the given column.
func (t *Table) ForeignKeysFor(column string) []*ForeignKey {
	var fks []*ForeignKey
	for _, fk := range t.ForeignKeys {
		if fk.Column == column {
			fks = append(fks, fk)
		}
	}
	return fks
}

// PKColumns returns the primary key columns in declaration order.
func (t *Table) PKColumns() []*Column {
	var pks []*Column
	for _, c := range t.Columns {
		if c.IsPK {
			pks = append(pks, c)
		}
	}
	return pks
}

// KeyColumns returns the effective key of the table: the declared primary
// key, or the designated identity column as a synthetic key when no PK
// exists.
func (t *Table) KeyColumns(identityColumn string) []*Column {
	if pks := t.PKColumns(); len(pks) > 0 {
		return pks
	}
	if c := t.Column(identityColumn); c != nil {
		return []*Column{c}
	}
	return nil
}

// Schema is the full set of tables plus the dependency graph derived from
// their foreign keys. The graph may contain cycles.
type Schema struct {
	Tables []*Table
}

// Table returns the named table (exact match first, then case-insensitive
// for sources with unreliable identifier casing), or nil.
func (s *Schema) Table(name string) *Table {
	for _, t := range s.Tables {
		if t.Name == name {
			return t
		}
	}
	for _, t := range s.Tables {
		if strings.EqualFold(t.Name, name) {
			return t
		}
	}
	return nil
}

// MigrationResult reports the outcome of one table's copy.
type MigrationResult struct {
	TableName string
	Rows      int
	Status    string
	ErrorMsg  string
}
