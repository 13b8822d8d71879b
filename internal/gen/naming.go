package gen

import (
	"fmt"
	"strings"
	"unicode"

	"mdbport/internal/schema"
)

// SelfRelation is the reserved name for a relationship whose foreign key
// points back into its own table; deriving a name from the column would loop.
const SelfRelation = "Self"

// exportIdent turns a database identifier into an exported Go identifier.
func exportIdent(name string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range name {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			continue
		}
		if upperNext {
			r = unicode.ToUpper(r)
			upperNext = false
		}
		b.WriteRune(r)
	}
	out := b.String()
	if out == "" || unicode.IsDigit(rune(out[0])) {
		out = "X" + out
	}
	return out
}

// stripRelName strips the known identifier suffixes from a linking column
// name to get the candidate relationship name: "CategoryGUID" -> "Category",
// "ConceptVID" -> "ConceptVersion", "ParentItemID" -> "ParentItem".
func stripRelName(column string) string {
	name := strings.TrimSuffix(column, "GUID")
	name = strings.ReplaceAll(name, "VID", "Version")
	return strings.TrimSuffix(name, "ID")
}

// relationName derives the relationship field name for one foreign key.
func (g *Generator) relationName(t *schema.Table, fk *schema.ForeignKey) string {
	// A key pointing back into its own table gets the reserved token; any
	// derived name would either collide with the owning table or recurse.
	if fk.RefTable == t.Name {
		return SelfRelation
	}

	name := stripRelName(fk.Column)

	// The identity column references the hub table; name the relationship
	// after both so it reads as "row-level <hub>".
	if fk.Column == g.opts.IdentityColumn {
		name = "Row" + fk.RefTable
	}

	// Key-to-key one-to-one relationships: the candidate is the owning
	// table itself, so use the referenced table instead.
	if name == t.Name {
		name = fk.RefTable
	}

	// Stripping changed nothing: the candidate would shadow the column
	// field. Combine with the referenced table's name, unless it is
	// already contained in the candidate.
	if name == fk.Column {
		if strings.Contains(name, fk.RefTable) {
			name = "Related" + name
		} else {
			name += fk.RefTable
		}
	}

	return exportIdent(name)
}

// uniqueName resolves residual collisions deterministically by appending a
// positional suffix, never silently overwriting a previous declaration.
func uniqueName(used map[string]bool, name string) string {
	if !used[name] {
		used[name] = true
		return name
	}
	for i := 2; ; i++ {
		candidate := fmt.Sprintf("%s%d", name, i)
		if !used[candidate] {
			used[candidate] = true
			return candidate
		}
	}
}

// enumTypeName derives the generated Go type name for an enum column. The
// table name prefixes the column unless the column already starts with it.
func (g *Generator) enumTypeName(t *schema.Table, c *schema.Column) string {
	table := exportIdent(t.Name)
	column := exportIdent(c.Name)
	name := table + column
	if strings.HasPrefix(column, table) {
		name = column
	}
	return uniqueName(g.usedTypes, name)
}

// enumConstName derives a constant name for one enum value.
func enumConstName(used map[string]bool, typeName, value string) string {
	var b strings.Builder
	upperNext := true
	for _, r := range value {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upperNext = true
			continue
		}
		if upperNext {
			r = unicode.ToUpper(r)
		} else {
			r = unicode.ToLower(r)
		}
		upperNext = false
		b.WriteRune(r)
	}
	suffix := b.String()
	if suffix == "" || unicode.IsDigit(rune(suffix[0])) {
		suffix = "V" + suffix
	}
	return uniqueName(used, typeName+suffix)
}
