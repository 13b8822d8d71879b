// Package gen synthesizes a typed Go model file from a migrated schema:
// one struct per table with typed fields, enum value types, and named
// relationship declarations derived from the foreign keys.
package gen

import (
	"fmt"
	"go/format"
	"strings"

	"github.com/jinzhu/inflection"

	"mdbport/internal/schema"
)

// Options controls model synthesis.
type Options struct {
	// Package is the package name of the generated file.
	Package string

	// HubTable is the high-fan-in table whose outgoing relationships are
	// emitted as deferred references: the emission order cannot guarantee
	// its targets are already defined at that point in the stream.
	HubTable string

	// IdentityColumn substitutes as a synthetic key for tables without a
	// declared primary key.
	IdentityColumn string
}

// Generator holds per-render naming state. A fresh Generator is built for
// every Render call so repeated runs on the same schema are byte-identical.
type Generator struct {
	opts      Options
	tables    []*schema.Table
	usedTypes map[string]bool
	structs   map[string]string // table name -> struct type name
	enums     map[string]string // "Table.Column" -> enum type name
	defined   map[string]bool   // struct names emitted so far
}

// Render emits the full model source for the given tables, in the given
// (dependency) order. The output is deterministic: identical schemas always
// produce byte-identical source.
func Render(tables []*schema.Table, opts Options) string {
	if opts.Package == "" {
		opts.Package = "models"
	}
	g := &Generator{
		opts:      opts,
		tables:    tables,
		usedTypes: make(map[string]bool),
		structs:   make(map[string]string),
		enums:     make(map[string]string),
		defined:   make(map[string]bool),
	}

	// Reserve struct names first so enum type names can never shadow them.
	for _, t := range g.tables {
		g.structs[t.Name] = uniqueName(g.usedTypes, exportIdent(t.Name))
	}
	for _, t := range g.tables {
		for _, c := range t.Columns {
			if c.Type == schema.TypeEnum {
				g.enums[t.Name+"."+c.Name] = g.enumTypeName(t, c)
			}
		}
	}

	var b strings.Builder
	b.WriteString("// Code generated by mdbport. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "// Package %s contains typed models for the migrated database.\n", opts.Package)
	fmt.Fprintf(&b, "package %s\n", opts.Package)
	if g.needsTime() {
		b.WriteString("\nimport \"time\"\n")
	}

	for _, t := range g.tables {
		g.writeEnums(&b, t)
		g.writeStruct(&b, t)
		g.defined[t.Name] = true
	}

	// gofmt the result so struct field columns align and downstream
	// formatting checks stay quiet on the generated file.
	src := b.String()
	formatted, err := format.Source([]byte(src))
	if err != nil {
		return src
	}
	return string(formatted)
}

func (g *Generator) needsTime() bool {
	for _, t := range g.tables {
		for _, c := range t.Columns {
			if c.Type == schema.TypeDate || c.Type == schema.TypeDateTime {
				return true
			}
		}
	}
	return false
}

// goType maps a refined column type to the generated field type; nullable
// columns widen to a pointer.
func (g *Generator) goType(t *schema.Table, c *schema.Column) string {
	var base string
	switch c.Type {
	case schema.TypeBool:
		base = "bool"
	case schema.TypeInteger:
		base = "int64"
	case schema.TypeFloat:
		base = "float64"
	case schema.TypeDate, schema.TypeDateTime:
		base = "time.Time"
	case schema.TypeEnum:
		base = g.enums[t.Name+"."+c.Name]
	default: // text, guid
		base = "string"
	}
	if c.Nullable {
		return "*" + base
	}
	return base
}

// writeEnums emits one named string type plus constants per enum column,
// narrowing the field to the value domain observed during the scan.
func (g *Generator) writeEnums(b *strings.Builder, t *schema.Table) {
	for _, c := range t.Columns {
		if c.Type != schema.TypeEnum {
			continue
		}
		typeName := g.enums[t.Name+"."+c.Name]
		fmt.Fprintf(b, "\n// %s is the value domain observed for %s.%s.\ntype %s string\n",
			typeName, t.Name, c.Name, typeName)

		b.WriteString("\nconst (\n")
		usedConsts := make(map[string]bool)
		for _, v := range c.Enum {
			fmt.Fprintf(b, "\t%s %s = %q\n", enumConstName(usedConsts, typeName, v), typeName, v)
		}
		b.WriteString(")\n")
	}
}

func (g *Generator) writeStruct(b *strings.Builder, t *schema.Table) {
	structName := g.structs[t.Name]
	keyed := len(t.KeyColumns(g.opts.IdentityColumn)) > 0

	fmt.Fprintf(b, "\n// %s is the model for the %q table.\n", structName, t.Name)
	fmt.Fprintf(b, "type %s struct {\n", structName)

	used := map[string]bool{}
	for _, c := range t.Columns {
		fmt.Fprintf(b, "\t%s %s %s\n",
			uniqueName(used, exportIdent(c.Name)), g.goType(t, c), g.columnTag(t, c))
	}

	// Keyless tables (no PK and no identity column) are plain row holders;
	// they get no relationship declarations.
	if keyed {
		g.writeRelations(b, t, used)
		g.writeReverseRelations(b, t, used)
	}

	b.WriteString("}\n")
}

func (g *Generator) columnTag(t *schema.Table, c *schema.Column) string {
	name := c.Name
	if c.IsPK || (len(t.PKColumns()) == 0 && c.Name == g.opts.IdentityColumn) {
		name += ",pk"
	}
	tag := fmt.Sprintf("db:%q", name)
	if fks := t.ForeignKeysFor(c.Name); len(fks) > 0 {
		tag += fmt.Sprintf(" ref:%q", fks[0].RefTable+"."+fks[0].RefColumn)
	}
	return "`" + tag + "`"
}

// writeRelations emits the owning-side relationship fields. Foreign keys
// whose stripped column name equals the referenced table go last, mirroring
// the split the hub table's circular references require.
func (g *Generator) writeRelations(b *strings.Builder, t *schema.Table, used map[string]bool) {
	var direct, keyToKey []*schema.ForeignKey
	for _, fk := range t.ForeignKeys {
		if stripRelName(fk.Column) == fk.RefTable {
			keyToKey = append(keyToKey, fk)
		} else {
			direct = append(direct, fk)
		}
	}
	if len(direct)+len(keyToKey) > 0 {
		b.WriteString("\n")
	}
	if t.Name == g.opts.HubTable {
		b.WriteString("\t// References are deferred: targets may not be defined yet at this\n\t// point of the emission order.\n")
	}
	for _, fk := range append(direct, keyToKey...) {
		g.writeRelation(b, t, fk, used)
	}
}

func (g *Generator) writeRelation(b *strings.Builder, t *schema.Table, fk *schema.ForeignKey, used map[string]bool) {
	name := uniqueName(used, g.relationName(t, fk))
	tag := fmt.Sprintf("fk:%q", fk.Column)
	if t.Name == g.opts.HubTable && fk.RefTable != t.Name && !g.defined[fk.RefTable] {
		tag = fmt.Sprintf("fk:%q ref:%q", fk.Column, fk.RefTable+"."+fk.RefColumn+",deferred")
	}
	fmt.Fprintf(b, "\t%s *%s `%s`\n", name, g.structs[fk.RefTable], tag)
}

// writeReverseRelations emits the referenced-side collections: one slice per
// incoming foreign key from a keyed table. Self-references and the hub
// table's reverse side (its fan-in covers most of the schema) are skipped.
func (g *Generator) writeReverseRelations(b *strings.Builder, t *schema.Table, used map[string]bool) {
	if t.Name == g.opts.HubTable {
		return
	}
	var wrote bool
	for _, src := range g.tables {
		if src.Name == t.Name || len(src.KeyColumns(g.opts.IdentityColumn)) == 0 {
			continue
		}
		for _, fk := range src.ForeignKeys {
			if fk.RefTable != t.Name {
				continue
			}
			if !wrote {
				b.WriteString("\n")
				wrote = true
			}
			name := uniqueName(used, inflection.Plural(g.structs[src.Name]))
			fmt.Fprintf(b, "\t%s []*%s `fk:%q`\n", name, g.structs[src.Name], src.Name+"."+fk.Column)
		}
	}
}
