package engine_test

import (
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	_ "modernc.org/sqlite"

	"mdbport/internal/engine"
	"mdbport/internal/schema"
)

func fixtureTables() (*schema.Table, *schema.Table) {
	category := &schema.Table{
		Name: "Category",
		Columns: []*schema.Column{
			{Name: "CategoryGUID", Type: schema.TypeGUID, IsPK: true},
			{Name: "CategoryType", Type: schema.TypeEnum, Enum: []string{"A", "B"}},
		},
	}
	item := &schema.Table{
		Name: "Item",
		Columns: []*schema.Column{
			{Name: "ItemID", Type: schema.TypeInteger, IsPK: true},
			{Name: "CategoryGUID", Type: schema.TypeGUID},
			{Name: "ParentItemID", Type: schema.TypeInteger, Nullable: true},
		},
		ForeignKeys: []*schema.ForeignKey{
			{Column: "CategoryGUID", RefTable: "Category", RefColumn: "CategoryGUID"},
			{Column: "ParentItemID", RefTable: "Item", RefColumn: "ItemID", Augmented: true},
		},
		Dependencies: []string{"Category"},
	}
	return category, item
}

func TestCreateTableSQL(t *testing.T) {
	category, item := fixtureTables()

	ddl := engine.CreateTableSQL(category, "RowGUID")
	for _, want := range []string{
		`"CategoryGUID" TEXT NOT NULL`,
		`CHECK ("CategoryType" IN ('A', 'B'))`,
		`PRIMARY KEY ("CategoryGUID")`,
		"WITHOUT ROWID",
	} {
		if !strings.Contains(ddl, want) {
			t.Errorf("category DDL missing %q:\n%s", want, ddl)
		}
	}

	ddl = engine.CreateTableSQL(item, "RowGUID")
	for _, want := range []string{
		`"ParentItemID" INTEGER,`,
		`FOREIGN KEY ("CategoryGUID") REFERENCES "Category" ("CategoryGUID")`,
		`FOREIGN KEY ("ParentItemID") REFERENCES "Item" ("ItemID")`,
	} {
		if !strings.Contains(ddl, want) {
			t.Errorf("item DDL missing %q:\n%s", want, ddl)
		}
	}

	keyless := &schema.Table{Name: "Note", Columns: []*schema.Column{
		{Name: "Body", Type: schema.TypeText, Nullable: true},
	}}
	if ddl := engine.CreateTableSQL(keyless, "RowGUID"); strings.Contains(ddl, "WITHOUT ROWID") {
		t.Errorf("keyless table must keep its rowid:\n%s", ddl)
	}

	// The identity column becomes the declared key when no PK exists.
	synthetic := &schema.Table{Name: "Member", Columns: []*schema.Column{
		{Name: "RowGUID", Type: schema.TypeGUID},
		{Name: "Label", Type: schema.TypeText, Nullable: true},
	}}
	ddl = engine.CreateTableSQL(synthetic, "RowGUID")
	if !strings.Contains(ddl, `PRIMARY KEY ("RowGUID")`) || !strings.Contains(ddl, "WITHOUT ROWID") {
		t.Errorf("identity column must act as the synthetic key:\n%s", ddl)
	}
}

func TestLoader_Run(t *testing.T) {
	category, item := fixtureTables()
	gofakeit.Seed(7)
	catGUID := gofakeit.UUID()

	data := map[string][][]any{
		"Category": {{catGUID, "A"}},
		"Item": {
			{int64(1), catGUID, nil},
			{int64(2), catGUID, int64(1)},
		},
	}

	target := filepath.Join(t.TempDir(), "dpm.sqlite")
	loader := &engine.Loader{TargetPath: target, BatchSize: 1}

	results, err := loader.Run([]*schema.Table{category, item}, data, nil)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	for _, r := range results {
		if r.Status != "OK" {
			t.Errorf("table %s: %s (%s)", r.TableName, r.Status, r.ErrorMsg)
		}
	}
	if _, err := os.Stat(target + ".staging"); !os.IsNotExist(err) {
		t.Error("staging file must not survive promotion")
	}

	db, err := sql.Open("sqlite", target)
	if err != nil {
		t.Fatalf("failed to open target: %v", err)
	}
	defer db.Close()

	for table, want := range map[string]int{"Category": 1, "Item": 2} {
		var n int
		if err := db.QueryRow(`SELECT COUNT(*) FROM "` + table + `"`).Scan(&n); err != nil {
			t.Fatalf("count %s: %v", table, err)
		}
		if n != want {
			t.Errorf("%s has %d rows, want %d", table, n, want)
		}
	}

	// Enum domain is enforced as a CHECK constraint.
	if _, err := db.Exec(`INSERT INTO "Category" VALUES ('x', 'C')`); err == nil {
		t.Error("value outside the enum domain must be rejected")
	}
	// Empirical NOT NULL is enforced.
	if _, err := db.Exec(`INSERT INTO "Category" VALUES (NULL, 'A')`); err == nil {
		t.Error("null in a never-null column must be rejected")
	}
}

func TestLoader_TargetConflict(t *testing.T) {
	category, item := fixtureTables()
	target := filepath.Join(t.TempDir(), "dpm.sqlite")
	if err := os.WriteFile(target, []byte("precious"), 0o644); err != nil {
		t.Fatal(err)
	}

	loader := &engine.Loader{TargetPath: target}
	_, err := loader.Run([]*schema.Table{category, item}, nil, nil)
	if !errors.Is(err, engine.ErrTargetExists) {
		t.Fatalf("expected ErrTargetExists, got %v", err)
	}
	content, _ := os.ReadFile(target)
	if string(content) != "precious" {
		t.Error("refusing must leave the existing file untouched")
	}

	loader.Overwrite = true
	if _, err := loader.Run([]*schema.Table{category, item}, nil, nil); err != nil {
		t.Fatalf("overwrite run failed: %v", err)
	}
	content, _ = os.ReadFile(target)
	if string(content) == "precious" {
		t.Error("overwrite must replace the existing file")
	}
}

func TestLoader_SkipsFailingTable(t *testing.T) {
	category, item := fixtureTables()

	data := map[string][][]any{
		"Category": {{nil, "A"}}, // violates NOT NULL: table data skipped
		"Item":     {{int64(1), "g", nil}},
	}

	target := filepath.Join(t.TempDir(), "dpm.sqlite")
	loader := &engine.Loader{TargetPath: target}
	results, err := loader.Run([]*schema.Table{category, item}, data, nil)
	if err != nil {
		t.Fatalf("a single table's failure must not fail the run: %v", err)
	}

	byName := map[string]schema.MigrationResult{}
	for _, r := range results {
		byName[r.TableName] = r
	}
	if byName["Category"].Status != "SKIPPED" || byName["Category"].ErrorMsg == "" {
		t.Errorf("Category should be skipped with context, got %+v", byName["Category"])
	}
	if byName["Item"].Status != "OK" {
		t.Errorf("Item should still migrate, got %+v", byName["Item"])
	}

	// The schema survives even when the data was skipped.
	db, err := sql.Open("sqlite", target)
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()
	var n int
	if err := db.QueryRow(`SELECT COUNT(*) FROM "Category"`).Scan(&n); err != nil {
		t.Fatalf("Category table missing from target: %v", err)
	}
	if n != 0 {
		t.Errorf("Category data should be empty, got %d rows", n)
	}
}
