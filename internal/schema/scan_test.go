package schema_test

import (
	"database/sql"
	"reflect"
	"testing"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	_ "modernc.org/sqlite"

	"mdbport/internal/dialect"
	"mdbport/internal/schema"
)

func setupSource(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open sqlite: %v", err)
	}
	db.SetMaxOpenConns(1)
	if err := db.Ping(); err != nil {
		t.Fatalf("failed to ping sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func seedMessages(t *testing.T, db *sql.DB) {
	t.Helper()
	stmts := []string{
		`CREATE TABLE "Message" (
			"MessageID" INTEGER PRIMARY KEY,
			"Severity" TEXT,
			"Label" TEXT,
			"FromDate" TEXT,
			"IsActive" INTEGER,
			"ParentMessageID" INTEGER REFERENCES "Message" ("MessageID")
		)`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			t.Fatalf("failed to create fixture: %v", err)
		}
	}

	gofakeit.Seed(42)
	rows := []struct {
		severity, date string
		active         int
		parent         any
	}{
		{"ERROR", "2024-01-31", -1, nil}, // Access-style true
		{"WARNING", "2024-02-01", 0, 1},
		{"ERROR", "not-a-date", 1, nil}, // cast failure must yield null
	}
	for i, r := range rows {
		_, err := db.Exec(
			`INSERT INTO "Message" VALUES (?, ?, ?, ?, ?, ?)`,
			i+1, r.severity, gofakeit.Word(), r.date, r.active, r.parent)
		if err != nil {
			t.Fatalf("failed to seed row: %v", err)
		}
	}
}

func reflectMessages(t *testing.T, db *sql.DB) (*schema.Schema, *schema.Table) {
	t.Helper()
	rules := schema.DefaultRules()
	sch, err := schema.Reflect(db, dialect.Get("sqlite"), "main", rules)
	if err != nil {
		t.Fatalf("Reflect failed: %v", err)
	}
	tbl := sch.Table("Message")
	if tbl == nil {
		t.Fatal("Message table not reflected")
	}
	return sch, tbl
}

func TestReflect_SQLite(t *testing.T) {
	db := setupSource(t)
	seedMessages(t, db)
	_, tbl := reflectMessages(t, db)

	if c := tbl.Column("MessageID"); c == nil || !c.IsPK || c.Type != schema.TypeInteger {
		t.Errorf("MessageID not reflected as integer PK: %+v", c)
	}
	if c := tbl.Column("FromDate"); c.Type != schema.TypeDate {
		t.Errorf("FromDate refined to %s, want date", c.Type)
	}
	if c := tbl.Column("IsActive"); c.Type != schema.TypeBool {
		t.Errorf("IsActive refined to %s, want bool", c.Type)
	}

	fks := tbl.ForeignKeysFor("ParentMessageID")
	if len(fks) != 1 || fks[0].RefTable != "Message" || fks[0].RefColumn != "MessageID" {
		t.Fatalf("self FK not reflected: %+v", fks)
	}
}

func TestScanTable_EnumsNullabilityAndCasts(t *testing.T) {
	db := setupSource(t)
	seedMessages(t, db)
	_, tbl := reflectMessages(t, db)
	rules := schema.DefaultRules()

	res, err := schema.ScanTable(db, dialect.Get("sqlite"), tbl, rules, nil)
	if err != nil {
		t.Fatalf("ScanTable failed: %v", err)
	}
	if len(res.Rows) != 3 {
		t.Fatalf("expected 3 rows, got %d", len(res.Rows))
	}

	// Enum domain is the sorted union of all non-null string values.
	want := []string{"ERROR", "WARNING"}
	if !reflect.DeepEqual(res.Enums["Severity"], want) {
		t.Errorf("Severity domain = %v, want %v", res.Enums["Severity"], want)
	}
	// Label matches no enum pattern.
	if _, ok := res.Enums["Label"]; ok {
		t.Error("Label must not accumulate an enum domain")
	}

	// Nullable iff at least one scanned row produced null.
	if !res.Nullables["ParentMessageID"] {
		t.Error("ParentMessageID yielded nulls but is not in the nullable set")
	}
	if !res.Nullables["FromDate"] {
		t.Error("FromDate had a failed cast; it must be in the nullable set")
	}
	for _, col := range []string{"MessageID", "Severity", "Label", "IsActive"} {
		if res.Nullables[col] {
			t.Errorf("%s never yielded null but is marked nullable", col)
		}
	}

	// Value-level casts.
	dateIdx, activeIdx := columnIndex(tbl, "FromDate"), columnIndex(tbl, "IsActive")
	if ts, ok := res.Rows[0][dateIdx].(time.Time); !ok || !ts.Equal(time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("FromDate not cast to date: %v", res.Rows[0][dateIdx])
	}
	if res.Rows[2][dateIdx] != nil {
		t.Errorf("unparseable date must cast to null, got %v", res.Rows[2][dateIdx])
	}
	if v, ok := res.Rows[0][activeIdx].(bool); !ok || !v {
		t.Errorf("IsActive -1 must cast to true, got %v", res.Rows[0][activeIdx])
	}
	if v, ok := res.Rows[1][activeIdx].(bool); !ok || v {
		t.Errorf("IsActive 0 must cast to false, got %v", res.Rows[1][activeIdx])
	}
}

func TestScanTable_Idempotent(t *testing.T) {
	db := setupSource(t)
	seedMessages(t, db)
	_, tbl := reflectMessages(t, db)
	rules := schema.DefaultRules()

	first, err := schema.ScanTable(db, dialect.Get("sqlite"), tbl, rules, nil)
	if err != nil {
		t.Fatalf("first scan failed: %v", err)
	}
	second, err := schema.ScanTable(db, dialect.Get("sqlite"), tbl, rules, nil)
	if err != nil {
		t.Fatalf("second scan failed: %v", err)
	}

	if !reflect.DeepEqual(first.Enums, second.Enums) {
		t.Errorf("enum domains differ across scans: %v vs %v", first.Enums, second.Enums)
	}
	if !reflect.DeepEqual(first.Nullables, second.Nullables) {
		t.Errorf("nullable sets differ across scans: %v vs %v", first.Nullables, second.Nullables)
	}
}

func TestScanResult_Apply(t *testing.T) {
	db := setupSource(t)
	seedMessages(t, db)
	_, tbl := reflectMessages(t, db)
	rules := schema.DefaultRules()

	res, err := schema.ScanTable(db, dialect.Get("sqlite"), tbl, rules, nil)
	if err != nil {
		t.Fatalf("ScanTable failed: %v", err)
	}
	res.Apply(tbl)

	sev := tbl.Column("Severity")
	if sev.Type != schema.TypeEnum || !reflect.DeepEqual(sev.Enum, []string{"ERROR", "WARNING"}) {
		t.Errorf("Severity not narrowed to its observed domain: %s %v", sev.Type, sev.Enum)
	}
	if !tbl.Column("ParentMessageID").Nullable {
		t.Error("ParentMessageID must be nullable after apply")
	}
	if tbl.Column("Label").Nullable {
		t.Error("Label had no nulls and must not be nullable after apply")
	}
}

func columnIndex(t *schema.Table, name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}
