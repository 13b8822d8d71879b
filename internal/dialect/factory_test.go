package dialect

import "testing"

func TestGet(t *testing.T) {
	cases := []struct {
		driver string
		want   string
	}{
		{"postgres", "postgres"},
		{"mysql", "mysql"},
		{"mssql", "mssql"},
		{"sqlserver", "mssql"},
		{"oracle", "oracle"},
		{"sqlite", "sqlite"},
		{"", "sqlite"}, // unknown drivers fall back to the file-based default
	}
	for _, c := range cases {
		if got := Get(c.driver).Name(); got != c.want {
			t.Errorf("Get(%q).Name() = %q, want %q", c.driver, got, c.want)
		}
	}
}

func TestQuote(t *testing.T) {
	if got := Get("mysql").Quote("Item"); got != "`Item`" {
		t.Errorf("mysql quote = %s", got)
	}
	if got := Get("mssql").Quote("Item"); got != "[Item]" {
		t.Errorf("mssql quote = %s", got)
	}
	if got := Get("sqlite").Quote(`A"B`); got != `"A""B"` {
		t.Errorf("sqlite quote must escape embedded quotes, got %s", got)
	}
}
