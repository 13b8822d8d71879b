package engine

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"

	"mdbport/internal/schema"
)

const defaultBatchSize = 20000

// SQLite bind-variable hard limit; multi-row batches are shrunk so a single
// statement never exceeds it.
const maxBindVars = 30000

// Loader creates the refined schema in an embedded SQLite store, bulk-loads
// the scanned rows, and atomically materializes the store as a single file.
type Loader struct {
	TargetPath string
	Overwrite  bool
	BatchSize  int

	// IdentityColumn substitutes as the declared key for tables without a
	// primary key.
	IdentityColumn string
}

// Run migrates the ordered tables and their scanned rows. A single table's
// insert failure is logged and skips that table's data only; the rest of the
// migration continues. Only store-creation failures are fatal.
func (l *Loader) Run(tables []*schema.Table, data map[string][][]any, onRow func()) ([]schema.MigrationResult, error) {
	if _, err := os.Stat(l.TargetPath); err == nil {
		if !l.Overwrite {
			return nil, fmt.Errorf("%w: %s (use --overwrite to replace)", ErrTargetExists, l.TargetPath)
		}
		log.Printf("Warning: target database %s already exists, overwriting", l.TargetPath)
	}

	// Build in memory and save-as at the end, so a mid-run failure never
	// leaves a half-written file under the final name.
	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		return nil, fmt.Errorf("failed to open staging store: %w", err)
	}
	defer db.Close()
	// Every pooled connection would otherwise get its own :memory: store.
	db.SetMaxOpenConns(1)

	for _, t := range tables {
		if _, err := db.Exec(CreateTableSQL(t, l.IdentityColumn)); err != nil {
			return nil, fmt.Errorf("failed to create table %s: %w", t.Name, err)
		}
	}

	var results []schema.MigrationResult
	for _, t := range tables {
		rows := data[t.Name]
		if len(rows) == 0 {
			continue
		}
		res := schema.MigrationResult{TableName: t.Name, Rows: len(rows), Status: "OK"}
		if err := l.loadTable(db, t, rows, onRow); err != nil {
			log.Printf("Warning: failed to load %s, skipping its data: %v", t.Name, err)
			res.Rows = 0
			res.Status = "SKIPPED"
			res.ErrorMsg = err.Error()
		}
		results = append(results, res)
	}

	if err := l.saveAs(db); err != nil {
		return nil, err
	}
	return results, nil
}

// loadTable bulk-inserts one table's rows inside a single table-scoped
// transaction, in multi-row batches.
func (l *Loader) loadTable(db *sql.DB, t *schema.Table, rows [][]any, onRow func()) error {
	batch := l.BatchSize
	if batch <= 0 {
		batch = defaultBatchSize
	}
	if max := maxBindVars / len(t.Columns); batch > max {
		batch = max
	}

	tx, err := db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for start := 0; start < len(rows); start += batch {
		end := start + batch
		if end > len(rows) {
			end = len(rows)
		}
		chunk := rows[start:end]

		args := make([]any, 0, len(chunk)*len(t.Columns))
		for _, row := range chunk {
			args = append(args, row...)
		}
		if _, err := tx.Exec(insertSQL(t, len(chunk)), args...); err != nil {
			return fmt.Errorf("failed to insert batch at row %d: %w", start, err)
		}
		if onRow != nil {
			for range chunk {
				onRow()
			}
		}
	}

	return tx.Commit()
}

// saveAs serializes the in-memory store into a staging file next to the
// target, then promotes it atomically.
func (l *Loader) saveAs(db *sql.DB) error {
	staging := l.TargetPath + ".staging"
	if err := os.Remove(staging); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to clear staging file: %w", err)
	}

	vacuum := fmt.Sprintf("VACUUM INTO '%s'", strings.ReplaceAll(staging, "'", "''"))
	if _, err := db.Exec(vacuum); err != nil {
		return fmt.Errorf("failed to save store: %w", err)
	}

	if err := os.Rename(staging, l.TargetPath); err != nil {
		return fmt.Errorf("failed to promote %s: %w", staging, err)
	}
	return nil
}
