package cmd

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mdbport/internal/dialect"
	"mdbport/internal/engine"
	"mdbport/internal/gen"
	"mdbport/internal/schema"
)

var (
	overwrite    bool
	tablesFilter []string
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Migrate the source database to SQLite and generate models",
	RunE: func(cmd *cobra.Command, args []string) error {
		rules := loadRules()

		db, d, schemaName, located, err := openSource()
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Printf("Processing: %s (%s)\n", located, d.Name())
		start := time.Now()

		sch, data, skipped, err := reflectAndScan(db, d, schemaName, rules, tablesFilter, true)
		if err != nil {
			return err
		}

		schema.Augment(sch, rules)
		ordered, cycle := schema.Order(sch)
		if len(cycle) > 0 {
			log.Printf("Advisory: circular foreign keys among [%s]; cycle ordered by name",
				strings.Join(cycle, ", "))
		}

		targetDir := viper.GetString("target.dir")
		if err := os.MkdirAll(targetDir, 0o755); err != nil {
			return fmt.Errorf("failed to create target directory: %w", err)
		}

		// Refuse up front so a conflict leaves every existing artifact
		// untouched, models file included.
		storePath := filepath.Join(targetDir, viper.GetString("target.store"))
		doOverwrite := overwrite || viper.GetBool("target.overwrite")
		if _, err := os.Stat(storePath); err == nil && !doOverwrite {
			return fmt.Errorf("%w: %s (use --overwrite to replace)", engine.ErrTargetExists, storePath)
		}

		// Model generation (schema + relationships only; no row data)
		modelPath := filepath.Join(targetDir, viper.GetString("target.models"))
		source := gen.Render(ordered, gen.Options{
			Package:        viper.GetString("target.package"),
			HubTable:       rules.HubTable,
			IdentityColumn: rules.IdentityColumn,
		})
		if err := os.WriteFile(modelPath, []byte(source), 0o644); err != nil {
			return fmt.Errorf("failed to write models: %w", err)
		}
		log.Printf("Generated models: %s", modelPath)

		// Schema + data migration
		total := 0
		for _, rows := range data {
			total += len(rows)
		}
		uiprogress.Start()
		bar := uiprogress.AddBar(max(total, 1)).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string { return "Loading:    " })

		loader := &engine.Loader{
			TargetPath:     storePath,
			Overwrite:      doOverwrite,
			BatchSize:      viper.GetInt("settings.batch_size"),
			IdentityColumn: rules.IdentityColumn,
		}
		results, err := loader.Run(ordered, data, func() { bar.Incr() })
		uiprogress.Stop()
		if err != nil {
			return err
		}
		log.Printf("Saved: %s", loader.TargetPath)

		printReport(append(results, skipped...))
		log.Printf("Migrated database in %s", time.Since(start))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(migrateCmd)

	migrateCmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace an existing target store")
	migrateCmd.Flags().StringSliceVar(&tablesFilter, "tables", nil, "Restrict the migration to the named tables")
	migrateCmd.Flags().Int("batch-size", 0, "Rows per insert batch (overrides config)")

	viper.BindPFlag("target.overwrite", migrateCmd.Flags().Lookup("overwrite"))
	viper.BindPFlag("settings.batch_size", migrateCmd.Flags().Lookup("batch-size"))
}

// reflectAndScan runs the single reflect-and-scan phase: refined metadata
// plus one full pass over every table's rows. A table whose extraction fails
// is reported and skipped; its schema still migrates. A non-empty `only`
// list restricts the run to the named tables.
func reflectAndScan(db *sql.DB, d dialect.Dialect, schemaName string, rules *schema.Rules, only []string, progress bool) (*schema.Schema, map[string][][]any, []schema.MigrationResult, error) {
	log.Println("Reflecting schema...")
	sch, err := schema.Reflect(db, d, schemaName, rules)
	if err != nil {
		return nil, nil, nil, err
	}
	if len(only) > 0 {
		filterTables(sch, only)
	}

	var bar *uiprogress.Bar
	if progress {
		uiprogress.Start()
		bar = uiprogress.AddBar(max(len(sch.Tables), 1)).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string { return "Scanning:   " })
	}

	data := make(map[string][][]any)
	var skipped []schema.MigrationResult
	for _, t := range sch.Tables {
		res, err := schema.ScanTable(db, d, t, rules, nil)
		if err != nil {
			log.Printf("Warning: failed to extract %s, skipping its data: %v", t.Name, err)
			skipped = append(skipped, schema.MigrationResult{
				TableName: t.Name,
				Status:    "SKIPPED",
				ErrorMsg:  err.Error(),
			})
		} else {
			res.Apply(t)
			data[t.Name] = res.Rows
		}
		if bar != nil {
			bar.Incr()
		}
	}
	if progress {
		uiprogress.Stop()
	}

	return sch, data, skipped, nil
}

// filterTables narrows the schema to the requested tables, warning about
// names that do not exist in the source.
func filterTables(sch *schema.Schema, only []string) {
	var kept []*schema.Table
	seen := make(map[string]bool)
	for _, name := range only {
		t := sch.Table(name)
		if t == nil {
			log.Printf("Warning: requested table %s not found in source, ignoring", name)
			continue
		}
		if !seen[t.Name] {
			seen[t.Name] = true
			kept = append(kept, t)
		}
	}
	sch.Tables = kept
}

func printReport(results []schema.MigrationResult) {
	fmt.Println("\nMigration Report (Dependency Order):")
	total := 0
	for i, r := range results {
		icon := "+"
		if r.Status != "OK" {
			icon = "!"
		}
		fmt.Printf("[%s] [%02d/%02d] %-30s : %d rows - %s\n",
			icon, i+1, len(results), r.TableName, r.Rows, r.Status)
		if r.ErrorMsg != "" {
			fmt.Printf("    - Error: %s\n", r.ErrorMsg)
		}
		total += r.Rows
	}
	fmt.Println("--------------------------------------------------")
	fmt.Printf("Total Rows Migrated: %d\n", total)
}
