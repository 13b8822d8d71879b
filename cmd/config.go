package cmd

import (
	"database/sql"
	"fmt"
	"log"

	"github.com/spf13/viper"

	"mdbport/internal/dialect"
	"mdbport/internal/engine"
	"mdbport/internal/schema"
)

// loadRules builds the conversion heuristics: built-in defaults, selectively
// replaced by config file sections when present.
func loadRules() *schema.Rules {
	rules := schema.DefaultRules()

	if viper.IsSet("patterns") {
		if err := viper.UnmarshalKey("patterns", &rules.Patterns); err != nil {
			log.Printf("Warning: failed to parse patterns config, using defaults: %v", err)
		}
	}
	if viper.IsSet("overrides") {
		overrides := map[string]string{}
		if err := viper.UnmarshalKey("overrides", &overrides); err != nil {
			log.Printf("Warning: failed to parse overrides config, using defaults: %v", err)
		} else {
			rules.Overrides = overrides
		}
	}
	if viper.IsSet("foreign_keys") {
		fks := map[string]string{}
		if err := viper.UnmarshalKey("foreign_keys", &fks); err != nil {
			log.Printf("Warning: failed to parse foreign_keys config, using defaults: %v", err)
		} else {
			rules.ForeignKeys = fks
		}
	}
	if v := viper.GetString("hub_table"); v != "" {
		rules.HubTable = v
	}
	if v := viper.GetString("identity_column"); v != "" {
		rules.IdentityColumn = v
	}

	return rules
}

// openSource locates and opens the source database read-only where the
// driver supports it, and resolves the schema namespace to introspect.
func openSource() (*sql.DB, dialect.Dialect, string, string, error) {
	driver := viper.GetString("source.driver")
	d := dialect.Get(driver)

	dsn := viper.GetString("source.dsn")
	located := dsn
	if d.Name() == "sqlite" {
		path, err := engine.Locate(viper.GetString("source.path"), viper.GetString("source.keyword"))
		if err != nil {
			return nil, nil, "", "", err
		}
		located = path
		dsn = "file:" + path + "?mode=ro"
	} else if dsn == "" {
		return nil, nil, "", "", fmt.Errorf("source.dsn is required for driver %q (via config)", driver)
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, nil, "", "", fmt.Errorf("failed to open source db: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, nil, "", "", fmt.Errorf("failed to connect to source db: %w", err)
	}

	schemaName := viper.GetString("source.schema")
	if schemaName == "" {
		schemaName = d.DefaultSchema()
	}
	if schemaName == "" && d.Name() == "mysql" {
		if err := db.QueryRow("SELECT DATABASE()").Scan(&schemaName); err != nil {
			db.Close()
			return nil, nil, "", "", fmt.Errorf("failed to get database name: %w", err)
		}
	}

	return db, d, schemaName, located, nil
}
