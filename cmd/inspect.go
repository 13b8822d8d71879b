package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"mdbport/internal/schema"
)

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Print the refined schema and migration order without writing anything",
	RunE: func(cmd *cobra.Command, args []string) error {
		rules := loadRules()

		db, d, schemaName, located, err := openSource()
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Printf("Processing: %s (%s)\n", located, d.Name())

		log.Println("Reflecting schema...")
		sch, err := schema.Reflect(db, d, schemaName, rules)
		if err != nil {
			return err
		}
		schema.Augment(sch, rules)
		ordered, cycle := schema.Order(sch)

		log.Println("[SIMULATION] Dry-Run Mode: No data will be scanned or written.")
		fmt.Println("\nMigration Order:")
		for i, t := range ordered {
			fmt.Printf("[%02d] %s (Dependencies: %v)\n", i+1, t.Name, t.Dependencies)
			for _, c := range t.Columns {
				marker := ""
				if c.IsPK {
					marker = " PK"
				}
				if fks := t.ForeignKeysFor(c.Name); len(fks) > 0 {
					marker += fmt.Sprintf(" FK->%s.%s", fks[0].RefTable, fks[0].RefColumn)
					if fks[0].Augmented {
						marker += " (augmented)"
					}
				}
				fmt.Printf("      %-30s %s -> %s%s\n", c.Name, c.RawType, c.Type, marker)
			}
		}
		if len(cycle) > 0 {
			fmt.Printf("\nAdvisory: circular foreign keys among [%s]; cycle ordered by name\n",
				strings.Join(cycle, ", "))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(inspectCmd)
}
