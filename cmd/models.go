package cmd

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"mdbport/internal/gen"
	"mdbport/internal/schema"
)

var modelsStdout bool

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Generate typed models without migrating data",
	Long: `Runs the reflect-and-scan phase (the scan is still required: enum
domains and nullability are derived from the data) and emits the generated
model source, but does not create a target store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		rules := loadRules()

		db, d, schemaName, located, err := openSource()
		if err != nil {
			return err
		}
		defer db.Close()

		fmt.Printf("Processing: %s (%s)\n", located, d.Name())

		sch, _, _, err := reflectAndScan(db, d, schemaName, rules, nil, false)
		if err != nil {
			return err
		}

		schema.Augment(sch, rules)
		ordered, cycle := schema.Order(sch)
		if len(cycle) > 0 {
			log.Printf("Advisory: circular foreign keys among [%s]; cycle ordered by name",
				strings.Join(cycle, ", "))
		}

		source := gen.Render(ordered, gen.Options{
			Package:        viper.GetString("target.package"),
			HubTable:       rules.HubTable,
			IdentityColumn: rules.IdentityColumn,
		})

		if modelsStdout {
			fmt.Print(source)
			return nil
		}

		targetDir := viper.GetString("target.dir")
		if err := os.MkdirAll(targetDir, 0o755); err != nil {
			return fmt.Errorf("failed to create target directory: %w", err)
		}
		modelPath := filepath.Join(targetDir, viper.GetString("target.models"))
		if err := os.WriteFile(modelPath, []byte(source), 0o644); err != nil {
			return fmt.Errorf("failed to write models: %w", err)
		}
		log.Printf("Generated models: %s", modelPath)
		return nil
	},
}

func init() {
	RootCmd.AddCommand(modelsCmd)

	modelsCmd.Flags().BoolVar(&modelsStdout, "stdout", false, "Print the generated source instead of writing a file")
}
