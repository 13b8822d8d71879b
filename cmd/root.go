package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile    string
	sourceFlag string
	targetFlag string
)

var RootCmd = &cobra.Command{
	Use:   "mdbport",
	Short: "A legacy database migrator and model generator",
	Long: `
                _ _                     _
  _ __ ___   __| | |__  _ __   ___  _ __| |_
 | '_ ' _ \ / _' | '_ \| '_ \ / _ \| '__| __|
 | | | | | | (_| | |_) | |_) | (_) | |  | |_
 |_| |_| |_|\__,_|_.__/| .__/ \___/|_|   \__|
                       |_|

MDBPORT - migrates a legacy desktop database into a single-file
SQLite store and generates typed Go models for the refined schema.
`,
}

func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	RootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./mdbport.yaml)")
	RootCmd.PersistentFlags().StringVar(&sourceFlag, "source", "", "source database file or directory")
	RootCmd.PersistentFlags().StringVar(&targetFlag, "target", "", "target directory for generated artifacts")

	viper.BindPFlag("source.path", RootCmd.PersistentFlags().Lookup("source"))
	viper.BindPFlag("target.dir", RootCmd.PersistentFlags().Lookup("target"))

	// Fallbacks if no config/flag
	viper.SetDefault("source.path", ".")
	viper.SetDefault("source.driver", "sqlite")
	viper.SetDefault("source.keyword", "dpm")
	viper.SetDefault("target.dir", "target")
	viper.SetDefault("target.store", "dpm.sqlite")
	viper.SetDefault("target.models", "models.go")
	viper.SetDefault("target.package", "dpm")
	viper.SetDefault("settings.batch_size", 20000)
}

// initConfig reads in config file and ENV variables if set.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		// 1. Executable Directory (Priority 1)
		if ex, err := os.Executable(); err == nil {
			viper.AddConfigPath(filepath.Dir(ex))
		}
		// 2. Current Directory (Priority 2)
		viper.AddConfigPath(".")

		viper.SetConfigName("mdbport")
		viper.SetConfigType("yaml")
	}

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}
