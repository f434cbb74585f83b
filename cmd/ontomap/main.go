package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/geoknoesis/ontomap/cmd/ontomap/commands"
	"github.com/geoknoesis/ontomap/config"
	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/logger"
)

var (
	configPath string
	jsonLogs   bool
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "ontomap",
	Short: "Map RDF documents to typed records and back",
	Long: `ontomap - object mapping for RDF documents.

Available commands:
  convert  - Re-encode an RDF document in another format
  query    - List the subjects of a type as generic records
  load     - Validate subjects against classes declared in YAML
  context  - Print the prefix context resolved for a class
  generate - Derive class declarations from an ontology

Configuration sources (in order of precedence):
1. Command line flags
2. Environment variables (ONTOMAP_* prefix)
3. --config file, or ./ontomap.yaml, or ~/.ontomap/ontomap.yaml
4. Default values

Examples:
  ontomap convert people.ttl --to jsonld
  ontomap query people.ttl --type foaf:Person --output yaml
  ontomap load people.ttl --classes classes.yaml --class Person --to ttl
  ontomap context --classes classes.yaml --class Person
  ontomap generate ontology.ttl --out classes.yaml`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if cmd.Flags().Changed("json-logs") {
			cfg.Log.JSON = jsonLogs
		}
		if cmd.Flags().Changed("log-level") {
			cfg.Log.Level = logLevel
		}
		if err := logger.Initialize(cfg.Log.JSON, cfg.Log.Level); err != nil {
			return errors.Wrap(err, "failed to initialize logger")
		}
		if _, err := cfg.Apply(); err != nil {
			return err
		}
		commands.UseConfig(cfg)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Configuration file (yaml, toml or json)")
	rootCmd.PersistentFlags().BoolVar(&jsonLogs, "json-logs", false, "Log as JSON")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")

	rootCmd.AddCommand(commands.NewConvertCmd())
	rootCmd.AddCommand(commands.NewQueryCmd())
	rootCmd.AddCommand(commands.NewLoadCmd())
	rootCmd.AddCommand(commands.NewContextCmd())
	rootCmd.AddCommand(commands.NewGenerateCmd())
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
