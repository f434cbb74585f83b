package commands

import (
	"github.com/spf13/cobra"

	"github.com/geoknoesis/ontomap/ontology"
)

type contextOptions struct {
	classes string
	class   string
	output  string
}

// NewContextCmd returns the context command.
func NewContextCmd() *cobra.Command {
	var opts contextOptions
	cmd := &cobra.Command{
		Use:   "context",
		Short: "Print the prefix context resolved for a class",
		Long: `Print the prefixes a serialization of the class would declare: the
framework prefixes, the class and its ancestors, then every nested class.

Examples:
  ontomap context --classes classes.yaml --class Person
  ontomap context --classes classes.yaml --class Person --output yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			class, err := classFromSpecs(opts.classes, opts.class)
			if err != nil {
				return err
			}
			table, err := ontology.ResolveContext(class)
			if err != nil {
				return err
			}
			return writeData(cmd.OutOrStdout(), map[string]any{"@context": table.Map()}, opts.output)
		},
	}
	cmd.Flags().StringVar(&opts.classes, "classes", "", "YAML file declaring namespaces and classes")
	cmd.Flags().StringVar(&opts.class, "class", "", "Class to resolve")
	cmd.Flags().StringVar(&opts.output, "output", "json", "Output format: json, yaml")
	_ = cmd.MarkFlagRequired("classes")
	_ = cmd.MarkFlagRequired("class")
	return cmd
}
