package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/ontology"
)

type loadOptions struct {
	classes string
	class   string
	to      string
	limit   int
	strict  bool
}

// NewLoadCmd returns the load command.
func NewLoadCmd() *cobra.Command {
	var opts loadOptions
	cmd := &cobra.Command{
		Use:   "load <file>",
		Short: "Validate subjects against classes declared in YAML",
		Long: `Materialize every subject of a class from an RDF document, validate it
and write the valid instances back out. Skipped subjects are reported on
stderr.

Examples:
  ontomap load people.ttl --classes classes.yaml --class Person
  ontomap load people.ttl --classes classes.yaml --class Person --to nt --strict`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.classes, "classes", "", "YAML file declaring namespaces and classes")
	cmd.Flags().StringVar(&opts.class, "class", "", "Class to load")
	cmd.Flags().StringVar(&opts.to, "to", "", "Output format (default: serialize.format)")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Maximum number of instances (0 = all)")
	cmd.Flags().BoolVar(&opts.strict, "strict", false, "Fail when any subject is skipped")
	_ = cmd.MarkFlagRequired("classes")
	_ = cmd.MarkFlagRequired("class")
	return cmd
}

func runLoad(cmd *cobra.Command, input string, opts loadOptions) error {
	class, err := classFromSpecs(opts.classes, opts.class)
	if err != nil {
		return err
	}
	to, err := outputFormat(opts.to)
	if err != nil {
		return err
	}

	var skipped []*ontology.SubjectError
	insts, err := ontology.LoadFile(cmd.Context(), input, class,
		ontology.WithLimit(opts.limit),
		ontology.WithSkipHandler(func(se *ontology.SubjectError) { skipped = append(skipped, se) }))
	if err != nil {
		return err
	}
	for _, se := range skipped {
		fmt.Fprintf(cmd.ErrOrStderr(), "skipped %s\n", se.Error())
	}
	if opts.strict && len(skipped) > 0 {
		return errors.Newf("%d of %d subjects failed validation", len(skipped), len(skipped)+len(insts))
	}

	ontology.SortInstances(insts)
	return ontology.SerializeAll(cmd.OutOrStdout(), insts, to)
}
