package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/logger"
	"github.com/geoknoesis/ontomap/ontology"
	"github.com/geoknoesis/ontomap/rdf"
)

type generateOptions struct {
	from string
	out  string
}

// NewGenerateCmd returns the generate command.
func NewGenerateCmd() *cobra.Command {
	var opts generateOptions
	cmd := &cobra.Command{
		Use:   "generate <ontology>",
		Short: "Derive class declarations from an OWL or RDFS ontology",
		Long: `Read the owl:Class and rdfs:Class declarations of an ontology and write
them in the YAML layout that --classes accepts. Restrictions and property
domains become fields; a property capped at one value is single-valued,
anything else becomes a list.

Examples:
  ontomap generate dcat3.ttl --out classes.yaml
  ontomap load catalog.ttl --classes classes.yaml --class Dataset`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGenerate(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.from, "from", "", "Input format (default: detect)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output file (default: stdout)")
	return cmd
}

func runGenerate(cmd *cobra.Command, input string, opts generateOptions) error {
	from := rdf.Format("")
	if opts.from != "" {
		f, err := rdf.LookupFormat(opts.from)
		if err != nil {
			return err
		}
		from = f
	} else if f, ok := rdf.FormatFromPath(input); ok {
		from = f
	}

	r, err := openInput(input)
	if err != nil {
		return err
	}
	defer r.Close()

	var g *rdf.Graph
	if from != "" {
		g, err = rdf.Decode(r, from)
	} else {
		g, _, err = rdf.DecodeAuto(r)
	}
	if err != nil {
		return errors.Wrapf(err, "decode %s", input)
	}

	if opts.out == "" {
		return generate(cmd.OutOrStdout(), g)
	}
	f, err := os.Create(opts.out)
	if err != nil {
		return errors.Wrapf(err, "create %s", opts.out)
	}
	if err := generate(f, g); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", opts.out)
	}
	return nil
}

func generate(w io.Writer, g *rdf.Graph) error {
	specs, err := ontology.GenerateClassSpecs(w, g)
	if err != nil {
		return err
	}
	logger.Logger.Infow("Generated classes", logger.FieldCount, len(specs))
	return nil
}
