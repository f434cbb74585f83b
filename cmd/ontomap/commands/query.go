package commands

import (
	"github.com/spf13/cobra"

	"github.com/geoknoesis/ontomap/ontology"
	"github.com/geoknoesis/ontomap/rdf"
)

type queryOptions struct {
	typeIRI string
	limit   int
	output  string
	from    string
}

// NewQueryCmd returns the query command.
func NewQueryCmd() *cobra.Command {
	var opts queryOptions
	cmd := &cobra.Command{
		Use:   "query <file>",
		Short: "List the subjects of a type as generic records",
		Long: `Print every subject of an rdf:type as a record keyed by predicate
local names. No class declaration is needed.

Examples:
  ontomap query people.ttl --type foaf:Person
  ontomap query people.jsonld --type http://example.org/Dog --output yaml --limit 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runQuery(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVarP(&opts.typeIRI, "type", "t", "", "Type IRI, absolute or compact")
	cmd.Flags().IntVar(&opts.limit, "limit", 0, "Maximum number of records (0 = all)")
	cmd.Flags().StringVar(&opts.output, "output", "json", "Output format: json, yaml")
	cmd.Flags().StringVar(&opts.from, "from", "", "Input format (default: detect)")
	_ = cmd.MarkFlagRequired("type")
	return cmd
}

func runQuery(cmd *cobra.Command, input string, opts queryOptions) error {
	typeIRI, err := expandType(opts.typeIRI)
	if err != nil {
		return err
	}
	loadOpts := []ontology.LoadOption{ontology.WithLimit(opts.limit)}
	if opts.from != "" {
		from, err := rdf.LookupFormat(opts.from)
		if err != nil {
			return err
		}
		loadOpts = append(loadOpts, ontology.WithFormat(from))
	} else if from, ok := rdf.FormatFromPath(input); ok {
		loadOpts = append(loadOpts, ontology.WithFormat(from))
	}

	r, err := openInput(input)
	if err != nil {
		return err
	}
	defer r.Close()

	records, err := ontology.QueryType(cmd.Context(), r, typeIRI, loadOpts...)
	if err != nil {
		return err
	}
	return writeData(cmd.OutOrStdout(), records, opts.output)
}
