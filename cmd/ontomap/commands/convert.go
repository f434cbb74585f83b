package commands

import (
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/logger"
	"github.com/geoknoesis/ontomap/rdf"
)

type convertOptions struct {
	from string
	to   string
	out  string
	base string
}

// NewConvertCmd returns the convert command.
func NewConvertCmd() *cobra.Command {
	var opts convertOptions
	cmd := &cobra.Command{
		Use:   "convert <file>",
		Short: "Re-encode an RDF document in another format",
		Long: `Decode an RDF document and write it in another format.

The input format comes from --from, then the file extension, then the
content. Use - to read stdin.

Examples:
  ontomap convert people.ttl --to jsonld
  cat people.nt | ontomap convert - --to turtle --out people.ttl`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConvert(cmd, args[0], opts)
		},
	}
	cmd.Flags().StringVar(&opts.from, "from", "", "Input format (default: detect)")
	cmd.Flags().StringVar(&opts.to, "to", "", "Output format (default: serialize.format)")
	cmd.Flags().StringVarP(&opts.out, "out", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&opts.base, "base", "", "Base IRI for relative references")
	return cmd
}

func runConvert(cmd *cobra.Command, input string, opts convertOptions) error {
	to, err := outputFormat(opts.to)
	if err != nil {
		return err
	}
	from := rdf.Format("")
	if opts.from != "" {
		if from, err = rdf.LookupFormat(opts.from); err != nil {
			return err
		}
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
		g, err = rdf.Decode(r, from, rdf.WithBase(opts.base))
	} else {
		g, from, err = rdf.DecodeAuto(r, rdf.WithBase(opts.base))
	}
	if err != nil {
		return errors.Wrapf(err, "decode %s", input)
	}
	logger.Logger.Infow("Decoded document",
		logger.FieldFormat, string(from),
		logger.FieldCount, g.Len())

	if opts.out == "" {
		return encodeGraph(cmd.OutOrStdout(), g, to)
	}
	f, err := os.Create(opts.out)
	if err != nil {
		return errors.Wrapf(err, "create %s", opts.out)
	}
	if err := encodeGraph(f, g, to); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return errors.Wrapf(err, "close %s", opts.out)
	}
	return nil
}

func encodeGraph(w io.Writer, g *rdf.Graph, to rdf.Format) error {
	if err := rdf.Encode(w, g, to, rdf.WithIndent(current.Serialize.Indent)); err != nil {
		return errors.Wrapf(err, "encode %s", to)
	}
	return nil
}
