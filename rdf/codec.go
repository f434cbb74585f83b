package rdf

import (
	"bytes"
	"io"

	"github.com/geoknoesis/ontomap/errors"
)

// Options configures Decode and Encode.
type Options struct {
	// Prefixes are used to abbreviate IRIs on output. When empty, the graph's
	// own prefix bindings are used.
	Prefixes []Prefix
	// Terms are JSON-LD term definitions (name -> full IRI) written into the
	// @context and used as keys for exactly matching predicates.
	Terms []Prefix
	// Indent enables pretty-printing. Only the JSON-LD encoder honors it.
	Indent string
	// Base is the base IRI for resolving relative references on input.
	Base string
	// ExpandContext is applied to JSON-LD input that lacks its own @context.
	ExpandContext map[string]any
}

// Option mutates Options.
type Option func(*Options)

// WithPrefixes sets output prefixes.
func WithPrefixes(prefixes ...Prefix) Option {
	return func(o *Options) { o.Prefixes = append(o.Prefixes, prefixes...) }
}

// WithTerms sets JSON-LD term definitions.
func WithTerms(terms ...Prefix) Option {
	return func(o *Options) { o.Terms = append(o.Terms, terms...) }
}

// WithIndent enables JSON-LD pretty-printing with the given indent string.
func WithIndent(indent string) Option {
	return func(o *Options) { o.Indent = indent }
}

// WithBase sets the base IRI used while decoding.
func WithBase(base string) Option {
	return func(o *Options) { o.Base = base }
}

// WithExpandContext sets a JSON-LD context applied while decoding.
func WithExpandContext(ctx map[string]any) Option {
	return func(o *Options) { o.ExpandContext = ctx }
}

func buildOptions(opts []Option) Options {
	var o Options
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

// Decode parses r in the given format into a new Graph.
func Decode(r io.Reader, format Format, opts ...Option) (*Graph, error) {
	o := buildOptions(opts)
	g := NewGraph()
	var err error
	switch format {
	case FormatJSONLD:
		err = decodeJSONLD(r, g, o)
	case FormatTurtle:
		err = decodeTurtle(r, g, o)
	case FormatRDFXML:
		err = decodeRDFXML(r, g, o)
	case FormatNTriples:
		err = decodeNTriples(r, g)
	default:
		return nil, errors.Wrapf(ErrUnsupportedFormat, "format %q", format)
	}
	if err != nil {
		return nil, err
	}
	return g, nil
}

// DecodeAuto detects the format of r and decodes it.
func DecodeAuto(r io.Reader, opts ...Option) (*Graph, Format, error) {
	format, full, ok := DetectReader(r)
	if !ok {
		return nil, "", ErrUndetectedFormat
	}
	g, err := Decode(full, format, opts...)
	return g, format, err
}

// Encode writes g to w in the given format.
func Encode(w io.Writer, g *Graph, format Format, opts ...Option) error {
	o := buildOptions(opts)
	if len(o.Prefixes) == 0 {
		o.Prefixes = g.Prefixes()
	}
	switch format {
	case FormatJSONLD:
		return encodeJSONLD(w, g, o)
	case FormatTurtle:
		return encodeTurtle(w, g, o)
	case FormatRDFXML:
		return encodeRDFXML(w, g, o)
	case FormatNTriples:
		return encodeNTriples(w, g)
	default:
		return errors.Wrapf(ErrUnsupportedFormat, "format %q", format)
	}
}

// EncodeString is Encode into a string.
func EncodeString(g *Graph, format Format, opts ...Option) (string, error) {
	var buf bytes.Buffer
	if err := Encode(&buf, g, format, opts...); err != nil {
		return "", err
	}
	return buf.String(), nil
}
