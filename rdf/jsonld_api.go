package rdf

import (
	"io"
	"sort"
	"strings"

	"github.com/goccy/go-json"
	"github.com/piprate/json-gold/ld"

	"github.com/geoknoesis/ontomap/errors"
)

// decodeJSONLD expands the document with json-gold, then reads the
// resulting N-Quads back through the N-Triples parser.
func decodeJSONLD(r io.Reader, g *Graph, o Options) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return &ParseError{Format: string(FormatJSONLD), Err: err}
	}
	bindContextPrefixes(g, doc)
	if o.ExpandContext != nil {
		bindContextPrefixes(g, map[string]interface{}{"@context": o.ExpandContext})
	}

	nquads, err := jsonldToNQuads(doc, o)
	if err != nil {
		return &ParseError{Format: string(FormatJSONLD), Err: err}
	}
	return readNTLines(strings.NewReader(nquads), g, true)
}

func jsonldToNQuads(doc interface{}, o Options) (string, error) {
	proc := ld.NewJsonLdProcessor()
	result, err := proc.ToRDF(doc, newJSONGoldOptions(o))
	if err != nil {
		return "", err
	}
	dataset, ok := result.(*ld.RDFDataset)
	if !ok {
		return "", errors.Newf("jsonld: unexpected ToRDF result %T", result)
	}
	serializer := &ld.NQuadRDFSerializer{}
	serialized, err := serializer.Serialize(dataset)
	if err != nil {
		return "", err
	}
	nquads, ok := serialized.(string)
	if !ok {
		return "", errors.Newf("jsonld: unexpected N-Quads result %T", serialized)
	}
	return nquads, nil
}

func newJSONGoldOptions(o Options) *ld.JsonLdOptions {
	goldOpts := ld.NewJsonLdOptions(o.Base)
	if o.ExpandContext != nil {
		goldOpts.ExpandContext = o.ExpandContext
	}
	goldOpts.DocumentLoader = ld.NewDefaultDocumentLoader(nil)
	return goldOpts
}

// bindContextPrefixes records namespace-like string entries of a top-level
// @context as graph prefixes.
func bindContextPrefixes(g *Graph, doc interface{}) {
	obj, ok := doc.(map[string]interface{})
	if !ok {
		return
	}
	contexts, ok := obj["@context"].([]interface{})
	if !ok {
		contexts = []interface{}{obj["@context"]}
	}
	for _, c := range contexts {
		ctx, ok := c.(map[string]interface{})
		if !ok {
			continue
		}
		keys := make([]string, 0, len(ctx))
		for k := range ctx {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			iri, ok := ctx[k].(string)
			if !ok || strings.HasPrefix(k, "@") {
				continue
			}
			if strings.HasSuffix(iri, "/") || strings.HasSuffix(iri, "#") {
				g.BindPrefix(k, iri)
			}
		}
	}
}

// CanonicalNQuads normalizes a JSON-LD document with URDNA2015, so two
// documents describing the same graph compare equal regardless of blank node
// labels and key order.
func CanonicalNQuads(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	var doc interface{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return "", &ParseError{Format: string(FormatJSONLD), Err: err}
	}
	proc := ld.NewJsonLdProcessor()
	opts := ld.NewJsonLdOptions("")
	opts.Algorithm = ld.AlgorithmURDNA2015
	opts.Format = "application/n-quads"
	opts.DocumentLoader = ld.NewDefaultDocumentLoader(nil)
	normalized, err := proc.Normalize(doc, opts)
	if err != nil {
		return "", errors.Wrap(err, "jsonld: normalize")
	}
	out, ok := normalized.(string)
	if !ok {
		return "", errors.Newf("jsonld: unexpected Normalize result %T", normalized)
	}
	return out, nil
}
