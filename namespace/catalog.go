package namespace

import (
	"io"
	"sort"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/rdf"
)

// Well-known namespace IRIs.
const (
	OWL      = "http://www.w3.org/2002/07/owl#"
	RDF      = rdf.RDFNamespace
	RDFS     = rdf.RDFSNamespace
	XSD      = rdf.XSDNamespace
	DCTerms  = "http://purl.org/dc/terms/"
	SKOS     = "http://www.w3.org/2004/02/skos/core#"
	PROV     = "http://www.w3.org/ns/prov#"
	FOAF     = "http://xmlns.com/foaf/0.1/"
	Schema   = "https://schema.org/"
	DCAT     = "http://www.w3.org/ns/dcat#"
	SOSA     = "http://www.w3.org/ns/sosa/"
	SSN      = "http://www.w3.org/ns/ssn/"
	Time     = "http://www.w3.org/2006/time#"
	QUDT     = "http://qudt.org/schema/qudt/"
	Unit     = "http://qudt.org/vocab/unit/"
	M4I      = "http://w3id.org/nfdi4ing/metadata4ing#"
	PIMS     = "http://www.molmod.info/semantics/pims-ii.ttl#"
	CodeMeta = "https://codemeta.github.io/terms/"
)

// framework prefixes are present in every generated context.
var framework = []rdf.Prefix{
	{Name: "owl", IRI: OWL},
	{Name: "rdf", IRI: RDF},
	{Name: "rdfs", IRI: RDFS},
	{Name: "xsd", IRI: XSD},
	{Name: "dcterms", IRI: DCTerms},
	{Name: "skos", IRI: SKOS},
}

var builtin = []rdf.Prefix{
	{Name: "prov", IRI: PROV},
	{Name: "foaf", IRI: FOAF},
	{Name: "schema", IRI: Schema},
	{Name: "dcat", IRI: DCAT},
	{Name: "sosa", IRI: SOSA},
	{Name: "ssn", IRI: SSN},
	{Name: "time", IRI: Time},
	{Name: "qudt", IRI: QUDT},
	{Name: "unit", IRI: Unit},
	{Name: "m4i", IRI: M4I},
	{Name: "pims", IRI: PIMS},
	{Name: "codemeta", IRI: CodeMeta},
}

// Global catalog
var (
	catalogMu sync.RWMutex
	catalog   = newCatalog()
)

func newCatalog() *Table {
	t := NewTable(framework...)
	for _, p := range builtin {
		t.Set(p.Name, p.IRI)
	}
	return t
}

// Framework returns a fresh table with the framework prefixes.
func Framework() *Table {
	return NewTable(framework...)
}

// Lookup returns the catalog IRI for prefix.
func Lookup(prefix string) (string, bool) {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	return catalog.Get(prefix)
}

// Register adds prefix to the catalog. Registering the same binding twice is
// a no-op; rebinding a prefix to a different IRI fails.
func Register(prefix, iri string) error {
	if prefix == "" || iri == "" {
		return errors.Wrap(errors.ErrInvalidArgument, "namespace: prefix and IRI are required")
	}
	catalogMu.Lock()
	defer catalogMu.Unlock()
	if existing, conflict := catalog.Add(prefix, iri); conflict {
		return errors.Newf("namespace: prefix %q already bound to %s", prefix, existing)
	}
	return nil
}

// Known returns every catalog binding sorted by prefix.
func Known() []rdf.Prefix {
	catalogMu.RLock()
	defer catalogMu.RUnlock()
	out := catalog.Prefixes()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// ResetCatalog drops runtime registrations. Intended for tests.
func ResetCatalog() {
	catalogMu.Lock()
	defer catalogMu.Unlock()
	catalog = newCatalog()
}

// catalogFile is the YAML layout accepted by LoadCatalog:
//
//	namespaces:
//	  ex: http://example.org/
//	  m4i: http://w3id.org/nfdi4ing/metadata4ing#
type catalogFile struct {
	Namespaces yaml.Node `yaml:"namespaces"`
}

// LoadCatalog registers every namespace listed in a YAML document and
// returns them in document order.
func LoadCatalog(r io.Reader) ([]rdf.Prefix, error) {
	var file catalogFile
	if err := yaml.NewDecoder(r).Decode(&file); err != nil {
		return nil, errors.Wrap(err, "namespace: decode catalog")
	}
	prefixes, err := DecodePrefixes(&file.Namespaces)
	if err != nil {
		return nil, err
	}
	for _, p := range prefixes {
		if err := Register(p.Name, p.IRI); err != nil {
			return nil, err
		}
	}
	return prefixes, nil
}

// DecodePrefixes reads a YAML mapping node of prefix: iri pairs, keeping
// document order.
func DecodePrefixes(node *yaml.Node) ([]rdf.Prefix, error) {
	if node == nil || node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, errors.Newf("namespace: expected a mapping at line %d", node.Line)
	}
	out := make([]rdf.Prefix, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		key, value := node.Content[i], node.Content[i+1]
		if value.Kind != yaml.ScalarNode {
			return nil, errors.Newf("namespace: prefix %q must map to an IRI (line %d)", key.Value, value.Line)
		}
		out = append(out, rdf.Prefix{Name: key.Value, IRI: value.Value})
	}
	return out, nil
}
