package ontology

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/rdf"
)

const catalogOntology = `@prefix : <http://example.org/onto#> .
@prefix onto: <http://example.org/onto#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .

onto:Resource a owl:Class ;
    rdfs:label "Resource" .

onto:Dataset a owl:Class ;
    rdfs:comment "A collection of data." ;
    rdfs:subClassOf onto:Resource ;
    rdfs:subClassOf [ a owl:Restriction ;
        owl:onProperty onto:title ;
        owl:cardinality "1"^^xsd:nonNegativeInteger ] ;
    rdfs:subClassOf [ a owl:Restriction ;
        owl:onProperty onto:distribution ;
        owl:minCardinality "1"^^xsd:nonNegativeInteger ] .

onto:Distribution a owl:Class .
onto:Agent a owl:Class .
onto:Person a owl:Class ;
    rdfs:subClassOf onto:Agent .

onto:title a owl:DatatypeProperty ;
    rdfs:range xsd:string .

onto:distribution a owl:ObjectProperty ;
    rdfs:domain onto:Dataset ;
    rdfs:range onto:Distribution .

onto:issued a owl:DatatypeProperty, owl:FunctionalProperty ;
    rdfs:domain onto:Resource ;
    rdfs:range xsd:dateTime .

onto:byteSize a owl:DatatypeProperty, owl:FunctionalProperty ;
    rdfs:domain onto:Distribution ;
    rdfs:range xsd:nonNegativeInteger .

onto:creator a owl:ObjectProperty ;
    rdfs:domain [ owl:unionOf ( onto:Dataset onto:Distribution ) ] ;
    rdfs:range [ owl:unionOf ( onto:Agent onto:Person ) ] .
`

const onto = "http://example.org/onto#"

func parseOntology(t *testing.T, doc string) *rdf.Graph {
	t.Helper()
	g, err := rdf.Decode(strings.NewReader(doc), rdf.FormatTurtle)
	require.NoError(t, err)
	return g
}

func specByName(specs []ClassSpec, name string) (ClassSpec, int) {
	for i, s := range specs {
		if s.Name == name {
			return s, i
		}
	}
	return ClassSpec{}, -1
}

func TestClassSpecsFromGraph(t *testing.T) {
	specs, err := ClassSpecsFromGraph(parseOntology(t, catalogOntology))
	require.NoError(t, err)
	require.Len(t, specs, 5)

	dataset, di := specByName(specs, "Dataset")
	_, ri := specByName(specs, "Resource")
	require.GreaterOrEqual(t, ri, 0)
	assert.Less(t, ri, di, "parents come first")

	assert.Equal(t, onto+"Dataset", dataset.IRI)
	assert.Equal(t, "Resource", dataset.Parent)
	assert.Equal(t, []string{onto + "Resource"}, dataset.Superclasses)
	assert.Equal(t, "A collection of data.", dataset.Description)
	assert.Equal(t, []FieldSpec{
		{Name: "title", Predicate: onto + "title", Type: "string", Required: true, Single: true},
		{Name: "distribution", Predicate: onto + "distribution", Type: "list<Distribution>", Required: true},
		{Name: "creator", Predicate: onto + "creator", Type: "list<Agent|Person>"},
	}, dataset.Fields)

	resource, _ := specByName(specs, "Resource")
	assert.Equal(t, "Resource", resource.Description)
	assert.Equal(t, []string{onto + "Dataset"}, resource.Subclasses)
	assert.Equal(t, []FieldSpec{
		{Name: "issued", Predicate: onto + "issued", Type: "datetime", Single: true},
	}, resource.Fields)

	distribution, _ := specByName(specs, "Distribution")
	assert.Empty(t, distribution.Parent)
	assert.Equal(t, []FieldSpec{
		{Name: "byteSize", Predicate: onto + "byteSize", Type: "int", Single: true},
		{Name: "creator", Predicate: onto + "creator", Type: "list<Agent|Person>"},
	}, distribution.Fields)

	person, _ := specByName(specs, "Person")
	assert.Equal(t, "Agent", person.Parent)
}

func TestGeneratedSpecsRegister(t *testing.T) {
	var buf bytes.Buffer
	_, err := GenerateClassSpecs(&buf, parseOntology(t, catalogOntology))
	require.NoError(t, err)

	var file struct {
		Namespaces map[string]string `yaml:"namespaces"`
	}
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &file))
	assert.Equal(t, map[string]string{"onto": onto}, file.Namespaces)
	assert.Contains(t, buf.String(), "type: onto:Dataset")

	reg := NewRegistry()
	classes, err := reg.LoadClassSpecs(&buf)
	require.NoError(t, err)
	require.Len(t, classes, 5)

	dataset, ok := reg.Lookup("Dataset")
	require.True(t, ok)
	assert.Equal(t, onto+"Dataset", dataset.TypeIRI())
	assert.Equal(t, "Resource", dataset.Parent().Name())
	issued, ok := dataset.Field("issued")
	require.True(t, ok, "inherited from Resource")
	assert.Equal(t, KindDateTime, issued.Type.Kind())
	creator, ok := dataset.Field("creator")
	require.True(t, ok)
	assert.Equal(t, "list<Agent|Person>", creator.Type.String())

	d, err := New(dataset, Values{
		"title":        "Weather",
		"distribution": []any{Values{"byteSize": 2048}},
	})
	require.NoError(t, err)
	dists, _ := d.Get("distribution")
	require.Len(t, dists, 1)

	_, err = New(dataset, Values{"distribution": []any{Values{}}})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "title", verr.Issues[0].Path)
}

func TestClassSpecsFromGraphIntersectionAndDataRange(t *testing.T) {
	const doc = `@prefix ex: <http://example.org/> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .
@prefix xsd: <http://www.w3.org/2001/XMLSchema#> .

ex:Sensor a rdfs:Class ;
    owl:equivalentClass [ owl:intersectionOf (
        [ a owl:Restriction ; owl:onProperty ex:reading ;
          owl:maxQualifiedCardinality "1"^^xsd:nonNegativeInteger ;
          owl:onDataRange [ owl:onDatatype xsd:double ] ]
        [ a owl:Restriction ; owl:onProperty ex:tag ; owl:someValuesFrom xsd:string ]
    ) ] .
`
	specs, err := ClassSpecsFromGraph(parseOntology(t, doc))
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, []FieldSpec{
		{Name: "reading", Predicate: "http://example.org/reading", Type: "float", Single: true},
		{Name: "tag", Predicate: "http://example.org/tag", Type: "list<string>", Required: true},
	}, specs[0].Fields)
}

func TestWriteClassSpecsAllocatesPrefixes(t *testing.T) {
	specs := []ClassSpec{{
		Name: "Sample",
		IRI:  "http://lab.example.org/terms#Sample",
		Fields: []FieldSpec{
			{Name: "mass", Predicate: "http://lab.example.org/terms#mass", Type: "float"},
		},
	}}
	var buf bytes.Buffer
	require.NoError(t, WriteClassSpecs(&buf, specs, []rdf.Prefix{{Name: "foaf", IRI: "http://elsewhere.example/"}}))
	out := buf.String()
	assert.Contains(t, out, "ns0: http://lab.example.org/terms#")
	assert.Contains(t, out, "type: ns0:Sample")
	assert.NotContains(t, out, "foaf")

	reg := NewRegistry()
	classes, err := reg.LoadClassSpecs(strings.NewReader(out))
	require.NoError(t, err)
	mass, ok := classes[0].Field("mass")
	require.True(t, ok)
	assert.Equal(t, "http://lab.example.org/terms#mass", mass.IRI())
}

func TestClassSpecsFromGraphWithoutClasses(t *testing.T) {
	_, err := ClassSpecsFromGraph(parseOntology(t, peopleTurtle))
	assert.True(t, errors.Is(err, errors.ErrNotFound))

	_, err = ClassSpecsFromGraph(nil)
	assert.True(t, errors.Is(err, errors.ErrInvalidArgument))
}
