package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

const peopleTTL = `@prefix foaf: <http://xmlns.com/foaf/0.1/> .
@prefix ex: <http://example.org/> .

ex:alice a foaf:Person ;
    foaf:name "Alice" ;
    foaf:age 42 .

ex:bob a foaf:Person ;
    foaf:name "Bob" ;
    foaf:age "unknown" .
`

const classesYAML = `namespaces:
  foaf: http://xmlns.com/foaf/0.1/
  ex: http://example.org/
classes:
  - name: Person
    type: foaf:Person
    fields:
      - {name: name, predicate: foaf:name, type: string, required: true}
      - {name: age, predicate: foaf:age, type: int}
      - {name: address, predicate: ex:address, type: Address}
  - name: Address
    type: ex:Address
    fields:
      - {name: city, predicate: ex:city, type: string}
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func run(t *testing.T, cmd *cobra.Command, args ...string) (string, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func TestConvert(t *testing.T) {
	input := writeTemp(t, "people.ttl", peopleTTL)

	out, _, err := run(t, NewConvertCmd(), input, "--to", "nt")
	require.NoError(t, err)
	assert.Contains(t, out, `<http://example.org/alice> <http://xmlns.com/foaf/0.1/name> "Alice" .`)
	assert.Len(t, strings.Split(strings.TrimSpace(out), "\n"), 6)

	target := filepath.Join(t.TempDir(), "people.jsonld")
	_, _, err = run(t, NewConvertCmd(), input, "--to", "jsonld", "--out", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Contains(t, doc, "@graph")

	_, _, err = run(t, NewConvertCmd(), input, "--to", "csv")
	assert.Error(t, err)
}

func TestConvertOutFileMatchesStdout(t *testing.T) {
	input := writeTemp(t, "people.ttl", peopleTTL)

	stdout, _, err := run(t, NewConvertCmd(), input, "--to", "nt")
	require.NoError(t, err)

	target := filepath.Join(t.TempDir(), "people.nt")
	_, _, err = run(t, NewConvertCmd(), input, "--to", "nt", "--out", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, stdout, string(data))

	missing := filepath.Join(t.TempDir(), "no-such-dir", "people.nt")
	_, _, err = run(t, NewConvertCmd(), input, "--to", "nt", "--out", missing)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "create")
}

func TestQuery(t *testing.T) {
	input := writeTemp(t, "people.ttl", peopleTTL)

	out, _, err := run(t, NewQueryCmd(), input, "--type", "foaf:Person")
	require.NoError(t, err)
	var records []map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &records))
	require.Len(t, records, 2)
	assert.Equal(t, "http://example.org/alice", records[0]["id"])
	assert.Equal(t, "Alice", records[0]["name"])
	assert.Equal(t, "unknown", records[1]["age"])

	out, _, err = run(t, NewQueryCmd(), input, "--type", "http://xmlns.com/foaf/0.1/Person", "--output", "yaml", "--limit", "1")
	require.NoError(t, err)
	var fromYAML []map[string]any
	require.NoError(t, yaml.Unmarshal([]byte(out), &fromYAML))
	require.Len(t, fromYAML, 1)
	assert.Equal(t, 42, fromYAML[0]["age"])

	_, _, err = run(t, NewQueryCmd(), input, "--type", "nope:Person")
	assert.Error(t, err)
	_, _, err = run(t, NewQueryCmd(), input)
	assert.Error(t, err, "--type is required")
}

func TestLoad(t *testing.T) {
	input := writeTemp(t, "people.ttl", peopleTTL)
	classes := writeTemp(t, "classes.yaml", classesYAML)

	out, stderr, err := run(t, NewLoadCmd(), input, "--classes", classes, "--class", "Person", "--to", "nt")
	require.NoError(t, err)
	assert.Contains(t, out, `<http://example.org/alice> <http://xmlns.com/foaf/0.1/age> "42"^^<http://www.w3.org/2001/XMLSchema#integer> .`)
	assert.NotContains(t, out, "bob")
	assert.Contains(t, stderr, "http://example.org/bob")

	_, _, err = run(t, NewLoadCmd(), input, "--classes", classes, "--class", "Person", "--strict")
	assert.Error(t, err)

	_, _, err = run(t, NewLoadCmd(), input, "--classes", classes, "--class", "Robot")
	assert.Error(t, err)
}

func TestContext(t *testing.T) {
	classes := writeTemp(t, "classes.yaml", classesYAML)

	out, _, err := run(t, NewContextCmd(), "--classes", classes, "--class", "Person")
	require.NoError(t, err)
	var doc struct {
		Context map[string]string `json:"@context"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "http://xmlns.com/foaf/0.1/", doc.Context["foaf"])
	assert.Equal(t, "http://example.org/", doc.Context["ex"])
	assert.Equal(t, "http://www.w3.org/2002/07/owl#", doc.Context["owl"])
}

const ontologyTTL = `@prefix dcat: <http://www.w3.org/ns/dcat#> .
@prefix owl: <http://www.w3.org/2002/07/owl#> .
@prefix rdfs: <http://www.w3.org/2000/01/rdf-schema#> .

dcat:Resource a owl:Class .
dcat:Dataset a owl:Class ;
    rdfs:subClassOf dcat:Resource .
dcat:Catalog a owl:Class ;
    rdfs:subClassOf dcat:Dataset .

dcat:dataset a owl:ObjectProperty ;
    rdfs:domain dcat:Catalog ;
    rdfs:range dcat:Dataset .
`

func TestGenerate(t *testing.T) {
	input := writeTemp(t, "dcat.ttl", ontologyTTL)

	out, _, err := run(t, NewGenerateCmd(), input)
	require.NoError(t, err)

	var file struct {
		Namespaces map[string]string `yaml:"namespaces"`
		Classes    []struct {
			Name   string `yaml:"name"`
			Parent string `yaml:"parent"`
			Fields []struct {
				Name string `yaml:"name"`
				Type string `yaml:"type"`
			} `yaml:"fields"`
		} `yaml:"classes"`
	}
	require.NoError(t, yaml.Unmarshal([]byte(out), &file))
	assert.Equal(t, "http://www.w3.org/ns/dcat#", file.Namespaces["dcat"])
	require.Len(t, file.Classes, 3)
	assert.Equal(t, "Resource", file.Classes[0].Name)
	assert.Equal(t, "Dataset", file.Classes[1].Name)
	catalog := file.Classes[2]
	assert.Equal(t, "Catalog", catalog.Name)
	assert.Equal(t, "Dataset", catalog.Parent)
	require.Len(t, catalog.Fields, 1)
	assert.Equal(t, "list<Dataset>", catalog.Fields[0].Type)

	target := filepath.Join(t.TempDir(), "classes.yaml")
	_, _, err = run(t, NewGenerateCmd(), input, "--out", target)
	require.NoError(t, err)
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	assert.Equal(t, out, string(data))

	ctx, _, err := run(t, NewContextCmd(), "--classes", target, "--class", "Catalog")
	require.NoError(t, err)
	assert.Contains(t, ctx, "http://www.w3.org/ns/dcat#")

	_, _, err = run(t, NewGenerateCmd(), writeTemp(t, "people.ttl", peopleTTL))
	assert.Error(t, err)
}
