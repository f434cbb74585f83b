package namespace

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/rdf"
)

func TestTableKeepsBindingOrder(t *testing.T) {
	table := NewTable(rdf.Prefix{Name: "foaf", IRI: FOAF}, rdf.Prefix{Name: "ex", IRI: "http://example.org/"})
	table.Set("foaf", FOAF)
	table.Set("a", "http://a.example/")

	assert.Equal(t, []string{"foaf", "ex", "a"}, table.Names())
	assert.Equal(t, 3, table.Len())
}

func TestTableAddReportsConflicts(t *testing.T) {
	table := NewTable(rdf.Prefix{Name: "ex", IRI: "http://example.org/"})

	existing, conflict := table.Add("ex", "http://example.org/")
	assert.False(t, conflict)
	assert.Equal(t, "http://example.org/", existing)

	existing, conflict = table.Add("ex", "http://other.example/")
	assert.True(t, conflict)
	assert.Equal(t, "http://example.org/", existing)

	iri, _ := table.Get("ex")
	assert.Equal(t, "http://example.org/", iri, "first binding wins")
}

func TestTableMerge(t *testing.T) {
	a := NewTable(rdf.Prefix{Name: "ex", IRI: "http://example.org/"})
	b := NewTable(rdf.Prefix{Name: "ex", IRI: "http://other.example/"}, rdf.Prefix{Name: "foaf", IRI: FOAF})

	conflicts := a.Merge(b)
	assert.Equal(t, []string{"ex"}, conflicts)
	assert.Equal(t, []string{"ex", "foaf"}, a.Names())
}

func TestExpand(t *testing.T) {
	table := NewTable(rdf.Prefix{Name: "foaf", IRI: FOAF})

	cases := map[string]string{
		"foaf:name":                 FOAF + "name",
		"http://example.org/x":      "http://example.org/x",
		"urn:uuid:1234":             "urn:uuid:1234",
		"_:b0":                      "_:b0",
		"plain":                     "plain",
		"https://example.com/a:b#c": "https://example.com/a:b#c",
	}
	for in, want := range cases {
		got, err := table.Expand(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}
}

func TestExpandUnknownPrefix(t *testing.T) {
	table := NewTable(rdf.Prefix{Name: "foaf", IRI: FOAF})

	_, err := table.Expand("schema:name")
	require.Error(t, err)

	var unknown *UnknownPrefixError
	require.True(t, errors.As(err, &unknown))
	assert.Equal(t, "schema", unknown.Prefix)
	assert.Contains(t, strings.Join(errors.GetAllHints(err), " "), "foaf")
}

func TestCompactUsesLongestNamespace(t *testing.T) {
	table := NewTable(
		rdf.Prefix{Name: "ex", IRI: "http://example.org/"},
		rdf.Prefix{Name: "exv", IRI: "http://example.org/vocab#"},
	)
	assert.Equal(t, "exv:name", table.Compact("http://example.org/vocab#name"))
	assert.Equal(t, "ex:thing", table.Compact("http://example.org/thing"))
	assert.Equal(t, "http://other.example/x", table.Compact("http://other.example/x"))
}

func TestIsIRIShaped(t *testing.T) {
	shaped := []string{
		"https://orcid.org/0000-0001-8729-0482",
		"urn:isbn:0451450523",
		"ex:alice",
		"_:N1",
	}
	for _, v := range shaped {
		assert.True(t, IsIRIShaped(v), v)
	}
	notShaped := []string{"", "0000-0001-8729-0482", "John Doe", "_:", "http://exa mple.org"}
	for _, v := range notShaped {
		assert.False(t, IsIRIShaped(v), v)
	}
}

func TestLocalName(t *testing.T) {
	assert.Equal(t, "name", LocalName(FOAF+"name"))
	assert.Equal(t, "Thing", LocalName(OWL+"Thing"))
	assert.Equal(t, "x", LocalName("urn:ex:x"))
}
