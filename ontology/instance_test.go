package ontology

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/rdf"
)

func TestNewCoercesValues(t *testing.T) {
	f := newFixture(t)
	alice, err := New(f.person, Values{
		"name":   "Alice",
		"age":    "42",
		"height": 1,
		"label":  "A.",
	})
	require.NoError(t, err)

	age, _ := alice.Get("age")
	assert.Equal(t, int64(42), age)
	height, _ := alice.Get("height")
	assert.Equal(t, float64(1), height)
	assert.Equal(t, "A.", alice.Label())
	assert.True(t, alice.IsBlank())
	assert.Empty(t, alice.Extras())
}

func TestNewAggregatesIssues(t *testing.T) {
	f := newFixture(t)
	_, err := New(f.person, Values{
		"name":    42,
		"age":     2.5,
		"address": map[string]any{"city": true},
		"knows":   []any{Values{"age": "old"}},
	})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "Person", verr.Class)

	paths := make([]string, len(verr.Issues))
	for i, issue := range verr.Issues {
		paths[i] = issue.Path
	}
	assert.Equal(t, []string{"address.city", "age", "knows[0].age", "name"}, paths)
	assert.Contains(t, err.Error(), "4 validation errors for Person")
}

func TestIntFieldRejectsOutOfRange(t *testing.T) {
	f := newFixture(t)
	for _, v := range []any{uint64(math.MaxUint64), 1e20, -1e20, float32(1e19)} {
		_, err := New(f.person, Values{"name": "Alice", "age": v})
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "%v", v)
		require.Len(t, verr.Issues, 1)
		assert.Equal(t, "age", verr.Issues[0].Path)
		assert.Contains(t, verr.Issues[0].Message, "out of range")
	}

	alice, err := New(f.person, Values{"name": "Alice", "age": uint64(42)})
	require.NoError(t, err)
	age, _ := alice.Get("age")
	assert.Equal(t, int64(42), age)
}

func TestAliasEquivalence(t *testing.T) {
	f := newFixture(t)
	byName, err := New(f.person, Values{"id": ex + "alice", "name": "Alice"})
	require.NoError(t, err)
	byAlias, err := New(f.person, Values{"id": ex + "alice", "fullName": "Alice"})
	require.NoError(t, err)

	assert.True(t, byName.Equal(byAlias, true))
	for _, format := range rdf.Formats() {
		a, err := Serialize(byName, format)
		require.NoError(t, err)
		b, err := Serialize(byAlias, format)
		require.NoError(t, err)
		assert.Equal(t, string(a), string(b), format)
	}

	_, err = New(f.person, Values{"name": "Alice", "fullName": "Alicia"})
	assert.Error(t, err, "a field given twice is rejected")
}

func TestNestedValuesBecomeInstances(t *testing.T) {
	f := newFixture(t)
	alice, err := New(f.person, Values{
		"name":    "Alice",
		"address": Values{"city": "Berlin"},
		"knows":   []any{Values{"name": "Bob"}, Values{"name": "Carol"}},
	})
	require.NoError(t, err)

	address, _ := alice.Get("address")
	require.IsType(t, &Instance{}, address)
	assert.Equal(t, "Address", address.(*Instance).Class().Name())

	knows, _ := alice.Get("knows")
	require.Len(t, knows, 2)
	bob := knows.([]any)[0].(*Instance)
	name, _ := bob.Get("name")
	assert.Equal(t, "Bob", name)
}

func TestClassOfRejectsOtherClasses(t *testing.T) {
	f := newFixture(t)
	bob := MustNew(f.person, Values{"name": "Bob"})
	_, err := New(f.person, Values{"address": bob})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Contains(t, verr.Issues[0].Message, "expected Address, got Person")
}

func TestExtrasAndStrictClasses(t *testing.T) {
	f := newFixture(t)
	alice, err := New(f.person, Values{"name": "Alice", "homeTown": "Berlin", "nick": "Al"})
	require.NoError(t, err)
	assert.Equal(t, []Extra{{Name: "homeTown", Value: "Berlin"}, {Name: "nick", Value: "Al"}}, alice.Extras())
	v, ok := alice.Get("homeTown")
	require.True(t, ok)
	assert.Equal(t, "Berlin", v)

	strict, err := f.reg.Register("StrictPerson", "ex:StrictPerson", WithParent(f.person), WithStrictExtras())
	require.NoError(t, err)
	_, err = New(strict, Values{"name": "Alice", "homeTown": "Berlin"})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "homeTown", verr.Issues[0].Path)

	restore := SetDefaults(Defaults{Strict: true})
	defer restore()
	assert.True(t, f.person.Strict())
	_, err = New(f.person, Values{"name": "Alice", "homeTown": "Berlin"})
	assert.Error(t, err)
}

func TestRequiredAndDefaults(t *testing.T) {
	reg := NewRegistry()
	doc, err := reg.Register("Doc", "dcterms:BibliographicResource",
		WithField("title", "dcterms:title", String, Required()),
		WithField("language", "dcterms:language", String, Default("en")),
		WithField("keywords", "dcterms:subject", ListOf(String), Default([]any{"rdf"})),
	)
	require.NoError(t, err)

	_, err = New(doc, Values{})
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, []FieldIssue{{Path: "title", Message: "field required"}}, verr.Issues)

	a := MustNew(doc, Values{"title": "A"})
	b := MustNew(doc, Values{"title": "B"})
	lang, _ := a.Get("language")
	assert.Equal(t, "en", lang)

	require.NoError(t, a.Set("keywords", []string{"owl", "skos"}))
	kb, _ := b.Get("keywords")
	assert.Equal(t, []any{"rdf"}, kb, "defaults are copied per instance")
}

func TestSetRevalidates(t *testing.T) {
	f := newFixture(t)
	alice := MustNew(f.person, Values{"name": "Alice"})

	require.NoError(t, alice.Set("fullName", "Alicia"))
	name, _ := alice.Get("name")
	assert.Equal(t, "Alicia", name)

	err := alice.Set("age", "not a number")
	var verr *ValidationError
	require.True(t, errors.As(err, &verr))
	assert.Equal(t, "age", verr.Issues[0].Path)
	_, set := alice.Get("age")
	assert.False(t, set, "failed Set leaves the instance unchanged")

	require.NoError(t, alice.Set("nick", "Al"))
	require.NoError(t, alice.Set("nick", "Ali"))
	assert.Equal(t, []Extra{{Name: "nick", Value: "Ali"}}, alice.Extras())

	require.NoError(t, alice.Set("name", nil))
	_, set = alice.Get("name")
	assert.False(t, set)
}

func TestIdentifierCannotBeReassigned(t *testing.T) {
	reg := NewRegistry()
	researcher, err := reg.Register("Researcher", "foaf:Person",
		WithKnownNamespaces("foaf"),
		WithField("orcidId", "", IRIRef, Identifier()),
	)
	require.NoError(t, err)
	r := MustNew(researcher, Values{"orcidId": "https://orcid.org/0000-0002-1825-0097"})
	err = r.Set("orcidId", "https://orcid.org/0000-0001-0000-0000")
	assert.True(t, errors.Is(err, errors.ErrFrozen))
}

func TestDecodeIntoStruct(t *testing.T) {
	f := newFixture(t)
	alice := MustNew(f.person, Values{
		"id":      ex + "alice",
		"name":    "Alice",
		"age":     42,
		"address": Values{"city": "Berlin"},
		"nick":    "Al",
	})

	var out struct {
		ID      string
		Name    string
		Age     int
		Nick    string
		Address struct{ City string }
	}
	require.NoError(t, alice.Decode(&out))
	assert.Equal(t, ex+"alice", out.ID)
	assert.Equal(t, "Alice", out.Name)
	assert.Equal(t, 42, out.Age)
	assert.Equal(t, "Al", out.Nick)
	assert.Equal(t, "Berlin", out.Address.City)
}

func TestSortInstances(t *testing.T) {
	f := newFixture(t)
	list := []*Instance{
		MustNew(f.person, Values{"id": ex + "c"}),
		MustNew(f.person, Values{"id": ex + "a"}),
		MustNew(f.person, Values{"id": ex + "b"}),
	}
	SortInstances(list)
	assert.Equal(t, ex+"a", list[0].ID())
	assert.Equal(t, ex+"c", list[2].ID())
	assert.True(t, list[0].Less(list[1]))
}

func TestDateTimeField(t *testing.T) {
	reg := NewRegistry()
	event, err := reg.Register("Event", "schema:Event",
		WithKnownNamespaces("schema"),
		WithField("startDate", "schema:startDate", DateTime),
	)
	require.NoError(t, err)

	e, err := NewContext(context.Background(), event, Values{"startDate": "2024-05-01T09:30:00Z"})
	require.NoError(t, err)
	start, _ := e.Get("startDate")
	require.IsType(t, time.Time{}, start)
	assert.True(t, time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC).Equal(start.(time.Time)))
}

func TestUnionField(t *testing.T) {
	f := newFixture(t)
	org, err := f.reg.Register("Org", "foaf:Organization",
		WithKnownNamespaces("foaf"),
		WithField("member", "foaf:member", ListOf(Union(ClassOf(f.person), IRIRef))),
	)
	require.NoError(t, err)

	o, err := New(org, Values{"member": []any{Values{"name": "Alice"}, ex + "bob"}})
	require.NoError(t, err)
	members, _ := o.Get("member")
	require.Len(t, members, 2)
	assert.IsType(t, &Instance{}, members.([]any)[0])
	assert.Equal(t, rdf.IRI{Value: ex + "bob"}, members.([]any)[1])

	_, err = New(org, Values{"member": []any{42}})
	assert.Error(t, err)
}
