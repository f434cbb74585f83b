package ontology

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/namespace"
	"github.com/geoknoesis/ontomap/rdf"
)

const peopleTurtle = `@prefix foaf: <http://xmlns.com/foaf/0.1/> .
@prefix ex: <http://example.org/> .

ex:alice a foaf:Person ;
    foaf:name "Alice" ;
    foaf:age 42 ;
    foaf:knows ex:bob .

ex:bob a foaf:Person ;
    foaf:name "Bob" ;
    foaf:knows ex:alice .

ex:fido a ex:Dog ;
    foaf:name "Fido" .
`

func byID(t *testing.T, list []*Instance, id string) *Instance {
	t.Helper()
	for _, inst := range list {
		if inst.ID() == id {
			return inst
		}
	}
	t.Fatalf("no instance %s among %v", id, list)
	return nil
}

func TestRoundTrip(t *testing.T) {
	f := newFixture(t)
	alice := MustNew(f.person, Values{
		"id":     ex + "alice",
		"name":   "Alice",
		"age":    42,
		"height": 1.75,
		"label":  "A",
	})

	for _, format := range rdf.Formats() {
		t.Run(string(format), func(t *testing.T) {
			doc, err := Serialize(alice, format)
			require.NoError(t, err)

			loaded, err := Load(context.Background(), bytes.NewReader(doc), f.person, WithFormat(format))
			require.NoError(t, err)
			require.Len(t, loaded, 1)
			assert.True(t, alice.Equal(loaded[0], true), "%v != %v", alice.ToMap(), loaded[0].ToMap())
		})
	}
}

func TestNestedRoundTrip(t *testing.T) {
	f := newFixture(t)
	bob := MustNew(f.person, Values{"id": ex + "bob", "name": "Bob"})
	alice := MustNew(f.person, Values{
		"id":      ex + "alice",
		"name":    "Alice",
		"address": Values{"city": "Berlin"},
		"knows":   []any{bob},
	})

	for _, format := range rdf.Formats() {
		t.Run(string(format), func(t *testing.T) {
			doc, err := Serialize(alice, format)
			require.NoError(t, err)

			loaded, err := Load(context.Background(), bytes.NewReader(doc), f.person)
			require.NoError(t, err)
			require.Len(t, loaded, 2, "bob is a Person too")

			got := byID(t, loaded, ex+"alice")
			assert.True(t, alice.Equal(got, false), "%v != %v", alice.ToMap(), got.ToMap())

			address, _ := got.Get("address")
			require.IsType(t, &Instance{}, address)
			assert.True(t, address.(*Instance).IsBlank())
			assert.Equal(t, "Address", address.(*Instance).Class().Name())
		})
	}
}

func TestLoadCycleYieldsReferenceStub(t *testing.T) {
	f := newFixture(t)
	people, err := LoadString(context.Background(), peopleTurtle, f.person)
	require.NoError(t, err)
	require.Len(t, people, 2, "fido is not a Person")

	alice := byID(t, people, ex+"alice")
	knows, _ := alice.Get("knows")
	require.Len(t, knows, 1)
	bob := knows.([]any)[0].(*Instance)
	assert.Equal(t, ex+"bob", bob.ID())
	assert.False(t, bob.IsReference())

	back, _ := bob.Get("knows")
	stub := back.([]any)[0].(*Instance)
	assert.Equal(t, ex+"alice", stub.ID())
	assert.True(t, stub.IsReference(), "alice was still being loaded")

	assert.Same(t, bob, byID(t, people, ex+"bob"), "shared subjects are materialized once")
}

func TestLoaderSkipsInvalidSubjects(t *testing.T) {
	f := newFixture(t)
	doc := `@prefix foaf: <http://xmlns.com/foaf/0.1/> .
@prefix ex: <http://example.org/> .
ex:a a foaf:Person ; foaf:age "old" .
ex:b a foaf:Person ; foaf:age 30 .
ex:c a foaf:Person ; foaf:name "C1", "C2" .
`
	var handled []string
	l, err := NewLoader(context.Background(), bytes.NewBufferString(doc), f.person,
		WithSkipHandler(func(se *SubjectError) { handled = append(handled, se.Subject) }))
	require.NoError(t, err)

	inst, err := l.Next()
	require.NoError(t, err)
	assert.Equal(t, ex+"b", inst.ID())

	_, err = l.Next()
	assert.ErrorIs(t, err, io.EOF)
	_, err = l.Next()
	assert.ErrorIs(t, err, io.EOF, "the loader is not restartable")

	skipped := l.Skipped()
	require.Len(t, skipped, 2)
	assert.Equal(t, ex+"a", skipped[0].Subject)
	var verr *ValidationError
	require.True(t, errors.As(skipped[0], &verr))
	assert.Equal(t, "age", verr.Issues[0].Path)
	assert.Equal(t, []string{ex + "a", ex + "c"}, handled)
}

func TestLoadLimit(t *testing.T) {
	f := newFixture(t)
	doc := `@prefix foaf: <http://xmlns.com/foaf/0.1/> .
<http://example.org/1> a foaf:Person .
<http://example.org/2> a foaf:Person .
<http://example.org/3> a foaf:Person .
`
	people, err := LoadString(context.Background(), doc, f.person, WithLimit(2))
	require.NoError(t, err)
	require.Len(t, people, 2)
	assert.Equal(t, ex+"1", people[0].ID())
	assert.Equal(t, ex+"2", people[1].ID())
}

func TestLoadUnmappedPredicatesBecomeExtras(t *testing.T) {
	f := newFixture(t)
	doc := `@prefix foaf: <http://xmlns.com/foaf/0.1/> .
@prefix ex: <http://example.org/> .
ex:a a foaf:Person ;
    foaf:name "A" ;
    foaf:nick "Al" ;
    ex:nick "Ali" ;
    foaf:homepage <http://a.example/> ;
    ex:pet [ a ex:Dog ; foaf:name "Rex" ] ;
    ex:address ex:somewhere .
`
	people, err := LoadString(context.Background(), doc, f.person)
	require.NoError(t, err)
	require.Len(t, people, 1)
	a := people[0]

	nick, _ := a.Extra("nick")
	assert.Equal(t, "Al", nick)
	exNick, _ := a.Extra(ex + "nick")
	assert.Equal(t, "Ali", exNick, "a second predicate with the same local name keeps its IRI")

	homepage, _ := a.Extra("homepage")
	assert.Equal(t, rdf.IRI{Value: "http://a.example/"}, homepage)

	pet, _ := a.Extra("pet")
	require.IsType(t, Record{}, pet)
	assert.Equal(t, ex+"Dog", pet.(Record)["@type"])
	assert.Equal(t, "Rex", pet.(Record)["name"])

	address, _ := a.Get("address")
	require.IsType(t, &Instance{}, address)
	assert.True(t, address.(*Instance).IsReference())
	assert.Equal(t, ex+"somewhere", address.(*Instance).ID())

	nt, err := a.NTriples()
	require.NoError(t, err)
	assert.Contains(t, nt, "<http://example.org/a> <urn:ontomap:local#homepage> <http://a.example/> .")
	assert.Contains(t, nt, "<http://example.org/a> <http://example.org/address> <http://example.org/somewhere> .")
}

func TestLoadJSONLDWithContextDocument(t *testing.T) {
	f := newFixture(t)
	doc := `[{"@id": "http://example.org/a", "@type": "Person", "name": "A", "age": 7}]`
	people, err := LoadString(context.Background(), doc, f.person,
		WithFormat(rdf.FormatJSONLD),
		WithContextDocument(map[string]any{"@vocab": namespace.FOAF}))
	require.NoError(t, err)
	require.Len(t, people, 1)
	age, _ := people[0].Get("age")
	assert.Equal(t, int64(7), age)
}

func TestLoadFile(t *testing.T) {
	f := newFixture(t)
	path := filepath.Join(t.TempDir(), "people.ttl")
	require.NoError(t, os.WriteFile(path, []byte(peopleTurtle), 0o644))

	people, err := LoadFile(context.Background(), path, f.person)
	require.NoError(t, err)
	assert.Len(t, people, 2)

	_, err = LoadFile(context.Background(), filepath.Join(t.TempDir(), "missing.ttl"), f.person)
	assert.Error(t, err)
}

func TestLoaderHonorsCancellation(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())
	l, err := NewLoader(ctx, bytes.NewBufferString(peopleTurtle), f.person)
	require.NoError(t, err)
	cancel()
	_, err = l.Next()
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadIdentifierFromSubject(t *testing.T) {
	researcher := researcherClass(t)
	doc := `<https://orcid.org/0000-0002-1825-0097> a <http://xmlns.com/foaf/0.1/Person> ;
    <http://xmlns.com/foaf/0.1/name> "Josiah" .
`
	loaded, err := LoadString(context.Background(), doc, researcher)
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	orcid, _ := loaded[0].Get("orcidId")
	assert.Equal(t, "https://orcid.org/0000-0002-1825-0097", orcid)
}

func TestRoundTripNonIRIIdentifier(t *testing.T) {
	researcher := researcherClass(t)
	r := MustNew(researcher, Values{"name": "Josiah", "orcidId": "0000-0001-2345-6789"})

	for _, format := range rdf.Formats() {
		t.Run(string(format), func(t *testing.T) {
			doc, err := Serialize(r, format)
			require.NoError(t, err)

			loaded, err := Load(context.Background(), bytes.NewReader(doc), researcher, WithFormat(format))
			require.NoError(t, err)
			require.Len(t, loaded, 1)
			orcid, _ := loaded[0].Get("orcidId")
			assert.Equal(t, "0000-0001-2345-6789", orcid)
			assert.Equal(t, "0000-0001-2345-6789", loaded[0].ID())
			assert.True(t, r.Equal(loaded[0], true), "%v != %v", r.ToMap(), loaded[0].ToMap())
		})
	}
}

func TestLoadIdentifierNamespaceOption(t *testing.T) {
	researcher := researcherClass(t)
	doc := `<urn:people:0042> a <http://xmlns.com/foaf/0.1/Person> .
`
	loaded, err := LoadString(context.Background(), doc, researcher, WithIdentifierNamespace("urn:people:"))
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	id, _ := loaded[0].Get("orcidId")
	assert.Equal(t, "0042", id)
}

func TestLoadRejectsUndetectableInput(t *testing.T) {
	f := newFixture(t)
	_, err := LoadString(context.Background(), "???", f.person)
	assert.Error(t, err)
}
