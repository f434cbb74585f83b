package rdf

import (
	"errors"
	"strings"
	"testing"
)

func TestTurtleParserFeatures(t *testing.T) {
	input := `
@prefix ex: <http://example.org/> .
PREFIX foaf: <http://xmlns.com/foaf/0.1/>
@base <http://example.org/base/> .

# comment
<alice> a foaf:Person ;
    foaf:name "Alice"@en , 'Ally' ;
    foaf:age 42 ;
    ex:score -1.5 ;
    ex:ratio 2e3 ;
    ex:ok true ;
    ex:bio """line one
line two""" ;
    ex:tags ( "a" "b" ) ;
    ex:home [ ex:city "Berlin" ] ;
    ex:friend _:b1 .

_:b1 foaf:name "Bob"^^<http://www.w3.org/2001/XMLSchema#string> .
[] ex:note "anonymous" .
`
	g, err := Decode(strings.NewReader(input), FormatTurtle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	alice := IRI{Value: "http://example.org/base/alice"}
	if !g.HasType(alice, IRI{Value: foafNS + "Person"}) {
		t.Fatal("expected alice to be a foaf:Person (base resolution)")
	}
	names := g.Objects(alice, IRI{Value: foafNS + "name"})
	if len(names) != 2 || names[0] != NewLangLiteral("Alice", "en") || names[1] != NewLiteral("Ally") {
		t.Fatalf("unexpected names: %v", names)
	}
	checks := map[string]Literal{
		foafNS + "age": NewTypedLiteral("42", XSDInteger),
		exNS + "score":  NewTypedLiteral("-1.5", XSDDecimal),
		exNS + "ratio":  NewTypedLiteral("2e3", XSDDouble),
		exNS + "ok":     NewTypedLiteral("true", XSDBoolean),
		exNS + "bio":    NewLiteral("line one\nline two"),
	}
	for pred, want := range checks {
		got := g.Objects(alice, IRI{Value: pred})
		if len(got) != 1 || got[0] != want {
			t.Fatalf("%s: expected %v, got %v", pred, want, got)
		}
	}
	home := g.Objects(alice, IRI{Value: exNS + "home"})
	if len(home) != 1 {
		t.Fatalf("expected one home, got %v", home)
	}
	if city := g.Objects(home[0], IRI{Value: exNS + "city"}); len(city) != 1 || city[0] != NewLiteral("Berlin") {
		t.Fatalf("unexpected city: %v", city)
	}
	tags := g.Objects(alice, IRI{Value: exNS + "tags"})
	if len(tags) != 1 || len(g.Objects(tags[0], IRI{Value: RDFFirst})) != 1 {
		t.Fatalf("expected collection head, got %v", tags)
	}
	if bob := g.Objects(BlankNode{ID: "b1"}, IRI{Value: foafNS + "name"}); len(bob) != 1 || bob[0] != NewLiteral("Bob") {
		t.Fatalf("expected xsd:string to normalize to a plain literal, got %v", bob)
	}
	prefixes := g.Prefixes()
	if len(prefixes) != 2 || prefixes[0].Name != "ex" || prefixes[1].Name != "foaf" {
		t.Fatalf("unexpected prefixes: %v", prefixes)
	}
}

func TestTurtleParserErrors(t *testing.T) {
	cases := []string{
		`<http://example.org/s> <http://example.org/p> "unterminated .`,
		`undefined:s <http://example.org/p> "x" .`,
		`<http://example.org/s> <http://example.org/p> "x"`,
	}
	for _, input := range cases {
		_, err := Decode(strings.NewReader(input), FormatTurtle)
		if err == nil {
			t.Fatalf("expected error for %q", input)
		}
		var parseErr *ParseError
		if !errors.As(err, &parseErr) {
			t.Fatalf("expected ParseError, got %T", err)
		}
		if parseErr.Line != 1 || parseErr.Column == 0 {
			t.Fatalf("expected position information, got %d:%d", parseErr.Line, parseErr.Column)
		}
	}
}

func TestTurtleEncoderNestsBlankNodes(t *testing.T) {
	g := NewGraph()
	event := BlankNode{ID: "e"}
	place := BlankNode{ID: "p"}
	g.MustAdd(event, TypePredicate, IRI{Value: "https://schema.org/Event"})
	g.MustAdd(event, IRI{Value: "https://schema.org/name"}, NewLiteral("Workshop"))
	g.MustAdd(event, IRI{Value: "https://schema.org/location"}, place)
	g.MustAdd(place, IRI{Value: "https://schema.org/name"}, NewLiteral("Hall"))

	out, err := EncodeString(g, FormatTurtle, WithPrefixes(Prefix{Name: "schema", IRI: "https://schema.org/"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := `@prefix schema: <https://schema.org/> .

[] a schema:Event ;
    schema:name "Workshop" ;
    schema:location [
        schema:name "Hall"
    ] .
`
	if out != want {
		t.Fatalf("unexpected turtle:\n%s", out)
	}
}

func TestTurtleEncoderBlankNodeCycle(t *testing.T) {
	g := NewGraph()
	a, b := BlankNode{ID: "a"}, BlankNode{ID: "b"}
	p := IRI{Value: exNS + "next"}
	g.MustAdd(a, p, b)
	g.MustAdd(b, p, a)

	out, err := EncodeString(g, FormatTurtle)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	parsed, err := Decode(strings.NewReader(out), FormatTurtle)
	if err != nil {
		t.Fatalf("unexpected error: %v\n%s", err, out)
	}
	if parsed.Len() != 2 {
		t.Fatalf("expected 2 triples, got %d:\n%s", parsed.Len(), out)
	}
}
