package rdf

import (
	"bytes"
	"sort"
	"strings"
	"testing"
)

const (
	exNS   = "http://example.org/"
	foafNS = "http://xmlns.com/foaf/0.1/"
)

func sampleGraph() *Graph {
	g := NewGraph()
	alice := IRI{Value: exNS + "alice"}
	addr := BlankNode{ID: "addr"}
	g.MustAdd(alice, TypePredicate, IRI{Value: foafNS + "Person"})
	g.MustAdd(alice, IRI{Value: foafNS + "name"}, NewLiteral("Alice \"Al\" Liddell"))
	g.MustAdd(alice, IRI{Value: foafNS + "nick"}, NewLangLiteral("ally", "en"))
	g.MustAdd(alice, IRI{Value: foafNS + "age"}, NewTypedLiteral("42", XSDInteger))
	g.MustAdd(alice, IRI{Value: exNS + "height"}, NewTypedLiteral("1.7E0", XSDDouble))
	g.MustAdd(alice, IRI{Value: exNS + "active"}, NewTypedLiteral("true", XSDBoolean))
	g.MustAdd(alice, IRI{Value: foafNS + "knows"}, IRI{Value: exNS + "bob"})
	g.MustAdd(alice, IRI{Value: exNS + "address"}, addr)
	g.MustAdd(addr, IRI{Value: exNS + "city"}, NewLiteral("Berlin\nMitte"))
	g.MustAdd(IRI{Value: exNS + "bob"}, IRI{Value: foafNS + "name"}, NewLiteral("Bob"))
	return g
}

// shape renders triples with blank node labels erased, sorted.
func shape(g *Graph) []string {
	var out []string
	for _, t := range g.Triples() {
		s, o := t.S.String(), t.O.String()
		if _, ok := t.S.(BlankNode); ok {
			s = "_:"
		}
		if _, ok := t.O.(BlankNode); ok {
			o = "_:"
		}
		out = append(out, s+" "+t.P.Value+" "+o)
	}
	sort.Strings(out)
	return out
}

func TestRoundTripAllFormats(t *testing.T) {
	want := shape(sampleGraph())
	prefixes := []Prefix{{Name: "foaf", IRI: foafNS}, {Name: "ex", IRI: exNS}}

	for _, format := range Formats() {
		var buf bytes.Buffer
		if err := Encode(&buf, sampleGraph(), format, WithPrefixes(prefixes...)); err != nil {
			t.Fatalf("format %s: encode error %v", format, err)
		}
		parsed, err := Decode(strings.NewReader(buf.String()), format)
		if err != nil {
			t.Fatalf("format %s: decode error %v\n%s", format, err, buf.String())
		}
		got := shape(parsed)
		if strings.Join(got, "\n") != strings.Join(want, "\n") {
			t.Fatalf("format %s: roundtrip mismatch\nwant:\n%s\ngot:\n%s\ndocument:\n%s",
				format, strings.Join(want, "\n"), strings.Join(got, "\n"), buf.String())
		}
	}
}

func TestDecodeAutoDetectsEveryFormat(t *testing.T) {
	for _, format := range Formats() {
		text, err := EncodeString(sampleGraph(), format, WithPrefixes(Prefix{Name: "foaf", IRI: foafNS}))
		if err != nil {
			t.Fatalf("format %s: encode error %v", format, err)
		}
		g, detected, err := DecodeAuto(strings.NewReader(text))
		if err != nil {
			t.Fatalf("format %s: %v", format, err)
		}
		if detected != format {
			t.Fatalf("expected %s, got %s", format, detected)
		}
		if g.Len() != sampleGraph().Len() {
			t.Fatalf("format %s: expected %d triples, got %d", format, sampleGraph().Len(), g.Len())
		}
	}
}

func TestEncodeUnsupportedFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, NewGraph(), Format("trig")); err == nil {
		t.Fatal("expected error for unsupported format")
	}
	if _, err := Decode(strings.NewReader(""), Format("trig")); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}
