package rdf

import (
	"errors"
	"testing"
)

func TestParseFormatAliases(t *testing.T) {
	cases := map[string]Format{
		"":         FormatJSONLD,
		"json-ld":  FormatJSONLD,
		"TTL":      FormatTurtle,
		"xml":      FormatRDFXML,
		"rdf/xml":  FormatRDFXML,
		"nt":       FormatNTriples,
		" turtle ": FormatTurtle,
	}
	for in, want := range cases {
		got, ok := ParseFormat(in)
		if !ok || got != want {
			t.Fatalf("ParseFormat(%q) = %q, %v", in, got, ok)
		}
	}
	if _, err := LookupFormat("trig"); !errors.Is(err, ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
}

func TestFormatFromPath(t *testing.T) {
	cases := map[string]Format{
		"people.jsonld": FormatJSONLD,
		"onto.TTL":      FormatTurtle,
		"onto.owl":      FormatRDFXML,
		"dump.nt":       FormatNTriples,
	}
	for path, want := range cases {
		got, ok := FormatFromPath(path)
		if !ok || got != want {
			t.Fatalf("FormatFromPath(%q) = %q, %v", path, got, ok)
		}
	}
	if _, ok := FormatFromPath("notes.txt"); ok {
		t.Fatal("expected no format for .txt")
	}
}

func TestDetectFormat(t *testing.T) {
	cases := []struct {
		input string
		want  Format
	}{
		{`{"@context": {}}`, FormatJSONLD},
		{`[{"@id": "x"}]`, FormatJSONLD},
		{`<?xml version="1.0"?><rdf:RDF/>`, FormatRDFXML},
		{"@prefix ex: <http://example.org/> .", FormatTurtle},
		{"<http://example.org/s> <http://example.org/p> \"o\" .", FormatNTriples},
		{"<http://example.org/s> a <http://example.org/C> .", FormatTurtle},
		{"ex:s ex:p ex:o .", FormatTurtle},
	}
	for _, tc := range cases {
		got, ok := DetectFormat([]byte(tc.input))
		if !ok || got != tc.want {
			t.Fatalf("DetectFormat(%q) = %q, %v; want %q", tc.input, got, ok, tc.want)
		}
	}
	if _, ok := DetectFormat([]byte("   ")); ok {
		t.Fatal("expected detection to fail on blank input")
	}
}

func TestFormatMetadata(t *testing.T) {
	if FormatTurtle.ContentType() != "text/turtle" || FormatTurtle.Extension() != ".ttl" {
		t.Fatal("unexpected turtle metadata")
	}
	if FormatJSONLD.ContentType() != "application/ld+json" {
		t.Fatal("unexpected JSON-LD content type")
	}
}
