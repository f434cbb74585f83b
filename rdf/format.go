package rdf

import (
	"path/filepath"
	"strings"

	"github.com/geoknoesis/ontomap/errors"
)

// Format identifies RDF serialization formats.
type Format string

const (
	FormatJSONLD   Format = "jsonld"
	FormatTurtle   Format = "turtle"
	FormatRDFXML   Format = "rdfxml"
	FormatNTriples Format = "ntriples"
)

// DefaultFormat is used when callers do not name a format.
const DefaultFormat = FormatJSONLD

// Formats lists every supported format in a stable order.
func Formats() []Format {
	return []Format{FormatJSONLD, FormatTurtle, FormatRDFXML, FormatNTriples}
}

// ParseFormat normalizes a format string.
func ParseFormat(value string) (Format, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "jsonld", "json-ld", "json":
		return FormatJSONLD, true
	case "turtle", "ttl":
		return FormatTurtle, true
	case "rdfxml", "rdf/xml", "rdf", "xml", "owl":
		return FormatRDFXML, true
	case "ntriples", "n-triples", "nt":
		return FormatNTriples, true
	default:
		return "", false
	}
}

// LookupFormat is ParseFormat returning an error wrapping ErrUnsupportedFormat.
func LookupFormat(value string) (Format, error) {
	f, ok := ParseFormat(value)
	if !ok {
		return "", errors.WithHint(
			errors.Wrapf(ErrUnsupportedFormat, "format %q", value),
			"use one of jsonld, turtle, rdfxml, ntriples")
	}
	return f, nil
}

// FormatFromPath infers the format from a filename extension.
func FormatFromPath(path string) (Format, bool) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jsonld", ".json":
		return FormatJSONLD, true
	case ".ttl", ".turtle":
		return FormatTurtle, true
	case ".rdf", ".xml", ".owl":
		return FormatRDFXML, true
	case ".nt":
		return FormatNTriples, true
	default:
		return "", false
	}
}

// ContentType returns the media type for a format.
func (f Format) ContentType() string {
	switch f {
	case FormatJSONLD:
		return "application/ld+json"
	case FormatTurtle:
		return "text/turtle"
	case FormatRDFXML:
		return "application/rdf+xml"
	case FormatNTriples:
		return "application/n-triples"
	default:
		return "application/octet-stream"
	}
}

// Extension returns the conventional file extension, including the dot.
func (f Format) Extension() string {
	switch f {
	case FormatJSONLD:
		return ".jsonld"
	case FormatTurtle:
		return ".ttl"
	case FormatRDFXML:
		return ".rdf"
	case FormatNTriples:
		return ".nt"
	default:
		return ""
	}
}
