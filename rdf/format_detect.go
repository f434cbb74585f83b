package rdf

import (
	"bufio"
	"io"
	"strings"
)

const detectSampleSize = 512

// DetectFormat attempts to detect the RDF format from the first bytes of input.
// It returns the detected format and whether detection was successful.
func DetectFormat(sample []byte) (Format, bool) {
	s := strings.TrimSpace(strings.TrimPrefix(string(sample), "\ufeff"))
	if s == "" {
		return "", false
	}

	// JSON-LD starts with { or [.
	if s[0] == '{' || s[0] == '[' {
		return FormatJSONLD, true
	}

	// RDF/XML starts with an XML declaration or an rdf:RDF element.
	if strings.HasPrefix(s, "<?xml") || strings.HasPrefix(s, "<rdf:") || strings.HasPrefix(s, "<!--") {
		return FormatRDFXML, true
	}

	upper := strings.ToUpper(s)
	if strings.HasPrefix(upper, "@PREFIX") || strings.HasPrefix(upper, "PREFIX") ||
		strings.HasPrefix(upper, "@BASE") || strings.HasPrefix(upper, "BASE") {
		return FormatTurtle, true
	}

	// N-Triples uses only full IRIs and blank node labels, one statement per line.
	if looksLikeNTriples(s) {
		return FormatNTriples, true
	}
	if strings.HasPrefix(s, "<") || strings.HasPrefix(s, "_:") {
		return FormatTurtle, true
	}

	// Anything else with prefixed names, anonymous nodes or collections is Turtle.
	if strings.ContainsAny(s, "[(;") {
		return FormatTurtle, true
	}
	for _, part := range strings.Fields(s) {
		if strings.Contains(part, ":") && !strings.HasPrefix(part, "_:") && !strings.HasPrefix(part, "<") && !strings.HasPrefix(part, "\"") {
			return FormatTurtle, true
		}
	}
	return "", false
}

func looksLikeNTriples(s string) bool {
	for _, line := range strings.Split(s, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !strings.HasPrefix(line, "<") && !strings.HasPrefix(line, "_:") {
			return false
		}
		fields := strings.Fields(line)
		if len(fields) < 2 || !strings.HasPrefix(fields[1], "<") {
			return false
		}
		return true
	}
	return false
}

// DetectReader peeks at r and detects its format. The returned reader yields
// the complete input, including the peeked bytes.
func DetectReader(r io.Reader) (Format, io.Reader, bool) {
	br := bufio.NewReaderSize(r, detectSampleSize*2)
	sample, _ := br.Peek(detectSampleSize)
	format, ok := DetectFormat(sample)
	return format, br, ok
}
