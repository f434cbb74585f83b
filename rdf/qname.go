package rdf

import "strings"

// isQNameLocal reports whether value can be written as the local part of a
// Turtle prefixed name without escaping.
func isQNameLocal(value string) bool {
	if value == "" || value[len(value)-1] == '.' {
		return false
	}
	for i := 0; i < len(value); i++ {
		ch := value[i]
		if i == 0 {
			if !isNameStartChar(ch) && !isDigit(ch) {
				return false
			}
		} else if !isNameChar(ch) {
			return false
		}
	}
	return true
}

// isNCName reports whether value is usable as an XML element local name.
func isNCName(value string) bool {
	if value == "" || !isNameStartChar(value[0]) {
		return false
	}
	for i := 1; i < len(value); i++ {
		if !isNameChar(value[i]) {
			return false
		}
	}
	return true
}

func isNameStartChar(ch byte) bool {
	return (ch >= 'A' && ch <= 'Z') || (ch >= 'a' && ch <= 'z') || ch == '_' || ch >= 0x80
}

func isNameChar(ch byte) bool {
	return isNameStartChar(ch) || isDigit(ch) || ch == '-' || ch == '.'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

// abbreviateQName returns prefix:local for iri using the longest matching
// namespace, or false when no prefix applies.
func abbreviateQName(iri string, prefixes []Prefix) (string, bool) {
	best := -1
	for i, p := range prefixes {
		if p.IRI == "" || !strings.HasPrefix(iri, p.IRI) {
			continue
		}
		if !isQNameLocal(iri[len(p.IRI):]) {
			continue
		}
		if best < 0 || len(p.IRI) > len(prefixes[best].IRI) {
			best = i
		}
	}
	if best < 0 {
		return "", false
	}
	return prefixes[best].Name + ":" + iri[len(prefixes[best].IRI):], true
}

// SplitIRI splits an IRI after its last '#' or '/' into namespace and local name.
func SplitIRI(iri string) (namespace, local string) {
	idx := strings.LastIndexAny(iri, "#/")
	if idx < 0 {
		if colon := strings.LastIndex(iri, ":"); colon >= 0 {
			return iri[:colon+1], iri[colon+1:]
		}
		return "", iri
	}
	return iri[:idx+1], iri[idx+1:]
}
