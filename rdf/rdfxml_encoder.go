package rdf

import (
	"bufio"
	"io"
	"strconv"
	"strings"

	"github.com/geoknoesis/ontomap/errors"
)

// rdfxmlEncoder writes one rdf:Description per subject. Namespaces for
// predicates are collected up front because RDF/XML needs them as element
// names declared on the root.
type rdfxmlEncoder struct {
	writer   *bufio.Writer
	err      error
	prefixes []Prefix
	nsToPref map[string]string
	autoSeq  int
}

func encodeRDFXML(w io.Writer, g *Graph, o Options) error {
	e := &rdfxmlEncoder{writer: bufio.NewWriter(w), nsToPref: make(map[string]string)}
	for _, p := range o.Prefixes {
		if p.Name == "rdf" || p.IRI == "" || !isNCName(p.Name) {
			continue
		}
		if _, ok := e.nsToPref[p.IRI]; ok {
			continue
		}
		e.nsToPref[p.IRI] = p.Name
		e.prefixes = append(e.prefixes, p)
	}
	for _, t := range g.triples {
		if t.P == TypePredicate {
			continue
		}
		if _, _, ok := e.predicateQName(t.P.Value); !ok {
			return errors.Newf("rdfxml: predicate %q cannot be written as an XML element name", t.P.Value)
		}
	}

	e.write(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	root := `<rdf:RDF xmlns:rdf="` + rdfXMLNS + `"`
	for _, p := range e.prefixes {
		root += "\n    xmlns:" + p.Name + `="` + escapeXMLAttr(p.IRI) + `"`
	}
	if o.Base != "" {
		root += "\n    xml:base=\"" + escapeXMLAttr(o.Base) + `"`
	}
	e.write(root + ">\n")

	for _, s := range g.subjects {
		e.writeDescription(s, g.Outgoing(s))
	}
	e.write("</rdf:RDF>\n")
	if e.err != nil {
		return e.err
	}
	return e.writer.Flush()
}

func (e *rdfxmlEncoder) write(s string) {
	if e.err != nil {
		return
	}
	_, e.err = e.writer.WriteString(s)
}

func (e *rdfxmlEncoder) writeDescription(s Term, triples []Triple) {
	switch subject := s.(type) {
	case IRI:
		e.write(`  <rdf:Description rdf:about="` + escapeXMLAttr(subject.Value) + `">` + "\n")
	case BlankNode:
		e.write(`  <rdf:Description rdf:nodeID="` + escapeXMLAttr(subject.ID) + `">` + "\n")
	}
	for _, t := range triples {
		name := "rdf:type"
		if t.P != TypePredicate {
			name, _, _ = e.predicateQName(t.P.Value)
		}
		switch object := t.O.(type) {
		case IRI:
			e.write("    <" + name + ` rdf:resource="` + escapeXMLAttr(object.Value) + `"/>` + "\n")
		case BlankNode:
			e.write("    <" + name + ` rdf:nodeID="` + escapeXMLAttr(object.ID) + `"/>` + "\n")
		case Literal:
			attrs := ""
			if object.Lang != "" {
				attrs = ` xml:lang="` + escapeXMLAttr(object.Lang) + `"`
			} else if object.Datatype.Value != "" && object.Datatype.Value != XSDString {
				attrs = ` rdf:datatype="` + escapeXMLAttr(object.Datatype.Value) + `"`
			}
			e.write("    <" + name + attrs + ">" + escapeXML(object.Lexical) + "</" + name + ">\n")
		}
	}
	e.write("  </rdf:Description>\n")
}

// predicateQName finds or allocates a prefix so that iri becomes a valid
// XML element name.
func (e *rdfxmlEncoder) predicateQName(iri string) (string, string, bool) {
	if strings.HasPrefix(iri, rdfXMLNS) && isNCName(iri[len(rdfXMLNS):]) {
		return "rdf:" + iri[len(rdfXMLNS):], rdfXMLNS, true
	}
	best := ""
	for _, p := range e.prefixes {
		if strings.HasPrefix(iri, p.IRI) && isNCName(iri[len(p.IRI):]) && len(p.IRI) > len(best) {
			best = p.IRI
		}
	}
	if best != "" {
		return e.nsToPref[best] + ":" + iri[len(best):], best, true
	}
	ns, local := splitIRIForQName(iri)
	if ns == "" {
		return "", "", false
	}
	prefix, ok := e.nsToPref[ns]
	if !ok {
		prefix = "ns" + strconv.Itoa(e.autoSeq)
		e.autoSeq++
		e.nsToPref[ns] = prefix
		e.prefixes = append(e.prefixes, Prefix{Name: prefix, IRI: ns})
	}
	return prefix + ":" + local, ns, true
}

// splitIRIForQName splits iri at the longest NCName suffix.
func splitIRIForQName(iri string) (string, string) {
	for i := 0; i < len(iri); i++ {
		if isNCName(iri[i:]) {
			return iri[:i], iri[i:]
		}
	}
	return "", ""
}

// escapeXMLAttr escapes a value for a double-quoted attribute. EscapeText
// already covers quotes and line breaks.
func escapeXMLAttr(value string) string {
	return escapeXML(value)
}
