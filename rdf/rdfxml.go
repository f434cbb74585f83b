package rdf

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	rdfXMLNS = RDFNamespace
	xmlNS    = "http://www.w3.org/XML/1998/namespace"
)

// rdfxmlParser walks the XML token stream, treating elements alternately as
// node and property elements as RDF/XML's striped syntax requires.
type rdfxmlParser struct {
	dec      *xml.Decoder
	g        *Graph
	base     string
	bnodeSeq int
}

func decodeRDFXML(r io.Reader, g *Graph, o Options) error {
	p := &rdfxmlParser{dec: xml.NewDecoder(r), g: g, base: o.Base}
	for {
		tok, err := p.dec.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return p.wrap(err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		p.bindNamespaces(start.Attr)
		if base := attrValue(start.Attr, xmlNS, "base"); base != "" {
			p.base = base
		}
		if start.Name.Space == rdfXMLNS && start.Name.Local == "RDF" {
			continue
		}
		if _, err := p.parseNode(start, attrValue(start.Attr, xmlNS, "lang")); err != nil {
			return p.wrap(err)
		}
	}
}

func (p *rdfxmlParser) bindNamespaces(attrs []xml.Attr) {
	for _, attr := range attrs {
		if attr.Name.Space == "xmlns" && attr.Name.Local != "rdf" {
			p.g.BindPrefix(attr.Name.Local, attr.Value)
		}
	}
}

// parseNode reads a node element and its property elements up to the
// matching end tag, returning the node's subject term.
func (p *rdfxmlParser) parseNode(el xml.StartElement, lang string) (Term, error) {
	if l := attrValue(el.Attr, xmlNS, "lang"); l != "" {
		lang = l
	}
	subject := p.subjectFromNode(el)
	if !(el.Name.Space == rdfXMLNS && el.Name.Local == "Description") {
		if err := p.add(subject, TypePredicate, IRI{Value: el.Name.Space + el.Name.Local}); err != nil {
			return nil, err
		}
	}
	if err := p.propertyAttributes(subject, el.Attr, lang); err != nil {
		return nil, err
	}
	if err := p.parsePropertyElements(subject, lang); err != nil {
		return nil, err
	}
	return subject, nil
}

func (p *rdfxmlParser) parsePropertyElements(subject Term, lang string) error {
	liCounter := 0
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			pred := IRI{Value: t.Name.Space + t.Name.Local}
			if t.Name.Space == rdfXMLNS && t.Name.Local == "li" {
				liCounter++
				pred = IRI{Value: rdfXMLNS + "_" + strconv.Itoa(liCounter)}
			}
			if err := p.parseProperty(subject, pred, t, lang); err != nil {
				return err
			}
		case xml.EndElement:
			return nil
		}
	}
}

func (p *rdfxmlParser) parseProperty(subject Term, pred IRI, el xml.StartElement, lang string) error {
	if l := attrValue(el.Attr, xmlNS, "lang"); l != "" {
		lang = l
	}
	if resource := attrValue(el.Attr, rdfXMLNS, "resource"); resource != "" {
		if err := p.add(subject, pred, IRI{Value: p.resolve(resource)}); err != nil {
			return err
		}
		return p.skip()
	}
	if nodeID := attrValue(el.Attr, rdfXMLNS, "nodeID"); nodeID != "" {
		if err := p.add(subject, pred, BlankNode{ID: nodeID}); err != nil {
			return err
		}
		return p.skip()
	}

	switch attrValue(el.Attr, rdfXMLNS, "parseType") {
	case "Resource":
		node := p.newBlankNode()
		if err := p.add(subject, pred, node); err != nil {
			return err
		}
		return p.parsePropertyElements(node, lang)
	case "Collection":
		return p.parseCollection(subject, pred, lang)
	case "Literal":
		raw, err := p.innerXML()
		if err != nil {
			return err
		}
		return p.add(subject, pred, NewTypedLiteral(raw, rdfXMLNS+"XMLLiteral"))
	}

	datatype := attrValue(el.Attr, rdfXMLNS, "datatype")
	var text strings.Builder
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return err
		}
		switch t := tok.(type) {
		case xml.CharData:
			text.Write(t)
		case xml.StartElement:
			object, err := p.parseNode(t, lang)
			if err != nil {
				return err
			}
			if err := p.add(subject, pred, object); err != nil {
				return err
			}
			// Whitespace may follow the nested node before the end tag.
			return p.skip()
		case xml.EndElement:
			if hasPropertyAttributes(el.Attr) {
				node := p.newBlankNode()
				if err := p.add(subject, pred, node); err != nil {
					return err
				}
				return p.propertyAttributes(node, el.Attr, lang)
			}
			var object Literal
			switch {
			case datatype != "":
				object = NewTypedLiteral(text.String(), p.resolve(datatype))
			case lang != "":
				object = NewLangLiteral(text.String(), lang)
			default:
				object = NewLiteral(text.String())
			}
			return p.add(subject, pred, object)
		}
	}
}

func (p *rdfxmlParser) parseCollection(subject Term, pred IRI, lang string) error {
	var items []Term
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return err
		}
		if start, ok := tok.(xml.StartElement); ok {
			item, err := p.parseNode(start, lang)
			if err != nil {
				return err
			}
			items = append(items, item)
			continue
		}
		if _, ok := tok.(xml.EndElement); ok {
			break
		}
	}
	var head Term = IRI{Value: RDFNil}
	for i := len(items) - 1; i >= 0; i-- {
		cell := p.newBlankNode()
		if err := p.add(cell, IRI{Value: RDFFirst}, items[i]); err != nil {
			return err
		}
		if err := p.add(cell, IRI{Value: RDFRest}, head); err != nil {
			return err
		}
		head = cell
	}
	return p.add(subject, pred, head)
}

// propertyAttributes turns non-syntax attributes into literal triples.
func (p *rdfxmlParser) propertyAttributes(subject Term, attrs []xml.Attr, lang string) error {
	for _, attr := range attrs {
		if !isPropertyAttribute(attr) {
			continue
		}
		if attr.Name.Space == rdfXMLNS && attr.Name.Local == "type" {
			if err := p.add(subject, TypePredicate, IRI{Value: p.resolve(attr.Value)}); err != nil {
				return err
			}
			continue
		}
		var object Literal
		if lang != "" {
			object = NewLangLiteral(attr.Value, lang)
		} else {
			object = NewLiteral(attr.Value)
		}
		if err := p.add(subject, IRI{Value: attr.Name.Space + attr.Name.Local}, object); err != nil {
			return err
		}
	}
	return nil
}

func isPropertyAttribute(attr xml.Attr) bool {
	switch attr.Name.Space {
	case "", "xmlns", "xml", xmlNS:
		return false
	case rdfXMLNS:
		return attr.Name.Local == "type"
	}
	return true
}

func hasPropertyAttributes(attrs []xml.Attr) bool {
	for _, attr := range attrs {
		if isPropertyAttribute(attr) {
			return true
		}
	}
	return false
}

func (p *rdfxmlParser) subjectFromNode(el xml.StartElement) Term {
	if about := attrValue(el.Attr, rdfXMLNS, "about"); about != "" {
		return IRI{Value: p.resolve(about)}
	}
	if id := attrValue(el.Attr, rdfXMLNS, "ID"); id != "" {
		return IRI{Value: p.resolve("#" + id)}
	}
	if nodeID := attrValue(el.Attr, rdfXMLNS, "nodeID"); nodeID != "" {
		return BlankNode{ID: nodeID}
	}
	return p.newBlankNode()
}

func (p *rdfxmlParser) resolve(ref string) string {
	if p.base == "" || hasScheme(ref) {
		return ref
	}
	return resolveIRI(p.base, ref)
}

func (p *rdfxmlParser) add(s Term, pred IRI, o Term) error {
	_, err := p.g.Add(Triple{S: s, P: pred, O: o})
	return err
}

func (p *rdfxmlParser) newBlankNode() BlankNode {
	p.bnodeSeq++
	return BlankNode{ID: "x" + strconv.Itoa(p.bnodeSeq)}
}

// skip consumes tokens up to the end of the current element.
func (p *rdfxmlParser) skip() error {
	return p.dec.Skip()
}

func (p *rdfxmlParser) innerXML() (string, error) {
	var b strings.Builder
	enc := xml.NewEncoder(&b)
	depth := 0
	for {
		tok, err := p.dec.Token()
		if err != nil {
			return "", err
		}
		switch tok.(type) {
		case xml.StartElement:
			depth++
		case xml.EndElement:
			if depth == 0 {
				if err := enc.Flush(); err != nil {
					return "", err
				}
				return b.String(), nil
			}
			depth--
		}
		if err := enc.EncodeToken(xml.CopyToken(tok)); err != nil {
			return "", err
		}
	}
}

func (p *rdfxmlParser) wrap(err error) error {
	line, column := p.dec.InputPos()
	return &ParseError{Format: string(FormatRDFXML), Line: line, Column: column, Err: err}
}

func attrValue(attrs []xml.Attr, space, local string) string {
	for _, attr := range attrs {
		if attr.Name.Local != local {
			continue
		}
		if attr.Name.Space == space || (space == xmlNS && attr.Name.Space == "xml") {
			return attr.Value
		}
	}
	return ""
}

func escapeXML(value string) string {
	var b strings.Builder
	if err := xml.EscapeText(&b, []byte(value)); err != nil {
		return fmt.Sprintf("%q", value)
	}
	return b.String()
}
