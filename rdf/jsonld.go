package rdf

import (
	"bytes"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// jsonMember is one key of an ordered JSON object.
type jsonMember struct {
	key   string
	value any
}

// jsonObject marshals its members in insertion order; JSON-LD readers do not
// care, people reading @context and @id first do.
type jsonObject []jsonMember

func (o jsonObject) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, m := range o {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(m.key)
		if err != nil {
			return nil, err
		}
		value, err := json.Marshal(m.value)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(value)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// jsonldEncoder renders a graph as compacted JSON-LD. Nodes referenced by
// exactly one triple are embedded in their referrer; everything else is a
// top-level node.
type jsonldEncoder struct {
	g        *Graph
	prefixes []Prefix
	terms    map[string]string
	emitted  map[Term]bool
}

func encodeJSONLD(w io.Writer, g *Graph, o Options) error {
	e := &jsonldEncoder{
		g:       g,
		terms:   make(map[string]string, len(o.Terms)),
		emitted: make(map[Term]bool),
	}
	context := make(jsonObject, 0, len(o.Prefixes)+len(o.Terms))
	for _, p := range o.Prefixes {
		if p.IRI == "" {
			continue
		}
		context = append(context, jsonMember{p.Name, p.IRI})
		// JSON-LD 1.1 only treats terms ending in a gen-delim as prefixes.
		if strings.HasSuffix(p.IRI, "/") || strings.HasSuffix(p.IRI, "#") || strings.HasSuffix(p.IRI, ":") {
			e.prefixes = append(e.prefixes, p)
		}
	}
	for _, t := range o.Terms {
		context = append(context, jsonMember{t.Name, jsonObject{{"@id", t.IRI}}})
		e.terms[t.IRI] = t.Name
	}

	var nodes []any
	for _, s := range g.subjects {
		if g.ReferenceCount(s) != 1 {
			nodes = append(nodes, e.node(s))
		}
	}
	for _, s := range g.subjects {
		if !e.emitted[s] {
			nodes = append(nodes, e.node(s))
		}
	}

	var doc jsonObject
	if len(context) > 0 {
		doc = append(doc, jsonMember{"@context", context})
	}
	if len(nodes) == 1 {
		doc = append(doc, nodes[0].(jsonObject)...)
	} else {
		if nodes == nil {
			nodes = []any{}
		}
		doc = append(doc, jsonMember{"@graph", nodes})
	}

	data, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	if o.Indent != "" {
		var buf bytes.Buffer
		if err := json.Indent(&buf, data, "", o.Indent); err != nil {
			return err
		}
		data = buf.Bytes()
	}
	if _, err := w.Write(data); err != nil {
		return err
	}
	_, err = io.WriteString(w, "\n")
	return err
}

func (e *jsonldEncoder) node(s Term) jsonObject {
	e.emitted[s] = true
	obj := jsonObject{{"@id", e.compactID(s)}}

	var types []any
	for _, iri := range e.g.Types(s) {
		types = append(types, e.compactIRI(iri.Value))
	}
	switch len(types) {
	case 0:
	case 1:
		obj = append(obj, jsonMember{"@type", types[0]})
	default:
		obj = append(obj, jsonMember{"@type", types})
	}

	for _, group := range groupByPredicate(e.g.Outgoing(s)) {
		var values []any
		for _, o := range group.objects {
			if _, isIRI := o.(IRI); isIRI && group.predicate == TypePredicate {
				continue
			}
			values = append(values, e.value(o))
		}
		switch len(values) {
		case 0:
		case 1:
			obj = append(obj, jsonMember{e.compactIRI(group.predicate.Value), values[0]})
		default:
			obj = append(obj, jsonMember{e.compactIRI(group.predicate.Value), values})
		}
	}
	return obj
}

func (e *jsonldEncoder) value(o Term) any {
	switch v := o.(type) {
	case IRI, BlankNode:
		if e.g.ReferenceCount(o) == 1 && e.g.HasSubject(o) && !e.emitted[o] {
			return e.node(o)
		}
		return jsonObject{{"@id", e.compactID(o)}}
	case Literal:
		return e.literal(v)
	}
	return nil
}

func (e *jsonldEncoder) literal(l Literal) any {
	if l.Lang != "" {
		return jsonObject{{"@value", l.Lexical}, {"@language", l.Lang}}
	}
	switch l.Datatype.Value {
	case "", XSDString:
		return l.Lexical
	case XSDBoolean:
		if b, err := strconv.ParseBool(l.Lexical); err == nil && (l.Lexical == "true" || l.Lexical == "false") {
			return b
		}
	case XSDInteger:
		if i, err := strconv.ParseInt(l.Lexical, 10, 64); err == nil && strconv.FormatInt(i, 10) == l.Lexical {
			return i
		}
	case XSDDouble:
		// Integral doubles would read back as xsd:integer.
		if f, err := parseXSDFloat(l.Lexical); err == nil && !math.IsInf(f, 0) && !math.IsNaN(f) && f != math.Trunc(f) {
			return f
		}
	}
	return jsonObject{{"@value", l.Lexical}, {"@type", e.compactIRI(l.Datatype.Value)}}
}

func (e *jsonldEncoder) compactID(term Term) string {
	if iri, ok := term.(IRI); ok {
		return e.compactIRI(iri.Value)
	}
	return term.String()
}

func (e *jsonldEncoder) compactIRI(iri string) string {
	if term, ok := e.terms[iri]; ok {
		return term
	}
	if qname, ok := abbreviateQName(iri, e.prefixes); ok {
		return qname
	}
	return iri
}
