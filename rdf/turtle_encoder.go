package rdf

import (
	"io"
	"regexp"
	"strings"
)

const turtleIndent = "    "

var (
	turtleIntegerPattern = regexp.MustCompile(`^[+-]?[0-9]+$`)
	turtleDecimalPattern = regexp.MustCompile(`^[+-]?[0-9]*\.[0-9]+$`)
	turtleDoublePattern  = regexp.MustCompile(`^[+-]?([0-9]+\.[0-9]*|\.?[0-9]+)[eE][+-]?[0-9]+$`)
)

// turtleEncoder writes a graph as grouped Turtle. Blank nodes referenced
// exactly once are written inline as [ ... ]; unreferenced blank subjects
// become [] statements.
type turtleEncoder struct {
	buf      strings.Builder
	g        *Graph
	prefixes []Prefix
	emitted  map[Term]bool
}

func encodeTurtle(w io.Writer, g *Graph, o Options) error {
	e := &turtleEncoder{
		g:        g,
		prefixes: o.Prefixes,
		emitted:  make(map[Term]bool),
	}
	e.writeHeader(o.Base)

	first := true
	writeSubject := func(s Term) {
		if e.emitted[s] {
			return
		}
		if !first {
			e.write("\n")
		}
		first = false
		e.writeStatement(s)
	}
	for _, s := range g.subjects {
		if !e.inlinable(s) {
			writeSubject(s)
		}
	}
	// Blank nodes that only reference each other in a cycle are left over.
	for _, s := range g.subjects {
		writeSubject(s)
	}
	_, err := io.WriteString(w, e.buf.String())
	return err
}

func (e *turtleEncoder) write(s string) {
	e.buf.WriteString(s)
}

func (e *turtleEncoder) writeHeader(base string) {
	if base != "" {
		e.write("@base <" + escapeIRI(base) + "> .\n")
	}
	for _, p := range e.prefixes {
		if p.IRI == "" {
			continue
		}
		e.write("@prefix " + p.Name + ": <" + escapeIRI(p.IRI) + "> .\n")
	}
	if base != "" || len(e.prefixes) > 0 {
		e.write("\n")
	}
}

func (e *turtleEncoder) inlinable(term Term) bool {
	_, isBlank := term.(BlankNode)
	return isBlank && e.g.ReferenceCount(term) == 1
}

func (e *turtleEncoder) writeStatement(s Term) {
	e.emitted[s] = true
	if _, isBlank := s.(BlankNode); isBlank && e.g.ReferenceCount(s) == 0 {
		e.write("[]")
	} else {
		e.write(e.renderResource(s))
	}
	e.writePredicateList(s, 1, " ")
	e.write(" .\n")
}

// writePredicateList writes "p o, o ;\n    p o" for every predicate of s,
// preceded by lead.
func (e *turtleEncoder) writePredicateList(s Term, depth int, lead string) {
	indent := strings.Repeat(turtleIndent, depth)
	for i, group := range groupByPredicate(e.g.Outgoing(s)) {
		if i == 0 {
			e.write(lead)
		} else {
			e.write(" ;\n" + indent)
		}
		if group.predicate == TypePredicate {
			e.write("a ")
		} else {
			e.write(e.renderIRI(group.predicate) + " ")
		}
		for j, o := range group.objects {
			if j > 0 {
				e.write(", ")
			}
			e.writeObject(o, depth)
		}
	}
}

func (e *turtleEncoder) writeObject(o Term, depth int) {
	if e.inlinable(o) && !e.emitted[o] {
		e.emitted[o] = true
		if !e.g.HasSubject(o) {
			e.write("[]")
			return
		}
		e.write("[")
		e.writePredicateList(o, depth+1, "\n"+strings.Repeat(turtleIndent, depth+1))
		e.write("\n" + strings.Repeat(turtleIndent, depth) + "]")
		return
	}
	e.write(e.renderTerm(o))
}

func (e *turtleEncoder) renderIRI(iri IRI) string {
	if qname, ok := abbreviateQName(iri.Value, e.prefixes); ok {
		return qname
	}
	return renderIRI(iri)
}

func (e *turtleEncoder) renderResource(term Term) string {
	if iri, ok := term.(IRI); ok {
		return e.renderIRI(iri)
	}
	return term.String()
}

func (e *turtleEncoder) renderTerm(term Term) string {
	switch value := term.(type) {
	case IRI:
		return e.renderIRI(value)
	case BlankNode:
		return value.String()
	case Literal:
		return e.renderLiteral(value)
	default:
		return ""
	}
}

func (e *turtleEncoder) renderLiteral(l Literal) string {
	switch l.Datatype.Value {
	case XSDInteger:
		if turtleIntegerPattern.MatchString(l.Lexical) {
			return l.Lexical
		}
	case XSDDecimal:
		if turtleDecimalPattern.MatchString(l.Lexical) {
			return l.Lexical
		}
	case XSDDouble:
		if turtleDoublePattern.MatchString(l.Lexical) {
			return l.Lexical
		}
	case XSDBoolean:
		if l.Lexical == "true" || l.Lexical == "false" {
			return l.Lexical
		}
	}
	quoted := `"` + escapeLiteral(l.Lexical) + `"`
	if l.Lang != "" {
		return quoted + "@" + l.Lang
	}
	if l.Datatype.Value != "" && l.Datatype.Value != XSDString {
		return quoted + "^^" + e.renderIRI(l.Datatype)
	}
	return quoted
}

type predicateGroup struct {
	predicate IRI
	objects   []Term
}

// groupByPredicate groups triples by predicate in first-seen order, with
// rdf:type moved to the front.
func groupByPredicate(triples []Triple) []predicateGroup {
	var groups []predicateGroup
	index := make(map[IRI]int)
	for _, t := range triples {
		i, ok := index[t.P]
		if !ok {
			i = len(groups)
			index[t.P] = i
			groups = append(groups, predicateGroup{predicate: t.P})
		}
		groups[i].objects = append(groups[i].objects, t.O)
	}
	if i, ok := index[TypePredicate]; ok && i > 0 {
		typeGroup := groups[i]
		copy(groups[1:i+1], groups[:i])
		groups[0] = typeGroup
	}
	return groups
}
