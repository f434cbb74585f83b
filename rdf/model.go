package rdf

import "strconv"

// TermKind identifies RDF term types.
type TermKind uint8

const (
	// TermIRI represents an IRI term.
	TermIRI TermKind = iota
	// TermBlankNode represents a blank node term.
	TermBlankNode
	// TermLiteral represents a literal term.
	TermLiteral
)

// Term is a value that can appear in RDF statements.
// All implementations are comparable and may be used as map keys.
type Term interface {
	Kind() TermKind
	String() string
}

// IRI represents an RDF IRI.
type IRI struct {
	// Value is the IRI string value.
	Value string
}

// Kind returns TermIRI.
func (i IRI) Kind() TermKind { return TermIRI }

// String returns the IRI value.
func (i IRI) String() string { return i.Value }

// MarshalText renders the IRI as its plain value in JSON and YAML output.
func (i IRI) MarshalText() ([]byte, error) { return []byte(i.Value), nil }

// BlankNode represents an RDF blank node.
type BlankNode struct {
	// ID is the blank node identifier, without the "_:" prefix.
	ID string
}

// Kind returns TermBlankNode.
func (b BlankNode) Kind() TermKind { return TermBlankNode }

// String returns the blank node identifier prefixed with "_:".
func (b BlankNode) String() string { return "_:" + b.ID }

// Literal represents an RDF literal.
type Literal struct {
	// Lexical is the lexical form of the literal.
	Lexical string
	// Datatype is the datatype IRI, if any.
	Datatype IRI
	// Lang is the language tag, if any.
	Lang string
}

// Kind returns TermLiteral.
func (l Literal) Kind() TermKind { return TermLiteral }

// String returns the literal in N-Triples notation.
func (l Literal) String() string {
	quoted := strconv.Quote(l.Lexical)
	if l.Lang != "" {
		return quoted + "@" + l.Lang
	}
	if l.Datatype.Value != "" && l.Datatype.Value != XSDString {
		return quoted + "^^<" + l.Datatype.Value + ">"
	}
	return quoted
}

// Triple is an RDF triple.
type Triple struct {
	// S is the subject (IRI or BlankNode).
	S Term
	// P is the predicate.
	P IRI
	// O is the object.
	O Term
}

// Valid reports whether the triple has a resource subject, a predicate and an object.
func (t Triple) Valid() bool {
	if t.S == nil || t.O == nil || t.P.Value == "" {
		return false
	}
	return t.S.Kind() != TermLiteral
}

// Resource turns an identifier string into a subject term: "_:x" becomes a
// blank node, anything else an IRI.
func Resource(id string) Term {
	if len(id) > 2 && id[0] == '_' && id[1] == ':' {
		return BlankNode{ID: id[2:]}
	}
	return IRI{Value: id}
}

// IsResource reports whether term is an IRI or a blank node.
func IsResource(term Term) bool {
	if term == nil {
		return false
	}
	k := term.Kind()
	return k == TermIRI || k == TermBlankNode
}
