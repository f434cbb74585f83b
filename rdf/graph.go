package rdf

import "github.com/geoknoesis/ontomap/errors"

// Prefix binds a short name to a namespace IRI.
type Prefix struct {
	Name string
	IRI  string
}

// Graph is a de-duplicated set of triples that keeps insertion order.
// It is not safe for concurrent mutation.
type Graph struct {
	triples   []Triple
	seen      map[Triple]struct{}
	subjects  []Term
	bySubject map[Term][]int
	objectRef map[Term]int
	prefixes  []Prefix
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		seen:      make(map[Triple]struct{}),
		bySubject: make(map[Term][]int),
		objectRef: make(map[Term]int),
	}
}

// Add inserts t unless an identical triple is already present. It reports
// whether the triple was new.
func (g *Graph) Add(t Triple) (bool, error) {
	if !t.Valid() {
		return false, errors.Wrapf(ErrInvalidTriple, "%v %v %v", t.S, t.P, t.O)
	}
	if _, ok := g.seen[t]; ok {
		return false, nil
	}
	g.seen[t] = struct{}{}
	if _, ok := g.bySubject[t.S]; !ok {
		g.subjects = append(g.subjects, t.S)
	}
	g.bySubject[t.S] = append(g.bySubject[t.S], len(g.triples))
	g.triples = append(g.triples, t)
	if IsResource(t.O) {
		g.objectRef[t.O]++
	}
	return true, nil
}

// MustAdd is Add for triples the caller has already validated.
func (g *Graph) MustAdd(s Term, p IRI, o Term) {
	if _, err := g.Add(Triple{S: s, P: p, O: o}); err != nil {
		panic(err)
	}
}

// Len returns the number of triples.
func (g *Graph) Len() int { return len(g.triples) }

// Triples returns the triples in insertion order.
func (g *Graph) Triples() []Triple {
	out := make([]Triple, len(g.triples))
	copy(out, g.triples)
	return out
}

// Subjects returns every subject in first-seen order.
func (g *Graph) Subjects() []Term {
	out := make([]Term, len(g.subjects))
	copy(out, g.subjects)
	return out
}

// HasSubject reports whether s has outgoing triples.
func (g *Graph) HasSubject(s Term) bool {
	_, ok := g.bySubject[s]
	return ok
}

// Outgoing returns the triples whose subject is s, in insertion order.
func (g *Graph) Outgoing(s Term) []Triple {
	idx := g.bySubject[s]
	out := make([]Triple, 0, len(idx))
	for _, i := range idx {
		out = append(out, g.triples[i])
	}
	return out
}

// Objects returns the objects of (s, p, ?).
func (g *Graph) Objects(s Term, p IRI) []Term {
	var out []Term
	for _, i := range g.bySubject[s] {
		if g.triples[i].P == p {
			out = append(out, g.triples[i].O)
		}
	}
	return out
}

// Types returns the rdf:type IRIs of s.
func (g *Graph) Types(s Term) []IRI {
	var out []IRI
	for _, o := range g.Objects(s, TypePredicate) {
		if iri, ok := o.(IRI); ok {
			out = append(out, iri)
		}
	}
	return out
}

// HasType reports whether s is declared with rdf:type typ.
func (g *Graph) HasType(s Term, typ IRI) bool {
	_, ok := g.seen[Triple{S: s, P: TypePredicate, O: typ}]
	return ok
}

// SubjectsOfType returns the subjects typed with typ, in first-seen order.
func (g *Graph) SubjectsOfType(typ IRI) []Term {
	var out []Term
	for _, s := range g.subjects {
		if g.HasType(s, typ) {
			out = append(out, s)
		}
	}
	return out
}

// ReferenceCount returns how many triples use term as their object.
func (g *Graph) ReferenceCount(term Term) int {
	return g.objectRef[term]
}

// BindPrefix records a prefix declared by a source document or chosen by a
// caller. Rebinding a name replaces its IRI in place.
func (g *Graph) BindPrefix(name, iri string) {
	for i, p := range g.prefixes {
		if p.Name == name {
			g.prefixes[i].IRI = iri
			return
		}
	}
	g.prefixes = append(g.prefixes, Prefix{Name: name, IRI: iri})
}

// Prefixes returns the bound prefixes in binding order.
func (g *Graph) Prefixes() []Prefix {
	out := make([]Prefix, len(g.prefixes))
	copy(out, g.prefixes)
	return out
}

// Merge adds every triple and prefix of other to g.
func (g *Graph) Merge(other *Graph) {
	for _, t := range other.triples {
		_, _ = g.Add(t)
	}
	for _, p := range other.prefixes {
		g.BindPrefix(p.Name, p.IRI)
	}
}
