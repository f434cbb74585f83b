package ontology

import (
	"context"
	"io"

	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/namespace"
	"github.com/geoknoesis/ontomap/rdf"
)

// Record is a generic view of a subject: "id", "@type" and one key per
// predicate local name. Literals hold native Go values, references hold
// rdf.IRI, and nested subjects become Records.
type Record map[string]any

// ID returns the subject identifier.
func (r Record) ID() string {
	id, _ := r["id"].(string)
	return id
}

// QueryType returns a record for every subject of typeIRI in r, without
// needing a registered class.
func QueryType(ctx context.Context, r io.Reader, typeIRI string, opts ...LoadOption) ([]Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := newLoadConfig(opts)
	g, err := parseDocument(r, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "query %s", typeIRI)
	}
	records := QueryGraph(g, typeIRI)
	if cfg.limit > 0 && len(records) > cfg.limit {
		records = records[:cfg.limit]
	}
	return records, nil
}

// QueryGraph is QueryType over a parsed graph.
func QueryGraph(g *rdf.Graph, typeIRI string) []Record {
	subjects := g.SubjectsOfType(rdf.IRI{Value: typeIRI})
	out := make([]Record, 0, len(subjects))
	for _, s := range subjects {
		out = append(out, recordOf(g, s, map[rdf.Term]bool{}))
	}
	return out
}

func recordOf(g *rdf.Graph, s rdf.Term, active map[rdf.Term]bool) Record {
	active[s] = true
	defer delete(active, s)

	rec := Record{"id": termID(s)}
	switch types := g.Types(s); len(types) {
	case 0:
	case 1:
		rec["@type"] = types[0].Value
	default:
		names := make([]any, len(types))
		for i, t := range types {
			names[i] = t.Value
		}
		rec["@type"] = names
	}
	owners := make(map[string]string)
	for _, t := range g.Outgoing(s) {
		if t.P == rdf.TypePredicate {
			continue
		}
		key := namespace.LocalName(t.P.Value)
		if owner, ok := owners[key]; (ok && owner != t.P.Value) || key == "" || key == "id" {
			key = t.P.Value
		} else {
			owners[key] = t.P.Value
		}
		v := genericValue(g, t.O, active)
		switch existing := rec[key].(type) {
		case nil:
			rec[key] = v
		case []any:
			rec[key] = append(existing, v)
		default:
			rec[key] = []any{existing, v}
		}
	}
	return rec
}

// genericValue converts an object term: literals to native values, subjects
// with properties to records, other resources to rdf.IRI.
func genericValue(g *rdf.Graph, o rdf.Term, active map[rdf.Term]bool) any {
	if lit, ok := o.(rdf.Literal); ok {
		return lit.Native()
	}
	if active[o] || !g.HasSubject(o) {
		return rdf.IRI{Value: termID(o)}
	}
	return recordOf(g, o, active)
}
