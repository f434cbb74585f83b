package ontology

import (
	"fmt"
	"reflect"

	"github.com/goccy/go-json"

	"github.com/geoknoesis/ontomap/errors"
)

// MergeJSONLD combines JSON-LD documents into one document with a single
// @context and a @graph holding every node. Context terms bound differently
// in two documents fail with a NamespaceConflictError. Remote context
// references are kept in front of the merged term map.
func MergeJSONLD(docs ...[]byte) ([]byte, error) {
	m := &merger{terms: make(map[string]any)}
	for i, doc := range docs {
		var parsed any
		if err := json.Unmarshal(doc, &parsed); err != nil {
			return nil, errors.Wrapf(err, "document %d", i)
		}
		if err := m.add(parsed); err != nil {
			return nil, errors.Wrapf(err, "document %d", i)
		}
	}
	var context any = m.terms
	if len(m.remote) > 0 {
		list := make([]any, 0, len(m.remote)+1)
		list = append(list, m.remote...)
		context = append(list, m.terms)
	}
	graph := m.graph
	if graph == nil {
		graph = []any{}
	}
	return json.Marshal(map[string]any{"@context": context, "@graph": graph})
}

type merger struct {
	terms  map[string]any
	remote []any
	graph  []any
}

func (m *merger) add(doc any) error {
	switch v := doc.(type) {
	case []any:
		for _, item := range v {
			if err := m.add(item); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		if ctx, ok := v["@context"]; ok {
			if err := m.context(ctx); err != nil {
				return err
			}
			delete(v, "@context")
		}
		if nodes, ok := v["@graph"]; ok {
			delete(v, "@graph")
			switch items := nodes.(type) {
			case []any:
				m.graph = append(m.graph, items...)
			case map[string]any:
				m.graph = append(m.graph, items)
			default:
				return errors.Wrapf(errors.ErrInvalidArgument, "expected @graph to be an array or object, got %T", nodes)
			}
			if len(v) == 0 {
				return nil
			}
		}
		if len(v) > 0 {
			m.graph = append(m.graph, v)
		}
		return nil
	}
	return errors.Wrapf(errors.ErrInvalidArgument, "expected a JSON-LD object, got %T", doc)
}

func (m *merger) context(ctx any) error {
	switch v := ctx.(type) {
	case nil:
		return nil
	case string:
		for _, existing := range m.remote {
			if existing == v {
				return nil
			}
		}
		m.remote = append(m.remote, v)
		return nil
	case []any:
		for _, item := range v {
			if err := m.context(item); err != nil {
				return err
			}
		}
		return nil
	case map[string]any:
		for term, def := range v {
			existing, ok := m.terms[term]
			if ok && !reflect.DeepEqual(existing, def) {
				return &NamespaceConflictError{Prefix: term, Existing: fmt.Sprint(existing), Conflicting: fmt.Sprint(def)}
			}
			m.terms[term] = def
		}
		return nil
	}
	return errors.Wrapf(errors.ErrInvalidArgument, "unsupported @context %T", ctx)
}
