package ontology

import (
	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/logger"
	"github.com/geoknoesis/ontomap/namespace"
)

// contextBuilder accumulates the prefix table of one serialization. It is
// never shared between calls.
type contextBuilder struct {
	table   *namespace.Table
	ignore  bool
	visited map[*Class]bool
}

func newContextBuilder(ignore bool) *contextBuilder {
	return &contextBuilder{
		table:   namespace.Framework(),
		ignore:  ignore,
		visited: make(map[*Class]bool),
	}
}

func (b *contextBuilder) add(prefix, iri, class string) error {
	existing, conflict := b.table.Add(prefix, iri)
	if !conflict {
		return nil
	}
	if b.ignore {
		logger.Logger.Warnw("Ignoring namespace conflict",
			logger.FieldPrefix, prefix,
			logger.FieldIRI, existing,
			"conflicting", iri,
			logger.FieldClass, class)
		return nil
	}
	return errors.WithHint(
		&NamespaceConflictError{Prefix: prefix, Existing: existing, Conflicting: iri, Class: class},
		"rename one of the prefixes or pass IgnoreNamespaceConflicts to keep the first binding")
}

// visit merges the namespaces of root and of every class reachable through
// its field types, breadth first.
func (b *contextBuilder) visit(root *Class) error {
	queue := []*Class{root}
	for len(queue) > 0 {
		c := queue[0]
		queue = queue[1:]
		if b.visited[c] {
			continue
		}
		b.visited[c] = true
		for _, p := range c.ns.Prefixes() {
			if err := b.add(p.Name, p.IRI, c.name); err != nil {
				return err
			}
		}
		for _, f := range c.fields {
			nested, err := f.Type.classes(c.registry)
			if err != nil {
				return errors.Wrapf(err, "class %s: field %s", c.name, f.Name)
			}
			queue = append(queue, nested...)
		}
	}
	return nil
}

// ResolveContext builds the prefix table used to serialize instances of
// class: framework prefixes, the class and its ancestors, then every nested
// class, then namespaces passed with WithExtraNamespace.
func ResolveContext(class *Class, opts ...SerializeOption) (*namespace.Table, error) {
	cfg := newSerializeConfig(opts)
	b := newContextBuilder(cfg.ignoreConflicts)
	if err := b.visit(class); err != nil {
		return nil, err
	}
	for _, p := range cfg.extraNamespaces {
		if err := b.add(p.Name, p.IRI, ""); err != nil {
			return nil, err
		}
	}
	return b.table, nil
}
