package ontology

import (
	"sort"
	"sync"

	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/logger"
	"github.com/geoknoesis/ontomap/namespace"
	"github.com/geoknoesis/ontomap/rdf"
)

// Registry holds registered classes by name and by type IRI.
type Registry struct {
	mu     sync.RWMutex
	order  []*Class
	byName map[string]*Class
	byType map[string][]*Class
}

// NewRegistry returns a registry holding only Thing.
func NewRegistry() *Registry {
	r := &Registry{
		byName: make(map[string]*Class),
		byType: make(map[string][]*Class),
	}
	r.store(thing)
	return r
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the process-wide registry used by the package-level
// functions.
func DefaultRegistry() *Registry { return defaultRegistry }

// classSpec collects ClassOptions before a class is built.
type classSpec struct {
	parent      *Class
	namespaces  []rdf.Prefix
	known       []string
	fields      []FieldMapping
	strict      bool
	strictSet   bool
	description string
}

// ClassOption configures a class at registration.
type ClassOption func(*classSpec)

// WithParent makes the class a subclass of parent. Without it the class
// derives from Thing.
func WithParent(parent *Class) ClassOption {
	return func(s *classSpec) { s.parent = parent }
}

// WithNamespace declares a prefix usable in the class's type and predicate
// IRIs.
func WithNamespace(prefix, iri string) ClassOption {
	return func(s *classSpec) { s.namespaces = append(s.namespaces, rdf.Prefix{Name: prefix, IRI: iri}) }
}

// WithKnownNamespaces declares prefixes from the namespace catalog.
func WithKnownNamespaces(prefixes ...string) ClassOption {
	return func(s *classSpec) { s.known = append(s.known, prefixes...) }
}

// WithField declares a field mapped to predicate.
func WithField(name, predicate string, typ FieldType, opts ...FieldOption) ClassOption {
	return func(s *classSpec) {
		f := FieldMapping{Name: name, Predicate: predicate, Type: typ}
		for _, opt := range opts {
			opt(&f)
		}
		s.fields = append(s.fields, f)
	}
}

// WithStrictExtras rejects construction keys that match no field.
func WithStrictExtras() ClassOption {
	return func(s *classSpec) { s.strict, s.strictSet = true, true }
}

// WithLenientExtras keeps unknown construction keys as extras even when the
// process default is strict.
func WithLenientExtras() ClassOption {
	return func(s *classSpec) { s.strict, s.strictSet = false, true }
}

// WithDescription attaches documentation to the class.
func WithDescription(text string) ClassOption {
	return func(s *classSpec) { s.description = text }
}

// FieldOption configures a field declared with WithField.
type FieldOption func(*FieldMapping)

// Alias sets an alternative input name.
func Alias(name string) FieldOption {
	return func(f *FieldMapping) { f.Alias = name }
}

// Identifier marks the field as the source of the instance id.
func Identifier() FieldOption {
	return func(f *FieldMapping) { f.Identifier = true }
}

// Default sets the value used when construction omits the field.
func Default(value any) FieldOption {
	return func(f *FieldMapping) { f.Default = value }
}

// Required fails construction when the field is missing.
func Required() FieldOption {
	return func(f *FieldMapping) { f.Required = true }
}

// Register adds a class to the default registry.
func Register(name, typeIRI string, opts ...ClassOption) (*Class, error) {
	return defaultRegistry.Register(name, typeIRI, opts...)
}

// MustRegister is Register that panics on error, for package-level class
// declarations.
func MustRegister(name, typeIRI string, opts ...ClassOption) *Class {
	c, err := defaultRegistry.Register(name, typeIRI, opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Lookup finds a class in the default registry.
func Lookup(name string) (*Class, bool) { return defaultRegistry.Lookup(name) }

// Register builds and freezes a class. Names are unique per registry.
func (r *Registry) Register(name, typeIRI string, opts ...ClassOption) (*Class, error) {
	var spec classSpec
	for _, opt := range opts {
		if opt != nil {
			opt(&spec)
		}
	}
	if name == "" {
		return nil, errors.Wrap(errors.ErrInvalidArgument, "class name is required")
	}
	for _, prefix := range spec.known {
		iri, ok := namespace.Lookup(prefix)
		if !ok {
			return nil, errors.WithHint(
				errors.Wrapf(errors.ErrNotFound, "class %s: namespace %q is not in the catalog", name, prefix),
				"declare it with WithNamespace or namespace.Register")
		}
		spec.namespaces = append(spec.namespaces, rdf.Prefix{Name: prefix, IRI: iri})
	}
	parent := spec.parent
	if parent == nil {
		parent = thing
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.byName[name]; exists {
		return nil, errors.Wrapf(errors.ErrFrozen, "class %s is already registered", name)
	}
	c, err := newClass(r, name, typeIRI, parent, spec)
	if err != nil {
		return nil, err
	}
	r.store(c)
	logger.Logger.Debugw("Registered class",
		logger.FieldClass, c.name,
		logger.FieldIRI, c.typeIRI,
		logger.FieldCount, len(c.fields))
	return c, nil
}

func (r *Registry) store(c *Class) {
	r.order = append(r.order, c)
	r.byName[c.name] = c
	r.byType[c.typeIRI] = append(r.byType[c.typeIRI], c)
}

// Lookup returns the class registered under name.
func (r *Registry) Lookup(name string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byName[name]
	return c, ok
}

// ByTypeIRI returns the classes mapped to an absolute type IRI, in
// registration order.
func (r *Registry) ByTypeIRI(iri string) []*Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*Class, len(r.byType[iri]))
	copy(out, r.byType[iri])
	return out
}

// Classes returns every registered class sorted by name.
func (r *Registry) Classes() []*Class {
	r.mu.RLock()
	out := make([]*Class, len(r.order))
	copy(out, r.order)
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].name < out[j].name })
	return out
}
