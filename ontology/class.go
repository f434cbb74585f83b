package ontology

import (
	"context"

	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/namespace"
)

// FieldMapping binds a field name to a predicate.
type FieldMapping struct {
	Name string
	// Predicate as declared, absolute or compact. Empty for a field that is
	// kept on the instance but has no vocabulary term.
	Predicate string
	// Alias is an alternative input name accepted on construction.
	Alias string
	// Identifier marks the field whose value becomes the instance id instead
	// of a predicate value.
	Identifier bool
	Type       FieldType
	Default    any
	Required   bool

	iri string
}

// IRI returns the absolute predicate IRI, or "" for an unmapped field.
func (f FieldMapping) IRI() string { return f.iri }

// Mapped reports whether the field has a predicate.
func (f FieldMapping) Mapped() bool { return f.iri != "" }

// Class is a registered mapping between a record shape and an RDF type.
// A Class is immutable once registered and safe for concurrent use.
type Class struct {
	name        string
	typeIRI     string
	typeDecl    string
	description string
	parent      *Class
	registry    *Registry

	own *namespace.Table
	ns  *namespace.Table

	fields     []*FieldMapping
	byName     map[string]*FieldMapping
	byIRI      map[string]*FieldMapping
	identifier *FieldMapping

	strict    bool
	strictSet bool
}

func newClass(reg *Registry, name, typeIRI string, parent *Class, spec classSpec) (*Class, error) {
	c := &Class{
		name:        name,
		typeDecl:    typeIRI,
		description: spec.description,
		parent:      parent,
		registry:    reg,
		own:         namespace.NewTable(),
		strict:      spec.strict,
		strictSet:   spec.strictSet,
	}
	if parent != nil {
		c.ns = parent.ns.Clone()
	} else {
		c.ns = namespace.Framework()
	}

	for _, p := range spec.namespaces {
		if p.Name == "" || p.IRI == "" {
			return nil, errors.Wrapf(errors.ErrInvalidArgument, "class %s: namespace needs a prefix and an IRI", name)
		}
		if existing, conflict := c.ns.Add(p.Name, p.IRI); conflict {
			return nil, &NamespaceConflictError{Prefix: p.Name, Existing: existing, Conflicting: p.IRI, Class: name}
		}
		c.own.Set(p.Name, p.IRI)
	}

	if typeIRI == "" {
		return nil, errors.Wrapf(errors.ErrInvalidArgument, "class %s: type IRI is required", name)
	}
	iri, err := c.expandIRI(typeIRI)
	if err != nil {
		return nil, errors.Wrapf(err, "class %s: type", name)
	}
	c.typeIRI = iri

	if parent != nil {
		c.fields = append(c.fields, parent.fields...)
	}
	ownNames := make(map[string]bool, len(spec.fields))
	ownPredicates := make(map[string]string, len(spec.fields))
	for _, declared := range spec.fields {
		f := declared
		if f.Name == "" || f.Name == "id" {
			return nil, errors.Wrapf(errors.ErrInvalidArgument, "class %s: invalid field name %q", name, f.Name)
		}
		if ownNames[f.Name] {
			return nil, errors.Wrapf(errors.ErrInvalidArgument, "class %s: field %q declared twice", name, f.Name)
		}
		ownNames[f.Name] = true
		if f.Predicate != "" {
			if f.iri, err = c.expandIRI(f.Predicate); err != nil {
				return nil, errors.Wrapf(err, "class %s: field %s", name, f.Name)
			}
			if other, dup := ownPredicates[f.iri]; dup {
				return nil, &DuplicatePredicateError{Class: name, Predicate: f.iri, Fields: [2]string{other, f.Name}}
			}
			ownPredicates[f.iri] = f.Name
		}
		if f.Default != nil && !f.Type.hasClassRef() {
			v := &validator{ctx: context.Background(), reg: reg}
			normalized, issues := v.check(f.Type, f.Default)
			if len(issues) > 0 {
				return nil, &ValidationError{Class: name, Issues: prefixIssues(f.Name, issues)}
			}
			f.Default = normalized
		}
		c.putField(&f)
	}

	c.byName = make(map[string]*FieldMapping, len(c.fields))
	c.byIRI = make(map[string]*FieldMapping, len(c.fields))
	for _, f := range c.fields {
		c.byName[f.Name] = f
	}
	for _, f := range c.fields {
		if f.Alias != "" && f.Alias != f.Name {
			if other, taken := c.byName[f.Alias]; taken {
				return nil, errors.Wrapf(errors.ErrInvalidArgument,
					"class %s: alias %q of field %s collides with field %s", name, f.Alias, f.Name, other.Name)
			}
			c.byName[f.Alias] = f
		}
		if f.iri != "" {
			c.byIRI[f.iri] = f
		}
		if f.Identifier {
			c.identifier = f
		}
	}
	return c, nil
}

// putField adds f, replacing an inherited field of the same name in place.
func (c *Class) putField(f *FieldMapping) {
	for i, existing := range c.fields {
		if existing.Name == f.Name {
			c.fields[i] = f
			return
		}
	}
	c.fields = append(c.fields, f)
}

func (c *Class) expandIRI(value string) (string, error) {
	iri, err := c.ns.Expand(value)
	if err != nil {
		return "", err
	}
	if !namespace.IsAbsolute(iri) {
		return "", errors.Wrapf(errors.ErrInvalidArgument, "%q is not an IRI", value)
	}
	return iri, nil
}

func isCompact(value string) bool {
	_, _, ok := namespace.SplitCompact(value)
	return ok
}

// Name returns the registered class name.
func (c *Class) Name() string { return c.name }

// TypeIRI returns the absolute type IRI.
func (c *Class) TypeIRI() string { return c.typeIRI }

// Description returns the free-text description given at registration.
func (c *Class) Description() string { return c.description }

// Parent returns the superclass, nil only for Thing.
func (c *Class) Parent() *Class { return c.parent }

func (c *Class) String() string { return c.name }

// IsA reports whether c is other or one of its subclasses.
func (c *Class) IsA(other *Class) bool {
	for k := c; k != nil; k = k.parent {
		if k == other {
			return true
		}
	}
	return false
}

// Strict reports whether construction rejects unknown keys. Classes that
// never chose inherit from their parent, then from the process defaults.
func (c *Class) Strict() bool {
	for k := c; k != nil; k = k.parent {
		if k.strictSet {
			return k.strict
		}
	}
	return CurrentDefaults().Strict
}

// Fields returns the effective fields, inherited ones first.
func (c *Class) Fields() []FieldMapping {
	out := make([]FieldMapping, len(c.fields))
	for i, f := range c.fields {
		out[i] = *f
	}
	return out
}

// Field looks a field up by canonical name or alias.
func (c *Class) Field(name string) (FieldMapping, bool) {
	f, ok := c.byName[name]
	if !ok {
		return FieldMapping{}, false
	}
	return *f, true
}

func (c *Class) field(name string) (*FieldMapping, bool) {
	f, ok := c.byName[name]
	return f, ok
}

// Identifier returns the field marked as identifier, if any.
func (c *Class) Identifier() (FieldMapping, bool) {
	if c.identifier == nil {
		return FieldMapping{}, false
	}
	return *c.identifier, true
}

// Namespaces returns the merged namespace table: framework prefixes, then
// ancestors' and this class's declarations.
func (c *Class) Namespaces() *namespace.Table { return c.ns.Clone() }

// DeclaredNamespaces returns only the namespaces declared on this class.
func (c *Class) DeclaredNamespaces() *namespace.Table { return c.own.Clone() }

// Resolve returns the absolute predicate of a field given by canonical name
// or alias.
func (c *Class) Resolve(field string) (string, error) {
	f, ok := c.byName[field]
	if !ok || f.iri == "" {
		return "", &UnmappedFieldError{Class: c.name, Field: field}
	}
	return f.iri, nil
}

// PredicateFor normalizes a field name or a compact/absolute IRI into an
// absolute predicate IRI using the class's merged namespaces.
func (c *Class) PredicateFor(value string) (string, error) {
	if f, ok := c.byName[value]; ok {
		if f.iri == "" {
			return "", &UnmappedFieldError{Class: c.name, Field: value}
		}
		return f.iri, nil
	}
	if !isCompact(value) && !namespace.IsAbsolute(value) {
		return "", &UnmappedFieldError{Class: c.name, Field: value}
	}
	return c.ns.Expand(value)
}

// FieldByPredicate finds the field mapped to a predicate, given absolute or
// compact. Fields declared lower in the hierarchy win.
func (c *Class) FieldByPredicate(iri string) (FieldMapping, bool) {
	f, ok := c.fieldByPredicate(iri)
	if !ok {
		return FieldMapping{}, false
	}
	return *f, true
}

func (c *Class) fieldByPredicate(iri string) (*FieldMapping, bool) {
	if f, ok := c.byIRI[iri]; ok {
		return f, true
	}
	if expanded, err := c.ns.Expand(iri); err == nil && expanded != iri {
		f, ok := c.byIRI[expanded]
		return f, ok
	}
	return nil, false
}

// IRI returns the predicate of field, or the class type IRI when field is
// empty. With compact set the result is abbreviated with the class's
// namespaces where possible.
func (c *Class) IRI(field string, compact bool) (string, error) {
	iri := c.typeIRI
	if field != "" {
		var err error
		if iri, err = c.Resolve(field); err != nil {
			return "", err
		}
	}
	if compact {
		return c.ns.Compact(iri), nil
	}
	return iri, nil
}
