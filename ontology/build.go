package ontology

import "github.com/geoknoesis/ontomap/errors"

// Property describes one field for Build.
type Property struct {
	Name string
	// Default doubles as a type hint when Type is left as Any.
	Default    any
	Type       FieldType
	Predicate  string
	Alias      string
	Identifier bool
	Required   bool
}

// Build creates and registers a class in the default registry without a
// hand-written declaration.
func Build(typeIRI, prefix, baseIRI, className string, props []Property, opts ...ClassOption) (*Class, error) {
	return defaultRegistry.Build(typeIRI, prefix, baseIRI, className, props, opts...)
}

// Build creates and registers a class from properties. prefix is bound to
// baseIRI; an empty typeIRI becomes prefix:className and an empty predicate
// prefix:name.
func (r *Registry) Build(typeIRI, prefix, baseIRI, className string, props []Property, opts ...ClassOption) (*Class, error) {
	if className == "" {
		return nil, errors.Wrap(errors.ErrInvalidArgument, "build: class name is required")
	}
	var all []ClassOption
	if prefix != "" && baseIRI != "" {
		all = append(all, WithNamespace(prefix, baseIRI))
	}
	if typeIRI == "" {
		if prefix == "" {
			return nil, errors.WithHint(
				errors.Wrapf(errors.ErrInvalidArgument, "build %s: no type IRI", className),
				"pass a type IRI or a prefix to derive one from")
		}
		typeIRI = prefix + ":" + className
	}
	for _, p := range props {
		predicate := p.Predicate
		if predicate == "" {
			if prefix == "" {
				return nil, errors.Wrapf(errors.ErrInvalidArgument, "build %s: property %s has no predicate", className, p.Name)
			}
			predicate = prefix + ":" + p.Name
		}
		typ := p.Type
		if typ.kind == KindAny && p.Default != nil {
			typ = inferType(p.Default)
		}
		var fieldOpts []FieldOption
		if p.Alias != "" {
			fieldOpts = append(fieldOpts, Alias(p.Alias))
		}
		if p.Identifier {
			fieldOpts = append(fieldOpts, Identifier())
		}
		if p.Default != nil {
			fieldOpts = append(fieldOpts, Default(p.Default))
		}
		if p.Required {
			fieldOpts = append(fieldOpts, Required())
		}
		all = append(all, WithField(p.Name, predicate, typ, fieldOpts...))
	}
	return r.Register(className, typeIRI, append(all, opts...)...)
}
