package ontology

import (
	"context"

	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/rdf"
)

// MapTo converts inst into an instance of target. Both classes must share a
// type IRI. Values travel by predicate, so fields may be named differently
// on each side; source fields the target does not map are kept as extras.
// The id is preserved.
func MapTo(inst *Instance, target *Class) (*Instance, error) {
	return MapToContext(context.Background(), inst, target)
}

// MapToContext is MapTo constructing under ctx.
func MapToContext(ctx context.Context, inst *Instance, target *Class) (*Instance, error) {
	if inst == nil || target == nil {
		return nil, errors.Wrap(errors.ErrInvalidArgument, "nil instance or class")
	}
	c := &converter{ctx: ctx, seen: make(map[*Instance]*Instance)}
	return c.convert(inst, target)
}

type converter struct {
	ctx  context.Context
	seen map[*Instance]*Instance
}

func (c *converter) convert(inst *Instance, target *Class) (*Instance, error) {
	if inst.class.typeIRI != target.typeIRI {
		return nil, &IncompatibleTypeError{From: inst.class.typeIRI, To: target.typeIRI}
	}
	if out, ok := c.seen[inst]; ok {
		return out, nil
	}
	if inst.ref {
		return newReference(target, inst.id), nil
	}
	c.seen[inst] = newReference(target, inst.id)

	values := Values{"id": inst.id}
	for _, f := range inst.class.fields {
		v, ok := inst.values[f.Name]
		if !ok || f.Identifier {
			continue
		}
		tf := c.targetField(f, target)
		if tf == nil {
			values[c.extraName(f, target)] = v
			continue
		}
		converted, err := c.value(v, tf, target)
		if err != nil {
			return nil, errors.Wrapf(err, "field %s", f.Name)
		}
		values[tf.Name] = converted
	}
	for _, x := range inst.extras {
		if _, taken := values[x.Name]; !taken {
			values[x.Name] = x.Value
		}
	}
	out, err := NewContext(c.ctx, target, values)
	if err != nil {
		return nil, err
	}
	c.seen[inst] = out
	return out, nil
}

// targetField matches by predicate, or by name for fields without one.
func (c *converter) targetField(f *FieldMapping, target *Class) *FieldMapping {
	if f.iri != "" {
		tf, _ := target.fieldByPredicate(f.iri)
		return tf
	}
	if tf, ok := target.byName[f.Name]; ok && tf.iri == "" {
		return tf
	}
	return nil
}

// extraName keeps the source name unless the target would read it as one of
// its own fields, in which case the predicate IRI is used.
func (c *converter) extraName(f *FieldMapping, target *Class) string {
	if _, clash := target.byName[f.Name]; clash && f.iri != "" {
		return f.iri
	}
	return f.Name
}

func (c *converter) value(v any, tf *FieldMapping, target *Class) (any, error) {
	switch val := v.(type) {
	case []any:
		out := make([]any, len(val))
		for i, item := range val {
			converted, err := c.value(item, tf, target)
			if err != nil {
				return nil, err
			}
			out[i] = converted
		}
		return out, nil
	case *Instance:
		classes, err := tf.Type.Elem().classes(target.registry)
		if err != nil {
			return nil, err
		}
		for _, nested := range classes {
			if val.class.IsA(nested) {
				return val, nil
			}
		}
		for _, nested := range classes {
			if nested.typeIRI == val.class.typeIRI {
				return c.convert(val, nested)
			}
		}
		if len(classes) == 0 && tf.Type.Elem().accepts(KindIRI) {
			return rdf.IRI{Value: val.id}, nil
		}
	}
	return v, nil
}
