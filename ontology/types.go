package ontology

import (
	"context"
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/spf13/cast"

	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/namespace"
	"github.com/geoknoesis/ontomap/rdf"
)

// Kind enumerates the value kinds a field can hold.
type Kind uint8

const (
	KindAny Kind = iota
	KindString
	KindInt
	KindFloat
	KindBool
	KindDateTime
	KindIRI
	KindClass
	KindList
	KindUnion
)

// FieldType describes and validates the values of a field. The zero value
// accepts anything.
type FieldType struct {
	kind    Kind
	class   *Class
	ref     string
	elem    *FieldType
	options []FieldType
}

// Scalar field types.
var (
	Any      = FieldType{kind: KindAny}
	String   = FieldType{kind: KindString}
	Int      = FieldType{kind: KindInt}
	Float    = FieldType{kind: KindFloat}
	Bool     = FieldType{kind: KindBool}
	DateTime = FieldType{kind: KindDateTime}
	IRIRef   = FieldType{kind: KindIRI}
)

// ClassOf accepts instances of c or its subclasses. Values maps are
// constructed into a nested instance of c.
func ClassOf(c *Class) FieldType {
	return FieldType{kind: KindClass, class: c}
}

// ClassNamed refers to a class by its registered name. The name is resolved
// in the registry of the declaring class when values are validated, which
// allows self-referencing and forward-declared classes.
func ClassNamed(name string) FieldType {
	return FieldType{kind: KindClass, ref: name}
}

// ListOf accepts a sequence of values of t. A single value is wrapped.
func ListOf(t FieldType) FieldType {
	return FieldType{kind: KindList, elem: &t}
}

// Union accepts a value matching any of ts, tried in order.
func Union(ts ...FieldType) FieldType {
	return FieldType{kind: KindUnion, options: ts}
}

// Kind returns the kind of t.
func (t FieldType) Kind() Kind { return t.kind }

// Elem returns the element type of a list, or t itself.
func (t FieldType) Elem() FieldType {
	if t.kind == KindList && t.elem != nil {
		return *t.elem
	}
	return t
}

func (t FieldType) String() string {
	switch t.kind {
	case KindString:
		return "string"
	case KindInt:
		return "int"
	case KindFloat:
		return "float"
	case KindBool:
		return "bool"
	case KindDateTime:
		return "datetime"
	case KindIRI:
		return "iri"
	case KindClass:
		if t.class != nil {
			return t.class.name
		}
		return t.ref
	case KindList:
		return "list<" + t.Elem().String() + ">"
	case KindUnion:
		parts := make([]string, len(t.options))
		for i, opt := range t.options {
			parts[i] = opt.String()
		}
		return strings.Join(parts, "|")
	default:
		return "any"
	}
}

// accepts reports whether t, or one of its union members, is of kind k.
func (t FieldType) accepts(k Kind) bool {
	if t.kind == k {
		return true
	}
	if t.kind == KindUnion {
		for _, opt := range t.options {
			if opt.accepts(k) {
				return true
			}
		}
	}
	return false
}

func (t FieldType) hasClassRef() bool {
	switch t.kind {
	case KindClass:
		return true
	case KindList:
		return t.Elem().hasClassRef()
	case KindUnion:
		for _, opt := range t.options {
			if opt.hasClassRef() {
				return true
			}
		}
	}
	return false
}

// classes returns every class reachable through t: the class itself, list
// elements and union members.
func (t FieldType) classes(reg *Registry) ([]*Class, error) {
	switch t.kind {
	case KindClass:
		c, err := t.resolve(reg)
		if err != nil {
			return nil, err
		}
		return []*Class{c}, nil
	case KindList:
		return t.Elem().classes(reg)
	case KindUnion:
		var out []*Class
		for _, opt := range t.options {
			cs, err := opt.classes(reg)
			if err != nil {
				return nil, err
			}
			out = append(out, cs...)
		}
		return out, nil
	}
	return nil, nil
}

func (t FieldType) resolve(reg *Registry) (*Class, error) {
	if t.class != nil {
		return t.class, nil
	}
	if reg != nil {
		if c, ok := reg.Lookup(t.ref); ok {
			return c, nil
		}
	}
	return nil, errors.Wrapf(errors.ErrNotFound, "class %q", t.ref)
}

// validator checks and normalizes values against field types. Nested values
// maps become instances constructed under ctx.
type validator struct {
	ctx context.Context
	reg *Registry
}

func issue(format string, args ...any) []FieldIssue {
	return []FieldIssue{{Message: fmt.Sprintf(format, args...)}}
}

func (v *validator) check(t FieldType, value any) (any, []FieldIssue) {
	if value == nil {
		return nil, nil
	}
	if lit, ok := value.(rdf.Literal); ok && t.kind != KindString && t.kind != KindAny {
		value = lit.Native()
	}
	switch t.kind {
	case KindString:
		switch s := value.(type) {
		case string:
			return s, nil
		case rdf.Literal:
			return s.Lexical, nil
		case rdf.IRI:
			return s.Value, nil
		}
		return nil, issue("expected a string, got %T", value)
	case KindInt:
		switch n := value.(type) {
		case bool:
			return nil, issue("expected an integer, got bool")
		case float64:
			if n != math.Trunc(n) {
				return nil, issue("expected an integer, got fractional %v", n)
			}
			if n >= math.MaxInt64 || n < math.MinInt64 {
				return nil, issue("integer %v out of range", n)
			}
		case float32:
			if float64(n) != math.Trunc(float64(n)) {
				return nil, issue("expected an integer, got fractional %v", n)
			}
			if float64(n) >= math.MaxInt64 || float64(n) < math.MinInt64 {
				return nil, issue("integer %v out of range", n)
			}
		case uint64:
			if n > math.MaxInt64 {
				return nil, issue("integer %d out of range", n)
			}
		case uint:
			if uint64(n) > math.MaxInt64 {
				return nil, issue("integer %d out of range", n)
			}
		}
		n, err := cast.ToInt64E(value)
		if err != nil {
			return nil, issue("expected an integer, got %q", fmt.Sprint(value))
		}
		return n, nil
	case KindFloat:
		if _, ok := value.(bool); ok {
			return nil, issue("expected a number, got bool")
		}
		f, err := cast.ToFloat64E(value)
		if err != nil {
			return nil, issue("expected a number, got %q", fmt.Sprint(value))
		}
		return f, nil
	case KindBool:
		b, err := cast.ToBoolE(value)
		if err != nil {
			return nil, issue("expected a boolean, got %q", fmt.Sprint(value))
		}
		return b, nil
	case KindDateTime:
		ts, err := cast.ToTimeE(value)
		if err != nil {
			return nil, issue("expected a date-time, got %q", fmt.Sprint(value))
		}
		return ts, nil
	case KindIRI:
		return checkIRI(value)
	case KindClass:
		return v.checkClass(t, value)
	case KindList:
		return v.checkList(t.Elem(), value)
	case KindUnion:
		var tried []string
		for _, opt := range t.options {
			if out, issues := v.check(opt, value); len(issues) == 0 {
				return out, nil
			}
			tried = append(tried, opt.String())
		}
		return nil, issue("value matches none of %s", strings.Join(tried, ", "))
	}
	return value, nil
}

func checkIRI(value any) (any, []FieldIssue) {
	switch iri := value.(type) {
	case rdf.IRI:
		return iri, nil
	case rdf.BlankNode:
		return rdf.IRI{Value: iri.String()}, nil
	case *Instance:
		return rdf.IRI{Value: iri.id}, nil
	case string:
		if namespace.IsIRIShaped(iri) {
			return rdf.IRI{Value: iri}, nil
		}
		return nil, issue("expected an IRI, got %q", iri)
	}
	return nil, issue("expected an IRI, got %T", value)
}

func (v *validator) checkClass(t FieldType, value any) (any, []FieldIssue) {
	target, err := t.resolve(v.reg)
	if err != nil {
		return nil, issue("%v", err)
	}
	switch val := value.(type) {
	case *Instance:
		if !val.class.IsA(target) {
			return nil, issue("expected %s, got %s", target.name, val.class.name)
		}
		return val, nil
	case Values:
		return v.construct(target, val)
	case map[string]any:
		return v.construct(target, Values(val))
	}
	return nil, issue("expected %s, got %T", target.name, value)
}

func (v *validator) construct(target *Class, values Values) (any, []FieldIssue) {
	inst, err := NewContext(v.ctx, target, values)
	if err != nil {
		var verr *ValidationError
		if errors.As(err, &verr) {
			return nil, verr.Issues
		}
		return nil, issue("%v", err)
	}
	return inst, nil
}

func (v *validator) checkList(elem FieldType, value any) (any, []FieldIssue) {
	rv := reflect.ValueOf(value)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		out, issues := v.check(elem, value)
		if len(issues) > 0 {
			return nil, prefixIssues("[0]", issues)
		}
		return []any{out}, nil
	}
	out := make([]any, 0, rv.Len())
	var issues []FieldIssue
	for i := 0; i < rv.Len(); i++ {
		item, itemIssues := v.check(elem, rv.Index(i).Interface())
		if len(itemIssues) > 0 {
			issues = append(issues, prefixIssues(fmt.Sprintf("[%d]", i), itemIssues)...)
			continue
		}
		if item != nil {
			out = append(out, item)
		}
	}
	if len(issues) > 0 {
		return nil, issues
	}
	return out, nil
}

// inferType guesses a field type from a default value.
func inferType(value any) FieldType {
	switch value.(type) {
	case string:
		return String
	case bool:
		return Bool
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return Int
	case float32, float64:
		return Float
	case time.Time:
		return DateTime
	case rdf.IRI:
		return IRIRef
	}
	return Any
}
