package ontology

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"time"

	"github.com/go-viper/mapstructure/v2"

	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/logger"
	"github.com/geoknoesis/ontomap/namespace"
	"github.com/geoknoesis/ontomap/rdf"
)

// Values are construction inputs keyed by field name or alias. The keys "id"
// and "label" are always understood; unknown keys become extras.
type Values map[string]any

// Extra is an attribute kept on an instance that matches no field.
type Extra struct {
	Name  string
	Value any
}

// FieldValue is a set field with its value.
type FieldValue struct {
	Name  string
	Value any
}

// Instance is a validated record of a Class.
type Instance struct {
	class    *Class
	id       string
	values   map[string]any
	extras   []Extra
	warnings []error
	ref      bool
}

// New constructs an instance under the default ID policy.
func New(class *Class, values Values) (*Instance, error) {
	return NewContext(context.Background(), class, values)
}

// MustNew is New that panics on error.
func MustNew(class *Class, values Values) *Instance {
	inst, err := New(class, values)
	if err != nil {
		panic(err)
	}
	return inst
}

// NewContext constructs an instance, taking the ID policy from ctx. Every
// field problem is collected into a single *ValidationError.
func NewContext(ctx context.Context, class *Class, values Values) (*Instance, error) {
	if class == nil {
		return nil, errors.Wrap(errors.ErrInvalidArgument, "nil class")
	}
	inst := &Instance{class: class, values: make(map[string]any, len(values))}
	var issues []FieldIssue

	if f := class.identifier; f != nil {
		if raw, ok := lookupValue(values, f); ok && !isEmpty(raw) {
			inst.id = idString(raw)
			if !namespace.IsIRIShaped(inst.id) {
				w := &IdentifierShapeWarning{Class: class.name, Field: f.Name, Value: inst.id}
				inst.warnings = append(inst.warnings, w)
				logger.Logger.Warnw("Identifier is not IRI-shaped",
					logger.FieldClass, class.name,
					logger.FieldField, f.Name,
					logger.FieldValue, inst.id)
			}
		}
	}
	if raw, ok := values["id"]; ok && inst.id == "" && !isEmpty(raw) {
		switch raw.(type) {
		case string, rdf.IRI, rdf.BlankNode:
			inst.id = idString(raw)
		default:
			issues = append(issues, FieldIssue{Path: "id", Message: fmt.Sprintf("expected a string, got %T", raw), Value: raw})
		}
	}
	if inst.id == "" {
		inst.id = IDPolicyFrom(ctx).NewID()
	}

	v := &validator{ctx: ctx, reg: class.registry}
	given := make(map[string]string, len(values))
	failed := make(map[string]bool)
	for _, key := range sortedKeys(values) {
		if key == "id" {
			continue
		}
		raw := values[key]
		f, ok := class.field(key)
		if !ok {
			if class.Strict() {
				issues = append(issues, FieldIssue{Path: key, Message: "extra fields not permitted", Value: raw})
				continue
			}
			inst.extras = append(inst.extras, Extra{Name: key, Value: raw})
			continue
		}
		if prev, dup := given[f.Name]; dup {
			issues = append(issues, FieldIssue{Path: f.Name, Message: fmt.Sprintf("given as both %q and %q", prev, key)})
			failed[f.Name] = true
			continue
		}
		given[f.Name] = key
		out, fieldIssues := v.check(f.Type, raw)
		if len(fieldIssues) > 0 {
			for i := range fieldIssues {
				if fieldIssues[i].Value == nil && fieldIssues[i].Path == "" {
					fieldIssues[i].Value = raw
				}
			}
			issues = append(issues, prefixIssues(f.Name, fieldIssues)...)
			failed[f.Name] = true
			continue
		}
		if out != nil {
			inst.values[f.Name] = out
		}
	}

	for _, f := range class.fields {
		if _, ok := inst.values[f.Name]; ok || failed[f.Name] {
			continue
		}
		switch {
		case f.Default != nil:
			if f.Type.hasClassRef() {
				out, fieldIssues := v.check(f.Type, f.Default)
				if len(fieldIssues) > 0 {
					issues = append(issues, prefixIssues(f.Name, fieldIssues)...)
					continue
				}
				inst.values[f.Name] = out
				continue
			}
			inst.values[f.Name] = copyDefault(f.Default)
		case f.Required && !(f.Identifier && inst.id != ""):
			issues = append(issues, FieldIssue{Path: f.Name, Message: "field required"})
		}
	}

	if len(issues) > 0 {
		return nil, &ValidationError{Class: class.name, Issues: issues}
	}
	return inst, nil
}

// newReference returns a stub standing for a subject already being
// materialized. It carries only the id.
func newReference(class *Class, id string) *Instance {
	return &Instance{class: class, id: id, values: map[string]any{}, ref: true}
}

func lookupValue(values Values, f *FieldMapping) (any, bool) {
	if raw, ok := values[f.Name]; ok {
		return raw, true
	}
	if f.Alias != "" {
		raw, ok := values[f.Alias]
		return raw, ok
	}
	return nil, false
}

func isEmpty(v any) bool {
	if v == nil {
		return true
	}
	s, ok := v.(string)
	return ok && s == ""
}

func idString(v any) string {
	switch id := v.(type) {
	case string:
		return id
	case rdf.IRI:
		return id.Value
	case rdf.BlankNode:
		return id.String()
	case fmt.Stringer:
		return id.String()
	}
	return fmt.Sprint(v)
}

func sortedKeys(values Values) []string {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func copyDefault(v any) any {
	if list, ok := v.([]any); ok {
		out := make([]any, len(list))
		copy(out, list)
		return out
	}
	return v
}

// Class returns the class of the instance.
func (i *Instance) Class() *Class { return i.class }

// ID returns the identifier: an absolute IRI, a compact IRI or a blank node
// label starting with "_:".
func (i *Instance) ID() string { return i.id }

// IsBlank reports whether the id is a blank node label.
func (i *Instance) IsBlank() bool { return len(i.id) > 2 && i.id[:2] == "_:" }

// IsReference reports whether the instance is a stub created for a subject
// that was already being loaded when it was referenced again.
func (i *Instance) IsReference() bool { return i.ref }

// Label returns the rdfs:label value.
func (i *Instance) Label() string {
	s, _ := i.values["label"].(string)
	return s
}

// Warnings returns non-fatal problems found during construction.
func (i *Instance) Warnings() []error {
	out := make([]error, len(i.warnings))
	copy(out, i.warnings)
	return out
}

// Get returns a field value by name or alias, falling back to extras.
func (i *Instance) Get(name string) (any, bool) {
	if f, ok := i.class.field(name); ok {
		v, set := i.values[f.Name]
		return v, set
	}
	return i.Extra(name)
}

// Extra returns an extra attribute.
func (i *Instance) Extra(name string) (any, bool) {
	for _, x := range i.extras {
		if x.Name == name {
			return x.Value, true
		}
	}
	return nil, false
}

// Extras returns the extra attributes in construction order.
func (i *Instance) Extras() []Extra {
	out := make([]Extra, len(i.extras))
	copy(out, i.extras)
	return out
}

// Fields returns the set fields in declaration order.
func (i *Instance) Fields() []FieldValue {
	out := make([]FieldValue, 0, len(i.values))
	for _, f := range i.class.fields {
		if v, ok := i.values[f.Name]; ok {
			out = append(out, FieldValue{Name: f.Name, Value: v})
		}
	}
	return out
}

// Set validates value and assigns it. Unknown names set an extra unless the
// class is strict. The identifier field cannot change the id once assigned.
func (i *Instance) Set(name string, value any) error {
	return i.SetContext(context.Background(), name, value)
}

// SetContext is Set with nested values maps constructed under ctx.
func (i *Instance) SetContext(ctx context.Context, name string, value any) error {
	f, ok := i.class.field(name)
	if !ok {
		if i.class.Strict() {
			return &ValidationError{Class: i.class.name, Issues: []FieldIssue{{Path: name, Message: "extra fields not permitted", Value: value}}}
		}
		for n := range i.extras {
			if i.extras[n].Name == name {
				i.extras[n].Value = value
				return nil
			}
		}
		i.extras = append(i.extras, Extra{Name: name, Value: value})
		return nil
	}
	if f.Identifier && idString(value) != i.id {
		return errors.Wrapf(errors.ErrFrozen, "%s.%s is the identifier and cannot change", i.class.name, f.Name)
	}
	if value == nil {
		if f.Required {
			return &ValidationError{Class: i.class.name, Issues: []FieldIssue{{Path: f.Name, Message: "field required"}}}
		}
		delete(i.values, f.Name)
		return nil
	}
	v := &validator{ctx: ctx, reg: i.class.registry}
	out, issues := v.check(f.Type, value)
	if len(issues) > 0 {
		return &ValidationError{Class: i.class.name, Issues: prefixIssues(f.Name, issues)}
	}
	i.values[f.Name] = out
	return nil
}

// ToMap returns the fields, extras and id as a plain map. Nested instances
// become maps; an instance reached again inside itself becomes its id.
func (i *Instance) ToMap() map[string]any {
	return i.toMap(map[*Instance]bool{})
}

func (i *Instance) toMap(active map[*Instance]bool) map[string]any {
	active[i] = true
	defer delete(active, i)
	out := make(map[string]any, len(i.values)+len(i.extras)+1)
	out["id"] = i.id
	for _, x := range i.extras {
		out[x.Name] = plainValue(x.Value, active)
	}
	for name, v := range i.values {
		out[name] = plainValue(v, active)
	}
	return out
}

func plainValue(v any, active map[*Instance]bool) any {
	switch val := v.(type) {
	case *Instance:
		if active[val] || val.ref {
			return val.id
		}
		return val.toMap(active)
	case rdf.IRI:
		return val.Value
	case []any:
		out := make([]any, len(val))
		for n, item := range val {
			out[n] = plainValue(item, active)
		}
		return out
	}
	return v
}

// Decode copies the instance into out, a pointer to a struct or map, with
// mapstructure. Struct fields match by name case-insensitively or by their
// `mapstructure` tag.
func (i *Instance) Decode(out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		DecodeHook:       mapstructure.StringToTimeHookFunc(time.RFC3339),
	})
	if err != nil {
		return errors.Wrap(err, "create decoder")
	}
	if err := dec.Decode(i.ToMap()); err != nil {
		return errors.Wrapf(err, "decode %s", i.class.name)
	}
	return nil
}

// Less orders instances by id.
func (i *Instance) Less(other *Instance) bool { return i.id < other.id }

// SortInstances sorts by id in place.
func SortInstances(list []*Instance) {
	sort.SliceStable(list, func(a, b int) bool { return list[a].Less(list[b]) })
}

func (i *Instance) String() string {
	return fmt.Sprintf("%s(%s)", i.class.name, i.id)
}

// Equal reports whether two instances have the same class, fields and
// extras. Blank node ids are ignored unless compareIDs is set, since their
// labels are not stable across a round trip.
func (i *Instance) Equal(other *Instance, compareIDs bool) bool {
	if other == nil || i.class.typeIRI != other.class.typeIRI {
		return false
	}
	if compareIDs && i.id != other.id {
		return false
	}
	return reflect.DeepEqual(i.comparable(compareIDs), other.comparable(compareIDs))
}

func (i *Instance) comparable(withIDs bool) map[string]any {
	m := i.ToMap()
	if !withIDs {
		stripIDs(m)
	}
	return m
}

func stripIDs(v any) {
	switch val := v.(type) {
	case map[string]any:
		if id, ok := val["id"].(string); ok && len(id) > 2 && id[:2] == "_:" {
			delete(val, "id")
		}
		for _, item := range val {
			stripIDs(item)
		}
	case []any:
		for _, item := range val {
			stripIDs(item)
		}
	}
}
