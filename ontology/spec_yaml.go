package ontology

import (
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/namespace"
)

// classFile is the YAML layout read by LoadClassSpecs:
//
//	namespaces:
//	  ex: http://example.org/
//	classes:
//	  - name: Person
//	    type: ex:Person
//	    fields:
//	      - {name: name, predicate: ex:name, type: string, required: true}
//	      - {name: knows, predicate: ex:knows, type: "list<Person>"}
//
// A class with a prefix and no type IRI gets prefix:Name, like Build.
type classFile struct {
	Namespaces yaml.Node   `yaml:"namespaces"`
	Classes    []classDecl `yaml:"classes"`
}

type classDecl struct {
	Name        string      `yaml:"name"`
	Type        string      `yaml:"type,omitempty"`
	Prefix      string      `yaml:"prefix,omitempty"`
	Namespace   string      `yaml:"namespace,omitempty"`
	Parent      string      `yaml:"parent,omitempty"`
	Description string      `yaml:"description,omitempty"`
	Strict      *bool       `yaml:"strict,omitempty"`
	Fields      []fieldDecl `yaml:"fields,omitempty"`
}

type fieldDecl struct {
	Name       string `yaml:"name"`
	Predicate  string `yaml:"predicate,omitempty"`
	Type       string `yaml:"type,omitempty"`
	Alias      string `yaml:"alias,omitempty"`
	Identifier bool   `yaml:"identifier,omitempty"`
	Required   bool   `yaml:"required,omitempty"`
	Default    any    `yaml:"default,omitempty"`
}

// LoadClassSpecs registers the classes of a YAML document in the default
// registry.
func LoadClassSpecs(r io.Reader) ([]*Class, error) {
	return defaultRegistry.LoadClassSpecs(r)
}

// LoadClassSpecs registers the classes of a YAML document in order. Parents
// must be registered before, or earlier in the same document. Field types
// may name classes declared anywhere in the document.
func (r *Registry) LoadClassSpecs(src io.Reader) ([]*Class, error) {
	var file classFile
	if err := yaml.NewDecoder(src).Decode(&file); err != nil {
		return nil, errors.Wrap(err, "decode class specs")
	}
	prefixes, err := namespace.DecodePrefixes(&file.Namespaces)
	if err != nil {
		return nil, err
	}
	out := make([]*Class, 0, len(file.Classes))
	for _, decl := range file.Classes {
		var opts []ClassOption
		for _, p := range prefixes {
			opts = append(opts, WithNamespace(p.Name, p.IRI))
		}
		if decl.Parent != "" {
			parent, ok := r.Lookup(decl.Parent)
			if !ok {
				return out, errors.Wrapf(errors.ErrNotFound, "class %s: parent %q", decl.Name, decl.Parent)
			}
			opts = append(opts, WithParent(parent))
		}
		if decl.Strict != nil {
			if *decl.Strict {
				opts = append(opts, WithStrictExtras())
			} else {
				opts = append(opts, WithLenientExtras())
			}
		}
		if decl.Description != "" {
			opts = append(opts, WithDescription(decl.Description))
		}
		props := make([]Property, 0, len(decl.Fields))
		for _, fd := range decl.Fields {
			typ, err := ParseFieldType(fd.Type)
			if err != nil {
				return out, errors.Wrapf(err, "class %s: field %s", decl.Name, fd.Name)
			}
			props = append(props, Property{
				Name:       fd.Name,
				Default:    fd.Default,
				Type:       typ,
				Predicate:  fd.Predicate,
				Alias:      fd.Alias,
				Identifier: fd.Identifier,
				Required:   fd.Required,
			})
		}
		c, err := r.Build(decl.Type, decl.Prefix, decl.Namespace, decl.Name, props, opts...)
		if err != nil {
			return out, err
		}
		out = append(out, c)
	}
	return out, nil
}

// ParseFieldType reads a type expression: string, int, float, bool,
// datetime, iri, any, a class name, list<T> or []T, and unions a|b.
func ParseFieldType(expr string) (FieldType, error) {
	expr = strings.TrimSpace(expr)
	if expr == "" {
		return Any, nil
	}
	if parts := splitUnion(expr); len(parts) > 1 {
		options := make([]FieldType, 0, len(parts))
		for _, part := range parts {
			t, err := ParseFieldType(part)
			if err != nil {
				return Any, err
			}
			options = append(options, t)
		}
		return Union(options...), nil
	}
	lower := strings.ToLower(expr)
	switch {
	case strings.HasPrefix(lower, "list<") && strings.HasSuffix(expr, ">"):
		elem, err := ParseFieldType(expr[len("list<") : len(expr)-1])
		if err != nil {
			return Any, err
		}
		return ListOf(elem), nil
	case strings.HasPrefix(expr, "[]"):
		elem, err := ParseFieldType(expr[2:])
		if err != nil {
			return Any, err
		}
		return ListOf(elem), nil
	}
	switch lower {
	case "string", "str", "text":
		return String, nil
	case "int", "integer", "long":
		return Int, nil
	case "float", "double", "decimal", "number":
		return Float, nil
	case "bool", "boolean":
		return Bool, nil
	case "datetime", "date", "time":
		return DateTime, nil
	case "iri", "uri", "url", "ref", "anyuri":
		return IRIRef, nil
	case "any":
		return Any, nil
	}
	if strings.ContainsAny(expr, "<>[] ") {
		return Any, errors.Wrapf(errors.ErrInvalidArgument, "malformed type %q", expr)
	}
	return ClassNamed(expr), nil
}

// splitUnion splits on '|' outside angle brackets.
func splitUnion(expr string) []string {
	var parts []string
	depth, start := 0, 0
	for i := 0; i < len(expr); i++ {
		switch expr[i] {
		case '<':
			depth++
		case '>':
			depth--
		case '|':
			if depth == 0 {
				parts = append(parts, strings.TrimSpace(expr[start:i]))
				start = i + 1
			}
		}
	}
	return append(parts, strings.TrimSpace(expr[start:]))
}
