package ontology

import (
	"bytes"
	"io"
	"reflect"
	"sort"
	"strings"

	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/logger"
	"github.com/geoknoesis/ontomap/namespace"
	"github.com/geoknoesis/ontomap/rdf"
)

type serializeConfig struct {
	indent          string
	extraNamespaces []rdf.Prefix
	terms           map[string]string
	ignoreConflicts bool
	localPrefix     string
	localNamespace  string
}

// SerializeOption configures Serialize and ResolveContext.
type SerializeOption func(*serializeConfig)

func newSerializeConfig(opts []SerializeOption) serializeConfig {
	d := CurrentDefaults()
	cfg := serializeConfig{
		indent:          d.Indent,
		ignoreConflicts: d.IgnoreConflicts,
		localPrefix:     d.LocalPrefix,
		localNamespace:  d.LocalNamespace,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithIndent sets the JSON-LD indentation. An empty string writes compact
// JSON. Other formats ignore it.
func WithIndent(indent string) SerializeOption {
	return func(c *serializeConfig) { c.indent = indent }
}

// WithExtraNamespace adds a prefix to the context. The first extra namespace
// also receives extras whose names match no other rule.
func WithExtraNamespace(prefix, iri string) SerializeOption {
	return func(c *serializeConfig) {
		c.extraNamespaces = append(c.extraNamespaces, rdf.Prefix{Name: prefix, IRI: iri})
	}
}

// WithContext supplies ad hoc term definitions (name to absolute IRI) for
// extras. Used terms are written into the JSON-LD @context.
func WithContext(terms map[string]string) SerializeOption {
	return func(c *serializeConfig) {
		if c.terms == nil {
			c.terms = make(map[string]string, len(terms))
		}
		for k, v := range terms {
			c.terms[k] = v
		}
	}
}

// IgnoreNamespaceConflicts keeps the first binding of a prefix bound twice.
func IgnoreNamespaceConflicts() SerializeOption {
	return func(c *serializeConfig) { c.ignoreConflicts = true }
}

// WithLocalNamespace overrides the namespace used for unmapped fields and
// extras.
func WithLocalNamespace(prefix, iri string) SerializeOption {
	return func(c *serializeConfig) { c.localPrefix, c.localNamespace = prefix, iri }
}

// Serialize renders inst and every instance reachable from it.
func Serialize(inst *Instance, format rdf.Format, opts ...SerializeOption) ([]byte, error) {
	var buf bytes.Buffer
	if err := SerializeTo(&buf, inst, format, opts...); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SerializeTo is Serialize writing to w.
func SerializeTo(w io.Writer, inst *Instance, format rdf.Format, opts ...SerializeOption) error {
	if inst == nil {
		return errors.Wrap(errors.ErrInvalidArgument, "nil instance")
	}
	return SerializeAll(w, []*Instance{inst}, format, opts...)
}

// SerializeAll renders several instances into one document.
func SerializeAll(w io.Writer, insts []*Instance, format rdf.Format, opts ...SerializeOption) error {
	g, encOpts, err := BuildGraph(insts, opts...)
	if err != nil {
		return err
	}
	if format == rdf.FormatJSONLD {
		encOpts = append(encOpts, rdf.WithIndent(newSerializeConfig(opts).indent))
	}
	if err := rdf.Encode(w, g, format, encOpts...); err != nil {
		return errors.Wrapf(err, "encode %s", format)
	}
	logger.Logger.Debugw("Serialized instances",
		logger.FieldFormat, string(format),
		logger.FieldCount, len(insts))
	return nil
}

// BuildGraph converts instances into a transient graph and returns the codec
// options (prefixes and terms) of their context.
func BuildGraph(insts []*Instance, opts ...SerializeOption) (*rdf.Graph, []rdf.Option, error) {
	cfg := newSerializeConfig(opts)
	b := &graphBuilder{
		cfg:   cfg,
		ctx:   newContextBuilder(cfg.ignoreConflicts),
		g:     rdf.NewGraph(),
		nodes: make(map[*Instance]rdf.Term),
		terms: make(map[string]bool),
	}
	for _, inst := range insts {
		if err := b.ctx.visit(inst.class); err != nil {
			return nil, nil, err
		}
	}
	for _, p := range cfg.extraNamespaces {
		if err := b.ctx.add(p.Name, p.IRI, ""); err != nil {
			return nil, nil, err
		}
	}
	for _, inst := range insts {
		if _, err := b.emit(inst); err != nil {
			return nil, nil, errors.Wrapf(err, "serialize %s", inst)
		}
	}
	if b.usedLocal {
		if err := b.ctx.add(cfg.localPrefix, cfg.localNamespace, ""); err != nil {
			return nil, nil, err
		}
	}
	encOpts := []rdf.Option{rdf.WithPrefixes(b.ctx.table.Prefixes()...)}
	if len(b.terms) > 0 {
		names := make([]string, 0, len(b.terms))
		for name := range b.terms {
			names = append(names, name)
		}
		sort.Strings(names)
		terms := make([]rdf.Prefix, len(names))
		for i, name := range names {
			terms[i] = rdf.Prefix{Name: name, IRI: cfg.terms[name]}
		}
		encOpts = append(encOpts, rdf.WithTerms(terms...))
	}
	return b.g, encOpts, nil
}

type graphBuilder struct {
	cfg       serializeConfig
	ctx       *contextBuilder
	g         *rdf.Graph
	nodes     map[*Instance]rdf.Term
	terms     map[string]bool
	usedLocal bool
}

func (b *graphBuilder) emit(inst *Instance) (rdf.Term, error) {
	if term, ok := b.nodes[inst]; ok {
		return term, nil
	}
	if err := b.ctx.visit(inst.class); err != nil {
		return nil, err
	}
	subject := b.resource(inst.id)
	b.nodes[inst] = subject
	if inst.ref {
		return subject, nil
	}
	b.g.MustAdd(subject, rdf.TypePredicate, rdf.IRI{Value: inst.class.typeIRI})
	for _, f := range inst.class.fields {
		v, ok := inst.values[f.Name]
		if !ok || f.Identifier {
			continue
		}
		predicate := f.iri
		if predicate == "" {
			predicate = b.localIRI(f.Name)
		}
		if err := b.emitValue(subject, predicate, v); err != nil {
			return nil, errors.Wrapf(err, "field %s", f.Name)
		}
	}
	for _, x := range inst.extras {
		if err := b.emitValue(subject, b.extraPredicate(x.Name), x.Value); err != nil {
			return nil, errors.Wrapf(err, "extra %s", x.Name)
		}
	}
	return subject, nil
}

func (b *graphBuilder) emitValue(subject rdf.Term, predicate string, v any) error {
	p := rdf.IRI{Value: predicate}
	switch val := v.(type) {
	case nil:
		return nil
	case *Instance:
		obj, err := b.emit(val)
		if err != nil {
			return err
		}
		b.g.MustAdd(subject, p, obj)
	case rdf.IRI:
		b.g.MustAdd(subject, p, b.resource(val.Value))
	case rdf.BlankNode:
		b.g.MustAdd(subject, p, val)
	case rdf.Literal:
		b.g.MustAdd(subject, p, val)
	case Values:
		return b.emitValue(subject, predicate, map[string]any(val))
	case Record:
		return b.emitValue(subject, predicate, map[string]any(val))
	case map[string]any:
		obj, err := b.emitRecord(val)
		if err != nil {
			return err
		}
		b.g.MustAdd(subject, p, obj)
	case string:
		b.g.MustAdd(subject, p, rdf.NewLiteral(val))
	default:
		rv := reflect.ValueOf(v)
		if rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array {
			for i := 0; i < rv.Len(); i++ {
				if err := b.emitValue(subject, predicate, rv.Index(i).Interface()); err != nil {
					return err
				}
			}
			return nil
		}
		b.g.MustAdd(subject, p, rdf.LiteralOf(v))
	}
	return nil
}

// emitRecord writes an untyped nested map as its own node. "id" and "@type"
// keys set the node identity and type; other keys follow the extras rules.
func (b *graphBuilder) emitRecord(rec map[string]any) (rdf.Term, error) {
	var node rdf.Term
	if id, ok := rec["id"].(string); ok && id != "" {
		node = b.resource(id)
	} else {
		node = rdf.BlankNode{ID: NewBlankID()}
	}
	keys := make([]string, 0, len(rec))
	for k := range rec {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		switch k {
		case "id":
			continue
		case "@type":
			for _, typ := range typeList(rec[k]) {
				b.g.MustAdd(node, rdf.TypePredicate, b.resource(typ))
			}
			continue
		}
		if err := b.emitValue(node, b.extraPredicate(k), rec[k]); err != nil {
			return nil, errors.Wrapf(err, "key %s", k)
		}
	}
	return node, nil
}

func typeList(v any) []string {
	switch t := v.(type) {
	case string:
		return []string{t}
	case []string:
		return t
	case []any:
		out := make([]string, 0, len(t))
		for _, item := range t {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

// resource turns an id into a term. Compact ids are expanded with the
// context; ids under the local prefix bind the local namespace; ids that are
// not IRI-shaped are minted under the local namespace.
func (b *graphBuilder) resource(id string) rdf.Term {
	if strings.HasPrefix(id, "_:") {
		return rdf.Resource(id)
	}
	if !namespace.IsIRIShaped(id) {
		return rdf.IRI{Value: b.localIRI(escapeLocal(id))}
	}
	if prefix, local, ok := namespace.SplitCompact(id); ok {
		if iri, bound := b.ctx.table.Get(prefix); bound {
			return rdf.IRI{Value: iri + local}
		}
		if prefix == b.cfg.localPrefix {
			return rdf.IRI{Value: b.localIRI(local)}
		}
	}
	return rdf.IRI{Value: id}
}

// extraPredicate maps an extra name to a predicate: an absolute IRI as is,
// then a compact IRI with a known prefix, an ad hoc term, the first extra
// namespace, and finally the local namespace.
func (b *graphBuilder) extraPredicate(name string) string {
	if namespace.IsAbsolute(name) && !b.isBoundCompact(name) {
		return name
	}
	if prefix, local, ok := namespace.SplitCompact(name); ok {
		if iri, bound := b.ctx.table.Get(prefix); bound {
			return iri + local
		}
	}
	if iri, ok := b.cfg.terms[name]; ok {
		b.terms[name] = true
		return iri
	}
	if len(b.cfg.extraNamespaces) > 0 {
		return b.cfg.extraNamespaces[0].IRI + name
	}
	return b.localIRI(name)
}

func (b *graphBuilder) isBoundCompact(name string) bool {
	prefix, _, ok := namespace.SplitCompact(name)
	if !ok {
		return false
	}
	_, bound := b.ctx.table.Get(prefix)
	return bound
}

func (b *graphBuilder) localIRI(name string) string {
	b.usedLocal = true
	return b.cfg.localNamespace + name
}

func escapeLocal(id string) string {
	return strings.NewReplacer(" ", "_", "\t", "_", "\n", "_", "<", "", ">", "", "\"", "", "{", "", "}", "", "|", "", "^", "", "`", "", "\\", "").Replace(id)
}

// JSONLD serializes the instance as JSON-LD.
func (i *Instance) JSONLD(opts ...SerializeOption) (string, error) {
	return i.serializeString(rdf.FormatJSONLD, opts)
}

// Turtle serializes the instance as Turtle.
func (i *Instance) Turtle(opts ...SerializeOption) (string, error) {
	return i.serializeString(rdf.FormatTurtle, opts)
}

// RDFXML serializes the instance as RDF/XML.
func (i *Instance) RDFXML(opts ...SerializeOption) (string, error) {
	return i.serializeString(rdf.FormatRDFXML, opts)
}

// NTriples serializes the instance as N-Triples.
func (i *Instance) NTriples(opts ...SerializeOption) (string, error) {
	return i.serializeString(rdf.FormatNTriples, opts)
}

func (i *Instance) serializeString(format rdf.Format, opts []SerializeOption) (string, error) {
	data, err := Serialize(i, format, opts...)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
