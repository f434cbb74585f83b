package ontology

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/logger"
	"github.com/geoknoesis/ontomap/namespace"
	"github.com/geoknoesis/ontomap/rdf"
)

type loadConfig struct {
	limit   int
	format  rdf.Format
	context map[string]any
	base    string
	onSkip  func(*SubjectError)
	localNS string
}

// LoadOption configures loaders and queries.
type LoadOption func(*loadConfig)

func newLoadConfig(opts []LoadOption) loadConfig {
	cfg := loadConfig{localNS: CurrentDefaults().LocalNamespace}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithLimit stops after n instances. Zero or less means no limit.
func WithLimit(n int) LoadOption {
	return func(c *loadConfig) { c.limit = n }
}

// WithFormat skips content detection.
func WithFormat(f rdf.Format) LoadOption {
	return func(c *loadConfig) { c.format = f }
}

// WithContextDocument applies a JSON-LD @context to input documents that
// have none of their own.
func WithContextDocument(ctx map[string]any) LoadOption {
	return func(c *loadConfig) { c.context = ctx }
}

// WithBaseIRI resolves relative IRIs in the input against base.
func WithBaseIRI(base string) LoadOption {
	return func(c *loadConfig) { c.base = base }
}

// WithSkipHandler is called for every subject the loader skips.
func WithSkipHandler(fn func(*SubjectError)) LoadOption {
	return func(c *loadConfig) { c.onSkip = fn }
}

// WithIdentifierNamespace names the namespace the serializer minted for
// identifiers that were not IRIs. It is stripped when the identifier field
// is restored. Defaults to the configured local namespace.
func WithIdentifierNamespace(iri string) LoadOption {
	return func(c *loadConfig) { c.localNS = iri }
}

func parseDocument(r io.Reader, cfg loadConfig) (*rdf.Graph, error) {
	opts := []rdf.Option{rdf.WithBase(cfg.base), rdf.WithExpandContext(cfg.context)}
	if cfg.format != "" {
		return rdf.Decode(r, cfg.format, opts...)
	}
	g, _, err := rdf.DecodeAuto(r, opts...)
	return g, err
}

// Loader yields the instances of one class found in a document. It is
// finite and cannot be restarted.
type Loader struct {
	ctx      context.Context
	class    *Class
	m        *materializer
	subjects []rdf.Term
	pos      int
	limit    int
	produced int
	skipped  []*SubjectError
	onSkip   func(*SubjectError)
}

// NewLoader parses r and prepares to materialize every subject typed with
// class's type IRI, in document order.
func NewLoader(ctx context.Context, r io.Reader, class *Class, opts ...LoadOption) (*Loader, error) {
	if class == nil {
		return nil, errors.Wrap(errors.ErrInvalidArgument, "nil class")
	}
	cfg := newLoadConfig(opts)
	g, err := parseDocument(r, cfg)
	if err != nil {
		return nil, errors.Wrapf(err, "load %s", class.name)
	}
	return newGraphLoader(ctx, g, class, cfg), nil
}

// NewGraphLoader materializes instances from an already parsed graph.
func NewGraphLoader(ctx context.Context, g *rdf.Graph, class *Class, opts ...LoadOption) *Loader {
	return newGraphLoader(ctx, g, class, newLoadConfig(opts))
}

func newGraphLoader(ctx context.Context, g *rdf.Graph, class *Class, cfg loadConfig) *Loader {
	subjects := g.SubjectsOfType(rdf.IRI{Value: class.typeIRI})
	logger.Logger.Debugw("Found subjects",
		logger.FieldClass, class.name,
		logger.FieldIRI, class.typeIRI,
		logger.FieldCount, len(subjects))
	return &Loader{
		ctx:      ctx,
		class:    class,
		m:        newMaterializer(ctx, g, cfg.localNS),
		subjects: subjects,
		limit:    cfg.limit,
		onSkip:   cfg.onSkip,
	}
}

// Next returns the next instance, or io.EOF when the document or the limit
// is exhausted. Subjects that fail validation are skipped.
func (l *Loader) Next() (*Instance, error) {
	for {
		if err := l.ctx.Err(); err != nil {
			return nil, err
		}
		if (l.limit > 0 && l.produced >= l.limit) || l.pos >= len(l.subjects) {
			return nil, io.EOF
		}
		s := l.subjects[l.pos]
		l.pos++
		inst, err := l.m.materialize(s, l.class)
		if err != nil {
			l.skip(&SubjectError{Subject: termID(s), Err: err})
			continue
		}
		l.produced++
		return inst, nil
	}
}

func (l *Loader) skip(se *SubjectError) {
	l.skipped = append(l.skipped, se)
	logger.Logger.Warnw("Skipping subject",
		logger.FieldClass, l.class.name,
		logger.FieldSubject, se.Subject,
		logger.FieldError, se.Err)
	if l.onSkip != nil {
		l.onSkip(se)
	}
}

// Skipped returns the subjects skipped so far.
func (l *Loader) Skipped() []*SubjectError {
	out := make([]*SubjectError, len(l.skipped))
	copy(out, l.skipped)
	return out
}

// Load collects every instance of class in r.
func Load(ctx context.Context, r io.Reader, class *Class, opts ...LoadOption) ([]*Instance, error) {
	l, err := NewLoader(ctx, r, class, opts...)
	if err != nil {
		return nil, err
	}
	return l.All()
}

// LoadString is Load over a string.
func LoadString(ctx context.Context, doc string, class *Class, opts ...LoadOption) ([]*Instance, error) {
	return Load(ctx, strings.NewReader(doc), class, opts...)
}

// LoadFile is Load over a file. The format comes from the file extension
// unless WithFormat is given, falling back to content detection.
func LoadFile(ctx context.Context, path string, class *Class, opts ...LoadOption) ([]*Instance, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer f.Close()
	if format, ok := rdf.FormatFromPath(path); ok {
		opts = append([]LoadOption{WithFormat(format)}, opts...)
	}
	return Load(ctx, f, class, opts...)
}

// All drains the loader.
func (l *Loader) All() ([]*Instance, error) {
	var out []*Instance
	for {
		inst, err := l.Next()
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return out, err
		}
		out = append(out, inst)
	}
}

// materializer turns subjects into instances. Subjects being materialized
// are tracked so that a reference back to one yields a stub instead of
// recursing forever.
type materializer struct {
	ctx    context.Context
	g      *rdf.Graph
	active map[rdf.Term]bool
	done   map[materialKey]*Instance
	// localNS prefixes identifiers minted from non-IRI values.
	localNS string
}

type materialKey struct {
	subject rdf.Term
	class   *Class
}

func newMaterializer(ctx context.Context, g *rdf.Graph, localNS string) *materializer {
	return &materializer{
		ctx:     ctx,
		g:       g,
		active:  make(map[rdf.Term]bool),
		done:    make(map[materialKey]*Instance),
		localNS: localNS,
	}
}

func (m *materializer) materialize(s rdf.Term, class *Class) (*Instance, error) {
	key := materialKey{s, class}
	if inst, ok := m.done[key]; ok {
		return inst, nil
	}
	if m.active[s] {
		return newReference(class, termID(s)), nil
	}
	m.active[s] = true
	defer delete(m.active, s)

	values := Values{"id": termID(s)}
	var fieldOrder []*FieldMapping
	fieldValues := make(map[*FieldMapping][]any)
	var extraOrder []string
	extraValues := make(map[string][]any)
	extraKeys := make(map[string]string)
	var issues []FieldIssue

	for _, t := range m.g.Outgoing(s) {
		if t.P == rdf.TypePredicate {
			continue
		}
		f, ok := class.fieldByPredicate(t.P.Value)
		if !ok || f.Identifier {
			name := extraKey(class, t.P.Value, extraKeys)
			if _, seen := extraValues[name]; !seen {
				extraOrder = append(extraOrder, name)
			}
			extraValues[name] = append(extraValues[name], genericValue(m.g, t.O, map[rdf.Term]bool{s: true}))
			continue
		}
		v, err := m.fieldValue(class, f, t.O)
		if err != nil {
			var verr *ValidationError
			if errors.As(err, &verr) {
				issues = append(issues, prefixIssues(f.Name, verr.Issues)...)
			} else {
				issues = append(issues, FieldIssue{Path: f.Name, Message: err.Error()})
			}
			continue
		}
		if _, seen := fieldValues[f]; !seen {
			fieldOrder = append(fieldOrder, f)
		}
		fieldValues[f] = append(fieldValues[f], v)
	}
	if len(issues) > 0 {
		return nil, &ValidationError{Class: class.name, Issues: issues}
	}

	for _, f := range fieldOrder {
		vals := fieldValues[f]
		switch {
		case f.Type.kind == KindList:
			values[f.Name] = vals
		case len(vals) == 1:
			values[f.Name] = vals[0]
		case f.Type.kind == KindAny:
			values[f.Name] = vals
		default:
			return nil, &ValidationError{Class: class.name, Issues: []FieldIssue{{
				Path:    f.Name,
				Message: "multiple values for a single-valued field",
				Value:   vals,
			}}}
		}
	}
	if f := class.identifier; f != nil {
		if iri, ok := s.(rdf.IRI); ok {
			values[f.Name] = m.identifierValue(iri)
		}
	}
	for _, name := range extraOrder {
		if vals := extraValues[name]; len(vals) == 1 {
			values[name] = vals[0]
		} else {
			values[name] = vals
		}
	}

	inst, err := NewContext(m.ctx, class, values)
	if err != nil {
		return nil, err
	}
	m.done[key] = inst
	return inst, nil
}

// extraKey names an unmapped predicate by its local name, or by the full IRI
// when the local name is taken by a field or by another predicate.
func extraKey(class *Class, predicate string, taken map[string]string) string {
	name := namespace.LocalName(predicate)
	if name == "" || name == "id" {
		return predicate
	}
	if _, isField := class.byName[name]; isField {
		return predicate
	}
	if owner, ok := taken[name]; ok && owner != predicate {
		return predicate
	}
	taken[name] = predicate
	return name
}

// identifierValue undoes the minting of a local IRI for an identifier that
// was not IRI-shaped. Escaped characters cannot be recovered.
func (m *materializer) identifierValue(iri rdf.IRI) string {
	if m.localNS != "" && strings.HasPrefix(iri.Value, m.localNS) && len(iri.Value) > len(m.localNS) {
		return strings.TrimPrefix(iri.Value, m.localNS)
	}
	return iri.Value
}

func (m *materializer) fieldValue(owner *Class, f *FieldMapping, obj rdf.Term) (any, error) {
	elem := f.Type.Elem()
	if lit, ok := obj.(rdf.Literal); ok {
		if elem.kind == KindString {
			return lit.Lexical, nil
		}
		return lit.Native(), nil
	}

	id := termID(obj)
	classes, err := elem.classes(owner.registry)
	if err != nil {
		return nil, err
	}
	if len(classes) > 0 {
		if m.g.HasSubject(obj) {
			return m.materialize(obj, pickClass(classes, m.g.Types(obj)))
		}
		if elem.accepts(KindIRI) {
			return rdf.IRI{Value: id}, nil
		}
		return newReference(classes[0], id), nil
	}
	switch {
	case elem.accepts(KindIRI):
		return rdf.IRI{Value: id}, nil
	case elem.kind == KindAny && m.g.HasSubject(obj):
		return recordOf(m.g, obj, map[rdf.Term]bool{}), nil
	case elem.kind == KindAny:
		return rdf.IRI{Value: id}, nil
	}
	return id, nil
}

// pickClass prefers the candidate whose type IRI the node declares.
func pickClass(candidates []*Class, types []rdf.IRI) *Class {
	for _, c := range candidates {
		for _, t := range types {
			if t.Value == c.typeIRI {
				return c
			}
		}
	}
	return candidates[0]
}

func termID(t rdf.Term) string {
	switch v := t.(type) {
	case rdf.IRI:
		return v.Value
	case rdf.BlankNode:
		return v.String()
	}
	return t.String()
}
