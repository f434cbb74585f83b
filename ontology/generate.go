package ontology

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/spf13/cast"
	"gopkg.in/yaml.v3"

	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/logger"
	"github.com/geoknoesis/ontomap/namespace"
	"github.com/geoknoesis/ontomap/rdf"
)

// ClassSpec is a class derived from an ontology. IRIs are absolute and
// field types use the ParseFieldType syntax.
type ClassSpec struct {
	Name        string
	IRI         string
	Label       string
	Description string
	// Parent names the generated class this one extends.
	Parent       string
	Superclasses []string
	Subclasses   []string
	Fields       []FieldSpec
}

// FieldSpec is one property of a generated class.
type FieldSpec struct {
	Name      string
	Predicate string
	Type      string
	Required  bool
	// Single is set when the ontology allows at most one value.
	Single bool
}

var (
	owlClass              = owlTerm("Class")
	owlRestriction        = owlTerm("Restriction")
	owlObjectProperty     = owlTerm("ObjectProperty")
	owlDatatypeProperty   = owlTerm("DatatypeProperty")
	owlFunctionalProperty = owlTerm("FunctionalProperty")
	owlThing              = owlTerm("Thing")
	owlOnProperty         = owlTerm("onProperty")
	owlOnClass            = owlTerm("onClass")
	owlOnDataRange        = owlTerm("onDataRange")
	owlOnDatatype         = owlTerm("onDatatype")
	owlSomeValuesFrom     = owlTerm("someValuesFrom")
	owlAllValuesFrom      = owlTerm("allValuesFrom")
	owlUnionOf            = owlTerm("unionOf")
	owlIntersectionOf     = owlTerm("intersectionOf")
	owlEquivalentClass    = owlTerm("equivalentClass")

	rdfsClass      = rdfsTerm("Class")
	rdfsSubClassOf = rdfsTerm("subClassOf")
	rdfsDomain     = rdfsTerm("domain")
	rdfsRange      = rdfsTerm("range")
	rdfsComment    = rdfsTerm("comment")
	rdfsLiteral    = rdfsTerm("Literal")
	rdfsResource   = rdfsTerm("Resource")
	rdfsLabel      = rdf.IRI{Value: rdf.RDFSLabel}

	rdfFirst = rdf.IRI{Value: rdf.RDFFirst}
	rdfRest  = rdf.IRI{Value: rdf.RDFRest}
	rdfNil   = rdf.IRI{Value: rdf.RDFNil}
)

func owlTerm(local string) rdf.IRI  { return rdf.IRI{Value: namespace.OWL + local} }
func rdfsTerm(local string) rdf.IRI { return rdf.IRI{Value: rdf.RDFSNamespace + local} }

// Lower and upper bounds from the cardinality predicates. -1 is unbounded.
var cardinalities = []struct {
	pred     rdf.IRI
	min, max bool
}{
	{owlTerm("cardinality"), true, true},
	{owlTerm("minCardinality"), true, false},
	{owlTerm("maxCardinality"), false, true},
	{owlTerm("qualifiedCardinality"), true, true},
	{owlTerm("minQualifiedCardinality"), true, false},
	{owlTerm("maxQualifiedCardinality"), false, true},
}

var xsdFieldTypes = map[string]string{
	"string": "string", "normalizedString": "string", "token": "string", "language": "string",
	"Name": "string", "NCName": "string", "NMTOKEN": "string",
	"integer": "int", "int": "int", "long": "int", "short": "int", "byte": "int",
	"nonNegativeInteger": "int", "positiveInteger": "int", "nonPositiveInteger": "int", "negativeInteger": "int",
	"unsignedLong": "int", "unsignedInt": "int", "unsignedShort": "int", "unsignedByte": "int",
	"decimal": "float", "double": "float", "float": "float",
	"dateTime": "datetime", "dateTimeStamp": "datetime", "date": "datetime", "time": "datetime",
	"boolean": "bool", "anyURI": "iri",
}

// restriction is the merged view of every restriction a class places on
// one property.
type restriction struct {
	property rdf.IRI
	min      int
	max      int
	target   rdf.Term
}

// ClassSpecsFromGraph derives class specs from the owl:Class and rdfs:Class
// declarations in g. Fields come from owl:Restriction superclasses and from
// properties whose rdfs:domain names the class. A property may hold one
// value when a restriction caps it at one or it is an
// owl:FunctionalProperty; otherwise the field is a list. Parents are
// ordered before their subclasses.
func ClassSpecsFromGraph(g *rdf.Graph) ([]ClassSpec, error) {
	if g == nil {
		return nil, errors.Wrap(errors.ErrInvalidArgument, "nil graph")
	}
	gen := &generator{g: g, names: make(map[string]string)}
	gen.collectClasses()
	if len(gen.classes) == 0 {
		return nil, errors.WithHint(
			errors.Wrap(errors.ErrNotFound, "no owl:Class or rdfs:Class declarations"),
			"generation reads class declarations from an ontology document")
	}
	gen.collectDomains()

	specs := make(map[string]*ClassSpec, len(gen.classes))
	for _, c := range gen.classes {
		spec := gen.classSpec(c)
		specs[c.Value] = &spec
		logger.Logger.Debugw("Generated class",
			logger.FieldClass, spec.Name,
			logger.FieldIRI, spec.IRI,
			logger.FieldCount, len(spec.Fields))
	}
	return orderParentsFirst(gen.classes, specs), nil
}

type generator struct {
	g       *rdf.Graph
	classes []rdf.IRI
	isClass map[rdf.IRI]bool
	// names maps class IRIs to unique class names.
	names   map[string]string
	domains map[rdf.IRI][]rdf.IRI
}

func (gen *generator) collectClasses() {
	gen.isClass = make(map[rdf.IRI]bool)
	for _, typ := range []rdf.IRI{owlClass, rdfsClass} {
		for _, s := range gen.g.SubjectsOfType(typ) {
			if iri, ok := s.(rdf.IRI); ok && !gen.isClass[iri] {
				gen.isClass[iri] = true
				gen.classes = append(gen.classes, iri)
			}
		}
	}
	sort.Slice(gen.classes, func(i, j int) bool { return gen.classes[i].Value < gen.classes[j].Value })

	taken := make(map[string]bool, len(gen.classes))
	for _, c := range gen.classes {
		name := uniqueName(namespace.LocalName(c.Value), taken)
		gen.names[c.Value] = name
	}
}

func (gen *generator) collectDomains() {
	gen.domains = make(map[rdf.IRI][]rdf.IRI)
	for _, t := range gen.g.Triples() {
		if t.P != rdfsDomain {
			continue
		}
		p, ok := t.S.(rdf.IRI)
		if !ok {
			continue
		}
		for _, c := range gen.classExpression(t.O, 0) {
			if gen.isClass[c] {
				gen.domains[c] = append(gen.domains[c], p)
			}
		}
	}
}

// classExpression returns the named classes of a class or an owl:unionOf.
func (gen *generator) classExpression(term rdf.Term, depth int) []rdf.IRI {
	if iri, ok := term.(rdf.IRI); ok {
		return []rdf.IRI{iri}
	}
	if depth > 8 {
		return nil
	}
	var out []rdf.IRI
	for _, list := range gen.g.Objects(term, owlUnionOf) {
		for _, item := range gen.listItems(list) {
			out = append(out, gen.classExpression(item, depth+1)...)
		}
	}
	return out
}

// listItems reads an RDF collection. A malformed or cyclic list yields the
// items read so far.
func (gen *generator) listItems(head rdf.Term) []rdf.Term {
	var out []rdf.Term
	seen := make(map[rdf.Term]bool)
	for node := head; node != nil && node != rdf.Term(rdfNil) && !seen[node]; {
		seen[node] = true
		first := gen.first(node, rdfFirst)
		if first == nil {
			break
		}
		out = append(out, first)
		node = gen.first(node, rdfRest)
	}
	return out
}

func (gen *generator) first(s rdf.Term, p rdf.IRI) rdf.Term {
	if objs := gen.g.Objects(s, p); len(objs) > 0 {
		return objs[0]
	}
	return nil
}

func (gen *generator) literal(s rdf.Term, p rdf.IRI) string {
	for _, o := range gen.g.Objects(s, p) {
		if lit, ok := o.(rdf.Literal); ok {
			return lit.Lexical
		}
	}
	return ""
}

func (gen *generator) classSpec(c rdf.IRI) ClassSpec {
	spec := ClassSpec{
		Name:         gen.names[c.Value],
		IRI:          c.Value,
		Label:        gen.literal(c, rdfsLabel),
		Description:  gen.literal(c, rdfsComment),
		Superclasses: gen.superclasses(c),
		Subclasses:   gen.subclasses(c),
	}
	if spec.Description == "" {
		spec.Description = spec.Label
	}
	for _, super := range spec.Superclasses {
		if name, ok := gen.names[super]; ok && super != c.Value {
			spec.Parent = name
			break
		}
	}

	taken := map[string]bool{"id": true}
	seen := make(map[rdf.IRI]bool)
	for _, r := range gen.restrictions(c) {
		seen[r.property] = true
		spec.Fields = append(spec.Fields, gen.field(r, taken))
	}
	domain := gen.domains[c]
	sort.Slice(domain, func(i, j int) bool { return domain[i].Value < domain[j].Value })
	for _, p := range domain {
		if seen[p] {
			continue
		}
		seen[p] = true
		spec.Fields = append(spec.Fields, gen.field(&restriction{property: p, max: -1}, taken))
	}
	return spec
}

func (gen *generator) superclasses(c rdf.IRI) []string {
	var out []string
	for _, o := range gen.g.Objects(c, rdfsSubClassOf) {
		if iri, ok := o.(rdf.IRI); ok && iri != c {
			out = append(out, iri.Value)
		}
	}
	sort.Strings(out)
	return out
}

func (gen *generator) subclasses(c rdf.IRI) []string {
	var out []string
	for _, other := range gen.classes {
		if other == c {
			continue
		}
		for _, o := range gen.g.Objects(other, rdfsSubClassOf) {
			if o == rdf.Term(c) {
				out = append(out, other.Value)
				break
			}
		}
	}
	return out
}

// restrictionNodes finds restrictions given as rdfs:subClassOf or
// owl:equivalentClass, including members of an owl:intersectionOf.
func (gen *generator) restrictionNodes(c rdf.IRI) []rdf.Term {
	var out []rdf.Term
	isRestriction := func(t rdf.Term) bool {
		_, blank := t.(rdf.BlankNode)
		return blank && gen.g.HasType(t, owlRestriction)
	}
	for _, o := range gen.g.Objects(c, rdfsSubClassOf) {
		if isRestriction(o) {
			out = append(out, o)
		}
	}
	for _, o := range gen.g.Objects(c, owlEquivalentClass) {
		if isRestriction(o) {
			out = append(out, o)
			continue
		}
		for _, list := range gen.g.Objects(o, owlIntersectionOf) {
			for _, item := range gen.listItems(list) {
				if isRestriction(item) {
					out = append(out, item)
				}
			}
		}
	}
	return out
}

// restrictions merges the restrictions on each property in first-seen
// order.
func (gen *generator) restrictions(c rdf.IRI) []*restriction {
	var out []*restriction
	byProperty := make(map[rdf.IRI]*restriction)
	for _, node := range gen.restrictionNodes(c) {
		p, ok := gen.first(node, owlOnProperty).(rdf.IRI)
		if !ok {
			continue
		}
		r, ok := byProperty[p]
		if !ok {
			r = &restriction{property: p, max: -1}
			byProperty[p] = r
			out = append(out, r)
		}
		for _, card := range cardinalities {
			lit, ok := gen.first(node, card.pred).(rdf.Literal)
			if !ok {
				continue
			}
			n, err := cast.ToIntE(lit.Native())
			if err != nil || n < 0 {
				logger.Logger.Warnw("Ignoring malformed cardinality",
					logger.FieldClass, c.Value,
					logger.FieldPredicate, p.Value,
					logger.FieldValue, lit.Lexical)
				continue
			}
			if card.min && n > r.min {
				r.min = n
			}
			if card.max && (r.max < 0 || n < r.max) {
				r.max = n
			}
		}
		if len(gen.g.Objects(node, owlSomeValuesFrom)) > 0 && r.min == 0 {
			r.min = 1
		}
		for _, pred := range []rdf.IRI{owlOnClass, owlOnDataRange, owlAllValuesFrom, owlSomeValuesFrom} {
			if target := gen.first(node, pred); target != nil && r.target == nil {
				r.target = target
			}
		}
	}
	return out
}

func (gen *generator) field(r *restriction, taken map[string]bool) FieldSpec {
	p := r.property
	single := r.max >= 0 && r.max <= 1
	if !single && gen.g.HasType(p, owlFunctionalProperty) {
		single = true
	}
	target := r.target
	if target == nil {
		target = gen.first(p, rdfsRange)
	}
	typ := gen.rangeType(p, target)
	if !single {
		typ = "list<" + typ + ">"
	}
	return FieldSpec{
		Name:      uniqueName(namespace.LocalName(p.Value), taken),
		Predicate: p.Value,
		Type:      typ,
		Required:  r.min > 0,
		Single:    single,
	}
}

// rangeType maps a property range to a field type expression.
func (gen *generator) rangeType(p rdf.IRI, target rdf.Term) string {
	switch t := target.(type) {
	case nil:
		switch {
		case gen.g.HasType(p, owlDatatypeProperty):
			return "string"
		case gen.g.HasType(p, owlObjectProperty):
			return "iri"
		}
		return "any"
	case rdf.IRI:
		return gen.namedType(p, t)
	case rdf.BlankNode:
		if dt, ok := gen.first(t, owlOnDatatype).(rdf.IRI); ok {
			return gen.namedType(p, dt)
		}
		var options []string
		seen := make(map[string]bool)
		for _, c := range gen.classExpression(t, 0) {
			if name := gen.namedType(p, c); !seen[name] {
				seen[name] = true
				options = append(options, name)
			}
		}
		switch {
		case len(options) == 1:
			return options[0]
		case len(options) > 1:
			return strings.Join(options, "|")
		}
	}
	return "any"
}

func (gen *generator) namedType(p, iri rdf.IRI) string {
	if local, ok := strings.CutPrefix(iri.Value, rdf.XSDNamespace); ok {
		if typ, known := xsdFieldTypes[local]; known {
			return typ
		}
		return "string"
	}
	if name, ok := gen.names[iri.Value]; ok {
		return name
	}
	switch iri {
	case rdfsLiteral, rdf.IRI{Value: rdf.RDFLangString}:
		return "string"
	case rdfsResource, owlThing:
		return "iri"
	}
	if gen.g.HasType(p, owlDatatypeProperty) {
		return "string"
	}
	return "iri"
}

// uniqueName returns name, or name with the first free numeric suffix.
func uniqueName(name string, taken map[string]bool) string {
	if name == "" {
		name = "field"
	}
	out := name
	for i := 2; taken[out]; i++ {
		out = fmt.Sprintf("%s%d", name, i)
	}
	taken[out] = true
	return out
}

// orderParentsFirst returns the specs sorted by IRI with every parent ahead
// of its subclasses. A subclass cycle drops the parent that closes it.
func orderParentsFirst(classes []rdf.IRI, specs map[string]*ClassSpec) []ClassSpec {
	byName := make(map[string]*ClassSpec, len(specs))
	for _, s := range specs {
		byName[s.Name] = s
	}
	const (
		visiting = 1
		done     = 2
	)
	state := make(map[string]int, len(specs))
	out := make([]ClassSpec, 0, len(specs))
	var visit func(s *ClassSpec)
	visit = func(s *ClassSpec) {
		if state[s.Name] != 0 {
			return
		}
		state[s.Name] = visiting
		if parent, ok := byName[s.Parent]; ok {
			if state[parent.Name] == visiting {
				s.Parent = ""
			} else {
				visit(parent)
			}
		}
		state[s.Name] = done
		out = append(out, *s)
	}
	for _, c := range classes {
		visit(specs[c.Value])
	}
	return out
}

// WriteClassSpecs writes specs in the YAML layout LoadClassSpecs reads.
// IRIs are compacted with prefixes where possible; namespaces without a
// usable prefix get ns0, ns1 and so on.
func WriteClassSpecs(w io.Writer, specs []ClassSpec, prefixes []rdf.Prefix) error {
	cp := newCompacter(prefixes)
	file := classFile{Classes: make([]classDecl, 0, len(specs))}
	for _, s := range specs {
		decl := classDecl{
			Name:        s.Name,
			Type:        cp.compact(s.IRI),
			Parent:      s.Parent,
			Description: s.Description,
		}
		for _, f := range s.Fields {
			decl.Fields = append(decl.Fields, fieldDecl{
				Name:      f.Name,
				Predicate: cp.compact(f.Predicate),
				Type:      f.Type,
				Required:  f.Required,
			})
		}
		file.Classes = append(file.Classes, decl)
	}
	file.Namespaces = yaml.Node{Kind: yaml.MappingNode}
	for _, p := range cp.used {
		file.Namespaces.Content = append(file.Namespaces.Content,
			&yaml.Node{Kind: yaml.ScalarNode, Value: p.Name},
			&yaml.Node{Kind: yaml.ScalarNode, Value: p.IRI})
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&file); err != nil {
		return errors.Wrap(err, "encode class specs")
	}
	return errors.Wrap(enc.Close(), "encode class specs")
}

// GenerateClassSpecs derives class specs from g and writes them as YAML,
// using the prefixes bound in g.
func GenerateClassSpecs(w io.Writer, g *rdf.Graph) ([]ClassSpec, error) {
	specs, err := ClassSpecsFromGraph(g)
	if err != nil {
		return nil, err
	}
	if err := WriteClassSpecs(w, specs, g.Prefixes()); err != nil {
		return nil, err
	}
	return specs, nil
}

// compacter shortens IRIs and records the prefixes it used. Prefixes that
// are empty or would clash with the namespace catalog are not used.
type compacter struct {
	table *namespace.Table
	used  []rdf.Prefix
	seen  map[string]bool
	next  int
}

func newCompacter(prefixes []rdf.Prefix) *compacter {
	cp := &compacter{table: namespace.NewTable(), seen: make(map[string]bool)}
	for _, p := range prefixes {
		if p.Name == "" || p.IRI == "" {
			continue
		}
		if known, ok := namespace.Lookup(p.Name); ok && known != p.IRI {
			continue
		}
		cp.table.Set(p.Name, p.IRI)
	}
	return cp
}

func (cp *compacter) compact(iri string) string {
	short := cp.table.Compact(iri)
	if short == iri {
		cut := strings.LastIndexAny(iri, "#/")
		if cut <= 0 || cut == len(iri)-1 || !namespace.IsAbsolute(iri) {
			return iri
		}
		cp.table.Set(cp.freeName(), iri[:cut+1])
		short = cp.table.Compact(iri)
	}
	prefix, _, ok := namespace.SplitCompact(short)
	if !ok {
		return short
	}
	if !cp.seen[prefix] {
		cp.seen[prefix] = true
		ns, _ := cp.table.Get(prefix)
		cp.used = append(cp.used, rdf.Prefix{Name: prefix, IRI: ns})
	}
	return short
}

func (cp *compacter) freeName() string {
	for {
		name := fmt.Sprintf("ns%d", cp.next)
		cp.next++
		_, inTable := cp.table.Get(name)
		_, inCatalog := namespace.Lookup(name)
		if !inTable && !inCatalog {
			return name
		}
	}
}
