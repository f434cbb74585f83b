package namespace

import (
	"sort"
	"strconv"
	"strings"

	"github.com/geoknoesis/ontomap/errors"
	"github.com/geoknoesis/ontomap/rdf"
)

// UnknownPrefixError reports a compact IRI whose prefix is not bound.
type UnknownPrefixError struct {
	Prefix  string
	Compact string
}

func (e *UnknownPrefixError) Error() string {
	return "unknown prefix " + strconv.Quote(e.Prefix) + " in " + strconv.Quote(e.Compact)
}

// Table is an ordered prefix -> IRI mapping. The zero value is empty and
// ready to use.
type Table struct {
	names []string
	iris  map[string]string
}

// NewTable returns a table holding prefixes in order.
func NewTable(prefixes ...rdf.Prefix) *Table {
	t := &Table{}
	for _, p := range prefixes {
		t.Set(p.Name, p.IRI)
	}
	return t
}

// Add binds name to iri unless name is already bound. When it is bound to a
// different IRI the table is unchanged and the existing IRI is returned with
// conflict set.
func (t *Table) Add(name, iri string) (existing string, conflict bool) {
	if current, ok := t.iris[name]; ok {
		return current, current != iri
	}
	t.Set(name, iri)
	return iri, false
}

// Set binds name to iri, replacing any previous binding in place.
func (t *Table) Set(name, iri string) {
	if t.iris == nil {
		t.iris = make(map[string]string)
	}
	if _, ok := t.iris[name]; !ok {
		t.names = append(t.names, name)
	}
	t.iris[name] = iri
}

// Get returns the IRI bound to name.
func (t *Table) Get(name string) (string, bool) {
	iri, ok := t.iris[name]
	return iri, ok
}

// Len returns the number of bindings.
func (t *Table) Len() int { return len(t.names) }

// Names returns the bound prefixes in binding order.
func (t *Table) Names() []string {
	out := make([]string, len(t.names))
	copy(out, t.names)
	return out
}

// Prefixes returns the bindings in order.
func (t *Table) Prefixes() []rdf.Prefix {
	out := make([]rdf.Prefix, 0, len(t.names))
	for _, name := range t.names {
		out = append(out, rdf.Prefix{Name: name, IRI: t.iris[name]})
	}
	return out
}

// Map returns the bindings as a plain map.
func (t *Table) Map() map[string]string {
	out := make(map[string]string, len(t.iris))
	for k, v := range t.iris {
		out[k] = v
	}
	return out
}

// Clone returns an independent copy.
func (t *Table) Clone() *Table {
	return NewTable(t.Prefixes()...)
}

// Merge adds every binding of other that t does not have yet and returns the
// names whose IRIs disagree.
func (t *Table) Merge(other *Table) []string {
	var conflicts []string
	for _, p := range other.Prefixes() {
		if _, conflict := t.Add(p.Name, p.IRI); conflict {
			conflicts = append(conflicts, p.Name)
		}
	}
	return conflicts
}

// Expand turns a compact IRI into an absolute one. Absolute IRIs and blank
// node identifiers are returned unchanged.
func (t *Table) Expand(value string) (string, error) {
	prefix, local, ok := SplitCompact(value)
	if !ok {
		return value, nil
	}
	if iri, bound := t.iris[prefix]; bound {
		return iri + local, nil
	}
	if IsAbsolute(value) {
		return value, nil
	}
	return "", errors.WithHintf(&UnknownPrefixError{Prefix: prefix, Compact: value},
		"known prefixes: %s", strings.Join(t.sortedNames(), ", "))
}

// Compact abbreviates iri with the longest matching namespace, or returns it
// unchanged.
func (t *Table) Compact(iri string) string {
	best := ""
	for _, name := range t.names {
		ns := t.iris[name]
		if ns == "" || !strings.HasPrefix(iri, ns) || len(iri) == len(ns) {
			continue
		}
		if best == "" || len(ns) > len(t.iris[best]) {
			best = name
		}
	}
	if best == "" {
		return iri
	}
	return best + ":" + iri[len(t.iris[best]):]
}

func (t *Table) sortedNames() []string {
	names := t.Names()
	sort.Strings(names)
	return names
}

// SplitCompact splits "prefix:local". It reports false for values without a
// colon, blank node identifiers and hierarchical IRIs ("scheme://...").
func SplitCompact(value string) (prefix, local string, ok bool) {
	colon := strings.IndexByte(value, ':')
	if colon < 0 || strings.HasPrefix(value, "_:") || strings.HasPrefix(value[colon+1:], "//") {
		return "", "", false
	}
	return value[:colon], value[colon+1:], true
}

// absoluteSchemes are non-hierarchical schemes treated as absolute IRIs
// rather than compact ones when no prefix of that name is bound.
var absoluteSchemes = map[string]bool{
	"urn": true, "mailto": true, "tag": true, "did": true, "data": true, "doi": true, "info": true,
}

// IsAbsolute reports whether value looks like an absolute IRI.
func IsAbsolute(value string) bool {
	colon := strings.IndexByte(value, ':')
	if colon <= 0 {
		return false
	}
	if strings.HasPrefix(value[colon+1:], "//") {
		return true
	}
	return absoluteSchemes[strings.ToLower(value[:colon])]
}

// IsIRIShaped reports whether value can serve as a resource identifier: an
// absolute IRI, a compact IRI or a blank node label.
func IsIRIShaped(value string) bool {
	if value == "" || strings.ContainsAny(value, " \t\n<>\"{}|^`\\") {
		return false
	}
	if strings.HasPrefix(value, "_:") {
		return len(value) > 2
	}
	prefix, local, ok := SplitCompact(value)
	if !ok {
		return IsAbsolute(value)
	}
	return prefix != "" && local != "" || IsAbsolute(value)
}

// LocalName returns the part of iri after its last '#', '/' or ':'.
func LocalName(iri string) string {
	if i := strings.LastIndexAny(iri, "#/:"); i >= 0 {
		return iri[i+1:]
	}
	return iri
}
