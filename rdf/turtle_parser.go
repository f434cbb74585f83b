package rdf

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// turtleParser is a recursive-descent parser over a complete Turtle document.
type turtleParser struct {
	input    string
	pos      int
	base     string
	prefixes map[string]string
	g        *Graph
	bnodeSeq int
}

func decodeTurtle(r io.Reader, g *Graph, o Options) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	p := &turtleParser{
		input:    string(data),
		base:     o.Base,
		prefixes: make(map[string]string),
		g:        g,
	}
	return p.parse()
}

func (p *turtleParser) parse() error {
	for {
		p.skipWS()
		if p.pos >= len(p.input) {
			return nil
		}
		if err := p.parseStatement(); err != nil {
			return err
		}
	}
}

func (p *turtleParser) parseStatement() error {
	switch {
	case p.hasPrefix("@prefix"):
		p.pos += len("@prefix")
		return p.parsePrefixDirective(true)
	case p.hasPrefix("@base"):
		p.pos += len("@base")
		return p.parseBaseDirective(true)
	case p.hasKeyword("PREFIX"):
		p.pos += len("PREFIX")
		return p.parsePrefixDirective(false)
	case p.hasKeyword("BASE"):
		p.pos += len("BASE")
		return p.parseBaseDirective(false)
	}
	return p.parseTriples()
}

func (p *turtleParser) parsePrefixDirective(dotted bool) error {
	p.skipWS()
	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] != ':' && !isWS(p.input[p.pos]) {
		p.pos++
	}
	if p.pos >= len(p.input) || p.input[p.pos] != ':' {
		return p.errorf("expected ':' in prefix declaration")
	}
	name := p.input[start:p.pos]
	p.pos++
	p.skipWS()
	iri, err := p.parseIRIRef()
	if err != nil {
		return err
	}
	p.prefixes[name] = iri
	p.g.BindPrefix(name, iri)
	if dotted {
		return p.expect('.')
	}
	return nil
}

func (p *turtleParser) parseBaseDirective(dotted bool) error {
	p.skipWS()
	iri, err := p.parseIRIRef()
	if err != nil {
		return err
	}
	p.base = iri
	if dotted {
		return p.expect('.')
	}
	return nil
}

func (p *turtleParser) parseTriples() error {
	p.skipWS()
	var subject Term
	var err error
	if p.peek() == '[' {
		subject, err = p.parseBlankNodePropertyList()
		if err != nil {
			return err
		}
		p.skipWS()
		if p.peek() == '.' {
			p.pos++
			return nil
		}
	} else {
		subject, err = p.parseSubject()
		if err != nil {
			return err
		}
	}
	if err := p.parsePredicateObjectList(subject); err != nil {
		return err
	}
	return p.expect('.')
}

func (p *turtleParser) parseSubject() (Term, error) {
	switch p.peek() {
	case '(':
		return p.parseCollection()
	case '_':
		return p.parseBlankNodeLabel()
	default:
		return p.parseIRITerm()
	}
}

func (p *turtleParser) parsePredicateObjectList(subject Term) error {
	for {
		p.skipWS()
		predicate, err := p.parseVerb()
		if err != nil {
			return err
		}
		if err := p.parseObjectList(subject, predicate); err != nil {
			return err
		}
		p.skipWS()
		if p.peek() != ';' {
			return nil
		}
		for p.peek() == ';' {
			p.pos++
			p.skipWS()
		}
		// A trailing ';' may end the list.
		switch p.peek() {
		case '.', ']', 0:
			return nil
		}
	}
}

func (p *turtleParser) parseVerb() (IRI, error) {
	if p.peek() == 'a' && p.pos+1 < len(p.input) && (isWS(p.input[p.pos+1]) || p.input[p.pos+1] == '<' || p.input[p.pos+1] == '[') {
		p.pos++
		return TypePredicate, nil
	}
	term, err := p.parseIRITerm()
	if err != nil {
		return IRI{}, err
	}
	return term.(IRI), nil
}

func (p *turtleParser) parseObjectList(subject Term, predicate IRI) error {
	for {
		p.skipWS()
		object, err := p.parseObject()
		if err != nil {
			return err
		}
		if err := p.add(subject, predicate, object); err != nil {
			return err
		}
		p.skipWS()
		if p.peek() != ',' {
			return nil
		}
		p.pos++
	}
}

func (p *turtleParser) parseObject() (Term, error) {
	ch := p.peek()
	switch {
	case ch == '[':
		return p.parseBlankNodePropertyList()
	case ch == '(':
		return p.parseCollection()
	case ch == '_' && p.hasPrefix("_:"):
		return p.parseBlankNodeLabel()
	case ch == '"' || ch == '\'':
		return p.parseRDFLiteral()
	case ch == '+' || ch == '-' || ch == '.' || isDigit(ch):
		return p.parseNumber()
	case p.hasKeyword("true"):
		p.pos += 4
		return NewTypedLiteral("true", XSDBoolean), nil
	case p.hasKeyword("false"):
		p.pos += 5
		return NewTypedLiteral("false", XSDBoolean), nil
	default:
		return p.parseIRITerm()
	}
}

func (p *turtleParser) parseBlankNodePropertyList() (Term, error) {
	p.pos++ // '['
	node := p.newBlankNode()
	p.skipWS()
	if p.peek() == ']' {
		p.pos++
		return node, nil
	}
	if err := p.parsePredicateObjectList(node); err != nil {
		return nil, err
	}
	if err := p.expect(']'); err != nil {
		return nil, err
	}
	return node, nil
}

func (p *turtleParser) parseCollection() (Term, error) {
	p.pos++ // '('
	var items []Term
	for {
		p.skipWS()
		if p.peek() == ')' {
			p.pos++
			break
		}
		if p.pos >= len(p.input) {
			return nil, p.errorf("unterminated collection")
		}
		item, err := p.parseObject()
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	if len(items) == 0 {
		return IRI{Value: RDFNil}, nil
	}
	head := p.newBlankNode()
	current := head
	for i, item := range items {
		if err := p.add(current, IRI{Value: RDFFirst}, item); err != nil {
			return nil, err
		}
		var rest Term = IRI{Value: RDFNil}
		if i < len(items)-1 {
			rest = p.newBlankNode()
		}
		if err := p.add(current, IRI{Value: RDFRest}, rest); err != nil {
			return nil, err
		}
		if next, ok := rest.(BlankNode); ok {
			current = next
		}
	}
	return head, nil
}

func (p *turtleParser) parseBlankNodeLabel() (Term, error) {
	p.pos += 2
	start := p.pos
	for p.pos < len(p.input) && isNameChar(p.input[p.pos]) {
		p.pos++
	}
	for p.pos > start && p.input[p.pos-1] == '.' {
		p.pos--
	}
	if start == p.pos {
		return nil, p.errorf("blank node label missing")
	}
	return BlankNode{ID: p.input[start:p.pos]}, nil
}

func (p *turtleParser) parseIRITerm() (Term, error) {
	if p.peek() == '<' {
		iri, err := p.parseIRIRef()
		if err != nil {
			return nil, err
		}
		return IRI{Value: iri}, nil
	}
	return p.parsePrefixedName()
}

// parseIRIRef parses <...> and resolves it against the current base.
func (p *turtleParser) parseIRIRef() (string, error) {
	if p.peek() != '<' {
		return "", p.errorf("expected IRI")
	}
	end := strings.IndexByte(p.input[p.pos:], '>')
	if end < 0 {
		return "", p.errorf("unterminated IRI")
	}
	raw := p.input[p.pos+1 : p.pos+end]
	if strings.ContainsAny(raw, " \n\t") {
		return "", p.errorf("whitespace in IRI")
	}
	value, err := unescapeIRI(raw)
	if err != nil {
		return "", p.errorf("%v", err)
	}
	p.pos += end + 1
	if p.base != "" && !hasScheme(value) {
		value = resolveIRI(p.base, value)
	}
	return value, nil
}

func (p *turtleParser) parsePrefixedName() (Term, error) {
	start := p.pos
	for p.pos < len(p.input) && p.input[p.pos] != ':' && isNameChar(p.input[p.pos]) {
		p.pos++
	}
	if p.pos >= len(p.input) || p.input[p.pos] != ':' {
		p.pos = start
		return nil, p.errorf("expected IRI or prefixed name")
	}
	prefix := p.input[start:p.pos]
	ns, ok := p.prefixes[prefix]
	if !ok {
		p.pos = start
		return nil, p.errorf("undefined prefix %q", prefix)
	}
	p.pos++
	var local strings.Builder
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if ch == '\\' && p.pos+1 < len(p.input) {
			local.WriteByte(p.input[p.pos+1])
			p.pos += 2
			continue
		}
		if !isNameChar(ch) && ch != ':' && ch != '%' {
			break
		}
		local.WriteByte(ch)
		p.pos++
	}
	name := local.String()
	for strings.HasSuffix(name, ".") {
		name = name[:len(name)-1]
		p.pos--
	}
	return IRI{Value: ns + name}, nil
}

func (p *turtleParser) parseRDFLiteral() (Term, error) {
	lexical, err := p.parseString()
	if err != nil {
		return nil, err
	}
	switch {
	case p.peek() == '@':
		p.pos++
		start := p.pos
		for p.pos < len(p.input) && (isAlnum(p.input[p.pos]) || p.input[p.pos] == '-') {
			p.pos++
		}
		if start == p.pos {
			return nil, p.errorf("empty language tag")
		}
		return NewLangLiteral(lexical, p.input[start:p.pos]), nil
	case p.hasPrefix("^^"):
		p.pos += 2
		dt, err := p.parseIRITerm()
		if err != nil {
			return nil, err
		}
		return NewTypedLiteral(lexical, dt.(IRI).Value), nil
	}
	return NewLiteral(lexical), nil
}

func (p *turtleParser) parseString() (string, error) {
	quote := p.input[p.pos]
	long := strings.Repeat(string(quote), 3)
	if p.hasPrefix(long) {
		p.pos += 3
		return p.readStringUntil(long, true)
	}
	p.pos++
	return p.readStringUntil(string(quote), false)
}

func (p *turtleParser) readStringUntil(terminator string, multiline bool) (string, error) {
	var b strings.Builder
	for p.pos < len(p.input) {
		if p.hasPrefix(terminator) {
			p.pos += len(terminator)
			return b.String(), nil
		}
		ch := p.input[p.pos]
		if ch == '\\' {
			text, n, err := decodeEscape(p.input[p.pos:])
			if err != nil {
				return "", p.errorf("%v", err)
			}
			b.WriteString(text)
			p.pos += n
			continue
		}
		if !multiline && (ch == '\n' || ch == '\r') {
			return "", p.errorf("line break in string")
		}
		b.WriteByte(ch)
		p.pos++
	}
	return "", p.errorf("unterminated string")
}

func (p *turtleParser) parseNumber() (Term, error) {
	start := p.pos
	if p.peek() == '+' || p.peek() == '-' {
		p.pos++
	}
	for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
		p.pos++
	}
	datatype := XSDInteger
	if p.peek() == '.' && p.pos+1 < len(p.input) && isDigit(p.input[p.pos+1]) {
		datatype = XSDDecimal
		p.pos++
		for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
			p.pos++
		}
	}
	if p.peek() == 'e' || p.peek() == 'E' {
		datatype = XSDDouble
		p.pos++
		if p.peek() == '+' || p.peek() == '-' {
			p.pos++
		}
		for p.pos < len(p.input) && isDigit(p.input[p.pos]) {
			p.pos++
		}
	}
	lexical := p.input[start:p.pos]
	if !strings.ContainsAny(lexical, "0123456789") {
		p.pos = start
		return nil, p.errorf("invalid number")
	}
	return NewTypedLiteral(lexical, datatype), nil
}

func (p *turtleParser) add(s Term, pred IRI, o Term) error {
	if _, err := p.g.Add(Triple{S: s, P: pred, O: o}); err != nil {
		return p.errorf("%v", err)
	}
	return nil
}

func (p *turtleParser) newBlankNode() BlankNode {
	p.bnodeSeq++
	return BlankNode{ID: "t" + strconv.Itoa(p.bnodeSeq)}
}

func (p *turtleParser) skipWS() {
	for p.pos < len(p.input) {
		ch := p.input[p.pos]
		if isWS(ch) {
			p.pos++
			continue
		}
		if ch == '#' {
			for p.pos < len(p.input) && p.input[p.pos] != '\n' {
				p.pos++
			}
			continue
		}
		return
	}
}

func (p *turtleParser) peek() byte {
	if p.pos >= len(p.input) {
		return 0
	}
	return p.input[p.pos]
}

func (p *turtleParser) hasPrefix(s string) bool {
	return strings.HasPrefix(p.input[p.pos:], s)
}

// hasKeyword matches a case-insensitive keyword followed by a delimiter.
func (p *turtleParser) hasKeyword(kw string) bool {
	end := p.pos + len(kw)
	if end > len(p.input) || !strings.EqualFold(p.input[p.pos:end], kw) {
		return false
	}
	return end == len(p.input) || !isNameChar(p.input[end]) && p.input[end] != ':'
}

func (p *turtleParser) expect(ch byte) error {
	p.skipWS()
	if p.peek() != ch {
		return p.errorf("expected '%c'", ch)
	}
	p.pos++
	return nil
}

func (p *turtleParser) errorf(format string, args ...interface{}) error {
	line := 1 + strings.Count(p.input[:p.pos], "\n")
	lineStart := strings.LastIndexByte(p.input[:p.pos], '\n') + 1
	lineEnd := strings.IndexByte(p.input[p.pos:], '\n')
	if lineEnd < 0 {
		lineEnd = len(p.input)
	} else {
		lineEnd += p.pos
	}
	return &ParseError{
		Format:    string(FormatTurtle),
		Statement: p.input[lineStart:lineEnd],
		Line:      line,
		Column:    p.pos - lineStart + 1,
		Err:       fmt.Errorf(format, args...),
	}
}

func isWS(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n'
}

func hasScheme(iri string) bool {
	colon := strings.IndexByte(iri, ':')
	if colon <= 0 {
		return false
	}
	for i := 0; i < colon; i++ {
		ch := iri[i]
		if !(isAlnum(ch) || ch == '+' || ch == '-' || ch == '.') {
			return false
		}
	}
	return true
}
