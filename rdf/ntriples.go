package rdf

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// decodeNTriples reads line-based N-Triples into g.
func decodeNTriples(r io.Reader, g *Graph) error {
	return readNTLines(r, g, false)
}

// readNTLines parses N-Triples, or N-Quads when allowGraph is set. Graph
// labels are accepted and dropped: a Graph only models the default graph.
func readNTLines(r io.Reader, g *Graph, allowGraph bool) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		triple, err := parseNTLine(line, allowGraph)
		if err != nil {
			return newParseError(FormatNTriples, line, lineNo, 0, err)
		}
		if _, err := g.Add(triple); err != nil {
			return newParseError(FormatNTriples, line, lineNo, 0, err)
		}
	}
	return scanner.Err()
}

func parseNTLine(line string, allowGraph bool) (Triple, error) {
	cursor := &ntCursor{input: line}
	subject, err := cursor.parseTerm(false)
	if err != nil {
		return Triple{}, err
	}
	predicate, err := cursor.parseIRI()
	if err != nil {
		return Triple{}, err
	}
	object, err := cursor.parseTerm(true)
	if err != nil {
		return Triple{}, err
	}
	cursor.skipWS()
	if allowGraph && cursor.pos < len(cursor.input) && cursor.input[cursor.pos] != '.' {
		if _, err := cursor.parseTerm(false); err != nil {
			return Triple{}, err
		}
	}
	if !cursor.consume('.') {
		return Triple{}, cursor.errorf("expected '.' at end of statement")
	}
	cursor.skipWS()
	if cursor.pos < len(cursor.input) && cursor.input[cursor.pos] != '#' {
		return Triple{}, cursor.errorf("unexpected content after '.'")
	}
	return Triple{S: subject, P: predicate, O: object}, nil
}

type ntCursor struct {
	input string
	pos   int
}

func (c *ntCursor) skipWS() {
	for c.pos < len(c.input) {
		switch c.input[c.pos] {
		case ' ', '\t', '\r', '\n':
			c.pos++
		default:
			return
		}
	}
}

func (c *ntCursor) consume(ch byte) bool {
	c.skipWS()
	if c.pos < len(c.input) && c.input[c.pos] == ch {
		c.pos++
		return true
	}
	return false
}

func (c *ntCursor) parseTerm(allowLiteral bool) (Term, error) {
	c.skipWS()
	if c.pos >= len(c.input) {
		return nil, c.errorf("unexpected end of line")
	}
	switch {
	case c.input[c.pos] == '<':
		return c.parseIRI()
	case strings.HasPrefix(c.input[c.pos:], "_:"):
		return c.parseBlankNode()
	case c.input[c.pos] == '"':
		if !allowLiteral {
			return nil, c.errorf("literal not allowed here")
		}
		return c.parseLiteral()
	default:
		return nil, c.errorf("unexpected token %q", c.input[c.pos:c.pos+1])
	}
}

func (c *ntCursor) parseIRI() (IRI, error) {
	c.skipWS()
	if !c.consume('<') {
		return IRI{}, c.errorf("expected IRI")
	}
	start := c.pos
	for c.pos < len(c.input) && c.input[c.pos] != '>' {
		c.pos++
	}
	if c.pos >= len(c.input) {
		return IRI{}, c.errorf("unterminated IRI")
	}
	value, err := unescapeIRI(c.input[start:c.pos])
	if err != nil {
		return IRI{}, c.errorf("%v", err)
	}
	c.pos++
	return IRI{Value: value}, nil
}

func (c *ntCursor) parseBlankNode() (BlankNode, error) {
	c.pos += 2
	start := c.pos
	for c.pos < len(c.input) && !isTermDelimiter(c.input[c.pos]) {
		c.pos++
	}
	// A trailing '.' belongs to the statement, not the label.
	for c.pos > start && c.input[c.pos-1] == '.' {
		c.pos--
	}
	if start == c.pos {
		return BlankNode{}, c.errorf("blank node id missing")
	}
	return BlankNode{ID: c.input[start:c.pos]}, nil
}

func (c *ntCursor) parseLiteral() (Literal, error) {
	if !c.consume('"') {
		return Literal{}, c.errorf("expected literal")
	}
	var builder strings.Builder
	closed := false
	for c.pos < len(c.input) {
		ch := c.input[c.pos]
		if ch == '"' {
			c.pos++
			closed = true
			break
		}
		if ch == '\\' {
			text, n, err := decodeEscape(c.input[c.pos:])
			if err != nil {
				return Literal{}, c.errorf("%v", err)
			}
			builder.WriteString(text)
			c.pos += n
			continue
		}
		builder.WriteByte(ch)
		c.pos++
	}
	if !closed {
		return Literal{}, c.errorf("unterminated literal")
	}
	lexical := builder.String()
	if strings.HasPrefix(c.input[c.pos:], "@") {
		c.pos++
		start := c.pos
		for c.pos < len(c.input) && (isAlnum(c.input[c.pos]) || c.input[c.pos] == '-') {
			c.pos++
		}
		if start == c.pos {
			return Literal{}, c.errorf("empty language tag")
		}
		return NewLangLiteral(lexical, c.input[start:c.pos]), nil
	}
	if strings.HasPrefix(c.input[c.pos:], "^^") {
		c.pos += 2
		dt, err := c.parseIRI()
		if err != nil {
			return Literal{}, err
		}
		return NewTypedLiteral(lexical, dt.Value), nil
	}
	return NewLiteral(lexical), nil
}

func (c *ntCursor) errorf(format string, args ...interface{}) error {
	return &ParseError{Format: string(FormatNTriples), Column: c.pos + 1, Err: fmt.Errorf(format, args...)}
}

func isTermDelimiter(ch byte) bool {
	switch ch {
	case ' ', '\t', '\r', '\n':
		return true
	default:
		return false
	}
}

func isAlnum(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || (ch >= '0' && ch <= '9')
}

// encodeNTriples writes one statement per line in insertion order.
func encodeNTriples(w io.Writer, g *Graph) error {
	writer := bufio.NewWriter(w)
	for _, t := range g.triples {
		line := renderTerm(t.S) + " " + renderIRI(t.P) + " " + renderTerm(t.O) + " .\n"
		if _, err := writer.WriteString(line); err != nil {
			return err
		}
	}
	return writer.Flush()
}

func renderIRI(iri IRI) string {
	return "<" + escapeIRI(iri.Value) + ">"
}

func renderTerm(term Term) string {
	switch value := term.(type) {
	case IRI:
		return renderIRI(value)
	case BlankNode:
		return value.String()
	case Literal:
		quoted := `"` + escapeLiteral(value.Lexical) + `"`
		if value.Lang != "" {
			return quoted + "@" + value.Lang
		}
		if value.Datatype.Value != "" && value.Datatype.Value != XSDString {
			return quoted + "^^" + renderIRI(value.Datatype)
		}
		return quoted
	default:
		return ""
	}
}
