package rdf

import (
	"fmt"
	"strings"

	"github.com/geoknoesis/ontomap/errors"
)

var (
	// ErrUnsupportedFormat indicates an unsupported format.
	ErrUnsupportedFormat = errors.New("unsupported RDF format")
	// ErrUndetectedFormat indicates format detection could not classify the input.
	ErrUndetectedFormat = errors.New("rdf: unable to detect format")
	// ErrInvalidTriple indicates a triple without subject, predicate or object,
	// or with a literal subject.
	ErrInvalidTriple = errors.New("rdf: invalid triple")
)

// ParseError provides structured context for parse failures.
type ParseError struct {
	Format    string // Format name (e.g., "turtle", "ntriples")
	Statement string // Offending statement or input excerpt
	Line      int    // 1-based line number (0 if unknown)
	Column    int    // 1-based column number (0 if unknown)
	Err       error  // Underlying error
}

func (e *ParseError) Error() string {
	var msg strings.Builder
	msg.WriteString(e.Format)

	if e.Line > 0 {
		if e.Column > 0 {
			fmt.Fprintf(&msg, ":%d:%d", e.Line, e.Column)
		} else {
			fmt.Fprintf(&msg, ":%d", e.Line)
		}
	}

	msg.WriteString(": ")
	msg.WriteString(e.Err.Error())

	if excerpt := e.formatExcerpt(); excerpt != "" {
		msg.WriteString("\n  ")
		msg.WriteString(excerpt)
	}
	return msg.String()
}

// formatExcerpt shows the statement around the error column with a caret.
func (e *ParseError) formatExcerpt() string {
	if e.Statement == "" {
		return ""
	}

	const maxExcerptLen = 80
	const contextLen = 40

	if e.Column > 0 {
		start := e.Column - 1
		excerptStart := max(start-contextLen, 0)
		excerptEnd := min(start+contextLen, len(e.Statement))
		if excerptStart > excerptEnd {
			excerptStart = excerptEnd
		}

		excerpt := e.Statement[excerptStart:excerptEnd]
		caretPos := start - excerptStart
		if excerptStart > 0 {
			excerpt = "..." + excerpt
			caretPos += 3
		}
		if excerptEnd < len(e.Statement) {
			excerpt += "..."
		}
		caretPos = max(min(caretPos, len(excerpt)-1), 0)

		return excerpt + "\n  " + strings.Repeat(" ", caretPos) + "^"
	}

	if len(e.Statement) > maxExcerptLen {
		return e.Statement[:maxExcerptLen] + "..."
	}
	return e.Statement
}

func (e *ParseError) Unwrap() error { return e.Err }

// newParseError builds a ParseError for a line-oriented input.
func newParseError(format Format, statement string, line, column int, err error) error {
	if err == nil {
		return nil
	}
	var parseErr *ParseError
	if errors.As(err, &parseErr) {
		if line == 0 {
			line = parseErr.Line
		}
		if column == 0 {
			column = parseErr.Column
		}
		err = parseErr.Err
	}
	return &ParseError{
		Format:    string(format),
		Statement: statement,
		Line:      line,
		Column:    column,
		Err:       err,
	}
}
