package ontology

import (
	"fmt"
	"strings"

	"github.com/geoknoesis/ontomap/namespace"
)

// UnknownPrefixError reports a compact IRI whose prefix is not declared.
type UnknownPrefixError = namespace.UnknownPrefixError

// UnmappedFieldError reports a field name that has no predicate mapping.
type UnmappedFieldError struct {
	Class string
	Field string
}

func (e *UnmappedFieldError) Error() string {
	return fmt.Sprintf("field %q of class %s has no predicate mapping", e.Field, e.Class)
}

// DuplicatePredicateError reports two fields of one class mapped to the same
// predicate.
type DuplicatePredicateError struct {
	Class     string
	Predicate string
	Fields    [2]string
}

func (e *DuplicatePredicateError) Error() string {
	return fmt.Sprintf("class %s: fields %q and %q both map to %s",
		e.Class, e.Fields[0], e.Fields[1], e.Predicate)
}

// NamespaceConflictError reports one prefix bound to two namespace IRIs while
// building a serialization context.
type NamespaceConflictError struct {
	Prefix      string
	Existing    string
	Conflicting string
	Class       string
}

func (e *NamespaceConflictError) Error() string {
	msg := fmt.Sprintf("prefix %q bound to both %s and %s", e.Prefix, e.Existing, e.Conflicting)
	if e.Class != "" {
		msg += " (class " + e.Class + ")"
	}
	return msg
}

// IncompatibleTypeError reports a conversion between classes of different
// type IRIs.
type IncompatibleTypeError struct {
	From string
	To   string
}

func (e *IncompatibleTypeError) Error() string {
	return fmt.Sprintf("cannot convert %s into %s", e.From, e.To)
}

// IdentifierShapeWarning is recorded on an instance whose identifier field
// holds a value that is not IRI-shaped. It does not abort construction.
type IdentifierShapeWarning struct {
	Class string
	Field string
	Value string
}

func (w *IdentifierShapeWarning) Error() string {
	return fmt.Sprintf("identifier %s.%s = %q is not an IRI", w.Class, w.Field, w.Value)
}

// FieldIssue is one failed check inside a ValidationError. Path is the dotted
// field path, with list positions in brackets.
type FieldIssue struct {
	Path    string
	Message string
	Value   any
}

func (i FieldIssue) String() string {
	if i.Path == "" {
		return i.Message
	}
	return i.Path + ": " + i.Message
}

// ValidationError aggregates every issue found while constructing an
// instance.
type ValidationError struct {
	Class  string
	Issues []FieldIssue
}

func (e *ValidationError) Error() string {
	var b strings.Builder
	n := len(e.Issues)
	if n == 1 {
		fmt.Fprintf(&b, "1 validation error for %s", e.Class)
	} else {
		fmt.Fprintf(&b, "%d validation errors for %s", n, e.Class)
	}
	for _, issue := range e.Issues {
		b.WriteString("\n  ")
		b.WriteString(issue.String())
	}
	return b.String()
}

// SubjectError records a subject the loader skipped.
type SubjectError struct {
	Subject string
	Err     error
}

func (e *SubjectError) Error() string {
	return fmt.Sprintf("subject %s: %v", e.Subject, e.Err)
}

func (e *SubjectError) Unwrap() error { return e.Err }

func prefixIssues(prefix string, issues []FieldIssue) []FieldIssue {
	out := make([]FieldIssue, len(issues))
	for i, issue := range issues {
		issue.Path = joinPath(prefix, issue.Path)
		out[i] = issue
	}
	return out
}

func joinPath(prefix, path string) string {
	switch {
	case prefix == "":
		return path
	case path == "":
		return prefix
	case path[0] == '[':
		return prefix + path
	default:
		return prefix + "." + path
	}
}
