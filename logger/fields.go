package logger

// Standard field names for structured logging, so that log lines from the
// registry, serializer and loader can be filtered by the same keys.
const (
	FieldClass     = "class"
	FieldField     = "field"
	FieldPredicate = "predicate"
	FieldPrefix    = "prefix"
	FieldIRI       = "iri"
	FieldSubject   = "subject"
	FieldFormat    = "format"
	FieldCount     = "count"
	FieldValue     = "value"
	FieldError     = "error"
)
