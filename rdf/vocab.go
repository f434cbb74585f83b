package rdf

// Namespace and term IRIs the codecs need to know about.
const (
	RDFNamespace  = "http://www.w3.org/1999/02/22-rdf-syntax-ns#"
	RDFSNamespace = "http://www.w3.org/2000/01/rdf-schema#"
	XSDNamespace  = "http://www.w3.org/2001/XMLSchema#"

	RDFType       = RDFNamespace + "type"
	RDFFirst      = RDFNamespace + "first"
	RDFRest       = RDFNamespace + "rest"
	RDFNil        = RDFNamespace + "nil"
	RDFLangString = RDFNamespace + "langString"
	RDFSLabel     = RDFSNamespace + "label"

	XSDString   = XSDNamespace + "string"
	XSDBoolean  = XSDNamespace + "boolean"
	XSDInteger  = XSDNamespace + "integer"
	XSDDecimal  = XSDNamespace + "decimal"
	XSDDouble   = XSDNamespace + "double"
	XSDFloat    = XSDNamespace + "float"
	XSDLong     = XSDNamespace + "long"
	XSDInt      = XSDNamespace + "int"
	XSDDateTime = XSDNamespace + "dateTime"
	XSDDate     = XSDNamespace + "date"
	XSDAnyURI   = XSDNamespace + "anyURI"
)

// TypePredicate is rdf:type as a predicate term.
var TypePredicate = IRI{Value: RDFType}
