// Package rdf provides the small RDF model ontomap maps objects onto, together
// with the text codecs used to read and write it.
//
// A Graph is a transient, de-duplicated set of triples that remembers the
// order in which subjects were first seen. It is the intermediate
// representation for both directions of the object mapping and is never kept
// around after a single encode or decode call.
//
// Supported formats:
//   - JSON-LD (default; the only format with an indentation option)
//   - Turtle
//   - RDF/XML
//   - N-Triples
//
// Example (decoding):
//
//	g, err := rdf.Decode(strings.NewReader(input), rdf.FormatTurtle)
//	if err != nil {
//	    // handle error
//	}
//	for _, s := range g.SubjectsOfType(rdf.IRI{Value: "http://xmlns.com/foaf/0.1/Person"}) {
//	    for _, t := range g.Outgoing(s) {
//	        // process t.P, t.O
//	    }
//	}
//
// Example (encoding):
//
//	err := rdf.Encode(os.Stdout, g, rdf.FormatJSONLD,
//	    rdf.WithPrefixes(rdf.Prefix{Name: "foaf", IRI: "http://xmlns.com/foaf/0.1/"}),
//	    rdf.WithIndent("  "))
package rdf
