// Package ontology maps Go records onto RDF vocabularies.
//
// A Class binds a type IRI and a set of fields to predicate IRIs. Classes are
// registered once and frozen; instances are generic records validated
// against their class:
//
//	person := ontology.MustRegister("Person", "foaf:Person",
//	    ontology.WithNamespace("foaf", namespace.FOAF),
//	    ontology.WithField("name", "foaf:name", ontology.String, ontology.Alias("fullName")),
//	)
//	alice, err := ontology.New(person, ontology.Values{"name": "Alice"})
//	doc, err := alice.JSONLD()
//
// The serializer turns an instance graph into JSON-LD, Turtle, RDF/XML or
// N-Triples. Loaders go the other way and materialize every subject of a
// class's type IRI from a document.
package ontology
