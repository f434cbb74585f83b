package ontology

// thing is the root of every class hierarchy. It is shared by all
// registries.
var thing = mustThing()

func mustThing() *Class {
	c, err := newClass(nil, "Thing", "owl:Thing", nil, classSpec{
		fields: []FieldMapping{{Name: "label", Predicate: "rdfs:label", Type: String}},
	})
	if err != nil {
		panic(err)
	}
	return c
}

// Thing returns the base class (owl:Thing) with its single field label
// mapped to rdfs:label.
func Thing() *Class { return thing }
