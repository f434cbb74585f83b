package ontology

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/geoknoesis/ontomap/namespace"
)

const ex = "http://example.org/"

type fixture struct {
	reg     *Registry
	address *Class
	person  *Class
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	reg := NewRegistry()
	address, err := reg.Register("Address", "ex:Address",
		WithNamespace("ex", ex),
		WithField("city", "ex:city", String),
	)
	require.NoError(t, err)
	person, err := reg.Register("Person", "foaf:Person",
		WithNamespace("foaf", namespace.FOAF),
		WithNamespace("ex", ex),
		WithField("name", "foaf:name", String, Alias("fullName")),
		WithField("age", "foaf:age", Int),
		WithField("height", "ex:height", Float),
		WithField("address", "ex:address", ClassOf(address)),
		WithField("knows", "foaf:knows", ListOf(ClassNamed("Person"))),
	)
	require.NoError(t, err)
	return fixture{reg: reg, address: address, person: person}
}

// counterIDs makes generated ids predictable.
func counterIDs(ctx context.Context) context.Context {
	n := 0
	return WithBlankIDGenerator(ctx, func() string {
		n++
		return fmt.Sprintf("b%d", n)
	})
}
