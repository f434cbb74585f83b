package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelsSurviveWrapping(t *testing.T) {
	err := Wrapf(ErrNotFound, "class %q", "Person")
	assert.True(t, Is(err, ErrNotFound))
	assert.False(t, Is(err, ErrFrozen))
	assert.Contains(t, err.Error(), `class "Person"`)
	assert.True(t, IsAny(Wrap(ErrFrozen, "register"), ErrInvalidArgument, ErrFrozen))
}

type prefixError struct {
	prefix string
}

func (e *prefixError) Error() string {
	return "unknown prefix " + e.prefix
}

func TestAsThroughHint(t *testing.T) {
	err := WithHint(Wrap(&prefixError{prefix: "ex"}, "expand ex:a"), "declare ex with WithNamespace")

	var target *prefixError
	require.True(t, As(err, &target))
	assert.Equal(t, "ex", target.prefix)
	assert.Equal(t, "declare ex with WithNamespace", FlattenHints(err))
}

func TestWithHintf(t *testing.T) {
	err := WithHintf(New("missing class"), "classes in %s: %s", "classes.yaml", "Person")

	hints := GetAllHints(err)
	require.Len(t, hints, 1)
	assert.Equal(t, "classes in classes.yaml: Person", hints[0])
}
