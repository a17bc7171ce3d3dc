package irbuild_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pivot-lang/plc/internal/irbuild"
)

func TestMarshalDeterministicSortsKeys(t *testing.T) {
	data := map[string]any{"zebra": "last", "alpha": "first", "middle": "middle"}

	result, err := irbuild.MarshalDeterministic(data)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":"first","middle":"middle","zebra":"last"}`, string(result))
}

func TestMarshalDeterministicSortsNestedKeys(t *testing.T) {
	data := map[string]any{
		"outer2": map[string]any{"inner2": 2, "inner1": 1},
		"outer1": "value",
	}

	result, err := irbuild.MarshalDeterministic(data)
	require.NoError(t, err)
	assert.Equal(t, `{"outer1":"value","outer2":{"inner1":1,"inner2":2}}`, string(result))
}

func TestMarshalDeterministicPreservesArrayOrder(t *testing.T) {
	data := []any{map[string]any{"b": 1, "a": 2}, "plain"}

	result, err := irbuild.MarshalDeterministic(data)
	require.NoError(t, err)
	assert.Equal(t, `[{"a":2,"b":1},"plain"]`, string(result))
}
