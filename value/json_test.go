package value

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMarshalScalarKinds(t *testing.T) {
	b, err := json.Marshal(Map(map[string]Value{
		"name":   String("ada"),
		"amount": NumberFromInt(42),
		"active": Bool(true),
		"note":   None,
	}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"ada","amount":42,"active":true,"note":null}`, string(b))
}

func TestMarshalVec(t *testing.T) {
	b, err := json.Marshal(Vec([]Value{NumberFromInt(1), NumberFromInt(2)}))
	require.NoError(t, err)
	assert.JSONEq(t, `[1,2]`, string(b))
}

func TestUnmarshalRoundTripsMap(t *testing.T) {
	var v Value
	err := json.Unmarshal([]byte(`{"name":"ada","amount":42,"flag":true,"note":null}`), &v)
	require.NoError(t, err)
	require.Equal(t, KindMap, v.Kind())
	m := v.AsMap()
	assert.Equal(t, "ada", m["name"].AsString())
	assert.Equal(t, KindNumber, m["amount"].Kind())
	assert.True(t, m["flag"].AsBool())
	assert.True(t, m["note"].IsNone())
}

func TestUnmarshalVec(t *testing.T) {
	var v Value
	err := json.Unmarshal([]byte(`[1,2,3]`), &v)
	require.NoError(t, err)
	require.Equal(t, KindVec, v.Kind())
	assert.Len(t, v.AsVec(), 3)
}
