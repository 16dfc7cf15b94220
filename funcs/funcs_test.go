package funcs

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evalgo-labs/pipeflow/value"
)

func TestLengthStringAndNumber(t *testing.T) {
	env := DefaultEnv()
	v, err := Call(env, "length", value.String("héllo"), true, nil)
	require.NoError(t, err)
	assert.Equal(t, "5", v.AsDecimalString())

	numCtx, ok := value.ParseNumber("-123.45")
	require.True(t, ok)
	v, err = Call(env, "len", value.Number(numCtx), true, nil)
	require.NoError(t, err)
	assert.Equal(t, "5", v.AsDecimalString())
}

func TestSliceClampsBounds(t *testing.T) {
	env := DefaultEnv()
	v, err := Call(env, "substr", value.String("hello"), true, []string{"1", "100"})
	require.NoError(t, err)
	assert.Equal(t, "ello", v.AsString())
}

func TestStartsWithEmptyNeedleIsTrue(t *testing.T) {
	env := DefaultEnv()
	v, err := Call(env, "startsWith", value.None, true, []string{""})
	require.NoError(t, err)
	assert.Equal(t, true, v.AsBool())
}

func TestJoinDefaultSeparator(t *testing.T) {
	env := DefaultEnv()
	env.JoinDefaultComma = true
	vec := value.Vec([]value.Value{value.String("a"), value.String("b")})
	v, err := Call(env, "join", vec, true, nil)
	require.NoError(t, err)
	assert.Equal(t, "a,b", v.AsString())
}

func TestConcatRejectsVecElement(t *testing.T) {
	env := DefaultEnv()
	vec := value.Vec([]value.Value{value.String("a")})
	_, err := Call(env, "concat", vec, true, []string{"x"})
	require.Error(t, err)
}

func TestSumAndAvg(t *testing.T) {
	env := DefaultEnv()
	vec := value.Vec([]value.Value{value.NumberFromInt(1), value.NumberFromInt(2), value.NumberFromInt(3)})
	v, err := Call(env, "sum", vec, true, nil)
	require.NoError(t, err)
	assert.Equal(t, "6", v.AsDecimalString())

	v, err = Call(env, "avg", vec, true, nil)
	require.NoError(t, err)
	assert.Equal(t, "2", v.AsDecimalString())
}

func TestMinMaxTypedGate(t *testing.T) {
	env := DefaultEnv()
	d1, _ := time.Parse(value.DateLayout, "2024-01-01")
	d2, _ := time.Parse(value.DateLayout, "2024-06-01")
	vec := value.Vec([]value.Value{value.Date(d1), value.Date(d2)})
	v, err := Call(env, "minDate", vec, true, nil)
	require.NoError(t, err)
	assert.Equal(t, d1, v.AsTime())
}

func TestMoveDatePreservesKind(t *testing.T) {
	env := DefaultEnv()
	d, _ := time.Parse(value.DateLayout, "2024-02-29")
	v, err := Call(env, "moveDate", value.Date(d), true, []string{"Y2023"})
	require.NoError(t, err)
	assert.Equal(t, value.KindDate, v.Kind())
	assert.Equal(t, 28, v.AsTime().Day())
}

func TestNowForbidsContext(t *testing.T) {
	env := DefaultEnv()
	_, err := Call(env, "now", value.String("x"), true, nil)
	require.Error(t, err)
}

func TestNextSeqIncrements(t *testing.T) {
	env := DefaultEnv()
	a, err := Call(env, "nextSeq", value.None, false, nil)
	require.NoError(t, err)
	b, err := Call(env, "nextSeq", value.None, false, nil)
	require.NoError(t, err)
	assert.Equal(t, "1", a.AsDecimalString())
	assert.Equal(t, "2", b.AsDecimalString())
}

func TestCurResolvesField(t *testing.T) {
	env := DefaultEnv()
	env.CurrentRecord = func() (value.Value, bool) {
		return value.Map(map[string]value.Value{"amount": value.NumberFromInt(42)}), true
	}
	v, err := Call(env, "cur", value.None, false, []string{"amount"})
	require.NoError(t, err)
	assert.Equal(t, "42", v.AsDecimalString())
}

func TestUnknownFunctionErrors(t *testing.T) {
	env := DefaultEnv()
	_, err := Call(env, "doesNotExist", value.None, false, nil)
	require.Error(t, err)
}

