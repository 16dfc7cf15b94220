package value

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIsSameAsNoneAndEmptyString(t *testing.T) {
	assert.True(t, IsSameAs(None, None))
	assert.True(t, IsSameAs(None, String("")))
	assert.True(t, IsSameAs(String(""), None))
	assert.False(t, IsSameAs(String(""), String("x")))
}

func TestIsSameAsSymmetric(t *testing.T) {
	cases := []struct{ a, b Value }{
		{String("150"), NumberFromInt(150)},
		{Bool(true), NumberFromInt(1)},
		{Date(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), DateTime(time.Date(2024, 1, 1, 12, 30, 0, 0, time.UTC))},
		{Vec([]Value{NumberFromInt(1)}), Vec([]Value{NumberFromInt(1)})},
	}
	for _, c := range cases {
		assert.Equal(t, IsSameAs(c.a, c.b), IsSameAs(c.b, c.a))
	}
}

func TestMapVecNeverEqual(t *testing.T) {
	assert.False(t, IsSameAs(Vec(nil), Vec(nil)))
	assert.False(t, IsSameAs(Map(nil), Map(nil)))
}

func TestLessThanOrdering(t *testing.T) {
	less, err := LessThan(None, NumberFromInt(1))
	require.NoError(t, err)
	assert.True(t, less)

	_, err = LessThan(Bool(true), Bool(false))
	assert.Error(t, err)

	less, err = LessThan(NumberFromInt(1), NumberFromInt(2))
	require.NoError(t, err)
	assert.True(t, less)
}

func TestLessThanMoreThanAntisymmetric(t *testing.T) {
	a, b := NumberFromInt(1), NumberFromInt(2)
	less, err := LessThan(a, b)
	require.NoError(t, err)
	more, err := MoreThan(a, b)
	require.NoError(t, err)
	assert.True(t, less)
	assert.False(t, more)
}

func TestIsIn(t *testing.T) {
	ok, err := IsIn(NumberFromInt(2), Vec([]Value{NumberFromInt(1), NumberFromInt(2)}))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsIn(String("b"), String("a, b, c"))
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = IsIn(String("x"), None)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = IsIn(String("x"), NumberFromInt(1))
	assert.Error(t, err)
}

func TestSumAvgIgnoreNoneAndEmpty(t *testing.T) {
	items := []Value{NumberFromInt(1), None, String(""), NumberFromInt(3)}
	sum, err := Sum(items)
	require.NoError(t, err)
	assert.Equal(t, "4", sum.AsDecimalString())

	avg, err := Avg(items)
	require.NoError(t, err)
	assert.Equal(t, "2", avg.AsDecimalString())
}

func TestDistinct(t *testing.T) {
	items := []Value{NumberFromInt(1), String("1"), NumberFromInt(2)}
	out, err := Distinct(items)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(out), len(items))
	for _, d := range out {
		found := false
		for _, i := range items {
			if IsSameAs(d, i) {
				found = true
			}
		}
		assert.True(t, found)
	}
}

func TestMinMaxEmptyVecIsNone(t *testing.T) {
	v, err := MinMax(nil, AnyGate(true))
	require.NoError(t, err)
	assert.True(t, v.IsNone())
}

func TestMinMaxAllNoneIsNone(t *testing.T) {
	v, err := MinMax([]Value{None, None}, AnyGate(true))
	require.NoError(t, err)
	assert.True(t, v.IsNone())
}

func TestMinMaxNumbers(t *testing.T) {
	v, err := MinMax([]Value{NumberFromInt(3), NumberFromInt(1), NumberFromInt(2)}, NumGate(true))
	require.NoError(t, err)
	assert.Equal(t, "1", v.AsDecimalString())

	v, err = MinMax([]Value{NumberFromInt(3), NumberFromInt(1), NumberFromInt(2)}, NumGate(false))
	require.NoError(t, err)
	assert.Equal(t, "3", v.AsDecimalString())
}

func TestMinMaxRejectsBool(t *testing.T) {
	_, err := MinMax([]Value{Bool(true)}, AnyGate(true))
	assert.Error(t, err)
}
