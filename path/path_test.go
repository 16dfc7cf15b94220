package path

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePlainSimple(t *testing.T) {
	p, err := Parse("amount")
	require.NoError(t, err)
	assert.True(t, p.Simple())
	assert.Equal(t, "amount", p.PlainName())
}

func TestParseDottedComplex(t *testing.T) {
	p, err := Parse("a.b.c")
	require.NoError(t, err)
	assert.False(t, p.Simple())
	require.Len(t, p.Segments, 3)
	assert.Equal(t, "a", p.Segments[0].(PlainSegment).Name)
}

func TestParseFuncNoArgs(t *testing.T) {
	p, err := Parse("items.&count")
	require.NoError(t, err)
	require.Len(t, p.Segments, 2)
	fn := p.Segments[1].(FuncSegment)
	assert.Equal(t, "count", fn.Name)
	assert.Empty(t, fn.Args)
}

func TestParseFuncWithArgs(t *testing.T) {
	p, err := Parse("name.&slice(0,3)")
	require.NoError(t, err)
	fn := p.Segments[1].(FuncSegment)
	assert.Equal(t, "slice", fn.Name)
	assert.Equal(t, []string{"0", "3"}, fn.Args)
}

func TestParseLiteralConcat(t *testing.T) {
	p, err := Parse("a{b.c}d")
	require.NoError(t, err)
	require.Len(t, p.Segments, 1)
	lit := p.Segments[0].(LiteralSegment)
	require.Len(t, lit.Parts, 3)
	assert.Equal(t, "a", lit.Parts[0].Text)
	require.NotNil(t, lit.Parts[1].SubPath)
	assert.Equal(t, "b", lit.Parts[1].SubPath.Segments[0].(PlainSegment).Name)
	assert.Equal(t, "d", lit.Parts[2].Text)
}

func TestParseEscapes(t *testing.T) {
	p, err := Parse(`a\.b`)
	require.NoError(t, err)
	require.Len(t, p.Segments, 1)
	assert.Equal(t, "a.b", p.Segments[0].(PlainSegment).Name)
}

func TestUnbalancedBraceFails(t *testing.T) {
	_, err := Parse("a{b.c")
	assert.Error(t, err)
}

func TestUnbalancedParenFails(t *testing.T) {
	_, err := Parse("a.&fn(1,2")
	assert.Error(t, err)
}

func TestUnexpectedAmpersandFails(t *testing.T) {
	_, err := Parse("a&b")
	assert.Error(t, err)
}

func TestRoundTripSerialize(t *testing.T) {
	for _, s := range []string{"amount", "a.b.c", "items.&count"} {
		p, err := Parse(s)
		require.NoError(t, err)
		p2, err := Parse(p.Serialize())
		require.NoError(t, err)
		assert.Equal(t, len(p.Segments), len(p2.Segments))
	}
}
