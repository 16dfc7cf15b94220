package pipeflowerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewAndError(t *testing.T) {
	err := New(CodeIncorrectDataPath, "bad path")
	assert.Equal(t, "PATH-00001: bad path", err.Error())
}

func TestWrapPreservesUnwrap(t *testing.T) {
	base := errors.New("boom")
	wrapped := Wrap(CodeInfrastructure, base)
	require.NotNil(t, wrapped)
	assert.Equal(t, base, errors.Unwrap(wrapped))
	assert.Equal(t, CodeInfrastructure, CodeOf(wrapped))
}

func TestWrapNilReturnsNil(t *testing.T) {
	assert.Nil(t, Wrap(CodeInfrastructure, nil))
}

func TestMultipleCollapsesCases(t *testing.T) {
	assert.Nil(t, Multiple())
	assert.Nil(t, Multiple(nil, nil))

	single := New(CodeParseError, "one")
	assert.Equal(t, single, Multiple(single))

	a := New(CodeParseError, "a")
	b := New(CodeFactorNotFound, "b")
	combined := Multiple(a, b)
	require.Error(t, combined)
	assert.Equal(t, CodeMultiple, CodeOf(combined))
	assert.Contains(t, combined.Error(), "a")
	assert.Contains(t, combined.Error(), "b")
}

func TestCodeOfNonPipeflowerrError(t *testing.T) {
	assert.Equal(t, "", CodeOf(errors.New("plain")))
}
