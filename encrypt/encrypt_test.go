package encrypt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAESCipherRoundTrips(t *testing.T) {
	c := NewAESCipher("super-secret-key-material", "some-iv-material")

	ciphertext, err := c.Encrypt([]byte("2200 3301 4455"))
	require.NoError(t, err)
	assert.NotEqual(t, "2200 3301 4455", string(ciphertext))

	plain, err := c.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, "2200 3301 4455", string(plain))
}

func TestAESCipherIsDeterministicForFixedKeyAndIV(t *testing.T) {
	c1 := NewAESCipher("key-a", "iv-a")
	c2 := NewAESCipher("key-a", "iv-a")

	a, err := c1.Encrypt([]byte("hello"))
	require.NoError(t, err)
	b, err := c2.Encrypt([]byte("hello"))
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestAESCipherDifferentKeysProduceDifferentCiphertext(t *testing.T) {
	c1 := NewAESCipher("key-a", "iv-a")
	c2 := NewAESCipher("key-b", "iv-a")

	a, err := c1.Encrypt([]byte("hello"))
	require.NoError(t, err)
	b, err := c2.Encrypt([]byte("hello"))
	require.NoError(t, err)
	assert.NotEqual(t, a, b)
}

func TestAESCipherRejectsMalformedCiphertext(t *testing.T) {
	c := NewAESCipher("key-a", "iv-a")
	_, err := c.Decrypt([]byte("not a block multiple"))
	assert.Error(t, err)
}
