package pak

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCipher_SealOpen_Success(t *testing.T) {
	key := make([]byte, KeySize)
	key[0] = 0xAB
	aead, err := newAEAD(key)
	require.NoError(t, err)

	plaintext := []byte("index section bytes")
	blob, err := sealBlob(aead, plaintext)
	require.NoError(t, err)
	assert.NotEqual(t, plaintext, blob)

	restored, err := openBlob(aead, blob)
	require.NoError(t, err)
	assert.Equal(t, plaintext, restored)
}

func TestCipher_WrongKey_AuthenticationFailed(t *testing.T) {
	aead1, err := newAEAD(make([]byte, KeySize))
	require.NoError(t, err)

	other := make([]byte, KeySize)
	other[31] = 1
	aead2, err := newAEAD(other)
	require.NoError(t, err)

	blob, err := sealBlob(aead1, []byte("secret"))
	require.NoError(t, err)

	_, err = openBlob(aead2, blob)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestCipher_TamperedBlob_AuthenticationFailed(t *testing.T) {
	aead, err := newAEAD(make([]byte, KeySize))
	require.NoError(t, err)

	blob, err := sealBlob(aead, []byte("secret"))
	require.NoError(t, err)
	blob[len(blob)-1] ^= 0xFF

	_, err = openBlob(aead, blob)
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestCipher_ShortBlob_AuthenticationFailed(t *testing.T) {
	aead, err := newAEAD(make([]byte, KeySize))
	require.NoError(t, err)

	_, err = openBlob(aead, []byte{1, 2, 3})
	assert.ErrorIs(t, err, ErrAuthenticationFailed)
}

func TestCipher_KeyLength_Validated(t *testing.T) {
	_, err := newAEAD(make([]byte, 31))
	assert.ErrorIs(t, err, ErrInvalidKeyLength)

	_, err = newAEAD(make([]byte, 33))
	assert.ErrorIs(t, err, ErrInvalidKeyLength)

	_, err = newAEAD(nil)
	assert.ErrorIs(t, err, ErrInvalidKeyLength)
}
