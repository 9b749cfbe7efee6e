package pak

import (
	"bytes"
	"crypto/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompress_ZlibRoundTrip_Success(t *testing.T) {
	var cs codecSet
	raw := bytes.Repeat([]byte("compress me "), 1000)

	compressed, err := cs.compress(CompressionZlib, raw)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(raw))

	restored, err := cs.decompress(CompressionZlib, compressed, uint64(len(raw)))
	require.NoError(t, err)
	assert.Equal(t, raw, restored)
}

func TestCompress_ZstdRoundTrip_Success(t *testing.T) {
	var cs codecSet
	raw := bytes.Repeat([]byte("compress me "), 1000)

	compressed, err := cs.compress(CompressionZstd, raw)
	require.NoError(t, err)
	assert.Less(t, len(compressed), len(raw))

	restored, err := cs.decompress(CompressionZstd, compressed, uint64(len(raw)))
	require.NoError(t, err)
	assert.Equal(t, raw, restored)
}

func TestCompress_Deterministic(t *testing.T) {
	raw := bytes.Repeat([]byte("same bytes in, same bytes out "), 500)

	for _, kind := range []Compression{CompressionZlib, CompressionZstd} {
		var a, b codecSet
		first, err := a.compress(kind, raw)
		require.NoError(t, err)
		second, err := b.compress(kind, raw)
		require.NoError(t, err)
		assert.Equal(t, first, second, "%s output must be reproducible", kind)
	}
}

func TestCompress_NoneIdentity(t *testing.T) {
	var cs codecSet
	raw := []byte("untouched")

	stored, err := cs.compress(CompressionNone, raw)
	require.NoError(t, err)
	assert.Equal(t, raw, stored)

	restored, err := cs.decompress(CompressionNone, stored, uint64(len(raw)))
	require.NoError(t, err)
	assert.Equal(t, raw, restored)
}

func TestCompress_Oodle_Unsupported(t *testing.T) {
	var cs codecSet

	_, err := cs.compress(CompressionOodle, []byte("x"))
	assert.ErrorIs(t, err, ErrUnsupportedCodec)

	_, err = cs.decompress(CompressionOodle, []byte("x"), 1)
	assert.ErrorIs(t, err, ErrUnsupportedCodec)
}

func TestDecompress_GarbageInput_CorruptData(t *testing.T) {
	var cs codecSet
	garbage := make([]byte, 64)
	_, err := rand.Read(garbage)
	require.NoError(t, err)

	_, err = cs.decompress(CompressionZlib, garbage, 128)
	assert.ErrorIs(t, err, ErrCorruptData)

	_, err = cs.decompress(CompressionZstd, garbage, 128)
	assert.ErrorIs(t, err, ErrCorruptData)
}

func TestDecompress_WrongExpectedLength_CorruptData(t *testing.T) {
	var cs codecSet
	raw := bytes.Repeat([]byte("abc"), 100)

	compressed, err := cs.compress(CompressionZlib, raw)
	require.NoError(t, err)

	_, err = cs.decompress(CompressionZlib, compressed, uint64(len(raw))+1)
	assert.ErrorIs(t, err, ErrCorruptData)
}

func TestDecompress_HugeExpectedLength_CorruptData(t *testing.T) {
	var cs codecSet
	raw := bytes.Repeat([]byte("abc"), 100)

	compressed, err := cs.compress(CompressionZstd, raw)
	require.NoError(t, err)

	// The expected length comes from untrusted archive fields; an absurd
	// value must fail cleanly instead of sizing an allocation.
	_, err = cs.decompress(CompressionZstd, compressed, 1<<62)
	assert.ErrorIs(t, err, ErrCorruptData)
}
