package pak

import (
	"crypto/sha1"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFooter_EncodeDecode_AllVersions(t *testing.T) {
	for v := V1; v <= V11; v++ {
		src := &footer{
			version:        v,
			encryptedIndex: v.hasEncryptedFlag(),
			indexOffset:    1234,
			indexSize:      567,
			hash:           sha1.Sum([]byte("index bytes")),
		}
		if v.compressionSlots() > 0 {
			src.compression = []Compression{CompressionZlib, CompressionZstd}
		}

		data := src.encode()
		require.Equal(t, footerSize(v), int64(len(data)), "version %s", v)

		got, err := decodeFooter(data, v)
		require.NoError(t, err, "version %s", v)
		assert.Equal(t, src.indexOffset, got.indexOffset)
		assert.Equal(t, src.indexSize, got.indexSize)
		assert.Equal(t, src.hash, got.hash)
		assert.Equal(t, src.encryptedIndex, got.encryptedIndex)
		assert.Equal(t, src.compression, got.compression)
	}
}

func TestFooter_SharedMajor_DisambiguatedBySize(t *testing.T) {
	// V8A and V8B both encode major 8; only the footer size differs.
	assert.Equal(t, V8A.Major(), V8B.Major())
	assert.NotEqual(t, footerSize(V8A), footerSize(V8B))

	for _, v := range []Version{V8A, V8B} {
		stream := NewMemStream()
		w, err := NewBuilder().Writer(stream, WriterOptions{Version: v})
		require.NoError(t, err)
		require.NoError(t, w.WriteFile("f.txt", []byte("f")))
		require.NoError(t, w.WriteIndex())

		f, err := readFooter(NewMemStreamFrom(stream.Bytes()))
		require.NoError(t, err)
		assert.Equal(t, v, f.version)
	}
}

func TestFooter_DecodeWrongMagic_Error(t *testing.T) {
	f := &footer{version: V2, indexOffset: 1, indexSize: 2}
	data := f.encode()
	data[0] ^= 0xFF

	_, err := decodeFooter(data, V2)
	assert.ErrorIs(t, err, ErrCorruptHeader)
}

func TestFooter_DecodeFutureMajor_UnsupportedVersion(t *testing.T) {
	f := &footer{version: V2, indexOffset: 1, indexSize: 2}
	data := f.encode()
	// Major sits right after the magic. A valid magic with a major this
	// package does not speak is a future format, not corruption.
	le.PutUint32(data[4:8], 42)

	_, err := decodeFooter(data, V2)
	assert.ErrorIs(t, err, ErrUnsupportedVersion)
}

func TestFooter_IndexRangeOutsideArchive_CorruptHeader(t *testing.T) {
	stream := NewMemStream()
	f := &footer{version: V1, indexOffset: 1 << 40, indexSize: 10}
	_, err := stream.Write(f.encode())
	require.NoError(t, err)

	_, err = readFooter(stream)
	assert.ErrorIs(t, err, ErrCorruptHeader)
}

func TestFooter_Sizes(t *testing.T) {
	assert.Equal(t, int64(44), footerSize(V1))
	assert.Equal(t, int64(44), footerSize(V3))
	assert.Equal(t, int64(45), footerSize(V4))
	assert.Equal(t, int64(61), footerSize(V7))
	assert.Equal(t, int64(189), footerSize(V8A))
	assert.Equal(t, int64(221), footerSize(V8B))
	assert.Equal(t, int64(222), footerSize(V9))
	assert.Equal(t, int64(221), footerSize(V10))
	assert.Equal(t, int64(221), footerSize(V11))
}
