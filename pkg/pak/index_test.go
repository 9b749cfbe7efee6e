package pak

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleIndex() *index {
	idx := newIndex("../../../", 42)
	idx.add(Entry{Path: "b/two.bin", Offset: 0, Size: 10, Uncompressed: 20, Compression: CompressionZlib})
	idx.add(Entry{Path: "a/one.txt", Offset: 100, Size: 5, Uncompressed: 5})
	idx.add(Entry{Path: "три.txt", Offset: 200, Size: 7, Uncompressed: 7, Compression: CompressionZstd})
	return idx
}

func TestIndex_EncodeDecode_AllVersions(t *testing.T) {
	src := sampleIndex()

	for v := V1; v <= V11; v++ {
		data, err := encodeIndex(src, v)
		require.NoError(t, err)

		got, err := decodeIndex(data, v)
		require.NoError(t, err, "version %s", v)

		assert.Equal(t, src.mountPoint, got.mountPoint)
		if v.hasPathHashSeed() {
			assert.Equal(t, uint64(42), got.pathHashSeed)
		}
		require.Len(t, got.entries, len(src.entries))
		for i := range src.entries {
			want := src.entries[i]
			assert.Equal(t, want.Path, got.entries[i].Path)
			assert.Equal(t, want.Offset, got.entries[i].Offset)
			assert.Equal(t, want.Size, got.entries[i].Size)
			assert.Equal(t, want.Uncompressed, got.entries[i].Uncompressed)
			assert.Equal(t, want.Compression, got.entries[i].Compression)
		}
	}
}

func TestIndex_Decode_PreservesOrder(t *testing.T) {
	data, err := encodeIndex(sampleIndex(), V11)
	require.NoError(t, err)

	idx, err := decodeIndex(data, V11)
	require.NoError(t, err)

	assert.Equal(t, "b/two.bin", idx.entries[0].Path)
	assert.Equal(t, "a/one.txt", idx.entries[1].Path)
	assert.Equal(t, "три.txt", idx.entries[2].Path)
}

func TestIndex_DecodeTruncated_CorruptIndex(t *testing.T) {
	data, err := encodeIndex(sampleIndex(), V11)
	require.NoError(t, err)

	for _, cut := range []int{1, 5, len(data) / 2, len(data) - 1} {
		_, err := decodeIndex(data[:cut], V11)
		assert.ErrorIs(t, err, ErrCorruptIndex, "cut at %d", cut)
	}
}

func TestIndex_DecodeTrailingBytes_CorruptIndex(t *testing.T) {
	data, err := encodeIndex(sampleIndex(), V11)
	require.NoError(t, err)

	_, err = decodeIndex(append(data, 0xAB), V11)
	assert.ErrorIs(t, err, ErrCorruptIndex)
}

func TestIndex_DecodeHashMismatch_CorruptIndex(t *testing.T) {
	data, err := encodeIndex(sampleIndex(), V11)
	require.NoError(t, err)

	// The first stored path hash follows the mount point string, the
	// seed, the entry count, and the first path string.
	pos := 4 + len("../../../") + 8 + 4 + 4 + len("b/two.bin")
	data[pos] ^= 0xFF

	_, err = decodeIndex(data, V11)
	assert.ErrorIs(t, err, ErrCorruptIndex)
}

func TestPathHash_Deterministic(t *testing.T) {
	h1 := pathHash(42, "some/path.txt")
	h2 := pathHash(42, "some/path.txt")
	assert.Equal(t, h1, h2)

	assert.NotEqual(t, pathHash(42, "some/path.txt"), pathHash(43, "some/path.txt"))
	assert.NotEqual(t, pathHash(42, "some/path.txt"), pathHash(42, "some/other.txt"))
}
