package pak

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
)

// Compression tags the algorithm applied to an entry's stored bytes.
// The numeric values are part of the on-disk format.
type Compression uint8

const (
	CompressionNone Compression = iota
	CompressionZlib
	CompressionZstd
	CompressionOodle
)

func (c Compression) String() string {
	switch c {
	case CompressionNone:
		return "none"
	case CompressionZlib:
		return "zlib"
	case CompressionZstd:
		return "zstd"
	case CompressionOodle:
		return "oodle"
	default:
		return "unknown"
	}
}

func (c Compression) valid() bool { return c <= CompressionOodle }

// slotName is the canonical name written into footer codec slots.
func (c Compression) slotName() string {
	switch c {
	case CompressionZlib:
		return "Zlib"
	case CompressionZstd:
		return "Zstd"
	case CompressionOodle:
		return "Oodle"
	default:
		return ""
	}
}

func compressionFromSlot(name string) (Compression, bool) {
	switch name {
	case "":
		return CompressionNone, true
	case "Zlib":
		return CompressionZlib, true
	case "Zstd":
		return CompressionZstd, true
	case "Oodle":
		return CompressionOodle, true
	default:
		return CompressionNone, false
	}
}

// maxDecompressPrealloc bounds the allocation hint taken from an
// entry's recorded uncompressed size. The field is untrusted until the
// decoded length is checked against it, so it must not size allocations
// on its own.
const maxDecompressPrealloc = 16 << 20

// codecSet holds the coders shared by one Reader or Writer. The zstd
// coders are built on first use and reused; zlib coders are cheap enough
// to build per call.
type codecSet struct {
	zstdEnc *zstd.Encoder
	zstdDec *zstd.Decoder
}

// compress encodes raw with the given kind. Output sizing is
// deterministic for identical input: fixed levels, single-goroutine
// encoders.
func (cs *codecSet) compress(kind Compression, raw []byte) ([]byte, error) {
	switch kind {
	case CompressionNone:
		return raw, nil
	case CompressionZlib:
		var buf bytes.Buffer
		zw, err := zlib.NewWriterLevel(&buf, zlib.DefaultCompression)
		if err != nil {
			return nil, err
		}
		if _, err := zw.Write(raw); err != nil {
			return nil, err
		}
		if err := zw.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case CompressionZstd:
		if cs.zstdEnc == nil {
			enc, err := zstd.NewWriter(nil,
				zstd.WithEncoderLevel(zstd.SpeedDefault),
				zstd.WithEncoderConcurrency(1),
				zstd.WithLowerEncoderMem(true))
			if err != nil {
				return nil, err
			}
			cs.zstdEnc = enc
		}
		return cs.zstdEnc.EncodeAll(raw, nil), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, kind)
	}
}

// decompress restores the raw bytes of an entry. The output must match
// rawLen exactly; anything else is corruption.
func (cs *codecSet) decompress(kind Compression, stored []byte, rawLen uint64) ([]byte, error) {
	switch kind {
	case CompressionNone:
		if uint64(len(stored)) != rawLen {
			return nil, fmt.Errorf("%w: stored size %d, expected %d", ErrCorruptData, len(stored), rawLen)
		}
		return stored, nil
	case CompressionZlib:
		zr, err := zlib.NewReader(bytes.NewReader(stored))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
		}
		defer zr.Close()
		raw, err := io.ReadAll(zr)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
		}
		if uint64(len(raw)) != rawLen {
			return nil, fmt.Errorf("%w: decompressed to %d bytes, expected %d", ErrCorruptData, len(raw), rawLen)
		}
		return raw, nil
	case CompressionZstd:
		if cs.zstdDec == nil {
			dec, err := zstd.NewReader(nil, zstd.WithDecoderConcurrency(1))
			if err != nil {
				return nil, err
			}
			cs.zstdDec = dec
		}
		capHint := rawLen
		if capHint > maxDecompressPrealloc {
			capHint = maxDecompressPrealloc
		}
		raw, err := cs.zstdDec.DecodeAll(stored, make([]byte, 0, capHint))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCorruptData, err)
		}
		if uint64(len(raw)) != rawLen {
			return nil, fmt.Errorf("%w: decompressed to %d bytes, expected %d", ErrCorruptData, len(raw), rawLen)
		}
		return raw, nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodec, kind)
	}
}
