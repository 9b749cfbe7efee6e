package pak

import (
	"bytes"
	"crypto/sha1"
	"fmt"
)

// compressionBlockSize is recorded in V3+ entry records. Entries are
// stored and read whole, so every compressed entry carries exactly one
// block spanning its stored bytes.
const compressionBlockSize = 0x10000

// Entry describes one stored file: where its bytes live inside the
// archive body and how to restore them.
type Entry struct {
	Path         string
	Offset       uint64 // position of the entry's record within the body
	Size         uint64 // stored byte count, after compression and encryption
	Uncompressed uint64
	Compression  Compression
	Encrypted    bool
	Timestamp    uint64 // V1 archives only
	Hash         [sha1.Size]byte
}

// recordSize reports the encoded size of the entry record at version v.
func (e *Entry) recordSize(v Version) uint64 {
	n := 8 + 8 + 8 // offset, size, uncompressed
	if v.wideCompressionTag() {
		n += 4
	} else {
		n++
	}
	if v.hasEntryTimestamp() {
		n += 8
	}
	n += sha1.Size
	if v.hasEntryBlocks() {
		if e.Compression != CompressionNone {
			n += 4 + 16 // block count + one (start, end) pair
		}
		n += 1 + 4 // encrypted flag, block size
	}
	return uint64(n)
}

// encodeRecord appends the entry record to buf. The offset argument is
// what gets stored in the offset field: the index stores the real body
// offset, while the record copy preceding each payload stores zero.
func (e *Entry) encodeRecord(buf *bytes.Buffer, v Version, offset uint64) {
	putU64(buf, offset)
	putU64(buf, e.Size)
	putU64(buf, e.Uncompressed)
	if v.wideCompressionTag() {
		putU32(buf, uint32(e.Compression))
	} else {
		putU8(buf, uint8(e.Compression))
	}
	if v.hasEntryTimestamp() {
		putU64(buf, e.Timestamp)
	}
	buf.Write(e.Hash[:])
	if v.hasEntryBlocks() {
		if e.Compression != CompressionNone {
			putU32(buf, 1)
			putU64(buf, 0)      // block start, relative to the stored data
			putU64(buf, e.Size) // block end
		}
		var enc uint8
		if e.Encrypted {
			enc = 1
		}
		putU8(buf, enc)
		putU32(buf, compressionBlockSize)
	}
}

// decodeRecord parses one entry record. The path is not part of the
// record; callers fill it in from the surrounding index layout.
func decodeRecord(r *leReader, v Version) (Entry, error) {
	var e Entry
	e.Offset = r.u64()
	e.Size = r.u64()
	e.Uncompressed = r.u64()
	var tag uint32
	if v.wideCompressionTag() {
		tag = r.u32()
	} else {
		tag = uint32(r.u8())
	}
	if v.hasEntryTimestamp() {
		e.Timestamp = r.u64()
	}
	copy(e.Hash[:], r.take(sha1.Size))
	if r.err != nil {
		return Entry{}, r.err
	}
	if tag > uint32(CompressionOodle) {
		return Entry{}, fmt.Errorf("%w: tag %d", ErrUnsupportedCodec, tag)
	}
	e.Compression = Compression(tag)
	if v.hasEntryBlocks() {
		if e.Compression != CompressionNone {
			count := r.u32()
			if r.err == nil && int(count) > r.remaining()/16 {
				r.err = errShortRead
			}
			r.take(int(count) * 16)
		}
		e.Encrypted = r.u8() != 0
		r.u32() // block size
	}
	if r.err != nil {
		return Entry{}, r.err
	}
	return e, nil
}
