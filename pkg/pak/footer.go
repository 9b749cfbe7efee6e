package pak

import (
	"bytes"
	"crypto/sha1"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// footerMagic marks a pak footer. It sits at a version-dependent offset
// from the end of the stream.
const footerMagic uint32 = 0x5A6F12E1

// compressionSlotSize is the fixed width of one codec name slot in V8A+
// footers: the name, zero-padded.
const compressionSlotSize = 32

// footer is the archive trailer: it identifies the format version and
// locates and authenticates the index section.
type footer struct {
	encryptionGUID uuid.UUID // zero unless the archive carries a key; V7+
	encryptedIndex bool      // V4+
	version        Version
	indexOffset    uint64
	indexSize      uint64
	hash           [sha1.Size]byte // SHA-1 of the index exactly as stored
	frozen         bool            // V9 only
	compression    []Compression   // codec name slots, V8A+
}

// footerSize is the encoded footer length for version v.
func footerSize(v Version) int64 {
	n := 4 + 4 + 8 + 8 + sha1.Size // magic, major, offset, size, hash
	if v.hasEncryptionGUID() {
		n += 16
	}
	if v.hasEncryptedFlag() {
		n++
	}
	if v.hasFrozenFlag() {
		n++
	}
	n += v.compressionSlots() * compressionSlotSize
	return int64(n)
}

func (f *footer) encode() []byte {
	v := f.version
	var buf bytes.Buffer
	if v.hasEncryptionGUID() {
		buf.Write(f.encryptionGUID[:])
	}
	if v.hasEncryptedFlag() {
		var enc uint8
		if f.encryptedIndex {
			enc = 1
		}
		putU8(&buf, enc)
	}
	putU32(&buf, footerMagic)
	putU32(&buf, v.Major())
	putU64(&buf, f.indexOffset)
	putU64(&buf, f.indexSize)
	buf.Write(f.hash[:])
	if v.hasFrozenFlag() {
		var fr uint8
		if f.frozen {
			fr = 1
		}
		putU8(&buf, fr)
	}
	for i := 0; i < v.compressionSlots(); i++ {
		var slot [compressionSlotSize]byte
		if i < len(f.compression) {
			copy(slot[:], f.compression[i].slotName())
		}
		buf.Write(slot[:])
	}
	return buf.Bytes()
}

// decodeFooter parses data as a version-v footer. A magic or major
// mismatch means data is not a footer of this version, which the probing
// loop treats as "try the next version". A valid magic next to a major
// outside the supported range is a real footer from a format we do not
// speak, and is reported as such.
func decodeFooter(data []byte, v Version) (*footer, error) {
	r := &leReader{buf: data}
	f := &footer{version: v}
	if v.hasEncryptionGUID() {
		copy(f.encryptionGUID[:], r.take(16))
	}
	if v.hasEncryptedFlag() {
		f.encryptedIndex = r.u8() != 0
	}
	magic := r.u32()
	major := r.u32()
	f.indexOffset = r.u64()
	f.indexSize = r.u64()
	copy(f.hash[:], r.take(sha1.Size))
	if v.hasFrozenFlag() {
		f.frozen = r.u8() != 0
	}
	for i := 0; i < v.compressionSlots(); i++ {
		slot := r.take(compressionSlotSize)
		if r.err != nil {
			break
		}
		name := string(bytes.TrimRight(slot, "\x00"))
		kind, ok := compressionFromSlot(name)
		if !ok {
			return nil, fmt.Errorf("%w: footer slot %q", ErrUnsupportedCodec, name)
		}
		if kind != CompressionNone {
			f.compression = append(f.compression, kind)
		}
	}
	if r.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptHeader, r.err)
	}
	if magic == footerMagic && (major < V1.Major() || major > V11.Major()) {
		return nil, fmt.Errorf("%w: footer major %d", ErrUnsupportedVersion, major)
	}
	if magic != footerMagic || major != v.Major() {
		return nil, fmt.Errorf("%w: no v%d footer", ErrCorruptHeader, v.Major())
	}
	return f, nil
}

// readFooter probes the end of the stream for each supported version,
// newest first, and returns the first footer whose magic and major
// version line up. V8A and V8B share a major number but differ in
// footer size, so the probe window tells them apart.
func readFooter(s Stream) (*footer, error) {
	end, err := s.Seek(0, io.SeekEnd)
	if err != nil {
		return nil, fmt.Errorf("pak: seek stream end: %w", err)
	}
	for v := V11; v >= V1; v-- {
		size := footerSize(v)
		if end < size {
			continue
		}
		if _, err := s.Seek(end-size, io.SeekStart); err != nil {
			return nil, fmt.Errorf("pak: seek footer: %w", err)
		}
		buf := make([]byte, size)
		if _, err := io.ReadFull(s, buf); err != nil {
			return nil, fmt.Errorf("pak: read footer: %w", err)
		}
		f, err := decodeFooter(buf, v)
		if errors.Is(err, ErrUnsupportedVersion) {
			return nil, err
		}
		if err != nil {
			continue
		}
		if f.indexOffset+f.indexSize < f.indexOffset || f.indexOffset+f.indexSize > uint64(end-size) {
			return nil, fmt.Errorf("%w: index range [%d, %d) outside archive", ErrCorruptHeader, f.indexOffset, f.indexOffset+f.indexSize)
		}
		return f, nil
	}
	return nil, ErrCorruptHeader
}
