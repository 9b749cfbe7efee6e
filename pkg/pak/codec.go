package pak

import (
	"bytes"
	"encoding/binary"
	"unicode/utf8"
)

// maxStringLen caps path and mount-point strings on both encode and
// decode, shielding the decoder from absurd length prefixes.
const maxStringLen = 1 << 16

var le = binary.LittleEndian

// leReader pulls little-endian fields off a byte slice and remembers the
// first failure, so decode paths stay flat instead of checking every
// field read.
type leReader struct {
	buf []byte
	off int
	err error
}

func (r *leReader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.buf) {
		r.err = errShortRead
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *leReader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *leReader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return le.Uint32(b)
}

func (r *leReader) u64() uint64 {
	b := r.take(8)
	if b == nil {
		return 0
	}
	return le.Uint64(b)
}

// str reads a length-prefixed UTF-8 string: u32 byte count, then the
// bytes. No terminator is stored.
func (r *leReader) str() string {
	n := r.u32()
	if r.err != nil {
		return ""
	}
	if n > maxStringLen {
		r.err = errShortRead
		return ""
	}
	b := r.take(int(n))
	if b == nil {
		return ""
	}
	if !utf8.Valid(b) {
		r.err = errShortRead
		return ""
	}
	return string(b)
}

func (r *leReader) remaining() int { return len(r.buf) - r.off }

// Buffer-side writers. bytes.Buffer writes cannot fail, so these return
// nothing; oversize strings are caught before encoding starts.

func putU8(buf *bytes.Buffer, v uint8) { buf.WriteByte(v) }

func putU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	le.PutUint32(b[:], v)
	buf.Write(b[:])
}

func putU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	le.PutUint64(b[:], v)
	buf.Write(b[:])
}

func putStr(buf *bytes.Buffer, s string) {
	putU32(buf, uint32(len(s)))
	buf.WriteString(s)
}
