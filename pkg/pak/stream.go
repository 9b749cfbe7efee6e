package pak

import (
	"errors"
	"io"
	"os"
)

// Stream is the byte channel the engine operates on. The engine borrows
// it for the lifetime of a Reader or Writer and never closes it; the
// caller owns the underlying resource and must not move its position
// while an engine operation is in progress.
type Stream interface {
	io.Reader
	io.Writer
	io.Seeker
	Flush() error
}

var errSeekBeforeStart = errors.New("pak: seek before start of stream")

// MemStream keeps the archive in memory. Writing past the current end
// extends the buffer; seeking past the end is allowed and the gap is
// zero-filled by the next write.
type MemStream struct {
	buf []byte
	pos int64
}

func NewMemStream() *MemStream {
	return &MemStream{}
}

// NewMemStreamFrom copies b into a fresh stream positioned at the start.
func NewMemStreamFrom(b []byte) *MemStream {
	return &MemStream{buf: append([]byte(nil), b...)}
}

func (m *MemStream) Read(p []byte) (int, error) {
	if m.pos >= int64(len(m.buf)) {
		return 0, io.EOF
	}
	n := copy(p, m.buf[m.pos:])
	m.pos += int64(n)
	return n, nil
}

func (m *MemStream) Write(p []byte) (int, error) {
	if gap := m.pos - int64(len(m.buf)); gap > 0 {
		m.buf = append(m.buf, make([]byte, gap)...)
	}
	n := copy(m.buf[m.pos:], p)
	if n < len(p) {
		m.buf = append(m.buf, p[n:]...)
	}
	m.pos += int64(len(p))
	return len(p), nil
}

func (m *MemStream) Seek(offset int64, whence int) (int64, error) {
	var next int64
	switch whence {
	case io.SeekStart:
		next = offset
	case io.SeekCurrent:
		next = m.pos + offset
	case io.SeekEnd:
		next = int64(len(m.buf)) + offset
	default:
		return 0, errors.New("pak: invalid seek whence")
	}
	if next < 0 {
		return 0, errSeekBeforeStart
	}
	m.pos = next
	return next, nil
}

func (m *MemStream) Flush() error { return nil }

// Bytes returns the backing buffer. It stays valid until the next write.
func (m *MemStream) Bytes() []byte { return m.buf }

func (m *MemStream) Len() int64 { return int64(len(m.buf)) }

// FileStream adapts an *os.File to Stream. Flush maps to Sync. The file
// stays open after the Reader or Writer is done with it.
type FileStream struct {
	f *os.File
}

func NewFileStream(f *os.File) *FileStream {
	return &FileStream{f: f}
}

func (s *FileStream) Read(p []byte) (int, error)  { return s.f.Read(p) }
func (s *FileStream) Write(p []byte) (int, error) { return s.f.Write(p) }

func (s *FileStream) Seek(offset int64, whence int) (int64, error) {
	return s.f.Seek(offset, whence)
}

func (s *FileStream) Flush() error { return s.f.Sync() }
