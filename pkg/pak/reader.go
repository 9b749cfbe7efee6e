package pak

import (
	"crypto/cipher"
	"crypto/sha1"
	"fmt"
	"io"
)

// Reader serves random-access reads from an opened archive. The index is
// parsed once at open time and is read-only afterwards; concurrent Get
// calls are only safe if the underlying stream tolerates concurrent
// seeks, which usually means one stream per goroutine.
type Reader struct {
	stream Stream
	footer *footer
	index  *index
	aead   cipher.AEAD // nil when no key was configured
	codecs codecSet
}

// newReader opens the archive on s: probe the footer, fetch and verify
// the index, decrypt it if needed, and validate every entry range. A
// failure at any step yields no Reader at all.
func newReader(s Stream, key []byte) (*Reader, error) {
	var aead cipher.AEAD
	if key != nil {
		var err error
		if aead, err = newAEAD(key); err != nil {
			return nil, err
		}
	}

	f, err := readFooter(s)
	if err != nil {
		return nil, err
	}

	if _, err := s.Seek(int64(f.indexOffset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("pak: seek index: %w", err)
	}
	stored := make([]byte, f.indexSize)
	if _, err := io.ReadFull(s, stored); err != nil {
		return nil, fmt.Errorf("%w: short index read: %v", ErrCorruptIndex, err)
	}
	if sha1.Sum(stored) != f.hash {
		return nil, fmt.Errorf("%w: index checksum mismatch", ErrCorruptIndex)
	}

	data := stored
	if f.encryptedIndex {
		if aead == nil {
			return nil, fmt.Errorf("%w: archive index is encrypted and no key was configured", ErrAuthenticationFailed)
		}
		if data, err = openBlob(aead, stored); err != nil {
			return nil, err
		}
	}

	idx, err := decodeIndex(data, f.version)
	if err != nil {
		return nil, err
	}
	if err := idx.validateRanges(f.version, f.indexOffset); err != nil {
		return nil, err
	}

	return &Reader{stream: s, footer: f, index: idx, aead: aead}, nil
}

// Version reports the archive's format version.
func (r *Reader) Version() Version { return r.footer.version }

// MountPoint reports the path prefix stored in the archive, verbatim.
// The engine never applies it to lookups; Get matches stored entry paths
// exactly.
func (r *Reader) MountPoint() string { return r.index.mountPoint }

// Count reports the number of entries.
func (r *Reader) Count() int { return len(r.index.entries) }

// Paths lists all entry paths in index order. The returned slice is a
// fresh copy on every call.
func (r *Reader) Paths() []string {
	paths := make([]string, len(r.index.entries))
	for i := range r.index.entries {
		paths[i] = r.index.entries[i].Path
	}
	return paths
}

// Exists reports whether an entry with exactly this path is present.
func (r *Reader) Exists(path string) bool {
	_, ok := r.index.byPath[path]
	return ok
}

// Entry returns the descriptor for path.
func (r *Reader) Entry(path string) (Entry, error) {
	i, ok := r.index.byPath[path]
	if !ok {
		return Entry{}, fmt.Errorf("%w: %q", ErrEntryNotFound, path)
	}
	return r.index.entries[i], nil
}

// Get reads, decrypts, decompresses and checksum-verifies the entry
// stored at exactly this path (case-sensitive, no mount-point handling).
// A missing path is ErrEntryNotFound; every integrity problem is fatal.
func (r *Reader) Get(path string) ([]byte, error) {
	i, ok := r.index.byPath[path]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrEntryNotFound, path)
	}
	e := &r.index.entries[i]

	if _, err := r.stream.Seek(int64(e.Offset), io.SeekStart); err != nil {
		return nil, fmt.Errorf("pak: seek entry %q: %w", path, err)
	}

	// Each payload is preceded by a copy of its record; re-parse it and
	// cross-check against the index before trusting the bytes after it.
	recBuf := make([]byte, e.recordSize(r.footer.version))
	if _, err := io.ReadFull(r.stream, recBuf); err != nil {
		return nil, fmt.Errorf("%w: entry %q: short record read", ErrCorruptData, path)
	}
	rec, err := decodeRecord(&leReader{buf: recBuf}, r.footer.version)
	if err != nil {
		return nil, fmt.Errorf("%w: entry %q: %v", ErrCorruptData, path, err)
	}
	if rec.Size != e.Size || rec.Uncompressed != e.Uncompressed || rec.Compression != e.Compression {
		return nil, fmt.Errorf("%w: entry %q: record disagrees with index", ErrCorruptData, path)
	}

	stored := make([]byte, e.Size)
	if _, err := io.ReadFull(r.stream, stored); err != nil {
		return nil, fmt.Errorf("%w: entry %q: short data read", ErrCorruptData, path)
	}

	if e.Encrypted {
		if r.aead == nil {
			return nil, fmt.Errorf("%w: entry %q is encrypted and no key was configured", ErrAuthenticationFailed, path)
		}
		if stored, err = openBlob(r.aead, stored); err != nil {
			return nil, err
		}
	}

	if sha1.Sum(stored) != e.Hash {
		return nil, fmt.Errorf("%w: entry %q: checksum mismatch", ErrCorruptData, path)
	}

	return r.codecs.decompress(e.Compression, stored, e.Uncompressed)
}
