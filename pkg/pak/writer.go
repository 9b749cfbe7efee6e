package pak

import (
	"bytes"
	"crypto/cipher"
	"crypto/sha1"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/google/uuid"
)

// WriterOptions configure a new archive. Zero-valued fields fall back to
// the defaults below.
type WriterOptions struct {
	// Version is the target format version; defaults to VersionLatest.
	Version Version

	// MountPoint is stored verbatim in the index and surfaced by the
	// Reader; defaults to "../../../".
	MountPoint string

	// PathHashSeed seeds the per-path hashes stored by V10+ indexes.
	PathHashSeed uint64

	// EncryptData encrypts entry payloads in addition to the index.
	// Requires a key and version V4 or newer.
	EncryptData bool
}

// DefaultMountPoint matches what the consuming application expects to
// find in archives built without an explicit mount point.
const DefaultMountPoint = "../../../"

// Writer builds a new archive on a stream: entries are compressed,
// optionally encrypted, and appended immediately; only their descriptors
// stay in memory until WriteIndex seals the archive. A Writer is
// single-use: after WriteIndex every call fails with ErrWriterConsumed.
type Writer struct {
	stream    Stream
	version   Version
	allowed   []Compression
	aead      cipher.AEAD
	keyGUID   uuid.UUID
	encData   bool
	index     *index
	cursor    uint64
	finalized bool
	codecs    codecSet
}

func newWriter(s Stream, key []byte, allowed []Compression, opts WriterOptions) (*Writer, error) {
	if opts.Version == 0 {
		opts.Version = VersionLatest
	}
	if opts.MountPoint == "" {
		opts.MountPoint = DefaultMountPoint
	}
	if !opts.Version.Supported() {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, opts.Version)
	}
	if !utf8.ValidString(opts.MountPoint) {
		return nil, fmt.Errorf("pak: mount point is not valid UTF-8")
	}
	for _, kind := range allowed {
		if !kind.valid() {
			return nil, fmt.Errorf("%w: tag %d", ErrUnsupportedCodec, kind)
		}
		if kind == CompressionOodle {
			return nil, fmt.Errorf("%w: no oodle codec is available for writing", ErrUnsupportedCodec)
		}
	}

	var aead cipher.AEAD
	var keyGUID uuid.UUID
	if key != nil {
		var err error
		if aead, err = newAEAD(key); err != nil {
			return nil, err
		}
		if !opts.Version.hasEncryptedFlag() {
			return nil, fmt.Errorf("%w: encryption requires %s or newer", ErrUnsupportedVersion, V4)
		}
		// Deterministic key fingerprint for the V7+ footer field; it
		// identifies which key the archive wants, not the key itself.
		keyGUID = uuid.NewSHA1(uuid.Nil, key)
	}
	if opts.EncryptData && aead == nil {
		return nil, fmt.Errorf("%w: payload encryption requires a key", ErrInvalidKeyLength)
	}

	if _, err := s.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("pak: seek stream start: %w", err)
	}

	return &Writer{
		stream:  s,
		version: opts.Version,
		allowed: append([]Compression(nil), allowed...),
		aead:    aead,
		keyGUID: keyGUID,
		encData: opts.EncryptData,
		index:   newIndex(opts.MountPoint, opts.PathHashSeed),
	}, nil
}

// Version reports the target format version.
func (w *Writer) Version() Version { return w.version }

// Count reports the number of entries written so far.
func (w *Writer) Count() int { return len(w.index.entries) }

// WriteFile compresses and encrypts data per the archive policy and
// appends it at the current cursor. Paths are unique per archive,
// case-sensitively; rewriting one is a caller error.
//
// Compression choice is deterministic: the first configured kind whose
// output is strictly smaller than the raw data wins, otherwise the data
// is stored uncompressed.
func (w *Writer) WriteFile(path string, data []byte) error {
	if w.finalized {
		return ErrWriterConsumed
	}
	if len(path) > maxStringLen {
		return fmt.Errorf("pak: path longer than %d bytes: %q", maxStringLen, path[:64])
	}
	// The index codec only decodes UTF-8 strings; an invalid path would
	// produce an archive this package cannot read back.
	if !utf8.ValidString(path) {
		return fmt.Errorf("pak: path is not valid UTF-8: %q", path)
	}
	if _, dup := w.index.byPath[path]; dup {
		return fmt.Errorf("%w: %q", ErrDuplicatePath, path)
	}

	stored := data
	kind := CompressionNone
	for _, candidate := range w.allowed {
		if candidate == CompressionNone {
			continue
		}
		compressed, err := w.codecs.compress(candidate, data)
		if err != nil {
			return err
		}
		if len(compressed) < len(data) {
			stored = compressed
			kind = candidate
			break
		}
	}

	e := Entry{
		Path:         path,
		Offset:       w.cursor,
		Uncompressed: uint64(len(data)),
		Compression:  kind,
		Encrypted:    w.encData,
		Hash:         sha1.Sum(stored),
	}

	if w.encData {
		sealed, err := sealBlob(w.aead, stored)
		if err != nil {
			return err
		}
		stored = sealed
	}
	e.Size = uint64(len(stored))

	var record bytes.Buffer
	e.encodeRecord(&record, w.version, 0)
	if _, err := w.stream.Write(record.Bytes()); err != nil {
		return fmt.Errorf("pak: write entry %q: %w", path, err)
	}
	if _, err := w.stream.Write(stored); err != nil {
		return fmt.Errorf("pak: write entry %q: %w", path, err)
	}

	w.cursor += uint64(record.Len()) + e.Size
	w.index.add(e)
	return nil
}

// WriteIndex encodes the accumulated index, encrypts it when a key is
// configured, appends it with the footer, flushes the stream, and
// consumes the writer. Until it returns nil the archive on the stream is
// not readable.
func (w *Writer) WriteIndex() error {
	if w.finalized {
		return ErrWriterConsumed
	}

	data, err := encodeIndex(w.index, w.version)
	if err != nil {
		return err
	}
	encrypted := w.aead != nil
	if encrypted {
		if data, err = sealBlob(w.aead, data); err != nil {
			return err
		}
	}

	f := &footer{
		version:        w.version,
		encryptedIndex: encrypted,
		indexOffset:    w.cursor,
		indexSize:      uint64(len(data)),
		hash:           sha1.Sum(data),
	}
	if encrypted && w.version.hasEncryptionGUID() {
		f.encryptionGUID = w.keyGUID
	}
	if w.version.compressionSlots() > 0 {
		for _, kind := range w.allowed {
			if kind == CompressionNone {
				continue
			}
			f.compression = append(f.compression, kind)
		}
		if len(f.compression) > w.version.compressionSlots() {
			f.compression = f.compression[:w.version.compressionSlots()]
		}
	}

	if _, err := w.stream.Write(data); err != nil {
		return fmt.Errorf("pak: write index: %w", err)
	}
	if _, err := w.stream.Write(f.encode()); err != nil {
		return fmt.Errorf("pak: write footer: %w", err)
	}
	if err := w.stream.Flush(); err != nil {
		return fmt.Errorf("pak: flush stream: %w", err)
	}

	w.finalized = true
	return nil
}
