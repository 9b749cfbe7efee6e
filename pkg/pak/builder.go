package pak

// Builder assembles archive configuration and binds it to a stream,
// producing either a Reader or a Writer. Methods take the builder by
// value and return the updated value, so a configured builder is always
// the result of the whole chain and stale intermediate values have no
// shared state to corrupt.
//
// Configuration problems (a key of the wrong length, an unknown codec)
// are remembered and surface when the builder is bound.
type Builder struct {
	key         []byte
	compression []Compression
	err         error
}

func NewBuilder() Builder { return Builder{} }

// Key configures the 32-byte archive key. With a key, the Writer always
// encrypts the index; the Reader uses it to open encrypted archives.
func (b Builder) Key(key []byte) Builder {
	if b.err != nil {
		return b
	}
	if len(key) != KeySize {
		b.err = ErrInvalidKeyLength
		return b
	}
	b.key = append([]byte(nil), key...)
	return b
}

// Compression configures the kinds the Writer may choose among, in
// preference order. Readers ignore it; they follow each entry's recorded
// kind.
func (b Builder) Compression(kinds ...Compression) Builder {
	if b.err != nil {
		return b
	}
	b.compression = append([]Compression(nil), kinds...)
	return b
}

// Reader opens the archive on s. The format version is detected from the
// stream; the configured compression set plays no role.
func (b Builder) Reader(s Stream) (*Reader, error) {
	if b.err != nil {
		return nil, b.err
	}
	return newReader(s, b.key)
}

// Writer starts a new archive on s, overwriting from the start of the
// stream.
func (b Builder) Writer(s Stream, opts WriterOptions) (*Writer, error) {
	if b.err != nil {
		return nil, b.err
	}
	return newWriter(s, b.key, b.compression, opts)
}
