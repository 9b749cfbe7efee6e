package pak

import "errors"

var (
	// Configuration errors.
	ErrInvalidKeyLength   = errors.New("pak: encryption key must be exactly 32 bytes")
	ErrUnsupportedVersion = errors.New("pak: unsupported format version")
	ErrUnsupportedCodec   = errors.New("pak: unsupported compression codec")

	// Integrity errors.
	ErrCorruptHeader        = errors.New("pak: corrupt or missing footer")
	ErrCorruptIndex         = errors.New("pak: corrupt index")
	ErrCorruptData          = errors.New("pak: corrupt entry data")
	ErrAuthenticationFailed = errors.New("pak: decryption failed")

	// Writer errors.
	ErrDuplicatePath  = errors.New("pak: path already written")
	ErrWriterConsumed = errors.New("pak: writer already finalized")

	// Reader errors.
	ErrEntryNotFound = errors.New("pak: entry not found")
)

// errShortRead marks a truncated field inside a binary section. Call
// sites wrap it into the error kind of the section being decoded.
var errShortRead = errors.New("pak: unexpected end of section")
