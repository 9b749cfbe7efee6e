package pak

import "strconv"

// Version identifies a pak format layout. Versions add features
// monotonically; V8A and V8B share the on-disk major number 8 and are
// told apart by their footer sizes.
type Version uint32

const (
	V1  Version = iota + 1 // initial layout
	V2                     // entry timestamp dropped
	V3                     // per-entry encryption flag, compression blocks
	V4                     // encrypted-index flag in the footer
	V5                     // relative block offsets
	V6                     // record padding reserved
	V7                     // encryption key GUID in the footer
	V8A                    // one-byte compression tag, 4 codec name slots
	V8B                    // 5 codec name slots
	V9                     // frozen-index flag
	V10                    // seeded path hashes in the index
	V11                    // current
)

// VersionLatest is the version new archives are written at unless the
// caller picks another.
const VersionLatest = V11

func (v Version) Supported() bool { return v >= V1 && v <= V11 }

// Major returns the version number encoded in the footer. V8A and V8B
// both encode major 8.
func (v Version) Major() uint32 {
	if v <= V8A {
		return uint32(v)
	}
	return uint32(v) - 1
}

func (v Version) String() string {
	switch v {
	case V8A:
		return "V8A"
	case V8B:
		return "V8B"
	case V9:
		return "V9"
	case V10:
		return "V10"
	case V11:
		return "V11"
	default:
		if v.Supported() {
			return "V" + strconv.Itoa(int(v))
		}
		return "unknown"
	}
}

// Feature gates. Each layout difference between versions is expressed
// through exactly one of these, so the codecs stay branch-per-feature
// instead of branch-per-version.

func (v Version) hasEncryptionGUID() bool  { return v >= V7 }
func (v Version) hasEncryptedFlag() bool   { return v >= V4 }
func (v Version) hasFrozenFlag() bool      { return v == V9 }
func (v Version) hasEntryTimestamp() bool  { return v == V1 }
func (v Version) hasEntryBlocks() bool     { return v >= V3 }
func (v Version) wideCompressionTag() bool { return v < V8A }
func (v Version) hasPathHashSeed() bool    { return v >= V10 }

func (v Version) compressionSlots() int {
	switch {
	case v < V8A:
		return 0
	case v == V8A:
		return 4
	default:
		return 5
	}
}
