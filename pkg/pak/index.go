package pak

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/fnv"
	"sort"
)

// index is the in-memory directory of an archive. It is built
// incrementally by a Writer and decoded once by a Reader, after which it
// is read-only.
type index struct {
	mountPoint   string
	pathHashSeed uint64
	entries      []Entry
	byPath       map[string]int
}

func newIndex(mountPoint string, seed uint64) *index {
	return &index{
		mountPoint:   mountPoint,
		pathHashSeed: seed,
		byPath:       make(map[string]int),
	}
}

func (idx *index) add(e Entry) {
	idx.byPath[e.Path] = len(idx.entries)
	idx.entries = append(idx.entries, e)
}

// pathHash is the deterministic 64-bit hash stored next to each record
// in V10+ indexes: FNV-1a over the seed bytes followed by the path.
func pathHash(seed uint64, path string) uint64 {
	h := fnv.New64a()
	var s [8]byte
	binary.LittleEndian.PutUint64(s[:], seed)
	h.Write(s[:])
	h.Write([]byte(path))
	return h.Sum64()
}

// encodeIndex serializes the index for version v. Records keep their
// insertion order.
func encodeIndex(idx *index, v Version) ([]byte, error) {
	if len(idx.mountPoint) > maxStringLen {
		return nil, fmt.Errorf("pak: mount point longer than %d bytes", maxStringLen)
	}
	var buf bytes.Buffer
	putStr(&buf, idx.mountPoint)
	if v.hasPathHashSeed() {
		putU64(&buf, idx.pathHashSeed)
	}
	putU32(&buf, uint32(len(idx.entries)))
	for i := range idx.entries {
		e := &idx.entries[i]
		if len(e.Path) > maxStringLen {
			return nil, fmt.Errorf("pak: path longer than %d bytes: %q", maxStringLen, e.Path[:64])
		}
		putStr(&buf, e.Path)
		if v.hasPathHashSeed() {
			putU64(&buf, pathHash(idx.pathHashSeed, e.Path))
		}
		e.encodeRecord(&buf, v, e.Offset)
	}
	return buf.Bytes(), nil
}

// decodeIndex parses an index section. Ordering is preserved exactly as
// encoded; stored path hashes are recomputed and verified.
func decodeIndex(data []byte, v Version) (*index, error) {
	r := &leReader{buf: data}
	mountPoint := r.str()
	var seed uint64
	if v.hasPathHashSeed() {
		seed = r.u64()
	}
	count := r.u32()
	if r.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, r.err)
	}
	idx := newIndex(mountPoint, seed)
	for i := uint32(0); i < count; i++ {
		path := r.str()
		var storedHash uint64
		if v.hasPathHashSeed() {
			storedHash = r.u64()
		}
		e, err := decodeRecord(r, v)
		if err != nil {
			return nil, fmt.Errorf("%w: record %d: %v", ErrCorruptIndex, i, err)
		}
		if v.hasPathHashSeed() && storedHash != pathHash(seed, path) {
			return nil, fmt.Errorf("%w: path hash mismatch for %q", ErrCorruptIndex, path)
		}
		if _, dup := idx.byPath[path]; dup {
			return nil, fmt.Errorf("%w: duplicate path %q", ErrCorruptIndex, path)
		}
		e.Path = path
		idx.add(e)
	}
	if r.err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorruptIndex, r.err)
	}
	if r.remaining() != 0 {
		return nil, fmt.Errorf("%w: %d trailing bytes after last record", ErrCorruptIndex, r.remaining())
	}
	return idx, nil
}

// validateRanges checks the index invariant: every entry's stored range,
// record included, lies inside [0, bodyEnd) and no two ranges overlap.
func (idx *index) validateRanges(v Version, bodyEnd uint64) error {
	type span struct {
		start, end uint64
		path       string
	}
	spans := make([]span, 0, len(idx.entries))
	for i := range idx.entries {
		e := &idx.entries[i]
		end := e.Offset + e.recordSize(v) + e.Size
		if end < e.Offset || end > bodyEnd {
			return fmt.Errorf("%w: entry %q range [%d, %d) outside body", ErrCorruptIndex, e.Path, e.Offset, end)
		}
		spans = append(spans, span{start: e.Offset, end: end, path: e.Path})
	}
	sort.Slice(spans, func(i, j int) bool { return spans[i].start < spans[j].start })
	for i := 1; i < len(spans); i++ {
		if spans[i].start < spans[i-1].end {
			return fmt.Errorf("%w: entries %q and %q overlap", ErrCorruptIndex, spans[i-1].path, spans[i].path)
		}
	}
	return nil
}
