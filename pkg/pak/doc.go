// Package pak reads and writes versioned pak archives: entry payloads
// appended sequentially, followed by a directory index and a trailing
// footer that locates it. Entries may be compressed with zlib or zstd,
// and archives may be encrypted with a 32-byte key; when a key is
// present the index section is always encrypted. Twelve historical
// layout versions are decoded through one Reader.
//
// A Builder assembles configuration and binds to a Stream:
//
//	r, err := pak.NewBuilder().Key(key).Reader(stream)
//	data, err := r.Get("example.txt")
//
//	w, err := pak.NewBuilder().Compression(pak.CompressionZstd).
//		Writer(stream, pak.WriterOptions{Version: pak.V11})
//	err = w.WriteFile("example.txt", data)
//	err = w.WriteIndex()
package pak
