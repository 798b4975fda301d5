package badger

import (
	"encoding/binary"

	"github.com/poiesic/cyclonekb/core"
)

// Key prefixes for different data types
const (
	chunkPrefix    = "chunk:"
	docNamePrefix  = "chunkdoc:"
	manifestKey    = "manifest"
	chunkKeyLength = len(chunkPrefix) + 8
)

// makeChunkKey generates a key for a chunk by ID.
// Format: prefix + big-endian ID, so key order is ID order.
func makeChunkKey(id core.ID) []byte {
	buf := make([]byte, chunkKeyLength)
	offset := copy(buf, chunkPrefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// chunkIDFromKey extracts the ID from a chunk key.
func chunkIDFromKey(key []byte) (core.ID, bool) {
	if len(key) != chunkKeyLength || string(key[:len(chunkPrefix)]) != chunkPrefix {
		return 0, false
	}
	return core.ID(binary.BigEndian.Uint64(key[len(chunkPrefix):])), true
}

// makeDocNameKey generates the key recording a document name's first chunk.
// Format: prefix:name
func makeDocNameKey(name string) []byte {
	buf := make([]byte, len(docNamePrefix)+len(name))
	offset := copy(buf, docNamePrefix)
	copy(buf[offset:], name)
	return buf
}
