package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/veridian/quaero/core"
)

// Key prefixes for different data types
const (
	chunkRecordPrefix  = "chkrec:"
	chunkSourcePrefix  = "chksrc:"
	ledgerEntryPrefix  = "ledger:"
	dimensionMetaKey   = "meta:dim"
)

// makeChunkKey generates a key for a chunk record by ID.
func makeChunkKey(id core.ID) []byte {
	return []byte(fmt.Sprintf("%s%d", chunkRecordPrefix, id))
}

// makeChunkSourceKey generates a composite key for the source index.
// Format: prefix:sourceID:chunkID, both BigEndian so lexicographic sort
// groups a document's chunks together.
func makeChunkSourceKey(source string, chunkID core.ID) []byte {
	prefixBytes := []byte(chunkSourcePrefix)
	buf := make([]byte, len(prefixBytes)+16)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(source)))
	offset += 8
	binary.BigEndian.PutUint64(buf[offset:], uint64(chunkID))
	return buf
}

// makePartialChunkSourceKey generates a partial key for scanning one
// document's chunks.
func makePartialChunkSourceKey(source string) []byte {
	prefixBytes := []byte(chunkSourcePrefix)
	buf := make([]byte, len(prefixBytes)+8)
	offset := copy(buf, prefixBytes)
	binary.BigEndian.PutUint64(buf[offset:], uint64(core.IDFromContent(source)))
	return buf
}

// makeLedgerKey generates a key for a ledger entry by document source.
func makeLedgerKey(source string) []byte {
	return []byte(ledgerEntryPrefix + source)
}

// makeDimensionKey generates the key for the collection dimensionality
// meta record.
func makeDimensionKey() []byte {
	return []byte(dimensionMetaKey)
}
