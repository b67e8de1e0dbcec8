package core

import (
	"encoding/binary"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/go-crypt/x/blake2b"
)

// ID is a unique identifier for domain entities.
// It is generated using content-based hashing so that identical content
// produces identical IDs across runs.
type ID uint64

// IDFromContent generates a deterministic ID from text content using BLAKE2b hashing.
func IDFromContent(text string) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write([]byte(text))
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// ChunkID derives the stable identity of a chunk from its source document,
// its sequence index within that document, and its text. Re-ingesting an
// unchanged document therefore reproduces the same IDs, which makes duplicate
// insertion land on existing records instead of creating new ones.
func ChunkID(source string, seq int, text string) ID {
	return IDFromContent(fmt.Sprintf("%s\x00%d\x00%s", source, seq, text))
}

// Fingerprint derives the content fingerprint of a document from its raw
// bytes as lowercase hex. A document whose bytes change gets a new
// fingerprint and is treated as unseen by the ingestion ledger.
func Fingerprint(data []byte) string {
	h, _ := blake2b.New(32, nil)
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// ChunkRecord is the persisted unit of retrieval: a bounded, overlapping
// slice of a document's extracted text together with its embedding vector
// and provenance metadata. Records are immutable once stored; only the
// reembed maintenance path rewrites vectors.
type ChunkRecord struct {
	Id         ID
	Source     string // document path or name the chunk came from
	Page       int    // 1-based page holding the chunk's first character
	Seq        int    // 0-based sequence index within the document
	Contents   string
	Vector     []float32 // embedding vector (populated at insertion time)
	InsertedAt time.Time
	Metadata   map[string]string // optional metadata (e.g., "model")
}

// LedgerEntry records that one exact document content completed ingestion.
// An entry is written only after the document's chunks have been stored.
type LedgerEntry struct {
	Source      string
	Fingerprint string
	Chunks      int // number of chunks stored for this document
	IngestedAt  time.Time
}

// ScoredChunk is a raw nearest-neighbour candidate returned by the vector
// store, carrying the similarity score used for the initial ordering.
type ScoredChunk struct {
	Record *ChunkRecord
	Score  float32
}

// RankedChunk is the final consumer-facing result after the exact-cosine
// rerank pass. LowConfidence marks results scoring below the configured
// relevance threshold.
type RankedChunk struct {
	Record        *ChunkRecord
	Score         float32
	LowConfidence bool
}
