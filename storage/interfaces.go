package storage

import (
	"context"

	"github.com/veridian/quaero/core"
)

// ChunkRepository is the persistent vector store: a collection of chunk
// records keyed by content-derived identity, with exact-cosine nearest
// neighbour search. All stored vectors share one dimensionality, established
// by the first insert.
type ChunkRepository interface {
	// AddChunks inserts chunk records together with their embedding vectors.
	// Insertion is idempotent: a record whose content ID already exists is
	// overwritten identically, never duplicated. The first insert into an
	// empty collection establishes its dimensionality; inserting a vector of
	// any other length fails with ErrDimensionMismatch and leaves the
	// collection unchanged. Records without a vector fail with ErrEmptyVector.
	AddChunks(ctx context.Context, records ...*core.ChunkRecord) error

	// FindSimilar returns up to limit records ranked by cosine similarity to
	// the query vector, highest first. An empty collection yields an empty
	// result. A query vector whose length differs from the established
	// dimensionality fails with ErrDimensionMismatch.
	FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.ScoredChunk, error)

	// GetChunk retrieves a single chunk record by ID.
	// Returns ErrNotFound if the record doesn't exist.
	GetChunk(ctx context.Context, id core.ID) (*core.ChunkRecord, error)

	// GetChunks retrieves multiple chunk records by their IDs.
	// Returns only the records that exist (no error for missing records).
	GetChunks(ctx context.Context, ids ...core.ID) ([]*core.ChunkRecord, error)

	// GetChunksBySource returns the IDs of all chunks stored for a document.
	GetChunksBySource(ctx context.Context, source string) ([]core.ID, error)

	// DeleteChunksBySource removes every chunk stored for a document and
	// returns how many were removed. Used when a document's fingerprint
	// changes so stale chunks never linger.
	DeleteChunksBySource(ctx context.Context, source string) (int, error)

	// UpdateVectors rewrites the vectors of existing records and
	// re-establishes the collection dimensionality from the batch. Returns
	// ErrNotFound if any record doesn't exist. This is the reembed
	// maintenance path; regular ingestion never mutates stored records.
	UpdateVectors(ctx context.Context, records ...*core.ChunkRecord) error

	// IterateChunks calls fn for every stored chunk record in key order.
	// Iteration stops on the first error, which is returned.
	IterateChunks(ctx context.Context, fn func(record *core.ChunkRecord) error) error

	// CountChunks returns the number of stored chunk records.
	CountChunks(ctx context.Context) (int, error)

	// Dimension returns the established vector dimensionality, or 0 while
	// the collection is empty.
	Dimension(ctx context.Context) (int, error)

	// Close closes the repository and releases resources.
	Close() error
}

// LedgerRepository is the persistent ingestion ledger: the single source of
// truth for "has this exact document content already been embedded".
type LedgerRepository interface {
	// IsIngested reports whether an entry with exactly this source and
	// fingerprint pair exists. A recorded entry with a different fingerprint
	// reads as not ingested.
	IsIngested(ctx context.Context, source, fingerprint string) (bool, error)

	// Record upserts the ledger entry for entry.Source. The write is durable
	// before Record returns, so a crash immediately afterwards never loses
	// the fact that ingestion completed.
	Record(ctx context.Context, entry *core.LedgerEntry) error

	// Entry retrieves the ledger entry for a document.
	// Returns ErrNotFound if no entry exists.
	Entry(ctx context.Context, source string) (*core.LedgerEntry, error)

	// Entries returns all ledger entries ordered by source.
	Entries(ctx context.Context) ([]*core.LedgerEntry, error)

	// Forget removes the ledger entry for a document.
	// Returns ErrNotFound if no entry exists.
	Forget(ctx context.Context, source string) error

	// Close closes the repository and releases resources.
	Close() error
}
