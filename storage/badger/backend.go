package badger

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"slices"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/veridian/quaero/core"
	"github.com/veridian/quaero/storage"
)

// Backend wraps a BadgerDB instance and provides low-level operations.
// Chunk records and ledger entries live in the same database so that a
// rebuild clears both together.
type Backend struct {
	db     *badger.DB
	logger *slog.Logger
}

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Info(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// OpenBackend opens a BadgerDB database at the specified path.
// Creates the directory if it doesn't exist. On-disk databases are opened
// with synchronous writes so a committed ledger entry survives a crash
// immediately after commit.
func OpenBackend(filePath string, inMemory bool) (*Backend, error) {
	var opts badger.Options

	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		// Ensure directory exists
		info, err := os.Stat(filePath)
		if err != nil {
			if os.IsNotExist(err) {
				if err := os.MkdirAll(filePath, 0755); err != nil {
					return nil, err
				}
				info, err = os.Stat(filePath)
				if err != nil {
					return nil, err
				}
			} else {
				return nil, err
			}
		}
		if !info.IsDir() {
			return nil, fmt.Errorf("%s is not a directory", filePath)
		}
		opts = badger.DefaultOptions(filePath).WithSyncWrites(true)
	}

	opts.Logger = &badgerLoggerAdapter{logger: slog.Default()}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, err
	}

	return &Backend{
		db:     db,
		logger: slog.Default(),
	}, nil
}

// Close closes the BadgerDB database.
func (b *Backend) Close() error {
	return b.db.Close()
}

// IsClosed returns true if the database is closed.
func (b *Backend) IsClosed() bool {
	return b.db.IsClosed()
}

// DropAll removes all data: chunk records, indices, dimensionality meta and
// ledger entries in one stroke. This is the rebuild path; dropping only one
// of the two stores is not possible through this backend.
func (b *Backend) DropAll() error {
	return b.db.DropAll()
}

// WithTx executes a function within a BadgerDB transaction.
// If isWrite is true, creates a read-write transaction.
// The transaction is automatically discarded if fn returns an error.
func (b *Backend) WithTx(fn func(tx *badger.Txn) error, isWrite bool) error {
	tx := b.db.NewTransaction(isWrite)
	defer tx.Discard()
	return fn(tx)
}

// FindSimilar scans all chunk records and ranks them by cosine similarity to
// the query vector, highest first, truncated to limit. The scan is exact;
// there is no approximate index to disagree with the reranker.
func (b *Backend) FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.ScoredChunk, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("%w: limit must be positive", storage.ErrInvalidQuery)
	}

	dim, err := b.readDimension()
	if err != nil {
		return nil, err
	}
	if dim == 0 {
		// Empty collection.
		return []*core.ScoredChunk{}, nil
	}
	if len(vector) != dim {
		return nil, fmt.Errorf("%w: query vector has %d dimensions, collection has %d",
			storage.ErrDimensionMismatch, len(vector), dim)
	}

	var results []*core.ScoredChunk

	err = b.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			item := iter.Item()

			var record *core.ChunkRecord
			err := item.Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalChunkRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil || len(record.Vector) == 0 {
				continue
			}

			results = append(results, &core.ScoredChunk{
				Record: record,
				Score:  core.CosineSimilarity(vector, record.Vector),
			})
		}

		return nil
	}, false)

	if err != nil {
		return nil, err
	}

	// Sort by similarity descending
	slices.SortFunc(results, func(a, b *core.ScoredChunk) int {
		if a.Score > b.Score {
			return -1
		}
		if a.Score < b.Score {
			return 1
		}
		return 0
	})

	if len(results) > limit {
		results = results[:limit]
	}

	return results, nil
}

// readDimension returns the established collection dimensionality, 0 if unset.
func (b *Backend) readDimension() (int, error) {
	var dim int
	err := b.WithTx(func(tx *badger.Txn) error {
		var err error
		dim, err = readDimensionTx(tx)
		return err
	}, false)
	return dim, err
}

func readDimensionTx(tx *badger.Txn) (int, error) {
	item, err := tx.Get(makeDimensionKey())
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return 0, nil
		}
		return 0, err
	}

	var dim int
	err = item.Value(func(val []byte) error {
		id, err := storage.UnmarshalID(val)
		if err != nil {
			return err
		}
		dim = int(id)
		return nil
	})
	return dim, err
}

func writeDimensionTx(tx *badger.Txn, dim int) error {
	return tx.Set(makeDimensionKey(), storage.MarshalID(core.ID(dim)))
}
