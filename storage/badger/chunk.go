package badger

import (
	"context"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/veridian/quaero/core"
	"github.com/veridian/quaero/storage"
)

// ChunkRepository implements storage.ChunkRepository for BadgerDB.
type ChunkRepository struct {
	backend *Backend
}

var _ storage.ChunkRepository = (*ChunkRepository)(nil)

// NewChunkRepository creates a new ChunkRepository.
func NewChunkRepository(backend *Backend) (*ChunkRepository, error) {
	if backend == nil {
		return nil, fmt.Errorf("backend required")
	}
	return &ChunkRepository{backend: backend}, nil
}

// Close releases repository resources. Chunk IDs are content-derived, so
// there is no sequence to release.
func (r *ChunkRepository) Close() error {
	return nil
}

// FindSimilar delegates to the backend.
func (r *ChunkRepository) FindSimilar(ctx context.Context, vector []float32, limit int) ([]*core.ScoredChunk, error) {
	return r.backend.FindSimilar(ctx, vector, limit)
}

// AddChunks inserts chunk records. Insertion is idempotent: record IDs are
// derived from content, so re-inserting the same chunk overwrites the same
// key with identical bytes. The whole batch is one transaction; a
// dimensionality mismatch discards it entirely and the collection is
// unchanged.
func (r *ChunkRepository) AddChunks(ctx context.Context, records ...*core.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		dim, err := readDimensionTx(tx)
		if err != nil {
			return err
		}

		for _, record := range records {
			if err := core.ValidateChunkRecord(record); err != nil {
				return err
			}
			if len(record.Vector) == 0 {
				return fmt.Errorf("%w: chunk %d of %s", storage.ErrEmptyVector, record.Seq, record.Source)
			}

			if dim == 0 {
				// First insert establishes the collection dimensionality.
				dim = len(record.Vector)
				if err := writeDimensionTx(tx, dim); err != nil {
					return err
				}
			} else if len(record.Vector) != dim {
				return fmt.Errorf("%w: vector has %d dimensions, collection has %d",
					storage.ErrDimensionMismatch, len(record.Vector), dim)
			}

			if record.Id == 0 {
				record.Id = core.ChunkID(record.Source, record.Seq, record.Contents)
			}
			if record.InsertedAt.IsZero() {
				record.InsertedAt = time.Now().UTC()
			}

			if err := tx.Set(makeChunkKey(record.Id), storage.MarshalChunkRecord(record)); err != nil {
				return err
			}
			if err := tx.Set(makeChunkSourceKey(record.Source, record.Id), storage.MarshalID(record.Id)); err != nil {
				return err
			}
		}

		return tx.Commit()
	}, true)
}

// GetChunk retrieves a single chunk record by ID.
func (r *ChunkRepository) GetChunk(ctx context.Context, id core.ID) (*core.ChunkRecord, error) {
	var result *core.ChunkRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		var err error
		result, err = r.readChunk(tx, makeChunkKey(id))
		if err != nil {
			return err
		}
		if result == nil {
			return storage.ErrNotFound
		}
		return nil
	}, false)
	return result, err
}

// GetChunks retrieves multiple chunk records by their IDs.
func (r *ChunkRepository) GetChunks(ctx context.Context, ids ...core.ID) ([]*core.ChunkRecord, error) {
	var result []*core.ChunkRecord
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			record, err := r.readChunk(tx, makeChunkKey(id))
			if err != nil {
				return err
			}
			if record != nil {
				result = append(result, record)
			}
		}
		return nil
	}, false)
	return result, err
}

// GetChunksBySource returns the IDs of all chunks stored for a document.
func (r *ChunkRepository) GetChunksBySource(ctx context.Context, source string) ([]core.ID, error) {
	var ids []core.ID
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = makePartialChunkSourceKey(source)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				id, err := storage.UnmarshalID(val)
				if err != nil {
					return err
				}
				ids = append(ids, id)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return ids, err
}

// DeleteChunksBySource removes every chunk stored for a document.
func (r *ChunkRepository) DeleteChunksBySource(ctx context.Context, source string) (int, error) {
	ids, err := r.GetChunksBySource(ctx, source)
	if err != nil {
		return 0, err
	}
	if len(ids) == 0 {
		return 0, nil
	}

	err = r.backend.WithTx(func(tx *badger.Txn) error {
		for _, id := range ids {
			if err := tx.Delete(makeChunkKey(id)); err != nil {
				return err
			}
			if err := tx.Delete(makeChunkSourceKey(source, id)); err != nil {
				return err
			}
		}
		return tx.Commit()
	}, true)
	if err != nil {
		return 0, err
	}

	return len(ids), nil
}

// UpdateVectors rewrites the vectors of existing records. The batch must be
// dimensionally uniform; the collection dimensionality meta record is
// re-established from it. Only the reembed maintenance path calls this.
func (r *ChunkRepository) UpdateVectors(ctx context.Context, records ...*core.ChunkRecord) error {
	if len(records) == 0 {
		return nil
	}

	dim := len(records[0].Vector)
	if dim == 0 {
		return fmt.Errorf("%w: chunk %d of %s", storage.ErrEmptyVector, records[0].Seq, records[0].Source)
	}
	for _, record := range records {
		if len(record.Vector) != dim {
			return fmt.Errorf("%w: mixed dimensions %d and %d in one batch",
				storage.ErrDimensionMismatch, dim, len(record.Vector))
		}
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		for _, record := range records {
			key := makeChunkKey(record.Id)
			old, err := r.readChunk(tx, key)
			if err != nil {
				return err
			}
			if old == nil {
				return storage.ErrNotFound
			}

			old.Vector = record.Vector
			if err := tx.Set(key, storage.MarshalChunkRecord(old)); err != nil {
				return err
			}
		}

		if err := writeDimensionTx(tx, dim); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// IterateChunks calls fn for every stored chunk record in key order.
func (r *ChunkRepository) IterateChunks(ctx context.Context, fn func(record *core.ChunkRecord) error) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			var record *core.ChunkRecord
			err := iter.Item().Value(func(val []byte) error {
				var err error
				record, err = storage.UnmarshalChunkRecord(val)
				return err
			})
			if err != nil {
				return err
			}
			if record == nil {
				continue
			}
			if err := fn(record); err != nil {
				return err
			}
		}
		return nil
	}, false)
}

// CountChunks returns the number of stored chunk records.
func (r *ChunkRepository) CountChunks(ctx context.Context) (int, error) {
	count := 0
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(chunkRecordPrefix)
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			count++
		}
		return nil
	}, false)
	return count, err
}

// Dimension returns the established vector dimensionality, 0 when unset.
func (r *ChunkRepository) Dimension(ctx context.Context) (int, error) {
	return r.backend.readDimension()
}

// readChunk reads and unmarshals a chunk record, returning nil if absent.
func (r *ChunkRepository) readChunk(tx *badger.Txn, key []byte) (*core.ChunkRecord, error) {
	item, err := tx.Get(key)
	if err != nil {
		if err == badger.ErrKeyNotFound {
			return nil, nil
		}
		return nil, err
	}

	var record *core.ChunkRecord
	err = item.Value(func(val []byte) error {
		var err error
		record, err = storage.UnmarshalChunkRecord(val)
		return err
	})
	return record, err
}
