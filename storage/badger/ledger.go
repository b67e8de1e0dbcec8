// Copyright 2026 Veridian Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package badger

import (
	"context"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/veridian/quaero/core"
	"github.com/veridian/quaero/storage"
)

// LedgerRepository implements storage.LedgerRepository for BadgerDB.
type LedgerRepository struct {
	backend *Backend
}

var _ storage.LedgerRepository = (*LedgerRepository)(nil)

// NewLedgerRepository creates a new LedgerRepository.
func NewLedgerRepository(backend *Backend) *LedgerRepository {
	return &LedgerRepository{
		backend: backend,
	}
}

// Close releases repository resources.
func (r *LedgerRepository) Close() error {
	return nil
}

// IsIngested reports whether exactly this source and fingerprint pair has
// completed ingestion. An entry recorded under a different fingerprint means
// the document content changed, so it reads as not ingested.
func (r *LedgerRepository) IsIngested(ctx context.Context, source, fingerprint string) (bool, error) {
	entry, err := r.Entry(ctx, source)
	if err != nil {
		if err == storage.ErrNotFound {
			return false, nil
		}
		return false, err
	}
	return entry.Fingerprint == fingerprint, nil
}

// Record upserts the ledger entry for entry.Source. The backend is opened
// with synchronous writes, so the commit is durable before Record returns.
func (r *LedgerRepository) Record(ctx context.Context, entry *core.LedgerEntry) error {
	if err := core.ValidateLedgerEntry(entry); err != nil {
		return err
	}

	return r.backend.WithTx(func(tx *badger.Txn) error {
		if entry.IngestedAt.IsZero() {
			entry.IngestedAt = time.Now().UTC()
		}
		if err := tx.Set(makeLedgerKey(entry.Source), storage.MarshalLedgerEntry(entry)); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}

// Entry retrieves the ledger entry for a document.
func (r *LedgerRepository) Entry(ctx context.Context, source string) (*core.LedgerEntry, error) {
	var entry *core.LedgerEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		item, err := tx.Get(makeLedgerKey(source))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}

		return item.Value(func(val []byte) error {
			var unmarshalErr error
			entry, unmarshalErr = storage.UnmarshalLedgerEntry(val)
			return unmarshalErr
		})
	}, false)

	if err != nil {
		return nil, err
	}
	return entry, nil
}

// Entries returns all ledger entries ordered by source.
func (r *LedgerRepository) Entries(ctx context.Context) ([]*core.LedgerEntry, error) {
	var entries []*core.LedgerEntry
	err := r.backend.WithTx(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(ledgerEntryPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			err := iter.Item().Value(func(val []byte) error {
				entry, err := storage.UnmarshalLedgerEntry(val)
				if err != nil {
					return err
				}
				entries = append(entries, entry)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	}, false)
	return entries, err
}

// Forget removes the ledger entry for a document.
func (r *LedgerRepository) Forget(ctx context.Context, source string) error {
	return r.backend.WithTx(func(tx *badger.Txn) error {
		key := makeLedgerKey(source)
		if _, err := tx.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return storage.ErrNotFound
			}
			return err
		}
		if err := tx.Delete(key); err != nil {
			return err
		}
		return tx.Commit()
	}, true)
}
