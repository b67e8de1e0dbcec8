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


package quaero

import (
	"context"
	"io"
	"log/slog"

	"github.com/veridian/quaero/ai"
	"github.com/veridian/quaero/ai/openai"
	"github.com/veridian/quaero/chat"
	"github.com/veridian/quaero/extract"
	"github.com/veridian/quaero/extract/pdf"
	"github.com/veridian/quaero/ingestion"
	"github.com/veridian/quaero/search"
	"github.com/veridian/quaero/storage"
	"github.com/veridian/quaero/storage/badger"
)

// Database is the facade over one Quaero document store: the badger backend,
// its repositories, the AI provider and the document extractor, wired
// together and ready to hand to the ingestion, search and reembed packages.
type Database struct {
	backend   *badger.Backend
	chunkRepo storage.ChunkRepository
	ledger    storage.LedgerRepository
	provider  ai.Provider
	extractor extract.Extractor
	logger    *slog.Logger
}

// DatabaseOption configures a Database.
type DatabaseOption func(*databaseOptions)

type databaseOptions struct {
	aiConfig  *ai.Config
	provider  ai.Provider
	extractor extract.Extractor
}

// WithAIConfig sets the AI service configuration used to build the default
// OpenAI-compatible provider. Ignored when WithProvider is also given.
func WithAIConfig(config *ai.Config) DatabaseOption {
	return func(o *databaseOptions) {
		if config != nil {
			o.aiConfig = config
		}
	}
}

// WithProvider substitutes a pre-built AI provider, bypassing the default
// OpenAI-compatible one. Used by tests to inject mocks.
func WithProvider(provider ai.Provider) DatabaseOption {
	return func(o *databaseOptions) {
		o.provider = provider
	}
}

// WithExtractor substitutes a custom document extractor.
// Default is the PDF extractor.
func WithExtractor(extractor extract.Extractor) DatabaseOption {
	return func(o *databaseOptions) {
		if extractor != nil {
			o.extractor = extractor
		}
	}
}

// NewDatabase opens (or creates) the document store at filePath and wires up
// its repositories, AI provider and extractor.
func NewDatabase(filePath string, opts ...DatabaseOption) (*Database, error) {
	options := &databaseOptions{
		aiConfig:  ai.DefaultConfig(),
		extractor: pdf.NewExtractor(),
	}
	for _, opt := range opts {
		opt(options)
	}

	backend, err := badger.OpenBackend(filePath, false)
	if err != nil {
		return nil, err
	}

	chunkRepo, err := badger.NewChunkRepository(backend)
	if err != nil {
		backend.Close()
		return nil, err
	}

	ledger := badger.NewLedgerRepository(backend)

	provider := options.provider
	if provider == nil {
		provider, err = openai.NewProvider(options.aiConfig)
		if err != nil {
			ledger.Close()
			chunkRepo.Close()
			backend.Close()
			return nil, err
		}
	}

	return &Database{
		backend:   backend,
		chunkRepo: chunkRepo,
		ledger:    ledger,
		provider:  provider,
		extractor: options.extractor,
		logger:    slog.Default(),
	}, nil
}

// Close closes the AI provider, the repositories and the backend.
func (db *Database) Close() error {
	if err := db.provider.Close(); err != nil {
		db.logger.Error("error closing AI provider", "err", err)
	}

	if err := db.ledger.Close(); err != nil {
		db.logger.Error("error closing ledger repository", "err", err)
		return err
	}
	if err := db.chunkRepo.Close(); err != nil {
		db.logger.Error("error closing chunk repository", "err", err)
		return err
	}

	if err := db.backend.Close(); err != nil {
		db.logger.Error("error closing backend storage", "err", err)
		return err
	}
	return nil
}

// ChunkRepository returns the vector store.
func (db *Database) ChunkRepository() storage.ChunkRepository {
	return db.chunkRepo
}

// LedgerRepository returns the ingestion ledger.
func (db *Database) LedgerRepository() storage.LedgerRepository {
	return db.ledger
}

// Provider returns the AI provider.
func (db *Database) Provider() ai.Provider {
	return db.provider
}

// Rebuild drops every stored chunk, the collection dimensionality and the
// ingestion ledger in one stroke. The next ingestion run re-embeds everything
// from scratch. This is the recovery path for a corrupted store or an
// embedding model switch where reembedding in place isn't wanted.
func (db *Database) Rebuild(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	db.logger.Warn("rebuilding document store, all chunks and ledger entries will be dropped")
	return db.backend.DropAll()
}

// NewIngestionPipeline creates an ingestion pipeline over this database.
func (db *Database) NewIngestionPipeline(opts ...ingestion.Option) (*ingestion.Pipeline, error) {
	return ingestion.NewPipeline(db.chunkRepo, db.ledger, db.provider.Embedder(), db.extractor, opts...)
}

// NewSearcher creates a searcher over this database.
func (db *Database) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(db.chunkRepo, db.provider.Embedder(), db.provider.Generator(), opts...)
}

// NewChatLoop creates an interactive question-answering loop over this
// database, reading from in and writing to out.
func (db *Database) NewChatLoop(in io.Reader, out io.Writer, searchOpts ...search.Option) (*chat.Loop, error) {
	searcher, err := db.NewSearcher(searchOpts...)
	if err != nil {
		return nil, err
	}
	return chat.NewLoop(searcher, in, out)
}
