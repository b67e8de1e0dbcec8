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


package ingestion

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/veridian/quaero/ai"
	"github.com/veridian/quaero/chunker"
	"github.com/veridian/quaero/core"
	"github.com/veridian/quaero/extract"
	"github.com/veridian/quaero/storage"
)

// DefaultEmbedBatchSize is the number of chunks embedded per service call.
const DefaultEmbedBatchSize = 16

// Pipeline orchestrates the ingestion of PDF documents into the vector store.
// It manages concurrent embedding of chunk batches while keeping store
// commits strictly after embedding has finished for a document.
type Pipeline struct {
	chunks    storage.ChunkRepository
	ledger    storage.LedgerRepository
	embedder  ai.Embedder
	extractor extract.Extractor
	splitter  *chunker.Splitter
	pool      *ants.Pool
	batchSize int
	logger    *slog.Logger
}

// Option configures a Pipeline.
type Option func(*Pipeline) error

// WithPoolSize sets the worker pool size for concurrent embedding.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}

		if p.pool != nil {
			p.pool.Release()
		}

		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		p.pool = pool
		return nil
	}
}

// WithBatchSize sets how many chunks are embedded per service call.
// Default is DefaultEmbedBatchSize.
func WithBatchSize(size int) Option {
	return func(p *Pipeline) error {
		if size < 1 {
			size = 1
		}
		p.batchSize = size
		return nil
	}
}

// WithSplitter sets a custom chunk splitter.
// Default uses chunker.DefaultMaxLength and chunker.DefaultOverlap.
func WithSplitter(splitter *chunker.Splitter) Option {
	return func(p *Pipeline) error {
		if splitter != nil {
			p.splitter = splitter
		}
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(p *Pipeline) error {
		if logger == nil {
			logger = slog.Default()
		}
		p.logger = logger
		return nil
	}
}

// NewPipeline creates a new ingestion pipeline.
func NewPipeline(
	chunks storage.ChunkRepository,
	ledger storage.LedgerRepository,
	embedder ai.Embedder,
	extractor extract.Extractor,
	opts ...Option,
) (*Pipeline, error) {
	if chunks == nil {
		return nil, ErrChunkRepositoryRequired
	}
	if ledger == nil {
		return nil, ErrLedgerRepositoryRequired
	}
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if extractor == nil {
		return nil, ErrExtractorRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}

	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	splitter, err := chunker.New(chunker.DefaultMaxLength, chunker.DefaultOverlap)
	if err != nil {
		pool.Release()
		return nil, err
	}

	p := &Pipeline{
		chunks:    chunks,
		ledger:    ledger,
		embedder:  embedder,
		extractor: extractor,
		splitter:  splitter,
		pool:      pool,
		batchSize: DefaultEmbedBatchSize,
		logger:    slog.Default(),
	}

	for _, opt := range opts {
		if optErr := opt(p); optErr != nil {
			p.Release()
			return nil, optErr
		}
	}

	return p, nil
}

// DocumentFailure records a document the pipeline could not ingest.
type DocumentFailure struct {
	Source string
	Err    error
}

// Report summarizes one ingestion run over a directory.
type Report struct {
	// Ingested counts documents whose chunks were embedded and committed
	// during this run.
	Ingested int

	// Skipped counts documents whose exact content was already in the store.
	Skipped int

	// Failed lists documents that could not be ingested, with the cause.
	Failed []DocumentFailure
}

// Run ingests every PDF document directly inside dir, in lexical filename
// order. Documents already ingested with identical content are skipped.
// A document that fails is recorded in the report and does not abort the
// rest of the run. Run itself only fails when the directory cannot be
// listed or the context is cancelled.
func (p *Pipeline) Run(ctx context.Context, dir string) (*Report, error) {
	paths, err := p.listDocuments(dir)
	if err != nil {
		return nil, err
	}

	report := &Report{}
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		status, err := p.IngestFile(ctx, path)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return report, err
			}
			p.logger.Error("document ingestion failed", "path", path, "err", err)
			report.Failed = append(report.Failed, DocumentFailure{
				Source: filepath.Base(path),
				Err:    err,
			})
			continue
		}

		switch status {
		case StatusIngested:
			report.Ingested++
		case StatusSkipped:
			report.Skipped++
		}
	}

	p.logger.Info("ingestion run complete",
		"dir", dir,
		"ingested", report.Ingested,
		"skipped", report.Skipped,
		"failed", len(report.Failed))

	return report, nil
}

// Status reports what IngestFile did with a document.
type Status int

const (
	// StatusIngested means the document's chunks were embedded and committed.
	StatusIngested Status = iota

	// StatusSkipped means the exact document content was already in the store.
	StatusSkipped
)

// IngestFile ingests a single PDF document. The document's identity is its
// base filename; its content fingerprint decides whether work is needed.
// When the fingerprint matches the ledger the document is skipped. When it
// differs, chunks from the previous content are deleted before the new
// content is embedded and committed.
func (p *Pipeline) IngestFile(ctx context.Context, path string) (Status, error) {
	source := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("reading %s: %w", source, err)
	}
	fingerprint := core.Fingerprint(data)

	ingested, err := p.ledger.IsIngested(ctx, source, fingerprint)
	if err != nil {
		return 0, err
	}
	if ingested {
		p.logger.Debug("skipping already ingested document", "source", source)
		return StatusSkipped, nil
	}

	// A ledger entry with a different fingerprint means the document content
	// changed: its old chunks are stale and must go before re-ingestion.
	if prior, err := p.ledger.Entry(ctx, source); err == nil && prior.Fingerprint != fingerprint {
		deleted, err := p.chunks.DeleteChunksBySource(ctx, source)
		if err != nil {
			return 0, err
		}
		p.logger.Info("document content changed, cleared stale chunks",
			"source", source, "deleted", deleted)
	} else if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return 0, err
	}

	pages, err := p.extractor.ExtractPages(ctx, path)
	if err != nil {
		return 0, err
	}

	records, err := p.splitter.Split(source, pages)
	if err != nil {
		return 0, err
	}

	if len(records) > 0 {
		if err := p.embedRecords(ctx, records); err != nil {
			return 0, err
		}

		pointers := make([]*core.ChunkRecord, len(records))
		for i := range records {
			pointers[i] = &records[i]
		}
		if err := p.chunks.AddChunks(ctx, pointers...); err != nil {
			return 0, err
		}
	}

	if err := p.ledger.Record(ctx, &core.LedgerEntry{
		Source:      source,
		Fingerprint: fingerprint,
		Chunks:      len(records),
	}); err != nil {
		return 0, err
	}

	p.logger.Info("ingested document", "source", source, "chunks", len(records))
	return StatusIngested, nil
}

// embedRecords embeds all records in batches on the worker pool and fills in
// their vectors. All batches are joined before this returns, so the caller's
// store commit never races an in-flight embedding.
func (p *Pipeline) embedRecords(ctx context.Context, records []core.ChunkRecord) error {
	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)

	for start := 0; start < len(records); start += p.batchSize {
		end := start + p.batchSize
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()

			texts := make([]string, len(batch))
			for i := range batch {
				texts[i] = batch[i].Contents
			}

			vectors, err := p.embedder.EmbedTexts(ctx, texts)
			if err == nil && len(vectors) != len(texts) {
				err = fmt.Errorf("%w: got %d vectors for %d texts",
					ai.ErrEmbeddingService, len(vectors), len(texts))
			}
			if err != nil {
				mu.Lock()
				if firstErr == nil {
					firstErr = err
				}
				mu.Unlock()
				return
			}

			for i := range batch {
				batch[i].Vector = core.NormalizeVector(vectors[i])
			}
		})
		if submitErr != nil {
			wg.Done()
			mu.Lock()
			if firstErr == nil {
				firstErr = submitErr
			}
			mu.Unlock()
			break
		}
	}

	wg.Wait()
	return firstErr
}

// listDocuments returns the PDF files directly inside dir in lexical order.
// Subdirectories are not descended into.
func (p *Pipeline) listDocuments(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotADirectory, dir)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if !strings.EqualFold(filepath.Ext(entry.Name()), ".pdf") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)
	return paths, nil
}

// Release releases the embedding worker pool.
// The pipeline should not be used after calling Release.
func (p *Pipeline) Release() {
	if p.pool != nil {
		p.pool.Release()
	}
}
