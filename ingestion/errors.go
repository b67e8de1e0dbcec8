package ingestion

import "errors"

var (
	// ErrChunkRepositoryRequired is returned when a chunk repository is not provided.
	ErrChunkRepositoryRequired = errors.New("chunk repository required")

	// ErrLedgerRepositoryRequired is returned when a ledger repository is not provided.
	ErrLedgerRepositoryRequired = errors.New("ledger repository required")

	// ErrEmbedderRequired is returned when an embedder is not provided.
	ErrEmbedderRequired = errors.New("embedder required")

	// ErrExtractorRequired is returned when a document extractor is not provided.
	ErrExtractorRequired = errors.New("extractor required")

	// ErrNotADirectory is returned when the ingestion path is not a directory.
	ErrNotADirectory = errors.New("ingestion path is not a directory")
)
