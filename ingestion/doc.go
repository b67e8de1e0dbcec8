// Package ingestion provides pipeline orchestration for loading documents
// into the vector store.
//
// The Pipeline type manages the ingestion workflow for a directory of PDF
// documents:
//   - Fingerprinting each file and skipping content already ingested
//   - Clearing stale chunks when a document's content changed
//   - Extracting text page by page and splitting it into overlapping chunks
//   - Embedding chunk batches concurrently on a worker pool
//   - Committing chunks and the ledger entry only after every batch succeeded
//
// Embedding batches of one document run concurrently, but the store commit
// for a document always happens after all of its batches have been joined.
// A failing document is isolated: it is reported in the run's Report and the
// remaining documents are still processed.
package ingestion
