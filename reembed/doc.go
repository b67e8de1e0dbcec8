// Package reembed provides functionality for reembedding stored chunks
// with a new or updated embedding model.
//
// Switching embedding models invalidates every stored vector: similarity
// scores are only meaningful between vectors from the same model. This
// package rewrites all chunk vectors in place, in batches, without touching
// chunk text or the ingestion ledger. It supports progress tracking and
// retry logic with exponential backoff for flaky embedding services.
package reembed
