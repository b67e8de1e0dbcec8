// Package chunker splits extracted document text into overlapping,
// character-bounded chunks with page and sequence provenance.
//
// Chunking is total over well-formed input: it always terminates and every
// character of the input text appears in at least one chunk. Overlap between
// consecutive chunks preserves context across chunk boundaries for retrieval.
package chunker
