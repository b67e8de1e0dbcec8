package chunker

import "errors"

var (
	// ErrInvalidChunkConfig indicates an unusable max length/overlap pair.
	ErrInvalidChunkConfig = errors.New("invalid chunk configuration")

	// ErrMalformedInput indicates the caller passed a malformed page list.
	// This is a programming error, not a content error, and is not retried.
	ErrMalformedInput = errors.New("malformed chunking input")
)
