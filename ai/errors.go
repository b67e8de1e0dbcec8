package ai

import "errors"

// Sentinel errors for AI service failures. Implementations wrap these so
// callers can classify failures with errors.Is without depending on a
// concrete provider.
var (
	// ErrEmbeddingService indicates the embedding backend failed or was
	// unreachable.
	ErrEmbeddingService = errors.New("embedding service failure")

	// ErrGenerationService indicates the answer generation backend failed or
	// was unreachable.
	ErrGenerationService = errors.New("generation service failure")
)
