package extract

import "context"

// Extractor pulls plain text out of a source document, one string per page.
// The returned slice is indexed by page order: element 0 is page 1. Pages the
// underlying parser cannot decode are returned as empty strings so page
// numbering stays aligned with the document.
type Extractor interface {
	// ExtractPages reads the document at path and returns its text page by
	// page. Returns an error wrapping ErrExtraction if the document cannot
	// be opened or parsed at all.
	ExtractPages(ctx context.Context, path string) ([]string, error)
}
