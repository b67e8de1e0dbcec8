package extract

import "errors"

// ErrExtraction indicates a document could not be opened or parsed.
// Implementations wrap this so callers can classify extraction failures
// with errors.Is.
var ErrExtraction = errors.New("document extraction failure")
