package chunker

import (
	"fmt"
	"strings"

	"github.com/veridian/quaero/core"
)

// DefaultMaxLength and DefaultOverlap are the chunking parameters used when
// callers do not configure their own.
const (
	DefaultMaxLength = 500
	DefaultOverlap   = 100
)

// Splitter turns the ordered per-page text of a document into a sequence of
// overlapping chunks bounded by a maximum character length. Every character
// of the input appears in at least one chunk, and each chunk after the first
// begins with the tail of its predecessor so context survives the boundary.
type Splitter struct {
	maxLen  int
	overlap int
}

// New creates a Splitter. maxLen must be positive and overlap must satisfy
// 0 <= overlap < maxLen.
func New(maxLen, overlap int) (*Splitter, error) {
	if maxLen <= 0 || overlap < 0 || overlap >= maxLen {
		return nil, fmt.Errorf("%w: max length %d, overlap %d", ErrInvalidChunkConfig, maxLen, overlap)
	}
	return &Splitter{
		maxLen:  maxLen,
		overlap: overlap,
	}, nil
}

// pageOffset maps a rune offset in the joined document text back to the
// 1-based page it came from.
type pageOffset struct {
	start int
	page  int
}

// Split chunks one document given its ordered per-page extracted text.
// Empty and whitespace-only pages contribute nothing; the remaining page
// texts are trimmed and joined with a newline. A chunk may span page
// boundaries; its Page field is the page holding its first character.
// Chunking never fails on content. A nil page list is a caller error.
func (s *Splitter) Split(source string, pages []string) ([]core.ChunkRecord, error) {
	if pages == nil {
		return nil, fmt.Errorf("%w: nil page list", ErrMalformedInput)
	}

	var (
		builder strings.Builder
		offsets []pageOffset
	)
	runeLen := 0
	for i, page := range pages {
		text := strings.TrimSpace(page)
		if text == "" {
			continue
		}
		if builder.Len() > 0 {
			builder.WriteByte('\n')
			runeLen++
		}
		offsets = append(offsets, pageOffset{start: runeLen, page: i + 1})
		builder.WriteString(text)
		runeLen += len([]rune(text))
	}

	text := []rune(builder.String())
	if len(text) == 0 {
		return nil, nil
	}

	step := s.maxLen - s.overlap
	var chunks []core.ChunkRecord
	seq := 0
	for start := 0; start < len(text); start += step {
		// The overlap region of the previous chunk already covers the rest.
		if start > 0 && len(text) <= start+s.overlap {
			break
		}

		end := start + s.maxLen
		if end > len(text) {
			end = len(text)
		}

		contents := string(text[start:end])
		chunks = append(chunks, core.ChunkRecord{
			Id:       core.ChunkID(source, seq, contents),
			Source:   source,
			Page:     pageAt(offsets, start),
			Seq:      seq,
			Contents: contents,
		})
		seq++

		if end == len(text) {
			break
		}
	}

	return chunks, nil
}

// pageAt returns the page containing the given rune offset.
func pageAt(offsets []pageOffset, pos int) int {
	page := 1
	for _, off := range offsets {
		if off.start > pos {
			break
		}
		page = off.page
	}
	return page
}
