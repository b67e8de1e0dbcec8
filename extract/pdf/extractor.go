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


package pdf

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/veridian/quaero/extract"
)

// Extractor implements extract.Extractor for PDF files using the ledongthuc
// pdf parser. The whole file is read into memory before parsing, which keeps
// the parser off live file handles and is fine for the document sizes this
// tool targets.
type Extractor struct {
	logger *slog.Logger
}

var _ extract.Extractor = (*Extractor)(nil)

// NewExtractor creates a PDF text extractor.
func NewExtractor() *Extractor {
	return &Extractor{
		logger: slog.Default().With("component", "pdf-extractor"),
	}
}

// ExtractPages reads the PDF at path and returns its plain text page by page.
// Pages the parser cannot decode come back as empty strings so page numbers
// stay aligned with the document.
func (e *Extractor) ExtractPages(ctx context.Context, path string) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", extract.ErrExtraction, path, err)
	}

	reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", extract.ErrExtraction, path, err)
	}

	pageCount := reader.NumPage()
	pages := make([]string, 0, pageCount)
	decoded := 0

	for i := 1; i <= pageCount; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		text, err := e.pageText(reader, i)
		if err != nil {
			// An undecodable page keeps its slot so provenance stays correct.
			e.logger.Warn("skipping undecodable page", "path", path, "page", i, "err", err)
			pages = append(pages, "")
			continue
		}

		pages = append(pages, text)
		if strings.TrimSpace(text) != "" {
			decoded++
		}
	}

	e.logger.Debug("extracted pdf",
		"path", path,
		"pages", pageCount,
		"pages_with_text", decoded)

	return pages, nil
}

func (e *Extractor) pageText(reader *pdf.Reader, pageNum int) (string, error) {
	page := reader.Page(pageNum)
	if page.V.IsNull() {
		return "", nil
	}

	text, err := page.GetPlainText(nil)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// ReadAll extracts the document as a single string with pages separated by
// blank lines. Useful for diagnostics and tooling that doesn't care about
// page provenance.
func (e *Extractor) ReadAll(ctx context.Context, path string) (string, error) {
	pages, err := e.ExtractPages(ctx, path)
	if err != nil {
		return "", err
	}

	var content strings.Builder
	for _, page := range pages {
		if strings.TrimSpace(page) == "" {
			continue
		}
		if content.Len() > 0 {
			content.WriteString("\n\n")
		}
		content.WriteString(page)
	}
	return content.String(), nil
}
