// Package extractor routes stored documents to a format-specific text
// extractor based on their declared MIME type.
package extractor

import (
	"context"
	"mime"
	"path/filepath"
	"strings"

	"github.com/kirillkom/rag-processor/internal/core/domain"
	"github.com/kirillkom/rag-processor/internal/core/ports"
)

const (
	mimePDF  = "application/pdf"
	mimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Dispatcher implements ports.TextExtractor over a set of format
// extractors. Unrecognized types fall back to plain text, which rejects
// binary input with a clear error.
type Dispatcher struct {
	byType   map[string]ports.TextExtractor
	fallback ports.TextExtractor
}

func NewDispatcher(plain, pdf, xlsx ports.TextExtractor) *Dispatcher {
	return &Dispatcher{
		byType: map[string]ports.TextExtractor{
			"text/plain":    plain,
			"text/markdown": plain,
			"text/csv":      plain,
			mimePDF:         pdf,
			mimeXLSX:        xlsx,
		},
		fallback: plain,
	}
}

func (d *Dispatcher) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	if ex, ok := d.byType[normalizeMime(doc.MimeType)]; ok {
		return ex.Extract(ctx, doc)
	}
	if ex, ok := d.byType[mimeByExtension(doc.Filename)]; ok {
		return ex.Extract(ctx, doc)
	}
	return d.fallback.Extract(ctx, doc)
}

func normalizeMime(contentType string) string {
	if contentType == "" {
		return ""
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return strings.ToLower(strings.TrimSpace(contentType))
	}
	return mediaType
}

// mimeByExtension covers uploads whose client sent a generic content
// type like application/octet-stream.
func mimeByExtension(filename string) string {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".pdf":
		return mimePDF
	case ".xlsx":
		return mimeXLSX
	case ".txt", ".md", ".markdown":
		return "text/plain"
	default:
		return ""
	}
}
