// Package pdf extracts plain text from PDF source documents.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/kirillkom/rag-processor/internal/core/domain"
	"github.com/kirillkom/rag-processor/internal/core/ports"
)

type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	raw, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("read source document: %w", err)
	}

	pdfReader, err := pdf.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		return "", fmt.Errorf("parse pdf %s: %w", doc.Filename, err)
	}

	plain, err := pdfReader.GetPlainText()
	if err != nil {
		return "", fmt.Errorf("extract pdf text %s: %w", doc.Filename, err)
	}
	var b strings.Builder
	if _, err := io.Copy(&b, plain); err != nil {
		return "", fmt.Errorf("read pdf text %s: %w", doc.Filename, err)
	}
	return strings.TrimSpace(b.String()), nil
}
