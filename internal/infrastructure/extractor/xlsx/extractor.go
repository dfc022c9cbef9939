// Package xlsx flattens spreadsheet documents into field-value text blocks
// that the structured-blocks strategies can chunk directly.
package xlsx

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/rag-processor/internal/core/domain"
	"github.com/kirillkom/rag-processor/internal/core/ports"
)

// generatedHeader pins the chunking strategy for converted spreadsheets:
// each emitted block is one row, separated by blank lines.
const generatedHeader = "#!strategy: structured-blocks/empty-line-separated\n\n"

type Extractor struct {
	storage ports.ObjectStorage
}

func NewExtractor(storage ports.ObjectStorage) *Extractor {
	return &Extractor{storage: storage}
}

// Extract renders each data row as a "Header: value" block separated by
// blank lines. The first row of every sheet is treated as the header row.
func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	reader, err := e.storage.Open(ctx, doc.StoragePath)
	if err != nil {
		return "", fmt.Errorf("open source document: %w", err)
	}
	defer reader.Close()

	f, err := excelize.OpenReader(reader)
	if err != nil {
		return "", fmt.Errorf("parse xlsx %s: %w", doc.Filename, err)
	}
	defer f.Close()

	var b strings.Builder
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			return "", fmt.Errorf("read sheet %s: %w", sheet, err)
		}
		if len(rows) < 2 {
			continue
		}
		headers := rows[0]
		for _, row := range rows[1:] {
			if rowIsEmpty(row) {
				continue
			}
			if b.Len() > 0 {
				b.WriteString("\n")
			}
			for i, cell := range row {
				value := strings.TrimSpace(cell)
				if value == "" {
					continue
				}
				b.WriteString(headerFor(headers, i))
				b.WriteString(": ")
				b.WriteString(value)
				b.WriteString("\n")
			}
		}
	}
	if b.Len() == 0 {
		return "", nil
	}
	return generatedHeader + strings.TrimSpace(b.String()) + "\n", nil
}

func headerFor(headers []string, i int) string {
	if i < len(headers) {
		if h := strings.TrimSpace(headers[i]); h != "" {
			return h
		}
	}
	return fmt.Sprintf("Column %d", i+1)
}

func rowIsEmpty(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
