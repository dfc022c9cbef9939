package usecase

import (
	"context"
	"testing"

	"github.com/kirillkom/rag-processor/internal/core/chunking"
	"github.com/kirillkom/rag-processor/internal/core/domain"
	"github.com/kirillkom/rag-processor/internal/core/validation"
)

func newPreviewUseCase() *PreviewUseCase {
	registry := chunking.NewRegistry()
	return NewPreviewUseCase(
		registry,
		chunking.NewEngine(registry),
		validation.NewEngine(validation.NewRuleRegistry()),
	)
}

func TestPreviewFullPipeline(t *testing.T) {
	result, err := newPreviewUseCase().Preview(context.Background(), catalogContent)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if result.Strategy != "structured-blocks/empty-line-separated" {
		t.Fatalf("strategy = %s", result.Strategy)
	}
	if len(result.Chunks) != 2 {
		t.Fatalf("expected 2 chunks, got %d", len(result.Chunks))
	}
	if !result.Validation.Passed {
		t.Fatalf("expected passing validation, issues = %v", result.Validation.Issues)
	}
	if result.Directives["strategy"] == "" {
		t.Fatalf("expected the declared directives in the result")
	}
}

func TestPreviewSurfacesDirectiveWarnings(t *testing.T) {
	content := "#!metadata: {broken\n\nName: Widget with a description\nPrice: $10\n"
	result, err := newPreviewUseCase().Preview(context.Background(), content)
	if err != nil {
		t.Fatalf("Preview() error = %v", err)
	}
	if len(result.Warnings) != 1 {
		t.Fatalf("expected one warning, got %v", result.Warnings)
	}
}

func TestPreviewUnknownStrategyFails(t *testing.T) {
	_, err := newPreviewUseCase().Preview(context.Background(), "#!strategy: nope/never\n\nbody text\n")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrUnknownStrategy) {
		t.Fatalf("expected unknown strategy error, got %v", err)
	}
}

func TestPreviewEmptyContentFails(t *testing.T) {
	_, err := newPreviewUseCase().Preview(context.Background(), "")
	if err == nil {
		t.Fatalf("expected error")
	}
	if !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Fatalf("expected invalid input error, got %v", err)
	}
}
