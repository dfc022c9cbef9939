package usecase

import (
	"context"
	"errors"

	"github.com/kirillkom/rag-processor/internal/core/analysis"
	"github.com/kirillkom/rag-processor/internal/core/chunking"
	"github.com/kirillkom/rag-processor/internal/core/directive"
	"github.com/kirillkom/rag-processor/internal/core/domain"
	"github.com/kirillkom/rag-processor/internal/core/validation"
)

// PreviewUseCase runs the full pipeline over raw content without touching
// storage, the queue or the vector store. Used to tune directives before
// uploading a document for real.
type PreviewUseCase struct {
	strategies *chunking.Registry
	chunker    *chunking.Engine
	validator  *validation.Engine
}

func NewPreviewUseCase(
	strategies *chunking.Registry,
	chunker *chunking.Engine,
	validator *validation.Engine,
) *PreviewUseCase {
	return &PreviewUseCase{
		strategies: strategies,
		chunker:    chunker,
		validator:  validator,
	}
}

func (uc *PreviewUseCase) Preview(ctx context.Context, content string) (*domain.PreviewResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if content == "" {
		return nil, domain.WrapError(domain.ErrInvalidInput, "preview", errors.New("empty content"))
	}

	d, body, warnings := directive.Parse(content)
	result := analysis.Analyze(body)

	strategyID := d.Strategy()
	if strategyID == "" {
		strategyID = result.RecommendedStrategy
	}
	strat, err := uc.strategies.Resolve(strategyID)
	if err != nil {
		return nil, err
	}

	chunks, err := uc.chunker.Chunk(body, strategyID, d)
	if err != nil {
		return nil, err
	}

	verdict, err := uc.validator.Validate(body, chunks, strat.Shape, d.RuleSet())
	if err != nil {
		return nil, err
	}

	return &domain.PreviewResult{
		Directive:  d,
		Directives: d.Values,
		Warnings:   warnings,
		Analysis:   result,
		Strategy:   strategyID,
		Chunks:     chunks,
		Validation: verdict,
	}, nil
}
