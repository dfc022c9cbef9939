package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/kirillkom/rag-processor/internal/core/analysis"
	"github.com/kirillkom/rag-processor/internal/core/chunking"
	"github.com/kirillkom/rag-processor/internal/core/directive"
	"github.com/kirillkom/rag-processor/internal/core/domain"
	"github.com/kirillkom/rag-processor/internal/core/ports"
	"github.com/kirillkom/rag-processor/internal/core/validation"
)

const maxReportedIssues = 5

// PipelineObserver receives stage outcomes for instrumentation. All methods
// are called at most once per document.
type PipelineObserver interface {
	RecordClassification(documentType string)
	RecordChunking(strategy string, chunkCount int)
	RecordValidation(passed bool, score float64)
}

type ProcessDocumentUseCase struct {
	repo       ports.DocumentRepository
	extractor  ports.TextExtractor
	strategies *chunking.Registry
	chunker    *chunking.Engine
	validator  *validation.Engine
	embedder   ports.Embedder
	delivery   ports.VectorDelivery
	logger     *slog.Logger
	observer   PipelineObserver
}

func NewProcessDocumentUseCase(
	repo ports.DocumentRepository,
	extractor ports.TextExtractor,
	strategies *chunking.Registry,
	chunker *chunking.Engine,
	validator *validation.Engine,
	embedder ports.Embedder,
	delivery ports.VectorDelivery,
	logger *slog.Logger,
) *ProcessDocumentUseCase {
	return &ProcessDocumentUseCase{
		repo:       repo,
		extractor:  extractor,
		strategies: strategies,
		chunker:    chunker,
		validator:  validator,
		embedder:   embedder,
		delivery:   delivery,
		logger:     logger,
	}
}

// WithObserver attaches a stage observer. A nil observer disables reporting.
func (uc *ProcessDocumentUseCase) WithObserver(obs PipelineObserver) *ProcessDocumentUseCase {
	uc.observer = obs
	return uc
}

func (uc *ProcessDocumentUseCase) ProcessByID(ctx context.Context, documentID string) error {
	if err := uc.markStatus(ctx, documentID, domain.StatusProcessing, ""); err != nil {
		return fmt.Errorf("set status=processing: %w", err)
	}

	err := uc.processPipeline(ctx, documentID)
	if err != nil {
		if failErr := uc.markFailed(ctx, documentID, err); failErr != nil {
			return fmt.Errorf("%w; mark failed status: %v", err, failErr)
		}
		return err
	}

	if err := uc.markStatus(ctx, documentID, domain.StatusReady, ""); err != nil {
		return fmt.Errorf("set status=ready: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) processPipeline(ctx context.Context, documentID string) error {
	doc, err := uc.loadDocument(ctx, documentID)
	if err != nil {
		return err
	}

	content, err := uc.extractText(ctx, doc)
	if err != nil {
		return err
	}

	d, body, warnings := directive.Parse(content)
	for _, w := range warnings {
		uc.logger.Warn("directive dropped", "document_id", documentID, "warning", w)
	}

	result := analysis.Analyze(body)
	if uc.observer != nil {
		uc.observer.RecordClassification(string(result.DocumentType))
	}

	strategyID := d.Strategy()
	if strategyID == "" {
		strategyID = result.RecommendedStrategy
	}
	strat, err := uc.strategies.Resolve(strategyID)
	if err != nil {
		return err
	}

	chunks, err := uc.chunker.Chunk(body, strategyID, d)
	if err != nil {
		return err
	}
	if len(chunks) == 0 {
		return domain.WrapError(domain.ErrInvalidInput, "chunk document", errors.New("chunking produced zero chunks"))
	}
	if uc.observer != nil {
		uc.observer.RecordChunking(strategyID, len(chunks))
	}

	verdict, err := uc.validator.Validate(body, chunks, strat.Shape, d.RuleSet())
	if err != nil {
		return err
	}
	if uc.observer != nil {
		uc.observer.RecordValidation(verdict.Passed, verdict.Score)
	}

	outcome := domain.ProcessingOutcome{
		DocumentType:    result.DocumentType,
		Confidence:      result.Confidence,
		StrategyUsed:    strategyID,
		ChunkCount:      len(chunks),
		ValidationScore: verdict.Score,
	}
	if err := uc.persistOutcome(ctx, documentID, outcome); err != nil {
		return err
	}

	if !verdict.Passed {
		return domain.WrapError(
			domain.ErrInvalidInput,
			"validate chunks",
			fmt.Errorf("rule set %q: %s", verdict.RuleSetUsed, summarizeIssues(verdict.Issues)),
		)
	}

	vectors, err := uc.embed(ctx, chunks)
	if err != nil {
		return err
	}

	applyOutcome(doc, outcome)
	if err := uc.delivery.Deliver(ctx, doc, chunks, vectors); err != nil {
		return fmt.Errorf("deliver chunks to vector store: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) loadDocument(ctx context.Context, documentID string) (*domain.Document, error) {
	doc, err := uc.repo.GetByID(ctx, documentID)
	if err != nil {
		return nil, fmt.Errorf("fetch document by id: %w", err)
	}
	return doc, nil
}

func (uc *ProcessDocumentUseCase) extractText(ctx context.Context, doc *domain.Document) (string, error) {
	text, err := uc.extractor.Extract(ctx, doc)
	if err != nil {
		return "", fmt.Errorf("extract text: %w", err)
	}
	if strings.TrimSpace(text) == "" {
		return "", domain.WrapError(domain.ErrInvalidInput, "extract text", errors.New("empty extracted text"))
	}
	return text, nil
}

func (uc *ProcessDocumentUseCase) embed(ctx context.Context, chunks []domain.Chunk) ([][]float32, error) {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	vectors, err := uc.embedder.Embed(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embed chunks: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"embed chunks",
			fmt.Errorf("vectors/chunks mismatch: %d/%d", len(vectors), len(chunks)),
		)
	}
	return vectors, nil
}

func (uc *ProcessDocumentUseCase) persistOutcome(ctx context.Context, documentID string, outcome domain.ProcessingOutcome) error {
	if err := uc.repo.SaveOutcome(ctx, documentID, outcome); err != nil {
		return fmt.Errorf("save processing outcome: %w", err)
	}
	return nil
}

func (uc *ProcessDocumentUseCase) markStatus(ctx context.Context, documentID string, status domain.DocumentStatus, errMessage string) error {
	return uc.repo.UpdateStatus(ctx, documentID, status, errMessage)
}

func (uc *ProcessDocumentUseCase) markFailed(ctx context.Context, documentID string, processErr error) error {
	if processErr == nil {
		return nil
	}
	return uc.markStatus(ctx, documentID, domain.StatusFailed, processErr.Error())
}

func applyOutcome(doc *domain.Document, outcome domain.ProcessingOutcome) {
	doc.DocumentType = string(outcome.DocumentType)
	doc.Confidence = outcome.Confidence
	doc.StrategyUsed = outcome.StrategyUsed
	doc.ChunkCount = outcome.ChunkCount
	doc.ValidationScore = outcome.ValidationScore
}

func summarizeIssues(issues []string) string {
	if len(issues) <= maxReportedIssues {
		return strings.Join(issues, "; ")
	}
	head := strings.Join(issues[:maxReportedIssues], "; ")
	return fmt.Sprintf("%s; and %d more issues", head, len(issues)-maxReportedIssues)
}
