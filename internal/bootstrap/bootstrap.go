package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/rag-processor/internal/config"
	"github.com/kirillkom/rag-processor/internal/core/chunking"
	"github.com/kirillkom/rag-processor/internal/core/ports"
	"github.com/kirillkom/rag-processor/internal/core/usecase"
	"github.com/kirillkom/rag-processor/internal/core/validation"
	"github.com/kirillkom/rag-processor/internal/infrastructure/embedding/ollama"
	"github.com/kirillkom/rag-processor/internal/infrastructure/extractor"
	"github.com/kirillkom/rag-processor/internal/infrastructure/extractor/pdf"
	"github.com/kirillkom/rag-processor/internal/infrastructure/extractor/plaintext"
	"github.com/kirillkom/rag-processor/internal/infrastructure/extractor/xlsx"
	"github.com/kirillkom/rag-processor/internal/infrastructure/queue/nats"
	"github.com/kirillkom/rag-processor/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/rag-processor/internal/infrastructure/resilience"
	"github.com/kirillkom/rag-processor/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/rag-processor/internal/infrastructure/vector/qdrant"
)

type App struct {
	Config config.Config

	Queue     ports.MessageQueue
	Repo      ports.DocumentRepository
	IngestUC  ports.DocumentIngestor
	ProcessUC *usecase.ProcessDocumentUseCase
	PreviewUC ports.DocumentPreviewer

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	db, err := postgres.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	repo := postgres.NewDocumentRepository(db)
	if err := repo.EnsureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure schema: %w", err)
	}

	storage, err := localfs.New(cfg.StoragePath)
	if err != nil {
		return nil, fmt.Errorf("init object storage: %w", err)
	}

	queue, err := nats.New(cfg.NATSURL, cfg.NATSSubject)
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	executorCfg := resilience.DefaultConfig()
	executorCfg.Logger = logger
	executor := resilience.NewExecutor(executorCfg)

	embedder := ollama.New(cfg.OllamaURL, cfg.OllamaEmbedModel, executor)
	delivery := qdrant.New(cfg.QdrantURL, cfg.QdrantCollection)

	texts := extractor.NewDispatcher(
		plaintext.NewExtractor(storage),
		pdf.NewExtractor(storage),
		xlsx.NewExtractor(storage),
	)

	rules := validation.NewRuleRegistry()
	if cfg.ValidationRuleFile != "" {
		if err := rules.LoadFile(cfg.ValidationRuleFile); err != nil {
			return nil, fmt.Errorf("load validation rules: %w", err)
		}
	}
	validator := validation.NewEngine(rules)
	if cfg.ValidationScoreThreshold > 0 {
		validator = validator.WithScoreThreshold(cfg.ValidationScoreThreshold)
	}

	strategies := chunking.NewRegistry()
	chunker := chunking.NewEngine(strategies)

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue)
	processUC := usecase.NewProcessDocumentUseCase(repo, texts, strategies, chunker, validator, embedder, delivery, logger)
	previewUC := usecase.NewPreviewUseCase(strategies, chunker, validator)

	return &App{
		Config: cfg,
		Queue:  queue,
		Repo:   repo,

		IngestUC:  ingestUC,
		ProcessUC: processUC,
		PreviewUC: previewUC,

		closeFn: func() {
			queue.Close()
			_ = db.Close()
		},
	}, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
