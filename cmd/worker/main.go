package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/rag-processor/internal/bootstrap"
	"github.com/kirillkom/rag-processor/internal/config"
	"github.com/kirillkom/rag-processor/internal/observability/logging"
	"github.com/kirillkom/rag-processor/internal/observability/metrics"
)

const serviceName = "worker"

const processTimeout = 5 * time.Minute

// metricsObserver adapts WorkerMetrics to the pipeline observer contract.
type metricsObserver struct {
	m *metrics.WorkerMetrics
}

func (o metricsObserver) RecordClassification(documentType string) {
	o.m.RecordClassification(serviceName, documentType)
}

func (o metricsObserver) RecordChunking(strategy string, chunkCount int) {
	o.m.RecordChunking(serviceName, strategy, chunkCount)
}

func (o metricsObserver) RecordValidation(passed bool, score float64) {
	o.m.RecordValidation(serviceName, passed, score)
}

func main() {
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		logger.Error("bootstrap failed", "error", err)
		os.Exit(1)
	}
	defer app.Close()

	workerMetrics := metrics.NewWorkerMetrics(serviceName)
	processUC := app.ProcessUC.WithObserver(metricsObserver{m: workerMetrics})

	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: metricsHandler(workerMetrics),
	}
	go func() {
		logger.Info("worker metrics listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("worker metrics server failed", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("worker subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentIngested(ctx, func(handlerCtx context.Context, documentID string) error {
		processCtx, cancel := context.WithTimeout(handlerCtx, processTimeout)
		defer cancel()

		if doc, lookupErr := app.Repo.GetByID(processCtx, documentID); lookupErr == nil {
			workerMetrics.ObserveQueueLag(serviceName, time.Since(doc.CreatedAt))
		}

		workerMetrics.StartDocument()
		start := time.Now()
		processErr := processUC.ProcessByID(processCtx, documentID)
		workerMetrics.FinishDocument(serviceName, time.Since(start), processErr)
		return processErr
	})
	if err != nil {
		logger.Error("worker subscribe failed", "error", err)
		os.Exit(1)
	}
}

func metricsHandler(m *metrics.WorkerMetrics) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())
	return mux
}
