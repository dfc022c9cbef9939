package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "github.com/kirillkom/rag-processor/internal/adapters/http"
	"github.com/kirillkom/rag-processor/internal/bootstrap"
	"github.com/kirillkom/rag-processor/internal/config"
	"github.com/kirillkom/rag-processor/internal/observability/logging"
	"github.com/kirillkom/rag-processor/internal/observability/metrics"
)

const serviceName = "api"

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

	serverMetrics := metrics.NewHTTPServerMetrics(serviceName)
	router := httpadapter.NewRouter(cfg, app.IngestUC, app.PreviewUC, app.Repo).Handler()

	mux := http.NewServeMux()
	mux.Handle("/metrics", serverMetrics.Handler())
	mux.Handle("/", serverMetrics.Middleware(serviceName, router))

	server := &http.Server{
		Addr:         ":" + cfg.APIPort,
		Handler:      mux,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("api listening", "port", cfg.APIPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("api server failed", "error", err)
			os.Exit(1)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("api shutdown error", "error", err)
	}
}
