package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/raglab/docqa/internal/bootstrap"
	"github.com/raglab/docqa/internal/config"
	"github.com/raglab/docqa/internal/core/domain"
	"github.com/raglab/docqa/internal/observability/logging"
	"github.com/raglab/docqa/internal/observability/metrics"
)

const serviceName = "docqa-watcher"

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := logging.NewJSONLogger(serviceName, cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, logger)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	watcherMetrics := metrics.NewWatcherMetrics(serviceName)
	metricsServer := &http.Server{
		Addr:    ":" + cfg.WatcherMetricsPort,
		Handler: watcherMetrics.Handler(),
	}
	go func() {
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("watcher metrics server error", "error", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	logger.Info("watcher subscribed", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeDocumentUploaded(ctx, func(handlerCtx context.Context, event domain.UploadEvent) error {
		watcherMetrics.ObserveQueueLag(serviceName, time.Since(event.UploadedAt))
		watcherMetrics.StartWatch()

		start := time.Now()
		result := app.Poller.WaitForReady(handlerCtx, event.DocumentID, event.Index, cfg.ReadyWaitTimeout)
		watcherMetrics.FinishWatch(serviceName, time.Since(start), result.Ready)

		if result.Ready {
			logger.Info("document ready",
				"document_id", event.DocumentID,
				"index", event.Index,
				"waited", time.Since(start).String())
			return nil
		}
		logger.Warn("document not ready before timeout",
			"document_id", event.DocumentID,
			"index", event.Index,
			"diagnostic", result.Diagnostic)
		return nil
	})
	if err != nil && ctx.Err() == nil {
		log.Fatalf("watcher subscribe error: %v", err)
	}
}
