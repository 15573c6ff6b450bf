package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kirillkom/legal-intel/internal/bootstrap"
	"github.com/kirillkom/legal-intel/internal/config"
)

func main() {
	cfg := config.Load()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg, "worker")
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: app.WorkerMetrics.Handler(),
	}
	go func() {
		log.Printf("worker metrics listening on :%s", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("worker metrics server error: %v", err)
		}
	}()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = metricsServer.Shutdown(shutdownCtx)
	}()

	pool := newDispatcher(
		int64(cfg.WorkerConcurrency),
		time.Duration(cfg.WorkerTimeoutSecs)*time.Second,
		app.ProcessUC.ProcessByID,
		app.WorkerMetrics,
	)

	log.Printf("worker subscribed to %s (concurrency=%d)", cfg.NATSSubject, pool.concurrency)
	if err := app.Queue.SubscribeDocumentUploaded(ctx, pool.handle); err != nil {
		log.Fatalf("worker subscribe error: %v", err)
	}
	pool.wait(30 * time.Second)
}
