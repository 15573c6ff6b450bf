// Package bootstrap wires configuration, infrastructure and use cases for
// the api and worker binaries.
package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/kirillkom/legal-intel/internal/config"
	"github.com/kirillkom/legal-intel/internal/core/ports"
	"github.com/kirillkom/legal-intel/internal/core/usecase"
	"github.com/kirillkom/legal-intel/internal/infrastructure/export/xlsx"
	"github.com/kirillkom/legal-intel/internal/infrastructure/extractor/docfile"
	"github.com/kirillkom/legal-intel/internal/infrastructure/llm/openai"
	natsq "github.com/kirillkom/legal-intel/internal/infrastructure/queue/nats"
	"github.com/kirillkom/legal-intel/internal/infrastructure/repository/postgres"
	"github.com/kirillkom/legal-intel/internal/infrastructure/resilience"
	"github.com/kirillkom/legal-intel/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/legal-intel/internal/observability/logging"
	"github.com/kirillkom/legal-intel/internal/observability/metrics"
	"github.com/kirillkom/legal-intel/internal/taxonomy"
)

type App struct {
	Config config.Config

	Queue       ports.MessageQueue
	Repo        ports.DocumentRepository
	Suggestions *taxonomy.Suggestions

	IngestUC    ports.DocumentIngestor
	ProcessUC   ports.DocumentProcessor
	QueryUC     ports.DocumentQueryService
	DashboardUC ports.DashboardService
	Exporter    ports.RegisterExporter

	HTTPMetrics   *metrics.HTTPServerMetrics
	WorkerMetrics *metrics.WorkerMetrics

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, service string) (*App, error) {
	logger := logging.NewJSONLogger(service, cfg.LogLevel)

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

	suggestions, err := taxonomy.Load()
	if err != nil {
		return nil, fmt.Errorf("load taxonomy: %w", err)
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())
	workerMetrics := metrics.NewWorkerMetrics(service)
	httpMetrics := metrics.NewHTTPServerMetrics(service)

	queue, err := natsq.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, natsq.Options{
		ResilienceExecutor: executor,
		OnLag: func(lag time.Duration) {
			workerMetrics.ObserveQueueLag(service, lag)
		},
	})
	if err != nil {
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	aiClient := openai.New(openai.Options{
		BaseURL:     cfg.OpenAIBaseURL,
		APIKey:      cfg.OpenAIAPIKey,
		Model:       cfg.OpenAIModel,
		TimeoutSecs: cfg.OpenAITimeoutSecs,
		MaxRPS:      cfg.OpenAIMaxRPS,
		TextLimit:   cfg.ExtractionTextLimit,
	}, executor, suggestions)

	extractor := docfile.NewExtractor(storage)

	ingestUC := usecase.NewIngestDocumentUseCase(repo, storage, queue, cfg.MaxFileSizeBytes)
	processUC := usecase.NewProcessDocumentUseCase(repo, extractor, aiClient)
	queryUC := usecase.NewQueryDocumentsUseCase(repo)
	dashboardUC := usecase.NewDashboardUseCase(repo)
	exporter := xlsx.NewExporter(repo, logger)

	logger.Info("bootstrap_complete", "storage_path", cfg.StoragePath, "nats_subject", cfg.NATSSubject)

	return &App{
		Config: cfg,

		Queue:       queue,
		Repo:        repo,
		Suggestions: suggestions,

		IngestUC:    ingestUC,
		ProcessUC:   processUC,
		QueryUC:     queryUC,
		DashboardUC: dashboardUC,
		Exporter:    exporter,

		HTTPMetrics:   httpMetrics,
		WorkerMetrics: workerMetrics,

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
