package bootstrap

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/raglab/docqa/internal/config"
	"github.com/raglab/docqa/internal/core/ports"
	"github.com/raglab/docqa/internal/core/usecase"
	"github.com/raglab/docqa/internal/infrastructure/llm/ollama"
	"github.com/raglab/docqa/internal/infrastructure/memoryengine"
	"github.com/raglab/docqa/internal/infrastructure/queue/nats"
	"github.com/raglab/docqa/internal/infrastructure/registry/inmemory"
	registrypg "github.com/raglab/docqa/internal/infrastructure/registry/postgres"
	"github.com/raglab/docqa/internal/infrastructure/resilience"
)

type App struct {
	Config config.Config
	Logger *slog.Logger

	Engine   ports.MemoryEngine
	Registry ports.IngestionRegistry
	Queue    *nats.Queue
	Poller   *usecase.ReadinessPoller

	UploadUC  ports.DocumentUploader
	CatalogUC ports.DocumentCatalog
	DeleteUC  ports.DocumentRemover
	AskUC     ports.QuestionService

	closeFn func()
}

func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	executor := resilience.NewExecutor(resilience.DefaultConfig())

	registry, closeRegistry, err := newRegistry(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queue, err := nats.NewWithOptions(cfg.NATSURL, cfg.NATSSubject, nats.Options{
		ResilienceExecutor: executor,
	})
	if err != nil {
		closeRegistry()
		return nil, fmt.Errorf("init message queue: %w", err)
	}

	engine := memoryengine.New(cfg.MemoryBaseURL, cfg.MemoryCallTimeout, executor, logger)
	generator := ollama.NewGenerator(ollama.New(cfg.OllamaURL, cfg.OllamaGenModel))

	poller := usecase.NewReadinessPoller(engine, cfg.ReadyPollInterval, cfg.MemoryCallTimeout, logger)
	uploadUC := usecase.NewUploadUseCase(engine, registry, queue, poller, cfg.MemoryIndex, cfg.MemoryCountryTag, logger)
	catalogUC := usecase.NewCatalogUseCase(engine, registry, cfg.MemoryIndex, cfg.MemoryCountryTag, cfg.CatalogDefaultLimit, logger)
	deleteUC := usecase.NewDeletionCoordinator(
		engine,
		registry,
		cfg.MemoryIndex,
		cfg.DeleteConfirmWait,
		cfg.DeleteConfirmInterval,
		cfg.MemoryCallTimeout,
		logger,
	)
	askUC := usecase.NewAskUseCase(engine, generator, cfg.MemoryIndex, cfg.MemoryCountryTag, cfg.SearchTopK, cfg.SearchMinRelevance)

	return &App{
		Config: cfg,
		Logger: logger,

		Engine:   engine,
		Registry: registry,
		Queue:    queue,
		Poller:   poller,

		UploadUC:  uploadUC,
		CatalogUC: catalogUC,
		DeleteUC:  deleteUC,
		AskUC:     askUC,

		closeFn: func() {
			queue.Close()
			closeRegistry()
		},
	}, nil
}

// newRegistry keeps upload records in postgres when a DSN is configured
// and falls back to the in-process registry otherwise.
func newRegistry(ctx context.Context, cfg config.Config) (ports.IngestionRegistry, func(), error) {
	if cfg.PostgresDSN == "" {
		return inmemory.New(), func() {}, nil
	}

	db, err := registrypg.OpenDB(cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("open postgres: %w", err)
	}
	registry := registrypg.NewRegistry(db)
	if err := registry.EnsureSchema(ctx); err != nil {
		_ = db.Close()
		return nil, nil, fmt.Errorf("ensure schema: %w", err)
	}
	return registry, func() { _ = db.Close() }, nil
}

func (a *App) Close() {
	if a.closeFn != nil {
		a.closeFn()
	}
}
