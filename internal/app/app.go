package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"contentpipe/internal/config"
	"contentpipe/internal/domain"
	"contentpipe/internal/infrastructure/httpapi"
	"contentpipe/internal/infrastructure/rss"
	"contentpipe/internal/infrastructure/scheduler"
	"contentpipe/internal/infrastructure/scraper"
	"contentpipe/internal/infrastructure/storage"
	"contentpipe/internal/ingest"
	"contentpipe/internal/logging"
	"contentpipe/internal/ports"
	"contentpipe/internal/registry"
	"contentpipe/internal/retrieval"
	"contentpipe/internal/scoring"
	"contentpipe/internal/usecase"
)

// Application wires configs to components and owns the lifecycle.
type Application struct {
	cfg       config.Config
	logger    *slog.Logger
	scheduler ports.Scheduler
	server    *httpapi.Server
}

// New builds a runnable application instance.
func New(ctx context.Context, cfg config.Config, logger *slog.Logger) (*Application, error) {
	reg, err := registry.FromConfig(cfg.Sources)
	if err != nil {
		return nil, err
	}

	var store ports.ContentStore
	if cfg.Database.DSN != "" {
		pg, err := storage.NewPostgresStore(ctx, cfg.Database.DSN)
		if err != nil {
			return nil, fmt.Errorf("open store: %w", err)
		}
		store = pg
	} else {
		logger.Warn("no database DSN configured, using in-memory store")
		store = storage.NewMemoryStore()
	}

	scorer := scoring.New()
	for typ, bands := range cfg.Scoring.UpvoteBands {
		scorer.RegisterNormalizer(domain.SourceType(typ), scoring.TieredUpvotes(upvoteBands(bands)))
	}

	authors, err := registry.AuthorsFromConfig(cfg.Scoring.Authors)
	if err != nil {
		return nil, err
	}

	gate := ingest.NewGate(reg, store, scorer, authors, ingest.HeuristicExtractor{}, ingest.Options{
		MaxAgeDays:  cfg.Ingest.MaxAgeDays,
		TitleWindow: cfg.Ingest.TitleWindow,
	}, logging.Component(logger, "gate"))

	pipeline := usecase.NewPipeline(reg, gate, logging.Component(logger, "pipeline"))
	pipeline.RegisterProducer(rss.New(logging.Component(logger, "producer.rss")))
	pipeline.RegisterProducer(scraper.New(nil, logging.Component(logger, "producer.scraper")))

	rescorer := usecase.NewRescorer(reg, store, scorer, authors, logging.Component(logger, "rescorer"))

	sched := scheduler.New(pipeline, rescorer,
		cfg.Scheduler.CollectCron, cfg.Scheduler.RescoreCron,
		logging.Component(logger, "scheduler"))

	retriever := retrieval.New(store)
	server := httpapi.NewServer(reg, retriever, store, sched, cfg.Retrieval)

	return &Application{
		cfg:       cfg,
		logger:    logger,
		scheduler: sched,
		server:    server,
	}, nil
}

func upvoteBands(cfgs []config.BandConfig) []scoring.Band {
	bands := make([]scoring.Band, 0, len(cfgs))
	for _, b := range cfgs {
		bands = append(bands, scoring.Band{AtLeast: b.AtLeast, Score: b.Score})
	}
	return bands
}

// Run starts the scheduler and blocks serving the query API until the
// context is cancelled or the listener fails.
func (a *Application) Run(ctx context.Context) error {
	if err := a.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("start scheduler: %w", err)
	}
	defer func() {
		_ = a.scheduler.Stop(context.Background())
	}()

	srv := &http.Server{
		Addr:    a.cfg.Server.Addr,
		Handler: a.server.Router(a.cfg.Server.Mode),
	}

	errc := make(chan error, 1)
	go func() {
		a.logger.Info("query api listening", "addr", a.cfg.Server.Addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		return srv.Shutdown(context.Background())
	case err := <-errc:
		return fmt.Errorf("serve api: %w", err)
	}
}
