package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"contentpipe/internal/domain"
	"contentpipe/internal/ingest"
	"contentpipe/internal/ports"
	"contentpipe/internal/registry"
	"contentpipe/internal/scoring"
)

// Pipeline runs the periodic collection pass: every active source is
// fetched through the producer registered for its type, and every raw
// item goes through the ingestion gate. Rejections are tallied, not
// propagated; a failing source does not abort the run.
type Pipeline struct {
	registry  *registry.Registry
	gate      *ingest.Gate
	producers map[domain.SourceType]ports.Producer
	logger    *slog.Logger
}

// RunStats summarizes one collection pass.
type RunStats struct {
	Sources   int
	Accepted  int
	Rejected  map[domain.RejectReason]int
	Failed    int
	StartedAt time.Time
}

// NewPipeline constructs the orchestration component.
func NewPipeline(reg *registry.Registry, gate *ingest.Gate, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		registry:  reg,
		gate:      gate,
		producers: map[domain.SourceType]ports.Producer{},
		logger:    logger,
	}
}

// RegisterProducer installs the producer serving one source type.
func (p *Pipeline) RegisterProducer(producer ports.Producer) {
	p.producers[producer.Kind()] = producer
}

// Collect fetches and ingests every active source that has a producer.
func (p *Pipeline) Collect(ctx context.Context) RunStats {
	stats := RunStats{
		Rejected:  map[domain.RejectReason]int{},
		StartedAt: time.Now().UTC(),
	}

	for _, source := range p.registry.ListActive("") {
		producer, ok := p.producers[source.Type]
		if !ok {
			continue
		}
		stats.Sources++

		raws, err := producer.Fetch(ctx, source)
		if err != nil {
			stats.Failed++
			p.log(slog.LevelWarn, "source fetch failed", "source", source.ID, "error", err)
			continue
		}

		for _, raw := range raws {
			_, err := p.gate.Ingest(ctx, raw)
			if err == nil {
				stats.Accepted++
				continue
			}
			if reason, ok := domain.Rejected(err); ok {
				stats.Rejected[reason]++
				continue
			}
			stats.Failed++
			p.log(slog.LevelError, "ingest failed", "source", source.ID, "url", raw.URL, "error", err)
		}
	}

	p.log(slog.LevelInfo, "collection pass done",
		"sources", stats.Sources, "accepted", stats.Accepted,
		"rejected", rejectedTotal(stats.Rejected), "failed", stats.Failed)
	return stats
}

func rejectedTotal(rejected map[domain.RejectReason]int) int {
	total := 0
	for _, n := range rejected {
		total += n
	}
	return total
}

func (p *Pipeline) log(level slog.Level, msg string, args ...any) {
	if p.logger != nil {
		p.logger.Log(context.Background(), level, msg, args...)
	}
}

// Rescorer refreshes stored scores so freshness decay shows up without
// re-ingesting anything. Immutable fields are untouched; the store's
// upsert only rewrites score columns.
type Rescorer struct {
	registry *registry.Registry
	store    ports.ContentStore
	scorer   *scoring.Scorer
	authors  ports.AuthorDirectory
	logger   *slog.Logger
}

// NewRescorer wires the re-score pass.
func NewRescorer(reg *registry.Registry, store ports.ContentStore, scorer *scoring.Scorer, authors ports.AuthorDirectory, logger *slog.Logger) *Rescorer {
	return &Rescorer{registry: reg, store: store, scorer: scorer, authors: authors, logger: logger}
}

// Run re-scores every stored item against the current wall clock.
func (r *Rescorer) Run(ctx context.Context) error {
	items, err := r.store.All(ctx)
	if err != nil {
		return fmt.Errorf("load items: %w", err)
	}

	now := time.Now()
	updated := 0
	for _, item := range items {
		source, err := r.registry.Get(item.SourceID)
		if err != nil {
			// Source removed from config since ingestion; keep the
			// stored score rather than guessing a weight.
			if errors.Is(err, registry.ErrSourceNotFound) {
				continue
			}
			return err
		}

		rescored := r.scorer.Rescore(item, source, r.authority(ctx, item.Author), now)
		if rescored.FinalScore == item.FinalScore {
			continue
		}
		if err := r.store.Persist(ctx, rescored); err != nil {
			return fmt.Errorf("persist rescored %s: %w", item.ContentID, err)
		}
		updated++
	}

	if r.logger != nil {
		r.logger.Info("rescore pass done", "items", len(items), "updated", updated)
	}
	return nil
}

func (r *Rescorer) authority(ctx context.Context, author string) float64 {
	if author == "" || r.authors == nil {
		return domain.DefaultAuthority
	}
	score, err := r.authors.Authority(ctx, author)
	if err != nil {
		return domain.DefaultAuthority
	}
	return score
}
