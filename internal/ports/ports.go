package ports

import (
	"context"
	"time"

	"contentpipe/internal/domain"
)

// Producer pulls raw items from one upstream origin (RSS feed, API,
// scraped page). Producers fetch; the gate decides.
type Producer interface {
	Kind() domain.SourceType
	Fetch(ctx context.Context, source domain.Source) ([]domain.RawItem, error)
}

// ContentStore persists accepted items and serves the ranked per-type
// queries the weighted retriever is built on.
type ContentStore interface {
	// Persist upserts by content_id. Re-persisting an existing item
	// refreshes score fields only; text, url and published_at never change.
	Persist(ctx context.Context, item domain.ContentItem) error
	ExistsURL(ctx context.Context, url string) (bool, error)
	Get(ctx context.Context, contentID string) (domain.ContentItem, error)
	// TopByType returns up to n items of the given source type ordered by
	// (final_score DESC, published_at DESC).
	TopByType(ctx context.Context, t domain.SourceType, n int) ([]domain.ContentItem, error)
	// RecentTitles returns the newest n titles for a source, used by the
	// soft near-duplicate check.
	RecentTitles(ctx context.Context, sourceID string, n int) ([]string, error)
	CountByType(ctx context.Context) (map[domain.SourceType]int64, error)
	// All returns every stored item; used by the re-score pass.
	All(ctx context.Context) ([]domain.ContentItem, error)
}

// AuthorDirectory resolves author authority; unknown authors resolve to
// the neutral default.
type AuthorDirectory interface {
	Authority(ctx context.Context, name string) (float64, error)
}

// FlagExtractor derives quality flags from raw text. The hosted-model
// extractor plugs in here; a heuristic default ships in-process.
type FlagExtractor interface {
	Extract(text string) domain.QualityFlags
}

// Scheduler controls when collection and re-score runs execute.
type Scheduler interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	NextCollectAt() time.Time
}
