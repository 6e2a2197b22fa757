package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/lib/pq"

	"contentpipe/internal/domain"
	"contentpipe/internal/ports"
)

const schema = `
CREATE TABLE IF NOT EXISTS content_items (
    content_id       TEXT PRIMARY KEY,
    source_id        TEXT NOT NULL,
    source_type      TEXT NOT NULL,
    url              TEXT NOT NULL UNIQUE,
    title            TEXT NOT NULL,
    author           TEXT NOT NULL DEFAULT '',
    body             TEXT NOT NULL DEFAULT '',
    word_count       INTEGER NOT NULL DEFAULT 0,
    published_at     TIMESTAMPTZ,
    fetched_at       TIMESTAMPTZ NOT NULL,
    engagement       JSONB,
    flags            JSONB NOT NULL DEFAULT '{}',
    quality_score    DOUBLE PRECISION NOT NULL,
    freshness_score  DOUBLE PRECISION NOT NULL,
    engagement_score DOUBLE PRECISION NOT NULL,
    final_score      DOUBLE PRECISION NOT NULL
);
CREATE INDEX IF NOT EXISTS content_items_type_rank
    ON content_items (source_type, final_score DESC, published_at DESC);
CREATE INDEX IF NOT EXISTS content_items_source_fetched
    ON content_items (source_id, fetched_at DESC);
`

// PostgresStore is the durable ContentStore.
type PostgresStore struct {
	db      *sql.DB
	builder sq.StatementBuilderType
}

var _ ports.ContentStore = (*PostgresStore)(nil)

// NewPostgresStore opens the DSN and ensures the schema exists.
func NewPostgresStore(ctx context.Context, dsn string) (*PostgresStore, error) {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}

	return &PostgresStore{
		db:      db,
		builder: sq.StatementBuilder.PlaceholderFormat(sq.Dollar),
	}, nil
}

// Close releases the connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

// Persist upserts by content id. The conflict branch updates score
// columns only, so text, url and published_at stay immutable.
func (s *PostgresStore) Persist(ctx context.Context, item domain.ContentItem) error {
	engagement, err := marshalNullable(item.Engagement)
	if err != nil {
		return fmt.Errorf("marshal engagement: %w", err)
	}
	flags, err := json.Marshal(item.Flags)
	if err != nil {
		return fmt.Errorf("marshal flags: %w", err)
	}

	query, args, err := s.builder.
		Insert("content_items").
		Columns("content_id", "source_id", "source_type", "url", "title", "author", "body",
			"word_count", "published_at", "fetched_at", "engagement", "flags",
			"quality_score", "freshness_score", "engagement_score", "final_score").
		Values(item.ContentID, item.SourceID, string(item.SourceType), item.URL, item.Title,
			item.Author, item.Text, item.WordCount, nullableTime(item.PublishedAt),
			item.FetchedAt, engagement, flags,
			item.QualityScore, item.FreshnessScore, item.EngagementScore, item.FinalScore).
		Suffix(`ON CONFLICT (content_id) DO UPDATE
            SET quality_score = EXCLUDED.quality_score,
                freshness_score = EXCLUDED.freshness_score,
                engagement_score = EXCLUDED.engagement_score,
                final_score = EXCLUDED.final_score`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build upsert: %w", err)
	}

	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert content: %w", err)
	}
	return nil
}

// ExistsURL reports whether the canonical URL is already stored.
func (s *PostgresStore) ExistsURL(ctx context.Context, url string) (bool, error) {
	query, args, err := s.builder.
		Select("1").
		From("content_items").
		Where(sq.Eq{"url": url}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build exists: %w", err)
	}

	var one int
	err = s.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query exists: %w", err)
	}
	return true, nil
}

// Get returns the item by content id.
func (s *PostgresStore) Get(ctx context.Context, contentID string) (domain.ContentItem, error) {
	query, args, err := s.selectItems().
		Where(sq.Eq{"content_id": contentID}).
		ToSql()
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("build get: %w", err)
	}

	items, err := s.queryItems(ctx, query, args)
	if err != nil {
		return domain.ContentItem{}, err
	}
	if len(items) == 0 {
		return domain.ContentItem{}, ErrNotFound
	}
	return items[0], nil
}

// TopByType returns up to n items of the type ordered by
// (final_score DESC, published_at DESC).
func (s *PostgresStore) TopByType(ctx context.Context, t domain.SourceType, n int) ([]domain.ContentItem, error) {
	query, args, err := s.selectItems().
		Where(sq.Eq{"source_type": string(t)}).
		OrderBy("final_score DESC", "published_at DESC NULLS LAST").
		Limit(uint64(n)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build top query: %w", err)
	}

	return s.queryItems(ctx, query, args)
}

// RecentTitles returns the newest n titles for a source.
func (s *PostgresStore) RecentTitles(ctx context.Context, sourceID string, n int) ([]string, error) {
	query, args, err := s.builder.
		Select("title").
		From("content_items").
		Where(sq.Eq{"source_id": sourceID}).
		OrderBy("fetched_at DESC").
		Limit(uint64(n)).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build titles query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title string
		if err := rows.Scan(&title); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return titles, nil
}

// CountByType tallies stored items per source type.
func (s *PostgresStore) CountByType(ctx context.Context) (map[domain.SourceType]int64, error) {
	query, args, err := s.builder.
		Select("source_type", "COUNT(*)").
		From("content_items").
		GroupBy("source_type").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build count query: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query counts: %w", err)
	}
	defer rows.Close()

	counts := map[domain.SourceType]int64{}
	for rows.Next() {
		var t string
		var count int64
		if err := rows.Scan(&t, &count); err != nil {
			return nil, fmt.Errorf("scan count: %w", err)
		}
		counts[domain.SourceType(t)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return counts, nil
}

// All returns every stored item.
func (s *PostgresStore) All(ctx context.Context) ([]domain.ContentItem, error) {
	query, args, err := s.selectItems().ToSql()
	if err != nil {
		return nil, fmt.Errorf("build all query: %w", err)
	}
	return s.queryItems(ctx, query, args)
}

func (s *PostgresStore) selectItems() sq.SelectBuilder {
	return s.builder.
		Select("content_id", "source_id", "source_type", "url", "title", "author", "body",
			"word_count", "published_at", "fetched_at", "engagement", "flags",
			"quality_score", "freshness_score", "engagement_score", "final_score").
		From("content_items")
}

func (s *PostgresStore) queryItems(ctx context.Context, query string, args []interface{}) ([]domain.ContentItem, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []domain.ContentItem
	for rows.Next() {
		var (
			item        domain.ContentItem
			sourceType  string
			publishedAt sql.NullTime
			engagement  []byte
			flags       []byte
		)
		if err := rows.Scan(&item.ContentID, &item.SourceID, &sourceType, &item.URL,
			&item.Title, &item.Author, &item.Text, &item.WordCount, &publishedAt,
			&item.FetchedAt, &engagement, &flags,
			&item.QualityScore, &item.FreshnessScore, &item.EngagementScore, &item.FinalScore); err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}

		item.SourceType = domain.SourceType(sourceType)
		if publishedAt.Valid {
			item.PublishedAt = publishedAt.Time
		}
		if len(engagement) > 0 {
			var e domain.Engagement
			if err := json.Unmarshal(engagement, &e); err != nil {
				return nil, fmt.Errorf("unmarshal engagement: %w", err)
			}
			item.Engagement = &e
		}
		if len(flags) > 0 {
			if err := json.Unmarshal(flags, &item.Flags); err != nil {
				return nil, fmt.Errorf("unmarshal flags: %w", err)
			}
		}

		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}
	return items, nil
}

func marshalNullable(e *domain.Engagement) ([]byte, error) {
	if e == nil {
		return nil, nil
	}
	return json.Marshal(e)
}

func nullableTime(t time.Time) interface{} {
	if t.IsZero() {
		return nil
	}
	return t
}
