package ingest

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"contentpipe/internal/domain"
	"contentpipe/internal/ports"
	"contentpipe/internal/registry"
	"contentpipe/internal/scoring"
)

const defaultMaxAgeDays = 180

// titleOverlap is the Jaccard threshold above which two titles from the
// same source count as near-duplicates.
const titleOverlap = 0.9

// Options tune gate-wide policy.
type Options struct {
	MaxAgeDays  int // fallback when the source does not set one
	TitleWindow int // how many recent titles to check for near-duplicates; 0 disables
}

// Gate decides accept/reject for raw items before they are scored and
// stored. All rejections are typed results; only unknown sources and
// storage failures propagate as plain errors.
type Gate struct {
	registry  *registry.Registry
	store     ports.ContentStore
	scorer    *scoring.Scorer
	authors   ports.AuthorDirectory
	extractor ports.FlagExtractor
	opts      Options
	logger    *slog.Logger
	now       func() time.Time

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewGate wires the gate. authors and extractor may be nil; missing
// enrichment falls back to neutral defaults.
func NewGate(reg *registry.Registry, store ports.ContentStore, scorer *scoring.Scorer, authors ports.AuthorDirectory, extractor ports.FlagExtractor, opts Options, logger *slog.Logger) *Gate {
	if opts.MaxAgeDays <= 0 {
		opts.MaxAgeDays = defaultMaxAgeDays
	}
	return &Gate{
		registry:  reg,
		store:     store,
		scorer:    scorer,
		authors:   authors,
		extractor: extractor,
		opts:      opts,
		logger:    logger,
		now:       time.Now,
		locks:     map[string]*sync.Mutex{},
	}
}

// Ingest runs the acceptance checks in order, short-circuiting on the
// first failure, then scores and persists the item. The rate-limit and
// dedup window is serialized per source id; different sources proceed in
// parallel.
func (g *Gate) Ingest(ctx context.Context, raw domain.RawItem) (domain.ContentItem, error) {
	source, err := g.registry.Get(raw.SourceID)
	if err != nil {
		return domain.ContentItem{}, err
	}

	if !source.Active {
		return domain.ContentItem{}, g.reject(raw, domain.RejectSourceInactive)
	}

	lock := g.sourceLock(source.ID)
	lock.Lock()
	defer lock.Unlock()

	now := g.now()

	if source.RateLimitPerDay > 0 && g.registry.FetchedToday(source.ID, now) >= source.RateLimitPerDay {
		return domain.ContentItem{}, g.reject(raw, domain.RejectRateLimited)
	}

	canonical, err := CanonicalURL(raw.URL)
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("canonicalize %s: %w", raw.URL, err)
	}

	exists, err := g.store.ExistsURL(ctx, canonical)
	if err != nil {
		return domain.ContentItem{}, fmt.Errorf("dedup lookup: %w", err)
	}
	if exists {
		return domain.ContentItem{}, g.reject(raw, domain.RejectDuplicate)
	}

	if g.opts.TitleWindow > 0 {
		near, err := g.nearDuplicate(ctx, source.ID, raw.Title)
		if err != nil {
			return domain.ContentItem{}, fmt.Errorf("title dedup lookup: %w", err)
		}
		if near {
			return domain.ContentItem{}, g.reject(raw, domain.RejectNearDuplicate)
		}
	}

	wordCount := countWords(raw.Text)
	if wordCount < source.MinWordCount {
		return domain.ContentItem{}, g.reject(raw, domain.RejectTooShort)
	}

	maxAge := g.opts.MaxAgeDays
	if source.MaxAgeDays > 0 {
		maxAge = source.MaxAgeDays
	}
	if !raw.PublishedAt.IsZero() && now.Sub(raw.PublishedAt) > time.Duration(maxAge)*24*time.Hour {
		return domain.ContentItem{}, g.reject(raw, domain.RejectStale)
	}

	flags := raw.Flags
	if flags == (domain.QualityFlags{}) && g.extractor != nil {
		flags = g.extractor.Extract(raw.Text)
	}

	item := domain.ContentItem{
		ContentID:   ContentID(canonical),
		SourceID:    source.ID,
		SourceType:  source.Type,
		URL:         canonical,
		Title:       raw.Title,
		Author:      raw.Author,
		Text:        raw.Text,
		WordCount:   wordCount,
		PublishedAt: raw.PublishedAt,
		FetchedAt:   now.UTC(),
		Engagement:  raw.Engagement,
		Flags:       flags,
	}

	item = g.scorer.Score(item, source, g.authority(ctx, raw.Author), now)

	if err := g.store.Persist(ctx, item); err != nil {
		return domain.ContentItem{}, fmt.Errorf("persist %s: %w", item.ContentID, err)
	}
	if err := g.registry.RecordFetch(source.ID, 1, now); err != nil {
		return domain.ContentItem{}, fmt.Errorf("record fetch: %w", err)
	}

	return item, nil
}

func (g *Gate) reject(raw domain.RawItem, reason domain.RejectReason) error {
	if g.logger != nil {
		g.logger.Debug("item rejected", "source", raw.SourceID, "url", raw.URL, "reason", string(reason))
	}
	return &domain.RejectionError{Reason: reason, URL: raw.URL}
}

func (g *Gate) authority(ctx context.Context, author string) float64 {
	if author == "" || g.authors == nil {
		return domain.DefaultAuthority
	}
	score, err := g.authors.Authority(ctx, author)
	if err != nil {
		return domain.DefaultAuthority
	}
	return score
}

func (g *Gate) nearDuplicate(ctx context.Context, sourceID, title string) (bool, error) {
	tokens := titleTokens(title)
	if len(tokens) == 0 {
		return false, nil
	}

	titles, err := g.store.RecentTitles(ctx, sourceID, g.opts.TitleWindow)
	if err != nil {
		return false, err
	}

	for _, existing := range titles {
		if jaccard(tokens, titleTokens(existing)) > titleOverlap {
			return true, nil
		}
	}
	return false, nil
}

func (g *Gate) sourceLock(sourceID string) *sync.Mutex {
	g.mu.Lock()
	defer g.mu.Unlock()

	lock, ok := g.locks[sourceID]
	if !ok {
		lock = &sync.Mutex{}
		g.locks[sourceID] = lock
	}
	return lock
}

func countWords(text string) int {
	return len(strings.Fields(text))
}

func titleTokens(title string) map[string]bool {
	tokens := map[string]bool{}
	for _, field := range strings.Fields(strings.ToLower(title)) {
		tokens[strings.Trim(field, ".,:;!?\"'()[]")] = true
	}
	delete(tokens, "")
	return tokens
}

func jaccard(a, b map[string]bool) float64 {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	intersection := 0
	for token := range a {
		if b[token] {
			intersection++
		}
	}
	union := len(a) + len(b) - intersection
	return float64(intersection) / float64(union)
}
