package storage

import (
	"context"
	"errors"
	"sort"
	"sync"

	"contentpipe/internal/domain"
	"contentpipe/internal/ports"
)

// ErrNotFound reports a miss on a content id lookup.
var ErrNotFound = errors.New("content not found")

// MemoryStore is the in-process ContentStore used for local runs and
// tests. The Postgres store is the durable counterpart.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]domain.ContentItem // by content_id
	byURL map[string]string             // canonical url -> content_id
}

var _ ports.ContentStore = (*MemoryStore)(nil)

// NewMemoryStore builds an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		items: map[string]domain.ContentItem{},
		byURL: map[string]string{},
	}
}

// Persist upserts by content id. An existing item keeps its immutable
// fields; only the score columns are refreshed.
func (s *MemoryStore) Persist(_ context.Context, item domain.ContentItem) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if existing, ok := s.items[item.ContentID]; ok {
		existing.QualityScore = item.QualityScore
		existing.FreshnessScore = item.FreshnessScore
		existing.EngagementScore = item.EngagementScore
		existing.FinalScore = item.FinalScore
		s.items[item.ContentID] = existing
		return nil
	}

	s.items[item.ContentID] = item
	s.byURL[item.URL] = item.ContentID
	return nil
}

// ExistsURL reports whether the canonical URL is already stored.
func (s *MemoryStore) ExistsURL(_ context.Context, url string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.byURL[url]
	return ok, nil
}

// Get returns the item by content id.
func (s *MemoryStore) Get(_ context.Context, contentID string) (domain.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.items[contentID]
	if !ok {
		return domain.ContentItem{}, ErrNotFound
	}
	return item, nil
}

// TopByType returns up to n items of the type ordered by
// (final_score DESC, published_at DESC).
func (s *MemoryStore) TopByType(_ context.Context, t domain.SourceType, n int) ([]domain.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.ContentItem
	for _, item := range s.items {
		if item.SourceType == t {
			matched = append(matched, item)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].FinalScore != matched[j].FinalScore {
			return matched[i].FinalScore > matched[j].FinalScore
		}
		return matched[i].PublishedAt.After(matched[j].PublishedAt)
	})

	if len(matched) > n {
		matched = matched[:n]
	}
	return matched, nil
}

// RecentTitles returns the newest n titles for a source.
func (s *MemoryStore) RecentTitles(_ context.Context, sourceID string, n int) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []domain.ContentItem
	for _, item := range s.items {
		if item.SourceID == sourceID {
			matched = append(matched, item)
		}
	}

	sort.Slice(matched, func(i, j int) bool {
		return matched[i].FetchedAt.After(matched[j].FetchedAt)
	})

	if len(matched) > n {
		matched = matched[:n]
	}

	titles := make([]string, 0, len(matched))
	for _, item := range matched {
		titles = append(titles, item.Title)
	}
	return titles, nil
}

// CountByType tallies stored items per source type.
func (s *MemoryStore) CountByType(_ context.Context) (map[domain.SourceType]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[domain.SourceType]int64{}
	for _, item := range s.items {
		counts[item.SourceType]++
	}
	return counts, nil
}

// All returns every stored item in unspecified order.
func (s *MemoryStore) All(_ context.Context) ([]domain.ContentItem, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.ContentItem, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	return out, nil
}
