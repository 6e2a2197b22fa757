package registry

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"contentpipe/internal/config"
	"contentpipe/internal/domain"
)

// ErrSourceNotFound reports a lookup for an unregistered source id. The
// gate treats it as a caller bug and propagates it as a hard error.
var ErrSourceNotFound = errors.New("source not found")

type dayKey struct {
	sourceID string
	day      string // UTC date, 2006-01-02
}

// Registry is the single source of truth for base weights, rate limits
// and priorities. Sources are read-only at runtime except for the fetch
// counters, which the ingestion gate advances through RecordFetch.
type Registry struct {
	mu      sync.RWMutex
	sources map[string]*domain.Source
	daily   map[dayKey]int
}

// New builds an empty registry.
func New() *Registry {
	return &Registry{
		sources: map[string]*domain.Source{},
		daily:   map[dayKey]int{},
	}
}

// FromConfig validates and registers every configured source.
func FromConfig(cfgs []config.SourceConfig) (*Registry, error) {
	r := New()
	for _, sc := range cfgs {
		src, err := sc.Source()
		if err != nil {
			return nil, fmt.Errorf("load sources: %w", err)
		}
		if err := r.Register(src); err != nil {
			return nil, fmt.Errorf("load sources: %w", err)
		}
	}
	return r, nil
}

// Register adds a source; duplicate ids are a configuration error.
func (r *Registry) Register(src domain.Source) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.sources[src.ID]; ok {
		return fmt.Errorf("source %s registered twice", src.ID)
	}
	copied := src
	r.sources[src.ID] = &copied
	return nil
}

// Get returns the source by id.
func (r *Registry) Get(sourceID string) (domain.Source, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	src, ok := r.sources[sourceID]
	if !ok {
		return domain.Source{}, fmt.Errorf("source %s: %w", sourceID, ErrSourceNotFound)
	}
	return *src, nil
}

// ListActive returns active sources, optionally filtered by type. Pass
// an empty type for all.
func (r *Registry) ListActive(t domain.SourceType) []domain.Source {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.Source
	for _, src := range r.sources {
		if !src.Active {
			continue
		}
		if t != "" && src.Type != t {
			continue
		}
		out = append(out, *src)
	}
	return out
}

// RecordFetch advances the per-day counter and per-source totals for
// count accepted items.
func (r *Registry) RecordFetch(sourceID string, count int, now time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	src, ok := r.sources[sourceID]
	if !ok {
		return fmt.Errorf("source %s: %w", sourceID, ErrSourceNotFound)
	}

	r.daily[keyFor(sourceID, now)] += count
	src.TotalItemsFetched += count
	src.LastFetchedAt = now.UTC()
	return nil
}

// FetchedToday returns the accepted count for the source in the current
// UTC calendar day. The bucket resets at UTC midnight; there is no
// rolling window.
func (r *Registry) FetchedToday(sourceID string, now time.Time) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return r.daily[keyFor(sourceID, now)]
}

func keyFor(sourceID string, now time.Time) dayKey {
	return dayKey{sourceID: sourceID, day: now.UTC().Format("2006-01-02")}
}
