package retrieval

import (
	"context"
	"fmt"
	"math"
	"sort"

	"contentpipe/internal/domain"
	"contentpipe/internal/ports"
)

// sumTolerance absorbs float noise when validating distributions.
const sumTolerance = 1e-6

// Retriever serves blended result sets: the composition across source
// types is fixed by the requested distribution, the final ordering is
// score-ranked.
type Retriever struct {
	store ports.ContentStore
}

// New wires the retriever over a content store.
func New(store ports.ContentStore) *Retriever {
	return &Retriever{store: store}
}

// GetWeighted returns at most limit items. Each source type in the
// distribution contributes floor(limit*proportion) items, taken from its
// own score-ranked pool; the concatenated set is then re-sorted globally
// by final score. A type with too few items under-fills its quota — the
// shortfall is not redistributed to other types.
//
// The proportions must sum to 1.0; anything else is a caller error.
func (r *Retriever) GetWeighted(ctx context.Context, limit int, distribution map[domain.SourceType]float64) ([]domain.ContentItem, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("limit must be positive, got %d", limit)
	}
	if err := validateDistribution(distribution); err != nil {
		return nil, err
	}

	var blended []domain.ContentItem
	for _, t := range sortedTypes(distribution) {
		// The epsilon keeps quotas like 50*0.7 from truncating to 34
		// when the product lands a hair under the integer.
		quota := int(math.Floor(float64(limit)*distribution[t] + 1e-9))
		if quota == 0 {
			continue
		}

		items, err := r.store.TopByType(ctx, t, quota)
		if err != nil {
			return nil, fmt.Errorf("query %s items: %w", t, err)
		}
		blended = append(blended, items...)
	}

	sort.SliceStable(blended, func(i, j int) bool {
		return blended[i].FinalScore > blended[j].FinalScore
	})

	return blended, nil
}

func validateDistribution(distribution map[domain.SourceType]float64) error {
	if len(distribution) == 0 {
		return fmt.Errorf("empty distribution")
	}

	sum := 0.0
	for t, proportion := range distribution {
		if proportion < 0 {
			return fmt.Errorf("distribution: negative proportion %.3f for %s", proportion, t)
		}
		sum += proportion
	}
	if math.Abs(sum-1.0) > sumTolerance {
		return fmt.Errorf("distribution proportions sum to %.4f, want 1.0", sum)
	}
	return nil
}

// sortedTypes fixes the iteration order so repeated calls against an
// unchanged store return identical results.
func sortedTypes(distribution map[domain.SourceType]float64) []domain.SourceType {
	types := make([]domain.SourceType, 0, len(distribution))
	for t := range distribution {
		types = append(types, t)
	}
	sort.Slice(types, func(i, j int) bool { return types[i] < types[j] })
	return types
}
