package scoring

import (
	"sort"

	"contentpipe/internal/domain"
)

// Band maps an upvote threshold to the score awarded at or above it.
type Band struct {
	AtLeast int
	Score   float64
}

// TieredUpvotes builds a Normalizer from threshold bands, the shape
// link-aggregator sources use (e.g. 500+ upvotes → 1.0, 100+ → 0.8).
// The highest matching band wins; below every band the score is 0.2.
func TieredUpvotes(bands []Band) Normalizer {
	sorted := make([]Band, len(bands))
	copy(sorted, bands)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].AtLeast > sorted[j].AtLeast })

	return func(e domain.Engagement) float64 {
		for _, b := range sorted {
			if e.Upvotes >= b.AtLeast {
				return b.Score
			}
		}
		return 0.2
	}
}
