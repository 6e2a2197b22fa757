package domain

import "time"

// SourceType tags the origin category of a source; each type carries a
// reference base weight used when a source does not override it.
type SourceType string

const (
	TypePrimary  SourceType = "primary"
	TypeAPI      SourceType = "api"
	TypeRSSFeed  SourceType = "rss_feed"
	TypeScraping SourceType = "scraping"
)

// Priority ranks how aggressively a source should be collected.
type Priority string

const (
	PriorityCritical Priority = "critical"
	PriorityHigh     Priority = "high"
	PriorityMedium   Priority = "medium"
	PriorityLow      Priority = "low"
)

// ReferenceWeight returns the policy base weight for a source type.
func ReferenceWeight(t SourceType) float64 {
	switch t {
	case TypePrimary:
		return 1.0
	case TypeAPI:
		return 0.7
	case TypeRSSFeed:
		return 0.5
	case TypeScraping:
		return 0.3
	default:
		return 0.5
	}
}

// OverrideBand is how far a source's base_weight may deviate from its
// type's reference weight.
const OverrideBand = 0.2

// Source describes one content origin. Read-only to the pipeline at
// runtime except for the fetch counters maintained by the registry.
type Source struct {
	ID              string
	Name            string
	Type            SourceType
	Priority        Priority
	BaseWeight      float64
	RateLimitPerDay int // 0 = unlimited
	MinWordCount    int
	MaxAgeDays      int // 0 = use the pipeline default
	Active          bool

	// Producer hints, consumed by the collection adapters.
	FeedURL  string
	Selector string

	LastFetchedAt     time.Time
	TotalItemsFetched int
}
