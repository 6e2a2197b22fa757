package domain

import "time"

// RawItem is the shape upstream producers hand to the ingestion gate.
// Optional fields are zero-valued when the producer has nothing for them.
type RawItem struct {
	SourceID    string
	URL         string
	Title       string
	Text        string
	Author      string
	PublishedAt time.Time // zero = unknown, treated as "now" with no penalty
	Engagement  *Engagement
	Flags       QualityFlags
}

// Engagement carries the raw, source-specific interaction counters.
type Engagement struct {
	Upvotes  int `json:"upvotes"`
	Views    int `json:"views"`
	Comments int `json:"comments"`
}

// QualityFlags are optional booleans supplied by the upstream extractor.
// Absent flags stay false and are never penalized beyond word count.
type QualityFlags struct {
	HasCodeExamples     bool `json:"has_code_examples"`
	HasActionableAdvice bool `json:"has_actionable_advice"`
	IsTutorial          bool `json:"is_tutorial"`
	IsOpinion           bool `json:"is_opinion"`
}

// ContentItem is one accepted piece of content with its computed scores.
// Immutable once stored except for the score fields, which a re-score
// pass may refresh as freshness decays.
type ContentItem struct {
	ContentID   string       `json:"content_id"`
	SourceID    string       `json:"source_id"`
	SourceType  SourceType   `json:"source_type"`
	URL         string       `json:"url"`
	Title       string       `json:"title"`
	Author      string       `json:"author,omitempty"`
	Text        string       `json:"text,omitempty"`
	WordCount   int          `json:"word_count"`
	PublishedAt time.Time    `json:"published_at"`
	FetchedAt   time.Time    `json:"fetched_at"`
	Engagement  *Engagement  `json:"engagement,omitempty"`
	Flags       QualityFlags `json:"flags"`

	QualityScore    float64 `json:"quality_score"`
	FreshnessScore  float64 `json:"freshness_score"`
	EngagementScore float64 `json:"engagement_score"`
	FinalScore      float64 `json:"final_score"`
}

// Author is an optional enrichment record, looked up (never owned) by
// content items through the author name.
type Author struct {
	ID             string
	Name           string
	AuthorityScore float64
}

// DefaultAuthority is the neutral authority used when the author is unknown.
const DefaultAuthority = 0.5
