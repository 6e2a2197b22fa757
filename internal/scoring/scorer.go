package scoring

import (
	"time"

	"contentpipe/internal/domain"
)

// Score weights. Author authority is the reserved fifth component, so
// the sum stays at 1.0 only when authority data exists; with the neutral
// default the effective ceiling is intentionally below 1.0.
const (
	weightBase       = 0.40
	weightQuality    = 0.25
	weightFreshness  = 0.15
	weightEngagement = 0.10
	weightAuthority  = 0.10
)

// Normalizer maps raw, source-specific engagement counters into [0,1].
type Normalizer func(e domain.Engagement) float64

// Scorer computes content scores. It is a pure function of
// (item, source, now); nothing here touches storage.
type Scorer struct {
	normalizers map[domain.SourceType]Normalizer
}

// New builds a scorer with no engagement normalizers registered; every
// source type then falls back to the neutral 0.5.
func New() *Scorer {
	return &Scorer{normalizers: map[domain.SourceType]Normalizer{}}
}

// RegisterNormalizer installs the engagement policy for one source type.
func (s *Scorer) RegisterNormalizer(t domain.SourceType, n Normalizer) {
	s.normalizers[t] = n
}

// Score fills the four score fields on item. The authority argument is
// the author's authority in [0,1]; pass domain.DefaultAuthority when the
// author is unknown.
func (s *Scorer) Score(item domain.ContentItem, source domain.Source, authority float64, now time.Time) domain.ContentItem {
	item.QualityScore = qualityScore(item.Flags, item.WordCount)
	item.FreshnessScore = freshnessScore(item.PublishedAt, now)
	item.EngagementScore = s.engagementScore(source.Type, item.Engagement)

	final := source.BaseWeight*weightBase +
		item.QualityScore*weightQuality +
		item.FreshnessScore*weightFreshness +
		item.EngagementScore*weightEngagement +
		clamp01(authority)*weightAuthority

	item.FinalScore = clamp01(final)
	return item
}

// Rescore refreshes the score fields on an already-stored item; only
// freshness (and therefore the final score) can move between passes.
func (s *Scorer) Rescore(item domain.ContentItem, source domain.Source, authority float64, now time.Time) domain.ContentItem {
	return s.Score(item, source, authority, now)
}

func qualityScore(flags domain.QualityFlags, wordCount int) float64 {
	score := 0.5
	if flags.HasCodeExamples {
		score += 0.15
	}
	if flags.HasActionableAdvice {
		score += 0.15
	}
	if flags.IsTutorial {
		score += 0.10
	}
	if wordCount > 1000 {
		score += 0.05
	}
	if flags.IsOpinion {
		score -= 0.10
	}
	if wordCount < 200 {
		score -= 0.15
	}
	return clamp01(score)
}

func freshnessScore(publishedAt, now time.Time) float64 {
	ageDays := 0
	if !publishedAt.IsZero() {
		ageDays = int(now.Sub(publishedAt).Hours() / 24)
	}

	switch {
	case ageDays <= 1:
		return 1.0
	case ageDays <= 7:
		return 0.9
	case ageDays <= 30:
		return 0.7
	case ageDays <= 90:
		return 0.5
	case ageDays <= 180:
		return 0.3
	default:
		return 0.2
	}
}

func (s *Scorer) engagementScore(t domain.SourceType, e *domain.Engagement) float64 {
	if e == nil {
		return 0.5
	}
	normalize, ok := s.normalizers[t]
	if !ok {
		return 0.5
	}
	return clamp01(normalize(*e))
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
