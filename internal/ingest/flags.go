package ingest

import (
	"strings"

	"contentpipe/internal/domain"
	"contentpipe/internal/ports"
)

// HeuristicExtractor is the in-process fallback for quality flags when
// no hosted extractor is wired. It only looks for cheap lexical cues, so
// flags it cannot justify stay false.
type HeuristicExtractor struct{}

var _ ports.FlagExtractor = HeuristicExtractor{}

var tutorialCues = []string{"step 1", "step-by-step", "how to", "walkthrough", "getting started"}

var opinionCues = []string{"i think", "in my opinion", "hot take", "unpopular opinion"}

var adviceCues = []string{"you should", "best practice", "avoid ", "make sure to", "recommended"}

// Extract derives quality flags from lexical cues in the text.
func (HeuristicExtractor) Extract(text string) domain.QualityFlags {
	lower := strings.ToLower(text)

	return domain.QualityFlags{
		HasCodeExamples:     strings.Contains(text, "```") || strings.Contains(lower, "func ") || strings.Contains(lower, "def "),
		HasActionableAdvice: containsAny(lower, adviceCues),
		IsTutorial:          containsAny(lower, tutorialCues),
		IsOpinion:           containsAny(lower, opinionCues),
	}
}

func containsAny(text string, cues []string) bool {
	for _, cue := range cues {
		if strings.Contains(text, cue) {
			return true
		}
	}
	return false
}
