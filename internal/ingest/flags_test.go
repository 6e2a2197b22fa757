package ingest

import (
	"testing"

	"contentpipe/internal/domain"
)

func TestHeuristicExtractor(t *testing.T) {
	t.Parallel()

	extract := HeuristicExtractor{}

	flags := extract.Extract("Step 1: install the agent. You should pin the version.\n```\nfunc main() {}\n```")
	if !flags.IsTutorial {
		t.Fatal("step-by-step text should flag tutorial")
	}
	if !flags.HasActionableAdvice {
		t.Fatal("'you should' text should flag actionable advice")
	}
	if !flags.HasCodeExamples {
		t.Fatal("fenced code should flag code examples")
	}
	if flags.IsOpinion {
		t.Fatal("no opinion cues present")
	}

	flags = extract.Extract("In my opinion the whole ecosystem is overrated.")
	if !flags.IsOpinion {
		t.Fatal("opinion cue missed")
	}
	if flags.IsTutorial || flags.HasCodeExamples {
		t.Fatalf("spurious flags: %+v", flags)
	}

	if got := extract.Extract("plain descriptive text"); got != (domain.QualityFlags{}) {
		t.Fatalf("plain text should yield no flags, got %+v", got)
	}
}
