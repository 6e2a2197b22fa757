package registry

import (
	"errors"
	"testing"
	"time"

	"contentpipe/internal/config"
	"contentpipe/internal/domain"
)

var regNow = time.Date(2026, time.March, 10, 23, 30, 0, 0, time.UTC)

func TestGetUnknownSource(t *testing.T) {
	t.Parallel()

	r := New()
	_, err := r.Get("missing")
	if !errors.Is(err, ErrSourceNotFound) {
		t.Fatalf("expected ErrSourceNotFound, got %v", err)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	t.Parallel()

	r := New()
	src := domain.Source{ID: "a", Type: domain.TypeRSSFeed, Active: true}
	if err := r.Register(src); err != nil {
		t.Fatalf("first register: %v", err)
	}
	if err := r.Register(src); err == nil {
		t.Fatal("duplicate id must fail")
	}
}

func TestListActiveFilters(t *testing.T) {
	t.Parallel()

	r := New()
	sources := []domain.Source{
		{ID: "yt", Type: domain.TypePrimary, Active: true},
		{ID: "hn", Type: domain.TypeAPI, Active: true},
		{ID: "rss", Type: domain.TypeRSSFeed, Active: true},
		{ID: "dead", Type: domain.TypeRSSFeed, Active: false},
	}
	for _, src := range sources {
		if err := r.Register(src); err != nil {
			t.Fatalf("register %s: %v", src.ID, err)
		}
	}

	if got := len(r.ListActive("")); got != 3 {
		t.Fatalf("all active = %d, want 3", got)
	}
	feeds := r.ListActive(domain.TypeRSSFeed)
	if len(feeds) != 1 || feeds[0].ID != "rss" {
		t.Fatalf("rss_feed filter returned %+v", feeds)
	}
}

func TestDailyCounterBuckets(t *testing.T) {
	t.Parallel()

	r := New()
	if err := r.Register(domain.Source{ID: "hn", Type: domain.TypeAPI, Active: true}); err != nil {
		t.Fatalf("register: %v", err)
	}

	for i := 0; i < 3; i++ {
		if err := r.RecordFetch("hn", 1, regNow); err != nil {
			t.Fatalf("record fetch: %v", err)
		}
	}

	if got := r.FetchedToday("hn", regNow); got != 3 {
		t.Fatalf("today = %d, want 3", got)
	}

	// 23:30 UTC + 1h crosses UTC midnight; the counter starts over.
	nextDay := regNow.Add(time.Hour)
	if got := r.FetchedToday("hn", nextDay); got != 0 {
		t.Fatalf("after rollover = %d, want 0", got)
	}

	src, err := r.Get("hn")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if src.TotalItemsFetched != 3 {
		t.Fatalf("total fetched = %d, want 3", src.TotalItemsFetched)
	}
	if !src.LastFetchedAt.Equal(regNow) {
		t.Fatalf("last fetched = %v, want %v", src.LastFetchedAt, regNow)
	}
}

func TestFromConfigDefaultsAndValidation(t *testing.T) {
	t.Parallel()

	r, err := FromConfig([]config.SourceConfig{
		{ID: "yt", Name: "Transcripts", Type: "primary"},
		{ID: "blog", Name: "Blog", Type: "rss_feed", BaseWeight: 0.65},
	})
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}

	yt, err := r.Get("yt")
	if err != nil {
		t.Fatalf("get yt: %v", err)
	}
	if yt.BaseWeight != 1.0 {
		t.Fatalf("primary default weight = %v, want 1.0", yt.BaseWeight)
	}
	if !yt.Active {
		t.Fatal("sources default to active")
	}
	if yt.Priority != domain.PriorityMedium {
		t.Fatalf("default priority = %s, want medium", yt.Priority)
	}

	blog, err := r.Get("blog")
	if err != nil {
		t.Fatalf("get blog: %v", err)
	}
	if blog.BaseWeight != 0.65 {
		t.Fatalf("override weight = %v, want 0.65", blog.BaseWeight)
	}
}

func TestFromConfigRejectsOutOfBandWeight(t *testing.T) {
	t.Parallel()

	_, err := FromConfig([]config.SourceConfig{
		{ID: "bad", Type: "rss_feed", BaseWeight: 0.9},
	})
	if err == nil {
		t.Fatal("rss_feed weight 0.9 is outside the ±0.2 band, want error")
	}
}

func TestFromConfigRejectsUnknownType(t *testing.T) {
	t.Parallel()

	_, err := FromConfig([]config.SourceConfig{{ID: "x", Type: "telepathy"}})
	if err == nil {
		t.Fatal("unknown source type must fail")
	}
}
