package storage

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"contentpipe/internal/domain"
)

var storeNow = time.Date(2026, time.March, 10, 12, 0, 0, 0, time.UTC)

func item(id string, t domain.SourceType, score float64) domain.ContentItem {
	return domain.ContentItem{
		ContentID:   id,
		SourceID:    "src-" + string(t),
		SourceType:  t,
		URL:         "https://x/" + id,
		Title:       "Title " + id,
		Text:        "body",
		PublishedAt: storeNow,
		FetchedAt:   storeNow,
		FinalScore:  score,
	}
}

func TestPersistAndGet(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	want := item("a", domain.TypePrimary, 0.9)
	if err := store.Persist(ctx, want); err != nil {
		t.Fatalf("persist: %v", err)
	}

	got, err := store.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.URL != want.URL || got.FinalScore != want.FinalScore {
		t.Fatalf("got %+v, want %+v", got, want)
	}

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestPersistUpsertKeepsImmutableFields(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	original := item("a", domain.TypePrimary, 0.9)
	if err := store.Persist(ctx, original); err != nil {
		t.Fatalf("persist: %v", err)
	}

	// A rescore pass hands back the same id with new scores; even a
	// mangled text/url must not replace the stored originals.
	update := original
	update.Text = "tampered"
	update.URL = "https://evil/a"
	update.FinalScore = 0.4
	update.FreshnessScore = 0.3
	if err := store.Persist(ctx, update); err != nil {
		t.Fatalf("second persist: %v", err)
	}

	got, err := store.Get(ctx, "a")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Text != "body" || got.URL != original.URL {
		t.Fatalf("immutable fields changed: %+v", got)
	}
	if got.FinalScore != 0.4 || got.FreshnessScore != 0.3 {
		t.Fatalf("score fields not refreshed: %+v", got)
	}
}

func TestExistsURL(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	if err := store.Persist(ctx, item("a", domain.TypeRSSFeed, 0.5)); err != nil {
		t.Fatalf("persist: %v", err)
	}

	exists, err := store.ExistsURL(ctx, "https://x/a")
	if err != nil || !exists {
		t.Fatalf("ExistsURL known url = (%v, %v), want (true, nil)", exists, err)
	}
	exists, err = store.ExistsURL(ctx, "https://x/unknown")
	if err != nil || exists {
		t.Fatalf("ExistsURL unknown url = (%v, %v), want (false, nil)", exists, err)
	}
}

func TestTopByTypeOrdering(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	older := item("old", domain.TypeRSSFeed, 0.6)
	older.PublishedAt = storeNow.Add(-48 * time.Hour)
	newer := item("new", domain.TypeRSSFeed, 0.6)
	best := item("best", domain.TypeRSSFeed, 0.8)
	other := item("other", domain.TypePrimary, 0.99)

	for _, it := range []domain.ContentItem{older, newer, best, other} {
		if err := store.Persist(ctx, it); err != nil {
			t.Fatalf("persist %s: %v", it.ContentID, err)
		}
	}

	got, err := store.TopByType(ctx, domain.TypeRSSFeed, 10)
	if err != nil {
		t.Fatalf("TopByType: %v", err)
	}

	wantOrder := []string{"best", "new", "old"}
	if len(got) != len(wantOrder) {
		t.Fatalf("returned %d items, want %d", len(got), len(wantOrder))
	}
	for i, id := range wantOrder {
		if got[i].ContentID != id {
			t.Fatalf("position %d = %s, want %s", i, got[i].ContentID, id)
		}
	}

	limited, err := store.TopByType(ctx, domain.TypeRSSFeed, 2)
	if err != nil {
		t.Fatalf("TopByType limited: %v", err)
	}
	if len(limited) != 2 {
		t.Fatalf("limit ignored: got %d items", len(limited))
	}
}

func TestRecentTitles(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		it := item(fmt.Sprintf("i%d", i), domain.TypeAPI, 0.5)
		it.FetchedAt = storeNow.Add(time.Duration(i) * time.Minute)
		if err := store.Persist(ctx, it); err != nil {
			t.Fatalf("persist: %v", err)
		}
	}

	titles, err := store.RecentTitles(ctx, "src-api", 3)
	if err != nil {
		t.Fatalf("RecentTitles: %v", err)
	}
	if len(titles) != 3 {
		t.Fatalf("got %d titles, want 3", len(titles))
	}
	if titles[0] != "Title i4" {
		t.Fatalf("newest first: got %q", titles[0])
	}
}

func TestCountByType(t *testing.T) {
	t.Parallel()

	store := NewMemoryStore()
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if err := store.Persist(ctx, item(fmt.Sprintf("p%d", i), domain.TypePrimary, 0.5)); err != nil {
			t.Fatalf("persist: %v", err)
		}
	}
	if err := store.Persist(ctx, item("r0", domain.TypeRSSFeed, 0.5)); err != nil {
		t.Fatalf("persist: %v", err)
	}

	counts, err := store.CountByType(ctx)
	if err != nil {
		t.Fatalf("CountByType: %v", err)
	}
	if counts[domain.TypePrimary] != 3 || counts[domain.TypeRSSFeed] != 1 {
		t.Fatalf("counts = %v", counts)
	}
}
