package scraper

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"contentpipe/internal/domain"
)

const samplePage = `<!DOCTYPE html>
<html><body>
  <div class="post">
    <h2>Queue Depth and You</h2>
    <a href="/posts/queue-depth">read</a>
    <p>Latency starts in the queue, not the handler.</p>
  </div>
  <div class="post">
    <h2>Deploy Notes</h2>
    <a href="https://other.example/deploy-notes">read</a>
    <p>Absolute links pass through untouched.</p>
  </div>
  <div class="post">
    <p>No heading, no anchor text either.</p>
  </div>
</body></html>`

func TestFetchExtractsItems(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(samplePage))
	}))
	defer server.Close()

	p := New(server.Client(), nil)
	source := domain.Source{
		ID:       "weblog",
		Type:     domain.TypeScraping,
		FeedURL:  server.URL,
		Selector: "div.post",
	}

	items, err := p.Fetch(context.Background(), source)
	if err != nil {
		t.Fatalf("Fetch: %v", err)
	}

	if len(items) != 2 {
		t.Fatalf("expected 2 items (anchor-less block skipped), got %d", len(items))
	}

	if items[0].Title != "Queue Depth and You" {
		t.Fatalf("title = %q", items[0].Title)
	}
	if items[0].URL != server.URL+"/posts/queue-depth" {
		t.Fatalf("relative link not resolved: %q", items[0].URL)
	}
	if items[1].URL != "https://other.example/deploy-notes" {
		t.Fatalf("absolute link mangled: %q", items[1].URL)
	}
	if items[0].SourceID != "weblog" {
		t.Fatalf("source id = %s", items[0].SourceID)
	}
}

func TestFetchBadStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer server.Close()

	p := New(server.Client(), nil)
	_, err := p.Fetch(context.Background(), domain.Source{ID: "weblog", FeedURL: server.URL})
	if err == nil {
		t.Fatal("expected error for 403 response")
	}
}

func TestFetchRequiresPageURL(t *testing.T) {
	t.Parallel()

	p := New(nil, nil)
	if _, err := p.Fetch(context.Background(), domain.Source{ID: "weblog"}); err == nil {
		t.Fatal("expected error for source without page url")
	}
}
