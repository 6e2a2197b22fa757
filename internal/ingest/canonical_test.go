package ingest

import "testing"

func TestCanonicalURL(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases scheme and host", "HTTPS://Example.COM/Path", "https://example.com/Path"},
		{"strips utm params", "https://x.dev/post?utm_source=tw&utm_medium=social&id=7", "https://x.dev/post?id=7"},
		{"strips fbclid and ref", "https://x.dev/post?fbclid=abc&ref=hn", "https://x.dev/post"},
		{"drops fragment", "https://x.dev/post#section-2", "https://x.dev/post"},
		{"sorts query", "https://x.dev/post?b=2&a=1", "https://x.dev/post?a=1&b=2"},
		{"trims trailing slash", "https://x.dev/post/", "https://x.dev/post"},
		{"keeps root slash", "https://x.dev/", "https://x.dev/"},
		{"trims whitespace", "  https://x.dev/post ", "https://x.dev/post"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			got, err := CanonicalURL(tc.in)
			if err != nil {
				t.Fatalf("CanonicalURL(%q) error: %v", tc.in, err)
			}
			if got != tc.want {
				t.Fatalf("CanonicalURL(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestCanonicalURLIdempotent(t *testing.T) {
	t.Parallel()

	inputs := []string{
		"HTTPS://Example.COM/Posts/?utm_campaign=x&b=2&a=1#frag",
		"https://news.site/a?ref=rss",
	}

	for _, in := range inputs {
		once, err := CanonicalURL(in)
		if err != nil {
			t.Fatalf("first pass: %v", err)
		}
		twice, err := CanonicalURL(once)
		if err != nil {
			t.Fatalf("second pass: %v", err)
		}
		if once != twice {
			t.Fatalf("not idempotent: %q -> %q -> %q", in, once, twice)
		}
	}
}

func TestCanonicalURLRejectsRelative(t *testing.T) {
	t.Parallel()

	if _, err := CanonicalURL("/just/a/path"); err == nil {
		t.Fatal("expected error for URL without scheme/host")
	}
}

func TestContentIDStable(t *testing.T) {
	t.Parallel()

	a := ContentID("https://x.dev/post")
	b := ContentID("https://x.dev/post")
	if a != b {
		t.Fatalf("same url produced different ids: %s vs %s", a, b)
	}
	if len(a) != 64 {
		t.Fatalf("expected sha256 hex id, got %d chars", len(a))
	}
	if a == ContentID("https://x.dev/other") {
		t.Fatal("distinct urls collided")
	}
}
