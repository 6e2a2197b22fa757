package registry

import (
	"context"
	"testing"

	"contentpipe/internal/config"
	"contentpipe/internal/domain"
)

func TestAuthorityKnownAuthor(t *testing.T) {
	t.Parallel()

	a := NewAuthors()
	if err := a.Register(domain.Author{Name: "Dan Luu", AuthorityScore: 0.9}); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := a.Authority(context.Background(), "Dan Luu")
	if err != nil {
		t.Fatalf("authority: %v", err)
	}
	if got != 0.9 {
		t.Fatalf("authority = %v, want 0.9", got)
	}

	// Lookup is case-insensitive and whitespace-tolerant.
	got, err = a.Authority(context.Background(), "  dan luu ")
	if err != nil {
		t.Fatalf("authority: %v", err)
	}
	if got != 0.9 {
		t.Fatalf("normalized lookup = %v, want 0.9", got)
	}
}

func TestAuthorityUnknownAuthorIsNeutral(t *testing.T) {
	t.Parallel()

	got, err := NewAuthors().Authority(context.Background(), "Nobody In Particular")
	if err != nil {
		t.Fatalf("authority: %v", err)
	}
	if got != domain.DefaultAuthority {
		t.Fatalf("authority = %v, want %v", got, domain.DefaultAuthority)
	}
}

func TestRegisterDuplicateAuthor(t *testing.T) {
	t.Parallel()

	a := NewAuthors()
	if err := a.Register(domain.Author{Name: "Julia Evans", AuthorityScore: 0.8}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := a.Register(domain.Author{Name: "julia evans", AuthorityScore: 0.7}); err == nil {
		t.Fatal("expected duplicate name to fail")
	}
}

func TestAuthorsFromConfig(t *testing.T) {
	t.Parallel()

	a, err := AuthorsFromConfig([]config.AuthorConfig{
		{Name: "Dan Luu", Authority: 0.9},
		{Name: "Julia Evans", Authority: 0.85},
	})
	if err != nil {
		t.Fatalf("from config: %v", err)
	}
	got, err := a.Authority(context.Background(), "julia evans")
	if err != nil {
		t.Fatalf("authority: %v", err)
	}
	if got != 0.85 {
		t.Fatalf("authority = %v, want 0.85", got)
	}
}

func TestAuthorsFromConfigRejectsBadEntries(t *testing.T) {
	t.Parallel()

	cases := [][]config.AuthorConfig{
		{{Name: "", Authority: 0.5}},
		{{Name: "Out Of Band", Authority: 1.5}},
		{{Name: "Negative", Authority: -0.1}},
		{{Name: "Twice", Authority: 0.5}, {Name: "twice", Authority: 0.6}},
	}
	for _, cfgs := range cases {
		if _, err := AuthorsFromConfig(cfgs); err == nil {
			t.Fatalf("expected error for %+v", cfgs)
		}
	}
}
