package registry

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"contentpipe/internal/config"
	"contentpipe/internal/domain"
)

// Authors is the known-author roster backing authority lookups. Names
// match case-insensitively; anyone not on the roster scores the neutral
// default.
type Authors struct {
	mu     sync.RWMutex
	byName map[string]domain.Author
}

// NewAuthors builds an empty roster.
func NewAuthors() *Authors {
	return &Authors{byName: map[string]domain.Author{}}
}

// AuthorsFromConfig validates and registers every configured author.
func AuthorsFromConfig(cfgs []config.AuthorConfig) (*Authors, error) {
	a := NewAuthors()
	for _, ac := range cfgs {
		if ac.Name == "" {
			return nil, fmt.Errorf("load authors: author without name")
		}
		if ac.Authority < 0 || ac.Authority > 1 {
			return nil, fmt.Errorf("load authors: %s: authority %.2f outside [0,1]", ac.Name, ac.Authority)
		}
		if err := a.Register(domain.Author{Name: ac.Name, AuthorityScore: ac.Authority}); err != nil {
			return nil, fmt.Errorf("load authors: %w", err)
		}
	}
	return a, nil
}

// Register adds an author; duplicate names are a configuration error.
func (a *Authors) Register(author domain.Author) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	key := authorKey(author.Name)
	if _, ok := a.byName[key]; ok {
		return fmt.Errorf("author %s registered twice", author.Name)
	}
	a.byName[key] = author
	return nil
}

// Authority resolves the author's authority score, falling back to the
// neutral default for anyone off the roster.
func (a *Authors) Authority(_ context.Context, name string) (float64, error) {
	a.mu.RLock()
	defer a.mu.RUnlock()

	author, ok := a.byName[authorKey(name)]
	if !ok {
		return domain.DefaultAuthority, nil
	}
	return author.AuthorityScore, nil
}

func authorKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
