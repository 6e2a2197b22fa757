package rss

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/gofeed"

	"contentpipe/internal/domain"
	"contentpipe/internal/ports"
)

// Producer fetches RSS/Atom feeds and maps entries into raw items.
type Producer struct {
	parser *gofeed.Parser
	logger *slog.Logger
}

var _ ports.Producer = (*Producer)(nil)

// New builds the feed producer.
func New(logger *slog.Logger) *Producer {
	return &Producer{parser: gofeed.NewParser(), logger: logger}
}

// Kind identifies which sources this producer serves.
func (p *Producer) Kind() domain.SourceType {
	return domain.TypeRSSFeed
}

// Fetch parses the source's feed URL and returns one raw item per entry.
func (p *Producer) Fetch(ctx context.Context, source domain.Source) ([]domain.RawItem, error) {
	if source.FeedURL == "" {
		return nil, fmt.Errorf("source %s has no feed url", source.ID)
	}

	feed, err := p.parser.ParseURLWithContext(source.FeedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", source.FeedURL, err)
	}

	items := make([]domain.RawItem, 0, len(feed.Items))
	for _, entry := range feed.Items {
		if entry.Link == "" {
			continue
		}

		items = append(items, domain.RawItem{
			SourceID:    source.ID,
			URL:         entry.Link,
			Title:       entry.Title,
			Text:        entryText(entry),
			Author:      entryAuthor(entry),
			PublishedAt: entryPublished(entry),
		})
	}

	if p.logger != nil {
		p.logger.Debug("feed parsed", "source", source.ID, "entries", len(items))
	}
	return items, nil
}

func entryText(entry *gofeed.Item) string {
	if entry.Content != "" {
		return entry.Content
	}
	return entry.Description
}

func entryAuthor(entry *gofeed.Item) string {
	if len(entry.Authors) > 0 {
		return entry.Authors[0].Name
	}
	return ""
}

func entryPublished(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return *entry.PublishedParsed
	}
	if entry.UpdatedParsed != nil {
		return *entry.UpdatedParsed
	}
	return time.Time{}
}
