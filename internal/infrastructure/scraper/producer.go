package scraper

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"contentpipe/internal/domain"
	"contentpipe/internal/ports"
)

const defaultSelector = "article"

// Producer is the best-effort HTML producer: it fetches the source's
// page and extracts one raw item per element matching the configured
// CSS selector.
type Producer struct {
	client *http.Client
	logger *slog.Logger
}

var _ ports.Producer = (*Producer)(nil)

// New wires an HTTP client; nil gets a 20s-timeout default.
func New(client *http.Client, logger *slog.Logger) *Producer {
	if client == nil {
		client = &http.Client{Timeout: 20 * time.Second}
	}
	return &Producer{client: client, logger: logger}
}

// Kind identifies which sources this producer serves.
func (p *Producer) Kind() domain.SourceType {
	return domain.TypeScraping
}

// Fetch downloads the source page and extracts raw items.
func (p *Producer) Fetch(ctx context.Context, source domain.Source) ([]domain.RawItem, error) {
	if source.FeedURL == "" {
		return nil, fmt.Errorf("source %s has no page url", source.ID)
	}

	doc, err := p.fetchDocument(ctx, source.FeedURL)
	if err != nil {
		return nil, fmt.Errorf("source %s: %w", source.ID, err)
	}

	selector := source.Selector
	if selector == "" {
		selector = defaultSelector
	}

	base, err := url.Parse(source.FeedURL)
	if err != nil {
		return nil, fmt.Errorf("source %s: parse page url: %w", source.ID, err)
	}

	var items []domain.RawItem
	doc.Find(selector).Each(func(_ int, sel *goquery.Selection) {
		item, ok := extractItem(sel, base, source.ID)
		if !ok {
			return
		}
		items = append(items, item)
	})

	if p.logger != nil {
		p.logger.Debug("page scraped", "source", source.ID, "selector", selector, "items", len(items))
	}
	return items, nil
}

func (p *Producer) fetchDocument(ctx context.Context, pageURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "contentpipe/1.0")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request document: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("page returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}
	return doc, nil
}

func extractItem(sel *goquery.Selection, base *url.URL, sourceID string) (domain.RawItem, bool) {
	link := sel.Find("a[href]").First()
	href, ok := link.Attr("href")
	if !ok || href == "" {
		return domain.RawItem{}, false
	}

	resolved, err := base.Parse(href)
	if err != nil {
		return domain.RawItem{}, false
	}

	title := strings.TrimSpace(sel.Find("h1, h2, h3").First().Text())
	if title == "" {
		title = strings.TrimSpace(link.Text())
	}

	return domain.RawItem{
		SourceID: sourceID,
		URL:      resolved.String(),
		Title:    title,
		Text:     strings.TrimSpace(sel.Text()),
	}, title != ""
}
