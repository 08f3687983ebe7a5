package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/araddon/dateparse"
	"github.com/mmcdole/gofeed"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

// BlogSource reads the configured company RSS feeds and exposes full-article
// extraction for enrichment after the ledger check.
type BlogSource struct {
	parser *gofeed.Parser
	client *http.Client
	feeds  map[string]string
	logger *slog.Logger
}

var (
	_ ports.ContentSource  = (*BlogSource)(nil)
	_ ports.ArticleFetcher = (*BlogSource)(nil)
)

// NewBlogSource wires the feed map (source name → feed URL).
func NewBlogSource(client *http.Client, feeds map[string]string, logger *slog.Logger) *BlogSource {
	if client == nil {
		client = http.DefaultClient
	}
	parser := gofeed.NewParser()
	parser.Client = client
	parser.UserAgent = "ContentCurator/1.0"
	return &BlogSource{parser: parser, client: client, feeds: feeds, logger: logger}
}

// Fetch pulls every configured feed. One broken feed is logged and skipped;
// the rest still contribute items.
func (s *BlogSource) Fetch(ctx context.Context, constraints ports.FetchConstraints) ([]domain.ContentItem, error) {
	cutoff := time.Time{}
	if constraints.MaxAge > 0 {
		cutoff = time.Now().UTC().Add(-constraints.MaxAge)
	}

	var items []domain.ContentItem
	for sourceName, feedURL := range s.feeds {
		posts, err := s.parseFeed(ctx, sourceName, feedURL, cutoff)
		if err != nil {
			s.logger.Error("blog feed failed", "source", sourceName, "error", err)
			continue
		}
		s.logger.Info("feed fetched", "source", sourceName, "posts", len(posts))
		items = append(items, posts...)
	}
	return items, nil
}

func (s *BlogSource) parseFeed(ctx context.Context, sourceName, feedURL string, cutoff time.Time) ([]domain.ContentItem, error) {
	feed, err := s.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("parse feed %s: %w", feedURL, err)
	}

	var items []domain.ContentItem
	for _, entry := range feed.Items {
		published := entryDate(entry)
		if !published.IsZero() && !cutoff.IsZero() && published.Before(cutoff) {
			continue
		}

		summary := entry.Description
		if summary == "" {
			summary = entry.Content
		}
		summary = stripHTML(summary)

		items = append(items, domain.ContentItem{
			ContentID:   entry.Link,
			Category:    domain.CategoryBlog,
			SourceName:  sourceName,
			Title:       entry.Title,
			Summary:     clipRunes(summary, 1000),
			URL:         entry.Link,
			PublishedAt: published,
		})
	}
	return items, nil
}

// FullText downloads a post and extracts its readable body, scripts and
// chrome stripped.
func (s *BlogSource) FullText(ctx context.Context, pageURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ContentCurator/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("fetch article: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("article returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("parse article: %w", err)
	}

	doc.Find("script, style, nav, footer, header").Remove()

	body := doc.Find("article").First()
	if body.Length() == 0 {
		body = doc.Find("main").First()
	}
	if body.Length() == 0 {
		body = doc.Find("body").First()
	}

	var lines []string
	for _, line := range strings.Split(body.Text(), "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return clipRunes(strings.Join(lines, "\n"), 15000), nil
}

func entryDate(entry *gofeed.Item) time.Time {
	if entry.PublishedParsed != nil {
		return entry.PublishedParsed.UTC()
	}
	if entry.UpdatedParsed != nil {
		return entry.UpdatedParsed.UTC()
	}
	for _, raw := range []string{entry.Published, entry.Updated} {
		if raw == "" {
			continue
		}
		if t, err := dateparse.ParseAny(raw); err == nil {
			return t.UTC()
		}
	}
	return time.Time{}
}

func stripHTML(fragment string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return strings.TrimSpace(fragment)
	}
	return strings.TrimSpace(doc.Text())
}
