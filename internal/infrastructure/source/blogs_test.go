package source

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

func rssFeed(pubDate string) string {
	return fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
  <channel>
    <title>Company News</title>
    <item>
      <title>New Model Released</title>
      <link>https://example.com/news/new-model</link>
      <description>&lt;p&gt;We are &lt;b&gt;releasing&lt;/b&gt; a new model today.&lt;/p&gt;</description>
      <pubDate>%s</pubDate>
    </item>
  </channel>
</rss>`, pubDate)
}

func TestBlogFetchParsesFeed(t *testing.T) {
	t.Parallel()

	recent := time.Now().UTC().Add(-2 * time.Hour).Format(time.RFC1123Z)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		_, _ = w.Write([]byte(rssFeed(recent)))
	}))
	defer server.Close()

	src := NewBlogSource(server.Client(), map[string]string{"openai": server.URL}, testLogger())

	items, err := src.Fetch(context.Background(), ports.FetchConstraints{MaxAge: 3 * 24 * time.Hour})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	item := items[0]
	if item.Category != domain.CategoryBlog {
		t.Fatalf("unexpected category: %v", item.Category)
	}
	if item.SourceName != "openai" {
		t.Fatalf("unexpected source: %s", item.SourceName)
	}
	if item.ContentID != "https://example.com/news/new-model" {
		t.Fatalf("unexpected id: %s", item.ContentID)
	}
	if item.Summary != "We are releasing a new model today." {
		t.Fatalf("html must be stripped from the summary: %q", item.Summary)
	}
	if item.PublishedAt.IsZero() {
		t.Fatal("expected a parsed publish date")
	}
}

func TestBlogFetchFiltersOldPosts(t *testing.T) {
	t.Parallel()

	stale := time.Now().UTC().AddDate(0, 0, -10).Format(time.RFC1123Z)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(rssFeed(stale)))
	}))
	defer server.Close()

	src := NewBlogSource(server.Client(), map[string]string{"openai": server.URL}, testLogger())

	items, err := src.Fetch(context.Background(), ports.FetchConstraints{MaxAge: 3 * 24 * time.Hour})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 0 {
		t.Fatalf("stale posts must be filtered, got %d items", len(items))
	}
}

func TestBlogFetchSurvivesBrokenFeed(t *testing.T) {
	t.Parallel()

	recent := time.Now().UTC().Add(-1 * time.Hour).Format(time.RFC1123Z)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/broken" {
			http.Error(w, "gone", http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(rssFeed(recent)))
	}))
	defer server.Close()

	src := NewBlogSource(server.Client(), map[string]string{
		"healthy": server.URL + "/feed",
		"broken":  server.URL + "/broken",
	}, testLogger())

	items, err := src.Fetch(context.Background(), ports.FetchConstraints{})
	if err != nil {
		t.Fatalf("one broken feed must not fail the fetch: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected the healthy feed's item, got %d", len(items))
	}
}

func TestFullTextPrefersArticleElement(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html><head><script>tracker()</script></head><body>
			<nav>Home | About</nav>
			<article><p>The real story.</p><p>More details.</p></article>
			<footer>Copyright</footer>
		</body></html>`))
	}))
	defer server.Close()

	src := NewBlogSource(server.Client(), nil, testLogger())

	text, err := src.FullText(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("FullText error: %v", err)
	}
	if text != "The real story.More details." {
		t.Fatalf("unexpected text: %q", text)
	}
}
