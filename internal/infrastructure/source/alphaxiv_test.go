package source

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

const alphaxivPage = `
<html><body>
  <div class="card">
    <a href="/abs/2501.00001"><h3>Scaling Laws Revisited</h3></a>
    <p>We revisit scaling laws for large language models and find that the established picture changes substantially at scale.</p>
    <span>128</span>
    <a href="/search?authors=J.+Doe">Jane Doe</a>
    <a href="/search?organizations=DeepMind">DeepMind</a>
    <a href="/search?categories=llm">#llm</a>
  </div>
  <div class="card">
    <a href="/abs/2501.00002"><h3>A Minor Note</h3></a>
    <p>Short.</p>
    <span>3</span>
  </div>
</body></html>`

func testLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

func TestAlphaXivFetchParsesCards(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(alphaxivPage))
	}))
	defer server.Close()

	src := NewAlphaXivSource(server.Client(),
		server.URL+"/?sort=Hot", server.URL+"/?sort=Likes",
		"https://arxiv.org/pdf/", testLogger())

	items, err := src.Fetch(context.Background(), ports.FetchConstraints{MaxItems: 10})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}

	// Both pages serve the same two cards; dedup leaves two items, sorted by
	// likes descending.
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}

	first := items[0]
	if first.ContentID != "2501.00001" {
		t.Fatalf("unexpected id: %s", first.ContentID)
	}
	if first.Category != domain.CategoryPaper {
		t.Fatalf("unexpected category: %v", first.Category)
	}
	if first.Title != "Scaling Laws Revisited" {
		t.Fatalf("unexpected title: %q", first.Title)
	}
	if first.Likes != 128 {
		t.Fatalf("unexpected likes: %d", first.Likes)
	}
	if first.PDFURL != "https://arxiv.org/pdf/2501.00001" {
		t.Fatalf("unexpected pdf url: %s", first.PDFURL)
	}
	if len(first.Authors) != 1 || first.Authors[0] != "Jane Doe" {
		t.Fatalf("unexpected authors: %v", first.Authors)
	}
	if len(first.Organizations) != 1 || first.Organizations[0] != "DeepMind" {
		t.Fatalf("unexpected organizations: %v", first.Organizations)
	}
	if len(first.Topics) != 1 || first.Topics[0] != "llm" {
		t.Fatalf("unexpected topics: %v", first.Topics)
	}
	if first.Summary == "" {
		t.Fatal("expected the long paragraph as summary")
	}

	if items[1].ContentID != "2501.00002" {
		t.Fatalf("unexpected second id: %s", items[1].ContentID)
	}
	if items[1].Summary != "" {
		t.Fatalf("short paragraphs must not become summaries: %q", items[1].Summary)
	}
}

func TestAlphaXivFetchHonorsMaxItems(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(alphaxivPage))
	}))
	defer server.Close()

	src := NewAlphaXivSource(server.Client(),
		server.URL+"/hot", server.URL+"/likes", "https://arxiv.org/pdf/", testLogger())

	items, err := src.Fetch(context.Background(), ports.FetchConstraints{MaxItems: 1})
	if err != nil {
		t.Fatalf("Fetch error: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}
	if items[0].Likes != 128 {
		t.Fatal("truncation must keep the highest-engagement item")
	}
}

func TestAlphaXivSurvivesOneBrokenPage(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/hot" {
			http.Error(w, "upstream down", http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(alphaxivPage))
	}))
	defer server.Close()

	src := NewAlphaXivSource(server.Client(),
		server.URL+"/hot", server.URL+"/likes", "https://arxiv.org/pdf/", testLogger())

	items, err := src.Fetch(context.Background(), ports.FetchConstraints{})
	if err != nil {
		t.Fatalf("one broken page must not fail the fetch: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected items from the healthy page, got %d", len(items))
	}
}
