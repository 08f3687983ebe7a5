package source

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

var likesExpr = regexp.MustCompile(`^\d+$`)

// AlphaXivSource scrapes the AlphaXiv trending pages (Hot and Likes) and
// returns deduplicated papers sorted by engagement.
type AlphaXivSource struct {
	client   *http.Client
	hotURL   string
	likesURL string
	pdfBase  string
	logger   *slog.Logger
}

var _ ports.ContentSource = (*AlphaXivSource)(nil)

// NewAlphaXivSource wires an HTTP client and the page URLs.
func NewAlphaXivSource(client *http.Client, hotURL, likesURL, pdfBase string, logger *slog.Logger) *AlphaXivSource {
	if client == nil {
		client = http.DefaultClient
	}
	return &AlphaXivSource{
		client:   client,
		hotURL:   hotURL,
		likesURL: likesURL,
		pdfBase:  pdfBase,
		logger:   logger,
	}
}

// Fetch walks both trending pages. A single page failing to parse is logged
// and skipped; the other page still contributes candidates.
func (s *AlphaXivSource) Fetch(ctx context.Context, constraints ports.FetchConstraints) ([]domain.ContentItem, error) {
	seen := map[string]struct{}{}
	var items []domain.ContentItem

	for _, pageURL := range []string{s.hotURL, s.likesURL} {
		papers, err := s.parsePage(ctx, pageURL)
		if err != nil {
			s.logger.Error("alphaxiv page failed", "url", pageURL, "error", err)
			continue
		}
		for _, p := range papers {
			if _, ok := seen[p.ContentID]; ok {
				continue
			}
			seen[p.ContentID] = struct{}{}
			items = append(items, p)
		}
	}

	sort.SliceStable(items, func(i, j int) bool { return items[i].Likes > items[j].Likes })

	if constraints.MaxItems > 0 && len(items) > constraints.MaxItems {
		items = items[:constraints.MaxItems]
	}
	return items, nil
}

func (s *AlphaXivSource) parsePage(ctx context.Context, pageURL string) ([]domain.ContentItem, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", "ContentCurator/1.0")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("alphaxiv returned %s", resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parse document: %w", err)
	}

	var items []domain.ContentItem
	doc.Find(`a[href*="/abs/"]`).Each(func(_ int, link *goquery.Selection) {
		href, _ := link.Attr("href")
		idx := strings.Index(href, "/abs/")
		if idx < 0 {
			return
		}
		paperID := strings.Trim(href[idx+len("/abs/"):], "/")
		if paperID == "" {
			return
		}

		title := strings.TrimSpace(link.Find("h2, h3, span, p").First().Text())
		if title == "" {
			title = clipRunes(strings.TrimSpace(link.Text()), 200)
		}

		card := link.Closest("div, article, li")

		items = append(items, domain.ContentItem{
			ContentID:     paperID,
			Category:      domain.CategoryPaper,
			SourceName:    "alphaxiv",
			Title:         title,
			Summary:       cardSummary(card),
			URL:           "https://arxiv.org/abs/" + paperID,
			PDFURL:        s.pdfBase + paperID,
			Likes:         cardLikes(card),
			Authors:       cardLinks(card, "?authors="),
			Organizations: cardLinks(card, "?organizations="),
			Topics:        cardTopics(card),
		})
	})

	return items, nil
}

func cardLikes(card *goquery.Selection) int {
	likes := 0
	card.Find("div, span").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		text := strings.TrimSpace(sel.Text())
		if likesExpr.MatchString(text) {
			if n, err := strconv.Atoi(text); err == nil {
				likes = n
				return false
			}
		}
		return true
	})
	return likes
}

func cardSummary(card *goquery.Selection) string {
	summary := ""
	card.Find("p").EachWithBreak(func(_ int, p *goquery.Selection) bool {
		text := strings.TrimSpace(p.Text())
		if len(text) > 60 {
			summary = text
			return false
		}
		return true
	})
	return summary
}

func cardLinks(card *goquery.Selection, hrefMarker string) []string {
	var out []string
	card.Find("a").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		if strings.Contains(href, hrefMarker) {
			if text := strings.TrimSpace(a.Text()); text != "" {
				out = append(out, text)
			}
		}
	})
	return out
}

func cardTopics(card *goquery.Selection) []string {
	var out []string
	for _, marker := range []string{"?categories=", "?subcategories=", "?customCategories="} {
		for _, t := range cardLinks(card, marker) {
			out = append(out, strings.TrimPrefix(t, "#"))
		}
	}
	return out
}

func clipRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
