// Package oracle builds judge requests, defensively parses the reasoning
// backend's free-text responses, and applies deterministic fallbacks when the
// backend is unreachable or malformed. Scoring fails closed (ambiguity means
// do not publish); fact-checking fails open (a parsing hiccup must not
// withhold legitimate content).
package oracle

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

const scorePromptTemplate = `You are an expert AI/ML content curator. Evaluate the following content for publication on a popular science channel about AI and machine learning.

Score from 1 to 10 based on:
- Novelty (is this a genuinely new idea or just incremental?)
- Practical impact (does this change how people build or use AI?)
- Author/org reputation (is this from a top lab or well-known researcher?)
- Community engagement (likes/upvotes if available)
- Accessibility (can a technical audience understand and appreciate this?)

Content type: %s
Source: %s
Title: %s
Likes/engagement: %s
Authors/orgs: %s

Summary:
%s

Respond with ONLY valid JSON:
{"score": <1-10>, "reason": "<1-2 sentence justification>", "publish": <true/false>}

Use threshold: publish=true if score >= %d.
`

const factCheckPromptTemplate = `You are a fact-checker for AI/ML news. Verify the following claim or announcement.

Source: %s
Title: %s
Content:
%s

Additional context from the web:
%s

Check:
1. Is this announcement real and from a legitimate source?
2. Are the claimed results or features accurate based on available information?
3. Is this not a duplicate or rehash of old news?

Respond with ONLY valid JSON:
{"verified": <true/false>, "confidence": <0.0-1.0>, "issues": "<any concerns or empty string>"}
`

const duplicatePromptTemplate = `You curate an AI/ML news channel. Below is a candidate item and the titles we already published recently. Decide whether the candidate covers the same underlying content as any of them (same paper, same announcement, same event — wording may differ).

Candidate title: %s
Candidate summary:
%s

Recently published titles:
%s

Respond with ONLY valid JSON:
{"is_duplicate": <true/false>, "duplicate_of": "<matching title or empty string>"}
`

// Judge implements ports.Oracle over an injected chat transport.
type Judge struct {
	chat      ports.ChatClient
	ledger    ports.Ledger // audit trail only, may be nil
	webClient *http.Client
	logger    *slog.Logger

	minScore       int
	scoreModel     string
	factCheckModel string
}

var _ ports.Oracle = (*Judge)(nil)

// Deps wires the judge's collaborators.
type Deps struct {
	Chat           ports.ChatClient
	Ledger         ports.Ledger
	Logger         *slog.Logger
	MinScore       int
	ScoreModel     string
	FactCheckModel string
}

// NewJudge constructs the judge with an explicit client; no ambient singletons.
func NewJudge(deps Deps) *Judge {
	return &Judge{
		chat:           deps.Chat,
		ledger:         deps.Ledger,
		webClient:      &http.Client{Timeout: 15 * time.Second},
		logger:         deps.Logger,
		minScore:       deps.MinScore,
		scoreModel:     deps.ScoreModel,
		factCheckModel: deps.FactCheckModel,
	}
}

// Score asks the judge whether the item is worth publishing. The returned
// publish flag is whatever the backend asserts, not a local threshold
// comparison. Any transport or parse failure yields (5.0, false, reason).
func (j *Judge) Score(ctx context.Context, item domain.ContentItem) domain.ScoreVerdict {
	likes := "N/A"
	if item.Likes > 0 {
		likes = fmt.Sprintf("%d", item.Likes)
	}
	authors := item.AuthorsLine()
	if authors == "" {
		authors = "Unknown"
	}
	summary := truncate(item.Summary, 2000)
	if summary == "" {
		summary = item.Title
	}

	prompt := fmt.Sprintf(scorePromptTemplate,
		item.Category, item.SourceName, item.Title, likes, authors, summary, j.minScore)

	verdict := domain.ScoreVerdict{Score: 5.0, Publish: false}

	raw, err := j.chat.Chat(ctx, ports.ChatRequest{
		Model:       j.scoreModel,
		User:        prompt,
		Temperature: 0.3,
		MaxTokens:   2048,
	})
	if err != nil {
		j.logger.Error("oracle scoring call failed", "content_id", item.ContentID, "error", err)
		verdict.Reason = "Oracle error"
		return verdict
	}

	var parsed struct {
		Score   float64 `json:"score"`
		Publish bool    `json:"publish"`
		Reason  string  `json:"reason"`
	}
	if !extractObject(raw, &parsed) {
		j.logger.Warn("oracle scoring response unparseable", "content_id", item.ContentID)
		verdict.Reason = "Failed to parse oracle response"
		return verdict
	}

	verdict = domain.ScoreVerdict{Score: parsed.Score, Publish: parsed.Publish, Reason: parsed.Reason}
	j.audit(ctx, item, verdict)

	j.logger.Info("oracle verdict",
		"title", truncate(item.Title, 60),
		"source", item.SourceName,
		"score", verdict.Score,
		"publish", verdict.Publish,
		"reason", verdict.Reason)
	return verdict
}

// Verify fact-checks a blog or tweet. Parse and transport failures fall back
// to (true, 0.5) so a flaky judge cannot suppress legitimate content.
func (j *Judge) Verify(ctx context.Context, item domain.ContentItem) domain.VerifyVerdict {
	webContext := ""
	if item.URL != "" {
		webContext = j.fetchWebContext(ctx, item.URL)
	}

	prompt := fmt.Sprintf(factCheckPromptTemplate,
		item.SourceName, item.Title, truncate(item.Summary, 3000), truncate(webContext, 5000))

	raw, err := j.chat.Chat(ctx, ports.ChatRequest{
		Model:       j.factCheckModel,
		User:        prompt,
		Temperature: 0.2,
		MaxTokens:   2048,
	})
	if err != nil {
		j.logger.Error("fact-check call failed", "content_id", item.ContentID, "error", err)
		return domain.VerifyVerdict{Verified: true, Confidence: 0.3, Issues: "Fact-check error"}
	}

	var parsed struct {
		Verified   bool    `json:"verified"`
		Confidence float64 `json:"confidence"`
		Issues     string  `json:"issues"`
	}
	if !extractObject(raw, &parsed) {
		return domain.VerifyVerdict{Verified: true, Confidence: 0.5, Issues: "Could not parse fact-check response"}
	}

	j.logger.Info("fact-check verdict",
		"title", truncate(item.Title, 60),
		"verified", parsed.Verified,
		"confidence", parsed.Confidence,
		"issues", parsed.Issues)
	return domain.VerifyVerdict{Verified: parsed.Verified, Confidence: parsed.Confidence, Issues: parsed.Issues}
}

// IsDuplicate compares the item against recently published titles. An empty
// history short-circuits without touching the backend.
func (j *Judge) IsDuplicate(ctx context.Context, item domain.ContentItem, recentTitles []string) domain.DuplicateVerdict {
	if len(recentTitles) == 0 {
		return domain.DuplicateVerdict{}
	}

	var list strings.Builder
	for _, t := range recentTitles {
		list.WriteString("- ")
		list.WriteString(t)
		list.WriteString("\n")
	}

	prompt := fmt.Sprintf(duplicatePromptTemplate,
		item.Title, truncate(item.Summary, 1500), list.String())

	raw, err := j.chat.Chat(ctx, ports.ChatRequest{
		Model:       j.scoreModel,
		User:        prompt,
		Temperature: 0.1,
		MaxTokens:   512,
	})
	if err != nil {
		j.logger.Error("duplicate check call failed", "content_id", item.ContentID, "error", err)
		return domain.DuplicateVerdict{}
	}

	var parsed struct {
		IsDuplicate bool   `json:"is_duplicate"`
		DuplicateOf string `json:"duplicate_of"`
	}
	if !extractObject(raw, &parsed) {
		return domain.DuplicateVerdict{}
	}

	return domain.DuplicateVerdict{IsDuplicate: parsed.IsDuplicate, DuplicateOf: parsed.DuplicateOf}
}

func (j *Judge) audit(ctx context.Context, item domain.ContentItem, v domain.ScoreVerdict) {
	if j.ledger == nil {
		return
	}
	decision := "skip"
	if v.Publish {
		decision = "publish"
	}
	_ = j.ledger.RecordOracleDecision(ctx, domain.OracleDecision{
		ContentID: item.ContentID,
		Category:  item.Category,
		Score:     v.Score,
		Decision:  decision,
		Reason:    v.Reason,
	})
}

// fetchWebContext pulls the item's page text as extra fact-check context.
// Best effort: any failure returns an empty string.
func (j *Judge) fetchWebContext(ctx context.Context, pageURL string) string {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return ""
	}
	req.Header.Set("User-Agent", "ContentCurator/1.0")

	resp, err := j.webClient.Do(req)
	if err != nil {
		j.logger.Debug("could not fetch web context", "url", pageURL, "error", err)
		return ""
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return ""
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return ""
	}
	doc.Find("script, style, nav, footer").Remove()

	return truncate(strings.TrimSpace(doc.Text()), 5000)
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
