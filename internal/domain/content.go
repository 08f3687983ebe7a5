package domain

import (
	"fmt"
	"time"
)

// Category is the closed set of content kinds flowing through the pipeline.
// Each category has its own ledger partition and its own pipeline variant.
type Category int

const (
	CategoryPaper Category = iota
	CategoryBlog
	CategoryTweet
)

// String returns the stable storage/display name of the category.
func (c Category) String() string {
	switch c {
	case CategoryPaper:
		return "paper"
	case CategoryBlog:
		return "blog"
	case CategoryTweet:
		return "tweet"
	}
	return fmt.Sprintf("category(%d)", int(c))
}

// ParseCategory maps a storage/CLI name back to a Category.
func ParseCategory(name string) (Category, error) {
	switch name {
	case "paper":
		return CategoryPaper, nil
	case "blog":
		return CategoryBlog, nil
	case "tweet":
		return CategoryTweet, nil
	}
	return 0, fmt.Errorf("unknown category %q", name)
}

// ContentItem is the universal unit of work produced by source adapters.
// It is constructed fresh each run and never persisted; ContentID must be
// stable for the same real-world item across fetches since it is the
// idempotence key within its category.
type ContentItem struct {
	ContentID     string
	Category      Category
	SourceName    string // e.g. "alphaxiv", "openai", "twitter:sama"
	Title         string
	Summary       string
	FullText      string
	URL           string
	PDFURL        string
	Likes         int
	Authors       []string
	Organizations []string
	Topics        []string
	PublishedAt   time.Time
}

// AuthorsLine renders authors (with organizations in parentheses) for prompts.
func (i ContentItem) AuthorsLine() string {
	joined := joinNonEmpty(i.Authors)
	if orgs := joinNonEmpty(i.Organizations); orgs != "" {
		if joined != "" {
			return joined + " (" + orgs + ")"
		}
		return orgs
	}
	return joined
}

func joinNonEmpty(values []string) string {
	out := ""
	for _, v := range values {
		if v == "" {
			continue
		}
		if out != "" {
			out += ", "
		}
		out += v
	}
	return out
}

// PostedRecord is the durable ledger entry written once per decided item.
type PostedRecord struct {
	Category      Category
	ContentID     string
	SourceName    string
	Title         string
	PostedAt      time.Time
	TelegramMsgID string // empty means that channel's delivery failed or was skipped
	TweetID       string
}

// OracleDecision is the audit record of the judge's last verdict for an item.
type OracleDecision struct {
	ContentID string
	Category  Category
	Score     float64
	Decision  string // "publish" or "skip"
	Reason    string
	CheckedAt time.Time
}

// ScoreVerdict is the oracle's worth-publishing judgement.
type ScoreVerdict struct {
	Score   float64
	Publish bool
	Reason  string
}

// VerifyVerdict is the oracle's fact-check judgement for blogs and tweets.
type VerifyVerdict struct {
	Verified   bool
	Confidence float64
	Issues     string
}

// DuplicateVerdict reports whether an item repeats recently published content.
type DuplicateVerdict struct {
	IsDuplicate bool
	DuplicateOf string
}

// PaperContent is the enrichment result for a paper item.
type PaperContent struct {
	Text       string
	FigurePath string // empty when figure extraction degraded to text-only
}
