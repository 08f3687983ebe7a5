package ports

import (
	"context"
	"time"

	"ContentCurator/internal/domain"
)

// FetchConstraints bounds what a source adapter should return.
type FetchConstraints struct {
	MaxItems int
	MaxAge   time.Duration
}

// ContentSource pulls fresh candidate items from one upstream provider.
// Adapters own all scraping/parsing/pagination and must keep ContentID stable.
type ContentSource interface {
	Fetch(ctx context.Context, constraints FetchConstraints) ([]domain.ContentItem, error)
}

// Ledger is the durable record of already-decided content, partitioned per
// category. It is the sole idempotence mechanism; the pipeline is its only
// writer. MarkPosted runs immediately after delivery, so a crash between the
// publish call and the write may double-post on the next run; accepted.
type Ledger interface {
	// HasBeenPosted reports whether the item was already decided. No side
	// effects; must be cheap enough to call before any judge or network work.
	HasBeenPosted(ctx context.Context, category domain.Category, contentID string) (bool, error)

	// MarkPosted atomically upserts the record. Replaying with the same key
	// overwrites delivery ids instead of erroring.
	MarkPosted(ctx context.Context, rec domain.PostedRecord) error

	// RecentTitles returns recently published titles newest first, used only
	// as judge context for duplicate detection.
	RecentTitles(ctx context.Context, withinDays, limit int) ([]string, error)

	// RecordOracleDecision is a best-effort audit write; implementations log
	// failures instead of returning them up the pipeline.
	RecordOracleDecision(ctx context.Context, dec domain.OracleDecision) error

	Close() error
}

// Oracle is the external judge consulted for scoring, fact-checking, and
// duplicate detection. Implementations apply deterministic fallbacks on
// unreachable backends or malformed responses; verdicts never carry errors.
type Oracle interface {
	Score(ctx context.Context, item domain.ContentItem) domain.ScoreVerdict
	Verify(ctx context.Context, item domain.ContentItem) domain.VerifyVerdict
	IsDuplicate(ctx context.Context, item domain.ContentItem, recentTitles []string) domain.DuplicateVerdict
}

// ChatRequest frames one completion call to the reasoning backend.
type ChatRequest struct {
	Model       string
	System      string
	User        string
	Temperature float64
	MaxTokens   int
}

// ChatClient is the raw transport toward the LLM API.
type ChatClient interface {
	Chat(ctx context.Context, req ChatRequest) (string, error)
	// ChatWithImages sends a text prompt plus locally stored images to a
	// vision-capable model.
	ChatWithImages(ctx context.Context, model, prompt string, imagePaths []string) (string, error)
}

// Composer turns enriched content into ready-to-send posts.
type Composer interface {
	PaperPostRU(ctx context.Context, title, authors, paperText string) (string, error)
	PaperPostEN(ctx context.Context, title, authors, paperText string) (string, error)
	BlogPostRU(ctx context.Context, title, source, content string) (string, error)
	BlogPostEN(ctx context.Context, title, source, content string) (string, error)
	TweetSummaryRU(ctx context.Context, author, tweetText string) (string, error)
}

// PaperEnricher downloads and distills a paper's PDF. A figure-extraction
// failure degrades to an empty FigurePath; a text-extraction failure is an
// error that aborts the item.
type PaperEnricher interface {
	Enrich(ctx context.Context, item domain.ContentItem) (domain.PaperContent, error)
}

// ArticleFetcher retrieves the full readable text behind a blog URL.
type ArticleFetcher interface {
	FullText(ctx context.Context, url string) (string, error)
}

// ChannelPublisher delivers one post to a destination channel and returns the
// channel's delivery id. Delivery failures come back as errors but callers
// treat them as "delivery unknown", never as item aborts.
type ChannelPublisher interface {
	Publish(ctx context.Context, text, imagePath, link string) (string, error)
}

// Reposter mirrors an original post on the microblogging platform.
type Reposter interface {
	Repost(ctx context.Context, originalURL string) (string, error)
}

// Alerter sends out-of-band operator messages; both methods are best-effort.
type Alerter interface {
	SendError(ctx context.Context, text string)
	SendStatus(ctx context.Context, text string)
}

// Scheduler runs registered jobs on cron expressions.
type Scheduler interface {
	AddJob(spec string, job func()) error
	Start()
	Stop(ctx context.Context) error
}
