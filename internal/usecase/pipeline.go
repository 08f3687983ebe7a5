package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

const (
	dedupLookbackDays = 7
	dedupTitleLimit   = 40

	blogMaxAge  = 3 * 24 * time.Hour
	tweetMaxAge = 2 * 24 * time.Hour

	// Fact-check gate: skip only when the judge is both negative and
	// confident about it.
	verifyConfidenceGate = 0.6
)

// PipelineDeps wires all driven adapters into the curation pipeline.
type PipelineDeps struct {
	Papers ports.ContentSource
	Blogs  ports.ContentSource
	Tweets ports.ContentSource

	Ledger   ports.Ledger
	Oracle   ports.Oracle
	Composer ports.Composer

	PaperEnricher ports.PaperEnricher
	Articles      ports.ArticleFetcher

	Telegram ports.ChannelPublisher
	Twitter  ports.ChannelPublisher
	Reposter ports.Reposter
	Alerter  ports.Alerter

	Logger *slog.Logger

	MaxPapersPerRun int
	MaxBlogsPerRun  int
}

// Pipeline drives items from raw fetch to published-and-recorded, one
// category at a time. It is the sole writer of the ledger and assumes at most
// one active invocation at a time; overlapping runs are not locked against.
type Pipeline struct {
	deps   PipelineDeps
	logger *slog.Logger
}

// NewPipeline constructs the orchestration component.
func NewPipeline(deps PipelineDeps) *Pipeline {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{deps: deps, logger: logger}
}

// categorySpec is the per-variant step table: every category declares its
// source, cap, verification policy, and publish behavior explicitly.
type categorySpec struct {
	category    domain.Category
	source      ports.ContentSource
	constraints ports.FetchConstraints
	maxPerRun   int // 0 means uncapped
	verify      bool
	// prepare enriches the item before scoring (e.g. full blog text).
	prepare func(ctx context.Context, item *domain.ContentItem)
	// publish performs enrichment, post generation, delivery, and the ledger
	// write for an accepted item.
	publish func(ctx context.Context, item domain.ContentItem) error
}

// RunPapers executes one papers pipeline pass.
func (p *Pipeline) RunPapers(ctx context.Context) {
	p.runCategory(ctx, categorySpec{
		category:    domain.CategoryPaper,
		source:      p.deps.Papers,
		constraints: ports.FetchConstraints{MaxItems: p.deps.MaxPapersPerRun * 3},
		maxPerRun:   p.deps.MaxPapersPerRun,
		verify:      false, // papers self-report their claims; not fact-checked
		publish:     p.publishPaper,
	})
}

// RunBlogs executes one blogs pipeline pass.
func (p *Pipeline) RunBlogs(ctx context.Context) {
	p.runCategory(ctx, categorySpec{
		category:    domain.CategoryBlog,
		source:      p.deps.Blogs,
		constraints: ports.FetchConstraints{MaxAge: blogMaxAge},
		maxPerRun:   p.deps.MaxBlogsPerRun,
		verify:      true,
		prepare:     p.enrichBlog,
		publish:     p.publishBlog,
	})
}

// RunTweets executes one twitter-monitoring pipeline pass.
func (p *Pipeline) RunTweets(ctx context.Context) {
	p.runCategory(ctx, categorySpec{
		category:    domain.CategoryTweet,
		source:      p.deps.Tweets,
		constraints: ports.FetchConstraints{MaxAge: tweetMaxAge},
		verify:      true,
		publish:     p.publishTweet,
	})
}

// RunAll runs the three category pipelines sequentially.
func (p *Pipeline) RunAll(ctx context.Context) {
	p.RunPapers(ctx)
	p.RunBlogs(ctx)
	p.RunTweets(ctx)
}

// runCategory enforces the gating sequence for one category:
// ledger check → score → verify → dedup → publish → record.
// Failures are contained at the item boundary; a fetch failure is contained
// at the category boundary. Either way the process keeps going.
func (p *Pipeline) runCategory(ctx context.Context, spec categorySpec) {
	log := p.logger.With("category", spec.category.String())
	log.Info("pipeline started")

	published := 0
	defer func() {
		log.Info("pipeline done", "published", published)
		p.status(ctx, fmt.Sprintf("%s pipeline done: %d published", spec.category, published))
	}()

	items, err := spec.source.Fetch(ctx, spec.constraints)
	if err != nil {
		log.Error("fetch failed", "error", err)
		p.alert(ctx, fmt.Sprintf("%s pipeline fetch failed: %v", spec.category, err))
		return
	}
	log.Info("fetched candidates", "count", len(items))

	for _, item := range items {
		if spec.maxPerRun > 0 && published >= spec.maxPerRun {
			// Remaining candidates stay unrecorded and eligible next run.
			break
		}

		posted, err := p.deps.Ledger.HasBeenPosted(ctx, spec.category, item.ContentID)
		if err != nil {
			// Without dedup status we cannot safely proceed: fail closed.
			log.Error("ledger check failed", "content_id", item.ContentID, "error", err)
			p.alert(ctx, fmt.Sprintf("ledger check failed for %s: %v", item.ContentID, err))
			continue
		}
		if posted {
			log.Debug("already posted", "content_id", item.ContentID)
			continue
		}

		if spec.prepare != nil {
			spec.prepare(ctx, &item)
		}

		verdict := p.deps.Oracle.Score(ctx, item)
		if !verdict.Publish {
			log.Info("skipping low score", "score", verdict.Score, "title", clip(item.Title, 60))
			continue
		}

		if spec.verify {
			v := p.deps.Oracle.Verify(ctx, item)
			if !v.Verified && v.Confidence > verifyConfidenceGate {
				log.Warn("fact-check failed", "title", clip(item.Title, 60), "issues", v.Issues)
				continue
			}
		}

		titles, err := p.deps.Ledger.RecentTitles(ctx, dedupLookbackDays, dedupTitleLimit)
		if err != nil {
			log.Warn("recent titles unavailable, dedup context empty", "error", err)
			titles = nil
		}
		dup := p.deps.Oracle.IsDuplicate(ctx, item, titles)
		if dup.IsDuplicate {
			log.Info("skipping duplicate", "title", clip(item.Title, 60), "duplicate_of", dup.DuplicateOf)
			continue
		}

		if err := p.processItem(ctx, spec, item); err != nil {
			log.Error("item failed", "content_id", item.ContentID, "error", err)
			p.alert(ctx, fmt.Sprintf("%s pipeline error: %s: %v", spec.category, item.ContentID, err))
			continue
		}

		published++
		log.Info("published", "title", clip(item.Title, 60))
	}
}

// processItem runs the publish step with a panic guard so one bad item can
// never take down the run.
func (p *Pipeline) processItem(ctx context.Context, spec categorySpec, item domain.ContentItem) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic while processing %s: %v", item.ContentID, r)
		}
	}()
	return spec.publish(ctx, item)
}

func (p *Pipeline) enrichBlog(ctx context.Context, item *domain.ContentItem) {
	if p.deps.Articles == nil || item.URL == "" {
		return
	}
	full, err := p.deps.Articles.FullText(ctx, item.URL)
	if err != nil {
		p.logger.Warn("full blog content unavailable", "url", item.URL, "error", err)
		return
	}
	if full != "" {
		item.FullText = full
		item.Summary = clip(full, 2000)
	}
}

func (p *Pipeline) publishPaper(ctx context.Context, item domain.ContentItem) error {
	content, err := p.deps.PaperEnricher.Enrich(ctx, item)
	if err != nil {
		return fmt.Errorf("enrich paper: %w", err)
	}

	authors := item.AuthorsLine()
	postRU, err := p.deps.Composer.PaperPostRU(ctx, item.Title, authors, content.Text)
	if err != nil {
		return fmt.Errorf("generate ru post: %w", err)
	}
	postEN, err := p.deps.Composer.PaperPostEN(ctx, item.Title, authors, content.Text)
	if err != nil {
		return fmt.Errorf("generate en post: %w", err)
	}

	tgID := p.deliver(ctx, p.deps.Telegram, postRU, content.FigurePath, item.URL, "telegram")
	tweetID := p.deliver(ctx, p.deps.Twitter, postEN, content.FigurePath, item.URL, "twitter")

	return p.record(ctx, item, tgID, tweetID)
}

func (p *Pipeline) publishBlog(ctx context.Context, item domain.ContentItem) error {
	content := item.FullText
	if content == "" {
		content = item.Summary
	}
	source := sourceLabel(item.SourceName)

	postRU, err := p.deps.Composer.BlogPostRU(ctx, item.Title, source, content)
	if err != nil {
		return fmt.Errorf("generate ru post: %w", err)
	}
	postEN, err := p.deps.Composer.BlogPostEN(ctx, item.Title, source, content)
	if err != nil {
		return fmt.Errorf("generate en post: %w", err)
	}

	tgID := p.deliver(ctx, p.deps.Telegram, postRU, "", item.URL, "telegram")
	tweetID := p.deliver(ctx, p.deps.Twitter, postEN, "", item.URL, "twitter")

	return p.record(ctx, item, tgID, tweetID)
}

// publishTweet performs the tweet special case: a localized summary to the
// messaging channel plus a repost of the original, recorded as one decision.
func (p *Pipeline) publishTweet(ctx context.Context, item domain.ContentItem) error {
	author := item.SourceName
	if len(item.Authors) > 0 {
		author = item.Authors[0]
	}

	summary, err := p.deps.Composer.TweetSummaryRU(ctx, author, item.Summary)
	if err != nil {
		return fmt.Errorf("generate tweet summary: %w", err)
	}

	tgID := p.deliver(ctx, p.deps.Telegram, summary, "", item.URL, "telegram")

	repostID := ""
	if p.deps.Reposter != nil && item.URL != "" {
		repostID, err = p.deps.Reposter.Repost(ctx, item.URL)
		if err != nil {
			p.logger.Error("repost failed", "url", item.URL, "error", err)
			p.alert(ctx, fmt.Sprintf("repost failed for %s: %v", item.URL, err))
			repostID = ""
		}
	}

	return p.record(ctx, item, tgID, repostID)
}

// deliver sends a post on one channel. A delivery failure is logged and
// alerted but reduces to an empty delivery id; the item is still recorded.
func (p *Pipeline) deliver(ctx context.Context, pub ports.ChannelPublisher, text, imagePath, link, channel string) string {
	if pub == nil {
		return ""
	}
	id, err := pub.Publish(ctx, text, imagePath, link)
	if err != nil {
		p.logger.Error("delivery failed", "channel", channel, "error", err)
		p.alert(ctx, fmt.Sprintf("%s delivery failed: %v", channel, err))
		return ""
	}
	return id
}

// record writes the ledger row immediately after delivery; this is the commit
// point that makes repeated runs idempotent.
func (p *Pipeline) record(ctx context.Context, item domain.ContentItem, tgID, tweetID string) error {
	err := p.deps.Ledger.MarkPosted(ctx, domain.PostedRecord{
		Category:      item.Category,
		ContentID:     item.ContentID,
		SourceName:    item.SourceName,
		Title:         item.Title,
		PostedAt:      time.Now().UTC(),
		TelegramMsgID: tgID,
		TweetID:       tweetID,
	})
	if err != nil {
		return fmt.Errorf("mark posted: %w", err)
	}
	return nil
}

func (p *Pipeline) alert(ctx context.Context, text string) {
	if p.deps.Alerter != nil {
		p.deps.Alerter.SendError(ctx, text)
	}
}

func (p *Pipeline) status(ctx context.Context, text string) {
	if p.deps.Alerter != nil {
		p.deps.Alerter.SendStatus(ctx, text)
	}
}

func sourceLabel(sourceName string) string {
	out := []rune(sourceName)
	upper := true
	for i, r := range out {
		if r == '_' {
			out[i] = ' '
			upper = true
			continue
		}
		if upper && r >= 'a' && r <= 'z' {
			out[i] = r - ('a' - 'A')
		}
		upper = false
	}
	return string(out)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
