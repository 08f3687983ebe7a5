package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"ContentCurator/internal/domain"
)

func openTestLedger(t *testing.T) *SQLiteLedger {
	t.Helper()

	ledger, err := Open(filepath.Join(t.TempDir(), "state.db"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = ledger.Close() })
	return ledger
}

func TestMarkPostedAndHasBeenPosted(t *testing.T) {
	ledger := openTestLedger(t)
	ctx := context.Background()

	posted, err := ledger.HasBeenPosted(ctx, domain.CategoryPaper, "2501.00001")
	require.NoError(t, err)
	require.False(t, posted)

	err = ledger.MarkPosted(ctx, domain.PostedRecord{
		Category:      domain.CategoryPaper,
		ContentID:     "2501.00001",
		SourceName:    "alphaxiv",
		Title:         "Attention Is Enough",
		TelegramMsgID: "101",
		TweetID:       "9001",
	})
	require.NoError(t, err)

	posted, err = ledger.HasBeenPosted(ctx, domain.CategoryPaper, "2501.00001")
	require.NoError(t, err)
	require.True(t, posted)
}

func TestCategoriesArePartitioned(t *testing.T) {
	ledger := openTestLedger(t)
	ctx := context.Background()

	err := ledger.MarkPosted(ctx, domain.PostedRecord{
		Category:  domain.CategoryBlog,
		ContentID: "shared-id",
		Title:     "Same id, different category",
	})
	require.NoError(t, err)

	posted, err := ledger.HasBeenPosted(ctx, domain.CategoryPaper, "shared-id")
	require.NoError(t, err)
	require.False(t, posted, "a blog record must not mark the paper id as posted")

	posted, err = ledger.HasBeenPosted(ctx, domain.CategoryTweet, "shared-id")
	require.NoError(t, err)
	require.False(t, posted)
}

func TestMarkPostedReplayKeepsDeliveryIDs(t *testing.T) {
	ledger := openTestLedger(t)
	ctx := context.Background()

	// First attempt delivered to telegram only.
	require.NoError(t, ledger.MarkPosted(ctx, domain.PostedRecord{
		Category:      domain.CategoryBlog,
		ContentID:     "https://openai.com/news/x",
		Title:         "Release notes",
		TelegramMsgID: "42",
	}))

	// Retry fills the missing tweet id; the empty telegram id must not
	// erase the one already recorded.
	require.NoError(t, ledger.MarkPosted(ctx, domain.PostedRecord{
		Category:  domain.CategoryBlog,
		ContentID: "https://openai.com/news/x",
		Title:     "Release notes",
		TweetID:   "777",
	}))

	var tgID, tweetID string
	err := ledger.db.QueryRow(
		`SELECT tg_msg_id, tweet_id FROM posted_blogs WHERE content_id = ?`,
		"https://openai.com/news/x").Scan(&tgID, &tweetID)
	require.NoError(t, err)
	require.Equal(t, "42", tgID)
	require.Equal(t, "777", tweetID)

	var count int
	require.NoError(t, ledger.db.QueryRow(`SELECT COUNT(*) FROM posted_blogs`).Scan(&count))
	require.Equal(t, 1, count)
}

func TestRecentTitlesNewestFirstAcrossCategories(t *testing.T) {
	ledger := openTestLedger(t)
	ctx := context.Background()

	now := time.Now().UTC()
	records := []domain.PostedRecord{
		{Category: domain.CategoryPaper, ContentID: "p1", Title: "Oldest paper", PostedAt: now.Add(-48 * time.Hour)},
		{Category: domain.CategoryBlog, ContentID: "b1", Title: "Middle blog", PostedAt: now.Add(-24 * time.Hour)},
		{Category: domain.CategoryTweet, ContentID: "t1", Title: "Newest tweet", PostedAt: now.Add(-1 * time.Hour)},
		{Category: domain.CategoryPaper, ContentID: "p2", Title: "Ancient paper", PostedAt: now.AddDate(0, 0, -30)},
	}
	for _, rec := range records {
		require.NoError(t, ledger.MarkPosted(ctx, rec))
	}

	titles, err := ledger.RecentTitles(ctx, 7, 40)
	require.NoError(t, err)
	require.Equal(t, []string{"Newest tweet", "Middle blog", "Oldest paper"}, titles)

	titles, err = ledger.RecentTitles(ctx, 7, 2)
	require.NoError(t, err)
	require.Equal(t, []string{"Newest tweet", "Middle blog"}, titles)
}

func TestRecordOracleDecisionNeverFailsPipeline(t *testing.T) {
	ledger := openTestLedger(t)
	ctx := context.Background()

	dec := domain.OracleDecision{
		ContentID: "2501.00002",
		Category:  domain.CategoryPaper,
		Score:     8.5,
		Decision:  "publish",
		Reason:    "novel architecture",
	}
	require.NoError(t, ledger.RecordOracleDecision(ctx, dec))

	// Replay with a new verdict overwrites the audit row.
	dec.Score = 4.0
	dec.Decision = "skip"
	require.NoError(t, ledger.RecordOracleDecision(ctx, dec))

	var score float64
	var decision string
	err := ledger.db.QueryRow(
		`SELECT score, decision FROM oracle_decisions WHERE content_id = ?`, dec.ContentID).
		Scan(&score, &decision)
	require.NoError(t, err)
	require.Equal(t, 4.0, score)
	require.Equal(t, "skip", decision)
}
