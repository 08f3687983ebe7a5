package storage

import (
	"context"
	"database/sql"
	_ "embed"
	"fmt"
	"log/slog"
	"time"

	sq "github.com/Masterminds/squirrel"
	_ "github.com/mattn/go-sqlite3"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

//go:embed schema.sql
var schema string

// SQLiteLedger persists publish decisions into a local SQLite database. One
// table per category keeps ids namespaced, so a paper id and a blog URL can
// never collide.
type SQLiteLedger struct {
	db     *sql.DB
	logger *slog.Logger
}

var _ ports.Ledger = (*SQLiteLedger)(nil)

// Open creates (or opens) the ledger database and initializes the schema.
func Open(path string, logger *slog.Logger) (*SQLiteLedger, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("init ledger schema: %w", err)
	}

	return &SQLiteLedger{db: db, logger: logger}, nil
}

// Close releases the underlying database handle.
func (l *SQLiteLedger) Close() error {
	return l.db.Close()
}

func tableFor(category domain.Category) string {
	switch category {
	case domain.CategoryPaper:
		return "posted_papers"
	case domain.CategoryBlog:
		return "posted_blogs"
	default:
		return "posted_tweets"
	}
}

// HasBeenPosted reports whether the item was already decided in its category
// partition. Callers must treat an error as "unknown" and skip the item.
func (l *SQLiteLedger) HasBeenPosted(ctx context.Context, category domain.Category, contentID string) (bool, error) {
	query, args, err := sq.Select("1").
		From(tableFor(category)).
		Where(sq.Eq{"content_id": contentID}).
		Limit(1).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("build posted query: %w", err)
	}

	var one int
	err = l.db.QueryRowContext(ctx, query, args...).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query %s: %w", tableFor(category), err)
	}
	return true, nil
}

// MarkPosted upserts the record atomically. A replay with the same key keeps
// whichever delivery ids are already known and fills in the missing ones, so a
// retried run after partial delivery never duplicates the row.
func (l *SQLiteLedger) MarkPosted(ctx context.Context, rec domain.PostedRecord) error {
	postedAt := rec.PostedAt
	if postedAt.IsZero() {
		postedAt = time.Now().UTC()
	}

	query, args, err := sq.Insert(tableFor(rec.Category)).
		Columns("content_id", "source", "title", "posted_at", "tg_msg_id", "tweet_id").
		Values(rec.ContentID, rec.SourceName, rec.Title, postedAt.UTC().Format(time.RFC3339), rec.TelegramMsgID, rec.TweetID).
		Suffix(`ON CONFLICT (content_id) DO UPDATE SET
			source    = excluded.source,
			title     = excluded.title,
			tg_msg_id = CASE WHEN excluded.tg_msg_id <> '' THEN excluded.tg_msg_id ELSE tg_msg_id END,
			tweet_id  = CASE WHEN excluded.tweet_id <> '' THEN excluded.tweet_id ELSE tweet_id END`).
		ToSql()
	if err != nil {
		return fmt.Errorf("build posted upsert: %w", err)
	}

	if _, err := l.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("upsert %s %s: %w", tableFor(rec.Category), rec.ContentID, err)
	}
	return nil
}

// RecentTitles returns titles published within the lookback window, newest
// first, across all categories. Used only as judge context for dedup.
func (l *SQLiteLedger) RecentTitles(ctx context.Context, withinDays, limit int) ([]string, error) {
	cutoff := time.Now().UTC().AddDate(0, 0, -withinDays).Format(time.RFC3339)

	query := `SELECT title, posted_at FROM posted_papers WHERE posted_at >= ? AND title <> ''
		UNION ALL SELECT title, posted_at FROM posted_blogs WHERE posted_at >= ? AND title <> ''
		UNION ALL SELECT title, posted_at FROM posted_tweets WHERE posted_at >= ? AND title <> ''
		ORDER BY posted_at DESC LIMIT ?`

	rows, err := l.db.QueryContext(ctx, query, cutoff, cutoff, cutoff, limit)
	if err != nil {
		return nil, fmt.Errorf("query recent titles: %w", err)
	}
	defer rows.Close()

	var titles []string
	for rows.Next() {
		var title, postedAt string
		if err := rows.Scan(&title, &postedAt); err != nil {
			return nil, fmt.Errorf("scan title: %w", err)
		}
		titles = append(titles, title)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return titles, nil
}

// RecordOracleDecision writes the audit row. Failures are logged and
// swallowed: an unavailable audit trail must never stop the pipeline.
func (l *SQLiteLedger) RecordOracleDecision(ctx context.Context, dec domain.OracleDecision) error {
	checkedAt := dec.CheckedAt
	if checkedAt.IsZero() {
		checkedAt = time.Now().UTC()
	}

	query, args, err := sq.Insert("oracle_decisions").
		Columns("content_id", "category", "score", "decision", "reason", "checked_at").
		Values(dec.ContentID, dec.Category.String(), dec.Score, dec.Decision, dec.Reason, checkedAt.UTC().Format(time.RFC3339)).
		Suffix(`ON CONFLICT (content_id) DO UPDATE SET
			category   = excluded.category,
			score      = excluded.score,
			decision   = excluded.decision,
			reason     = excluded.reason,
			checked_at = excluded.checked_at`).
		ToSql()
	if err == nil {
		_, err = l.db.ExecContext(ctx, query, args...)
	}
	if err != nil && l.logger != nil {
		l.logger.Warn("oracle decision audit write failed", "content_id", dec.ContentID, "error", err)
	}
	return nil
}
