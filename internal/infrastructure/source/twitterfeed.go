package source

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"ContentCurator/internal/domain"
	"ContentCurator/internal/ports"
)

const (
	twitterAPIBase    = "https://api.twitter.com/2"
	maxTweetsPerUser  = 10
	minTweetTextChars = 30
)

// TwitterSource reads recent tweets from monitored accounts via the X API v2.
// The HTTP client must already sign requests (OAuth1 transport).
type TwitterSource struct {
	client   *http.Client
	accounts []string
	logger   *slog.Logger
}

var _ ports.ContentSource = (*TwitterSource)(nil)

// NewTwitterSource wires the signed client and monitored handles.
func NewTwitterSource(client *http.Client, accounts []string, logger *slog.Logger) *TwitterSource {
	return &TwitterSource{client: client, accounts: accounts, logger: logger}
}

// Fetch collects fresh tweets across all monitored accounts. A single
// account failing is logged and skipped.
func (s *TwitterSource) Fetch(ctx context.Context, constraints ports.FetchConstraints) ([]domain.ContentItem, error) {
	if s.client == nil {
		s.logger.Warn("twitter client not configured, skipping tweet monitoring")
		return nil, nil
	}

	cutoff := time.Time{}
	if constraints.MaxAge > 0 {
		cutoff = time.Now().UTC().Add(-constraints.MaxAge)
	}

	var items []domain.ContentItem
	for _, username := range s.accounts {
		tweets, err := s.fetchUserTweets(ctx, username, cutoff)
		if err != nil {
			s.logger.Error("timeline fetch failed", "user", username, "error", err)
			continue
		}
		s.logger.Info("timeline fetched", "user", username, "tweets", len(tweets))
		items = append(items, tweets...)
	}
	return items, nil
}

type userResponse struct {
	Data struct {
		ID string `json:"id"`
	} `json:"data"`
}

type timelineResponse struct {
	Data []struct {
		ID            string    `json:"id"`
		Text          string    `json:"text"`
		CreatedAt     time.Time `json:"created_at"`
		PublicMetrics struct {
			LikeCount int `json:"like_count"`
		} `json:"public_metrics"`
	} `json:"data"`
}

func (s *TwitterSource) fetchUserTweets(ctx context.Context, username string, cutoff time.Time) ([]domain.ContentItem, error) {
	var user userResponse
	if err := s.get(ctx, twitterAPIBase+"/users/by/username/"+url.PathEscape(username), nil, &user); err != nil {
		return nil, fmt.Errorf("look up @%s: %w", username, err)
	}
	if user.Data.ID == "" {
		return nil, fmt.Errorf("user @%s not found", username)
	}

	query := url.Values{}
	query.Set("max_results", strconv.Itoa(maxTweetsPerUser))
	query.Set("tweet.fields", "created_at,text,public_metrics")
	query.Set("exclude", "retweets,replies")

	var timeline timelineResponse
	if err := s.get(ctx, twitterAPIBase+"/users/"+user.Data.ID+"/tweets", query, &timeline); err != nil {
		return nil, fmt.Errorf("timeline of @%s: %w", username, err)
	}

	var items []domain.ContentItem
	for _, tweet := range timeline.Data {
		if !cutoff.IsZero() && !tweet.CreatedAt.IsZero() && tweet.CreatedAt.Before(cutoff) {
			continue
		}
		if len(tweet.Text) < minTweetTextChars {
			continue
		}

		tweetURL := fmt.Sprintf("https://x.com/%s/status/%s", username, tweet.ID)
		items = append(items, domain.ContentItem{
			ContentID:   tweetURL,
			Category:    domain.CategoryTweet,
			SourceName:  "twitter:" + username,
			Title:       clipRunes(tweet.Text, 200),
			Summary:     tweet.Text,
			URL:         tweetURL,
			Likes:       tweet.PublicMetrics.LikeCount,
			Authors:     []string{"@" + username},
			PublishedAt: tweet.CreatedAt,
		})
	}
	return items, nil
}

func (s *TwitterSource) get(ctx context.Context, endpoint string, query url.Values, v any) error {
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("twitter returned %s", resp.Status)
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
