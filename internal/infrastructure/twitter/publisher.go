// Package twitter posts and retweets through the X API: tweet creation over
// the v2 endpoints, media upload over the v1.1 upload host, all requests
// signed with OAuth1 user context.
package twitter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"regexp"
	"strings"
	"sync"

	"ContentCurator/internal/ports"
)

const (
	apiBase    = "https://api.twitter.com"
	uploadURL  = "https://upload.twitter.com/1.1/media/upload.json"
	tweetLimit = 280
	// Every URL counts as a fixed-length t.co link regardless of its size.
	linkLength = 24
)

var statusIDExpr = regexp.MustCompile(`/status(?:es)?/(\d+)`)

// Publisher posts to the configured X account. It also implements
// ports.Reposter for mirroring monitored accounts' tweets.
type Publisher struct {
	client *http.Client
	logger *slog.Logger

	mu     sync.Mutex
	selfID string
}

var (
	_ ports.ChannelPublisher = (*Publisher)(nil)
	_ ports.Reposter         = (*Publisher)(nil)
)

// NewPublisher takes an OAuth1-signed http client. A nil client yields a
// publisher whose every call fails, which the pipeline treats as a missed
// delivery rather than a fatal condition.
func NewPublisher(client *http.Client, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

// Publish creates a tweet, truncating the text to fit the 280-character
// limit with the link's fixed t.co budget reserved. Returns the tweet id.
func (p *Publisher) Publish(ctx context.Context, text, imagePath, link string) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("twitter credentials not configured")
	}

	body := composeTweet(text, link)

	var mediaIDs []string
	if imagePath != "" {
		if _, err := os.Stat(imagePath); err == nil {
			id, err := p.uploadMedia(ctx, imagePath)
			if err != nil {
				p.logger.Warn("media upload failed, tweeting text-only", "image", imagePath, "error", err)
			} else {
				mediaIDs = append(mediaIDs, id)
			}
		}
	}

	payload := map[string]any{"text": body}
	if len(mediaIDs) > 0 {
		payload["media"] = map[string]any{"media_ids": mediaIDs}
	}

	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := p.doJSON(ctx, http.MethodPost, apiBase+"/2/tweets", payload, &out); err != nil {
		return "", fmt.Errorf("create tweet: %w", err)
	}

	p.logger.Info("tweet posted", "tweet_id", out.Data.ID)
	return out.Data.ID, nil
}

// Repost retweets the tweet behind originalURL and returns the source
// tweet id.
func (p *Publisher) Repost(ctx context.Context, originalURL string) (string, error) {
	if p.client == nil {
		return "", fmt.Errorf("twitter credentials not configured")
	}

	m := statusIDExpr.FindStringSubmatch(originalURL)
	if m == nil {
		return "", fmt.Errorf("no tweet id in %q", originalURL)
	}
	tweetID := m[1]

	selfID, err := p.lookupSelf(ctx)
	if err != nil {
		return "", fmt.Errorf("resolve own account: %w", err)
	}

	url := fmt.Sprintf("%s/2/users/%s/retweets", apiBase, selfID)
	var out struct {
		Data struct {
			Retweeted bool `json:"retweeted"`
		} `json:"data"`
	}
	if err := p.doJSON(ctx, http.MethodPost, url, map[string]any{"tweet_id": tweetID}, &out); err != nil {
		return "", fmt.Errorf("retweet %s: %w", tweetID, err)
	}

	p.logger.Info("tweet reposted", "tweet_id", tweetID)
	return tweetID, nil
}

// lookupSelf resolves and caches the authenticated account's user id.
func (p *Publisher) lookupSelf(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.selfID != "" {
		return p.selfID, nil
	}

	var out struct {
		Data struct {
			ID string `json:"id"`
		} `json:"data"`
	}
	if err := p.doJSON(ctx, http.MethodGet, apiBase+"/2/users/me", nil, &out); err != nil {
		return "", err
	}
	if out.Data.ID == "" {
		return "", fmt.Errorf("empty user id in /2/users/me response")
	}

	p.selfID = out.Data.ID
	return p.selfID, nil
}

// uploadMedia pushes the image through the v1.1 upload endpoint and returns
// the media id for attaching to a tweet.
func (p *Publisher) uploadMedia(ctx context.Context, imagePath string) (string, error) {
	f, err := os.Open(imagePath)
	if err != nil {
		return "", err
	}
	defer f.Close()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("media", imagePath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return "", err
	}
	if err := mw.Close(); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uploadURL, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("upload returned %s: %s", resp.Status, raw)
	}

	var out struct {
		MediaIDString string `json:"media_id_string"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.MediaIDString == "" {
		return "", fmt.Errorf("no media id in upload response")
	}
	return out.MediaIDString, nil
}

func (p *Publisher) doJSON(ctx context.Context, method, url string, payload, out any) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return err
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("%s %s returned %s: %s", method, url, resp.Status, raw)
	}

	return json.NewDecoder(resp.Body).Decode(out)
}

// composeTweet fits text plus an optional trailing link into the tweet
// limit, truncating the text with an ellipsis when needed.
func composeTweet(text, link string) string {
	budget := tweetLimit
	if link != "" {
		budget -= linkLength + 1 // newline before the link
	}

	runes := []rune(strings.TrimSpace(text))
	if len(runes) > budget {
		runes = runes[:budget-1]
		text = strings.TrimRight(string(runes), " \n") + "…"
	} else {
		text = string(runes)
	}

	if link != "" {
		return text + "\n" + link
	}
	return text
}
