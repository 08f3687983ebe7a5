package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"ContentCurator/internal/ports"
)

// Client talks to OpenRouter through its OpenAI-compatible API.
type Client struct {
	client openai.Client
}

var _ ports.ChatClient = (*Client)(nil)

// NewClient builds a reusable client for the given key and base URL.
func NewClient(apiKey, baseURL string) *Client {
	client := openai.NewClient(
		option.WithAPIKey(apiKey),
		option.WithBaseURL(baseURL),
	)
	return &Client{client: client}
}

// Chat sends one completion request and returns the trimmed assistant text.
func (c *Client) Chat(ctx context.Context, req ports.ChatRequest) (string, error) {
	messages := make([]openai.ChatCompletionMessageParamUnion, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessageParamUnion{
			OfSystem: &openai.ChatCompletionSystemMessageParam{
				Content: openai.ChatCompletionSystemMessageParamContentUnion{
					OfString: openai.String(req.System),
				},
			},
		})
	}
	messages = append(messages, openai.ChatCompletionMessageParamUnion{
		OfUser: &openai.ChatCompletionUserMessageParam{
			Content: openai.ChatCompletionUserMessageParamContentUnion{
				OfString: openai.String(req.User),
			},
		},
	})

	response, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model:       req.Model,
		Messages:    messages,
		Temperature: openai.Float(req.Temperature),
		MaxTokens:   openai.Int(int64(req.MaxTokens)),
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("empty completion response")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

// ChatWithImages sends a text prompt plus local images to a vision model.
// Images are inlined as base64 data URLs, the way OpenRouter expects them.
func (c *Client) ChatWithImages(ctx context.Context, model, prompt string, imagePaths []string) (string, error) {
	parts := make([]openai.ChatCompletionContentPartUnionParam, 0, len(imagePaths)+1)
	parts = append(parts, openai.ChatCompletionContentPartUnionParam{
		OfText: &openai.ChatCompletionContentPartTextParam{Text: prompt},
	})

	for _, path := range imagePaths {
		raw, err := os.ReadFile(path)
		if err != nil {
			return "", fmt.Errorf("read image %s: %w", path, err)
		}
		dataURL := fmt.Sprintf("data:%s;base64,%s", mediaType(path), base64.StdEncoding.EncodeToString(raw))
		parts = append(parts, openai.ChatCompletionContentPartUnionParam{
			OfImageURL: &openai.ChatCompletionContentPartImageParam{
				ImageURL: openai.ChatCompletionContentPartImageImageURLParam{URL: dataURL},
			},
		})
	}

	response, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: model,
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfArrayOfContentParts: parts,
					},
				},
			},
		},
		Temperature: openai.Float(0.3),
		MaxTokens:   openai.Int(4096),
	})
	if err != nil {
		return "", fmt.Errorf("vision completion: %w", err)
	}
	if len(response.Choices) == 0 {
		return "", fmt.Errorf("empty vision response")
	}

	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}

func mediaType(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".jpg", ".jpeg":
		return "image/jpeg"
	case ".webp":
		return "image/webp"
	case ".gif":
		return "image/gif"
	default:
		return "image/png"
	}
}
