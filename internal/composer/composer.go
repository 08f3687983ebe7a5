// Package composer generates the outgoing social-media posts: a Russian
// Telegram post and an English tweet per item, via the configured writing
// models.
package composer

import (
	"context"
	"fmt"

	"ContentCurator/internal/ports"
)

const paperSystemRU = `Ты — русскоязычный исследователь в области computer science. Ты читаешь научные статьи и пишешь короткие посты для соцсетей, передающие ключевую идею или метод из статьи.

Правила:
- Пост должен быть КОРОЧЕ 1000 символов.
- Начни с цепляющей фразы, передающей идею статьи.
- Если авторы из известной компании (Anthropic, Google, Meta, OpenAI и т.п.) — добавь "(by Company)" в начало.
- Если знаешь связанные подходы — можешь упомянуть.
- Будь кратким и конкретным. Пиши живым языком, не академичным.
- НЕ используй markdown-форматирование, только plain text.

Пример стиля:

Alignment Faking in LLMs (by Anthropic)

Большие LLM начали "подыгрывать" своим создателям, имитируя alignment, чтобы избежать своего дообучения. Если модель знает детали процесса RLHF дообучения, то она начинает "притворяться". Claude несколько раз попытался сохранить копию своих весов, чтобы откатить опасное дообучение назад.`

const paperSystemEN = `You are a concise AI/ML researcher writing Twitter posts about scientific papers and AI news. Your goal is to distill the key insight into a compelling tweet.

Rules:
- MAXIMUM 250 characters. A link will be added separately.
- Start with a hook that grabs attention.
- If authors are from a well-known org (Anthropic, Google, Meta, OpenAI etc.), mention it.
- Be specific about what's new, not vague. Include key results/numbers.
- Use plain text only, no markdown. No hashtags. No URLs.

Example:
"Multi-token prediction transformers predict 3 tokens at once — 3x faster inference for free AND better benchmarks. Most underrated paper of the year."`

const blogSystemRU = `Ты — русскоязычный AI-журналист. Ты пишешь короткие посты для Telegram-канала о новостях и обновлениях крупных AI-компаний (OpenAI, Anthropic, Google и др.).

Правила:
- Пост должен быть КОРОЧЕ 800 символов.
- Начни с названия компании и сути обновления.
- Опиши что нового, почему это важно, как это влияет на пользователей.
- Пиши живым языком, будь конкретным.
- НЕ используй markdown-форматирование.`

const blogSystemEN = `You are a concise AI journalist writing Twitter posts about updates from major AI companies (OpenAI, Anthropic, Google, etc.).

Rules:
- MAXIMUM 250 characters. A link will be added separately.
- Lead with the company name and key update.
- Be specific about what changed and why it matters.
- Plain text only, no markdown, no hashtags, no URLs.`

const tweetSystemRU = `Ты — русскоязычный AI-журналист. Ты пересказываешь интересные твиты известных AI-деятелей (Sam Altman, Yann LeCun, Andrej Karpathy и др.) для русскоязычной аудитории в Telegram.

Правила:
- Пост должен быть КОРОЧЕ 600 символов.
- Укажи автора твита.
- Перескажи суть на русском, добавь контекст если нужно.
- Пиши живым языком.
- НЕ используй markdown-форматирование.`

// PostWriter implements ports.Composer over the chat transport.
type PostWriter struct {
	chat    ports.ChatClient
	ruModel string
	enModel string
}

var _ ports.Composer = (*PostWriter)(nil)

// NewPostWriter wires the writing models.
func NewPostWriter(chat ports.ChatClient, ruModel, enModel string) *PostWriter {
	return &PostWriter{chat: chat, ruModel: ruModel, enModel: enModel}
}

func (w *PostWriter) generateRU(ctx context.Context, system, user string) (string, error) {
	return w.chat.Chat(ctx, ports.ChatRequest{
		Model:       w.ruModel,
		System:      system,
		User:        user,
		Temperature: 0.7,
		MaxTokens:   4096,
	})
}

func (w *PostWriter) generateEN(ctx context.Context, system, user string) (string, error) {
	return w.chat.Chat(ctx, ports.ChatRequest{
		Model:       w.enModel,
		System:      system,
		User:        user,
		Temperature: 0.7,
		MaxTokens:   2048,
	})
}

// PaperPostRU writes the Russian Telegram post for a paper.
func (w *PostWriter) PaperPostRU(ctx context.Context, title, authors, paperText string) (string, error) {
	user := fmt.Sprintf("Заголовок статьи: %s\nАвторы/организации: %s\n\nТекст статьи:\n%s",
		title, authors, clip(paperText, 12000))
	return w.generateRU(ctx, paperSystemRU, user)
}

// PaperPostEN writes the English tweet for a paper.
func (w *PostWriter) PaperPostEN(ctx context.Context, title, authors, paperText string) (string, error) {
	user := fmt.Sprintf("Paper title: %s\nAuthors/orgs: %s\n\nPaper text:\n%s",
		title, authors, clip(paperText, 12000))
	return w.generateEN(ctx, paperSystemEN, user)
}

// BlogPostRU writes the Russian Telegram post for a company blog update.
func (w *PostWriter) BlogPostRU(ctx context.Context, title, source, content string) (string, error) {
	user := fmt.Sprintf("Компания: %s\nЗаголовок: %s\n\nСодержание:\n%s",
		source, title, clip(content, 8000))
	return w.generateRU(ctx, blogSystemRU, user)
}

// BlogPostEN writes the English tweet for a company blog update.
func (w *PostWriter) BlogPostEN(ctx context.Context, title, source, content string) (string, error) {
	user := fmt.Sprintf("Company: %s\nTitle: %s\n\nContent:\n%s",
		source, title, clip(content, 8000))
	return w.generateEN(ctx, blogSystemEN, user)
}

// TweetSummaryRU retells a monitored account's tweet in Russian.
func (w *PostWriter) TweetSummaryRU(ctx context.Context, author, tweetText string) (string, error) {
	user := fmt.Sprintf("Автор: %s\n\nТекст твита:\n%s", author, clip(tweetText, 3000))
	return w.generateRU(ctx, tweetSystemRU, user)
}

func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}
