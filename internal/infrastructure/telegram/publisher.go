package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"ContentCurator/internal/ports"
)

const (
	maxCaptionChars = 1024
	maxMessageChars = 4096
)

// Publisher posts to the public channel via the Telegram bot API.
type Publisher struct {
	bot       *tgbotapi.BotAPI
	channelID string
	logger    *slog.Logger
}

var _ ports.ChannelPublisher = (*Publisher)(nil)

// NewPublisher connects the bot. Missing credentials are an error; the caller
// decides whether to run without the channel.
func NewPublisher(token, channelID string, logger *slog.Logger) (*Publisher, error) {
	if token == "" || channelID == "" {
		return nil, fmt.Errorf("telegram publisher misconfigured")
	}
	bot, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram bot init: %w", err)
	}
	return &Publisher{bot: bot, channelID: channelID, logger: logger}, nil
}

// Publish sends the post, as a photo with caption when an image is present.
// Returns the channel message id.
func (p *Publisher) Publish(ctx context.Context, text, imagePath, link string) (string, error) {
	caption := text
	if link != "" {
		caption += "\n\n" + link
	}

	if imagePath != "" {
		if _, err := os.Stat(imagePath); err == nil {
			return p.sendPhoto(caption, imagePath)
		}
	}
	return p.sendText(caption)
}

func (p *Publisher) sendPhoto(caption, imagePath string) (string, error) {
	photo := tgbotapi.NewPhotoToChannel("", tgbotapi.FilePath(imagePath))
	photo.BaseChat = p.baseChat()
	photo.Caption = clipRunes(caption, maxCaptionChars)

	msg, err := p.bot.Send(photo)
	if err != nil {
		return "", fmt.Errorf("telegram sendPhoto: %w", err)
	}
	p.logger.Info("telegram photo sent", "message_id", msg.MessageID)
	return strconv.Itoa(msg.MessageID), nil
}

func (p *Publisher) sendText(text string) (string, error) {
	message := tgbotapi.NewMessageToChannel("", clipRunes(text, maxMessageChars))
	message.BaseChat = p.baseChat()

	msg, err := p.bot.Send(message)
	if err != nil {
		return "", fmt.Errorf("telegram sendMessage: %w", err)
	}
	p.logger.Info("telegram message sent", "message_id", msg.MessageID)
	return strconv.Itoa(msg.MessageID), nil
}

func (p *Publisher) baseChat() tgbotapi.BaseChat {
	chat := tgbotapi.BaseChat{DisableNotification: true}
	if strings.HasPrefix(p.channelID, "@") {
		chat.ChannelUsername = p.channelID
	} else if id, err := strconv.ParseInt(p.channelID, 10, 64); err == nil {
		chat.ChatID = id
	} else {
		chat.ChannelUsername = p.channelID
	}
	return chat
}

// Alerter sends operator error/status messages to the private error chat.
// All sends are best-effort.
type Alerter struct {
	bot    *tgbotapi.BotAPI
	chatID string
	logger *slog.Logger
}

var _ ports.Alerter = (*Alerter)(nil)

// NewAlerter reuses the publisher's bot when available; bot may be nil, in
// which case alerts go to the log only.
func NewAlerter(bot *tgbotapi.BotAPI, chatID string, logger *slog.Logger) *Alerter {
	return &Alerter{bot: bot, chatID: chatID, logger: logger}
}

// Bot exposes the underlying bot so the alerter can share its connection.
func (p *Publisher) Bot() *tgbotapi.BotAPI {
	return p.bot
}

// SendError logs and forwards an error alert.
func (a *Alerter) SendError(ctx context.Context, text string) {
	a.logger.Error(text)
	a.send("[ContentCurator Error] " + text)
}

// SendStatus logs and forwards an informational status message.
func (a *Alerter) SendStatus(ctx context.Context, text string) {
	a.logger.Info(text)
	a.send("[ContentCurator] " + text)
}

func (a *Alerter) send(text string) {
	if a.bot == nil || a.chatID == "" {
		return
	}

	message := tgbotapi.NewMessageToChannel("", clipRunes(text, maxMessageChars))
	chat := tgbotapi.BaseChat{}
	if strings.HasPrefix(a.chatID, "@") {
		chat.ChannelUsername = a.chatID
	} else if id, err := strconv.ParseInt(a.chatID, 10, 64); err == nil {
		chat.ChatID = id
	} else {
		chat.ChannelUsername = a.chatID
	}
	message.BaseChat = chat

	if _, err := a.bot.Send(message); err != nil {
		a.logger.Warn("operator notification failed", "error", err)
	}
}

func clipRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
