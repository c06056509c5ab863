package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/kiesman99/tilemark/internal/marker"
	"github.com/kiesman99/tilemark/pkg/tile"
)

// Replies sent by the bot
const (
	UsageText   = "Please send a photo with the caption '/wm [your_text]' to add a watermark."
	FailureText = "Sorry, I could not watermark that photo."
)

// API is the part of the Bot API the bot needs. *Client implements it.
type API interface {
	GetFile(ctx context.Context, fileID string) (*File, error)
	FileURL(filePath string) string
	SendMessage(ctx context.Context, req SendMessageRequest) (*Message, error)
	SendPhoto(ctx context.Context, chatID int64, photo []byte, caption string) (*Message, error)
	DeleteMessage(ctx context.Context, chatID int64, messageID int) error
	Redact(err error) error
}

// Marker watermarks an image. *marker.Marker implements it.
type Marker interface {
	Mark(ctx context.Context, opts *marker.Options) (*marker.Result, error)
}

// BotConfig configures a Bot
type BotConfig struct {
	Style          tile.Style
	DeleteOriginal bool
	Logger         logrus.FieldLogger
}

// Bot answers photo messages captioned with /wm by sending back a
// watermarked copy.
type Bot struct {
	api    API
	marker Marker
	cfg    BotConfig
}

// NewBot creates a bot
func NewBot(api API, m Marker, cfg BotConfig) *Bot {
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	return &Bot{api: api, marker: m, cfg: cfg}
}

// HandleUpdate processes one update. Updates without a message are ignored.
func (b *Bot) HandleUpdate(ctx context.Context, u *Update) error {
	if u == nil || u.Message == nil {
		return nil
	}
	msg := u.Message
	log := b.cfg.Logger.WithFields(logrus.Fields{
		"update_id": u.UpdateID,
		"chat_id":   msg.Chat.ID,
	})

	text, ok := ParseCommand(msg.Caption)
	if len(msg.Photo) == 0 || !ok {
		log.Debug("no watermark command, sending usage")
		return b.reply(ctx, msg.Chat.ID, UsageText)
	}

	if err := b.markPhoto(ctx, msg, text); err != nil {
		log.WithError(b.api.Redact(err)).Error("failed to watermark photo")
		if replyErr := b.reply(ctx, msg.Chat.ID, FailureText); replyErr != nil {
			log.WithError(replyErr).Warn("failed to send failure reply")
		}
		return err
	}
	log.WithField("text", text).Info("sent watermarked photo")

	if b.cfg.DeleteOriginal {
		if err := b.api.DeleteMessage(ctx, msg.Chat.ID, msg.MessageID); err != nil {
			log.WithError(err).Warn("failed to delete original message")
			return fmt.Errorf("delete original message: %w", err)
		}
	}
	return nil
}

func (b *Bot) markPhoto(ctx context.Context, msg *Message, text string) error {
	largest := msg.Photo[len(msg.Photo)-1]

	file, err := b.api.GetFile(ctx, largest.FileID)
	if err != nil {
		return fmt.Errorf("get file: %w", err)
	}
	if file.FilePath == "" {
		return errors.New("get file: no file_path in response")
	}

	result, err := b.marker.Mark(ctx, &marker.Options{
		SourceURL: b.api.FileURL(file.FilePath),
		Text:      text,
		Style:     b.cfg.Style,
	})
	if err != nil {
		return fmt.Errorf("mark: %w", err)
	}

	if _, err := b.api.SendPhoto(ctx, msg.Chat.ID, result.ImageData, ""); err != nil {
		return fmt.Errorf("send photo: %w", err)
	}
	return nil
}

func (b *Bot) reply(ctx context.Context, chatID int64, text string) error {
	_, err := b.api.SendMessage(ctx, SendMessageRequest{ChatID: chatID, Text: text})
	return err
}
