// Package notify delivers tender messages to users.
package notify

import (
	"context"
	stderrors "errors"
	"fmt"
	"net/http"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"tender-notifier/internal/common/errors"
	"tender-notifier/internal/common/logging"
	"tender-notifier/internal/tenders"
)

// Telegram sends messages through the Bot API with HTML formatting and
// link previews disabled.
type Telegram struct {
	bot    *tgbotapi.BotAPI
	logger logging.Logger
}

// NewTelegram authenticates the bot. endpoint overrides the API URL
// template (tgbotapi.APIEndpoint when empty); client may be nil.
func NewTelegram(token, endpoint string, client *http.Client) (*Telegram, error) {
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	bot, err := tgbotapi.NewBotAPIWithClient(token, endpoint, client)
	if err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("telegram bot authentication failed: %v", err))
	}
	t := &Telegram{bot: bot, logger: logging.Component("telegram")}
	t.logger.Info("Telegram bot authorized", logging.String("username", bot.Self.UserName))
	return t, nil
}

func buildMessage(msg tenders.Message) tgbotapi.MessageConfig {
	out := tgbotapi.NewMessage(msg.UserID, msg.Text)
	out.ParseMode = tgbotapi.ModeHTML
	out.DisableWebPagePreview = true
	if msg.Button != nil {
		out.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(
			tgbotapi.NewInlineKeyboardRow(
				tgbotapi.NewInlineKeyboardButtonData(msg.Button.Text, msg.Button.Data),
			),
		)
	}
	return out
}

// Send delivers msg. A 429 reply becomes a flood-control error carrying
// the wait requested by Telegram.
func (t *Telegram) Send(ctx context.Context, msg tenders.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	_, err := t.bot.Send(buildMessage(msg))
	return classify(err)
}

func classify(err error) error {
	if err == nil {
		return nil
	}
	var apiErr *tgbotapi.Error
	if stderrors.As(err, &apiErr) {
		if apiErr.RetryAfter > 0 {
			return errors.FloodControlError(time.Duration(apiErr.RetryAfter)*time.Second, err)
		}
		if apiErr.Code >= 500 {
			return errors.TransientError("telegram server error", err)
		}
		return errors.PermanentError(fmt.Sprintf("telegram rejected message: %s", apiErr.Message), err)
	}
	return errors.TransientError("telegram request failed", err)
}

var _ tenders.Notifier = (*Telegram)(nil)
