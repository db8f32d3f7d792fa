package notify

import (
	"context"
	"fmt"
	"strconv"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/platekit/cooksession/internal/domain"
	"github.com/platekit/cooksession/internal/logger"
)

// Compile-time interface check.
var _ domain.NotificationSender = (*TelegramSender)(nil)

// TelegramSender delivers notifications as Telegram messages. User IDs
// are Telegram chat IDs in decimal form; clients register sessions with
// the chat ID they want pinged.
type TelegramSender struct {
	api *tgbotapi.BotAPI
	log *logger.Logger
}

// NewTelegramSender creates a sender authenticated with the bot token.
func NewTelegramSender(token string, log *logger.Logger) (*TelegramSender, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("creating telegram bot: %w", err)
	}
	log.Info("telegram sender ready: @%s", api.Self.UserName)
	return &TelegramSender{api: api, log: log}, nil
}

// Send pushes the notification as a single message.
func (t *TelegramSender) Send(ctx context.Context, userID string, n domain.Notification) error {
	chatID, err := strconv.ParseInt(userID, 10, 64)
	if err != nil {
		return fmt.Errorf("user %q is not a telegram chat id: %w", userID, err)
	}

	msg := tgbotapi.NewMessage(chatID, n.Title+"\n\n"+n.Body)
	if _, err := t.api.Send(msg); err != nil {
		return fmt.Errorf("sending telegram message: %w", err)
	}
	return nil
}
