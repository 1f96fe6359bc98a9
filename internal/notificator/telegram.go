package notificator

import (
	"context"
	"fmt"

	"github.com/go-telegram/bot"
	tgModels "github.com/go-telegram/bot/models"

	"github.com/mannapay/mannapay/pkg/logger"
)

// StatusFunc renders a short account summary for the /status command.
type StatusFunc func() string

type TelegramNotificator struct {
	logger *logger.Logger
	bot    *bot.Bot

	status StatusFunc
}

// NewTelegramNotificator connects the bot. Call Start to receive commands.
func NewTelegramNotificator(logger *logger.Logger, token string, status StatusFunc) (*TelegramNotificator, error) {
	provider := &TelegramNotificator{
		logger: logger.Named("telegram"),
		status: status,
	}
	opts := []bot.Option{
		bot.WithDefaultHandler(provider.handler),
	}

	b, err := bot.New(token, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	provider.bot = b

	return provider, nil
}

// Start polls for updates until ctx is done.
func (t *TelegramNotificator) Start(ctx context.Context) {
	go t.bot.Start(ctx)
}

func (t *TelegramNotificator) SendNotification(chatID, message string) error {
	params := &bot.SendMessageParams{
		ChatID: chatID,
		Text:   message,
	}
	if _, err := t.bot.SendMessage(context.Background(), params); err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	return nil
}

func (t *TelegramNotificator) handler(ctx context.Context, b *bot.Bot, update *tgModels.Update) {
	if update.Message == nil || update.Message.From == nil {
		return
	}
	t.logger.Debugw("telegram update", "username", update.Message.From.Username, "text", update.Message.Text)

	chatID := fmt.Sprint(update.Message.Chat.ID)
	reply := commandReply(update.Message.Text, chatID, t.status)
	if reply == "" {
		return
	}
	if err := t.SendNotification(chatID, reply); err != nil {
		t.logger.Errorw("failed to answer telegram command", "chat", chatID, "error", err)
	}
}

func commandReply(text, chatID string, status StatusFunc) string {
	switch text {
	case "/start":
		return "Set TELEGRAM_CHAT_ID=" + chatID + " to receive MannaPay notifications in this chat."
	case "/status":
		if status == nil {
			return "Status is not available."
		}
		return status()
	}
	return ""
}
