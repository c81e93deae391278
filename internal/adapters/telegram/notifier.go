package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"golang.org/x/time/rate"

	"matchpulse/internal/domain/analytics"
	"matchpulse/pkg/errors"
	"matchpulse/pkg/logger"
)

// Compile-time check
var _ analytics.Alerter = (*Notifier)(nil)

// Notifier sends operator alerts to a Telegram chat. Outbound messages
// are rate limited to stay inside the Bot API budget.
type Notifier struct {
	api     *tgbotapi.BotAPI
	chatID  int64
	limiter *rate.Limiter
	log     *logger.Logger
}

// Config contains Telegram notifier configuration
type Config struct {
	Token  string
	ChatID int64
}

// NewNotifier creates a Telegram-backed alerter
func NewNotifier(cfg Config) (*Notifier, error) {
	if cfg.Token == "" {
		return nil, errors.Wrapf(errors.ErrInvalidInput, "telegram bot token is required")
	}

	api, err := tgbotapi.NewBotAPI(cfg.Token)
	if err != nil {
		return nil, errors.Wrap(err, "create telegram bot")
	}

	return &Notifier{
		api:     api,
		chatID:  cfg.ChatID,
		limiter: rate.NewLimiter(rate.Limit(1), 5), // 1 msg/sec, burst 5
		log:     logger.Get().With("component", "telegram_notifier"),
	}, nil
}

// Alert sends a plain-text alert message
func (n *Notifier) Alert(ctx context.Context, message string) error {
	if err := n.limiter.Wait(ctx); err != nil {
		return errors.Wrap(err, "telegram rate limiter")
	}

	msg := tgbotapi.NewMessage(n.chatID, message)
	if _, err := n.api.Send(msg); err != nil {
		n.log.Errorf("Failed to send telegram alert: %v", err)
		return errors.Wrap(err, "send telegram alert")
	}
	return nil
}
