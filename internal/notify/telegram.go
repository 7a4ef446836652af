package notify

import (
	"context"
	"fmt"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/osahene/YOS-rentals/internal/config"
	"github.com/osahene/YOS-rentals/internal/events"
	"github.com/osahene/YOS-rentals/internal/models"
)

// TelegramNotifier pushes staff alerts to the operations chat. The bot is
// outbound-only; nobody books through it.
type TelegramNotifier struct {
	bot    *tgbotapi.BotAPI
	chatID int64
	logger *zerolog.Logger
}

func NewTelegramNotifier(cfg config.NotifyConfig, logger *zerolog.Logger) (*TelegramNotifier, error) {
	if cfg.TelegramToken == "" {
		return nil, fmt.Errorf("telegram token is empty")
	}
	bot, err := tgbotapi.NewBotAPI(cfg.TelegramToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create telegram bot: %w", err)
	}
	return &TelegramNotifier{bot: bot, chatID: cfg.TelegramChatID, logger: logger}, nil
}

func (t *TelegramNotifier) Channel() string { return models.NotifyTelegram }

func (t *TelegramNotifier) Send(ctx context.Context, task *models.NotifyTask) error {
	text := task.Body
	if task.Subject != "" {
		text = task.Subject + "\n" + text
	}
	msg := tgbotapi.NewMessage(t.chatID, text)
	if _, err := t.bot.Send(msg); err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	return nil
}

// SubscribeStaffAlerts wires booking events to the operations chat so
// staff see confirmations and cancellations as they happen.
func (t *TelegramNotifier) SubscribeStaffAlerts(bus *events.EventBus) {
	handler := func(event *events.Event) error {
		msg := tgbotapi.NewMessage(t.chatID, formatEvent(event))
		if _, err := t.bot.Send(msg); err != nil {
			t.logger.Error().Err(err).Str("event_type", event.Type).Msg("staff alert send failed")
		}
		return nil
	}
	for _, eventType := range []string{
		events.EventBookingCreated,
		events.EventBookingConfirmed,
		events.EventBookingCancelled,
		events.EventBookingNoShow,
		events.EventPaymentApplied,
	} {
		bus.Subscribe(eventType, handler)
	}
}

func formatEvent(event *events.Event) string {
	return fmt.Sprintf("[%s]\n%s", event.Type, string(event.Payload))
}
