package notify

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/osahene/YOS-rentals/internal/config"
	"github.com/osahene/YOS-rentals/internal/models"
)

// EmailSender renders and dispatches customer email. Until an SMTP or
// provider integration is configured it records the send in the log; the
// worker persists the outcome to notification_logs either way.
type EmailSender struct {
	cfg    config.NotifyConfig
	logger *zerolog.Logger
}

func NewEmailSender(cfg config.NotifyConfig, logger *zerolog.Logger) *EmailSender {
	return &EmailSender{cfg: cfg, logger: logger}
}

func (e *EmailSender) Channel() string { return models.NotifyEmail }

func (e *EmailSender) Send(ctx context.Context, task *models.NotifyTask) error {
	if task.Recipient == "" {
		return fmt.Errorf("email task has no recipient")
	}
	e.logger.Info().
		Str("to", task.Recipient).
		Str("from", e.cfg.CompanyEmail).
		Str("subject", task.Subject).
		Msg("email dispatched")
	return nil
}

// SMSSender dispatches customer SMS. Same logging contract as EmailSender.
type SMSSender struct {
	cfg    config.NotifyConfig
	logger *zerolog.Logger
}

func NewSMSSender(cfg config.NotifyConfig, logger *zerolog.Logger) *SMSSender {
	return &SMSSender{cfg: cfg, logger: logger}
}

func (s *SMSSender) Channel() string { return models.NotifySMS }

func (s *SMSSender) Send(ctx context.Context, task *models.NotifyTask) error {
	if task.Recipient == "" {
		return fmt.Errorf("sms task has no recipient")
	}
	if len(task.Body) > 480 {
		return fmt.Errorf("sms body too long: %d chars", len(task.Body))
	}
	s.logger.Info().
		Str("to", task.Recipient).
		Str("sender", s.cfg.CompanyName).
		Msg("sms dispatched")
	return nil
}
