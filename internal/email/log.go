package email

import (
	"context"

	"github.com/missionconf/server/internal/domain/ids"
	"github.com/rs/zerolog"
)

// LogSender stands in for a provider when email delivery is disabled.
type LogSender struct {
	logger zerolog.Logger
}

func NewLogSender(logger zerolog.Logger) *LogSender {
	return &LogSender{logger: logger}
}

func (s *LogSender) Provider() string { return "log" }

func (s *LogSender) Send(_ context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}
	id := "log-" + ids.MustULID()
	s.logger.Info().
		Str("email_id", id).
		Str("to", msg.To).
		Str("reply_to", msg.ReplyTo).
		Str("subject", msg.Subject).
		Msg("email service disabled, notification logged only")
	return id, nil
}
