package email

import (
	"context"
	"errors"
	"fmt"

	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
)

// ResendSender delivers through the Resend API. Rate limit errors are
// surfaced without retrying.
type ResendSender struct {
	client *resend.Client
	logger zerolog.Logger
}

func NewResendSender(client *resend.Client, logger zerolog.Logger) *ResendSender {
	return &ResendSender{client: client, logger: logger}
}

func (s *ResendSender) Provider() string { return "resend" }

func (s *ResendSender) Send(ctx context.Context, msg Message) (string, error) {
	if s.client == nil {
		return "", fmt.Errorf("resend client not initialized")
	}
	if err := msg.Validate(); err != nil {
		return "", err
	}

	params := &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
		ReplyTo: msg.ReplyTo,
	}

	sent, err := s.client.Emails.SendWithContext(ctx, params)
	if err != nil {
		var rateLimitErr *resend.RateLimitError
		if errors.As(err, &rateLimitErr) {
			s.logger.Warn().
				Str("limit", rateLimitErr.Limit).
				Str("remaining", rateLimitErr.Remaining).
				Str("reset", rateLimitErr.Reset).
				Msg("resend rate limit exceeded")
			return "", fmt.Errorf("email rate limit exceeded (limit: %s, resets in: %s seconds): %w",
				rateLimitErr.Limit, rateLimitErr.Reset, err)
		}
		return "", fmt.Errorf("resend API error: %w", err)
	}

	s.logger.Info().
		Str("email_id", sent.Id).
		Str("to", msg.To).
		Msg("email sent via Resend")
	return sent.Id, nil
}
