package email

import (
	"context"
	"fmt"
	"net/mail"

	"github.com/rs/zerolog"
	"github.com/sendgrid/rest"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// sendGridClient is the part of *sendgrid.Client the sender uses.
type sendGridClient interface {
	SendWithContext(ctx context.Context, email *sgmail.SGMailV3) (*rest.Response, error)
}

type SendGridSender struct {
	client sendGridClient
	logger zerolog.Logger
}

func NewSendGridSender(client sendGridClient, logger zerolog.Logger) *SendGridSender {
	return &SendGridSender{client: client, logger: logger}
}

func (s *SendGridSender) Provider() string { return "sendgrid" }

func (s *SendGridSender) Send(ctx context.Context, msg Message) (string, error) {
	if err := msg.Validate(); err != nil {
		return "", err
	}

	from, err := mail.ParseAddress(msg.From)
	if err != nil {
		return "", fmt.Errorf("%w: from: %v", ErrInvalidMessage, err)
	}
	to, err := mail.ParseAddress(msg.To)
	if err != nil {
		return "", fmt.Errorf("%w: to: %v", ErrInvalidMessage, err)
	}

	m := sgmail.NewSingleEmail(
		sgmail.NewEmail(from.Name, from.Address),
		msg.Subject,
		sgmail.NewEmail(to.Name, to.Address),
		msg.Text,
		msg.HTML,
	)
	if msg.ReplyTo != "" {
		m.SetReplyTo(sgmail.NewEmail("", msg.ReplyTo))
	}

	resp, err := s.client.SendWithContext(ctx, m)
	if err != nil {
		return "", fmt.Errorf("sendgrid API error: %w", err)
	}
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("sendgrid API error: status %d: %s", resp.StatusCode, resp.Body)
	}

	var id string
	if values := resp.Headers["X-Message-Id"]; len(values) > 0 {
		id = values[0]
	}

	s.logger.Info().
		Str("email_id", id).
		Str("to", msg.To).
		Msg("email sent via SendGrid")
	return id, nil
}
