package email

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"

	"github.com/missionconf/server/internal/config"
	"github.com/missionconf/server/internal/metrics"
	"github.com/resend/resend-go/v2"
	"github.com/rs/zerolog"
	"github.com/sendgrid/sendgrid-go"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// Message is a fully composed notification ready for delivery.
type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
	ReplyTo string
}

// Sender delivers a Message through an external provider and returns the
// provider-assigned message id.
type Sender interface {
	Send(ctx context.Context, msg Message) (string, error)
	Provider() string
}

var ErrInvalidMessage = errors.New("invalid email message")

// NewSender picks the delivery backend from configuration. When email is
// disabled the returned sender only logs.
func NewSender(cfg config.EmailConfig, logger zerolog.Logger) Sender {
	logger = logger.With().Str("component", "email").Logger()

	var sender Sender
	switch {
	case !cfg.Enabled:
		sender = NewLogSender(logger)
	case cfg.Provider == config.ProviderSendGrid:
		sender = NewSendGridSender(sendgrid.NewSendClient(cfg.SendGridAPIKey), logger)
	default:
		sender = NewResendSender(resend.NewClient(cfg.ResendAPIKey), logger)
	}
	return Instrument(sender)
}

// Validate checks addressing before a message leaves the process.
func (m Message) Validate() error {
	if err := validateEmailAddress(m.From); err != nil {
		return fmt.Errorf("%w: from: %v", ErrInvalidMessage, err)
	}
	if err := validateEmailAddress(m.To); err != nil {
		return fmt.Errorf("%w: to: %v", ErrInvalidMessage, err)
	}
	if m.ReplyTo != "" {
		if err := validateEmailAddress(m.ReplyTo); err != nil {
			return fmt.Errorf("%w: reply-to: %v", ErrInvalidMessage, err)
		}
	}
	if strings.ContainsAny(m.Subject, "\r\n") {
		return fmt.Errorf("%w: subject contains newline characters", ErrInvalidMessage)
	}
	if m.HTML == "" && m.Text == "" {
		return fmt.Errorf("%w: empty body", ErrInvalidMessage)
	}
	return nil
}

// validateEmailAddress validates an email address for format and header injection attempts
func validateEmailAddress(email string) error {
	if strings.ContainsAny(email, "\r\n") {
		return fmt.Errorf("invalid email address: contains newline characters")
	}

	addr, err := mail.ParseAddress(email)
	if err != nil {
		return fmt.Errorf("invalid email format: %w", err)
	}

	if strings.ContainsAny(addr.Address, "\r\n") {
		return fmt.Errorf("invalid email address: contains newline characters")
	}

	return nil
}

type instrumented struct {
	next Sender
}

// Instrument counts delivery outcomes per provider and wraps each delivery in
// a client span.
func Instrument(s Sender) Sender {
	return &instrumented{next: s}
}

func (i *instrumented) Provider() string { return i.next.Provider() }

func (i *instrumented) Send(ctx context.Context, msg Message) (string, error) {
	ctx, span := otel.Tracer("github.com/missionconf/server/internal/email").Start(ctx, "email.send")
	defer span.End()
	span.SetAttributes(attribute.String("email.provider", i.next.Provider()))

	id, err := i.next.Send(ctx, msg)
	outcome := "sent"
	if err != nil {
		outcome = "failed"
		span.RecordError(err)
		span.SetStatus(codes.Error, "delivery failed")
	} else {
		span.SetAttributes(attribute.String("email.message_id", id))
	}
	metrics.NotificationsTotal.WithLabelValues(i.next.Provider(), outcome).Inc()
	return id, err
}
