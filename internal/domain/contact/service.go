package contact

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/missionconf/server/internal/email"
	"github.com/missionconf/server/internal/validation"
	"github.com/rs/zerolog"
)

// DefaultNotifyTimeout bounds a single delivery attempt.
const DefaultNotifyTimeout = 15 * time.Second

type Service struct {
	repo       Repository
	validator  *validation.Validator
	sender     email.Sender
	addressing Addressing
	logger     zerolog.Logger
	now        func() time.Time
	timeout    time.Duration
}

func NewService(repo Repository, validator *validation.Validator, sender email.Sender, addressing Addressing, logger zerolog.Logger) *Service {
	return &Service{
		repo:       repo,
		validator:  validator,
		sender:     sender,
		addressing: addressing,
		logger:     logger.With().Str("component", "contact").Logger(),
		now:        time.Now,
		timeout:    DefaultNotifyTimeout,
	}
}

// Submit validates, stores and forwards a contact-form message. Invalid input
// fails with *validation.Error before anything is stored. Once the message is
// stored, a delivery failure does not fail the call: it is reported through
// SubmitResult.NotifyErr and the record stays un-notified.
func (s *Service) Submit(ctx context.Context, in SubmitInput) (*SubmitResult, error) {
	in = normalize(in)

	if err := s.validator.Struct(in); err != nil {
		return nil, err
	}

	stored, err := s.repo.Create(ctx, Message{
		FirstName: in.FirstName,
		LastName:  in.LastName,
		Email:     in.Email,
		Phone:     in.Phone,
		Message:   in.Message,
		SentAt:    s.now().UTC(),
	})
	if err != nil {
		return nil, fmt.Errorf("store contact message: %w", err)
	}

	logger := s.logger.With().Str("id", stored.ID).Logger()
	logger.Info().Msg("contact message stored")

	result := &SubmitResult{Message: stored}

	notification, err := ComposeNotification(*stored, s.addressing)
	if err != nil {
		result.NotifyErr = fmt.Errorf("compose notification: %w", err)
		logger.Error().Err(result.NotifyErr).Msg("contact notification not sent")
		return result, nil
	}

	// Delivery outlives a client that hangs up after the message is stored.
	sendCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.timeout)
	defer cancel()

	providerID, err := s.sender.Send(sendCtx, notification)
	if err != nil {
		result.NotifyErr = err
		logger.Error().Err(err).Str("provider", s.sender.Provider()).Msg("contact notification failed")
		return result, nil
	}

	if err := s.repo.MarkNotified(sendCtx, stored.ID, providerID); err != nil {
		logger.Warn().Err(err).Str("notification_id", providerID).Msg("could not record notification")
	} else {
		stored.NotificationID = providerID
	}
	stored.Notified = true
	result.Notified = true

	logger.Info().Str("notification_id", providerID).Msg("contact notification sent")
	return result, nil
}

func normalize(in SubmitInput) SubmitInput {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Phone = strings.TrimSpace(in.Phone)
	in.Message = strings.TrimSpace(in.Message)
	return in
}
