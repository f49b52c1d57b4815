package contact

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/missionconf/server/internal/domain/ids"
	"github.com/missionconf/server/internal/email"
	"github.com/missionconf/server/internal/validation"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type stubContactRepo struct {
	mu       sync.Mutex
	stored   []Message
	notified map[string]string

	createErr error
	markErr   error
}

func newStubContactRepo() *stubContactRepo {
	return &stubContactRepo{notified: map[string]string{}}
}

func (r *stubContactRepo) Create(_ context.Context, msg Message) (*Message, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return nil, r.createErr
	}
	msg.ID = ids.MustULID()
	r.stored = append(r.stored, msg)
	return &msg, nil
}

func (r *stubContactRepo) MarkNotified(_ context.Context, id, notificationID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.markErr != nil {
		return r.markErr
	}
	r.notified[id] = notificationID
	return nil
}

type stubSender struct {
	mu   sync.Mutex
	sent []email.Message
	ctx  context.Context
	err  error
}

func (s *stubSender) Provider() string { return "stub" }

func (s *stubSender) Send(ctx context.Context, msg email.Message) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ctx = ctx
	if s.err != nil {
		return "", s.err
	}
	s.sent = append(s.sent, msg)
	return "provider-1", nil
}

var testAddressing = Addressing{
	Recipient:  "pastor@example.org",
	FromDomain: "example.org",
	SiteName:   "Mission Conference",
}

var fixedNow = time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

func newTestService(repo Repository, sender email.Sender) *Service {
	svc := NewService(repo, validation.New("US"), sender, testAddressing, zerolog.Nop())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func adaInput() SubmitInput {
	return SubmitInput{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     "ada@example.com",
		Message:   "I would like to help with the conference.",
	}
}

func TestSubmit_AdaLovelace(t *testing.T) {
	repo := newStubContactRepo()
	sender := &stubSender{}
	svc := newTestService(repo, sender)

	res, err := svc.Submit(context.Background(), adaInput())
	require.NoError(t, err)
	require.True(t, res.Notified)
	require.NoError(t, res.NotifyErr)

	msg := res.Message
	require.NotEmpty(t, msg.ID)
	require.Equal(t, "Ada", msg.FirstName)
	require.Equal(t, "Lovelace", msg.LastName)
	require.Equal(t, "ada@example.com", msg.Email)
	require.Equal(t, fixedNow, msg.SentAt)
	require.False(t, msg.Read)
	require.False(t, msg.Replied)
	require.True(t, msg.Notified)
	require.Equal(t, "provider-1", msg.NotificationID)

	require.Len(t, sender.sent, 1)
	require.Equal(t, "ada@example.com", sender.sent[0].ReplyTo)
	require.Equal(t, "pastor@example.org", sender.sent[0].To)
	require.Equal(t, "New contact message from Ada Lovelace", sender.sent[0].Subject)
	require.Equal(t, "provider-1", repo.notified[msg.ID])
}

func TestSubmit_NormalisesInput(t *testing.T) {
	repo := newStubContactRepo()
	svc := newTestService(repo, &stubSender{})

	in := SubmitInput{
		FirstName: "  Grace ",
		LastName:  " Hopper",
		Email:     "  Grace.Hopper@Example.COM ",
		Phone:     "   ",
		Message:   "\n  Looking forward to the event!  \n",
	}
	res, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, "Grace", res.Message.FirstName)
	require.Equal(t, "grace.hopper@example.com", res.Message.Email)
	require.Empty(t, res.Message.Phone)
	require.Equal(t, "Looking forward to the event!", res.Message.Message)
}

func TestSubmit_InvalidInputNeverStored(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*SubmitInput)
		message string
	}{
		{"missing first name", func(in *SubmitInput) { in.FirstName = "" }, "First name is required"},
		{"missing last name", func(in *SubmitInput) { in.LastName = "   " }, "Last name is required"},
		{"missing email", func(in *SubmitInput) { in.Email = "" }, "Email is required"},
		{"missing message", func(in *SubmitInput) { in.Message = "" }, "Message is required"},
		{"malformed email", func(in *SubmitInput) { in.Email = "ada-at-example" }, "Please provide a valid email address"},
		{"consecutive dots in email", func(in *SubmitInput) { in.Email = "john..doe@example.com" }, "Please provide a valid email address"},
		{"comma in email", func(in *SubmitInput) { in.Email = "a,b@example.com" }, "Please provide a valid email address"},
		{"short message after trim", func(in *SubmitInput) { in.Message = "   too short   " }, "Message must be at least 10 characters long"},
		{"long message", func(in *SubmitInput) { in.Message = strings.Repeat("a", 2001) }, "Message cannot exceed 2000 characters"},
		{"long name", func(in *SubmitInput) { in.FirstName = strings.Repeat("b", 101) }, "First name cannot exceed 100 characters"},
		{"bad phone", func(in *SubmitInput) { in.Phone = "call me" }, "Please provide a valid phone number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := newStubContactRepo()
			sender := &stubSender{}
			svc := newTestService(repo, sender)

			in := adaInput()
			tt.mutate(&in)
			res, err := svc.Submit(context.Background(), in)
			require.Nil(t, res)

			var verr *validation.Error
			require.ErrorAs(t, err, &verr)
			require.Contains(t, verr.Message(), tt.message)
			require.Empty(t, repo.stored)
			require.Empty(t, sender.sent)
		})
	}
}

func TestSubmit_AcceptedAddressesCanBeRepliedTo(t *testing.T) {
	for _, addr := range []string{"ada@example.com", "a.b+c@sub.domain.io", "o'brien@example.ie"} {
		t.Run(addr, func(t *testing.T) {
			sender := &stubSender{}
			svc := newTestService(newStubContactRepo(), sender)

			in := adaInput()
			in.Email = addr
			res, err := svc.Submit(context.Background(), in)
			require.NoError(t, err)
			require.True(t, res.Notified)
			require.Len(t, sender.sent, 1)
			require.NoError(t, sender.sent[0].Validate())
		})
	}
}

func TestSubmit_MessageLengthCountsRunes(t *testing.T) {
	svc := newTestService(newStubContactRepo(), &stubSender{})

	in := adaInput()
	in.Message = strings.Repeat("é", 2000)
	_, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
}

func TestSubmit_ValidPhoneKept(t *testing.T) {
	svc := newTestService(newStubContactRepo(), &stubSender{})

	in := adaInput()
	in.Phone = "+1 (555) 123-4567"
	res, err := svc.Submit(context.Background(), in)
	require.NoError(t, err)
	require.Equal(t, "+1 (555) 123-4567", res.Message.Phone)
}

func TestSubmit_StoreFailure(t *testing.T) {
	repo := newStubContactRepo()
	repo.createErr = errors.New("connection reset")
	sender := &stubSender{}
	svc := newTestService(repo, sender)

	res, err := svc.Submit(context.Background(), adaInput())
	require.Nil(t, res)
	require.ErrorContains(t, err, "store contact message")
	require.False(t, validation.IsValidationError(err))
	require.Empty(t, sender.sent)
}

func TestSubmit_NotificationFailureKeepsMessage(t *testing.T) {
	repo := newStubContactRepo()
	sendErr := errors.New("provider unavailable")
	svc := newTestService(repo, &stubSender{err: sendErr})

	res, err := svc.Submit(context.Background(), adaInput())
	require.NoError(t, err)
	require.False(t, res.Notified)
	require.ErrorIs(t, res.NotifyErr, sendErr)
	require.Len(t, repo.stored, 1)
	require.Empty(t, repo.notified)
	require.False(t, res.Message.Notified)
}

func TestSubmit_MarkNotifiedFailureStillReportsSent(t *testing.T) {
	repo := newStubContactRepo()
	repo.markErr = errors.New("update failed")
	svc := newTestService(repo, &stubSender{})

	res, err := svc.Submit(context.Background(), adaInput())
	require.NoError(t, err)
	require.True(t, res.Notified)
	require.Empty(t, res.Message.NotificationID)
}

func TestSubmit_DeliverySurvivesCancelledRequest(t *testing.T) {
	sender := &stubSender{}
	svc := newTestService(newStubContactRepo(), sender)

	ctx, cancel := context.WithCancel(context.Background())
	res, err := svc.Submit(ctx, adaInput())
	cancel()
	require.NoError(t, err)
	require.True(t, res.Notified)

	_, hasDeadline := sender.ctx.Deadline()
	require.True(t, hasDeadline)
}
