package contact

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("contact message not found")

// Message is a stored contact-form submission. Read and Replied are owned by
// whoever follows up on the message; this service only ever writes false.
type Message struct {
	ID             string    `json:"id"`
	FirstName      string    `json:"firstName"`
	LastName       string    `json:"lastName"`
	Email          string    `json:"email"`
	Phone          string    `json:"phone,omitempty"`
	Message        string    `json:"message"`
	SentAt         time.Time `json:"sentAt"`
	Read           bool      `json:"read"`
	Replied        bool      `json:"replied"`
	Notified       bool      `json:"notified"`
	NotificationID string    `json:"-"`
}

// SubmitInput is the raw form payload.
type SubmitInput struct {
	FirstName string `json:"firstName" label:"First name" validate:"notblank,max=100"`
	LastName  string `json:"lastName" label:"Last name" validate:"notblank,max=100"`
	Email     string `json:"email" label:"Email" validate:"notblank,max=254,contactemail"`
	Phone     string `json:"phone" label:"Phone" validate:"omitempty,phone"`
	Message   string `json:"message" label:"Message" validate:"notblank,min=10,max=2000"`
}

// SubmitResult reports the stored message and whether the notification went
// out. NotifyErr is set when delivery failed after the message was stored.
type SubmitResult struct {
	Message   *Message
	Notified  bool
	NotifyErr error
}

type Repository interface {
	Create(ctx context.Context, msg Message) (*Message, error)
	MarkNotified(ctx context.Context, id, notificationID string) error
}
