package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/missionconf/server/internal/api/respond"
	"github.com/missionconf/server/internal/domain/contact"
	"github.com/missionconf/server/internal/metrics"
	"github.com/missionconf/server/internal/validation"
)

const (
	contactSuccessMessage = "Thank you for your message. We will get back to you soon."
	contactFailureMessage = "Failed to send message. Please try again later."
)

type ContactHandler struct {
	Service *contact.Service
	Env     string
}

func NewContactHandler(service *contact.Service, env string) *ContactHandler {
	return &ContactHandler{Service: service, Env: env}
}

type contactData struct {
	ID        string `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	SentAt    string `json:"sentAt"`
	Notified  bool   `json:"notified"`
}

type contactResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    contactData `json:"data"`
}

// Submit handles POST /api/contact.
func (h *ContactHandler) Submit(w http.ResponseWriter, r *http.Request) {
	var input contact.SubmitInput
	if status, err := decodeJSON(r, &input); err != nil {
		metrics.ContactMessages.WithLabelValues("invalid").Inc()
		respond.Error(w, r, status, "Invalid request body", err, h.Env, respond.WithSuccessFlag())
		return
	}

	result, err := h.Service.Submit(r.Context(), input)
	if err != nil {
		var verr *validation.Error
		if errors.As(err, &verr) {
			metrics.ContactMessages.WithLabelValues("invalid").Inc()
			respond.Error(w, r, http.StatusBadRequest, verr.Message(), err, h.Env, respond.WithSuccessFlag())
			return
		}
		metrics.ContactMessages.WithLabelValues("failed").Inc()
		respond.Error(w, r, http.StatusInternalServerError, contactFailureMessage, err, h.Env, respond.WithSuccessFlag())
		return
	}

	metrics.ContactMessages.WithLabelValues("stored").Inc()

	msg := result.Message
	respond.JSON(w, http.StatusCreated, contactResponse{
		Success: true,
		Message: contactSuccessMessage,
		Data: contactData{
			ID:        msg.ID,
			FirstName: msg.FirstName,
			LastName:  msg.LastName,
			Email:     msg.Email,
			SentAt:    msg.SentAt.UTC().Format(time.RFC3339),
			Notified:  result.Notified,
		},
	})
}
