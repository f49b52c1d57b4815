package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/missionconf/server/internal/api/middleware"
	"github.com/missionconf/server/internal/api/respond"
	"github.com/missionconf/server/internal/audit"
	"github.com/missionconf/server/internal/domain/registrations"
	"github.com/missionconf/server/internal/metrics"
	"github.com/missionconf/server/internal/validation"
	"github.com/rs/zerolog"
)

type RegistrationsHandler struct {
	Service *registrations.Service
	Audit   *audit.Logger
	Env     string
}

func NewRegistrationsHandler(service *registrations.Service, auditLog *audit.Logger, env string) *RegistrationsHandler {
	return &RegistrationsHandler{Service: service, Audit: auditLog, Env: env}
}

type registerResponse struct {
	Message      string                      `json:"message"`
	Registration *registrations.Registration `json:"registration"`
}

// Register handles POST /api/register.
func (h *RegistrationsHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input registrations.Registration
	if status, err := decodeJSON(r, &input); err != nil {
		respond.Error(w, r, status, "Invalid request body", err, h.Env)
		return
	}

	created, err := h.Service.Register(r.Context(), input)
	if err != nil {
		var verr *validation.Error
		switch {
		case errors.As(err, &verr):
			respond.Error(w, r, http.StatusBadRequest, verr.Message(), err, h.Env, respond.WithFieldErrors(verr.Map()))
		case errors.Is(err, registrations.ErrDuplicateEmail):
			metrics.RegistrationsDuplicate.Inc()
			respond.Error(w, r, http.StatusBadRequest, "Email already registered", err, h.Env)
		default:
			respond.Error(w, r, http.StatusInternalServerError, "Registration failed", err, h.Env)
		}
		return
	}

	metrics.RegistrationsCreated.Inc()
	respond.JSON(w, http.StatusCreated, registerResponse{
		Message:      "Registration successful",
		Registration: created,
	})
}

// Export handles GET /api/registrations/export.
func (h *RegistrationsHandler) Export(w http.ResponseWriter, r *http.Request) {
	aw := &attachmentWriter{w: w}
	rows, err := h.Service.Export(r.Context(), aw)
	requestID := middleware.GetRequestID(r.Context())
	if err != nil {
		h.Audit.LogRequest(r, requestID, audit.ActionRegistrationsExport, audit.StatusFailure, nil)
		if aw.started {
			// Headers already sent.
			zerolog.Ctx(r.Context()).Error().Err(err).Msg("registrations export interrupted")
			return
		}
		respond.Error(w, r, http.StatusInternalServerError, "Error exporting registrations", err, h.Env)
		return
	}
	if !aw.started {
		aw.start()
	}
	metrics.ExportRows.Observe(float64(rows))
	h.Audit.LogRequest(r, requestID, audit.ActionRegistrationsExport, audit.StatusSuccess,
		map[string]string{"rows": strconv.Itoa(rows)})
}

// attachmentWriter commits the download headers on the first write, so an
// export that fails before producing bytes can still answer with JSON.
type attachmentWriter struct {
	w       http.ResponseWriter
	started bool
}

func (a *attachmentWriter) start() {
	a.started = true
	h := a.w.Header()
	h.Set("Content-Type", registrations.ExportContentType)
	h.Set("Content-Disposition", "attachment; filename="+registrations.ExportFilename)
	a.w.WriteHeader(http.StatusOK)
}

func (a *attachmentWriter) Write(p []byte) (int, error) {
	if !a.started {
		a.start()
	}
	return a.w.Write(p)
}
