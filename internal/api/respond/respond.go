// Package respond writes the JSON bodies returned by the public endpoints.
//
// Every error body carries a display-ready "message". The contact endpoint
// additionally sets "success". Raw error text is only echoed in development
// and test environments.
package respond

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"
)

const contentType = "application/json"

// Body is the error envelope shared by all endpoints.
type Body struct {
	Success *bool             `json:"success,omitempty"`
	Message string            `json:"message"`
	Error   string            `json:"error,omitempty"`
	Errors  map[string]string `json:"errors,omitempty"`
}

type Option func(*Body)

// WithSuccessFlag adds "success": false to the body.
func WithSuccessFlag() Option {
	return func(b *Body) {
		failed := false
		b.Success = &failed
	}
}

// WithFieldErrors attaches per-field validation messages keyed by JSON name.
func WithFieldErrors(errs map[string]string) Option {
	return func(b *Body) {
		if len(errs) > 0 {
			b.Errors = errs
		}
	}
}

type envelopeKey struct{}

// Envelope makes opts apply to every error body written for requests it
// wraps, including bodies written by middleware further down the chain.
func Envelope(opts ...Option) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			inherited, _ := r.Context().Value(envelopeKey{}).([]Option)
			merged := append(append([]Option{}, inherited...), opts...)
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), envelopeKey{}, merged)))
		})
	}
}

// ExposesDetail reports whether raw error text may be sent to clients.
func ExposesDetail(env string) bool {
	return env == "development" || env == "test"
}

// Error writes an error body. 5xx responses are logged at error level and
// 4xx at warn level on the request-scoped logger.
func Error(w http.ResponseWriter, r *http.Request, status int, message string, err error, env string, opts ...Option) {
	body := Body{Message: message}
	if r != nil {
		inherited, _ := r.Context().Value(envelopeKey{}).([]Option)
		opts = append(append([]Option{}, inherited...), opts...)
	}
	for _, opt := range opts {
		opt(&body)
	}

	if err != nil && status >= 500 && ExposesDetail(env) {
		body.Error = err.Error()
	}

	if err != nil && r != nil {
		logger := zerolog.Ctx(r.Context())
		event := logger.Warn()
		if status >= 500 {
			event = logger.Error()
		}
		event.
			Err(err).
			Int("status", status).
			Str("path", r.URL.Path).
			Str("method", r.Method).
			Msg(message)
	}

	JSON(w, status, body)
}

// JSON encodes payload with the given status.
func JSON(w http.ResponseWriter, status int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"message":"Internal Server Error"}`))
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	_, _ = w.Write(data)
}
