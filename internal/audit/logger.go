// Package audit records access to attendee personal data.
package audit

import (
	"net"
	"net/http"
	"time"

	"github.com/rs/zerolog"
)

const (
	ActionRegistrationsExport = "registrations.export"

	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Entry is one audit record. It is written under the "audit" key so log
// pipelines can route it separately from request logs.
type Entry struct {
	Timestamp time.Time         `json:"timestamp"`
	Action    string            `json:"action"`
	Actor     string            `json:"actor"`
	IPAddress string            `json:"ip_address,omitempty"`
	RequestID string            `json:"request_id,omitempty"`
	Status    string            `json:"status"`
	Details   map[string]string `json:"details,omitempty"`
}

type Logger struct {
	logger   zerolog.Logger
	now      func() time.Time
	clientIP func(*http.Request) string
}

type Option func(*Logger)

// WithClientIP sets how LogRequest resolves the caller's address. Servers
// behind a proxy pass the same resolver the rate limiter uses.
func WithClientIP(resolve func(*http.Request) string) Option {
	return func(l *Logger) {
		if resolve != nil {
			l.clientIP = resolve
		}
	}
}

func NewLogger(logger zerolog.Logger, opts ...Option) *Logger {
	l := &Logger{
		logger:   logger.With().Str("component", "audit").Logger(),
		now:      time.Now,
		clientIP: remoteIP,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func (l *Logger) Log(entry Entry) {
	if l == nil {
		return
	}
	if entry.Timestamp.IsZero() {
		entry.Timestamp = l.now().UTC()
	}
	l.logger.Info().Interface("audit", entry).Msg(entry.Action)
}

// LogRequest records an action performed through the HTTP API. The actor is
// the client address since the API has no user accounts.
func (l *Logger) LogRequest(r *http.Request, requestID, action, status string, details map[string]string) {
	if l == nil {
		return
	}
	ip := l.clientIP(r)
	l.Log(Entry{
		Action:    action,
		Actor:     "http:" + ip,
		IPAddress: ip,
		RequestID: requestID,
		Status:    status,
		Details:   details,
	})
}

func remoteIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
