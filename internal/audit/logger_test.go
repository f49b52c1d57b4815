package audit

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func decodeEntry(t *testing.T, buf *bytes.Buffer) (map[string]json.RawMessage, Entry) {
	t.Helper()
	var wrapper map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(buf.Bytes(), &wrapper))

	var entry Entry
	require.NoError(t, json.Unmarshal(wrapper["audit"], &entry))
	return wrapper, entry
}

func TestLoggerLog(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.New(&buf))
	fixed := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)
	logger.now = func() time.Time { return fixed }

	logger.Log(Entry{Action: ActionRegistrationsExport, Actor: "cli", Status: StatusSuccess})

	wrapper, entry := decodeEntry(t, &buf)
	require.JSONEq(t, `"audit"`, string(wrapper["component"]))
	require.Equal(t, ActionRegistrationsExport, entry.Action)
	require.Equal(t, "cli", entry.Actor)
	require.Equal(t, StatusSuccess, entry.Status)
	require.True(t, entry.Timestamp.Equal(fixed))
}

func TestLoggerLogRequest(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.New(&buf))

	req := httptest.NewRequest("GET", "/api/registrations/export", nil)
	req.RemoteAddr = "198.51.100.4:51234"
	req.Header.Set("X-Forwarded-For", "10.0.0.1")

	logger.LogRequest(req, "req-1", ActionRegistrationsExport, StatusFailure, map[string]string{"error": "timeout"})

	_, entry := decodeEntry(t, &buf)
	require.Equal(t, "198.51.100.4", entry.IPAddress)
	require.Equal(t, "http:198.51.100.4", entry.Actor)
	require.Equal(t, "req-1", entry.RequestID)
	require.Equal(t, StatusFailure, entry.Status)
	require.Equal(t, "timeout", entry.Details["error"])
}

func TestLoggerLogRequestWithClientIP(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(zerolog.New(&buf), WithClientIP(func(r *http.Request) string {
		return r.Header.Get("X-Forwarded-For")
	}))

	req := httptest.NewRequest("GET", "/api/registrations/export", nil)
	req.RemoteAddr = "10.0.0.1:443"
	req.Header.Set("X-Forwarded-For", "203.0.113.9")

	logger.LogRequest(req, "req-2", ActionRegistrationsExport, StatusSuccess, nil)

	_, entry := decodeEntry(t, &buf)
	require.Equal(t, "203.0.113.9", entry.IPAddress)
	require.Equal(t, "http:203.0.113.9", entry.Actor)
}

func TestNilLoggerIsNoop(t *testing.T) {
	var logger *Logger
	logger.Log(Entry{Action: ActionRegistrationsExport})
	logger.LogRequest(httptest.NewRequest("GET", "/", nil), "", ActionRegistrationsExport, StatusSuccess, nil)
}
