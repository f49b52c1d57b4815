package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProbe struct {
	pingErr    error
	version    int64
	dirty      bool
	versionErr error
}

func (s stubProbe) Ping(context.Context) error { return s.pingErr }

func (s stubProbe) SchemaVersion(context.Context) (int64, bool, error) {
	return s.version, s.dirty, s.versionErr
}

func TestHealthz(t *testing.T) {
	checker := NewHealthChecker(nil, "0.1.0", "test-commit")

	w := httptest.NewRecorder()
	checker.Healthz().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	var response HealthCheck
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, "ok", response.Status)
	assert.Equal(t, "0.1.0", response.Version)
	assert.Equal(t, "test-commit", response.GitCommit)
	assert.NotEmpty(t, response.Timestamp)
}

func TestReadyz(t *testing.T) {
	tests := []struct {
		name       string
		probe      ReadinessProbe
		wantCode   int
		wantStatus string
		failing    string
	}{
		{"all healthy", stubProbe{version: 1}, http.StatusOK, "ready", ""},
		{"database down", stubProbe{pingErr: errors.New("connection refused"), versionErr: errors.New("connection refused")}, http.StatusServiceUnavailable, "unavailable", "database"},
		{"dirty migration", stubProbe{version: 1, dirty: true}, http.StatusServiceUnavailable, "unavailable", "migrations"},
		{"no store", nil, http.StatusServiceUnavailable, "unavailable", "database"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			checker := NewHealthChecker(tt.probe, "0.1.0", "test-commit")

			w := httptest.NewRecorder()
			checker.Readyz().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))

			assert.Equal(t, tt.wantCode, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))

			var response HealthCheck
			require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
			assert.Equal(t, tt.wantStatus, response.Status)
			require.Contains(t, response.Checks, "database")
			require.Contains(t, response.Checks, "migrations")
			if tt.failing != "" {
				assert.Equal(t, "fail", response.Checks[tt.failing].Status)
			}
		})
	}
}

func TestReadyzShuttingDown(t *testing.T) {
	checker := NewHealthChecker(stubProbe{version: 1}, "0.1.0", "test-commit")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodGet, "/readyz", nil).WithContext(ctx)
	w := httptest.NewRecorder()
	checker.Readyz().ServeHTTP(w, req)

	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
}
