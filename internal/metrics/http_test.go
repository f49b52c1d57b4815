package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "static path",
			input:    "/api/registrations/export",
			expected: "/api/registrations/export",
		},
		{
			name:     "single param",
			input:    "/api/registrations/{id}",
			expected: "/api/registrations/{param}",
		},
		{
			name:     "multiple params",
			input:    "/api/contact/{id}/replies/{reply}",
			expected: "/api/contact/{param}/replies/{param}",
		},
		{
			name:     "empty path",
			input:    "",
			expected: "",
		},
		{
			name:     "non-path input",
			input:    "api/contact/{id}",
			expected: "api/contact/{id}",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := normalizePath(tt.input)
			if got != tt.expected {
				t.Fatalf("normalizePath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestRouteLabelUsesMuxPattern(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/register", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	var got string
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mux.ServeHTTP(w, r)
		got = routeLabel(r)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/register", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if got != "/api/register" {
		t.Fatalf("routeLabel = %q, want /api/register", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/no/such/path", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)
	if got != "unmatched" {
		t.Fatalf("routeLabel = %q, want unmatched", got)
	}
}
