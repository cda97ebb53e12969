package health

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHealthHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	ok := func(context.Context) error { return nil }
	fail := func(context.Context) error { return errors.New("connection refused") }

	tests := []struct {
		name           string
		checks         map[string]Check
		expectedStatus int
		expectedBody   string
	}{
		{
			name:           "все зависимости доступны",
			checks:         map[string]Check{"postgres": ok, "redis": ok},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"postgres":"ok","redis":"ok"}}`,
		},
		{
			name:           "redis недоступен",
			checks:         map[string]Check{"postgres": ok, "redis": fail},
			expectedStatus: http.StatusServiceUnavailable,
			expectedBody:   `"redis":"down"`,
		},
		{
			name:           "без проверок",
			checks:         nil,
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			New(logger, tt.checks).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
		})
	}
}
