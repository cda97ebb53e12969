package middlewarectx_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-plans/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-plans/internal/lib/jwt"
)

type ParserMock struct {
	mock.Mock
}

func (m *ParserMock) ParseToken(token string) (*jwt.CustomClaims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*jwt.CustomClaims)
	return claims, args.Error(1)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func claimsFor(subject, role string) *jwt.CustomClaims {
	return &jwt.CustomClaims{
		Role:             role,
		RegisteredClaims: jwtlib.RegisteredClaims{Subject: subject},
	}
}

func TestJWTMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		authHeader     string
		mockClaims     *jwt.CustomClaims
		mockErr        error
		wantStatusCode int
		wantCalled     bool
	}{
		{
			name:           "missing Authorization header",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "invalid Authorization header prefix",
			authHeader:     "Basic sometoken",
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "token validation error",
			authHeader:     "Bearer token",
			mockErr:        errors.New("token is expired"),
			wantStatusCode: http.StatusUnauthorized,
		},
		{
			name:           "valid token",
			authHeader:     "Bearer validtoken",
			mockClaims:     claimsFor("testuser", jwt.RoleUser),
			wantStatusCode: http.StatusOK,
			wantCalled:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := new(ParserMock)
			if tt.mockClaims != nil || tt.mockErr != nil {
				parser.On("ParseToken", strings.TrimPrefix(tt.authHeader, "Bearer ")).
					Return(tt.mockClaims, tt.mockErr).Once()
			}

			handlerCalled := false
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				handlerCalled = true
				assert.Equal(t, "testuser", r.Context().Value(middlewarectx.User))
				assert.Equal(t, jwt.RoleUser, r.Context().Value(middlewarectx.Role))
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/somepath", nil)
			if tt.authHeader != "" {
				req.Header.Set("Authorization", tt.authHeader)
			}
			rec := httptest.NewRecorder()

			middlewarectx.JWTMiddleware(parser, newNoopLogger())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatusCode, rec.Code)
			assert.Equal(t, tt.wantCalled, handlerCalled)
			parser.AssertExpectations(t)
		})
	}
}

func TestJWTMiddleware_WithRealMaker(t *testing.T) {
	maker := jwt.NewJWTMaker("secret", time.Hour)
	token, err := maker.GenerateToken("admin-1", jwt.RoleAdmin)
	assert.NoError(t, err)

	var gotRole any
	next := http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		gotRole = r.Context().Value(middlewarectx.Role)
	})

	req := httptest.NewRequest(http.MethodPost, "/api/v1/plans", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()

	middlewarectx.JWTMiddleware(maker, newNoopLogger())(next).ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, jwt.RoleAdmin, gotRole)
}

func TestRequireRole(t *testing.T) {
	tests := []struct {
		name       string
		role       any
		wantStatus int
	}{
		{name: "admin passes", role: jwt.RoleAdmin, wantStatus: http.StatusOK},
		{name: "user is forbidden", role: jwt.RoleUser, wantStatus: http.StatusForbidden},
		{name: "no role in context", role: nil, wantStatus: http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/plans/1", nil)
			if tt.role != nil {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.Role, tt.role))
			}
			rec := httptest.NewRecorder()

			middlewarectx.RequireRole(newNoopLogger(), jwt.RoleAdmin)(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}
