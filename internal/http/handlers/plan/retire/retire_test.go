package retire

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	planservice "github.com/magabrotheeeer/subscription-plans/internal/services/plan"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) RetirePlan(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func TestRetireHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name           string
		id             string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name: "успешное удаление",
			id:   "3",
			setupMock: func(m *MockService) {
				m.On("RetirePlan", mock.Anything, int64(3)).Return(nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `{"status":"OK","data":{"retired_id":3}}`,
		},
		{
			name:           "некорректный id",
			id:             "-1",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `failed to decode id from url`,
		},
		{
			name: "план не найден",
			id:   "3",
			setupMock: func(m *MockService) {
				m.On("RetirePlan", mock.Anything, int64(3)).Return(planservice.ErrPlanNotFound).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `plan not found`,
		},
		{
			name: "ошибка сервиса",
			id:   "3",
			setupMock: func(m *MockService) {
				m.On("RetirePlan", mock.Anything, int64(3)).Return(errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not retire plan`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodDelete, "/api/v1/plans/"+tt.id, nil)
			rctx := chi.NewRouteContext()
			rctx.URLParams.Add("id", tt.id)
			req = req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
			w := httptest.NewRecorder()

			New(logger, mockService).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
