package quote

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/magabrotheeeer/subscription-plans/internal/models"
	planservice "github.com/magabrotheeeer/subscription-plans/internal/services/plan"
)

type MockService struct {
	mock.Mock
}

func (m *MockService) QuoteUpgrade(ctx context.Context, oldPlanID, newPlanID int64, referenceDate time.Time) (models.UpgradeQuote, error) {
	args := m.Called(ctx, oldPlanID, newPlanID, referenceDate)
	return args.Get(0).(models.UpgradeQuote), args.Error(1)
}

func TestQuoteHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
	feb26 := time.Date(2024, time.February, 26, 0, 0, 0, 0, time.UTC)
	clock := time.Date(2024, time.March, 10, 23, 30, 0, 0, time.FixedZone("MSK", 3*3600))

	amount := decimal.NewFromInt(453).Sub(decimal.NewFromInt(321).Mul(decimal.NewFromInt(3)).Div(decimal.NewFromInt(29)))
	quote := models.UpgradeQuote{
		OldPlanID: 1, NewPlanID: 2, ReferenceDate: feb26,
		TotalDays: 29, RemainingDays: 3, Amount: amount,
	}

	tests := []struct {
		name           string
		query          string
		setupMock      func(*MockService)
		expectedStatus int
		expectedBody   string
	}{
		{
			name:  "расчёт на явную дату",
			query: "old_plan_id=1&new_plan_id=2&reference_date=2024-02-26",
			setupMock: func(m *MockService) {
				m.On("QuoteUpgrade", mock.Anything, int64(1), int64(2), feb26).Return(quote, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"amount_rounded":"419.79"`,
		},
		{
			name:  "дата в формате RFC3339 приводится к UTC",
			query: "old_plan_id=1&new_plan_id=2&reference_date=2024-02-27T01:00:00%2B03:00",
			setupMock: func(m *MockService) {
				want := time.Date(2024, time.February, 26, 22, 0, 0, 0, time.UTC)
				m.On("QuoteUpgrade", mock.Anything, int64(1), int64(2), mock.MatchedBy(func(ts time.Time) bool {
					return ts.Equal(want) && ts.Location() == time.UTC
				})).Return(quote, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"total_days":29`,
		},
		{
			name:  "без даты используются текущие часы в UTC",
			query: "old_plan_id=1&new_plan_id=2",
			setupMock: func(m *MockService) {
				m.On("QuoteUpgrade", mock.Anything, int64(1), int64(2), clock.UTC()).Return(quote, nil).Once()
			},
			expectedStatus: http.StatusOK,
			expectedBody:   `"status":"OK"`,
		},
		{
			name:           "нет old_plan_id",
			query:          "new_plan_id=2",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid old_plan_id`,
		},
		{
			name:           "некорректная дата",
			query:          "old_plan_id=1&new_plan_id=2&reference_date=26.02.2024",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusBadRequest,
			expectedBody:   `invalid reference_date`,
		},
		{
			name:           "неположительный id",
			query:          "old_plan_id=0&new_plan_id=2",
			setupMock:      func(_ *MockService) {},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `field OldPlanID must be greater than 0`,
		},
		{
			name:  "план не найден",
			query: "old_plan_id=1&new_plan_id=99&reference_date=2024-02-26",
			setupMock: func(m *MockService) {
				m.On("QuoteUpgrade", mock.Anything, int64(1), int64(99), feb26).
					Return(models.UpgradeQuote{}, fmt.Errorf("quote: %w", planservice.ErrPlanNotFound)).Once()
			},
			expectedStatus: http.StatusNotFound,
			expectedBody:   `plan not found`,
		},
		{
			name:  "даунгрейд",
			query: "old_plan_id=2&new_plan_id=1&reference_date=2024-02-26",
			setupMock: func(m *MockService) {
				m.On("QuoteUpgrade", mock.Anything, int64(2), int64(1), feb26).
					Return(models.UpgradeQuote{}, planservice.ErrInvalidUpgrade).Once()
			},
			expectedStatus: http.StatusUnprocessableEntity,
			expectedBody:   `new plan price is lower than current plan price`,
		},
		{
			name:  "ошибка сервиса",
			query: "old_plan_id=1&new_plan_id=2&reference_date=2024-02-26",
			setupMock: func(m *MockService) {
				m.On("QuoteUpgrade", mock.Anything, int64(1), int64(2), feb26).
					Return(models.UpgradeQuote{}, errors.New("db error")).Once()
			},
			expectedStatus: http.StatusInternalServerError,
			expectedBody:   `could not calculate upgrade price`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockService)
			tt.setupMock(mockService)

			req := httptest.NewRequest(http.MethodGet, "/api/v1/plans/upgrade-quote?"+tt.query, nil)
			w := httptest.NewRecorder()

			New(logger, mockService, WithClock(func() time.Time { return clock })).ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), tt.expectedBody)
			mockService.AssertExpectations(t)
		})
	}
}
