// Package quote реализует HTTP-обработчик расчёта стоимости апгрейда плана.
//
// Дата расчёта берётся из параметра reference_date (2006-01-02 или RFC3339).
// Если параметр не передан, используется текущее время: это единственное
// место, где сервис читает часы.
package quote

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-plans/internal/http/response"
	"github.com/magabrotheeeer/subscription-plans/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-plans/internal/models"
	planservice "github.com/magabrotheeeer/subscription-plans/internal/services/plan"
)

// Handler обрабатывает запросы на расчёт апгрейда.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
	now      func() time.Time
}

// Service описывает расчёт стоимости апгрейда.
type Service interface {
	QuoteUpgrade(ctx context.Context, oldPlanID, newPlanID int64, referenceDate time.Time) (models.UpgradeQuote, error)
}

// Option настраивает Handler.
type Option func(*Handler)

// WithClock подменяет источник текущего времени.
func WithClock(now func() time.Time) Option {
	return func(h *Handler) {
		h.now = now
	}
}

// New создает новый Handler.
func New(log *slog.Logger, service Service, opts ...Option) *Handler {
	h := &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

type request struct {
	OldPlanID     int64 `validate:"gt=0"`
	NewPlanID     int64 `validate:"gt=0"`
	ReferenceDate time.Time
}

// Response — данные ответа. AmountRounded округлено до копеек для отображения,
// Amount и Credit возвращаются без округления.
type Response struct {
	models.UpgradeQuote
	AmountRounded string `json:"amount_rounded" example:"419.79"`
}

// ServeHTTP godoc
// @Summary Рассчитать стоимость апгрейда
// @Description Стоимость немедленного перехода на план не дешевле текущего с зачётом
// @Description неиспользованных дней текущего месяца. Ничего не изменяет.
// @Tags Plans
// @Produce  json
// @Param old_plan_id query int true "ID текущего плана"
// @Param new_plan_id query int true "ID нового плана"
// @Param reference_date query string false "Дата расчёта, 2006-01-02 или RFC3339, по умолчанию сегодня (UTC)"
// @Success 200 {object} response.Response{data=Response}
// @Failure 400 {object} response.ErrorResponse "Некорректные параметры"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Failure 422 {object} response.ErrorResponse "Цена нового плана ниже текущего"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /plans/upgrade-quote [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.quote"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	req, err := h.parseRequest(r)
	if err != nil {
		log.Error("failed to parse query", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error(err.Error()))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	quote, err := h.service.QuoteUpgrade(r.Context(), req.OldPlanID, req.NewPlanID, req.ReferenceDate)
	switch {
	case errors.Is(err, planservice.ErrPlanNotFound):
		log.Info("plan not found", sl.Err(err))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	case errors.Is(err, planservice.ErrInvalidUpgrade):
		log.Info("downgrade requested", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("new plan price is lower than current plan price"))
		return
	case err != nil:
		log.Error("failed to quote upgrade", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not calculate upgrade price"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(Response{
		UpgradeQuote:  quote,
		AmountRounded: quote.Amount.StringFixed(2),
	}))
}

func (h *Handler) parseRequest(r *http.Request) (request, error) {
	q := r.URL.Query()

	oldID, err := strconv.ParseInt(q.Get("old_plan_id"), 10, 64)
	if err != nil {
		return request{}, errors.New("invalid old_plan_id")
	}
	newID, err := strconv.ParseInt(q.Get("new_plan_id"), 10, 64)
	if err != nil {
		return request{}, errors.New("invalid new_plan_id")
	}

	ref := h.now().UTC()
	if raw := q.Get("reference_date"); raw != "" {
		ref, err = parseDate(raw)
		if err != nil {
			return request{}, errors.New("invalid reference_date")
		}
	}

	return request{OldPlanID: oldID, NewPlanID: newID, ReferenceDate: ref}, nil
}

func parseDate(raw string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, raw); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return time.Time{}, err
	}
	return t.UTC(), nil
}
