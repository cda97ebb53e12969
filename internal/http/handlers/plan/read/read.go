// Package read реализует HTTP-обработчик получения активного плана по ID.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-plans/internal/http/response"
	"github.com/magabrotheeeer/subscription-plans/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-plans/internal/models"
	planservice "github.com/magabrotheeeer/subscription-plans/internal/services/plan"
)

// Handler обрабатывает запросы на чтение плана.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает поиск плана.
type Service interface {
	GetPlan(ctx context.Context, id int64) (models.Plan, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить план
// @Description Возвращает активный план по ID. Выведенные из продажи планы не возвращаются.
// @Tags Plans
// @Produce  json
// @Param id path int true "ID плана"
// @Success 200 {object} response.Response{data=models.Plan}
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /plans/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.read"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		log.Error("failed to decode id from url", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("failed to decode id from url"))
		return
	}

	plan, err := h.service.GetPlan(r.Context(), id)
	switch {
	case errors.Is(err, planservice.ErrPlanNotFound):
		log.Info("plan not found", sl.PlanID(id))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	case err != nil:
		log.Error("failed to read plan", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not read plan"))
		return
	}

	render.JSON(w, r, response.StatusOKWithData(plan))
}
