// Package retire реализует HTTP-обработчик вывода плана из продажи.
package retire

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
	planservice "github.com/magabrotheeeer/subscription-plans/internal/services/plan"
)

// Handler обрабатывает запросы на удаление плана.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает мягкое удаление плана.
type Service interface {
	RetirePlan(ctx context.Context, id int64) error
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Вывести план из продажи
// @Description План получает статус retired и исчезает из каталога, но не удаляется из БД.
// @Tags Plans
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID плана"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректный ID"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /plans/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.retire"
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

	err = h.service.RetirePlan(r.Context(), id)
	switch {
	case errors.Is(err, planservice.ErrPlanNotFound):
		log.Info("plan not found", sl.PlanID(id))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	case err != nil:
		log.Error("failed to retire plan", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not retire plan"))
		return
	}

	log.Info("plan retired", sl.PlanID(id))
	render.JSON(w, r, response.StatusOKWithData(map[string]any{
		"retired_id": id,
	}))
}
