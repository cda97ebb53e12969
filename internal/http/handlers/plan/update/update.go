// Package update реализует HTTP-обработчик частичного обновления плана.
//
// Поля, отсутствующие в теле запроса, сохраняют прежние значения.
package update

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-plans/internal/http/response"
	"github.com/magabrotheeeer/subscription-plans/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-plans/internal/models"
	planservice "github.com/magabrotheeeer/subscription-plans/internal/services/plan"
)

// Handler обрабатывает запросы на обновление плана.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает обновление плана.
type Service interface {
	UpdatePlan(ctx context.Context, id int64, req models.UpdatePlanRequest) (models.Plan, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновить план
// @Description Изменяет название и/или цену активного плана.
// @Tags Plans
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path int true "ID плана"
// @Param request body models.UpdatePlanRequest true "Изменяемые поля"
// @Success 200 {object} response.Response{data=models.Plan}
// @Failure 400 {object} response.ErrorResponse "Некорректный ID или JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "План не найден"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /plans/{id} [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.update"
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

	var req models.UpdatePlanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request", sl.Err(err))
		render.Status(r, http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	plan, err := h.service.UpdatePlan(r.Context(), id, req)
	switch {
	case errors.Is(err, planservice.ErrPlanNotFound):
		log.Info("plan not found", sl.PlanID(id))
		render.Status(r, http.StatusNotFound)
		render.JSON(w, r, response.Error("plan not found"))
		return
	case errors.Is(err, planservice.ErrEmptyUpdate):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("nothing to update"))
		return
	case errors.Is(err, planservice.ErrNegativePrice):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("price must not be negative"))
		return
	case errors.Is(err, planservice.ErrInvalidPrice):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(planservice.ErrInvalidPrice.Error()))
		return
	case errors.Is(err, planservice.ErrEmptyName):
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("name must not be empty"))
		return
	case err != nil:
		log.Error("failed to update plan", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not update plan"))
		return
	}

	log.Info("plan updated", sl.PlanID(id))
	render.JSON(w, r, response.StatusOKWithData(plan))
}
