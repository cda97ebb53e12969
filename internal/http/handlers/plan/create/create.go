// Package create реализует HTTP-обработчик создания тарифного плана.
package create

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/subscription-plans/internal/http/response"
	"github.com/magabrotheeeer/subscription-plans/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-plans/internal/models"
	planservice "github.com/magabrotheeeer/subscription-plans/internal/services/plan"
)

// Handler управляет HTTP-запросами на создание планов.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// Service описывает бизнес-логику создания плана.
type Service interface {
	CreatePlan(ctx context.Context, req models.CreatePlanRequest) (models.Plan, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать план
// @Description Создает новый активный тарифный план. Цена обязательна, не может быть отрицательной,
// @Description содержит не больше двух знаков после запятой и не превышает 9999999999.99.
// @Tags Plans
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.CreatePlanRequest true "Название и цена плана"
// @Success 201 {object} response.Response{data=models.Plan}
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /plans [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.create"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req models.CreatePlanRequest
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

	plan, err := h.service.CreatePlan(r.Context(), req)
	switch {
	case errors.Is(err, planservice.ErrNegativePrice):
		log.Info("plan rejected", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("price must not be negative"))
		return
	case errors.Is(err, planservice.ErrInvalidPrice):
		log.Info("plan rejected", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error(planservice.ErrInvalidPrice.Error()))
		return
	case errors.Is(err, planservice.ErrPriceRequired):
		log.Info("plan rejected", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("price is required"))
		return
	case errors.Is(err, planservice.ErrEmptyName):
		log.Info("plan rejected", sl.Err(err))
		render.Status(r, http.StatusUnprocessableEntity)
		render.JSON(w, r, response.Error("name must not be empty"))
		return
	case err != nil:
		log.Error("failed to create plan", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not create plan"))
		return
	}

	log.Info("plan created", sl.PlanID(plan.ID))
	render.Status(r, http.StatusCreated)
	render.JSON(w, r, response.StatusOKWithData(plan))
}
