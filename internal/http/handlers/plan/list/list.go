// Package list реализует HTTP-обработчик получения списка активных планов.
package list

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-plans/internal/http/response"
	"github.com/magabrotheeeer/subscription-plans/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-plans/internal/models"
)

// Handler обрабатывает запросы на получение каталога.
type Handler struct {
	log     *slog.Logger
	service Service
}

// Service описывает получение активных планов.
type Service interface {
	ListActivePlans(ctx context.Context) ([]models.Plan, error)
}

// New создает новый Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Список планов
// @Description Возвращает все активные планы, упорядоченные по ID.
// @Tags Plans
// @Produce  json
// @Success 200 {object} response.Response{data=[]models.Plan}
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /plans [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.plan.list"
	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	plans, err := h.service.ListActivePlans(r.Context())
	if err != nil {
		log.Error("failed to list plans", sl.Err(err))
		render.Status(r, http.StatusInternalServerError)
		render.JSON(w, r, response.Error("could not list plans"))
		return
	}
	if plans == nil {
		plans = []models.Plan{}
	}

	log.Debug("plans listed", slog.Int("count", len(plans)))
	render.JSON(w, r, response.StatusOKWithData(plans))
}
