// Package health реализует проверку готовности сервиса.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/render"

	"github.com/magabrotheeeer/subscription-plans/internal/http/response"
	"github.com/magabrotheeeer/subscription-plans/internal/lib/sl"
)

// Check проверяет одну зависимость сервиса.
type Check func(ctx context.Context) error

// Handler возвращает 200, если все проверки прошли, иначе 503.
type Handler struct {
	log     *slog.Logger
	checks  map[string]Check
	timeout time.Duration
}

// New создает Handler с набором именованных проверок.
func New(log *slog.Logger, checks map[string]Check) *Handler {
	return &Handler{
		log:     log,
		checks:  checks,
		timeout: 2 * time.Second,
	}
}

// ServeHTTP godoc
// @Summary Проверка готовности
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response
// @Failure 503 {object} response.Response
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	statuses := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check(ctx); err != nil {
			h.log.Error("health check failed", slog.String("op", op), slog.String("check", name), sl.Err(err))
			statuses[name] = "down"
			healthy = false
			continue
		}
		statuses[name] = "ok"
	}

	if !healthy {
		render.Status(r, http.StatusServiceUnavailable)
		render.JSON(w, r, response.Response{Status: response.StatusError, Error: "service unavailable", Data: statuses})
		return
	}
	render.JSON(w, r, response.StatusOKWithData(statuses))
}
