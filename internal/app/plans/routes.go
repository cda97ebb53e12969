// Package plans собирает HTTP API каталога тарифных планов.
package plans

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"
	"golang.org/x/time/rate"

	"github.com/magabrotheeeer/subscription-plans/internal/http/handlers/health"
	"github.com/magabrotheeeer/subscription-plans/internal/http/handlers/plan/create"
	"github.com/magabrotheeeer/subscription-plans/internal/http/handlers/plan/list"
	"github.com/magabrotheeeer/subscription-plans/internal/http/handlers/plan/quote"
	"github.com/magabrotheeeer/subscription-plans/internal/http/handlers/plan/read"
	"github.com/magabrotheeeer/subscription-plans/internal/http/handlers/plan/retire"
	"github.com/magabrotheeeer/subscription-plans/internal/http/handlers/plan/update"
	"github.com/magabrotheeeer/subscription-plans/internal/http/middlewarectx"
	"github.com/magabrotheeeer/subscription-plans/internal/lib/jwt"
	planservice "github.com/magabrotheeeer/subscription-plans/internal/services/plan"
)

// RouteDeps — зависимости, которые нужны маршрутам.
type RouteDeps struct {
	Plans   *planservice.Service
	Tokens  middlewarectx.TokenParser
	Limiter *rate.Limiter
	Checks  map[string]health.Check
	Metrics http.Handler
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, deps RouteDeps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
	)

	r.Get("/health", health.New(logger, deps.Checks).ServeHTTP)

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger, deps.Limiter))

		// Открытые конечные точки
		r.Get("/plans", list.New(logger, deps.Plans).ServeHTTP)
		r.Get("/plans/upgrade-quote", quote.New(logger, deps.Plans).ServeHTTP)
		r.Get("/plans/{id}", read.New(logger, deps.Plans).ServeHTTP)

		// Изменение каталога только для администраторов
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(deps.Tokens, logger))
			r.Use(middlewarectx.RequireRole(logger, jwt.RoleAdmin))
			r.Post("/plans", create.New(logger, deps.Plans).ServeHTTP)
			r.Patch("/plans/{id}", update.New(logger, deps.Plans).ServeHTTP)
			r.Delete("/plans/{id}", retire.New(logger, deps.Plans).ServeHTTP)
		})
	})

	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
