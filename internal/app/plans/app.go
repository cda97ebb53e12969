package plans

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/streadway/amqp"
	"golang.org/x/time/rate"

	_ "github.com/magabrotheeeer/subscription-plans/docs" // swagger spec
	"github.com/magabrotheeeer/subscription-plans/internal/cache"
	"github.com/magabrotheeeer/subscription-plans/internal/config"
	"github.com/magabrotheeeer/subscription-plans/internal/events"
	"github.com/magabrotheeeer/subscription-plans/internal/http/handlers/health"
	"github.com/magabrotheeeer/subscription-plans/internal/lib/jwt"
	"github.com/magabrotheeeer/subscription-plans/internal/lib/metrics"
	"github.com/magabrotheeeer/subscription-plans/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-plans/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-plans/internal/migrations"
	planservice "github.com/magabrotheeeer/subscription-plans/internal/services/plan"
	"github.com/magabrotheeeer/subscription-plans/internal/storage/repository"
)

// App — HTTP-сервис каталога планов со всеми зависимостями.
type App struct {
	server *http.Server
	logger *slog.Logger
	db     *repository.Storage
	cache  *cache.Cache
	mq     *amqp.Connection
}

// New подключает хранилище, кеш и брокер, применяет миграции и собирает роутер.
func New(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	const op = "app.plans.New"

	db, err := repository.New(ctx, cfg.StorageConnectionString)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = migrations.Run(db.DB, cfg.MigrationsPath); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	cacheRedis, err := cache.InitServer(ctx, cfg.RedisConnection)
	if err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	var (
		publisher planservice.EventPublisher = events.Noop{}
		mq        *amqp.Connection
	)
	if cfg.RabbitMQ.URL != "" {
		mq, err = rabbitmq.Connect(ctx, cfg.RabbitMQ.URL, 5, 2*time.Second)
		if err != nil {
			_ = db.Close()
			_ = cacheRedis.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		ch, err := rabbitmq.SetupExchange(mq, cfg.RabbitMQ.Exchange)
		if err != nil {
			_ = mq.Close()
			_ = db.Close()
			_ = cacheRedis.Close()
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		publisher = events.NewPublisher(ch, cfg.RabbitMQ.Exchange)
	} else {
		logger.Warn("rabbitmq url is empty, plan events are disabled")
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	planService := planservice.NewService(
		db,
		cacheRedis,
		publisher,
		metrics.New(reg),
		logger,
		cfg.CacheTTL,
	)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, RouteDeps{
		Plans:   planService,
		Tokens:  jwt.NewJWTMaker(cfg.JWTSecretKey, cfg.TokenTTL),
		Limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.RateBurst),
		Checks: map[string]health.Check{
			"postgres": db.CheckDatabaseReady,
			"redis":    cacheRedis.Ping,
		},
		Metrics: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	})

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server: srv,
		logger: logger,
		db:     db,
		cache:  cacheRedis,
		mq:     mq,
	}, nil
}

// Run запускает HTTP-сервер и останавливает его при отмене ctx.
func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		a.close()
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		a.close()
		return err
	}
}

func (a *App) close() {
	if a.mq != nil {
		if err := a.mq.Close(); err != nil {
			a.logger.Warn("failed to close rabbitmq connection", sl.Err(err))
		}
	}
	if err := a.cache.Close(); err != nil {
		a.logger.Warn("failed to close redis", sl.Err(err))
	}
	if err := a.db.Close(); err != nil {
		a.logger.Warn("failed to close postgres", sl.Err(err))
	}
}
