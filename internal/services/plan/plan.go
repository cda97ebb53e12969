// Package plan содержит бизнес-логику управления тарифными планами
// и расчёта стоимости апгрейда.
package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-plans/internal/lib/metrics"
	"github.com/magabrotheeeer/subscription-plans/internal/lib/proration"
	"github.com/magabrotheeeer/subscription-plans/internal/lib/sl"
	"github.com/magabrotheeeer/subscription-plans/internal/models"
	"github.com/magabrotheeeer/subscription-plans/internal/storage"
)

var (
	// ErrPlanNotFound — план не существует или выведен из продажи.
	ErrPlanNotFound = storage.ErrPlanNotFound
	// ErrInvalidUpgrade — запрошенный переход является даунгрейдом.
	ErrInvalidUpgrade = proration.ErrInvalidUpgrade
	// ErrNegativePrice — цена плана меньше нуля.
	ErrNegativePrice = proration.ErrNegativePrice
	// ErrInvalidPrice — цену нельзя сохранить без округления: больше двух знаков
	// после запятой или больше MaxPrice.
	ErrInvalidPrice = errors.New("plan price must have at most 2 decimal places and not exceed 9999999999.99")
	// ErrPriceRequired — в запросе на создание нет цены.
	ErrPriceRequired = errors.New("plan price is required")
	// ErrEmptyName — пустое название плана.
	ErrEmptyName = errors.New("plan name must not be empty")
	// ErrEmptyUpdate — в запросе на обновление нет ни одного поля.
	ErrEmptyUpdate = errors.New("nothing to update")
)

// Repository определяет методы хранилища планов.
type Repository interface {
	CreatePlan(ctx context.Context, name string, price decimal.Decimal) (models.Plan, error)
	// FindPlanByID возвращает план в любом статусе или storage.ErrPlanNotFound.
	FindPlanByID(ctx context.Context, id int64) (models.Plan, error)
	ListPlans(ctx context.Context, status models.PlanStatus) ([]models.Plan, error)
	UpdatePlan(ctx context.Context, id int64, name *string, price *decimal.Decimal) (models.Plan, error)
	SetPlanStatus(ctx context.Context, id int64, status models.PlanStatus) (models.Plan, error)
}

// MaxPrice — наибольшая цена, которая помещается в NUMERIC(12,2).
var MaxPrice = decimal.RequireFromString("9999999999.99")

// Cache описывает методы для кэширования данных.
type Cache interface {
	// Get пытается получить значение из кеша по ключу.
	Get(ctx context.Context, key string, result any) (bool, error)
	// Set сохраняет значение в кеш с временем жизни, перезаписывая старое.
	Set(ctx context.Context, key string, value any, expiration time.Duration) error
	// SetIfAbsent сохраняет значение, только если ключа ещё нет.
	SetIfAbsent(ctx context.Context, key string, value any, expiration time.Duration) (bool, error)
	// Invalidate удаляет значение из кеша по ключу.
	Invalidate(ctx context.Context, key string) error
}

// EventPublisher уведомляет внешние системы об изменении каталога.
type EventPublisher interface {
	PublishPlanEvent(ctx context.Context, eventType models.PlanEventType, plan models.Plan) error
}

// Service реализует операции над планами с read-through кешем.
type Service struct {
	repo     Repository
	cache    Cache
	events   EventPublisher
	metrics  *metrics.Metrics
	log      *slog.Logger
	cacheTTL time.Duration
}

// NewService создаёт новый экземпляр Service. m может быть nil.
func NewService(repo Repository, cache Cache, events EventPublisher, m *metrics.Metrics, log *slog.Logger, cacheTTL time.Duration) *Service {
	return &Service{
		repo:     repo,
		cache:    cache,
		events:   events,
		metrics:  m,
		log:      log,
		cacheTTL: cacheTTL,
	}
}

// validatePrice проверяет, что цена сохранится в хранилище без изменений.
func validatePrice(price decimal.Decimal) error {
	if price.IsNegative() {
		return ErrNegativePrice
	}
	if !price.Equal(price.Truncate(2)) || price.GreaterThan(MaxPrice) {
		return ErrInvalidPrice
	}
	return nil
}

func cacheKey(id int64) string {
	return fmt.Sprintf("plan:%d", id)
}

// CreatePlan сохраняет новый активный план.
func (s *Service) CreatePlan(ctx context.Context, req models.CreatePlanRequest) (models.Plan, error) {
	const op = "services.plan.CreatePlan"

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return models.Plan{}, fmt.Errorf("%s: %w", op, ErrEmptyName)
	}
	if req.Price == nil {
		return models.Plan{}, fmt.Errorf("%s: %w", op, ErrPriceRequired)
	}
	if err := validatePrice(*req.Price); err != nil {
		return models.Plan{}, fmt.Errorf("%s: %w", op, err)
	}

	plan, err := s.repo.CreatePlan(ctx, name, *req.Price)
	if err != nil {
		return models.Plan{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("created new plan", sl.PlanID(plan.ID))

	s.remember(ctx, plan)
	s.publish(ctx, models.PlanCreated, plan)
	s.metrics.ObserveMutation("create")
	return plan, nil
}

// UpdatePlan обновляет переданные поля плана, остальные сохраняют прежние значения.
func (s *Service) UpdatePlan(ctx context.Context, id int64, req models.UpdatePlanRequest) (models.Plan, error) {
	const op = "services.plan.UpdatePlan"

	if req.Empty() {
		return models.Plan{}, fmt.Errorf("%s: %w", op, ErrEmptyUpdate)
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return models.Plan{}, fmt.Errorf("%s: %w", op, ErrEmptyName)
		}
		req.Name = &name
	}
	if req.Price != nil {
		if err := validatePrice(*req.Price); err != nil {
			return models.Plan{}, fmt.Errorf("%s: %w", op, err)
		}
	}

	plan, err := s.repo.UpdatePlan(ctx, id, req.Name, req.Price)
	if err != nil {
		return models.Plan{}, fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("updated plan", sl.PlanID(plan.ID))

	s.remember(ctx, plan)
	s.publish(ctx, models.PlanUpdated, plan)
	s.metrics.ObserveMutation("update")
	return plan, nil
}

// RetirePlan выводит план из продажи. Физически план не удаляется.
func (s *Service) RetirePlan(ctx context.Context, id int64) error {
	const op = "services.plan.RetirePlan"

	plan, err := s.repo.SetPlanStatus(ctx, id, models.PlanStatusRetired)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	s.log.Info("retired plan", sl.PlanID(id))

	if err := s.cache.Invalidate(ctx, cacheKey(id)); err != nil {
		s.log.Warn("failed to remove from cache", slog.String("key", cacheKey(id)), sl.Err(err))
	}
	s.publish(ctx, models.PlanRetired, plan)
	s.metrics.ObserveMutation("retire")
	return nil
}

// ListActivePlans возвращает только активные планы.
func (s *Service) ListActivePlans(ctx context.Context) ([]models.Plan, error) {
	const op = "services.plan.ListActivePlans"

	plans, err := s.repo.ListPlans(ctx, models.PlanStatusActive)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return plans, nil
}

// GetPlan возвращает активный план по ID, используя кеш или репозиторий.
func (s *Service) GetPlan(ctx context.Context, id int64) (models.Plan, error) {
	const op = "services.plan.GetPlan"

	plan, err := s.findPlan(ctx, id)
	if err != nil {
		return models.Plan{}, fmt.Errorf("%s: %w", op, err)
	}
	return plan, nil
}

func (s *Service) findPlan(ctx context.Context, id int64) (models.Plan, error) {
	var plan models.Plan
	found, err := s.cache.Get(ctx, cacheKey(id), &plan)
	if err != nil {
		// кеш недоступен — идём в хранилище
		s.log.Warn("failed to read from cache", slog.String("key", cacheKey(id)), sl.Err(err))
	}
	if err != nil || !found {
		plan, err = s.repo.FindPlanByID(ctx, id)
		if err != nil {
			return models.Plan{}, err
		}
		s.fill(ctx, plan)
	}

	if !plan.IsActive() {
		return models.Plan{}, ErrPlanNotFound
	}
	return plan, nil
}

// remember записывает в кеш только что сохранённый план. Если записать не удалось,
// ключ удаляется, чтобы в кеше не осталась прежняя версия.
func (s *Service) remember(ctx context.Context, plan models.Plan) {
	key := cacheKey(plan.ID)
	err := s.cache.Set(ctx, key, plan, s.cacheTTL)
	if err == nil {
		return
	}
	s.log.Warn("failed to cache plan", slog.String("key", key), sl.Err(err))
	if err := s.cache.Invalidate(ctx, key); err != nil {
		s.log.Error("failed to drop stale plan from cache", slog.String("key", key), sl.Err(err))
	}
}

// fill кладёт в кеш план, прочитанный из хранилища. Запись не перетирает ключ:
// если план успели изменить, в кеше уже лежит более новая версия.
func (s *Service) fill(ctx context.Context, plan models.Plan) {
	if _, err := s.cache.SetIfAbsent(ctx, cacheKey(plan.ID), plan, s.cacheTTL); err != nil {
		s.log.Warn("failed to cache plan", slog.String("key", cacheKey(plan.ID)), sl.Err(err))
	}
}

func (s *Service) publish(ctx context.Context, eventType models.PlanEventType, plan models.Plan) {
	if err := s.events.PublishPlanEvent(ctx, eventType, plan); err != nil {
		s.log.Warn("failed to publish plan event",
			slog.String("type", string(eventType)), sl.PlanID(plan.ID), sl.Err(err))
	}
}
