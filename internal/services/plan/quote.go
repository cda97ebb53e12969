package plan

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/magabrotheeeer/subscription-plans/internal/lib/metrics"
	"github.com/magabrotheeeer/subscription-plans/internal/lib/month"
	"github.com/magabrotheeeer/subscription-plans/internal/lib/proration"
	"github.com/magabrotheeeer/subscription-plans/internal/models"
)

// QuoteUpgrade рассчитывает стоимость немедленного перехода с плана oldPlanID на newPlanID
// на дату referenceDate (UTC). Оба плана запрашиваются параллельно, проверка цен
// выполняется только после того, как оба найдены. Метод ничего не изменяет.
func (s *Service) QuoteUpgrade(ctx context.Context, oldPlanID, newPlanID int64, referenceDate time.Time) (models.UpgradeQuote, error) {
	const op = "services.plan.QuoteUpgrade"

	var oldPlan, newPlan models.Plan
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		p, err := s.findPlan(gctx, oldPlanID)
		if err != nil {
			return fmt.Errorf("old plan %d: %w", oldPlanID, err)
		}
		oldPlan = p
		return nil
	})
	g.Go(func() error {
		p, err := s.findPlan(gctx, newPlanID)
		if err != nil {
			return fmt.Errorf("new plan %d: %w", newPlanID, err)
		}
		newPlan = p
		return nil
	})
	if err := g.Wait(); err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			s.metrics.ObserveQuote(metrics.QuoteNotFound)
		} else {
			s.metrics.ObserveQuote(metrics.QuoteError)
		}
		return models.UpgradeQuote{}, fmt.Errorf("%s: %w", op, err)
	}

	referenceDate = month.Normalize(referenceDate)
	breakdown, err := proration.UpgradePrice(oldPlan.Price, newPlan.Price, referenceDate)
	if err != nil {
		if errors.Is(err, ErrInvalidUpgrade) {
			s.metrics.ObserveQuote(metrics.QuoteInvalidUpgrade)
		} else {
			s.metrics.ObserveQuote(metrics.QuoteError)
		}
		return models.UpgradeQuote{}, fmt.Errorf("%s: %w", op, err)
	}
	s.metrics.ObserveQuote(metrics.QuoteOK)

	s.log.Debug("upgrade quoted",
		slog.Int64("old_plan_id", oldPlanID),
		slog.Int64("new_plan_id", newPlanID),
		slog.String("reference_date", referenceDate.Format(time.DateOnly)),
		slog.String("amount", breakdown.Amount.String()),
	)

	return models.UpgradeQuote{
		OldPlanID:     oldPlanID,
		NewPlanID:     newPlanID,
		ReferenceDate: referenceDate,
		TotalDays:     breakdown.TotalDays,
		RemainingDays: breakdown.RemainingDays,
		Credit:        breakdown.Credit,
		Amount:        breakdown.Amount,
	}, nil
}
