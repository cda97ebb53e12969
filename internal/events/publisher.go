// Package events публикует события изменения каталога планов в RabbitMQ.
package events

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/magabrotheeeer/subscription-plans/internal/lib/rabbitmq"
	"github.com/magabrotheeeer/subscription-plans/internal/models"
)

// Publisher отправляет PlanEvent в exchange, используя тип события как routing key.
type Publisher struct {
	ch       rabbitmq.Channel
	exchange string
	now      func() time.Time
}

// NewPublisher создаёт Publisher поверх открытого канала.
func NewPublisher(ch rabbitmq.Channel, exchange string) *Publisher {
	return &Publisher{
		ch:       ch,
		exchange: exchange,
		now:      time.Now,
	}
}

// PublishPlanEvent публикует событие eventType для плана plan.
func (p *Publisher) PublishPlanEvent(ctx context.Context, eventType models.PlanEventType, plan models.Plan) error {
	const op = "events.PublishPlanEvent"
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	event := models.PlanEvent{
		EventID:    uuid.New(),
		Type:       eventType,
		Plan:       plan,
		OccurredAt: p.now().UTC(),
	}
	env := rabbitmq.Envelope{
		ID:         event.EventID.String(),
		Type:       string(eventType),
		OccurredAt: event.OccurredAt,
	}
	if err := rabbitmq.PublishEvent(p.ch, p.exchange, env, event); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// Noop используется, когда брокер не настроен.
type Noop struct{}

// PublishPlanEvent ничего не делает.
func (Noop) PublishPlanEvent(context.Context, models.PlanEventType, models.Plan) error {
	return nil
}
