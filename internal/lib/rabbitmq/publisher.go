package rabbitmq

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// AppID — значение свойства app_id во всех сообщениях сервиса.
const AppID = "plans-api"

// Channel — часть *amqp.Channel, нужная для публикации.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Envelope — метаданные события о плане. Type служит и routing key
// (plan.created, plan.updated, plan.retired), ID позволяет потребителю
// отбросить повторную доставку.
type Envelope struct {
	ID         string
	Type       string
	OccurredAt time.Time
}

// PublishEvent публикует событие каталога планов: тело — JSON payload,
// метаданные из env попадают в свойства сообщения. Сообщение persistent.
func PublishEvent(ch Channel, exchange string, env Envelope, payload any) error {
	const op = "rabbitmq.PublishEvent"
	if env.Type == "" {
		return fmt.Errorf("%s: empty event type", op)
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	err = ch.Publish(
		exchange,
		env.Type,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    env.ID,
			Type:         env.Type,
			Timestamp:    env.OccurredAt,
			AppId:        AppID,
			Body:         body,
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w (event %s)", op, err, env.ID)
	}
	return nil
}
