package models

import (
	"time"

	"github.com/google/uuid"
)

// PlanEventType — тип события изменения каталога планов.
type PlanEventType string

const (
	PlanCreated PlanEventType = "plan.created"
	PlanUpdated PlanEventType = "plan.updated"
	PlanRetired PlanEventType = "plan.retired"
)

// PlanEvent публикуется в брокер сообщений после каждого изменения плана.
type PlanEvent struct {
	EventID    uuid.UUID     `json:"event_id"`
	Type       PlanEventType `json:"type"`
	Plan       Plan          `json:"plan"`
	OccurredAt time.Time     `json:"occurred_at"`
}
