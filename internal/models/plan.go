// Package models содержит доменные структуры тарифных планов,
// а также типы для приёма данных из JSON-запросов.
package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PlanStatus описывает жизненный цикл плана. Планы никогда не удаляются физически,
// вместо этого они переводятся в статус retired.
type PlanStatus string

const (
	// PlanStatusActive — план доступен для подписки и апгрейда.
	PlanStatusActive PlanStatus = "active"
	// PlanStatusRetired — план выведен из продажи (мягкое удаление).
	PlanStatusRetired PlanStatus = "retired"
)

// Plan представляет тарифный план с ценой за календарный месяц.
type Plan struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Status    PlanStatus      `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// IsActive сообщает, доступен ли план.
func (p Plan) IsActive() bool {
	return p.Status == PlanStatusActive
}

// CreatePlanRequest используется для приёма данных нового плана из JSON-запроса.
type CreatePlanRequest struct {
	Name  string           `json:"name" validate:"required,max=255"` // Название плана
	Price *decimal.Decimal `json:"price" validate:"required"`        // Цена за месяц, >= 0, не больше двух знаков после запятой
}

// UpdatePlanRequest описывает частичное обновление плана.
// Поле, равное nil, остаётся без изменений.
type UpdatePlanRequest struct {
	Name  *string          `json:"name,omitempty" validate:"omitempty,min=1,max=255"`
	Price *decimal.Decimal `json:"price,omitempty"`
}

// Empty сообщает, что запрос не содержит ни одного поля для обновления.
func (r UpdatePlanRequest) Empty() bool {
	return r.Name == nil && r.Price == nil
}
