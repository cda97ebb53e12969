package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// UpgradeQuote — расчётная (не сохраняемая) стоимость немедленного перехода
// с одного плана на другой внутри текущего календарного месяца.
type UpgradeQuote struct {
	OldPlanID     int64           `json:"old_plan_id"`
	NewPlanID     int64           `json:"new_plan_id"`
	ReferenceDate time.Time       `json:"reference_date"`
	TotalDays     int             `json:"total_days"`
	RemainingDays int             `json:"remaining_days"`
	Credit        decimal.Decimal `json:"credit"` // Неиспользованная стоимость старого плана
	Amount        decimal.Decimal `json:"amount"` // Сумма к оплате, без округления
}
