// Package proration рассчитывает стоимость немедленного перехода на более дорогой план
// внутри календарного месяца. Пакет не обращается к хранилищу и к системным часам:
// дата расчёта всегда передаётся вызывающей стороной.
package proration

import (
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/subscription-plans/internal/lib/month"
)

// ErrInvalidUpgrade возвращается, когда цена старого плана выше цены нового (даунгрейд).
var ErrInvalidUpgrade = errors.New("invalid upgrade: new plan price is lower than current plan price")

// ErrNegativePrice возвращается для отрицательной цены любого из планов.
var ErrNegativePrice = errors.New("plan price must not be negative")

// Breakdown содержит промежуточные величины расчёта.
type Breakdown struct {
	TotalDays     int             // Дней в месяце даты расчёта
	RemainingDays int             // Дней после даты расчёта до конца месяца
	Credit        decimal.Decimal // Неиспользованная стоимость старого плана
	Amount        decimal.Decimal // Итог к оплате
}

// UpgradePrice возвращает сумму к оплате за переход со старого плана на новый:
// полная цена нового плана минус стоимость оставшихся дней старого.
//
//	credit = oldPrice / totalDays * remainingDays
//	amount = newPrice - credit
//
// Умножение выполняется до деления, поэтому промежуточного округления дневной ставки нет.
// Итог не округляется, округление до копеек — забота слоя отображения.
func UpgradePrice(oldPrice, newPrice decimal.Decimal, referenceDate time.Time) (Breakdown, error) {
	if oldPrice.IsNegative() || newPrice.IsNegative() {
		return Breakdown{}, ErrNegativePrice
	}
	if oldPrice.GreaterThan(newPrice) {
		return Breakdown{}, ErrInvalidUpgrade
	}

	totalDays := month.DaysIn(referenceDate)
	remainingDays := month.RemainingDays(referenceDate)

	credit := oldPrice.
		Mul(decimal.NewFromInt(int64(remainingDays))).
		Div(decimal.NewFromInt(int64(totalDays)))

	return Breakdown{
		TotalDays:     totalDays,
		RemainingDays: remainingDays,
		Credit:        credit,
		Amount:        newPrice.Sub(credit),
	}, nil
}
