// Package month содержит вспомогательные функции календарной арифметики.
// Все вычисления выполняются в UTC, чтобы результат не зависел от часового пояса сервера.
package month

import (
	"time"
)

// Normalize отбрасывает время суток и приводит дату к UTC.
func Normalize(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysIn возвращает количество дней в календарном месяце, которому принадлежит t.
func DaysIn(t time.Time) int {
	t = t.UTC()
	// нулевой день следующего месяца — последний день текущего
	return time.Date(t.Year(), t.Month()+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// RemainingDays считает дни строго после t до конца месяца включительно.
// Сам день t оставшимся не считается, поэтому в последний день месяца результат равен 0.
func RemainingDays(t time.Time) int {
	return DaysIn(t) - t.UTC().Day()
}

// IsLastDay сообщает, является ли t последним днём своего месяца.
func IsLastDay(t time.Time) bool {
	return RemainingDays(t) == 0
}
