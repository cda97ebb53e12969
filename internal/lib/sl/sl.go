// Package sl содержит вспомогательные функции для структурированного логирования через slog.
package sl

import "log/slog"

// Err возвращает атрибут "error" с текстом ошибки.
//
// Пример:
//
//	log.Error("failed to quote upgrade", sl.Err(err))
func Err(err error) slog.Attr {
	if err == nil {
		return slog.String("error", "<nil>")
	}
	return slog.String("error", err.Error())
}

// PlanID возвращает атрибут с идентификатором плана.
func PlanID(id int64) slog.Attr {
	return slog.Int64("plan_id", id)
}
