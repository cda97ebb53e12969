// Package storage содержит общие для слоёв хранения ошибки.
package storage

import "errors"

var (
	// ErrPlanNotFound — план с указанным идентификатором не существует или выведен из продажи.
	ErrPlanNotFound = errors.New("plan not found")
)
