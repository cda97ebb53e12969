// Package jwt реализует генерацию и парсинг JWT токенов с ролью пользователя.
//
// Токены выпускает внешний сервис авторизации с тем же секретом; здесь они
// только проверяются. GenerateToken используется в тестах и служебных утилитах.
package jwt

import (
	"time"
)

// Роли, которые понимает API планов.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Maker описывает интерфейс для генерации и парсинга JWT токенов.
type Maker interface {
	GenerateToken(subject, role string) (string, error)
	ParseToken(tokenStr string) (*CustomClaims, error)
}

// MakerImpl реализует Maker с использованием секретного ключа HS256
// и времени жизни токена (TTL).
type MakerImpl struct {
	secretKey string
	tokenTTL  time.Duration
}

// NewJWTMaker создаёт новый экземпляр MakerImpl.
func NewJWTMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
