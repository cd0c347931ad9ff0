// Package jwt реализует выпуск и разбор подписанных сессионных токенов.
//
// Сессия не хранится на сервере: вся идентичность пользователя (uid, email,
// имя и роль) зашита в claims токена и подтверждается подписью. Роль
// кладется в токен всегда, чтобы проверка прав не требовала
// дополнительного похода в базу.
package jwt

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// SessionClaims описывает данные пользователя, хранящиеся в токене.
type SessionClaims struct {
	UserUID              string `json:"uid"`   // Идентификатор пользователя
	Email                string `json:"email"` // Электронная почта
	Name                 string `json:"name"`  // Отображаемое имя
	Role                 string `json:"role"`  // Роль пользователя
	jwt.RegisteredClaims        // Стандартные claims (ExpiresAt, IssuedAt и пр.)
}

// Maker описывает интерфейс для выпуска и разбора сессионных токенов.
type Maker interface {
	// GenerateToken выпускает токен для пользователя с заданной идентичностью.
	GenerateToken(uid, email, name, role string) (string, error)
	// ParseToken проверяет подпись и срок действия, возвращает claims.
	ParseToken(tokenStr string) (*SessionClaims, error)
}

// MakerImpl реализует Maker на HS256 с секретным ключом и TTL токена.
type MakerImpl struct {
	secretKey string        // Секретный ключ для подписи токенов.
	tokenTTL  time.Duration // Время жизни токена.
}

// NewMaker создает новый MakerImpl с секретным ключом и TTL.
func NewMaker(secretKey string, ttl time.Duration) *MakerImpl {
	return &MakerImpl{
		secretKey: secretKey,
		tokenTTL:  ttl,
	}
}
