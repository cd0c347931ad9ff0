// Package models содержит доменные модели сервиса аккаунтов:
// пользователя, токен сброса пароля и сообщение для очереди писем.
// Структуры используются в бизнес-логике и при работе с хранилищем.
package models

import "time"

// Роли пользователей системы.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// ValidRole сообщает, входит ли роль в допустимый набор.
func ValidRole(role string) bool {
	return role == RoleUser || role == RoleAdmin
}

// User представляет зарегистрированного пользователя системы.
//
// PasswordHash пустой у пользователей, созданных через внешнего
// провайдера идентификации: вход по паролю для них невозможен.
type User struct {
	UID          string    `json:"id"`         // Уникальный идентификатор пользователя
	Email        string    `json:"email"`      // Электронная почта (уникальная)
	Name         string    `json:"name"`       // Отображаемое имя
	PasswordHash string    `json:"-"`          // Хэш пароля, не сериализуется наружу
	Role         string    `json:"role"`       // Роль пользователя, admin или user
	CreatedAt    time.Time `json:"created_at"` // Дата регистрации
}
