package models

import "time"

// ResetToken — одноразовый токен для сброса пароля.
// Токен действует ограниченное время и удаляется после первого использования.
type ResetToken struct {
	ID        int64     // Идентификатор записи
	UserUID   string    // Пользователь, которому выдан токен
	Token     string    // Случайная строка токена (256 бит энтропии, hex)
	ExpiresAt time.Time // Момент истечения срока действия
	CreatedAt time.Time // Момент выдачи
}

// Expired сообщает, истек ли срок действия токена на момент now.
func (t *ResetToken) Expired(now time.Time) bool {
	return !t.ExpiresAt.After(now)
}
