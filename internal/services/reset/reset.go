// Package services реализует жизненный цикл токенов сброса пароля:
// выдачу по запросу "забыл пароль" и одноразовое погашение.
package services

import (
	"context"
	"crypto/rand"
	"crypto/subtle"
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/marketpulse/account-service/internal/lib/password"
	"github.com/marketpulse/account-service/internal/lib/sl"
	"github.com/marketpulse/account-service/internal/models"
)

// ErrInvalidOrExpiredToken возвращается при погашении отсутствующего,
// истекшего или уже использованного токена.
var ErrInvalidOrExpiredToken = errors.New("token invalid or expired")

// tokenBytes — размер токена в байтах, 256 бит энтропии.
const tokenBytes = 32

// Repository описывает операции хранилища, нужные для сброса пароля.
type Repository interface {
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CreateResetToken(ctx context.Context, token models.ResetToken) error
	GetResetToken(ctx context.Context, token string) (*models.ResetToken, error)
	DeleteResetToken(ctx context.Context, id int64) (int64, error)
	UpdateUserPassword(ctx context.Context, userUID, passwordHash string) error
}

// EmailPublisher кладет письмо в очередь отправки.
type EmailPublisher interface {
	Publish(msg models.EmailMessage) error
}

// ResetService реализует выдачу и погашение токенов сброса пароля.
type ResetService struct {
	repo         Repository
	publisher    EmailPublisher
	log          *slog.Logger
	tokenTTL     time.Duration
	resetBaseURL string
}

// NewResetService создает новый экземпляр ResetService.
func NewResetService(repo Repository, publisher EmailPublisher, log *slog.Logger,
	tokenTTL time.Duration, resetBaseURL string) *ResetService {
	return &ResetService{
		repo:         repo,
		publisher:    publisher,
		log:          log,
		tokenTTL:     tokenTTL,
		resetBaseURL: resetBaseURL,
	}
}

// RequestReset обрабатывает запрос "забыл пароль".
//
// Если пользователь существует, выдается токен на tokenTTL и в очередь
// кладется письмо со ссылкой. Если пользователя нет, не происходит ничего,
// но результат тот же — вызывающая сторона не может отличить эти случаи.
// Ошибка отправки письма логируется и не считается ошибкой операции.
func (s *ResetService) RequestReset(ctx context.Context, email string) error {
	const op = "reset.RequestReset"
	log := s.log.With(slog.String("op", op))

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Info("reset requested for unknown email")
			return nil
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	token, err := newResetToken()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	err = s.repo.CreateResetToken(ctx, models.ResetToken{
		UserUID:   user.UID,
		Token:     token,
		ExpiresAt: time.Now().UTC().Add(s.tokenTTL),
	})
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	resetURL := s.resetBaseURL + "/" + token
	msg := models.EmailMessage{
		To:      user.Email,
		Subject: "Password Reset",
		HTMLBody: fmt.Sprintf(
			`<p>Click <a href="%s">here</a> to reset your password. This link will expire in 1 hour.</p>`,
			resetURL),
	}
	if err := s.publisher.Publish(msg); err != nil {
		log.Error("failed to queue reset email", sl.Err(err))
	}
	return nil
}

// ConsumeReset погашает токен и устанавливает новый пароль.
//
// Токен одноразовый: повторный вызов с тем же значением возвращает
// ErrInvalidOrExpiredToken, как и истекший или неизвестный токен.
func (s *ResetService) ConsumeReset(ctx context.Context, token, newPassword string) error {
	const op = "reset.ConsumeReset"

	stored, err := s.repo.GetResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidOrExpiredToken
		}
		return fmt.Errorf("%s: %w", op, err)
	}
	if stored.Expired(time.Now().UTC()) {
		return ErrInvalidOrExpiredToken
	}
	// Сравнение без ранних выходов, чтобы не давать тайминговый оракул.
	if subtle.ConstantTimeCompare([]byte(stored.Token), []byte(token)) != 1 {
		return ErrInvalidOrExpiredToken
	}

	hashed, err := password.GetHash(newPassword)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := s.repo.UpdateUserPassword(ctx, stored.UserUID, hashed); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if _, err := s.repo.DeleteResetToken(ctx, stored.ID); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// newResetToken возвращает криптографически случайную hex-строку.
func newResetToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
