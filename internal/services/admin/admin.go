// Package services реализует привилегированные операции администратора:
// просмотр списка пользователей и смену ролей.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/marketpulse/account-service/internal/lib/sl"
	"github.com/marketpulse/account-service/internal/models"
)

// Ошибки привилегированных операций.
var (
	// ErrUnauthorized — актор не администратор.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidRole — запрошенная роль вне набора {user, admin}.
	ErrInvalidRole = errors.New("invalid role")
	// ErrUserNotFound — целевой пользователь отсутствует.
	ErrUserNotFound = errors.New("user not found")
)

// Repository описывает операции хранилища для администрирования.
type Repository interface {
	GetUser(ctx context.Context, userUID string) (*models.User, error)
	ListUsers(ctx context.Context) ([]*models.User, error)
	UpdateUserRole(ctx context.Context, userUID, role string) (int64, error)
}

// EmailPublisher кладет письмо в очередь отправки.
type EmailPublisher interface {
	Publish(msg models.EmailMessage) error
}

// AdminService реализует операции, доступные только администраторам.
type AdminService struct {
	repo      Repository
	publisher EmailPublisher
	log       *slog.Logger
}

// NewAdminService создает новый экземпляр AdminService.
func NewAdminService(repo Repository, publisher EmailPublisher, log *slog.Logger) *AdminService {
	return &AdminService{
		repo:      repo,
		publisher: publisher,
		log:       log,
	}
}

// ListUsers возвращает всех пользователей. Актор должен быть администратором.
func (s *AdminService) ListUsers(ctx context.Context, actorRole string) ([]*models.User, error) {
	const op = "admin.ListUsers"
	if actorRole != models.RoleAdmin {
		return nil, ErrUnauthorized
	}
	users, err := s.repo.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return users, nil
}

// ChangeRole меняет роль целевого пользователя и уведомляет его письмом.
//
// Проверки идут до обращения к хранилищу: сначала роль актора, затем
// допустимость новой роли. Неудача отправки письма логируется и не
// откатывает уже сохраненную смену роли.
//
// Запрет менять собственную роль здесь не проверяется: это политика
// вызывающей стороны, HTTP-обработчик отклоняет такие запросы сам.
func (s *AdminService) ChangeRole(ctx context.Context, actorRole, targetUID, newRole string) error {
	const op = "admin.ChangeRole"
	log := s.log.With(slog.String("op", op))

	if actorRole != models.RoleAdmin {
		return ErrUnauthorized
	}
	if !models.ValidRole(newRole) {
		return ErrInvalidRole
	}

	target, err := s.repo.GetUser(ctx, targetUID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%s: %w", op, err)
	}

	affected, err := s.repo.UpdateUserRole(ctx, targetUID, newRole)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if affected == 0 {
		return ErrUserNotFound
	}

	displayName := target.Name
	if displayName == "" {
		displayName = target.Email
	}
	msg := models.EmailMessage{
		To:      target.Email,
		Subject: "Your Role Has Been Updated",
		HTMLBody: fmt.Sprintf(
			`<p>Hello %s,<br>Your role has been changed to <b>%s</b> by an admin.</p>`,
			displayName, newRole),
	}
	if err := s.publisher.Publish(msg); err != nil {
		log.Error("failed to queue role change email", sl.Err(err))
	}
	return nil
}
