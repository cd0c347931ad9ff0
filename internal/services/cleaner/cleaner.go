// Package services периодически удаляет истекшие токены сброса пароля.
package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/marketpulse/account-service/internal/lib/sl"
)

// Repository описывает операцию очистки хранилища токенов.
type Repository interface {
	DeleteExpiredResetTokens(ctx context.Context) (int64, error)
}

// CleanerService — фоновая задача с фиксированным периодом,
// удаляющая истекшие токены сброса.
type CleanerService struct {
	repo   Repository
	log    *slog.Logger
	period time.Duration
}

// NewCleanerService создает новый экземпляр CleanerService.
func NewCleanerService(repo Repository, log *slog.Logger, period time.Duration) *CleanerService {
	return &CleanerService{
		repo:   repo,
		log:    log,
		period: period,
	}
}

// Run запускает цикл очистки и блокируется до отмены контекста.
// Первая очистка выполняется сразу при старте.
func (s *CleanerService) Run(ctx context.Context) {
	s.purge(ctx)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.purge(ctx)
		case <-ctx.Done():
			return
		}
	}
}

func (s *CleanerService) purge(ctx context.Context) {
	s.log.Info("starting purge of expired reset tokens")
	deleted, err := s.repo.DeleteExpiredResetTokens(ctx)
	if err != nil {
		s.log.Error("failed to delete expired reset tokens", sl.Err(err))
		return
	}
	if deleted == 0 {
		s.log.Info("no expired reset tokens found")
		return
	}
	s.log.Info("deleted expired reset tokens", "count", deleted)
}
