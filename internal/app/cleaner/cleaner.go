// Package cleaner собирает фоновый воркер очистки истекших токенов.
package cleaner

import (
	"context"
	"log/slog"

	"github.com/marketpulse/account-service/internal/config"
	cleanerservice "github.com/marketpulse/account-service/internal/services/cleaner"
	"github.com/marketpulse/account-service/internal/storage/repository"
)

type App struct {
	db      *repository.Storage
	cleaner *cleanerservice.CleanerService
	logger  *slog.Logger
}

func New(cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	svc := cleanerservice.NewCleanerService(db, logger, cfg.CleanupPeriod)
	return &App{
		db:      db,
		cleaner: svc,
		logger:  logger,
	}, nil
}

// Run блокируется до отмены контекста.
func (a *App) Run(ctx context.Context) error {
	a.cleaner.Run(ctx)
	a.logger.Info("token cleaner shutting down gracefully")
	return a.db.DB.Close()
}
