// Package accountservice собирает HTTP-приложение сервиса аккаунтов.
package accountservice

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi"
	"github.com/streadway/amqp"

	"github.com/marketpulse/account-service/internal/config"
	"github.com/marketpulse/account-service/internal/lib/jwt"
	"github.com/marketpulse/account-service/internal/migrations"
	"github.com/marketpulse/account-service/internal/rabbitmq"
	adminservice "github.com/marketpulse/account-service/internal/services/admin"
	authservice "github.com/marketpulse/account-service/internal/services/auth"
	resetservice "github.com/marketpulse/account-service/internal/services/reset"
	"github.com/marketpulse/account-service/internal/storage/repository"
)

type App struct {
	server     *http.Server
	logger     *slog.Logger
	db         *repository.Storage
	rabbitConn *amqp.Connection
}

func New(_ context.Context, cfg *config.Config, logger *slog.Logger) (*App, error) {
	db, err := repository.New(cfg.StorageConnectionString)
	if err != nil {
		return nil, err
	}
	if err = migrations.Run(db.DB, "./migrations"); err != nil {
		return nil, err
	}

	rabbitConn, err := rabbitmq.Connect(cfg.RabbitMQURL, cfg.RabbitMQMaxRetries, cfg.RabbitMQRetryDelay)
	if err != nil {
		return nil, err
	}
	ch, err := rabbitmq.SetupChannel(rabbitConn)
	if err != nil {
		return nil, err
	}
	publisher := &rabbitmq.EmailPublisher{Ch: ch}

	jwtMaker := jwt.NewMaker(cfg.JWTSecretKey, cfg.TokenTTL)
	authService := authservice.NewAuthService(db, jwtMaker)
	resetService := resetservice.NewResetService(db, publisher, logger,
		cfg.ResetTokenTTL, cfg.ResetBaseURL)
	adminService := adminservice.NewAdminService(db, publisher, logger)

	router := chi.NewRouter()
	RegisterRoutes(router, logger, authService, resetService, adminService)

	srv := &http.Server{
		Addr:         cfg.AddressHTTP,
		Handler:      router,
		ReadTimeout:  cfg.TimeoutHTTP,
		WriteTimeout: cfg.TimeoutHTTP,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return &App{
		server:     srv,
		logger:     logger,
		db:         db,
		rabbitConn: rabbitConn,
	}, nil
}

func (a *App) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		a.logger.Info("HTTP server starting on", slog.String("address", a.server.Addr))
		err := a.server.ListenAndServe()
		if errors.Is(err, http.ErrServerClosed) {
			errCh <- nil
		} else {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		timeoutCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		a.logger.Info("shutting down HTTP server gracefully")
		err := a.server.Shutdown(timeoutCtx)
		_ = a.rabbitConn.Close()
		_ = a.db.DB.Close()
		return err
	}
}
