// Package accountservice предоставляет маршруты сервиса аккаунтов.
package accountservice

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"

	"github.com/marketpulse/account-service/internal/http/handlers/admin/changerole"
	"github.com/marketpulse/account-service/internal/http/handlers/admin/listusers"
	"github.com/marketpulse/account-service/internal/http/handlers/auth/login"
	"github.com/marketpulse/account-service/internal/http/handlers/auth/oauth"
	"github.com/marketpulse/account-service/internal/http/handlers/auth/register"
	"github.com/marketpulse/account-service/internal/http/handlers/health"
	"github.com/marketpulse/account-service/internal/http/handlers/password/forgot"
	resetpw "github.com/marketpulse/account-service/internal/http/handlers/password/reset"
	"github.com/marketpulse/account-service/internal/http/middlewarectx"
	"github.com/marketpulse/account-service/internal/models"
	adminservice "github.com/marketpulse/account-service/internal/services/admin"
	authservice "github.com/marketpulse/account-service/internal/services/auth"
	resetservice "github.com/marketpulse/account-service/internal/services/reset"
)

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger,
	authService *authservice.AuthService,
	resetService *resetservice.ResetService,
	adminService *adminservice.AdminService) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.Logger,
		middleware.Recoverer,
		middleware.URLFormat,
	)

	// Открытые конечные точки: частота ограничена
	r.Route("/auth", func(r chi.Router) {
		r.Use(middlewarectx.RateLimitMiddleware(logger))
		r.Post("/register", register.New(logger, authService).ServeHTTP)
		r.Post("/login", login.New(logger, authService).ServeHTTP)
		r.Post("/oauth", oauth.New(logger, authService).ServeHTTP)
		r.Post("/forgot-password", forgot.New(logger, resetService).ServeHTTP)
		r.Post("/reset/{token}", resetpw.New(logger, resetService).ServeHTTP)
	})

	// Панель администратора: сессия и роль admin обязательны
	r.Route("/admin", func(r chi.Router) {
		r.Use(middlewarectx.JWTMiddleware(authService, logger))
		r.Use(middlewarectx.RequireRole(logger, models.RoleAdmin))
		r.Get("/users", listusers.New(logger, adminService).ServeHTTP)
		r.Patch("/users", changerole.New(logger, adminService).ServeHTTP)
	})

	r.Get("/health", health.New())
	r.Handle("/metrics", promhttp.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
