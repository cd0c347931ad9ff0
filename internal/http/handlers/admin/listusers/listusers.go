// Package listusers реализует HTTP-обработчик списка пользователей
// для панели администратора.
package listusers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/marketpulse/account-service/internal/http/middlewarectx"
	"github.com/marketpulse/account-service/internal/http/response"
	"github.com/marketpulse/account-service/internal/lib/sl"
	"github.com/marketpulse/account-service/internal/models"
	adminservice "github.com/marketpulse/account-service/internal/services/admin"
)

// Service описывает интерфейс администрирования пользователей.
type Service interface {
	ListUsers(ctx context.Context, actorRole string) ([]*models.User, error)
}

type Handler struct {
	log   *slog.Logger
	admin Service
}

func New(log *slog.Logger, admin Service) *Handler {
	return &Handler{
		log:   log,
		admin: admin,
	}
}

// ServeHTTP godoc
// @Summary Список всех пользователей
// @Description Доступно только администраторам. Хэши паролей не возвращаются.
// @Tags Admin
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} map[string]any "Список пользователей"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /admin/users [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.listusers"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	role, _ := r.Context().Value(middlewarectx.Role).(string)

	users, err := h.admin.ListUsers(r.Context(), role)
	if err != nil {
		if errors.Is(err, adminservice.ErrUnauthorized) {
			log.Info("list users rejected", slog.String("role", role))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("Unauthorized"))
			return
		}
		log.Error("failed to list users", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, map[string]any{
		"users": users,
	})
}
