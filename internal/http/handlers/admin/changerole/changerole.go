// Package changerole реализует HTTP-обработчик смены роли пользователя.
//
// Смена собственной роли отклоняется здесь, на вызывающей стороне:
// сервис администрирования структурно такую операцию допускает, но
// внешняя поверхность запрещает администратору понизить или повысить
// самого себя.
package changerole

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/marketpulse/account-service/internal/http/middlewarectx"
	"github.com/marketpulse/account-service/internal/http/response"
	"github.com/marketpulse/account-service/internal/lib/sl"
	adminservice "github.com/marketpulse/account-service/internal/services/admin"
)

// Request — входные данные для смены роли.
type Request struct {
	UserID  string `json:"userId" validate:"required,uuid"`
	NewRole string `json:"newRole" validate:"required"`
}

// Service описывает интерфейс администрирования пользователей.
type Service interface {
	ChangeRole(ctx context.Context, actorRole, targetUID, newRole string) error
}

type Handler struct {
	log      *slog.Logger
	admin    Service
	validate *validator.Validate
}

func New(log *slog.Logger, admin Service) *Handler {
	return &Handler{
		log:      log,
		admin:    admin,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Смена роли пользователя
// @Description Меняет роль целевого пользователя и отправляет ему уведомление.
// @Tags Admin
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Идентификатор пользователя и новая роль"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Некорректные данные или смена собственной роли"
// @Failure 403 {object} response.ErrorResponse "Недостаточно прав"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /admin/users [patch]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.admin.changerole"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("Invalid data"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("Invalid data"))
		return
	}

	actorUID, _ := r.Context().Value(middlewarectx.UserUID).(string)
	actorRole, _ := r.Context().Value(middlewarectx.Role).(string)

	if req.UserID == actorUID {
		log.Info("self role change rejected", slog.String("user_uid", actorUID))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("cannot change your own role"))
		return
	}

	err := h.admin.ChangeRole(r.Context(), actorRole, req.UserID, req.NewRole)
	if err != nil {
		switch {
		case errors.Is(err, adminservice.ErrUnauthorized):
			log.Info("role change rejected", slog.String("role", actorRole))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("Unauthorized"))
		case errors.Is(err, adminservice.ErrInvalidRole):
			log.Info("role change rejected, invalid role", slog.String("new_role", req.NewRole))
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("Invalid data"))
		case errors.Is(err, adminservice.ErrUserNotFound):
			log.Info("role change rejected, user not found", slog.String("user_uid", req.UserID))
			w.WriteHeader(http.StatusNotFound)
			render.JSON(w, r, response.Error("User not found"))
		default:
			log.Error("role change failed", sl.Err(err))
			w.WriteHeader(http.StatusInternalServerError)
			render.JSON(w, r, response.Error("internal error"))
		}
		return
	}

	log.Info("role updated",
		slog.String("user_uid", req.UserID),
		slog.String("new_role", req.NewRole),
	)
	render.JSON(w, r, response.OK())
}
