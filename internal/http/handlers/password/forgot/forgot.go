// Package forgot реализует HTTP-обработчик запроса сброса пароля.
//
// Ответ одинаков для зарегистрированного и незарегистрированного email:
// всегда 200 {"success":true}. По телу ответа нельзя определить,
// существует ли учетная запись.
package forgot

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/marketpulse/account-service/internal/http/response"
	"github.com/marketpulse/account-service/internal/lib/sl"
)

// Request — входные данные запроса сброса пароля.
type Request struct {
	Email string `json:"email" validate:"required,email"`
}

// Service описывает интерфейс выдачи токенов сброса.
type Service interface {
	RequestReset(ctx context.Context, email string) error
}

type Handler struct {
	log      *slog.Logger
	reset    Service
	validate *validator.Validate
}

func New(log *slog.Logger, reset Service) *Handler {
	return &Handler{
		log:      log,
		reset:    reset,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Запрос сброса пароля
// @Description Всегда отвечает успехом; письмо уходит только существующему пользователю.
// @Tags Password
// @Accept  json
// @Produce  json
// @Param request body Request true "Email для сброса"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Email не указан"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/forgot-password [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.password.forgot"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("Email is required."))
		return
	}

	if err := h.reset.RequestReset(r.Context(), req.Email); err != nil {
		log.Error("reset request failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	render.JSON(w, r, response.OK())
}
