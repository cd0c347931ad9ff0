// Package reset реализует HTTP-обработчик погашения токена сброса пароля.
package reset

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/marketpulse/account-service/internal/http/response"
	"github.com/marketpulse/account-service/internal/lib/sl"
	resetservice "github.com/marketpulse/account-service/internal/services/reset"
)

// Request — входные данные со свежим паролем.
type Request struct {
	Password string `json:"password" validate:"required,min=6"`
}

// Service описывает интерфейс погашения токенов сброса.
type Service interface {
	ConsumeReset(ctx context.Context, token, newPassword string) error
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
// @Summary Установка нового пароля по токену сброса
// @Description Токен одноразовый, повторное использование отклоняется.
// @Tags Password
// @Accept  json
// @Produce  json
// @Param token path string true "Токен из письма"
// @Param request body Request true "Новый пароль"
// @Success 200 {object} response.Response
// @Failure 400 {object} response.ErrorResponse "Токен отсутствует, истек или уже использован"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/reset/{token} [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.password.reset"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	token := chi.URLParam(r, "token")

	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		w.WriteHeader(http.StatusBadRequest)
		render.JSON(w, r, response.Error("invalid request body"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Error("validation failed", sl.Err(err))
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	if err := h.reset.ConsumeReset(r.Context(), token, req.Password); err != nil {
		if errors.Is(err, resetservice.ErrInvalidOrExpiredToken) {
			log.Info("reset rejected, token invalid or expired")
			w.WriteHeader(http.StatusBadRequest)
			render.JSON(w, r, response.Error("Token invalid or expired"))
			return
		}
		log.Error("password reset failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("password reset completed")
	render.JSON(w, r, response.OK())
}
