// Package oauth реализует HTTP-обработчик входа через внешнего провайдера
// идентификации.
//
// Обработчик принимает уже подтвержденное утверждение провайдера (email и
// отображаемое имя) от шлюза, завершившего OAuth-обмен и проверившего
// подпись id_token. Пользователь без учетной записи создается неявно.
package oauth

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
	"github.com/marketpulse/account-service/internal/models"
)

// Request — подтвержденное утверждение внешнего провайдера.
type Request struct {
	Email string `json:"email" validate:"required,email"`
	Name  string `json:"name" validate:"required,min=1,max=100"`
}

// Service описывает интерфейс входа по внешней идентичности.
type Service interface {
	LoginExternal(ctx context.Context, email, name string) (string, *models.User, error)
}

type Handler struct {
	log      *slog.Logger
	auth     Service
	validate *validator.Validate
}

func New(log *slog.Logger, auth Service) *Handler {
	return &Handler{
		log:      log,
		auth:     auth,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Вход через внешнего провайдера
// @Description Выпускает сессию по подтвержденному утверждению провайдера идентификации.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Подтвержденная идентичность"
// @Success 200 {object} map[string]any "Токен и данные пользователя"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Внутренняя ошибка сервера"
// @Router /auth/oauth [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.oauth"

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
		w.WriteHeader(http.StatusUnprocessableEntity)
		render.JSON(w, r, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	token, user, err := h.auth.LoginExternal(r.Context(), req.Email, req.Name)
	if err != nil {
		log.Error("external login failed", sl.Err(err))
		w.WriteHeader(http.StatusInternalServerError)
		render.JSON(w, r, response.Error("internal error"))
		return
	}

	log.Info("external login success", slog.String("email", req.Email))
	render.JSON(w, r, map[string]any{
		"token": token,
		"user":  user,
	})
}
