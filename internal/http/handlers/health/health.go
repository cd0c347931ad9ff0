// Package health реализует проверку живости сервиса.
package health

import (
	"net/http"

	"github.com/go-chi/render"

	"github.com/marketpulse/account-service/internal/http/response"
)

// New возвращает обработчик проверки живости.
//
// @Summary Проверка живости
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Router /health [get]
func New() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, response.OK())
	}
}
