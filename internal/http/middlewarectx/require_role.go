package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"github.com/marketpulse/account-service/internal/http/response"
)

// RequireRole возвращает middleware, пропускающий запрос только если роль
// из контекста входит в allowed. Иначе — 403 Forbidden.
//
// Ставится после JWTMiddleware: роль берется из проверенного токена,
// дополнительного похода в базу не требуется.
func RequireRole(log *slog.Logger, allowed ...string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			role, ok := r.Context().Value(Role).(string)
			if !ok || role == "" {
				log.Error("role missing in request context")
				w.WriteHeader(http.StatusForbidden)
				render.JSON(w, r, response.Error("Unauthorized"))
				return
			}
			for _, want := range allowed {
				if role == want {
					next.ServeHTTP(w, r)
					return
				}
			}
			log.Error("insufficient role", slog.String("role", role))
			w.WriteHeader(http.StatusForbidden)
			render.JSON(w, r, response.Error("Unauthorized"))
		})
	}
}
