package middleware

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/m04kA/SMC-LessonService/internal/api/handlers"
)

const (
	msgTooManyRequests = "too many requests, please slow down"
	rateLimitPrefix    = "ratelimit:"
)

// RateLimit ограничивает частоту запросов пользователя
// При недоступности Redis запрос пропускается
func RateLimit(limiter RateLimiter, limit int, window time.Duration, logger Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			principal, ok := GetPrincipal(r.Context())
			if !ok || limiter == nil || limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			allowed, err := limiter.CheckRateLimit(r.Context(), rateLimitPrefix+principal.UserID.String(), limit, window)
			if err != nil {
				logger.Warn("%s %s - Rate limiter unavailable, skipping: %v", r.Method, r.URL.Path, err)
				next.ServeHTTP(w, r)
				return
			}

			if !allowed {
				logger.Warn("%s %s - Rate limit exceeded: user_id=%s", r.Method, r.URL.Path, principal.UserID)
				handlers.RespondError(w, http.StatusTooManyRequests, msgTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
