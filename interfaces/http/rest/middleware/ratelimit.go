package middleware

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jeonghun43/Prism/pkg/common"
	"github.com/jeonghun43/Prism/pkg/ratelimit"
)

// RateLimit throttles every request against the shared api category. The
// stricter link-generation and voting categories are checked inside their
// services, on top of this one.
func RateLimit(limiter *ratelimit.Limiter, maxRequests int) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			result := limiter.Check(common.GetCallerKey(r.Context()), ratelimit.CategoryAPI)

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(maxRequests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(result.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(result.ResetAt.Unix(), 10))

			if !result.Allowed {
				retryAfter := int64(time.Until(result.ResetAt).Seconds()) + 1
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				common.RespondError(w, http.StatusTooManyRequests,
					common.StandardErrorCodes.TooManyRequests,
					"too many requests, please retry later")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
