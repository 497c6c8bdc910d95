package middleware

import (
	"net"
	"net/http"

	"github.com/jeonghun43/Prism/pkg/common"
)

// CallerKey stores the client IP in the request context as the rate-limit
// caller key. Runs after chi's RealIP so proxied requests are keyed by the
// originating address.
func CallerKey() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			host, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				host = r.RemoteAddr
			}
			ctx := common.WithCallerKey(r.Context(), host)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
