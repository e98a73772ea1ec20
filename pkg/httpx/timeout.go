package httpx

import (
	"context"
	"net/http"
	"time"
)

// ContextTimeout bounds every request's context. Downstream store calls
// inherit the deadline, so a wedged dependency surfaces as a transient
// failure instead of holding the connection open indefinitely.
func ContextTimeout(d time.Duration) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx, cancel := context.WithTimeout(r.Context(), d)
			defer cancel()
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
