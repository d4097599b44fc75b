// Package requesttime captures one "now" per HTTP request so every rule
// evaluated for that request sees the same clock reading.
package requesttime

import (
	"net/http"
	"time"

	"prevplan/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request
// and stores it in the context.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
