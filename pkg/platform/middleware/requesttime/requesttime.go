// Package requesttime pins one "now" per HTTP request so stored records and
// log lines for the same submission agree on the timestamp.
package requesttime

import (
	"net/http"
	"time"

	"leadgate/pkg/requestcontext"
)

// Middleware captures the current time at the start of the request.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := requestcontext.WithTime(r.Context(), time.Now().UTC())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
