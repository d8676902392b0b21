package metadata

import (
	"net/http"
	"strings"

	"leadgate/pkg/requestcontext"
)

// DefaultTrustedHeader is set by the edge proxy in front of the service.
const DefaultTrustedHeader = "CF-Connecting-IP"

// ClientMetadata extracts the client IP from the trusted header and the
// User-Agent, and stores both in the request context.
// It should be applied early in the chain.
func ClientMetadata(trustedHeader string) func(http.Handler) http.Handler {
	if trustedHeader == "" {
		trustedHeader = DefaultTrustedHeader
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := ClientIPFromRequest(r, trustedHeader)
			ctx := requestcontext.WithClientMetadata(r.Context(), ip, r.Header.Get("User-Agent"))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClientIPFromRequest returns the value of the trusted header, or
// requestcontext.FallbackClientIP when the header is missing or blank.
// RemoteAddr is never consulted: behind the proxy it is the proxy itself.
func ClientIPFromRequest(r *http.Request, trustedHeader string) string {
	if v := strings.TrimSpace(r.Header.Get(trustedHeader)); v != "" {
		return v
	}
	return requestcontext.FallbackClientIP
}
