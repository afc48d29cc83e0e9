package security

import (
	"crypto/subtle"
	"net/http"
	"strings"
)

// APIKey guards admin endpoints with a static key carried in a header.
type APIKey struct {
	Header string
	Key    string
}

// Middleware rejects requests whose key header does not match. An empty
// configured key disables the guard, which is only acceptable in development.
func (a APIKey) Middleware(next http.Handler) http.Handler {
	headerName := strings.TrimSpace(a.Header)
	if headerName == "" {
		headerName = "X-Admin-Key"
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if a.Key == "" {
			next.ServeHTTP(w, r)
			return
		}
		provided := strings.TrimSpace(r.Header.Get(headerName))
		if provided == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(a.Key)) != 1 {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}
