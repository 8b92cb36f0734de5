package http

import (
	"net/http"
	"strings"
)

var securityHeaders = [][2]string{
	{"X-Content-Type-Options", "nosniff"},
	{"X-Frame-Options", "DENY"},
	{"Referrer-Policy", "strict-origin-when-cross-origin"},
	{"Permissions-Policy", "geolocation=(), microphone=(), camera=()"},
}

// defaultCSP allows blog photos from the API itself, inline data URLs and an
// external object store.
const defaultCSP = "default-src 'self'; img-src 'self' data: https:; style-src 'self' 'unsafe-inline'; frame-ancestors 'none';"

// SecurityHeadersMiddleware sets the static security headers. API responses may
// carry session cookies and are marked no-store; stored photos stay cacheable.
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h := w.Header()
		for _, kv := range securityHeaders {
			h.Set(kv[0], kv[1])
		}
		if !strings.HasPrefix(r.URL.Path, "/storage/") {
			h.Set("Cache-Control", "no-store")
		}

		next.ServeHTTP(w, r)
	})
}

func ContentSecurityPolicyMiddleware(csp string) func(http.Handler) http.Handler {
	if csp == "" {
		csp = defaultCSP
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Security-Policy", csp)
			next.ServeHTTP(w, r)
		})
	}
}
