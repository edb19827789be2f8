// CLAUDE:SUMMARY HTTP hardening middleware: security headers, body caps, per-IP rate limits.
// Package shield provides HTTP hardening middleware for the maquette API:
// security headers, request body size caps and per-IP rate limiting.
//
// Every constructor returns a standard func(http.Handler) http.Handler so the
// middlewares compose with chi's Use().
package shield

import (
	"net"
	"net/http"
	"strings"
)

// ExtractIP returns the client IP from X-Forwarded-For or RemoteAddr.
func ExtractIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		for i := 0; i < len(xff); i++ {
			if xff[i] == ',' {
				return strings.TrimSpace(xff[:i])
			}
		}
		return strings.TrimSpace(xff)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
