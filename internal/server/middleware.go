package server

import (
	"net/http"
	"time"

	"github.com/charmbracelet/log"
)

// RequestLogger logs each request's method, path, and duration at debug
// level. The loopback server only ever sees the browser redirect, but when a
// login goes sideways the log line is the first thing worth reading.
func RequestLogger(logger *log.Logger) Middleware {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			logger.Debug("handled request",
				"method", r.Method,
				"path", r.URL.Path,
				"duration", time.Since(start),
			)
		})
	}
}
