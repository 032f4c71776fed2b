// Package middleware provides HTTP middleware for the web server.
package middleware

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/LeadTracker/internal/logging"
)

// Logger logs one structured entry per request with the request id attached.
//
// Log fields:
//   - method, path and route (the chi pattern, e.g. /api/leads/{id})
//   - status and bytes written
//   - duration_ms
//   - ip (RemoteAddr as resolved by TrustedRealIP)
//
// Server errors are logged at warn level.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := wrapWriter(w)

		next.ServeHTTP(ww, r)

		logger := logging.FromContext(r.Context())
		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"route", routePattern(r),
			"status", ww.status,
			"bytes", ww.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", r.RemoteAddr,
		}
		if ww.status >= http.StatusInternalServerError {
			logger.Warn("request", args...)
			return
		}
		logger.Info("request", args...)
	})
}

// routePattern returns the matched chi route, or "unmatched" for 404s so
// metrics labels stay bounded.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return "unmatched"
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status      int
	bytes       int
	wroteHeader bool
}

func wrapWriter(w http.ResponseWriter) *responseWriter {
	if rw, ok := w.(*responseWriter); ok {
		return rw
	}
	return &responseWriter{ResponseWriter: w, status: http.StatusOK}
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	n, err := w.ResponseWriter.Write(b)
	w.bytes += n
	return n, err
}

// Unwrap lets http.ResponseController reach the underlying writer.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}
