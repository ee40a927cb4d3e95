package middleware

import (
	"net/http"
	"time"

	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
)

// Logging writes one debug line per request after the handler returns.
// Auth runs after it, so only request_id is in the log context.
func (m *Middleware) Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := newStatusRecorder(w)

		next.ServeHTTP(rec, r)

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"bytes", rec.bytes,
			"duration", time.Since(start),
		}
		ctx := wrap.WithAction(r.Context(), "http_request")
		if rec.status >= http.StatusInternalServerError {
			m.log.Warn(ctx, "request failed", args...)
			return
		}
		m.log.Debug(ctx, "request completed", args...)
	})
}
