package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
)

// Recover turns a handler panic into a 500 and logs the stack.
func (m *Middleware) Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rv := recover()
			if rv == nil {
				return
			}
			if rv == http.ErrAbortHandler {
				panic(rv)
			}

			err := fmt.Errorf("panic: %v", rv)
			m.log.Error(wrap.WithAction(r.Context(), "panic_recovered"), "handler panicked", err,
				"path", r.URL.Path, "stack", string(debug.Stack()))

			w.Header().Set("Connection", "close")
			errorResponse(w, http.StatusInternalServerError, "internal server error")
		}()

		next.ServeHTTP(w, r)
	})
}
