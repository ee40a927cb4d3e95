package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/Temutjin2k/govv-tracker/internal/domain/types"
	wrap "github.com/Temutjin2k/govv-tracker/pkg/logger/wrapper"
)

// Auth resolves the rider of the request. Requests without a token act as the
// anonymous rider; a token that is present but invalid is rejected with 401.
// Websocket clients that can not set headers may pass ?access_token=.
func (h *Middleware) Auth(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		token, err := requestToken(r)
		if err != nil {
			errorResponse(w, http.StatusUnauthorized, err.Error())
			return
		}

		if token == "" || h.auth == nil || !h.auth.Enabled() {
			rider := types.AnonymousRider
			ctx = wrap.WithRiderID(types.WithRider(ctx, rider), rider)
			next.ServeHTTP(w, r.WithContext(ctx))
			return
		}

		rider, err := h.auth.RiderID(ctx, token)
		if err != nil {
			h.log.Warn(wrap.ErrorCtx(ctx, err), "failed to authenticate rider", "error", err.Error())
			errorResponse(w, http.StatusUnauthorized, "invalid credentials")
			return
		}

		ctx = wrap.WithRiderID(types.WithRider(ctx, rider), rider)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func requestToken(r *http.Request) (string, error) {
	if header := r.Header.Get("Authorization"); header != "" {
		return extractBearerToken(header)
	}
	return r.URL.Query().Get("access_token"), nil
}

// --- header parser ---
func extractBearerToken(header string) (string, error) {
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || parts[1] == "" {
		return "", fmt.Errorf("invalid Authorization header format")
	}
	return parts[1], nil
}
