package mw

import (
	"context"
	"net/http"
	"strings"

	"github.com/MrSnakeDoc/marksync/internal/logger"
)

type ownerKey struct{}

// WithOwnerID returns a copy of ctx carrying the authenticated owner id.
func WithOwnerID(ctx context.Context, ownerID string) context.Context {
	return context.WithValue(ctx, ownerKey{}, ownerID)
}

// OwnerID returns the owner id set by RequireOwner.
func OwnerID(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(ownerKey{}).(string)
	return id, ok && id != ""
}

// RequireOwner reads the owner id from header, set by the upstream
// authentication layer, and answers 401 when it is missing.
func RequireOwner(header string, log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ownerID := strings.TrimSpace(r.Header.Get(header))
			if ownerID == "" {
				log.Debug("RequireOwner: missing owner header",
					logger.String("header", header),
					logger.String("path", r.URL.Path))
				http.Error(w, http.StatusText(http.StatusUnauthorized), http.StatusUnauthorized)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithOwnerID(r.Context(), ownerID)))
		})
	}
}
