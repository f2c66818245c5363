package routes

import (
	"net/http"

	"github.com/MrSnakeDoc/marksync/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marksync/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/marksync/internal/httpserver/mw"
)

func init() {
	Register(Route{
		Method:  http.MethodPost,
		Pattern: "/api/v1/sync",
		Guards:  syncGuards,
		Handler: handlers.Sync,
	})
}

func syncGuards(d deps.Deps) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		mw.EnforceHost(d.AllowedHosts, d.Logger),
		mw.RateLimit(mw.RateLimitConfig{
			Burst:        d.RateLimitBurst,
			RefillPerMin: d.RateLimitRPM,
			MaxEntries:   10000,
			TrustProxy:   d.TrustProxy,
			OwnerHeader:  d.OwnerHeader,
		}),
		mw.RequireOwner(d.OwnerHeader, d.Logger),
	}
}
