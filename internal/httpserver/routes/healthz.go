package routes

import (
	"net/http"

	"github.com/MrSnakeDoc/marksync/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marksync/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/marksync/internal/httpserver/mw"
)

func init() {
	Register(
		Route{Method: http.MethodGet, Pattern: "/healthz", Guards: infraGuards, Handler: handlers.Healthz},
		Route{Method: http.MethodGet, Pattern: "/readyz", Guards: infraGuards, Handler: handlers.Readyz},
	)
}

// infraGuards restricts health endpoints to the configured CIDRs.
func infraGuards(d deps.Deps) []func(http.Handler) http.Handler {
	return []func(http.Handler) http.Handler{
		mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger),
	}
}
