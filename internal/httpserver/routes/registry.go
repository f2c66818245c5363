// Package routes declares the HTTP endpoints. Each file registers its
// routes from init(); server.NewRouter mounts them all.
package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/marksync/internal/httpserver/deps"
)

// Route is one endpoint: its guards run in order before the handler.
type Route struct {
	Method  string
	Pattern string
	Guards  func(d deps.Deps) []func(http.Handler) http.Handler
	Handler func(d deps.Deps) http.HandlerFunc
}

var registry []Route

// Register adds routes to the set mounted by RegisterAll.
func Register(routes ...Route) {
	registry = append(registry, routes...)
}

// Routes returns the registered routes in registration order.
func Routes() []Route {
	return append([]Route(nil), registry...)
}

// RegisterAll mounts every registered route on r.
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, rt := range registry {
		var sub chi.Router = r
		if rt.Guards != nil {
			if guards := rt.Guards(d); len(guards) > 0 {
				sub = r.With(guards...)
			}
		}
		sub.Method(rt.Method, rt.Pattern, rt.Handler(d))
	}
}
