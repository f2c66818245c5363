package routes

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/marksync/internal/httpserver/deps"
	"github.com/MrSnakeDoc/marksync/internal/logger"
)

func TestRoutesRegistered(t *testing.T) {
	want := map[string]string{
		"/api/v1/sync": http.MethodPost,
		"/healthz":     http.MethodGet,
		"/readyz":      http.MethodGet,
	}

	got := Routes()
	if len(got) != len(want) {
		t.Fatalf("Routes() = %d routes, want %d", len(got), len(want))
	}
	for _, rt := range got {
		if want[rt.Pattern] != rt.Method {
			t.Errorf("route %s %s not expected", rt.Method, rt.Pattern)
		}
		if rt.Handler == nil {
			t.Errorf("route %s has no handler", rt.Pattern)
		}
	}
}

func TestRegisterAll_AppliesGuards(t *testing.T) {
	r := chi.NewRouter()
	RegisterAll(r, deps.Deps{
		Logger:       logger.NewNop(),
		StartTime:    time.Now(),
		OwnerHeader:  "X-Owner-ID",
		AllowedCIDRS: []string{"10.0.0.0/8"},
	})

	tests := []struct {
		name   string
		method string
		path   string
		remote string
		want   int
	}{
		{"healthz from allowed network", http.MethodGet, "/healthz", "10.1.2.3:5000", http.StatusOK},
		{"healthz from outside", http.MethodGet, "/healthz", "192.0.2.1:5000", http.StatusForbidden},
		{"sync without owner", http.MethodPost, "/api/v1/sync", "192.0.2.1:5000", http.StatusUnauthorized},
		{"wrong method", http.MethodGet, "/api/v1/sync", "192.0.2.1:5000", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, tt.path, nil)
			req.RemoteAddr = tt.remote
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)
			if rec.Code != tt.want {
				t.Errorf("%s %s status = %d, want %d", tt.method, tt.path, rec.Code, tt.want)
			}
		})
	}
}
