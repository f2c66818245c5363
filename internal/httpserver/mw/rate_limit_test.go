package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestLimiter_TakeAndRefill(t *testing.T) {
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	l := newLimiter(RateLimitConfig{Burst: 2, RefillPerMin: 60})

	tests := []struct {
		name     string
		at       time.Time
		wantOK   bool
		wantRem  int
		wantWait time.Duration
	}{
		{"first token", start, true, 1, 0},
		{"second token", start, true, 0, 0},
		{"empty bucket", start, false, 0, time.Second},
		{"half refilled", start.Add(500 * time.Millisecond), false, 0, 500 * time.Millisecond},
		{"refilled", start.Add(time.Second), true, 0, 0},
	}

	for _, tt := range tests {
		ok, rem, wait := l.take("owner:u1", tt.at)
		if ok != tt.wantOK || rem != tt.wantRem || wait != tt.wantWait {
			t.Errorf("%s: take() = %v, %d, %v, want %v, %d, %v",
				tt.name, ok, rem, wait, tt.wantOK, tt.wantRem, tt.wantWait)
		}
	}
}

func TestLimiter_EvictsIdleBuckets(t *testing.T) {
	start := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	l := newLimiter(RateLimitConfig{Burst: 1, RefillPerMin: 1, IdleTTL: time.Minute, Now: func() time.Time { return start }})

	l.take("ip:10.0.0.1", start)
	l.take("ip:10.0.0.2", start)
	if got := l.size(); got != 2 {
		t.Fatalf("size() = %d, want 2", got)
	}

	l.take("ip:10.0.0.3", start.Add(2*time.Minute))
	if got := l.size(); got != 1 {
		t.Errorf("size() after idle TTL = %d, want 1", got)
	}
}

func TestRateLimit_HeadersAndKeys(t *testing.T) {
	now := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)
	h := RateLimit(RateLimitConfig{
		Burst:        1,
		RefillPerMin: 1,
		OwnerHeader:  "X-Owner-ID",
		Now:          func() time.Time { return now },
	})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))

	send := func(owner string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/api/v1/sync", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		if owner != "" {
			req.Header.Set("X-Owner-ID", owner)
		}
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	rec := send("u1")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("first request status = %d, want 204", rec.Code)
	}
	if got := rec.Header().Get("X-RateLimit-Remaining"); got != "0" {
		t.Errorf("X-RateLimit-Remaining = %q, want 0", got)
	}

	rec = send("u1")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second request status = %d, want 429", rec.Code)
	}
	if got := rec.Header().Get("Retry-After"); got != "60" {
		t.Errorf("Retry-After = %q, want 60", got)
	}

	// Same IP, different owner and no owner: separate buckets.
	if rec := send("u2"); rec.Code != http.StatusNoContent {
		t.Errorf("other owner status = %d, want 204", rec.Code)
	}
	if rec := send(""); rec.Code != http.StatusNoContent {
		t.Errorf("anonymous status = %d, want 204", rec.Code)
	}
}
