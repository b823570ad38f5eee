package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestIPRateLimiterAllow(t *testing.T) {
	l := NewIPRateLimiter(2, 0)
	if !l.Allow("k") || !l.Allow("k") {
		t.Fatalf("first two requests should pass")
	}
	if l.Allow("k") {
		t.Fatalf("third request should be blocked")
	}
	if !l.Allow("other") {
		t.Fatalf("other keys have their own window")
	}
}

func TestIPRateLimiterWindowResets(t *testing.T) {
	now := time.Date(2026, 4, 1, 12, 0, 0, 0, time.UTC)
	l := NewIPRateLimiter(1, time.Minute)
	l.now = func() time.Time { return now }

	if !l.Allow("k") || l.Allow("k") {
		t.Fatalf("expected one request per window")
	}
	now = now.Add(61 * time.Second)
	if !l.Allow("k") {
		t.Fatalf("expected a new window")
	}
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	mw := RateLimitMiddleware(NewIPRateLimiter(1, time.Minute))
	next := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i, want := range []int{http.StatusOK, http.StatusTooManyRequests} {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = "10.0.0.1"
		w := httptest.NewRecorder()
		next.ServeHTTP(w, req)
		if w.Code != want {
			t.Fatalf("request %d: expected %d, got %d", i, want, w.Code)
		}
	}
}

func TestRateLimitMiddlewareIgnoresClientPort(t *testing.T) {
	mw := RateLimitMiddleware(NewIPRateLimiter(1, time.Minute))
	next := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i, tc := range []struct {
		addr string
		want int
	}{
		{addr: "10.0.0.1:5000", want: http.StatusOK},
		{addr: "10.0.0.1:5001", want: http.StatusTooManyRequests},
		{addr: "10.0.0.1:5002", want: http.StatusTooManyRequests},
		{addr: "[2001:db8::1]:5000", want: http.StatusOK},
		{addr: "10.0.0.2:5000", want: http.StatusOK},
	} {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = tc.addr
		w := httptest.NewRecorder()
		next.ServeHTTP(w, req)
		if w.Code != tc.want {
			t.Fatalf("request %d from %s: expected %d, got %d", i, tc.addr, tc.want, w.Code)
		}
	}
}
