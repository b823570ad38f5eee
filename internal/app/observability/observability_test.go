package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"mocktest/internal/auth"

	"github.com/go-chi/chi/v5"
)

func TestNormalizedPath(t *testing.T) {
	tests := []struct{ in, want string }{
		{in: "/api/admin/questions/123", want: "/api/admin/questions/{id}"},
		{in: "/api/admin/questions/0190f7a2-6b1c-7c3e-9a4d-2f6e8b1c0a11", want: "/api/admin/questions/{id}"},
		{in: "/api/student/questions", want: "/api/student/questions"},
		{in: "", want: "/"},
	}
	for _, tc := range tests {
		if got := normalizedPath(tc.in); got != tc.want {
			t.Fatalf("normalizedPath(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMiddlewareUsesRoutePatternAndCountsRequests(t *testing.T) {
	c := NewCollector(nil)
	r := chi.NewRouter()
	r.Use(c.Middleware)
	r.With(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.ContextWithUser(r.Context(), &auth.User{ID: "a-1", Role: auth.RoleAdmin})))
		})
	}, CaptureUser).Get("/api/admin/student/{rollNumber}/review", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	r.Get("/metrics", c.MetricsHandler)

	for _, roll := range []string{"R1", "R2"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/admin/student/"+roll+"/review", nil))
		if w.Code != http.StatusNotFound {
			t.Fatalf("expected 404, got %d", w.Code)
		}
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := w.Body.String()
	want := `mocktest_http_requests_total{method="GET",path="/api/admin/student/{rollNumber}/review",status="404"} 2`
	if !strings.Contains(body, want) {
		t.Fatalf("metrics missing %q:\n%s", want, body)
	}
}
