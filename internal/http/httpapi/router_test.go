package httpapi

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"scriptreel/internal/http/handlers"
)

func TestRouterMountsRelayPaths(t *testing.T) {
	router := NewRouter(handlers.NewApp(handlers.Deps{}), Options{})

	paths := []string{
		"/generate-video",
		"/get-video-status",
		"/download-video",
		"/api/generateVideo",
		"/api/getVideoStatus",
		"/api/downloadVideo",
		"/api/generate-video",
		"/api/poll-operation",
	}
	for _, path := range paths {
		t.Run(path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
			if rec.Code != http.StatusMethodNotAllowed {
				t.Fatalf("GET %s = %d, want 405", path, rec.Code)
			}
			if got := rec.Header().Get("Allow"); got != "POST" {
				t.Fatalf("Allow = %q", got)
			}
			if rec.Header().Get("X-Request-ID") == "" {
				t.Fatalf("missing request id header")
			}
		})
	}
}

func TestRouterHealth(t *testing.T) {
	router := NewRouter(handlers.NewApp(handlers.Deps{}), Options{})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/v1/healthz", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `"ok"`) {
		t.Fatalf("body = %s", rec.Body.String())
	}
}

func TestRouterRateLimitsRelayOnly(t *testing.T) {
	router := NewRouter(handlers.NewApp(handlers.Deps{}), Options{RateLimitPerMin: 1})

	call := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "203.0.113.9:4000"
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}
	if got := call("/generate-video"); got != http.StatusMethodNotAllowed {
		t.Fatalf("first call = %d", got)
	}
	if got := call("/generate-video"); got != http.StatusTooManyRequests {
		t.Fatalf("second call = %d, want 429", got)
	}
	if got := call("/v1/healthz"); got != http.StatusOK {
		t.Fatalf("health = %d, want 200", got)
	}
}
