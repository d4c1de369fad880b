package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"salonbook/pkg/config"
	"salonbook/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type routes func(*httprouter.Router)

func (f routes) RegisterRoutes(r *httprouter.Router) { f(r) }

func text(body string) httprouter.Handle {
	return func(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
		_, _ = w.Write([]byte(body))
	}
}

func newTestApp(t *testing.T) *Application {
	t.Helper()
	cfg := &config.Config{
		Port:               "8080",
		RateLimitRequests:  100,
		RateLimitWindow:    time.Minute,
		RequestTimeout:     5 * time.Second,
		IdempotencyTTL:     time.Minute,
		MaxRequestSize:     1 << 20,
		ShutdownTimeout:    time.Second,
		CORSAllowedOrigins: []string{"https://liff.example.com"},
		Log:                logger.Discard(),
	}

	a := NewApplication(cfg)
	a.SetApp(
		routes(func(r *httprouter.Router) {
			r.GET("/", text("banner"))
			r.GET("/health", text("healthy"))
		}),
		routes(func(r *httprouter.Router) { r.GET("/api/services", text("services")) }),
		routes(func(r *httprouter.Router) { r.GET("/api/users/check", text("check")) }),
	)
	t.Cleanup(func() {
		a.idempotencyStore.Stop()
		a.rateLimiter.Stop()
	})
	return a
}

func TestRouting(t *testing.T) {
	a := newTestApp(t)

	tests := []struct {
		path string
		want string
	}{
		{"/", "banner"},
		{"/health", "healthy"},
		{"/api/services", "services"},
		{"/api/users/check", "check"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			rec := httptest.NewRecorder()
			a.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))
			if rec.Code != http.StatusOK || rec.Body.String() != tt.want {
				t.Errorf("GET %s = %d %q, want 200 %q", tt.path, rec.Code, rec.Body.String(), tt.want)
			}
		})
	}
}

func TestCORSPreflight(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodOptions, "/api/services", nil)
	req.Header.Set("Origin", "https://liff.example.com")
	req.Header.Set("Access-Control-Request-Method", http.MethodPost)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	if got := rec.Header().Get("Access-Control-Allow-Origin"); got != "https://liff.example.com" {
		t.Errorf("Access-Control-Allow-Origin = %q", got)
	}
}

func TestRunHooksReverseOrder(t *testing.T) {
	a := NewApplication(&config.Config{Log: logger.Discard()})

	var order []string
	a.OnShutdown("first", func(context.Context) error {
		order = append(order, "first")
		return nil
	})
	a.OnShutdown("second", func(context.Context) error {
		order = append(order, "second")
		return errors.New("boom")
	})
	a.runHooks(context.Background())

	if len(order) != 2 || order[0] != "second" || order[1] != "first" {
		t.Errorf("hooks ran in %v, want [second first]", order)
	}
}
