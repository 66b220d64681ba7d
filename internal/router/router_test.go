package router

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stemsi/anonq-bot/internal/config"
	"github.com/stemsi/anonq-bot/internal/events"
	"github.com/stemsi/anonq-bot/internal/handler"
	"github.com/stemsi/anonq-bot/internal/repository"
	"github.com/stemsi/anonq-bot/internal/service"
)

func newRouterCfg(secret string) *config.Config {
	return &config.Config{GinMode: "test", OpsJWTSecret: secret, OpsJWTExpiry: time.Hour}
}

func newHandlers(t *testing.T) *Handlers {
	t.Helper()
	store := repository.NewMemoryStore()
	stats := service.NewStatisticService(store, zerolog.Nop())
	if err := stats.EnsureDefaults(context.Background()); err != nil {
		t.Fatalf("ensure statistics: %v", err)
	}
	questions := service.NewQuestionService(store, nil, nil, nil, nil, zerolog.Nop())
	return &Handlers{
		Ops: handler.NewOpsHandler(nil, stats, questions, zerolog.Nop()),
		WS:  handler.NewWSHandler(events.NewRecorder(1), zerolog.Nop(), nil),
	}
}

func TestSetupRouter(t *testing.T) {
	cfg := newRouterCfg("router-test-secret")
	auth := service.NewAuthService(cfg, nil)
	token, _, err := auth.IssueToken("ops")
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}
	r := SetupRouter(auth, newHandlers(t), cfg, nil)

	tests := []struct {
		name       string
		path       string
		token      string
		wantStatus int
	}{
		{name: "health is public", path: "/healthz", wantStatus: http.StatusOK},
		{name: "stats without token", path: "/api/v1/stats", wantStatus: http.StatusUnauthorized},
		{name: "stats with token", path: "/api/v1/stats", token: token, wantStatus: http.StatusOK},
		{name: "events without token", path: "/ws/v1/events", wantStatus: http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			r.ServeHTTP(w, req)

			if w.Code != tt.wantStatus {
				t.Errorf("expected %d, got %d: %s", tt.wantStatus, w.Code, w.Body.String())
			}
			if w.Header().Get("X-Request-ID") == "" {
				t.Error("expected X-Request-ID header")
			}
		})
	}
}

func TestSetupRouter_OpsRoutesOffWithoutSecret(t *testing.T) {
	cfg := newRouterCfg("")
	r := SetupRouter(service.NewAuthService(cfg, nil), newHandlers(t), cfg, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/stats", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
}
