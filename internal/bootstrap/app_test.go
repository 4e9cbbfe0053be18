package bootstrap

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"career-booster/internal/llm"
	"career-booster/internal/llm/openai"
	"career-booster/internal/sessions"
	"career-booster/internal/shared/config"
	"career-booster/internal/shared/server/middleware"
)

func testConfig() config.Config {
	return config.Config{
		Env:                "test",
		LLMProvider:        "gemini",
		NERProvider:        "none",
		SessionStore:       "memory",
		SessionTTL:         time.Hour,
		LLMMaxRetries:      0,
		RateLimitLLMPerMin: 10,
	}
}

func TestBuildWiresMemoryStoreAndPlaceholders(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app, err := Build(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()

	if _, ok := app.Sessions.(*sessions.MemoryStore); !ok {
		t.Fatalf("expected memory store, got %T", app.Sessions)
	}
	if _, ok := app.Generator.(llm.PlaceholderClient); !ok {
		t.Fatalf("expected placeholder generator, got %T", app.Generator)
	}
	if app.Router == nil || app.Controller == nil || app.Handler == nil {
		t.Fatalf("expected router, controller and handler")
	}
}

func TestBuildSelectsOpenAIWhenKeyed(t *testing.T) {
	cfg := testConfig()
	cfg.LLMProvider = "openai"
	cfg.OpenAIAPIKey = "sk-test"

	app, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()
	if _, ok := app.Generator.(*openai.Generator); !ok {
		t.Fatalf("expected openai generator, got %T", app.Generator)
	}
}

func TestBuildFallsBackToMemoryWithoutDatabaseInDev(t *testing.T) {
	cfg := testConfig()
	cfg.Env = "dev"
	cfg.SessionStore = "postgres"

	app, err := Build(context.Background(), cfg)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()
	if _, ok := app.Sessions.(*sessions.MemoryStore); !ok {
		t.Fatalf("expected memory fallback, got %T", app.Sessions)
	}
}

func TestBuildRequiresDatabaseInProduction(t *testing.T) {
	cfg := testConfig()
	cfg.Env = "production"
	cfg.SessionStore = "postgres"

	if _, err := Build(context.Background(), cfg); err == nil {
		t.Fatalf("expected error without DATABASE_URL")
	}
}

func TestBuiltRouterCreatesAndReadsSession(t *testing.T) {
	gin.SetMode(gin.TestMode)

	app, err := Build(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	defer app.Close()

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/sessions", nil))
	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	id := w.Header().Get(middleware.SessionHeader)
	if id == "" {
		t.Fatalf("expected session header")
	}

	req := httptest.NewRequest(http.MethodGet, "/api/v1/session", nil)
	req.Header.Set(middleware.SessionHeader, id)
	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var body struct {
		View struct {
			Page string `json:"page"`
		} `json:"view"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.View.Page != "home" {
		t.Fatalf("expected home page, got %q", body.View.Page)
	}
}

func TestNewControllerWithoutStore(t *testing.T) {
	ctrl, err := NewController(context.Background(), testConfig())
	if err != nil {
		t.Fatalf("NewController: %v", err)
	}
	s := ctrl.NewSession()
	if s.ID == "" {
		t.Fatalf("expected a session id")
	}
}
