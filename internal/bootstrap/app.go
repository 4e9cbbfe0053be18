package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"io"
	"time"

	"github.com/gin-gonic/gin"

	"career-booster/internal/advisor"
	"career-booster/internal/extract"
	"career-booster/internal/llm"
	"career-booster/internal/llm/gemini"
	"career-booster/internal/llm/openai"
	"career-booster/internal/ner"
	"career-booster/internal/ner/huggingface"
	"career-booster/internal/services/health"
	"career-booster/internal/sessions"
	"career-booster/internal/shared/config"
	"career-booster/internal/shared/server"
	"career-booster/internal/shared/storage/db"
	"career-booster/internal/shared/telemetry"
	"career-booster/internal/skills"
	"career-booster/internal/workflow"
)

// App holds shared dependencies.
type App struct {
	Config     config.Config
	Router     *gin.Engine
	DB         *sql.DB
	Sessions   sessions.Store
	Locker     *sessions.Locker
	Generator  llm.Generator
	Recognizer ner.Recognizer
	Controller *workflow.Controller
	Handler    *workflow.Handler

	closers []io.Closer
}

// Build prepares dependencies and the router.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	app := &App{Config: cfg, Locker: sessions.NewLocker()}

	store, err := app.buildSessionStore(ctx)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Sessions = store

	gen, err := buildGenerator(ctx, cfg)
	if err != nil {
		app.Close()
		return nil, err
	}
	app.Generator = gen
	app.Recognizer = buildRecognizer(ctx, cfg)
	app.Controller = newController(app.Generator, app.Recognizer)
	app.Handler = workflow.NewHandler(app.Controller, workflow.NewRepo(app.Sessions, cfg.SessionTTL))
	app.Router = server.NewRouter(server.RouterDeps{
		Config:   cfg,
		Workflow: app.Handler,
		Locker:   app.Locker,
		Health:   app.healthService(),
	})

	return app, nil
}

func (a *App) healthService() *health.Service {
	checks := map[string]health.Check{}
	if a.DB != nil {
		checks["database"] = a.DB.PingContext
	}
	if p, ok := a.Sessions.(interface{ Ping(context.Context) error }); ok {
		checks["sessions"] = p.Ping
	}
	return health.NewService(checks)
}

// StartBackground runs the expired-session janitor for stores that need one.
func (a *App) StartBackground(ctx context.Context) {
	if p, ok := a.Sessions.(sessions.Purger); ok {
		go sessions.RunJanitor(ctx, p, 10*time.Minute)
	}
}

// Close releases connections opened by Build.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i].Close(); err != nil {
			telemetry.Warn("bootstrap.close.failed", map[string]any{"error": err})
		}
	}
	a.closers = nil
}

// NewController wires the workflow controller alone, without a session store or router.
func NewController(ctx context.Context, cfg config.Config) (*workflow.Controller, error) {
	gen, err := buildGenerator(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newController(gen, buildRecognizer(ctx, cfg)), nil
}

func newController(gen llm.Generator, rec ner.Recognizer) *workflow.Controller {
	return workflow.NewController(
		extract.ExtractPDF,
		skills.NewExtractor(rec),
		advisor.New(gen),
	)
}

func (a *App) buildSessionStore(ctx context.Context) (sessions.Store, error) {
	cfg := a.Config
	switch cfg.SessionStore {
	case "postgres":
		sqlDB, err := buildDB(ctx, cfg)
		if err != nil {
			return nil, err
		}
		if sqlDB == nil {
			return sessions.NewMemoryStore(cfg.SessionTTL), nil
		}
		a.DB = sqlDB
		a.closers = append(a.closers, sqlDB)
		return &sessions.PGStore{DB: sqlDB, TTL: cfg.SessionTTL}, nil
	case "redis":
		store, err := sessions.NewRedisStore(ctx, sessions.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			TTL:      cfg.SessionTTL,
		})
		if err != nil {
			if config.IsDevLike(cfg.Env) {
				telemetry.Warn("bootstrap.redis.unavailable", map[string]any{"error": err})
				return sessions.NewMemoryStore(cfg.SessionTTL), nil
			}
			return nil, err
		}
		a.closers = append(a.closers, store)
		return store, nil
	default:
		return sessions.NewMemoryStore(cfg.SessionTTL), nil
	}
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if cfg.DatabaseURL == "" {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database.missing", map[string]any{"fallback": "memory"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required for SESSION_STORE=postgres")
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if config.IsDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.database.unavailable", map[string]any{"error": err, "fallback": "memory"})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildGenerator(ctx context.Context, cfg config.Config) (llm.Generator, error) {
	var gen llm.Generator = llm.PlaceholderClient{}
	switch {
	case cfg.LLMProvider == "gemini" && cfg.GeminiAPIKey != "":
		g, err := gemini.NewGenerator(ctx, cfg.GeminiAPIKey, cfg.LLMModel, cfg.LLMTimeout)
		if err != nil {
			return nil, err
		}
		telemetry.Info("bootstrap.llm", map[string]any{"provider": "gemini", "model": g.Model()})
		gen = g
	case cfg.LLMProvider == "openai" && cfg.OpenAIAPIKey != "":
		g, err := openai.NewGenerator(openai.Options{
			APIKey:  cfg.OpenAIAPIKey,
			Model:   cfg.LLMModel,
			BaseURL: cfg.OpenAIBaseURL,
			Timeout: cfg.LLMTimeout,
		})
		if err != nil {
			return nil, err
		}
		telemetry.Info("bootstrap.llm", map[string]any{"provider": "openai", "model": g.Model()})
		gen = g
	default:
		telemetry.Warn("bootstrap.llm.placeholder", map[string]any{"provider": cfg.LLMProvider})
	}
	return llm.WithRetry(gen, cfg.LLMMaxRetries), nil
}

func buildRecognizer(ctx context.Context, cfg config.Config) ner.Recognizer {
	if cfg.NERProvider != "huggingface" {
		telemetry.Warn("bootstrap.ner.placeholder", map[string]any{"provider": cfg.NERProvider})
		return ner.PlaceholderRecognizer{}
	}
	return huggingface.NewClient(ctx, huggingface.Options{
		BaseURL: cfg.NERBaseURL,
		Model:   cfg.NERModel,
		Token:   cfg.HFAPIToken,
		Timeout: cfg.NERTimeout,
	})
}
