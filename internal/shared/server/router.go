package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"career-booster/internal/services/health"
	"career-booster/internal/sessions"
	"career-booster/internal/shared/config"
	"career-booster/internal/shared/metrics"
	"career-booster/internal/shared/server/middleware"
	"career-booster/internal/shared/server/respond"
	"career-booster/internal/workflow"
)

const llmRateGroup = "LLM"

// RouterDeps holds the handlers and shared state the router wires together.
type RouterDeps struct {
	Config   config.Config
	Workflow *workflow.Handler
	Locker   *sessions.Locker
	Health   *health.Service
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	if !config.IsDevLike(deps.Config.Env) {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	api.GET("/health", healthHandler(deps.Health))

	locker := deps.Locker
	if locker == nil {
		locker = sessions.NewLocker()
	}
	scoped := api.Group("",
		middleware.RequireSession(locker),
		middleware.RateLimit(middleware.RateLimitConfig{
			GroupFor: llmGroupFor,
			Rules: map[string]middleware.RateLimitRule{
				llmRateGroup: middleware.PerMinute(deps.Config.RateLimitLLMPerMin),
			},
		}),
	)
	if deps.Workflow != nil {
		deps.Workflow.RegisterRoutes(api, scoped)
	}

	return r
}

func llmGroupFor(c *gin.Context) string {
	if _, ok := workflow.LLMRoutes[c.Request.Method+" "+c.FullPath()]; ok {
		return llmRateGroup
	}
	return ""
}

func healthHandler(svc *health.Service) gin.HandlerFunc {
	if svc == nil {
		svc = health.NewService(nil)
	}
	return func(c *gin.Context) {
		report := svc.Status(c.Request.Context())
		if !report.OK {
			respond.Error(c, http.StatusServiceUnavailable, "unhealthy", "a dependency is unreachable", report.Checks)
			return
		}
		respond.JSON(c, http.StatusOK, report)
	}
}

// Addr normalizes the listen address.
func Addr(port string) string {
	port = strings.TrimSpace(port)
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
