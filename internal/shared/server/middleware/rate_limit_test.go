package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func llmGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodPost && c.FullPath() == "/api/v1/session/questions" {
		return "LLM"
	}
	return "DEFAULT"
}

func rateLimitRouter(limiter *RateLimiter, rules map[string]RateLimitRule) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		SetSessionID(c, c.GetHeader(SessionHeader))
		c.Next()
	})
	r.Use(RateLimit(RateLimitConfig{
		DefaultGroup: "DEFAULT",
		GroupFor:     llmGroup,
		Limiter:      limiter,
		Rules:        rules,
	}))
	r.POST("/api/v1/session/questions", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	r.GET("/api/v1/session", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})
	return r
}

func doRequest(r http.Handler, method, path, session string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if session != "" {
		req.Header.Set(SessionHeader, session)
	}
	resp := httptest.NewRecorder()
	r.ServeHTTP(resp, req)
	return resp
}

func TestRateLimitOnlyLimitsLLMGroup(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := rateLimitRouter(NewRateLimiter(func() time.Time { return now }), map[string]RateLimitRule{
		"LLM": {Rate: 1, Burst: 2},
	})

	for i := 0; i < 5; i++ {
		if resp := doRequest(r, http.MethodGet, "/api/v1/session", "s1"); resp.Code != http.StatusOK {
			t.Fatalf("unlimited request %d expected 200, got %d", i+1, resp.Code)
		}
	}
	for i := 0; i < 2; i++ {
		if resp := doRequest(r, http.MethodPost, "/api/v1/session/questions", "s1"); resp.Code != http.StatusOK {
			t.Fatalf("llm request %d expected 200, got %d", i+1, resp.Code)
		}
	}
	if resp := doRequest(r, http.MethodPost, "/api/v1/session/questions", "s1"); resp.Code != http.StatusTooManyRequests {
		t.Fatalf("llm request 3 expected 429, got %d", resp.Code)
	}
	if resp := doRequest(r, http.MethodPost, "/api/v1/session/questions", "s2"); resp.Code != http.StatusOK {
		t.Fatalf("other session expected 200, got %d", resp.Code)
	}
}

func TestRateLimit429IncludesRetryAfter(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	r := rateLimitRouter(NewRateLimiter(func() time.Time { return now }), map[string]RateLimitRule{
		"LLM": {Rate: 1, Burst: 1},
	})

	if resp := doRequest(r, http.MethodPost, "/api/v1/session/questions", "s1"); resp.Code != http.StatusOK {
		t.Fatalf("expected first request 200, got %d", resp.Code)
	}
	resp := doRequest(r, http.MethodPost, "/api/v1/session/questions", "s1")
	if resp.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", resp.Code)
	}
	if resp.Header().Get("Retry-After") == "" {
		t.Fatalf("expected Retry-After header")
	}

	var payload struct {
		Error struct {
			Code    string         `json:"code"`
			Details map[string]any `json:"details"`
		} `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Error.Code != "rate_limited" {
		t.Fatalf("expected code rate_limited, got %q", payload.Error.Code)
	}
	if _, ok := payload.Error.Details["retryAfterMs"]; !ok {
		t.Fatalf("expected retryAfterMs in details")
	}
}

func TestRateLimitRefillsOverTime(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := PerMinute(60)

	for i := 0; i < 60; i++ {
		if ok, _ := limiter.Allow("s1|LLM", rule); !ok {
			t.Fatalf("request %d should be allowed", i+1)
		}
	}
	if ok, wait := limiter.Allow("s1|LLM", rule); ok || wait <= 0 {
		t.Fatalf("expected limit with positive wait, got ok=%v wait=%v", ok, wait)
	}
	now = now.Add(time.Second)
	if ok, _ := limiter.Allow("s1|LLM", rule); !ok {
		t.Fatalf("expected refill after one second")
	}
}

func TestPerMinuteDisabled(t *testing.T) {
	if ok, _ := NewRateLimiter(nil).Allow("k", PerMinute(0)); !ok {
		t.Fatalf("zero rule should never limit")
	}
}

func TestRateLimiterEvictsRefilledBuckets(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := PerMinute(60)

	for i := 0; i < 60; i++ {
		limiter.Allow("ended|LLM", rule)
	}
	now = now.Add(30 * time.Second)
	limiter.Allow("active|LLM", rule)
	if n := limiter.size(); n != 2 {
		t.Fatalf("expected both buckets before refill, got %d", n)
	}

	now = now.Add(45 * time.Second)
	if ok, _ := limiter.Allow("new|LLM", rule); !ok {
		t.Fatalf("expected new session to be allowed")
	}
	if n := limiter.size(); n != 2 {
		t.Fatalf("expected refilled bucket evicted, got %d buckets", n)
	}
	if _, ok := limiter.buckets["ended|LLM"]; ok {
		t.Fatalf("expected idle bucket for ended session to be removed")
	}
}

func TestRateLimiterKeepsDrainingBucket(t *testing.T) {
	now := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	limiter := NewRateLimiter(func() time.Time { return now })
	rule := PerMinute(60)

	for i := 0; i < 60; i++ {
		limiter.Allow("busy|LLM", rule)
	}
	now = now.Add(2 * time.Minute).Add(-time.Second)
	limiter.lastSweep = time.Time{}
	limiter.buckets["busy|LLM"].last = now.Add(-59 * time.Second)

	limiter.Allow("other|LLM", rule)
	if _, ok := limiter.buckets["busy|LLM"]; !ok {
		t.Fatalf("expected bucket still refilling to be kept")
	}
}
