package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"career-booster/internal/sessions"
	"career-booster/internal/shared/server/respond"
)

// SessionHeader carries the session id on every session-scoped request.
const SessionHeader = "X-Session-Id"

const (
	sessionIDKey = "sessionId"
	pageKey      = "page"
)

// RequireSession resolves the session id from SessionHeader and holds the
// session's lock for the rest of the chain, so one session runs one action at a time.
func RequireSession(locker *sessions.Locker) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method == http.MethodOptions {
			c.Status(http.StatusNoContent)
			return
		}

		id := strings.TrimSpace(c.GetHeader(SessionHeader))
		if id == "" {
			respond.Error(c, http.StatusUnauthorized, "session_required", "Missing session id", nil)
			return
		}
		if _, err := uuid.Parse(id); err != nil {
			respond.Error(c, http.StatusNotFound, "session_not_found", "session not found", nil)
			return
		}
		c.Set(sessionIDKey, id)

		if locker != nil {
			release := locker.Lock(id)
			defer release()
		}
		c.Next()
	}
}

// SessionIDFromContext fetches the session id set by RequireSession.
func SessionIDFromContext(c *gin.Context) string {
	if c == nil {
		return ""
	}
	val, _ := c.Get(sessionIDKey)
	if id, ok := val.(string); ok {
		return id
	}
	return ""
}

// SetPage records the page a session ended the request on, for request logs.
func SetPage(c *gin.Context, page string) {
	c.Set(pageKey, page)
}

// SetSessionID records a session id for handlers that run outside RequireSession.
func SetSessionID(c *gin.Context, id string) {
	c.Set(sessionIDKey, id)
}
