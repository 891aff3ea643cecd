package http

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	sessionCookie = "pegel_session"
	sessionHeader = "X-Session-ID"
	sessionKey    = "session_id"
)

// sessionMiddleware resolves the dashboard session from the cookie or the
// X-Session-ID header, issuing a new id when neither is a valid uuid.
func (s *Server) sessionMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(sessionHeader)
		if id == "" {
			id, _ = c.Cookie(sessionCookie)
		}
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		maxAge := int(s.cfg.SessionIdle.Seconds())
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie(sessionCookie, id, maxAge, "/", "", false, true)
		c.Header(sessionHeader, id)
		c.Set(sessionKey, id)
		c.Next()
	}
}

func sessionID(c *gin.Context) string {
	return c.GetString(sessionKey)
}
