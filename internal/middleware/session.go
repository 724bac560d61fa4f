package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	// SessionCookie is the browser cookie carrying the share-session ID.
	// It survives the provider redirect round trip within the same tab.
	SessionCookie = "fest_session"
	// ContextSessionID is the gin context key for the session ID.
	ContextSessionID = "session_id"

	sessionMaxAge = 24 * 60 * 60
)

// Session ensures every request carries a session ID cookie, issuing one when
// absent, and stores the ID in the gin context.
func Session() gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := c.Cookie(SessionCookie)
		if err != nil || id == "" {
			id = uuid.New().String()
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(SessionCookie, id, sessionMaxAge, "/", "", false, true)
		}
		c.Set(ContextSessionID, id)
		c.Next()
	}
}

// SessionID returns the session ID for the current request, or "".
func SessionID(c *gin.Context) string {
	v, ok := c.Get(ContextSessionID)
	if !ok {
		return ""
	}
	id, _ := v.(string)
	return id
}
