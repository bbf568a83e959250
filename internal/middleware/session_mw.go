package middleware

import (
	"net/http"

	"minicrm/internal/session"

	"github.com/gin-gonic/gin"
)

// AuthUserKey is the gin context key holding the authenticated user id
const AuthUserKey = "authUser"

// SessionAuthMiddleware gates pages behind a valid login session. A request
// without a valid session cookie is redirected to the login page instead of
// reaching the handler.
func SessionAuthMiddleware(sessions *session.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := sessions.UserID(c)
		if !ok {
			c.Redirect(http.StatusFound, "/login")
			c.Abort()
			return
		}

		c.Set(AuthUserKey, userID)
		c.Next()
	}
}
