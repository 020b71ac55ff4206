package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/tumorvision/tumorvision/internal/domain/user"
)

// SessionChecker is kept small so tests can fake it easily.
type SessionChecker interface {
	Current() (user.User, bool)
}

type SessionGuard struct {
	sessions SessionChecker
}

func NewSessionGuard(sessions SessionChecker) *SessionGuard {
	return &SessionGuard{sessions: sessions}
}

// RequireSession gates the upload and history surfaces. An unauthenticated
// request is rejected and told where to go, the service analog of the forced
// redirect to the login section.
func (g *SessionGuard) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		u, ok := g.sessions.Current()
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":     "auth_required",
					"message":  "Please sign in to access this page",
					"redirect": "login",
				},
			})
			return
		}

		c.Set(CtxUserID, u.ID)
		c.Set(CtxUserRole, string(u.Role))

		c.Next()
	}
}

// Helpers so handlers don't need to know the magic keys.

func UserIDFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUserID)
	if !ok {
		return "", false
	}
	id, ok := v.(string)
	return id, ok && id != ""
}

func RoleFromContext(c *gin.Context) (string, bool) {
	v, ok := c.Get(CtxUserRole)
	if !ok {
		return "", false
	}
	role, ok := v.(string)
	return role, ok && role != ""
}
