package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"userhub/internal/core/auth"
	resp "userhub/internal/transport/http/response"
)

// Context keys populated for downstream handlers.
const (
	KeyUserID  = "userId"
	KeyIsAdmin = "isAdmin"
)

// AuthJWT requires a valid bearer token; with requireAdmin it additionally
// requires the admin claim.
func AuthJWT(j *auth.JWTer, requireAdmin bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		ah := c.GetHeader("Authorization")
		if !strings.HasPrefix(ah, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "missing token"))
			return
		}
		claims, err := j.Parse(strings.TrimPrefix(ah, "Bearer "))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeUnauthorized, "invalid token"))
			return
		}
		if requireAdmin && !claims.Admin {
			c.AbortWithStatusJSON(http.StatusOK, resp.Error(resp.CodeForbidden, "forbidden"))
			return
		}
		c.Set(KeyUserID, claims.UID)
		c.Set(KeyIsAdmin, claims.Admin)
		c.Next()
	}
}
