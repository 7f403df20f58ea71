package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/ceitask/taskboard/pkg/helpers"
	"github.com/ceitask/taskboard/pkg/response"
)

const CtxUsernameKey = "username"

// Auth validates the bearer session token and injects the bound username
// into the Gin context. The legacy API trusts client-supplied usernames on
// task and profile routes, so this is mounted only when AUTH_ENFORCED is on.
func Auth(jwt *helpers.JWTManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			response.AbortErr(c, http.StatusUnauthorized, "missing token", nil)
			return
		}
		claims, err := jwt.ParseToken(token)
		if err != nil {
			response.AbortErr(c, http.StatusUnauthorized, "invalid token", nil)
			return
		}
		c.Set(CtxUsernameKey, claims.Username)
		c.Next()
	}
}

// RequireOwnUsername rejects requests whose :username path parameter does not
// match the authenticated username. Routes addressed by task id carry no
// username and pass through.
func RequireOwnUsername() gin.HandlerFunc {
	return func(c *gin.Context) {
		pathUser := c.Param("username")
		if pathUser != "" && pathUser != c.GetString(CtxUsernameKey) {
			response.AbortErr(c, http.StatusForbidden, "username mismatch", nil)
			return
		}
		c.Next()
	}
}

func bearerToken(c *gin.Context) string {
	h := c.GetHeader("Authorization")
	if strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return ""
}
