package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"ragbase/internal/pkg/jwtutil"
	"ragbase/internal/transport/http/response"
)

const (
	ContextTenantIDKey = "tenant_id"
	ContextEmailKey    = "email"
)

// AuthJWT authenticates tenant requests from a Bearer token and stores the
// tenant id and email on the gin context for handlers.
func AuthJWT(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "missing or malformed authorization header")
			c.Abort()
			return
		}

		claims, err := jwtutil.ParseToken(secret, token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "invalid or expired token")
			c.Abort()
			return
		}

		c.Set(ContextTenantIDKey, claims.TenantID)
		c.Set(ContextEmailKey, claims.Email)
		c.Next()
	}
}

func bearerToken(header string) (string, bool) {
	raw, ok := strings.CutPrefix(strings.TrimSpace(header), "Bearer ")
	if !ok {
		return "", false
	}
	token := strings.TrimSpace(raw)
	return token, token != ""
}
