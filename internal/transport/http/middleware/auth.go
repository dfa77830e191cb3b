package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/iamasit07/4-in-a-row/engine/pkg/auth"
	"github.com/iamasit07/4-in-a-row/engine/pkg/httputil"
)

// ClientIDKey is the gin context key holding the authenticated client id.
const ClientIDKey = "client_id"

// AuthMiddleware rejects requests without a valid client token.
func AuthMiddleware(issuer *auth.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := httputil.GetTokenFromRequest(c.Request)
		if err != nil {
			Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "missing auth token")
			return
		}

		claims, err := issuer.Validate(tokenString)
		if err != nil {
			Abort(c, http.StatusUnauthorized, "UNAUTHORIZED", "invalid or expired token")
			return
		}

		c.Set(ClientIDKey, claims.ClientID)
		c.Next()
	}
}

// Abort writes the standard error envelope and stops the chain.
func Abort(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}
