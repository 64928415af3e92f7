package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/quarter-spiral/devcenter-backend/internal/domain"
	apperrors "github.com/quarter-spiral/devcenter-backend/internal/pkg/errors"
	"github.com/quarter-spiral/devcenter-backend/internal/provider"
)

const ctxKeyPrincipal = "principal"

// Authenticate resolves the request's bearer token against the auth backend
// and stores the principal in the gin context. Requests without a token pass
// through anonymously; RequirePrincipal gates the protected routes.
func Authenticate(auth provider.Auth) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		principal, err := auth.TokenOwner(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusBadGateway, gin.H{
				"code":  apperrors.CodeBackendUnavailable,
				"error": "could not verify the token",
			})
			return
		}
		if principal == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":  apperrors.CodeTokenInvalid,
				"error": "token is invalid or expired",
			})
			return
		}

		c.Set(ctxKeyPrincipal, *principal)
		c.Next()
	}
}

// RequirePrincipal aborts anonymous requests.
func RequirePrincipal() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := Principal(c); !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"code":  apperrors.CodeAuthRequired,
				"error": "authentication required",
			})
			return
		}
		c.Next()
	}
}

// Principal returns the authenticated principal of the request, if any.
func Principal(c *gin.Context) (domain.Principal, bool) {
	value, ok := c.Get(ctxKeyPrincipal)
	if !ok {
		return domain.Principal{}, false
	}
	principal, ok := value.(domain.Principal)
	return principal, ok
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if header == "" {
		// OAuth2 also allows the token as a query parameter.
		return c.Query("oauth_token")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}
	return strings.TrimSpace(parts[1])
}
