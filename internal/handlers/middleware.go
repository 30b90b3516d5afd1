package handlers

import (
	"regexp"

	"storefront/internal/apperr"
	"storefront/internal/auth"
	"storefront/internal/models"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const claimsKey = "claims"

var bearerRe = regexp.MustCompile(`^Bearer\s+(\S+)$`)

type TokenVerifier interface {
	Verify(token string) (*auth.Claims, error)
}

// RequireAuth rejects requests without a valid bearer token and stores the
// token claims on the context.
func RequireAuth(tokens TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		m := bearerRe.FindStringSubmatch(c.GetHeader("Authorization"))
		if m == nil {
			respondError(c, apperr.Unauthorized("Unauthorized"))
			return
		}

		claims, err := tokens.Verify(m[1])
		if err != nil {
			respondError(c, apperr.Unauthorized("Invalid token"))
			return
		}

		c.Set(claimsKey, claims)
		c.Next()
	}
}

// RequireAdmin must run after RequireAuth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := currentClaims(c)
		if claims == nil || claims.Role != models.RoleAdmin {
			respondError(c, apperr.Forbidden("Forbidden"))
			return
		}
		c.Next()
	}
}

func currentClaims(c *gin.Context) *auth.Claims {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil
	}
	claims, _ := v.(*auth.Claims)
	return claims
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	claims := currentClaims(c)
	if claims == nil {
		return uuid.Nil, false
	}
	return claims.UserID, true
}
