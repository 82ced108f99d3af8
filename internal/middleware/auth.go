package middleware

import (
	"net/http"

	"github.com/GunarsK-portfolio/workshop-planner/internal/models"
	"github.com/GunarsK-portfolio/workshop-planner/internal/service"
	"github.com/gin-gonic/gin"
)

const claimsKey = "auth_claims"

// Authenticator decodes a raw token into claims.
type Authenticator interface {
	Authenticate(token string) (*service.Claims, error)
}

// Authenticate resolves the request's token into claims when one is
// present and valid. It never rejects: invalid tokens leave the request
// anonymous, and RequireAuth decides what that means for a route.
func Authenticate(auth Authenticator, tokenFrom func(c *gin.Context) string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := tokenFrom(c)
		if token == "" {
			c.Next()
			return
		}
		if claims, err := auth.Authenticate(token); err == nil {
			c.Set(claimsKey, claims)
		}
		c.Next()
	}
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := GetClaims(c); !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		c.Next()
	}
}

// RequireRole rejects requests whose role is not in roles with 403.
// Anonymous requests get 401.
func RequireRole(roles ...models.Role) gin.HandlerFunc {
	allowed := make(map[models.Role]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}

	return func(c *gin.Context) {
		claims, ok := GetClaims(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		if !allowed[claims.Role] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "insufficient permissions"})
			return
		}
		c.Next()
	}
}

// GetClaims returns the claims set by Authenticate.
func GetClaims(c *gin.Context) (*service.Claims, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*service.Claims)
	return claims, ok && claims != nil
}

