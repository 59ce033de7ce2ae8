package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/draftkeeper/backend/internal/sessions"
	"github.com/draftkeeper/backend/internal/users"
)

// context keys set by the auth middleware
const (
	identityKey    = "identity"
	accessTokenKey = "accessToken"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// IdentityResolver maps verified token claims to a local identity.
// Implemented by *users.Service.
type IdentityResolver interface {
	Resolve(ctx context.Context, c users.Claims) (users.Identity, error)
}

// AuthMiddleware verifies Bearer tokens and resolves the caller's identity.
// A verified token without a local user row still passes: the identity is
// ephemeral and only /auth routes can do anything useful with it.
func AuthMiddleware(ver Verifier, resolver IdentityResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		// Expect 'Bearer <token>'
		var token string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		if revoked, err := sessions.IsAccessTokenBlacklisted(c.Request.Context(), token); err == nil && revoked {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
			return
		}

		idToken, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "details": err.Error()})
			return
		}

		var claims map[string]interface{}
		if err := idToken.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
			return
		}

		uc := users.Claims{
			UID:     str(claims, "sub"),
			Email:   str(claims, "email"),
			Name:    str(claims, "name"),
			Picture: str(claims, "picture"),
		}
		if uc.UID == "" {
			// Firebase tokens carry the uid as both sub and user_id.
			uc.UID = str(claims, "user_id")
		}
		if uc.UID == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token has no subject"})
			return
		}

		ident, err := resolver.Resolve(c.Request.Context(), uc)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "identity resolution failed"})
			return
		}

		c.Set(identityKey, ident)
		c.Set(accessTokenKey, token)
		c.Next()
	}
}

// Identity returns the identity stored by AuthMiddleware.
func Identity(c *gin.Context) (users.Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return users.Identity{}, false
	}
	ident, ok := v.(users.Identity)
	return ident, ok
}

// AccessToken returns the raw bearer token stored by AuthMiddleware.
func AccessToken(c *gin.Context) string {
	return c.GetString(accessTokenKey)
}

func str(m map[string]interface{}, key string) string {
	s, _ := m[key].(string)
	return s
}
