package middleware

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/authorityai/authorityai/backend/go-services/internal/sessions"
	"github.com/authorityai/authorityai/backend/go-services/pkg/logger"
	"github.com/gin-gonic/gin"
)

const (
	claimsKey   = "claims"
	identityKey = "identity"
	demoUserID  = "demo"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// ChainVerifier tries each verifier in order and returns the first success.
type ChainVerifier []Verifier

func (c ChainVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	var errs []error
	for _, v := range c {
		if v == nil {
			continue
		}
		tok, err := v.Verify(ctx, raw)
		if err == nil {
			return tok, nil
		}
		errs = append(errs, err)
	}
	if len(errs) == 0 {
		return nil, errors.New("no verifier configured")
	}
	return nil, errors.Join(errs...)
}

// Identity is the caller resolved from a verified bearer token. It is attached to
// every record the caller creates as an opaque owner tag.
type Identity struct {
	UserID string
	Email  string
	Name   string
}

// IsDemo reports whether this is the shared demo account.
func (i Identity) IsDemo() bool { return i.UserID == demoUserID }

// IdentityFrom returns the identity set by AuthMiddleware.
func IdentityFrom(c *gin.Context) (Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return Identity{}, false
	}
	id, ok := v.(Identity)
	return id, ok
}

// SetIdentity stores an identity on the context; used by AuthMiddleware and tests.
func SetIdentity(c *gin.Context, id Identity) {
	c.Set(identityKey, id)
	c.Set(claimsKey, map[string]interface{}{"sub": id.UserID, "email": id.Email, "name": id.Name})
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using the provided verifier.
// A missing header yields 401. A malformed header, a token that fails verification, or
// one revoked through logout yields 403.
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "access token required"})
			return
		}
		var token string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid Authorization header"})
			return
		}

		revoked, err := sessions.IsAccessTokenBlacklisted(c.Request.Context(), token)
		if err != nil {
			logger.Errorf("blacklist lookup failed: %v", err)
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token check failed"})
			return
		}
		if revoked {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token revoked"})
			return
		}

		verified, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			logger.Debugf("token verification failed: %v", err)
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid token"})
			return
		}

		var claims map[string]interface{}
		if err := verified.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "failed to parse claims"})
			return
		}
		sub, _ := claims["sub"].(string)
		if sub == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "token has no subject"})
			return
		}
		email, _ := claims["email"].(string)
		name, _ := claims["name"].(string)

		c.Set(claimsKey, claims)
		c.Set(identityKey, Identity{UserID: sub, Email: email, Name: name})
		c.Next()
	}
}
