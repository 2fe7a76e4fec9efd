package middleware

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	claimsKey = "claims"
	tokenKey  = "token"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// Denylist reports revoked access tokens.
type Denylist interface {
	Contains(ctx context.Context, token string) (bool, error)
}

type anyVerifier []Verifier

// AnyVerifier accepts a token when one of vs accepts it. Nil entries are
// skipped so optional verifiers can be passed unconditionally.
func AnyVerifier(vs ...Verifier) Verifier {
	out := make(anyVerifier, 0, len(vs))
	for _, v := range vs {
		if v != nil {
			out = append(out, v)
		}
	}
	return out
}

func (a anyVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	if len(a) == 0 {
		return nil, errors.New("no token verifier configured")
	}
	var errs []error
	for _, v := range a {
		tok, err := v.Verify(ctx, raw)
		if err == nil {
			return tok, nil
		}
		errs = append(errs, err)
	}
	return nil, errors.Join(errs...)
}

// BearerToken extracts the token from "Authorization: Bearer <t>" or the
// x-auth-token header.
func BearerToken(c *gin.Context) (string, bool) {
	if auth := c.GetHeader("Authorization"); auth != "" {
		scheme, tok, ok := strings.Cut(auth, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tok) == "" {
			return "", false
		}
		return strings.TrimSpace(tok), true
	}
	if tok := strings.TrimSpace(c.GetHeader("x-auth-token")); tok != "" {
		return tok, true
	}
	return "", false
}

// AuthMiddleware returns a Gin middleware that verifies bearer tokens using
// the provided verifier. deny may be nil.
func AuthMiddleware(ver Verifier, deny Denylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.GetHeader("Authorization") == "" && c.GetHeader("x-auth-token") == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "No token, authorization denied"})
			return
		}
		token, ok := BearerToken(c)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		if deny != nil {
			revoked, err := deny.Contains(c.Request.Context(), token)
			if err != nil {
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "token check failed"})
				return
			}
			if revoked {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token revoked"})
				return
			}
		}

		verified, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Token is not valid"})
			return
		}

		var claims map[string]interface{}
		if err := verified.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
			return
		}

		c.Set(claimsKey, claims)
		c.Set(tokenKey, token)
		c.Next()
	}
}

// IdentifyMiddleware stores claims for a valid, unrevoked token and lets
// every request through. It runs ahead of the rate limiter so signed-in
// clients are limited per subject rather than per IP.
func IdentifyMiddleware(ver Verifier, deny Denylist) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := BearerToken(c)
		if !ok || ver == nil {
			c.Next()
			return
		}
		if deny != nil {
			if revoked, err := deny.Contains(c.Request.Context(), token); err != nil || revoked {
				c.Next()
				return
			}
		}
		verified, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			c.Next()
			return
		}
		var claims map[string]interface{}
		if err := verified.Claims(&claims); err == nil {
			c.Set(claimsKey, claims)
			c.Set(tokenKey, token)
		}
		c.Next()
	}
}

// Claims returns the claims stored by AuthMiddleware or IdentifyMiddleware.
func Claims(c *gin.Context) (map[string]interface{}, bool) {
	v, ok := c.Get(claimsKey)
	if !ok {
		return nil, false
	}
	claims, ok := v.(map[string]interface{})
	return claims, ok
}

// RawToken returns the token accepted by AuthMiddleware.
func RawToken(c *gin.Context) string {
	return c.GetString(tokenKey)
}
