package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"medscan/internal/config"
	"medscan/internal/domain"
)

const (
	ContextKeyOwnerID = "owner_id"
	ContextKeyEmail   = "email"
)

// Claims are the bearer-token claims this service reads. Tokens are minted
// by the identity provider; Subject becomes the report owner.
type Claims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// TokenValidator verifies HMAC-signed bearer tokens.
type TokenValidator struct {
	secret []byte
	opts   []jwt.ParserOption
}

// NewTokenValidator creates a validator from auth settings. Issuer and
// audience are enforced only when configured.
func NewTokenValidator(cfg config.AuthConfig) *TokenValidator {
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{"HS256", "HS384", "HS512"}),
		jwt.WithExpirationRequired(),
	}
	if cfg.Issuer != "" {
		opts = append(opts, jwt.WithIssuer(cfg.Issuer))
	}
	if cfg.Audience != "" {
		opts = append(opts, jwt.WithAudience(cfg.Audience))
	}
	return &TokenValidator{secret: []byte(cfg.Secret), opts: opts}
}

// Validate parses tokenString and returns its claims.
func (v *TokenValidator) Validate(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, v.opts...)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", domain.ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return nil, domain.ErrInvalidToken
	}
	return claims, nil
}

// Auth validates the bearer token and injects the owner id. A nil validator
// disables authentication and every request runs as the anonymous owner.
func Auth(v *TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		if v == nil {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing or invalid authorization header"},
			})
			return
		}

		claims, err := v.Validate(strings.TrimPrefix(authHeader, "Bearer "))
		if err != nil {
			message := "invalid or expired token"
			if errors.Is(err, jwt.ErrTokenExpired) {
				message = "token has expired"
			}
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": message},
			})
			return
		}

		c.Set(ContextKeyOwnerID, claims.Subject)
		c.Set(ContextKeyEmail, claims.Email)
		c.Next()
	}
}

// GetOwnerID returns the authenticated owner, or "" when auth is disabled.
func GetOwnerID(c *gin.Context) string {
	return c.GetString(ContextKeyOwnerID)
}

// GetEmail returns the authenticated user's email claim, if any.
func GetEmail(c *gin.Context) string {
	return c.GetString(ContextKeyEmail)
}
