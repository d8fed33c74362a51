package middleware

import (
	"net/http"
	"os"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/interlingo/backend/internal/utils"
)

type apiError struct {
	Code    utils.Code `json:"code"`
	Message string     `json:"message"`
}

type authClaims struct {
	jwt.RegisteredClaims
	Role string `json:"role"`
}

// verifyBearer parses and validates the auth provider's HS256 bearer token
// and returns the subject. The second return is a human-readable reason when
// validation fails.
func verifyBearer(c *gin.Context, secret, issuer, audience string) (string, string) {
	auth := c.GetHeader("Authorization")
	raw := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
	if !strings.HasPrefix(auth, "Bearer ") || raw == "" {
		return "", "missing bearer token"
	}

	claims := &authClaims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))

	if err != nil || tok == nil || !tok.Valid {
		return "", "invalid token"
	}
	if issuer != "" && claims.Issuer != issuer {
		return "", "invalid token issuer"
	}
	if audience != "" {
		valid := false
		for _, aud := range claims.Audience {
			if aud == audience {
				valid = true
				break
			}
		}
		if !valid {
			return "", "invalid token audience"
		}
	}
	if claims.Subject == "" {
		return "", "missing subject"
	}
	return claims.Subject, ""
}

// JWTAuth validates the auth provider's HS256 bearer token and stores the
// subject as user_id. Used only on the authenticated routes; joining a room
// works without it.
func JWTAuth() gin.HandlerFunc {
	secret := os.Getenv("AUTH_JWT_SECRET")
	issuer := os.Getenv("AUTH_JWT_ISSUER")     // optional
	audience := os.Getenv("AUTH_JWT_AUDIENCE") // optional

	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusInternalServerError, apiError{
				Code:    utils.CodeInternal,
				Message: "AUTH_JWT_SECRET is not set",
			})
			return
		}

		subject, reason := verifyBearer(c, secret, issuer, audience)
		if subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, apiError{
				Code:    utils.CodeUnauthorized,
				Message: reason,
			})
			return
		}

		c.Set("user_id", subject)
		c.Next()
	}
}

// OptionalJWTAuth stores user_id when a valid bearer token is present and
// lets the request through either way. Joins use it so logged-in users keep
// their identity while guests still get in.
func OptionalJWTAuth() gin.HandlerFunc {
	secret := os.Getenv("AUTH_JWT_SECRET")
	issuer := os.Getenv("AUTH_JWT_ISSUER")
	audience := os.Getenv("AUTH_JWT_AUDIENCE")

	return func(c *gin.Context) {
		if secret != "" {
			if subject, _ := verifyBearer(c, secret, issuer, audience); subject != "" {
				c.Set("user_id", subject)
			}
		}
		c.Next()
	}
}
