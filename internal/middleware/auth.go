package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	ContextKeyUserID = "user_id"

	// AnonymousUser owns the session of unauthenticated callers.
	AnonymousUser = "anonymous"
)

var errMissingSubject = errors.New("token has no subject")

// Identity returns middleware that resolves the caller's user id. With an
// empty secret every caller is AnonymousUser. Otherwise a Bearer token
// signed with HS256 is required and its "sub" claim becomes the user id.
func Identity(secret, issuer string) gin.HandlerFunc {
	if secret == "" {
		return func(c *gin.Context) {
			c.Set(ContextKeyUserID, AnonymousUser)
			c.Next()
		}
	}

	key := []byte(secret)
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()})}
	if issuer != "" {
		opts = append(opts, jwt.WithIssuer(issuer))
	}
	parser := jwt.NewParser(opts...)

	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "missing or invalid authorization header"},
			})
			return
		}

		userID, err := subject(parser, strings.TrimPrefix(authHeader, "Bearer "), key)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"success": false,
				"error":   gin.H{"code": "UNAUTHORIZED", "message": "invalid or expired token"},
			})
			return
		}

		c.Set(ContextKeyUserID, userID)
		c.Next()
	}
}

func subject(parser *jwt.Parser, raw string, key []byte) (string, error) {
	claims := &jwt.RegisteredClaims{}
	if _, err := parser.ParseWithClaims(raw, claims, func(*jwt.Token) (interface{}, error) {
		return key, nil
	}); err != nil {
		return "", err
	}
	if claims.Subject == "" {
		return "", errMissingSubject
	}
	return claims.Subject, nil
}

// GetUserID extracts the user id from the Gin context, falling back to
// AnonymousUser.
func GetUserID(c *gin.Context) string {
	if id := c.GetString(ContextKeyUserID); id != "" {
		return id
	}
	return AnonymousUser
}
