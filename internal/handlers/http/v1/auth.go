package v1

import (
	"crypto/subtle"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

const (
	memberIDKey         = "member_id"
	internalTokenHeader = "X-Internal-Token"
)

// JWTAuth accepts HS256 bearer tokens signed with secret and stores the
// member_id claim on the context.
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication is not configured"})
			return
		}

		authHeader := strings.Trim(c.GetHeader("Authorization"), "\"' ")
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "expected: Bearer <token>"})
			return
		}

		memberID, err := decodeMemberID(parts[1], []byte(secret))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(memberIDKey, memberID)
		c.Next()
	}
}

// InternalAuth admits service-to-service calls carrying secret in the
// X-Internal-Token header.
func InternalAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "internal calls are not configured"})
			return
		}

		got := c.GetHeader(internalTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(secret)) != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid internal token"})
			return
		}
		c.Next()
	}
}

func decodeMemberID(tokenString string, secret []byte) (int64, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("invalid signature method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return 0, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return 0, fmt.Errorf("invalid or expired token")
	}

	// numeric claims decode as float64
	id, ok := claims[memberIDKey].(float64)
	if !ok || id < 1 || id != float64(int64(id)) {
		return 0, fmt.Errorf("missing %s claim", memberIDKey)
	}
	return int64(id), nil
}
