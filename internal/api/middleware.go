package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/snagtrack/snagtrack/internal/access"
)

// principalKey is the gin context key the auth middleware stores the
// resolved principal under.
const principalKey = "principal"

// Claims is the token payload this service consumes. Tokens are issued by
// the identity service; only the subject (user id) and role matter here.
type Claims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// AuthRequired verifies the bearer token and stores the principal in the
// request context. Requests without a valid token get a bare 401.
func AuthRequired(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		tokenStr, ok := strings.CutPrefix(header, "Bearer ")
		if !ok || tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		var claims Claims
		token, err := jwt.ParseWithClaims(tokenStr, &claims, func(t *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		}, jwt.WithValidMethods([]string{"HS256"}))
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		userID, err := strconv.ParseUint(claims.Subject, 10, 64)
		if err != nil || userID == 0 || claims.Role == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}

		p := access.Principal{ID: uint(userID), Role: claims.Role}
		c.Set(principalKey, p)
		c.Set("principal_id", p.ID)
		c.Next()
	}
}

// principalFrom returns the principal stored by AuthRequired.
func principalFrom(c *gin.Context) access.Principal {
	v, _ := c.Get(principalKey)
	p, _ := v.(access.Principal)
	return p
}
