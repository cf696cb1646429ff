package middleware

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/driftship/sentinel/config"
	logger "github.com/driftship/sentinel/logging"
)

// IdentityClaims are the claims stamped on platform-issued service tokens.
type IdentityClaims struct {
	jwt.StandardClaims
	Username string   `json:"username"`
	Groups   []string `json:"groups"`
}

// Identity validates the bearer token on every request and places the
// caller's subject on the gin context under "requestingUserID". Controllers
// reject requests where that key is absent.
func Identity(requiredGroups []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := c.GetHeader("Authorization")
		if tokenString == "" {
			logger.Warn("No Authorization token provided", zap.String("path", c.Request.URL.Path))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		claims, err := parseToken(tokenString)
		if err != nil {
			logger.Error("Error parsing token", zap.Error(err))
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			c.Abort()
			return
		}

		if !hasRequiredGroup(claims, requiredGroups) {
			logger.Warn("Caller lacks a required group",
				zap.String("subject", claims.Subject),
				zap.Strings("required", requiredGroups))
			c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
			c.Abort()
			return
		}

		c.Set("requestingUserID", claims.Subject)
		c.Set("requestingUser", claims.Username)

		c.Next()
	}
}

func parseToken(tokenString string) (*IdentityClaims, error) {
	tokenString = strings.TrimPrefix(tokenString, "Bearer ")
	secret := []byte(config.GetString("auth.jwt.secret"))

	token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token or wrong claims type")
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("token carries no subject")
	}
	return claims, nil
}

func hasRequiredGroup(claims *IdentityClaims, requiredGroups []string) bool {
	if len(requiredGroups) == 0 {
		return true
	}
	for _, group := range requiredGroups {
		for _, userGroup := range claims.Groups {
			if userGroup == group {
				return true
			}
		}
	}
	return false
}
