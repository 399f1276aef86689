package middleware

import (
	"net/http"
	"strings"

	"glowapp/models"
	"glowapp/services/auth"
	"glowapp/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func bearerToken(c *gin.Context) (string, bool) {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
		return "", false
	}
	token := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
	return token, token != ""
}

// authenticate validates the bearer token and puts the user on the request
// context. It reports whether a user was found and aborts on a bad token.
func authenticate(c *gin.Context) bool {
	tokenString, ok := bearerToken(c)
	if !ok {
		return false
	}
	userID, email, err := utils.ExtractUserFromToken(tokenString)
	if err != nil {
		utils.GetLogger().Debug("Rejected bearer token", zap.String("ip", getClientIP(c)), zap.Error(err))
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
			"error": "Invalid or expired token",
			"code":  "unauthenticated",
		})
		return false
	}

	user := &models.User{ID: userID, Email: email, Token: tokenString}
	c.Set(utils.UserIDKey, userID)
	c.Request = c.Request.WithContext(auth.WithUser(c.Request.Context(), user))
	return true
}

// OptionalUserAuth attaches the user when a valid token is present. Anonymous
// requests pass through; a present but invalid token is rejected.
func OptionalUserAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authenticate(c)
		if c.IsAborted() {
			return
		}
		c.Next()
	}
}

// JWTAuthUserMiddleware requires a valid user token.
func JWTAuthUserMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !authenticate(c) {
			if !c.IsAborted() {
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"error": "Insufficient authorization",
					"code":  "unauthenticated",
				})
			}
			return
		}
		c.Next()
	}
}
