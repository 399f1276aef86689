package handlers

import (
	"glowapp/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// getLogger retrieves a Zap logger from the Gin context or falls back to the global one.
func getLogger(c *gin.Context) *zap.Logger {
	if l, exists := c.Get("logger"); exists {
		if logger, ok := l.(*zap.Logger); ok {
			return logger
		}
	}
	logger := utils.GetLogger()
	if userID := c.GetString(utils.UserIDKey); userID != "" {
		logger = logger.With(zap.String("userId", userID))
	}
	return logger
}
