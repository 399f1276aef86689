package handlers

import (
	"errors"
	"net/http"

	"glowapp/models"
	ai "glowapp/services/intelligence"
	"glowapp/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// AIHandler serves style recommendations.
type AIHandler struct {
	StyleSvc ai.StyleService
}

func NewAIHandler(svc ai.StyleService) *AIHandler {
	return &AIHandler{StyleSvc: svc}
}

// StyleRecommendHandler accepts {preferences?, photoDataUri?} and returns
// three recommended looks.
func (h *AIHandler) StyleRecommendHandler(c *gin.Context) {
	logger := getLogger(c)

	if h.StyleSvc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Style recommendations are not configured"})
		return
	}

	var req models.StyleRecommendationInput
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.Error("Invalid style recommendation request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input: " + err.Error()})
		return
	}
	if req.Preferences == "" && req.PhotoDataURI == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Provide preferences, a photo, or both"})
		return
	}

	out, err := h.StyleSvc.Recommend(c.Request.Context(), c.GetString(utils.UserIDKey), req)
	switch {
	case errors.Is(err, ai.ErrInvalidPhoto):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case errors.Is(err, ai.ErrMalformedRecommendations):
		logger.Warn("Malformed style recommendations", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": ai.ErrMalformedRecommendations.Error()})
		return
	case err != nil:
		logger.Error("Style recommendation failed", zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Could not generate recommendations, please try again"})
		return
	}
	c.JSON(http.StatusOK, out)
}

// LastStyleHandler returns the user's most recent recommendation run.
func (h *AIHandler) LastStyleHandler(c *gin.Context) {
	if h.StyleSvc == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Style recommendations are not configured"})
		return
	}
	out, err := h.StyleSvc.Last(c.Request.Context(), c.GetString(utils.UserIDKey))
	if errors.Is(err, ai.ErrNoRecommendation) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		getLogger(c).Error("Failed to load last style recommendation", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load recommendation"})
		return
	}
	c.JSON(http.StatusOK, out)
}
