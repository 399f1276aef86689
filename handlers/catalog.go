package handlers

import (
	"net/http"

	"glowapp/models"
	"glowapp/services/booking"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CatalogHandler serves the read-only salon catalog.
type CatalogHandler struct {
	Catalog booking.CatalogProvider
}

func NewCatalogHandler(catalog booking.CatalogProvider) *CatalogHandler {
	return &CatalogHandler{Catalog: catalog}
}

func (h *CatalogHandler) ListCategoriesHandler(c *gin.Context) {
	categories, err := h.Catalog.ListCategories(c.Request.Context())
	if err != nil {
		h.catalogError(c, "categories", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": categories})
}

// ListServicesHandler lists active services, optionally ?category=<name>.
func (h *CatalogHandler) ListServicesHandler(c *gin.Context) {
	var filter models.CatalogFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query", "details": err.Error()})
		return
	}
	services, err := h.Catalog.ListServices(c.Request.Context(), filter)
	if err != nil {
		h.catalogError(c, "services", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"services": services})
}

// ListStylistsHandler lists available stylists, optionally ?category=<name>.
func (h *CatalogHandler) ListStylistsHandler(c *gin.Context) {
	var filter models.CatalogFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid query", "details": err.Error()})
		return
	}
	stylists, err := h.Catalog.ListStylists(c.Request.Context(), filter)
	if err != nil {
		h.catalogError(c, "stylists", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"stylists": stylists})
}

func (h *CatalogHandler) catalogError(c *gin.Context, what string, err error) {
	getLogger(c).Warn("Failed to load catalog", zap.String("resource", what), zap.Error(err))
	status, code := bookingErrorStatus(err)
	if status == http.StatusInternalServerError {
		status, code = http.StatusBadGateway, booking.CodeTransientNetworkError
	}
	c.JSON(status, gin.H{"error": "Failed to load " + what, "code": code})
}
