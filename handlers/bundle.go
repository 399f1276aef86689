// File: glowapp/handlers/bundle.go
package handlers

import (
	"github.com/gin-gonic/gin"
)

// HandlerBundle groups all endpoint handlers into one struct.
type HandlerBundle struct {
	// Catalog endpoints
	ListCategoriesHandler gin.HandlerFunc
	ListServicesHandler   gin.HandlerFunc
	ListStylistsHandler   gin.HandlerFunc

	// Booking wizard endpoints
	InitiateSession     gin.HandlerFunc
	GetSession          gin.HandlerFunc
	CancelSession       gin.HandlerFunc
	SelectCategory      gin.HandlerFunc
	ToggleService       gin.HandlerFunc
	SelectStylist       gin.HandlerFunc
	SelectDate          gin.HandlerFunc
	SelectTime          gin.HandlerFunc
	RefreshAvailability gin.HandlerFunc
	Advance             gin.HandlerFunc
	Retreat             gin.HandlerFunc
	ListReservations    gin.HandlerFunc

	// AI endpoints
	StyleRecommendHandler gin.HandlerFunc
	LastStyleHandler      gin.HandlerFunc

	// Health
	HealthHandler gin.HandlerFunc
}
