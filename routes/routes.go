package routes

import (
	"strings"
	"time"

	"glowapp/handlers"
	"glowapp/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// RegisterCatalogRoutes registers the read-only catalog endpoints.
func RegisterCatalogRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/catalog")
	{
		api.GET("/categories", hb.ListCategoriesHandler)
		api.GET("/services", hb.ListServicesHandler)
		api.GET("/stylists", hb.ListStylistsHandler)
	}
}

// RegisterBookingRoutes sets up the endpoints for the booking wizard. Anyone
// may browse the wizard; submitting requires a signed-in user.
func RegisterBookingRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	bookingGroup := r.Group("/api/booking")
	{
		session := bookingGroup.Group("/session")
		session.Use(middleware.OptionalUserAuth())
		session.POST("", hb.InitiateSession)
		session.GET("/:sessionID", hb.GetSession)
		session.DELETE("/:sessionID", hb.CancelSession)
		session.PUT("/:sessionID/category", hb.SelectCategory)
		session.POST("/:sessionID/services", hb.ToggleService)
		session.PUT("/:sessionID/stylist", hb.SelectStylist)
		session.PUT("/:sessionID/date", hb.SelectDate)
		session.PUT("/:sessionID/time", hb.SelectTime)
		session.POST("/:sessionID/availability", hb.RefreshAvailability)
		session.POST("/:sessionID/advance", hb.Advance)
		session.POST("/:sessionID/retreat", hb.Retreat)

		bookingGroup.GET("/reservations", middleware.JWTAuthUserMiddleware(), hb.ListReservations)
	}
}

// RegisterAIRoutes registers AI endpoints.
func RegisterAIRoutes(r *gin.Engine, hb *handlers.HandlerBundle) {
	api := r.Group("/api/ai")
	{
		// Protected routes (Require Authentication)
		api.Use(middleware.JWTAuthUserMiddleware())
		api.POST("/style-recommendations", hb.StyleRecommendHandler)
		api.GET("/style-recommendations/last", hb.LastStyleHandler)
	}
}

// RegisterHealthRoute registers a health-check endpoint.
func RegisterHealthRoute(r *gin.Engine, hb *handlers.HandlerBundle) {
	r.GET("/health", hb.HealthHandler)
}

// RegisterRoutes centralizes registration of all endpoints and middleware.
func RegisterRoutes(r *gin.Engine, hb *handlers.HandlerBundle, corsOrigins string) {
	r.Use(cors.New(corsConfig(corsOrigins)))

	RegisterHealthRoute(r, hb)
	RegisterCatalogRoutes(r, hb)
	RegisterBookingRoutes(r, hb)
	RegisterAIRoutes(r, hb)
}

// corsConfig allows the comma-separated origins, or any origin when empty.
// Credentials are only allowed for an explicit origin list.
func corsConfig(origins string) cors.Config {
	cfg := cors.Config{
		AllowMethods:  []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Authorization", "Content-Type"},
		ExposeHeaders: []string{"Content-Length"},
		MaxAge:        12 * time.Hour,
	}
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" && o != "*" {
			cfg.AllowOrigins = append(cfg.AllowOrigins, o)
		}
	}
	if len(cfg.AllowOrigins) == 0 {
		cfg.AllowAllOrigins = true
	} else {
		cfg.AllowCredentials = true
	}
	return cfg
}
