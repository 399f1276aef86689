// File: glowapp/main.go
package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"glowapp/config"
	"glowapp/cron"
	"glowapp/database"
	recordsRepo "glowapp/database/repository/records"
	"glowapp/handlers"
	"glowapp/middleware"
	"glowapp/routes"
	"glowapp/services/auth"
	"glowapp/services/booking"
	ai "glowapp/services/intelligence"
	"glowapp/services/notification"
	"glowapp/services/salon"
	"glowapp/services/tasks"
	"glowapp/utils"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/zap"
)

func main() {
	config.LoadConfig()
	logger := utils.GetLogger()
	defer logger.Sync()

	cfg := config.AppConfig
	if config.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	bookingRedis := utils.GetBookingClient()
	cacheRedis := utils.GetCacheClient()

	healthChecks := map[string]utils.HealthCheck{
		"redis": func(ctx context.Context) error { return bookingRedis.Ping(ctx).Err() },
	}

	// Reservation receipts are optional; without MongoDB the wizard still books.
	var records recordsRepo.ReservationRecordRepository
	if cfg.DatabaseURL != "" {
		if err := database.InitDB(ctx); err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		repo, err := recordsRepo.NewMongoRecordRepo(database.Database())
		if err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		records = repo
		healthChecks["mongo"] = func(ctx context.Context) error { return database.MongoClient.Ping(ctx, nil) }
	} else {
		logger.Warn("DATABASE_URL not set; reservation receipts and reminders are disabled")
	}

	salonClient := salon.NewClient(cfg.SalonAPIURL, logger.Named("salon"), salon.WithTimeout(cfg.SalonAPITimeout))

	bookingService := &booking.DefaultBookingSessionService{
		Catalog:      salonClient,
		Availability: salonClient,
		Sink:         salonClient,
		Auth:         auth.ContextAuthProvider{},
		Store:        booking.NewRedisSessionStore(bookingRedis, cfg.BookingSessionTTL),
		Options: booking.WizardOptions{
			BookingWindowDays: cfg.BookingWindowDays,
			Location:          cfg.Location(),
			PendingTimeout:    2 * cfg.SalonAPITimeout,
		},
		Logger:              logger.Named("booking"),
		DefaultCategoryStep: cfg.BookingCategoryStep,
	}

	var (
		queue  *asynq.Client
		worker *asynq.Server
	)
	if records != nil {
		bookingService.Recorder = records
		queue = asynq.NewClient(cron.RedisOpt())
		bookingService.Reminders = tasks.NewReminderScheduler(queue, cfg.ReminderLeadTime, cfg.Location())
		worker = cron.InitReminderWorker(notification.NewLogNotificationService(logger.Named("reminders")), records, logger.Named("worker"))
	}

	aiHandler := handlers.NewAIHandler(nil)
	var gemini *ai.GeminiClient
	if cfg.GeminiAPIKey != "" {
		var err error
		gemini, err = ai.NewGeminiClient(ctx, cfg.GeminiAPIKey, cfg.GeminiTextModel, cfg.GeminiImageModel)
		if err != nil {
			logger.Sugar().Fatalf("main: %v", err)
		}
		recommender := &ai.StyleRecommender{
			Generator: gemini,
			Stylists:  salonClient,
			Results:   ai.NewRedisResultStore(cacheRedis, cfg.AIResultTTL),
			Logger:    logger.Named("ai"),
		}
		imageStore, err := utils.Cloudinary()
		if err != nil {
			logger.Sugar().Fatalf("main: failed to initialize cloudinary storage service: %v", err)
		}
		if imageStore != nil {
			recommender.Images = imageStore
		}
		aiHandler = handlers.NewAIHandler(recommender)
	} else {
		logger.Warn("GEMINI_API_KEY not set; style recommendations are disabled")
	}

	utils.StartHealthMonitor(ctx, time.Minute, healthChecks)

	// Create the Gin router.
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(utils.ErrorHandler())
	router.Use(gin.Logger())
	router.Use(middleware.RateLimitMiddleware(cfg.MaxRequestsPerMin))

	bookingHandler := handlers.NewBookingHandler(bookingService)
	catalogHandler := handlers.NewCatalogHandler(salonClient)

	// Assemble the handler bundle.
	handlerBundle := &handlers.HandlerBundle{
		ListCategoriesHandler: catalogHandler.ListCategoriesHandler,
		ListServicesHandler:   catalogHandler.ListServicesHandler,
		ListStylistsHandler:   catalogHandler.ListStylistsHandler,

		InitiateSession:     bookingHandler.InitiateSession,
		GetSession:          bookingHandler.GetSession,
		CancelSession:       bookingHandler.CancelSession,
		SelectCategory:      bookingHandler.SelectCategory,
		ToggleService:       bookingHandler.ToggleService,
		SelectStylist:       bookingHandler.SelectStylist,
		SelectDate:          bookingHandler.SelectDate,
		SelectTime:          bookingHandler.SelectTime,
		RefreshAvailability: bookingHandler.RefreshAvailability,
		Advance:             bookingHandler.Advance,
		Retreat:             bookingHandler.Retreat,
		ListReservations:    bookingHandler.ListReservations,

		StyleRecommendHandler: aiHandler.StyleRecommendHandler,
		LastStyleHandler:      aiHandler.LastStyleHandler,

		HealthHandler: handlers.HealthHandler,
	}

	// Register routes with the assembled handler bundle.
	routes.RegisterRoutes(router, handlerBundle, cfg.CORSOrigins)

	// Start the HTTP server.
	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}
	srv := &http.Server{
		Addr:    "0.0.0.0:" + port,
		Handler: router,
	}

	logger.Sugar().Infof("Starting server on %s...", srv.Addr)
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar().Fatalf("main: server failed to start: %v", err)
		}
	}()

	// Wait for an OS signal to gracefully shutdown.
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Sugar().Info("main: server is shutting down...")
	stop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), utils.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("main: server forced to shutdown", zap.Error(err))
	}
	if worker != nil {
		worker.Shutdown()
	}
	if queue != nil {
		_ = queue.Close()
	}
	if gemini != nil {
		_ = gemini.Close()
	}
	if err := database.Close(shutdownCtx); err != nil {
		logger.Warn("main: failed to disconnect MongoDB", zap.Error(err))
	}
	_ = bookingRedis.Close()
	_ = cacheRedis.Close()

	logger.Sugar().Info("main: server stopped gracefully")
}
