package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/smousavi/bazaarche-backend/config"
	"github.com/smousavi/bazaarche-backend/internal/app/controller"
	"github.com/smousavi/bazaarche-backend/internal/app/repository"
	"github.com/smousavi/bazaarche-backend/internal/app/service"
	"github.com/smousavi/bazaarche-backend/internal/db"
	"github.com/smousavi/bazaarche-backend/internal/middleware"
	"github.com/smousavi/bazaarche-backend/internal/router"
	"github.com/smousavi/bazaarche-backend/internal/scheduler"
	"github.com/smousavi/bazaarche-backend/internal/websocket"
	"github.com/smousavi/bazaarche-backend/pkg/geocode"
	"github.com/smousavi/bazaarche-backend/pkg/logger"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal("Failed to load configuration", err)
	}

	// Initialize logger
	logLevel := "info"
	if cfg.Server.Environment == "development" {
		logLevel = "debug"
	}
	logger.Initialize(logger.Config{
		Level:       logLevel,
		Format:      "console", // Use "json" for production
		EnableColor: true,
	})

	logger.Info("Starting Bazaarche Backend Server", map[string]interface{}{
		"environment": cfg.Server.Environment,
		"port":        cfg.Server.Port,
		"db_driver":   cfg.Database.Driver,
		"log_level":   logLevel,
	})

	// Initialize database
	database, err := db.Connect(&cfg.Database)
	if err != nil {
		logger.Fatal("Failed to initialize database", err)
	}
	defer func() {
		if err := db.Close(database); err != nil {
			logger.Error("Failed to close database connection", err)
		}
	}()

	// Run migrations
	if err := db.Migrate(database); err != nil {
		logger.Fatal("Failed to run migrations", err)
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(database)
	adRepo := repository.NewAdRepository(database)
	shopRepo := repository.NewShopRepository(database)
	chatRepo := repository.NewChatRepository(database)

	// Initialize services
	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.TokenExpiry)
	adService := service.NewAdService(adRepo, shopRepo)
	shopService := service.NewShopService(shopRepo)
	adminService := service.NewAdminService(userRepo, adRepo, shopRepo)
	chatService := service.NewChatService(chatRepo, adRepo)

	// Start the websocket hub
	hub := websocket.NewHub()
	go hub.Run()

	// Initialize controllers
	authController := controller.NewAuthController(authService, cfg.JWT.TokenExpiry)
	adController := controller.NewAdController(adService)
	shopController := controller.NewShopController(shopService)
	adminController := controller.NewAdminController(adminService)
	chatController := controller.NewChatController(chatService, hub)
	geocodeController := controller.NewGeocodeController(geocode.NewClient(cfg.Geocode.BaseURL))
	uploadController := controller.NewUploadController(cfg.Uploads.Dir)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(cfg.JWT.Secret)

	// Start the ad expiry sweep
	expiryScheduler := scheduler.NewAdExpiryScheduler(adRepo)
	if err := expiryScheduler.Start(); err != nil {
		logger.Fatal("Failed to start ad expiry scheduler", err)
	}
	defer expiryScheduler.Stop()

	// Setup router
	r := router.NewRouter(
		authController,
		adController,
		shopController,
		adminController,
		chatController,
		geocodeController,
		uploadController,
		authMiddleware,
		cfg,
	)
	engine := r.Setup()

	// Start server in a goroutine
	go func() {
		addr := fmt.Sprintf(":%s", cfg.Server.Port)
		logger.Info("Server started successfully", map[string]interface{}{
			"address": addr,
			"pid":     os.Getpid(),
		})
		if err := engine.Run(addr); err != nil {
			logger.Fatal("Failed to start server", err)
		}
	}()

	// Wait for interrupt signal to gracefully shutdown the server
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down server gracefully...")
	logger.Info("Server stopped successfully")
}
