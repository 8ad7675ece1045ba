package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/mealdiary/backend/config"
	"github.com/mealdiary/backend/internal/api"
	"github.com/mealdiary/backend/internal/database"
	"github.com/mealdiary/backend/internal/middleware"
	"github.com/mealdiary/backend/internal/router"
	"github.com/mealdiary/backend/internal/server"
	"github.com/mealdiary/backend/internal/service"
)

func main() {
	// Initialize configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect storage
	db, err := database.New(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	redisClient, err := database.NewRedisClient(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	s3Config, err := config.NewS3Config(context.Background())
	if err != nil {
		log.Fatalf("Failed to initialize S3: %v", err)
	}

	// Build services
	authService := service.NewAuthService(db, cfg.JWTSecret)
	profileService := service.NewProfileService(db)
	mealService := service.NewMealService(db)
	photoService := service.NewPhotoService(s3Config)

	recommendationService, err := service.NewRecommendationService(cfg.AI, redisClient)
	if err != nil {
		log.Fatalf("Failed to initialize recommendation service: %v", err)
	}

	// Build handlers and routes
	authHandler := api.NewAuthHandler(authService)
	profileHandler := api.NewProfileHandler(profileService)
	mealHandler := api.NewMealHandler(mealService, photoService)
	photoHandler := api.NewPhotoHandler(photoService)
	recommendationHandler := api.NewRecommendationHandler(profileService, mealService, recommendationService)

	recommendationLimiter := middleware.NewRecommendationRateLimiter(redisClient)

	engine := router.SetupRouter(
		authHandler,
		profileHandler,
		mealHandler,
		photoHandler,
		recommendationHandler,
		authService,
		recommendationLimiter,
	)

	srv := server.New(cfg, engine)

	// Channel to listen for errors coming from the server
	errChan := make(chan error, 1)

	// Start server in a goroutine
	go func() {
		log.Printf("Starting server on %s:%s", cfg.ServerHost, cfg.ServerPort)
		errChan <- srv.Start()
	}()

	// Channel to listen for an interrupt or terminate signal from the OS
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Block until we receive a signal or error
	select {
	case err := <-errChan:
		if err != nil {
			log.Fatalf("Server error: %v", err)
		}
	case sig := <-quit:
		log.Printf("Received signal: %v", sig)
	}

	// Gracefully shutdown the server
	log.Println("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
	log.Println("Server stopped")
}
