package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"gorm.io/gorm"

	"github.com/feastly/foodmarket-app/config"
	"github.com/feastly/foodmarket-app/models"
	"github.com/feastly/foodmarket-app/router"
	"github.com/feastly/foodmarket-app/services"
	"github.com/feastly/foodmarket-app/utils"
)

func main() {
	// Load .env before anything reads the environment.
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	utils.InitLogger()

	cfg, err := config.Load()
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to load config: %v", err)
	}

	utils.SetJWTSecret(cfg.JWT.Secret)

	db, err := config.InitDB(cfg.Database.DSN)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to connect to database: %v", err)
	}
	autoMigrate(db)

	if cfg.Server.GinMode == "release" {
		gin.SetMode(gin.ReleaseMode)
	}

	checkout := services.NewStripeCheckoutService(
		cfg.Checkout.SecretKey,
		cfg.Checkout.SuccessURL,
		cfg.Checkout.CancelURL,
	)
	verifier := services.NewWebhookVerifier(cfg.Checkout.WebhookSecret)
	analytics := services.NewAnalyticsService(db, cfg.Platform.FeeRate, cfg.Analytics.RevenueScope)

	images, err := services.NewS3ImageStore(context.Background(), cfg.Storage.Region, cfg.Storage.Bucket)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to initialize image storage: %v", err)
	}

	r := router.SetupRouter(router.Deps{
		DB:        db,
		Checkout:  checkout,
		Verifier:  verifier,
		Analytics: analytics,
		Images:    images,
	})

	utils.InfoLogger.Printf("Listening on port %s", cfg.Server.Port)
	if err := r.Run(":" + cfg.Server.Port); err != nil {
		utils.ErrorLogger.Fatal(err)
	}
}

func autoMigrate(db *gorm.DB) {
	err := db.AutoMigrate(
		&models.User{},
		&models.Restaurant{},
		&models.MenuItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.OrderStatusChange{},
		&models.Complaint{},
	)
	if err != nil {
		utils.ErrorLogger.Fatalf("Failed to AutoMigrate: %v", err)
	}
	utils.InfoLogger.Println("AutoMigrate completed.")
}
