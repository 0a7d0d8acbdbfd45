package main

import (
	"context"
	"log"
	"net/http"

	"github.com/gilded-grove/concierge-api/config"
	"github.com/gilded-grove/concierge-api/controllers"
	"github.com/gilded-grove/concierge-api/middleware"
	"github.com/gilded-grove/concierge-api/models"
	"github.com/gilded-grove/concierge-api/services"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

func main() {
	// Basic logging
	log.Println("Starting Gilded Grove concierge API server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Connect to database
	if err := config.ConnectDatabase(); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Auto-migrate database models
	db := config.GetDB()
	if err := db.AutoMigrate(
		&models.Product{},
		&models.Order{},
		&models.OrderStatusEntry{},
		&models.ReturnRequest{},
		&models.WidgetShortlist{},
		&models.InspirationItem{},
		&models.CapsuleHold{},
		&models.StylistTicket{},
		&models.CsatFeedback{},
		&models.OrderSubscription{},
		&models.AnalyticsEvent{},
	); err != nil {
		log.Fatalf("Failed to migrate database: %v", err)
	}
	log.Println("Database migration completed successfully")

	// Intent table and product provider are fixed at startup
	services.InitIntentService()
	if _, err := services.InitProductProvider(cfg, db); err != nil {
		log.Fatalf("Failed to initialize product provider: %v", err)
	}
	log.Printf("Product provider: %s", cfg.ProductProvider)

	// S3-backed inspiration uploads (optional in local development)
	if cfg.AWSS3Bucket != "" {
		s3Service, err := services.InitS3Service(cfg)
		if err != nil {
			log.Fatalf("Failed to initialize S3 service: %v", err)
		}
		services.InitImageService(s3Service)
	} else {
		log.Println("AWS_S3_BUCKET not set, inspiration uploads use in-memory storage")
		mockS3 := services.NewMockS3Service()
		services.SetS3Service(mockS3)
		services.InitImageService(mockS3)
	}

	// Background sweep of expired widget records
	reaperCtx, stopReaper := context.WithCancel(context.Background())
	defer stopReaper()
	go services.NewReaperService(db).Start(reaperCtx)

	// Initialize Gin router
	router := gin.Default()

	// The widget is embedded in the storefront and calls cross-origin
	router.Use(cors.New(cors.Config{
		AllowOrigins: []string{"https://gildedgrove.com", "https://www.gildedgrove.com", "http://localhost:3000"},
		AllowMethods: []string{"GET", "POST", "OPTIONS"},
		AllowHeaders: []string{"Origin", "Content-Type", "Authorization"},
	}))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check endpoint
		v1.GET("/health", healthCheck)

		// Concierge widget
		v1.POST("/concierge/message", controllers.ResolveMessage)
		v1.GET("/concierge/products", controllers.QueryProducts)

		// Support flows
		v1.POST("/support/order-status", controllers.OrderStatus)
		v1.POST("/support/returns", controllers.CreateReturn)
		v1.POST("/support/shortlist", controllers.CreateShortlist)
		v1.POST("/support/capsule", controllers.CreateCapsuleHold)
		v1.POST("/support/stylist", controllers.CreateStylistTicket)
		v1.POST("/support/csat", controllers.CreateCsat)
		v1.POST("/support/order-updates", controllers.CreateOrderSubscription)
		v1.POST("/support/inspiration", controllers.UploadInspiration)

		// Back office
		admin := v1.Group("/admin",
			middleware.EnsureValidToken(cfg),
			middleware.RequireScope("manage:concierge"),
		)
		{
			admin.POST("/products", controllers.UpsertProducts)
			admin.GET("/tickets", controllers.ListStylistTickets)
			admin.GET("/csat", controllers.ListCsatFeedback)
		}
	}

	// Start server
	port := ":" + cfg.Port
	log.Printf("Server is running on http://localhost%s", port)
	if err := router.Run(port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}

// healthCheck handles the health check endpoint
func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Gilded Grove concierge API is running",
	})
}
