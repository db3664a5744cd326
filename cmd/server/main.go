package main

import (
	"context"                             // context package is needed for Redis operations
	"fraud_detection/internal/api"        // Custom package for API handlers
	"fraud_detection/internal/config"     // Custom package for configuration
	"fraud_detection/internal/fraud"      // Custom package for the rule engine
	"fraud_detection/internal/middleware" // Custom package for middleware
	"fraud_detection/internal/service"    // Custom package for transaction operations
	"fraud_detection/internal/store"      // Custom package for persistence
	"log"                                 // log package is needed for logging

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client
	"github.com/sirupsen/logrus"   // Logrus for structured logging
	"gorm.io/driver/mysql"         // MySQL driver for GORM
	"gorm.io/gorm"                 // GORM ORM library
)

// Main function to set up and run the server
func main() {
	cfg := config.LoadConfig() // Load configuration

	// Setup logger
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Setup Data Source Name (DSN) and connect to the database
	dsn := cfg.DBUser + ":" + cfg.DBPassword + "@tcp(" + cfg.DBHost + ":" + cfg.DBPort + ")/" + cfg.DBName + "?parseTime=true"
	// TranslateError maps driver errors onto GORM's portable error values
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		logrus.Fatalf("failed to connect to DB: %v", err) // Fatal error if DB connection fails
	}

	// Setup Redis client
	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr, // Redis server address
		Password: cfg.RedisPass, // Redis password
		DB:       cfg.RedisDB,   // Redis database number
	})

	// Test Redis connection
	_, err = redisClient.Ping(context.Background()).Result()
	if err != nil {
		logrus.Fatalf("failed to connect to Redis: %v", err)
	}

	// Wire the fraud pipeline: store, rule engine, transaction service
	svc := service.NewTransactionService(store.New(db), fraud.NewEngine())

	// Set Mode to Release if in production
	if cfg.IsProd {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup Gin
	r := gin.Default() // Gin router instance

	// Set trusted proxies for Gin
	if err := r.SetTrustedProxies([]string{"127.0.0.1"}); err != nil {
		logrus.Fatalf("failed to set trusted proxies: %v", err)
	}

	// Auth routes
	r.POST("/reviewer", api.RegisterHandler(db))            // Reviewer registration endpoint
	r.GET("/reviewer", api.LoginHandler(db, cfg.JWTSecret)) // Reviewer login endpoint

	// Transaction routes (protected by JWT)
	txnGroup := r.Group("/transactions")
	// Protect transaction routes with JWT middleware and inject Redis client into context
	txnGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), func(c *gin.Context) {
		c.Set("redisClient", redisClient)
		c.Next()
	})
	txnGroup.POST("", api.CreateTransactionHandler(svc))                          // Create and evaluate endpoint
	txnGroup.GET("", api.ListTransactionsHandler(svc, redisClient))               // List transactions endpoint
	txnGroup.GET("/:transaction_id", api.GetTransactionHandler(svc, redisClient)) // Get single transaction endpoint
	txnGroup.PUT("/:transaction_id", api.UpdateTransactionHandler(svc))           // Update and re-evaluate endpoint
	// Destructive delete is limited to admin reviewers
	txnGroup.DELETE("/:transaction_id", middleware.AdminOnlyMiddleware(db), api.DeleteTransactionHandler(svc)) // Cascade delete endpoint

	// Fraud review routes (protected by JWT)
	alertGroup := r.Group("/fraud-alerts")
	// Protect alert routes with JWT middleware and inject Redis client into context
	alertGroup.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret), func(c *gin.Context) {
		c.Set("redisClient", redisClient)
		c.Next()
	})
	alertGroup.GET("", api.ListFraudAlertsHandler(svc, redisClient)) // Joined alert listing endpoint

	log.Println("Server running on " + cfg.AppPort) // Log server start
	r.Run(":" + cfg.AppPort)                        // Start the server on port cfg.AppPort
}
