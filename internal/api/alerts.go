package api

import (
	"context"                         // Context for Redis operations
	"fraud_detection/internal/domain" // Importing domain models
	"fraud_detection/internal/utils"  // Utility functions
	"net/http"                        // HTTP status codes
	"time"                            // Time durations

	"github.com/gin-gonic/gin"     // Gin web framework
	"github.com/redis/go-redis/v9" // Redis client

	"github.com/sirupsen/logrus" // Logging library
)

// ListFraudAlertsHandler returns every fraud alert joined with its
// transaction's current details, newest flag first. Alerts whose
// transaction was deleted still appear with the transaction fields null
func ListFraudAlertsHandler(svc transactionService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := context.Background()   // Context for Redis operations
		cacheKey := "fraudalerts:all" // Single key, the listing is not paginated
		var cached struct {
			Alerts []domain.SuspiciousAlert `json:"alerts"` // Alert rows with joined transaction details
			Total  int                      `json:"total"`  // Row count
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"alerts": cached.Alerts, // Alert rows
				"total":  cached.Total,  // Row count
				"cached": true,          // Indicate response is from cache
			})
			return
		}
		// Fetch the joined listing through the service
		alerts, err := svc.ListAlerts(c.Request.Context())
		if err != nil {
			respondError(c, err, logrus.Fields{})
			return
		}
		respData := gin.H{
			"alerts": alerts,      // Alert rows
			"total":  len(alerts), // Row count
			"cached": false,       // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}
