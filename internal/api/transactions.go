package api

import (
	"context"                         // Context for Redis operations
	"fraud_detection/internal/domain" // Importing domain models
	"fraud_detection/internal/utils"  // Utility functions
	"net/http"                        // HTTP status codes
	"strconv"                         // String conversion
	"time"                            // Time durations

	"github.com/gin-gonic/gin"      // Gin web framework
	"github.com/redis/go-redis/v9"  // Redis client
	"github.com/shopspring/decimal" // Exact decimal arithmetic for money

	"github.com/sirupsen/logrus" // Logging library
)

// transactionService is the service surface the handlers depend on.
type transactionService interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	Update(ctx context.Context, transactionID string, upd domain.TransactionUpdate) (*domain.Transaction, error)
	Delete(ctx context.Context, transactionID string) error
	Get(ctx context.Context, transactionID string) (*domain.Transaction, error)
	List(ctx context.Context, userID string, offset, limit int) ([]domain.Transaction, int64, error)
	ListAlerts(ctx context.Context) ([]domain.SuspiciousAlert, error)
}

// CreateTransactionRequest represents a new transaction submission
type CreateTransactionRequest struct {
	TransactionID string          `json:"transaction_id" binding:"required"` // Business identifier
	UserID        string          `json:"user_id" binding:"required"`        // Account identifier
	Amount        decimal.Decimal `json:"amount" binding:"required"`         // Monetary amount
	Location      string          `json:"location" binding:"required"`       // Where the transaction happened
	TxnTime       time.Time       `json:"txn_time"`                          // Optional, defaults to the evaluation time
	TxnType       string          `json:"txn_type" binding:"required"`       // Credit or Debit
}

// UpdateTransactionRequest represents a full replace of the mutable fields
type UpdateTransactionRequest struct {
	UserID   string          `json:"user_id" binding:"required"`  // Account identifier
	Amount   decimal.Decimal `json:"amount" binding:"required"`   // Monetary amount
	Location string          `json:"location" binding:"required"` // Where the transaction happened
	TxnTime  time.Time       `json:"txn_time"`                    // Optional, defaults to the evaluation time
	TxnType  string          `json:"txn_type" binding:"required"` // Credit or Debit
}

// invalidateTransactionCaches drops every cache entry a mutation can go
// stale through: the single transaction, the alert listing and the
// paginated transaction listings
func invalidateTransactionCaches(ctx context.Context, rdb *redis.Client, transactionID, userID string) {
	_ = utils.DeleteCache(ctx, rdb, "transaction:"+transactionID) // Single transaction cache
	_ = utils.DeleteCache(ctx, rdb, "fraudalerts:all")            // Alert listing cache
	utils.DeleteListPages(ctx, rdb, "transactions:user_id=")      // Unfiltered listing pages
	// Invalidate the mutated user's filtered listing pages when known
	if userID != "" {
		utils.DeleteListPages(ctx, rdb, "transactions:user_id="+userID)
	}
}

// CreateTransactionHandler records a new transaction and runs fraud
// evaluation on it in the same atomic unit
func CreateTransactionHandler(svc transactionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req CreateTransactionRequest // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Build the domain transaction from the request
		txn := domain.Transaction{
			TransactionID: req.TransactionID, // Business identifier
			UserID:        req.UserID,        // Account identifier
			Amount:        req.Amount,        // Monetary amount
			Location:      req.Location,      // Transaction location
			TxnTime:       req.TxnTime,       // Business timestamp
			TxnType:       req.TxnType,       // Credit or Debit
		}
		// Run the atomic create and evaluation unit
		if err := svc.Create(c.Request.Context(), &txn); err != nil {
			respondError(c, err, logrus.Fields{
				"transaction_id": req.TransactionID, // Business identifier
				"user_id":        req.UserID,        // Account identifier
			})
			return
		}
		// Log successful creation
		logrus.WithFields(logrus.Fields{
			"transaction_id": txn.TransactionID,               // Business identifier
			"user_id":        txn.UserID,                      // Account identifier
			"amount":         txn.Amount.String(),             // Monetary amount
			"status":         txn.Status,                      // Derived status
			"timestamp":      time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Transaction recorded")
		// Invalidate the caches this transaction touches
		if rdb, ok := c.MustGet("redisClient").(*redis.Client); ok {
			invalidateTransactionCaches(context.Background(), rdb, txn.TransactionID, txn.UserID)
		}
		// Return the stored transaction with its derived status
		c.JSON(http.StatusCreated, gin.H{"message": "Transaction recorded", "transaction": txn})
	}
}

// UpdateTransactionHandler replaces the mutable fields of a transaction
// and re-runs fraud evaluation on the new values
func UpdateTransactionHandler(svc transactionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		transactionID := c.Param("transaction_id") // Business identifier from the path
		var req UpdateTransactionRequest           // Bind JSON request to struct
		if err := c.ShouldBindJSON(&req); err != nil {
			// If binding fails, return bad request
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}
		// Build the replacement field set from the request
		upd := domain.TransactionUpdate{
			UserID:   req.UserID,   // Account identifier
			Amount:   req.Amount,   // Monetary amount
			Location: req.Location, // Transaction location
			TxnTime:  req.TxnTime,  // Business timestamp
			TxnType:  req.TxnType,  // Credit or Debit
		}
		// Run the atomic update and re-evaluation unit
		txn, err := svc.Update(c.Request.Context(), transactionID, upd)
		if err != nil {
			respondError(c, err, logrus.Fields{
				"transaction_id": transactionID, // Business identifier
				"user_id":        req.UserID,    // Account identifier
			})
			return
		}
		// Log successful update
		logrus.WithFields(logrus.Fields{
			"transaction_id": txn.TransactionID,               // Business identifier
			"user_id":        txn.UserID,                      // Account identifier
			"amount":         txn.Amount.String(),             // Monetary amount
			"status":         txn.Status,                      // Freshly derived status
			"timestamp":      time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Transaction updated")
		// Invalidate the caches this transaction touches
		if rdb, ok := c.MustGet("redisClient").(*redis.Client); ok {
			invalidateTransactionCaches(context.Background(), rdb, txn.TransactionID, txn.UserID)
		}
		// Return the updated transaction with its derived status
		c.JSON(http.StatusOK, gin.H{"message": "Transaction updated", "transaction": txn})
	}
}

// DeleteTransactionHandler removes a transaction and its alerts. Deleting
// an unknown transaction_id succeeds, so the operation can be retried
func DeleteTransactionHandler(svc transactionService) gin.HandlerFunc {
	return func(c *gin.Context) {
		transactionID := c.Param("transaction_id") // Business identifier from the path
		// Run the atomic cascade delete unit
		if err := svc.Delete(c.Request.Context(), transactionID); err != nil {
			respondError(c, err, logrus.Fields{
				"transaction_id": transactionID, // Business identifier
			})
			return
		}
		// Log successful deletion
		logrus.WithFields(logrus.Fields{
			"transaction_id": transactionID,                   // Business identifier
			"timestamp":      time.Now().Format(time.RFC3339), // Current timestamp
		}).Info("Transaction deleted")
		// Invalidate the caches this transaction touches
		if rdb, ok := c.MustGet("redisClient").(*redis.Client); ok {
			invalidateTransactionCaches(context.Background(), rdb, transactionID, "")
		}
		// Return success response
		c.JSON(http.StatusOK, gin.H{"message": "Transaction deleted"})
	}
}

// GetTransactionHandler returns one transaction by its business identifier
func GetTransactionHandler(svc transactionService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		transactionID := c.Param("transaction_id") // Business identifier from the path
		ctx := context.Background()                // Context for Redis operations
		cacheKey := "transaction:" + transactionID // Cache key for this transaction
		var txn domain.Transaction                 // Transaction struct to hold data
		found, err := utils.GetCache(ctx, rdb, cacheKey, &txn) // Try to get from cache
		// If found in cache, return it
		if err == nil && found {
			// Return cached transaction
			c.JSON(http.StatusOK, gin.H{"transaction": txn, "cached": true})
			return
		}
		// If not in cache, fetch through the service
		stored, err := svc.Get(c.Request.Context(), transactionID)
		if err != nil {
			respondError(c, err, logrus.Fields{
				"transaction_id": transactionID, // Business identifier
			})
			return
		}
		_ = utils.SetCache(ctx, rdb, cacheKey, stored, 60*time.Second)       // Cache the transaction for 60 seconds
		c.JSON(http.StatusOK, gin.H{"transaction": stored, "cached": false}) // Return transaction info
	}
}

// ListTransactionsHandler returns stored transactions ordered by business
// time, newest first, with optional filtering by user
func ListTransactionsHandler(svc transactionService, rdb *redis.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		page := 1      // Default page number
		pageSize := 20 // Default page size
		// Check and set page number from query params
		if p := c.Query("page"); p != "" {
			// If valid, set page number
			if v, err := strconv.Atoi(p); err == nil && v > 0 {
				page = v // Set page if valid
			}
		}
		// Check and set page size within limits
		if ps := c.Query("page_size"); ps != "" {
			// If valid, set page size
			if v, err := strconv.Atoi(ps); err == nil && v > 0 && v <= 100 {
				pageSize = v // Set page size
			}
		}
		offset := (page - 1) * pageSize // Calculate offset for pagination
		// Redis cache key built from the resolved filter and paging values
		cacheKey := "transactions:user_id=" + c.Query("user_id") + ":page=" + strconv.Itoa(page) + ":page_size=" + strconv.Itoa(pageSize)
		ctx := context.Background() // Context for Redis operations
		var cached struct {
			Transactions []domain.Transaction `json:"transactions"` // List of transactions
			Page         int                  `json:"page"`         // Current page
			PageSize     int                  `json:"page_size"`    // Page size
			Total        int64                `json:"total"`        // Total number of transactions
			TotalPages   int                  `json:"total_pages"`  // Total pages
		}
		// If cached data found, return it
		found, err := utils.GetCache(ctx, rdb, cacheKey, &cached)
		if err == nil && found {
			c.JSON(http.StatusOK, gin.H{
				"transactions": cached.Transactions, // List of transactions
				"page":         cached.Page,         // Current page
				"page_size":    cached.PageSize,     // Page size
				"total":        cached.Total,        // Total number of transactions
				"total_pages":  cached.TotalPages,   // Total pages
				"cached":       true,                // Indicate response is from cache
			})
			return
		}
		// Fetch the requested page through the service
		txns, total, err := svc.List(c.Request.Context(), c.Query("user_id"), offset, pageSize)
		if err != nil {
			respondError(c, err, logrus.Fields{
				"user_id": c.Query("user_id"), // Optional user filter
			})
			return
		}
		// The total number of pages
		totalPages := (int(total) + pageSize - 1) / pageSize
		respData := gin.H{
			"transactions": txns,       // List of transactions
			"page":         page,       // Current page
			"page_size":    pageSize,   // Page size
			"total":        total,      // Total number of transactions
			"total_pages":  totalPages, // Total pages
			"cached":       false,      // Indicate response is not from cache
		}
		// Cache the response for future requests
		_ = utils.SetCache(ctx, rdb, cacheKey, respData, 60*time.Second)
		c.JSON(http.StatusOK, respData) // Return the response
	}
}
