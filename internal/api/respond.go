package api

import (
	"net/http" // HTTP status codes

	"fraud_detection/internal/errs" // Typed error taxonomy

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// respondError maps typed service errors onto HTTP status codes. Storage
// and unknown errors are logged with their context and surface as a
// plain 500.
func respondError(c *gin.Context, err error, fields logrus.Fields) {
	switch e := err.(type) {
	case errs.ValidationError:
		// Input failed the field rules
		c.JSON(http.StatusBadRequest, gin.H{"error": e.Message})
	case errs.DuplicateTransactionError:
		// The transaction_id is already taken
		c.JSON(http.StatusConflict, gin.H{"error": e.Message})
	case errs.NotFoundError:
		// No transaction stored under this transaction_id
		c.JSON(http.StatusNotFound, gin.H{"error": e.Message})
	default:
		fields["error"] = err.Error()                       // Error message
		logrus.WithFields(fields).Error("Operation failed") // Log the failure with context
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
