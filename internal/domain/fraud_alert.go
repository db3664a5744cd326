package domain

import (
	"time" // Timestamps for alerts

	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
)

// FraudAlert Model
type FraudAlert struct {
	ID            uint            `gorm:"primaryKey" json:"id"`                         // Primary key
	TransactionID string          `gorm:"not null;index;size:64" json:"transaction_id"` // Business identifier of the flagged transaction
	UserID        string          `gorm:"not null" json:"user_id"`                      // Copied from the transaction when the alert was raised
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`    // Copied from the transaction when the alert was raised
	Reason        string          `gorm:"not null" json:"reason"`                       // Human-readable rule output
	FlaggedAt     time.Time       `gorm:"autoCreateTime" json:"flagged_at"`             // Assigned on insert
}

// SuspiciousAlert is one row of the fraud review listing: an alert joined
// with its transaction's current details. The transaction columns are
// pointers because the transaction may have been deleted after the alert
// was raised, in which case they come back null.
type SuspiciousAlert struct {
	ID            uint            `json:"id"`             // Alert primary key
	TransactionID string          `json:"transaction_id"` // Business identifier of the flagged transaction
	UserID        string          `json:"user_id"`        // Account captured at flag time
	Amount        decimal.Decimal `json:"amount"`         // Amount captured at flag time
	Reason        string          `json:"reason"`         // Human-readable rule output
	FlaggedAt     time.Time       `json:"flagged_at"`     // When the alert was raised
	Location      *string         `json:"location"`       // Current location, null if the transaction is gone
	TxnTime       *time.Time      `json:"txn_time"`       // Current business timestamp, null if the transaction is gone
	TxnType       *string         `json:"txn_type"`       // Current type, null if the transaction is gone
}
