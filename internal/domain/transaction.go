package domain

import (
	"time" // Timestamps for transactions

	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
)

// Transaction types accepted by the system
const (
	TxnTypeCredit = "Credit" // Money coming into the account
	TxnTypeDebit  = "Debit"  // Money leaving the account
)

// Transaction statuses derived from fraud evaluation
const (
	StatusOK      = "OK"      // No fraud alerts recorded
	StatusFlagged = "FLAGGED" // At least one fraud alert recorded
)

// Transaction Model
type Transaction struct {
	ID            uint            `gorm:"primaryKey" json:"id"`                               // Primary key
	TransactionID string          `gorm:"uniqueIndex;not null;size:64" json:"transaction_id"` // Client-supplied business identifier
	UserID        string          `gorm:"not null;index;index:idx_user_time" json:"user_id"`  // Account the transaction belongs to
	Amount        decimal.Decimal `gorm:"type:decimal(12,2);not null" json:"amount"`          // Monetary amount, always positive
	Location      string          `gorm:"not null" json:"location"`                           // Free-form place of the transaction
	TxnTime       time.Time       `gorm:"not null;index;index:idx_user_time" json:"txn_time"` // Business timestamp the rules reason about
	TxnType       string          `gorm:"not null" json:"txn_type"`                           // Credit or Debit
	Status        string          `gorm:"not null;default:OK" json:"status"`                  // OK or FLAGGED, derived from the alerts
}

// TransactionUpdate carries the replaceable fields of a stored transaction.
// The business identifier and the status are never part of an update.
type TransactionUpdate struct {
	UserID   string          // New account identifier
	Amount   decimal.Decimal // New monetary amount
	Location string          // New location
	TxnTime  time.Time       // New business timestamp
	TxnType  string          // New transaction type
}
