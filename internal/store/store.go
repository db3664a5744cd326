// Package store persists transactions and fraud alerts in MySQL through
// GORM and defines the contract the service layer programs against.
package store

import (
	"context" // Context for database operations
	"time"    // Window bounds for history counts

	"fraud_detection/internal/domain" // Domain models
	"fraud_detection/internal/errs"   // Typed error taxonomy

	"gorm.io/gorm" // GORM ORM library
)

// Store is the persistence contract for transactions and fraud alerts.
// Every write returns a typed error from the errs package; raw driver
// errors never cross this boundary.
type Store interface {
	// Atomic runs fn inside a single database transaction. fn receives a
	// Store bound to that transaction, and any error it returns rolls the
	// whole unit back.
	Atomic(ctx context.Context, fn func(tx Store) error) error

	InsertTransaction(ctx context.Context, txn *domain.Transaction) error
	UpdateTransaction(ctx context.Context, transactionID string, upd domain.TransactionUpdate) (*domain.Transaction, error)
	SetStatus(ctx context.Context, transactionID, status string) error
	DeleteTransaction(ctx context.Context, transactionID string) error
	GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, userID string, offset, limit int) ([]domain.Transaction, int64, error)
	CountTransactions(ctx context.Context, userID string, start, end time.Time) (int64, error)

	InsertAlert(ctx context.Context, alert *domain.FraudAlert) error
	DeleteAlertsForTransaction(ctx context.Context, transactionID string) error
	ListSuspicious(ctx context.Context) ([]domain.SuspiciousAlert, error)
}

// DB implements Store on top of a GORM MySQL handle.
type DB struct {
	db *gorm.DB
}

// New wraps a GORM handle in a Store implementation.
func New(db *gorm.DB) *DB {
	return &DB{db: db}
}

// Atomic runs fn inside one database transaction. Concurrent units that
// touch the same transaction_id serialize on the row locks taken by their
// first write or locking read.
func (s *DB) Atomic(ctx context.Context, fn func(tx Store) error) error {
	var inner error
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		inner = fn(&DB{db: tx})
		return inner
	})
	// An error fn never produced means begin or commit itself failed
	if err != nil && err != inner {
		return errs.NewStorageError("atomic unit", err)
	}
	return err
}
