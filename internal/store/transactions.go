package store

import (
	"context" // Context for database operations
	"errors"  // Error matching against GORM sentinels
	"time"    // Window bounds for history counts

	"fraud_detection/internal/domain" // Domain models
	"fraud_detection/internal/errs"   // Typed error taxonomy

	"gorm.io/gorm"        // GORM ORM library
	"gorm.io/gorm/clause" // Row locking clauses
)

// InsertTransaction stores a new transaction. The unique index on
// transaction_id turns a duplicate insert into a DuplicateTransactionError,
// which also settles races between concurrent creates.
func (s *DB) InsertTransaction(ctx context.Context, txn *domain.Transaction) error {
	if err := s.db.WithContext(ctx).Create(txn).Error; err != nil {
		// Duplicate key means the transaction_id is already taken
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return errs.NewDuplicateTransactionError(txn.TransactionID)
		}
		return errs.NewStorageError("insert transaction", err)
	}
	return nil
}

// UpdateTransaction replaces the mutable fields of a stored transaction and
// returns the updated row. The row is read with a FOR UPDATE lock first, so
// concurrent units on the same transaction_id queue up behind each other
// and a missing row is reported as NotFoundError. The status column is
// never touched here.
func (s *DB) UpdateTransaction(ctx context.Context, transactionID string, upd domain.TransactionUpdate) (*domain.Transaction, error) {
	var txn domain.Transaction
	// Locking read: serializes concurrent updates and deletes on this row
	err := s.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("transaction_id = ?", transactionID).
		First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFoundError(transactionID)
	}
	if err != nil {
		return nil, errs.NewStorageError("load transaction", err)
	}
	// Replace exactly the mutable columns
	updates := map[string]any{
		"user_id":  upd.UserID,
		"amount":   upd.Amount,
		"location": upd.Location,
		"txn_time": upd.TxnTime,
		"txn_type": upd.TxnType,
	}
	if err := s.db.WithContext(ctx).Model(&txn).Updates(updates).Error; err != nil {
		return nil, errs.NewStorageError("update transaction", err)
	}
	return &txn, nil
}

// SetStatus writes the derived status of a transaction.
func (s *DB) SetStatus(ctx context.Context, transactionID, status string) error {
	err := s.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("transaction_id = ?", transactionID).
		Update("status", status).Error
	if err != nil {
		return errs.NewStorageError("set status", err)
	}
	return nil
}

// DeleteTransaction removes a transaction. Deleting a transaction_id that
// is not stored is a no-op, not an error.
func (s *DB) DeleteTransaction(ctx context.Context, transactionID string) error {
	err := s.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Delete(&domain.Transaction{}).Error
	if err != nil {
		return errs.NewStorageError("delete transaction", err)
	}
	return nil
}

// GetTransaction fetches one transaction by its business identifier.
func (s *DB) GetTransaction(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	var txn domain.Transaction
	err := s.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		First(&txn).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errs.NewNotFoundError(transactionID)
	}
	if err != nil {
		return nil, errs.NewStorageError("get transaction", err)
	}
	return &txn, nil
}

// ListTransactions returns a page of transactions ordered by txn_time
// descending, optionally narrowed to one user, plus the total row count
// for pagination.
func (s *DB) ListTransactions(ctx context.Context, userID string, offset, limit int) ([]domain.Transaction, int64, error) {
	query := s.db.WithContext(ctx).Model(&domain.Transaction{}) // Start building the query
	if userID != "" {
		query = query.Where("user_id = ?", userID) // Filter by user ID
	}
	var total int64
	// Count the matching rows before paging
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, errs.NewStorageError("count transactions", err)
	}
	var txns []domain.Transaction
	// Fetch the requested page, newest business time first
	if err := query.Order("txn_time desc").Offset(offset).Limit(limit).Find(&txns).Error; err != nil {
		return nil, 0, errs.NewStorageError("list transactions", err)
	}
	return txns, total, nil
}

// CountTransactions returns how many of userID's transactions carry a
// txn_time inside the inclusive range [start, end]. This is the history
// read behind the velocity rule and it uses the (user_id, txn_time) index.
func (s *DB) CountTransactions(ctx context.Context, userID string, start, end time.Time) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&domain.Transaction{}).
		Where("user_id = ? AND txn_time >= ? AND txn_time <= ?", userID, start, end).
		Count(&count).Error
	if err != nil {
		return 0, errs.NewStorageError("count transactions", err)
	}
	return count, nil
}
