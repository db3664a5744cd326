// Package service implements the transaction operations. Every create,
// update and delete runs as one atomic unit that persists the change,
// re-runs fraud evaluation and derives the stored status from the alerts.
package service

import (
	"context" // Context for store operations
	"strings" // Input normalization
	"time"    // Business time defaulting

	"fraud_detection/internal/domain" // Domain models
	"fraud_detection/internal/errs"   // Typed error taxonomy
	"fraud_detection/internal/fraud"  // Rule engine
	"fraud_detection/internal/store"  // Persistence contract

	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
	"github.com/sirupsen/logrus"    // Logging library
)

// TransactionService owns the write path for transactions and the read
// path for transactions and fraud alerts.
type TransactionService struct {
	store  store.Store   // Persistence behind every operation
	engine *fraud.Engine // Rules re-run on every mutation
}

// NewTransactionService wires a store and a rule engine together.
func NewTransactionService(st store.Store, eng *fraud.Engine) *TransactionService {
	return &TransactionService{store: st, engine: eng}
}

// validateFields enforces the field rules shared by create and update.
func validateFields(transactionID, userID, location, txnType string, amount decimal.Decimal) error {
	if transactionID == "" {
		return errs.NewValidationError("transaction_id is required")
	}
	if userID == "" {
		return errs.NewValidationError("user_id is required")
	}
	if location == "" {
		return errs.NewValidationError("location is required")
	}
	// Only the two known transaction types are accepted
	if txnType != domain.TxnTypeCredit && txnType != domain.TxnTypeDebit {
		return errs.NewValidationError("txn_type must be Credit or Debit")
	}
	if !amount.IsPositive() {
		return errs.NewValidationError("amount must be positive")
	}
	return nil
}

// normalizeTime fills a missing business time with the current moment and
// pins the value to UTC at second resolution.
func normalizeTime(t time.Time) time.Time {
	if t.IsZero() {
		t = time.Now() // A missing business time means the transaction happens now
	}
	return t.UTC().Truncate(time.Second)
}

// alertFor denormalizes the flagged transaction into an alert row, so the
// alert keeps its own copy of who and how much even after the transaction
// changes or disappears.
func alertFor(txn *domain.Transaction, f fraud.Finding) *domain.FraudAlert {
	return &domain.FraudAlert{
		TransactionID: txn.TransactionID, // Business identifier of the flagged transaction
		UserID:        txn.UserID,        // Captured at flag time
		Amount:        txn.Amount,        // Captured at flag time
		Reason:        f.Reason,          // Human-readable rule output
	}
}

// Create validates, stores and evaluates a new transaction. On return txn
// carries its primary key and derived status. The insert, the evaluation
// reads and any alerts land in one atomic unit, so a flagged transaction
// is never visible without its alerts.
func (s *TransactionService) Create(ctx context.Context, txn *domain.Transaction) error {
	// Trim identifier fields the way they arrive from clients
	txn.TransactionID = strings.TrimSpace(txn.TransactionID)
	txn.UserID = strings.TrimSpace(txn.UserID)
	txn.Location = strings.TrimSpace(txn.Location)
	if err := validateFields(txn.TransactionID, txn.UserID, txn.Location, txn.TxnType, txn.Amount); err != nil {
		return err
	}
	txn.TxnTime = normalizeTime(txn.TxnTime)
	txn.Status = domain.StatusOK // Until evaluation says otherwise

	var findings []fraud.Finding
	err := s.store.Atomic(ctx, func(tx store.Store) error {
		// Persist first: the velocity window must count this transaction too
		if err := tx.InsertTransaction(ctx, txn); err != nil {
			return err
		}
		var evalErr error
		findings, evalErr = s.engine.Evaluate(ctx, txn, tx)
		if evalErr != nil {
			return evalErr
		}
		// One alert per fired rule
		for _, f := range findings {
			if err := tx.InsertAlert(ctx, alertFor(txn, f)); err != nil {
				return err
			}
		}
		// A transaction is flagged exactly when it has alerts
		if len(findings) > 0 {
			return tx.SetStatus(ctx, txn.TransactionID, domain.StatusFlagged)
		}
		return nil
	})
	if err != nil {
		return err
	}
	if len(findings) > 0 {
		txn.Status = domain.StatusFlagged
		// Log every flagged transaction with its rule count
		logrus.WithFields(logrus.Fields{
			"transaction_id": txn.TransactionID, // Business identifier
			"user_id":        txn.UserID,        // Account
			"amount":         txn.Amount.String(),
			"alerts":         len(findings), // How many rules fired
		}).Info("Transaction flagged")
	}
	return nil
}

// Update replaces the mutable fields of a stored transaction, discards its
// old alerts and re-evaluates it from scratch inside one atomic unit. The
// returned transaction carries the freshly derived status.
func (s *TransactionService) Update(ctx context.Context, transactionID string, upd domain.TransactionUpdate) (*domain.Transaction, error) {
	transactionID = strings.TrimSpace(transactionID)
	upd.UserID = strings.TrimSpace(upd.UserID)
	upd.Location = strings.TrimSpace(upd.Location)
	if err := validateFields(transactionID, upd.UserID, upd.Location, upd.TxnType, upd.Amount); err != nil {
		return nil, err
	}
	upd.TxnTime = normalizeTime(upd.TxnTime)

	var txn *domain.Transaction
	var findings []fraud.Finding
	err := s.store.Atomic(ctx, func(tx store.Store) error {
		var err error
		// Locking update: concurrent units on this row queue up here
		txn, err = tx.UpdateTransaction(ctx, transactionID, upd)
		if err != nil {
			return err
		}
		// The old alerts describe the old field values, drop them first
		if err := tx.DeleteAlertsForTransaction(ctx, transactionID); err != nil {
			return err
		}
		findings, err = s.engine.Evaluate(ctx, txn, tx)
		if err != nil {
			return err
		}
		for _, f := range findings {
			if err := tx.InsertAlert(ctx, alertFor(txn, f)); err != nil {
				return err
			}
		}
		// Always re-derive: a formerly flagged transaction can go back to OK
		status := domain.StatusOK
		if len(findings) > 0 {
			status = domain.StatusFlagged
		}
		if err := tx.SetStatus(ctx, transactionID, status); err != nil {
			return err
		}
		txn.Status = status
		return nil
	})
	if err != nil {
		return nil, err
	}
	if len(findings) > 0 {
		// Log every flagged transaction with its rule count
		logrus.WithFields(logrus.Fields{
			"transaction_id": txn.TransactionID, // Business identifier
			"user_id":        txn.UserID,        // Account
			"amount":         txn.Amount.String(),
			"alerts":         len(findings), // How many rules fired
		}).Info("Transaction flagged")
	}
	return txn, nil
}

// Delete removes a transaction and every alert recorded for it in one
// atomic unit. Deleting an unknown transaction_id succeeds and changes
// nothing. Other transactions keep their alerts even if this one was part
// of their velocity window when they were evaluated.
func (s *TransactionService) Delete(ctx context.Context, transactionID string) error {
	return s.store.Atomic(ctx, func(tx store.Store) error {
		// Alerts first, mirroring the cascade the schema does not enforce
		if err := tx.DeleteAlertsForTransaction(ctx, transactionID); err != nil {
			return err
		}
		return tx.DeleteTransaction(ctx, transactionID)
	})
}

// Get fetches one transaction by its business identifier.
func (s *TransactionService) Get(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.store.GetTransaction(ctx, transactionID)
}

// List returns a page of transactions ordered by business time descending,
// optionally narrowed to one user, plus the total count for pagination.
func (s *TransactionService) List(ctx context.Context, userID string, offset, limit int) ([]domain.Transaction, int64, error) {
	return s.store.ListTransactions(ctx, userID, offset, limit)
}

// ListAlerts returns the fraud review listing, newest flag first.
func (s *TransactionService) ListAlerts(ctx context.Context) ([]domain.SuspiciousAlert, error) {
	return s.store.ListSuspicious(ctx)
}
