package store

import (
	"context" // Context for database operations

	"fraud_detection/internal/domain" // Domain models
	"fraud_detection/internal/errs"   // Typed error taxonomy
)

// InsertAlert stores a fraud alert. FlaggedAt is assigned on insert.
func (s *DB) InsertAlert(ctx context.Context, alert *domain.FraudAlert) error {
	if err := s.db.WithContext(ctx).Create(alert).Error; err != nil {
		return errs.NewStorageError("insert alert", err)
	}
	return nil
}

// DeleteAlertsForTransaction removes every alert recorded for a
// transaction_id. Removing alerts for an unknown transaction_id is a no-op.
func (s *DB) DeleteAlertsForTransaction(ctx context.Context, transactionID string) error {
	err := s.db.WithContext(ctx).
		Where("transaction_id = ?", transactionID).
		Delete(&domain.FraudAlert{}).Error
	if err != nil {
		return errs.NewStorageError("delete alerts", err)
	}
	return nil
}

// ListSuspicious returns every fraud alert joined with its transaction's
// current details, newest flag first. The join is a LEFT JOIN so alerts
// whose transaction has since been deleted still appear, with the
// transaction columns null.
func (s *DB) ListSuspicious(ctx context.Context) ([]domain.SuspiciousAlert, error) {
	var alerts []domain.SuspiciousAlert
	err := s.db.WithContext(ctx).
		Table("fraud_alerts").
		Select("fraud_alerts.id, fraud_alerts.transaction_id, fraud_alerts.user_id, fraud_alerts.amount, fraud_alerts.reason, fraud_alerts.flagged_at, transactions.location, transactions.txn_time, transactions.txn_type").
		Joins("LEFT JOIN transactions ON transactions.transaction_id = fraud_alerts.transaction_id").
		Order("fraud_alerts.flagged_at desc").
		Scan(&alerts).Error
	if err != nil {
		return nil, errs.NewStorageError("list suspicious", err)
	}
	return alerts, nil
}
