// Package fraud implements rule-based fraud evaluation for banking
// transactions.
//
// Every transaction is evaluated against 2 rules in a fixed order:
// high amount and transaction velocity. Evaluation is pure: rules read
// stored history through a narrow interface and persist nothing, so the
// same transaction and history always produce the same findings.
package fraud

import (
	"context" // Context for history reads
	"fmt"     // Reason string formatting
	"time"    // Velocity window arithmetic

	"fraud_detection/internal/domain" // Transaction model

	"github.com/shopspring/decimal" // Exact decimal arithmetic for money
)

// Rule names attached to findings.
const (
	RuleHighAmount = "high_amount"
	RuleVelocity   = "velocity"
)

// History provides read access to stored transactions during evaluation.
type History interface {
	// CountTransactions returns how many of userID's transactions carry a
	// txn_time inside the inclusive range [start, end].
	CountTransactions(ctx context.Context, userID string, start, end time.Time) (int64, error)
}

// Finding is a single fired rule with its human-readable reason.
type Finding struct {
	Rule   string // Which rule fired
	Reason string // Reason recorded on the fraud alert
}

// Engine evaluates transactions against the configured thresholds.
type Engine struct {
	highAmountLimit decimal.Decimal // Amounts strictly above this fire the high amount rule
	velocityWindow  time.Duration   // How far back the velocity rule looks
	velocityMax     int64           // Window counts strictly above this fire the velocity rule
}

// NewEngine returns an Engine with the production thresholds: amounts above
// 10000 and more than 5 transactions inside a 5 minute window.
func NewEngine() *Engine {
	return &Engine{
		highAmountLimit: decimal.NewFromInt(10000), // High amount threshold
		velocityWindow:  5 * time.Minute,           // Velocity lookback window
		velocityMax:     5,                         // Velocity count threshold
	}
}

// Evaluate runs every rule against txn and returns the findings in rule
// order, at most one finding per rule. The velocity window is anchored on
// the transaction's own txn_time, not on the wall clock, and the count
// includes the transaction itself because it is persisted before
// evaluation runs. The only error is a failed history read.
func (e *Engine) Evaluate(ctx context.Context, txn *domain.Transaction, hist History) ([]Finding, error) {
	var findings []Finding

	// High amount rule: fires strictly above the limit
	if txn.Amount.GreaterThan(e.highAmountLimit) {
		findings = append(findings, Finding{
			Rule:   RuleHighAmount,
			Reason: fmt.Sprintf("High amount transaction: %s exceeds %s limit", txn.Amount.String(), e.highAmountLimit.String()),
		})
	}

	// Velocity rule: count the user's transactions inside the window ending
	// at this transaction's own time
	start := txn.TxnTime.Add(-e.velocityWindow)
	count, err := hist.CountTransactions(ctx, txn.UserID, start, txn.TxnTime)
	if err != nil {
		return nil, err // Propagate the storage failure untouched
	}
	if count > e.velocityMax {
		findings = append(findings, Finding{
			Rule:   RuleVelocity,
			Reason: fmt.Sprintf("Rapid transactions detected: %d transactions within 5 minutes", count),
		})
	}

	return findings, nil
}
