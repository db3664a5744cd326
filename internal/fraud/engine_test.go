package fraud_test

import (
	"context"
	"errors"
	"fraud_detection/internal/domain"
	"fraud_detection/internal/fraud"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeHistory returns a canned count and records the window it was asked
// about.
type fakeHistory struct {
	count     int64
	err       error
	gotUserID string
	gotStart  time.Time
	gotEnd    time.Time
}

func (h *fakeHistory) CountTransactions(_ context.Context, userID string, start, end time.Time) (int64, error) {
	h.gotUserID = userID
	h.gotStart = start
	h.gotEnd = end
	return h.count, h.err
}

func testTxn(amount string, at time.Time) *domain.Transaction {
	return &domain.Transaction{
		TransactionID: "TXN100",
		UserID:        "U1",
		Amount:        decimal.RequireFromString(amount),
		Location:      "Mumbai",
		TxnTime:       at,
		TxnType:       domain.TxnTypeDebit,
		Status:        domain.StatusOK,
	}
}

func TestEvaluateHighAmount(t *testing.T) {
	baseTime := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		amount     string
		wantReason string
	}{
		{
			name:       "well above the limit",
			amount:     "12000",
			wantReason: "High amount transaction: 12000 exceeds 10000 limit",
		},
		{
			name:       "just above the limit",
			amount:     "10000.01",
			wantReason: "High amount transaction: 10000.01 exceeds 10000 limit",
		},
		{
			name:   "exactly at the limit",
			amount: "10000",
		},
		{
			name:   "below the limit",
			amount: "9999.99",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := fraud.NewEngine()
			hist := &fakeHistory{count: 1}

			findings, err := engine.Evaluate(context.Background(), testTxn(tt.amount, baseTime), hist)
			require.NoError(t, err)

			if tt.wantReason == "" {
				assert.Empty(t, findings)
				return
			}
			require.Len(t, findings, 1)
			assert.Equal(t, fraud.RuleHighAmount, findings[0].Rule)
			assert.Equal(t, tt.wantReason, findings[0].Reason)
		})
	}
}

func TestEvaluateVelocity(t *testing.T) {
	baseTime := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		count      int64
		wantReason string
	}{
		{
			name:       "six transactions in the window",
			count:      6,
			wantReason: "Rapid transactions detected: 6 transactions within 5 minutes",
		},
		{
			name:       "many transactions in the window",
			count:      11,
			wantReason: "Rapid transactions detected: 11 transactions within 5 minutes",
		},
		{
			name:  "five transactions in the window",
			count: 5,
		},
		{
			name:  "only this transaction in the window",
			count: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine := fraud.NewEngine()
			hist := &fakeHistory{count: tt.count}

			findings, err := engine.Evaluate(context.Background(), testTxn("250", baseTime), hist)
			require.NoError(t, err)

			if tt.wantReason == "" {
				assert.Empty(t, findings)
				return
			}
			require.Len(t, findings, 1)
			assert.Equal(t, fraud.RuleVelocity, findings[0].Rule)
			assert.Equal(t, tt.wantReason, findings[0].Reason)
		})
	}
}

// The velocity window must be anchored on the transaction's own business
// time, inclusive on both ends, not on the wall clock.
func TestEvaluateWindowAnchoredOnTxnTime(t *testing.T) {
	baseTime := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	engine := fraud.NewEngine()
	hist := &fakeHistory{count: 1}

	_, err := engine.Evaluate(context.Background(), testTxn("250", baseTime), hist)
	require.NoError(t, err)

	assert.Equal(t, "U1", hist.gotUserID)
	assert.Equal(t, baseTime.Add(-5*time.Minute), hist.gotStart)
	assert.Equal(t, baseTime, hist.gotEnd)
}

func TestEvaluateBothRulesInOrder(t *testing.T) {
	baseTime := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	engine := fraud.NewEngine()
	hist := &fakeHistory{count: 8}

	findings, err := engine.Evaluate(context.Background(), testTxn("20000", baseTime), hist)
	require.NoError(t, err)

	require.Len(t, findings, 2)
	assert.Equal(t, fraud.RuleHighAmount, findings[0].Rule)
	assert.Equal(t, "High amount transaction: 20000 exceeds 10000 limit", findings[0].Reason)
	assert.Equal(t, fraud.RuleVelocity, findings[1].Rule)
	assert.Equal(t, "Rapid transactions detected: 8 transactions within 5 minutes", findings[1].Reason)
}

func TestEvaluateHistoryErrorPropagates(t *testing.T) {
	baseTime := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	engine := fraud.NewEngine()
	histErr := errors.New("connection reset")
	hist := &fakeHistory{err: histErr}

	findings, err := engine.Evaluate(context.Background(), testTxn("20000", baseTime), hist)
	assert.ErrorIs(t, err, histErr)
	assert.Nil(t, findings)
}

// Evaluating the same transaction against unchanged history twice must
// give the same findings.
func TestEvaluateRepeatable(t *testing.T) {
	baseTime := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	engine := fraud.NewEngine()
	hist := &fakeHistory{count: 7}
	txn := testTxn("15000", baseTime)

	first, err := engine.Evaluate(context.Background(), txn, hist)
	require.NoError(t, err)
	second, err := engine.Evaluate(context.Background(), txn, hist)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}
