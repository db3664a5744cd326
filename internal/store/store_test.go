package store_test

import (
	"context"
	"errors"
	"fraud_detection/internal/domain"
	"fraud_detection/internal/errs"
	"fraud_detection/internal/store"
	"os"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// newTestStore opens the MySQL database named by TEST_DB_DSN, migrates the
// schema and wipes both tables so every test starts clean. The suite is
// skipped when the variable is not set.
func newTestStore(t *testing.T) *store.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DB_DSN")
	if dsn == "" {
		t.Skip("TEST_DB_DSN not set; skipping MySQL store tests")
	}
	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&domain.Transaction{}, &domain.FraudAlert{}, &domain.Reviewer{}))
	require.NoError(t, db.Exec("DELETE FROM fraud_alerts").Error)
	require.NoError(t, db.Exec("DELETE FROM transactions").Error)
	return store.New(db)
}

func seedTxn(t *testing.T, s *store.DB, transactionID, userID, amount string, at time.Time) *domain.Transaction {
	t.Helper()
	txn := &domain.Transaction{
		TransactionID: transactionID,
		UserID:        userID,
		Amount:        decimal.RequireFromString(amount),
		Location:      "Mumbai",
		TxnTime:       at,
		TxnType:       domain.TxnTypeDebit,
		Status:        domain.StatusOK,
	}
	require.NoError(t, s.InsertTransaction(context.Background(), txn))
	return txn
}

func TestInsertAndGetTransaction(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	seedTxn(t, s, "TXN100", "U1", "250.50", at)

	stored, err := s.GetTransaction(context.Background(), "TXN100")
	require.NoError(t, err)
	assert.Equal(t, "TXN100", stored.TransactionID)
	assert.Equal(t, "U1", stored.UserID)
	assert.True(t, stored.Amount.Equal(decimal.RequireFromString("250.50")))
	assert.Equal(t, "Mumbai", stored.Location)
	assert.True(t, stored.TxnTime.Equal(at))
	assert.Equal(t, domain.TxnTypeDebit, stored.TxnType)
	assert.Equal(t, domain.StatusOK, stored.Status)
}

func TestGetUnknownTransaction(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetTransaction(context.Background(), "TXN404")

	var nfErr errs.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "TXN404", nfErr.TransactionID)
}

func TestInsertDuplicateTransactionID(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	seedTxn(t, s, "TXN200", "U1", "100", at)

	dup := &domain.Transaction{
		TransactionID: "TXN200",
		UserID:        "U2",
		Amount:        decimal.RequireFromString("999"),
		Location:      "Delhi",
		TxnTime:       at.Add(time.Hour),
		TxnType:       domain.TxnTypeCredit,
		Status:        domain.StatusOK,
	}
	err := s.InsertTransaction(context.Background(), dup)

	var dupErr errs.DuplicateTransactionError
	require.ErrorAs(t, err, &dupErr)
	assert.Equal(t, "TXN200", dupErr.TransactionID)

	// The first write wins
	stored, getErr := s.GetTransaction(context.Background(), "TXN200")
	require.NoError(t, getErr)
	assert.Equal(t, "U1", stored.UserID)
}

func TestCountTransactionsInclusiveWindow(t *testing.T) {
	s := newTestStore(t)
	start := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	end := start.Add(5 * time.Minute)

	// Edge rows sit exactly on the window bounds; the rows one second
	// outside and the other user's row must not count
	seedTxn(t, s, "TXN300", "U1", "100", start.Add(-time.Second))
	seedTxn(t, s, "TXN301", "U1", "100", start)
	seedTxn(t, s, "TXN302", "U1", "100", start.Add(2*time.Minute))
	seedTxn(t, s, "TXN303", "U1", "100", end)
	seedTxn(t, s, "TXN304", "U1", "100", end.Add(time.Second))
	seedTxn(t, s, "TXN305", "U2", "100", start.Add(time.Minute))

	count, err := s.CountTransactions(context.Background(), "U1", start, end)
	require.NoError(t, err)
	assert.EqualValues(t, 3, count)
}

func TestUpdateTransaction(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	seedTxn(t, s, "TXN400", "U1", "100", at)
	// A preset status must survive the field update untouched
	require.NoError(t, s.SetStatus(context.Background(), "TXN400", domain.StatusFlagged))

	updated, err := s.UpdateTransaction(context.Background(), "TXN400", domain.TransactionUpdate{
		UserID:   "U2",
		Amount:   decimal.RequireFromString("750.25"),
		Location: "Delhi",
		TxnTime:  at.Add(time.Hour),
		TxnType:  domain.TxnTypeCredit,
	})
	require.NoError(t, err)
	assert.Equal(t, "U2", updated.UserID)
	assert.True(t, updated.Amount.Equal(decimal.RequireFromString("750.25")))
	assert.Equal(t, "Delhi", updated.Location)
	assert.True(t, updated.TxnTime.Equal(at.Add(time.Hour)))
	assert.Equal(t, domain.TxnTypeCredit, updated.TxnType)

	stored, err := s.GetTransaction(context.Background(), "TXN400")
	require.NoError(t, err)
	assert.Equal(t, "U2", stored.UserID)
	assert.Equal(t, domain.StatusFlagged, stored.Status)
}

func TestUpdateUnknownTransaction(t *testing.T) {
	s := newTestStore(t)

	_, err := s.UpdateTransaction(context.Background(), "TXN404", domain.TransactionUpdate{
		UserID:   "U1",
		Amount:   decimal.RequireFromString("100"),
		Location: "Mumbai",
		TxnTime:  time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC),
		TxnType:  domain.TxnTypeDebit,
	})

	var nfErr errs.NotFoundError
	require.ErrorAs(t, err, &nfErr)
	assert.Equal(t, "TXN404", nfErr.TransactionID)
}

func TestSetStatus(t *testing.T) {
	s := newTestStore(t)
	seedTxn(t, s, "TXN500", "U1", "100", time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC))

	require.NoError(t, s.SetStatus(context.Background(), "TXN500", domain.StatusFlagged))

	stored, err := s.GetTransaction(context.Background(), "TXN500")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFlagged, stored.Status)
}

func TestDeleteTransactionIdempotent(t *testing.T) {
	s := newTestStore(t)
	seedTxn(t, s, "TXN600", "U1", "100", time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC))

	require.NoError(t, s.DeleteTransaction(context.Background(), "TXN600"))

	_, err := s.GetTransaction(context.Background(), "TXN600")
	var nfErr errs.NotFoundError
	require.ErrorAs(t, err, &nfErr)

	// Deleting a row that is already gone is a no-op
	require.NoError(t, s.DeleteTransaction(context.Background(), "TXN600"))
}

func TestListTransactionsPaging(t *testing.T) {
	s := newTestStore(t)
	baseTime := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	for i, id := range []string{"TXN700", "TXN701", "TXN702", "TXN703"} {
		seedTxn(t, s, id, "U1", "100", baseTime.Add(time.Duration(i)*time.Hour))
	}
	seedTxn(t, s, "TXN704", "U2", "100", baseTime.Add(30*time.Minute))

	// First page, newest business time first
	txns, total, err := s.ListTransactions(context.Background(), "", 0, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, txns, 2)
	assert.Equal(t, "TXN703", txns[0].TransactionID)
	assert.Equal(t, "TXN702", txns[1].TransactionID)

	// Second page continues where the first stopped
	txns, total, err = s.ListTransactions(context.Background(), "", 2, 2)
	require.NoError(t, err)
	assert.EqualValues(t, 5, total)
	require.Len(t, txns, 2)
	assert.Equal(t, "TXN701", txns[0].TransactionID)

	// Narrowed to one user
	txns, total, err = s.ListTransactions(context.Background(), "U2", 0, 20)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, txns, 1)
	assert.Equal(t, "TXN704", txns[0].TransactionID)
}

func TestSuspiciousListingJoin(t *testing.T) {
	s := newTestStore(t)
	baseTime := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	seedTxn(t, s, "TXN800", "U1", "12000", baseTime)
	seedTxn(t, s, "TXN801", "U2", "15000", baseTime.Add(time.Minute))

	require.NoError(t, s.InsertAlert(context.Background(), &domain.FraudAlert{
		TransactionID: "TXN800",
		UserID:        "U1",
		Amount:        decimal.RequireFromString("12000"),
		Reason:        "High amount transaction: 12000 exceeds 10000 limit",
		FlaggedAt:     baseTime.Add(time.Second),
	}))
	require.NoError(t, s.InsertAlert(context.Background(), &domain.FraudAlert{
		TransactionID: "TXN801",
		UserID:        "U2",
		Amount:        decimal.RequireFromString("15000"),
		Reason:        "High amount transaction: 15000 exceeds 10000 limit",
		FlaggedAt:     baseTime.Add(time.Minute + time.Second),
	}))

	// Dropping only the transaction row leaves the alert orphaned, which
	// the listing must tolerate
	require.NoError(t, s.DeleteTransaction(context.Background(), "TXN801"))

	alerts, err := s.ListSuspicious(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 2)

	// Newest flag first
	assert.Equal(t, "TXN801", alerts[0].TransactionID)
	assert.Equal(t, "U2", alerts[0].UserID)
	assert.True(t, alerts[0].Amount.Equal(decimal.RequireFromString("15000")))
	assert.Nil(t, alerts[0].Location)
	assert.Nil(t, alerts[0].TxnTime)
	assert.Nil(t, alerts[0].TxnType)

	assert.Equal(t, "TXN800", alerts[1].TransactionID)
	require.NotNil(t, alerts[1].Location)
	assert.Equal(t, "Mumbai", *alerts[1].Location)
	require.NotNil(t, alerts[1].TxnTime)
	assert.True(t, alerts[1].TxnTime.Equal(baseTime))
	require.NotNil(t, alerts[1].TxnType)
	assert.Equal(t, domain.TxnTypeDebit, *alerts[1].TxnType)
}

func TestDeleteAlertsForTransaction(t *testing.T) {
	s := newTestStore(t)
	baseTime := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	seedTxn(t, s, "TXN900", "U1", "12000", baseTime)
	seedTxn(t, s, "TXN901", "U1", "13000", baseTime.Add(time.Hour))
	for i, id := range []string{"TXN900", "TXN900", "TXN901"} {
		require.NoError(t, s.InsertAlert(context.Background(), &domain.FraudAlert{
			TransactionID: id,
			UserID:        "U1",
			Amount:        decimal.RequireFromString("12000"),
			Reason:        "High amount transaction: 12000 exceeds 10000 limit",
			FlaggedAt:     baseTime.Add(time.Duration(i) * time.Second),
		}))
	}

	require.NoError(t, s.DeleteAlertsForTransaction(context.Background(), "TXN900"))

	alerts, err := s.ListSuspicious(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, "TXN901", alerts[0].TransactionID)

	// Idempotent like the transaction delete
	require.NoError(t, s.DeleteAlertsForTransaction(context.Background(), "TXN900"))
}

func TestAtomicRollsBackOnError(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)
	boom := errors.New("boom")

	err := s.Atomic(context.Background(), func(tx store.Store) error {
		txn := &domain.Transaction{
			TransactionID: "TXN950",
			UserID:        "U1",
			Amount:        decimal.RequireFromString("100"),
			Location:      "Mumbai",
			TxnTime:       at,
			TxnType:       domain.TxnTypeDebit,
			Status:        domain.StatusOK,
		}
		if err := tx.InsertTransaction(context.Background(), txn); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	// The insert inside the failed unit must not be visible
	_, getErr := s.GetTransaction(context.Background(), "TXN950")
	var nfErr errs.NotFoundError
	assert.ErrorAs(t, getErr, &nfErr)
}

func TestAtomicCommits(t *testing.T) {
	s := newTestStore(t)
	at := time.Date(2025, 3, 10, 14, 0, 0, 0, time.UTC)

	err := s.Atomic(context.Background(), func(tx store.Store) error {
		txn := &domain.Transaction{
			TransactionID: "TXN960",
			UserID:        "U1",
			Amount:        decimal.RequireFromString("100"),
			Location:      "Mumbai",
			TxnTime:       at,
			TxnType:       domain.TxnTypeDebit,
			Status:        domain.StatusOK,
		}
		if err := tx.InsertTransaction(context.Background(), txn); err != nil {
			return err
		}
		return tx.SetStatus(context.Background(), "TXN960", domain.StatusFlagged)
	})
	require.NoError(t, err)

	stored, err := s.GetTransaction(context.Background(), "TXN960")
	require.NoError(t, err)
	assert.Equal(t, domain.StatusFlagged, stored.Status)
}
