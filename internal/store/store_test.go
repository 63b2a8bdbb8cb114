package store

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/rumor-ml/commons.systems/smsledger/internal/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testAccount() domain.Account {
	return domain.Account{
		ID:              "acc-1",
		BankName:        "BML",
		AccountNumber:   "7730000001621",
		Nickname:        "Main",
		StartingBalance: decimal.NewFromFloat(5000.25),
		IsPrimary:       true,
	}
}

func testTransaction(id string, date time.Time) domain.Transaction {
	balance := decimal.NewFromFloat(3850.00)
	return domain.Transaction{
		ID:              id,
		AccountID:       "acc-1",
		Date:            date,
		Type:            domain.TxnDebit,
		Amount:          decimal.NewFromFloat(265.00),
		Currency:        domain.BaseCurrency,
		Category:        domain.CategoryGroceries,
		Merchant:        "REDWAVE MEGAMALL",
		BankName:        "BML",
		AccountFragment: "1621",
		ReferenceNumber: "123116608083",
		ApprovalCode:    "008374",
		Balance:         &balance,
		Description:     "REDWAVE MEGAMALL (Ref: 123116608083)",
		RawText:         "Transaction from 1621 ...",
	}
}

func TestOpenRejectsEmptyPath(t *testing.T) {
	_, err := Open("")
	assert.Error(t, err)
}

func TestUpsertAccountRoundTrip(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.UpsertAccount(testAccount()))

	accounts, err := s.Accounts()
	require.NoError(t, err)
	require.Len(t, accounts, 1)

	got := accounts[0]
	assert.Equal(t, "acc-1", got.ID)
	assert.Equal(t, "BML", got.BankName)
	assert.True(t, got.IsPrimary)
	// Decimal text storage keeps the exact value, no float drift.
	assert.True(t, got.StartingBalance.Equal(decimal.NewFromFloat(5000.25)),
		"starting balance = %s", got.StartingBalance)
}

func TestUpsertAccountUpdates(t *testing.T) {
	s := openTestStore(t)

	require.NoError(t, s.UpsertAccount(testAccount()))

	updated := testAccount()
	updated.Nickname = "Salary"
	updated.StartingBalance = decimal.NewFromInt(9000)
	require.NoError(t, s.UpsertAccount(updated))

	accounts, err := s.Accounts()
	require.NoError(t, err)
	require.Len(t, accounts, 1)
	assert.Equal(t, "Salary", accounts[0].Nickname)
	assert.True(t, accounts[0].StartingBalance.Equal(decimal.NewFromInt(9000)))
}

func TestInsertTransactionRoundTrip(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.UpsertAccount(testAccount()))

	date := time.Date(2025, 12, 31, 14, 5, 0, 0, time.UTC)
	require.NoError(t, s.InsertTransaction(testTransaction("txn-1", date)))

	txns, err := s.TransactionsForAccount("acc-1")
	require.NoError(t, err)
	require.Len(t, txns, 1)

	got := txns[0]
	assert.Equal(t, "txn-1", got.ID)
	assert.Equal(t, domain.TxnDebit, got.Type)
	assert.Equal(t, domain.CategoryGroceries, got.Category)
	assert.True(t, got.Date.Equal(date))
	assert.True(t, got.Amount.Equal(decimal.NewFromFloat(265.00)))
	require.NotNil(t, got.Balance)
	assert.True(t, got.Balance.Equal(decimal.NewFromFloat(3850.00)))
	assert.Equal(t, "123116608083", got.ReferenceNumber)
	assert.False(t, got.IsAdjustment)
}

func TestInsertDuplicateTransactionFails(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.UpsertAccount(testAccount()))

	date := time.Date(2025, 12, 31, 14, 5, 0, 0, time.UTC)
	require.NoError(t, s.InsertTransaction(testTransaction("txn-1", date)))
	assert.Error(t, s.InsertTransaction(testTransaction("txn-1", date)))
}

func TestTransactionsOrderedByDate(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.UpsertAccount(testAccount()))

	base := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	// Insert out of chronological order.
	require.NoError(t, s.InsertTransaction(testTransaction("txn-later", base.AddDate(0, 0, 2))))
	require.NoError(t, s.InsertTransaction(testTransaction("txn-earlier", base)))

	txns, err := s.TransactionsForAccount("acc-1")
	require.NoError(t, err)
	require.Len(t, txns, 2)
	assert.Equal(t, "txn-earlier", txns[0].ID)
	assert.Equal(t, "txn-later", txns[1].ID)
}

func TestNullableBalance(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.UpsertAccount(testAccount()))

	txn := testTransaction("txn-1", time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
	txn.Balance = nil
	require.NoError(t, s.InsertTransaction(txn))

	txns, err := s.TransactionsForAccount("acc-1")
	require.NoError(t, err)
	require.Len(t, txns, 1)
	assert.Nil(t, txns[0].Balance)
}

func TestLoadLedger(t *testing.T) {
	s := openTestStore(t)
	require.NoError(t, s.UpsertAccount(testAccount()))

	date := time.Date(2025, 12, 31, 14, 5, 0, 0, time.UTC)
	require.NoError(t, s.InsertTransaction(testTransaction("txn-1", date)))

	adjustment := testTransaction("adj-1", date.AddDate(0, 0, 1))
	adjustment.Type = domain.TxnCredit
	adjustment.Category = domain.CategoryOther
	adjustment.IsAdjustment = true
	require.NoError(t, s.InsertTransaction(adjustment))

	ledger, err := s.LoadLedger()
	require.NoError(t, err)
	assert.Len(t, ledger.GetAccounts(), 1)
	require.Len(t, ledger.GetTransactions(), 2)

	byID := map[string]domain.Transaction{}
	for _, txn := range ledger.GetTransactions() {
		byID[txn.ID] = txn
	}
	assert.False(t, byID["txn-1"].IsAdjustment)
	assert.True(t, byID["adj-1"].IsAdjustment)
}
