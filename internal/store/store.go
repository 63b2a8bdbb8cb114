// Package store persists accounts and committed transactions in a local
// SQLite database. The parsing and ledger packages never touch it; it is
// the caller-side persistence layer behind the CLI.
package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/rumor-ml/commons.systems/smsledger/internal/domain"
	"github.com/shopspring/decimal"
	_ "modernc.org/sqlite"
)

// Decimal columns are TEXT: SQLite REAL would reintroduce the float drift
// the ledger engine exists to avoid.
const schema = `
CREATE TABLE IF NOT EXISTS accounts (
	id               TEXT PRIMARY KEY,
	bank_name        TEXT NOT NULL,
	account_number   TEXT NOT NULL,
	nickname         TEXT NOT NULL DEFAULT '',
	starting_balance TEXT NOT NULL,
	is_primary       INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS transactions (
	id               TEXT PRIMARY KEY,
	account_id       TEXT NOT NULL REFERENCES accounts(id),
	date             TEXT NOT NULL,
	type             TEXT NOT NULL,
	amount           TEXT NOT NULL,
	currency         TEXT NOT NULL,
	category         TEXT NOT NULL,
	merchant         TEXT NOT NULL DEFAULT '',
	bank_name        TEXT NOT NULL DEFAULT '',
	account_fragment TEXT NOT NULL DEFAULT '',
	reference_number TEXT NOT NULL DEFAULT '',
	approval_code    TEXT NOT NULL DEFAULT '',
	balance          TEXT,
	description      TEXT NOT NULL DEFAULT '',
	raw_text         TEXT NOT NULL DEFAULT '',
	is_adjustment    INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_transactions_account_date
	ON transactions(account_id, date);
`

// Store wraps the SQLite connection.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the database at path and ensures the schema.
func Open(path string) (*Store, error) {
	if path == "" {
		return nil, fmt.Errorf("database path cannot be empty")
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", path, err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertAccount inserts or replaces an account row.
func (s *Store) UpsertAccount(acc domain.Account) error {
	if acc.ID == "" {
		return fmt.Errorf("account ID cannot be empty")
	}

	_, err := s.db.Exec(`
		INSERT INTO accounts (id, bank_name, account_number, nickname, starting_balance, is_primary)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			bank_name = excluded.bank_name,
			account_number = excluded.account_number,
			nickname = excluded.nickname,
			starting_balance = excluded.starting_balance,
			is_primary = excluded.is_primary`,
		acc.ID, acc.BankName, acc.AccountNumber, acc.Nickname,
		acc.StartingBalance.String(), boolToInt(acc.IsPrimary))
	if err != nil {
		return fmt.Errorf("failed to upsert account %s: %w", acc.ID, err)
	}
	return nil
}

// Accounts returns all accounts in insertion order.
func (s *Store) Accounts() ([]domain.Account, error) {
	rows, err := s.db.Query(`
		SELECT id, bank_name, account_number, nickname, starting_balance, is_primary
		FROM accounts ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts: %w", err)
	}
	defer rows.Close()

	var accounts []domain.Account
	for rows.Next() {
		var acc domain.Account
		var balance string
		var primary int
		if err := rows.Scan(&acc.ID, &acc.BankName, &acc.AccountNumber, &acc.Nickname, &balance, &primary); err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		acc.StartingBalance, err = decimal.NewFromString(balance)
		if err != nil {
			return nil, fmt.Errorf("corrupt starting balance %q for account %s: %w", balance, acc.ID, err)
		}
		acc.IsPrimary = primary != 0
		accounts = append(accounts, acc)
	}
	return accounts, rows.Err()
}

// InsertTransaction inserts a committed transaction row.
func (s *Store) InsertTransaction(txn domain.Transaction) error {
	if txn.ID == "" {
		return fmt.Errorf("transaction ID cannot be empty")
	}
	if txn.AccountID == "" {
		return fmt.Errorf("transaction %s: account ID cannot be empty", txn.ID)
	}

	var balance interface{}
	if txn.Balance != nil {
		balance = txn.Balance.String()
	}

	_, err := s.db.Exec(`
		INSERT INTO transactions (
			id, account_id, date, type, amount, currency, category, merchant,
			bank_name, account_fragment, reference_number, approval_code,
			balance, description, raw_text, is_adjustment
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		txn.ID, txn.AccountID, txn.Date.UTC().Format(time.RFC3339), string(txn.Type),
		txn.Amount.String(), txn.Currency, string(txn.Category), txn.Merchant,
		txn.BankName, txn.AccountFragment, txn.ReferenceNumber, txn.ApprovalCode,
		balance, txn.Description, txn.RawText, boolToInt(txn.IsAdjustment))
	if err != nil {
		return fmt.Errorf("failed to insert transaction %s: %w", txn.ID, err)
	}
	return nil
}

// TransactionsForAccount returns an account's transactions ordered by date
// then insertion order, so the ledger engine's stable sort sees a
// deterministic input.
func (s *Store) TransactionsForAccount(accountID string) ([]domain.Transaction, error) {
	return s.queryTransactions(`
		SELECT id, account_id, date, type, amount, currency, category, merchant,
			bank_name, account_fragment, reference_number, approval_code,
			balance, description, raw_text, is_adjustment
		FROM transactions WHERE account_id = ? ORDER BY date, rowid`, accountID)
}

// Transactions returns every committed transaction.
func (s *Store) Transactions() ([]domain.Transaction, error) {
	return s.queryTransactions(`
		SELECT id, account_id, date, type, amount, currency, category, merchant,
			bank_name, account_fragment, reference_number, approval_code,
			balance, description, raw_text, is_adjustment
		FROM transactions ORDER BY date, rowid`)
}

func (s *Store) queryTransactions(query string, args ...interface{}) ([]domain.Transaction, error) {
	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		var txn domain.Transaction
		var date, txnType, amount, category string
		var balance sql.NullString
		var adjustment int
		if err := rows.Scan(&txn.ID, &txn.AccountID, &date, &txnType, &amount,
			&txn.Currency, &category, &txn.Merchant, &txn.BankName,
			&txn.AccountFragment, &txn.ReferenceNumber, &txn.ApprovalCode,
			&balance, &txn.Description, &txn.RawText, &adjustment); err != nil {
			return nil, fmt.Errorf("failed to scan transaction row: %w", err)
		}

		txn.Date, err = time.Parse(time.RFC3339, date)
		if err != nil {
			return nil, fmt.Errorf("corrupt date %q for transaction %s: %w", date, txn.ID, err)
		}
		txn.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("corrupt amount %q for transaction %s: %w", amount, txn.ID, err)
		}
		if balance.Valid {
			b, err := decimal.NewFromString(balance.String)
			if err != nil {
				return nil, fmt.Errorf("corrupt balance %q for transaction %s: %w", balance.String, txn.ID, err)
			}
			txn.Balance = &b
		}
		txn.Type = domain.TxnType(txnType)
		txn.Category = domain.Category(category)
		txn.IsAdjustment = adjustment != 0
		txns = append(txns, txn)
	}
	return txns, rows.Err()
}

// LoadLedger materializes the full ledger aggregate from the database.
func (s *Store) LoadLedger() (*domain.Ledger, error) {
	ledger := domain.NewLedger()

	accounts, err := s.Accounts()
	if err != nil {
		return nil, err
	}
	for _, acc := range accounts {
		if err := ledger.AddAccount(acc); err != nil {
			return nil, fmt.Errorf("failed to load account %s: %w", acc.ID, err)
		}
	}

	txns, err := s.Transactions()
	if err != nil {
		return nil, err
	}
	for _, txn := range txns {
		if err := ledger.AddTransaction(txn); err != nil {
			return nil, fmt.Errorf("failed to load transaction %s: %w", txn.ID, err)
		}
	}

	return ledger, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
