// Package domain defines the core types shared across the smsledger pipeline:
// parsed notifications, accounts, committed transactions and the ledger
// aggregate that ties them together.
package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// BaseCurrency is the ledger's base currency. The parser only handles
// notifications denominated in it; FX is out of scope.
const BaseCurrency = "MVR"

// TxnType is the direction of a transaction. Amounts are always positive;
// direction is encoded only here.
type TxnType string

const (
	TxnDebit  TxnType = "debit"
	TxnCredit TxnType = "credit"
)

// Category represents the spending category enum.
// Use ValidateCategory to ensure validity before use.
type Category string

const (
	CategoryGroceries     Category = "Groceries"
	CategoryDining        Category = "Dining"
	CategoryFuel          Category = "Fuel"
	CategoryTelecom       Category = "Telecom"
	CategoryUtilities     Category = "Utilities"
	CategoryShopping      Category = "Shopping"
	CategoryEntertainment Category = "Entertainment"
	CategoryHealth        Category = "Health"
	CategoryEducation     Category = "Education"
	CategoryTravel        Category = "Travel"
	CategoryTransfer      Category = "Transfer"
	CategoryBankCharges   Category = "Bank Charges"
	CategoryOther         Category = "Other"
)

var (
	validTxnTypes = map[TxnType]struct{}{
		TxnDebit: {}, TxnCredit: {},
	}

	validCategories = map[Category]struct{}{
		CategoryGroceries: {}, CategoryDining: {}, CategoryFuel: {},
		CategoryTelecom: {}, CategoryUtilities: {}, CategoryShopping: {},
		CategoryEntertainment: {}, CategoryHealth: {}, CategoryEducation: {},
		CategoryTravel: {}, CategoryTransfer: {}, CategoryBankCharges: {},
		CategoryOther: {},
	}
)

// ValidateTxnType checks if the transaction type is valid
func ValidateTxnType(t TxnType) bool {
	_, ok := validTxnTypes[t]
	return ok
}

// ValidateCategory checks if category is valid
func ValidateCategory(c Category) bool {
	_, ok := validCategories[c]
	return ok
}

// ParsedTransaction is the ephemeral result of parsing one bank notification.
// It is shown to the user for confirmation and either discarded or promoted
// into a Transaction via NewTransaction; it is never persisted directly.
type ParsedTransaction struct {
	Date     time.Time       `json:"date"`
	Type     TxnType         `json:"type"`
	Amount   decimal.Decimal `json:"amount"` // always positive, 2 fractional digits
	Currency string          `json:"currency"`
	Category Category        `json:"category"`
	Merchant string          `json:"merchant"`
	BankName string          `json:"bankName"`
	// AccountFragment is the trailing digit run of the masked account number
	// (e.g. "1621"). AccountMask retains the raw masked string when the
	// notification used the long form (e.g. "7730***00123"); empty otherwise.
	AccountFragment string `json:"accountNumberFragment"`
	AccountMask     string `json:"accountMask,omitempty"`
	ReferenceNumber string `json:"referenceNumber,omitempty"`
	ApprovalCode    string `json:"approvalCode,omitempty"`
	// Balance is the bank-reported post-transaction balance when the
	// notification carries one. It is informational; the ledger never trusts
	// it as ground truth.
	Balance     *decimal.Decimal `json:"balance,omitempty"`
	Description string           `json:"description"`
	RawText     string           `json:"rawSourceText"`
}

// Account represents one known bank account supplied by the caller.
// There is deliberately no CurrentBalance field: the current balance is
// always derived from StartingBalance plus the account's transaction set,
// never stored.
type Account struct {
	ID              string          `json:"id"`
	BankName        string          `json:"bankName"`
	AccountNumber   string          `json:"accountNumber"`
	Nickname        string          `json:"nickname,omitempty"`
	StartingBalance decimal.Decimal `json:"startingBalance"`
	IsPrimary       bool            `json:"isPrimary"`
}

// NewAccount creates a validated account
func NewAccount(id, bankName, accountNumber, nickname string, startingBalance decimal.Decimal, isPrimary bool) (*Account, error) {
	if id == "" {
		return nil, fmt.Errorf("account ID cannot be empty")
	}
	if bankName == "" {
		return nil, fmt.Errorf("bank name cannot be empty")
	}
	if accountNumber == "" {
		return nil, fmt.Errorf("account number cannot be empty")
	}

	return &Account{
		ID:              id,
		BankName:        bankName,
		AccountNumber:   accountNumber,
		Nickname:        nickname,
		StartingBalance: startingBalance,
		IsPrimary:       isPrimary,
	}, nil
}

// Transaction is a committed ledger entry. Every committed transaction has
// exactly one AccountID; none are unassigned after commit.
type Transaction struct {
	ID              string           `json:"id"`
	AccountID       string           `json:"accountId"`
	Date            time.Time        `json:"date"`
	Type            TxnType          `json:"type"`
	Amount          decimal.Decimal  `json:"amount"`
	Currency        string           `json:"currency"`
	Category        Category         `json:"category"`
	Merchant        string           `json:"merchant,omitempty"`
	BankName        string           `json:"bankName,omitempty"`
	AccountFragment string           `json:"accountNumberFragment,omitempty"`
	ReferenceNumber string           `json:"referenceNumber,omitempty"`
	ApprovalCode    string           `json:"approvalCode,omitempty"`
	Balance         *decimal.Decimal `json:"balance,omitempty"`
	Description     string           `json:"description,omitempty"`
	RawText         string           `json:"rawSourceText,omitempty"`
	// IsAdjustment marks reconciliation adjustment entries so they can be
	// told apart from parsed bank activity.
	IsAdjustment bool `json:"isReconciliationAdjustment,omitempty"`
}

// NewTransaction promotes a confirmed ParsedTransaction into a committed
// Transaction bound to an account. All invariants are checked.
func NewTransaction(id, accountID string, parsed *ParsedTransaction) (*Transaction, error) {
	if id == "" {
		return nil, fmt.Errorf("transaction ID cannot be empty")
	}
	if accountID == "" {
		return nil, fmt.Errorf("account ID cannot be empty")
	}
	if parsed == nil {
		return nil, fmt.Errorf("parsed transaction cannot be nil")
	}
	if !ValidateTxnType(parsed.Type) {
		return nil, fmt.Errorf("invalid transaction type: %s", parsed.Type)
	}
	if !parsed.Amount.IsPositive() {
		return nil, fmt.Errorf("amount must be positive, got %s", parsed.Amount)
	}
	if !ValidateCategory(parsed.Category) {
		return nil, fmt.Errorf("invalid category: %s", parsed.Category)
	}
	if parsed.Date.IsZero() {
		return nil, fmt.Errorf("transaction date cannot be zero")
	}

	return &Transaction{
		ID:              id,
		AccountID:       accountID,
		Date:            parsed.Date,
		Type:            parsed.Type,
		Amount:          parsed.Amount,
		Currency:        parsed.Currency,
		Category:        parsed.Category,
		Merchant:        parsed.Merchant,
		BankName:        parsed.BankName,
		AccountFragment: parsed.AccountFragment,
		ReferenceNumber: parsed.ReferenceNumber,
		ApprovalCode:    parsed.ApprovalCode,
		Balance:         parsed.Balance,
		Description:     parsed.Description,
		RawText:         parsed.RawText,
	}, nil
}

// NewAdjustment creates a reconciliation adjustment transaction.
func NewAdjustment(id, accountID string, txnType TxnType, amount decimal.Decimal, date time.Time) (*Transaction, error) {
	if id == "" {
		return nil, fmt.Errorf("transaction ID cannot be empty")
	}
	if accountID == "" {
		return nil, fmt.Errorf("account ID cannot be empty")
	}
	if !ValidateTxnType(txnType) {
		return nil, fmt.Errorf("invalid transaction type: %s", txnType)
	}
	if !amount.IsPositive() {
		return nil, fmt.Errorf("adjustment amount must be positive, got %s", amount)
	}
	if date.IsZero() {
		return nil, fmt.Errorf("adjustment date cannot be zero")
	}

	return &Transaction{
		ID:           id,
		AccountID:    accountID,
		Date:         date,
		Type:         txnType,
		Amount:       amount,
		Currency:     BaseCurrency,
		Category:     CategoryOther,
		Description:  "Balance adjustment",
		IsAdjustment: true,
	}, nil
}

// SignedAmount returns the amount with its direction applied:
// positive for credit, negative for debit.
func (t *Transaction) SignedAmount() decimal.Decimal {
	if t.Type == TxnDebit {
		return t.Amount.Neg()
	}
	return t.Amount
}

// BalanceSnapshot attaches before/after balances to a transaction. It is a
// computed view with no independent lifecycle: always regenerated from the
// account's starting balance and full transaction set, never stored, so
// edits or deletes of historical transactions cannot leave it stale.
type BalanceSnapshot struct {
	Transaction   Transaction     `json:"transaction"`
	BalanceBefore decimal.Decimal `json:"balanceBefore"`
	BalanceAfter  decimal.Decimal `json:"balanceAfter"`
}

// Ledger is the root aggregate of accounts and committed transactions.
type Ledger struct {
	accounts     []Account
	transactions []Transaction
}

// NewLedger creates an empty ledger with initialized slices
func NewLedger() *Ledger {
	return &Ledger{
		accounts:     []Account{},
		transactions: []Transaction{},
	}
}

func (l *Ledger) hasAccount(id string) bool {
	for _, acc := range l.accounts {
		if acc.ID == id {
			return true
		}
	}
	return false
}

// AddAccount adds a validated account, checking for duplicate IDs
func (l *Ledger) AddAccount(acc Account) error {
	if acc.ID == "" || acc.BankName == "" || acc.AccountNumber == "" {
		return fmt.Errorf("invalid account: ID, BankName, and AccountNumber are required")
	}
	if l.hasAccount(acc.ID) {
		return fmt.Errorf("account %s already exists", acc.ID)
	}
	l.accounts = append(l.accounts, acc)
	return nil
}

// AddTransaction adds a validated transaction, checking for duplicate IDs
// and a valid account reference.
func (l *Ledger) AddTransaction(txn Transaction) error {
	if txn.ID == "" {
		return fmt.Errorf("invalid transaction: ID is required")
	}
	if txn.AccountID == "" {
		return fmt.Errorf("invalid transaction %s: AccountID is required", txn.ID)
	}
	if !l.hasAccount(txn.AccountID) {
		return fmt.Errorf("account %s not found", txn.AccountID)
	}
	for _, existing := range l.transactions {
		if existing.ID == txn.ID {
			return fmt.Errorf("transaction %s already exists", txn.ID)
		}
	}
	l.transactions = append(l.transactions, txn)
	return nil
}

// AccountByID returns the account with the given ID, if present.
func (l *Ledger) AccountByID(id string) (Account, bool) {
	for _, acc := range l.accounts {
		if acc.ID == id {
			return acc, true
		}
	}
	return Account{}, false
}

// GetAccounts returns a defensive copy of the accounts slice
func (l *Ledger) GetAccounts() []Account {
	return append([]Account(nil), l.accounts...)
}

// GetTransactions returns a defensive copy of the transactions slice
func (l *Ledger) GetTransactions() []Transaction {
	return append([]Transaction(nil), l.transactions...)
}

// TransactionsForAccount returns the committed transactions belonging to one
// account, in insertion order.
func (l *Ledger) TransactionsForAccount(accountID string) []Transaction {
	var out []Transaction
	for _, txn := range l.transactions {
		if txn.AccountID == accountID {
			out = append(out, txn)
		}
	}
	return out
}

// MarshalJSON implements custom JSON marshaling for Ledger
func (l *Ledger) MarshalJSON() ([]byte, error) {
	return json.Marshal(&struct {
		Accounts     []Account     `json:"accounts"`
		Transactions []Transaction `json:"transactions"`
	}{
		Accounts:     l.accounts,
		Transactions: l.transactions,
	})
}

// UnmarshalJSON implements custom JSON unmarshaling for Ledger
func (l *Ledger) UnmarshalJSON(data []byte) error {
	aux := &struct {
		Accounts     []Account     `json:"accounts"`
		Transactions []Transaction `json:"transactions"`
	}{}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	l.accounts = aux.Accounts
	l.transactions = aux.Transactions
	return nil
}
