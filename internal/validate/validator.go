// Package validate checks a ledger for constraint violations and
// referential integrity before export or reporting.
package validate

import (
	"fmt"
	"time"

	"github.com/rumor-ml/commons.systems/smsledger/internal/domain"
)

// ValidationResult contains all validation errors and warnings for a ledger
type ValidationResult struct {
	Errors   []ValidationError
	Warnings []ValidationWarning
}

// ValidationError represents a validation error
type ValidationError struct {
	Entity  string // "account", "transaction"
	ID      string
	Field   string
	Value   string
	Message string
}

// ValidationWarning represents a non-critical validation issue
type ValidationWarning struct {
	Entity  string
	ID      string
	Field   string
	Value   string
	Message string
}

// ValidateLedger performs comprehensive validation of a Ledger, checking
// both individual entity constraints and referential integrity.
// Returns ValidationResult with all errors and warnings found.
func ValidateLedger(l *domain.Ledger) *ValidationResult {
	result := &ValidationResult{
		Errors:   []ValidationError{},
		Warnings: []ValidationWarning{},
	}

	accountIDs := make(map[string]bool)
	transactionIDs := make(map[string]bool)
	primaryCount := 0

	for _, acc := range l.GetAccounts() {
		if acc.ID == "" {
			result.Errors = append(result.Errors, ValidationError{
				Entity:  "account",
				ID:      acc.ID,
				Field:   "ID",
				Value:   "",
				Message: "account ID cannot be empty",
			})
		}
		if acc.BankName == "" {
			result.Errors = append(result.Errors, ValidationError{
				Entity:  "account",
				ID:      acc.ID,
				Field:   "BankName",
				Value:   "",
				Message: "account bank name cannot be empty",
			})
		}
		if acc.AccountNumber == "" {
			result.Errors = append(result.Errors, ValidationError{
				Entity:  "account",
				ID:      acc.ID,
				Field:   "AccountNumber",
				Value:   "",
				Message: "account number cannot be empty",
			})
		}
		if acc.IsPrimary {
			primaryCount++
		}

		if acc.ID != "" {
			if accountIDs[acc.ID] {
				result.Errors = append(result.Errors, ValidationError{
					Entity:  "account",
					ID:      acc.ID,
					Field:   "ID",
					Value:   acc.ID,
					Message: "duplicate account ID",
				})
			}
			accountIDs[acc.ID] = true
		}
	}

	if primaryCount > 1 {
		result.Warnings = append(result.Warnings, ValidationWarning{
			Entity:  "account",
			Field:   "IsPrimary",
			Value:   fmt.Sprintf("%d", primaryCount),
			Message: "more than one account is flagged primary; the matcher will use the first",
		})
	}

	for _, txn := range l.GetTransactions() {
		if txn.ID == "" {
			result.Errors = append(result.Errors, ValidationError{
				Entity:  "transaction",
				ID:      txn.ID,
				Field:   "ID",
				Value:   "",
				Message: "transaction ID cannot be empty",
			})
		}

		// Committed transactions are never unassigned.
		if txn.AccountID == "" {
			result.Errors = append(result.Errors, ValidationError{
				Entity:  "transaction",
				ID:      txn.ID,
				Field:   "AccountID",
				Value:   "",
				Message: "transaction accountId cannot be empty",
			})
		} else if !accountIDs[txn.AccountID] {
			result.Errors = append(result.Errors, ValidationError{
				Entity:  "transaction",
				ID:      txn.ID,
				Field:   "AccountID",
				Value:   txn.AccountID,
				Message: fmt.Sprintf("references non-existent account: %s", txn.AccountID),
			})
		}

		if !domain.ValidateTxnType(txn.Type) {
			result.Errors = append(result.Errors, ValidationError{
				Entity:  "transaction",
				ID:      txn.ID,
				Field:   "Type",
				Value:   string(txn.Type),
				Message: fmt.Sprintf("invalid transaction type: %s (must be debit or credit)", txn.Type),
			})
		}

		if !domain.ValidateCategory(txn.Category) {
			result.Errors = append(result.Errors, ValidationError{
				Entity:  "transaction",
				ID:      txn.ID,
				Field:   "Category",
				Value:   string(txn.Category),
				Message: fmt.Sprintf("invalid category: %s", txn.Category),
			})
		}

		// Direction lives in Type alone; amounts are strictly positive.
		if !txn.Amount.IsPositive() {
			result.Errors = append(result.Errors, ValidationError{
				Entity:  "transaction",
				ID:      txn.ID,
				Field:   "Amount",
				Value:   txn.Amount.String(),
				Message: "amount must be strictly positive",
			})
		}

		if txn.Date.IsZero() {
			result.Errors = append(result.Errors, ValidationError{
				Entity:  "transaction",
				ID:      txn.ID,
				Field:   "Date",
				Value:   "",
				Message: "transaction date cannot be zero",
			})
		} else if txn.Date.After(time.Now().AddDate(0, 0, 1)) {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Entity:  "transaction",
				ID:      txn.ID,
				Field:   "Date",
				Value:   txn.Date.Format(time.RFC3339),
				Message: "transaction is dated in the future",
			})
		}

		if txn.Currency != "" && txn.Currency != domain.BaseCurrency {
			result.Warnings = append(result.Warnings, ValidationWarning{
				Entity:  "transaction",
				ID:      txn.ID,
				Field:   "Currency",
				Value:   txn.Currency,
				Message: fmt.Sprintf("currency differs from ledger base currency %s", domain.BaseCurrency),
			})
		}

		if txn.ID != "" {
			if transactionIDs[txn.ID] {
				result.Errors = append(result.Errors, ValidationError{
					Entity:  "transaction",
					ID:      txn.ID,
					Field:   "ID",
					Value:   txn.ID,
					Message: "duplicate transaction ID",
				})
			}
			transactionIDs[txn.ID] = true
		}
	}

	return result
}
