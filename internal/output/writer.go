// Package output serializes the ledger to JSON for export, with optional
// merge into an existing export file.
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rumor-ml/commons.systems/smsledger/internal/domain"
)

// WriteOptions configures how the ledger is written
type WriteOptions struct {
	MergeMode bool   // If true, load existing file and merge
	FilePath  string // Output path (empty = stdout)
}

// WriteLedger serializes a Ledger to JSON with 2-space indentation
func WriteLedger(ledger *domain.Ledger, w io.Writer) error {
	if ledger == nil {
		return fmt.Errorf("ledger cannot be nil")
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(ledger); err != nil {
		return fmt.Errorf("failed to encode ledger as JSON: %w", err)
	}

	return nil
}

// WriteLedgerToFile writes a Ledger to file or stdout based on options
func WriteLedgerToFile(ledger *domain.Ledger, opts WriteOptions) (err error) {
	if ledger == nil {
		return fmt.Errorf("ledger cannot be nil")
	}

	if opts.MergeMode && opts.FilePath != "" {
		existing, err := LoadLedger(opts.FilePath)
		if err != nil {
			if !os.IsNotExist(err) {
				return fmt.Errorf("failed to load existing ledger for merge: %w", err)
			}
			fmt.Fprintf(os.Stderr, "Warning: merge mode requested but %s does not exist, creating new file\n", opts.FilePath)
		} else {
			if err := mergeLedgers(existing, ledger); err != nil {
				return fmt.Errorf("failed to merge ledgers: %w", err)
			}
			ledger = existing
		}
	}

	if opts.FilePath == "" {
		return WriteLedger(ledger, os.Stdout)
	}

	f, err := os.Create(opts.FilePath)
	if err != nil {
		return fmt.Errorf("failed to create output file %s: %w", opts.FilePath, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("failed to close output file %s: %w", opts.FilePath, closeErr)
		}
	}()

	if err = WriteLedger(ledger, f); err != nil {
		return fmt.Errorf("failed to write ledger to %s: %w", opts.FilePath, err)
	}

	return nil
}

// LoadLedger reads an existing ledger export for merge mode
func LoadLedger(filePath string) (*domain.Ledger, error) {
	if filePath == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	f, err := os.Open(filePath)
	if err != nil {
		// Return unwrapped error so caller can check os.IsNotExist
		// to distinguish "file not found" from other loading errors
		return nil, err
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to close %s: %v\n", filePath, closeErr)
		}
	}()

	var ledger domain.Ledger
	decoder := json.NewDecoder(f)
	if err := decoder.Decode(&ledger); err != nil {
		return nil, fmt.Errorf("failed to decode ledger JSON: %w", err)
	}

	return &ledger, nil
}

// mergeLedgers adds all entities from source into target.
// Duplicate accounts are skipped (idempotent); duplicate transactions
// return errors (data quality issue).
func mergeLedgers(target, source *domain.Ledger) error {
	if target == nil || source == nil {
		return fmt.Errorf("ledgers cannot be nil")
	}

	for _, acc := range source.GetAccounts() {
		if err := target.AddAccount(acc); err != nil {
			if strings.Contains(err.Error(), "already exists") {
				continue
			}
			return fmt.Errorf("failed to merge account %s: %w", acc.ID, err)
		}
	}

	for _, txn := range source.GetTransactions() {
		if err := target.AddTransaction(txn); err != nil {
			return fmt.Errorf("failed to merge transaction %s: %w", txn.ID, err)
		}
	}

	return nil
}
