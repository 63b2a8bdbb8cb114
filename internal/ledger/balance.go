// Package ledger computes running balances, totals and reconciliation
// results. Everything here is a pure function: balances are recomputed from
// the full transaction set on every call and never cached, so edits or
// deletes of historical transactions can never leave the ledger stale.
package ledger

import (
	"sort"

	"github.com/rumor-ml/commons.systems/smsledger/internal/domain"
	"github.com/shopspring/decimal"
)

// RunningBalances computes the balance before and after each transaction,
// returned newest-first for presentation.
//
// The computation sorts a copy of the input by date ascending (stable, so
// same-instant transactions keep their input order; a convention for
// date-only legacy messages, not a guarantee) and folds from the starting
// balance, adding credits and subtracting debits. The ascending fold and the
// descending presentation are kept separate; no shared intermediate state is
// mutated.
func RunningBalances(txns []domain.Transaction, startingBalance decimal.Decimal) []domain.BalanceSnapshot {
	ordered := make([]domain.Transaction, len(txns))
	copy(ordered, txns)
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].Date.Before(ordered[j].Date)
	})

	snapshots := make([]domain.BalanceSnapshot, 0, len(ordered))
	balance := startingBalance
	for _, txn := range ordered {
		before := balance
		balance = balance.Add(txn.SignedAmount())
		snapshots = append(snapshots, domain.BalanceSnapshot{
			Transaction:   txn,
			BalanceBefore: before,
			BalanceAfter:  balance,
		})
	}

	// Newest-first for display.
	for i, j := 0, len(snapshots)-1; i < j; i, j = i+1, j-1 {
		snapshots[i], snapshots[j] = snapshots[j], snapshots[i]
	}
	return snapshots
}

// TotalBalance returns the starting balance plus the sum of credits minus
// the sum of debits. The result is independent of transaction order; only
// the per-transaction intermediate balances depend on chronology.
func TotalBalance(startingBalance decimal.Decimal, txns []domain.Transaction) decimal.Decimal {
	total := startingBalance
	for _, txn := range txns {
		total = total.Add(txn.SignedAmount())
	}
	return total
}
