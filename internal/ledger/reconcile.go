package ledger

import (
	"github.com/rumor-ml/commons.systems/smsledger/internal/domain"
	"github.com/shopspring/decimal"
)

// adjustmentThreshold is the smallest difference that warrants an
// adjustment transaction: one minor currency unit.
var adjustmentThreshold = decimal.New(1, -2) // 0.01

// ReconcileResult describes how a computed balance compares to the
// bank-reported actual balance.
type ReconcileResult struct {
	Difference       decimal.Decimal `json:"difference"`
	NeedsAdjustment  bool            `json:"needsAdjustment"`
	AdjustmentType   domain.TxnType  `json:"adjustmentType"`
	AdjustmentAmount decimal.Decimal `json:"adjustmentAmount"`
}

// Reconcile compares a computed balance to the bank-reported actual balance
// and derives the adjustment that would align them:
//
//	difference      = actual - calculated
//	needsAdjustment = |difference| >= 0.01
//	adjustmentType  = credit if difference > 0, debit otherwise
//
// It never fails; a zero difference with needsAdjustment=false is a normal,
// common result.
func Reconcile(calculated, actual decimal.Decimal) ReconcileResult {
	difference := actual.Sub(calculated)

	adjustmentType := domain.TxnDebit
	if difference.IsPositive() {
		adjustmentType = domain.TxnCredit
	}

	return ReconcileResult{
		Difference:       difference,
		NeedsAdjustment:  difference.Abs().GreaterThanOrEqual(adjustmentThreshold),
		AdjustmentType:   adjustmentType,
		AdjustmentAmount: difference.Abs(),
	}
}
