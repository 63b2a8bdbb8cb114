// Package match resolves a parsed notification to one of the caller's known
// accounts. It is a pure function over already-resolved data; no I/O.
package match

import (
	"strings"

	"github.com/rumor-ml/commons.systems/smsledger/internal/domain"
)

// Match maps a parsed transaction to an account ID. Resolution order:
//
//  1. exact or suffix match between the parsed account fragment and an
//     account's full account number
//  2. case-insensitive substring match between the parsed bank name and an
//     account's bank name, checked in both directions
//  3. fallback to the primary-flagged account, or the first account
//
// Returns false only when the supplied account list is empty.
func Match(parsed *domain.ParsedTransaction, accounts []domain.Account) (string, bool) {
	if len(accounts) == 0 {
		return "", false
	}

	if parsed != nil && parsed.AccountFragment != "" {
		for _, acc := range accounts {
			if acc.AccountNumber == parsed.AccountFragment ||
				strings.HasSuffix(acc.AccountNumber, parsed.AccountFragment) {
				return acc.ID, true
			}
		}
	}

	if parsed != nil && parsed.BankName != "" {
		parsedBank := strings.ToLower(parsed.BankName)
		for _, acc := range accounts {
			accBank := strings.ToLower(acc.BankName)
			if accBank == "" {
				continue
			}
			if strings.Contains(accBank, parsedBank) || strings.Contains(parsedBank, accBank) {
				return acc.ID, true
			}
		}
	}

	for _, acc := range accounts {
		if acc.IsPrimary {
			return acc.ID, true
		}
	}
	return accounts[0].ID, true
}
