package banks

import (
	"regexp"

	"github.com/rumor-ml/commons.systems/smsledger/internal/domain"
)

// MIB template notes. Both shapes use the long masked account form and carry
// the available balance:
//
//	debit  "MIB: Dear Customer, your account 7730***00123 has been debited
//	        with MVR150.00 for SALE at OOREDOO MALE, MV on 21.09.25 18:42.
//	        Ref:FT25264HXKP. Avl Balance MVR3,850.00"
//	credit "MIB: Dear Customer, your account 7730***00123 has been credited
//	        with MVR5,000.00 SALARY TRANSFER on 21-Sep-2025 09:15:00.
//	        Ref:FT25264AAQZ. Avl Balance MVR8,850.00"
//
// Dates arrive either dot-separated with a two-digit year or dash-separated
// with an abbreviated month.

var (
	mibDebitAmount    = regexp.MustCompile(`debited with MVR\s?([0-9,]+(?:\.[0-9]{1,2})?)`)
	mibCreditAmount   = regexp.MustCompile(`credited with MVR\s?([0-9,]+(?:\.[0-9]{1,2})?)`)
	mibDebitMerchant  = regexp.MustCompile(`\sat\s(.+?)\s+on\s+\d`)
	mibCreditMerchant = regexp.MustCompile(`credited with MVR[0-9,.]+\s+(?:for\s+)?(.+?)\s+on\s+\d`)
	mibMaskedAccount  = regexp.MustCompile(`(\d{3,6}\*{2,4}\d{3,6})`)
	mibReference      = regexp.MustCompile(`\bRef[.:]\s*([A-Za-z0-9]+)`)
	mibBalance        = regexp.MustCompile(`Avl Balance[.:]?\s*MVR\s?([0-9,]+(?:\.[0-9]{1,2})?)`)
)

// MIB returns the Maldives Islamic Bank profile.
func MIB() *BankProfile {
	return &BankProfile{
		Name:   "MIB",
		Tokens: []string{"MIB", "Maldives Islamic Bank"},
		Variants: []Variant{
			{
				Name:   "mib-debit",
				Marker: "has been debited",
				Type:   domain.TxnDebit,
				Fields: FieldPatterns{
					Amount:      mibDebitAmount,
					Merchant:    mibDebitMerchant,
					AccountLong: mibMaskedAccount,
					Reference:   mibReference,
					Balance:     mibBalance,
				},
			},
			{
				Name:   "mib-credit",
				Marker: "has been credited",
				Type:   domain.TxnCredit,
				Fields: FieldPatterns{
					Amount:      mibCreditAmount,
					Merchant:    mibCreditMerchant,
					AccountLong: mibMaskedAccount,
					Reference:   mibReference,
					Balance:     mibBalance,
				},
			},
		},
	}
}
