package banks

import (
	"regexp"

	"github.com/rumor-ml/commons.systems/smsledger/internal/domain"
)

// BML template notes. The bank has emitted at least five message shapes over
// the years:
//
//	legacy     "Transaction from 1621 on 31/12/25 at 14:05 for MVR265.00 at
//	            REDWAVE MEGAMALL, MV. Reference No:123116608083 Approval Code:008374"
//	purchase   "BML: Your purchase of MVR1,250.00 at AGORA CENTRAL, MV on
//	            02/01/2026 21:15:33 from card ***1621 was approved. Ref No:748812
//	            Approval Code:112398"
//	e-commerce "BML: E-Commerce transaction for MVR499.00 at NETFLIX.COM on
//	            05/01/2026 09:12:45 from card ***1621 was processed. Ref No:551200"
//	transfer   "BML: Transfer to *7788 of MVR500.00 from ***1621 on 03/01/2026
//	            10:00:00 was processed. Ref No:990112"
//	transfer   "BML: Transfer from *9911 of MVR2,000.00 to ***1621 on 04/01/2026
//	            11:30:00 was processed. Ref No:990113"
//
// The two transfer shapes read almost identically but carry opposite
// directions; variant order below also keeps "Transaction from" ahead of the
// transfer markers so the legacy template never falls into them.

var (
	bmlLegacyAmount   = regexp.MustCompile(`for MVR\s?([0-9,]+(?:\.[0-9]{1,2})?)`)
	bmlLegacyMerchant = regexp.MustCompile(`for MVR[0-9,.]+\s+at\s+([^.\n]+)`)
	bmlLegacyAccount  = regexp.MustCompile(`Transaction from (\d{4,6})`)

	bmlPurchaseAmount   = regexp.MustCompile(`purchase of MVR\s?([0-9,]+(?:\.[0-9]{1,2})?)`)
	bmlEcommerceAmount  = regexp.MustCompile(`for MVR\s?([0-9,]+(?:\.[0-9]{1,2})?)`)
	bmlTransferAmount   = regexp.MustCompile(`of MVR\s?([0-9,]+(?:\.[0-9]{1,2})?)`)
	bmlCardMerchant     = regexp.MustCompile(`\sat\s(.+?)\s+on\s+\d`)
	bmlMaskedAccount    = regexp.MustCompile(`\*{2,}(\d{4,6})`)
	bmlReference        = regexp.MustCompile(`Ref(?:erence)? No[.:]?\s*([A-Za-z0-9]+)`)
	bmlApproval         = regexp.MustCompile(`Approval Code[.:]?\s*([A-Za-z0-9]+)`)
	bmlAvailableBalance = regexp.MustCompile(`(?:Avl|Available) Bal(?:ance)?[.:]?\s*MVR\s?([0-9,]+(?:\.[0-9]{1,2})?)`)
)

// BML returns the Bank of Maldives profile.
func BML() *BankProfile {
	return &BankProfile{
		Name:   "BML",
		Tokens: []string{"BML", "Bank of Maldives"},
		Variants: []Variant{
			{
				Name:   "bml-legacy",
				Marker: "Transaction from",
				Type:   domain.TxnDebit,
				Fields: FieldPatterns{
					Amount:       bmlLegacyAmount,
					Merchant:     bmlLegacyMerchant,
					AccountShort: bmlLegacyAccount,
					Reference:    bmlReference,
					Approval:     bmlApproval,
					Balance:      bmlAvailableBalance,
				},
			},
			{
				Name:   "bml-purchase",
				Marker: "Your purchase of",
				Type:   domain.TxnDebit,
				Fields: FieldPatterns{
					Amount:       bmlPurchaseAmount,
					Merchant:     bmlCardMerchant,
					AccountShort: bmlMaskedAccount,
					Reference:    bmlReference,
					Approval:     bmlApproval,
				},
			},
			{
				Name:   "bml-ecommerce",
				Marker: "E-Commerce transaction",
				Type:   domain.TxnDebit,
				Fields: FieldPatterns{
					Amount:       bmlEcommerceAmount,
					Merchant:     bmlCardMerchant,
					AccountShort: bmlMaskedAccount,
					Reference:    bmlReference,
				},
			},
			{
				Name:     "bml-transfer-out",
				Marker:   "Transfer to",
				Type:     domain.TxnDebit,
				Transfer: true,
				Fields: FieldPatterns{
					Amount:       bmlTransferAmount,
					AccountShort: bmlMaskedAccount,
					Reference:    bmlReference,
				},
			},
			{
				Name:     "bml-transfer-in",
				Marker:   "Transfer from",
				Type:     domain.TxnCredit,
				Transfer: true,
				Fields: FieldPatterns{
					Amount:       bmlTransferAmount,
					AccountShort: bmlMaskedAccount,
					Reference:    bmlReference,
				},
			},
		},
	}
}
