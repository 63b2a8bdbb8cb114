// Package banks holds the declarative bank notification profiles: per-bank
// identification tokens and the ordered template variants with their field
// extraction patterns.
package banks

import (
	"regexp"
	"strings"

	"github.com/rumor-ml/commons.systems/smsledger/internal/domain"
)

// FieldPatterns holds the per-variant extraction regexes. Every pattern
// captures its value in group 1. A nil pattern means the field does not
// appear in this template and extraction degrades to empty/absent.
type FieldPatterns struct {
	Amount       *regexp.Regexp
	Merchant     *regexp.Regexp
	AccountShort *regexp.Regexp // short mask: fragment captured directly, e.g. ***1621
	AccountLong  *regexp.Regexp // long mask: full masked string, e.g. 7730***00123
	Reference    *regexp.Regexp
	Approval     *regexp.Regexp
	Balance      *regexp.Regexp
}

// Variant is one structurally distinct message shape a bank emits. Variant
// identity fixes the transaction type: a purchase or outgoing-transfer
// template is always a debit and an incoming-fund template is always a
// credit, regardless of wording. Two transfer templates from the same bank
// deliberately map to opposite types.
type Variant struct {
	Name string
	// Marker is the substring that selects this variant. Selection within a
	// profile is first-match in declaration order, not by pattern
	// specificity.
	Marker string
	Type   domain.TxnType
	// Transfer variants force the merchant label and the Transfer category
	// because transfer messages name no merchant.
	Transfer bool
	Fields   FieldPatterns
}

// BankProfile identifies one bank and carries its ordered template variants.
type BankProfile struct {
	// Name is the canonical bank name, e.g. "BML".
	Name string
	// Tokens identify the profile when present in the text (case-insensitive).
	Tokens []string
	// Variants are tried in order; the first marker match wins.
	Variants []Variant
}

// Matches reports whether this profile's identification rule matches the
// text: a bank name token or any variant marker phrase is present.
func (p *BankProfile) Matches(text string) bool {
	upper := strings.ToUpper(text)
	for _, token := range p.Tokens {
		if strings.Contains(upper, strings.ToUpper(token)) {
			return true
		}
	}
	for _, v := range p.Variants {
		if strings.Contains(text, v.Marker) {
			return true
		}
	}
	return false
}

// SelectVariant returns the first variant whose marker phrase appears in the
// text. When the profile matched on a bank token alone, the first variant is
// returned as the default so downstream amount extraction decides whether
// the message is usable at all.
func (p *BankProfile) SelectVariant(text string) *Variant {
	for i := range p.Variants {
		if strings.Contains(text, p.Variants[i].Marker) {
			return &p.Variants[i]
		}
	}
	return &p.Variants[0]
}
