// Package parse converts a single raw bank notification into a
// domain.ParsedTransaction using the bank format registry, the merchant
// categorizer and the text normalizers.
package parse

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/rumor-ml/commons.systems/smsledger/internal/banks"
	"github.com/rumor-ml/commons.systems/smsledger/internal/domain"
	"github.com/rumor-ml/commons.systems/smsledger/internal/normalize"
	"github.com/rumor-ml/commons.systems/smsledger/internal/rules"
	"github.com/shopspring/decimal"
)

// transferMerchant is the fixed merchant label used for transfer variants,
// which name no merchant of their own.
const transferMerchant = "Fund Transfer"

// Parser parses bank notifications. It is stateless apart from its
// configuration and safe for concurrent use.
type Parser struct {
	registry *banks.Registry
	rules    *rules.Engine
	loc      *time.Location
	now      func() time.Time // injectable for deterministic tests
}

// New creates a parser over the given bank registry and categorizer engine.
// Dates are interpreted in the local timezone; use SetLocation to override.
func New(registry *banks.Registry, engine *rules.Engine) *Parser {
	return &Parser{
		registry: registry,
		rules:    engine,
		loc:      time.Local,
		now:      time.Now,
	}
}

// SetLocation sets the timezone used for parsed dates and the
// missing-date fallback.
func (p *Parser) SetLocation(loc *time.Location) {
	if loc != nil {
		p.loc = loc
	}
}

// Parse converts one notification into a ParsedTransaction.
//
// Bank identification and amount extraction are fatal: they return
// ErrInvalidInput, ErrUnrecognizedFormat or ErrAmountExtraction. Every other
// field degrades gracefully: a missing date falls back to the current
// instant (deliberate, not a silent failure) and missing reference, approval
// or balance stay absent.
func (p *Parser) Parse(text string) (*domain.ParsedTransaction, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrInvalidInput
	}

	bank, variant, ok := p.registry.Identify(text)
	if !ok {
		return nil, ErrUnrecognizedFormat
	}

	amount, err := extractAmount(variant.Fields.Amount, text)
	if err != nil {
		return nil, fmt.Errorf("%s (%s): %w", bank.Name, variant.Name, ErrAmountExtraction)
	}

	// Type is fixed by variant identity, never by keyword sniffing: the two
	// BML transfer variants map to opposite directions by construction.
	txnType := variant.Type

	merchant := ""
	if variant.Transfer {
		merchant = transferMerchant
	} else if variant.Fields.Merchant != nil {
		if m := variant.Fields.Merchant.FindStringSubmatch(text); m != nil {
			merchant = normalize.CleanMerchant(m[1])
		}
	}

	date, found := extractDate(text, p.loc)
	if !found {
		date = p.now().In(p.loc)
	}

	mask, fragment := extractAccount(&variant.Fields, text)
	reference := extractField(variant.Fields.Reference, text)
	approval := extractField(variant.Fields.Approval, text)

	var balance *decimal.Decimal
	if variant.Fields.Balance != nil {
		if m := variant.Fields.Balance.FindStringSubmatch(text); m != nil {
			if b, err := parseAmountString(m[1]); err == nil {
				balance = &b
			}
		}
	}

	category := domain.CategoryOther
	if variant.Transfer {
		category = domain.CategoryTransfer
	} else if p.rules != nil {
		category = p.rules.Categorize(merchant)
	}

	return &domain.ParsedTransaction{
		Date:            date,
		Type:            txnType,
		Amount:          amount,
		Currency:        domain.BaseCurrency,
		Category:        category,
		Merchant:        merchant,
		BankName:        bank.Name,
		AccountFragment: fragment,
		AccountMask:     mask,
		ReferenceNumber: reference,
		ApprovalCode:    approval,
		Balance:         balance,
		Description:     synthesizeDescription(merchant, reference),
		RawText:         text,
	}, nil
}

// extractAmount applies the variant's amount pattern, strips thousands
// separators and parses to a 2-digit decimal.
func extractAmount(re *regexp.Regexp, text string) (decimal.Decimal, error) {
	if re == nil {
		return decimal.Zero, fmt.Errorf("variant has no amount pattern")
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return decimal.Zero, fmt.Errorf("amount pattern did not match")
	}
	return parseAmountString(m[1])
}

func parseAmountString(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.ReplaceAll(raw, ",", ""))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", raw, err)
	}
	return d.Round(2), nil
}

// extractAccount handles the two masked-account forms. The short form
// captures the fragment directly; the long form retains the raw masked
// string and derives the fragment as its trailing digit run.
func extractAccount(fields *banks.FieldPatterns, text string) (mask, fragment string) {
	if fields.AccountLong != nil {
		if m := fields.AccountLong.FindStringSubmatch(text); m != nil {
			return m[1], normalize.FragmentFromMask(m[1])
		}
	}
	if fields.AccountShort != nil {
		if m := fields.AccountShort.FindStringSubmatch(text); m != nil {
			return "", m[1]
		}
	}
	return "", ""
}

func extractField(re *regexp.Regexp, text string) string {
	if re == nil {
		return ""
	}
	m := re.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	return m[1]
}

// synthesizeDescription builds the display description from the merchant
// (or "Unknown") plus the reference number when present.
func synthesizeDescription(merchant, reference string) string {
	name := merchant
	if name == "" {
		name = "Unknown"
	}
	if reference == "" {
		return name
	}
	return fmt.Sprintf("%s (Ref: %s)", name, reference)
}
