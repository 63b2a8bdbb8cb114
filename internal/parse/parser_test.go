package parse

import (
	"errors"
	"testing"
	"time"

	"github.com/rumor-ml/commons.systems/smsledger/internal/banks"
	"github.com/rumor-ml/commons.systems/smsledger/internal/domain"
	"github.com/rumor-ml/commons.systems/smsledger/internal/rules"
)

const (
	bmlLegacyMsg    = "Transaction from 1621 on 31/12/25 at 14:05 for MVR265.00 at REDWAVE MEGAMALL, MV. Reference No:123116608083 Approval Code:008374"
	bmlPurchaseMsg  = "BML: Your purchase of MVR1,250.00 at AGORA CENTRAL, MV on 02/01/2026 21:15:33 from card ***1621 was approved. Ref No:748812 Approval Code:112398"
	bmlEcommerceMsg = "BML: E-Commerce transaction for MVR499.00 at NETFLIX.COM on 05/01/2026 09:12:45 from card ***1621 was processed. Ref No:551200"
	bmlTransferOut  = "BML: Transfer to *7788 of MVR500.00 from ***1621 on 03/01/2026 10:00:00 was processed. Ref No:990112"
	bmlTransferIn   = "BML: Transfer from *9911 of MVR2,000.00 to ***1621 on 04/01/2026 11:30:00 was processed. Ref No:990113"
	mibDebitMsg     = "MIB: Dear Customer, your account 7730***00123 has been debited with MVR150.00 for SALE at OOREDOO MALE, MV on 21.09.25 18:42. Ref:FT25264HXKP. Avl Balance MVR3,850.00"
	mibCreditMsg    = "MIB: Dear Customer, your account 7730***00123 has been credited with MVR5,000.00 SALARY TRANSFER on 21-Sep-2025 09:15:00. Ref:FT25264AAQZ. Avl Balance MVR8,850.00"
)

func newTestParser(t *testing.T) *Parser {
	t.Helper()
	engine, err := rules.LoadEmbedded()
	if err != nil {
		t.Fatal(err)
	}
	p := New(banks.New(), engine)
	p.SetLocation(time.UTC)
	return p
}

func TestParseBMLLegacy(t *testing.T) {
	p := newTestParser(t)

	parsed, err := p.Parse(bmlLegacyMsg)
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}

	if parsed.BankName != "BML" {
		t.Errorf("BankName = %q, want BML", parsed.BankName)
	}
	if parsed.Type != domain.TxnDebit {
		t.Errorf("Type = %q, want debit", parsed.Type)
	}
	if parsed.Amount.StringFixed(2) != "265.00" {
		t.Errorf("Amount = %s, want 265.00", parsed.Amount.StringFixed(2))
	}
	if parsed.Currency != domain.BaseCurrency {
		t.Errorf("Currency = %q, want %q", parsed.Currency, domain.BaseCurrency)
	}
	if parsed.AccountFragment != "1621" {
		t.Errorf("AccountFragment = %q, want 1621", parsed.AccountFragment)
	}
	if parsed.Merchant != "REDWAVE MEGAMALL" {
		t.Errorf("Merchant = %q, want REDWAVE MEGAMALL", parsed.Merchant)
	}
	if parsed.Category != domain.CategoryGroceries {
		t.Errorf("Category = %q, want Groceries", parsed.Category)
	}
	if parsed.ReferenceNumber != "123116608083" {
		t.Errorf("ReferenceNumber = %q, want 123116608083", parsed.ReferenceNumber)
	}
	if parsed.ApprovalCode != "008374" {
		t.Errorf("ApprovalCode = %q, want 008374", parsed.ApprovalCode)
	}

	want := time.Date(2025, 12, 31, 14, 5, 0, 0, time.UTC)
	if !parsed.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", parsed.Date, want)
	}
	if parsed.Description != "REDWAVE MEGAMALL (Ref: 123116608083)" {
		t.Errorf("Description = %q", parsed.Description)
	}
	if parsed.RawText != bmlLegacyMsg {
		t.Error("RawText does not preserve the original message")
	}
}

func TestParseFixtures(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name     string
		text     string
		bank     string
		txnType  domain.TxnType
		amount   string
		fragment string
		merchant string
		category domain.Category
	}{
		{
			name: "bml purchase", text: bmlPurchaseMsg,
			bank: "BML", txnType: domain.TxnDebit, amount: "1250.00",
			fragment: "1621", merchant: "AGORA CENTRAL", category: domain.CategoryGroceries,
		},
		{
			name: "bml ecommerce", text: bmlEcommerceMsg,
			bank: "BML", txnType: domain.TxnDebit, amount: "499.00",
			fragment: "1621", merchant: "NETFLIX.COM", category: domain.CategoryEntertainment,
		},
		{
			name: "bml transfer out", text: bmlTransferOut,
			bank: "BML", txnType: domain.TxnDebit, amount: "500.00",
			fragment: "1621", merchant: "Fund Transfer", category: domain.CategoryTransfer,
		},
		{
			name: "bml transfer in", text: bmlTransferIn,
			bank: "BML", txnType: domain.TxnCredit, amount: "2000.00",
			fragment: "1621", merchant: "Fund Transfer", category: domain.CategoryTransfer,
		},
		{
			name: "mib debit", text: mibDebitMsg,
			bank: "MIB", txnType: domain.TxnDebit, amount: "150.00",
			fragment: "00123", merchant: "OOREDOO MALE", category: domain.CategoryTelecom,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := p.Parse(tt.text)
			if err != nil {
				t.Fatalf("Parse failed: %v", err)
			}
			if parsed.BankName != tt.bank {
				t.Errorf("BankName = %q, want %q", parsed.BankName, tt.bank)
			}
			if parsed.Type != tt.txnType {
				t.Errorf("Type = %q, want %q", parsed.Type, tt.txnType)
			}
			if parsed.Amount.StringFixed(2) != tt.amount {
				t.Errorf("Amount = %s, want %s", parsed.Amount.StringFixed(2), tt.amount)
			}
			if parsed.AccountFragment != tt.fragment {
				t.Errorf("AccountFragment = %q, want %q", parsed.AccountFragment, tt.fragment)
			}
			if parsed.Merchant != tt.merchant {
				t.Errorf("Merchant = %q, want %q", parsed.Merchant, tt.merchant)
			}
			if parsed.Category != tt.category {
				t.Errorf("Category = %q, want %q", parsed.Category, tt.category)
			}
		})
	}
}

// The two transfer templates read almost identically but must map to
// opposite directions by variant identity, not keyword sniffing.
func TestParseTransferAsymmetry(t *testing.T) {
	p := newTestParser(t)

	out, err := p.Parse(bmlTransferOut)
	if err != nil {
		t.Fatal(err)
	}
	in, err := p.Parse(bmlTransferIn)
	if err != nil {
		t.Fatal(err)
	}

	if out.Type != domain.TxnDebit {
		t.Errorf("outgoing transfer Type = %q, want debit", out.Type)
	}
	if in.Type != domain.TxnCredit {
		t.Errorf("incoming transfer Type = %q, want credit", in.Type)
	}
	if !out.Amount.IsPositive() || !in.Amount.IsPositive() {
		t.Error("transfer amounts must stay positive in both directions")
	}
}

func TestParseMIBLongMask(t *testing.T) {
	p := newTestParser(t)

	parsed, err := p.Parse(mibDebitMsg)
	if err != nil {
		t.Fatal(err)
	}
	if parsed.AccountMask != "7730***00123" {
		t.Errorf("AccountMask = %q, want 7730***00123", parsed.AccountMask)
	}
	if parsed.Balance == nil {
		t.Fatal("expected bank-reported balance")
	}
	if parsed.Balance.StringFixed(2) != "3850.00" {
		t.Errorf("Balance = %s, want 3850.00", parsed.Balance.StringFixed(2))
	}
	if parsed.ReferenceNumber != "FT25264HXKP" {
		t.Errorf("ReferenceNumber = %q, want FT25264HXKP", parsed.ReferenceNumber)
	}
}

func TestParseMIBCreditDate(t *testing.T) {
	p := newTestParser(t)

	parsed, err := p.Parse(mibCreditMsg)
	if err != nil {
		t.Fatal(err)
	}
	want := time.Date(2025, 9, 21, 9, 15, 0, 0, time.UTC)
	if !parsed.Date.Equal(want) {
		t.Errorf("Date = %v, want %v", parsed.Date, want)
	}
	if parsed.Amount.StringFixed(2) != "5000.00" {
		t.Errorf("Amount = %s, want 5000.00", parsed.Amount.StringFixed(2))
	}
}

func TestParseErrors(t *testing.T) {
	p := newTestParser(t)

	tests := []struct {
		name    string
		text    string
		wantErr error
	}{
		{"empty", "", ErrInvalidInput},
		{"whitespace only", "   \n\t ", ErrInvalidInput},
		{"not a bank message", "Lunch tomorrow?", ErrUnrecognizedFormat},
		{"otp from bank", "BML: Your OTP is 482913. Do not share this code with anyone.", ErrAmountExtraction},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.Parse(tt.text)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Parse error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

// A missing date deliberately falls back to the current instant rather than
// failing the whole parse.
func TestParseDateFallback(t *testing.T) {
	p := newTestParser(t)
	fixed := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	p.now = func() time.Time { return fixed }

	parsed, err := p.Parse("BML: Your purchase of MVR75.00 at SEAGULL CAFE from card ***1621 was approved. Ref No:102030")
	if err != nil {
		t.Fatalf("Parse failed: %v", err)
	}
	if !parsed.Date.Equal(fixed) {
		t.Errorf("Date = %v, want fallback %v", parsed.Date, fixed)
	}
}

// Parsing is deterministic for fixed-date messages: the same input always
// yields the same result.
func TestParseIdempotent(t *testing.T) {
	p := newTestParser(t)

	first, err := p.Parse(bmlLegacyMsg)
	if err != nil {
		t.Fatal(err)
	}
	second, err := p.Parse(bmlLegacyMsg)
	if err != nil {
		t.Fatal(err)
	}

	if !first.Date.Equal(second.Date) ||
		!first.Amount.Equal(second.Amount) ||
		first.Merchant != second.Merchant ||
		first.ReferenceNumber != second.ReferenceNumber {
		t.Error("repeated parses of the same message diverged")
	}
}

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		want  time.Time
		found bool
	}{
		{
			"long form with seconds",
			"on 02/01/2026 21:15:33 from card",
			time.Date(2026, 1, 2, 21, 15, 33, 0, time.UTC), true,
		},
		{
			"abbreviated month",
			"on 21-Sep-2025 09:15:00.",
			time.Date(2025, 9, 21, 9, 15, 0, 0, time.UTC), true,
		},
		{
			"short slash form",
			"on 31/12/25 at 14:05 for",
			time.Date(2025, 12, 31, 14, 5, 0, 0, time.UTC), true,
		},
		{
			"dotted short form",
			"on 21.09.25 18:42.",
			time.Date(2025, 9, 21, 18, 42, 0, 0, time.UTC), true,
		},
		{
			"date without time is midnight",
			"on 31/12/25 for MVR100",
			time.Date(2025, 12, 31, 0, 0, 0, 0, time.UTC), true,
		},
		{"no date", "no date here", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, found := extractDate(tt.text, time.UTC)
			if found != tt.found {
				t.Fatalf("found = %v, want %v", found, tt.found)
			}
			if found && !got.Equal(tt.want) {
				t.Errorf("extractDate = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSynthesizeDescription(t *testing.T) {
	tests := []struct {
		merchant, reference, want string
	}{
		{"REDWAVE MEGAMALL", "123116608083", "REDWAVE MEGAMALL (Ref: 123116608083)"},
		{"REDWAVE MEGAMALL", "", "REDWAVE MEGAMALL"},
		{"", "551200", "Unknown (Ref: 551200)"},
		{"", "", "Unknown"},
	}

	for _, tt := range tests {
		if got := synthesizeDescription(tt.merchant, tt.reference); got != tt.want {
			t.Errorf("synthesizeDescription(%q, %q) = %q, want %q", tt.merchant, tt.reference, got, tt.want)
		}
	}
}
