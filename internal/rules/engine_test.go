package rules

import (
	"testing"

	"github.com/rumor-ml/commons.systems/smsledger/internal/domain"
)

func TestLoadEmbedded(t *testing.T) {
	engine, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("LoadEmbedded failed: %v", err)
	}
	if len(engine.GetRules()) == 0 {
		t.Fatal("embedded rule set is empty")
	}
}

func TestCategorize(t *testing.T) {
	engine, err := LoadEmbedded()
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		merchant string
		want     domain.Category
	}{
		{"REDWAVE MEGAMALL", domain.CategoryGroceries},
		{"AGORA CENTRAL", domain.CategoryGroceries},
		{"agora central", domain.CategoryGroceries}, // case-insensitive
		{"SEAGULL CAFE", domain.CategoryDining},
		{"OOREDOO MALE", domain.CategoryTelecom},
		{"STELCO", domain.CategoryUtilities},
		{"NETFLIX.COM", domain.CategoryEntertainment},
		{"ADK HOSPITAL", domain.CategoryHealth},
		{"ATM FEE", domain.CategoryBankCharges},
		{"UNKNOWN SHOP", domain.CategoryOther},
		{"", domain.CategoryOther},
	}

	for _, tt := range tests {
		if got := engine.Categorize(tt.merchant); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.merchant, got, tt.want)
		}
	}
}

// File order is match order: a merchant keyword placed before the bank-name
// fee keywords must win even when the text also contains the bank name.
func TestCategorizeOrderIsPriority(t *testing.T) {
	data := []byte(`
rules:
  - keyword: "AGORA"
    category: "Groceries"
  - keyword: "BML"
    category: "Bank Charges"
`)
	engine, err := NewEngine(data)
	if err != nil {
		t.Fatal(err)
	}

	if got := engine.Categorize("BML AGORA OUTLET"); got != domain.CategoryGroceries {
		t.Errorf("Categorize = %q, want Groceries (earlier rule wins)", got)
	}

	// Reversed order flips the result for the same text.
	reversed := []byte(`
rules:
  - keyword: "BML"
    category: "Bank Charges"
  - keyword: "AGORA"
    category: "Groceries"
`)
	engine, err = NewEngine(reversed)
	if err != nil {
		t.Fatal(err)
	}
	if got := engine.Categorize("BML AGORA OUTLET"); got != domain.CategoryBankCharges {
		t.Errorf("Categorize = %q, want Bank Charges (earlier rule wins)", got)
	}
}

func TestNewEngineValidation(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"empty keyword", "rules:\n  - keyword: \"\"\n    category: \"Groceries\"\n"},
		{"invalid category", "rules:\n  - keyword: \"AGORA\"\n    category: \"Food\"\n"},
		{"malformed yaml", "rules: [keyword: {{"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := NewEngine([]byte(tt.data)); err == nil {
				t.Error("expected error, got nil")
			}
		})
	}
}

func TestGetRulesReturnsCopy(t *testing.T) {
	engine, err := LoadEmbedded()
	if err != nil {
		t.Fatal(err)
	}

	rules := engine.GetRules()
	original := rules[0].Keyword
	rules[0].Keyword = "MUTATED"

	if engine.GetRules()[0].Keyword != original {
		t.Error("GetRules leaked internal slice")
	}
}
