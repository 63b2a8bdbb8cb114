// Package rules provides the keyword-based merchant categorizer.
package rules

import (
	_ "embed"
	"fmt"
	"os"
	"strings"

	"github.com/rumor-ml/commons.systems/smsledger/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var embeddedRules []byte

// Rule maps a merchant keyword to a spending category.
//
// Rules are evaluated as an ordered, first-match-wins sequence in file order.
// Order is semantically significant: a broad keyword placed early shadows
// every narrower keyword after it, which is why the bank-name keywords that
// map to the fee category sit at the end of the embedded rule set. The engine
// never reorders rules.
type Rule struct {
	Keyword  string `yaml:"keyword"`
	Category string `yaml:"category"`
}

// RuleSet represents the top-level YAML structure
type RuleSet struct {
	Rules []Rule `yaml:"rules"`
}

// Engine performs ordered keyword matching on merchant text
type Engine struct {
	rules []Rule // file order preserved; position is match priority
}

// NewEngine creates a categorizer engine from YAML data. Keywords are
// uppercased at load time so matching is case-insensitive.
func NewEngine(rulesData []byte) (*Engine, error) {
	var ruleSet RuleSet
	if err := yaml.Unmarshal(rulesData, &ruleSet); err != nil {
		return nil, fmt.Errorf("failed to parse YAML rules (check syntax, indentation, and field names): %w", err)
	}

	rules := make([]Rule, 0, len(ruleSet.Rules))
	for i, rule := range ruleSet.Rules {
		keyword := strings.ToUpper(strings.TrimSpace(rule.Keyword))
		if keyword == "" {
			return nil, fmt.Errorf("rule %d: keyword cannot be empty", i)
		}
		if !domain.ValidateCategory(domain.Category(rule.Category)) {
			return nil, fmt.Errorf("rule %d (%s): invalid category %q", i, rule.Keyword, rule.Category)
		}
		rules = append(rules, Rule{Keyword: keyword, Category: rule.Category})
	}

	return &Engine{rules: rules}, nil
}

// LoadEmbedded loads the embedded rules.yaml file
func LoadEmbedded() (*Engine, error) {
	engine, err := NewEngine(embeddedRules)
	if err != nil {
		return nil, fmt.Errorf("failed to load embedded rules (possible binary corruption): %w", err)
	}
	return engine, nil
}

// LoadFromFile loads rules from a filesystem path
func LoadFromFile(path string) (*Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	engine, err := NewEngine(data)
	if err != nil {
		return nil, fmt.Errorf("failed to load rules from %q: %w", path, err)
	}
	return engine, nil
}

// Categorize returns the category of the first rule whose keyword is a
// substring of the uppercased merchant text, or CategoryOther when no rule
// matches. An empty merchant always categorizes as Other.
func (e *Engine) Categorize(merchant string) domain.Category {
	upper := strings.ToUpper(strings.TrimSpace(merchant))
	if upper == "" {
		return domain.CategoryOther
	}

	for _, rule := range e.rules {
		if strings.Contains(upper, rule.Keyword) {
			return domain.Category(rule.Category)
		}
	}

	return domain.CategoryOther
}

// GetRules returns a copy of the rules for inspection/debugging.
// Rules are returned in file order, which is also match order.
func (e *Engine) GetRules() []Rule {
	result := make([]Rule, len(e.rules))
	copy(result, e.rules)
	return result
}
