package categorizer

import (
	"txn-extract/internal/models"
	"txn-extract/internal/utils"
)

// Classification is the type/category/description triple for a text.
type Classification struct {
	Type        models.TransactionType
	Category    models.Category
	Description string
}

// Categorizer handles transaction categorization
type Categorizer struct {
	rules RuleSet
}

// New creates a Categorizer with the built-in rules.
func New() *Categorizer {
	return &Categorizer{rules: DefaultRules()}
}

// NewWithRules creates a Categorizer from a custom rule set.
func NewWithRules(rs RuleSet) *Categorizer {
	return &Categorizer{rules: rs}
}

// Rules returns a copy of the expense rules in evaluation order.
func (c *Categorizer) Rules() []Rule {
	out := make([]Rule, len(c.rules.Expense))
	copy(out, c.rules.Expense)
	return out
}

// IncomeRule returns the override checked before any expense rule.
func (c *Categorizer) IncomeRule() Rule {
	return c.rules.Income
}

// Categorize classifies raw text. The text is normalized first.
func (c *Categorizer) Categorize(text string) Classification {
	return c.CategorizeNormalized(utils.NormalizeText(text))
}

// CategorizeNormalized classifies text that has already gone through
// utils.NormalizeText.
func (c *Categorizer) CategorizeNormalized(text string) Classification {
	// Income
	if c.rules.Income.Matches(text) {
		return Classification{
			Type:        models.TypeIncome,
			Category:    c.rules.Income.Category,
			Description: c.rules.Income.Description,
		}
	}

	for _, rule := range c.rules.Expense {
		if rule.Matches(text) {
			return Classification{
				Type:        models.TypeExpense,
				Category:    rule.Category,
				Description: rule.Description,
			}
		}
	}

	return Classification{
		Type:        models.TypeExpense,
		Category:    models.CatOther,
		Description: models.DefaultDescription,
	}
}
