package categorizer

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"txn-extract/internal/models"
	"txn-extract/internal/utils"
)

const incomeDescription = "Income/Salary (Automatic)"

// Rule assigns Category and Description when the normalized text contains
// any of Keywords. Keywords are stored in normalized form.
type Rule struct {
	Category    models.Category `yaml:"category"`
	Description string          `yaml:"description"`
	Keywords    []string        `yaml:"keywords"`
}

// Matches reports whether normalized text triggers the rule.
func (r Rule) Matches(text string) bool {
	return utils.Contains(text, r.Keywords...)
}

// RuleSet is the income override followed by the ordered expense rules.
type RuleSet struct {
	Income  Rule   `yaml:"income"`
	Expense []Rule `yaml:"expense"`
}

// "du" and "cong" are deliberately bare: they also hit "duoc", "dung",
// "cong ty" and similar, so some expense text is classified as income.
var defaultIncomeKeywords = []string{
	"nhan chuyen khoan", "nhan tien", "chuyen den", "ghi co", "tien vao",
	"salary", "luong", "thu nhap",
	"so du", "du", "cong",
	"tk chinh",
}

// DefaultRules returns the built-in rule set. Order of Expense is significant.
func DefaultRules() RuleSet {
	return RuleSet{
		Income: Rule{
			Category:    models.CatSalary,
			Description: incomeDescription,
			Keywords:    defaultIncomeKeywords,
		},
		Expense: []Rule{
			{
				Category:    models.CatTransport,
				Description: "Transport/Fuel (Automatic)",
				Keywords: []string{
					"grab", "gojek", "xanh sm", "taxi", "uber", "be group",
					"xang", "petrolimex", "do xang", "gui xe", "bai do", "parking",
					"vetc", "epass",
				},
			},
			{
				Category:    models.CatShopping,
				Description: "Shopping (Automatic)",
				Keywords: []string{
					"shopee", "lazada", "tiki", "tiktok shop", "sendo",
					"sieu thi", "winmart", "coopmart", "co.opmart", "bach hoa xanh",
					"aeon", "lotte mart", "go!", "big c",
					"circle k", "gs25", "7-eleven", "familymart", "ministop",
				},
			},
			{
				Category:    models.CatUtilities,
				Description: "Utilities (Automatic)",
				Keywords: []string{
					"evn", "dien luc", "tien dien", "hoa don dien",
					"tien nuoc", "cap nuoc", "sawaco",
					"internet", "wifi", "fpt telecom", "viettel", "vnpt", "cuoc",
				},
			},
			{
				Category:    models.CatFood,
				Description: "Food & Drink (Automatic)",
				Keywords: []string{
					"cafe", "coffee", "ca phe", "highlands", "starbucks", "phuc long",
					"tra sua", "banh mi", "nha hang", "quan an", "an uong",
					"baemin", "shopeefood", "kfc", "lotteria", "pizza",
				},
			},
			{
				Category:    models.CatTransfer,
				Description: "Transfer (Automatic)",
				Keywords: []string{
					"chuyen khoan", "chuyen tien", "transfer", "ck den", "ck toi",
				},
			},
		},
	}
}

// LoadRules reads a YAML rule file. Keywords are normalized on load, so the
// file may use accented text.
func LoadRules(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return RuleSet{}, fmt.Errorf("failed to read rules file: %w", err)
	}

	var rs RuleSet
	if err := yaml.Unmarshal(data, &rs); err != nil {
		return RuleSet{}, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if len(rs.Income.Keywords) == 0 {
		rs.Income = DefaultRules().Income
	}
	if rs.Income.Category == "" {
		rs.Income.Category = models.CatSalary
	} else {
		cat, ok := models.LookupCategory(string(rs.Income.Category))
		if !ok {
			return RuleSet{}, fmt.Errorf("income rule: unknown category %q", rs.Income.Category)
		}
		rs.Income.Category = cat
	}
	if rs.Income.Description == "" {
		rs.Income.Description = incomeDescription
	}
	rs.Income.Keywords = normalizeKeywords(rs.Income.Keywords)

	for i := range rs.Expense {
		r := &rs.Expense[i]
		cat, ok := models.LookupCategory(string(r.Category))
		if !ok {
			return RuleSet{}, fmt.Errorf("rule %d: unknown category %q", i, r.Category)
		}
		r.Category = cat
		if r.Description == "" {
			r.Description = fmt.Sprintf("%s (Automatic)", cat)
		}
		r.Keywords = normalizeKeywords(r.Keywords)
	}

	return rs, nil
}

func normalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	for _, k := range keywords {
		if n := utils.NormalizeText(k); n != "" {
			out = append(out, n)
		}
	}
	return out
}
