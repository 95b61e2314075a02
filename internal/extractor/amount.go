package extractor

import (
	"regexp"

	"github.com/shopspring/decimal"

	"txn-extract/internal/utils"
)

var (
	// 1.200.000, 500,000đ, 2.500 VND
	groupedAmountPattern = regexp.MustCompile(`\d{1,3}(?:[.,]\d{3})+(?:\s*(?:đ|VND|d|D))?`)
	bareAmountPattern    = regexp.MustCompile(`\d{4,10}`)
)

// extractAmount returns the largest grouped number in text, or the largest
// bare 4-10 digit run when no grouped number is present.
func extractAmount(text string) decimal.Decimal {
	if amount := maxMatch(groupedAmountPattern, text); amount.IsPositive() {
		return amount
	}
	return maxMatch(bareAmountPattern, text)
}

// maxMatch keeps the first maximum among all matches of re.
func maxMatch(re *regexp.Regexp, text string) decimal.Decimal {
	best := decimal.Zero
	for _, m := range re.FindAllString(text, -1) {
		digits := utils.DigitsOnly(m)
		if digits == "" {
			continue
		}
		v, err := decimal.NewFromString(digits)
		if err != nil {
			continue
		}
		if v.GreaterThan(best) {
			best = v
		}
	}
	return best
}
