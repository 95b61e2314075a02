package utils

import (
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var (
	// đ/Đ carry a stroke, not a combining mark, so NFD leaves them alone.
	dStroke = strings.NewReplacer("đ", "d", "Đ", "D")

	whitespacePattern = regexp.MustCompile(`\s+`)
	nonDigitPattern   = regexp.MustCompile(`\D`)
)

// NormalizeText strips diacritics and lowercases s so that "Lương" and
// "luong" compare equal.
func NormalizeText(s string) string {
	if s == "" {
		return ""
	}

	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	stripped, _, err := transform.String(t, s)
	if err != nil {
		// Only reachable on internal transformer failure; keep the input usable.
		stripped = s
	}

	return strings.ToLower(dStroke.Replace(stripped))
}

// DigitsOnly removes every non-digit character.
func DigitsOnly(s string) string {
	return nonDigitPattern.ReplaceAllString(s, "")
}

// CollapseSpaces trims s and folds whitespace runs into a single space.
func CollapseSpaces(s string) string {
	return strings.TrimSpace(whitespacePattern.ReplaceAllString(s, " "))
}

// Contains checks if text contains any of the given keywords
func Contains(text string, keywords ...string) bool {
	for _, keyword := range keywords {
		if strings.Contains(text, keyword) {
			return true
		}
	}
	return false
}
