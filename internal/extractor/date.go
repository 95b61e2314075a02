package extractor

import (
	"regexp"
	"strconv"
	"time"
)

// DD/MM/YYYY or DD-MM-YYYY; both separators must agree.
var datePattern = regexp.MustCompile(`(\d{1,2})/(\d{1,2})/(\d{4})|(\d{1,2})-(\d{1,2})-(\d{4})`)

// extractDate parses the first date in text. ok is false when there is no
// match or the match is not a real calendar day.
func extractDate(text string) (time.Time, bool) {
	m := datePattern.FindStringSubmatch(text)
	if len(m) < 7 {
		return time.Time{}, false
	}

	parts := m[1:4]
	if parts[0] == "" {
		parts = m[4:7]
	}
	day, _ := strconv.Atoi(parts[0])
	month, _ := strconv.Atoi(parts[1])
	year, _ := strconv.Atoi(parts[2])

	if month < 1 || month > 12 || day < 1 || day > 31 {
		return time.Time{}, false
	}

	// time.Date rolls 31/02 into March; reject anything that moved.
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Day() != day || int(d.Month()) != month || d.Year() != year {
		return time.Time{}, false
	}

	return d, true
}
