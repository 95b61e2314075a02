package models

import (
	"encoding/xml"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Category is the closed set of labels the classifier can assign.
type Category string

// Category constants
const (
	CatFood      Category = "FOOD"
	CatTransport Category = "TRANSPORT"
	CatUtilities Category = "UTILITIES"
	CatShopping  Category = "SHOPPING"
	CatSalary    Category = "SALARY"
	CatTransfer  Category = "TRANSFER"
	CatOther     Category = "OTHER"
)

// Categories lists every valid category.
var Categories = []Category{
	CatFood, CatTransport, CatUtilities, CatShopping, CatSalary, CatTransfer, CatOther,
}

// LookupCategory matches a label case-insensitively against Categories.
func LookupCategory(s string) (Category, bool) {
	s = strings.ToUpper(strings.TrimSpace(s))
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return CatOther, false
}

// ParseCategory maps a label to a known category, falling back to CatOther.
func ParseCategory(s string) Category {
	c, _ := LookupCategory(s)
	return c
}

// TransactionType is the direction of money flow.
type TransactionType string

// TransactionType constants
const (
	TypeExpense TransactionType = "EXPENSE"
	TypeIncome  TransactionType = "INCOME"
)

// ISOLayout renders dates with millisecond precision in UTC.
const ISOLayout = "2006-01-02T15:04:05.000Z"

// DefaultDescription is used when no keyword rule matched.
const DefaultDescription = "Scanned from receipt (Offline)"

// Result is a best-effort transaction guess produced from free text.
// It has no identity; the storage layer assigns one.
type Result struct {
	Amount      decimal.Decimal
	Type        TransactionType
	Category    Category
	Description string
	Date        time.Time
}

// ISODate returns the date in ISO 8601 form.
func (r Result) ISODate() string {
	return r.Date.UTC().Format(ISOLayout)
}

// Source identifies which extractor produced a result.
type Source string

const (
	SourceOffline Source = "offline"
	SourceGemini  Source = "gemini"
)

// Record is a persisted Result.
type Record struct {
	ID        string
	UserID    string
	CreatedAt time.Time
	Source    Source
	RawText   string
	Result
}

// SMSRecord is a Result extracted from a single SMS in a backup file.
type SMSRecord struct {
	Sender string
	Body   string
	Result
}

// SMS represents a single SMS message from the XML backup
type SMS struct {
	Address string `xml:"address,attr"`
	Body    string `xml:"body,attr"`
	Date    string `xml:"date,attr"`
}

// SMSBackup represents the root of the XML document
type SMSBackup struct {
	XMLName xml.Name `xml:"smses"`
	SMS     []SMS    `xml:"sms"`
}
