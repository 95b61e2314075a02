package extractor

import (
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"txn-extract/internal/categorizer"
	"txn-extract/internal/models"
)

var fixedNow = time.Date(2025, 6, 1, 10, 30, 45, 123_000_000, time.UTC)

func newTestExtractor() *Extractor {
	return New(WithClock(func() time.Time { return fixedNow }))
}

func TestExtractAmount(t *testing.T) {
	tests := []struct {
		name string
		text string
		want int64
	}{
		{"single grouped", "1.200.000đ", 1200000},
		{"comma grouped", "Thanh toan 500,000đ", 500000},
		{"vnd suffix", "so tien 2.500 VND", 2500},
		{"max wins regardless of position", "phí: 5.000đ, số dư: 1.200.000đ", 1200000},
		{"max first", "1.200.000đ roi 5.000đ", 1200000},
		{"bare fallback", "so tien 750000 da duoc ghi nhan", 750000},
		{"bare max", "ma 1234 so tien 99999", 99999},
		{"grouped beats larger bare", "ref 9999999 so tien 1.000", 1000},
		{"no digits", "khong co so nao", 0},
		{"short digits only", "ban 12 cai 345", 0},
		{"empty", "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := extractAmount(tt.text)
			if !got.Equal(decimal.NewFromInt(tt.want)) {
				t.Errorf("extractAmount(%q) = %s, want %d", tt.text, got, tt.want)
			}
		})
	}
}

func TestExtractAmount_HugeGroupedToken(t *testing.T) {
	text := "1.000.000.000.000.000.000.000.000"
	got := extractAmount(text)
	want, _ := decimal.NewFromString("1000000000000000000000000")
	if !got.Equal(want) {
		t.Errorf("got %s, want %s", got, want)
	}
}

func TestExtractDate(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   time.Time
		wantOK bool
	}{
		{"slash", "giao dich ngay 15/03/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"dash", "ngay 01-12-2023 luc 10:00", time.Date(2023, 12, 1, 0, 0, 0, 0, time.UTC), true},
		{"single digits", "5/7/2024", time.Date(2024, 7, 5, 0, 0, 0, 0, time.UTC), true},
		{"first match only", "15/03/2024 va 20/04/2024", time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), true},
		{"leap day", "29/02/2024", time.Date(2024, 2, 29, 0, 0, 0, 0, time.UTC), true},
		{"month out of range", "15/13/2024", time.Time{}, false},
		{"day zero", "00/03/2024", time.Time{}, false},
		{"day out of range", "32/01/2024", time.Time{}, false},
		{"not a calendar day", "31/02/2024", time.Time{}, false},
		{"non leap", "29/02/2023", time.Time{}, false},
		{"mixed separators", "15/03-2024", time.Time{}, false},
		{"mixed skipped for later date", "15-03/2024 hoac 20-04-2024", time.Date(2024, 4, 20, 0, 0, 0, 0, time.UTC), true},
		{"no date", "khong co ngay", time.Time{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := extractDate(tt.text)
			if ok != tt.wantOK {
				t.Fatalf("extractDate(%q) ok = %v, want %v", tt.text, ok, tt.wantOK)
			}
			if ok && !got.Equal(tt.want) {
				t.Errorf("extractDate(%q) = %v, want %v", tt.text, got, tt.want)
			}
		})
	}
}

// Without a grouped amount the bare tier also sees the year of a date.
func TestExtractAmount_BareTierTakesYear(t *testing.T) {
	got := extractAmount("ngay 15/03/2024 chuyen 500")
	if !got.Equal(decimal.NewFromInt(2024)) {
		t.Errorf("got %s, want 2024", got)
	}
}

func TestExtract_DateRoundTrip(t *testing.T) {
	r := newTestExtractor().Extract("giao dich ngay 15/03/2024")
	if got := r.ISODate(); got != "2024-03-15T00:00:00.000Z" {
		t.Errorf("ISODate = %q", got)
	}
}

func TestExtract_DateFallback(t *testing.T) {
	r := newTestExtractor().Extract("khong co ngay thang")
	if !r.Date.Equal(fixedNow) {
		t.Errorf("Date = %v, want %v", r.Date, fixedNow)
	}
	if got := r.ISODate(); got != "2025-06-01T10:30:45.123Z" {
		t.Errorf("ISODate = %q, want full date-time precision", got)
	}
}

func TestExtract_DateFallbackSystemClock(t *testing.T) {
	before := time.Now()
	r := Extract("no date here")
	after := time.Now()

	if r.Date.Before(before.Add(-time.Second)) || r.Date.After(after.Add(time.Second)) {
		t.Errorf("Date %v not within [%v, %v]", r.Date, before, after)
	}
}

func TestExtract_InvalidCalendarDateFallsBack(t *testing.T) {
	r := newTestExtractor().Extract("ngay 31/02/2024 so tien 10.000d")
	if !r.Date.Equal(fixedNow) {
		t.Errorf("Date = %v, want fallback %v", r.Date, fixedNow)
	}
}

func TestExtract_FullMessage(t *testing.T) {
	text := "TK 0123 -150.000 VND luc 20/05/2024 thanh toan GRAB"
	r := newTestExtractor().Extract(text)

	if !r.Amount.Equal(decimal.NewFromInt(150000)) {
		t.Errorf("Amount = %s", r.Amount)
	}
	if r.Type != models.TypeExpense || r.Category != models.CatTransport {
		t.Errorf("classification = %s/%s", r.Type, r.Category)
	}
	if r.ISODate() != "2024-05-20T00:00:00.000Z" {
		t.Errorf("Date = %s", r.ISODate())
	}
	if r.Description == "" {
		t.Error("empty description")
	}
}

func TestExtract_DiacriticInsensitiveIncome(t *testing.T) {
	e := newTestExtractor()
	for _, text := range []string{"LƯƠNG CỐ ĐỊNH", "luong co dinh"} {
		r := e.Extract(text)
		if r.Type != models.TypeIncome || r.Category != models.CatSalary {
			t.Errorf("Extract(%q) = %s/%s, want INCOME/SALARY", text, r.Type, r.Category)
		}
	}
}

func TestExtract_KeywordPriority(t *testing.T) {
	r := newTestExtractor().Extract("thanh toan grab cafe 45.000d")
	if r.Category != models.CatTransport {
		t.Errorf("Category = %s, want TRANSPORT", r.Category)
	}
}

func TestExtract_DefaultPath(t *testing.T) {
	r := newTestExtractor().Extract("hello world")

	if !r.Amount.IsZero() {
		t.Errorf("Amount = %s, want 0", r.Amount)
	}
	if r.Type != models.TypeExpense || r.Category != models.CatOther {
		t.Errorf("classification = %s/%s", r.Type, r.Category)
	}
	if r.Description != models.DefaultDescription {
		t.Errorf("Description = %q", r.Description)
	}
	if !r.Date.Equal(fixedNow) {
		t.Errorf("Date = %v", r.Date)
	}
}

func TestExtract_Total(t *testing.T) {
	inputs := []string{
		"",
		"\x00\xff\xfe",
		"🙂🙃 ̀́̂ ꙮ",
		strings.Repeat("1.234.567đ abc 12/12/2020 ", 10000),
		strings.Repeat("9", 100000),
	}

	e := newTestExtractor()
	for _, in := range inputs {
		r := e.Extract(in)
		if r.Amount.IsNegative() {
			t.Errorf("negative amount for input of length %d", len(in))
		}
		if r.Description == "" {
			t.Errorf("empty description for input of length %d", len(in))
		}
	}
}

func TestExtract_CustomCategorizer(t *testing.T) {
	rs := categorizer.RuleSet{
		Income: categorizer.Rule{Category: models.CatSalary, Description: "in", Keywords: []string{"bonus"}},
		Expense: []categorizer.Rule{
			{Category: models.CatFood, Description: "food", Keywords: []string{"pho"}},
		},
	}
	e := New(WithCategorizer(categorizer.NewWithRules(rs)), WithClock(func() time.Time { return fixedNow }))

	if r := e.Extract("Phở bò"); r.Category != models.CatFood || r.Description != "food" {
		t.Errorf("got %s/%q", r.Category, r.Description)
	}
}

func TestExtract_Concurrent(t *testing.T) {
	e := newTestExtractor()
	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := e.Extract("phí: 5.000đ, số dư: 1.200.000đ")
			if !r.Amount.Equal(decimal.NewFromInt(1200000)) {
				t.Errorf("Amount = %s", r.Amount)
			}
		}()
	}
	wg.Wait()
}
