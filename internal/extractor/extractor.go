// Package extractor turns raw OCR or SMS text into a best-effort transaction
// without any network access. Extraction never fails: every field has a
// default when nothing in the text matches.
package extractor

import (
	"time"

	"txn-extract/internal/categorizer"
	"txn-extract/internal/models"
	"txn-extract/internal/utils"
)

// Extractor holds no mutable state and is safe for concurrent use.
type Extractor struct {
	categorizer *categorizer.Categorizer
	now         func() time.Time
}

// Option configures an Extractor.
type Option func(*Extractor)

// WithClock overrides the source of "now" used for the date fallback.
func WithClock(now func() time.Time) Option {
	return func(e *Extractor) {
		e.now = now
	}
}

// WithCategorizer replaces the built-in keyword rules.
func WithCategorizer(c *categorizer.Categorizer) Option {
	return func(e *Extractor) {
		e.categorizer = c
	}
}

// New creates a new Extractor instance
func New(opts ...Option) *Extractor {
	e := &Extractor{
		categorizer: categorizer.New(),
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Extract resolves every field of text and returns the finished result.
func (e *Extractor) Extract(text string) models.Result {
	amount := extractAmount(text)

	date, ok := extractDate(text)
	if !ok {
		date = e.now().UTC()
	}

	class := e.categorizer.CategorizeNormalized(utils.NormalizeText(text))

	return models.Result{
		Amount:      amount,
		Type:        class.Type,
		Category:    class.Category,
		Description: class.Description,
		Date:        date,
	}
}

var defaultExtractor = New()

// Extract runs text through an Extractor with default rules and the system clock.
func Extract(text string) models.Result {
	return defaultExtractor.Extract(text)
}
