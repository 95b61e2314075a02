package scanner

import (
	"context"

	"github.com/rs/zerolog"

	"txn-extract/internal/extractor"
	"txn-extract/internal/models"
)

// Scanner extracts a transaction guess from free text.
type Scanner interface {
	Scan(ctx context.Context, text string) (models.Result, models.Source, error)
}

// Offline adapts the extractor heuristic to the Scanner interface. It never
// returns an error.
type Offline struct {
	Extractor *extractor.Extractor
}

// Scan implements Scanner.
func (o Offline) Scan(_ context.Context, text string) (models.Result, models.Source, error) {
	e := o.Extractor
	if e == nil {
		return extractor.Extract(text), models.SourceOffline, nil
	}
	return e.Extract(text), models.SourceOffline, nil
}

// Fallback tries Primary first and uses Offline whenever Primary is missing
// or fails.
type Fallback struct {
	Primary Scanner
	Offline Offline
	Log     zerolog.Logger
}

// NewFallback creates a Fallback. primary may be nil.
func NewFallback(primary Scanner, ext *extractor.Extractor, log zerolog.Logger) *Fallback {
	return &Fallback{
		Primary: primary,
		Offline: Offline{Extractor: ext},
		Log:     log,
	}
}

// Scan implements Scanner.
func (f *Fallback) Scan(ctx context.Context, text string) (models.Result, models.Source, error) {
	if f.Primary != nil {
		res, src, err := f.Primary.Scan(ctx, text)
		if err == nil {
			return res, src, nil
		}
		f.Log.Warn().Err(err).Msg("Primary extraction failed, using offline parser")
	}
	return f.Offline.Scan(ctx, text)
}

// ScanOffline skips the primary scanner.
func (f *Fallback) ScanOffline(ctx context.Context, text string) (models.Result, models.Source, error) {
	return f.Offline.Scan(ctx, text)
}
