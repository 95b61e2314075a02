package store

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"txn-extract/internal/models"
)

const (
	// DefaultListLimit is used by List when no positive limit is given.
	DefaultListLimit = 50
	// MaxListLimit is the most records a single List call returns.
	MaxListLimit = 500
)

// History persists extraction results and assigns their identity.
type History struct {
	conn *Connection
	now  func() time.Time
}

// NewHistory creates a new History instance.
func NewHistory(conn *Connection) *History {
	return &History{conn: conn, now: time.Now}
}

// Save stores res for userID and returns the persisted record.
func (h *History) Save(ctx context.Context, userID string, res models.Result, source models.Source, rawText string) (models.Record, error) {
	if userID == "" {
		return models.Record{}, fmt.Errorf("failed to save extraction: user id is required")
	}

	rec := models.Record{
		ID:        uuid.New().String(),
		UserID:    userID,
		CreatedAt: h.now().UTC(),
		Source:    source,
		RawText:   rawText,
		Result:    res,
	}

	query := `
		INSERT INTO extractions (id, user_id, created_at, source, amount, type, category, description, date, raw_text)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := h.conn.db.ExecContext(ctx, query,
		rec.ID,
		rec.UserID,
		rec.CreatedAt,
		string(rec.Source),
		rec.Amount.String(),
		string(rec.Type),
		string(rec.Category),
		rec.Description,
		rec.ISODate(),
		rec.RawText,
	)
	if err != nil {
		return models.Record{}, fmt.Errorf("failed to save extraction: %w", err)
	}

	return rec, nil
}

// List returns the newest records for userID.
func (h *History) List(ctx context.Context, userID string, limit int) ([]models.Record, error) {
	if limit <= 0 {
		limit = DefaultListLimit
	}
	if limit > MaxListLimit {
		limit = MaxListLimit
	}

	query := `
		SELECT id, user_id, created_at, source, amount, type, category, description, date, raw_text
		FROM extractions
		WHERE user_id = ?
		ORDER BY created_at DESC
		LIMIT ?
	`

	rows, err := h.conn.db.QueryContext(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query extractions: %w", err)
	}
	defer rows.Close()

	var records []models.Record
	for rows.Next() {
		var (
			rec                              models.Record
			source, amount, txType, cat, day string
		)
		if err := rows.Scan(&rec.ID, &rec.UserID, &rec.CreatedAt, &source, &amount,
			&txType, &cat, &rec.Description, &day, &rec.RawText); err != nil {
			return nil, fmt.Errorf("failed to scan extraction: %w", err)
		}

		rec.Source = models.Source(source)
		rec.Type = models.TransactionType(txType)
		rec.Category = models.ParseCategory(cat)

		rec.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q for %s: %w", amount, rec.ID, err)
		}
		rec.Date, err = time.Parse(models.ISOLayout, day)
		if err != nil {
			return nil, fmt.Errorf("invalid date %q for %s: %w", day, rec.ID, err)
		}

		records = append(records, rec)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate extractions: %w", err)
	}

	return records, nil
}

// CategoryStats aggregates stored records by type and category.
type CategoryStats struct {
	Type     models.TransactionType
	Category models.Category
	Count    int
	Total    decimal.Decimal
}

// Stats returns per type/category counts and totals for userID, ordered by
// type then category.
func (h *History) Stats(ctx context.Context, userID string) ([]CategoryStats, error) {
	query := `SELECT type, category, amount FROM extractions WHERE user_id = ?`

	rows, err := h.conn.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query extractions: %w", err)
	}
	defer rows.Close()

	type key struct {
		t models.TransactionType
		c models.Category
	}
	agg := make(map[key]*CategoryStats)

	for rows.Next() {
		var txType, cat, amount string
		if err := rows.Scan(&txType, &cat, &amount); err != nil {
			return nil, fmt.Errorf("failed to scan extraction: %w", err)
		}

		v, err := decimal.NewFromString(amount)
		if err != nil {
			return nil, fmt.Errorf("invalid amount %q: %w", amount, err)
		}

		k := key{models.TransactionType(txType), models.ParseCategory(cat)}
		s, ok := agg[k]
		if !ok {
			s = &CategoryStats{Type: k.t, Category: k.c, Total: decimal.Zero}
			agg[k] = s
		}
		s.Count++
		s.Total = s.Total.Add(v)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate extractions: %w", err)
	}

	stats := make([]CategoryStats, 0, len(agg))
	for _, s := range agg {
		stats = append(stats, *s)
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Type != stats[j].Type {
			return stats[i].Type < stats[j].Type
		}
		return stats[i].Category < stats[j].Category
	})

	return stats, nil
}
