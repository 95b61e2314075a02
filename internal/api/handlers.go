package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"txn-extract/internal/models"
	"txn-extract/internal/store"
)

const maxBodyBytes = 1 << 20

// Scanner extracts transactions from text, optionally skipping the network.
type Scanner interface {
	Scan(ctx context.Context, text string) (models.Result, models.Source, error)
	ScanOffline(ctx context.Context, text string) (models.Result, models.Source, error)
}

// HistoryStore persists and reads back extraction results.
type HistoryStore interface {
	Save(ctx context.Context, userID string, res models.Result, source models.Source, rawText string) (models.Record, error)
	List(ctx context.Context, userID string, limit int) ([]models.Record, error)
	Stats(ctx context.Context, userID string) ([]store.CategoryStats, error)
}

// ExtractHandler serves extraction and history endpoints.
type ExtractHandler struct {
	scanner Scanner
	history HistoryStore
	userID  string
}

// NewExtractHandler creates a handler. history may be nil, which disables
// saving and the history endpoints.
func NewExtractHandler(scanner Scanner, history HistoryStore, userID string) *ExtractHandler {
	return &ExtractHandler{
		scanner: scanner,
		history: history,
		userID:  userID,
	}
}

type extractRequest struct {
	Text    string `json:"text"`
	Offline bool   `json:"offline"`
	Save    bool   `json:"save"`
}

// ExtractionResponse is the JSON form of a Result or Record.
type ExtractionResponse struct {
	ID          string      `json:"id,omitempty"`
	UserID      string      `json:"userId,omitempty"`
	CreatedAt   *time.Time  `json:"createdAt,omitempty"`
	Amount      json.Number `json:"amount"`
	Type        string      `json:"type"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Date        string      `json:"date"`
	Source      string      `json:"source"`
}

// NewResponse converts an unsaved result.
func NewResponse(res models.Result, src models.Source) ExtractionResponse {
	return ExtractionResponse{
		Amount:      json.Number(res.Amount.String()),
		Type:        string(res.Type),
		Category:    string(res.Category),
		Description: res.Description,
		Date:        res.ISODate(),
		Source:      string(src),
	}
}

// NewRecordResponse converts a persisted record.
func NewRecordResponse(rec models.Record) ExtractionResponse {
	resp := NewResponse(rec.Result, rec.Source)
	resp.ID = rec.ID
	resp.UserID = rec.UserID
	created := rec.CreatedAt
	resp.CreatedAt = &created
	return resp
}

// Extract handles POST /api/v1/extract
func (h *ExtractHandler) Extract(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := zerolog.Ctx(ctx)

	var req extractRequest
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusRequestEntityTooLarge, "Request body too large")
			return
		}
		WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if strings.TrimSpace(req.Text) == "" {
		WriteError(w, http.StatusBadRequest, "text is required")
		return
	}

	if req.Save && h.history == nil {
		WriteError(w, http.StatusServiceUnavailable, "History store is disabled")
		return
	}

	scan := h.scanner.Scan
	if req.Offline {
		scan = h.scanner.ScanOffline
	}

	res, src, err := scan(ctx, req.Text)
	if err != nil {
		log.Error().Err(err).Msg("Failed to extract transaction")
		WriteError(w, http.StatusBadGateway, "Failed to extract transaction")
		return
	}

	if !req.Save {
		WriteJSON(w, http.StatusOK, NewResponse(res, src))
		return
	}

	rec, err := h.history.Save(ctx, h.userID, res, src, req.Text)
	if err != nil {
		log.Error().Err(err).Msg("Failed to save extraction")
		WriteError(w, http.StatusInternalServerError, "Failed to save extraction")
		return
	}

	log.Info().Str("extraction_id", rec.ID).Str("source", string(src)).Msg("Extraction saved")
	WriteJSON(w, http.StatusCreated, NewRecordResponse(rec))
}

// ListHistory handles GET /api/v1/history
func (h *ExtractHandler) ListHistory(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		WriteError(w, http.StatusServiceUnavailable, "History store is disabled")
		return
	}

	limit := 0
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 0 {
			WriteError(w, http.StatusBadRequest, "Invalid limit")
			return
		}
		limit = min(v, store.MaxListLimit)
	}

	records, err := h.history.List(r.Context(), h.userID, limit)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to list history")
		WriteError(w, http.StatusInternalServerError, "Failed to list history")
		return
	}

	items := make([]ExtractionResponse, 0, len(records))
	for _, rec := range records {
		items = append(items, NewRecordResponse(rec))
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"extractions": items,
		"count":       len(items),
	})
}

type statsItem struct {
	Type     string      `json:"type"`
	Category string      `json:"category"`
	Count    int         `json:"count"`
	Total    json.Number `json:"total"`
}

// HistoryStats handles GET /api/v1/history/stats
func (h *ExtractHandler) HistoryStats(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		WriteError(w, http.StatusServiceUnavailable, "History store is disabled")
		return
	}

	stats, err := h.history.Stats(r.Context(), h.userID)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Failed to compute stats")
		WriteError(w, http.StatusInternalServerError, "Failed to compute stats")
		return
	}

	items := make([]statsItem, 0, len(stats))
	for _, s := range stats {
		items = append(items, statsItem{
			Type:     string(s.Type),
			Category: string(s.Category),
			Count:    s.Count,
			Total:    json.Number(s.Total.String()),
		})
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"stats": items,
	})
}

// Health handles GET /health
func Health(w http.ResponseWriter, _ *http.Request) {
	WriteJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().Format(time.RFC3339),
	})
}
