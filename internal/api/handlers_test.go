package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"txn-extract/internal/extractor"
	"txn-extract/internal/logger"
	"txn-extract/internal/models"
	"txn-extract/internal/scanner"
	"txn-extract/internal/store"
)

type mockHistory struct {
	mock.Mock
}

func (m *mockHistory) Save(ctx context.Context, userID string, res models.Result, source models.Source, rawText string) (models.Record, error) {
	args := m.Called(ctx, userID, res, source, rawText)
	return args.Get(0).(models.Record), args.Error(1)
}

func (m *mockHistory) List(ctx context.Context, userID string, limit int) ([]models.Record, error) {
	args := m.Called(ctx, userID, limit)
	return args.Get(0).([]models.Record), args.Error(1)
}

func (m *mockHistory) Stats(ctx context.Context, userID string) ([]store.CategoryStats, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).([]store.CategoryStats), args.Error(1)
}

type failingScanner struct{}

func (failingScanner) Scan(context.Context, string) (models.Result, models.Source, error) {
	return models.Result{}, models.SourceGemini, errors.New("boom")
}

func (failingScanner) ScanOffline(context.Context, string) (models.Result, models.Source, error) {
	return models.Result{}, models.SourceOffline, errors.New("boom")
}

type panicScanner struct{ failingScanner }

func (panicScanner) Scan(context.Context, string) (models.Result, models.Source, error) {
	panic("unexpected")
}

var apiNow = time.Date(2025, 2, 3, 4, 5, 6, 0, time.UTC)

func offlineScanner() Scanner {
	ext := extractor.New(extractor.WithClock(func() time.Time { return apiNow }))
	return scanner.NewFallback(nil, ext, logger.NewWithWriter(io.Discard))
}

func newTestAPI(sc Scanner, history HistoryStore) http.Handler {
	return NewWebAPI(logger.NewWithWriter(io.Discard), Config{
		UserID:       "u1",
		Dependencies: Dependencies{Scanner: sc, History: history},
	}).Handler()
}

func doRequest(h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestExtract(t *testing.T) {
	h := newTestAPI(offlineScanner(), nil)

	rec := doRequest(h, http.MethodPost, "/api/v1/extract",
		`{"text": "phí: 5.000đ, số dư: 1.200.000đ ngày 15/03/2024"}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))

	assert.Equal(t, float64(1200000), resp["amount"], "amount must be a JSON number")
	assert.Equal(t, "2024-03-15T00:00:00.000Z", resp["date"])
	assert.Equal(t, "offline", resp["source"])
	assert.NotContains(t, resp, "id")
}

func TestExtract_BadRequests(t *testing.T) {
	h := newTestAPI(offlineScanner(), nil)

	tests := []struct {
		name   string
		body   string
		status int
	}{
		{"invalid json", `{"text":`, http.StatusBadRequest},
		{"empty text", `{"text": "   "}`, http.StatusBadRequest},
		{"save without store", `{"text": "abc", "save": true}`, http.StatusServiceUnavailable},
		{"too large", `{"text": "` + strings.Repeat("a", maxBodyBytes+10) + `"}`, http.StatusRequestEntityTooLarge},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := doRequest(h, http.MethodPost, "/api/v1/extract", tt.body)
			assert.Equal(t, tt.status, rec.Code)
			assert.Contains(t, rec.Body.String(), `"error"`)
		})
	}
}

func TestExtract_ScannerError(t *testing.T) {
	rec := doRequest(newTestAPI(failingScanner{}, nil), http.MethodPost, "/api/v1/extract", `{"text": "x"}`)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}

func TestExtract_Save(t *testing.T) {
	hist := new(mockHistory)
	created := apiNow
	hist.On("Save", mock.Anything, "u1", mock.AnythingOfType("models.Result"), models.SourceOffline, "luong 10.000.000d").
		Return(models.Record{
			ID:        "rec-1",
			UserID:    "u1",
			CreatedAt: created,
			Source:    models.SourceOffline,
			Result: models.Result{
				Amount:      decimal.NewFromInt(10000000),
				Type:        models.TypeIncome,
				Category:    models.CatSalary,
				Description: "Income/Salary (Automatic)",
				Date:        apiNow,
			},
		}, nil)

	rec := doRequest(newTestAPI(offlineScanner(), hist), http.MethodPost, "/api/v1/extract",
		`{"text": "luong 10.000.000d", "save": true, "offline": true}`)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var resp ExtractionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "rec-1", resp.ID)
	assert.Equal(t, "u1", resp.UserID)
	assert.Equal(t, "INCOME", resp.Type)
	assert.Equal(t, json.Number("10000000"), resp.Amount)
	hist.AssertExpectations(t)
}

func TestExtract_SaveError(t *testing.T) {
	hist := new(mockHistory)
	hist.On("Save", mock.Anything, "u1", mock.Anything, mock.Anything, mock.Anything).
		Return(models.Record{}, errors.New("db down"))

	rec := doRequest(newTestAPI(offlineScanner(), hist), http.MethodPost, "/api/v1/extract",
		`{"text": "abc", "save": true}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestListHistory(t *testing.T) {
	hist := new(mockHistory)
	hist.On("List", mock.Anything, "u1", 5).Return([]models.Record{
		{ID: "a", UserID: "u1", CreatedAt: apiNow, Source: models.SourceGemini, Result: models.Result{
			Amount: decimal.NewFromInt(45000), Type: models.TypeExpense, Category: models.CatFood,
			Description: "Cafe", Date: apiNow,
		}},
	}, nil)

	rec := doRequest(newTestAPI(offlineScanner(), hist), http.MethodGet, "/api/v1/history?limit=5", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Extractions []ExtractionResponse `json:"extractions"`
		Count       int                  `json:"count"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Count)
	assert.Equal(t, "a", resp.Extractions[0].ID)
	assert.Equal(t, "gemini", resp.Extractions[0].Source)
	hist.AssertExpectations(t)
}

func TestListHistory_ClampsLimit(t *testing.T) {
	hist := new(mockHistory)
	hist.On("List", mock.Anything, "u1", store.MaxListLimit).Return([]models.Record{}, nil)

	rec := doRequest(newTestAPI(offlineScanner(), hist), http.MethodGet, "/api/v1/history?limit=100000000", "")
	require.Equal(t, http.StatusOK, rec.Code)
	hist.AssertExpectations(t)
}

func TestListHistory_Errors(t *testing.T) {
	rec := doRequest(newTestAPI(offlineScanner(), nil), http.MethodGet, "/api/v1/history", "")
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	hist := new(mockHistory)
	rec = doRequest(newTestAPI(offlineScanner(), hist), http.MethodGet, "/api/v1/history?limit=abc", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	hist.On("List", mock.Anything, "u1", 0).Return([]models.Record(nil), errors.New("db down"))
	rec = doRequest(newTestAPI(offlineScanner(), hist), http.MethodGet, "/api/v1/history", "")
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}

func TestHistoryStats(t *testing.T) {
	hist := new(mockHistory)
	hist.On("Stats", mock.Anything, "u1").Return([]store.CategoryStats{
		{Type: models.TypeExpense, Category: models.CatFood, Count: 2, Total: decimal.NewFromInt(75000)},
	}, nil)

	rec := doRequest(newTestAPI(offlineScanner(), hist), http.MethodGet, "/api/v1/history/stats", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"stats":[{"type":"EXPENSE","category":"FOOD","count":2,"total":75000}]}`, rec.Body.String())
}

func TestHealth(t *testing.T) {
	rec := doRequest(newTestAPI(offlineScanner(), nil), http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "healthy")
}

func TestMiddleware_CORSPreflight(t *testing.T) {
	rec := doRequest(newTestAPI(offlineScanner(), nil), http.MethodOptions, "/api/v1/extract", "")
	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestMiddleware_Recovery(t *testing.T) {
	buf := &bytes.Buffer{}
	h := NewWebAPI(logger.NewWithWriter(buf), Config{
		UserID:       "u1",
		Dependencies: Dependencies{Scanner: panicScanner{}},
	}).Handler()

	rec := doRequest(h, http.MethodPost, "/api/v1/extract", `{"text": "x"}`)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, buf.String(), "Panic recovered")
}

func TestMiddleware_LogsRequests(t *testing.T) {
	buf := &bytes.Buffer{}
	h := NewWebAPI(logger.NewWithWriter(buf), Config{
		Dependencies: Dependencies{Scanner: offlineScanner()},
	}).Handler()

	doRequest(h, http.MethodGet, "/health", "")
	assert.Contains(t, buf.String(), `"path":"/health"`)
	assert.Contains(t, buf.String(), `"status":200`)
}
