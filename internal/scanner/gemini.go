package scanner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"google.golang.org/genai"

	"txn-extract/internal/models"
)

// DefaultModelName is the default Gemini model used for extraction.
const DefaultModelName = "gemini-2.5-flash"

const aiDescription = "Scanned by AI"

const extractPrompt = "You extract a single financial transaction from Vietnamese bank SMS, " +
	"notification or receipt OCR text.\n\n" +
	"Return STRICT JSON only: one object, no comments, no Markdown, no code fences.\n" +
	"Fields:\n" +
	"- \"amount\": number, non-negative, in VND\n" +
	"- \"type\": \"INCOME\" or \"EXPENSE\"\n" +
	"- \"category\": one of FOOD, TRANSPORT, UTILITIES, SHOPPING, SALARY, TRANSFER, OTHER\n" +
	"- \"description\": short human readable summary\n" +
	"- \"date\": \"YYYY-MM-DD\" or null if unknown\n\n" +
	"Text:\n"

// contentGenerator is the subset of *genai.Models used here.
type contentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini extracts transactions with a hosted model.
type Gemini struct {
	models contentGenerator
	model  string
	now    func() time.Time
}

// NewGemini creates a Gemini scanner using the Gemini API backend.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("NewGemini: api key is required")
	}
	if model == "" {
		model = DefaultModelName
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("NewGemini: create genai client: %w", err)
	}

	return &Gemini{models: client.Models, model: model, now: time.Now}, nil
}

// Scan implements Scanner.
func (g *Gemini) Scan(ctx context.Context, text string) (models.Result, models.Source, error) {
	contents := []*genai.Content{
		{
			Role:  "user",
			Parts: []*genai.Part{{Text: extractPrompt + text}},
		},
	}
	config := &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
		Temperature:      genai.Ptr[float32](0),
	}

	resp, err := g.models.GenerateContent(ctx, g.model, contents, config)
	if err != nil {
		return models.Result{}, models.SourceGemini, fmt.Errorf("Gemini.Scan: generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return models.Result{}, models.SourceGemini, fmt.Errorf("Gemini.Scan: empty response from model")
	}

	res, err := g.decode(cleanModelJSON(rawText))
	if err != nil {
		return models.Result{}, models.SourceGemini, fmt.Errorf("Gemini.Scan: %w\nraw response: %s", err, rawText)
	}
	return res, models.SourceGemini, nil
}

type modelTransaction struct {
	Amount      json.Number `json:"amount"`
	Type        string      `json:"type"`
	Category    string      `json:"category"`
	Description string      `json:"description"`
	Date        *string     `json:"date"`
}

func (g *Gemini) decode(raw string) (models.Result, error) {
	var mt modelTransaction
	dec := json.NewDecoder(strings.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&mt); err != nil {
		return models.Result{}, fmt.Errorf("unmarshal JSON: %w", err)
	}

	amount := decimal.Zero
	if mt.Amount != "" {
		v, err := decimal.NewFromString(mt.Amount.String())
		if err != nil {
			return models.Result{}, fmt.Errorf("invalid amount %q: %w", mt.Amount, err)
		}
		amount = v.Abs()
	}

	txType := models.TypeExpense
	if strings.EqualFold(strings.TrimSpace(mt.Type), string(models.TypeIncome)) {
		txType = models.TypeIncome
	}

	description := strings.TrimSpace(mt.Description)
	if description == "" {
		description = aiDescription
	}

	date := g.now().UTC()
	if mt.Date != nil {
		if d, err := time.Parse("2006-01-02", strings.TrimSpace(*mt.Date)); err == nil {
			date = d
		}
	}

	return models.Result{
		Amount:      amount,
		Type:        txType,
		Category:    models.ParseCategory(mt.Category),
		Description: description,
		Date:        date,
	}, nil
}

// cleanModelJSON strips Markdown fences and surrounding chatter from a model
// reply, keeping the outermost JSON object.
func cleanModelJSON(raw string) string {
	s := strings.TrimSpace(raw)

	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)
	}

	if idx := strings.LastIndex(s, "```"); idx != -1 {
		s = s[:idx]
	}

	s = strings.TrimSpace(s)

	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}
