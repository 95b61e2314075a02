package parser

import (
	"encoding/xml"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"txn-extract/internal/extractor"
	"txn-extract/internal/models"
	"txn-extract/internal/utils"
)

// Messages containing these are one-time passwords or login notices.
var skipWords = []string{"otp", "password", "mat khau", "ma xac thuc", "dang nhap"}

// Parser handles SMS backup parsing
type Parser struct {
	extractor *extractor.Extractor
	log       zerolog.Logger
}

// New creates a new Parser instance
func New(ext *extractor.Extractor, log zerolog.Logger) *Parser {
	if ext == nil {
		ext = extractor.New()
	}
	return &Parser{
		extractor: ext,
		log:       log,
	}
}

// ParseFile reads and parses an SMS backup XML file with optional filters
func (p *Parser) ParseFile(filePath, senderFilter, startDateFilter string) (map[string][]models.SMSRecord, error) {
	xmlFile, err := os.ReadFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("error reading file: %w", err)
	}

	var backup models.SMSBackup
	if err := xml.Unmarshal(xmlFile, &backup); err != nil {
		return nil, fmt.Errorf("error parsing XML: %w", err)
	}

	var startDate time.Time
	if startDateFilter != "" {
		startDate, err = time.Parse("2006-01-02", startDateFilter)
		if err != nil {
			return nil, fmt.Errorf("invalid date format (use YYYY-MM-DD): %w", err)
		}
	}

	return p.ParseMessages(backup.SMS, senderFilter, startDate), nil
}

// ParseMessages runs the extractor over every SMS that passes the filters and
// groups the non-zero results by sender.
func (p *Parser) ParseMessages(messages []models.SMS, senderFilter string, startDate time.Time) map[string][]models.SMSRecord {
	groupedData := make(map[string][]models.SMSRecord)
	seenMessages := make(map[string]bool)
	var skipped int

	for _, sms := range messages {
		if senderFilter != "" && !strings.EqualFold(sms.Address, senderFilter) {
			continue
		}

		msgSignature := fmt.Sprintf("%s|%s|%s", sms.Date, sms.Address, sms.Body)
		if seenMessages[msgSignature] {
			continue
		}
		seenMessages[msgSignature] = true

		dateMs, err := strconv.ParseInt(sms.Date, 10, 64)
		if err != nil {
			skipped++
			continue
		}
		if !startDate.IsZero() && time.UnixMilli(dateMs).Before(startDate) {
			continue
		}

		if utils.Contains(utils.NormalizeText(sms.Body), skipWords...) {
			skipped++
			continue
		}

		res := p.extractor.Extract(sms.Body)
		if res.Amount.IsZero() {
			skipped++
			continue
		}

		sender := utils.CollapseSpaces(sms.Address)
		if sender == "" {
			sender = "Unknown"
		}

		groupedData[sender] = append(groupedData[sender], models.SMSRecord{
			Sender: sender,
			Body:   sms.Body,
			Result: res,
		})
	}

	p.log.Debug().
		Int("messages", len(messages)).
		Int("groups", len(groupedData)).
		Int("skipped", skipped).
		Msg("SMS backup parsed")

	return groupedData
}
