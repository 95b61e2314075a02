package writer

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/rs/zerolog"

	"txn-extract/internal/models"
)

var unsafeFilenameChars = regexp.MustCompile(`[^\p{L}\p{N}_-]+`)

// Writer handles CSV file writing
type Writer struct {
	outputDir string
	log       zerolog.Logger
}

// New creates a new Writer instance
func New(outputDir string, log zerolog.Logger) *Writer {
	return &Writer{
		outputDir: outputDir,
		log:       log,
	}
}

// Write writes one CSV file per sender and returns the created paths.
func (w *Writer) Write(groupedData map[string][]models.SMSRecord) ([]string, error) {
	fieldnames := []string{"date", "amount", "type", "category", "description", "note"}

	groups := make([]string, 0, len(groupedData))
	for name := range groupedData {
		groups = append(groups, name)
	}
	sort.Strings(groups)

	var created []string
	used := make(map[string]bool)
	for _, groupName := range groups {
		records := groupedData[groupName]
		if len(records) == 0 {
			continue
		}

		sort.SliceStable(records, func(i, j int) bool {
			return records[i].Date.Before(records[j].Date)
		})

		filename := filepath.Join(w.outputDir, uniqueFileName(FileName(groupName), used))
		if err := w.writeCSVFile(filename, fieldnames, records); err != nil {
			return created, err
		}
		created = append(created, filename)

		w.log.Info().Str("file", filename).Int("transactions", len(records)).Msg("CSV written")
	}

	return created, nil
}

// FileName turns a sender into a safe CSV file name.
func FileName(group string) string {
	name := unsafeFilenameChars.ReplaceAllString(group, "_")
	if name == "" || name == "_" {
		name = "Unknown"
	}
	return name + ".csv"
}

// uniqueFileName suffixes name with _2, _3, ... until it differs from every
// name in used. Comparison ignores case for case-insensitive filesystems.
func uniqueFileName(name string, used map[string]bool) string {
	base := strings.TrimSuffix(name, ".csv")
	candidate := name
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		candidate = fmt.Sprintf("%s_%d.csv", base, i)
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

// writeCSVFile writes a single CSV file
func (w *Writer) writeCSVFile(filename string, headers []string, records []models.SMSRecord) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating %s: %w", filename, err)
	}
	defer file.Close()

	// Write BOM for UTF-8
	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return fmt.Errorf("error writing BOM to %s: %w", filename, err)
	}

	writer := csv.NewWriter(file)
	writer.Comma = ';'

	if err := writer.Write(headers); err != nil {
		return fmt.Errorf("error writing header to %s: %w", filename, err)
	}

	for _, rec := range records {
		row := []string{
			rec.ISODate(),
			rec.Amount.String(),
			string(rec.Type),
			string(rec.Category),
			rec.Description,
			rec.Body,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("error writing transaction to %s: %w", filename, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("error flushing writer for %s: %w", filename, err)
	}

	return nil
}
