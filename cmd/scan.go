package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"txn-extract/internal/logger"
	"txn-extract/internal/parser"
	"txn-extract/internal/writer"
)

var (
	outputDir  string
	senderName string
	startDate  string
)

var scanCmd = &cobra.Command{
	Use:   "scan [xml-file]",
	Short: "Parse an SMS backup and export bank transactions to CSV",
	Long: `Parse an SMS Backup & Restore XML file, run the offline extractor over every
message and write one CSV file per sender.`,
	Args: cobra.ExactArgs(1),
	RunE: runScan,
}

func init() {
	scanCmd.Flags().StringVarP(&outputDir, "output", "o", ".", "Output directory for CSV files (created if not exists)")
	scanCmd.Flags().StringVarP(&senderName, "sender", "s", "", "Filter by sender name (e.g., 'Vietcombank', 'MBBank')")
	scanCmd.Flags().StringVarP(&startDate, "from", "f", "", "Filter messages from this date onwards (format: YYYY-MM-DD)")
}

func runScan(cmd *cobra.Command, args []string) error {
	filePath := args[0]
	log := logger.WithFields(logger.FromContext(cmd.Context()), map[string]interface{}{
		"backup": filePath,
		"sender": senderName,
	})

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("failed to create output directory: %w", err)
	}

	ext, err := newExtractor(log)
	if err != nil {
		return err
	}

	p := parser.New(ext, log)
	transactions, err := p.ParseFile(filePath, senderName, startDate)
	if err != nil {
		return fmt.Errorf("failed to parse SMS backup: %w", err)
	}

	w := writer.New(outputDir, log)
	files, err := w.Write(transactions)
	if err != nil {
		return fmt.Errorf("failed to write transactions: %w", err)
	}

	for _, f := range files {
		fmt.Fprintln(cmd.OutOrStdout(), f)
	}
	return nil
}
