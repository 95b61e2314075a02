package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"txn-extract/internal/api"
	"txn-extract/internal/extractor"
	"txn-extract/internal/logger"
	"txn-extract/internal/models"
	"txn-extract/internal/scanner"
	"txn-extract/internal/store"
)

var (
	offline    bool
	saveResult bool
	jsonOutput bool
)

var extractCmd = &cobra.Command{
	Use:   "extract [text...]",
	Short: "Extract one transaction from text (arguments or stdin)",
	Example: `  txn-extract extract "TK 0123 -150.000 VND luc 15/03/2024 grab"
  pbpaste | txn-extract extract --offline --json`,
	RunE: runExtract,
}

func init() {
	extractCmd.Flags().BoolVar(&offline, "offline", false, "Use only the local heuristic, never the network model")
	extractCmd.Flags().BoolVar(&saveResult, "save", false, "Store the result in the history database")
	extractCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the result as JSON")
}

func runExtract(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	log := logger.FromContext(ctx)

	text := strings.Join(args, " ")
	if text == "" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("failed to read stdin: %w", err)
		}
		text = string(data)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("no text given: pass it as arguments or on stdin")
	}

	ext, err := newExtractor(log)
	if err != nil {
		return err
	}

	sc, err := newScanner(ctx, ext, log)
	if err != nil {
		return err
	}

	scan := sc.Scan
	if offline {
		scan = sc.ScanOffline
	}
	res, src, err := scan(ctx, text)
	if err != nil {
		return fmt.Errorf("failed to extract transaction: %w", err)
	}

	resp := api.NewResponse(res, src)
	if saveResult {
		conn, err := store.Open(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer conn.Close()

		rec, err := store.NewHistory(conn).Save(ctx, cfg.UserID, res, src, text)
		if err != nil {
			return err
		}
		resp = api.NewRecordResponse(rec)
		log.Info().Str("extraction_id", rec.ID).Str("db", conn.Path()).Msg("Extraction saved")
	}

	out := cmd.OutOrStdout()
	if jsonOutput {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	printResult(out, res, src)
	return nil
}

// newScanner wires the network model in front of the heuristic when an API
// key is configured.
func newScanner(ctx context.Context, ext *extractor.Extractor, log zerolog.Logger) (*scanner.Fallback, error) {
	var primary scanner.Scanner
	if cfg.Gemini.Enabled() && !offline {
		g, err := scanner.NewGemini(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model)
		if err != nil {
			return nil, err
		}
		primary = g
	} else {
		log.Debug().Msg("Gemini disabled, using offline parser only")
	}
	return scanner.NewFallback(primary, ext, log), nil
}

func printResult(w io.Writer, res models.Result, src models.Source) {
	fmt.Fprintf(w, "Amount:      %s\n", res.Amount.String())
	fmt.Fprintf(w, "Type:        %s\n", res.Type)
	fmt.Fprintf(w, "Category:    %s\n", res.Category)
	fmt.Fprintf(w, "Description: %s\n", res.Description)
	fmt.Fprintf(w, "Date:        %s\n", res.ISODate())
	fmt.Fprintf(w, "Source:      %s\n", src)
}
