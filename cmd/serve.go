package cmd

import (
	"github.com/spf13/cobra"

	"txn-extract/internal/api"
	"txn-extract/internal/logger"
	"txn-extract/internal/store"
)

var (
	httpAddr  string
	noHistory bool
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP extraction API",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&httpAddr, "addr", "", "Listen address (overrides TXN_HTTP_ADDR)")
	serveCmd.Flags().BoolVar(&noHistory, "no-history", false, "Disable the history database")
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	addr := cfg.HTTPAddr
	if httpAddr != "" {
		addr = httpAddr
	}
	log := logger.WithFields(logger.FromContext(ctx), map[string]interface{}{
		"user_id": cfg.UserID,
	})

	ext, err := newExtractor(log)
	if err != nil {
		return err
	}

	sc, err := newScanner(ctx, ext, log)
	if err != nil {
		return err
	}

	deps := api.Dependencies{Scanner: sc}
	if !noHistory {
		conn, err := store.Open(ctx, cfg.DBPath)
		if err != nil {
			return err
		}
		defer conn.Close()

		deps.History = store.NewHistory(conn)
		log.Info().Str("db", conn.Path()).Msg("History store opened")
	}

	server := api.NewWebAPI(log, api.Config{
		Addr:         addr,
		UserID:       cfg.UserID,
		Dependencies: deps,
	})
	return server.Start(ctx)
}
