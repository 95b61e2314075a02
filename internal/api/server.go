package api

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// WebAPI serves the extraction endpoints.
type WebAPI struct {
	router *chi.Mux
	logger zerolog.Logger
	server *http.Server
	config Config
}

// Dependencies are the services behind the handlers.
type Dependencies struct {
	Scanner Scanner
	History HistoryStore
}

// Config configures the HTTP server.
type Config struct {
	Addr            string
	UserID          string
	ShutdownTimeout time.Duration
	Dependencies    Dependencies
}

// NewWebAPI builds the router and server.
func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 30 * time.Second
	}

	h := NewExtractHandler(config.Dependencies.Scanner, config.Dependencies.History, config.UserID)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(Logger(logger))
	router.Use(Recovery(logger))
	router.Use(CORS)

	router.Get("/health", Health)
	router.Route("/api/v1", func(r chi.Router) {
		r.Post("/extract", h.Extract)
		r.Get("/history", h.ListHistory)
		r.Get("/history/stats", h.HistoryStats)
	})

	return &WebAPI{
		router: router,
		logger: logger,
		config: config,
		server: &http.Server{
			Addr:         config.Addr,
			Handler:      router,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// Handler exposes the router, mainly for tests.
func (w *WebAPI) Handler() http.Handler {
	return w.router
}

// Start serves until SIGINT/SIGTERM or ctx is done, then shuts down gracefully.
func (w *WebAPI) Start(ctx context.Context) error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(shutdown)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-shutdown:
	case <-ctx.Done():
	}

	w.logger.Info().Msg("shutdown initiated")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), w.config.ShutdownTimeout)
	defer cancel()

	if err := w.server.Shutdown(shutdownCtx); err != nil {
		w.logger.Error().Err(err).Msg("graceful shutdown failed")
		return w.server.Close()
	}

	return nil
}
