// Package server wires the HTTP surface of the accounts parser.
package server

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"accounts_parser/pkg/api/accounts"
	apmiddleware "accounts_parser/pkg/server/middleware"
)

// Config carries the listener settings and handler dependencies.
type Config struct {
	Addr            string
	ShutdownTimeout time.Duration
	Accounts        *accounts.Handler
}

// WebAPI is the running HTTP service.
type WebAPI struct {
	router *chi.Mux
	logger *zerolog.Logger
	server *http.Server

	shutdownTimeout time.Duration
}

// NewWebAPI builds the router and server from config.
func NewWebAPI(logger zerolog.Logger, config Config) *WebAPI {
	router := chi.NewRouter()

	router.Use(apmiddleware.RequestID)
	router.Use(apmiddleware.Logger(&logger))
	router.Use(chimiddleware.Recoverer)

	router.Get("/healthz", accounts.HandleHealth)
	router.Route("/api/accounts", func(r chi.Router) {
		r.Post("/parse", config.Accounts.HandleParse)
	})

	if config.ShutdownTimeout == 0 {
		config.ShutdownTimeout = 10 * time.Second
	}

	return &WebAPI{
		router: router,
		logger: &logger,
		server: &http.Server{
			Addr:    config.Addr,
			Handler: router,
		},
		shutdownTimeout: config.ShutdownTimeout,
	}
}

// Router exposes the mux, mainly for tests.
func (w *WebAPI) Router() http.Handler {
	return w.router
}

// Start serves until an error or SIGINT/SIGTERM, then shuts down gracefully.
func (w *WebAPI) Start() error {
	serverErrors := make(chan error, 1)
	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	go func() {
		w.logger.Info().Str("addr", w.server.Addr).Msg("starting server")
		serverErrors <- w.server.ListenAndServe()
	}()

	select {
	case err := <-serverErrors:
		return err
	case <-shutdown:
		w.logger.Info().Msg("shutdown initiated")

		// Give outstanding requests a deadline for completion.
		ctx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
		defer cancel()

		err := w.server.Shutdown(ctx)
		if err != nil {
			w.logger.Error().Err(err).Msg("graceful shutdown failed")
			err = w.server.Close()
		}

		if err != nil {
			return err
		}
	}

	return nil
}
