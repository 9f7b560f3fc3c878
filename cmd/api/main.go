package main

import (
	"context"
	"os"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"

	"accounts_parser/pkg/api/accounts"
	"accounts_parser/pkg/core/config"
	"accounts_parser/pkg/core/registry"
	"accounts_parser/pkg/core/store"
	"accounts_parser/pkg/server"
)

func main() {
	// Load environment variables for local development; a missing .env is fine.
	_ = godotenv.Load()

	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfgPath := os.Getenv("CONFIG_PATH")
	if cfgPath == "" {
		cfgPath = "config/service.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load config")
	}

	// The record sink is an optional delivery collaborator.
	if os.Getenv("DATABASE_URL") != "" {
		if err := store.InitDB(context.Background()); err != nil {
			logger.Fatal().Err(err).Msg("failed to initialize record store")
		}
		defer store.Close()
		logger.Info().Msg("record store enabled")
	} else {
		logger.Info().Msg("DATABASE_URL not set, record store disabled")
	}

	client := registry.NewClient(registry.Config{
		APIBaseURL:      cfg.Registry.APIBaseURL,
		DocumentBaseURL: cfg.Registry.DocumentBaseURL,
		LookupTimeout:   cfg.Registry.LookupTimeout(),
		DownloadTimeout: cfg.Registry.DownloadTimeout(),
	})

	api := server.NewWebAPI(logger, server.Config{
		Addr:            cfg.Server.Addr,
		ShutdownTimeout: cfg.Server.ShutdownTimeout(),
		Accounts:        accounts.NewHandler(client),
	})

	if err := api.Start(); err != nil {
		logger.Fatal().Err(err).Msg("server failed")
	}
}
