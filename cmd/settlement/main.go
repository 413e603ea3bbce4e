package main

import (
	"context"
	"fmt"
	"os"

	"parking-service/internal/config"
	"parking-service/internal/db"
	"parking-service/internal/logger"
	"parking-service/internal/repository"
	"parking-service/internal/service"
	"parking-service/internal/terminal"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	appLogger := logger.New(cfg.Environment)

	database, err := db.New(cfg, appLogger)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("failed to connect database")
	}

	transport, err := terminal.Open(cfg.Terminal.Port, cfg.Terminal.Baud)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("payment terminal not detected")
	}
	defer transport.Close()

	entryRepo := repository.NewEntryRepository(database)
	settlements := service.NewSettlementService(
		entryRepo,
		transport,
		cfg.Tariff.HourlyRate,
		cfg.Terminal.ReadyTimeout,
		cfg.Terminal.DoneTimeout,
		appLogger,
	)

	appLogger.Info().Str("terminal_port", cfg.Terminal.Port).Msg("settlement service listening")

	ctx := context.Background()
	for {
		line, err := transport.ReadLine(ctx)
		if err != nil {
			appLogger.Fatal().Err(err).Msg("terminal transport failed")
		}

		msg, err := terminal.ParseBalanceMessage(line)
		if err != nil {
			appLogger.Warn().Str("line", line).Msg("discarding malformed terminal message")
			continue
		}

		// One settlement runs to completion, handshake waits included,
		// before the next line is read.
		if err := settlements.Settle(ctx, msg.Plate, msg.Balance); err != nil {
			appLogger.Error().Err(err).Str("plate", msg.Plate).Msg("settlement aborted")
		}
	}
}
