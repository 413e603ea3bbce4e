package main

import (
	"fmt"
	"os"

	"parking-service/internal/auth"
	"parking-service/internal/config"
	"parking-service/internal/db"
	httphandler "parking-service/internal/http"
	"parking-service/internal/http/middleware"
	"parking-service/internal/logger"
	"parking-service/internal/repository"
	"parking-service/internal/service"
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

	entryRepo := repository.NewEntryRepository(database)
	incidentRepo := repository.NewIncidentRepository(database)
	incidents := service.NewIncidentReporter(incidentRepo, appLogger)

	tokenParser := auth.NewParser(cfg.Auth.AccessSecret)

	handler := httphandler.NewHandler(entryRepo, incidentRepo, incidents, appLogger)
	authMiddleware := middleware.Auth(tokenParser)
	router := httphandler.NewRouter(handler, authMiddleware, cfg.Environment)

	addr := fmt.Sprintf("%s:%d", cfg.HTTP.Host, cfg.HTTP.Port)
	appLogger.Info().Str("addr", addr).Msg("starting parking reporting API")

	if err := router.Run(addr); err != nil {
		appLogger.Error().Err(err).Msg("failed to start server")
		os.Exit(1)
	}
}
