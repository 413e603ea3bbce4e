package main

import (
	"context"
	"fmt"
	"os"

	"parking-service/internal/anpr"
	"parking-service/internal/client"
	"parking-service/internal/config"
	"parking-service/internal/db"
	"parking-service/internal/gate"
	"parking-service/internal/lane"
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

	gatePort, err := gate.OpenPort(cfg.Gate.Port, cfg.Gate.Baud)
	if err != nil {
		appLogger.Fatal().Err(err).Msg("gate controller not detected")
	}
	defer gatePort.Close()

	actuator := gate.NewActuator(gatePort, nil)
	alarm := gate.NewAlarmSignaler(actuator, nil)

	entryRepo := repository.NewEntryRepository(database)
	incidentRepo := repository.NewIncidentRepository(database)
	incidents := service.NewIncidentReporter(incidentRepo, appLogger)
	admissions := service.NewAdmissionService(entryRepo, incidents, actuator, alarm, cfg.Gate.DwellTime, appLogger)

	resolver := anpr.NewResolver(cfg.Plate.RegionPrefix, cfg.Plate.ConsensusThreshold)
	vision := client.NewVisionClient(cfg)

	loop := lane.NewLoop(
		actuator,
		vision,
		resolver,
		lane.AdmissionDecider{Admissions: admissions},
		cfg.Lane.MinDistanceCm,
		cfg.Lane.MaxDistanceCm,
		appLogger,
	)

	appLogger.Info().Str("gate_port", cfg.Gate.Port).Msg("starting entry gate")

	if err := loop.Run(context.Background()); err != nil {
		appLogger.Fatal().Err(err).Msg("entry gate loop stopped")
	}
}
