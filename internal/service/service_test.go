package service

import (
	"context"
	"io"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"parking-service/internal/gate"
	"parking-service/internal/model"
	"parking-service/internal/repository"
)

// The production schema lives in internal/db as postgres statements; tests
// run against in-memory sqlite, so the two tables are created with portable
// DDL here.
var testSchema = []string{
	`CREATE TABLE parking_entries (
		id TEXT PRIMARY KEY,
		entry_time DATETIME NOT NULL,
		exit_time DATETIME,
		plate TEXT NOT NULL,
		due_payment INTEGER,
		payment_status BOOLEAN NOT NULL DEFAULT 0,
		created_at DATETIME,
		updated_at DATETIME
	);`,
	`CREATE TABLE security_incidents (
		id TEXT PRIMARY KEY,
		plate TEXT NOT NULL,
		incident_type TEXT NOT NULL,
		incident_time DATETIME NOT NULL,
		description TEXT NOT NULL,
		resolved BOOLEAN NOT NULL DEFAULT 0,
		resolution_notes TEXT,
		additional_info TEXT,
		created_at DATETIME,
		updated_at DATETIME
	);`,
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	database, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	sqlDB, err := database.DB()
	require.NoError(t, err)
	// A second pooled connection would see a different :memory: database.
	sqlDB.SetMaxOpenConns(1)

	for _, stmt := range testSchema {
		require.NoError(t, database.Exec(stmt).Error)
	}
	return database
}

type fakePort struct {
	written []byte
	lines   []string
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.written = append(p.written, b...)
	return len(b), nil
}

func (p *fakePort) ReadLine() (string, error) {
	if len(p.lines) == 0 {
		return "", io.EOF
	}
	line := p.lines[0]
	p.lines = p.lines[1:]
	return line, nil
}

func (p *fakePort) Close() error { return nil }

type fakeSleeper struct {
	slept []time.Duration
}

func (s *fakeSleeper) Sleep(d time.Duration) {
	s.slept = append(s.slept, d)
}

type harness struct {
	db           *gorm.DB
	entryRepo    *repository.EntryRepository
	incidentRepo *repository.IncidentRepository
	incidents    *IncidentReporter
	port         *fakePort
	actuator     *gate.Actuator
	alarm        *gate.AlarmSignaler
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	database := newTestDB(t)
	port := &fakePort{}
	sleeper := &fakeSleeper{}
	actuator := gate.NewActuator(port, sleeper)

	entryRepo := repository.NewEntryRepository(database)
	incidentRepo := repository.NewIncidentRepository(database)
	return &harness{
		db:           database,
		entryRepo:    entryRepo,
		incidentRepo: incidentRepo,
		incidents:    NewIncidentReporter(incidentRepo, zerolog.Nop()),
		port:         port,
		actuator:     actuator,
		alarm:        gate.NewAlarmSignaler(actuator, sleeper),
	}
}

func (h *harness) countEntries(t *testing.T) int64 {
	t.Helper()
	var count int64
	require.NoError(t, h.db.Model(&model.ParkingEntry{}).Count(&count).Error)
	return count
}

func (h *harness) incidentsByType(t *testing.T, incidentType model.IncidentType) []model.SecurityIncident {
	t.Helper()
	var incidents []model.SecurityIncident
	require.NoError(t, h.db.Where("incident_type = ?", incidentType).Find(&incidents).Error)
	return incidents
}

func (h *harness) seedEntry(t *testing.T, entry *model.ParkingEntry) *model.ParkingEntry {
	t.Helper()
	require.NoError(t, h.entryRepo.Create(context.Background(), entry))
	return entry
}
