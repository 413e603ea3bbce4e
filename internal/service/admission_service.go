package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"parking-service/internal/gate"
	"parking-service/internal/model"
	"parking-service/internal/repository"
)

// AdmissionDecision is the outcome of one entry attempt.
type AdmissionDecision int

const (
	AdmissionAdmitted AdmissionDecision = iota
	AdmissionDoubleEntryDenied
)

func (d AdmissionDecision) String() string {
	switch d {
	case AdmissionAdmitted:
		return "ADMITTED"
	case AdmissionDoubleEntryDenied:
		return "DOUBLE_ENTRY_DENIED"
	default:
		return "UNKNOWN"
	}
}

// AdmissionService decides whether a resolved plate may enter the facility.
//
// The active-entry check and the insert are not atomic; a second admission
// for the same plate racing between them could create two active entries.
// The single physical lane serializes vehicle presence, so the race is
// accepted rather than guarded (the schema carries a commented-out unique
// index for deployments that want the database to enforce it).
type AdmissionService struct {
	entryRepo *repository.EntryRepository
	incidents *IncidentReporter
	actuator  *gate.Actuator
	alarm     *gate.AlarmSignaler
	dwell     time.Duration
	now       NowFunc
	log       zerolog.Logger
}

func NewAdmissionService(
	entryRepo *repository.EntryRepository,
	incidents *IncidentReporter,
	actuator *gate.Actuator,
	alarm *gate.AlarmSignaler,
	dwell time.Duration,
	log zerolog.Logger,
) *AdmissionService {
	return &AdmissionService{
		entryRepo: entryRepo,
		incidents: incidents,
		actuator:  actuator,
		alarm:     alarm,
		dwell:     dwell,
		now:       DefaultNow,
		log:       log,
	}
}

// Admit runs the entry state machine for one resolved plate.
func (s *AdmissionService) Admit(ctx context.Context, plate string) (AdmissionDecision, error) {
	active, err := s.entryRepo.FindActive(ctx, plate)
	if err != nil {
		return 0, err
	}

	if active != nil {
		return AdmissionDoubleEntryDenied, s.denyDoubleEntry(ctx, plate, active)
	}

	entry := &model.ParkingEntry{
		EntryTime:     s.now(),
		Plate:         plate,
		PaymentStatus: false,
	}
	if err := s.entryRepo.Create(ctx, entry); err != nil {
		return 0, err
	}

	s.log.Info().
		Str("plate", plate).
		Str("entry_id", entry.ID.String()).
		Msg("vehicle admitted")

	if err := s.actuator.OpenFor(s.dwell); err != nil {
		return AdmissionAdmitted, fmt.Errorf("gate actuation: %w", err)
	}
	return AdmissionAdmitted, nil
}

func (s *AdmissionService) denyDoubleEntry(ctx context.Context, plate string, active *model.ParkingEntry) error {
	incident, err := s.incidents.Report(ctx, plate, model.IncidentDoubleEntryAttempt,
		fmt.Sprintf("Vehicle %s attempted to enter while having an active entry", plate))
	if err != nil {
		return err
	}

	paid := "Unpaid"
	if active.PaymentStatus {
		paid = "Paid"
	}
	info := fmt.Sprintf("Original entry time: %s, Payment status: %s",
		active.EntryTime.Format(time.RFC3339), paid)
	if err := s.incidents.Annotate(ctx, incident.ID, info); err != nil {
		s.log.Error().Err(err).
			Str("incident_id", incident.ID.String()).
			Msg("failed to annotate double entry incident")
	}

	s.log.Warn().Str("plate", plate).Msg("double entry attempt denied")

	if err := s.alarm.Signal(gate.PatternPolicyViolation); err != nil {
		return fmt.Errorf("alarm actuation: %w", err)
	}
	return nil
}
