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

// ExitDecision is the outcome of one exit attempt.
type ExitDecision int

const (
	ExitGranted ExitDecision = iota
	ExitNoEntry
	ExitUnauthorized
	ExitDenied
)

func (d ExitDecision) String() string {
	switch d {
	case ExitGranted:
		return "GRANTED"
	case ExitNoEntry:
		return "NO_ENTRY"
	case ExitUnauthorized:
		return "UNAUTHORIZED"
	case ExitDenied:
		return "DENIED"
	default:
		return "UNKNOWN"
	}
}

// ExitService runs the exit validation cascade. Rules are ordered; the first
// match decides:
//
//  1. no record at all for the plate      -> NO_ENTRY, incident, alarm
//  2. active unpaid entry                 -> UNAUTHORIZED, incident, alarm
//  3. settled exit within grace window    -> GRANTED, gate opens, no new row
//  4. anything else                       -> DENIED, alarm, no incident
//
// Settlement stamps exit_time when the money clears, not at the barrier; the
// grace window bounds how long a settled session remains a ticket to leave.
type ExitService struct {
	entryRepo   *repository.EntryRepository
	incidents   *IncidentReporter
	actuator    *gate.Actuator
	alarm       *gate.AlarmSignaler
	dwell       time.Duration
	graceWindow time.Duration
	now         NowFunc
	log         zerolog.Logger
}

func NewExitService(
	entryRepo *repository.EntryRepository,
	incidents *IncidentReporter,
	actuator *gate.Actuator,
	alarm *gate.AlarmSignaler,
	dwell time.Duration,
	graceWindow time.Duration,
	log zerolog.Logger,
) *ExitService {
	return &ExitService{
		entryRepo:   entryRepo,
		incidents:   incidents,
		actuator:    actuator,
		alarm:       alarm,
		dwell:       dwell,
		graceWindow: graceWindow,
		now:         DefaultNow,
		log:         log,
	}
}

// Authorize runs the cascade for one resolved plate.
func (s *ExitService) Authorize(ctx context.Context, plate string) (ExitDecision, error) {
	hasAny, err := s.entryRepo.HasAnyForPlate(ctx, plate)
	if err != nil {
		return 0, err
	}
	if !hasAny {
		if _, err := s.incidents.Report(ctx, plate, model.IncidentNoEntryExitAttempt,
			fmt.Sprintf("Vehicle %s attempted to exit without any entry record", plate)); err != nil {
			return 0, err
		}
		s.log.Warn().Str("plate", plate).Msg("exit attempt without entry record")
		if err := s.alarm.Signal(gate.PatternNoRecord); err != nil {
			return ExitNoEntry, fmt.Errorf("alarm actuation: %w", err)
		}
		return ExitNoEntry, nil
	}

	unpaid, err := s.entryRepo.FindActiveUnpaid(ctx, plate)
	if err != nil {
		return 0, err
	}
	if unpaid != nil {
		if _, err := s.incidents.Report(ctx, plate, model.IncidentUnauthorizedExit,
			fmt.Sprintf("Attempted exit without payment for plate %s", plate)); err != nil {
			return 0, err
		}
		s.log.Warn().Str("plate", plate).Msg("unauthorized exit attempt")
		if err := s.alarm.Signal(gate.PatternUnauthorized); err != nil {
			return ExitUnauthorized, fmt.Errorf("alarm actuation: %w", err)
		}
		return ExitUnauthorized, nil
	}

	cutoff := s.now().Add(-s.graceWindow)
	recent, err := s.entryRepo.FindRecentPaidExit(ctx, plate, cutoff)
	if err != nil {
		return 0, err
	}
	if recent != nil {
		s.log.Info().Str("plate", plate).Msg("exit granted")
		if err := s.actuator.OpenFor(s.dwell); err != nil {
			return ExitGranted, fmt.Errorf("gate actuation: %w", err)
		}
		return ExitGranted, nil
	}

	// An expired or ambiguous match is a denial, not a flagged security event.
	s.log.Info().Str("plate", plate).Msg("exit denied, no recent paid session")
	if err := s.alarm.Signal(gate.PatternNoRecord); err != nil {
		return ExitDenied, fmt.Errorf("alarm actuation: %w", err)
	}
	return ExitDenied, nil
}
