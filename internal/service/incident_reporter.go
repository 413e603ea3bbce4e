package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"parking-service/internal/model"
	"parking-service/internal/repository"
)

// IncidentReporter persists security incidents. Creation is append-only; an
// incident may receive one follow-up annotation, and resolution belongs to
// the operator triage workflow exposed through the reporting API.
type IncidentReporter struct {
	incidentRepo *repository.IncidentRepository
	now          NowFunc
	log          zerolog.Logger
}

func NewIncidentReporter(incidentRepo *repository.IncidentRepository, log zerolog.Logger) *IncidentReporter {
	return &IncidentReporter{
		incidentRepo: incidentRepo,
		now:          DefaultNow,
		log:          log,
	}
}

func (r *IncidentReporter) Report(ctx context.Context, plate string, incidentType model.IncidentType, description string) (*model.SecurityIncident, error) {
	incident := &model.SecurityIncident{
		Plate:        plate,
		IncidentType: incidentType,
		IncidentTime: r.now(),
		Description:  description,
	}
	if err := r.incidentRepo.Create(ctx, incident); err != nil {
		return nil, err
	}

	r.log.Warn().
		Str("plate", plate).
		Str("incident_type", string(incidentType)).
		Str("incident_id", incident.ID.String()).
		Msg("security incident recorded")

	return incident, nil
}

// Annotate attaches contextual text to an existing incident. Used once per
// incident, by the double-entry path, to capture the stale entry's state.
func (r *IncidentReporter) Annotate(ctx context.Context, id uuid.UUID, info string) error {
	if info == "" {
		return ErrInvalidInput
	}
	err := r.incidentRepo.SetAdditionalInfo(ctx, id, info)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func (r *IncidentReporter) Resolve(ctx context.Context, id uuid.UUID, notes string) error {
	if notes == "" {
		return ErrInvalidInput
	}
	err := r.incidentRepo.Resolve(ctx, id, notes)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
