package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"parking-service/internal/model"
)

type IncidentRepository struct {
	db *gorm.DB
}

func NewIncidentRepository(db *gorm.DB) *IncidentRepository {
	return &IncidentRepository{db: db}
}

func (r *IncidentRepository) Create(ctx context.Context, incident *model.SecurityIncident) error {
	return r.db.WithContext(ctx).Create(incident).Error
}

func (r *IncidentRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.SecurityIncident, error) {
	var incident model.SecurityIncident
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&incident).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, err
	}
	return &incident, nil
}

// SetAdditionalInfo attaches the one-shot follow-up annotation to an incident.
func (r *IncidentRepository) SetAdditionalInfo(ctx context.Context, id uuid.UUID, info string) error {
	result := r.db.WithContext(ctx).Model(&model.SecurityIncident{}).
		Where("id = ?", id).
		Update("additional_info", info)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *IncidentRepository) Resolve(ctx context.Context, id uuid.UUID, notes string) error {
	result := r.db.WithContext(ctx).Model(&model.SecurityIncident{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"resolved":         true,
			"resolution_notes": notes,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *IncidentRepository) ListNewestFirst(ctx context.Context) ([]model.SecurityIncident, error) {
	var incidents []model.SecurityIncident
	err := r.db.WithContext(ctx).
		Order("incident_time DESC").
		Find(&incidents).Error
	return incidents, err
}
