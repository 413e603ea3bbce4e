package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type IncidentType string

const (
	IncidentDoubleEntryAttempt IncidentType = "DOUBLE_ENTRY_ATTEMPT"
	IncidentNoEntryExitAttempt IncidentType = "NO_ENTRY_EXIT_ATTEMPT"
	IncidentUnauthorizedExit   IncidentType = "UNAUTHORIZED_EXIT"
)

// SecurityIncident records one access violation. Rows are append-only;
// AdditionalInfo may receive a single follow-up annotation, and
// Resolved/ResolutionNotes belong to the operator triage workflow.
type SecurityIncident struct {
	ID              uuid.UUID    `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	Plate           string       `gorm:"type:varchar(16);not null;index" json:"car_plate"`
	IncidentType    IncidentType `gorm:"type:incident_type;not null" json:"incident_type"`
	IncidentTime    time.Time    `gorm:"not null;index" json:"incident_time"`
	Description     string       `gorm:"type:text;not null" json:"description"`
	Resolved        bool         `gorm:"not null;default:false" json:"resolved"`
	ResolutionNotes *string      `gorm:"type:text" json:"resolution_notes"`
	AdditionalInfo  *string      `gorm:"type:text" json:"additional_info"`
	CreatedAt       time.Time    `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt       time.Time    `gorm:"autoUpdateTime" json:"updated_at"`
}

func (SecurityIncident) TableName() string {
	return "security_incidents"
}

func (i *SecurityIncident) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
