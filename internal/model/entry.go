package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ParkingEntry is one admission of a vehicle. An entry with a null ExitTime is
// the plate's active entry; settlement stamps ExitTime when the fee clears.
type ParkingEntry struct {
	ID            uuid.UUID  `gorm:"type:uuid;primaryKey;default:uuid_generate_v4()" json:"id"`
	EntryTime     time.Time  `gorm:"not null;index" json:"entry_time"`
	ExitTime      *time.Time `json:"exit_time"`
	Plate         string     `gorm:"type:varchar(16);not null;index" json:"car_plate"`
	DuePayment    *int64     `json:"due_payment"`
	PaymentStatus bool       `gorm:"not null;default:false" json:"payment_status"`
	CreatedAt     time.Time  `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt     time.Time  `gorm:"autoUpdateTime" json:"updated_at"`
}

func (ParkingEntry) TableName() string {
	return "parking_entries"
}

func (e *ParkingEntry) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}
