package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"parking-service/internal/model"
)

type EntryRepository struct {
	db *gorm.DB
}

func NewEntryRepository(db *gorm.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) Create(ctx context.Context, entry *model.ParkingEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// FindActive returns the plate's active entry (exit_time IS NULL), newest
// first if more than one exists. Returns nil, nil when there is none.
func (r *EntryRepository) FindActive(ctx context.Context, plate string) (*model.ParkingEntry, error) {
	var entry model.ParkingEntry
	err := r.db.WithContext(ctx).
		Where("plate = ? AND exit_time IS NULL", plate).
		Order("entry_time DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

func (r *EntryRepository) HasAnyForPlate(ctx context.Context, plate string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&model.ParkingEntry{}).
		Where("plate = ?", plate).
		Count(&count).Error
	return count > 0, err
}

// FindActiveUnpaid returns the newest unsettled active entry for the plate.
func (r *EntryRepository) FindActiveUnpaid(ctx context.Context, plate string) (*model.ParkingEntry, error) {
	var entry model.ParkingEntry
	err := r.db.WithContext(ctx).
		Where("plate = ? AND payment_status = ? AND exit_time IS NULL", plate, false).
		Order("entry_time DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// FindLatestUnpaid returns the newest entry for the plate that has not been
// settled, regardless of exit_time. Settlement targets this row.
func (r *EntryRepository) FindLatestUnpaid(ctx context.Context, plate string) (*model.ParkingEntry, error) {
	var entry model.ParkingEntry
	err := r.db.WithContext(ctx).
		Where("plate = ? AND payment_status = ?", plate, false).
		Order("entry_time DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// FindRecentPaidExit returns the newest settled entry whose exit_time is
// later than the given cutoff. Used by the exit gate's grace-window check.
func (r *EntryRepository) FindRecentPaidExit(ctx context.Context, plate string, cutoff time.Time) (*model.ParkingEntry, error) {
	var entry model.ParkingEntry
	err := r.db.WithContext(ctx).
		Where("plate = ? AND payment_status = ? AND exit_time IS NOT NULL AND exit_time > ?", plate, true, cutoff).
		Order("exit_time DESC").
		First(&entry).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &entry, nil
}

// MarkSettled commits a settlement inside one transaction: exit_time, the
// billed amount and payment_status flip together or not at all.
func (r *EntryRepository) MarkSettled(ctx context.Context, id uuid.UUID, exitTime time.Time, duePayment int64) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		result := tx.Model(&model.ParkingEntry{}).
			Where("id = ? AND payment_status = ?", id, false).
			Updates(map[string]interface{}{
				"exit_time":      exitTime,
				"due_payment":    duePayment,
				"payment_status": true,
			})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *EntryRepository) ListNewestFirst(ctx context.Context) ([]model.ParkingEntry, error) {
	var entries []model.ParkingEntry
	err := r.db.WithContext(ctx).
		Order("entry_time DESC").
		Find(&entries).Error
	return entries, err
}
