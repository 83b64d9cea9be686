package store

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"candy-bianca-backend/internal/model"
)

// Store defines the interface for all database operations.
type Store interface {
	DB() *gorm.DB
	UpsertDevices(ctx context.Context, devices []model.Device) error
	RecordCycle(ctx context.Context, now time.Time, obs CycleObservation) error
	RecordAction(ctx context.Context, action *model.ActionLog) error
	OpenCycle(ctx context.Context, deviceID string) (*model.CycleOpen, error)
	History(ctx context.Context, deviceID string, limit int) ([]model.CycleHistory, error)
	Actions(ctx context.Context, deviceID string, limit int) ([]model.ActionLog, error)
}

// gormStore implements the Store interface using GORM.
type gormStore struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewGormStore creates a new GORM-backed store.
func NewGormStore(db *gorm.DB, logger *zap.Logger) Store {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &gormStore{db: db, logger: logger}
}

func (s *gormStore) DB() *gorm.DB {
	return s.db
}

// UpsertDevices writes the configured washers, updating name and host of
// devices that already exist.
func (s *gormStore) UpsertDevices(ctx context.Context, devices []model.Device) error {
	if len(devices) == 0 {
		return nil
	}
	s.logger.Debug("Upserting devices", zap.Int("count", len(devices)))
	return s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "host", "updated_at"}),
	}).Create(&devices).Error
}

// RecordCycle keeps cycle_opens in step with the washer's mode. A change of
// mode archives the open period; an idle mode removes the open record.
func (s *gormStore) RecordCycle(ctx context.Context, now time.Time, obs CycleObservation) error {
	current, err := s.OpenCycle(ctx, obs.DeviceID)
	if err != nil {
		return fmt.Errorf("failed to fetch open cycle for device %s: %w", obs.DeviceID, err)
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if current == nil {
			if IsIdleMode(obs.Mode) {
				return nil
			}
			rec := prepareCycle(obs, now)
			if err := tx.Create(&rec).Error; err != nil {
				return fmt.Errorf("failed to create open cycle for device %s: %w", obs.DeviceID, err)
			}
			return nil
		}

		if current.Mode == obs.Mode {
			return nil
		}

		if err := archiveCycle(tx, *current, now); err != nil {
			return err
		}

		if IsIdleMode(obs.Mode) {
			if err := tx.Delete(&model.CycleOpen{DeviceID: obs.DeviceID}).Error; err != nil {
				return fmt.Errorf("failed to delete open cycle for device %s: %w", obs.DeviceID, err)
			}
			return nil
		}

		rec := prepareCycle(obs, now)
		if err := tx.Save(&rec).Error; err != nil {
			return fmt.Errorf("failed to update open cycle for device %s: %w", obs.DeviceID, err)
		}
		return nil
	})
}

// OpenCycle returns the device's open cycle, or nil when it is idle.
func (s *gormStore) OpenCycle(ctx context.Context, deviceID string) (*model.CycleOpen, error) {
	var rows []model.CycleOpen
	if err := s.db.WithContext(ctx).Where("device_id = ?", deviceID).Limit(1).Find(&rows).Error; err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return &rows[0], nil
}

// RecordAction appends to the action log.
func (s *gormStore) RecordAction(ctx context.Context, action *model.ActionLog) error {
	if err := s.db.WithContext(ctx).Create(action).Error; err != nil {
		return fmt.Errorf("failed to record %s action for device %s: %w", action.Action, action.DeviceID, err)
	}
	return nil
}

// History returns the newest archived periods first.
func (s *gormStore) History(ctx context.Context, deviceID string, limit int) ([]model.CycleHistory, error) {
	var rows []model.CycleHistory
	err := s.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("observed_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// Actions returns the newest actions first.
func (s *gormStore) Actions(ctx context.Context, deviceID string, limit int) ([]model.ActionLog, error) {
	var rows []model.ActionLog
	err := s.db.WithContext(ctx).
		Where("device_id = ?", deviceID).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error
	return rows, err
}

// archiveCycle creates a historical record of a finished mode period.
func archiveCycle(tx *gorm.DB, open model.CycleOpen, observationTime time.Time) error {
	start := open.ObservedAt
	// With a known remaining time the period ends at the predicted finish,
	// otherwise at the moment the change was seen.
	periodEnd := observationTime
	if open.RemainingSeconds > 0 {
		periodEnd = start.Add(time.Duration(open.RemainingSeconds) * time.Second)
	}

	history := model.CycleHistory{
		DeviceID:    open.DeviceID,
		ObservedAt:  observationTime,
		Mode:        open.Mode,
		Program:     open.Program,
		PeriodStart: start,
		PeriodEnd:   periodEnd,
	}
	if err := tx.Create(&history).Error; err != nil {
		return fmt.Errorf("failed to archive cycle for device %s: %w", open.DeviceID, err)
	}
	return nil
}

func prepareCycle(obs CycleObservation, now time.Time) model.CycleOpen {
	remaining := obs.RemainingSeconds
	if remaining < 0 {
		remaining = 0
	}
	return model.CycleOpen{
		DeviceID:         obs.DeviceID,
		ObservedAt:       now,
		Mode:             obs.Mode,
		Program:          obs.Program,
		RemainingSeconds: remaining,
	}
}
