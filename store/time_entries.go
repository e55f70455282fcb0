package store

import (
	"context"
	"errors"
	"fmt"

	"planttime/models"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// CreateTimeEntry inserts e as given. Inserting a second open entry for a
// worker violates the active-entry index and returns ErrConflict.
func (s *Store) CreateTimeEntry(ctx context.Context, e *models.TimeEntry) error {
	e.ID = 0
	err := s.conn(ctx).Omit(clause.Associations).Create(e).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("worker %d already has an active time entry: %w", e.WorkerID, ErrConflict)
	}
	if err != nil {
		return err
	}

	s.log.WithFields(logrus.Fields{
		"id":        e.ID,
		"worker_id": e.WorkerID,
		"active":    e.IsActive(),
	}).Info("Time entry created")
	return nil
}

func (s *Store) GetTimeEntry(ctx context.Context, id uint) (*models.TimeEntry, error) {
	return get[models.TimeEntry](s.conn(ctx), id)
}

func (s *Store) ListTimeEntries(ctx context.Context, filter models.TimeEntryFilter, page Page) ([]models.TimeEntry, error) {
	return list[models.TimeEntry](filterTimeEntries(s.conn(ctx), filter), page)
}

// ListActiveTimeEntries returns every open entry, optionally for one worker.
func (s *Store) ListActiveTimeEntries(ctx context.Context, workerID uint) ([]models.TimeEntry, error) {
	db := filterTimeEntries(s.conn(ctx), models.TimeEntryFilter{WorkerID: workerID, ActiveOnly: true})
	records := make([]models.TimeEntry, 0)
	if err := db.Order("id").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// FindActiveTimeEntry returns the worker's open entry, or nil.
func (s *Store) FindActiveTimeEntry(ctx context.Context, workerID uint) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := s.conn(ctx).
		Where("worker_id = ? AND end_time IS NULL", workerID).
		First(&entry).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &entry, nil
}

// RecentTimeEntries returns the newest matching entries first with every relation loaded.
func (s *Store) RecentTimeEntries(ctx context.Context, filter models.TimeEntryFilter, limit int) ([]models.TimeEntry, error) {
	records := make([]models.TimeEntry, 0)
	err := filterTimeEntries(withRelations(s.conn(ctx)), filter).
		Order("id desc").
		Limit(limit).
		Find(&records).Error
	if err != nil {
		return nil, err
	}
	return records, nil
}

// ActiveTimeEntriesWithRelations returns every open entry with its relations loaded.
func (s *Store) ActiveTimeEntriesWithRelations(ctx context.Context) ([]models.TimeEntry, error) {
	db := filterTimeEntries(withRelations(s.conn(ctx)), models.TimeEntryFilter{ActiveOnly: true})
	records := make([]models.TimeEntry, 0)
	if err := db.Order("start_time").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// UpdateTimeEntry loads the entry, lets mutate change it and saves the result,
// all inside one transaction. mutate may abort the update by returning an error.
func (s *Store) UpdateTimeEntry(ctx context.Context, id uint, mutate func(e *models.TimeEntry) error) (*models.TimeEntry, error) {
	var entry models.TimeEntry
	err := s.conn(ctx).Transaction(func(tx *gorm.DB) error {
		err := tx.Clauses(lockingClause(tx)...).First(&entry, id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return fmt.Errorf("time entry %d: %w", id, ErrNotFound)
		}
		if err != nil {
			return err
		}
		if err := mutate(&entry); err != nil {
			return err
		}
		err = tx.Omit(clause.Associations).Save(&entry).Error
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return fmt.Errorf("worker %d already has an active time entry: %w", entry.WorkerID, ErrConflict)
		}
		return err
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"id":           entry.ID,
		"worker_id":    entry.WorkerID,
		"hours_worked": entry.Hours(),
	}).Info("Time entry updated")
	return &entry, nil
}

func filterTimeEntries(db *gorm.DB, filter models.TimeEntryFilter) *gorm.DB {
	if filter.WorkerID != 0 {
		db = db.Where("worker_id = ?", filter.WorkerID)
	}
	if filter.ActiveOnly {
		db = db.Where("end_time IS NULL")
	}
	return db
}

func withRelations(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Worker").
		Preload("Project").
		Preload("SubDepartment.Department").
		Preload("ProductionLine")
}

// lockingClause takes a row lock where the dialect supports one. SQLite
// serialises writers on its own and rejects FOR UPDATE.
func lockingClause(db *gorm.DB) []clause.Expression {
	if db.Dialector.Name() == "sqlite" {
		return nil
	}
	return []clause.Expression{clause.Locking{Strength: "UPDATE"}}
}
