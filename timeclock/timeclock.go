// Package timeclock implements the time entry lifecycle: opening an entry when
// a worker clocks in, closing it on clock out and correcting it afterwards.
//
// A worker has at most one open entry. The check runs inside the same
// transaction as the insert, and the active-entry unique index rejects
// whatever a concurrent clock-in slips past the check.
package timeclock

import (
	"context"
	"errors"
	"fmt"
	"time"

	"planttime/models"
	"planttime/store"

	"github.com/sirupsen/logrus"
)

var (
	ErrAlreadyActive = fmt.Errorf("worker already has an active time entry: %w", store.ErrConflict)
	ErrAlreadyClosed = fmt.Errorf("time entry already closed: %w", store.ErrConflict)
)

type Service struct {
	store *store.Store
	log   *logrus.Logger

	// Now stamps clock-in and clock-out times.
	Now func() time.Time
}

func NewService(st *store.Store, log *logrus.Logger) *Service {
	return &Service{
		store: st,
		log:   log,
		Now: func() time.Time {
			return time.Now().UTC()
		},
	}
}

// Assignment names what a worker is clocking time against.
type Assignment struct {
	WorkerID         uint
	ProjectID        uint
	SubDepartmentID  uint
	ProductionLineID uint
	Description      *string
}

func (a Assignment) validate() error {
	switch {
	case a.WorkerID == 0:
		return fmt.Errorf("worker_id is required: %w", store.ErrValidation)
	case a.ProjectID == 0:
		return fmt.Errorf("project_id is required: %w", store.ErrValidation)
	case a.SubDepartmentID == 0:
		return fmt.Errorf("sub_department_id is required: %w", store.ErrValidation)
	case a.ProductionLineID == 0:
		return fmt.Errorf("production_line_id is required: %w", store.ErrValidation)
	}
	return nil
}

// ClockIn opens a new entry starting now. It fails with ErrAlreadyActive,
// writing nothing, when the worker already has an open entry.
func (s *Service) ClockIn(ctx context.Context, a Assignment) (*models.TimeEntry, error) {
	entry := &models.TimeEntry{
		StartTime: s.Now(),
	}
	if err := s.create(ctx, a, entry); err != nil {
		s.log.WithError(err).WithField("worker_id", a.WorkerID).Warn("Clock in rejected")
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"id":        entry.ID,
		"worker_id": entry.WorkerID,
		"start":     entry.StartTime.Format(time.RFC3339),
	}).Info("Worker clocked in")
	return entry, nil
}

// ClockOut closes the entry now and derives its hours. Closing an entry twice
// fails with ErrAlreadyClosed.
func (s *Service) ClockOut(ctx context.Context, id uint) (*models.TimeEntry, error) {
	entry, err := s.store.UpdateTimeEntry(ctx, id, func(e *models.TimeEntry) error {
		if !e.IsActive() {
			return ErrAlreadyClosed
		}
		end := s.Now()
		if end.Before(e.StartTime) {
			return fmt.Errorf("clock out at %s precedes start %s: %w",
				end.Format(time.RFC3339), e.StartTime.Format(time.RFC3339), store.ErrValidation)
		}
		models.TimeEntryPatch{EndTime: &end}.Apply(e)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{
		"id":           entry.ID,
		"worker_id":    entry.WorkerID,
		"hours_worked": entry.Hours(),
	}).Info("Worker clocked out")
	return entry, nil
}

// ListActive returns open entries, for one worker when workerID is non-zero.
func (s *Service) ListActive(ctx context.Context, workerID uint) ([]models.TimeEntry, error) {
	return s.store.ListActiveTimeEntries(ctx, workerID)
}

// Update applies patch to the entry. Whenever both bounds are set afterwards
// HoursWorked is derived from them, replacing any supplied value. An empty
// patch returns the stored entry without writing.
func (s *Service) Update(ctx context.Context, id uint, patch models.TimeEntryPatch) (*models.TimeEntry, error) {
	if patch.HoursWorked != nil && *patch.HoursWorked < 0 {
		return nil, fmt.Errorf("hours_worked must not be negative: %w", store.ErrValidation)
	}
	if patch.IsEmpty() {
		entry, err := s.store.GetTimeEntry(ctx, id)
		if err != nil {
			return nil, err
		}
		if entry == nil {
			return nil, fmt.Errorf("time entry %d: %w", id, store.ErrNotFound)
		}
		return entry, nil
	}
	return s.store.UpdateTimeEntry(ctx, id, func(e *models.TimeEntry) error {
		if patch.EndTime != nil && patch.EndTime.Before(e.StartTime) {
			return fmt.Errorf("end_time precedes start_time: %w", store.ErrValidation)
		}
		patch.Apply(e)
		return nil
	})
}

// Record stores an entry with explicit bounds. Without an end time the entry
// is open and subject to the same single-active rule as ClockIn.
func (s *Service) Record(ctx context.Context, a Assignment, start time.Time, end *time.Time, hours *float64) (*models.TimeEntry, error) {
	if start.IsZero() {
		return nil, fmt.Errorf("start_time is required: %w", store.ErrValidation)
	}
	if end != nil && end.Before(start) {
		return nil, fmt.Errorf("end_time precedes start_time: %w", store.ErrValidation)
	}
	if hours != nil && *hours < 0 {
		return nil, fmt.Errorf("hours_worked must not be negative: %w", store.ErrValidation)
	}

	entry := &models.TimeEntry{
		StartTime:   start,
		EndTime:     end,
		HoursWorked: hours,
	}
	entry.UpdateCalculatedFields()
	if err := s.create(ctx, a, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *Service) create(ctx context.Context, a Assignment, entry *models.TimeEntry) error {
	if err := a.validate(); err != nil {
		return err
	}
	entry.WorkerID = a.WorkerID
	entry.ProjectID = a.ProjectID
	entry.SubDepartmentID = a.SubDepartmentID
	entry.ProductionLineID = a.ProductionLineID
	entry.Description = a.Description

	return s.store.Transaction(ctx, func(tx *store.Store) error {
		if err := checkReferences(ctx, tx, a); err != nil {
			return err
		}
		if entry.IsActive() {
			active, err := tx.FindActiveTimeEntry(ctx, a.WorkerID)
			if err != nil {
				return err
			}
			if active != nil {
				return ErrAlreadyActive
			}
		}
		err := tx.CreateTimeEntry(ctx, entry)
		if errors.Is(err, store.ErrConflict) {
			return ErrAlreadyActive
		}
		return err
	})
}

func checkReferences(ctx context.Context, tx *store.Store, a Assignment) error {
	worker, err := tx.GetWorker(ctx, a.WorkerID)
	if err != nil {
		return err
	}
	if worker == nil {
		return fmt.Errorf("worker %d: %w", a.WorkerID, store.ErrNotFound)
	}

	project, err := tx.GetProject(ctx, a.ProjectID)
	if err != nil {
		return err
	}
	if project == nil {
		return fmt.Errorf("project %d: %w", a.ProjectID, store.ErrNotFound)
	}

	sub, err := tx.GetSubDepartment(ctx, a.SubDepartmentID)
	if err != nil {
		return err
	}
	if sub == nil {
		return fmt.Errorf("sub-department %d: %w", a.SubDepartmentID, store.ErrNotFound)
	}

	line, err := tx.GetProductionLine(ctx, a.ProductionLineID)
	if err != nil {
		return err
	}
	if line == nil {
		return fmt.Errorf("production line %d: %w", a.ProductionLineID, store.ErrNotFound)
	}
	return nil
}
