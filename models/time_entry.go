package models

import (
	"time"
)

// ActiveEntryIndex enforces at most one open entry per worker. AutoMigrate
// cannot express partial indexes, so database.Migrate creates it by name.
const ActiveEntryIndex = "idx_time_entries_one_active_per_worker"

type TimeEntry struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	CreatedAt        time.Time       `gorm:"autoCreateTime;<-:create" json:"created_at"`
	WorkerID         uint            `gorm:"not null;index" json:"worker_id"`
	Worker           *Worker         `gorm:"foreignKey:WorkerID" json:"worker,omitempty"`
	ProjectID        uint            `gorm:"not null;index" json:"project_id"`
	Project          *Project        `gorm:"foreignKey:ProjectID" json:"project,omitempty"`
	SubDepartmentID  uint            `gorm:"not null;index" json:"sub_department_id"`
	SubDepartment    *SubDepartment  `gorm:"foreignKey:SubDepartmentID" json:"sub_department,omitempty"`
	ProductionLineID uint            `gorm:"not null;index" json:"production_line_id"`
	ProductionLine   *ProductionLine `gorm:"foreignKey:ProductionLineID" json:"production_line,omitempty"`
	StartTime        time.Time       `gorm:"not null" json:"start_time"`
	EndTime          *time.Time      `gorm:"index" json:"end_time"`
	HoursWorked      *float64        `json:"hours_worked"`
	Description      *string         `gorm:"size:500" json:"description"`
}

type TimeEntryFilter struct {
	WorkerID   uint
	ActiveOnly bool
}

// TimeEntryPatch carries the fields an update may change. Nil fields are left untouched.
type TimeEntryPatch struct {
	EndTime     *time.Time
	HoursWorked *float64
	Description *string
}

func (p TimeEntryPatch) IsEmpty() bool {
	return p.EndTime == nil && p.HoursWorked == nil && p.Description == nil
}

// Apply copies the supplied fields onto e and then re-derives HoursWorked,
// so an explicit HoursWorked only survives while the entry is still open.
func (p TimeEntryPatch) Apply(e *TimeEntry) {
	if p.EndTime != nil {
		end := *p.EndTime
		e.EndTime = &end
	}
	if p.HoursWorked != nil {
		hours := *p.HoursWorked
		e.HoursWorked = &hours
	}
	if p.Description != nil {
		desc := *p.Description
		e.Description = &desc
	}
	e.UpdateCalculatedFields()
}

func (e *TimeEntry) IsActive() bool {
	return e.EndTime == nil
}

// UpdateCalculatedFields sets HoursWorked from the two bounds when both are present.
func (e *TimeEntry) UpdateCalculatedFields() {
	if e.StartTime.IsZero() || e.EndTime == nil {
		return
	}
	hours := HoursBetween(e.StartTime, *e.EndTime)
	e.HoursWorked = &hours
}

// HoursBetween returns the fractional hours from start to end.
func HoursBetween(start, end time.Time) float64 {
	return end.Sub(start).Seconds() / 3600
}

// Hours returns HoursWorked, or zero for an open entry.
func (e *TimeEntry) Hours() float64 {
	if e.HoursWorked == nil {
		return 0
	}
	return *e.HoursWorked
}
