package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"planttime/models"
	"planttime/store"
	"planttime/timeclock"
)

// Timestamp accepts RFC 3339 and zone-less ISO 8601 values. Zone-less values
// are taken as UTC.
type Timestamp struct {
	time.Time
}

var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02 15:04",
}

func parseTimestamp(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", s, store.ErrValidation)
}

func (t *Timestamp) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return fmt.Errorf("timestamp must be a string: %w", store.ErrValidation)
	}
	parsed, err := parseTimestamp(s)
	if err != nil {
		return err
	}
	t.Time = parsed
	return nil
}

func (t *Timestamp) ptr() *time.Time {
	if t == nil {
		return nil
	}
	v := t.Time
	return &v
}

func decodeJSON(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %v: %w", err, store.ErrValidation)
	}
	return nil
}

type departmentRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (req departmentRequest) model() *models.Department {
	return &models.Department{Name: req.Name, Description: req.Description}
}

type subDepartmentRequest struct {
	Name         string `json:"name"`
	DepartmentID uint   `json:"department_id"`
}

func (req subDepartmentRequest) model() (*models.SubDepartment, error) {
	if req.DepartmentID == 0 {
		return nil, fmt.Errorf("department_id is required: %w", store.ErrValidation)
	}
	return &models.SubDepartment{Name: req.Name, DepartmentID: req.DepartmentID}, nil
}

type productionLineRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (req productionLineRequest) model() *models.ProductionLine {
	return &models.ProductionLine{Name: req.Name, Description: req.Description}
}

type workerRequest struct {
	Name       string `json:"name"`
	EmployeeID string `json:"employee_id"`
}

func (req workerRequest) model() *models.Worker {
	return &models.Worker{Name: req.Name, EmployeeID: req.EmployeeID}
}

type projectRequest struct {
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func (req projectRequest) model() *models.Project {
	return &models.Project{Name: req.Name, Description: req.Description}
}

type timeEntryRequest struct {
	WorkerID         uint       `json:"worker_id"`
	ProjectID        uint       `json:"project_id"`
	SubDepartmentID  uint       `json:"sub_department_id"`
	ProductionLineID uint       `json:"production_line_id"`
	StartTime        *Timestamp `json:"start_time"`
	EndTime          *Timestamp `json:"end_time"`
	HoursWorked      *float64   `json:"hours_worked"`
	Description      *string    `json:"description"`
}

func (req timeEntryRequest) assignment() timeclock.Assignment {
	return timeclock.Assignment{
		WorkerID:         req.WorkerID,
		ProjectID:        req.ProjectID,
		SubDepartmentID:  req.SubDepartmentID,
		ProductionLineID: req.ProductionLineID,
		Description:      req.Description,
	}
}

type timeEntryUpdateRequest struct {
	EndTime     *Timestamp `json:"end_time"`
	HoursWorked *float64   `json:"hours_worked"`
	Description *string    `json:"description"`
}

func (req timeEntryUpdateRequest) patch() models.TimeEntryPatch {
	return models.TimeEntryPatch{
		EndTime:     req.EndTime.ptr(),
		HoursWorked: req.HoursWorked,
		Description: req.Description,
	}
}

// assignmentFromForm reads the clock-in form fields shared by the API and the dashboard.
func assignmentFromForm(r *http.Request) (timeclock.Assignment, error) {
	if err := r.ParseForm(); err != nil {
		return timeclock.Assignment{}, fmt.Errorf("invalid form data: %w", store.ErrValidation)
	}

	var a timeclock.Assignment
	fields := []struct {
		name string
		dst  *uint
	}{
		{"worker_id", &a.WorkerID},
		{"project_id", &a.ProjectID},
		{"sub_department_id", &a.SubDepartmentID},
		{"production_line_id", &a.ProductionLineID},
	}
	for _, f := range fields {
		id, err := parseID(f.name, r.FormValue(f.name))
		if err != nil {
			return timeclock.Assignment{}, err
		}
		*f.dst = id
	}
	a.Description = optionalString(r.FormValue("description"))
	return a, nil
}
