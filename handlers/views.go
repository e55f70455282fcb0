package handlers

import (
	"sort"
	"time"

	"planttime/models"
)

const displayTimeFormat = "2006-01-02 15:04"

type WorkerView struct {
	ID         uint   `json:"id"`
	Name       string `json:"name"`
	EmployeeID string `json:"employee_id"`
}

type ProjectView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type DepartmentView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type SubDepartmentView struct {
	ID         uint           `json:"id"`
	Name       string         `json:"name"`
	Department DepartmentView `json:"department"`
}

type ProductionLineView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// EntryView is one time entry with every relation resolved for display.
type EntryView struct {
	ID             uint               `json:"id"`
	Worker         WorkerView         `json:"worker"`
	Project        ProjectView        `json:"project"`
	SubDepartment  SubDepartmentView  `json:"sub_department"`
	ProductionLine ProductionLineView `json:"production_line"`
	StartTime      string             `json:"start_time"`
	EndTime        string             `json:"end_time,omitempty"`
	HoursWorked    float64            `json:"hours_worked"`
	Description    string             `json:"description,omitempty"`
	Active         bool               `json:"active"`
}

type WorkerHours struct {
	WorkerID   uint    `json:"worker_id"`
	Name       string  `json:"name"`
	EmployeeID string  `json:"employee_id"`
	Hours      float64 `json:"hours"`
}

type ReportView struct {
	Entries     []EntryView   `json:"entries"`
	WorkerHours []WorkerHours `json:"worker_hours"`
	TotalHours  float64       `json:"total_hours"`
}

func formatTime(t time.Time) string {
	return t.Format(displayTimeFormat)
}

// NewEntryView flattens an entry loaded with its relations. Missing relations
// render as empty names.
func NewEntryView(e models.TimeEntry) EntryView {
	v := EntryView{
		ID:          e.ID,
		StartTime:   formatTime(e.StartTime),
		HoursWorked: e.Hours(),
		Active:      e.IsActive(),
	}
	if e.EndTime != nil {
		v.EndTime = formatTime(*e.EndTime)
	}
	if e.Description != nil {
		v.Description = *e.Description
	}
	if e.Worker != nil {
		v.Worker = WorkerView{ID: e.Worker.ID, Name: e.Worker.DisplayName(), EmployeeID: e.Worker.EmployeeID}
	}
	if e.Project != nil {
		v.Project = ProjectView{ID: e.Project.ID, Name: e.Project.Name}
	}
	if sd := e.SubDepartment; sd != nil {
		v.SubDepartment = SubDepartmentView{ID: sd.ID, Name: sd.Name}
		if sd.Department != nil {
			v.SubDepartment.Department = DepartmentView{ID: sd.Department.ID, Name: sd.Department.Name}
		}
	}
	if e.ProductionLine != nil {
		v.ProductionLine = ProductionLineView{ID: e.ProductionLine.ID, Name: e.ProductionLine.Name}
	}
	return v
}

func NewEntryViews(entries []models.TimeEntry) []EntryView {
	views := make([]EntryView, 0, len(entries))
	for _, e := range entries {
		views = append(views, NewEntryView(e))
	}
	return views
}

// NewReportView builds the report rows and sums closed hours per worker,
// workers sorted by name and then ID.
func NewReportView(entries []models.TimeEntry) ReportView {
	report := ReportView{Entries: NewEntryViews(entries)}

	byWorker := make(map[uint]*WorkerHours)
	for _, row := range report.Entries {
		if row.Active {
			continue
		}
		totals, ok := byWorker[row.Worker.ID]
		if !ok {
			totals = &WorkerHours{
				WorkerID:   row.Worker.ID,
				Name:       row.Worker.Name,
				EmployeeID: row.Worker.EmployeeID,
			}
			byWorker[row.Worker.ID] = totals
		}
		totals.Hours += row.HoursWorked
		report.TotalHours += row.HoursWorked
	}

	report.WorkerHours = make([]WorkerHours, 0, len(byWorker))
	for _, totals := range byWorker {
		report.WorkerHours = append(report.WorkerHours, *totals)
	}
	sort.Slice(report.WorkerHours, func(i, j int) bool {
		a, b := report.WorkerHours[i], report.WorkerHours[j]
		if a.Name != b.Name {
			return a.Name < b.Name
		}
		return a.WorkerID < b.WorkerID
	})
	return report
}
