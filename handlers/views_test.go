package handlers

import (
	"testing"
	"time"

	"planttime/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func closedEntry(id uint, worker *models.Worker, hours float64) models.TimeEntry {
	start := time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)
	end := start.Add(time.Duration(hours * float64(time.Hour)))
	e := models.TimeEntry{
		ID:        id,
		StartTime: start,
		EndTime:   &end,
		WorkerID:  worker.ID,
		Worker:    worker,
	}
	e.UpdateCalculatedFields()
	return e
}

func TestNewReportView(t *testing.T) {
	john := &models.Worker{ID: 1, Name: "John Smith", EmployeeID: "EMP001"}
	sarah := &models.Worker{ID: 2, Name: "Sarah Johnson", EmployeeID: "EMP002"}
	zed := &models.Worker{ID: 3, Name: "Zed", EmployeeID: "EMP003"}

	open := models.TimeEntry{ID: 4, StartTime: time.Now(), WorkerID: zed.ID, Worker: zed}
	report := NewReportView([]models.TimeEntry{
		closedEntry(1, sarah, 2),
		closedEntry(2, john, 1.5),
		closedEntry(3, sarah, 3),
		open,
	})

	require.Len(t, report.Entries, 4)
	assert.Equal(t, 6.5, report.TotalHours)
	assert.Equal(t, []WorkerHours{
		{WorkerID: 1, Name: "John Smith", EmployeeID: "EMP001", Hours: 1.5},
		{WorkerID: 2, Name: "Sarah Johnson", EmployeeID: "EMP002", Hours: 5},
	}, report.WorkerHours)
	assert.True(t, report.Entries[3].Active)
	assert.Empty(t, report.Entries[3].EndTime)
}

func TestNewReportViewSharedNames(t *testing.T) {
	second := &models.Worker{ID: 9, Name: "John Smith", EmployeeID: "EMP009"}
	first := &models.Worker{ID: 1, Name: "John Smith", EmployeeID: "EMP001"}

	report := NewReportView([]models.TimeEntry{
		closedEntry(1, second, 3),
		closedEntry(2, first, 2),
	})

	assert.Equal(t, 5.0, report.TotalHours)
	assert.Equal(t, []WorkerHours{
		{WorkerID: 1, Name: "John Smith", EmployeeID: "EMP001", Hours: 2},
		{WorkerID: 9, Name: "John Smith", EmployeeID: "EMP009", Hours: 3},
	}, report.WorkerHours)
}

func TestNewEntryView(t *testing.T) {
	e := closedEntry(9, &models.Worker{ID: 1, Name: "John Smith"}, 1)
	e.SubDepartment = &models.SubDepartment{Name: "Framing", Department: &models.Department{Name: "Wall"}}

	v := NewEntryView(e)
	assert.Equal(t, "2026-03-02 07:00", v.StartTime)
	assert.Equal(t, "2026-03-02 08:00", v.EndTime)
	assert.Equal(t, "Wall", v.SubDepartment.Department.Name)
	assert.Empty(t, v.Project.Name)
}

func TestParseTimestamp(t *testing.T) {
	for _, raw := range []string{
		"2026-03-02T07:00:00Z",
		"2026-03-02T07:00:00",
		"2026-03-02T07:00",
		"2026-03-02 07:00:00",
		"2026-03-02T09:00:00+02:00",
	} {
		got, err := parseTimestamp(raw)
		require.NoError(t, err, raw)
		assert.True(t, got.Equal(time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)), raw)
	}

	_, err := parseTimestamp("tomorrow")
	assert.Error(t, err)
}
