package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"
	"time"

	"planttime/config"
	"planttime/database"
	"planttime/database/dbtest"
	"planttime/handlers"
	"planttime/models"
	"planttime/store"
	"planttime/timeclock"
	"planttime/web"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 7, 0, 0, 0, time.UTC)

type testServer struct {
	handler http.Handler
	store   *store.Store
	now     *time.Time
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	db := dbtest.Open(t)
	log := dbtest.Logger()

	_, err := database.Seed(db, log)
	require.NoError(t, err)

	templates, err := web.LoadTemplates(handlers.TemplateFuncs)
	require.NoError(t, err)

	cfg := config.Default()
	st := store.New(db, log)
	now := t0
	clock := timeclock.NewService(st, log)
	clock.Now = func() time.Time { return now }

	return &testServer{
		handler: handlers.NewRouter(
			handlers.NewAPIHandler(cfg, st, clock),
			handlers.NewPageHandler(cfg, st, clock, templates),
			log,
		),
		store: st,
		now:   &now,
	}
}

func (s *testServer) do(t *testing.T, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func (s *testServer) postForm(t *testing.T, target string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	s.handler.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v), rec.Body.String())
	return v
}

type detail struct {
	Detail string `json:"detail"`
}

// clockInForm uses the first seeded worker, project, sub-department and line.
func clockInForm(workerID uint) url.Values {
	return url.Values{
		"worker_id":          {strconv.FormatUint(uint64(workerID), 10)},
		"project_id":         {"1"},
		"sub_department_id":  {"1"},
		"production_line_id": {"1"},
	}
}

func TestDepartmentsAPI(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/departments/", map[string]string{"name": "Roof", "description": "Roof trusses"})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	created := decode[models.Department](t, rec)
	assert.NotZero(t, created.ID)
	assert.Equal(t, "Roof", created.Name)

	rec = s.do(t, http.MethodPost, "/api/departments/", map[string]string{"name": "Roof"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, created.ID, decode[models.Department](t, rec).ID)

	rec = s.do(t, http.MethodGet, "/api/departments/"+strconv.Itoa(int(created.ID)), nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Roof", decode[models.Department](t, rec).Name)

	rec = s.do(t, http.MethodGet, "/api/departments/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Department not found", decode[detail](t, rec).Detail)

	rec = s.do(t, http.MethodGet, "/api/departments/?skip=1&limit=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[[]models.Department](t, rec)
	require.Len(t, page, 1)
	assert.Equal(t, "Roof", page[0].Name)

	rec = s.do(t, http.MethodGet, "/api/departments/?skip=-1", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/departments/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/departments/", map[string]string{"name": ""})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReferenceDataAPI(t *testing.T) {
	s := newTestServer(t)

	t.Run("sub-departments", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/sub-departments/", map[string]interface{}{"name": "Cutting", "department_id": 1})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 1, decode[models.SubDepartment](t, rec).ID)

		rec = s.do(t, http.MethodPost, "/api/sub-departments/", map[string]interface{}{"name": "Cutting", "department_id": 999})
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = s.do(t, http.MethodGet, "/api/sub-departments/?department_id=1", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]models.SubDepartment](t, rec), 5)
	})

	t.Run("production lines", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/production-lines/", map[string]string{"name": "Line 4"})
		require.Equal(t, http.StatusOK, rec.Code)

		rec = s.do(t, http.MethodGet, "/api/production-lines/", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]models.ProductionLine](t, rec), 4)
	})

	t.Run("workers", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/workers/", map[string]string{"name": "Someone Else", "employee_id": "EMP001"})
		require.Equal(t, http.StatusOK, rec.Code)
		worker := decode[models.Worker](t, rec)
		assert.EqualValues(t, 1, worker.ID)
		assert.Equal(t, "John Smith", worker.Name)

		rec = s.do(t, http.MethodGet, "/api/workers/1", nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = s.do(t, http.MethodGet, "/api/workers/999", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Worker not found", decode[detail](t, rec).Detail)

		rec = s.do(t, http.MethodGet, "/api/workers/?limit=2", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]models.Worker](t, rec), 2)
	})

	t.Run("projects", func(t *testing.T) {
		rec := s.do(t, http.MethodPost, "/api/projects/", map[string]string{"name": "Hospital Extension"})
		require.Equal(t, http.StatusOK, rec.Code)
		assert.EqualValues(t, 5, decode[models.Project](t, rec).ID)

		rec = s.do(t, http.MethodGet, "/api/projects/999", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
		assert.Equal(t, "Project not found", decode[detail](t, rec).Detail)
	})
}

func TestClockInOutAPI(t *testing.T) {
	s := newTestServer(t)

	rec := s.postForm(t, "/api/clock-in/", clockInForm(1))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entry := decode[models.TimeEntry](t, rec)
	assert.Nil(t, entry.EndTime)
	assert.Nil(t, entry.HoursWorked)

	rec = s.postForm(t, "/api/clock-in/", clockInForm(1))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decode[detail](t, rec).Detail, "active time entry")

	rec = s.postForm(t, "/api/clock-in/", clockInForm(999))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = s.do(t, http.MethodGet, "/api/time-entries/active/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[[]models.TimeEntry](t, rec), 1)

	*s.now = t0.Add(7*time.Hour + 30*time.Minute)
	rec = s.do(t, http.MethodPost, "/api/clock-out/"+strconv.Itoa(int(entry.ID)), nil)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	closed := decode[models.TimeEntry](t, rec)
	require.NotNil(t, closed.HoursWorked)
	assert.Equal(t, 7.5, *closed.HoursWorked)

	rec = s.do(t, http.MethodPost, "/api/clock-out/"+strconv.Itoa(int(entry.ID)), nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.do(t, http.MethodPost, "/api/clock-out/999", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "Time entry not found", decode[detail](t, rec).Detail)

	rec = s.do(t, http.MethodGet, "/api/time-entries/active/?worker_id=1", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decode[[]models.TimeEntry](t, rec))
}

func TestTimeEntriesAPI(t *testing.T) {
	s := newTestServer(t)

	rec := s.do(t, http.MethodPost, "/api/time-entries/", map[string]interface{}{
		"worker_id":          2,
		"project_id":         1,
		"sub_department_id":  2,
		"production_line_id": 1,
		"start_time":         "2026-03-02T07:00:00",
		"end_time":           "2026-03-02T11:00:00Z",
		"description":        "Framing walls",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	entry := decode[models.TimeEntry](t, rec)
	require.NotNil(t, entry.HoursWorked)
	assert.Equal(t, 4.0, *entry.HoursWorked)

	rec = s.do(t, http.MethodPost, "/api/time-entries/", map[string]interface{}{"worker_id": 2})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = s.postForm(t, "/api/clock-in/", clockInForm(1))
	require.Equal(t, http.StatusOK, rec.Code)

	t.Run("list with worker filter", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/time-entries/?worker_id=2&limit=10", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		entries := decode[[]models.TimeEntry](t, rec)
		require.Len(t, entries, 1)
		assert.Equal(t, entry.ID, entries[0].ID)

		rec = s.do(t, http.MethodGet, "/api/time-entries/", nil)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Len(t, decode[[]models.TimeEntry](t, rec), 2)
	})

	t.Run("get", func(t *testing.T) {
		rec := s.do(t, http.MethodGet, "/api/time-entries/"+strconv.Itoa(int(entry.ID)), nil)
		require.Equal(t, http.StatusOK, rec.Code)

		rec = s.do(t, http.MethodGet, "/api/time-entries/999", nil)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("update recomputes hours", func(t *testing.T) {
		target := "/api/time-entries/" + strconv.Itoa(int(entry.ID))
		rec := s.do(t, http.MethodPut, target, map[string]interface{}{
			"end_time":     "2026-03-02T13:00:00Z",
			"hours_worked": 1.0,
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		updated := decode[models.TimeEntry](t, rec)
		require.NotNil(t, updated.HoursWorked)
		assert.Equal(t, 6.0, *updated.HoursWorked)

		rec = s.do(t, http.MethodPut, target, map[string]interface{}{})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.Equal(t, 6.0, *decode[models.TimeEntry](t, rec).HoursWorked)

		rec = s.do(t, http.MethodPut, target, map[string]interface{}{"end_time": "yesterday"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = s.do(t, http.MethodPut, "/api/time-entries/999", map[string]interface{}{"description": "x"})
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)
	rec := s.do(t, http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "ok", decode[map[string]string](t, rec)["status"])
}

func TestPages(t *testing.T) {
	s := newTestServer(t)

	for _, path := range []string{"/", "/setup", "/reports", "/reports?worker_id=1", "/reports?worker_id=bogus"} {
		t.Run(path, func(t *testing.T) {
			rec := s.do(t, http.MethodGet, path, nil)
			require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
			assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
			assert.Contains(t, rec.Body.String(), "John Smith")
		})
	}

	rec := s.do(t, http.MethodGet, "/static/style.css", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestDashboardFlow(t *testing.T) {
	s := newTestServer(t)

	rec := s.postForm(t, "/clock-in", clockInForm(3))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/?success="))

	rec = s.do(t, http.MethodGet, "/", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Currently Clocked In (1)")

	rec = s.postForm(t, "/clock-in", clockInForm(3))
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/?error="))

	active, err := s.store.FindActiveTimeEntry(context.Background(), 3)
	require.NoError(t, err)
	require.NotNil(t, active)

	*s.now = t0.Add(2 * time.Hour)
	rec = s.postForm(t, "/clock-out/"+strconv.Itoa(int(active.ID)), url.Values{})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Location"), "success=")

	rec = s.do(t, http.MethodGet, "/reports", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "2.00")
}

func TestSetupForms(t *testing.T) {
	s := newTestServer(t)

	rec := s.postForm(t, "/setup/workers", url.Values{"name": {"Alex Rivera"}, "employee_id": {"EMP006"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Equal(t, "/setup?success=Saved", rec.Header().Get("Location"))

	rec = s.postForm(t, "/setup/sub-departments", url.Values{"name": {"Cutting"}, "department_id": {"999"}})
	require.Equal(t, http.StatusSeeOther, rec.Code)
	assert.True(t, strings.HasPrefix(rec.Header().Get("Location"), "/setup?error="))

	rec = s.do(t, http.MethodGet, "/setup", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Alex Rivera")
}
