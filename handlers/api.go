package handlers

import (
	"net/http"

	"planttime/config"
	"planttime/middleware"
	"planttime/models"
	"planttime/store"
	"planttime/timeclock"
)

// APIHandler serves the JSON API under /api.
type APIHandler struct {
	config *config.Config
	store  *store.Store
	clock  *timeclock.Service
}

func NewAPIHandler(cfg *config.Config, st *store.Store, clock *timeclock.Service) *APIHandler {
	return &APIHandler{
		config: cfg,
		store:  st,
		clock:  clock,
	}
}

func (h *APIHandler) CreateDepartment(w http.ResponseWriter, r *http.Request) {
	var req departmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	dept, err := h.store.CreateDepartment(r.Context(), req.model())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, dept)
}

func (h *APIHandler) ListDepartments(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r, h.config.PageLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	depts, err := h.store.ListDepartments(r.Context(), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, depts)
}

func (h *APIHandler) GetDepartment(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	dept, err := h.store.GetDepartment(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if dept == nil {
		notFound(w, r, "Department")
		return
	}
	writeJSON(w, r, http.StatusOK, dept)
}

func (h *APIHandler) CreateSubDepartment(w http.ResponseWriter, r *http.Request) {
	var req subDepartmentRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	sd, err := req.model()
	if err != nil {
		writeError(w, r, err)
		return
	}
	created, err := h.store.CreateSubDepartment(r.Context(), sd)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, created)
}

func (h *APIHandler) ListSubDepartments(w http.ResponseWriter, r *http.Request) {
	deptID, err := optionalID(r, "department_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	subs, err := h.store.ListSubDepartments(r.Context(), deptID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, subs)
}

func (h *APIHandler) CreateProductionLine(w http.ResponseWriter, r *http.Request) {
	var req productionLineRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	line, err := h.store.CreateProductionLine(r.Context(), req.model())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, line)
}

func (h *APIHandler) ListProductionLines(w http.ResponseWriter, r *http.Request) {
	lines, err := h.store.ListProductionLines(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, lines)
}

func (h *APIHandler) CreateWorker(w http.ResponseWriter, r *http.Request) {
	var req workerRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	worker, err := h.store.CreateWorker(r.Context(), req.model())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, worker)
}

func (h *APIHandler) ListWorkers(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r, h.config.PageLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	workers, err := h.store.ListWorkers(r.Context(), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, workers)
}

func (h *APIHandler) GetWorker(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	worker, err := h.store.GetWorker(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if worker == nil {
		notFound(w, r, "Worker")
		return
	}
	writeJSON(w, r, http.StatusOK, worker)
}

func (h *APIHandler) CreateProject(w http.ResponseWriter, r *http.Request) {
	var req projectRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	project, err := h.store.CreateProject(r.Context(), req.model())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, project)
}

func (h *APIHandler) ListProjects(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r, h.config.PageLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	projects, err := h.store.ListProjects(r.Context(), page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, projects)
}

func (h *APIHandler) GetProject(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	project, err := h.store.GetProject(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if project == nil {
		notFound(w, r, "Project")
		return
	}
	writeJSON(w, r, http.StatusOK, project)
}

func (h *APIHandler) CreateTimeEntry(w http.ResponseWriter, r *http.Request) {
	var req timeEntryRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	if req.StartTime == nil {
		writeError(w, r, validationError("start_time is required"))
		return
	}
	entry, err := h.clock.Record(r.Context(), req.assignment(), req.StartTime.Time, req.EndTime.ptr(), req.HoursWorked)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, entry)
}

func (h *APIHandler) ListTimeEntries(w http.ResponseWriter, r *http.Request) {
	page, err := pageFromQuery(r, h.config.PageLimit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	workerID, err := optionalID(r, "worker_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := h.store.ListTimeEntries(r.Context(), models.TimeEntryFilter{WorkerID: workerID}, page)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, entries)
}

func (h *APIHandler) GetTimeEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := h.store.GetTimeEntry(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if entry == nil {
		notFound(w, r, "Time entry")
		return
	}
	writeJSON(w, r, http.StatusOK, entry)
}

func (h *APIHandler) UpdateTimeEntry(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	var req timeEntryUpdateRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := h.clock.Update(r.Context(), id, req.patch())
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, entry)
}

func (h *APIHandler) ListActiveTimeEntries(w http.ResponseWriter, r *http.Request) {
	workerID, err := optionalID(r, "worker_id")
	if err != nil {
		writeError(w, r, err)
		return
	}
	entries, err := h.clock.ListActive(r.Context(), workerID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, entries)
}

// ClockIn takes form-encoded fields, matching the dashboard form.
func (h *APIHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	a, err := assignmentFromForm(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := h.clock.ClockIn(r.Context(), a)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, entry)
}

func (h *APIHandler) ClockOut(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	entry, err := h.clock.ClockOut(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeJSON(w, r, http.StatusOK, entry)
}

func (h *APIHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		middleware.GetLogger(r.Context()).WithError(err).Error("Health check failed")
		writeJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
