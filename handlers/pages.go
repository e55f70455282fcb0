package handlers

import (
	"fmt"
	"html/template"
	"net/http"

	"planttime/config"
	"planttime/middleware"
	"planttime/models"
	"planttime/store"
	"planttime/timeclock"
)

// TemplateFuncs are available to every page template.
var TemplateFuncs = template.FuncMap{
	"deref": func(p *string) string {
		if p == nil {
			return ""
		}
		return *p
	},
}

// PageHandler serves the server-rendered pages and their form posts.
type PageHandler struct {
	config    *config.Config
	store     *store.Store
	clock     *timeclock.Service
	templates map[string]*template.Template
}

func NewPageHandler(cfg *config.Config, st *store.Store, clock *timeclock.Service, templates map[string]*template.Template) *PageHandler {
	return &PageHandler{
		config:    cfg,
		store:     st,
		clock:     clock,
		templates: templates,
	}
}

func (h *PageHandler) defaultPage() store.Page {
	return store.Page{Offset: 0, Limit: h.config.PageLimit}
}

func (h *PageHandler) pageError(w http.ResponseWriter, r *http.Request, err error) {
	middleware.GetLogger(r.Context()).WithError(err).Error("Failed to load page data")
	http.Error(w, "Internal server error", http.StatusInternalServerError)
}

func (h *PageHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	workers, err := h.store.ListWorkers(ctx, h.defaultPage())
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	projects, err := h.store.ListProjects(ctx, h.defaultPage())
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	departments, err := h.store.ListDepartmentsWithSubs(ctx, h.defaultPage())
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	lines, err := h.store.ListProductionLines(ctx)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	active, err := h.store.ActiveTimeEntriesWithRelations(ctx)
	if err != nil {
		h.pageError(w, r, err)
		return
	}

	data := map[string]interface{}{
		"Workers":         workers,
		"Projects":        projects,
		"Departments":     departments,
		"ProductionLines": lines,
		"ActiveEntries":   NewEntryViews(active),
		"Error":           r.URL.Query().Get("error"),
		"Success":         r.URL.Query().Get("success"),
	}
	render(w, r, h.templates["dashboard"], data)
}

func (h *PageHandler) Setup(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	departments, err := h.store.ListDepartmentsWithSubs(ctx, h.defaultPage())
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	subDepartments, err := h.store.ListSubDepartments(ctx, 0)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	lines, err := h.store.ListProductionLines(ctx)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	workers, err := h.store.ListWorkers(ctx, h.defaultPage())
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	projects, err := h.store.ListProjects(ctx, h.defaultPage())
	if err != nil {
		h.pageError(w, r, err)
		return
	}

	data := map[string]interface{}{
		"Departments":     departments,
		"SubDepartments":  subDepartments,
		"ProductionLines": lines,
		"Workers":         workers,
		"Projects":        projects,
		"Error":           r.URL.Query().Get("error"),
		"Success":         r.URL.Query().Get("success"),
	}
	render(w, r, h.templates["setup"], data)
}

func (h *PageHandler) Reports(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// An unparsable filter falls back to the unfiltered report.
	selectedWorkerID, err := optionalID(r, "worker_id")
	if err != nil {
		selectedWorkerID = 0
	}

	entries, err := h.store.RecentTimeEntries(ctx, models.TimeEntryFilter{WorkerID: selectedWorkerID}, h.config.ReportLimit)
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	workers, err := h.store.ListWorkers(ctx, h.defaultPage())
	if err != nil {
		h.pageError(w, r, err)
		return
	}
	projects, err := h.store.ListProjects(ctx, h.defaultPage())
	if err != nil {
		h.pageError(w, r, err)
		return
	}

	data := map[string]interface{}{
		"Report":           NewReportView(entries),
		"Workers":          workers,
		"Projects":         projects,
		"SelectedWorkerID": selectedWorkerID,
		"Error":            r.URL.Query().Get("error"),
		"Success":          r.URL.Query().Get("success"),
	}
	render(w, r, h.templates["reports"], data)
}

func (h *PageHandler) ClockIn(w http.ResponseWriter, r *http.Request) {
	a, err := assignmentFromForm(r)
	if err != nil {
		redirectWithMessage(w, r, "/", "error", err.Error())
		return
	}
	entry, err := h.clock.ClockIn(r.Context(), a)
	if err != nil {
		h.formError(w, r, "/", err)
		return
	}
	redirectWithMessage(w, r, "/", "success", fmt.Sprintf("Clocked in (entry %d)", entry.ID))
}

func (h *PageHandler) ClockOut(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		redirectWithMessage(w, r, "/", "error", "Invalid entry ID")
		return
	}
	entry, err := h.clock.ClockOut(r.Context(), id)
	if err != nil {
		h.formError(w, r, "/", err)
		return
	}
	redirectWithMessage(w, r, "/", "success", fmt.Sprintf("Clocked out after %.2f hours", entry.Hours()))
}

// CreateSetupRecord handles the add forms on the setup page. kind is the
// trailing path segment of the form action.
func (h *PageHandler) CreateSetupRecord(kind string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseForm(); err != nil {
			redirectWithMessage(w, r, "/setup", "error", "Invalid form data")
			return
		}
		if err := h.createFromForm(r, kind); err != nil {
			h.formError(w, r, "/setup", err)
			return
		}
		redirectWithMessage(w, r, "/setup", "success", "Saved")
	}
}

func (h *PageHandler) createFromForm(r *http.Request, kind string) error {
	ctx := r.Context()
	name := r.FormValue("name")
	description := optionalString(r.FormValue("description"))

	var err error
	switch kind {
	case "departments":
		_, err = h.store.CreateDepartment(ctx, &models.Department{Name: name, Description: description})
	case "sub-departments":
		var deptID uint
		deptID, err = parseID("department_id", r.FormValue("department_id"))
		if err != nil {
			return err
		}
		_, err = h.store.CreateSubDepartment(ctx, &models.SubDepartment{Name: name, DepartmentID: deptID})
	case "production-lines":
		_, err = h.store.CreateProductionLine(ctx, &models.ProductionLine{Name: name, Description: description})
	case "workers":
		_, err = h.store.CreateWorker(ctx, &models.Worker{Name: name, EmployeeID: r.FormValue("employee_id")})
	case "projects":
		_, err = h.store.CreateProject(ctx, &models.Project{Name: name, Description: description})
	default:
		return fmt.Errorf("unknown record kind %q: %w", kind, store.ErrNotFound)
	}
	return err
}

func (h *PageHandler) formError(w http.ResponseWriter, r *http.Request, path string, err error) {
	if statusFor(err) == http.StatusInternalServerError {
		middleware.GetLogger(r.Context()).WithError(err).Error("Form submission failed")
		redirectWithMessage(w, r, path, "error", "Something went wrong, please try again")
		return
	}
	redirectWithMessage(w, r, path, "error", err.Error())
}
