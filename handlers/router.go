package handlers

import (
	"net/http"

	"planttime/middleware"
	"planttime/web"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
)

// NewRouter wires every route onto a chi router.
func NewRouter(api *APIHandler, pages *PageHandler, logger *logrus.Logger) http.Handler {
	router := chi.NewRouter()
	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(middleware.RequestLogger(logger))
	router.Use(chimiddleware.Recoverer)

	router.Handle("/static/*", http.StripPrefix("/static/", web.Static()))
	router.Get("/healthz", api.Health)

	// Pages
	router.Get("/", pages.Dashboard)
	router.Get("/setup", pages.Setup)
	router.Get("/reports", pages.Reports)
	router.Post("/clock-in", pages.ClockIn)
	router.Post("/clock-out/{id}", pages.ClockOut)
	for _, kind := range []string{"departments", "sub-departments", "production-lines", "workers", "projects"} {
		router.Post("/setup/"+kind, pages.CreateSetupRecord(kind))
	}

	router.Route("/api", func(r chi.Router) {
		r.Post("/departments/", api.CreateDepartment)
		r.Get("/departments/", api.ListDepartments)
		r.Get("/departments/{id}", api.GetDepartment)

		r.Post("/sub-departments/", api.CreateSubDepartment)
		r.Get("/sub-departments/", api.ListSubDepartments)

		r.Post("/production-lines/", api.CreateProductionLine)
		r.Get("/production-lines/", api.ListProductionLines)

		r.Post("/workers/", api.CreateWorker)
		r.Get("/workers/", api.ListWorkers)
		r.Get("/workers/{id}", api.GetWorker)

		r.Post("/projects/", api.CreateProject)
		r.Get("/projects/", api.ListProjects)
		r.Get("/projects/{id}", api.GetProject)

		r.Post("/time-entries/", api.CreateTimeEntry)
		r.Get("/time-entries/", api.ListTimeEntries)
		r.Get("/time-entries/active/", api.ListActiveTimeEntries)
		r.Get("/time-entries/{id}", api.GetTimeEntry)
		r.Put("/time-entries/{id}", api.UpdateTimeEntry)

		r.Post("/clock-in/", api.ClockIn)
		r.Post("/clock-out/{id}", api.ClockOut)
	})

	return router
}
