package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"planttime/middleware"
	"planttime/store"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func writeJSON(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		middleware.GetLogger(r.Context()).WithError(err).Error("Failed to encode response")
	}
}

// statusFor maps store errors onto HTTP status codes. Conflicts are reported
// as 400 like any other rejected input.
func statusFor(err error) int {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, store.ErrConflict), errors.Is(err, store.ErrValidation):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	detail := err.Error()
	if status == http.StatusInternalServerError {
		middleware.GetLogger(r.Context()).WithError(err).Error("Request failed")
		detail = "Internal server error"
	}
	writeJSON(w, r, status, errorResponse{Detail: detail})
}

func notFound(w http.ResponseWriter, r *http.Request, what string) {
	writeJSON(w, r, http.StatusNotFound, errorResponse{Detail: what + " not found"})
}

// redirectWithMessage sends the browser back to path with a success or error
// message in the query string.
func redirectWithMessage(w http.ResponseWriter, r *http.Request, path, key, message string) {
	q := url.Values{}
	q.Set(key, message)
	http.Redirect(w, r, path+"?"+q.Encode(), http.StatusSeeOther)
}

// render executes a page into a buffer first so a template error still yields a clean 500.
func render(w http.ResponseWriter, r *http.Request, tmpl *template.Template, data map[string]interface{}) {
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "base", data); err != nil {
		middleware.GetLogger(r.Context()).WithError(err).Error("Failed to render page")
		http.Error(w, "Internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	buf.WriteTo(w)
}
