package handlers

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"planttime/store"

	"github.com/go-chi/chi/v5"
)

func parseID(field, raw string) (uint, error) {
	id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%s must be a positive integer: %w", field, store.ErrValidation)
	}
	return uint(id), nil
}

func pathID(r *http.Request) (uint, error) {
	return parseID("id", chi.URLParam(r, "id"))
}

// optionalID reads an identifier query parameter; absent means zero.
func optionalID(r *http.Request, key string) (uint, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return 0, nil
	}
	return parseID(key, raw)
}

func queryInt(r *http.Request, key string, defaultValue int) (int, error) {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return defaultValue, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, store.ErrValidation)
	}
	return v, nil
}

// pageFromQuery reads skip and limit, defaulting limit to defaultLimit.
func pageFromQuery(r *http.Request, defaultLimit int) (store.Page, error) {
	skip, err := queryInt(r, "skip", 0)
	if err != nil {
		return store.Page{}, err
	}
	limit, err := queryInt(r, "limit", defaultLimit)
	if err != nil {
		return store.Page{}, err
	}
	return store.NewPage(skip, limit)
}

// optionalString returns nil for a blank form value.
func optionalString(value string) *string {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	return &value
}

func validationError(msg string) error {
	return fmt.Errorf("%s: %w", msg, store.ErrValidation)
}
