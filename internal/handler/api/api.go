// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package api provides the REST API handlers for the wedding-site builder.
package api

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/haasivu/haasivu/internal/aitext"
	"github.com/haasivu/haasivu/internal/analytics"
	"github.com/haasivu/haasivu/internal/guest"
	"github.com/haasivu/haasivu/internal/imaging"
	"github.com/haasivu/haasivu/internal/middleware"
	"github.com/haasivu/haasivu/internal/service"
	"github.com/haasivu/haasivu/internal/site"
	"github.com/haasivu/haasivu/internal/store"
	"github.com/haasivu/haasivu/internal/version"
)

// Handler holds shared dependencies for all API handlers.
type Handler struct {
	db        *sql.DB
	queries   *store.Queries
	sites     *site.Service
	guests    *guest.Service
	events    *service.EventService
	sessions  *scs.SessionManager
	guard     *middleware.LoginProtection
	processor *imaging.Processor
	suggester *aitext.Suggester
	tracker   *analytics.Tracker
}

// Config bundles the dependencies a Handler needs.
type Config struct {
	DB        *sql.DB
	Sites     *site.Service
	Guests    *guest.Service
	Events    *service.EventService
	Sessions  *scs.SessionManager
	Guard     *middleware.LoginProtection
	Processor *imaging.Processor
	Suggester *aitext.Suggester
	Tracker   *analytics.Tracker
}

// NewHandler creates a new API handler.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		db:        cfg.DB,
		queries:   store.New(cfg.DB),
		sites:     cfg.Sites,
		guests:    cfg.Guests,
		events:    cfg.Events,
		sessions:  cfg.Sessions,
		guard:     cfg.Guard,
		processor: cfg.Processor,
		suggester: cfg.Suggester,
		tracker:   cfg.Tracker,
	}
}

// Response is the standard API response wrapper.
type Response struct {
	Data any   `json:"data,omitempty"`
	Meta *Meta `json:"meta,omitempty"`
}

// Meta contains list metadata.
type Meta struct {
	Total int64 `json:"total,omitempty"`
}

// ErrorResponse is the standard API error response.
type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

// ErrorDetail contains error information.
type ErrorDetail struct {
	Code    string            `json:"code"`
	Message string            `json:"message"`
	Details map[string]string `json:"details,omitempty"`
}

// WriteJSON writes a JSON response with the given status code.
func WriteJSON(w http.ResponseWriter, statusCode int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(data)
}

// WriteSuccess writes a successful JSON response.
func WriteSuccess(w http.ResponseWriter, data any, meta *Meta) {
	WriteJSON(w, http.StatusOK, Response{Data: data, Meta: meta})
}

// WriteCreated writes a 201 Created JSON response.
func WriteCreated(w http.ResponseWriter, data any) {
	WriteJSON(w, http.StatusCreated, Response{Data: data})
}

// WriteNoContent writes a 204 No Content response.
func WriteNoContent(w http.ResponseWriter) {
	w.WriteHeader(http.StatusNoContent)
}

// WriteError writes an error JSON response.
func WriteError(w http.ResponseWriter, statusCode int, code, message string, details map[string]string) {
	WriteJSON(w, statusCode, ErrorResponse{
		Error: ErrorDetail{Code: code, Message: message, Details: details},
	})
}

// WriteBadRequest writes a 400 Bad Request response.
func WriteBadRequest(w http.ResponseWriter, message string, details map[string]string) {
	WriteError(w, http.StatusBadRequest, "bad_request", message, details)
}

// WriteNotFound writes a 404 Not Found response.
func WriteNotFound(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusNotFound, "not_found", message, nil)
}

// WriteUnauthorized writes a 401 Unauthorized response.
func WriteUnauthorized(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusUnauthorized, "unauthorized", message, nil)
}

// WriteForbidden writes a 403 Forbidden response.
func WriteForbidden(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusForbidden, "forbidden", message, nil)
}

// WriteConflict writes a 409 Conflict response.
func WriteConflict(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusConflict, "conflict", message, nil)
}

// WriteValidationError writes a 422 Unprocessable Entity response with
// field errors.
func WriteValidationError(w http.ResponseWriter, fieldErrors map[string]string) {
	WriteError(w, http.StatusUnprocessableEntity, "validation_error", "Validation failed", fieldErrors)
}

// WriteInternalError writes a 500 Internal Server Error response.
func WriteInternalError(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusInternalServerError, "internal_error", message, nil)
}

// WriteServiceUnavailable writes a 503 Service Unavailable response.
func WriteServiceUnavailable(w http.ResponseWriter, message string) {
	WriteError(w, http.StatusServiceUnavailable, "unavailable", message, nil)
}

// decodeBody decodes a JSON request body into dst. On failure a 400 is
// written and false returned.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		WriteBadRequest(w, "Invalid JSON body", nil)
		return false
	}
	return true
}

// idParam parses a numeric chi URL parameter.
func idParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// siteIDParam parses the {siteID} URL parameter, writing a 400 on failure.
func siteIDParam(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := idParam(r, "siteID")
	if err != nil {
		WriteBadRequest(w, "Invalid site ID", nil)
		return 0, false
	}
	return id, true
}

// StatusResponse contains API status information.
type StatusResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Status returns the API status.
func (h *Handler) Status(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, StatusResponse{
		Status:  "ok",
		Version: version.Version,
	}, nil)
}
