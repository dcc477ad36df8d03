// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"net/http"
	"time"

	"github.com/haasivu/haasivu/internal/store"
)

// ListProgramEvents returns the wedding-day program in order.
func (h *Handler) ListProgramEvents(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}

	events, err := h.queries.ListProgramEvents(r.Context(), siteID)
	if err != nil {
		WriteInternalError(w, "Failed to list program events")
		return
	}
	if events == nil {
		events = []store.ProgramEvent{}
	}
	WriteSuccess(w, events, &Meta{Total: int64(len(events))})
}

type programEventRequest struct {
	Time        string `json:"time"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

func (req programEventRequest) validate() map[string]string {
	details := make(map[string]string)
	if req.Time == "" {
		details["time"] = "required"
	}
	if req.Title == "" {
		details["title"] = "required"
	}
	if len(details) == 0 {
		return nil
	}
	return details
}

// CreateProgramEvent appends an entry to the wedding-day program.
func (h *Handler) CreateProgramEvent(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}

	var req programEventRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if details := req.validate(); details != nil {
		WriteValidationError(w, details)
		return
	}

	maxPos, err := h.queries.MaxProgramEventPosition(r.Context(), siteID)
	if err != nil {
		WriteInternalError(w, "Failed to create program event")
		return
	}

	now := time.Now().UTC()
	event, err := h.queries.CreateProgramEvent(r.Context(), store.CreateProgramEventParams{
		SiteID:      siteID,
		Time:        req.Time,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		Position:    maxPos + 1,
		CreatedAt:   now,
		UpdatedAt:   now,
	})
	if err != nil {
		WriteInternalError(w, "Failed to create program event")
		return
	}
	WriteCreated(w, event)
}

// UpdateProgramEvent updates a program entry.
func (h *Handler) UpdateProgramEvent(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}
	eventID, err := idParam(r, "eventID")
	if err != nil {
		WriteBadRequest(w, "Invalid event ID", nil)
		return
	}

	if _, ok := h.programEventForSite(w, r, eventID, siteID); !ok {
		return
	}

	var req programEventRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if details := req.validate(); details != nil {
		WriteValidationError(w, details)
		return
	}

	event, err := h.queries.UpdateProgramEvent(r.Context(), store.UpdateProgramEventParams{
		ID:          eventID,
		Time:        req.Time,
		Title:       req.Title,
		Description: req.Description,
		Location:    req.Location,
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		WriteInternalError(w, "Failed to update program event")
		return
	}
	WriteSuccess(w, event, nil)
}

// DeleteProgramEvent removes a program entry and closes the gap.
func (h *Handler) DeleteProgramEvent(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}
	eventID, err := idParam(r, "eventID")
	if err != nil {
		WriteBadRequest(w, "Invalid event ID", nil)
		return
	}

	event, ok := h.programEventForSite(w, r, eventID, siteID)
	if !ok {
		return
	}

	if err := h.queries.DeleteProgramEvent(r.Context(), siteID, eventID, event.Position); err != nil {
		WriteInternalError(w, "Failed to delete program event")
		return
	}
	WriteNoContent(w)
}

// programEventForSite fetches an entry and verifies ownership, writing the
// error response itself.
func (h *Handler) programEventForSite(w http.ResponseWriter, r *http.Request, eventID, siteID int64) (store.ProgramEvent, bool) {
	event, err := h.queries.GetProgramEvent(r.Context(), eventID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && event.SiteID != siteID) {
		WriteNotFound(w, "Program event not found")
		return store.ProgramEvent{}, false
	}
	if err != nil {
		WriteInternalError(w, "Failed to load program event")
		return store.ProgramEvent{}, false
	}
	return event, true
}
