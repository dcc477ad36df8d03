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

// ListNotes returns a site's dashboard notes, newest first.
func (h *Handler) ListNotes(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}

	notes, err := h.queries.ListNotes(r.Context(), siteID)
	if err != nil {
		WriteInternalError(w, "Failed to list notes")
		return
	}
	if notes == nil {
		notes = []store.Note{}
	}
	WriteSuccess(w, notes, &Meta{Total: int64(len(notes))})
}

type noteRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// CreateNote adds a dashboard note.
func (h *Handler) CreateNote(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}

	var req noteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		WriteValidationError(w, map[string]string{"title": "required"})
		return
	}

	now := time.Now().UTC()
	note, err := h.queries.CreateNote(r.Context(), store.CreateNoteParams{
		SiteID:    siteID,
		Title:     req.Title,
		Content:   req.Content,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		WriteInternalError(w, "Failed to create note")
		return
	}
	WriteCreated(w, note)
}

// UpdateNote updates a note's title and content.
func (h *Handler) UpdateNote(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}
	noteID, err := idParam(r, "noteID")
	if err != nil {
		WriteBadRequest(w, "Invalid note ID", nil)
		return
	}

	if !h.noteBelongsToSite(w, r, noteID, siteID) {
		return
	}

	var req noteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Title == "" {
		WriteValidationError(w, map[string]string{"title": "required"})
		return
	}

	note, err := h.queries.UpdateNote(r.Context(), store.UpdateNoteParams{
		ID:        noteID,
		Title:     req.Title,
		Content:   req.Content,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		WriteInternalError(w, "Failed to update note")
		return
	}
	WriteSuccess(w, note, nil)
}

// DeleteNote removes a note.
func (h *Handler) DeleteNote(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}
	noteID, err := idParam(r, "noteID")
	if err != nil {
		WriteBadRequest(w, "Invalid note ID", nil)
		return
	}

	if !h.noteBelongsToSite(w, r, noteID, siteID) {
		return
	}

	if err := h.queries.DeleteNote(r.Context(), noteID); err != nil {
		WriteInternalError(w, "Failed to delete note")
		return
	}
	WriteNoContent(w)
}

// noteBelongsToSite verifies ownership, writing the error response itself.
func (h *Handler) noteBelongsToSite(w http.ResponseWriter, r *http.Request, noteID, siteID int64) bool {
	note, err := h.queries.GetNote(r.Context(), noteID)
	if errors.Is(err, sql.ErrNoRows) || (err == nil && note.SiteID != siteID) {
		WriteNotFound(w, "Note not found")
		return false
	}
	if err != nil {
		WriteInternalError(w, "Failed to load note")
		return false
	}
	return true
}
