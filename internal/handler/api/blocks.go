// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/haasivu/haasivu/internal/block"
	"github.com/haasivu/haasivu/internal/site"
	"github.com/haasivu/haasivu/internal/theme"
)

// ListBlockTypes returns the block type catalog in builder order.
func (h *Handler) ListBlockTypes(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, block.Types(), nil)
}

// BlockDefaults previews the payload a new block of the given type would
// get under the site's current theme and template.
func (h *Handler) BlockDefaults(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}

	blockType := block.Type(r.URL.Query().Get("type"))
	if !block.IsValidType(blockType) {
		WriteValidationError(w, map[string]string{"type": "unknown block type"})
		return
	}

	s, err := h.sites.Get(r.Context(), siteID)
	if err != nil {
		writeSiteError(w, err)
		return
	}

	data, err := theme.EffectiveDefaults(blockType, theme.GetTemplate(s.Template))
	if err != nil {
		WriteInternalError(w, "Failed to build defaults")
		return
	}
	WriteSuccess(w, map[string]any{"type": blockType, "data": data}, nil)
}

// ListBlocks returns a site's blocks in page order.
func (h *Handler) ListBlocks(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}

	blocks, err := h.sites.Blocks(r.Context(), siteID)
	if err != nil {
		writeSiteError(w, err)
		return
	}
	WriteSuccess(w, blocks, &Meta{Total: int64(len(blocks))})
}

type addBlockRequest struct {
	Type string `json:"type"`
}

// AddBlock appends a new block to the end of the page.
func (h *Handler) AddBlock(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}

	var req addBlockRequest
	if !decodeBody(w, r, &req) {
		return
	}

	created, err := h.sites.AddBlock(r.Context(), siteID, block.Type(req.Type))
	if err != nil {
		writeSiteError(w, err)
		return
	}
	WriteCreated(w, created)
}

type editBlockRequest struct {
	Data json.RawMessage `json:"data"`
}

// EditBlock replaces a block's payload.
func (h *Handler) EditBlock(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}
	blockID := chi.URLParam(r, "blockID")

	var req editBlockRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.Data) == 0 {
		WriteValidationError(w, map[string]string{"data": "required"})
		return
	}

	updated, err := h.sites.EditBlock(r.Context(), siteID, blockID, req.Data)
	if err != nil {
		writeBlockEditError(w, err)
		return
	}
	WriteSuccess(w, updated, nil)
}

// writeBlockEditError distinguishes payload validation failures from the
// shared service errors. Anything else is an internal failure, not the
// caller's fault.
func writeBlockEditError(w http.ResponseWriter, err error) {
	if errors.Is(err, site.ErrInvalidBlockData) {
		WriteValidationError(w, map[string]string{"data": err.Error()})
		return
	}
	writeSiteError(w, err)
}

type moveBlockRequest struct {
	Direction string `json:"direction"`
}

// MoveBlock moves a block one position up or down.
func (h *Handler) MoveBlock(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}
	blockID := chi.URLParam(r, "blockID")

	var req moveBlockRequest
	if !decodeBody(w, r, &req) {
		return
	}

	dir := site.Direction(req.Direction)
	if dir != site.DirectionUp && dir != site.DirectionDown {
		WriteValidationError(w, map[string]string{"direction": "must be up or down"})
		return
	}

	if err := h.sites.MoveBlock(r.Context(), siteID, blockID, dir); err != nil {
		writeSiteError(w, err)
		return
	}

	blocks, err := h.sites.Blocks(r.Context(), siteID)
	if err != nil {
		writeSiteError(w, err)
		return
	}
	WriteSuccess(w, blocks, &Meta{Total: int64(len(blocks))})
}

// DeleteBlock removes a block from the page.
func (h *Handler) DeleteBlock(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}
	blockID := chi.URLParam(r, "blockID")

	if err := h.sites.DeleteBlock(r.Context(), siteID, blockID); err != nil {
		writeSiteError(w, err)
		return
	}
	WriteNoContent(w)
}
