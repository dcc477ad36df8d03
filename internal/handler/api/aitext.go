// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"net/http"

	"github.com/haasivu/haasivu/internal/aitext"
)

type suggestRequest struct {
	Kind string `json:"kind"`
	Hint string `json:"hint"`
}

type suggestResponse struct {
	Kind string `json:"kind"`
	Text string `json:"text"`
}

// SuggestText handles POST /api/v1/ai/suggest. It drafts Finnish copy
// for a text block; available only when an API key is configured.
func (h *Handler) SuggestText(w http.ResponseWriter, r *http.Request) {
	if !h.suggester.Enabled() {
		WriteServiceUnavailable(w, "text suggestions are not configured")
		return
	}

	var req suggestRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !aitext.IsValidKind(req.Kind) {
		WriteValidationError(w, map[string]string{"kind": "unknown suggestion kind"})
		return
	}

	text, err := h.suggester.Suggest(r.Context(), req.Kind, req.Hint)
	if err != nil {
		WriteServiceUnavailable(w, "text suggestion failed")
		return
	}

	WriteSuccess(w, suggestResponse{Kind: req.Kind, Text: text}, nil)
}
