// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/haasivu/haasivu/internal/store"
)

const defaultEventLimit = 50

// eventView is the JSON shape of one event-log row.
type eventView struct {
	ID        int64          `json:"id"`
	Level     string         `json:"level"`
	Category  string         `json:"category"`
	Message   string         `json:"message"`
	UserID    *int64         `json:"user_id,omitempty"`
	IPAddress string         `json:"ip_address,omitempty"`
	Metadata  map[string]any `json:"metadata,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

func toEventView(e store.Event) eventView {
	v := eventView{
		ID:        e.ID,
		Level:     e.Level,
		Category:  e.Category,
		Message:   e.Message,
		IPAddress: e.IpAddress,
		CreatedAt: e.CreatedAt,
	}
	if e.UserID.Valid {
		v.UserID = &e.UserID.Int64
	}
	if e.Metadata != "" {
		var meta map[string]any
		if err := json.Unmarshal([]byte(e.Metadata), &meta); err == nil {
			v.Metadata = meta
		}
	}
	return v
}

// ListEvents handles GET /api/v1/events. It returns the newest
// event-log rows for the dashboard activity feed.
func (h *Handler) ListEvents(w http.ResponseWriter, r *http.Request) {
	limit := int64(defaultEventLimit)
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || n < 1 || n > 500 {
			WriteBadRequest(w, "limit must be between 1 and 500", nil)
			return
		}
		limit = n
	}

	events, err := h.queries.ListRecentEvents(r.Context(), limit)
	if err != nil {
		WriteInternalError(w, "failed to list events")
		return
	}

	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, toEventView(e))
	}
	WriteSuccess(w, views, &Meta{Total: int64(len(views))})
}
