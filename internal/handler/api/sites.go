// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/haasivu/haasivu/internal/middleware"
	"github.com/haasivu/haasivu/internal/service"
	"github.com/haasivu/haasivu/internal/site"
	"github.com/haasivu/haasivu/internal/store"
	"github.com/haasivu/haasivu/internal/theme"
	"github.com/haasivu/haasivu/internal/util"
)

// siteView is the JSON shape of a site in API responses. The access code
// hash stays server-side; only the protection flag is exposed.
type siteView struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Slug              string     `json:"slug"`
	Theme             string     `json:"theme"`
	Template          string     `json:"template"`
	Published         bool       `json:"published"`
	PublishedAt       *time.Time `json:"published_at,omitempty"`
	ScheduledAt       *time.Time `json:"scheduled_at,omitempty"`
	PasswordProtected bool       `json:"password_protected"`
	CreatedAt         time.Time  `json:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at"`
}

func toSiteView(s store.Site) siteView {
	return siteView{
		ID:                s.ID,
		Name:              s.Name,
		Slug:              s.Slug,
		Theme:             s.Theme,
		Template:          s.Template,
		Published:         s.Published,
		PublishedAt:       util.TimePtrFromNull(s.PublishedAt),
		ScheduledAt:       util.TimePtrFromNull(s.ScheduledAt),
		PasswordProtected: s.PasswordProtected,
		CreatedAt:         s.CreatedAt,
		UpdatedAt:         s.UpdatedAt,
	}
}

// writeSiteError maps site service errors onto API responses.
func writeSiteError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, site.ErrSiteNotFound):
		WriteNotFound(w, "Site not found")
	case errors.Is(err, site.ErrBlockNotFound):
		WriteNotFound(w, "Block not found")
	case errors.Is(err, site.ErrInvalidSlug):
		WriteValidationError(w, map[string]string{"slug": "invalid"})
	case errors.Is(err, site.ErrSlugTaken):
		WriteConflict(w, "Slug already in use")
	case errors.Is(err, site.ErrUnknownTheme):
		WriteValidationError(w, map[string]string{"theme": "unknown"})
	case errors.Is(err, site.ErrUnknownTemplate):
		WriteValidationError(w, map[string]string{"template": "unknown"})
	case errors.Is(err, site.ErrTemplateMismatch):
		WriteValidationError(w, map[string]string{"template": "belongs to another theme"})
	case errors.Is(err, site.ErrUnknownBlockType):
		WriteValidationError(w, map[string]string{"type": "unknown block type"})
	case errors.Is(err, site.ErrScheduleInPast):
		WriteValidationError(w, map[string]string{"scheduled_at": "must be in the future"})
	default:
		WriteInternalError(w, "Request failed")
	}
}

// ListSites returns every site.
func (h *Handler) ListSites(w http.ResponseWriter, r *http.Request) {
	sites, err := h.sites.List(r.Context())
	if err != nil {
		WriteInternalError(w, "Failed to list sites")
		return
	}

	views := make([]siteView, 0, len(sites))
	for _, s := range sites {
		views = append(views, toSiteView(s))
	}
	WriteSuccess(w, views, &Meta{Total: int64(len(views))})
}

type createSiteRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// CreateSite creates a new site.
func (h *Handler) CreateSite(w http.ResponseWriter, r *http.Request) {
	var req createSiteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		WriteValidationError(w, map[string]string{"name": "required"})
		return
	}

	created, err := h.sites.Create(r.Context(), req.Name, req.Slug)
	if err != nil {
		writeSiteError(w, err)
		return
	}

	_ = h.events.LogSiteEvent(r.Context(), service.EventLevelInfo, "site created",
		middleware.GetUserIDPtr(r), util.ClientIP(r),
		map[string]any{"site_id": created.ID, "slug": created.Slug})

	WriteCreated(w, toSiteView(created))
}

// GetSite returns one site.
func (h *Handler) GetSite(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}

	s, err := h.sites.Get(r.Context(), siteID)
	if err != nil {
		writeSiteError(w, err)
		return
	}
	WriteSuccess(w, toSiteView(s), nil)
}

type updateSiteRequest struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// UpdateSite updates a site's name and slug.
func (h *Handler) UpdateSite(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}

	var req updateSiteRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		WriteValidationError(w, map[string]string{"name": "required"})
		return
	}

	updated, err := h.sites.UpdateSettings(r.Context(), site.UpdateSettingsParams{
		ID:   siteID,
		Name: req.Name,
		Slug: req.Slug,
	})
	if err != nil {
		writeSiteError(w, err)
		return
	}
	WriteSuccess(w, toSiteView(updated), nil)
}

// DeleteSite removes a site.
func (h *Handler) DeleteSite(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}

	if err := h.sites.Delete(r.Context(), siteID); err != nil {
		writeSiteError(w, err)
		return
	}

	_ = h.events.LogSiteEvent(r.Context(), service.EventLevelInfo, "site deleted",
		middleware.GetUserIDPtr(r), util.ClientIP(r),
		map[string]any{"site_id": siteID})

	WriteNoContent(w)
}

// ListThemes returns the theme catalog.
func (h *Handler) ListThemes(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, theme.List(), nil)
}

// ListTemplates returns the template catalog.
func (h *Handler) ListTemplates(w http.ResponseWriter, _ *http.Request) {
	WriteSuccess(w, theme.ListTemplates(), nil)
}

type setThemeRequest struct {
	Theme string `json:"theme"`
}

// SetTheme switches a site's theme.
func (h *Handler) SetTheme(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}

	var req setThemeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.sites.SetTheme(r.Context(), siteID, req.Theme)
	if err != nil {
		writeSiteError(w, err)
		return
	}
	WriteSuccess(w, toSiteView(updated), nil)
}

type setTemplateRequest struct {
	Template string `json:"template"`
}

// SetTemplate switches a site's template within its theme.
func (h *Handler) SetTemplate(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}

	var req setTemplateRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.sites.SetTemplate(r.Context(), siteID, req.Template)
	if err != nil {
		writeSiteError(w, err)
		return
	}
	WriteSuccess(w, toSiteView(updated), nil)
}

// Publish makes a site publicly visible.
func (h *Handler) Publish(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}

	updated, err := h.sites.Publish(r.Context(), siteID)
	if err != nil {
		writeSiteError(w, err)
		return
	}

	_ = h.events.LogSiteEvent(r.Context(), service.EventLevelInfo, "site published",
		middleware.GetUserIDPtr(r), util.ClientIP(r),
		map[string]any{"site_id": siteID, "slug": updated.Slug})

	WriteSuccess(w, toSiteView(updated), nil)
}

// Unpublish takes a site offline.
func (h *Handler) Unpublish(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}

	updated, err := h.sites.Unpublish(r.Context(), siteID)
	if err != nil {
		writeSiteError(w, err)
		return
	}

	_ = h.events.LogSiteEvent(r.Context(), service.EventLevelInfo, "site unpublished",
		middleware.GetUserIDPtr(r), util.ClientIP(r),
		map[string]any{"site_id": siteID, "slug": updated.Slug})

	WriteSuccess(w, toSiteView(updated), nil)
}

type scheduleRequest struct {
	ScheduledAt *time.Time `json:"scheduled_at"`
}

// Schedule sets or clears a future publish time.
func (h *Handler) Schedule(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}

	var req scheduleRequest
	if !decodeBody(w, r, &req) {
		return
	}

	var (
		updated store.Site
		err     error
	)
	if req.ScheduledAt == nil {
		updated, err = h.sites.CancelSchedule(r.Context(), siteID)
	} else {
		updated, err = h.sites.Schedule(r.Context(), siteID, *req.ScheduledAt)
	}
	if err != nil {
		writeSiteError(w, err)
		return
	}
	WriteSuccess(w, toSiteView(updated), nil)
}

type accessCodeRequest struct {
	AccessCode string `json:"access_code"`
}

// SetAccessCode enables or disables access-code protection.
func (h *Handler) SetAccessCode(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}

	var req accessCodeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.sites.SetAccessCode(r.Context(), siteID, req.AccessCode)
	if err != nil {
		writeSiteError(w, err)
		return
	}

	_ = h.events.LogSiteEvent(r.Context(), service.EventLevelInfo, "site access code changed",
		middleware.GetUserIDPtr(r), util.ClientIP(r),
		map[string]any{"site_id": siteID, "protected": updated.PasswordProtected})

	WriteSuccess(w, toSiteView(updated), nil)
}

// SiteVisitStats returns visitor analytics for a site.
func (h *Handler) SiteVisitStats(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}
	if _, err := h.sites.Get(r.Context(), siteID); err != nil {
		writeSiteError(w, err)
		return
	}

	stats, err := h.tracker.Stats(r.Context(), siteID)
	if err != nil {
		WriteInternalError(w, "Failed to load visit stats")
		return
	}
	WriteSuccess(w, stats, nil)
}
