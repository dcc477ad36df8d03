// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package public serves the visitor-facing surface: the published site
// payload, access-code unlocking, invitations and RSVP submission.
package public

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"

	"github.com/haasivu/haasivu/internal/analytics"
	"github.com/haasivu/haasivu/internal/guest"
	"github.com/haasivu/haasivu/internal/handler/api"
	"github.com/haasivu/haasivu/internal/middleware"
	"github.com/haasivu/haasivu/internal/service"
	"github.com/haasivu/haasivu/internal/session"
	"github.com/haasivu/haasivu/internal/site"
	"github.com/haasivu/haasivu/internal/util"
)

// Handler holds the dependencies of the public routes.
type Handler struct {
	sites    *site.Service
	guests   *guest.Service
	events   *service.EventService
	sessions *scs.SessionManager
	tracker  *analytics.Tracker
	unlocks  *middleware.GlobalRateLimiter
}

// Config bundles the dependencies a Handler needs.
type Config struct {
	Sites    *site.Service
	Guests   *guest.Service
	Events   *service.EventService
	Sessions *scs.SessionManager
	Tracker  *analytics.Tracker
}

// NewHandler creates the public handler. Unlock and RSVP posts get
// their own tight per-IP limiter on top of the global one.
func NewHandler(cfg Config) *Handler {
	return &Handler{
		sites:    cfg.Sites,
		guests:   cfg.Guests,
		events:   cfg.Events,
		sessions: cfg.Sessions,
		tracker:  cfg.Tracker,
		unlocks:  middleware.NewGlobalRateLimiter(1, 5),
	}
}

// Routes returns the visitor-facing router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/healthz", h.Health)
	r.Get("/s/{slug}", h.Site)
	r.Get("/i/{code}", h.Invitation)

	r.Group(func(r chi.Router) {
		r.Use(h.unlocks.Middleware())
		r.Post("/s/{slug}/unlock", h.Unlock)
		r.Post("/s/{slug}/rsvp", h.SubmitRSVP)
	})

	return r
}

// Health handles GET /healthz.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	api.WriteJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Site handles GET /s/{slug}. Unpublished and unknown slugs are
// indistinguishable; protected sites answer 401 until the session has
// been unlocked with the access code.
func (h *Handler) Site(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	payload, err := h.sites.PublicSite(r.Context(), slug)
	if err != nil {
		if errors.Is(err, site.ErrSiteNotFound) {
			api.WriteNotFound(w, "Sivua ei löytynyt")
			return
		}
		api.WriteInternalError(w, "Failed to load site")
		return
	}

	if payload.PasswordProtected && !session.SiteUnlocked(r.Context(), h.sessions, payload.SiteID) {
		api.WriteError(w, http.StatusUnauthorized, "access_code_required",
			"Tämä sivu on suojattu pääsykoodilla", nil)
		return
	}

	h.tracker.Record(r.Context(), payload.SiteID, r)
	api.WriteSuccess(w, payload, nil)
}

type unlockRequest struct {
	Code string `json:"code"`
}

// Unlock handles POST /s/{slug}/unlock. A correct code marks the site
// unlocked for this session; a wrong one re-prompts without lockout.
func (h *Handler) Unlock(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var req unlockRequest
	if !decodeBody(w, r, &req) {
		return
	}

	payload, err := h.sites.PublicSite(r.Context(), slug)
	if err != nil {
		if errors.Is(err, site.ErrSiteNotFound) {
			api.WriteNotFound(w, "Sivua ei löytynyt")
			return
		}
		api.WriteInternalError(w, "Failed to load site")
		return
	}

	if err := h.sites.VerifyAccessCode(r.Context(), payload.SiteID, req.Code); err != nil {
		if errors.Is(err, site.ErrInvalidAccessCode) {
			_ = h.events.LogSiteEvent(r.Context(), service.EventLevelWarning,
				"wrong access code", nil, util.ClientIP(r),
				map[string]any{"site_id": payload.SiteID})
			api.WriteError(w, http.StatusUnauthorized, "access_code_required",
				"Väärä pääsykoodi", nil)
			return
		}
		api.WriteInternalError(w, "Failed to verify access code")
		return
	}

	session.MarkSiteUnlocked(r.Context(), h.sessions, payload.SiteID)
	api.WriteSuccess(w, map[string]string{"status": "unlocked"}, nil)
}

// invitationView is the payload served to one invited card.
type invitationView struct {
	Card guest.CardDetail    `json:"card"`
	Site *site.PublicPayload `json:"site"`
}

// Invitation handles GET /i/{code}. The first request stamps the
// viewed-at time; later requests keep the original stamp.
func (h *Handler) Invitation(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	detail, err := h.guests.MarkViewed(r.Context(), code)
	if err != nil {
		if errors.Is(err, guest.ErrCardNotFound) {
			api.WriteNotFound(w, "Kutsua ei löytynyt")
			return
		}
		api.WriteInternalError(w, "Failed to load invitation")
		return
	}

	view := invitationView{Card: detail}

	// An invitation link also opens a protected site: the invite code
	// is the visitor's credential.
	srow, err := h.sites.Get(r.Context(), detail.Card.SiteID)
	if err == nil && srow.Published {
		if payload, perr := h.sites.PublicSite(r.Context(), srow.Slug); perr == nil {
			session.MarkSiteUnlocked(r.Context(), h.sessions, payload.SiteID)
			h.tracker.Record(r.Context(), payload.SiteID, r)
			view.Site = payload
		}
	}

	api.WriteSuccess(w, view, nil)
}

type rsvpRequest struct {
	Code      string               `json:"code"`
	Responses []guest.RsvpResponse `json:"responses"`
}

// SubmitRSVP handles POST /s/{slug}/rsvp. The invite code names the
// card; re-submitting overwrites the earlier answers.
func (h *Handler) SubmitRSVP(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")

	var req rsvpRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Code == "" || len(req.Responses) == 0 {
		api.WriteBadRequest(w, "code and responses are required", nil)
		return
	}

	payload, err := h.sites.PublicSite(r.Context(), slug)
	if err != nil {
		if errors.Is(err, site.ErrSiteNotFound) {
			api.WriteNotFound(w, "Sivua ei löytynyt")
			return
		}
		api.WriteInternalError(w, "Failed to load site")
		return
	}

	// The card must belong to this site before anything is written.
	existing, err := h.guests.CardByCode(r.Context(), req.Code)
	if err != nil || existing.Card.SiteID != payload.SiteID {
		api.WriteNotFound(w, "Kutsua ei löytynyt")
		return
	}

	detail, err := h.guests.SubmitRSVP(r.Context(), req.Code, req.Responses)
	if err != nil {
		switch {
		case errors.Is(err, guest.ErrCardNotFound):
			api.WriteNotFound(w, "Kutsua ei löytynyt")
		case errors.Is(err, guest.ErrGuestNotFound):
			api.WriteNotFound(w, "Vierasta ei löytynyt")
		case errors.Is(err, guest.ErrInvalidStatus):
			api.WriteValidationError(w, map[string]string{"status": "unknown RSVP status"})
		default:
			api.WriteInternalError(w, "Failed to submit RSVP")
		}
		return
	}

	_ = h.events.LogRsvpEvent(r.Context(), service.EventLevelInfo,
		"rsvp submitted", nil, util.ClientIP(r),
		map[string]any{"site_id": payload.SiteID, "card_id": detail.Card.ID})

	api.WriteSuccess(w, detail, nil)
}

// decodeBody decodes a JSON request body, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		api.WriteBadRequest(w, "Invalid JSON body", nil)
		return false
	}
	return true
}
