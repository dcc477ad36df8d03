// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/haasivu/haasivu/internal/guest"
	"github.com/haasivu/haasivu/internal/middleware"
	"github.com/haasivu/haasivu/internal/service"
	"github.com/haasivu/haasivu/internal/store"
	"github.com/haasivu/haasivu/internal/util"
)

// cardView is the JSON shape of a guest card.
type cardView struct {
	ID                   int64       `json:"id"`
	SiteID               int64       `json:"site_id"`
	Name                 string      `json:"name"`
	Email                string      `json:"email"`
	InviteCode           string      `json:"invite_code"`
	InvitationSent       bool        `json:"invitation_sent"`
	InvitationSentDate   *time.Time  `json:"invitation_sent_date,omitempty"`
	InvitationViewed     bool        `json:"invitation_viewed"`
	InvitationViewedDate *time.Time  `json:"invitation_viewed_date,omitempty"`
	RsvpStatus           string      `json:"rsvp_status,omitempty"`
	RsvpDate             *time.Time  `json:"rsvp_date,omitempty"`
	Confirmed            bool        `json:"confirmed"`
	Guests               []guestView `json:"guests"`
}

// guestView is the JSON shape of an individual guest.
type guestView struct {
	ID          int64      `json:"id"`
	Name        string     `json:"name"`
	RsvpStatus  string     `json:"rsvp_status,omitempty"`
	Dietary     string     `json:"dietary,omitempty"`
	Message     string     `json:"message,omitempty"`
	RespondedAt *time.Time `json:"responded_at,omitempty"`
}

func toGuestView(g store.Guest) guestView {
	return guestView{
		ID:          g.ID,
		Name:        g.Name,
		RsvpStatus:  util.StringFromNull(g.RsvpStatus),
		Dietary:     g.Dietary,
		Message:     g.Message,
		RespondedAt: util.TimePtrFromNull(g.RespondedAt),
	}
}

func toCardView(d guest.CardDetail) cardView {
	guests := make([]guestView, 0, len(d.Guests))
	for _, g := range d.Guests {
		guests = append(guests, toGuestView(g))
	}
	return cardView{
		ID:                   d.Card.ID,
		SiteID:               d.Card.SiteID,
		Name:                 d.Card.Name,
		Email:                d.Card.Email,
		InviteCode:           d.Card.InviteCode,
		InvitationSent:       d.Card.InvitationSent,
		InvitationSentDate:   util.TimePtrFromNull(d.Card.InvitationSentDate),
		InvitationViewed:     d.Card.InvitationViewed,
		InvitationViewedDate: util.TimePtrFromNull(d.Card.InvitationViewedDate),
		RsvpStatus:           util.StringFromNull(d.Card.RsvpStatus),
		RsvpDate:             util.TimePtrFromNull(d.Card.RsvpDate),
		Confirmed:            d.Card.Confirmed,
		Guests:               guests,
	}
}

// writeGuestError maps guest service errors onto API responses.
func writeGuestError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, guest.ErrCardNotFound):
		WriteNotFound(w, "Guest card not found")
	case errors.Is(err, guest.ErrGuestNotFound):
		WriteNotFound(w, "Guest not found")
	case errors.Is(err, guest.ErrWrongSite):
		WriteNotFound(w, "Guest card not found")
	case errors.Is(err, guest.ErrInvalidStatus):
		WriteValidationError(w, map[string]string{"status": "must be tulossa or ei_tule"})
	default:
		WriteInternalError(w, "Request failed")
	}
}

// ListGuestCards returns a site's guest cards with their guests.
func (h *Handler) ListGuestCards(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}

	cards, err := h.guests.ListCards(r.Context(), siteID)
	if err != nil {
		writeGuestError(w, err)
		return
	}

	views := make([]cardView, 0, len(cards))
	for _, c := range cards {
		views = append(views, toCardView(c))
	}
	WriteSuccess(w, views, &Meta{Total: int64(len(views))})
}

type createCardRequest struct {
	Name   string             `json:"name"`
	Email  string             `json:"email"`
	Guests []guest.GuestInput `json:"guests"`
}

// CreateGuestCard adds a guest card with its guests.
func (h *Handler) CreateGuestCard(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}

	var req createCardRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		WriteValidationError(w, map[string]string{"name": "required"})
		return
	}

	created, err := h.guests.AddCard(r.Context(), guest.AddCardParams{
		SiteID: siteID,
		Name:   req.Name,
		Email:  req.Email,
		Guests: req.Guests,
	})
	if err != nil {
		writeGuestError(w, err)
		return
	}

	_ = h.events.LogGuestEvent(r.Context(), service.EventLevelInfo, "guest card created",
		middleware.GetUserIDPtr(r), util.ClientIP(r),
		map[string]any{"site_id": siteID, "card_id": created.Card.ID})

	WriteCreated(w, toCardView(created))
}

// GetGuestCard returns one guest card.
func (h *Handler) GetGuestCard(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}
	cardID, err := idParam(r, "cardID")
	if err != nil {
		WriteBadRequest(w, "Invalid card ID", nil)
		return
	}

	detail, err := h.guests.Card(r.Context(), cardID)
	if err != nil {
		writeGuestError(w, err)
		return
	}
	if detail.Card.SiteID != siteID {
		WriteNotFound(w, "Guest card not found")
		return
	}
	WriteSuccess(w, toCardView(detail), nil)
}

type updateCardRequest struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Confirmed bool   `json:"confirmed"`
}

// UpdateGuestCard updates a card's contact details and confirmation flag.
func (h *Handler) UpdateGuestCard(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}
	cardID, err := idParam(r, "cardID")
	if err != nil {
		WriteBadRequest(w, "Invalid card ID", nil)
		return
	}

	var req updateCardRequest
	if !decodeBody(w, r, &req) {
		return
	}

	updated, err := h.guests.UpdateCard(r.Context(), guest.UpdateCardParams{
		ID:        cardID,
		SiteID:    siteID,
		Name:      req.Name,
		Email:     req.Email,
		Confirmed: req.Confirmed,
	})
	if err != nil {
		writeGuestError(w, err)
		return
	}
	WriteSuccess(w, toCardView(guest.CardDetail{Card: updated}), nil)
}

// DeleteGuestCard removes a card and its guests.
func (h *Handler) DeleteGuestCard(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}
	cardID, err := idParam(r, "cardID")
	if err != nil {
		WriteBadRequest(w, "Invalid card ID", nil)
		return
	}

	if err := h.guests.DeleteCard(r.Context(), siteID, cardID); err != nil {
		writeGuestError(w, err)
		return
	}
	WriteNoContent(w)
}

// AddGuest adds an individual guest to a card.
func (h *Handler) AddGuest(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}
	cardID, err := idParam(r, "cardID")
	if err != nil {
		WriteBadRequest(w, "Invalid card ID", nil)
		return
	}

	var req guest.GuestInput
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Name == "" {
		WriteValidationError(w, map[string]string{"name": "required"})
		return
	}

	created, err := h.guests.AddGuest(r.Context(), siteID, cardID, req)
	if err != nil {
		writeGuestError(w, err)
		return
	}
	WriteCreated(w, toGuestView(created))
}

// DeleteGuest removes an individual guest from a card.
func (h *Handler) DeleteGuest(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}
	cardID, err := idParam(r, "cardID")
	if err != nil {
		WriteBadRequest(w, "Invalid card ID", nil)
		return
	}
	guestID, err := idParam(r, "guestID")
	if err != nil {
		WriteBadRequest(w, "Invalid guest ID", nil)
		return
	}

	if err := h.guests.DeleteGuest(r.Context(), siteID, cardID, guestID); err != nil {
		writeGuestError(w, err)
		return
	}
	WriteNoContent(w)
}

type sendInvitationsRequest struct {
	CardIDs []int64 `json:"card_ids"`
}

type sendInvitationsResponse struct {
	SentAt time.Time `json:"sent_at"`
	Cards  int       `json:"cards"`
}

// SendInvitations marks a batch of cards as invited with one shared
// timestamp.
func (h *Handler) SendInvitations(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}

	var req sendInvitationsRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if len(req.CardIDs) == 0 {
		WriteValidationError(w, map[string]string{"card_ids": "required"})
		return
	}

	sentAt, err := h.guests.SendInvitations(r.Context(), siteID, req.CardIDs)
	if err != nil {
		writeGuestError(w, err)
		return
	}

	_ = h.events.LogGuestEvent(r.Context(), service.EventLevelInfo, "invitations sent",
		middleware.GetUserIDPtr(r), util.ClientIP(r),
		map[string]any{"site_id": siteID, "cards": len(req.CardIDs)})

	WriteSuccess(w, sendInvitationsResponse{SentAt: sentAt, Cards: len(req.CardIDs)}, nil)
}

// GuestStats returns the site's guest list summary.
func (h *Handler) GuestStats(w http.ResponseWriter, r *http.Request) {
	siteID, ok := siteIDParam(w, r)
	if !ok {
		return
	}

	stats, err := h.guests.SiteStats(r.Context(), siteID)
	if err != nil {
		writeGuestError(w, err)
		return
	}
	WriteSuccess(w, stats, nil)
}
