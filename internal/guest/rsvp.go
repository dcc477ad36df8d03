// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package guest manages guest cards, invitations, and RSVP responses.
package guest

import "github.com/haasivu/haasivu/internal/store"

// RSVP statuses. A guest with no stored status, or an explicit
// StatusNoAnswer, has not responded yet.
const (
	StatusComing   = "tulossa"
	StatusDeclined = "ei_tule"
	StatusNoAnswer = "ei_vastausta"
)

// IsValidStatus reports whether s names one of the RSVP statuses.
func IsValidStatus(s string) bool {
	return s == StatusComing || s == StatusDeclined || s == StatusNoAnswer
}

// IsAnswer reports whether s is a definite answer a guest can submit.
// StatusNoAnswer is the unanswered state, never a submission.
func IsAnswer(s string) bool {
	return s == StatusComing || s == StatusDeclined
}

// responded reports whether a guest has given a definite answer.
func responded(g store.Guest) bool {
	return g.RsvpStatus.Valid &&
		(g.RsvpStatus.String == StatusComing || g.RsvpStatus.String == StatusDeclined)
}

// ReconcileCardStatus derives the card-level RSVP status from its guests'
// individual answers: the card counts as coming as soon as any guest is
// coming, and as declined only when every guest has answered and none is
// coming. Otherwise the card is still pending and ok is false.
func ReconcileCardStatus(guests []store.Guest) (status string, ok bool) {
	if len(guests) == 0 {
		return "", false
	}

	allAnswered := true
	for _, g := range guests {
		if g.RsvpStatus.Valid && g.RsvpStatus.String == StatusComing {
			return StatusComing, true
		}
		if !responded(g) {
			allAnswered = false
		}
	}

	if allAnswered {
		return StatusDeclined, true
	}
	return "", false
}

// Stats summarises a site's guest list for the dashboard.
type Stats struct {
	Cards          int `json:"cards"`
	Invited        int `json:"invited"`
	Viewed         int `json:"viewed"`
	Accepted       int `json:"accepted"`
	Declined       int `json:"declined"`
	Pending        int `json:"pending"`
	Confirmed      int `json:"confirmed"`
	Guests         int `json:"guests"`
	GuestsComing   int `json:"guests_coming"`
	GuestsDeclined int `json:"guests_declined"`
	GuestsPending  int `json:"guests_pending"`
}

// ComputeStats tallies card and headcount figures. Pending counts cards
// whose invitation went out but whose card-level status is still open.
func ComputeStats(cards []store.GuestCard, guests []store.Guest) Stats {
	var s Stats

	s.Cards = len(cards)
	for _, c := range cards {
		if c.InvitationSent {
			s.Invited++
		}
		if c.InvitationViewed {
			s.Viewed++
		}
		if c.Confirmed {
			s.Confirmed++
		}
		if c.RsvpStatus.Valid {
			switch c.RsvpStatus.String {
			case StatusComing:
				s.Accepted++
			case StatusDeclined:
				s.Declined++
			}
		}
	}

	s.Pending = s.Invited - s.Accepted - s.Declined
	if s.Pending < 0 {
		s.Pending = 0
	}

	s.Guests = len(guests)
	for _, g := range guests {
		switch {
		case g.RsvpStatus.Valid && g.RsvpStatus.String == StatusComing:
			s.GuestsComing++
		case g.RsvpStatus.Valid && g.RsvpStatus.String == StatusDeclined:
			s.GuestsDeclined++
		default:
			s.GuestsPending++
		}
	}

	return s
}
