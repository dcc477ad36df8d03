// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const guestCardColumns = `id, site_id, name, email, invite_code,
	invitation_sent, invitation_sent_date, invitation_viewed, invitation_viewed_date,
	rsvp_status, rsvp_date, confirmed, created_at, updated_at`

func scanGuestCard(row interface{ Scan(...any) error }) (GuestCard, error) {
	var c GuestCard
	err := row.Scan(&c.ID, &c.SiteID, &c.Name, &c.Email, &c.InviteCode,
		&c.InvitationSent, &c.InvitationSentDate, &c.InvitationViewed,
		&c.InvitationViewedDate, &c.RsvpStatus, &c.RsvpDate, &c.Confirmed,
		&c.CreatedAt, &c.UpdatedAt)
	return c, err
}

const guestColumns = `id, card_id, name, rsvp_status, dietary, message, responded_at`

func scanGuest(row interface{ Scan(...any) error }) (Guest, error) {
	var g Guest
	err := row.Scan(&g.ID, &g.CardID, &g.Name, &g.RsvpStatus, &g.Dietary,
		&g.Message, &g.RespondedAt)
	return g, err
}

// CreateGuestCardParams holds the fields for CreateGuestCard.
type CreateGuestCardParams struct {
	SiteID     int64
	Name       string
	Email      string
	InviteCode string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CreateGuestCard inserts a card with all tracking flags in their
// "not yet happened" state. The id is AUTOINCREMENT: max existing + 1,
// never reused.
func (q *Queries) CreateGuestCard(ctx context.Context, arg CreateGuestCardParams) (GuestCard, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO guest_cards (site_id, name, email, invite_code, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+guestCardColumns,
		arg.SiteID, arg.Name, arg.Email, arg.InviteCode, arg.CreatedAt, arg.UpdatedAt)
	return scanGuestCard(row)
}

// GetGuestCard fetches a card by id.
func (q *Queries) GetGuestCard(ctx context.Context, id int64) (GuestCard, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+guestCardColumns+` FROM guest_cards WHERE id = ?`, id)
	return scanGuestCard(row)
}

// GetGuestCardByCode fetches a card by its invite code.
func (q *Queries) GetGuestCardByCode(ctx context.Context, code string) (GuestCard, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+guestCardColumns+` FROM guest_cards WHERE invite_code = ?`, code)
	return scanGuestCard(row)
}

// ListGuestCards returns a site's cards in creation order.
func (q *Queries) ListGuestCards(ctx context.Context, siteID int64) ([]GuestCard, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+guestCardColumns+` FROM guest_cards WHERE site_id = ? ORDER BY id`,
		siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var cards []GuestCard
	for rows.Next() {
		c, err := scanGuestCard(rows)
		if err != nil {
			return nil, err
		}
		cards = append(cards, c)
	}
	return cards, rows.Err()
}

// UpdateGuestCardParams holds the fields for UpdateGuestCard.
type UpdateGuestCardParams struct {
	ID        int64
	Name      string
	Email     string
	Confirmed bool
	UpdatedAt time.Time
}

// UpdateGuestCard updates a card's editable fields.
func (q *Queries) UpdateGuestCard(ctx context.Context, arg UpdateGuestCardParams) (GuestCard, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE guest_cards SET name = ?, email = ?, confirmed = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+guestCardColumns,
		arg.Name, arg.Email, arg.Confirmed, arg.UpdatedAt, arg.ID)
	return scanGuestCard(row)
}

// MarkInvitationsSent stamps invitation_sent and one shared sent date on
// every card in ids. Cards not listed are untouched.
func (q *Queries) MarkInvitationsSent(ctx context.Context, ids []int64, sentAt time.Time) error {
	for _, id := range ids {
		_, err := q.db.ExecContext(ctx, `
			UPDATE guest_cards
			SET invitation_sent = 1, invitation_sent_date = ?, updated_at = ?
			WHERE id = ?`,
			sentAt, sentAt, id)
		if err != nil {
			return err
		}
	}
	return nil
}

// MarkInvitationViewed stamps the first-view time on a card. Later views
// keep the original timestamp.
func (q *Queries) MarkInvitationViewed(ctx context.Context, id int64, viewedAt time.Time) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE guest_cards
		SET invitation_viewed = 1,
		    invitation_viewed_date = COALESCE(invitation_viewed_date, ?),
		    updated_at = ?
		WHERE id = ?`,
		viewedAt, viewedAt, id)
	return err
}

// SetGuestCardRsvpParams holds the fields for SetGuestCardRsvp.
type SetGuestCardRsvpParams struct {
	ID         int64
	RsvpStatus sql.NullString
	RsvpDate   sql.NullTime
	UpdatedAt  time.Time
}

// SetGuestCardRsvp updates the card-level RSVP status.
func (q *Queries) SetGuestCardRsvp(ctx context.Context, arg SetGuestCardRsvpParams) error {
	_, err := q.db.ExecContext(ctx, `
		UPDATE guest_cards SET rsvp_status = ?, rsvp_date = ?, updated_at = ?
		WHERE id = ?`,
		arg.RsvpStatus, arg.RsvpDate, arg.UpdatedAt, arg.ID)
	return err
}

// DeleteGuestCard removes a card and its guests. Deleting an absent id is
// a no-op.
func (q *Queries) DeleteGuestCard(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM guest_cards WHERE id = ?`, id)
	return err
}

// CreateGuestParams holds the fields for CreateGuest.
type CreateGuestParams struct {
	CardID  int64
	Name    string
	Dietary string
}

// CreateGuest adds an individual guest to a card.
func (q *Queries) CreateGuest(ctx context.Context, arg CreateGuestParams) (Guest, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO guests (card_id, name, dietary)
		VALUES (?, ?, ?)
		RETURNING `+guestColumns,
		arg.CardID, arg.Name, arg.Dietary)
	return scanGuest(row)
}

// GetGuest fetches a guest by id within a card.
func (q *Queries) GetGuest(ctx context.Context, cardID, id int64) (Guest, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE card_id = ? AND id = ?`,
		cardID, id)
	return scanGuest(row)
}

// ListGuests returns a card's guests in creation order.
func (q *Queries) ListGuests(ctx context.Context, cardID int64) ([]Guest, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+guestColumns+` FROM guests WHERE card_id = ? ORDER BY id`, cardID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guests []Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}
	return guests, rows.Err()
}

// ListGuestsForSite returns every guest belonging to a site's cards.
func (q *Queries) ListGuestsForSite(ctx context.Context, siteID int64) ([]Guest, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT g.id, g.card_id, g.name, g.rsvp_status, g.dietary, g.message, g.responded_at
		FROM guests g
		JOIN guest_cards c ON c.id = g.card_id
		WHERE c.site_id = ?
		ORDER BY g.id`, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var guests []Guest
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, err
		}
		guests = append(guests, g)
	}
	return guests, rows.Err()
}

// SetGuestRsvpParams holds the fields for SetGuestRsvp.
type SetGuestRsvpParams struct {
	CardID      int64
	ID          int64
	RsvpStatus  sql.NullString
	Dietary     string
	Message     string
	RespondedAt sql.NullTime
}

// SetGuestRsvp records an individual guest's response. Re-submitting
// overwrites the previous response for the same guest.
func (q *Queries) SetGuestRsvp(ctx context.Context, arg SetGuestRsvpParams) (Guest, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE guests SET rsvp_status = ?, dietary = ?, message = ?, responded_at = ?
		WHERE card_id = ? AND id = ?
		RETURNING `+guestColumns,
		arg.RsvpStatus, arg.Dietary, arg.Message, arg.RespondedAt,
		arg.CardID, arg.ID)
	return scanGuest(row)
}

// DeleteGuest removes an individual guest from a card.
func (q *Queries) DeleteGuest(ctx context.Context, cardID, id int64) error {
	_, err := q.db.ExecContext(ctx,
		`DELETE FROM guests WHERE card_id = ? AND id = ?`, cardID, id)
	return err
}
