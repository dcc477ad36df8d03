// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package guest

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/haasivu/haasivu/internal/store"
	"github.com/haasivu/haasivu/internal/util"
)

// Service errors.
var (
	ErrCardNotFound  = errors.New("guest card not found")
	ErrGuestNotFound = errors.New("guest not found")
	ErrInvalidStatus = errors.New("invalid rsvp status")
	ErrWrongSite     = errors.New("guest card belongs to another site")
)

// codeAttempts bounds invite code generation retries on collision.
const codeAttempts = 5

// Service owns the guest list: cards, individual guests, invitation
// tracking, and RSVP submission.
type Service struct {
	db      *sql.DB
	queries *store.Queries
}

// NewService creates a guest service backed by db.
func NewService(db *sql.DB) *Service {
	return &Service{db: db, queries: store.New(db)}
}

// GuestInput is one individual guest when creating or extending a card.
type GuestInput struct {
	Name    string `json:"name"`
	Dietary string `json:"dietary"`
}

// CardDetail is a guest card together with its guests.
type CardDetail struct {
	Card   store.GuestCard `json:"card"`
	Guests []store.Guest   `json:"guests"`
}

// AddCardParams holds the fields for AddCard.
type AddCardParams struct {
	SiteID int64
	Name   string
	Email  string
	Guests []GuestInput
}

// AddCard creates a guest card with a fresh unique invite code plus its
// individual guests. A card may start without any guests; they can be
// added one by one afterwards.
func (s *Service) AddCard(ctx context.Context, arg AddCardParams) (CardDetail, error) {
	code, err := s.uniqueInviteCode(ctx)
	if err != nil {
		return CardDetail{}, err
	}

	now := time.Now().UTC()
	card, err := s.queries.CreateGuestCard(ctx, store.CreateGuestCardParams{
		SiteID:     arg.SiteID,
		Name:       arg.Name,
		Email:      arg.Email,
		InviteCode: code,
		CreatedAt:  now,
		UpdatedAt:  now,
	})
	if err != nil {
		return CardDetail{}, fmt.Errorf("create guest card: %w", err)
	}

	guests := make([]store.Guest, 0, len(arg.Guests))
	for _, in := range arg.Guests {
		g, err := s.queries.CreateGuest(ctx, store.CreateGuestParams{
			CardID:  card.ID,
			Name:    in.Name,
			Dietary: in.Dietary,
		})
		if err != nil {
			return CardDetail{}, fmt.Errorf("create guest: %w", err)
		}
		guests = append(guests, g)
	}

	slog.Info("guest card created", "card_id", card.ID, "site_id", arg.SiteID, "guests", len(guests))
	return CardDetail{Card: card, Guests: guests}, nil
}

// uniqueInviteCode generates an invite code that no existing card uses.
func (s *Service) uniqueInviteCode(ctx context.Context) (string, error) {
	for i := 0; i < codeAttempts; i++ {
		code, err := util.NewInviteCode()
		if err != nil {
			return "", fmt.Errorf("generate invite code: %w", err)
		}
		_, err = s.queries.GetGuestCardByCode(ctx, code)
		if errors.Is(err, sql.ErrNoRows) {
			return code, nil
		}
		if err != nil {
			return "", fmt.Errorf("check invite code: %w", err)
		}
	}
	return "", errors.New("could not generate a unique invite code")
}

// Card returns a card with its guests.
func (s *Service) Card(ctx context.Context, cardID int64) (CardDetail, error) {
	card, err := s.queries.GetGuestCard(ctx, cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return CardDetail{}, ErrCardNotFound
	} else if err != nil {
		return CardDetail{}, fmt.Errorf("get card: %w", err)
	}

	guests, err := s.queries.ListGuests(ctx, cardID)
	if err != nil {
		return CardDetail{}, fmt.Errorf("list guests: %w", err)
	}
	return CardDetail{Card: card, Guests: guests}, nil
}

// CardByCode returns the card behind an invite code.
func (s *Service) CardByCode(ctx context.Context, code string) (CardDetail, error) {
	card, err := s.queries.GetGuestCardByCode(ctx, code)
	if errors.Is(err, sql.ErrNoRows) {
		return CardDetail{}, ErrCardNotFound
	} else if err != nil {
		return CardDetail{}, fmt.Errorf("get card by code: %w", err)
	}

	guests, err := s.queries.ListGuests(ctx, card.ID)
	if err != nil {
		return CardDetail{}, fmt.Errorf("list guests: %w", err)
	}
	return CardDetail{Card: card, Guests: guests}, nil
}

// ListCards returns every card of a site with its guests.
func (s *Service) ListCards(ctx context.Context, siteID int64) ([]CardDetail, error) {
	cards, err := s.queries.ListGuestCards(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("list cards: %w", err)
	}

	guests, err := s.queries.ListGuestsForSite(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("list guests: %w", err)
	}

	byCard := make(map[int64][]store.Guest, len(cards))
	for _, g := range guests {
		byCard[g.CardID] = append(byCard[g.CardID], g)
	}

	out := make([]CardDetail, 0, len(cards))
	for _, c := range cards {
		out = append(out, CardDetail{Card: c, Guests: byCard[c.ID]})
	}
	return out, nil
}

// UpdateCardParams holds the editable card fields.
type UpdateCardParams struct {
	ID        int64
	SiteID    int64
	Name      string
	Email     string
	Confirmed bool
}

// UpdateCard updates a card's contact details and manual confirmation flag.
func (s *Service) UpdateCard(ctx context.Context, arg UpdateCardParams) (store.GuestCard, error) {
	if err := s.cardBelongsToSite(ctx, arg.ID, arg.SiteID); err != nil {
		return store.GuestCard{}, err
	}

	card, err := s.queries.UpdateGuestCard(ctx, store.UpdateGuestCardParams{
		ID:        arg.ID,
		Name:      arg.Name,
		Email:     arg.Email,
		Confirmed: arg.Confirmed,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return store.GuestCard{}, fmt.Errorf("update card: %w", err)
	}
	return card, nil
}

// DeleteCard removes a card and its guests.
func (s *Service) DeleteCard(ctx context.Context, siteID, cardID int64) error {
	if err := s.cardBelongsToSite(ctx, cardID, siteID); err != nil {
		return err
	}
	if err := s.queries.DeleteGuestCard(ctx, cardID); err != nil {
		return fmt.Errorf("delete card: %w", err)
	}
	return nil
}

// AddGuest adds an individual guest to an existing card.
func (s *Service) AddGuest(ctx context.Context, siteID, cardID int64, in GuestInput) (store.Guest, error) {
	if err := s.cardBelongsToSite(ctx, cardID, siteID); err != nil {
		return store.Guest{}, err
	}

	g, err := s.queries.CreateGuest(ctx, store.CreateGuestParams{
		CardID:  cardID,
		Name:    in.Name,
		Dietary: in.Dietary,
	})
	if err != nil {
		return store.Guest{}, fmt.Errorf("create guest: %w", err)
	}
	return g, nil
}

// DeleteGuest removes an individual guest from a card.
func (s *Service) DeleteGuest(ctx context.Context, siteID, cardID, guestID int64) error {
	if err := s.cardBelongsToSite(ctx, cardID, siteID); err != nil {
		return err
	}
	if _, err := s.queries.GetGuest(ctx, cardID, guestID); errors.Is(err, sql.ErrNoRows) {
		return ErrGuestNotFound
	} else if err != nil {
		return fmt.Errorf("get guest: %w", err)
	}
	if err := s.queries.DeleteGuest(ctx, cardID, guestID); err != nil {
		return fmt.Errorf("delete guest: %w", err)
	}
	return nil
}

// SendInvitations marks the given cards' invitations as sent, stamping one
// shared timestamp on the whole batch. Cards of other sites are rejected.
func (s *Service) SendInvitations(ctx context.Context, siteID int64, cardIDs []int64) (time.Time, error) {
	for _, id := range cardIDs {
		if err := s.cardBelongsToSite(ctx, id, siteID); err != nil {
			return time.Time{}, err
		}
	}

	sentAt := time.Now().UTC()
	if err := s.queries.MarkInvitationsSent(ctx, cardIDs, sentAt); err != nil {
		return time.Time{}, fmt.Errorf("mark invitations sent: %w", err)
	}

	slog.Info("invitations sent", "site_id", siteID, "cards", len(cardIDs))
	return sentAt, nil
}

// MarkViewed records that the invitation behind a code was opened. The
// first view's timestamp is kept on repeat visits.
func (s *Service) MarkViewed(ctx context.Context, code string) (CardDetail, error) {
	detail, err := s.CardByCode(ctx, code)
	if err != nil {
		return CardDetail{}, err
	}

	if err := s.queries.MarkInvitationViewed(ctx, detail.Card.ID, time.Now().UTC()); err != nil {
		return CardDetail{}, fmt.Errorf("mark viewed: %w", err)
	}

	return s.CardByCode(ctx, code)
}

// RsvpResponse is one guest's answer within an RSVP submission.
type RsvpResponse struct {
	GuestID int64  `json:"guest_id"`
	Status  string `json:"status"`
	Dietary string `json:"dietary"`
	Message string `json:"message"`
}

// SubmitRSVP records a card's RSVP responses and reconciles the card-level
// status: coming as soon as any guest is coming, declined once everyone
// has answered and nobody is. Re-submitting overwrites earlier answers.
func (s *Service) SubmitRSVP(ctx context.Context, code string, responses []RsvpResponse) (CardDetail, error) {
	for _, resp := range responses {
		if !IsAnswer(resp.Status) {
			return CardDetail{}, ErrInvalidStatus
		}
	}

	card, err := s.queries.GetGuestCardByCode(ctx, code)
	if errors.Is(err, sql.ErrNoRows) {
		return CardDetail{}, ErrCardNotFound
	} else if err != nil {
		return CardDetail{}, fmt.Errorf("get card by code: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return CardDetail{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)
	now := time.Now().UTC()

	for _, resp := range responses {
		_, err := qtx.SetGuestRsvp(ctx, store.SetGuestRsvpParams{
			CardID:      card.ID,
			ID:          resp.GuestID,
			RsvpStatus:  util.NullStringFromValue(resp.Status),
			Dietary:     resp.Dietary,
			Message:     resp.Message,
			RespondedAt: util.NullTimeFromValue(now),
		})
		if errors.Is(err, sql.ErrNoRows) {
			return CardDetail{}, ErrGuestNotFound
		} else if err != nil {
			return CardDetail{}, fmt.Errorf("set guest rsvp: %w", err)
		}
	}

	guests, err := qtx.ListGuests(ctx, card.ID)
	if err != nil {
		return CardDetail{}, fmt.Errorf("list guests: %w", err)
	}

	cardStatus := sql.NullString{}
	cardDate := sql.NullTime{}
	if status, ok := ReconcileCardStatus(guests); ok {
		cardStatus = util.NullStringFromValue(status)
		cardDate = util.NullTimeFromValue(now)
	}
	if err := qtx.SetGuestCardRsvp(ctx, store.SetGuestCardRsvpParams{
		ID:         card.ID,
		RsvpStatus: cardStatus,
		RsvpDate:   cardDate,
		UpdatedAt:  now,
	}); err != nil {
		return CardDetail{}, fmt.Errorf("set card rsvp: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return CardDetail{}, fmt.Errorf("commit: %w", err)
	}

	slog.Info("rsvp submitted", "card_id", card.ID, "responses", len(responses))
	return s.CardByCode(ctx, code)
}

// SiteStats summarises a site's guest list.
func (s *Service) SiteStats(ctx context.Context, siteID int64) (Stats, error) {
	cards, err := s.queries.ListGuestCards(ctx, siteID)
	if err != nil {
		return Stats{}, fmt.Errorf("list cards: %w", err)
	}
	guests, err := s.queries.ListGuestsForSite(ctx, siteID)
	if err != nil {
		return Stats{}, fmt.Errorf("list guests: %w", err)
	}
	return ComputeStats(cards, guests), nil
}

// cardBelongsToSite verifies a card exists and belongs to the site.
func (s *Service) cardBelongsToSite(ctx context.Context, cardID, siteID int64) error {
	card, err := s.queries.GetGuestCard(ctx, cardID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCardNotFound
	} else if err != nil {
		return fmt.Errorf("get card: %w", err)
	}
	if card.SiteID != siteID {
		return ErrWrongSite
	}
	return nil
}
