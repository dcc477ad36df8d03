package guest

import (
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/haasivu/haasivu/internal/store"
	"github.com/haasivu/haasivu/internal/util"
)

func guestWith(status string) store.Guest {
	g := store.Guest{Name: "Testi"}
	if status != "" {
		g.RsvpStatus = util.NullStringFromValue(status)
	}
	return g
}

func TestIsValidStatus(t *testing.T) {
	for _, s := range []string{StatusComing, StatusDeclined, StatusNoAnswer} {
		if !IsValidStatus(s) {
			t.Errorf("IsValidStatus(%q) = false", s)
		}
	}
	for _, s := range []string{"", "maybe", "kyllä"} {
		if IsValidStatus(s) {
			t.Errorf("IsValidStatus(%q) = true", s)
		}
	}
}

func TestIsAnswer(t *testing.T) {
	for _, s := range []string{StatusComing, StatusDeclined} {
		if !IsAnswer(s) {
			t.Errorf("IsAnswer(%q) = false", s)
		}
	}
	for _, s := range []string{StatusNoAnswer, "", "maybe"} {
		if IsAnswer(s) {
			t.Errorf("IsAnswer(%q) = true", s)
		}
	}
}

func TestReconcileCardStatus(t *testing.T) {
	tests := []struct {
		name       string
		statuses   []string
		wantStatus string
		wantOK     bool
	}{
		{"no guests", nil, "", false},
		{"nobody answered", []string{"", ""}, "", false},
		{"one coming", []string{StatusComing, ""}, StatusComing, true},
		{"coming wins over declined", []string{StatusDeclined, StatusComing}, StatusComing, true},
		{"all declined", []string{StatusDeclined, StatusDeclined}, StatusDeclined, true},
		{"partial decline stays pending", []string{StatusDeclined, ""}, "", false},
		{"explicit no-answer stays pending", []string{StatusDeclined, StatusNoAnswer}, "", false},
		{"single coming", []string{StatusComing}, StatusComing, true},
		{"single declined", []string{StatusDeclined}, StatusDeclined, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			guests := make([]store.Guest, 0, len(tt.statuses))
			for _, s := range tt.statuses {
				guests = append(guests, guestWith(s))
			}

			status, ok := ReconcileCardStatus(guests)
			if status != tt.wantStatus || ok != tt.wantOK {
				t.Errorf("ReconcileCardStatus() = (%q, %v), want (%q, %v)",
					status, ok, tt.wantStatus, tt.wantOK)
			}
		})
	}
}

func TestComputeStats(t *testing.T) {
	cards := []store.GuestCard{
		{ID: 1, InvitationSent: true, InvitationViewed: true,
			RsvpStatus: util.NullStringFromValue(StatusComing), Confirmed: true},
		{ID: 2, InvitationSent: true, InvitationViewed: true,
			RsvpStatus: util.NullStringFromValue(StatusDeclined)},
		{ID: 3, InvitationSent: true},
		{ID: 4}, // not yet invited
	}
	guests := []store.Guest{
		{CardID: 1, RsvpStatus: util.NullStringFromValue(StatusComing)},
		{CardID: 1, RsvpStatus: util.NullStringFromValue(StatusComing)},
		{CardID: 2, RsvpStatus: util.NullStringFromValue(StatusDeclined)},
		{CardID: 3, RsvpStatus: sql.NullString{}},
		{CardID: 3, RsvpStatus: util.NullStringFromValue(StatusNoAnswer)},
		{CardID: 4},
	}

	s := ComputeStats(cards, guests)

	assert.Equal(t, 4, s.Cards)
	assert.Equal(t, 3, s.Invited)
	assert.Equal(t, 2, s.Viewed)
	assert.Equal(t, 1, s.Accepted)
	assert.Equal(t, 1, s.Declined)
	assert.Equal(t, 1, s.Pending)
	assert.Equal(t, 1, s.Confirmed)
	assert.Equal(t, 6, s.Guests)
	assert.Equal(t, 2, s.GuestsComing)
	assert.Equal(t, 1, s.GuestsDeclined)
	assert.Equal(t, 3, s.GuestsPending)
}

func TestComputeStatsEmpty(t *testing.T) {
	assert.Equal(t, Stats{}, ComputeStats(nil, nil))
}
