package aitext

import (
	"context"
	"errors"
	"testing"
)

func TestDisabledSuggester(t *testing.T) {
	s := NewSuggester("", "gpt-4o-mini")

	if s.Enabled() {
		t.Error("Enabled() = true without API key")
	}

	_, err := s.Suggest(context.Background(), KindWelcome, "")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("Suggest() error = %v, want ErrNotConfigured", err)
	}
}

func TestIsValidKind(t *testing.T) {
	for _, kind := range []string{KindWelcome, KindInvitation, KindProgram, KindThankYou} {
		if !IsValidKind(kind) {
			t.Errorf("IsValidKind(%q) = false", kind)
		}
	}
	if IsValidKind("runo") {
		t.Error(`IsValidKind("runo") = true`)
	}
}
