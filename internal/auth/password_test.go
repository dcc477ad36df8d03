package auth

import (
	"strings"
	"testing"
)

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("salasana123")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$") {
		t.Errorf("hash = %q, want $argon2id$ prefix", hash)
	}

	ok, err := CheckPassword("salasana123", hash)
	if err != nil {
		t.Fatalf("CheckPassword() error = %v", err)
	}
	if !ok {
		t.Error("CheckPassword() = false for correct password")
	}

	ok, err = CheckPassword("väärä", hash)
	if err != nil {
		t.Fatalf("CheckPassword() error = %v", err)
	}
	if ok {
		t.Error("CheckPassword() = true for wrong password")
	}
}

func TestHashPasswordUniqueSalts(t *testing.T) {
	h1, err := HashPassword("sama")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	h2, err := HashPassword("sama")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	if h1 == h2 {
		t.Error("two hashes of the same password are identical, salt not random")
	}
}

func TestCheckPasswordInvalidHash(t *testing.T) {
	tests := []struct {
		name string
		hash string
	}{
		{"empty", ""},
		{"wrong part count", "$argon2id$v=19$m=19456"},
		{"wrong algorithm", "$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA"},
		{"bad salt encoding", "$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := CheckPassword("x", tt.hash); err == nil {
				t.Errorf("CheckPassword(%q) error = nil, want error", tt.hash)
			}
		})
	}
}

func TestAccessCodeRoundTrip(t *testing.T) {
	hash, err := HashAccessCode("HÄÄT2026")
	if err != nil {
		t.Fatalf("HashAccessCode() error = %v", err)
	}
	ok, err := CheckAccessCode("HÄÄT2026", hash)
	if err != nil {
		t.Fatalf("CheckAccessCode() error = %v", err)
	}
	if !ok {
		t.Error("CheckAccessCode() = false for correct code")
	}
}
