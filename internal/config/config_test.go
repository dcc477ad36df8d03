package config

import (
	"strings"
	"testing"
)

const testSecret = "Kx9#mP2$vL8@nQ4!wR6^tY1&uI3*oE5%"

func TestLoadDefaults(t *testing.T) {
	t.Setenv("HAASIVU_SESSION_SECRET", testSecret)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.DBPath != "./data/haasivu.db" {
		t.Errorf("DBPath = %q, want ./data/haasivu.db", cfg.DBPath)
	}
	if cfg.ServerAddr() != "localhost:8080" {
		t.Errorf("ServerAddr() = %q, want localhost:8080", cfg.ServerAddr())
	}
	if !cfg.IsDevelopment() {
		t.Error("IsDevelopment() = false, want true by default")
	}
	if cfg.UseRedisCache() {
		t.Error("UseRedisCache() = true without HAASIVU_REDIS_URL")
	}
	if cfg.SuggestionsEnabled() {
		t.Error("SuggestionsEnabled() = true without HAASIVU_OPENAI_API_KEY")
	}
	if cfg.RetentionDays != 90 {
		t.Errorf("RetentionDays = %d, want 90", cfg.RetentionDays)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("HAASIVU_SESSION_SECRET", testSecret)
	t.Setenv("HAASIVU_SERVER_HOST", "0.0.0.0")
	t.Setenv("HAASIVU_SERVER_PORT", "9000")
	t.Setenv("HAASIVU_ENV", "production")
	t.Setenv("HAASIVU_REDIS_URL", "redis://localhost:6379/0")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.ServerAddr() != "0.0.0.0:9000" {
		t.Errorf("ServerAddr() = %q, want 0.0.0.0:9000", cfg.ServerAddr())
	}
	if cfg.IsDevelopment() {
		t.Error("IsDevelopment() = true with HAASIVU_ENV=production")
	}
	if !cfg.UseRedisCache() {
		t.Error("UseRedisCache() = false with HAASIVU_REDIS_URL set")
	}
}

func TestLoadMissingSecret(t *testing.T) {
	t.Setenv("HAASIVU_SESSION_SECRET", "")

	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want error for missing session secret")
	}
}

func TestLoadShortSecret(t *testing.T) {
	t.Setenv("HAASIVU_SESSION_SECRET", "liian-lyhyt")

	_, err := Load()
	if err == nil {
		t.Fatal("Load() error = nil, want error for short session secret")
	}
	if !strings.Contains(err.Error(), "at least 32 bytes") {
		t.Errorf("error = %v, want mention of minimum length", err)
	}
}

func TestLoadWeakSecret(t *testing.T) {
	t.Setenv("HAASIVU_SESSION_SECRET", "change-me-to-32-byte-secret-key!")

	if _, err := Load(); err == nil {
		t.Error("Load() error = nil, want error for known default secret")
	}
}

func TestHasMinimumEntropy(t *testing.T) {
	tests := []struct {
		secret string
		want   bool
	}{
		{"Kx9#mP2$vL8@nQ4!", true},
		{"abcABC123", true},
		{"aaaaaaaaaaaaaaaa", false},
		{"abc123", false},
	}
	for _, tt := range tests {
		if got := hasMinimumEntropy(tt.secret); got != tt.want {
			t.Errorf("hasMinimumEntropy(%q) = %v, want %v", tt.secret, got, tt.want)
		}
	}
}
