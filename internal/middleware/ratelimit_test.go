package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestGlobalRateLimiter(t *testing.T) {
	// 1 req/s with burst 2: third immediate request must be rejected.
	limiter := NewGlobalRateLimiter(1, 2)
	handler := limiter.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/sites", nil)
		r.RemoteAddr = "203.0.113.10:4567"
		handler.ServeHTTP(rec, r)
		if rec.Code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	rec := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/api/sites", nil)
	r.RemoteAddr = "203.0.113.10:4567"
	handler.ServeHTTP(rec, r)
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("over-limit status = %d, want %d", rec.Code, http.StatusTooManyRequests)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}
}

func TestGlobalRateLimiterPerIP(t *testing.T) {
	limiter := NewGlobalRateLimiter(1, 1)
	handler := limiter.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	first := httptest.NewRequest(http.MethodGet, "/api/sites", nil)
	first.RemoteAddr = "203.0.113.10:1000"
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, first)
	if rec.Code != http.StatusOK {
		t.Fatalf("first IP status = %d, want %d", rec.Code, http.StatusOK)
	}

	// A different IP has its own limiter and is not affected.
	second := httptest.NewRequest(http.MethodGet, "/api/sites", nil)
	second.RemoteAddr = "203.0.113.99:1000"
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, second)
	if rec.Code != http.StatusOK {
		t.Errorf("second IP status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestLimiterCacheClearIfExceeds(t *testing.T) {
	cache := newLimiterCache[string](1, 1)
	for _, key := range []string{"a", "b", "c"} {
		cache.get(key)
	}
	if cache.size() != 3 {
		t.Fatalf("size = %d, want 3", cache.size())
	}

	if cache.clearIfExceeds(5) {
		t.Error("clearIfExceeds(5) should not clear a cache of 3")
	}
	if !cache.clearIfExceeds(2) {
		t.Error("clearIfExceeds(2) should clear a cache of 3")
	}
	if cache.size() != 0 {
		t.Errorf("size after clear = %d, want 0", cache.size())
	}
}

func TestLoginProtectionLockout(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{
		IPRateLimit:       1000,
		IPBurst:           1000,
		MaxFailedAttempts: 3,
		LockoutDuration:   time.Minute,
		AttemptWindow:     time.Minute,
	})

	email := "pariskunta@example.com"

	if locked, _ := lp.IsAccountLocked(email); locked {
		t.Fatal("fresh account should not be locked")
	}

	lp.RecordFailedAttempt(email)
	lp.RecordFailedAttempt(email)
	if remaining := lp.GetRemainingAttempts(email); remaining != 1 {
		t.Errorf("remaining attempts = %d, want 1", remaining)
	}

	locked, duration := lp.RecordFailedAttempt(email)
	if !locked {
		t.Fatal("third failure should lock the account")
	}
	if duration != time.Minute {
		t.Errorf("lock duration = %v, want %v", duration, time.Minute)
	}

	if locked, _ := lp.IsAccountLocked(email); !locked {
		t.Error("account should report as locked")
	}

	lp.RecordSuccessfulLogin(email)
	if remaining := lp.GetRemainingAttempts(email); remaining != 3 {
		t.Errorf("remaining attempts after success = %d, want 3", remaining)
	}
}

func TestLoginProtectionMiddlewareSkipsGet(t *testing.T) {
	lp := NewLoginProtection(LoginProtectionConfig{IPRateLimit: 0.001, IPBurst: 1})
	handler := lp.Middleware()(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// GET requests are never rate limited.
	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodGet, "/api/login", nil)
		r.RemoteAddr = "203.0.113.5:1234"
		handler.ServeHTTP(rec, r)
		if rec.Code != http.StatusOK {
			t.Fatalf("GET %d: status = %d, want %d", i+1, rec.Code, http.StatusOK)
		}
	}

	// POST burst of 1: second POST is rejected.
	post := func() int {
		rec := httptest.NewRecorder()
		r := httptest.NewRequest(http.MethodPost, "/api/login", strings.NewReader("{}"))
		r.RemoteAddr = "203.0.113.5:1234"
		handler.ServeHTTP(rec, r)
		return rec.Code
	}
	if code := post(); code != http.StatusOK {
		t.Fatalf("first POST status = %d, want %d", code, http.StatusOK)
	}
	if code := post(); code != http.StatusTooManyRequests {
		t.Errorf("second POST status = %d, want %d", code, http.StatusTooManyRequests)
	}
}
