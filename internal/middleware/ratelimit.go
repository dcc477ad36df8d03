// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package middleware

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"

	"golang.org/x/time/rate"

	"github.com/haasivu/haasivu/internal/util"
)

// APIError is the JSON error envelope returned by middleware and handlers.
type APIError struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WriteAPIError writes a JSON error response with the given status code.
func WriteAPIError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(APIError{Error: code, Message: message}); err != nil {
		slog.Error("failed to encode error response", "error", err)
	}
}

// limiterCache maintains per-key rate limiters with lazy creation.
type limiterCache[K comparable] struct {
	mu       sync.RWMutex
	limiters map[K]*rate.Limiter
	rate     rate.Limit
	burst    int
}

func newLimiterCache[K comparable](r float64, burst int) *limiterCache[K] {
	return &limiterCache[K]{
		limiters: make(map[K]*rate.Limiter),
		rate:     rate.Limit(r),
		burst:    burst,
	}
}

// get returns the limiter for key, creating it if needed.
func (c *limiterCache[K]) get(key K) *rate.Limiter {
	c.mu.RLock()
	limiter, exists := c.limiters[key]
	c.mu.RUnlock()
	if exists {
		return limiter
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// Double-check: another goroutine may have created it.
	if limiter, exists = c.limiters[key]; exists {
		return limiter
	}
	limiter = rate.NewLimiter(c.rate, c.burst)
	c.limiters[key] = limiter
	return limiter
}

// clearIfExceeds resets the cache when it grows past max entries.
// Returns true if the cache was cleared.
func (c *limiterCache[K]) clearIfExceeds(max int) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.limiters) <= max {
		return false
	}
	c.limiters = make(map[K]*rate.Limiter)
	return true
}

func (c *limiterCache[K]) size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.limiters)
}

// GlobalRateLimiter applies per-IP rate limiting across a route group.
type GlobalRateLimiter struct {
	cache *limiterCache[string]
}

// NewGlobalRateLimiter creates a rate limiter allowing r requests per second
// per client IP, with the given burst.
func NewGlobalRateLimiter(r float64, burst int) *GlobalRateLimiter {
	return &GlobalRateLimiter{cache: newLimiterCache[string](r, burst)}
}

// Middleware returns middleware that rejects over-limit requests with a
// JSON 429.
func (g *GlobalRateLimiter) Middleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := util.ClientIP(r)
			if !g.cache.get(ip).Allow() {
				slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
				WriteAPIError(w, http.StatusTooManyRequests, "rate_limited", "liikaa pyyntöjä, yritä hetken kuluttua uudelleen")
				return
			}
			if g.cache.clearIfExceeds(10000) {
				slog.Info("cleared rate limiter cache due to size")
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HTMLMiddleware returns middleware for public HTML pages that rejects
// over-limit requests with a plain-text 429.
func (g *GlobalRateLimiter) HTMLMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := util.ClientIP(r)
			if !g.cache.get(ip).Allow() {
				slog.Warn("rate limit exceeded", "ip", ip, "path", r.URL.Path)
				http.Error(w, "Liikaa pyyntöjä. Yritä hetken kuluttua uudelleen.", http.StatusTooManyRequests)
				return
			}
			if g.cache.clearIfExceeds(10000) {
				slog.Info("cleared rate limiter cache due to size")
			}
			next.ServeHTTP(w, r)
		})
	}
}
