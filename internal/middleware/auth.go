// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication,
// authorization, and request context handling.
package middleware

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/haasivu/haasivu/internal/perm"
	"github.com/haasivu/haasivu/internal/session"
	"github.com/haasivu/haasivu/internal/store"
)

// ContextKey is a custom type for context keys to avoid collisions.
type ContextKey string

// ContextKeyUser is the context key for the authenticated user.
const ContextKeyUser ContextKey = "user"

// Auth requires an authenticated session. Unauthenticated requests get a
// JSON 401.
func Auth(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), session.KeyUserID)
			if userID == 0 {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "kirjautuminen vaaditaan")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// LoadUser loads the authenticated user into the request context. If the
// session references a user that no longer exists, the session is destroyed
// and the request is rejected.
func LoadUser(sm *scs.SessionManager, queries *store.Queries) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			userID := sm.GetInt64(r.Context(), session.KeyUserID)
			if userID == 0 {
				next.ServeHTTP(w, r)
				return
			}

			user, err := queries.GetUserByID(r.Context(), userID)
			if err != nil {
				if errors.Is(err, sql.ErrNoRows) {
					slog.Warn("session references missing user, destroying session", "user_id", userID)
					if destroyErr := sm.Destroy(r.Context()); destroyErr != nil {
						slog.Error("failed to destroy stale session", "error", destroyErr)
					}
					WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "kirjautuminen vaaditaan")
					return
				}
				slog.Error("failed to load user for session", "user_id", userID, "error", err)
				WriteAPIError(w, http.StatusInternalServerError, "internal_error", "sisäinen virhe")
				return
			}

			ctx := context.WithValue(r.Context(), ContextKeyUser, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// GetUser returns the authenticated user from the request context, or nil.
func GetUser(r *http.Request) *store.User {
	user, ok := r.Context().Value(ContextKeyUser).(store.User)
	if !ok {
		return nil
	}
	return &user
}

// GetUserID returns the authenticated user's ID, or 0 when not logged in.
func GetUserID(r *http.Request) int64 {
	if user := GetUser(r); user != nil {
		return user.ID
	}
	return 0
}

// GetUserIDPtr returns the authenticated user's ID as a pointer for event
// logging, or nil when not logged in.
func GetUserIDPtr(r *http.Request) *int64 {
	if user := GetUser(r); user != nil {
		id := user.ID
		return &id
	}
	return nil
}

// RequireCapability rejects requests whose user's role does not grant the
// named capability. Permission checks are deny-by-default: an unknown role
// or capability always yields a 403.
func RequireCapability(capability string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user := GetUser(r)
			if user == nil {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "kirjautuminen vaaditaan")
				return
			}
			if !perm.HasPermission(user.Role, capability) {
				slog.Warn("capability denied",
					"user_id", user.ID,
					"role", user.Role,
					"capability", capability,
					"path", r.URL.Path,
				)
				WriteAPIError(w, http.StatusForbidden, "forbidden", "ei käyttöoikeutta")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
