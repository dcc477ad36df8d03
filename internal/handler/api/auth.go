// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/haasivu/haasivu/internal/auth"
	"github.com/haasivu/haasivu/internal/middleware"
	"github.com/haasivu/haasivu/internal/perm"
	"github.com/haasivu/haasivu/internal/service"
	"github.com/haasivu/haasivu/internal/session"
	"github.com/haasivu/haasivu/internal/store"
	"github.com/haasivu/haasivu/internal/util"
)

// userView is the JSON shape of a user in API responses. The password
// hash never leaves the server.
type userView struct {
	ID           int64           `json:"id"`
	Email        string          `json:"email"`
	Name         string          `json:"name"`
	Role         string          `json:"role"`
	Capabilities map[string]bool `json:"capabilities"`
	LastLoginAt  *time.Time      `json:"last_login_at,omitempty"`
}

func toUserView(u store.User) userView {
	return userView{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		Role:         u.Role,
		Capabilities: perm.Capabilities(u.Role),
		LastLoginAt:  util.TimePtrFromNull(u.LastLoginAt),
	}
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Login authenticates a user and starts a session.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if req.Email == "" || req.Password == "" {
		WriteValidationError(w, map[string]string{"email": "required", "password": "required"})
		return
	}

	ip := util.ClientIP(r)

	if locked, remaining := h.guard.IsAccountLocked(req.Email); locked {
		_ = h.events.LogAuthEvent(r.Context(), service.EventLevelWarning,
			"login attempt on locked account", nil, ip,
			map[string]any{"email": req.Email})
		WriteError(w, http.StatusTooManyRequests, "account_locked",
			fmt.Sprintf("Tili on lukittu. Yritä uudelleen %d minuutin kuluttua.",
				int(remaining.Minutes())+1), nil)
		return
	}

	user, err := h.queries.GetUserByEmail(r.Context(), req.Email)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		WriteInternalError(w, "Login failed")
		return
	}

	// Compare against a real hash even for unknown users to keep
	// timing uniform.
	ok := false
	if err == nil {
		ok, _ = auth.CheckPassword(req.Password, user.PasswordHash)
	} else {
		_, _ = auth.CheckPassword(req.Password, dummyHash)
	}

	if !ok {
		locked, duration := h.guard.RecordFailedAttempt(req.Email)
		_ = h.events.LogAuthEvent(r.Context(), service.EventLevelWarning,
			"failed login", nil, ip, map[string]any{"email": req.Email})
		if locked {
			WriteError(w, http.StatusTooManyRequests, "account_locked",
				fmt.Sprintf("Tili on lukittu %d minuutiksi.", int(duration.Minutes())), nil)
			return
		}
		WriteUnauthorized(w, "Virheellinen sähköposti tai salasana")
		return
	}

	h.guard.RecordSuccessfulLogin(req.Email)

	// A fresh token prevents session fixation.
	if err := h.sessions.RenewToken(r.Context()); err != nil {
		slog.Error("failed to renew session token", "error", err)
		WriteInternalError(w, "Login failed")
		return
	}
	h.sessions.Put(r.Context(), session.KeyUserID, user.ID)

	if err := h.queries.UpdateUserLastLogin(r.Context(), user.ID, time.Now().UTC()); err != nil {
		slog.Warn("failed to record last login", "user_id", user.ID, "error", err)
	}

	_ = h.events.LogAuthEvent(r.Context(), service.EventLevelInfo,
		"user logged in", &user.ID, ip, nil)

	WriteSuccess(w, toUserView(user), nil)
}

// dummyHash is a valid argon2id hash of an unused password, compared
// against when the email is unknown.
var dummyHash = func() string {
	h, err := auth.HashPassword("haasivu-dummy-password")
	if err != nil {
		panic(err)
	}
	return h
}()

// Logout destroys the current session.
func (h *Handler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := middleware.GetUserIDPtr(r)

	if err := h.sessions.Destroy(r.Context()); err != nil {
		slog.Error("failed to destroy session", "error", err)
		WriteInternalError(w, "Logout failed")
		return
	}

	_ = h.events.LogAuthEvent(r.Context(), service.EventLevelInfo,
		"user logged out", userID, util.ClientIP(r), nil)

	WriteSuccess(w, map[string]string{"status": "logged_out"}, nil)
}

// Me returns the authenticated user.
func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}
	WriteSuccess(w, toUserView(*user), nil)
}

type switchRoleRequest struct {
	Role string `json:"role"`
}

// SwitchRole changes the authenticated user's role. This is the demo
// mechanism for previewing the dashboard with the reduced guest
// capability set.
func (h *Handler) SwitchRole(w http.ResponseWriter, r *http.Request) {
	user := middleware.GetUser(r)
	if user == nil {
		WriteUnauthorized(w, "Not authenticated")
		return
	}

	var req switchRoleRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if !perm.IsValidRole(req.Role) {
		WriteValidationError(w, map[string]string{"role": "unknown role"})
		return
	}

	updated, err := h.queries.UpdateUserRole(r.Context(), store.UpdateUserRoleParams{
		ID:        user.ID,
		Role:      req.Role,
		Name:      user.Name,
		Avatar:    user.Avatar,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		WriteInternalError(w, "Failed to switch role")
		return
	}

	_ = h.events.LogAuthEvent(r.Context(), service.EventLevelInfo,
		"role switched to "+req.Role, &user.ID, util.ClientIP(r), nil)

	WriteSuccess(w, toUserView(updated), nil)
}
