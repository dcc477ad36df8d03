// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haasivu/haasivu/internal/auth"
	"github.com/haasivu/haasivu/internal/block"
	"github.com/haasivu/haasivu/internal/perm"
	"github.com/haasivu/haasivu/internal/theme"
)

// Default couple credentials
const (
	DefaultCoupleEmail    = "pariskunta@example.com"
	DefaultCouplePassword = "vaihdaheti"
	DefaultCoupleName     = "Anna & Mikko"

	DefaultGuestEmail    = "vieras@example.com"
	DefaultGuestPassword = "tervetuloa"
	DefaultGuestName     = "Vieras"
)

// Seed creates initial data in the database: the couple account, a demo
// guest account, and a starter wedding site with the default blocks.
func Seed(ctx context.Context, db *sql.DB) error {
	queries := New(db)

	_, err := queries.GetUserByEmail(ctx, DefaultCoupleEmail)
	if err == nil {
		slog.Info("couple user already exists, skipping seed")
		return nil
	}
	if err != sql.ErrNoRows {
		return fmt.Errorf("checking for couple user: %w", err)
	}

	now := time.Now()

	coupleHash, err := auth.HashPassword(DefaultCouplePassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	couple, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        DefaultCoupleEmail,
		PasswordHash: coupleHash,
		Role:         perm.RoleCouple,
		Name:         DefaultCoupleName,
		CreatedAt:    now,
		UpdatedAt:    now,
	})
	if err != nil {
		return fmt.Errorf("creating couple user: %w", err)
	}

	guestHash, err := auth.HashPassword(DefaultGuestPassword)
	if err != nil {
		return fmt.Errorf("hashing password: %w", err)
	}
	if _, err := queries.CreateUser(ctx, CreateUserParams{
		Email:        DefaultGuestEmail,
		PasswordHash: guestHash,
		Role:         perm.RoleGuest,
		Name:         DefaultGuestName,
		CreatedAt:    now,
		UpdatedAt:    now,
	}); err != nil {
		return fmt.Errorf("creating guest user: %w", err)
	}

	site, err := queries.CreateSite(ctx, CreateSiteParams{
		Name:      "Meidän häät",
		Slug:      "meidan-haat",
		Theme:     theme.DefaultThemeID,
		Template:  theme.DefaultTemplateID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return fmt.Errorf("creating starter site: %w", err)
	}

	tpl := theme.GetTemplate(theme.DefaultTemplateID)
	starter := []block.Type{
		block.TypeNavigation,
		block.TypeHero,
		block.TypeCountdown,
		block.TypeProgram,
		block.TypeRSVP,
	}
	for pos, t := range starter {
		data, err := theme.EffectiveDefaults(t, tpl)
		if err != nil {
			return fmt.Errorf("building %s defaults: %w", t, err)
		}
		raw, err := block.EncodeData(data)
		if err != nil {
			return fmt.Errorf("encoding %s block: %w", t, err)
		}
		if _, err := queries.CreateBlock(ctx, CreateBlockParams{
			ID:        uuid.NewString(),
			SiteID:    site.ID,
			Type:      string(t),
			Position:  int64(pos),
			Data:      string(raw),
			CreatedAt: now,
			UpdatedAt: now,
		}); err != nil {
			return fmt.Errorf("creating %s block: %w", t, err)
		}
	}

	slog.Info("seeded starter data",
		"coupleID", couple.ID,
		"coupleEmail", couple.Email,
		"couplePassword", DefaultCouplePassword,
		"siteID", site.ID,
		"slug", site.Slug,
	)

	return nil
}
