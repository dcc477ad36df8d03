// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

const siteColumns = `id, name, slug, theme, template, published, published_at,
	scheduled_at, password_protected, access_code_hash, created_at, updated_at`

func scanSite(row interface{ Scan(...any) error }) (Site, error) {
	var s Site
	err := row.Scan(&s.ID, &s.Name, &s.Slug, &s.Theme, &s.Template,
		&s.Published, &s.PublishedAt, &s.ScheduledAt, &s.PasswordProtected,
		&s.AccessCodeHash, &s.CreatedAt, &s.UpdatedAt)
	return s, err
}

// CreateSiteParams holds the fields for CreateSite.
type CreateSiteParams struct {
	Name      string
	Slug      string
	Theme     string
	Template  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateSite inserts a new site and returns the stored row.
func (q *Queries) CreateSite(ctx context.Context, arg CreateSiteParams) (Site, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO sites (name, slug, theme, template, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING `+siteColumns,
		arg.Name, arg.Slug, arg.Theme, arg.Template, arg.CreatedAt, arg.UpdatedAt)
	return scanSite(row)
}

// GetSite fetches a site by id.
func (q *Queries) GetSite(ctx context.Context, id int64) (Site, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE id = ?`, id)
	return scanSite(row)
}

// GetSiteBySlug fetches a site by url slug.
func (q *Queries) GetSiteBySlug(ctx context.Context, slug string) (Site, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE slug = ?`, slug)
	return scanSite(row)
}

// GetPublishedSiteBySlug fetches a published site by url slug. Unpublished
// sites are not found, regardless of any other field.
func (q *Queries) GetPublishedSiteBySlug(ctx context.Context, slug string) (Site, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+siteColumns+` FROM sites WHERE slug = ? AND published = 1`, slug)
	return scanSite(row)
}

// ListSites returns all sites ordered by creation time.
func (q *Queries) ListSites(ctx context.Context) ([]Site, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+siteColumns+` FROM sites ORDER BY created_at, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}
	return sites, rows.Err()
}

// ListScheduledSites returns unpublished sites whose scheduled publish
// time is at or before now.
func (q *Queries) ListScheduledSites(ctx context.Context, now time.Time) ([]Site, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT `+siteColumns+` FROM sites
		WHERE published = 0 AND scheduled_at IS NOT NULL AND scheduled_at <= ?`,
		now)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sites []Site
	for rows.Next() {
		s, err := scanSite(rows)
		if err != nil {
			return nil, err
		}
		sites = append(sites, s)
	}
	return sites, rows.Err()
}

// UpdateSiteParams holds the fields for UpdateSite.
type UpdateSiteParams struct {
	ID          int64
	Name        string
	Slug        string
	Theme       string
	ScheduledAt sql.NullTime
	UpdatedAt   time.Time
}

// UpdateSite updates a site's settings and returns the stored row.
func (q *Queries) UpdateSite(ctx context.Context, arg UpdateSiteParams) (Site, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE sites SET name = ?, slug = ?, theme = ?, scheduled_at = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+siteColumns,
		arg.Name, arg.Slug, arg.Theme, arg.ScheduledAt, arg.UpdatedAt, arg.ID)
	return scanSite(row)
}

// SetSiteThemeParams holds the fields for SetSiteTheme.
type SetSiteThemeParams struct {
	ID        int64
	Theme     string
	Template  string
	UpdatedAt time.Time
}

// SetSiteTheme changes the theme and template together so the stored
// template always belongs to the active theme.
func (q *Queries) SetSiteTheme(ctx context.Context, arg SetSiteThemeParams) (Site, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE sites SET theme = ?, template = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+siteColumns,
		arg.Theme, arg.Template, arg.UpdatedAt, arg.ID)
	return scanSite(row)
}

// SetSitePublishedParams holds the fields for SetSitePublished.
type SetSitePublishedParams struct {
	ID          int64
	Published   bool
	PublishedAt sql.NullTime
	UpdatedAt   time.Time
}

// SetSitePublished flips the publish state. Unpublishing clears
// published_at via a NULL PublishedAt.
func (q *Queries) SetSitePublished(ctx context.Context, arg SetSitePublishedParams) (Site, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE sites SET published = ?, published_at = ?, scheduled_at = NULL, updated_at = ?
		WHERE id = ?
		RETURNING `+siteColumns,
		arg.Published, arg.PublishedAt, arg.UpdatedAt, arg.ID)
	return scanSite(row)
}

// SetSiteAccessCodeParams holds the fields for SetSiteAccessCode.
type SetSiteAccessCodeParams struct {
	ID                int64
	PasswordProtected bool
	AccessCodeHash    string
	UpdatedAt         time.Time
}

// SetSiteAccessCode updates the access-control fields.
func (q *Queries) SetSiteAccessCode(ctx context.Context, arg SetSiteAccessCodeParams) (Site, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE sites SET password_protected = ?, access_code_hash = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+siteColumns,
		arg.PasswordProtected, arg.AccessCodeHash, arg.UpdatedAt, arg.ID)
	return scanSite(row)
}

// TouchSite bumps the site's updated_at.
func (q *Queries) TouchSite(ctx context.Context, id int64, at time.Time) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE sites SET updated_at = ? WHERE id = ?`, at, id)
	return err
}

// DeleteSite removes a site; blocks, guest cards, notes, program events
// and visits cascade.
func (q *Queries) DeleteSite(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM sites WHERE id = ?`, id)
	return err
}
