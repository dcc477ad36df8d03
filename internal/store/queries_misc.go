// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
	"database/sql"
	"time"
)

// Notes.

const noteColumns = `id, site_id, title, content, created_at, updated_at`

func scanNote(row interface{ Scan(...any) error }) (Note, error) {
	var n Note
	err := row.Scan(&n.ID, &n.SiteID, &n.Title, &n.Content, &n.CreatedAt, &n.UpdatedAt)
	return n, err
}

// CreateNoteParams holds the fields for CreateNote.
type CreateNoteParams struct {
	SiteID    int64
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateNote inserts a dashboard note.
func (q *Queries) CreateNote(ctx context.Context, arg CreateNoteParams) (Note, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO notes (site_id, title, content, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING `+noteColumns,
		arg.SiteID, arg.Title, arg.Content, arg.CreatedAt, arg.UpdatedAt)
	return scanNote(row)
}

// GetNote fetches a note by id.
func (q *Queries) GetNote(ctx context.Context, id int64) (Note, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE id = ?`, id)
	return scanNote(row)
}

// ListNotes returns a site's notes, newest first.
func (q *Queries) ListNotes(ctx context.Context, siteID int64) ([]Note, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+noteColumns+` FROM notes WHERE site_id = ? ORDER BY updated_at DESC, id DESC`,
		siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []Note
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

// UpdateNoteParams holds the fields for UpdateNote.
type UpdateNoteParams struct {
	ID        int64
	Title     string
	Content   string
	UpdatedAt time.Time
}

// UpdateNote updates a note's title and content.
func (q *Queries) UpdateNote(ctx context.Context, arg UpdateNoteParams) (Note, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE notes SET title = ?, content = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+noteColumns,
		arg.Title, arg.Content, arg.UpdatedAt, arg.ID)
	return scanNote(row)
}

// DeleteNote removes a note.
func (q *Queries) DeleteNote(ctx context.Context, id int64) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ?`, id)
	return err
}

// Program events.

const programEventColumns = `id, site_id, time, title, description, location, position, created_at, updated_at`

func scanProgramEvent(row interface{ Scan(...any) error }) (ProgramEvent, error) {
	var p ProgramEvent
	err := row.Scan(&p.ID, &p.SiteID, &p.Time, &p.Title, &p.Description,
		&p.Location, &p.Position, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

// CreateProgramEventParams holds the fields for CreateProgramEvent.
type CreateProgramEventParams struct {
	SiteID      int64
	Time        string
	Title       string
	Description string
	Location    string
	Position    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateProgramEvent inserts a wedding-day program entry.
func (q *Queries) CreateProgramEvent(ctx context.Context, arg CreateProgramEventParams) (ProgramEvent, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO program_events (site_id, time, title, description, location, position, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+programEventColumns,
		arg.SiteID, arg.Time, arg.Title, arg.Description, arg.Location,
		arg.Position, arg.CreatedAt, arg.UpdatedAt)
	return scanProgramEvent(row)
}

// GetProgramEvent fetches a program entry by id.
func (q *Queries) GetProgramEvent(ctx context.Context, id int64) (ProgramEvent, error) {
	row := q.db.QueryRowContext(ctx,
		`SELECT `+programEventColumns+` FROM program_events WHERE id = ?`, id)
	return scanProgramEvent(row)
}

// ListProgramEvents returns a site's program in sequence order.
func (q *Queries) ListProgramEvents(ctx context.Context, siteID int64) ([]ProgramEvent, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+programEventColumns+` FROM program_events WHERE site_id = ? ORDER BY position`,
		siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []ProgramEvent
	for rows.Next() {
		p, err := scanProgramEvent(rows)
		if err != nil {
			return nil, err
		}
		events = append(events, p)
	}
	return events, rows.Err()
}

// MaxProgramEventPosition returns the highest position of a site's
// program, or -1 when empty.
func (q *Queries) MaxProgramEventPosition(ctx context.Context, siteID int64) (int64, error) {
	var pos int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) FROM program_events WHERE site_id = ?`,
		siteID).Scan(&pos)
	return pos, err
}

// UpdateProgramEventParams holds the fields for UpdateProgramEvent.
type UpdateProgramEventParams struct {
	ID          int64
	Time        string
	Title       string
	Description string
	Location    string
	UpdatedAt   time.Time
}

// UpdateProgramEvent updates a program entry.
func (q *Queries) UpdateProgramEvent(ctx context.Context, arg UpdateProgramEventParams) (ProgramEvent, error) {
	row := q.db.QueryRowContext(ctx, `
		UPDATE program_events SET time = ?, title = ?, description = ?, location = ?, updated_at = ?
		WHERE id = ?
		RETURNING `+programEventColumns,
		arg.Time, arg.Title, arg.Description, arg.Location, arg.UpdatedAt, arg.ID)
	return scanProgramEvent(row)
}

// SetProgramEventPosition moves one program entry to an explicit position.
func (q *Queries) SetProgramEventPosition(ctx context.Context, id, position int64) error {
	_, err := q.db.ExecContext(ctx,
		`UPDATE program_events SET position = ? WHERE id = ?`, position, id)
	return err
}

// DeleteProgramEvent removes a program entry and closes the position gap.
func (q *Queries) DeleteProgramEvent(ctx context.Context, siteID, id, position int64) error {
	if _, err := q.db.ExecContext(ctx,
		`DELETE FROM program_events WHERE id = ?`, id); err != nil {
		return err
	}
	_, err := q.db.ExecContext(ctx,
		`UPDATE program_events SET position = position - 1 WHERE site_id = ? AND position > ?`,
		siteID, position)
	return err
}

// Media.

const mediaColumns = `id, uuid, filename, original_name, mime_type, size, width, height, thumb_filename, created_at`

func scanMedia(row interface{ Scan(...any) error }) (Media, error) {
	var m Media
	err := row.Scan(&m.ID, &m.Uuid, &m.Filename, &m.OriginalName, &m.MimeType,
		&m.Size, &m.Width, &m.Height, &m.ThumbFilename, &m.CreatedAt)
	return m, err
}

// CreateMediaParams holds the fields for CreateMedia.
type CreateMediaParams struct {
	Uuid          string
	Filename      string
	OriginalName  string
	MimeType      string
	Size          int64
	Width         int64
	Height        int64
	ThumbFilename string
	CreatedAt     time.Time
}

// CreateMedia inserts an uploaded image record.
func (q *Queries) CreateMedia(ctx context.Context, arg CreateMediaParams) (Media, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO media (uuid, filename, original_name, mime_type, size, width, height, thumb_filename, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING `+mediaColumns,
		arg.Uuid, arg.Filename, arg.OriginalName, arg.MimeType, arg.Size,
		arg.Width, arg.Height, arg.ThumbFilename, arg.CreatedAt)
	return scanMedia(row)
}

// ListMedia returns all uploads, newest first.
func (q *Queries) ListMedia(ctx context.Context) ([]Media, error) {
	rows, err := q.db.QueryContext(ctx,
		`SELECT `+mediaColumns+` FROM media ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var media []Media
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		media = append(media, m)
	}
	return media, rows.Err()
}

// Event log.

// CreateEventParams holds the fields for CreateEvent.
type CreateEventParams struct {
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	IpAddress string
	Metadata  string
	CreatedAt time.Time
}

// CreateEvent inserts an event-log row.
func (q *Queries) CreateEvent(ctx context.Context, arg CreateEventParams) (Event, error) {
	row := q.db.QueryRowContext(ctx, `
		INSERT INTO events (level, category, message, user_id, ip_address, metadata, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		RETURNING id, level, category, message, user_id, ip_address, metadata, created_at`,
		arg.Level, arg.Category, arg.Message, arg.UserID, arg.IpAddress,
		arg.Metadata, arg.CreatedAt)

	var e Event
	err := row.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.UserID,
		&e.IpAddress, &e.Metadata, &e.CreatedAt)
	return e, err
}

// ListRecentEvents returns the newest event-log rows up to limit.
func (q *Queries) ListRecentEvents(ctx context.Context, limit int64) ([]Event, error) {
	rows, err := q.db.QueryContext(ctx, `
		SELECT id, level, category, message, user_id, ip_address, metadata, created_at
		FROM events ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var events []Event
	for rows.Next() {
		var e Event
		if err := rows.Scan(&e.ID, &e.Level, &e.Category, &e.Message, &e.UserID,
			&e.IpAddress, &e.Metadata, &e.CreatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// DeleteOldEvents removes event-log rows created before cutoff.
func (q *Queries) DeleteOldEvents(ctx context.Context, cutoff time.Time) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM events WHERE created_at < ?`, cutoff)
	return err
}

// Site visits.

// CreateSiteVisitParams holds the fields for CreateSiteVisit.
type CreateSiteVisitParams struct {
	SiteID     int64
	Path       string
	DeviceType string
	Browser    string
	OS         string
	Country    string
	VisitedAt  time.Time
}

// CreateSiteVisit records one public-site visit.
func (q *Queries) CreateSiteVisit(ctx context.Context, arg CreateSiteVisitParams) error {
	_, err := q.db.ExecContext(ctx, `
		INSERT INTO site_visits (site_id, path, device_type, browser, os, country, visited_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		arg.SiteID, arg.Path, arg.DeviceType, arg.Browser, arg.OS,
		arg.Country, arg.VisitedAt)
	return err
}

// VisitCount is one grouped visit-count row.
type VisitCount struct {
	Key   string
	Count int64
}

// CountSiteVisits returns the total visits for a site.
func (q *Queries) CountSiteVisits(ctx context.Context, siteID int64) (int64, error) {
	var n int64
	err := q.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM site_visits WHERE site_id = ?`, siteID).Scan(&n)
	return n, err
}

// CountSiteVisitsBy groups a site's visits by the given dimension, which
// must be one of the fixed column names the caller controls.
func (q *Queries) CountSiteVisitsBy(ctx context.Context, siteID int64, column string) ([]VisitCount, error) {
	switch column {
	case "device_type", "browser", "os", "country":
	default:
		return nil, sql.ErrNoRows
	}

	rows, err := q.db.QueryContext(ctx, `
		SELECT `+column+`, COUNT(*) FROM site_visits
		WHERE site_id = ? GROUP BY `+column+` ORDER BY COUNT(*) DESC`, siteID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var counts []VisitCount
	for rows.Next() {
		var vc VisitCount
		if err := rows.Scan(&vc.Key, &vc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, vc)
	}
	return counts, rows.Err()
}

// DeleteOldSiteVisits removes visit rows recorded before cutoff.
func (q *Queries) DeleteOldSiteVisits(ctx context.Context, cutoff time.Time) error {
	_, err := q.db.ExecContext(ctx, `DELETE FROM site_visits WHERE visited_at < ?`, cutoff)
	return err
}
