// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"database/sql"
	"time"
)

// User is a dashboard account.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Role         string
	Name         string
	Avatar       string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  sql.NullTime
}

// Site is one couple's wedding microsite record.
type Site struct {
	ID                int64
	Name              string
	Slug              string
	Theme             string
	Template          string
	Published         bool
	PublishedAt       sql.NullTime
	ScheduledAt       sql.NullTime
	PasswordProtected bool
	AccessCodeHash    string
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// Block is one stored content block row. Data is the JSON payload; its
// shape depends on Type.
type Block struct {
	ID        string
	SiteID    int64
	Type      string
	Position  int64
	Data      string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// GuestCard is one invited party.
type GuestCard struct {
	ID                   int64
	SiteID               int64
	Name                 string
	Email                string
	InviteCode           string
	InvitationSent       bool
	InvitationSentDate   sql.NullTime
	InvitationViewed     bool
	InvitationViewedDate sql.NullTime
	RsvpStatus           sql.NullString
	RsvpDate             sql.NullTime
	Confirmed            bool
	CreatedAt            time.Time
	UpdatedAt            time.Time
}

// Guest is one individual within a guest card.
type Guest struct {
	ID          int64
	CardID      int64
	Name        string
	RsvpStatus  sql.NullString
	Dietary     string
	Message     string
	RespondedAt sql.NullTime
}

// Note is one dashboard note.
type Note struct {
	ID        int64
	SiteID    int64
	Title     string
	Content   string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// ProgramEvent is one entry of the dashboard's wedding-day program.
type ProgramEvent struct {
	ID          int64
	SiteID      int64
	Time        string
	Title       string
	Description string
	Location    string
	Position    int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Media is one uploaded image.
type Media struct {
	ID            int64
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

// Event is one event-log row.
type Event struct {
	ID        int64
	Level     string
	Category  string
	Message   string
	UserID    sql.NullInt64
	IpAddress string
	Metadata  string
	CreatedAt time.Time
}

// SiteVisit is one public-site visit record.
type SiteVisit struct {
	ID         int64
	SiteID     int64
	Path       string
	DeviceType string
	Browser    string
	OS         string
	Country    string
	VisitedAt  time.Time
}
