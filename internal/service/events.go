// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides business logic shared across handlers,
// including event logging for the audit trail.
package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"github.com/haasivu/haasivu/internal/store"
)

// Event levels
const (
	EventLevelInfo    = "info"
	EventLevelWarning = "warning"
	EventLevelError   = "error"
)

// Event categories
const (
	EventCategoryAuth   = "auth"
	EventCategorySite   = "site"
	EventCategoryGuest  = "guest"
	EventCategoryRsvp   = "rsvp"
	EventCategorySystem = "system"
	EventCategoryCache  = "cache"
)

// EventService provides event logging functionality.
type EventService struct {
	queries *store.Queries
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{
		queries: store.New(db),
	}
}

// LogEvent creates a new event log entry.
func (s *EventService) LogEvent(ctx context.Context, level, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	var nullUserID sql.NullInt64
	if userID != nil {
		nullUserID = sql.NullInt64{Int64: *userID, Valid: true}
	}

	metadataJSON := "{}"
	if metadata != nil {
		jsonBytes, err := json.Marshal(metadata)
		if err == nil {
			metadataJSON = string(jsonBytes)
		}
	}

	_, err := s.queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     level,
		Category:  category,
		Message:   message,
		UserID:    nullUserID,
		Metadata:  metadataJSON,
		IpAddress: ipAddress,
		CreatedAt: time.Now(),
	})
	if err != nil {
		log.Printf("Failed to log event: %v", err)
		return err
	}

	return nil
}

// LogInfo logs an info-level event.
func (s *EventService) LogInfo(ctx context.Context, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, EventLevelInfo, category, message, userID, ipAddress, metadata)
}

// LogWarning logs a warning-level event.
func (s *EventService) LogWarning(ctx context.Context, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, EventLevelWarning, category, message, userID, ipAddress, metadata)
}

// LogError logs an error-level event.
func (s *EventService) LogError(ctx context.Context, category, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, EventLevelError, category, message, userID, ipAddress, metadata)
}

// LogAuthEvent logs an authentication-related event.
func (s *EventService) LogAuthEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, EventCategoryAuth, message, userID, ipAddress, metadata)
}

// LogSiteEvent logs a site editing or publishing event.
func (s *EventService) LogSiteEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, EventCategorySite, message, userID, ipAddress, metadata)
}

// LogGuestEvent logs a guest-list management event.
func (s *EventService) LogGuestEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, EventCategoryGuest, message, userID, ipAddress, metadata)
}

// LogRsvpEvent logs an RSVP submission event.
func (s *EventService) LogRsvpEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, EventCategoryRsvp, message, userID, ipAddress, metadata)
}

// LogSystemEvent logs a system-related event.
func (s *EventService) LogSystemEvent(ctx context.Context, level, message string, userID *int64, ipAddress string, metadata map[string]any) error {
	return s.LogEvent(ctx, level, EventCategorySystem, message, userID, ipAddress, metadata)
}

// DeleteOldEvents removes events older than the specified duration.
func (s *EventService) DeleteOldEvents(ctx context.Context, olderThan time.Duration) error {
	cutoff := time.Now().Add(-olderThan)
	return s.queries.DeleteOldEvents(ctx, cutoff)
}
