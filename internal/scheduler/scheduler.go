// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs the background jobs: publishing sites whose
// scheduled time has arrived, pruning old event-log and visit rows, and
// reloading the GeoIP database.
package scheduler

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/haasivu/haasivu/internal/analytics"
	"github.com/haasivu/haasivu/internal/cache"
	"github.com/haasivu/haasivu/internal/store"
)

// Scheduler handles scheduled tasks like publishing sites.
type Scheduler struct {
	db            *sql.DB
	cron          *cron.Cron
	logger        *slog.Logger
	siteCache     cache.Cache
	geo           *analytics.GeoLookup
	retentionDays int
}

// New creates a new scheduler instance. siteCache entries of published
// sites are invalidated when a scheduled publish fires.
func New(db *sql.DB, logger *slog.Logger, siteCache cache.Cache, geo *analytics.GeoLookup, retentionDays int) *Scheduler {
	return &Scheduler{
		db:            db,
		cron:          cron.New(),
		logger:        logger,
		siteCache:     siteCache,
		geo:           geo,
		retentionDays: retentionDays,
	}
}

// Start registers the jobs and begins the scheduler: scheduled publishes
// every minute, retention pruning and GeoIP reload nightly.
func (s *Scheduler) Start() error {
	_, err := s.cron.AddFunc("* * * * *", func() {
		if err := s.processScheduledSites(); err != nil {
			s.logger.Error("failed to process scheduled sites", "error", err)
		}
	})
	if err != nil {
		return err
	}

	_, err = s.cron.AddFunc("30 3 * * *", func() {
		if err := s.pruneOldRows(); err != nil {
			s.logger.Error("failed to prune old rows", "error", err)
		}
		if err := s.geo.Reload(); err != nil {
			s.logger.Warn("failed to reload GeoIP database", "error", err)
		}
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// processScheduledSites publishes sites whose scheduled time has passed.
func (s *Scheduler) processScheduledSites() error {
	ctx := context.Background()
	queries := store.New(s.db)

	now := time.Now()
	sites, err := queries.ListScheduledSites(ctx, now)
	if err != nil {
		return err
	}

	if len(sites) == 0 {
		return nil
	}

	s.logger.Info("processing scheduled sites", "count", len(sites))

	for _, site := range sites {
		if err := s.publishSite(ctx, queries, site, now); err != nil {
			s.logger.Error("failed to publish scheduled site",
				"site_id", site.ID,
				"site_name", site.Name,
				"error", err,
			)
			continue
		}

		s.logger.Info("published scheduled site",
			"site_id", site.ID,
			"site_name", site.Name,
			"scheduled_at", site.ScheduledAt.Time,
		)
	}

	return nil
}

// publishSite publishes a single scheduled site and logs the event.
func (s *Scheduler) publishSite(ctx context.Context, queries *store.Queries, site store.Site, now time.Time) error {
	_, err := queries.SetSitePublished(ctx, store.SetSitePublishedParams{
		ID:          site.ID,
		Published:   true,
		PublishedAt: sql.NullTime{Time: now, Valid: true},
		UpdatedAt:   now,
	})
	if err != nil {
		return err
	}

	if err := s.siteCache.Delete(ctx, cache.SiteKey(site.Slug)); err != nil {
		s.logger.Warn("failed to invalidate site cache", "slug", site.Slug, "error", err)
	}

	metadata := map[string]interface{}{
		"site_id":      site.ID,
		"site_name":    site.Name,
		"site_slug":    site.Slug,
		"scheduled_at": site.ScheduledAt.Time.Format(time.RFC3339),
		"published_at": now.Format(time.RFC3339),
	}
	metadataJSON, _ := json.Marshal(metadata)

	_, err = queries.CreateEvent(ctx, store.CreateEventParams{
		Level:     "info",
		Category:  "site",
		Message:   "Site published automatically by scheduler: " + site.Name,
		UserID:    sql.NullInt64{}, // System action, no user
		Metadata:  string(metadataJSON),
		CreatedAt: now,
	})
	if err != nil {
		s.logger.Warn("failed to log scheduled publish event", "error", err)
	}

	return nil
}

// pruneOldRows removes event-log and visit rows past the retention window.
func (s *Scheduler) pruneOldRows() error {
	if s.retentionDays <= 0 {
		return nil
	}

	ctx := context.Background()
	queries := store.New(s.db)
	cutoff := time.Now().AddDate(0, 0, -s.retentionDays)

	if err := queries.DeleteOldEvents(ctx, cutoff); err != nil {
		return err
	}
	if err := queries.DeleteOldSiteVisits(ctx, cutoff); err != nil {
		return err
	}

	s.logger.Info("pruned old rows", "cutoff", cutoff.Format(time.RFC3339))
	return nil
}
