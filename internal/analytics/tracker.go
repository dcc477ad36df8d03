// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package analytics records visits to published wedding sites and
// aggregates them for the couple's dashboard. No IP addresses or other
// identifiers are stored, only coarse device, browser, OS and country
// dimensions.
package analytics

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/mileusna/useragent"

	"github.com/haasivu/haasivu/internal/store"
	"github.com/haasivu/haasivu/internal/util"
)

// Tracker records site visits.
type Tracker struct {
	queries *store.Queries
	geo     *GeoLookup
}

// NewTracker creates a visit tracker. geo may be a disabled lookup.
func NewTracker(queries *store.Queries, geo *GeoLookup) *Tracker {
	return &Tracker{queries: queries, geo: geo}
}

// Record stores one visit to a published site. Bot traffic is counted
// too, flagged with the "bot" device type. Errors are logged, not
// returned: analytics must never break serving the page.
func (t *Tracker) Record(ctx context.Context, siteID int64, r *http.Request) {
	ua := useragent.Parse(r.UserAgent())

	browser := ua.Name
	if browser == "" {
		browser = "Unknown"
	}
	os := ua.OS
	if os == "" {
		os = "Unknown"
	}

	var deviceType string
	switch {
	case ua.Mobile:
		deviceType = "mobile"
	case ua.Tablet:
		deviceType = "tablet"
	case ua.Bot:
		deviceType = "bot"
	default:
		deviceType = "desktop"
	}

	err := t.queries.CreateSiteVisit(ctx, store.CreateSiteVisitParams{
		SiteID:     siteID,
		Path:       r.URL.Path,
		DeviceType: deviceType,
		Browser:    browser,
		OS:         os,
		Country:    t.geo.LookupCountry(util.ClientIP(r)),
		VisitedAt:  time.Now(),
	})
	if err != nil {
		slog.Error("recording site visit", "siteID", siteID, "error", err)
	}
}

// VisitStats aggregates a site's visits for the dashboard.
type VisitStats struct {
	Total     int64              `json:"total"`
	ByDevice  []store.VisitCount `json:"byDevice"`
	ByBrowser []store.VisitCount `json:"byBrowser"`
	ByCountry []store.VisitCount `json:"byCountry"`
}

// Stats returns the aggregated visit statistics for a site.
func (t *Tracker) Stats(ctx context.Context, siteID int64) (VisitStats, error) {
	total, err := t.queries.CountSiteVisits(ctx, siteID)
	if err != nil {
		return VisitStats{}, err
	}
	byDevice, err := t.queries.CountSiteVisitsBy(ctx, siteID, "device_type")
	if err != nil {
		return VisitStats{}, err
	}
	byBrowser, err := t.queries.CountSiteVisitsBy(ctx, siteID, "browser")
	if err != nil {
		return VisitStats{}, err
	}
	byCountry, err := t.queries.CountSiteVisitsBy(ctx, siteID, "country")
	if err != nil {
		return VisitStats{}, err
	}

	return VisitStats{
		Total:     total,
		ByDevice:  byDevice,
		ByBrowser: byBrowser,
		ByCountry: byCountry,
	}, nil
}
