// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package analytics

import (
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/oschwald/maxminddb-golang"

	"github.com/haasivu/haasivu/internal/util"
)

// GeoLookup handles IP to country lookup using the MaxMind
// GeoLite2-Country database.
type GeoLookup struct {
	db          *maxminddb.Reader
	dbPath      string
	dbModTime   time.Time
	initialized bool
	enabled     bool
	mu          sync.RWMutex
}

// geoRecord matches the GeoLite2-Country database structure.
type geoRecord struct {
	Country struct {
		ISOCode string `maxminddb:"iso_code"`
	} `maxminddb:"country"`
}

// NewGeoLookup creates a new GeoIP lookup instance.
func NewGeoLookup() *GeoLookup {
	return &GeoLookup{}
}

// Init initializes the GeoIP database from the given path. If path is
// empty, GeoIP lookups are disabled and visits are recorded without a
// country.
func (g *GeoLookup) Init(dbPath string) error {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.initialized = true
	g.dbPath = dbPath

	if dbPath == "" {
		g.enabled = false
		return nil
	}

	return g.loadDatabase()
}

// loadDatabase loads or reloads the MaxMind database.
// Caller must hold g.mu write lock.
func (g *GeoLookup) loadDatabase() error {
	info, err := os.Stat(g.dbPath)
	if err != nil {
		g.enabled = false
		if os.IsNotExist(err) {
			return fmt.Errorf("GeoIP database not found: %s", g.dbPath)
		}
		return fmt.Errorf("GeoIP database stat error: %w", err)
	}

	// Skip reload if not modified
	if g.db != nil && info.ModTime().Equal(g.dbModTime) {
		return nil
	}

	if g.db != nil {
		_ = g.db.Close()
		g.db = nil
	}

	db, err := maxminddb.Open(g.dbPath)
	if err != nil {
		g.enabled = false
		return fmt.Errorf("failed to open GeoIP database: %w", err)
	}

	g.db = db
	g.dbModTime = info.ModTime()
	g.enabled = true

	return nil
}

// Reload reloads the GeoIP database if it has been updated on disk.
// Safe to call periodically from the scheduler.
func (g *GeoLookup) Reload() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.dbPath == "" {
		return nil
	}

	return g.loadDatabase()
}

// LookupCountry returns the 2-letter ISO country code for an IP address,
// "LOCAL" for private/loopback addresses, or "" when the country cannot
// be determined.
func (g *GeoLookup) LookupCountry(ip string) string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if !g.initialized {
		return ""
	}

	parsedIP := net.ParseIP(ip)
	if parsedIP == nil {
		return ""
	}

	if util.IsPrivateIP(parsedIP) || parsedIP.IsLoopback() {
		return "LOCAL"
	}

	if !g.enabled || g.db == nil {
		return ""
	}

	var record geoRecord
	if err := g.db.Lookup(parsedIP, &record); err != nil {
		return ""
	}

	return record.Country.ISOCode
}

// IsEnabled returns whether GeoIP lookups are available.
func (g *GeoLookup) IsEnabled() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.enabled
}

// Close closes the GeoIP database.
func (g *GeoLookup) Close() error {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.db != nil {
		err := g.db.Close()
		g.db = nil
		g.enabled = false
		return err
	}
	return nil
}
