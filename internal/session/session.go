// Package session configures the SQLite-backed session manager shared by
// the dashboard and the public site.
package session

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// Session keys.
const (
	// KeyUserID holds the id of the logged-in user.
	KeyUserID = "userID"
)

// New creates a new session manager configured with SQLite store.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Secure = !isDev // Secure cookies in production only

	return sm
}

// unlockKey is the session key marking a password-protected site as
// unlocked for this visitor.
func unlockKey(siteID int64) string {
	return fmt.Sprintf("siteUnlocked:%d", siteID)
}

// MarkSiteUnlocked records that this visitor has entered the correct
// access code for the site.
func MarkSiteUnlocked(ctx context.Context, sm *scs.SessionManager, siteID int64) {
	sm.Put(ctx, unlockKey(siteID), true)
}

// SiteUnlocked reports whether this visitor has already unlocked the site.
func SiteUnlocked(ctx context.Context, sm *scs.SessionManager, siteID int64) bool {
	return sm.GetBool(ctx, unlockKey(siteID))
}
