package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/haasivu/haasivu/internal/aitext"
	"github.com/haasivu/haasivu/internal/analytics"
	"github.com/haasivu/haasivu/internal/cache"
	"github.com/haasivu/haasivu/internal/guest"
	"github.com/haasivu/haasivu/internal/imaging"
	"github.com/haasivu/haasivu/internal/middleware"
	"github.com/haasivu/haasivu/internal/service"
	"github.com/haasivu/haasivu/internal/session"
	"github.com/haasivu/haasivu/internal/site"
	"github.com/haasivu/haasivu/internal/store"
	"github.com/haasivu/haasivu/internal/testutil"
)

// testServer wires the API handler onto a real HTTP server with a
// seeded database and a cookie-carrying client.
type testServer struct {
	t      *testing.T
	srv    *httptest.Server
	client *http.Client
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	if err := store.Seed(context.Background(), db); err != nil {
		t.Fatalf("Seed: %v", err)
	}

	siteCache := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = siteCache.Close() })

	sessions := session.New(db, true)

	h := NewHandler(Config{
		DB:        db,
		Sites:     site.NewService(db, siteCache),
		Guests:    guest.NewService(db),
		Events:    service.NewEventService(db),
		Sessions:  sessions,
		Guard:     middleware.NewLoginProtection(middleware.DefaultLoginProtectionConfig()),
		Processor: imaging.NewProcessor(t.TempDir()),
		Suggester: aitext.NewSuggester("", ""),
		Tracker:   analytics.NewTracker(store.New(db), analytics.NewGeoLookup()),
	})

	r := chi.NewRouter()
	r.Use(sessions.LoadAndSave)
	r.Mount("/api/v1", h.Routes())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}

	return &testServer{t: t, srv: srv, client: &http.Client{Jar: jar}}
}

// do sends a JSON request to an /api/v1 path and returns the response
// with its body read.
func (ts *testServer) do(method, path string, body any) (*http.Response, []byte) {
	ts.t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			ts.t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, ts.srv.URL+"/api/v1"+path, reader)
	if err != nil {
		ts.t.Fatalf("NewRequest: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ts.client.Do(req)
	if err != nil {
		ts.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		ts.t.Fatalf("reading body: %v", err)
	}
	return resp, buf.Bytes()
}

// decodeData unmarshals the data field of a response envelope.
func decodeData(t *testing.T, raw []byte, dst any) {
	t.Helper()
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(raw, &envelope); err != nil {
		t.Fatalf("unmarshal envelope: %v\nbody: %s", err, raw)
	}
	if err := json.Unmarshal(envelope.Data, dst); err != nil {
		t.Fatalf("unmarshal data: %v\ndata: %s", err, envelope.Data)
	}
}

func (ts *testServer) login(email, password string) {
	ts.t.Helper()
	resp, body := ts.do(http.MethodPost, "/auth/login",
		map[string]string{"email": email, "password": password})
	if resp.StatusCode != http.StatusOK {
		ts.t.Fatalf("login as %s: status %d, body %s", email, resp.StatusCode, body)
	}
}

func (ts *testServer) loginCouple() {
	ts.login(store.DefaultCoupleEmail, store.DefaultCouplePassword)
}

func TestStatusIsOpen(t *testing.T) {
	ts := newTestServer(t)

	resp, body := ts.do(http.MethodGet, "/status", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	var got struct {
		Status string `json:"status"`
	}
	decodeData(t, body, &got)
	if got.Status != "ok" {
		t.Errorf("status = %q, want ok", got.Status)
	}
}

func TestLoginRejectsWrongPassword(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(http.MethodPost, "/auth/login",
		map[string]string{"email": store.DefaultCoupleEmail, "password": "väärä"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong password: status = %d, want 401", resp.StatusCode)
	}

	resp, _ = ts.do(http.MethodPost, "/auth/login",
		map[string]string{"email": "tuntematon@example.com", "password": "jotain"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("unknown email: status = %d, want 401", resp.StatusCode)
	}
}

func TestLoginLogoutMe(t *testing.T) {
	ts := newTestServer(t)

	resp, _ := ts.do(http.MethodGet, "/auth/me", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("me before login: status = %d, want 401", resp.StatusCode)
	}

	ts.loginCouple()

	resp, body := ts.do(http.MethodGet, "/auth/me", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("me after login: status = %d", resp.StatusCode)
	}

	var me struct {
		Email        string          `json:"email"`
		Role         string          `json:"role"`
		Capabilities map[string]bool `json:"capabilities"`
	}
	decodeData(t, body, &me)
	if me.Email != store.DefaultCoupleEmail {
		t.Errorf("email = %q", me.Email)
	}
	if me.Role != "pariskunta" {
		t.Errorf("role = %q, want pariskunta", me.Role)
	}
	if !me.Capabilities["manageGuests"] || !me.Capabilities["publishSite"] {
		t.Errorf("couple capabilities missing: %v", me.Capabilities)
	}

	resp, _ = ts.do(http.MethodPost, "/auth/logout", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("logout: status = %d", resp.StatusCode)
	}

	resp, _ = ts.do(http.MethodGet, "/auth/me", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("me after logout: status = %d, want 401", resp.StatusCode)
	}
}

func TestGuestRoleIsCapabilityLimited(t *testing.T) {
	ts := newTestServer(t)
	ts.login(store.DefaultGuestEmail, store.DefaultGuestPassword)

	// vieras has viewDashboard and managePhotos only.
	resp, _ := ts.do(http.MethodGet, "/sites", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /sites: status = %d, want 200", resp.StatusCode)
	}
	resp, _ = ts.do(http.MethodGet, "/media", nil)
	if resp.StatusCode != http.StatusOK {
		t.Errorf("GET /media: status = %d, want 200", resp.StatusCode)
	}
	resp, _ = ts.do(http.MethodPost, "/sites", map[string]string{"name": "Uusi"})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("POST /sites: status = %d, want 403", resp.StatusCode)
	}
	resp, _ = ts.do(http.MethodGet, "/sites/1/guest-cards", nil)
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("GET guest-cards: status = %d, want 403", resp.StatusCode)
	}
}

func TestSwitchRole(t *testing.T) {
	ts := newTestServer(t)
	ts.loginCouple()

	resp, _ := ts.do(http.MethodPost, "/auth/switch-role", map[string]string{"role": "siivooja"})
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("unknown role: status = %d, want 422", resp.StatusCode)
	}

	resp, body := ts.do(http.MethodPost, "/auth/switch-role", map[string]string{"role": "vieras"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("switch to vieras: status = %d", resp.StatusCode)
	}

	var me struct {
		Role         string          `json:"role"`
		Capabilities map[string]bool `json:"capabilities"`
	}
	decodeData(t, body, &me)
	if me.Role != "vieras" {
		t.Fatalf("role = %q, want vieras", me.Role)
	}
	if me.Capabilities["manageBudget"] {
		t.Error("vieras must not have manageBudget")
	}
	if !me.Capabilities["managePhotos"] {
		t.Error("vieras must keep managePhotos")
	}

	// The reduced role is enforced on the next request.
	resp, _ = ts.do(http.MethodPost, "/sites", map[string]string{"name": "Uusi"})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("POST /sites as vieras: status = %d, want 403", resp.StatusCode)
	}

	resp, _ = ts.do(http.MethodPost, "/auth/switch-role", map[string]string{"role": "pariskunta"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("switch back: status = %d", resp.StatusCode)
	}
}

func TestSuggestionsDisabledWithoutKey(t *testing.T) {
	ts := newTestServer(t)
	ts.loginCouple()

	resp, _ := ts.do(http.MethodPost, "/ai/suggest",
		map[string]string{"kind": "welcome"})
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("suggest without key: status = %d, want 503", resp.StatusCode)
	}
}
