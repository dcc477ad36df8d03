package public

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/haasivu/haasivu/internal/analytics"
	"github.com/haasivu/haasivu/internal/cache"
	"github.com/haasivu/haasivu/internal/guest"
	"github.com/haasivu/haasivu/internal/service"
	"github.com/haasivu/haasivu/internal/session"
	"github.com/haasivu/haasivu/internal/site"
	"github.com/haasivu/haasivu/internal/store"
	"github.com/haasivu/haasivu/internal/testutil"
)

type testEnv struct {
	t      *testing.T
	db     *sql.DB
	sites  *site.Service
	guests *guest.Service
	srv    *httptest.Server
	client *http.Client
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, cleanup := testutil.TestDB(t)
	t.Cleanup(cleanup)

	siteCache := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	t.Cleanup(func() { _ = siteCache.Close() })

	sessions := session.New(db, true)
	sites := site.NewService(db, siteCache)
	guests := guest.NewService(db)

	h := NewHandler(Config{
		Sites:    sites,
		Guests:   guests,
		Events:   service.NewEventService(db),
		Sessions: sessions,
		Tracker:  analytics.NewTracker(store.New(db), analytics.NewGeoLookup()),
	})

	r := chi.NewRouter()
	r.Use(sessions.LoadAndSave)
	r.Mount("/", h.Routes())

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookiejar: %v", err)
	}

	return &testEnv{
		t:      t,
		db:     db,
		sites:  sites,
		guests: guests,
		srv:    srv,
		client: &http.Client{Jar: jar},
	}
}

// publishedSite creates and publishes a site with the default blocks.
func (e *testEnv) publishedSite(slug string) store.Site {
	e.t.Helper()
	ctx := context.Background()

	s, err := e.sites.Create(ctx, "Testihäät", slug)
	if err != nil {
		e.t.Fatalf("Create: %v", err)
	}
	if _, err := e.sites.AddBlock(ctx, s.ID, "hero"); err != nil {
		e.t.Fatalf("AddBlock: %v", err)
	}
	published, err := e.sites.Publish(ctx, s.ID)
	if err != nil {
		e.t.Fatalf("Publish: %v", err)
	}
	return published
}

func (e *testEnv) get(path string) (*http.Response, []byte) {
	e.t.Helper()
	resp, err := e.client.Get(e.srv.URL + path)
	if err != nil {
		e.t.Fatalf("GET %s: %v", path, err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

func (e *testEnv) post(path string, body any) (*http.Response, []byte) {
	e.t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		e.t.Fatalf("marshal: %v", err)
	}
	resp, err := e.client.Post(e.srv.URL+path, "application/json", bytes.NewReader(raw))
	if err != nil {
		e.t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	return resp, buf.Bytes()
}

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

func TestHealthz(t *testing.T) {
	e := newTestEnv(t)
	resp, _ := e.get("/healthz")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("healthz: status = %d", resp.StatusCode)
	}
}

func TestUnpublishedSiteIsNotFound(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	if _, err := e.sites.Create(ctx, "Salaiset häät", "salaiset-haat"); err != nil {
		t.Fatalf("Create: %v", err)
	}

	resp, _ := e.get("/s/salaiset-haat")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unpublished: status = %d, want 404", resp.StatusCode)
	}
	resp, _ = e.get("/s/olematon")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown slug: status = %d, want 404", resp.StatusCode)
	}
}

func TestPublishedSitePayload(t *testing.T) {
	e := newTestEnv(t)
	e.publishedSite("juhannushaat")

	resp, body := e.get("/s/juhannushaat")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, body %s", resp.StatusCode, body)
	}

	var payload site.PublicPayload
	decodeData(t, body, &payload)
	if payload.Slug != "juhannushaat" {
		t.Errorf("slug = %q", payload.Slug)
	}
	if len(payload.Blocks) != 1 || string(payload.Blocks[0].Type) != "hero" {
		t.Errorf("blocks = %+v", payload.Blocks)
	}
	if payload.PasswordProtected {
		t.Error("site should not be protected")
	}
}

func TestAccessCodeGate(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	s := e.publishedSite("suojatut-haat")
	if _, err := e.sites.SetAccessCode(ctx, s.ID, "kulta42"); err != nil {
		t.Fatalf("SetAccessCode: %v", err)
	}

	resp, body := e.get("/s/suojatut-haat")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("locked: status = %d, want 401", resp.StatusCode)
	}
	var errResp struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("unmarshal error: %v", err)
	}
	if errResp.Error.Code != "access_code_required" {
		t.Errorf("code = %q, want access_code_required", errResp.Error.Code)
	}

	resp, _ = e.post("/s/suojatut-haat/unlock", map[string]string{"code": "väärä"})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("wrong code: status = %d, want 401", resp.StatusCode)
	}
	resp, _ = e.get("/s/suojatut-haat")
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("still locked after wrong code: status = %d", resp.StatusCode)
	}

	resp, _ = e.post("/s/suojatut-haat/unlock", map[string]string{"code": "kulta42"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unlock: status = %d", resp.StatusCode)
	}
	resp, _ = e.get("/s/suojatut-haat")
	if resp.StatusCode != http.StatusOK {
		t.Errorf("after unlock: status = %d, want 200", resp.StatusCode)
	}
}

func TestInvitationStampsViewed(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	s := e.publishedSite("kutsuhaat")
	card, err := e.guests.AddCard(ctx, guest.AddCardParams{
		SiteID: s.ID,
		Name:   "Perhe Mäkinen",
		Guests: []guest.GuestInput{{Name: "Pekka Mäkinen"}},
	})
	if err != nil {
		t.Fatalf("AddCard: %v", err)
	}

	resp, _ := e.get("/i/olematonkoodi")
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("unknown code: status = %d, want 404", resp.StatusCode)
	}

	resp, body := e.get("/i/" + card.Card.InviteCode)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("invitation: status = %d, body %s", resp.StatusCode, body)
	}
	var view invitationView
	decodeData(t, body, &view)
	if !view.Card.Card.InvitationViewed {
		t.Error("card not stamped viewed")
	}
	if view.Site == nil || view.Site.Slug != "kutsuhaat" {
		t.Errorf("invitation site = %+v", view.Site)
	}
}

func TestRSVPFlow(t *testing.T) {
	e := newTestEnv(t)
	ctx := context.Background()

	s := e.publishedSite("rsvphaat")
	card, err := e.guests.AddCard(ctx, guest.AddCardParams{
		SiteID: s.ID,
		Name:   "Perhe Nieminen",
		Guests: []guest.GuestInput{{Name: "Noora Nieminen"}, {Name: "Niilo Nieminen"}},
	})
	if err != nil {
		t.Fatalf("AddCard: %v", err)
	}

	responses := []guest.RsvpResponse{
		{GuestID: card.Guests[0].ID, Status: "tulossa", Dietary: "vegaani"},
		{GuestID: card.Guests[1].ID, Status: "ei_tule"},
	}
	resp, body := e.post("/s/rsvphaat/rsvp", map[string]any{
		"code":      card.Card.InviteCode,
		"responses": responses,
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("rsvp: status = %d, body %s", resp.StatusCode, body)
	}

	var detail guest.CardDetail
	decodeData(t, body, &detail)
	if !detail.Card.RsvpStatus.Valid || detail.Card.RsvpStatus.String != "tulossa" {
		t.Errorf("card status = %+v, want tulossa", detail.Card.RsvpStatus)
	}

	// Only the definite answers are accepted; the unanswered state is not
	// something a guest can submit.
	for _, status := range []string{"ehkä", "ei_vastausta"} {
		resp, _ = e.post("/s/rsvphaat/rsvp", map[string]any{
			"code": card.Card.InviteCode,
			"responses": []guest.RsvpResponse{
				{GuestID: card.Guests[0].ID, Status: status},
			},
		})
		if resp.StatusCode != http.StatusUnprocessableEntity {
			t.Errorf("status %q: status = %d, want 422", status, resp.StatusCode)
		}
	}

	// A code from another site's card is not accepted on this slug.
	other := e.publishedSite("toiset-haat")
	otherCard, err := e.guests.AddCard(ctx, guest.AddCardParams{
		SiteID: other.ID,
		Name:   "Perhe Laine",
		Guests: []guest.GuestInput{{Name: "Leena Laine"}},
	})
	if err != nil {
		t.Fatalf("AddCard: %v", err)
	}
	resp, _ = e.post("/s/rsvphaat/rsvp", map[string]any{
		"code": otherCard.Card.InviteCode,
		"responses": []guest.RsvpResponse{
			{GuestID: otherCard.Guests[0].ID, Status: "tulossa"},
		},
	})
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("cross-site code: status = %d, want 404", resp.StatusCode)
	}
}
