package site

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/haasivu/haasivu/internal/block"
	"github.com/haasivu/haasivu/internal/cache"
	"github.com/haasivu/haasivu/internal/store"
	"github.com/haasivu/haasivu/internal/testutil"
	"github.com/haasivu/haasivu/internal/theme"
)

func testService(t *testing.T) (*Service, func()) {
	t.Helper()
	db, cleanup := testutil.TestDB(t)
	return NewService(db, nil), cleanup
}

func TestCreate(t *testing.T) {
	svc, cleanup := testService(t)
	defer cleanup()
	ctx := context.Background()

	site, err := svc.Create(ctx, "Meidän häät", "")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if site.Slug != "meidan-haat" {
		t.Errorf("slug = %q, want meidan-haat", site.Slug)
	}
	if site.Theme != theme.DefaultThemeID || site.Template != theme.DefaultTemplateID {
		t.Errorf("theme/template = %q/%q, want defaults", site.Theme, site.Template)
	}
	if site.Published {
		t.Error("new site should not be published")
	}

	if _, err := svc.Create(ctx, "Toiset", "meidan-haat"); !errors.Is(err, ErrSlugTaken) {
		t.Errorf("duplicate slug error = %v, want ErrSlugTaken", err)
	}
	if _, err := svc.Create(ctx, "Huono", "Ei Kelpaa!"); !errors.Is(err, ErrInvalidSlug) {
		t.Errorf("invalid slug error = %v, want ErrInvalidSlug", err)
	}
}

func TestAddBlockUsesTemplateDefaults(t *testing.T) {
	svc, cleanup := testService(t)
	defer cleanup()
	ctx := context.Background()

	site, err := svc.Create(ctx, "Häät", "haat")
	if err != nil {
		t.Fatal(err)
	}

	blk, err := svc.AddBlock(ctx, site.ID, block.TypeHero)
	if err != nil {
		t.Fatalf("AddBlock: %v", err)
	}

	hero, ok := blk.Data.(block.HeroData)
	if !ok {
		t.Fatalf("data type = %T", blk.Data)
	}
	// klassinen-valkoinen overrides the hero title color.
	if hero.Styles["titleColor"] != "#ffffff" {
		t.Errorf("titleColor = %q, want template override", hero.Styles["titleColor"])
	}
	// Base default keys survive.
	if hero.Styles["textAlign"] != "center" {
		t.Errorf("textAlign = %q, want center", hero.Styles["textAlign"])
	}

	if _, err := svc.AddBlock(ctx, site.ID, block.Type("video")); !errors.Is(err, ErrUnknownBlockType) {
		t.Errorf("unknown type error = %v, want ErrUnknownBlockType", err)
	}
}

func TestBlockOrdering(t *testing.T) {
	svc, cleanup := testService(t)
	defer cleanup()
	ctx := context.Background()

	site, err := svc.Create(ctx, "Häät", "haat")
	if err != nil {
		t.Fatal(err)
	}

	var added []string
	for _, bt := range []block.Type{block.TypeHero, block.TypeText, block.TypeRSVP} {
		blk, err := svc.AddBlock(ctx, site.ID, bt)
		if err != nil {
			t.Fatal(err)
		}
		added = append(added, blk.ID)
	}

	order := func() []string {
		seq, err := svc.Blocks(ctx, site.ID)
		if err != nil {
			t.Fatal(err)
		}
		out := make([]string, len(seq))
		for i, b := range seq {
			out[i] = b.ID
		}
		return out
	}

	got := order()
	for i, id := range added {
		if got[i] != id {
			t.Fatalf("initial order = %v, want %v", got, added)
		}
	}

	// Move the middle block up and verify persistence.
	if err := svc.MoveBlock(ctx, site.ID, added[1], DirectionUp); err != nil {
		t.Fatalf("MoveBlock: %v", err)
	}
	got = order()
	if got[0] != added[1] || got[1] != added[0] {
		t.Errorf("order after move = %v", got)
	}

	// Boundary move is a no-op.
	if err := svc.MoveBlock(ctx, site.ID, added[1], DirectionUp); err != nil {
		t.Fatalf("boundary MoveBlock: %v", err)
	}
	if again := order(); again[0] != added[1] {
		t.Errorf("boundary move changed order: %v", again)
	}

	// Delete the first block: the rest close the gap, order preserved.
	if err := svc.DeleteBlock(ctx, site.ID, added[1]); err != nil {
		t.Fatalf("DeleteBlock: %v", err)
	}
	got = order()
	if len(got) != 2 || got[0] != added[0] || got[1] != added[2] {
		t.Errorf("order after delete = %v, want [%s %s]", got, added[0], added[2])
	}

	// New block lands at the end.
	blk, err := svc.AddBlock(ctx, site.ID, block.TypeDivider)
	if err != nil {
		t.Fatal(err)
	}
	got = order()
	if got[len(got)-1] != blk.ID {
		t.Errorf("new block not at end: %v", got)
	}

	if err := svc.MoveBlock(ctx, site.ID, "missing", DirectionUp); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("missing block error = %v, want ErrBlockNotFound", err)
	}

	// Listing an unknown site is not an empty page.
	if _, err := svc.Blocks(ctx, site.ID+1000); !errors.Is(err, ErrSiteNotFound) {
		t.Errorf("unknown site error = %v, want ErrSiteNotFound", err)
	}
}

func TestEditBlock(t *testing.T) {
	svc, cleanup := testService(t)
	defer cleanup()
	ctx := context.Background()

	site, err := svc.Create(ctx, "Häät", "haat")
	if err != nil {
		t.Fatal(err)
	}
	blk, err := svc.AddBlock(ctx, site.ID, block.TypeText)
	if err != nil {
		t.Fatal(err)
	}

	raw := json.RawMessage(`{"title":"Tarinamme","content":"Tapasimme **Turussa**.","styles":{"textAlign":"center"}}`)
	updated, err := svc.EditBlock(ctx, site.ID, blk.ID, raw)
	if err != nil {
		t.Fatalf("EditBlock: %v", err)
	}

	text := updated.Data.(block.TextData)
	if text.Content != "Tapasimme **Turussa**." {
		t.Errorf("content = %q", text.Content)
	}
	if updated.ID != blk.ID || updated.Type != block.TypeText {
		t.Error("edit must not change id or type")
	}

	// Malformed and invalid payloads surface as ErrInvalidBlockData so the
	// handler can tell them apart from internal failures.
	if _, err := svc.EditBlock(ctx, site.ID, blk.ID, json.RawMessage(`{"content":""}`)); !errors.Is(err, ErrInvalidBlockData) {
		t.Errorf("empty content error = %v, want ErrInvalidBlockData", err)
	}
	if _, err := svc.EditBlock(ctx, site.ID, blk.ID, json.RawMessage(`{"content":`)); !errors.Is(err, ErrInvalidBlockData) {
		t.Errorf("malformed payload error = %v, want ErrInvalidBlockData", err)
	}
	if _, err := svc.EditBlock(ctx, site.ID, "missing", raw); !errors.Is(err, ErrBlockNotFound) {
		t.Errorf("missing block error = %v, want ErrBlockNotFound", err)
	}
}

func TestThemeAndTemplate(t *testing.T) {
	svc, cleanup := testService(t)
	defer cleanup()
	ctx := context.Background()

	site, err := svc.Create(ctx, "Häät", "haat")
	if err != nil {
		t.Fatal(err)
	}

	// Switching theme picks a template of the new theme.
	updated, err := svc.SetTheme(ctx, site.ID, "romanttinen")
	if err != nil {
		t.Fatalf("SetTheme: %v", err)
	}
	if updated.Theme != "romanttinen" {
		t.Errorf("theme = %q", updated.Theme)
	}
	if theme.GetTemplate(updated.Template).ThemeID != "romanttinen" {
		t.Errorf("template %q does not belong to romanttinen", updated.Template)
	}

	if _, err := svc.SetTheme(ctx, site.ID, "tuntematon"); !errors.Is(err, ErrUnknownTheme) {
		t.Errorf("unknown theme error = %v, want ErrUnknownTheme", err)
	}

	// A template of another theme is rejected.
	if _, err := svc.SetTemplate(ctx, site.ID, "moderni-minimal"); !errors.Is(err, ErrTemplateMismatch) {
		t.Errorf("mismatched template error = %v, want ErrTemplateMismatch", err)
	}
	if _, err := svc.SetTemplate(ctx, site.ID, "romanttinen-ruusu"); err != nil {
		t.Errorf("SetTemplate: %v", err)
	}
}

func TestPublishLifecycle(t *testing.T) {
	svc, cleanup := testService(t)
	defer cleanup()
	ctx := context.Background()

	site, err := svc.Create(ctx, "Häät", "haat")
	if err != nil {
		t.Fatal(err)
	}

	// Unpublished sites are invisible publicly.
	if _, err := svc.PublicSite(ctx, "haat"); !errors.Is(err, ErrSiteNotFound) {
		t.Errorf("unpublished PublicSite error = %v, want ErrSiteNotFound", err)
	}

	published, err := svc.Publish(ctx, site.ID)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !published.Published || !published.PublishedAt.Valid {
		t.Error("publish should set flag and timestamp")
	}

	payload, err := svc.PublicSite(ctx, "haat")
	if err != nil {
		t.Fatalf("PublicSite: %v", err)
	}
	if payload.Name != "Häät" || payload.Theme.ID != theme.DefaultThemeID {
		t.Errorf("payload = %+v", payload)
	}

	unpublished, err := svc.Unpublish(ctx, site.ID)
	if err != nil {
		t.Fatalf("Unpublish: %v", err)
	}
	if unpublished.Published || unpublished.PublishedAt.Valid {
		t.Error("unpublish should clear flag and timestamp")
	}
	if _, err := svc.PublicSite(ctx, "haat"); !errors.Is(err, ErrSiteNotFound) {
		t.Errorf("after unpublish error = %v, want ErrSiteNotFound", err)
	}
}

func TestSchedule(t *testing.T) {
	svc, cleanup := testService(t)
	defer cleanup()
	ctx := context.Background()

	site, err := svc.Create(ctx, "Häät", "haat")
	if err != nil {
		t.Fatal(err)
	}

	if _, err := svc.Schedule(ctx, site.ID, time.Now().Add(-time.Hour)); !errors.Is(err, ErrScheduleInPast) {
		t.Errorf("past schedule error = %v, want ErrScheduleInPast", err)
	}

	at := time.Now().Add(24 * time.Hour)
	scheduled, err := svc.Schedule(ctx, site.ID, at)
	if err != nil {
		t.Fatalf("Schedule: %v", err)
	}
	if !scheduled.ScheduledAt.Valid {
		t.Fatal("scheduled_at should be set")
	}

	cleared, err := svc.CancelSchedule(ctx, site.ID)
	if err != nil {
		t.Fatalf("CancelSchedule: %v", err)
	}
	if cleared.ScheduledAt.Valid {
		t.Error("cancel should clear scheduled_at")
	}

	// Publishing clears any pending schedule.
	if _, err := svc.Schedule(ctx, site.ID, at); err != nil {
		t.Fatal(err)
	}
	published, err := svc.Publish(ctx, site.ID)
	if err != nil {
		t.Fatal(err)
	}
	if published.ScheduledAt.Valid {
		t.Error("publish should clear scheduled_at")
	}
}

func TestAccessCode(t *testing.T) {
	svc, cleanup := testService(t)
	defer cleanup()
	ctx := context.Background()

	site, err := svc.Create(ctx, "Häät", "haat")
	if err != nil {
		t.Fatal(err)
	}

	// Unprotected sites accept anything.
	if err := svc.VerifyAccessCode(ctx, site.ID, "mitävain"); err != nil {
		t.Errorf("unprotected verify error = %v", err)
	}

	protected, err := svc.SetAccessCode(ctx, site.ID, "salaisuus")
	if err != nil {
		t.Fatalf("SetAccessCode: %v", err)
	}
	if !protected.PasswordProtected {
		t.Error("site should be protected")
	}
	if protected.AccessCodeHash == "salaisuus" {
		t.Error("access code must not be stored in plain text")
	}

	if err := svc.VerifyAccessCode(ctx, site.ID, "salaisuus"); err != nil {
		t.Errorf("correct code error = %v", err)
	}
	if err := svc.VerifyAccessCode(ctx, site.ID, "väärä"); !errors.Is(err, ErrInvalidAccessCode) {
		t.Errorf("wrong code error = %v, want ErrInvalidAccessCode", err)
	}

	// Clearing the code disables protection.
	cleared, err := svc.SetAccessCode(ctx, site.ID, "")
	if err != nil {
		t.Fatal(err)
	}
	if cleared.PasswordProtected || cleared.AccessCodeHash != "" {
		t.Error("empty code should disable protection")
	}
}

func TestPublicSiteServedFromCache(t *testing.T) {
	db, cleanup := testutil.TestDB(t)
	defer cleanup()
	siteCache := cache.NewMemoryCache(cache.MemoryCacheOptions{DefaultTTL: time.Minute})
	defer siteCache.Close()
	svc := NewService(db, siteCache)
	ctx := context.Background()

	site, err := svc.Create(ctx, "Häät", "haat")
	if err != nil {
		t.Fatal(err)
	}
	if _, err := svc.AddBlock(ctx, site.ID, block.TypeHero); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Publish(ctx, site.ID); err != nil {
		t.Fatal(err)
	}

	if _, err := svc.PublicSite(ctx, "haat"); err != nil {
		t.Fatalf("PublicSite: %v", err)
	}

	// Rename behind the service's back: a cache hit keeps serving the old
	// payload because no invalidation happened.
	q := store.New(db)
	if _, err := q.UpdateSite(ctx, store.UpdateSiteParams{
		ID:        site.ID,
		Name:      "Uudet häät",
		Slug:      "haat",
		Theme:     site.Theme,
		UpdatedAt: time.Now().UTC(),
	}); err != nil {
		t.Fatal(err)
	}

	cached, err := svc.PublicSite(ctx, "haat")
	if err != nil {
		t.Fatalf("PublicSite from cache: %v", err)
	}
	if cached.Name != "Häät" {
		t.Errorf("name = %q, want the cached payload to be served", cached.Name)
	}
	if len(cached.Blocks) != 1 || cached.Blocks[0].Type != block.TypeHero {
		t.Errorf("cached blocks = %+v", cached.Blocks)
	}
	if len(cached.Blocks[0].Data) == 0 {
		t.Error("cached block data is empty")
	}

	// A mutation through the service invalidates; the rebuild sees the
	// new name.
	if _, err := svc.UpdateSettings(ctx, UpdateSettingsParams{ID: site.ID, Name: "Uudet häät", Slug: "haat"}); err != nil {
		t.Fatal(err)
	}
	fresh, err := svc.PublicSite(ctx, "haat")
	if err != nil {
		t.Fatal(err)
	}
	if fresh.Name != "Uudet häät" {
		t.Errorf("name after invalidation = %q, want Uudet häät", fresh.Name)
	}
}

func TestBlockMutationsTouchSite(t *testing.T) {
	svc, cleanup := testService(t)
	defer cleanup()
	ctx := context.Background()

	created, err := svc.Create(ctx, "Häät", "haat")
	if err != nil {
		t.Fatal(err)
	}

	prev := created.UpdatedAt
	touched := func(step string) {
		t.Helper()
		cur, err := svc.Get(ctx, created.ID)
		if err != nil {
			t.Fatal(err)
		}
		if !cur.UpdatedAt.After(prev) {
			t.Errorf("%s: site updated_at not bumped", step)
		}
		prev = cur.UpdatedAt
	}

	time.Sleep(5 * time.Millisecond)
	hero, err := svc.AddBlock(ctx, created.ID, block.TypeHero)
	if err != nil {
		t.Fatal(err)
	}
	touched("add")

	time.Sleep(5 * time.Millisecond)
	text, err := svc.AddBlock(ctx, created.ID, block.TypeText)
	if err != nil {
		t.Fatal(err)
	}
	touched("add second")

	time.Sleep(5 * time.Millisecond)
	if _, err := svc.EditBlock(ctx, created.ID, hero.ID, json.RawMessage(`{"title":"Tervetuloa","styles":{}}`)); err != nil {
		t.Fatalf("EditBlock: %v", err)
	}
	touched("edit")

	time.Sleep(5 * time.Millisecond)
	if err := svc.MoveBlock(ctx, created.ID, text.ID, DirectionUp); err != nil {
		t.Fatalf("MoveBlock: %v", err)
	}
	touched("move")

	time.Sleep(5 * time.Millisecond)
	if err := svc.DeleteBlock(ctx, created.ID, text.ID); err != nil {
		t.Fatalf("DeleteBlock: %v", err)
	}
	touched("delete")
}

func TestPublicSiteRendersText(t *testing.T) {
	svc, cleanup := testService(t)
	defer cleanup()
	ctx := context.Background()

	site, err := svc.Create(ctx, "Häät", "haat")
	if err != nil {
		t.Fatal(err)
	}
	blk, err := svc.AddBlock(ctx, site.ID, block.TypeText)
	if err != nil {
		t.Fatal(err)
	}
	raw := json.RawMessage(`{"content":"Tapasimme **Turussa**.","styles":{}}`)
	if _, err := svc.EditBlock(ctx, site.ID, blk.ID, raw); err != nil {
		t.Fatal(err)
	}
	if _, err := svc.Publish(ctx, site.ID); err != nil {
		t.Fatal(err)
	}

	payload, err := svc.PublicSite(ctx, "haat")
	if err != nil {
		t.Fatalf("PublicSite: %v", err)
	}
	if len(payload.Blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(payload.Blocks))
	}
	html := payload.Blocks[0].HTML
	if html == "" {
		t.Fatal("text block should carry rendered HTML")
	}
	if want := "<strong>Turussa</strong>"; !strings.Contains(html, want) {
		t.Errorf("html = %q, want it to contain %q", html, want)
	}
}
