// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package site

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/haasivu/haasivu/internal/auth"
	"github.com/haasivu/haasivu/internal/block"
	"github.com/haasivu/haasivu/internal/cache"
	"github.com/haasivu/haasivu/internal/markdown"
	"github.com/haasivu/haasivu/internal/store"
	"github.com/haasivu/haasivu/internal/theme"
	"github.com/haasivu/haasivu/internal/util"
)

// Service errors.
var (
	ErrSiteNotFound      = errors.New("site not found")
	ErrBlockNotFound     = errors.New("block not found")
	ErrInvalidSlug       = errors.New("invalid slug")
	ErrSlugTaken         = errors.New("slug already in use")
	ErrUnknownTheme      = errors.New("unknown theme")
	ErrUnknownTemplate   = errors.New("unknown template")
	ErrTemplateMismatch  = errors.New("template does not belong to the active theme")
	ErrUnknownBlockType  = errors.New("unknown block type")
	ErrInvalidBlockData  = errors.New("invalid block payload")
	ErrScheduleInPast    = errors.New("scheduled time must be in the future")
	ErrInvalidAccessCode = errors.New("invalid access code")
)

// Service owns the site lifecycle: creation, block editing, theme and
// template selection, publishing, and the public payload.
type Service struct {
	db      *sql.DB
	queries *store.Queries
	cache   cache.Cache
}

// NewService creates a site service backed by db. siteCache holds rendered
// public payloads keyed by slug and is invalidated on every mutation.
func NewService(db *sql.DB, siteCache cache.Cache) *Service {
	return &Service{
		db:      db,
		queries: store.New(db),
		cache:   siteCache,
	}
}

// Create creates a new site with the default theme and template. An empty
// slug is derived from the name.
func (s *Service) Create(ctx context.Context, name, slug string) (store.Site, error) {
	if slug == "" {
		slug = util.Slugify(name)
	}
	if !util.IsValidSlug(slug) {
		return store.Site{}, ErrInvalidSlug
	}

	if _, err := s.queries.GetSiteBySlug(ctx, slug); err == nil {
		return store.Site{}, ErrSlugTaken
	} else if !errors.Is(err, sql.ErrNoRows) {
		return store.Site{}, fmt.Errorf("check slug: %w", err)
	}

	now := time.Now().UTC()
	created, err := s.queries.CreateSite(ctx, store.CreateSiteParams{
		Name:      name,
		Slug:      slug,
		Theme:     theme.DefaultThemeID,
		Template:  theme.DefaultTemplateID,
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return store.Site{}, fmt.Errorf("create site: %w", err)
	}

	slog.Info("site created", "site_id", created.ID, "slug", created.Slug)
	return created, nil
}

// Get returns a site by ID.
func (s *Service) Get(ctx context.Context, id int64) (store.Site, error) {
	site, err := s.queries.GetSite(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return store.Site{}, ErrSiteNotFound
	}
	return site, err
}

// List returns all sites ordered by creation time.
func (s *Service) List(ctx context.Context) ([]store.Site, error) {
	return s.queries.ListSites(ctx)
}

// UpdateSettingsParams holds the editable site settings.
type UpdateSettingsParams struct {
	ID   int64
	Name string
	Slug string
}

// UpdateSettings renames a site and/or changes its slug. The old slug's
// cached payload is invalidated.
func (s *Service) UpdateSettings(ctx context.Context, arg UpdateSettingsParams) (store.Site, error) {
	site, err := s.Get(ctx, arg.ID)
	if err != nil {
		return store.Site{}, err
	}

	if arg.Slug == "" {
		arg.Slug = util.Slugify(arg.Name)
	}
	if !util.IsValidSlug(arg.Slug) {
		return store.Site{}, ErrInvalidSlug
	}
	if arg.Slug != site.Slug {
		if _, err := s.queries.GetSiteBySlug(ctx, arg.Slug); err == nil {
			return store.Site{}, ErrSlugTaken
		} else if !errors.Is(err, sql.ErrNoRows) {
			return store.Site{}, fmt.Errorf("check slug: %w", err)
		}
	}

	updated, err := s.queries.UpdateSite(ctx, store.UpdateSiteParams{
		ID:          site.ID,
		Name:        arg.Name,
		Slug:        arg.Slug,
		Theme:       site.Theme,
		ScheduledAt: site.ScheduledAt,
		UpdatedAt:   time.Now().UTC(),
	})
	if err != nil {
		return store.Site{}, fmt.Errorf("update site: %w", err)
	}

	s.invalidate(ctx, site.Slug)
	return updated, nil
}

// SetTheme switches the site to a new theme. If the current template does
// not belong to the new theme, the theme's first template is selected.
func (s *Service) SetTheme(ctx context.Context, siteID int64, themeID string) (store.Site, error) {
	if !theme.Exists(themeID) {
		return store.Site{}, ErrUnknownTheme
	}

	site, err := s.Get(ctx, siteID)
	if err != nil {
		return store.Site{}, err
	}

	templateID := site.Template
	if theme.GetTemplate(templateID).ThemeID != themeID {
		templateID = ""
		for _, tpl := range theme.ListTemplates() {
			if tpl.ThemeID == themeID {
				templateID = tpl.ID
				break
			}
		}
		if templateID == "" {
			return store.Site{}, ErrUnknownTemplate
		}
	}

	updated, err := s.queries.SetSiteTheme(ctx, store.SetSiteThemeParams{
		ID:        siteID,
		Theme:     themeID,
		Template:  templateID,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return store.Site{}, fmt.Errorf("set theme: %w", err)
	}

	s.invalidate(ctx, site.Slug)
	return updated, nil
}

// SetTemplate switches the site to a new template of its current theme.
func (s *Service) SetTemplate(ctx context.Context, siteID int64, templateID string) (store.Site, error) {
	if !theme.TemplateExists(templateID) {
		return store.Site{}, ErrUnknownTemplate
	}

	site, err := s.Get(ctx, siteID)
	if err != nil {
		return store.Site{}, err
	}
	if theme.GetTemplate(templateID).ThemeID != site.Theme {
		return store.Site{}, ErrTemplateMismatch
	}

	updated, err := s.queries.SetSiteTheme(ctx, store.SetSiteThemeParams{
		ID:        siteID,
		Theme:     site.Theme,
		Template:  templateID,
		UpdatedAt: time.Now().UTC(),
	})
	if err != nil {
		return store.Site{}, fmt.Errorf("set template: %w", err)
	}

	s.invalidate(ctx, site.Slug)
	return updated, nil
}

// Delete removes a site and all its dependent rows.
func (s *Service) Delete(ctx context.Context, siteID int64) error {
	site, err := s.Get(ctx, siteID)
	if err != nil {
		return err
	}
	if err := s.queries.DeleteSite(ctx, siteID); err != nil {
		return fmt.Errorf("delete site: %w", err)
	}
	s.invalidate(ctx, site.Slug)
	slog.Info("site deleted", "site_id", siteID, "slug", site.Slug)
	return nil
}

// Blocks returns the site's block sequence in page order with decoded
// payloads. Unknown sites return ErrSiteNotFound rather than an empty list.
func (s *Service) Blocks(ctx context.Context, siteID int64) ([]block.Block, error) {
	if _, err := s.Get(ctx, siteID); err != nil {
		return nil, err
	}
	rows, err := s.queries.ListBlocks(ctx, siteID)
	if err != nil {
		return nil, fmt.Errorf("list blocks: %w", err)
	}
	return decodeBlocks(rows)
}

// AddBlock appends a block of the given type to the end of the page,
// populated with the site's theme and template defaults.
func (s *Service) AddBlock(ctx context.Context, siteID int64, blockType block.Type) (block.Block, error) {
	if !block.IsValidType(blockType) {
		return block.Block{}, ErrUnknownBlockType
	}

	site, err := s.Get(ctx, siteID)
	if err != nil {
		return block.Block{}, err
	}

	data, err := theme.EffectiveDefaults(blockType, theme.GetTemplate(site.Template))
	if err != nil {
		return block.Block{}, fmt.Errorf("block defaults: %w", err)
	}

	raw, err := block.EncodeData(data)
	if err != nil {
		return block.Block{}, fmt.Errorf("encode block: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return block.Block{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	maxPos, err := qtx.MaxBlockPosition(ctx, siteID)
	if err != nil {
		return block.Block{}, fmt.Errorf("max position: %w", err)
	}

	now := time.Now().UTC()
	row, err := qtx.CreateBlock(ctx, store.CreateBlockParams{
		ID:        uuid.NewString(),
		SiteID:    siteID,
		Type:      string(blockType),
		Position:  maxPos + 1,
		Data:      string(raw),
		CreatedAt: now,
		UpdatedAt: now,
	})
	if err != nil {
		return block.Block{}, fmt.Errorf("create block: %w", err)
	}

	if err := qtx.TouchSite(ctx, siteID, now); err != nil {
		return block.Block{}, fmt.Errorf("touch site: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return block.Block{}, fmt.Errorf("commit: %w", err)
	}

	s.invalidate(ctx, site.Slug)
	return decodeBlock(row)
}

// EditBlock replaces a block's payload. The payload must decode as the
// block's existing type; a block never changes type in place. Decode and
// validation failures are reported as ErrInvalidBlockData.
func (s *Service) EditBlock(ctx context.Context, siteID int64, blockID string, raw json.RawMessage) (block.Block, error) {
	row, err := s.queries.GetBlock(ctx, siteID, blockID)
	if errors.Is(err, sql.ErrNoRows) {
		return block.Block{}, ErrBlockNotFound
	} else if err != nil {
		return block.Block{}, fmt.Errorf("get block: %w", err)
	}

	data, err := block.DecodeData(block.Type(row.Type), raw)
	if err != nil {
		return block.Block{}, fmt.Errorf("%w: %v", ErrInvalidBlockData, err)
	}
	if err := block.Validate(data); err != nil {
		return block.Block{}, fmt.Errorf("%w: %v", ErrInvalidBlockData, err)
	}

	encoded, err := block.EncodeData(data)
	if err != nil {
		return block.Block{}, fmt.Errorf("encode block: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return block.Block{}, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)
	now := time.Now().UTC()

	updated, err := qtx.UpdateBlockData(ctx, store.UpdateBlockDataParams{
		SiteID:    siteID,
		ID:        blockID,
		Data:      string(encoded),
		UpdatedAt: now,
	})
	if err != nil {
		return block.Block{}, fmt.Errorf("update block: %w", err)
	}

	if err := qtx.TouchSite(ctx, siteID, now); err != nil {
		return block.Block{}, fmt.Errorf("touch site: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return block.Block{}, fmt.Errorf("commit: %w", err)
	}

	s.invalidateSiteID(ctx, siteID)
	return decodeBlock(updated)
}

// MoveBlock moves a block one position up or down. Moving past either end
// of the page is a no-op, not an error.
func (s *Service) MoveBlock(ctx context.Context, siteID int64, blockID string, dir Direction) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	rows, err := qtx.ListBlocks(ctx, siteID)
	if err != nil {
		return fmt.Errorf("list blocks: %w", err)
	}

	seq, err := decodeBlocks(rows)
	if err != nil {
		return err
	}

	idx := IndexOf(seq, blockID)
	if idx < 0 {
		return ErrBlockNotFound
	}

	moved, err := Move(seq, idx, dir)
	if err != nil {
		return err
	}

	// Boundary move: order unchanged, nothing to persist.
	if moved[idx].ID == blockID {
		return nil
	}

	for i, blk := range moved {
		if rows[i].ID != blk.ID {
			if err := qtx.SetBlockPosition(ctx, siteID, blk.ID, int64(i)); err != nil {
				return fmt.Errorf("set position: %w", err)
			}
		}
	}

	if err := qtx.TouchSite(ctx, siteID, time.Now().UTC()); err != nil {
		return fmt.Errorf("touch site: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.invalidateSiteID(ctx, siteID)
	return nil
}

// DeleteBlock removes a block and closes the position gap it leaves. The
// delete and the reindex of the blocks behind it commit together.
func (s *Service) DeleteBlock(ctx context.Context, siteID int64, blockID string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)

	row, err := qtx.GetBlock(ctx, siteID, blockID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrBlockNotFound
	} else if err != nil {
		return fmt.Errorf("get block: %w", err)
	}

	if err := qtx.DeleteBlock(ctx, siteID, blockID, row.Position); err != nil {
		return fmt.Errorf("delete block: %w", err)
	}
	if err := qtx.TouchSite(ctx, siteID, time.Now().UTC()); err != nil {
		return fmt.Errorf("touch site: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}

	s.invalidateSiteID(ctx, siteID)
	return nil
}

// Publish makes the site publicly visible at /s/{slug} and clears any
// pending schedule.
func (s *Service) Publish(ctx context.Context, siteID int64) (store.Site, error) {
	now := time.Now().UTC()
	updated, err := s.queries.SetSitePublished(ctx, store.SetSitePublishedParams{
		ID:          siteID,
		Published:   true,
		PublishedAt: util.NullTimeFromValue(now),
		UpdatedAt:   now,
	})
	if errors.Is(err, sql.ErrNoRows) {
		return store.Site{}, ErrSiteNotFound
	} else if err != nil {
		return store.Site{}, fmt.Errorf("publish: %w", err)
	}

	s.invalidate(ctx, updated.Slug)
	slog.Info("site published", "site_id", siteID, "slug", updated.Slug)
	return updated, nil
}

// Unpublish takes the site offline. The public page returns 404 afterwards.
func (s *Service) Unpublish(ctx context.Context, siteID int64) (store.Site, error) {
	updated, err := s.queries.SetSitePublished(ctx, store.SetSitePublishedParams{
		ID:        siteID,
		Published: false,
		UpdatedAt: time.Now().UTC(),
	})
	if errors.Is(err, sql.ErrNoRows) {
		return store.Site{}, ErrSiteNotFound
	} else if err != nil {
		return store.Site{}, fmt.Errorf("unpublish: %w", err)
	}

	s.invalidate(ctx, updated.Slug)
	slog.Info("site unpublished", "site_id", siteID, "slug", updated.Slug)
	return updated, nil
}

// Schedule arranges for the site to be published at a future time.
func (s *Service) Schedule(ctx context.Context, siteID int64, at time.Time) (store.Site, error) {
	if !at.After(time.Now()) {
		return store.Site{}, ErrScheduleInPast
	}

	site, err := s.Get(ctx, siteID)
	if err != nil {
		return store.Site{}, err
	}

	return s.queries.UpdateSite(ctx, store.UpdateSiteParams{
		ID:          site.ID,
		Name:        site.Name,
		Slug:        site.Slug,
		Theme:       site.Theme,
		ScheduledAt: util.NullTimeFromValue(at.UTC()),
		UpdatedAt:   time.Now().UTC(),
	})
}

// CancelSchedule clears a pending publish schedule.
func (s *Service) CancelSchedule(ctx context.Context, siteID int64) (store.Site, error) {
	site, err := s.Get(ctx, siteID)
	if err != nil {
		return store.Site{}, err
	}

	return s.queries.UpdateSite(ctx, store.UpdateSiteParams{
		ID:        site.ID,
		Name:      site.Name,
		Slug:      site.Slug,
		Theme:     site.Theme,
		UpdatedAt: time.Now().UTC(),
	})
}

// SetAccessCode enables access-code protection with the given code, or
// disables it when the code is empty. Only the argon2id hash is stored.
func (s *Service) SetAccessCode(ctx context.Context, siteID int64, code string) (store.Site, error) {
	site, err := s.Get(ctx, siteID)
	if err != nil {
		return store.Site{}, err
	}

	var hash string
	protected := code != ""
	if protected {
		hash, err = auth.HashAccessCode(code)
		if err != nil {
			return store.Site{}, fmt.Errorf("hash access code: %w", err)
		}
	}

	updated, err := s.queries.SetSiteAccessCode(ctx, store.SetSiteAccessCodeParams{
		ID:                siteID,
		PasswordProtected: protected,
		AccessCodeHash:    hash,
		UpdatedAt:         time.Now().UTC(),
	})
	if err != nil {
		return store.Site{}, fmt.Errorf("set access code: %w", err)
	}

	s.invalidate(ctx, site.Slug)
	return updated, nil
}

// VerifyAccessCode checks a visitor-supplied access code against the
// stored hash. Unprotected sites accept any code.
func (s *Service) VerifyAccessCode(ctx context.Context, siteID int64, code string) error {
	site, err := s.Get(ctx, siteID)
	if err != nil {
		return err
	}
	if !site.PasswordProtected {
		return nil
	}

	ok, err := auth.CheckAccessCode(code, site.AccessCodeHash)
	if err != nil {
		return fmt.Errorf("check access code: %w", err)
	}
	if !ok {
		return ErrInvalidAccessCode
	}
	return nil
}

// invalidate drops the cached public payload for a slug.
func (s *Service) invalidate(ctx context.Context, slug string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.SiteKey(slug)); err != nil {
		slog.Warn("failed to invalidate site cache", "slug", slug, "error", err)
	}
}

// invalidateSiteID drops the cached payload when only the site ID is known.
func (s *Service) invalidateSiteID(ctx context.Context, siteID int64) {
	site, err := s.queries.GetSite(ctx, siteID)
	if err != nil {
		return
	}
	s.invalidate(ctx, site.Slug)
}

// decodeBlock converts a stored block row into the domain representation.
func decodeBlock(row store.Block) (block.Block, error) {
	data, err := block.DecodeData(block.Type(row.Type), []byte(row.Data))
	if err != nil {
		return block.Block{}, fmt.Errorf("decode block %s: %w", row.ID, err)
	}
	return block.Block{
		ID:        row.ID,
		SiteID:    row.SiteID,
		Type:      block.Type(row.Type),
		Data:      data,
		CreatedAt: row.CreatedAt,
		UpdatedAt: row.UpdatedAt,
	}, nil
}

func decodeBlocks(rows []store.Block) ([]block.Block, error) {
	seq := make([]block.Block, 0, len(rows))
	for _, row := range rows {
		blk, err := decodeBlock(row)
		if err != nil {
			return nil, err
		}
		seq = append(seq, blk)
	}
	return seq, nil
}

// PublicBlock is one block of the public payload. Text blocks carry a
// sanitised HTML rendering of their markdown content. Data stays a raw
// message so a cached payload round-trips through json.Unmarshal.
type PublicBlock struct {
	ID   string          `json:"id"`
	Type block.Type      `json:"type"`
	Data json.RawMessage `json:"data"`
	HTML string          `json:"html,omitempty"`
}

// PublicPayload is the rendered public site served at /s/{slug}.
type PublicPayload struct {
	SiteID            int64         `json:"site_id"`
	Name              string        `json:"name"`
	Slug              string        `json:"slug"`
	Theme             theme.Theme   `json:"theme"`
	PasswordProtected bool          `json:"password_protected"`
	Blocks            []PublicBlock `json:"blocks"`
}

// PublicSite returns the rendered payload of a published site, from cache
// when possible. Unpublished and unknown slugs both return ErrSiteNotFound.
func (s *Service) PublicSite(ctx context.Context, slug string) (*PublicPayload, error) {
	if s.cache != nil {
		if cached, err := s.cache.Get(ctx, cache.SiteKey(slug)); err == nil {
			var payload PublicPayload
			if err := json.Unmarshal(cached, &payload); err == nil {
				return &payload, nil
			}
			// Corrupt entry: fall through to a rebuild.
			s.invalidate(ctx, slug)
		}
	}

	site, err := s.queries.GetPublishedSiteBySlug(ctx, slug)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrSiteNotFound
	} else if err != nil {
		return nil, fmt.Errorf("get published site: %w", err)
	}

	seq, err := s.Blocks(ctx, site.ID)
	if err != nil {
		return nil, err
	}

	payload := &PublicPayload{
		SiteID:            site.ID,
		Name:              site.Name,
		Slug:              site.Slug,
		Theme:             theme.Get(site.Theme),
		PasswordProtected: site.PasswordProtected,
		Blocks:            make([]PublicBlock, 0, len(seq)),
	}

	for _, blk := range seq {
		raw, err := block.EncodeData(blk.Data)
		if err != nil {
			return nil, fmt.Errorf("encode block %s: %w", blk.ID, err)
		}
		pb := PublicBlock{ID: blk.ID, Type: blk.Type, Data: raw}
		if text, ok := blk.Data.(block.TextData); ok {
			html, err := markdown.Render(text.Content)
			if err != nil {
				slog.Warn("failed to render text block", "block_id", blk.ID, "error", err)
			} else {
				pb.HTML = html
			}
		}
		payload.Blocks = append(payload.Blocks, pb)
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(payload); err == nil {
			if err := s.cache.Set(ctx, cache.SiteKey(slug), encoded, 0); err != nil {
				slog.Warn("failed to cache site payload", "slug", slug, "error", err)
			}
		}
	}

	return payload, nil
}
