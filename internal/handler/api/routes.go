// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/haasivu/haasivu/internal/middleware"
	"github.com/haasivu/haasivu/internal/perm"
)

// Routes returns the /api/v1 router. Everything except login and the
// status probe requires a session; individual route groups are gated
// by the capability they exercise.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/status", h.Status)
	r.With(h.guard.Middleware()).Post("/auth/login", h.Login)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(h.sessions))
		r.Use(middleware.LoadUser(h.sessions, h.queries))

		r.Post("/auth/logout", h.Logout)
		r.Get("/auth/me", h.Me)
		r.Post("/auth/switch-role", h.SwitchRole)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(perm.CapViewDashboard))

			r.Get("/sites", h.ListSites)
			r.Get("/sites/{siteID}", h.GetSite)
			r.Get("/sites/{siteID}/stats", h.SiteVisitStats)
			r.Get("/sites/{siteID}/guest-stats", h.GuestStats)
			r.Get("/themes", h.ListThemes)
			r.Get("/templates", h.ListTemplates)
			r.Get("/block-types", h.ListBlockTypes)
			r.Get("/events", h.ListEvents)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(perm.CapEditSite))

			r.Post("/sites", h.CreateSite)
			r.Patch("/sites/{siteID}", h.UpdateSite)
			r.Delete("/sites/{siteID}", h.DeleteSite)
			r.Post("/sites/{siteID}/theme", h.SetTheme)
			r.Post("/sites/{siteID}/template", h.SetTemplate)

			r.Get("/sites/{siteID}/block-defaults", h.BlockDefaults)
			r.Get("/sites/{siteID}/blocks", h.ListBlocks)
			r.Post("/sites/{siteID}/blocks", h.AddBlock)
			r.Patch("/sites/{siteID}/blocks/{blockID}", h.EditBlock)
			r.Post("/sites/{siteID}/blocks/{blockID}/move", h.MoveBlock)
			r.Delete("/sites/{siteID}/blocks/{blockID}", h.DeleteBlock)

			r.Post("/ai/suggest", h.SuggestText)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(perm.CapPublishSite))

			r.Post("/sites/{siteID}/publish", h.Publish)
			r.Post("/sites/{siteID}/unpublish", h.Unpublish)
			r.Post("/sites/{siteID}/schedule", h.Schedule)
			r.Post("/sites/{siteID}/password", h.SetAccessCode)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(perm.CapManageGuests))

			r.Get("/sites/{siteID}/guest-cards", h.ListGuestCards)
			r.Post("/sites/{siteID}/guest-cards", h.CreateGuestCard)
			r.Get("/sites/{siteID}/guest-cards/{cardID}", h.GetGuestCard)
			r.Patch("/sites/{siteID}/guest-cards/{cardID}", h.UpdateGuestCard)
			r.Delete("/sites/{siteID}/guest-cards/{cardID}", h.DeleteGuestCard)
			r.Post("/sites/{siteID}/guest-cards/{cardID}/guests", h.AddGuest)
			r.Delete("/sites/{siteID}/guest-cards/{cardID}/guests/{guestID}", h.DeleteGuest)
			r.Post("/sites/{siteID}/guest-cards/send-invitations", h.SendInvitations)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(perm.CapManageNotes))

			r.Get("/sites/{siteID}/notes", h.ListNotes)
			r.Post("/sites/{siteID}/notes", h.CreateNote)
			r.Patch("/sites/{siteID}/notes/{noteID}", h.UpdateNote)
			r.Delete("/sites/{siteID}/notes/{noteID}", h.DeleteNote)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(perm.CapManageProgram))

			r.Get("/sites/{siteID}/program", h.ListProgramEvents)
			r.Post("/sites/{siteID}/program", h.CreateProgramEvent)
			r.Patch("/sites/{siteID}/program/{eventID}", h.UpdateProgramEvent)
			r.Delete("/sites/{siteID}/program/{eventID}", h.DeleteProgramEvent)
		})

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireCapability(perm.CapManagePhotos))

			r.Get("/media", h.ListMedia)
			r.Post("/media", h.UploadMedia)
		})
	})

	return r
}
