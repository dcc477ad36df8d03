// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package theme holds the static theme and template catalogs for wedding
// sites, plus the pure style-merge used when blocks are created.
package theme

import "sort"

// Colors is a theme's color bundle.
type Colors struct {
	Primary    string `json:"primary"`
	Secondary  string `json:"secondary"`
	Accent     string `json:"accent"`
	Background string `json:"background"`
	Text       string `json:"text"`
}

// Gradients holds the CSS gradients a theme provides.
type Gradients struct {
	Hero    string `json:"hero"`
	Section string `json:"section"`
}

// Fonts holds the font family classes a theme provides.
type Fonts struct {
	Heading string `json:"heading"`
	Body    string `json:"body"`
}

// Theme is a named color/gradient/font bundle.
type Theme struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Colors    Colors    `json:"colors"`
	Gradients Gradients `json:"gradients"`
	Fonts     Fonts     `json:"fonts"`
}

// DefaultThemeID is the fallback used when a theme identifier is unknown.
const DefaultThemeID = "klassinen"

var themes = map[string]Theme{
	"klassinen": {
		ID:   "klassinen",
		Name: "Klassinen",
		Colors: Colors{
			Primary:    "#8b7355",
			Secondary:  "#d4c5b0",
			Accent:     "#b08d57",
			Background: "#faf7f2",
			Text:       "#3d3529",
		},
		Gradients: Gradients{
			Hero:    "linear-gradient(160deg, #8b7355 0%, #d4c5b0 100%)",
			Section: "linear-gradient(180deg, #faf7f2 0%, #f0e9df 100%)",
		},
		Fonts: Fonts{
			Heading: "font-serif",
			Body:    "font-sans",
		},
	},
	"romanttinen": {
		ID:   "romanttinen",
		Name: "Romanttinen",
		Colors: Colors{
			Primary:    "#b76e79",
			Secondary:  "#f3d7da",
			Accent:     "#d9a5ab",
			Background: "#fdf6f7",
			Text:       "#4a3538",
		},
		Gradients: Gradients{
			Hero:    "linear-gradient(160deg, #b76e79 0%, #f3d7da 100%)",
			Section: "linear-gradient(180deg, #fdf6f7 0%, #f8e8ea 100%)",
		},
		Fonts: Fonts{
			Heading: "font-script",
			Body:    "font-serif",
		},
	},
	"moderni": {
		ID:   "moderni",
		Name: "Moderni",
		Colors: Colors{
			Primary:    "#2d2d2d",
			Secondary:  "#e8e8e8",
			Accent:     "#c9a227",
			Background: "#ffffff",
			Text:       "#1a1a1a",
		},
		Gradients: Gradients{
			Hero:    "linear-gradient(160deg, #2d2d2d 0%, #555555 100%)",
			Section: "linear-gradient(180deg, #ffffff 0%, #f4f4f4 100%)",
		},
		Fonts: Fonts{
			Heading: "font-sans",
			Body:    "font-sans",
		},
	},
	"luonnollinen": {
		ID:   "luonnollinen",
		Name: "Luonnollinen",
		Colors: Colors{
			Primary:    "#5b7a5e",
			Secondary:  "#cfdcc8",
			Accent:     "#a3b899",
			Background: "#f7f9f4",
			Text:       "#2f3b2f",
		},
		Gradients: Gradients{
			Hero:    "linear-gradient(160deg, #5b7a5e 0%, #cfdcc8 100%)",
			Section: "linear-gradient(180deg, #f7f9f4 0%, #eaf0e4 100%)",
		},
		Fonts: Fonts{
			Heading: "font-serif",
			Body:    "font-sans",
		},
	},
}

// Get looks up a theme by identifier. Unknown identifiers fall back to the
// default theme, so callers always get a usable bundle.
func Get(id string) Theme {
	if t, ok := themes[id]; ok {
		return t
	}
	return themes[DefaultThemeID]
}

// Exists reports whether id names a known theme.
func Exists(id string) bool {
	_, ok := themes[id]
	return ok
}

// List returns all themes sorted by name.
func List() []Theme {
	out := make([]Theme, 0, len(themes))
	for _, t := range themes {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
