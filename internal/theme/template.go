// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package theme

import (
	"sort"

	"github.com/haasivu/haasivu/internal/block"
)

// Template is a named preset: a theme reference plus per-block-type style
// overrides. Selecting a template at site creation seeds the site's theme
// and supplies the override layer applied to every block added afterwards.
// Templates are immutable catalog data.
type Template struct {
	ID        string                `json:"id"`
	Name      string                `json:"name"`
	ThemeID   string                `json:"theme_id"`
	Overrides map[block.Type]Styles `json:"overrides"`
}

// Styles is a per-key style override map. Keys a template omits keep the
// block type's base default.
type Styles map[string]string

// DefaultTemplateID is the fallback used when a template identifier is
// unknown.
const DefaultTemplateID = "klassinen-valkoinen"

var templates = map[string]Template{
	"klassinen-valkoinen": {
		ID:      "klassinen-valkoinen",
		Name:    "Klassinen valkoinen",
		ThemeID: "klassinen",
		Overrides: map[block.Type]Styles{
			block.TypeHero: {
				"titleColor": "#ffffff",
				"overlay":    "dark",
			},
			block.TypeHeading: {
				"titleColor": "#8b7355",
			},
			block.TypeDivider: {
				"lineColor": "#b08d57",
			},
		},
	},
	"romanttinen-ruusu": {
		ID:      "romanttinen-ruusu",
		Name:    "Romanttinen ruusu",
		ThemeID: "romanttinen",
		Overrides: map[block.Type]Styles{
			block.TypeHero: {
				"titleColor": "#fdf6f7",
				"overlay":    "gradient",
				"textAlign":  "center",
			},
			block.TypeCountdown: {
				"numberColor":     "#b76e79",
				"backgroundColor": "#fdf6f7",
			},
			block.TypeRSVP: {
				"buttonColor": "#b76e79",
			},
		},
	},
	"moderni-minimal": {
		ID:      "moderni-minimal",
		Name:    "Moderni minimal",
		ThemeID: "moderni",
		Overrides: map[block.Type]Styles{
			block.TypeHero: {
				"overlay":   "none",
				"textAlign": "left",
				"minHeight": "80vh",
			},
			block.TypeText: {
				"textAlign": "left",
				"maxWidth":  "640px",
			},
			block.TypeNavigation: {
				"backgroundColor": "#ffffff",
			},
		},
	},
	"boho-niitty": {
		ID:      "boho-niitty",
		Name:    "Boho niitty",
		ThemeID: "luonnollinen",
		Overrides: map[block.Type]Styles{
			block.TypeHero: {
				"titleColor": "#f7f9f4",
				"overlay":    "gradient",
			},
			block.TypeGallery: {
				"columns": "2",
				"gap":     "16px",
			},
			block.TypeProgram: {
				"lineStyle": "dotted",
			},
		},
	},
}

// GetTemplate looks up a template by identifier, falling back to the
// default template when the identifier is unknown.
func GetTemplate(id string) Template {
	if t, ok := templates[id]; ok {
		return t
	}
	return templates[DefaultTemplateID]
}

// TemplateExists reports whether id names a known template.
func TemplateExists(id string) bool {
	_, ok := templates[id]
	return ok
}

// ListTemplates returns all templates sorted by name.
func ListTemplates() []Template {
	out := make([]Template, 0, len(templates))
	for _, t := range templates {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// EffectiveDefaults computes the default payload for a new block of type t
// under template tpl: the registry's base defaults with the template's
// per-key style overrides merged on top. Pure with respect to the catalogs;
// the returned payload shares no maps or slices with them.
func EffectiveDefaults(t block.Type, tpl Template) (block.Data, error) {
	base, err := block.Defaults(t)
	if err != nil {
		return nil, err
	}
	merged := MergeStyles(block.Styles(base), tpl.Overrides[t])
	return block.WithStyles(base, merged), nil
}
