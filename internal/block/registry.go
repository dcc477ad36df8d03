// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

package block

import (
	"fmt"
)

// Types lists every block type, in the order the builder UI offers them.
func Types() []Type {
	return []Type{
		TypeHero,
		TypeHeading,
		TypeCountdown,
		TypeProgram,
		TypeRSVP,
		TypeGallery,
		TypeText,
		TypeNavigation,
		TypeDivider,
		TypeSpacer,
	}
}

// IsValidType reports whether t is one of the known block types.
func IsValidType(t Type) bool {
	switch t {
	case TypeHero, TypeHeading, TypeCountdown, TypeProgram, TypeRSVP,
		TypeGallery, TypeText, TypeNavigation, TypeDivider, TypeSpacer:
		return true
	}
	return false
}

// Defaults returns the base default payload for a block type. Every call
// returns a fresh value with fresh maps and slices: mutating one block's
// data must never affect another block or the defaults themselves.
func Defaults(t Type) (Data, error) {
	switch t {
	case TypeHero:
		return HeroData{
			Title:    "Vihkiäiset",
			Subtitle: "Tervetuloa juhlimaan kanssamme",
			Styles: map[string]string{
				"titleColor": "",
				"textColor":  "",
				"overlay":    "gradient",
				"textAlign":  "center",
				"minHeight":  "100vh",
			},
		}, nil
	case TypeHeading:
		return HeadingData{
			Text:  "Otsikko",
			Level: 2,
			Styles: map[string]string{
				"titleColor": "",
				"textAlign":  "center",
			},
		}, nil
	case TypeCountdown:
		return CountdownData{
			Title: "Hääpäivään",
			Styles: map[string]string{
				"titleColor":      "",
				"numberColor":     "",
				"backgroundColor": "",
			},
		}, nil
	case TypeProgram:
		return ProgramData{
			Title:  "Hääohjelma",
			Events: []ProgramItem{},
			Styles: map[string]string{
				"titleColor":      "",
				"textColor":       "",
				"backgroundColor": "",
				"lineStyle":       "solid",
			},
		}, nil
	case TypeRSVP:
		return RSVPData{
			Title:       "Ilmoittautuminen",
			Description: "Kerrothan meille, pääsetkö juhlaan.",
			Styles: map[string]string{
				"titleColor":      "",
				"backgroundColor": "",
				"buttonColor":     "",
			},
		}, nil
	case TypeGallery:
		return GalleryData{
			Title:  "Kuvagalleria",
			Images: []GalleryImage{},
			Styles: map[string]string{
				"titleColor": "",
				"columns":    "3",
				"gap":        "8px",
			},
		}, nil
	case TypeText:
		return TextData{
			Title:   "",
			Content: "Kirjoita tähän...",
			Styles: map[string]string{
				"titleColor": "",
				"textColor":  "",
				"textAlign":  "left",
				"maxWidth":   "720px",
			},
		}, nil
	case TypeNavigation:
		return NavigationData{
			Items:   []NavItem{},
			Variant: "top",
			Styles: map[string]string{
				"linkColor":       "",
				"backgroundColor": "",
				"padding":         "16px",
			},
		}, nil
	case TypeDivider:
		return DividerData{
			Styles: map[string]string{
				"lineColor": "",
				"width":     "60%",
			},
		}, nil
	case TypeSpacer:
		return SpacerData{
			Styles: map[string]string{
				"height": "48px",
			},
		}, nil
	default:
		return nil, fmt.Errorf("unknown block type %q", t)
	}
}

// Validate checks that a payload satisfies the constraints its type needs
// to render without error. The rules mirror the editor forms: hero, rsvp
// and program require a title, program events need time and title, text
// needs content. Types without required fields always pass.
func Validate(data Data) error {
	switch d := data.(type) {
	case HeroData:
		if d.Title == "" {
			return fmt.Errorf("hero block requires a title")
		}
	case ProgramData:
		if d.Title == "" {
			return fmt.Errorf("program block requires a title")
		}
		for i, ev := range d.Events {
			if ev.Time == "" {
				return fmt.Errorf("program event %d requires a time", i)
			}
			if ev.Title == "" {
				return fmt.Errorf("program event %d requires a title", i)
			}
		}
	case RSVPData:
		if d.Title == "" {
			return fmt.Errorf("rsvp block requires a title")
		}
	case TextData:
		if d.Content == "" {
			return fmt.Errorf("text block requires content")
		}
	}
	return nil
}

/// Styles returns the payload's style map. Never nil: payloads decoded from
// sparse JSON get an empty map so per-key merging always has a target.
func Styles(data Data) map[string]string {
	switch d := data.(type) {
	case HeroData:
		return ensureStyles(d.Styles)
	case HeadingData:
		return ensureStyles(d.Styles)
	case CountdownData:
		return ensureStyles(d.Styles)
	case ProgramData:
		return ensureStyles(d.Styles)
	case RSVPData:
		return ensureStyles(d.Styles)
	case GalleryData:
		return ensureStyles(d.Styles)
	case TextData:
		return ensureStyles(d.Styles)
	case NavigationData:
		return ensureStyles(d.Styles)
	case DividerData:
		return ensureStyles(d.Styles)
	case SpacerData:
		return ensureStyles(d.Styles)
	}
	return map[string]string{}
}

// WithStyles returns a copy of the payload with its style map replaced.
func WithStyles(data Data, styles map[string]string) Data {
	switch d := data.(type) {
	case HeroData:
		d.Styles = styles
		return d
	case HeadingData:
		d.Styles = styles
		return d
	case CountdownData:
		d.Styles = styles
		return d
	case ProgramData:
		d.Styles = styles
		return d
	case RSVPData:
		d.Styles = styles
		return d
	case GalleryData:
		d.Styles = styles
		return d
	case TextData:
		d.Styles = styles
		return d
	case NavigationData:
		d.Styles = styles
		return d
	case DividerData:
		d.Styles = styles
		return d
	case SpacerData:
		d.Styles = styles
		return d
	}
	return data
}

func ensureStyles(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}
