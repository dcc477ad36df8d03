// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package block defines the content block model for wedding sites: the
// closed set of block types, one typed data struct per type, and the
// registry that supplies defaults and validation for each of them.
package block

import (
	"encoding/json"
	"fmt"
	"time"
)

// Type identifies one kind of content block. The set is closed: the
// registry rejects anything not listed here.
type Type string

// Block types.
const (
	TypeHero       Type = "hero"
	TypeHeading    Type = "heading"
	TypeCountdown  Type = "countdown"
	TypeProgram    Type = "program"
	TypeRSVP       Type = "rsvp"
	TypeGallery    Type = "gallery"
	TypeText       Type = "text"
	TypeNavigation Type = "navigation"
	TypeDivider    Type = "divider"
	TypeSpacer     Type = "spacer"
)

// Block is one entry in a site's content sequence. Position is implicit:
// the sequence order is the sole source of display order.
type Block struct {
	ID        string    `json:"id"`
	SiteID    int64     `json:"site_id"`
	Type      Type      `json:"type"`
	Data      Data      `json:"data"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Data is the tagged union of per-type block payloads. Each variant carries
// its own strongly-typed content fields plus an open Styles map for the
// presentation knobs that themes and templates override per key.
type Data interface {
	BlockType() Type
}

// HeroData is the full-width opening section of a site.
type HeroData struct {
	Title           string            `json:"title"`
	Subtitle        string            `json:"subtitle"`
	Date            string            `json:"date"`
	Location        string            `json:"location"`
	BackgroundImage string            `json:"background_image"`
	Styles          map[string]string `json:"styles"`
}

// HeadingData is a standalone section heading.
type HeadingData struct {
	Text   string            `json:"text"`
	Level  int               `json:"level"`
	Styles map[string]string `json:"styles"`
}

// CountdownData counts down to the wedding day.
type CountdownData struct {
	Title      string            `json:"title"`
	TargetDate string            `json:"target_date"`
	Styles     map[string]string `json:"styles"`
}

// ProgramItem is one entry of the wedding-day program.
type ProgramItem struct {
	Time        string `json:"time"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Location    string `json:"location"`
}

// ProgramData lists the wedding-day program (hääohjelma).
type ProgramData struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Events      []ProgramItem     `json:"events"`
	Styles      map[string]string `json:"styles"`
}

// RSVPData is the guest response form section.
type RSVPData struct {
	Title       string            `json:"title"`
	Description string            `json:"description"`
	Deadline    string            `json:"deadline"`
	Styles      map[string]string `json:"styles"`
}

// GalleryImage is one image of a gallery block.
type GalleryImage struct {
	URL     string `json:"url"`
	Caption string `json:"caption"`
}

// GalleryData is a photo gallery section.
type GalleryData struct {
	Title  string            `json:"title"`
	Images []GalleryImage    `json:"images"`
	Styles map[string]string `json:"styles"`
}

// TextData is a free-form text section. Content is markdown; the public
// payload carries a sanitised HTML rendering alongside it.
type TextData struct {
	Title   string            `json:"title"`
	Content string            `json:"content"`
	Styles  map[string]string `json:"styles"`
}

// NavItem is one navigation link targeting a block on the same page.
type NavItem struct {
	Label    string `json:"label"`
	TargetID string `json:"target_id"`
}

// NavigationData is an in-page navigation bar.
type NavigationData struct {
	Items   []NavItem         `json:"items"`
	Variant string            `json:"variant"`
	Styles  map[string]string `json:"styles"`
}

// DividerData is a horizontal separator.
type DividerData struct {
	Styles map[string]string `json:"styles"`
}

// SpacerData is vertical whitespace.
type SpacerData struct {
	Styles map[string]string `json:"styles"`
}

// BlockType implementations tie each payload struct to its type tag.
func (HeroData) BlockType() Type       { return TypeHero }
func (HeadingData) BlockType() Type    { return TypeHeading }
func (CountdownData) BlockType() Type  { return TypeCountdown }
func (ProgramData) BlockType() Type    { return TypeProgram }
func (RSVPData) BlockType() Type       { return TypeRSVP }
func (GalleryData) BlockType() Type    { return TypeGallery }
func (TextData) BlockType() Type       { return TypeText }
func (NavigationData) BlockType() Type { return TypeNavigation }
func (DividerData) BlockType() Type    { return TypeDivider }
func (SpacerData) BlockType() Type     { return TypeSpacer }

// DecodeData unmarshals a JSON payload into the typed struct for t.
func DecodeData(t Type, raw []byte) (Data, error) {
	var (
		data Data
		err  error
	)

	switch t {
	case TypeHero:
		var d HeroData
		err = json.Unmarshal(raw, &d)
		data = d
	case TypeHeading:
		var d HeadingData
		err = json.Unmarshal(raw, &d)
		data = d
	case TypeCountdown:
		var d CountdownData
		err = json.Unmarshal(raw, &d)
		data = d
	case TypeProgram:
		var d ProgramData
		err = json.Unmarshal(raw, &d)
		data = d
	case TypeRSVP:
		var d RSVPData
		err = json.Unmarshal(raw, &d)
		data = d
	case TypeGallery:
		var d GalleryData
		err = json.Unmarshal(raw, &d)
		data = d
	case TypeText:
		var d TextData
		err = json.Unmarshal(raw, &d)
		data = d
	case TypeNavigation:
		var d NavigationData
		err = json.Unmarshal(raw, &d)
		data = d
	case TypeDivider:
		var d DividerData
		err = json.Unmarshal(raw, &d)
		data = d
	case TypeSpacer:
		var d SpacerData
		err = json.Unmarshal(raw, &d)
		data = d
	default:
		return nil, fmt.Errorf("unknown block type %q", t)
	}

	if err != nil {
		return nil, fmt.Errorf("decoding %s block data: %w", t, err)
	}
	return data, nil
}

// EncodeData marshals a typed payload to JSON for storage.
func EncodeData(data Data) ([]byte, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encoding %s block data: %w", data.BlockType(), err)
	}
	return raw, nil
}
