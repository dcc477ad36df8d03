// Copyright (c) 2026 Haasivu Contributors
// SPDX-License-Identifier: GPL-3.0-or-later

// Package markdown renders the couple's text-block content to sanitized
// HTML for the published site.
package markdown

import (
	"bytes"
	"fmt"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// htmlSanitizer strips anything outside bluemonday's UGC allowlist.
// Text-block content is written by site owners but rendered to guests,
// so it gets the user-generated-content treatment.
var htmlSanitizer = bluemonday.UGCPolicy()

// md converts markdown with GFM extensions (tables, strikethrough,
// autolinked URLs).
var md = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
)

// Render converts markdown source to sanitized HTML.
func Render(source string) (string, error) {
	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("rendering markdown: %w", err)
	}
	return htmlSanitizer.Sanitize(buf.String()), nil
}
