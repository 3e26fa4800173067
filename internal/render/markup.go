// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"bytes"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"html/template"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
)

// Gravatar parameters for comment avatars.
const (
	gravatarBase    = "https://www.gravatar.com/avatar/"
	gravatarSize    = "100"
	gravatarRating  = "g"
	gravatarDefault = "retro"
)

// htmlSanitizer strips scripts, event handlers and other unsafe markup from
// user-supplied post bodies and comments.
var htmlSanitizer = bluemonday.UGCPolicy()

// markdown passes raw HTML through so bodies written in a rich-text editor
// survive; the sanitizer runs afterwards.
var markdown = goldmark.New(
	goldmark.WithExtensions(extension.GFM),
	goldmark.WithRendererOptions(html.WithUnsafe()),
)

// Markup converts Markdown or HTML from users into sanitized HTML.
func Markup(src string) (template.HTML, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(src), &buf); err != nil {
		return "", fmt.Errorf("converting markdown: %w", err)
	}
	return template.HTML(htmlSanitizer.SanitizeBytes(buf.Bytes())), nil //nolint:gosec // sanitized above
}

// markupFunc is the template form of Markup. A conversion failure falls
// back to escaped text.
func markupFunc(src string) template.HTML {
	out, err := Markup(src)
	if err != nil {
		return template.HTML(template.HTMLEscapeString(src)) //nolint:gosec // escaped
	}
	return out
}

// Gravatar returns the avatar URL for an email address.
func Gravatar(email string) string {
	sum := md5.Sum([]byte(strings.ToLower(strings.TrimSpace(email))))
	q := url.Values{}
	q.Set("s", gravatarSize)
	q.Set("r", gravatarRating)
	q.Set("d", gravatarDefault)
	return gravatarBase + hex.EncodeToString(sum[:]) + "?" + q.Encode()
}

// truncate shortens s to at most length runes, appending an ellipsis.
func truncate(s string, length int) string {
	runes := []rune(s)
	if len(runes) <= length {
		return s
	}
	return string(runes[:length]) + "..."
}
