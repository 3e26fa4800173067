// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package web embeds templates, static assets and page content.
package web

import (
	"embed"
	"io/fs"
)

//go:embed all:templates
var templates embed.FS

//go:embed all:static
var static embed.FS

//go:embed content/*.md
var content embed.FS

// Templates returns the template tree (layouts, partials, pages).
func Templates() fs.FS { return mustSub(templates, "templates") }

// Static returns the assets served under /static/.
func Static() fs.FS { return mustSub(static, "static") }

// Content returns the Markdown sources of the static pages.
func Content() fs.FS { return mustSub(content, "content") }

func mustSub(fsys fs.FS, dir string) fs.FS {
	sub, err := fs.Sub(fsys, dir)
	if err != nil {
		panic(err)
	}
	return sub
}
