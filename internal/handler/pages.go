// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"html/template"
	"io/fs"
	"net/http"

	"github.com/olegiv/oblog/internal/render"
)

// staticPage is a Markdown page converted once at start-up.
type staticPage struct {
	title string
	body  template.HTML
}

// PageHandler serves the about and contact pages.
type PageHandler struct {
	renderer *render.Renderer
	pages    map[string]staticPage
}

// NewPageHandler converts about.md and contact.md from content.
func NewPageHandler(renderer *render.Renderer, content fs.FS) (*PageHandler, error) {
	h := &PageHandler{renderer: renderer, pages: make(map[string]staticPage)}

	for slug, title := range map[string]string{"about": "About", "contact": "Contact"} {
		src, err := fs.ReadFile(content, slug+".md")
		if err != nil {
			return nil, fmt.Errorf("reading %s page: %w", slug, err)
		}
		body, err := render.Markup(string(src))
		if err != nil {
			return nil, fmt.Errorf("rendering %s page: %w", slug, err)
		}
		h.pages[slug] = staticPage{title: title, body: body}
	}

	return h, nil
}

// About handles GET /about.
func (h *PageHandler) About(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "about")
}

// Contact handles GET /contact.
func (h *PageHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, "contact")
}

func (h *PageHandler) serve(w http.ResponseWriter, r *http.Request, slug string) {
	page := h.pages[slug]
	renderPage(w, r, h.renderer, pageStatic, render.TemplateData{
		Title: page.title,
		Data:  page.body,
	})
}
