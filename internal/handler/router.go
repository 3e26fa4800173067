// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/olegiv/oblog/internal/auth"
	"github.com/olegiv/oblog/internal/middleware"
	"github.com/olegiv/oblog/internal/render"
	"github.com/olegiv/oblog/internal/store"
)

// staticMaxAge is the cache lifetime of embedded assets (1 day).
const staticMaxAge = 86400

// RouterConfig carries everything the router wires together.
type RouterConfig struct {
	Store          *store.Store
	Auth           *auth.Service
	Sessions       *scs.SessionManager
	Renderer       *render.Renderer
	Content        fs.FS
	Static         fs.FS
	Version        string
	IsDevelopment  bool
	TrustedOrigins []string

	// Per-IP token bucket for login and registration submissions.
	// Zero AuthRateLimit disables throttling.
	AuthRateLimit float64
	AuthRateBurst int

	// RequestLog enables chi's per-request access log.
	RequestLog bool
}

// NewRouter builds the application's HTTP handler.
func NewRouter(cfg RouterConfig) (http.Handler, error) {
	pages, err := NewPageHandler(cfg.Renderer, cfg.Content)
	if err != nil {
		return nil, fmt.Errorf("loading pages: %w", err)
	}

	authHandler := NewAuthHandler(cfg.Auth, cfg.Renderer, cfg.Sessions)
	postHandler := NewPostHandler(cfg.Store, cfg.Renderer)
	healthHandler := NewHealthHandler(cfg.Store.DB(), cfg.Version)

	r := chi.NewRouter()

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	if cfg.RequestLog {
		r.Use(chimw.Logger)
	}
	r.Use(chimw.Recoverer)
	r.Use(chimw.Compress(5))
	r.Use(chimw.GetHead)
	r.Use(chimw.Timeout(30 * time.Second))
	r.Use(chimw.RedirectSlashes)
	r.Use(middleware.SecurityHeaders(middleware.DefaultSecurityHeadersConfig(cfg.IsDevelopment)))
	r.Use(middleware.RequestPath)
	r.Use(cfg.Sessions.LoadAndSave)
	r.Use(middleware.CSRF(middleware.DefaultCSRFConfig(cfg.IsDevelopment, cfg.TrustedOrigins...)))
	r.Use(middleware.LoadIdentity(cfg.Sessions, cfg.Auth))

	r.Get(RouteHealth, healthHandler.Health)
	r.Handle(RouteStatic, middleware.StaticCache(staticMaxAge)(
		http.StripPrefix("/static/", http.FileServerFS(cfg.Static))))

	r.Get(RouteRoot, postHandler.List)
	r.Get(RouteAbout, pages.About)
	r.Get(RouteContact, pages.Contact)

	throttle := middleware.RateLimit(cfg.AuthRateLimit, cfg.AuthRateBurst)
	r.Get(RouteRegister, authHandler.RegisterForm)
	r.With(throttle).Post(RouteRegister, authHandler.Register)
	r.Get(RouteLogin, authHandler.LoginForm)
	r.With(throttle).Post(RouteLogin, authHandler.Login)
	r.Get(RouteLogout, authHandler.Logout)

	r.Get(RoutePostID, postHandler.Show)
	r.Post(RoutePostID, postHandler.AddComment)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireLogin(cfg.Sessions))
		r.Get(RouteNewPost, postHandler.NewForm)
		r.Post(RouteNewPost, postHandler.Create)
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAdmin)
		r.Get(RouteEditPostID, postHandler.EditForm)
		r.Post(RouteEditPostID, postHandler.Update)
		r.Get(RouteDeleteID, postHandler.Delete)
	})

	r.NotFound(NotFoundHandler(cfg.Renderer))

	return r, nil
}
