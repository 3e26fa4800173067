// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oblog/internal/auth"
	"github.com/olegiv/oblog/internal/form"
	"github.com/olegiv/oblog/internal/render"
	"github.com/olegiv/oblog/internal/session"
)

// AuthHandler handles registration, login and logout.
type AuthHandler struct {
	auth           *auth.Service
	renderer       *render.Renderer
	sessionManager *scs.SessionManager
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(svc *auth.Service, renderer *render.Renderer, sm *scs.SessionManager) *AuthHandler {
	return &AuthHandler{
		auth:           svc,
		renderer:       renderer,
		sessionManager: sm,
	}
}

// RegisterForm renders the registration page.
func (h *AuthHandler) RegisterForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, pageRegister, render.TemplateData{
		Title: "Register",
		Form:  form.Register{},
	})
}

// Register handles POST /register. Conflicts and invalid input re-render
// the form; success logs the new user in and redirects home.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var f form.Register
	if err := form.Decode(r, &f); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	data := render.TemplateData{Title: "Register", Form: f}
	if errs := form.Validate(f); !errs.Valid() {
		data.Errors = errs
		renderPage(w, r, h.renderer, pageRegister, data)
		return
	}

	user, err := h.auth.Register(r.Context(), auth.RegisterInput{
		Username: f.Username,
		Email:    f.Email,
		Password: f.Password,
	})
	if errors.Is(err, auth.ErrEmailTaken) || errors.Is(err, auth.ErrUsernameTaken) {
		slog.InfoContext(r.Context(), "registration rejected", "reason", err.Error())
		data.Flash = err.Error()
		data.FlashType = session.FlashError
		renderPage(w, r, h.renderer, pageRegister, data)
		return
	}
	if err != nil {
		logAndInternalError(w, r, "failed to register user", "error", err)
		return
	}

	if err := session.Login(r.Context(), h.sessionManager, user.ID); err != nil {
		logAndInternalError(w, r, "failed to start session", "error", err, "user_id", user.ID)
		return
	}

	slog.InfoContext(r.Context(), "user registered", "user_id", user.ID, "role", user.Role)
	redirect(w, r, RouteRoot)
}

// LoginForm renders the login page.
func (h *AuthHandler) LoginForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, pageLogin, render.TemplateData{
		Title: "Log In",
		Form:  form.Login{},
	})
}

// Login handles POST /login. The credential check runs even when a field
// is missing, so an empty username reports an unknown user.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var f form.Login
	if err := form.Decode(r, &f); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	data := render.TemplateData{Title: "Log In", Form: f, Errors: form.Validate(f)}

	user, err := h.auth.Authenticate(r.Context(), f.Username, f.Password)
	if errors.Is(err, auth.ErrUnknownUser) || errors.Is(err, auth.ErrWrongPassword) {
		slog.InfoContext(r.Context(), "login failed", "username", f.Username, "reason", err.Error())
		data.Flash = err.Error()
		data.FlashType = session.FlashError
		renderPage(w, r, h.renderer, pageLogin, data)
		return
	}
	if err != nil {
		logAndInternalError(w, r, "failed to authenticate", "error", err)
		return
	}

	if err := session.Login(r.Context(), h.sessionManager, user.ID); err != nil {
		logAndInternalError(w, r, "failed to start session", "error", err, "user_id", user.ID)
		return
	}

	slog.InfoContext(r.Context(), "user logged in", "user_id", user.ID)
	redirect(w, r, RouteRoot)
}

// Logout handles GET /logout. Logging out without a session is harmless.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := session.UserID(r.Context(), h.sessionManager)
	if err := session.Logout(r.Context(), h.sessionManager); err != nil {
		logAndInternalError(w, r, "failed to destroy session", "error", err)
		return
	}
	if userID != 0 {
		slog.InfoContext(r.Context(), "user logged out", "user_id", userID)
	}
	redirect(w, r, RouteRoot)
}
