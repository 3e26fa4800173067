// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for request identity,
// authorization guards, and request context handling.
package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/alexedwards/scs/v2"

	"github.com/olegiv/oblog/internal/auth"
	"github.com/olegiv/oblog/internal/logging"
	"github.com/olegiv/oblog/internal/session"
)

// ContextKey is a type for context keys to avoid collisions.
type ContextKey string

// ContextKeyIdentity holds the auth.Identity of the current viewer.
const ContextKeyIdentity ContextKey = "identity"

// LoginPath is where RequireLogin sends anonymous visitors.
const LoginPath = "/login"

// MsgLoginRequired is flashed when a page needs an account.
const MsgLoginRequired = "Please log in to access this page."

// IdentityLoader resolves a session user id to an identity.
type IdentityLoader interface {
	LoadIdentity(ctx context.Context, userID int64) (auth.Identity, error)
}

// LoadIdentity creates middleware that places the viewer's identity in the
// request context. Visitors without a session, or whose account no longer
// exists, are Anonymous; a dangling user id is dropped from the session.
func LoadIdentity(sm *scs.SessionManager, loader IdentityLoader) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			var id auth.Identity = auth.Anonymous{}

			if userID := session.UserID(ctx, sm); userID != 0 {
				loaded, err := loader.LoadIdentity(ctx, userID)
				switch {
				case err != nil:
					slog.ErrorContext(ctx, "loading identity", "user_id", userID, "error", err)
				case !loaded.IsAuthenticated():
					session.Forget(ctx, sm)
				default:
					id = loaded
				}
			}

			next.ServeHTTP(w, r.WithContext(WithIdentity(ctx, id)))
		})
	}
}

// WithIdentity returns a copy of ctx carrying id.
func WithIdentity(ctx context.Context, id auth.Identity) context.Context {
	return context.WithValue(ctx, ContextKeyIdentity, id)
}

// GetIdentity returns the viewer's identity. It is never nil: requests that
// did not pass through LoadIdentity are Anonymous.
func GetIdentity(r *http.Request) auth.Identity {
	if id, ok := r.Context().Value(ContextKeyIdentity).(auth.Identity); ok && id != nil {
		return id
	}
	return auth.Anonymous{}
}

// RequireLogin redirects anonymous visitors to the login page with a notice.
func RequireLogin(sm *scs.SessionManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if auth.AuthorizeUser(GetIdentity(r)) != auth.Allowed {
				session.SetFlash(r.Context(), sm, MsgLoginRequired, session.FlashError)
				http.Redirect(w, r, LoginPath, http.StatusSeeOther)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RequireAdmin rejects every viewer that is not the administrator with
// 403 Forbidden before the handler runs. No redirect, no flash.
func RequireAdmin(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := GetIdentity(r)
		if decision := auth.AuthorizeAdmin(id); decision != auth.Allowed {
			userID, _ := id.ID()
			slog.WarnContext(r.Context(), "access denied",
				"user_id", userID,
				"decision", decision.String(),
				"method", r.Method)
			http.Error(w, http.StatusText(http.StatusForbidden), http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// RequestPath creates middleware that stores the request path in the context.
// The logging handler uses it to annotate records.
func RequestPath(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(logging.WithPath(r.Context(), r.URL.Path)))
	})
}
