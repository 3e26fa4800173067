// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package session configures cookie sessions and binds them to user accounts.
package session

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/alexedwards/scs/sqlite3store"
	"github.com/alexedwards/scs/v2"
)

// KeyUserID is the session key holding the authenticated user's id.
const KeyUserID = "user_id"

// New creates a new session manager configured with the SQLite store.
func New(db *sql.DB, isDev bool) *scs.SessionManager {
	sm := scs.New()

	sm.Store = sqlite3store.New(db)

	sm.Lifetime = 24 * time.Hour
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	sm.Cookie.Secure = !isDev

	// The __Host- prefix pins the cookie to this host over HTTPS.
	if !isDev {
		sm.Cookie.Name = "__Host-session"
	}

	return sm
}

// Login binds the session to userID. The token is renewed first so a
// pre-login session id cannot be reused.
func Login(ctx context.Context, sm *scs.SessionManager, userID int64) error {
	if err := sm.RenewToken(ctx); err != nil {
		return err
	}
	sm.Put(ctx, KeyUserID, userID)
	return nil
}

// Logout destroys the session. Calling it without a session is a no-op.
func Logout(ctx context.Context, sm *scs.SessionManager) error {
	return sm.Destroy(ctx)
}

// UserID returns the id bound to the session, or 0.
func UserID(ctx context.Context, sm *scs.SessionManager) int64 {
	return sm.GetInt64(ctx, KeyUserID)
}

// Forget drops a user id that no longer resolves to an account.
func Forget(ctx context.Context, sm *scs.SessionManager) {
	sm.Remove(ctx, KeyUserID)
}

// Flash kinds understood by the templates.
const (
	FlashInfo  = "info"
	FlashError = "error"
)

const (
	keyFlash     = "flash"
	keyFlashType = "flash_type"
)

// SetFlash stores a one-shot message shown on the next rendered page.
func SetFlash(ctx context.Context, sm *scs.SessionManager, message, kind string) {
	sm.Put(ctx, keyFlash, message)
	sm.Put(ctx, keyFlashType, kind)
}

// PopFlash returns and clears the pending flash message.
func PopFlash(ctx context.Context, sm *scs.SessionManager) (message, kind string) {
	message = sm.PopString(ctx, keyFlash)
	kind = sm.PopString(ctx, keyFlashType)
	if message != "" && kind == "" {
		kind = FlashInfo
	}
	return message, kind
}
