// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"net/http"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/oblog/internal/config"
	"github.com/olegiv/oblog/internal/form"
	"github.com/olegiv/oblog/internal/middleware"
	"github.com/olegiv/oblog/internal/store"
)

func TestRegisterForm(t *testing.T) {
	app := newTestApp(t)

	resp := app.newClient().get(RouteRegister)

	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, `name="username"`)
	assert.Contains(t, resp.body, `name="email"`)
	assert.Contains(t, resp.body, `name="password"`)
}

func TestRegister_FirstUserIsAdmin(t *testing.T) {
	app := newTestApp(t)

	owner := app.newClient()
	owner.register("owner", "owner@example.com", "secret")
	alice := app.newClient()
	alice.register("alice", "a@x.com", "pw1")

	ctx := context.Background()
	first, err := app.store.GetUserByUsername(ctx, "owner")
	require.NoError(t, err)
	second, err := app.store.GetUserByUsername(ctx, "alice")
	require.NoError(t, err)

	assert.Equal(t, store.RoleAdmin, first.Role)
	assert.Equal(t, store.RoleReader, second.Role)
	assert.NotEqual(t, "pw1", second.PasswordHash)
	assert.Contains(t, second.PasswordHash, "pbkdf2:sha256:")
}

func TestRegister_LogsIn(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient()

	c.register("alice", "a@x.com", "pw1")

	home := c.get(RouteRoot)
	assert.Contains(t, home.body, "Signed in as alice")
	assert.Contains(t, home.body, `href="/logout"`)
}

func TestRegister_Conflicts(t *testing.T) {
	tests := []struct {
		name     string
		username string
		email    string
		want     string
	}{
		{"same email", "bob", "a@x.com", "you already registered with this email"},
		{"same username", "alice", "b@x.com", "username already taken"},
		{"both collide", "alice", "a@x.com", "you already registered with this email"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newTestApp(t)
			app.newClient().register("alice", "a@x.com", "pw1")

			c := app.newClient()
			resp := c.post(RouteRegister, url.Values{
				"username": {tt.username},
				"email":    {tt.email},
				"password": {"pw2"},
			})

			assert.Equal(t, http.StatusOK, resp.status)
			assert.Contains(t, resp.body, tt.want)
			assert.Equal(t, int64(1), app.countUsers())
			assert.NotContains(t, c.get(RouteRoot).body, "Signed in as")
		})
	}
}

func TestRegister_Validation(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient()

	resp := c.post(RouteRegister, url.Values{
		"username": {"  "},
		"email":    {"a@x.com"},
	})

	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, form.MsgRequired)
	assert.Contains(t, resp.body, `value="a@x.com"`)
	assert.Equal(t, int64(0), app.countUsers())
}

func TestLogin(t *testing.T) {
	app := newTestApp(t)
	app.newClient().register("alice", "a@x.com", "pw1")

	tests := []struct {
		name       string
		username   string
		password   string
		wantStatus int
		wantBody   string
	}{
		{"unknown user", "bob", "pw1", http.StatusOK, "user name does not exist"},
		{"wrong password", "alice", "nope", http.StatusOK, "wrong password"},
		{"empty username", "", "pw1", http.StatusOK, "user name does not exist"},
		{"success", "alice", "pw1", http.StatusSeeOther, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := app.newClient()
			resp := c.post(RouteLogin, url.Values{
				"username": {tt.username},
				"password": {tt.password},
			})

			assert.Equal(t, tt.wantStatus, resp.status)
			if tt.wantBody != "" {
				assert.Contains(t, resp.body, tt.wantBody)
			}

			home := c.get(RouteRoot)
			if tt.wantStatus == http.StatusSeeOther {
				assert.Equal(t, RouteRoot, resp.location)
				assert.Contains(t, home.body, "Signed in as alice")
			} else {
				assert.NotContains(t, home.body, "Signed in as")
			}
		})
	}
}

func TestLogin_RenewsSessionToken(t *testing.T) {
	app := newTestApp(t)
	app.newClient().register("alice", "a@x.com", "pw1")

	c := app.newClient()
	// The login-required notice gives the anonymous visitor a session.
	c.get(RouteNewPost)
	before := sessionCookie(t, c, app)
	require.NotEmpty(t, before)

	resp := c.post(RouteLogin, url.Values{"username": {"alice"}, "password": {"pw1"}})
	require.Equal(t, http.StatusSeeOther, resp.status)

	after := sessionCookie(t, c, app)
	assert.NotEmpty(t, after)
	assert.NotEqual(t, before, after)
}

func sessionCookie(t *testing.T, c *client, app *testApp) string {
	t.Helper()
	u, err := url.Parse(app.server.URL)
	require.NoError(t, err)
	for _, ck := range c.http.Jar.Cookies(u) {
		if ck.Name == app.sm.Cookie.Name {
			return ck.Value
		}
	}
	return ""
}

func TestLogout_Twice(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient()
	c.register("alice", "a@x.com", "pw1")

	for i := 0; i < 2; i++ {
		resp := c.get(RouteLogout)
		assert.Equal(t, http.StatusSeeOther, resp.status)
		assert.Equal(t, RouteRoot, resp.location)
	}

	home := c.get(RouteRoot)
	assert.Equal(t, http.StatusOK, home.status)
	assert.NotContains(t, home.body, "Signed in as")
	assert.Contains(t, home.body, `href="/login"`)
}

func TestLogout_Anonymous(t *testing.T) {
	app := newTestApp(t)

	resp := app.newClient().get(RouteLogout)

	assert.Equal(t, http.StatusSeeOther, resp.status)
}

func TestLogin_Throttled(t *testing.T) {
	app := newTestApp(t, func(cfg *RouterConfig) {
		cfg.AuthRateLimit = 0.001
		cfg.AuthRateBurst = 2
	})
	c := app.newClient()
	bad := url.Values{"username": {"nobody"}, "password": {"x"}}

	assert.Equal(t, http.StatusOK, c.post(RouteLogin, bad).status)
	assert.Equal(t, http.StatusOK, c.post(RouteLogin, bad).status)

	resp := c.post(RouteLogin, bad)
	assert.Equal(t, http.StatusTooManyRequests, resp.status)
	assert.Contains(t, resp.body, middleware.MsgTooManyRequests)

	// The form itself stays reachable.
	assert.Equal(t, http.StatusOK, c.get(RouteLogin).status)
}

func TestLogin_DefaultConfigDoesNotThrottle(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)
	app := newTestApp(t, func(rc *RouterConfig) {
		rc.AuthRateLimit = cfg.AuthRateLimit
		rc.AuthRateBurst = cfg.AuthRateBurst
	})
	app.newClient().register("alice", "a@x.com", "pw1")
	creds := url.Values{"username": {"alice"}, "password": {"pw1"}}

	for i := range 8 {
		c := app.newClient()
		resp := c.post(RouteLogin, creds)
		require.Equal(t, http.StatusSeeOther, resp.status, "login %d", i+1)
		assert.Equal(t, RouteRoot, resp.location)
		assert.Contains(t, c.get(RouteRoot).body, "Signed in as alice", "login %d", i+1)
	}
}
