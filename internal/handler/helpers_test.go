// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/alexedwards/scs/v2"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/oblog/internal/auth"
	"github.com/olegiv/oblog/internal/render"
	"github.com/olegiv/oblog/internal/session"
	"github.com/olegiv/oblog/internal/store"
	"github.com/olegiv/oblog/internal/testutil"
	"github.com/olegiv/oblog/web"
)

// testIterations keeps password hashing fast in tests.
const testIterations = 1000

// testApp is a running blog over an in-memory database.
type testApp struct {
	t      *testing.T
	server *httptest.Server
	store  *store.Store
	sm     *scs.SessionManager
}

func newTestApp(t *testing.T, opts ...func(*RouterConfig)) *testApp {
	t.Helper()
	return newTestAppOn(t, testutil.TestMemoryDB(t), opts...)
}

// newTestAppOn runs the blog over db, which must already be migrated.
func newTestAppOn(t *testing.T, db *sql.DB, opts ...func(*RouterConfig)) *testApp {
	t.Helper()

	st := store.NewStore(db)
	sm := session.New(st.DB(), true)

	renderer, err := render.New(render.Config{
		TemplatesFS:    web.Templates(),
		SessionManager: sm,
		SiteName:       "Test Blog",
	})
	require.NoError(t, err)

	cfg := RouterConfig{
		Store:         st,
		Auth:          auth.NewService(st, auth.WithIterations(testIterations)),
		Sessions:      sm,
		Renderer:      renderer,
		Content:       web.Content(),
		Static:        web.Static(),
		Version:       "test",
		IsDevelopment: true,
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	router, err := NewRouter(cfg)
	require.NoError(t, err)

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testApp{t: t, server: srv, store: st, sm: sm}
}

// client is one browser: its own cookie jar, redirects not followed.
type client struct {
	app  *testApp
	http *http.Client
}

func (a *testApp) newClient() *client {
	a.t.Helper()
	jar, err := cookiejar.New(nil)
	require.NoError(a.t, err)
	return &client{
		app: a,
		http: &http.Client{
			Jar: jar,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
	}
}

// response is a fully read HTTP response.
type response struct {
	status   int
	location string
	body     string
	header   http.Header
}

func (c *client) do(req *http.Request) response {
	c.app.t.Helper()
	resp, err := c.http.Do(req)
	require.NoError(c.app.t, err)
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	require.NoError(c.app.t, err)

	return response{
		status:   resp.StatusCode,
		location: resp.Header.Get("Location"),
		body:     string(body),
		header:   resp.Header,
	}
}

func (c *client) get(path string) response {
	c.app.t.Helper()
	req, err := http.NewRequest(http.MethodGet, c.app.server.URL+path, nil)
	require.NoError(c.app.t, err)
	return c.do(req)
}

func (c *client) post(path string, values url.Values) response {
	c.app.t.Helper()
	req, err := http.NewRequest(http.MethodPost, c.app.server.URL+path, strings.NewReader(values.Encode()))
	require.NoError(c.app.t, err)
	req.Header.Set(HeaderContentType, "application/x-www-form-urlencoded")
	return c.do(req)
}

// register submits the registration form and expects success.
func (c *client) register(username, email, password string) {
	c.app.t.Helper()
	resp := c.post(RouteRegister, url.Values{
		"username": {username},
		"email":    {email},
		"password": {password},
	})
	require.Equal(c.app.t, http.StatusSeeOther, resp.status, resp.body)
	require.Equal(c.app.t, RouteRoot, resp.location)
}

// createPost submits the new-post form and returns the stored post.
func (c *client) createPost(title string) store.PostWithAuthor {
	c.app.t.Helper()
	resp := c.post(RouteNewPost, postValues(title))
	require.Equal(c.app.t, http.StatusSeeOther, resp.status, resp.body)
	return c.app.postByTitle(title)
}

func postValues(title string) url.Values {
	return url.Values{
		"title":    {title},
		"subtitle": {"Subtitle of " + title},
		"img_url":  {"https://example.com/" + strings.ReplaceAll(title, " ", "-") + ".jpg"},
		"body":     {"<p>Body of " + title + "</p>"},
	}
}

func (a *testApp) postByTitle(title string) store.PostWithAuthor {
	a.t.Helper()
	posts, err := a.store.ListPosts(context.Background())
	require.NoError(a.t, err)
	for _, p := range posts {
		if p.Title == title {
			return p
		}
	}
	a.t.Fatalf("post %q not found", title)
	return store.PostWithAuthor{}
}

func (a *testApp) countUsers() int64 {
	a.t.Helper()
	n, err := a.store.CountUsers(context.Background())
	require.NoError(a.t, err)
	return n
}

func (a *testApp) countComments(postID int64) int64 {
	a.t.Helper()
	n, err := a.store.CountCommentsByPost(context.Background(), postID)
	require.NoError(a.t, err)
	return n
}
