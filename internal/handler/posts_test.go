// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/olegiv/oblog/internal/form"
	"github.com/olegiv/oblog/internal/middleware"
	"github.com/olegiv/oblog/internal/testutil"
)

// blog sets up the owner (admin) and alice (reader), both logged in.
func blog(t *testing.T) (app *testApp, owner, alice *client) {
	t.Helper()
	app = newTestApp(t)
	owner = app.newClient()
	owner.register("owner", "owner@example.com", "secret")
	alice = app.newClient()
	alice.register("alice", "a@x.com", "pw1")
	return app, owner, alice
}

func TestList(t *testing.T) {
	app, owner, _ := blog(t)
	owner.createPost("First")
	owner.createPost("Second")

	resp := app.newClient().get(RouteRoot)

	require.Equal(t, http.StatusOK, resp.status)
	first := strings.Index(resp.body, "First")
	second := strings.Index(resp.body, "Second")
	assert.True(t, first >= 0 && second > first, "posts should be listed in id order")
	assert.Contains(t, resp.body, "Posted by owner")
}

func TestList_Empty(t *testing.T) {
	app := newTestApp(t)

	resp := app.newClient().get(RouteRoot)

	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "No posts yet.")
}

func TestNewPost_RequiresLogin(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient()

	for _, resp := range []response{c.get(RouteNewPost), c.post(RouteNewPost, postValues("Sneaky"))} {
		assert.Equal(t, http.StatusSeeOther, resp.status)
		assert.Equal(t, RouteLogin, resp.location)
	}

	login := c.get(RouteLogin)
	assert.Contains(t, login.body, middleware.MsgLoginRequired)

	n, err := app.store.CountPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestNewPost_ByReader(t *testing.T) {
	app, _, alice := blog(t)

	page := alice.get(RouteNewPost)
	assert.Equal(t, http.StatusOK, page.status)
	assert.Contains(t, page.body, `action="/new-post"`)

	post := alice.createPost("Alice Writes")

	alicesAccount, err := app.store.GetUserByUsername(context.Background(), "alice")
	require.NoError(t, err)
	assert.Equal(t, alicesAccount.ID, post.AuthorID)
	assert.Equal(t, "Subtitle of Alice Writes", post.Subtitle)
	_, err = time.Parse(PostDateLayout, post.Date)
	assert.NoError(t, err, "date %q", post.Date)

	home := app.newClient().get(RouteRoot)
	assert.Contains(t, home.body, "Alice Writes")
	assert.Contains(t, home.body, "Posted by alice")
}

func TestNewPost_Validation(t *testing.T) {
	app, owner, _ := blog(t)

	values := postValues("Incomplete")
	values.Del("img_url")
	resp := owner.post(RouteNewPost, values)

	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, form.MsgRequired)
	assert.Contains(t, resp.body, `value="Incomplete"`)

	n, err := app.store.CountPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(0), n)
}

func TestNewPost_DuplicateTitle(t *testing.T) {
	app, owner, _ := blog(t)
	owner.createPost("Same")

	resp := owner.post(RouteNewPost, postValues("Same"))

	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, msgTitleTaken)
	n, err := app.store.CountPosts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)
}

func TestShow(t *testing.T) {
	app, owner, _ := blog(t)
	post := owner.createPost("Readable")

	resp := app.newClient().get(fmt.Sprintf(redirectPostID, post.ID))

	require.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, "<h1>Readable</h1>")
	assert.Contains(t, resp.body, "<p>Body of Readable</p>")
	assert.NotContains(t, resp.body, "Edit Post")
}

func TestShow_SanitizesBody(t *testing.T) {
	app, owner, _ := blog(t)
	values := postValues("Scripted")
	values.Set("body", `<p>ok</p><script>alert("x")</script>`)
	require.Equal(t, http.StatusSeeOther, owner.post(RouteNewPost, values).status)
	post := app.postByTitle("Scripted")

	resp := app.newClient().get(fmt.Sprintf(redirectPostID, post.ID))

	assert.Contains(t, resp.body, "<p>ok</p>")
	assert.NotContains(t, resp.body, "<script>alert")
}

func TestShow_NotFound(t *testing.T) {
	app := newTestApp(t)
	c := app.newClient()

	for _, path := range []string{"/post/999", "/post/abc", "/post/-1", "/no-such-page"} {
		t.Run(path, func(t *testing.T) {
			resp := c.get(path)
			assert.Equal(t, http.StatusNotFound, resp.status)
		})
	}
}

func TestComment_Anonymous(t *testing.T) {
	app, owner, _ := blog(t)
	post := owner.createPost("Discuss")

	resp := app.newClient().post(fmt.Sprintf(redirectPostID, post.ID), url.Values{"body": {"hello"}})

	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, msgLoginToComment)
	assert.Equal(t, int64(0), app.countComments(post.ID))
}

func TestComment_Authenticated(t *testing.T) {
	app, owner, alice := blog(t)
	post := owner.createPost("Discuss")
	other := owner.createPost("Quiet")

	path := fmt.Sprintf(redirectPostID, post.ID)
	resp := alice.post(path, url.Values{"body": {"<p>Nice post!</p>"}})
	require.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, path, resp.location)

	assert.Equal(t, int64(1), app.countComments(post.ID))

	page := app.newClient().get(path)
	assert.Contains(t, page.body, "Nice post!")
	assert.Contains(t, page.body, "gravatar.com/avatar/")
	assert.Contains(t, page.body, "alice")

	quiet := app.newClient().get(fmt.Sprintf(redirectPostID, other.ID))
	assert.NotContains(t, quiet.body, "Nice post!")
}

func TestComment_Empty(t *testing.T) {
	app, owner, alice := blog(t)
	post := owner.createPost("Discuss")

	resp := alice.post(fmt.Sprintf(redirectPostID, post.ID), url.Values{"body": {"   "}})

	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, form.MsgRequired)
	assert.Equal(t, int64(0), app.countComments(post.ID))
}

func TestComment_MissingPost(t *testing.T) {
	_, _, alice := blog(t)

	resp := alice.post("/post/999", url.Values{"body": {"hello"}})

	assert.Equal(t, http.StatusNotFound, resp.status)
}

func TestAdminRoutes_RejectNonAdmins(t *testing.T) {
	app, owner, alice := blog(t)
	post := owner.createPost("Owned")
	alice.createPost("By Alice")
	anonymous := app.newClient()

	editPath := fmt.Sprintf(redirectEditPostID, post.ID)
	deletePath := fmt.Sprintf("/delete/%d", post.ID)

	for name, c := range map[string]*client{"reader": alice, "anonymous": anonymous} {
		t.Run(name, func(t *testing.T) {
			for _, resp := range []response{
				c.get(editPath),
				c.post(editPath, postValues("Hijacked")),
				c.get(deletePath),
			} {
				assert.Equal(t, http.StatusForbidden, resp.status)
				assert.Empty(t, resp.location)
			}
		})
	}

	// Alice may not edit even her own post.
	own := app.postByTitle("By Alice")
	assert.Equal(t, http.StatusForbidden, alice.get(fmt.Sprintf(redirectEditPostID, own.ID)).status)

	stored, err := app.store.GetPostByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Owned", stored.Title)
}

func TestEditPost(t *testing.T) {
	app, owner, _ := blog(t)
	post := owner.createPost("Draft")
	path := fmt.Sprintf(redirectEditPostID, post.ID)

	page := owner.get(path)
	require.Equal(t, http.StatusOK, page.status)
	assert.Contains(t, page.body, `value="Draft"`)
	assert.Contains(t, page.body, "Edit Post")

	values := postValues("Final")
	resp := owner.post(path, values)
	require.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, fmt.Sprintf(redirectPostID, post.ID), resp.location)

	stored, err := app.store.GetPostByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", stored.Title)
	assert.Equal(t, "Subtitle of Final", stored.Subtitle)
	assert.Equal(t, post.AuthorID, stored.AuthorID)
	assert.Equal(t, post.Date, stored.Date)
}

func TestEditPost_KeepOwnTitle(t *testing.T) {
	_, owner, _ := blog(t)
	post := owner.createPost("Stable")

	resp := owner.post(fmt.Sprintf(redirectEditPostID, post.ID), postValues("Stable"))

	assert.Equal(t, http.StatusSeeOther, resp.status)
}

func TestEditPost_DuplicateTitle(t *testing.T) {
	app, owner, _ := blog(t)
	owner.createPost("Taken")
	post := owner.createPost("Mine")

	resp := owner.post(fmt.Sprintf(redirectEditPostID, post.ID), postValues("Taken"))

	assert.Equal(t, http.StatusOK, resp.status)
	assert.Contains(t, resp.body, msgTitleTaken)
	stored, err := app.store.GetPostByID(context.Background(), post.ID)
	require.NoError(t, err)
	assert.Equal(t, "Mine", stored.Title)
}

func TestEditPost_NotFound(t *testing.T) {
	_, owner, _ := blog(t)

	assert.Equal(t, http.StatusNotFound, owner.get("/edit-post/999").status)
	assert.Equal(t, http.StatusNotFound, owner.post("/edit-post/999", postValues("Ghost")).status)
}

func TestEditPost_MissingWithTakenTitle(t *testing.T) {
	_, owner, _ := blog(t)
	owner.createPost("Taken")

	resp := owner.post("/edit-post/999", postValues("Taken"))

	assert.Equal(t, http.StatusNotFound, resp.status)
	assert.NotContains(t, resp.body, msgTitleTaken)
}

func TestDeletePost(t *testing.T) {
	app, owner, alice := blog(t)
	post := owner.createPost("Doomed")
	require.Equal(t, http.StatusSeeOther,
		alice.post(fmt.Sprintf(redirectPostID, post.ID), url.Values{"body": {"bye"}}).status)

	resp := owner.get(fmt.Sprintf("/delete/%d", post.ID))
	require.Equal(t, http.StatusSeeOther, resp.status)
	assert.Equal(t, RouteRoot, resp.location)

	_, err := app.store.GetPostByID(context.Background(), post.ID)
	assert.ErrorIs(t, err, sql.ErrNoRows)
	assert.Equal(t, int64(0), app.countComments(post.ID))

	home := owner.get(RouteRoot)
	assert.Contains(t, home.body, "Post deleted.")
	assert.NotContains(t, home.body, "Doomed")
}

func TestDeletePost_NotFound(t *testing.T) {
	_, owner, _ := blog(t)

	assert.Equal(t, http.StatusNotFound, owner.get("/delete/999").status)
}

// TestScenario_AliceAndTheAdmin walks the registration, login and
// authorization story end to end.
func TestScenario_AliceAndTheAdmin(t *testing.T) {
	app := newTestApp(t)
	admin := app.newClient()
	admin.register("admin", "admin@example.com", "root")

	alice := app.newClient()
	alice.register("alice", "a@x.com", "pw1")
	assert.Contains(t, alice.get(RouteRoot).body, "Signed in as alice")

	dup := app.newClient().post(RouteRegister, url.Values{
		"username": {"alice2"}, "email": {"a@x.com"}, "password": {"pw1"},
	})
	assert.Contains(t, dup.body, "already registered with this email")

	stranger := app.newClient()
	wrong := stranger.post(RouteLogin, url.Values{"username": {"alice"}, "password": {"bad"}})
	assert.Contains(t, wrong.body, "wrong password")
	assert.NotContains(t, stranger.get(RouteRoot).body, "Signed in as")

	post := alice.createPost("Alice Post")
	assert.Equal(t, http.StatusForbidden, alice.get(fmt.Sprintf(redirectEditPostID, post.ID)).status)

	assert.Equal(t, http.StatusOK, admin.get(fmt.Sprintf(redirectEditPostID, post.ID)).status)
	assert.Equal(t, http.StatusSeeOther, admin.get(fmt.Sprintf("/delete/%d", post.ID)).status)
}

func TestBlog_ProductionDriver(t *testing.T) {
	app := newTestAppOn(t, testutil.TestDB(t))
	admin := app.newClient()
	admin.register("admin", "admin@example.com", "root")
	reader := app.newClient()
	reader.register("alice", "a@x.com", "pw1")

	dup := app.newClient().post(RouteRegister, url.Values{
		"username": {"other"}, "email": {"a@x.com"}, "password": {"x"},
	})
	assert.Contains(t, dup.body, "already registered with this email")

	post := admin.createPost("On Disk")
	assert.Contains(t, admin.post(RouteNewPost, postValues("On Disk")).body, msgTitleTaken)

	path := fmt.Sprintf(redirectPostID, post.ID)
	require.Equal(t, http.StatusSeeOther, reader.post(path, url.Values{"body": {"stored"}}).status)
	assert.Contains(t, app.newClient().get(path).body, "stored")

	assert.Equal(t, http.StatusForbidden, reader.get(fmt.Sprintf("/delete/%d", post.ID)).status)
	require.Equal(t, http.StatusSeeOther, admin.get(fmt.Sprintf("/delete/%d", post.ID)).status)
	assert.Equal(t, int64(0), app.countComments(post.ID))
	assert.Equal(t, http.StatusNotFound, app.newClient().get(path).status)
}
