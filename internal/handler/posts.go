// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/oblog/internal/form"
	"github.com/olegiv/oblog/internal/middleware"
	"github.com/olegiv/oblog/internal/render"
	"github.com/olegiv/oblog/internal/session"
	"github.com/olegiv/oblog/internal/store"
)

// PostDateLayout formats the display date stored with each post.
const PostDateLayout = "January 2, 2006"

// errTitleTaken aborts a post transaction whose title is already in use.
var errTitleTaken = errors.New(msgTitleTaken)

// PostHandler handles the post listing, post pages, comments and the
// authoring routes.
type PostHandler struct {
	store    *store.Store
	renderer *render.Renderer
	now      func() time.Time
}

// NewPostHandler creates a new PostHandler.
func NewPostHandler(st *store.Store, renderer *render.Renderer) *PostHandler {
	return &PostHandler{
		store:    st,
		renderer: renderer,
		now:      time.Now,
	}
}

// postView is the data of the post page.
type postView struct {
	Post     store.PostWithAuthor
	Comments []store.CommentWithAuthor
}

// postFormView is the data of the create/edit page.
type postFormView struct {
	Editing bool
	Action  string
}

// List handles GET /: every post in id order.
func (h *PostHandler) List(w http.ResponseWriter, r *http.Request) {
	posts, err := h.store.ListPosts(r.Context())
	if err != nil {
		logAndInternalError(w, r, "failed to list posts", "error", err)
		return
	}
	renderPage(w, r, h.renderer, pageIndex, render.TemplateData{Data: posts})
}

// Show handles GET /post/{id}.
func (h *PostHandler) Show(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(r)
	if !ok {
		notFound(w, r, h.renderer)
		return
	}
	h.renderPost(w, r, id, render.TemplateData{Form: form.Comment{}})
}

// renderPost loads a post with its comments and renders the post page
// using data for the form, errors and notice.
func (h *PostHandler) renderPost(w http.ResponseWriter, r *http.Request, id int64, data render.TemplateData) {
	post, ok := requireEntity(w, r, h.renderer, "post", id, func(id int64) (store.PostWithAuthor, error) {
		return h.store.GetPostByID(r.Context(), id)
	})
	if !ok {
		return
	}

	comments, err := h.store.ListCommentsByPost(r.Context(), id)
	if err != nil {
		logAndInternalError(w, r, "failed to list comments", "error", err, "post_id", id)
		return
	}

	data.Title = post.Title
	data.Data = postView{Post: post, Comments: comments}
	renderPage(w, r, h.renderer, pagePost, data)
}

// AddComment handles POST /post/{id}. Anonymous visitors get the post back
// with a notice and nothing is stored.
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(r)
	if !ok {
		notFound(w, r, h.renderer)
		return
	}

	var f form.Comment
	if err := form.Decode(r, &f); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}
	data := render.TemplateData{Form: f}

	authorID, authenticated := middleware.GetIdentity(r).ID()
	if !authenticated {
		data.Flash = msgLoginToComment
		data.FlashType = session.FlashError
		h.renderPost(w, r, id, data)
		return
	}

	if errs := form.Validate(f); !errs.Valid() {
		data.Errors = errs
		h.renderPost(w, r, id, data)
		return
	}

	err := h.store.ExecTx(r.Context(), func(q *store.Queries) error {
		if _, err := q.GetPostByID(r.Context(), id); err != nil {
			return err
		}
		_, err := q.CreateComment(r.Context(), store.CreateCommentParams{
			PostID:   id,
			AuthorID: authorID,
			Text:     f.Body,
		})
		return err
	})
	if errors.Is(err, sql.ErrNoRows) {
		notFound(w, r, h.renderer)
		return
	}
	if err != nil {
		logAndInternalError(w, r, "failed to create comment", "error", err, "post_id", id)
		return
	}

	slog.InfoContext(r.Context(), "comment added", "post_id", id, "user_id", authorID)
	redirect(w, r, fmt.Sprintf(redirectPostID, id))
}

// NewForm handles GET /new-post.
func (h *PostHandler) NewForm(w http.ResponseWriter, r *http.Request) {
	renderPage(w, r, h.renderer, pageMakePost, render.TemplateData{
		Title: "New Post",
		Form:  form.Post{},
		Data:  postFormView{Action: RouteNewPost},
	})
}

// Create handles POST /new-post. The author is the current user and the
// date is today.
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	var f form.Post
	if err := form.Decode(r, &f); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	data := render.TemplateData{
		Title: "New Post",
		Form:  f,
		Data:  postFormView{Action: RouteNewPost},
	}
	if errs := form.Validate(f); !errs.Valid() {
		data.Errors = errs
		renderPage(w, r, h.renderer, pageMakePost, data)
		return
	}

	// RequireLogin guarantees an authenticated identity.
	authorID, _ := middleware.GetIdentity(r).ID()

	var post store.BlogPost
	err := h.store.ExecTx(r.Context(), func(q *store.Queries) error {
		if err := ensureTitleFree(r.Context(), q, f.Title, 0); err != nil {
			return err
		}
		var err error
		post, err = q.CreatePost(r.Context(), store.CreatePostParams{
			AuthorID: authorID,
			Title:    f.Title,
			Subtitle: f.Subtitle,
			Date:     h.now().Format(PostDateLayout),
			Body:     f.Body,
			ImgURL:   f.ImgURL,
		})
		return err
	})
	if errors.Is(err, errTitleTaken) || errors.Is(err, store.ErrDuplicate) {
		data.Flash = msgTitleTaken
		data.FlashType = session.FlashError
		renderPage(w, r, h.renderer, pageMakePost, data)
		return
	}
	if err != nil {
		logAndInternalError(w, r, "failed to create post", "error", err)
		return
	}

	slog.InfoContext(r.Context(), "post created", "post_id", post.ID, "user_id", authorID)
	redirect(w, r, RouteRoot)
}

// EditForm handles GET /edit-post/{id}, prefilled with the stored post.
func (h *PostHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(r)
	if !ok {
		notFound(w, r, h.renderer)
		return
	}

	post, ok := requireEntity(w, r, h.renderer, "post", id, func(id int64) (store.PostWithAuthor, error) {
		return h.store.GetPostByID(r.Context(), id)
	})
	if !ok {
		return
	}

	renderPage(w, r, h.renderer, pageMakePost, render.TemplateData{
		Title: "Edit Post",
		Form: form.Post{
			Title:    post.Title,
			Subtitle: post.Subtitle,
			ImgURL:   post.ImgURL,
			Body:     post.Body,
		},
		Data: editFormView(id),
	})
}

func editFormView(id int64) postFormView {
	return postFormView{Editing: true, Action: fmt.Sprintf(redirectEditPostID, id)}
}

// Update handles POST /edit-post/{id}. Author and date are kept.
func (h *PostHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(r)
	if !ok {
		notFound(w, r, h.renderer)
		return
	}

	var f form.Post
	if err := form.Decode(r, &f); err != nil {
		http.Error(w, "Bad Request", http.StatusBadRequest)
		return
	}

	data := render.TemplateData{Title: "Edit Post", Form: f, Data: editFormView(id)}
	if errs := form.Validate(f); !errs.Valid() {
		data.Errors = errs
		renderPage(w, r, h.renderer, pageMakePost, data)
		return
	}

	err := h.store.ExecTx(r.Context(), func(q *store.Queries) error {
		if _, err := q.GetPostByID(r.Context(), id); err != nil {
			return err
		}
		if err := ensureTitleFree(r.Context(), q, f.Title, id); err != nil {
			return err
		}
		n, err := q.UpdatePost(r.Context(), store.UpdatePostParams{
			Title:    f.Title,
			Subtitle: f.Subtitle,
			Body:     f.Body,
			ImgURL:   f.ImgURL,
			ID:       id,
		})
		if err != nil {
			return err
		}
		if n == 0 {
			return sql.ErrNoRows
		}
		return nil
	})
	switch {
	case errors.Is(err, sql.ErrNoRows):
		notFound(w, r, h.renderer)
		return
	case errors.Is(err, errTitleTaken) || errors.Is(err, store.ErrDuplicate):
		data.Flash = msgTitleTaken
		data.FlashType = session.FlashError
		renderPage(w, r, h.renderer, pageMakePost, data)
		return
	case err != nil:
		logAndInternalError(w, r, "failed to update post", "error", err, "post_id", id)
		return
	}

	userID, _ := middleware.GetIdentity(r).ID()
	slog.InfoContext(r.Context(), "post updated", "post_id", id, "user_id", userID)
	redirect(w, r, fmt.Sprintf(redirectPostID, id))
}

// Delete handles GET /delete/{id}. Comments go with the post.
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlParamID(r)
	if !ok {
		notFound(w, r, h.renderer)
		return
	}

	n, err := h.store.DeletePost(r.Context(), id)
	if err != nil {
		logAndInternalError(w, r, "failed to delete post", "error", err, "post_id", id)
		return
	}
	if n == 0 {
		notFound(w, r, h.renderer)
		return
	}

	userID, _ := middleware.GetIdentity(r).ID()
	slog.InfoContext(r.Context(), "post deleted", "post_id", id, "user_id", userID)
	flashInfo(w, r, h.renderer, RouteRoot, "Post deleted.")
}

// ensureTitleFree returns errTitleTaken when another post uses title.
func ensureTitleFree(ctx context.Context, q *store.Queries, title string, excludeID int64) error {
	count, err := q.PostTitleExists(ctx, title, excludeID)
	if err != nil {
		return fmt.Errorf("checking title: %w", err)
	}
	if count > 0 {
		return errTitleTaken
	}
	return nil
}
