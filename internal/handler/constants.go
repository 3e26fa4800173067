// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

// Route pattern constants for chi router registration.
const (
	// RouteRoot is the post listing.
	RouteRoot = "/"
	// RouteRegister is the registration form.
	RouteRegister = "/register"
	// RouteLogin is the login form.
	RouteLogin = "/login"
	// RouteLogout ends the session.
	RouteLogout = "/logout"
	// RouteAbout is the about page.
	RouteAbout = "/about"
	// RouteContact is the contact page.
	RouteContact = "/contact"
	// RouteNewPost is the post authoring form.
	RouteNewPost = "/new-post"
	// RouteHealth is the liveness probe.
	RouteHealth = "/health"
	// RouteStatic serves embedded assets.
	RouteStatic = "/static/*"

	// RouteParamID only matches numeric ids.
	RouteParamID = "/{id:[0-9]+}"

	// RoutePostID shows a post and accepts comments.
	RoutePostID = "/post" + RouteParamID
	// RouteEditPostID edits a post.
	RouteEditPostID = "/edit-post" + RouteParamID
	// RouteDeleteID deletes a post.
	RouteDeleteID = "/delete" + RouteParamID
)

const (
	redirectPostID     = "/post/%d"
	redirectEditPostID = "/edit-post/%d"
)

// Page template names under web/templates/pages.
const (
	pageIndex    = "index"
	pagePost     = "post"
	pageRegister = "register"
	pageLogin    = "login"
	pageMakePost = "make-post"
	pageStatic   = "page"
	pageError    = "error"
)

// Messages shown on re-rendered pages.
const (
	msgLoginToComment = "you must login to add comments"
	msgTitleTaken     = "a post with this title already exists"
	msgNotFound       = "The page you are looking for does not exist."
)

// HeaderContentType is the Content-Type HTTP header name.
const HeaderContentType = "Content-Type"
