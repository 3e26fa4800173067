// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"time"
)

// User roles stored in users.role.
const (
	RoleAdmin  = "admin"
	RoleReader = "reader"
)

type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
}

// IsAdmin reports whether the user carries the administrator role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

type BlogPost struct {
	ID       int64  `json:"id"`
	AuthorID int64  `json:"author_id"`
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Date     string `json:"date"`
	Body     string `json:"body"`
	ImgURL   string `json:"img_url"`
}

type Comment struct {
	ID       int64  `json:"id"`
	PostID   int64  `json:"post_id"`
	AuthorID int64  `json:"author_id"`
	Text     string `json:"text"`
}

// PostWithAuthor is a post joined with its author's public fields.
type PostWithAuthor struct {
	BlogPost
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
}

// CommentWithAuthor is a comment joined with its author's public fields.
type CommentWithAuthor struct {
	Comment
	AuthorName  string `json:"author_name"`
	AuthorEmail string `json:"author_email"`
}
