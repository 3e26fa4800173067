// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
)

const postColumns = `p.id, p.author_id, p.title, p.subtitle, p.date, p.body, p.img_url`

func scanPostWithAuthor(row interface{ Scan(...any) error }) (PostWithAuthor, error) {
	var p PostWithAuthor
	err := row.Scan(
		&p.ID, &p.AuthorID, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImgURL,
		&p.AuthorName, &p.AuthorEmail,
	)
	return p, err
}

const listPosts = `-- name: ListPosts :many
SELECT ` + postColumns + `, COALESCE(u.username, ''), COALESCE(u.email, '')
FROM blog_posts p
LEFT JOIN users u ON u.id = p.author_id
ORDER BY p.id`

func (q *Queries) ListPosts(ctx context.Context) ([]PostWithAuthor, error) {
	rows, err := q.db.QueryContext(ctx, listPosts)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []PostWithAuthor
	for rows.Next() {
		p, err := scanPostWithAuthor(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const getPostByID = `-- name: GetPostByID :one
SELECT ` + postColumns + `, COALESCE(u.username, ''), COALESCE(u.email, '')
FROM blog_posts p
LEFT JOIN users u ON u.id = p.author_id
WHERE p.id = ?`

func (q *Queries) GetPostByID(ctx context.Context, id int64) (PostWithAuthor, error) {
	return scanPostWithAuthor(q.db.QueryRowContext(ctx, getPostByID, id))
}

const postTitleExists = `-- name: PostTitleExists :one
SELECT COUNT(*) FROM blog_posts WHERE title = ? AND id != ?`

// PostTitleExists counts posts other than excludeID that already use title.
func (q *Queries) PostTitleExists(ctx context.Context, title string, excludeID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, postTitleExists, title, excludeID).Scan(&count)
	return count, err
}

const createPost = `-- name: CreatePost :one
INSERT INTO blog_posts (author_id, title, subtitle, date, body, img_url)
VALUES (?, ?, ?, ?, ?, ?)
RETURNING id, author_id, title, subtitle, date, body, img_url`

type CreatePostParams struct {
	AuthorID int64
	Title    string
	Subtitle string
	Date     string
	Body     string
	ImgURL   string
}

func (q *Queries) CreatePost(ctx context.Context, arg CreatePostParams) (BlogPost, error) {
	row := q.db.QueryRowContext(ctx, createPost,
		arg.AuthorID,
		arg.Title,
		arg.Subtitle,
		arg.Date,
		arg.Body,
		arg.ImgURL,
	)
	var p BlogPost
	err := row.Scan(&p.ID, &p.AuthorID, &p.Title, &p.Subtitle, &p.Date, &p.Body, &p.ImgURL)
	return p, mapConstraintErr(err)
}

const updatePost = `-- name: UpdatePost :execrows
UPDATE blog_posts SET title = ?, subtitle = ?, body = ?, img_url = ?
WHERE id = ?`

type UpdatePostParams struct {
	Title    string
	Subtitle string
	Body     string
	ImgURL   string
	ID       int64
}

// UpdatePost changes the editable fields; author and date are never touched.
func (q *Queries) UpdatePost(ctx context.Context, arg UpdatePostParams) (int64, error) {
	result, err := q.db.ExecContext(ctx, updatePost,
		arg.Title,
		arg.Subtitle,
		arg.Body,
		arg.ImgURL,
		arg.ID,
	)
	if err != nil {
		return 0, mapConstraintErr(err)
	}
	return result.RowsAffected()
}

const deletePost = `-- name: DeletePost :execrows
DELETE FROM blog_posts WHERE id = ?`

func (q *Queries) DeletePost(ctx context.Context, id int64) (int64, error) {
	result, err := q.db.ExecContext(ctx, deletePost, id)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}

const countPosts = `-- name: CountPosts :one
SELECT COUNT(*) FROM blog_posts`

func (q *Queries) CountPosts(ctx context.Context) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countPosts).Scan(&count)
	return count, err
}
