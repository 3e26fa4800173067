// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package store

import (
	"context"
)

const createComment = `-- name: CreateComment :one
INSERT INTO comments (post_id, author_id, text)
VALUES (?, ?, ?)
RETURNING id, post_id, author_id, text`

type CreateCommentParams struct {
	PostID   int64
	AuthorID int64
	Text     string
}

func (q *Queries) CreateComment(ctx context.Context, arg CreateCommentParams) (Comment, error) {
	row := q.db.QueryRowContext(ctx, createComment, arg.PostID, arg.AuthorID, arg.Text)
	var c Comment
	err := row.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text)
	return c, err
}

const commentSelect = `
SELECT c.id, c.post_id, c.author_id, c.text, COALESCE(u.username, ''), COALESCE(u.email, '')
FROM comments c
LEFT JOIN users u ON u.id = c.author_id`

const listCommentsByPost = `-- name: ListCommentsByPost :many` + commentSelect + `
WHERE c.post_id = ?
ORDER BY c.id`

func (q *Queries) ListCommentsByPost(ctx context.Context, postID int64) ([]CommentWithAuthor, error) {
	return q.listComments(ctx, listCommentsByPost, postID)
}

func (q *Queries) listComments(ctx context.Context, query string, args ...any) ([]CommentWithAuthor, error) {
	rows, err := q.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var items []CommentWithAuthor
	for rows.Next() {
		var c CommentWithAuthor
		if err := rows.Scan(&c.ID, &c.PostID, &c.AuthorID, &c.Text, &c.AuthorName, &c.AuthorEmail); err != nil {
			return nil, err
		}
		items = append(items, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

const countCommentsByPost = `-- name: CountCommentsByPost :one
SELECT COUNT(*) FROM comments WHERE post_id = ?`

func (q *Queries) CountCommentsByPost(ctx context.Context, postID int64) (int64, error) {
	var count int64
	err := q.db.QueryRowContext(ctx, countCommentsByPost, postID).Scan(&count)
	return count, err
}
