// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/circleblog/internal/platform/apperr"
	"github.com/taibuivan/circleblog/internal/platform/dberr"
)

// PostgresRepository implements [Repository] on the posts table.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// selectPosts projects a post with author and counters. $1 is the viewer (0 = anonymous).
const selectPosts = `
	SELECT p.id, p.user_id, u.username, p.title, p.content, p.image_path,
	       (SELECT count(*) FROM likes l WHERE l.post_id = p.id)    AS like_count,
	       (SELECT count(*) FROM comments c WHERE c.post_id = p.id) AS comment_count,
	       EXISTS (SELECT 1 FROM likes l WHERE l.post_id = p.id AND l.user_id = $1) AS liked,
	       p.created_at, p.updated_at
	FROM posts p
	JOIN users u ON u.id = p.user_id`

func scanPost(row pgx.Row) (*Post, error) {
	post := &Post{}
	err := row.Scan(
		&post.ID, &post.UserID, &post.Username, &post.Title, &post.Content, &post.ImagePath,
		&post.LikeCount, &post.CommentCount, &post.Liked,
		&post.CreatedAt, &post.UpdatedAt,
	)
	return post, err
}

func collectPosts(rows pgx.Rows) ([]*Post, error) {
	defer rows.Close()

	posts := []*Post{}
	for rows.Next() {
		post, err := scanPost(rows)
		if err != nil {
			return nil, err
		}
		posts = append(posts, post)
	}
	return posts, rows.Err()
}

// Create inserts a post owned by post.UserID.
func (repository *PostgresRepository) Create(context context.Context, post *Post) error {
	const query = `
		INSERT INTO posts (user_id, title, content, image_path)
		VALUES ($1, $2, $3, $4)
		RETURNING id, created_at, updated_at`

	err := repository.db.QueryRow(context, query, post.UserID, post.Title, post.Content, post.ImagePath).
		Scan(&post.ID, &post.CreatedAt, &post.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "User", "create_post")
	}
	return nil
}

// Update rewrites the editable fields and bumps updated_at.
func (repository *PostgresRepository) Update(context context.Context, post *Post) error {
	const query = `
		UPDATE posts
		SET title = $2, content = $3, image_path = $4, updated_at = now()
		WHERE id = $1
		RETURNING updated_at`

	err := repository.db.QueryRow(context, query, post.ID, post.Title, post.Content, post.ImagePath).
		Scan(&post.UpdatedAt)
	if err != nil {
		return dberr.Wrap(err, "Post", "update_post")
	}
	return nil
}

// Delete removes the post row. Likes and comments cascade.
func (repository *PostgresRepository) Delete(context context.Context, id int64) error {
	tag, err := repository.db.Exec(context, `DELETE FROM posts WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "Post", "delete_post")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Post")
	}
	return nil
}

// FindByID loads one post with counters.
func (repository *PostgresRepository) FindByID(context context.Context, id, viewerID int64) (*Post, error) {
	post, err := scanPost(repository.db.QueryRow(context, selectPosts+` WHERE p.id = $2`, viewerID, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Post", "get_post")
	}
	return post, nil
}

/*
List returns a page of posts, newest first.

Description: A non-empty filter query is matched with ILIKE against title,
content and author. Wildcards typed by the user are escaped.

Parameters:
  - context: context.Context
  - filter: Filter
  - viewerID: int64 (0 for anonymous)
  - limit, offset: int

Returns:
  - []*Post: Page of posts
  - int: Total matching rows
  - error: Wrapped storage failures
*/
func (repository *PostgresRepository) List(context context.Context, filter Filter, viewerID int64, limit, offset int) ([]*Post, int, error) {
	where := ""
	args := []any{viewerID}

	if filter.Query != "" {
		args = append(args, "%"+escapeLike(filter.Query)+"%")
		where = ` WHERE (p.title ILIKE $2 OR p.content ILIKE $2 OR u.username ILIKE $2)`
	}

	var total int
	countQuery := `SELECT count(*) FROM posts p JOIN users u ON u.id = p.user_id` + strings.ReplaceAll(where, "$2", "$1")
	if err := repository.db.QueryRow(context, countQuery, args[1:]...).Scan(&total); err != nil {
		return nil, 0, dberr.Wrap(err, "Post", "count_posts")
	}

	limitParam := len(args) + 1
	query := selectPosts + where +
		` ORDER BY p.created_at DESC, p.id DESC LIMIT $` + strconv.Itoa(limitParam) + ` OFFSET $` + strconv.Itoa(limitParam+1)
	args = append(args, limit, offset)

	rows, err := repository.db.Query(context, query, args...)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Post", "list_posts")
	}

	posts, err := collectPosts(rows)
	if err != nil {
		return nil, 0, dberr.Wrap(err, "Post", "scan_posts")
	}
	return posts, total, nil
}

// ListByUser returns the author's posts, newest first.
func (repository *PostgresRepository) ListByUser(context context.Context, userID int64) ([]*Post, error) {
	rows, err := repository.db.Query(context,
		selectPosts+` WHERE p.user_id = $1 ORDER BY p.created_at DESC, p.id DESC`, userID)
	if err != nil {
		return nil, fmt.Errorf("postgres_post_repo_list_by_user_failed: %w", err)
	}

	posts, err := collectPosts(rows)
	if err != nil {
		return nil, fmt.Errorf("postgres_post_repo_scan_failed: %w", err)
	}
	return posts, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(value string) string {
	return likeEscaper.Replace(value)
}
