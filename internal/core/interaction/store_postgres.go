// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package interaction

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/circleblog/internal/platform/apperr"
	"github.com/taibuivan/circleblog/internal/platform/dberr"
	"github.com/taibuivan/circleblog/internal/platform/postgres"
)

// PostgresRepository implements [Repository] on the likes and comments tables.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository constructs a [PostgresRepository].
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// # Likes

/*
ToggleLike flips the like for (postID, userID) inside one transaction.

Description: A transaction-scoped advisory lock keyed on the pair serializes
concurrent toggles from the same user, so each one observes the previous
outcome. The insert runs in a savepoint; a unique violation there means the
row already exists and is treated as Liked rather than as a failure.
*/
func (repository *PostgresRepository) ToggleLike(context context.Context, postID, userID int64) (LikeState, error) {
	var state LikeState

	err := postgres.InTx(context, repository.db, func(tx pgx.Tx) error {
		const lock = `SELECT pg_advisory_xact_lock(hashtextextended($1, 0))`
		if _, err := tx.Exec(context, lock, fmt.Sprintf("like:%d:%d", postID, userID)); err != nil {
			return apperr.Internal(fmt.Errorf("like_lock_failed: %w", err))
		}

		if err := requirePost(context, tx, postID); err != nil {
			return err
		}

		const unlike = `DELETE FROM likes WHERE post_id = $1 AND user_id = $2`
		tag, err := tx.Exec(context, unlike, postID, userID)
		if err != nil {
			return dberr.Wrap(err, "Post", "delete_like")
		}

		if tag.RowsAffected() == 0 {
			liked, err := insertLike(context, tx, postID, userID)
			if err != nil {
				return err
			}
			state.Liked = liked
		}

		const count = `SELECT count(*) FROM likes WHERE post_id = $1`
		if err := tx.QueryRow(context, count, postID).Scan(&state.LikeCount); err != nil {
			return dberr.Wrap(err, "Post", "count_likes")
		}
		return nil
	})
	if err != nil {
		return LikeState{}, err
	}
	return state, nil
}

func insertLike(context context.Context, tx pgx.Tx, postID, userID int64) (bool, error) {
	savepoint, err := tx.Begin(context)
	if err != nil {
		return false, apperr.Internal(fmt.Errorf("like_savepoint_failed: %w", err))
	}

	const like = `INSERT INTO likes (post_id, user_id) VALUES ($1, $2)`
	if _, err := savepoint.Exec(context, like, postID, userID); err != nil {
		_ = savepoint.Rollback(context)
		if dberr.IsUniqueViolation(err) {
			return true, nil
		}
		return false, dberr.Wrap(err, "Post", "insert_like")
	}

	if err := savepoint.Commit(context); err != nil {
		return false, apperr.Internal(fmt.Errorf("like_release_failed: %w", err))
	}
	return true, nil
}

func requirePost(context context.Context, db postgres.Querier, postID int64) error {
	var exists bool
	const query = `SELECT EXISTS (SELECT 1 FROM posts WHERE id = $1)`
	if err := db.QueryRow(context, query, postID).Scan(&exists); err != nil {
		return dberr.Wrap(err, "Post", "check_post")
	}
	if !exists {
		return apperr.NotFound("Post")
	}
	return nil
}

// # Comments

// CreateComment inserts a comment. The foreign key rejects missing posts.
func (repository *PostgresRepository) CreateComment(context context.Context, comment *Comment) error {
	const query = `
		INSERT INTO comments (post_id, user_id, content)
		VALUES ($1, $2, $3)
		RETURNING id, created_at`

	err := repository.db.QueryRow(context, query, comment.PostID, comment.UserID, comment.Content).
		Scan(&comment.ID, &comment.CreatedAt)
	return dberr.Wrap(err, "Post", "insert_comment")
}

// FindComment loads a comment by id.
func (repository *PostgresRepository) FindComment(context context.Context, id int64) (*Comment, error) {
	const query = `
		SELECT c.id, c.post_id, c.user_id, u.username, c.content, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.id = $1`

	comment, err := scanComment(repository.db.QueryRow(context, query, id))
	if err != nil {
		return nil, dberr.Wrap(err, "Comment", "get_comment")
	}
	return comment, nil
}

// DeleteComment hard-deletes a comment.
func (repository *PostgresRepository) DeleteComment(context context.Context, id int64) error {
	tag, err := repository.db.Exec(context, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return dberr.Wrap(err, "Comment", "delete_comment")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("Comment")
	}
	return nil
}

// ListComments returns the thread newest first. Ties on created_at fall back to id.
func (repository *PostgresRepository) ListComments(context context.Context, postID int64) ([]*Comment, error) {
	if err := requirePost(context, repository.db, postID); err != nil {
		return nil, err
	}

	const query = `
		SELECT c.id, c.post_id, c.user_id, u.username, c.content, c.created_at
		FROM comments c
		JOIN users u ON u.id = c.user_id
		WHERE c.post_id = $1
		ORDER BY c.created_at DESC, c.id DESC`

	rows, err := repository.db.Query(context, query, postID)
	if err != nil {
		return nil, dberr.Wrap(err, "Post", "list_comments")
	}
	defer rows.Close()

	comments := []*Comment{}
	for rows.Next() {
		comment, err := scanComment(rows)
		if err != nil {
			return nil, dberr.Wrap(err, "Post", "scan_comment")
		}
		comments = append(comments, comment)
	}
	if err := rows.Err(); err != nil {
		return nil, dberr.Wrap(err, "Post", "list_comments")
	}
	return comments, nil
}

func scanComment(row pgx.Row) (*Comment, error) {
	comment := &Comment{}
	err := row.Scan(&comment.ID, &comment.PostID, &comment.UserID, &comment.Username, &comment.Content, &comment.CreatedAt)
	return comment, err
}
