// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package account

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/taibuivan/circleblog/internal/platform/apperr"
	"github.com/taibuivan/circleblog/internal/platform/dberr"
)

// PostgresRepository implements [Repository] on the users table.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new Postgres implementation for account data.
func NewRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

/*
FindProfile reads the account row and aggregates the member's activity.

Returns:
  - *Profile: Hydrated profile
  - error: apperr.NotFound or database execution failure
*/
func (repository *PostgresRepository) FindProfile(context context.Context, userID int64) (*Profile, error) {
	const query = `
		SELECT u.id, u.username, u.email, u.role, u.created_at,
		       (SELECT count(*) FROM posts p WHERE p.user_id = u.id)    AS post_count,
		       (SELECT count(*) FROM comments c WHERE c.user_id = u.id) AS comment_count,
		       (SELECT count(*) FROM likes l JOIN posts p ON p.id = l.post_id
		         WHERE p.user_id = u.id)                                 AS likes_received
		FROM users u
		WHERE u.id = $1`

	profile := &Profile{}
	err := repository.pool.QueryRow(context, query, userID).Scan(
		&profile.ID,
		&profile.Username,
		&profile.Email,
		&profile.Role,
		&profile.CreatedAt,
		&profile.PostCount,
		&profile.CommentCount,
		&profile.LikesReceived,
	)
	if err != nil {
		return nil, dberr.Wrap(err, "User", "get_profile")
	}
	return profile, nil
}

// PasswordHash returns the stored bcrypt hash for userID.
func (repository *PostgresRepository) PasswordHash(context context.Context, userID int64) (string, error) {
	var hash string
	err := repository.pool.QueryRow(context, `SELECT password_hash FROM users WHERE id = $1`, userID).Scan(&hash)
	if err != nil {
		return "", dberr.Wrap(err, "User", "get_password_hash")
	}
	return hash, nil
}

// UpdatePasswordHash stores a new bcrypt hash.
func (repository *PostgresRepository) UpdatePasswordHash(context context.Context, userID int64, hash string) error {
	tag, err := repository.pool.Exec(context, `UPDATE users SET password_hash = $2 WHERE id = $1`, userID, hash)
	if err != nil {
		return dberr.Wrap(err, "User", "update_password_hash")
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("User")
	}
	return nil
}
