// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package interaction

import "context"

// Repository persists likes and comments.
type Repository interface {
	// ToggleLike flips the (post, user) like atomically and returns the new state.
	// Returns NotFound when the post does not exist.
	ToggleLike(ctx context.Context, postID, userID int64) (LikeState, error)

	// CreateComment inserts comment, filling ID and CreatedAt.
	// Returns NotFound when the post does not exist.
	CreateComment(ctx context.Context, comment *Comment) error

	// FindComment loads one comment with its stored owner.
	FindComment(ctx context.Context, id int64) (*Comment, error)

	// DeleteComment removes a comment. Returns NotFound if it is already gone.
	DeleteComment(ctx context.Context, id int64) error

	// ListComments returns a post's comments newest first.
	ListComments(ctx context.Context, postID int64) ([]*Comment, error)
}
