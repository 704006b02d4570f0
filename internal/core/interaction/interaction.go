// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package interaction owns the per-user engagement state on posts: the like
toggle and the comment thread.

A like is a (post, user) pair that exists at most once. Comments are
append-only and may be removed only by their author.
*/
package interaction

import "time"

// # Domain Entities

// LikeState is the outcome of a toggle.
type LikeState struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

// Comment is a reader's reply on a post.
type Comment struct {
	ID        int64     `json:"id"`
	PostID    int64     `json:"post_id"`
	UserID    int64     `json:"user_id"`
	Username  string    `json:"username"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// # Field Identifiers

const (
	FieldPostID    = "post_id"
	FieldCommentID = "comment_id"
	FieldContent   = "content"
	FieldLiked     = "liked"
	FieldLikeCount = "like_count"
	FieldComments  = "comments"
	FieldID        = "id"
)

// CommentMaxLength is the upper bound in characters, after trimming.
const CommentMaxLength = 1000

const (
	msgLoginToLike      = "Please login to like posts"
	msgLoginToComment   = "Please login to comment"
	msgLoginToUncomment = "Please login to delete comments"
	msgForbiddenComment = "You can only delete your own comments"
	msgEmptyComment     = "Comment cannot be empty"
	msgLongComment      = "Comment is too long (max 1000 characters)"
	msgInvalidPostID    = "Invalid post ID"
	msgInvalidCommentID = "Invalid comment ID"
)
