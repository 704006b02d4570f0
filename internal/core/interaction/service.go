// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package interaction

import (
	"context"
	"log/slog"

	"github.com/taibuivan/circleblog/internal/platform/authz"
	"github.com/taibuivan/circleblog/internal/platform/ctxutil"
	"github.com/taibuivan/circleblog/internal/platform/sec"
	"github.com/taibuivan/circleblog/internal/platform/validate"
)

// Service implements the like and comment use cases.
type Service struct {
	repository Repository
}

// NewService constructs a new [Service].
func NewService(repository Repository) *Service {
	return &Service{repository: repository}
}

// # Likes

/*
ToggleLike flips the caller's like on a post.

Parameters:
  - context: context.Context
  - identity: *sec.Identity
  - postID: int64

Returns:
  - LikeState: The new state and the post's total like count
  - error: Unauthenticated, InvalidInput, NotFound or storage failures
*/
func (service *Service) ToggleLike(context context.Context, identity *sec.Identity, postID int64) (LikeState, error) {
	userID, err := authz.RequireAuthenticated(identity, msgLoginToLike)
	if err != nil {
		return LikeState{}, err
	}

	if postID <= 0 {
		return LikeState{}, validate.Invalid(FieldPostID, msgInvalidPostID)
	}

	state, err := service.repository.ToggleLike(context, postID, userID)
	if err != nil {
		return LikeState{}, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "like_toggled",
		slog.Int64("post_id", postID),
		slog.Bool("liked", state.Liked),
		slog.Int("like_count", state.LikeCount),
	)
	return state, nil
}

// # Comments

/*
AddComment appends a comment to a post.

Description: Content is trimmed and normalized, then checked, before storage
is touched.

Returns:
  - *Comment: The stored comment with its generated id
  - error: Unauthenticated, InvalidInput, NotFound or storage failures
*/
func (service *Service) AddComment(context context.Context, identity *sec.Identity, postID int64, content string) (*Comment, error) {
	userID, err := authz.RequireAuthenticated(identity, msgLoginToComment)
	if err != nil {
		return nil, err
	}

	if postID <= 0 {
		return nil, validate.Invalid(FieldPostID, msgInvalidPostID)
	}

	content = validate.Text(content)

	validator := &validate.Validator{}
	validator.
		Custom(FieldContent, content == "", msgEmptyComment).
		Custom(FieldContent, validate.Length(content) > CommentMaxLength, msgLongComment)
	if err := validator.Err(); err != nil {
		return nil, err
	}

	comment := &Comment{
		PostID:   postID,
		UserID:   userID,
		Username: identity.Username,
		Content:  content,
	}

	if err := service.repository.CreateComment(context, comment); err != nil {
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "comment_created",
		slog.Int64("post_id", postID),
		slog.Int64("comment_id", comment.ID),
	)
	return comment, nil
}

// DeleteComment removes a comment. The owner is read from storage, never from the request.
func (service *Service) DeleteComment(context context.Context, identity *sec.Identity, commentID int64) error {
	if _, err := authz.RequireAuthenticated(identity, msgLoginToUncomment); err != nil {
		return err
	}

	if commentID <= 0 {
		return validate.Invalid(FieldCommentID, msgInvalidCommentID)
	}

	comment, err := service.repository.FindComment(context, commentID)
	if err != nil {
		return err
	}

	if err := authz.RequireOwnership(identity, comment.UserID, msgForbiddenComment); err != nil {
		return err
	}

	if err := service.repository.DeleteComment(context, commentID); err != nil {
		return err
	}

	ctxutil.GetLogger(context).InfoContext(context, "comment_deleted",
		slog.Int64("post_id", comment.PostID),
		slog.Int64("comment_id", commentID),
	)
	return nil
}

// ListComments returns a post's comments, newest first. Open to anonymous readers.
func (service *Service) ListComments(context context.Context, postID int64) ([]*Comment, error) {
	if postID <= 0 {
		return nil, validate.Invalid(FieldPostID, msgInvalidPostID)
	}
	return service.repository.ListComments(context, postID)
}
