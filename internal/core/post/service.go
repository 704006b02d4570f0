// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"context"
	"log/slog"

	"github.com/taibuivan/circleblog/internal/platform/authz"
	"github.com/taibuivan/circleblog/internal/platform/blob"
	"github.com/taibuivan/circleblog/internal/platform/ctxutil"
	"github.com/taibuivan/circleblog/internal/platform/sec"
	"github.com/taibuivan/circleblog/internal/platform/validate"
	"github.com/taibuivan/circleblog/pkg/pagination"
)

// Service implements the post use cases.
type Service struct {
	repository Repository
	blobs      BlobStore
	policy     blob.Policy
}

// NewService constructs a new [Service].
func NewService(repository Repository, blobs BlobStore, policy blob.Policy) *Service {
	return &Service{repository: repository, blobs: blobs, policy: policy}
}

// # Input Types

// WriteInput carries the editable fields of a post.
type WriteInput struct {
	Title   string
	Content string
	Image   *Upload

	// RemoveImage drops the current image on update. Ignored when Image is set.
	RemoveImage bool
}

func (input *WriteInput) normalize() error {
	input.Title = validate.Text(input.Title)
	input.Content = validate.Text(input.Content)

	validator := &validate.Validator{}
	validator.
		Custom(FieldTitle, input.Title == "" || input.Content == "", "Title and content are required").
		Custom(FieldTitle, validate.Length(input.Title) > TitleMaxLength, "Title is too long (max 255 characters)")

	return validator.Err()
}

// # Read Operations

/*
List returns a page of posts for anyone, newest first.

Parameters:
  - context: context.Context
  - identity: *sec.Identity (nil for anonymous; drives the liked flag)
  - filter: Filter
  - page: pagination.Params

Returns:
  - []*Post: Page of posts
  - pagination.Meta: Page metadata
  - error: Storage failures
*/
func (service *Service) List(context context.Context, identity *sec.Identity, filter Filter, page pagination.Params) ([]*Post, pagination.Meta, error) {
	filter.Query = validate.Text(filter.Query)

	posts, total, err := service.repository.List(context, filter, viewerOf(identity), page.Limit, page.Offset())
	if err != nil {
		return nil, pagination.Meta{}, err
	}
	return posts, pagination.NewMeta(page.Page, page.Limit, total), nil
}

// Mine lists the caller's own posts.
func (service *Service) Mine(context context.Context, identity *sec.Identity) ([]*Post, error) {
	userID, err := authz.RequireAuthenticated(identity, "")
	if err != nil {
		return nil, err
	}
	return service.repository.ListByUser(context, userID)
}

// Get returns one post; Liked reflects the caller.
func (service *Service) Get(context context.Context, identity *sec.Identity, id int64) (*Post, error) {
	if id <= 0 {
		return nil, validate.Invalid(FieldID, msgInvalidPostID)
	}
	return service.repository.FindByID(context, id, viewerOf(identity))
}

// # Write Operations

/*
Create publishes a new post owned by the caller.

Description: Text is validated before the image is written, and the image is
removed again if the insert fails.

Parameters:
  - context: context.Context
  - identity: *sec.Identity
  - input: WriteInput

Returns:
  - *Post: Created entity
  - error: Unauthenticated, InvalidInput or storage failures
*/
func (service *Service) Create(context context.Context, identity *sec.Identity, input WriteInput) (*Post, error) {
	userID, err := authz.RequireAuthenticated(identity, msgLoginToPost)
	if err != nil {
		return nil, err
	}

	if err := input.normalize(); err != nil {
		return nil, err
	}

	imagePath, err := service.storeImage(context, input.Image)
	if err != nil {
		return nil, err
	}

	post := &Post{
		UserID:    userID,
		Username:  identity.Username,
		Title:     input.Title,
		Content:   input.Content,
		ImagePath: imagePath,
	}

	if err := service.repository.Create(context, post); err != nil {
		service.discardImage(context, imagePath)
		return nil, err
	}

	ctxutil.GetLogger(context).InfoContext(context, "post_created", slog.Int64("post_id", post.ID))
	return post, nil
}

/*
Update edits a post. Only its owner may do so.

Parameters:
  - context: context.Context
  - identity: *sec.Identity
  - id: int64
  - input: WriteInput

Returns:
  - *Post: Updated entity with counters
  - error: Unauthenticated, NotFound, Forbidden, InvalidInput or storage failures
*/
func (service *Service) Update(context context.Context, identity *sec.Identity, id int64, input WriteInput) (*Post, error) {
	viewerID, err := authz.RequireAuthenticated(identity, "")
	if err != nil {
		return nil, err
	}

	existing, err := service.repository.FindByID(context, id, viewerID)
	if err != nil {
		return nil, err
	}

	if err := authz.RequireOwnership(identity, existing.UserID, msgForbiddenEdit); err != nil {
		return nil, err
	}

	if err := input.normalize(); err != nil {
		return nil, err
	}

	previousImage := existing.ImagePath
	replacement, err := service.storeImage(context, input.Image)
	if err != nil {
		return nil, err
	}

	switch {
	case replacement != nil:
		existing.ImagePath = replacement
	case input.RemoveImage:
		existing.ImagePath = nil
	}

	existing.Title = input.Title
	existing.Content = input.Content

	if err := service.repository.Update(context, existing); err != nil {
		service.discardImage(context, replacement)
		return nil, err
	}

	if previousImage != nil && (existing.ImagePath == nil || *existing.ImagePath != *previousImage) {
		service.discardImage(context, previousImage)
	}

	ctxutil.GetLogger(context).InfoContext(context, "post_updated", slog.Int64("post_id", id))
	return existing, nil
}

/*
Delete removes a post together with its likes, comments and image. Owner only.
*/
func (service *Service) Delete(context context.Context, identity *sec.Identity, id int64) error {
	viewerID, err := authz.RequireAuthenticated(identity, "")
	if err != nil {
		return err
	}

	existing, err := service.repository.FindByID(context, id, viewerID)
	if err != nil {
		return err
	}

	if err := authz.RequireOwnership(identity, existing.UserID, msgForbiddenDrop); err != nil {
		return err
	}

	if err := service.repository.Delete(context, id); err != nil {
		return err
	}

	service.discardImage(context, existing.ImagePath)

	ctxutil.GetLogger(context).InfoContext(context, "post_deleted", slog.Int64("post_id", id))
	return nil
}

// # Helpers

func viewerOf(identity *sec.Identity) int64 {
	if identity == nil {
		return 0
	}
	return identity.UserID
}

func (service *Service) storeImage(context context.Context, upload *Upload) (*string, error) {
	if upload == nil {
		return nil, nil
	}

	head, content, err := blob.Sniff(upload.Content)
	if err != nil {
		return nil, err
	}

	extension, err := service.policy.Check(upload.Filename, upload.Size, head)
	if err != nil {
		return nil, err
	}

	stored, err := service.blobs.Save(context, content, extension)
	if err != nil {
		return nil, err
	}
	return &stored, nil
}

// discardImage deletes a blob that is no longer referenced. Failures only leave an orphan file.
func (service *Service) discardImage(context context.Context, path *string) {
	if path == nil {
		return
	}
	if err := service.blobs.Delete(context, *path); err != nil {
		ctxutil.GetLogger(context).WarnContext(context, "post_image_cleanup_failed",
			slog.String("path", *path),
			slog.Any("error", err),
		)
	}
}
