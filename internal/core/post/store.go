// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package post

import (
	"context"
	"io"
)

// Repository defines the data access contract for posts.
type Repository interface {

	/*
		Create inserts the post and fills in ID and timestamps.

		Returns:
		  - error: Persistence failures
	*/
	Create(context context.Context, post *Post) error

	/*
		Update rewrites title, content and image path.

		Returns:
		  - error: apperr.KindNotFound if the row vanished
	*/
	Update(context context.Context, post *Post) error

	/*
		Delete removes the post; its likes and comments go with it.

		Returns:
		  - error: apperr.KindNotFound if the row vanished
	*/
	Delete(context context.Context, id int64) error

	/*
		FindByID returns a post with counts, and Liked computed for viewerID (0 for anonymous).

		Returns:
		  - *Post: Hydrated entity
		  - error: apperr.KindNotFound when absent
	*/
	FindByID(context context.Context, id, viewerID int64) (*Post, error)

	/*
		List returns a newest-first page of posts and the total matching count.
	*/
	List(context context.Context, filter Filter, viewerID int64, limit, offset int) ([]*Post, int, error)

	/*
		ListByUser returns every post written by userID, newest first.
	*/
	ListByUser(context context.Context, userID int64) ([]*Post, error)
}

// BlobStore persists uploaded images.
type BlobStore interface {
	Save(context context.Context, content io.Reader, extension string) (string, error)
	Delete(context context.Context, path string) error
}
