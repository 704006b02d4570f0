// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

/*
Package post manages blog posts: authoring, editing and deletion by their
owner, public listing with search, and the detail view with engagement counts.
*/
package post

import (
	"io"
	"time"
)

// # Domain Entities

// Post is a blog entry together with its engagement counters.
type Post struct {
	ID           int64     `json:"id"`
	UserID       int64     `json:"user_id"`
	Username     string    `json:"username"`
	Title        string    `json:"title"`
	Content      string    `json:"content"`
	ImagePath    *string   `json:"image_path"`
	LikeCount    int       `json:"like_count"`
	CommentCount int       `json:"comment_count"`
	Liked        bool      `json:"liked"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Filter narrows a listing.
type Filter struct {
	// Query is a case-insensitive substring matched against title, content and author.
	Query string
}

// Upload is an image attached to a create or update request.
type Upload struct {
	Filename string
	Size     int64
	Content  io.Reader
}

// # Field Identifiers

const (
	FieldID          = "id"
	FieldTitle       = "title"
	FieldContent     = "content"
	FieldImage       = "image"
	FieldRemoveImage = "remove_image"
	FieldPost        = "post"
	FieldPosts       = "posts"
	FieldQuery       = "q"
)

// TitleMaxLength is the column width of posts.title.
const TitleMaxLength = 255

const (
	msgLoginToPost   = "Please login to create posts"
	msgForbiddenEdit = "You do not have permission to edit this post"
	msgForbiddenDrop = "You do not have permission to delete this post"
	msgInvalidPostID = "Invalid post ID"
)
