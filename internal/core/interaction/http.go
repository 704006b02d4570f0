// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package interaction

import (
	"encoding/json"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	requestutil "github.com/taibuivan/circleblog/internal/platform/request"
	"github.com/taibuivan/circleblog/internal/platform/respond"
	"github.com/taibuivan/circleblog/internal/platform/validate"
)

// Handler implements the like and comment endpoints.
type Handler struct {
	interactionService *Service
}

// NewHandler constructs a new [Handler].
func NewHandler(service *Service) *Handler {
	return &Handler{interactionService: service}
}

// LikeRoutes returns a [chi.Router] for /api/likes.
//
// # Endpoints
//   - POST /toggle : Flip the caller's like on a post.
func (handler *Handler) LikeRoutes() chi.Router {
	router := chi.NewRouter()
	router.Post("/toggle", handler.toggleLike)
	return router
}

// CommentRoutes returns a [chi.Router] for /api/comments.
//
// # Endpoints
//   - POST   / : Add a comment.
//   - DELETE / : Delete own comment.
func (handler *Handler) CommentRoutes() chi.Router {
	router := chi.NewRouter()
	router.Post("/", handler.addComment)
	router.Delete("/", handler.deleteComment)
	return router
}

// # Request Payloads

// Identifiers are accepted as JSON numbers or numeric strings, then range-checked.
type likeRequest struct {
	PostID json.Number `json:"post_id"`
}

func (body *likeRequest) DecodeForm(values url.Values) {
	body.PostID = json.Number(values.Get(FieldPostID))
}

type commentRequest struct {
	PostID  json.Number `json:"post_id"`
	Content string      `json:"content"`
}

func (body *commentRequest) DecodeForm(values url.Values) {
	body.PostID = json.Number(values.Get(FieldPostID))
	body.Content = values.Get(FieldContent)
}

type uncommentRequest struct {
	CommentID json.Number `json:"comment_id"`
}

func (body *uncommentRequest) DecodeForm(values url.Values) {
	body.CommentID = json.Number(values.Get(FieldCommentID))
}

// idOf yields 0 for anything that is not a positive integer; the service rejects it after the login check.
func idOf(raw json.Number) int64 {
	id, _ := validate.PositiveID(raw.String())
	return id
}

// # Endpoints

/*
POST /api/likes/toggle

Response:
  - 200: {success, liked, like_count, message}
  - 401: Not logged in; nothing is changed
  - 404: Post not found
*/
func (handler *Handler) toggleLike(writer http.ResponseWriter, request *http.Request) {
	var input likeRequest
	if err := requestutil.Decode(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	state, err := handler.interactionService.ToggleLike(request.Context(), requestutil.Identity(request), idOf(input.PostID))
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	message := "Post unliked"
	if state.Liked {
		message = "Post liked!"
	}

	respond.OK(writer, message, respond.Fields{
		FieldLiked:     state.Liked,
		FieldLikeCount: state.LikeCount,
	})
}

/*
POST /api/comments

Response:
  - 201: {success, comment_id, comment, message}
  - 400: Empty or too long content, bad post id
  - 401: Not logged in
  - 404: Post not found
*/
func (handler *Handler) addComment(writer http.ResponseWriter, request *http.Request) {
	var input commentRequest
	if err := requestutil.Decode(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	comment, err := handler.interactionService.AddComment(request.Context(), requestutil.Identity(request), idOf(input.PostID), input.Content)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, "Comment posted successfully", respond.Fields{
		FieldCommentID: comment.ID,
		"comment":      comment,
	})
}

// DELETE /api/comments
func (handler *Handler) deleteComment(writer http.ResponseWriter, request *http.Request) {
	var input uncommentRequest
	if err := requestutil.Decode(writer, request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if err := handler.interactionService.DeleteComment(request.Context(), requestutil.Identity(request), idOf(input.CommentID)); err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "Comment deleted successfully", nil)
}

// ListComments serves GET /api/posts/{id}/comments and is mounted by the post router.
func (handler *Handler) ListComments(writer http.ResponseWriter, request *http.Request) {
	postID, err := requestutil.ID(request, FieldID, msgInvalidPostID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	comments, err := handler.interactionService.ListComments(request.Context(), postID)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, "", respond.Fields{FieldComments: comments})
}
